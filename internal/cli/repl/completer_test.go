package repl

import (
	"reflect"
	"testing"
)

func TestCompleter_Complete(t *testing.T) {
	c := NewCompleter([]string{"profile", "profile use", "profile list", "passwd", "login", "  profile   use "})

	tests := []struct {
		prefix string
		want   []string
	}{
		{"profile", []string{"profile", "profile list", "profile use"}},
		{"profile u", []string{"profile use"}},
		{"p", []string{"passwd", "profile", "profile list", "profile use"}},
		{"hist", []string{"history"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		if got := c.Complete(tt.prefix); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Complete(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestCompleter_Known(t *testing.T) {
	c := NewCompleter([]string{"profile use"})
	if !c.Known("profile") || !c.Known("exit") {
		t.Error("Known() should report roots and builtins")
	}
	if c.Known("use") || c.Known("prof") {
		t.Error("Known() should only match whole top-level names")
	}
}
