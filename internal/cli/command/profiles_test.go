package command

import (
	"strings"
	"testing"
)

func TestProfileLifecycle(t *testing.T) {
	env := newTestEnv(t)

	res := env.run("profile", "add", "lab", "https://lab.example.edu")
	if res.err != nil {
		t.Fatalf("profile add: %v", res.err)
	}

	res = env.run("profile", "list")
	if res.err != nil {
		t.Fatalf("profile list: %v", res.err)
	}
	if !strings.Contains(res.stdout, "lab") || !strings.Contains(res.stdout, "https://lab.example.edu") {
		t.Errorf("profile list:\n%s", res.stdout)
	}

	if res := env.run("profile", "use", "lab"); res.err != nil {
		t.Fatalf("profile use: %v", res.err)
	}
	res = env.run("status", "-o", "json")
	if !strings.Contains(res.stdout, `"profile": "lab"`) {
		t.Errorf("status after use:\n%s", res.stdout)
	}

	if res := env.run("profile", "rm", "lab"); res.err != nil {
		t.Fatalf("profile rm: %v", res.err)
	}
	res = env.run("status", "-o", "json")
	if !strings.Contains(res.stdout, `"profile": "default"`) {
		t.Errorf("status after rm:\n%s", res.stdout)
	}
}

func TestProfileAdd_Rejected(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"reserved", []string{"profile", "add", "default", "https://x.example.edu"}},
		{"bad name", []string{"profile", "add", "../up", "https://x.example.edu"}},
		{"bad url", []string{"profile", "add", "lab", "not a url"}},
		{"missing url", []string{"profile", "add", "lab"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if res := env.run(tt.args...); res.err == nil {
				t.Errorf("%v should fail", tt.args)
			}
		})
	}
}

func TestProfileUse_Unknown(t *testing.T) {
	res := newTestEnv(t).run("profile", "use", "nowhere")
	if res.err == nil {
		t.Fatal("profile use of an unknown profile should fail")
	}
}

func TestProfileTokensAreSeparate(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	if res := env.run("profile", "add", "mirror", env.backend.URL); res.err != nil {
		t.Fatal(res.err)
	}

	res := env.run("--profile", "mirror", "status")
	if !strings.Contains(res.stdout, "not logged in") {
		t.Errorf("mirror profile should start logged out:\n%s", res.stdout)
	}
	res = env.run("status")
	if strings.Contains(res.stdout, "not logged in") {
		t.Errorf("default profile should still be logged in:\n%s", res.stdout)
	}
}
