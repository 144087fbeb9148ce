package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type certRow struct {
	CertificateNumber string `json:"certificateNumber"`
	CourseName        string `json:"courseName"`
	Grade             string `json:"grade,omitempty"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{" JSON ", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON, false).(*JSONFormatter); !ok {
		t.Error("json format should yield JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML, false).(*YAMLFormatter); !ok {
		t.Error("yaml format should yield YAMLFormatter")
	}
	f, ok := NewFormatter(FormatTable, true).(*TableFormatter)
	if !ok || !f.Wide {
		t.Error("table format should yield a wide TableFormatter")
	}
}

func TestJSONFormatter_UnwrapsView(t *testing.T) {
	view := View{
		Data:  []certRow{{CertificateNumber: "CERT-1", CourseName: "Go Basics"}},
		Build: func(bool) *Table { return NewTable("IGNORED") },
	}

	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, view); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 1 || got[0]["certificateNumber"] != "CERT-1" {
		t.Errorf("got %v", got)
	}
	if _, ok := got[0]["grade"]; ok {
		t.Error("omitempty field should be omitted")
	}
}

func TestYAMLFormatter_Format(t *testing.T) {
	data := &View{Data: certRow{CertificateNumber: "CERT-1", CourseName: "Go Basics"}}

	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "certificateNumber: CERT-1") {
		t.Errorf("YAML should use json field names, got:\n%s", out)
	}
	if strings.Contains(out, "{") || strings.Contains(out, `"`) {
		t.Errorf("YAML should be block style without quotes, got:\n%s", out)
	}

	var back map[string]string
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if back["courseName"] != "Go Basics" {
		t.Errorf("round trip = %v", back)
	}
}

func TestYAMLFormatter_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).Format(&buf, make(chan int)); err == nil {
		t.Error("Format() expected error for a channel")
	}
}
