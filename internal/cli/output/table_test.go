package output

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"
)

type feeRow struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"dueDate" table:"wide"`
	internal    string
	Hidden      string `table:"-"`
}

func TestTableFormatter_View(t *testing.T) {
	var gotWide bool
	view := View{
		Data: "ignored",
		Build: func(wide bool) *Table {
			gotWide = wide
			tbl := NewTable("COURSE", "PROGRESS")
			tbl.AddRow("Go Basics", Bar(40, 10))
			return tbl
		},
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{Wide: true}).Format(&buf, view); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !gotWide {
		t.Error("wide flag not passed to Build")
	}
	if !strings.Contains(buf.String(), "Go Basics") || !strings.Contains(buf.String(), "40%") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTableFormatter_TableNoHeaders(t *testing.T) {
	tbl := Table{Headers: []string{"NAME"}, Rows: [][]string{{"alice"}}}

	var buf bytes.Buffer
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, tbl); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "NAME") || !strings.Contains(buf.String(), "alice") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTableFormatter_Nil(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, nil); err != nil || buf.Len() != 0 {
		t.Errorf("Format(nil) = %q, %v", buf.String(), err)
	}
}

func TestTableFormatter_StructSlice(t *testing.T) {
	rows := []*feeRow{
		{Description: "Tuition", Amount: 1000, DueDate: "2026-01-01", internal: "x", Hidden: "secret"},
		nil,
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, rows); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"DESCRIPTION", "AMOUNT", "Tuition", "1000.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{"DUE_DATE", "secret", "HIDDEN"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("output should not contain %q:\n%s", unwanted, out)
		}
	}

	buf.Reset()
	if err := (&TableFormatter{Wide: true}).Format(&buf, rows); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "DUE_DATE") {
		t.Errorf("wide output missing DUE_DATE:\n%s", buf.String())
	}
}

func TestTableFormatter_MapAndStruct(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, map[string]int{"courses": 3}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "courses") || !strings.Contains(buf.String(), "3") {
		t.Errorf("map output = %q", buf.String())
	}

	buf.Reset()
	if err := (&TableFormatter{}).Format(&buf, feeRow{Description: "Exam"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "FIELD") || !strings.Contains(out, "description") || !strings.Contains(out, "Exam") {
		t.Errorf("struct output = %q", out)
	}
}

func TestTableFormatter_FallbackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, "plain"); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != `"plain"` {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFormatValue(t *testing.T) {
	s := "x"
	var nilPtr *string
	tests := []struct {
		in   any
		want string
	}{
		{"", "-"},
		{"text", "text"},
		{42, "42"},
		{uint8(7), "7"},
		{2.5, "2.50"},
		{true, "true"},
		{[]int{}, "-"},
		{[]int{1, 2}, "[2 items]"},
		{map[string]int{"a": 1}, "{1 keys}"},
		{&s, "x"},
		{nilPtr, ""},
		{time.Time{}, "-"},
		{time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC), "2026-03-04 05:06"},
	}
	for _, tt := range tests {
		if got := formatValue(reflect.ValueOf(tt.in)); got != tt.want {
			t.Errorf("formatValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := formatValue(reflect.Value{}); got != "" {
		t.Errorf("formatValue(invalid) = %q", got)
	}
}

func TestToSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"dueDate":           "due_Date",
		"CertificateNumber": "Certificate_Number",
		"id":                "id",
	} {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCellAndMoney(t *testing.T) {
	if Cell("  ") != "-" || Cell("a") != "a" {
		t.Error("Cell")
	}
	if Money(12.345) != "12.35" && Money(12.345) != "12.34" {
		t.Errorf("Money(12.345) = %q", Money(12.345))
	}
	if Money(0) != "0.00" {
		t.Errorf("Money(0) = %q", Money(0))
	}
}
