package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/funvibe/pyhint/internal/token"
)

func TestDiagnosticErrorFormat(t *testing.T) {
	d := NewWarning(ErrA001, token.Token{Line: 3, Column: 7}, "cannot parse forward reference")
	d.File = "mod.py"

	want := "mod.py:3:7: warning[A001]: cannot parse forward reference"
	if got := d.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	e := NewError(ErrP001, token.Token{Line: 1, Column: 1}, "invalid syntax")
	if got := e.Error(); !strings.HasPrefix(got, "<input>:1:1: error[P001]") {
		t.Errorf("Error() = %q, want <input> prefix", got)
	}
}

func TestCollector(t *testing.T) {
	var c Collector
	Warn(&c, ErrA004, token.Token{}, "expected %d, got %d", 2, 3)
	c.Report(NewError(ErrP001, token.Token{}, "bad"))

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if !c.Has(ErrA004) || c.Has(ErrA005) {
		t.Errorf("Has() reported wrong codes: %v", c.Diagnostics())
	}
	if msg := c.Diagnostics()[0].Message; msg != "expected 2, got 3" {
		t.Errorf("Message = %q, want %q", msg, "expected 2, got 3")
	}
	if !c.HasErrors() {
		t.Errorf("HasErrors() = false, want true")
	}
	c.Reset()
	if c.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", c.Len())
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink(&buf, ColorAuto)
	s.Report(NewWarning(ErrA003, token.Token{Line: 2, Column: 5}, "ambiguous"))
	if got := buf.String(); got != "<input>:2:5: warning[A003]: ambiguous\n" {
		t.Errorf("output = %q", got)
	}

	buf.Reset()
	s.Quiet = true
	s.Report(NewWarning(ErrA003, token.Token{}, "hidden"))
	if buf.Len() != 0 {
		t.Errorf("quiet sink wrote %q", buf.String())
	}

	buf.Reset()
	colored := NewWriterSink(&buf, ColorAlways)
	colored.Report(NewError(ErrP001, token.Token{Line: 1, Column: 1}, "boom"))
	if !strings.Contains(buf.String(), ansiRed) {
		t.Errorf("ColorAlways output has no color: %q", buf.String())
	}
}

func TestTee(t *testing.T) {
	var a, b Collector
	Tee(&a, Discard, &b).Report(NewError(ErrP002, token.Token{}, "dedent"))
	if a.Len() != 1 || b.Len() != 1 {
		t.Errorf("Tee delivered %d and %d, want 1 and 1", a.Len(), b.Len())
	}
}
