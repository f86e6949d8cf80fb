package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/funvibe/pyhint/internal/token"
	"github.com/mattn/go-isatty"
)

type ErrorCode string

const (
	ErrP001 ErrorCode = "P001" // syntax error
	ErrP002 ErrorCode = "P002" // inconsistent indentation

	ErrA001 ErrorCode = "A001" // forward reference could not be parsed
	ErrA002 ErrorCode = "A002" // comment annotation is not valid
	ErrA003 ErrorCode = "A003" // annotation did not resolve to exactly one value
	ErrA004 ErrorCode = "A004" // comment declares a different number of parameters
	ErrA005 ErrorCode = "A005" // unification depth exceeded
	ErrA006 ErrorCode = "A006" // comment hint has no element for the target
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// DiagnosticError is a positioned message produced while parsing or
// resolving annotations.
type DiagnosticError struct {
	Code     ErrorCode
	Severity Severity
	File     string
	Token    token.Token
	Message  string
}

func (e *DiagnosticError) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s[%s]: %s", file, e.Token.Line, e.Token.Column, e.Severity, e.Code, e.Message)
}

func NewError(code ErrorCode, tok token.Token, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityError, Token: tok, Message: msg}
}

func NewWarning(code ErrorCode, tok token.Token, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityWarning, Token: tok, Message: msg}
}

// Sink receives diagnostics. Reporting never interrupts the caller.
type Sink interface {
	Report(d *DiagnosticError)
}

// Warn is a shorthand for reporting a formatted warning.
func Warn(s Sink, code ErrorCode, tok token.Token, format string, args ...interface{}) {
	if s == nil {
		return
	}
	s.Report(NewWarning(code, tok, fmt.Sprintf(format, args...)))
}

type discard struct{}

func (discard) Report(*DiagnosticError) {}

// Discard drops every diagnostic.
var Discard Sink = discard{}

// Collector keeps diagnostics in memory in report order.
type Collector struct {
	mu    sync.Mutex
	items []*DiagnosticError
}

func (c *Collector) Report(d *DiagnosticError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

func (c *Collector) Diagnostics() []*DiagnosticError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*DiagnosticError, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Has reports whether a diagnostic with the given code was collected.
func (c *Collector) Has(code ErrorCode) bool {
	for _, d := range c.Diagnostics() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func (c *Collector) HasErrors() bool {
	for _, d := range c.Diagnostics() {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

type tee []Sink

func (t tee) Report(d *DiagnosticError) {
	for _, s := range t {
		s.Report(d)
	}
}

// Tee fans a diagnostic out to every sink.
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

// ColorMode selects when WriterSink uses ANSI colors.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiBold   = "\033[1m"
)

// WriterSink renders diagnostics as one line each.
type WriterSink struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
	// Quiet suppresses warnings.
	Quiet bool
}

func NewWriterSink(w io.Writer, mode ColorMode) *WriterSink {
	return &WriterSink{w: w, color: useColor(w, mode)}
}

func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s *WriterSink) Report(d *DiagnosticError) {
	if s.Quiet && d.Severity == SeverityWarning {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.color {
		fmt.Fprintln(s.w, d.Error())
		return
	}
	color := ansiRed
	if d.Severity == SeverityWarning {
		color = ansiYellow
	}
	file := d.File
	if file == "" {
		file = "<input>"
	}
	fmt.Fprintf(s.w, "%s%s:%d:%d:%s %s%s[%s]%s: %s\n",
		ansiBold, file, d.Token.Line, d.Token.Column, ansiReset,
		color, d.Severity, d.Code, ansiReset, d.Message)
}
