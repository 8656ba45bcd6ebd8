package parser

import "fmt"

// Severity separates verbose parser tracing from warnings about rejected lines.
type Severity int

const (
	Trace Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "trace"
}

// Diagnostic is one message about the document being parsed. Line is 1-based
// and zero when the message is not tied to a line.
type Diagnostic struct {
	Severity Severity
	File     string
	Line     int
	Message  string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s at %s line %d", d.Message, d.File, d.Line)
	}
	return d.Message
}

// Reporter receives diagnostics. The parser only decides what to report.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

type discard struct{}

func (discard) Report(Diagnostic) {}

// Collector keeps every diagnostic in memory.
type Collector struct {
	Diagnostics []Diagnostic
}

// Report appends d.
func (c *Collector) Report(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// Warnings returns only the warnings, in order.
func (c *Collector) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range c.Diagnostics {
		if d.Severity == Warning {
			out = append(out, d)
		}
	}
	return out
}
