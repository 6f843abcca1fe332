// Package console writes user-facing command output.
//
// Diagnostics go through internal/logging to stderr; everything a user is
// meant to read goes through a Printer.
package console

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// Printer renders status lines, fields and tables.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	plain  bool
}

// New returns a Printer writing results to out and failures to errOut.
// With colors false every line is plain text; otherwise fatih/color decides
// based on the terminal.
func New(out, errOut io.Writer, colors bool) *Printer {
	return &Printer{out: out, errOut: errOut, plain: !colors}
}

func (p *Printer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.plain {
		c.DisableColor()
	}
	return c
}

// Success prints a line prefixed with a check mark.
func (p *Printer) Success(format string, args ...any) {
	p.paint(color.FgGreen).Fprintln(p.out, "✅ "+fmt.Sprintf(format, args...))
}

// Info prints an unadorned line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Warn prints a warning line to the error writer.
func (p *Printer) Warn(format string, args ...any) {
	p.paint(color.FgYellow).Fprintln(p.errOut, "⚠️  "+fmt.Sprintf(format, args...))
}

// Fail prints a failure line to the error writer.
func (p *Printer) Fail(format string, args ...any) {
	p.paint(color.FgRed).Fprintln(p.errOut, "❌ "+fmt.Sprintf(format, args...))
}

// Heading prints a bold line.
func (p *Printer) Heading(format string, args ...any) {
	p.paint(color.Bold).Fprintln(p.out, fmt.Sprintf(format, args...))
}

// Field prints "label: value", dimming empty values.
func (p *Printer) Field(label, value string) {
	name := p.paint(color.FgCyan).Sprintf("%-20s", label+":")
	if value == "" {
		value = p.paint(color.FgHiBlack).Sprint("(none)")
	}
	fmt.Fprintf(p.out, "%s %s\n", name, value)
}

// Block prints a titled multi-line value.
func (p *Printer) Block(title, body string) {
	p.paint(color.FgCyan).Fprintln(p.out, title+":")
	if strings.TrimSpace(body) == "" {
		p.paint(color.FgHiBlack).Fprintln(p.out, "  (none)")
		return
	}
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		fmt.Fprintln(p.out, "  "+line)
	}
}

// Table prints rows aligned under upper-cased headers.
func (p *Printer) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(headers, "\t")))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}
