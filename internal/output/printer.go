// Package output formats non-interactive command output.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Printer writes status lines to stdout and problems to stderr.
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// UseColors reports whether the environment wants colored output.
func UseColors() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return !color.NoColor
}

func NewPrinter(useColors bool) *Printer {
	return NewPrinterWithWriters(os.Stdout, os.Stderr, useColors)
}

func NewPrinterWithWriters(out, err io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: err, useColors: useColors}
}

func (p *Printer) Out() io.Writer { return p.out }

func (p *Printer) Info(format string, args ...any) {
	p.line(p.out, color.FgCyan, "", format, args...)
}

func (p *Printer) Success(format string, args ...any) {
	if p.useColors {
		p.line(p.out, color.FgGreen, "✓ ", format, args...)
		return
	}
	p.line(p.out, 0, "[OK] ", format, args...)
}

func (p *Printer) Warning(format string, args ...any) {
	if p.useColors {
		p.line(p.err, color.FgYellow, "⚠ ", format, args...)
		return
	}
	p.line(p.err, 0, "[WARN] ", format, args...)
}

func (p *Printer) Error(format string, args ...any) {
	if p.useColors {
		p.line(p.err, color.FgRed, "✗ ", format, args...)
		return
	}
	p.line(p.err, 0, "[ERROR] ", format, args...)
}

func (p *Printer) Print(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Header prints an underlined section title.
func (p *Printer) Header(title string) {
	if p.useColors {
		color.New(color.FgWhite, color.Bold).Fprintf(p.out, "\n%s\n", title)
		color.New(color.FgWhite).Fprintf(p.out, "%s\n", strings.Repeat("─", len(title)))
		return
	}
	fmt.Fprintf(p.out, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

func (p *Printer) Dim(text string) string {
	if p.useColors {
		return color.New(color.Faint).Sprint(text)
	}
	return text
}

func (p *Printer) line(w io.Writer, attr color.Attribute, prefix, format string, args ...any) {
	if p.useColors && attr != 0 {
		c := color.New(attr)
		c.EnableColor()
		c.Fprintf(w, prefix+format+"\n", args...)
		return
	}
	fmt.Fprintf(w, prefix+format+"\n", args...)
}
