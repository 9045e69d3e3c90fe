package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Printer writes human readable hnvm diagnostics to a Destination
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	quiet bool

	highlight *color.Color
	warn      *color.Color
	fail      *color.Color
}

// NewPrinter creates a printer for dest. Every message, errors included, goes to dest.
func NewPrinter(dest Destination) *Printer {
	p := &Printer{
		out:       dest.Writer,
		highlight: color.New(color.FgCyan),
		warn:      color.New(color.FgYellow),
		fail:      color.New(color.FgRed),
	}
	useColor := dest.IsTerminal() && os.Getenv("NO_COLOR") == "" && os.Getenv("HNVM_NO_COLOR") != "true"
	if !useColor {
		p.highlight.DisableColor()
		p.warn.DisableColor()
		p.fail.DisableColor()
	} else {
		p.highlight.EnableColor()
		p.warn.EnableColor()
		p.fail.EnableColor()
	}
	return p
}

// SetQuiet suppresses informational messages; warnings and errors still print
func (p *Printer) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// Info prints an informational line
func (p *Printer) Info(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Highlight renders s in the highlight color when colors are enabled
func (p *Printer) Highlight(s string) string {
	return p.highlight.Sprint(s)
}

// Warn prints a warning line
func (p *Printer) Warn(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s: %s\n", p.warn.Sprint("WARNING"), fmt.Sprintf(format, args...))
}

// Error prints an error line
func (p *Printer) Error(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s: %s\n", p.fail.Sprint("ERROR"), fmt.Sprintf(format, args...))
}
