package logging

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Console prints short, prefixed status lines for a human at a terminal.
type Console struct {
	w       io.Writer
	info    *color.Color
	note    *color.Color
	warn    *color.Color
	success *color.Color
}

// NewConsole writes to w. Colour follows the color package's terminal
// detection and can be disabled globally with color.NoColor.
func NewConsole(w io.Writer) *Console {
	return &Console{
		w:       w,
		info:    color.New(color.FgCyan),
		note:    color.New(color.FgYellow),
		warn:    color.New(color.FgRed),
		success: color.New(color.FgGreen),
	}
}

func (c *Console) Info(format string, args ...any)    { c.line(c.info, "[i]", format, args) }
func (c *Console) Note(format string, args ...any)    { c.line(c.note, "[-]", format, args) }
func (c *Console) Warn(format string, args ...any)    { c.line(c.warn, "[!]", format, args) }
func (c *Console) Success(format string, args ...any) { c.line(c.success, "[+]", format, args) }

// Plain prints without prefix or colour.
func (c *Console) Plain(format string, args ...any) {
	fmt.Fprintf(c.w, format+"\n", args...)
}

func (c *Console) line(col *color.Color, prefix, format string, args []any) {
	col.Fprintf(c.w, prefix+format+"\n", args...)
}
