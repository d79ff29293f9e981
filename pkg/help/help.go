// Package help renders the command listing and per-command usage shown by
// the interactive shell.
//
// The shell owns the command registry; this package only knows the
// documentation fields of each command (an Entry). The listing is grouped by
// category in a fixed order:
//
//	renderer := help.NewRenderer(os.Stdout, true)
//	renderer.RenderList("user-admin", entries)
//	renderer.RenderCommand(entry)
//
// Unknown command names can be matched against the visible commands with
// Suggest, which picks the closest name by edit distance.
package help

import (
	"io"
	"strings"
)

// Box drawing characters used for category rules.
const (
	BoxHorizontal = "─"
	BoxVertical   = "│"
	BoxTeeLeft    = "├"
)

// Entry is the documentation of one command.
type Entry struct {
	Name     string
	Summary  string
	Usage    string
	Category Category
}

// Renderer formats and writes help output.
type Renderer struct {
	w     io.Writer
	color bool
}

// NewRenderer creates a renderer that writes to w. Styling is applied only
// when color is true.
func NewRenderer(w io.Writer, color bool) *Renderer {
	return &Renderer{w: w, color: color}
}

// PadRight pads s with spaces to width visible characters.
func PadRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
