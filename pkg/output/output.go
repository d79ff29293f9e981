// Package output renders command results for the operator.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Printer writes result payloads as JSON or YAML. Strings are written raw.
type Printer struct {
	w      io.Writer
	format string
	color  bool
}

// NewPrinter creates a printer. Unknown formats fall back to JSON.
func NewPrinter(w io.Writer, format string, color bool) *Printer {
	if format != FormatYAML {
		format = FormatJSON
	}
	return &Printer{w: w, format: format, color: color}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Print renders v followed by a newline.
func (p *Printer) Print(v interface{}) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(p.w, s)
		return err
	}

	text, lang, err := p.render(v)
	if err != nil {
		return err
	}
	if p.color {
		text = highlight(text, lang)
	}
	_, err = fmt.Fprintln(p.w, strings.TrimRight(text, "\n"))
	return err
}

// Message writes a status line such as "Re-indexing started".
func (p *Printer) Message(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) render(v interface{}) (string, string, error) {
	if p.format == FormatYAML {
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", "", fmt.Errorf("render yaml: %w", err)
		}
		return string(data), "yaml", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", "", fmt.Errorf("render json: %w", err)
	}
	return buf.String(), "json", nil
}

// highlight colors text for a 256-color terminal, returning it unchanged
// when tokenizing fails.
func highlight(text, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return text
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return text
	}
	return sb.String()
}

// ColorEnabled resolves a color mode ("auto", "always", "never") for f.
// Auto enables color only on a terminal and when NO_COLOR is unset.
func ColorEnabled(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
