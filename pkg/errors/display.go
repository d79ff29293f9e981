package errors

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// UnexpectedHeadline opens every unclassified error report.
const UnexpectedHeadline = "An unexpected error occurred while processing this command."

var (
	headStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	usageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	suggestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Formatter renders errors for the operator.
type Formatter struct {
	// UseColor enables styling. When false the output is plain text.
	UseColor bool

	// Writer is the output destination. Defaults to os.Stderr.
	Writer io.Writer

	// Indent is the prefix for context and suggestion lines.
	Indent string

	// Verbose adds the code and context lines to every report.
	Verbose bool
}

// DefaultFormatter returns a Formatter for standard error. Color is enabled
// if stderr is a terminal.
func DefaultFormatter() *Formatter {
	return &Formatter{
		UseColor: IsTTY(os.Stderr),
		Writer:   os.Stderr,
		Indent:   "  ",
	}
}

// IsTTY returns true if the given file is a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (f *Formatter) style(s lipgloss.Style, text string) string {
	if !f.UseColor {
		return text
	}
	return s.Render(text)
}

// Headline returns the kind-tagged first line of the report for err.
func Headline(err error) string {
	se, ok := As(err)
	if !ok {
		return UnexpectedHeadline
	}
	switch se.Kind {
	case KindValidation:
		return fmt.Sprintf("Validation Error (%s): %s", se.Argument, se.Message)
	case KindRemote:
		return fmt.Sprintf("HTTP Error (%d): %s", se.Status, se.Message)
	case KindInternal:
		return fmt.Sprintf("%s: %s", se.Label, se.Message)
	default:
		return UnexpectedHeadline
	}
}

// Format renders err as shown to the operator.
func (f *Formatter) Format(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(f.style(headStyle, Headline(err)))

	se, ok := As(err)
	if !ok || se.Kind == KindUnclassified {
		f.writeUnexpected(&sb, err, se)
	}
	if !ok {
		return sb.String()
	}

	if se.Kind == KindValidation && se.Usage != "" {
		sb.WriteString("\n\n")
		sb.WriteString(f.style(usageStyle, strings.TrimRight(se.Usage, "\n")))
	}

	if f.Verbose {
		sb.WriteString("\n")
		sb.WriteString(f.Indent)
		sb.WriteString(f.style(contextStyle, "code: "))
		sb.WriteString(se.Code)
		if se.HasContext() {
			sb.WriteString("\n")
			sb.WriteString(f.Indent)
			sb.WriteString(f.style(contextStyle, "context: "))
			sb.WriteString(se.ContextString())
		}
	}

	if se.HasSuggestions() {
		sb.WriteString("\n")
		for _, s := range se.Suggestions {
			sb.WriteString("\n")
			sb.WriteString(f.Indent)
			sb.WriteString(f.style(suggestStyle, "→ "+s))
		}
	}

	return sb.String()
}

// writeUnexpected appends the error text and, for panics, the stack.
func (f *Formatter) writeUnexpected(sb *strings.Builder, err error, se *ShellError) {
	detail := err.Error()
	if se != nil {
		detail = se.Message
		if se.Cause != nil {
			detail = se.Cause.Error()
		}
	}
	sb.WriteString("\n")
	sb.WriteString(f.Indent)
	sb.WriteString(f.style(dimStyle, detail))
	if se != nil && se.Stack != "" {
		sb.WriteString("\n\n")
		sb.WriteString(f.style(dimStyle, strings.TrimRight(se.Stack, "\n")))
	}
}

// Display writes the formatted error to the formatter's writer.
func (f *Formatter) Display(err error) {
	if err == nil {
		return
	}
	w := f.Writer
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintln(w, f.Format(err))
}
