package help

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	commandStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	usageStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle     = lipgloss.NewStyle().Bold(true)
)

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.color || text == "" {
		return text
	}
	return s.Render(text)
}

func (r *Renderer) header(text string) string   { return r.style(headerStyle, text) }
func (r *Renderer) category(text string) string { return r.style(categoryStyle, text) }
func (r *Renderer) command(text string) string  { return r.style(commandStyle, text) }
func (r *Renderer) usage(text string) string    { return r.style(usageStyle, text) }
func (r *Renderer) dim(text string) string      { return r.style(dimStyle, text) }
func (r *Renderer) bold(text string) string     { return r.style(boldStyle, text) }
