package style

import (
	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders markdown documents for the terminal
type MarkdownRenderer struct {
	// Style is a glamour style name or path, "auto" detects it
	Style string
	// Width wraps output, 0 keeps glamour's default
	Width int
}

// NewMarkdownRenderer creates a renderer with auto-detected style
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{Style: "auto"}
}

// Render returns content rendered for the terminal, or content itself
// when glamour fails
func (r *MarkdownRenderer) Render(content string) string {
	var options []glamour.TermRendererOption
	if r.Style != "" && r.Style != "auto" {
		options = append(options, glamour.WithStylePath(r.Style))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
