package style

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type markupTag struct {
	style   lipgloss.Style
	pattern *regexp.Regexp
}

// MarkupParser renders [tag]text[/tag] markup with lipgloss styles
type MarkupParser struct {
	tags map[string]markupTag
}

// NewMarkupParser creates a parser with the default tags
func NewMarkupParser() *MarkupParser {
	p := &MarkupParser{tags: map[string]markupTag{}}
	for tag, s := range map[string]lipgloss.Style{
		"title":     TitleStyle,
		"subtitle":  SubtitleStyle,
		"success":   SuccessStyle,
		"error":     ErrorStyle,
		"warning":   WarningStyle,
		"info":      InfoStyle,
		"code":      CodeStyle,
		"path":      PathStyle,
		"muted":     MutedStyle,
		"bold":      lipgloss.NewStyle().Bold(true),
		"italic":    lipgloss.NewStyle().Italic(true),
		"underline": lipgloss.NewStyle().Underline(true),

		// Package state tags
		"staged":  StagedStyle,
		"backup":  BackupStyle,
		"patched": PatchedStyle,
		"changed": ChangedStyle,
	} {
		p.AddStyle(tag, s)
	}
	return p
}

// AddStyle registers or replaces a tag
func (p *MarkupParser) AddStyle(tag string, s lipgloss.Style) {
	p.tags[tag] = markupTag{
		style:   s,
		pattern: regexp.MustCompile(`\[` + regexp.QuoteMeta(tag) + `\](.*?)\[/` + regexp.QuoteMeta(tag) + `\]`),
	}
}

// Render replaces every tag pair with its styled content. Nested tags
// are resolved innermost first by repeating until nothing changes.
func (p *MarkupParser) Render(text string) string {
	for {
		before := text
		for _, tag := range p.tags {
			text = tag.pattern.ReplaceAllStringFunc(text, func(match string) string {
				sub := tag.pattern.FindStringSubmatch(match)
				return tag.style.Render(sub[1])
			})
		}
		if text == before {
			return text
		}
	}
}

// RenderTemplate substitutes {{key}} placeholders, then renders markup
func (p *MarkupParser) RenderTemplate(template string, vars map[string]string) string {
	for key, value := range vars {
		template = strings.ReplaceAll(template, "{{"+key+"}}", value)
	}
	return p.Render(template)
}

var defaultParser = NewMarkupParser()

// Render renders markup with the default parser
func Render(text string) string {
	return defaultParser.Render(text)
}

// RenderTemplate renders a template with the default parser
func RenderTemplate(template string, vars map[string]string) string {
	return defaultParser.RenderTemplate(template, vars)
}
