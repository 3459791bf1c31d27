package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer styles task descriptions for the info overlay. The
// glamour renderer is wrap-width specific, so it is rebuilt lazily
// whenever the overlay width changes.
type markdownRenderer struct {
	wrap int
	term *glamour.TermRenderer
}

// render returns ANSI-styled text for the given markdown, wrapped to
// width. On any renderer failure the raw markdown is returned as-is.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	if width < 24 {
		width = 24
	}

	if r.term == nil || r.wrap != width {
		term, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return markdown
		}
		r.term = term
		r.wrap = width
	}

	out, err := r.term.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}
