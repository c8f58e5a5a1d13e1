package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the preview word-wrap width.
const DefaultWidth = 80

// Preview renders Markdown for a terminal. style is a glamour style name
// ("dark", "light", "notty", ...); empty picks one from the terminal
// background.
func Preview(markdown []byte, style string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStylePath(style)
	}

	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("preview: %w", err)
	}
	out, err := r.RenderBytes(markdown)
	if err != nil {
		return "", fmt.Errorf("preview: %w", err)
	}
	return string(out), nil
}
