package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts raw comment Markdown to HTML. Rendering happens at
// read time only; stored comments always hold the Markdown source.
type Renderer interface {
	Render(markdown string) (string, error)
}

// MarkdownRenderer renders comment bodies with goldmark
type MarkdownRenderer struct {
	md goldmark.Markdown
}

// NewMarkdownRenderer creates a goldmark-backed renderer with GFM
// extensions enabled
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

// Render converts Markdown source to HTML
func (r *MarkdownRenderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render comment body: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
