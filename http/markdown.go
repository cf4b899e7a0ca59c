package http

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

var sanitizer = bluemonday.UGCPolicy()

// renderMarkdown converts post content to html and strips anything a
// reader-submitted document must not contain.
func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		// Fall back to the sanitized raw text.
		return sanitizer.Sanitize(content)
	}
	return sanitizer.Sanitize(buf.String())
}
