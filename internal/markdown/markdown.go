// Package markdown renders content document bodies to HTML.
package markdown

import (
	"bytes"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// converterInstance is initialized once and reused. The converter
// configuration (extensions, options) never changes and the goldmark
// instance is safe to share; actual parsing creates per-call state.
var (
	converterInstance goldmark.Markdown
	converterOnce     sync.Once
)

func getConverter() goldmark.Markdown {
	converterOnce.Do(func() {
		converterInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
					highlighting.WithFormatOptions(
						chromahtml.TabWidth(4),
					),
				),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		)
	})
	return converterInstance
}

// ToHTML converts a Markdown body (front matter already removed) to HTML.
// Raw HTML in the source passes through unchanged: content authors own
// their documents, so there is nothing to sanitize against.
func ToHTML(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := getConverter().Convert(body, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
