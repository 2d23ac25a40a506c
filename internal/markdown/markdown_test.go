package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToHTML_Paragraph_RendersParagraphTag(t *testing.T) {
	out, err := ToHTML([]byte("A test post"))
	require.NoError(t, err)
	require.Contains(t, out, "<p>A test post</p>")
}

func TestToHTML_Heading_RendersHeadingTag(t *testing.T) {
	out, err := ToHTML([]byte("# Hello\n\nworld"))
	require.NoError(t, err)
	require.Contains(t, out, "<h1>Hello</h1>")
	require.Contains(t, out, "<p>world</p>")
}

func TestToHTML_GFMTable_Rendered(t *testing.T) {
	src := "| a | b |\n|---|---|\n| 1 | 2 |\n"
	out, err := ToHTML([]byte(src))
	require.NoError(t, err)
	require.Contains(t, out, "<table>")
}

func TestToHTML_FencedCode_Highlighted(t *testing.T) {
	src := "```go\npackage main\n```\n"
	out, err := ToHTML([]byte(src))
	require.NoError(t, err)
	// Chroma emits a styled pre block instead of a bare code fence.
	require.Contains(t, out, "<pre")
	require.NotContains(t, out, "```")
}

func TestToHTML_RawHTML_PassesThrough(t *testing.T) {
	out, err := ToHTML([]byte("text <em class=\"x\">kept</em>"))
	require.NoError(t, err)
	require.Contains(t, out, "<em class=\"x\">kept</em>")
}
