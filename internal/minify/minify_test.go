package minify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

func TestMinify_LevelNo_Unchanged(t *testing.T) {
	input := "<p>  spaced   text  </p>\n\n<p>more</p>\n"
	require.Equal(t, input, Minify(input, config.MinifyNo))
}

func TestMinify_LevelYes_DropsInterTagWhitespace(t *testing.T) {
	input := "<main>\n    <p>text</p>\n    <p>more</p>\n</main>\n"
	got := Minify(input, config.MinifyYes)
	require.Equal(t, "<main><p>text</p><p>more</p></main>", got)
}

func TestMinify_LevelYes_KeepsWhitespaceInsideText(t *testing.T) {
	input := "<p>two  spaces\nand a newline</p>"
	got := Minify(input, config.MinifyYes)
	require.Equal(t, input, got)
}

func TestMinify_LevelFull_CollapsesTextWhitespace(t *testing.T) {
	input := "<p>two  spaces\nand a newline</p>"
	got := Minify(input, config.MinifyFull)
	require.Equal(t, "<p>two spaces and a newline</p>", got)
}

func TestMinify_PreContent_PreservedVerbatim(t *testing.T) {
	input := "<div>\n<pre>  indented\n   code\n</pre>\n</div>"
	got := Minify(input, config.MinifyFull)
	require.Contains(t, got, "<pre>  indented\n   code\n</pre>")
	require.NotContains(t, got, "<div>\n")
}

func TestMinify_ScriptContent_PreservedVerbatim(t *testing.T) {
	input := "<script>\nvar x = 1;\n</script>"
	require.Equal(t, input, Minify(input, config.MinifyFull))
}

func TestMinify_DoctypeAndComments_PassThrough(t *testing.T) {
	input := "<!DOCTYPE html>\n<!-- note -->\n<p>x</p>"
	got := Minify(input, config.MinifyYes)
	require.Contains(t, got, "<!DOCTYPE html>")
	require.Contains(t, got, "<!-- note -->")
}
