// Package minify strips redundant whitespace from generated HTML. It works
// on the token stream, so element structure is never altered and the
// contents of pre, textarea, script and style are preserved verbatim.
package minify

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

var spaceRun = regexp.MustCompile(`[ \t\r\n]+`)

// rawElements are elements whose text content is significant as written.
var rawElements = map[string]bool{
	"pre":      true,
	"code":     true,
	"textarea": true,
	"script":   true,
	"style":    true,
}

// Minify reduces whitespace in an HTML document according to the level:
// "no" returns the input unchanged, "yes" drops whitespace-only text
// between tags, "full" additionally collapses whitespace runs inside text
// to a single space. Input that fails to tokenize is returned unchanged;
// minification never fails a build.
func Minify(input string, level config.MinifyLevel) string {
	if level == config.MinifyNo {
		return input
	}

	z := html.NewTokenizer(strings.NewReader(input))
	var b strings.Builder
	b.Grow(len(input))
	rawDepth := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return b.String()
			}
			return input

		case html.TextToken:
			text := string(z.Raw())
			switch {
			case rawDepth > 0:
				b.WriteString(text)
			case strings.TrimSpace(text) == "":
				// inter-tag whitespace, dropped
			case level == config.MinifyFull:
				b.WriteString(spaceRun.ReplaceAllString(text, " "))
			default:
				b.WriteString(text)
			}

		case html.StartTagToken:
			if name, _ := z.TagName(); rawElements[string(name)] {
				rawDepth++
			}
			b.Write(z.Raw())

		case html.EndTagToken:
			if name, _ := z.TagName(); rawElements[string(name)] && rawDepth > 0 {
				rawDepth--
			}
			b.Write(z.Raw())

		default:
			b.Write(z.Raw())
		}
	}
}
