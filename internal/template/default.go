package template

import (
	_ "embed"
	"sync"
)

//go:embed template.html
var defaultSource string

var (
	defaultTemplate *Template
	defaultOnce     sync.Once
)

// Default returns the embedded default template, parsed once. The embedded
// source is known-good, so a parse failure is a programming error.
func Default() *Template {
	defaultOnce.Do(func() {
		t, err := Parse(defaultSource, "")
		if err != nil {
			panic("embedded default template does not parse: " + err.Error())
		}
		defaultTemplate = t
	})
	return defaultTemplate
}
