// Package site holds the fully scanned representation of one content tree:
// parsed documents, deduplicated templates, discovered assets and style
// sheets, ready for rendering.
package site

import (
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/template"
)

// Site is the parsed model of one source tree. It is built by the scanner
// and not mutated afterwards.
type Site struct {
	SourceRoot string
	TargetRoot string

	Documents []*Document

	// Templates maps canonical template path to its single parse. The ""
	// key holds the embedded default template.
	Templates map[string]*template.Template

	// Dirs lists directories relative to the source root that must exist
	// under the target root, in discovery order (parents before children).
	Dirs []string

	// CopyCandidates are absolute source paths mirrored into the target
	// tree. Never contains a path classified as template or document.
	CopyCandidates []string

	// Stylesheets are absolute source paths of .css files, in discovery
	// order. Each is also a copy candidate.
	Stylesheets []string

	// Optional raw HTML fragments wrapped around every rendered body.
	Header string
	Footer string
}

// Template returns the parsed template for a document, falling back to the
// embedded default when the document declares none.
func (s *Site) Template(doc *Document) *template.Template {
	if t, ok := s.Templates[doc.TemplatePath]; ok {
		return t
	}
	return s.Templates[""]
}

// SiblingStylesheets returns the style sheets applying to a document: those
// in its own directory and in any ancestor directory up to the source root.
func (s *Site) SiblingStylesheets(doc *Document) []string {
	docDir := filepath.Dir(doc.Source)
	var out []string
	for _, css := range s.Stylesheets {
		cssDir := filepath.Dir(css)
		if isAncestorOrSelf(cssDir, docDir) {
			out = append(out, css)
		}
	}
	return out
}

func isAncestorOrSelf(dir, of string) bool {
	rel, err := filepath.Rel(dir, of)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !filepath.IsAbs(rel) && !hasDotDotPrefix(rel))
}

func hasDotDotPrefix(rel string) bool {
	return rel == ".." || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
