package frontmatter

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// Title returns the declared title, if any.
func (m Metadata) Title() (string, bool) {
	v, ok := m[config.MetaKeyTitle]
	return v, ok && v != ""
}

// Category returns the declared category, if any.
func (m Metadata) Category() (string, bool) {
	v, ok := m[config.MetaKeyCategory]
	return v, ok && v != ""
}

// Created returns the declared creation date string, if any.
func (m Metadata) Created() (string, bool) {
	v, ok := m[config.MetaKeyCreated]
	return v, ok && v != ""
}

// Updated returns the declared modification date string, if any.
func (m Metadata) Updated() (string, bool) {
	v, ok := m[config.MetaKeyUpdated]
	return v, ok && v != ""
}

// Tags returns the declared tags, comma-split and trimmed. Empty entries
// are dropped so `tags = a, , b` yields ["a", "b"].
func (m Metadata) Tags() []string {
	raw, ok := m[config.MetaKeyTags]
	if !ok {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, config.MetaTagSeparator) {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// TemplateRef resolves the declared template path. A leading `/` is
// root-relative to the source root; anything else is relative to the
// directory of the referencing document. Returns "" when no template is
// declared.
func (m Metadata) TemplateRef(docDir, sourceRoot string) string {
	ref, ok := m[config.MetaKeyTemplate]
	if !ok || ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "/") {
		return filepath.Join(sourceRoot, ref[1:])
	}
	return filepath.Join(docDir, ref)
}
