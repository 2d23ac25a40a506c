package site

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Document is one parsed content document. It is created at scan time and
// immutable afterwards; the Site model owns it.
type Document struct {
	Source       string // absolute source path
	RelDir       string // directory relative to the source root, "" for root documents
	Title        string
	Created      time.Time
	Updated      time.Time
	Category     string
	Tags         []string
	TemplatePath string // canonical template path, "" means the embedded default
	Meta         frontmatter.Metadata
	BodyOffset   int
	Content      []byte
	Assets       []string // absolute paths of co-located assets
}

// LoadDocument reads and parses a content document. Front matter issues
// degrade the document (logged, parsing continues); only the read itself
// can fail.
func LoadDocument(path, sourceRoot string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	meta, offset, issues := frontmatter.Parse(string(content))
	for _, issue := range issues {
		slog.Warn("Front matter issue", logfields.Document(path),
			slog.Int("line", issue.Line), slog.String("detail", issue.Message))
	}

	doc := &Document{
		Source:     path,
		Meta:       meta,
		BodyOffset: offset,
		Content:    content,
	}

	if rel, err := filepath.Rel(sourceRoot, filepath.Dir(path)); err == nil && rel != "." {
		doc.RelDir = rel
	}

	if title, ok := meta.Title(); ok {
		doc.Title = title
	} else {
		doc.Title = doc.Stem()
	}

	created, _ := meta.Created()
	doc.Created = frontmatter.ResolveDate(path, frontmatter.DateCreated, created)
	updated, _ := meta.Updated()
	doc.Updated = frontmatter.ResolveDate(path, frontmatter.DateModified, updated)

	if category, ok := meta.Category(); ok {
		doc.Category = category
	}
	doc.Tags = meta.Tags()

	if ref := meta.TemplateRef(filepath.Dir(path), sourceRoot); ref != "" {
		canonical, err := filepath.Abs(filepath.Clean(ref))
		if err != nil {
			slog.Warn("Cannot canonicalize template reference, ignoring",
				logfields.Document(path), logfields.Template(ref), logfields.Error(err))
		} else {
			doc.TemplatePath = canonical
		}
	}

	return doc, nil
}

// Stem returns the source file name without its extension.
func (d *Document) Stem() string {
	base := filepath.Base(d.Source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Body returns the document text after the front matter block.
func (d *Document) Body() []byte {
	return d.Content[d.BodyOffset:]
}

// DestDir returns the destination subdirectory for the document's rendered
// page and copied assets. Documents map to disjoint subdirectories named
// after the source stem, mirroring the source directory layout.
func (d *Document) DestDir(targetRoot string) string {
	return filepath.Join(targetRoot, d.RelDir, d.Stem())
}
