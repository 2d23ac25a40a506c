// Package feed builds Atom documents for the generated site: one feed over
// all documents plus one per category.
package feed

import (
	"encoding/xml"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

const (
	atomNamespace = "http://www.w3.org/2005/Atom"
	contentType   = "html"
	selfRel       = "self"
	feedMIMEType  = "application/atom+xml"
)

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Xmlns   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Author  *atomAuthor `xml:"author,omitempty"`
	Link    atomLink    `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
	Href string `xml:"href,attr"`
}

type atomEntry struct {
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Content atomContent `xml:"content"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

// Options configures feed generation.
type Options struct {
	Title   string // site title; defaults to "feed" when empty
	BaseURL string // absolute URL prefix for entry ids; relative ids when empty
	Author  string
	Ext     string // feed file extension, without the dot
}

// Build produces the feed files for a site, keyed by path relative to the
// target root: feed.<ext> over every document and feed-<category>.<ext> per
// category. rendered maps document source paths to their rendered bodies,
// reused as entry content. Documents are ordered by creation date, newest
// first.
func Build(s *site.Site, rendered map[string]string, opts Options) (map[string]string, error) {
	if len(s.Documents) == 0 {
		return nil, nil
	}
	if opts.Title == "" {
		opts.Title = "feed"
	}

	files := map[string]string{}

	rootName := "feed." + opts.Ext
	content, err := render(s.Documents, rendered, s, opts, opts.Title, rootName)
	if err != nil {
		return nil, err
	}
	files[rootName] = content

	for _, category := range categories(s.Documents) {
		var docs []*site.Document
		for _, doc := range s.Documents {
			if doc.Category == category {
				docs = append(docs, doc)
			}
		}
		name := fmt.Sprintf("feed-%s.%s", category, opts.Ext)
		content, err := render(docs, rendered, s, opts, opts.Title+": "+category, name)
		if err != nil {
			return nil, err
		}
		files[name] = content
	}

	return files, nil
}

func render(docs []*site.Document, rendered map[string]string, s *site.Site, opts Options, title, fileName string) (string, error) {
	ordered := make([]*site.Document, len(docs))
	copy(ordered, docs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Created.After(ordered[j].Created)
	})

	feed := atomFeed{
		Xmlns:   atomNamespace,
		Title:   title,
		ID:      opts.BaseURL + "/" + fileName,
		Updated: newest(ordered).Format(time.RFC3339),
		Link:    atomLink{Rel: selfRel, Type: feedMIMEType, Href: opts.BaseURL + "/" + fileName},
	}
	if opts.Author != "" {
		feed.Author = &atomAuthor{Name: opts.Author}
	}

	for _, doc := range ordered {
		pageURL := opts.BaseURL + "/" + slashPath(doc.RelDir, doc.Stem()) + "/"
		feed.Entries = append(feed.Entries, atomEntry{
			Title:   doc.Title,
			ID:      pageURL,
			Updated: doc.Updated.Format(time.RFC3339),
			Content: atomContent{Type: contentType, Body: rendered[doc.Source]},
		})
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", err
	}
	return xml.Header + string(out) + "\n", nil
}

func newest(docs []*site.Document) time.Time {
	var latest time.Time
	for _, doc := range docs {
		if doc.Updated.After(latest) {
			latest = doc.Updated
		}
	}
	return latest
}

func categories(docs []*site.Document) []string {
	seen := map[string]bool{}
	var out []string
	for _, doc := range docs {
		if doc.Category != "" && !seen[doc.Category] {
			seen[doc.Category] = true
			out = append(out, doc.Category)
		}
	}
	sort.Strings(out)
	return out
}

// slashPath joins a relative directory and stem into a URL path segment.
func slashPath(relDir, stem string) string {
	if relDir == "" {
		return stem
	}
	return path.Join(strings.ReplaceAll(relDir, "\\", "/"), stem)
}
