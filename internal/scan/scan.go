// Package scan walks the content tree once and classifies every entry,
// producing the site model the rest of the pipeline works from.
package scan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/template"
)

// Scan traverses the source tree with an explicit worklist (no call-stack
// recursion, arbitrarily deep trees are fine) and builds the site model.
// Any I/O failure aborts the whole scan.
func Scan(cfg *config.Config) (*site.Site, error) {
	sourceRoot, err := filepath.Abs(cfg.SourceRoot())
	if err != nil {
		return nil, sberrors.Wrap(err, sberrors.CategoryScan, sberrors.SeverityFatal,
			"cannot canonicalize source root").WithContext("path", cfg.SourceRoot())
	}
	targetRoot, err := filepath.Abs(cfg.TargetRoot())
	if err != nil {
		return nil, sberrors.Wrap(err, sberrors.CategoryScan, sberrors.SeverityFatal,
			"cannot canonicalize target root").WithContext("path", cfg.TargetRoot())
	}

	s := &site.Site{
		SourceRoot: sourceRoot,
		TargetRoot: targetRoot,
		Templates:  map[string]*template.Template{},
	}

	worklist := []string{sourceRoot}
	for len(worklist) > 0 {
		dir := worklist[0]
		worklist = worklist[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, sberrors.Wrap(err, sberrors.CategoryScan, sberrors.SeverityFatal,
				"failed to read directory").WithContext("path", dir)
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			if entry.IsDir() {
				rel, err := filepath.Rel(sourceRoot, path)
				if err != nil {
					return nil, sberrors.Wrap(err, sberrors.CategoryScan, sberrors.SeverityFatal,
						"directory escapes source root").WithContext("path", path)
				}
				s.Dirs = append(s.Dirs, rel)
				worklist = append(worklist, path)
				continue
			}

			if dir == sourceRoot {
				switch entry.Name() {
				case config.HeaderFileName:
					if s.Header, err = readFragment(path); err != nil {
						return nil, err
					}
					continue
				case config.FooterFileName:
					if s.Footer, err = readFragment(path); err != nil {
						return nil, err
					}
					continue
				case config.SiteConfigName:
					continue
				}
			}

			switch ext(entry.Name()) {
			case config.SourceFileExt:
				doc, err := site.LoadDocument(path, sourceRoot)
				if err != nil {
					return nil, sberrors.Wrap(err, sberrors.CategoryScan, sberrors.SeverityFatal,
						"failed to read content document").WithContext("path", path)
				}
				s.Documents = append(s.Documents, doc)
			case config.StyleFileExt:
				s.Stylesheets = append(s.Stylesheets, path)
				s.CopyCandidates = append(s.CopyCandidates, path)
			default:
				s.CopyCandidates = append(s.CopyCandidates, path)
			}
		}
	}

	if err := loadTemplates(s, cfg.TemplatePath); err != nil {
		return nil, err
	}
	claimAssets(s)
	pruneCopyCandidates(s)

	slog.Info("Scan complete",
		slog.Int("documents", len(s.Documents)),
		slog.Int("templates", len(s.Templates)),
		slog.Int("stylesheets", len(s.Stylesheets)),
		slog.Int("copy_candidates", len(s.CopyCandidates)))
	return s, nil
}

func readFragment(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", sberrors.Wrap(err, sberrors.CategoryScan, sberrors.SeverityFatal,
			"failed to read fragment").WithContext("path", path)
	}
	return string(data), nil
}

// loadTemplates parses every referenced template exactly once, keyed by
// canonical path. The "" key holds the default template: the configured
// override when given, the embedded one otherwise. A parse failure names
// the template and every document referencing it, and fails the run.
func loadTemplates(s *site.Site, defaultPath string) error {
	referencing := map[string][]string{}
	for _, doc := range s.Documents {
		if doc.TemplatePath != "" {
			referencing[doc.TemplatePath] = append(referencing[doc.TemplatePath], doc.Source)
		}
	}

	if defaultPath == "" {
		s.Templates[""] = template.Default()
	} else {
		canonical, err := filepath.Abs(defaultPath)
		if err != nil {
			return sberrors.Wrap(err, sberrors.CategoryTemplate, sberrors.SeverityFatal,
				"cannot canonicalize default template path").WithContext("path", defaultPath)
		}
		t, err := parseTemplateFile(canonical, nil)
		if err != nil {
			return err
		}
		s.Templates[""] = t
		s.Templates[canonical] = t
	}

	paths := make([]string, 0, len(referencing))
	for p := range referencing {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if _, done := s.Templates[path]; done {
			continue
		}
		t, err := parseTemplateFile(path, referencing[path])
		if err != nil {
			return err
		}
		s.Templates[path] = t
	}
	return nil
}

func parseTemplateFile(path string, affectedDocs []string) (*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sberrors.Wrap(err, sberrors.CategoryTemplate, sberrors.SeverityFatal,
			"failed to read template").WithContext("path", path).
			WithContext("documents", affectedDocs)
	}
	t, err := template.Parse(string(data), path)
	if err != nil {
		return nil, sberrors.Wrap(err, sberrors.CategoryTemplate, sberrors.SeverityFatal,
			fmt.Sprintf("template invalid for %d referencing document(s)", len(affectedDocs))).
			WithContext("path", path).WithContext("documents", affectedDocs)
	}
	slog.Debug("Parsed template", logfields.Template(path), slog.Int("documents", len(affectedDocs)))
	return t, nil
}

// claimAssets attaches to each document the non-content files sharing its
// directory, except style sheets (linked, not inlined), templates (they
// render, they do not copy) and documents in the content root (root files
// mirror instead of duplicating into every page).
func claimAssets(s *site.Site) {
	byDir := map[string][]string{}
	for _, path := range s.CopyCandidates {
		if ext(filepath.Base(path)) == config.StyleFileExt {
			continue
		}
		if _, isTemplate := s.Templates[path]; isTemplate {
			continue
		}
		dir := filepath.Dir(path)
		byDir[dir] = append(byDir[dir], path)
	}

	for _, doc := range s.Documents {
		if doc.RelDir == "" {
			continue
		}
		doc.Assets = append(doc.Assets, byDir[filepath.Dir(doc.Source)]...)
	}
}

// pruneCopyCandidates removes template-classified paths and claimed assets
// from the copy list. Templates render, they do not copy.
func pruneCopyCandidates(s *site.Site) {
	drop := map[string]bool{}
	for path := range s.Templates {
		if path != "" {
			drop[path] = true
		}
	}
	for _, doc := range s.Documents {
		for _, asset := range doc.Assets {
			drop[asset] = true
		}
	}

	kept := s.CopyCandidates[:0]
	for _, path := range s.CopyCandidates {
		if !drop[path] {
			kept = append(kept, path)
		}
	}
	s.CopyCandidates = kept
}

func ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
