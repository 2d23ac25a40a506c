package plan

import (
	"path/filepath"
	"sort"
	"strings"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// The fixed HTML shell wrapped around every rendered document body.
const (
	htmlStart = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8" />
</head>
<body>
    <main>
`
	htmlEnd = `    </main>
</body>
`
)

// Options tunes planning output.
type Options struct {
	// PageName is the generated file name inside each document directory,
	// e.g. "index.html".
	PageName string

	// Filter post-processes every composed page (minification). Nil means
	// identity.
	Filter func(string) string

	// Extra are additional generated files (feeds), keyed by path relative
	// to the target root.
	Extra map[string]string
}

// Plan turns the site model into the ordered action sequence. rendered maps
// each document's source path to its rendered body. Per document the block
// is DeleteDir, CreateDir, WriteFile, then one Copy per co-located asset;
// document blocks are contiguous. Mirror directories come first, mirror
// copies and extra files last.
func Plan(s *site.Site, rendered map[string]string, opts Options) ([]FsAction, error) {
	if opts.PageName == "" {
		opts.PageName = "index.html"
	}

	var actions []FsAction

	mirrorDirs := make(map[string]bool, len(s.Dirs))
	for _, dir := range s.Dirs {
		mirrorDirs[dir] = true
		actions = append(actions, CreateDir(filepath.Join(s.TargetRoot, dir), true))
	}

	for _, doc := range s.Documents {
		body, ok := rendered[doc.Source]
		if !ok {
			return nil, sberrors.New(sberrors.CategoryPlan, sberrors.SeverityFatal,
				"document has no rendered content").WithContext("document", doc.Source)
		}

		// A stem matching a sibling source directory would make the
		// document's delete-and-recreate block destroy that mirror subtree.
		if rel := filepath.Join(doc.RelDir, doc.Stem()); mirrorDirs[rel] {
			return nil, sberrors.New(sberrors.CategoryPlan, sberrors.SeverityFatal,
				"document stem collides with a source directory of the same name").
				WithContext("document", doc.Source).WithContext("directory", rel)
		}

		destDir := doc.DestDir(s.TargetRoot)
		actions = append(actions,
			DeleteDir(destDir, true, true),
			CreateDir(destDir, false),
		)

		content := htmlStart + s.Header + body + s.Footer + htmlEnd
		if opts.Filter != nil {
			content = opts.Filter(content)
		}
		actions = append(actions, WriteFile(filepath.Join(destDir, opts.PageName), content))

		for _, asset := range doc.Assets {
			actions = append(actions, Copy(asset, filepath.Join(destDir, filepath.Base(asset))))
		}
	}

	for _, src := range s.CopyCandidates {
		rel, err := filepath.Rel(s.SourceRoot, src)
		if err != nil {
			return nil, sberrors.Wrap(err, sberrors.CategoryPlan, sberrors.SeverityFatal,
				"copy candidate outside source root").WithContext("path", src)
		}
		actions = append(actions, Copy(src, filepath.Join(s.TargetRoot, rel)))
	}

	for _, rel := range sortedExtraPaths(opts.Extra) {
		actions = append(actions, WriteFile(filepath.Join(s.TargetRoot, rel), opts.Extra[rel]))
	}

	if err := validate(s, actions); err != nil {
		return nil, err
	}
	return actions, nil
}

// validate enforces the path invariant: reads stay inside the source root,
// writes stay inside the target root.
func validate(s *site.Site, actions []FsAction) error {
	for _, a := range actions {
		if a.Kind == ActionCopy && !within(s.SourceRoot, a.Source) {
			return invariantError(a, "copy source escapes the source root")
		}
		if !within(s.TargetRoot, a.Path) {
			return invariantError(a, "action path escapes the target root")
		}
	}
	return nil
}

func invariantError(a FsAction, message string) error {
	return sberrors.New(sberrors.CategoryPlan, sberrors.SeverityFatal, message).
		WithContext("action", a.String())
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func sortedExtraPaths(extra map[string]string) []string {
	if len(extra) == 0 {
		return nil
	}
	paths := make([]string, 0, len(extra))
	for p := range extra {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
