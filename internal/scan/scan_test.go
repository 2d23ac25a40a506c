package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// writeTree creates a content tree under a fresh root and returns the config.
func writeTree(t *testing.T, files map[string]string) *config.Config {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, config.SourceDirName, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	cfg := &config.Config{Root: root}
	cfg.Resolve()
	return cfg
}

func TestScan_MissingSourceRoot_FatalScanError(t *testing.T) {
	cfg := &config.Config{Root: t.TempDir()}
	cfg.Resolve()

	_, err := Scan(cfg)
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryScan))
}

func TestScan_ClassifiesEntriesByExtension(t *testing.T) {
	cfg := writeTree(t, map[string]string{
		"post.md":    "+++\ntitle = Post\n+++\nbody",
		"style.css":  "body {}",
		"photo.jpg":  "jpegbytes",
		"blog/a.md":  "body a",
		"blog/b.jpg": "jpegbytes",
	})

	s, err := Scan(cfg)
	require.NoError(t, err)

	require.Len(t, s.Documents, 2)
	require.Equal(t, []string{"blog"}, s.Dirs)
	require.Len(t, s.Stylesheets, 1)

	// style.css and photo.jpg mirror; blog/b.jpg is claimed by blog/a.md.
	var names []string
	for _, c := range s.CopyCandidates {
		names = append(names, filepath.Base(c))
	}
	require.ElementsMatch(t, []string{"style.css", "photo.jpg"}, names)
}

func TestScan_ExtensionMatchingIsCaseInsensitive(t *testing.T) {
	cfg := writeTree(t, map[string]string{
		"POST.MD":   "upper body",
		"THEME.CSS": "body {}",
	})

	s, err := Scan(cfg)
	require.NoError(t, err)
	require.Len(t, s.Documents, 1)
	require.Len(t, s.Stylesheets, 1)
}

func TestScan_HeaderFooterFragments_LoadedNotCopied(t *testing.T) {
	cfg := writeTree(t, map[string]string{
		"header.html": "<nav>top</nav>",
		"footer.html": "<footer>end</footer>",
		"post.md":     "body",
	})

	s, err := Scan(cfg)
	require.NoError(t, err)
	require.Equal(t, "<nav>top</nav>", s.Header)
	require.Equal(t, "<footer>end</footer>", s.Footer)
	require.Empty(t, s.CopyCandidates)
}

func TestScan_SubdirectoryAssets_ClaimedByDocument(t *testing.T) {
	cfg := writeTree(t, map[string]string{
		"trip/report.md": "we went places",
		"trip/photo.jpg": "jpegbytes",
		"trip/map.svg":   "<svg/>",
		"trip/local.css": "body {}",
	})

	s, err := Scan(cfg)
	require.NoError(t, err)
	require.Len(t, s.Documents, 1)

	var assets []string
	for _, a := range s.Documents[0].Assets {
		assets = append(assets, filepath.Base(a))
	}
	require.ElementsMatch(t, []string{"photo.jpg", "map.svg"}, assets)

	// The style sheet is linked, not claimed: it stays a copy candidate.
	var copies []string
	for _, c := range s.CopyCandidates {
		copies = append(copies, filepath.Base(c))
	}
	require.ElementsMatch(t, []string{"local.css"}, copies)
}

func TestScan_SubdirectoryLocalTemplate_NotClaimedAsAsset(t *testing.T) {
	cfg := writeTree(t, map[string]string{
		"blog/post.md":     "+++\ntemplate = layout.html\n+++\nbody",
		"blog/layout.html": "<!--P/contents/P-->",
		"blog/photo.jpg":   "jpegbytes",
	})

	s, err := Scan(cfg)
	require.NoError(t, err)
	require.Len(t, s.Documents, 1)

	// The template renders; only the photo travels with the document.
	var assets []string
	for _, a := range s.Documents[0].Assets {
		assets = append(assets, filepath.Base(a))
	}
	require.ElementsMatch(t, []string{"photo.jpg"}, assets)
	require.Empty(t, s.CopyCandidates)
}

func TestScan_SharedTemplate_ParsedOnceAndNotCopied(t *testing.T) {
	cfg := writeTree(t, map[string]string{
		"a.md":      "+++\ntemplate = page.html\n+++\nA",
		"b.md":      "+++\ntemplate = /page.html\n+++\nB",
		"page.html": "<!--P/contents/P-->",
	})

	s, err := Scan(cfg)
	require.NoError(t, err)

	// One parse for both referencing documents, plus the embedded default.
	require.Len(t, s.Templates, 2)
	require.Equal(t, s.Documents[0].TemplatePath, s.Documents[1].TemplatePath)
	require.Same(t, s.Template(s.Documents[0]), s.Template(s.Documents[1]))
	require.Empty(t, s.CopyCandidates)
}

func TestScan_InvalidTemplate_FailsRunNamingDocuments(t *testing.T) {
	cfg := writeTree(t, map[string]string{
		"a.md":        "+++\ntemplate = broken.html\n+++\nA",
		"broken.html": "<!--P/contents",
	})

	_, err := Scan(cfg)
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryTemplate))

	var be *sberrors.BuildError
	require.ErrorAs(t, err, &be)
	docs, ok := be.Context["documents"].([]string)
	require.True(t, ok)
	require.Len(t, docs, 1)
	require.Equal(t, "a.md", filepath.Base(docs[0]))
}

func TestScan_MissingReferencedTemplate_Fatal(t *testing.T) {
	cfg := writeTree(t, map[string]string{
		"a.md": "+++\ntemplate = absent.html\n+++\nA",
	})

	_, err := Scan(cfg)
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryTemplate))
}

func TestScan_ConfiguredDefaultTemplate_ReplacesEmbedded(t *testing.T) {
	cfg := writeTree(t, map[string]string{
		"a.md": "plain body",
	})
	override := filepath.Join(t.TempDir(), "default.html")
	require.NoError(t, os.WriteFile(override, []byte("<!--P/contents/P-->"), 0o644))
	cfg.TemplatePath = override

	s, err := Scan(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, s.Templates[""].Path)
	require.Same(t, s.Templates[""], s.Template(s.Documents[0]))
}

func TestScan_DeepTree_NoRecursionLimit(t *testing.T) {
	dir := ""
	for i := 0; i < 60; i++ {
		dir = filepath.Join(dir, "d")
	}
	cfg := writeTree(t, map[string]string{
		filepath.Join(dir, "leaf.md"): "deep body",
	})

	s, err := Scan(cfg)
	require.NoError(t, err)
	require.Len(t, s.Documents, 1)
	require.Len(t, s.Dirs, 60)
}
