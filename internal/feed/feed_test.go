package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func feedSite() (*site.Site, map[string]string) {
	docs := []*site.Document{
		{Source: "/c/old.md", Title: "Old", Created: day(2020, 1, 1), Updated: day(2020, 1, 2), Category: "life"},
		{Source: "/c/new.md", Title: "New", Created: day(2022, 6, 1), Updated: day(2022, 6, 2)},
	}
	rendered := map[string]string{
		"/c/old.md": "<p>old body</p>",
		"/c/new.md": "<p>new body</p>",
	}
	return &site.Site{SourceRoot: "/c", TargetRoot: "/d", Documents: docs}, rendered
}

func TestBuild_NoDocuments_NoFeeds(t *testing.T) {
	files, err := Build(&site.Site{}, nil, Options{Ext: "atom"})
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestBuild_RootFeedPlusCategoryFeeds(t *testing.T) {
	s, rendered := feedSite()

	files, err := Build(s, rendered, Options{Title: "My Site", Ext: "atom"})
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Contains(t, files, "feed.atom")
	require.Contains(t, files, "feed-life.atom")
}

func TestBuild_EntriesNewestFirst(t *testing.T) {
	s, rendered := feedSite()

	files, err := Build(s, rendered, Options{Ext: "atom"})
	require.NoError(t, err)

	root := files["feed.atom"]
	require.Less(t, strings.Index(root, "<title>New</title>"), strings.Index(root, "<title>Old</title>"))
}

func TestBuild_EntryContent_IsRenderedBodyTypedHTML(t *testing.T) {
	s, rendered := feedSite()

	files, err := Build(s, rendered, Options{Ext: "atom"})
	require.NoError(t, err)

	root := files["feed.atom"]
	require.Contains(t, root, `<content type="html">`)
	// Markup embeds escaped; readers unescape type="html" content.
	require.Contains(t, root, "&lt;p&gt;new body&lt;/p&gt;")
}

func TestBuild_SelfLinkAndNamespace(t *testing.T) {
	s, rendered := feedSite()

	files, err := Build(s, rendered, Options{Ext: "atom", BaseURL: "https://example.org"})
	require.NoError(t, err)

	root := files["feed.atom"]
	require.Contains(t, root, `xmlns="http://www.w3.org/2005/Atom"`)
	require.Contains(t, root, `rel="self"`)
	require.Contains(t, root, `type="application/atom+xml"`)
	require.Contains(t, root, `href="https://example.org/feed.atom"`)
}

func TestBuild_FeedUpdated_IsNewestDocumentUpdate(t *testing.T) {
	s, rendered := feedSite()

	files, err := Build(s, rendered, Options{Ext: "atom"})
	require.NoError(t, err)
	require.Contains(t, files["feed.atom"], "<updated>2022-06-02T00:00:00Z</updated>")
}

func TestBuild_CategoryFeed_OnlyCategoryDocuments(t *testing.T) {
	s, rendered := feedSite()

	files, err := Build(s, rendered, Options{Ext: "atom"})
	require.NoError(t, err)

	life := files["feed-life.atom"]
	require.Contains(t, life, "<title>Old</title>")
	require.NotContains(t, life, "<title>New</title>")
}

func TestBuild_AuthorIncludedWhenConfigured(t *testing.T) {
	s, rendered := feedSite()

	files, err := Build(s, rendered, Options{Ext: "atom", Author: "Jane"})
	require.NoError(t, err)
	require.Contains(t, files["feed.atom"], "<name>Jane</name>")
}
