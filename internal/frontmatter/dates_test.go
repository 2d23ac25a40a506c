package frontmatter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveDate_DeclaredCanonicalValue_WinsOverFileTime(t *testing.T) {
	path := writeTempFile(t, "body")

	got := ResolveDate(path, DateCreated, "2021-03-04")
	require.Equal(t, 2021, got.Year())
	require.Equal(t, time.March, got.Month())
	require.Equal(t, 4, got.Day())
}

func TestResolveDate_MalformedDeclaredValue_FallsBackToFileTime(t *testing.T) {
	path := writeTempFile(t, "body")
	stamp := time.Date(2019, time.July, 20, 11, 30, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	got := ResolveDate(path, DateModified, "20th of July")
	require.Equal(t, time.Date(2019, time.July, 20, 0, 0, 0, 0, time.Local), got)
}

func TestResolveDate_NoDeclaredValue_UsesFileTime(t *testing.T) {
	path := writeTempFile(t, "body")
	stamp := time.Date(2020, time.December, 31, 23, 59, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	got := ResolveDate(path, DateCreated, "")
	require.Equal(t, time.Date(2020, time.December, 31, 0, 0, 0, 0, time.Local), got)
}

func TestResolveDate_MissingFile_FallsBackToToday(t *testing.T) {
	fixed := time.Date(2023, time.May, 6, 15, 4, 5, 0, time.Local)
	restore := now
	now = func() time.Time { return fixed }
	defer func() { now = restore }()

	got := ResolveDate(filepath.Join(t.TempDir(), "absent.md"), DateCreated, "")
	require.Equal(t, time.Date(2023, time.May, 6, 0, 0, 0, 0, time.Local), got)
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
