package frontmatter

import (
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// DateKind selects which document date is being resolved.
type DateKind int

const (
	DateCreated DateKind = iota
	DateModified
)

// now is swapped in tests to pin "today".
var now = time.Now

// ResolveDate resolves a document date through the fallback chain: a
// declared front matter value that parses against the fixed date format
// wins; otherwise the filesystem timestamp is used; on any failure the
// current date is returned. An empty declared value means none was given.
// Resolution never fails the document: every fallback step logs and
// continues.
func ResolveDate(path string, kind DateKind, declared string) time.Time {
	if declared != "" {
		if t, err := time.ParseInLocation(config.DateFormat, declared, time.Local); err == nil {
			return t
		}
		slog.Warn("Declared date does not match expected format, falling back to file time",
			logfields.Path(path), slog.String("declared", declared), slog.String("format", config.DateFormat))
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Warn("Cannot stat source file for date resolution, using today",
			logfields.Path(path), logfields.Error(err))
		return today()
	}

	// Creation time is not portably available from os.FileInfo; the
	// modification time stands in for both kinds.
	return dateOnly(info.ModTime())
}

func today() time.Time {
	return dateOnly(now())
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
