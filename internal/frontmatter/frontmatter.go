// Package frontmatter parses the metadata block at the start of content
// documents: a `+++` fence on line one, `key = value` lines, and a closing
// `+++` fence. The grammar is deliberately line-oriented (values are not
// quoted), so parsing is by hand rather than through a YAML or TOML decoder.
package frontmatter

import (
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// Metadata is the raw key/value mapping from a document's front matter.
type Metadata map[string]string

// Issue describes a recoverable problem found while parsing front matter.
// Issues degrade the document, they never fail it.
type Issue struct {
	Line    int // 1-based source line, 0 when not line-specific
	Message string
}

// Parse extracts front matter from document text.
//
// The returned offset is the byte index where the document body starts.
// A document without an opening fence yields empty metadata, offset 0, and
// a degraded issue. A document whose closing fence is missing treats all
// remaining text as metadata and is likewise degraded.
func Parse(content string) (Metadata, int, []Issue) {
	meta := Metadata{}
	var issues []Issue

	firstLine, _, hasMore := cutLine(content)
	if strings.TrimRight(firstLine, "\r") != config.MetaFence {
		issues = append(issues, Issue{Message: "no front matter fence, document has no metadata"})
		return meta, 0, issues
	}
	if !hasMore {
		issues = append(issues, Issue{Message: "front matter closing fence missing"})
		return meta, len(content), issues
	}

	offset := len(firstLine) + 1 // past the opening fence line
	lineNo := 1
	closed := false

	for offset <= len(content) {
		line, _, more := cutLine(content[offset:])
		lineNo++
		trimmed := strings.TrimSpace(line)

		if trimmed == config.MetaFence {
			offset += len(line)
			if more {
				offset++
			}
			closed = true
			break
		}

		if trimmed != "" {
			key, value, found := strings.Cut(trimmed, config.MetaValueSeparator)
			if !found {
				issues = append(issues, Issue{Line: lineNo, Message: "metadata line has no separator, skipped"})
			} else {
				meta[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		}

		offset += len(line)
		if more {
			offset++
		} else {
			break
		}
	}

	if !closed {
		issues = append(issues, Issue{Message: "front matter closing fence missing"})
		return meta, len(content), issues
	}
	return meta, offset, issues
}

// cutLine splits off the first line (without its newline). hasMore is false
// when the input contained no newline.
func cutLine(s string) (line, rest string, hasMore bool) {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}
