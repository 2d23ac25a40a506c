// Package template implements the HTML template grammar: literal text
// interleaved with placeholder markers naming a substitution rule.
//
// Markers are fixed literal tokens (`<!--P/` ... `/P-->`). The first
// whitespace-separated word inside a marker selects the rule kind, the
// remaining words are positional options. The rule set is closed; unknown
// kinds are parse errors, never silently ignored.
package template

import (
	"fmt"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// RuleKind enumerates the closed set of placeholder rules.
type RuleKind string

const (
	RuleContents RuleKind = "contents"
	RuleCss      RuleKind = "css"
	RuleToc      RuleKind = "toc"
	RuleListing  RuleKind = "listing"
	RuleMeta     RuleKind = "meta"
	RuleInclude  RuleKind = "include"
)

// DefaultTocDepth is used when a toc marker gives no explicit depth.
const DefaultTocDepth = 6

// Rule is a tagged variant describing what to inject at a placeholder.
// Only the fields of the selected kind are meaningful.
type Rule struct {
	Kind  RuleKind
	Depth int    // Toc
	Path  string // Listing, Include
	Key   string // Meta
}

// Placeholder is a parsed marker: its byte range in the template source and
// the rule it names.
type Placeholder struct {
	Start int
	End   int
	Rule  Rule
}

// Span is either literal text or a placeholder.
type Span struct {
	Literal     string
	Placeholder *Placeholder
}

// Template is a parsed template: an ordered span sequence. Path is empty
// for the embedded default template.
type Template struct {
	Path  string
	Spans []Span
}

// Resolver resolves one placeholder rule to its substitution text. The
// per-document evaluation context is bound to the resolver instance.
type Resolver interface {
	Resolve(rule Rule) (string, error)
}

// Parse scans template text into literal spans and placeholders.
// Unbalanced markers and unrecognized rules invalidate the whole template.
func Parse(text, path string) (*Template, error) {
	t := &Template{Path: path}
	pos := 0

	for pos < len(text) {
		open := strings.Index(text[pos:], config.TemplateOpenMarker)
		if open < 0 {
			if stray := strings.Index(text[pos:], config.TemplateCloseMarker); stray >= 0 {
				return nil, parseError(path, pos+stray, "close marker without matching open marker")
			}
			t.Spans = append(t.Spans, Span{Literal: text[pos:]})
			break
		}
		open += pos

		if open > pos {
			literal := text[pos:open]
			if stray := strings.Index(literal, config.TemplateCloseMarker); stray >= 0 {
				return nil, parseError(path, pos+stray, "close marker without matching open marker")
			}
			t.Spans = append(t.Spans, Span{Literal: literal})
		}

		innerStart := open + len(config.TemplateOpenMarker)
		closeRel := strings.Index(text[innerStart:], config.TemplateCloseMarker)
		if closeRel < 0 {
			return nil, parseError(path, open, "open marker without matching close marker")
		}
		end := innerStart + closeRel + len(config.TemplateCloseMarker)

		rule, err := parseRule(text[innerStart : innerStart+closeRel])
		if err != nil {
			return nil, sberrors.Wrap(err, sberrors.CategoryTemplate, sberrors.SeverityFatal,
				"invalid placeholder").WithContext("template", path).WithContext("offset", open)
		}

		t.Spans = append(t.Spans, Span{Placeholder: &Placeholder{Start: open, End: end, Rule: rule}})
		pos = end
	}

	return t, nil
}

// Render walks the spans in order, appending literal text verbatim and
// resolving each placeholder through the resolver. Rendering itself has no
// filesystem side effects.
func (t *Template) Render(resolver Resolver) (string, error) {
	var b strings.Builder
	for _, span := range t.Spans {
		if span.Placeholder == nil {
			b.WriteString(span.Literal)
			continue
		}
		value, err := resolver.Resolve(span.Placeholder.Rule)
		if err != nil {
			return "", err
		}
		b.WriteString(value)
	}
	return b.String(), nil
}

func parseRule(inner string) (Rule, error) {
	fields := strings.Fields(inner)
	if len(fields) == 0 {
		return Rule{}, fmt.Errorf("empty placeholder")
	}

	kind := RuleKind(strings.ToLower(fields[0]))
	options := fields[1:]

	switch kind {
	case RuleContents, RuleCss:
		if len(options) != 0 {
			return Rule{}, fmt.Errorf("rule %q takes no options, got %d", kind, len(options))
		}
		return Rule{Kind: kind}, nil

	case RuleToc:
		depth := DefaultTocDepth
		if len(options) > 1 {
			return Rule{}, fmt.Errorf("rule %q takes at most one option, got %d", kind, len(options))
		}
		if len(options) == 1 {
			d, err := strconv.Atoi(options[0])
			if err != nil || d < 1 {
				return Rule{}, fmt.Errorf("rule %q depth must be a positive integer, got %q", kind, options[0])
			}
			depth = d
		}
		return Rule{Kind: kind, Depth: depth}, nil

	case RuleListing:
		if len(options) != 1 {
			return Rule{}, fmt.Errorf("rule %q requires exactly one path option, got %d", kind, len(options))
		}
		return Rule{Kind: kind, Path: options[0]}, nil

	case RuleMeta:
		if len(options) != 1 {
			return Rule{}, fmt.Errorf("rule %q requires exactly one key option, got %d", kind, len(options))
		}
		return Rule{Kind: kind, Key: options[0]}, nil

	case RuleInclude:
		if len(options) != 1 {
			return Rule{}, fmt.Errorf("rule %q requires exactly one path option, got %d", kind, len(options))
		}
		return Rule{Kind: kind, Path: options[0]}, nil

	default:
		return Rule{}, fmt.Errorf("unknown rule %q", fields[0])
	}
}

func parseError(path string, offset int, message string) error {
	return sberrors.New(sberrors.CategoryTemplate, sberrors.SeverityFatal, message).
		WithContext("template", path).WithContext("offset", offset)
}
