package rules

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/template"
)

// EvaluationContext is the per-document state placeholders resolve
// against. It is transient: built for one render, serialized into every
// delegated request.
type EvaluationContext struct {
	Document    string            `json:"document"`    // source path
	Metadata    map[string]string `json:"metadata"`    // raw metadata with resolved canonical fields
	Stylesheets []string          `json:"stylesheets"` // hrefs relative to the rendered page
}

// NewContext builds the evaluation context for one document. Metadata is
// the document's raw front matter with the resolved title, dates, and
// category written back in canonical form so rules never see a missing
// title or an unparsed date.
func NewContext(s *site.Site, doc *site.Document) EvaluationContext {
	meta := make(map[string]string, len(doc.Meta)+4)
	for k, v := range doc.Meta {
		meta[k] = v
	}
	meta[config.MetaKeyTitle] = doc.Title
	meta[config.MetaKeyCreated] = doc.Created.Format(config.DateFormat)
	meta[config.MetaKeyUpdated] = doc.Updated.Format(config.DateFormat)
	if doc.Category != "" {
		meta[config.MetaKeyCategory] = doc.Category
	}
	if len(doc.Tags) > 0 {
		meta[config.MetaKeyTags] = strings.Join(doc.Tags, config.MetaTagSeparator+" ")
	}

	return EvaluationContext{
		Document:    doc.Source,
		Metadata:    meta,
		Stylesheets: stylesheetHrefs(s, doc),
	}
}

// stylesheetHrefs maps the document's sibling style sheets to hrefs
// relative to its rendered page in the destination tree.
func stylesheetHrefs(s *site.Site, doc *site.Document) []string {
	destDir := doc.DestDir(s.TargetRoot)
	var hrefs []string
	for _, css := range s.SiblingStylesheets(doc) {
		rel, err := filepath.Rel(s.SourceRoot, css)
		if err != nil {
			slog.Warn("Style sheet outside source root, skipped", logfields.Path(css), logfields.Error(err))
			continue
		}
		cssDest := filepath.Join(s.TargetRoot, rel)
		href, err := filepath.Rel(destDir, cssDest)
		if err != nil {
			slog.Warn("Cannot relativize style sheet href, skipped", logfields.Path(css), logfields.Error(err))
			continue
		}
		hrefs = append(hrefs, filepath.ToSlash(href))
	}
	return hrefs
}

// DocumentResolver implements template.Resolver for one document render.
type DocumentResolver struct {
	proc     *Processor
	ctx      EvaluationContext
	bodyHTML string // rendered markdown body, substituted by the contents rule
	bodyRaw  string // raw markdown body, passed as the hint to delegated rules
}

// For binds the processor to one document's evaluation context.
func (p *Processor) For(ctx EvaluationContext, bodyHTML, bodyRaw string) *DocumentResolver {
	return &DocumentResolver{proc: p, ctx: ctx, bodyHTML: bodyHTML, bodyRaw: bodyRaw}
}

// Resolve computes the substitution for one placeholder. Contents, css and
// meta resolve natively; toc, listing and include go through the delegate.
func (r *DocumentResolver) Resolve(rule template.Rule) (string, error) {
	switch rule.Kind {
	case template.RuleContents:
		return r.bodyHTML, nil

	case template.RuleCss:
		return r.cssLinks(), nil

	case template.RuleMeta:
		value, ok := r.ctx.Metadata[rule.Key]
		if !ok {
			slog.Warn("Metadata key not set for document, substituting empty value",
				logfields.Document(r.ctx.Document), slog.String("key", rule.Key))
		}
		return value, nil

	case template.RuleToc:
		return r.delegate(rule, map[string]any{"depth": rule.Depth}, r.bodyRaw)

	case template.RuleListing:
		return r.delegate(rule, map[string]any{"path": rule.Path}, "")

	case template.RuleInclude:
		return r.delegate(rule, map[string]any{"path": rule.Path}, "")

	default:
		return "", sberrors.New(sberrors.CategoryRender, sberrors.SeverityFatal,
			fmt.Sprintf("no resolution for rule %q", rule.Kind))
	}
}

func (r *DocumentResolver) cssLinks() string {
	var b strings.Builder
	for _, href := range r.ctx.Stylesheets {
		fmt.Fprintf(&b, "<link rel=\"stylesheet\" type=\"text/css\" href=\"%s\">\n", href)
	}
	return b.String()
}

func (r *DocumentResolver) delegate(rule template.Rule, options map[string]any, value string) (string, error) {
	if !r.proc.Configured() {
		return "", sberrors.New(sberrors.CategoryConfig, sberrors.SeverityFatal,
			fmt.Sprintf("rule %q requires a delegate processor and none is configured", rule.Kind)).
			WithContext("document", r.ctx.Document)
	}
	return r.proc.send(request{
		Ctx:     r.ctx,
		Ty:      string(rule.Kind),
		Options: options,
		Value:   value,
	})
}
