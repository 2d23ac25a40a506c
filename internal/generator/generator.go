// Package generator runs the generation pipeline: scan the source tree,
// render every document through its template, plan the filesystem actions,
// and apply them. One Generator performs one run.
package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/feed"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/minify"
	"git.home.luguber.info/inful/sitebuilder/internal/plan"
	"git.home.luguber.info/inful/sitebuilder/internal/rules"
	"git.home.luguber.info/inful/sitebuilder/internal/scan"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// Stage names for logs and metrics.
const (
	StageScan    = "scan"
	StageRender  = "render"
	StagePlan    = "plan"
	StageExecute = "execute"
)

// StageErrorKind classifies a stage failure.
type StageErrorKind int

const (
	// StageFatal aborts the run.
	StageFatal StageErrorKind = iota
	// StageWarning is logged and counted but lets the run continue.
	StageWarning
)

// StageError carries the failure classification of one pipeline stage.
// A plain error returned from a stage is treated as fatal.
type StageError struct {
	Kind StageErrorKind
	Err  error
}

func (e *StageError) Error() string { return e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// Report summarizes one generation run.
type Report struct {
	RunID     string
	Documents int
	Templates int
	Assets    int
	Actions   int
	Feeds     int
	Duration  time.Duration
}

// buildState carries mutable state across stages of one run.
type buildState struct {
	site     *site.Site
	rendered map[string]string // document source path -> rendered page body
	actions  []plan.FsAction
	report   *Report
}

// Generator executes the sequential pipeline. The delegate subprocess used
// during the render stage is the only concurrent resource; it is scoped to
// that stage and released on every exit path.
type Generator struct {
	cfg      *config.Config
	recorder metrics.Recorder
}

// Option customizes a Generator.
type Option func(*Generator)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// New creates a Generator for one configuration.
func New(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{cfg: cfg, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type stage struct {
	name string
	run  func(*buildState) error
}

// Run executes the whole pipeline. There is no cancellation: a run goes to
// completion or to its first fatal error.
func (g *Generator) Run() (*Report, error) {
	start := time.Now()
	bs := &buildState{
		rendered: map[string]string{},
		report:   &Report{RunID: uuid.NewString()},
	}
	logger := slog.With(logfields.RunID(bs.report.RunID))
	logger.Info("Starting site generation", logfields.Path(g.cfg.Root))

	stages := []stage{
		{StageScan, g.stageScan},
		{StageRender, g.stageRender},
		{StagePlan, g.stagePlan},
		{StageExecute, g.stageExecute},
	}

	for _, st := range stages {
		stageStart := time.Now()
		err := st.run(bs)
		g.recorder.ObserveStageDuration(st.name, time.Since(stageStart))
		if err != nil {
			var se *StageError
			if errors.As(err, &se) && se.Kind == StageWarning {
				g.recorder.IncStageResult(st.name, metrics.ResultWarning)
				logger.Warn("Stage completed with a warning",
					logfields.Stage(st.name), logfields.Error(se.Err))
				continue
			}
			g.recorder.IncStageResult(st.name, metrics.ResultFatal)
			g.recorder.IncRunOutcome("failed")
			logger.Error("Stage failed", logfields.Stage(st.name), logfields.Error(err))
			return nil, err
		}
		g.recorder.IncStageResult(st.name, metrics.ResultSuccess)
		logger.Debug("Stage complete", logfields.Stage(st.name),
			logfields.DurationMS(float64(time.Since(stageStart).Milliseconds())))
	}

	bs.report.Duration = time.Since(start)
	g.recorder.ObserveRunDuration(bs.report.Duration)
	g.recorder.IncRunOutcome("success")
	logger.Info("Site generation complete",
		slog.Int("documents", bs.report.Documents),
		slog.Int("templates", bs.report.Templates),
		slog.Int("assets", bs.report.Assets),
		slog.Int("actions", bs.report.Actions),
		slog.Int("feeds", bs.report.Feeds),
		logfields.DurationMS(float64(bs.report.Duration.Milliseconds())))
	return bs.report, nil
}

func (g *Generator) stageScan(bs *buildState) error {
	s, err := scan.Scan(g.cfg)
	if err != nil {
		return err
	}
	bs.site = s
	bs.report.Documents = len(s.Documents)
	bs.report.Templates = len(s.Templates)
	for _, doc := range s.Documents {
		bs.report.Assets += len(doc.Assets)
	}
	return nil
}

// stageRender renders every document through its template. The delegate
// subprocess is started once for the pass and always released, success or
// failure alike.
func (g *Generator) stageRender(bs *buildState) error {
	proc, err := rules.Start(g.cfg.Delegate)
	if err != nil {
		return err
	}
	proc.OnRequest = g.recorder.IncDelegateRequests

	renderErr := g.renderDocuments(bs, proc)
	closeErr := proc.Close()
	if renderErr != nil {
		return renderErr
	}
	if closeErr != nil {
		return &StageError{Kind: StageWarning,
			Err: fmt.Errorf("delegate shutdown reported an error: %w", closeErr)}
	}
	return nil
}

func (g *Generator) renderDocuments(bs *buildState, proc *rules.Processor) error {
	for _, doc := range bs.site.Documents {
		bodyHTML, err := markdown.ToHTML(doc.Body())
		if err != nil {
			return sberrors.Wrap(err, sberrors.CategoryRender, sberrors.SeverityFatal,
				"failed to render markdown body").WithContext("document", doc.Source)
		}

		resolver := proc.For(rules.NewContext(bs.site, doc), bodyHTML, string(doc.Body()))
		out, err := bs.site.Template(doc).Render(resolver)
		if err != nil {
			return err
		}
		bs.rendered[doc.Source] = out
		g.recorder.AddDocumentsRendered(1)
	}
	return nil
}

func (g *Generator) stagePlan(bs *buildState) error {
	extra := map[string]string{}
	if g.cfg.Site.Feed {
		files, err := feed.Build(bs.site, bs.rendered, feed.Options{
			Title:   g.cfg.Site.Title,
			BaseURL: g.cfg.Site.BaseURL,
			Author:  g.cfg.Site.Author,
			Ext:     g.cfg.FeedExt,
		})
		if err != nil {
			return sberrors.Wrap(err, sberrors.CategoryPlan, sberrors.SeverityFatal,
				"failed to build feeds")
		}
		extra = files
		bs.report.Feeds = len(files)
	}

	actions, err := plan.Plan(bs.site, bs.rendered, plan.Options{
		PageName: "index." + g.cfg.DistExt,
		Filter:   func(page string) string { return minify.Minify(page, g.cfg.Minify) },
		Extra:    extra,
	})
	if err != nil {
		return err
	}
	bs.actions = actions
	bs.report.Actions = len(actions)
	return nil
}

func (g *Generator) stageExecute(bs *buildState) error {
	// The target root itself is the one directory the plan assumes.
	if err := os.MkdirAll(bs.site.TargetRoot, 0o755); err != nil {
		return sberrors.Wrap(err, sberrors.CategoryExecute, sberrors.SeverityFatal,
			"cannot create target root").WithContext("path", bs.site.TargetRoot)
	}
	if err := plan.Execute(bs.actions); err != nil {
		return err
	}
	g.recorder.AddActionsExecuted(len(bs.actions))
	return nil
}
