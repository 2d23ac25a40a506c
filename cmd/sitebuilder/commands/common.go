package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" default:"withargs" help:"Generate the static site from the content tree"`
	Init  InitCmd  `cmd:"" help:"Scaffold a new site in the given directory"`
	Scan  ScanCmd  `cmd:"" help:"Scan the content tree and report what a build would process"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// buildConfig assembles the run configuration from CLI flags and the
// optional site.yaml at the content root. Flags win where both are set.
func buildConfig(root, tpl, distExt, feedExt, minify string, delegate []string) (*config.Config, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = wd
	}

	cfg := &config.Config{
		Root:         root,
		TemplatePath: tpl,
		DistExt:      distExt,
		FeedExt:      feedExt,
		Delegate:     delegate,
	}
	if minify != "" {
		level, err := config.ParseMinifyLevel(minify)
		if err != nil {
			return nil, err
		}
		cfg.Minify = level
	}

	site, err := config.LoadSite(cfg.SourceRoot())
	if err != nil {
		return nil, err
	}
	cfg.Site = site
	cfg.Resolve()
	return cfg, nil
}
