package commands

import (
	"log/slog"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/generator"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Root     string   `arg:"" optional:"" help:"Site root containing the content directory (defaults to the working directory)"`
	Delegate []string `arg:"" optional:"" passthrough:"" help:"Delegate command and arguments for external template rules"`

	Template      string `short:"t" name:"default-template" help:"Path to a template used by documents that declare none"`
	DistExt       string `short:"e" name:"generated-extension" help:"File extension for generated documents" default:"html"`
	FeedExt       string `short:"a" name:"feed-extension" help:"File extension for feed files" default:"atom"`
	Minify        string `short:"m" name:"minify" help:"Minification level" enum:"no,yes,full" default:"yes"`
	MetricsListen string `name:"metrics-listen" help:"Address to expose Prometheus metrics on during the run (e.g. :9090)"`
}

func (b *BuildCmd) Run(_ *Global, _ *CLI) error {
	cfg, err := buildConfig(b.Root, b.Template, b.DistExt, b.FeedExt, b.Minify, b.Delegate)
	if err != nil {
		return err
	}

	var opts []generator.Option
	if b.MetricsListen != "" {
		reg := prom.NewRegistry()
		opts = append(opts, generator.WithRecorder(metrics.NewPrometheusRecorder(reg)))
		go func() {
			if err := http.ListenAndServe(b.MetricsListen, metrics.Handler(reg)); err != nil {
				slog.Warn("Metrics listener stopped", "error", err)
			}
		}()
	}

	_, err = generator.New(cfg, opts...).Run()
	return err
}
