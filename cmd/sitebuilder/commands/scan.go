package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/scan"
)

// ScanCmd implements the 'scan' command: a dry inspection of the content
// tree without rendering or touching the target directory.
type ScanCmd struct {
	Root string `arg:"" optional:"" help:"Site root containing the content directory (defaults to the working directory)"`

	Template string `short:"t" name:"default-template" help:"Path to a template used by documents that declare none"`
}

func (s *ScanCmd) Run(_ *Global, _ *CLI) error {
	cfg, err := buildConfig(s.Root, s.Template, "", "", "", nil)
	if err != nil {
		return err
	}

	model, err := scan.Scan(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Source root: %s\n", model.SourceRoot)
	fmt.Printf("Documents:   %d\n", len(model.Documents))
	fmt.Printf("Templates:   %d\n", len(model.Templates))
	fmt.Printf("Stylesheets: %d\n", len(model.Stylesheets))
	fmt.Printf("Copies:      %d\n", len(model.CopyCandidates))
	for _, doc := range model.Documents {
		fmt.Printf("  %s (title: %q)\n", doc.Source, doc.Title)
	}
	return nil
}
