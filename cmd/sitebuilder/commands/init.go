package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Root  string `arg:"" optional:"" help:"Directory to scaffold the site in (defaults to the working directory)"`
	Force bool   `help:"Overwrite existing scaffold files"`
}

func (i *InitCmd) Run(_ *Global, _ *CLI) error {
	root := i.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = wd
	}

	fmt.Println("Initializing site")
	sourceRoot := filepath.Join(root, config.SourceDirName)
	if err := os.MkdirAll(sourceRoot, 0o755); err != nil {
		return err
	}

	files := map[string]string{
		config.SiteConfigName: "title: My Site\n# base_url: https://example.org\n# author: Your Name\n# feed: true\n",
		"style.css":           "body {\n    max-width: 40em;\n    margin: auto;\n}\n",
		"hello-world.md": fmt.Sprintf(
			"%s\ntitle = Hello, world\ndate = %s\n%s\nWelcome to your new site.\n",
			config.MetaFence, time.Now().Format(config.DateFormat), config.MetaFence),
	}
	for name, content := range files {
		path := filepath.Join(sourceRoot, name)
		if !i.Force {
			if _, err := os.Stat(path); err == nil {
				fmt.Printf("Skipping existing %s\n", path)
				continue
			}
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}

	fmt.Println("Site initialized; run 'sitebuilder build' to generate it")
	return nil
}
