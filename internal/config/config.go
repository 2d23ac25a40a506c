// Package config holds the generation configuration: fixed site layout
// constants, metadata key names, template marker syntax, and the Config
// type assembled from CLI flags and the optional site.yaml file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Source tree layout.
const (
	SourceDirName = "content"
	TargetDirName = "dist"

	HeaderFileName = "header.html"
	FooterFileName = "footer.html"
	SiteConfigName = "site.yaml"
)

// Source file metadata.
const (
	MetaFence          = "+++"
	DateFormat         = "2006-01-02"
	MetaKeyTitle       = "title"
	MetaKeyCreated     = "date"
	MetaKeyUpdated     = "updated"
	MetaKeyCategory    = "category"
	MetaKeyTags        = "tags"
	MetaKeyTemplate    = "template"
	MetaValueSeparator = "="
	MetaTagSeparator   = ","
)

// Template marker syntax.
const (
	TemplateOpenMarker  = "<!--P/"
	TemplateCloseMarker = "/P-->"
)

// File extensions (matched case-insensitively, without the dot).
const (
	SourceFileExt = "md"
	DistFileExt   = "html"
	StyleFileExt  = "css"
	FeedFileExt   = "atom"
)

// MinifyLevel is the closed set of minification settings.
type MinifyLevel string

const (
	MinifyNo   MinifyLevel = "no"
	MinifyYes  MinifyLevel = "yes"
	MinifyFull MinifyLevel = "full"
)

// ParseMinifyLevel normalizes a user-supplied minify value.
func ParseMinifyLevel(s string) (MinifyLevel, error) {
	switch MinifyLevel(s) {
	case MinifyNo, MinifyYes, MinifyFull:
		return MinifyLevel(s), nil
	default:
		return "", fmt.Errorf("invalid minify level %q (expected no, yes or full)", s)
	}
}

// SiteConfig is the optional per-site configuration file loaded from
// site.yaml at the source root. Everything in it has a working default.
type SiteConfig struct {
	Title    string   `yaml:"title,omitempty"`
	BaseURL  string   `yaml:"base_url,omitempty"`
	Author   string   `yaml:"author,omitempty"`
	Feed     bool     `yaml:"feed,omitempty"`
	Delegate []string `yaml:"delegate,omitempty"`
}

// Config is the fully resolved configuration for one generation run.
// Precedence: CLI flags > site.yaml > defaults.
type Config struct {
	Root         string      // site root (contains content/ and dist/)
	TemplatePath string      // default template override; empty means embedded default
	DistExt      string      // extension for generated documents
	FeedExt      string      // extension for feed files
	Minify       MinifyLevel
	Delegate     []string // delegate command + args; empty means no delegate
	Site         SiteConfig
}

// SourceRoot returns the content directory under the configured root.
func (c *Config) SourceRoot() string {
	return filepath.Join(c.Root, SourceDirName)
}

// TargetRoot returns the dist directory under the configured root.
func (c *Config) TargetRoot() string {
	return filepath.Join(c.Root, TargetDirName)
}

// HasDelegate reports whether a delegate subprocess is configured.
func (c *Config) HasDelegate() bool {
	return len(c.Delegate) > 0
}

// LoadSite reads site.yaml from the given root if present. A missing file
// is not an error; a malformed file is.
func LoadSite(root string) (SiteConfig, error) {
	var sc SiteConfig
	path := filepath.Join(root, SiteConfigName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sc, nil
		}
		return sc, fmt.Errorf("failed to read site config: %w", err)
	}

	// Environment variables may be referenced in the YAML content.
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &sc); err != nil {
		return sc, fmt.Errorf("failed to unmarshal site config %s: %w", path, err)
	}
	return sc, nil
}

// Resolve merges the site file config into the CLI-derived config. CLI
// values win where both are set.
func (c *Config) Resolve() {
	if len(c.Delegate) == 0 && len(c.Site.Delegate) > 0 {
		c.Delegate = c.Site.Delegate
	}
	if c.DistExt == "" {
		c.DistExt = DistFileExt
	}
	if c.FeedExt == "" {
		c.FeedExt = FeedFileExt
	}
	if c.Minify == "" {
		c.Minify = MinifyYes
	}
}
