package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// ErrInvalid marks configuration that cannot drive a run.
var ErrInvalid = errors.New("invalid configuration")

// FileName is the base name searched for in the working directory.
const FileName = "vitedocs"

// EnvPrefix prefixes environment overrides, e.g. VITEDOCS_OUTPUT_FLAT.
const EnvPrefix = "VITEDOCS"

// Grouping strategies for the grouped artifact
const (
	GroupByParent = "parent"
	GroupByTop    = "top"
)

// Archive formats
const (
	ArchiveGzip = "gzip"
	ArchiveZstd = "zstd"
)

// Config holds all configuration for a vitedocs run
type Config struct {
	Root                string           `mapstructure:"root"`
	IncludeBlog         bool             `mapstructure:"include_blog"`
	IncludeHidden       bool             `mapstructure:"include_hidden"`
	RespectGitignore    bool             `mapstructure:"respect_gitignore"`
	GroupBy             string           `mapstructure:"group_by"`
	Title               string           `mapstructure:"title"`
	Extensions          ExtensionsConfig `mapstructure:"extensions"`
	ExcludeDirs         []string         `mapstructure:"exclude_dirs"`
	InformationalPaths  []string         `mapstructure:"informational_paths"`
	ReleaseNotePatterns []string         `mapstructure:"release_note_patterns"`
	Snippets            SnippetsConfig   `mapstructure:"snippets"`
	Output              OutputConfig     `mapstructure:"output"`
}

// ExtensionsConfig holds the extension sets that drive classification
type ExtensionsConfig struct {
	Include []string `mapstructure:"include"`
	Binary  []string `mapstructure:"binary"`
	Snippet []string `mapstructure:"snippet"`
}

// SnippetsConfig controls snippet inlining in Markdown
type SnippetsConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Markers []string `mapstructure:"markers"`
}

// OutputConfig names the artifacts a run writes. Empty paths are disabled.
type OutputConfig struct {
	Flat          string `mapstructure:"flat"`
	Grouped       string `mapstructure:"grouped"`
	Log           string `mapstructure:"log"`
	Archive       string `mapstructure:"archive"`
	ArchiveFormat string `mapstructure:"archive_format"`
}

var snippetExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".vue", ".css", ".scss",
	".sh", ".go", ".py", ".rs",
}

var defaultConfig = Config{
	Root:    "docs",
	GroupBy: GroupByParent,
	Title:   "Documentation",
	Extensions: ExtensionsConfig{
		Include: append([]string{
			".md", ".mdx", ".markdown", ".html", ".htm", ".yaml", ".yml",
			".json", ".toml", ".xml", ".txt",
		}, snippetExtensions...),
		Binary: []string{
			".png", ".jpg", ".jpeg", ".gif", ".webp", ".avif", ".bmp", ".ico", ".svg", ".psd",
			".woff", ".woff2", ".ttf", ".otf", ".eot",
			".zip", ".gz", ".tgz", ".tar", ".7z", ".rar", ".zst",
			".pdf", ".mp4", ".webm", ".mov", ".mp3", ".wav", ".ogg",
			".wasm", ".exe", ".dll", ".so", ".dylib",
		},
		Snippet: snippetExtensions,
	},
	ExcludeDirs: []string{
		"node_modules", ".git", ".svn", ".hg", "dist", "build", "out",
		"coverage", "cache", ".cache", ".temp", "public",
	},
	InformationalPaths:  []string{"blog/**", "**/blog/**", "news/**", "**/releases/**"},
	ReleaseNotePatterns: []string{"**/CHANGELOG*", "**/RELEASE*NOTES*", "**/release-notes*", "**/releases*.md"},
	Snippets: SnippetsConfig{
		Enabled: true,
		Markers: []string{"snippets", "examples"},
	},
	Output: OutputConfig{
		Flat:          "dist/docs.txt",
		Grouped:       "dist/docs-grouped.txt",
		ArchiveFormat: ArchiveGzip,
	},
}

// Defaults returns a copy of the built-in configuration
func Defaults() Config {
	c := defaultConfig
	c.Extensions.Include = append([]string(nil), defaultConfig.Extensions.Include...)
	c.Extensions.Binary = append([]string(nil), defaultConfig.Extensions.Binary...)
	c.Extensions.Snippet = append([]string(nil), defaultConfig.Extensions.Snippet...)
	c.ExcludeDirs = append([]string(nil), defaultConfig.ExcludeDirs...)
	c.InformationalPaths = append([]string(nil), defaultConfig.InformationalPaths...)
	c.ReleaseNotePatterns = append([]string(nil), defaultConfig.ReleaseNotePatterns...)
	c.Snippets.Markers = append([]string(nil), defaultConfig.Snippets.Markers...)
	return c
}

// SetDefaults registers every configuration key on v so environment
// overrides and flag bindings resolve.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("root", d.Root)
	v.SetDefault("include_blog", d.IncludeBlog)
	v.SetDefault("include_hidden", d.IncludeHidden)
	v.SetDefault("respect_gitignore", d.RespectGitignore)
	v.SetDefault("group_by", d.GroupBy)
	v.SetDefault("title", d.Title)
	v.SetDefault("extensions.include", d.Extensions.Include)
	v.SetDefault("extensions.binary", d.Extensions.Binary)
	v.SetDefault("extensions.snippet", d.Extensions.Snippet)
	v.SetDefault("exclude_dirs", d.ExcludeDirs)
	v.SetDefault("informational_paths", d.InformationalPaths)
	v.SetDefault("release_note_patterns", d.ReleaseNotePatterns)
	v.SetDefault("snippets.enabled", d.Snippets.Enabled)
	v.SetDefault("snippets.markers", d.Snippets.Markers)
	v.SetDefault("output.flat", d.Output.Flat)
	v.SetDefault("output.grouped", d.Output.Grouped)
	v.SetDefault("output.log", d.Output.Log)
	v.SetDefault("output.archive", d.Output.Archive)
	v.SetDefault("output.archive_format", d.Output.ArchiveFormat)
}

// NewViper returns a viper instance with defaults and environment overrides registered
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration into a Config. configFile names an explicit file;
// when empty, vitedocs.{yaml,yml,json,toml} is searched for in the working
// directory and its absence is not an error. A file that is found is checked
// against the embedded schema before it is applied.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if v == nil {
		v = NewViper()
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: read config: %v", ErrInvalid, err)
		}
	} else if used := v.ConfigFileUsed(); used != "" {
		if err := ValidateFile(used); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: error unmarshaling config: %v", ErrInvalid, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize lowercases extensions, adds missing leading dots, trims names and
// drops duplicates so classification can use exact lookups.
func (c *Config) Normalize() {
	c.Root = strings.TrimSpace(c.Root)
	c.GroupBy = strings.ToLower(strings.TrimSpace(c.GroupBy))
	c.Output.ArchiveFormat = strings.ToLower(strings.TrimSpace(c.Output.ArchiveFormat))
	c.Extensions.Include = normalizeExtensions(c.Extensions.Include)
	c.Extensions.Binary = normalizeExtensions(c.Extensions.Binary)
	c.Extensions.Snippet = normalizeExtensions(c.Extensions.Snippet)
	c.ExcludeDirs = dedupe(c.ExcludeDirs, strings.TrimSpace)
	c.Snippets.Markers = dedupe(c.Snippets.Markers, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
	if c.GroupBy == "" {
		c.GroupBy = GroupByParent
	}
	if c.Output.ArchiveFormat == "" {
		c.Output.ArchiveFormat = ArchiveGzip
	}
}

// Validate checks cross-field rules the schema cannot express
func (c *Config) Validate() error {
	var problems []string
	if c.Root == "" {
		problems = append(problems, "root must not be empty")
	}
	switch c.GroupBy {
	case GroupByParent, GroupByTop:
	default:
		problems = append(problems, fmt.Sprintf("group_by must be %q or %q, got %q", GroupByParent, GroupByTop, c.GroupBy))
	}
	switch c.Output.ArchiveFormat {
	case ArchiveGzip, ArchiveZstd:
	default:
		problems = append(problems, fmt.Sprintf("output.archive_format must be %q or %q, got %q", ArchiveGzip, ArchiveZstd, c.Output.ArchiveFormat))
	}
	if c.Output.Flat == "" && c.Output.Grouped == "" {
		problems = append(problems, "at least one of output.flat or output.grouped must be set")
	}
	if len(c.Extensions.Include) == 0 {
		problems = append(problems, "extensions.include must not be empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w:\n%s", ErrInvalid, strings.Join(problems, "\n"))
	}
	return nil
}

// OutputPaths returns every enabled artifact path, sorted
func (c *Config) OutputPaths() []string {
	var paths []string
	for _, p := range []string{c.Output.Flat, c.Output.Grouped, c.Output.Log, c.Output.Archive} {
		if p != "" {
			paths = append(paths, filepath.Clean(p))
		}
	}
	sort.Strings(paths)
	return paths
}

func normalizeExtensions(exts []string) []string {
	return dedupe(exts, func(e string) string {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		return e
	})
}

func dedupe(values []string, norm func(string) string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = norm(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
