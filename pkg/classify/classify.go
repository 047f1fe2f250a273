// Package classify decides, from a root-relative path and static
// configuration alone, whether an entry is walked and how it is extracted.
package classify

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alex-boop-chasey/vite-docs/pkg/config"
	"github.com/alex-boop-chasey/vite-docs/pkg/ignore"
)

// ContentType selects the extraction strategy for an included file
type ContentType string

const (
	None     ContentType = ""
	Markdown ContentType = "markdown"
	HTML     ContentType = "html"
	YAML     ContentType = "yaml"
	JSON     ContentType = "json"
	TOML     ContentType = "toml"
	XML      ContentType = "xml"
	Snippet  ContentType = "snippet"
	Plain    ContentType = "plain"
)

// Status is the outcome recorded for a visited entry
type Status string

const (
	StatusProcessed    Status = "processed"
	StatusExcludedDir  Status = "skipped-excluded-dir"
	StatusBinaryExt    Status = "skipped-binary-ext"
	StatusEmpty        Status = "skipped-empty"
	StatusUnreadable   Status = "skipped-unreadable"
	StatusUnknownExt   Status = "skipped-unknown-ext"
	StatusExcludedPath Status = "skipped-excluded-path"
	StatusHidden       Status = "skipped-hidden"
	StatusIgnored      Status = "skipped-ignored"
)

// Skipped reports whether the status is any skip outcome
func (s Status) Skipped() bool {
	return s != StatusProcessed && s != ""
}

// Verdict is the include/exclude answer of a classification
type Verdict int

const (
	Exclude Verdict = iota
	Include
)

func (v Verdict) String() string {
	if v == Include {
		return "include"
	}
	return "exclude"
}

// Decision is the result of classifying one path. Included files carry a
// content type and no status; excluded entries carry the skip status and a
// human readable reason.
type Decision struct {
	Verdict     Verdict
	ContentType ContentType
	Status      Status
	Reason      string
}

// Included reports whether the entry should be walked or extracted
func (d Decision) Included() bool { return d.Verdict == Include }

// Rule maps an extension set to a content type and verdict
type Rule struct {
	Extensions  []string
	ContentType ContentType
	Verdict     Verdict
}

// extensions that select a structured extraction strategy; every other
// included extension is plain text unless it is in the snippet set
var typedExtensions = map[string]ContentType{
	".md":       Markdown,
	".mdx":      Markdown,
	".markdown": Markdown,
	".html":     HTML,
	".htm":      HTML,
	".yaml":     YAML,
	".yml":      YAML,
	".json":     JSON,
	".toml":     TOML,
	".xml":      XML,
}

// Options is the static configuration of a Classifier
type Options struct {
	IncludeExtensions   []string
	BinaryExtensions    []string
	SnippetExtensions   []string
	ExcludeDirs         []string
	InformationalPaths  []string
	ReleaseNotePatterns []string
	IncludeBlog         bool
	IncludeHidden       bool
	// ExcludeFiles are root-relative paths that are never ingested, such as
	// output artifacts written inside the source root.
	ExcludeFiles []string
	Ignore       *ignore.Matcher
}

// Classifier applies Options to paths. It holds no per-run state.
type Classifier struct {
	opts         Options
	rules        []Rule
	byExt        map[string]int
	excludeDirs  map[string]bool
	excludeFiles map[string]bool
	infoGlobs    []string
	releaseGlobs []string
}

// New validates the glob patterns and builds the extension rule table
func New(opts Options) (*Classifier, error) {
	c := &Classifier{
		opts:         opts,
		byExt:        make(map[string]int),
		excludeDirs:  make(map[string]bool, len(opts.ExcludeDirs)),
		excludeFiles: make(map[string]bool, len(opts.ExcludeFiles)),
	}
	for _, d := range opts.ExcludeDirs {
		c.excludeDirs[d] = true
	}
	for _, f := range opts.ExcludeFiles {
		c.excludeFiles[path.Clean(f)] = true
	}

	var err error
	if c.infoGlobs, err = compileGlobs(opts.InformationalPaths); err != nil {
		return nil, err
	}
	if c.releaseGlobs, err = compileGlobs(opts.ReleaseNotePatterns); err != nil {
		return nil, err
	}

	c.buildRules()
	return c, nil
}

// FromConfig builds a classifier from loaded configuration
func FromConfig(cfg *config.Config, matcher *ignore.Matcher, excludeFiles []string) (*Classifier, error) {
	return New(Options{
		IncludeExtensions:   cfg.Extensions.Include,
		BinaryExtensions:    cfg.Extensions.Binary,
		SnippetExtensions:   cfg.Extensions.Snippet,
		ExcludeDirs:         cfg.ExcludeDirs,
		InformationalPaths:  cfg.InformationalPaths,
		ReleaseNotePatterns: cfg.ReleaseNotePatterns,
		IncludeBlog:         cfg.IncludeBlog,
		IncludeHidden:       cfg.IncludeHidden,
		ExcludeFiles:        excludeFiles,
		Ignore:              matcher,
	})
}

func compileGlobs(patterns []string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(p), "./"))
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
		out = append(out, p)
	}
	return out, nil
}

// buildRules assigns every known extension to exactly one rule. The binary
// set wins over the include set, and the snippet set wins over plain text.
func (c *Classifier) buildRules() {
	add := func(ext string, ct ContentType, v Verdict) {
		ext = strings.ToLower(ext)
		if _, taken := c.byExt[ext]; taken {
			return
		}
		idx := -1
		for i, r := range c.rules {
			if r.ContentType == ct && r.Verdict == v {
				idx = i
				break
			}
		}
		if idx < 0 {
			c.rules = append(c.rules, Rule{ContentType: ct, Verdict: v})
			idx = len(c.rules) - 1
		}
		c.rules[idx].Extensions = append(c.rules[idx].Extensions, ext)
		c.byExt[ext] = idx
	}

	for _, ext := range c.opts.BinaryExtensions {
		add(ext, None, Exclude)
	}
	snippets := make(map[string]bool, len(c.opts.SnippetExtensions))
	for _, ext := range c.opts.SnippetExtensions {
		snippets[strings.ToLower(ext)] = true
	}
	for _, ext := range c.opts.IncludeExtensions {
		lower := strings.ToLower(ext)
		switch {
		case typedExtensions[lower] != None:
			add(lower, typedExtensions[lower], Include)
		case snippets[lower]:
			add(lower, Snippet, Include)
		default:
			add(lower, Plain, Include)
		}
	}
	for i := range c.rules {
		sort.Strings(c.rules[i].Extensions)
	}
}

// Rules returns the extension rule table in precedence order
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{
			Extensions:  append([]string(nil), r.Extensions...),
			ContentType: r.ContentType,
			Verdict:     r.Verdict,
		}
	}
	return out
}

// ClassifyDir decides whether the walker descends into a directory
func (c *Classifier) ClassifyDir(relPath string) Decision {
	relPath = path.Clean(relPath)
	if relPath == "." {
		return Decision{Verdict: Include}
	}
	name := path.Base(relPath)
	switch {
	case c.excludeDirs[name]:
		return skip(StatusExcludedDir, fmt.Sprintf("directory %q is excluded", name))
	case isHidden(name) && !c.opts.IncludeHidden:
		return skip(StatusHidden, "hidden directory")
	case c.opts.Ignore.IsIgnoredDir(relPath):
		return skip(StatusIgnored, "matched ignore file")
	}
	return Decision{Verdict: Include}
}

// ClassifyFile decides whether and how a file is extracted
func (c *Classifier) ClassifyFile(relPath string) Decision {
	relPath = path.Clean(relPath)
	name := path.Base(relPath)
	ext := strings.ToLower(path.Ext(name))

	if isHidden(name) && !c.opts.IncludeHidden {
		return skip(StatusHidden, "hidden file")
	}
	if c.excludeFiles[relPath] {
		return skip(StatusExcludedPath, "output artifact")
	}
	if c.opts.Ignore.IsIgnored(relPath) {
		return skip(StatusIgnored, "matched ignore file")
	}

	idx, known := c.byExt[ext]
	if !known {
		if ext == "" {
			return skip(StatusUnknownExt, "no extension")
		}
		return skip(StatusUnknownExt, fmt.Sprintf("extension %s not recognized", ext))
	}
	rule := c.rules[idx]
	if rule.Verdict == Exclude {
		return skip(StatusBinaryExt, fmt.Sprintf("binary extension %s", ext))
	}

	if !c.opts.IncludeBlog {
		lower := strings.ToLower(relPath)
		if matchAny(c.infoGlobs, lower) {
			return skip(StatusExcludedPath, "informational content")
		}
		if matchAny(c.releaseGlobs, lower) {
			return skip(StatusExcludedPath, "release notes")
		}
	}

	return Decision{Verdict: Include, ContentType: rule.ContentType}
}

func skip(status Status, reason string) Decision {
	return Decision{Verdict: Exclude, Status: status, Reason: reason}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func matchAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}
