// Package extract turns raw documentation sources into normalized plain text.
//
// Extraction never fails: parse errors degrade to a pass-through of the
// cleaned input, and an empty Result.Text is the caller's signal that the
// file had nothing worth keeping.
package extract

import (
	"io/fs"
	"path"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/alex-boop-chasey/vite-docs/pkg/classify"
	"github.com/alex-boop-chasey/vite-docs/pkg/format/finalizer"
)

// Result is the normalized output for one file
type Result struct {
	Title    string
	Text     string
	Metadata map[string]interface{}
	// Snippets lists the root-relative paths inlined into Text, in order.
	Snippets []string
}

// Options configures snippet inlining. Source is the source root; without it
// no snippet can be resolved.
type Options struct {
	Snippets          bool
	Markers           []string
	SnippetExtensions []string
	Source            fs.FS
}

// Extractor holds the parsers shared across files of one run
type Extractor struct {
	opts       Options
	md         goldmark.Markdown
	snippetExt map[string]bool
	markers    []string
}

// New creates an Extractor
func New(opts Options) *Extractor {
	e := &Extractor{
		opts:       opts,
		md:         goldmark.New(),
		snippetExt: make(map[string]bool, len(opts.SnippetExtensions)),
	}
	for _, ext := range opts.SnippetExtensions {
		e.snippetExt[strings.ToLower(ext)] = true
	}
	for _, m := range opts.Markers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			e.markers = append(e.markers, m)
		}
	}
	return e
}

// Extract normalizes raw according to its content type. relPath is the
// slash-separated path from the source root.
func (e *Extractor) Extract(relPath string, raw []byte, ct classify.ContentType) Result {
	text := finalizer.PrepareText(raw)
	fallback := BaseTitle(relPath)

	var res Result
	switch ct {
	case classify.Markdown:
		res = e.markdown(relPath, text)
	case classify.HTML:
		res = extractHTML(text)
	case classify.YAML, classify.JSON, classify.TOML, classify.XML:
		res = Result{Text: structured(ct, text)}
	default:
		res = Result{Text: text}
	}

	res.Text = strings.TrimSpace(res.Text)
	if res.Title == "" {
		res.Title = fallback
	}
	return res
}

// BaseTitle is the file name without its extension
func BaseTitle(relPath string) string {
	base := path.Base(relPath)
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
