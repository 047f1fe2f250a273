// Package pipeline wires configuration, traversal, aggregation and output
// into a single compile run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/alex-boop-chasey/vite-docs/pkg/aggregate"
	"github.com/alex-boop-chasey/vite-docs/pkg/archive"
	"github.com/alex-boop-chasey/vite-docs/pkg/classify"
	"github.com/alex-boop-chasey/vite-docs/pkg/config"
	"github.com/alex-boop-chasey/vite-docs/pkg/extract"
	"github.com/alex-boop-chasey/vite-docs/pkg/ignore"
	"github.com/alex-boop-chasey/vite-docs/pkg/logger"
	"github.com/alex-boop-chasey/vite-docs/pkg/output"
	"github.com/alex-boop-chasey/vite-docs/pkg/report"
	"github.com/alex-boop-chasey/vite-docs/pkg/walker"
)

var (
	// ErrRootUnreadable means the source root is missing or cannot be listed
	ErrRootUnreadable = walker.ErrRootUnreadable
	// ErrOutputWrite means an artifact could not be persisted
	ErrOutputWrite = errors.New("output write failed")
)

// Options control a single run
type Options struct {
	DryRun   bool
	Progress bool
	// Stderr receives the progress spinner; defaults to os.Stderr.
	Stderr io.Writer
	// Sink overrides where artifacts go. Nil selects a file sink, or a
	// discarding sink on dry runs.
	Sink output.Sink
	// Clock is used for the run summary timestamps; defaults to time.Now.
	Clock func() time.Time
}

// Artifact is one written (or, on dry runs, skipped) output
type Artifact struct {
	Kind  string
	Path  string
	Bytes int
}

// Result is everything a run produced
type Result struct {
	Records   []walker.Record
	Document  aggregate.Document
	Summary   report.Summary
	Artifacts []Artifact
}

// Run compiles the documentation tree described by cfg
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	c := *cfg
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	start := clock()

	root, err := filepath.Abs(c.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootUnreadable, err)
	}
	if st, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootUnreadable, err)
	} else if !st.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootUnreadable, root)
	}

	var comp archive.Compressor
	if c.Output.Archive != "" {
		if comp, err = archive.New(c.Output.ArchiveFormat); err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
		}
		c.Output.Archive = archive.WithExtension(comp, c.Output.Archive)
	}

	var matcher *ignore.Matcher
	if c.RespectGitignore {
		if matcher, err = ignore.NewMatcher(root); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRootUnreadable, err)
		}
		logger.Debug("ignore patterns loaded", logger.Int("patterns", matcher.PatternCount()))
	}

	classifier, err := classify.FromConfig(&c, matcher, artifactsInside(root, c.OutputPaths()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	fsys := os.DirFS(root)
	extractor := extract.New(extract.Options{
		Snippets:          c.Snippets.Enabled,
		Markers:           c.Snippets.Markers,
		SnippetExtensions: c.Extensions.Snippet,
		Source:            fsys,
	})

	var bar *progressbar.ProgressBar
	var observer walker.Observer
	if opts.Progress {
		bar = newSpinner(opts.Stderr)
		observer = func(walker.Record) { _ = bar.Add(1) }
	}

	logger.Info("compiling documentation", logger.String("root", root))
	records, err := walker.New(walker.Options{
		Root:       root,
		FS:         fsys,
		Classifier: classifier,
		Extractor:  extractor,
		GroupBy:    c.GroupBy,
		Observer:   observer,
	}).Walk(ctx)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return nil, err
	}

	doc := aggregate.Aggregate(records, aggregate.Header{Title: c.Title, Source: filepath.ToSlash(c.Root)})
	res := &Result{Records: records, Document: doc}

	sink := opts.Sink
	if sink == nil {
		if opts.DryRun {
			sink = &output.DryRunSink{}
		} else {
			sink = output.FileSink{}
		}
	}

	if err := res.writeDocuments(sink, &c, comp); err != nil {
		return res, err
	}

	res.Summary = report.Summarize(records, start, clock())
	if c.Output.Log != "" {
		text, err := res.Summary.RenderLog()
		if err != nil {
			return res, err
		}
		if err := res.write(sink, "log", c.Output.Log, []byte(text)); err != nil {
			return res, err
		}
	}

	if ds, ok := sink.(*output.DryRunSink); ok {
		logger.Info("dry run, nothing written", logger.String("artifacts", strings.Join(ds.Names(), ", ")))
	}
	logger.Info("compile finished",
		logger.Int("processed", res.Summary.FilesProcessed),
		logger.Int("skipped", res.Summary.FilesSkipped),
		logger.Bool("dry_run", opts.DryRun))
	return res, nil
}

func (r *Result) writeDocuments(sink output.Sink, c *config.Config, comp archive.Compressor) error {
	var primary, primaryPath string
	if c.Output.Flat != "" {
		text := r.Document.Render(aggregate.Flat)
		if err := r.write(sink, "flat", c.Output.Flat, []byte(text)); err != nil {
			return err
		}
		primary, primaryPath = text, c.Output.Flat
	}
	if c.Output.Grouped != "" {
		text := r.Document.Render(aggregate.Grouped)
		if err := r.write(sink, "grouped", c.Output.Grouped, []byte(text)); err != nil {
			return err
		}
		if primaryPath == "" {
			primary, primaryPath = text, c.Output.Grouped
		}
	}

	if comp == nil {
		return nil
	}
	data, err := archive.Bytes(comp, filepath.Base(primaryPath), []byte(primary))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}
	return r.write(sink, "archive", c.Output.Archive, data)
}

func (r *Result) write(sink output.Sink, kind, path string, data []byte) error {
	if err := sink.Write(path, data); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}
	r.Artifacts = append(r.Artifacts, Artifact{Kind: kind, Path: path, Bytes: len(data)})
	return nil
}

// artifactsInside lists output paths that fall under root, relative to it,
// so a run never ingests its own previous output.
func artifactsInside(root string, paths []string) []string {
	var inside []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		inside = append(inside, filepath.ToSlash(rel))
	}
	return inside
}

func newSpinner(w io.Writer) *progressbar.ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("walking"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
