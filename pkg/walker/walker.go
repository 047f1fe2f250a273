// Package walker traverses a documentation source root in pre-order and
// produces one immutable Record per visited entry.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/alex-boop-chasey/vite-docs/pkg/classify"
	"github.com/alex-boop-chasey/vite-docs/pkg/config"
	"github.com/alex-boop-chasey/vite-docs/pkg/extract"
	"github.com/alex-boop-chasey/vite-docs/pkg/format/finalizer"
	"github.com/alex-boop-chasey/vite-docs/pkg/logger"
)

// ErrRootUnreadable is returned when the source root cannot be listed
var ErrRootUnreadable = errors.New("source root unreadable")

// SourceFile is a file read during the walk. It lives only until extraction.
type SourceFile struct {
	AbsPath string
	RelPath string
	Ext     string
	Group   string
	Raw     []byte
}

// Record is the outcome for one visited entry. Text is non-empty only when
// Status is processed.
type Record struct {
	RelPath     string
	Group       string
	Title       string
	ContentType classify.ContentType
	Text        string
	Status      classify.Status
	Reason      string
	IsDir       bool
}

// Observer receives every record as it is produced
type Observer func(Record)

// Options configures a Walker
type Options struct {
	// Root is the source root on disk; it only names SourceFile.AbsPath.
	Root       string
	FS         fs.FS
	Classifier *classify.Classifier
	Extractor  *extract.Extractor
	GroupBy    string
	Observer   Observer
}

// Walker walks one source root
type Walker struct {
	opts Options
}

// New creates a Walker
func New(opts Options) *Walker {
	if opts.GroupBy == "" {
		opts.GroupBy = config.GroupByParent
	}
	return &Walker{opts: opts}
}

// Walk visits the tree depth-first in pre-order, children in fs.ReadDir
// order (sorted by name). Per-entry failures become skip records; only an
// unreadable root or a cancelled context stops the walk.
func (w *Walker) Walk(ctx context.Context) ([]Record, error) {
	entries, err := fs.ReadDir(w.opts.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootUnreadable, err)
	}
	return w.walkDir(ctx, ".", entries, nil)
}

func (w *Walker) walkDir(ctx context.Context, dir string, entries []fs.DirEntry, records []Record) ([]Record, error) {
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		rel := path.Join(dir, entry.Name())
		var err error
		switch {
		case entry.IsDir():
			records, err = w.visitDir(ctx, rel, records)
			if err != nil {
				return records, err
			}
		case entry.Type()&fs.ModeSymlink != 0:
			records = w.visitSymlink(rel, records)
		case !entry.Type().IsRegular():
			records = w.emit(records, Record{RelPath: rel, Group: w.group(rel), Status: classify.StatusUnreadable, Reason: "not a regular file"})
		default:
			records = w.visitFile(rel, records)
		}
	}
	return records, nil
}

func (w *Walker) visitDir(ctx context.Context, rel string, records []Record) ([]Record, error) {
	d := w.opts.Classifier.ClassifyDir(rel)
	if !d.Included() {
		return w.emit(records, Record{RelPath: rel, Group: w.group(rel), Status: d.Status, Reason: d.Reason, IsDir: true}), nil
	}
	children, err := fs.ReadDir(w.opts.FS, rel)
	if err != nil {
		logger.Warn("directory unreadable", logger.String("path", rel), logger.Err(err))
		return w.emit(records, Record{RelPath: rel, Group: w.group(rel), Status: classify.StatusUnreadable, Reason: err.Error(), IsDir: true}), nil
	}
	return w.walkDir(ctx, rel, children, records)
}

// visitSymlink follows links to files; linked directories are not followed so
// a cycle cannot recurse forever.
func (w *Walker) visitSymlink(rel string, records []Record) []Record {
	info, err := fs.Stat(w.opts.FS, rel)
	switch {
	case err != nil:
		return w.emit(records, Record{RelPath: rel, Group: w.group(rel), Status: classify.StatusUnreadable, Reason: "broken symlink"})
	case info.IsDir():
		return w.emit(records, Record{RelPath: rel, Group: w.group(rel), Status: classify.StatusExcludedDir, Reason: "symlinked directory not followed", IsDir: true})
	}
	return w.visitFile(rel, records)
}

func (w *Walker) visitFile(rel string, records []Record) []Record {
	group := w.group(rel)
	d := w.opts.Classifier.ClassifyFile(rel)
	if !d.Included() {
		return w.emit(records, Record{RelPath: rel, Group: group, Status: d.Status, Reason: d.Reason})
	}

	raw, err := fs.ReadFile(w.opts.FS, rel)
	if err != nil {
		logger.Warn("file unreadable", logger.String("path", rel), logger.Err(err))
		return w.emit(records, Record{RelPath: rel, Group: group, ContentType: d.ContentType, Status: classify.StatusUnreadable, Reason: err.Error()})
	}
	src := SourceFile{
		AbsPath: filepath.Join(w.opts.Root, filepath.FromSlash(rel)),
		RelPath: rel,
		Ext:     strings.ToLower(path.Ext(rel)),
		Group:   group,
		Raw:     raw,
	}
	return w.emit(records, w.extract(src, d.ContentType))
}

func (w *Walker) extract(src SourceFile, ct classify.ContentType) Record {
	rec := Record{RelPath: src.RelPath, Group: src.Group, ContentType: ct}
	if finalizer.LooksBinary(src.Raw) {
		rec.Status = classify.StatusBinaryExt
		rec.Reason = "binary content"
		return rec
	}

	res := w.opts.Extractor.Extract(src.RelPath, src.Raw, ct)
	rec.Title = res.Title
	if res.Text == "" {
		rec.Status = classify.StatusEmpty
		rec.Reason = "empty after cleaning"
		return rec
	}
	rec.Text = res.Text
	rec.Status = classify.StatusProcessed
	if len(res.Snippets) > 0 {
		logger.Debug("snippets inlined", logger.String("path", src.RelPath), logger.Int("count", len(res.Snippets)))
	}
	return rec
}

func (w *Walker) emit(records []Record, rec Record) []Record {
	if w.opts.Observer != nil {
		w.opts.Observer(rec)
	}
	logger.Trace("visited", logger.String("path", rec.RelPath), logger.String("status", string(rec.Status)))
	return append(records, rec)
}

// group names the bucket a path belongs to. Root-level entries have no group.
func (w *Walker) group(rel string) string {
	return Group(rel, w.opts.GroupBy)
}

// Group derives the grouping key for a root-relative path: the parent
// directory name, or the top-level folder when groupBy is "top".
func Group(rel, groupBy string) string {
	dir := path.Dir(rel)
	if dir == "." || dir == "/" {
		return ""
	}
	if groupBy == config.GroupByTop {
		if i := strings.IndexByte(dir, '/'); i >= 0 {
			return dir[:i]
		}
		return dir
	}
	return path.Base(dir)
}
