// Package archive compresses a compiled document into a single-entry archive
package archive

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compressor turns one named entry into an archive stream
type Compressor interface {
	// Compress writes the archive for entry to w
	Compress(w io.Writer, entry string, data []byte) error
	// Extension is the conventional file suffix, including the dot
	Extension() string
}

// New returns the compressor for a format name ("gzip" or "zstd")
func New(format string) (Compressor, error) {
	switch format {
	case "", "gzip", "gz":
		return Gzip{}, nil
	case "zstd", "zst":
		return Zstd{}, nil
	default:
		return nil, fmt.Errorf("unsupported archive format %q", format)
	}
}

// WithExtension appends the compressor's suffix to a path that has none,
// so "dist/docs" becomes "dist/docs.gz".
func WithExtension(c Compressor, p string) string {
	if filepath.Ext(p) != "" {
		return p
	}
	return p + c.Extension()
}

// Bytes compresses data into memory
func Bytes(c Compressor, entry string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Compress(&buf, entry, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Gzip writes a gzip stream whose header names the entry. The modification
// time is left zero so identical input compresses to identical bytes.
type Gzip struct{}

func (Gzip) Extension() string { return ".gz" }

func (Gzip) Compress(w io.Writer, entry string, data []byte) error {
	zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("create gzip writer: %w", err)
	}
	zw.Name = path.Base(entry)
	zw.ModTime = time.Time{}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("write gzip entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close gzip writer: %w", err)
	}
	return nil
}

// Zstd writes a single zstd frame. The format has no entry name; the archive
// file name carries it.
type Zstd struct{}

func (Zstd) Extension() string { return ".zst" }

func (Zstd) Compress(w io.Writer, _ string, data []byte) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("write zstd frame: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zstd writer: %w", err)
	}
	return nil
}
