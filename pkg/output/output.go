// Package output persists compiled artifacts
package output

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/alex-boop-chasey/vite-docs/pkg/logger"
	"github.com/alex-boop-chasey/vite-docs/pkg/safeio"
)

// Sink stores one artifact under a name
type Sink interface {
	Write(name string, data []byte) error
}

// FileSink writes artifacts to the filesystem. Relative names resolve
// against Dir.
type FileSink struct {
	Dir string
}

func (s FileSink) Write(name string, data []byte) error {
	target := name
	if !filepath.IsAbs(target) && s.Dir != "" {
		target = filepath.Join(s.Dir, target)
	}
	if err := safeio.WriteFile(target, data); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	logger.Debug("artifact written", logger.String("path", target), logger.Int("bytes", len(data)))
	return nil
}

// DryRunSink records what would be written and discards the data
type DryRunSink struct {
	mu    sync.Mutex
	sizes map[string]int
}

func (s *DryRunSink) Write(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sizes == nil {
		s.sizes = map[string]int{}
	}
	s.sizes[name] = len(data)
	logger.Info("would write artifact", logger.String("path", name), logger.Int("bytes", len(data)))
	return nil
}

// Names lists the artifacts seen so far, sorted
func (s *DryRunSink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.sizes))
	for n := range s.sizes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MemorySink keeps artifacts in memory
type MemorySink struct {
	mu    sync.Mutex
	Files map[string][]byte
	// Fail makes Write return this error for any name it contains
	Fail map[string]error
}

func NewMemorySink() *MemorySink {
	return &MemorySink{Files: map[string][]byte{}}
}

func (s *MemorySink) Write(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.Fail[name]; ok {
		return err
	}
	if s.Files == nil {
		s.Files = map[string][]byte{}
	}
	s.Files[name] = append([]byte(nil), data...)
	return nil
}

// Get returns a stored artifact
func (s *MemorySink) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Files[name]
	return b, ok
}
