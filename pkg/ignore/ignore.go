// Package ignore provides gitignore-based pruning of a documentation source root using go-git
package ignore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreFile is the tool-specific ignore file read from the source root.
const IgnoreFile = ".vitedocsignore"

// Matcher answers ignore questions for slash paths relative to a source root
type Matcher struct {
	matcher  gitignore.Matcher
	patterns int
}

// NewMatcher creates a matcher with layered ignore files under root:
// 1. .gitignore files at every level and .git/info/exclude (foundation)
// 2. .vitedocsignore at the root (overrides)
func NewMatcher(root string) (*Matcher, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat source root: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", root)
	}

	// ReadPatterns with nil walks .gitignore files from the root down
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		return nil, fmt.Errorf("read gitignore patterns: %w", err)
	}

	local, err := readIgnoreFile(filepath.Join(root, IgnoreFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	for _, line := range local {
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}

	return &Matcher{matcher: gitignore.NewMatcher(patterns), patterns: len(patterns)}, nil
}

// PatternCount reports how many patterns were loaded
func (m *Matcher) PatternCount() int {
	if m == nil {
		return 0
	}
	return m.patterns
}

func readIgnoreFile(path string) ([]string, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- fixed file name under the source root
	if err != nil {
		return nil, err
	}

	var patterns []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}

// IsIgnored reports whether the root-relative file path is ignored
func (m *Matcher) IsIgnored(relPath string) bool {
	return m.match(relPath, false)
}

// IsIgnoredDir reports whether the root-relative directory is ignored and should be pruned
func (m *Matcher) IsIgnoredDir(relPath string) bool {
	return m.match(relPath, true)
}

func (m *Matcher) match(relPath string, isDir bool) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	parts := splitPath(filepath.ToSlash(relPath))
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, isDir)
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(path string) []string {
	if path == "" || path == "." {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
