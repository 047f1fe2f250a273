package extract

import (
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/alex-boop-chasey/vite-docs/pkg/format/finalizer"
	"github.com/alex-boop-chasey/vite-docs/pkg/logger"
	"github.com/alex-boop-chasey/vite-docs/pkg/safeio"
)

var quoted = regexp.MustCompile("[\"'`]([^\"'`\\s]+)[\"'`]")

// quotedRefs returns quoted path-like strings that mention a snippet marker
func (e *Extractor) quotedRefs(body string) []string {
	if len(e.markers) == 0 {
		return nil
	}
	var refs []string
	for _, m := range quoted.FindAllStringSubmatch(body, -1) {
		ref := m[1]
		if strings.Contains(ref, "://") || path.Ext(ref) == "" {
			continue
		}
		lower := strings.ToLower(ref)
		for _, marker := range e.markers {
			if strings.Contains(lower, marker) {
				refs = append(refs, ref)
				break
			}
		}
	}
	return refs
}

// inlineSnippets resolves refs against the file's directory and renders each
// readable snippet once as a fenced block tagged with its extension.
// Unresolvable refs are skipped without error.
func (e *Extractor) inlineSnippets(relPath string, refs []string) (string, []string) {
	if !e.opts.Snippets || e.opts.Source == nil || len(refs) == 0 {
		return "", nil
	}

	dir := path.Dir(relPath)
	seen := map[string]bool{relPath: true}
	var sb strings.Builder
	var inlined []string

	for _, ref := range refs {
		target, err := safeio.JoinContained(dir, ref)
		if err != nil || seen[target] {
			continue
		}
		seen[target] = true

		ext := strings.ToLower(path.Ext(target))
		if !e.snippetExt[ext] {
			continue
		}
		content, ok := e.readSnippet(target)
		if !ok {
			logger.Trace("snippet not inlined", logger.String("file", relPath), logger.String("ref", ref))
			continue
		}

		fenceMarker := strings.Repeat("`", max(3, longestRun(content, '`')+1))
		sb.WriteString("\n\n" + fenceMarker + strings.TrimPrefix(ext, ".") + "\n")
		sb.WriteString(content)
		sb.WriteString("\n" + fenceMarker)
		inlined = append(inlined, target)
	}
	return sb.String(), inlined
}

func (e *Extractor) readSnippet(target string) (string, bool) {
	info, err := fs.Stat(e.opts.Source, target)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	raw, err := fs.ReadFile(e.opts.Source, target)
	if err != nil || finalizer.LooksBinary(raw) {
		return "", false
	}
	content := strings.TrimSpace(finalizer.PrepareText(raw))
	return content, content != ""
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}
