package extract

import (
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/alex-boop-chasey/vite-docs/pkg/format/finalizer"
)

// frontmatter markers recognized on the first non-blank line
const (
	yamlMarker = "---"
	tomlMarker = "+++"
)

// maxFrontmatterLines bounds how far below the opening marker the closing
// marker may appear.
const maxFrontmatterLines = 100

// SplitFrontmatter separates a leading frontmatter block from the body. The
// block must open on the first non-blank line and close with the same marker
// within maxFrontmatterLines. Metadata is empty when the block does not parse
// and the block is dropped anyway, unless it holds blank-line separated text:
// that is a paragraph between two horizontal rules and stays in the body.
func SplitFrontmatter(text string) (meta map[string]interface{}, body string, found bool) {
	lines := strings.Split(text, "\n")

	start := 0
	for start < len(lines) && finalizer.IsBlank(lines[start]) {
		start++
	}
	if start == len(lines) {
		return nil, text, false
	}
	marker := strings.TrimRight(lines[start], " \t")
	if marker != yamlMarker && marker != tomlMarker {
		return nil, text, false
	}

	end := -1
	for i := start + 1; i < len(lines) && i <= start+maxFrontmatterLines; i++ {
		if strings.TrimRight(lines[i], " \t") == marker {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, text, false
	}

	block := strings.Join(lines[start:end+1], "\n") + "\n"
	meta, err := parseFrontmatter(block)
	if err != nil && hasBlankLine(lines[start+1:end]) {
		return nil, text, false
	}
	return meta, strings.Join(lines[end+1:], "\n"), true
}

func parseFrontmatter(block string) (map[string]interface{}, error) {
	var meta map[string]interface{}
	if _, err := frontmatter.Parse(strings.NewReader(block), &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func hasBlankLine(lines []string) bool {
	for _, line := range lines {
		if finalizer.IsBlank(line) {
			return true
		}
	}
	return false
}

// metaTitle returns the declared title, if any
func metaTitle(meta map[string]interface{}) string {
	v, ok := meta["title"]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]interface{}, map[interface{}]interface{}, []interface{}:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
