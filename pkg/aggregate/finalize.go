package aggregate

import (
	"regexp"
	"strings"

	"github.com/alex-boop-chasey/vite-docs/pkg/format/finalizer"
)

var atxHeading = regexp.MustCompile(`^ {0,3}#{1,6}(?:[ \t]|$)`)

// Finalize normalizes an assembled document:
//
//   - CRLF and CR line endings become LF
//   - trailing whitespace is trimmed on every line
//   - a heading line identical to the previous non-blank line is dropped
//   - each separator gets exactly one blank line before and after
//   - runs of three or more blank lines collapse to two
//   - leading whitespace is trimmed and the document ends with exactly one newline
//
// Heading and separator rules skip fenced code. Finalize is idempotent, but
// it is meant for freshly assembled text, not for appending to a previous
// run's output.
func Finalize(text string) string {
	// leading whitespace goes first so the fence state each pass sees does
	// not change on a second run
	text = strings.TrimLeft(finalizer.NormalizeLineEndings(text), " \t\n")
	text = finalizer.TrimTrailingWhitespace(text)

	lines := strings.Split(text, "\n")
	lines = dropRepeatedHeadings(lines)
	lines = spaceSeparators(lines)
	lines = collapseBlankLines(lines)

	return finalizer.EnsureSingleTrailingNewline(strings.Join(lines, "\n"))
}

func isHeading(line string) bool {
	return atxHeading.MatchString(line)
}

func dropRepeatedHeadings(lines []string) []string {
	out := make([]string, 0, len(lines))
	var fences finalizer.FenceTracker
	previous := ""
	dropping := false
	for _, line := range lines {
		if fences.Next(line) {
			out = append(out, line)
			previous = ""
			dropping = false
			continue
		}
		if finalizer.IsBlank(line) {
			// blank lines after a dropped heading go with it
			if !dropping {
				out = append(out, line)
			}
			continue
		}
		if isHeading(line) && strings.TrimSpace(line) == previous {
			dropping = true
			continue
		}
		dropping = false
		out = append(out, line)
		if isHeading(line) {
			previous = strings.TrimSpace(line)
		} else {
			previous = ""
		}
	}
	return out
}

func spaceSeparators(lines []string) []string {
	out := make([]string, 0, len(lines))
	var fences finalizer.FenceTracker
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if fences.Next(line) || line != Separator {
			out = append(out, line)
			continue
		}

		for len(out) > 0 && finalizer.IsBlank(out[len(out)-1]) {
			out = out[:len(out)-1]
		}
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, Separator)

		j := i + 1
		for j < len(lines) && finalizer.IsBlank(lines[j]) {
			j++
		}
		if j < len(lines) {
			out = append(out, "")
		}
		i = j - 1
	}
	return out
}

func collapseBlankLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	var fences finalizer.FenceTracker
	blanks := 0
	for _, line := range lines {
		if fences.Next(line) {
			blanks = 0
			out = append(out, line)
			continue
		}
		if finalizer.IsBlank(line) {
			blanks++
			if blanks > 2 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}
	return out
}
