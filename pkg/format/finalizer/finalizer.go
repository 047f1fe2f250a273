/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package finalizer

import (
	"bytes"
	"strings"
)

// binarySniffLen bounds how much of a file is inspected for NUL bytes.
const binarySniffLen = 8000

var boms = []struct {
	encoding string
	mark     []byte
}{
	// UTF-32 marks first: the UTF-32LE mark starts with the UTF-16LE one
	{"UTF-32BE", []byte{0x00, 0x00, 0xFE, 0xFF}},
	{"UTF-32LE", []byte{0xFF, 0xFE, 0x00, 0x00}},
	{"UTF-8", []byte{0xEF, 0xBB, 0xBF}},
	{"UTF-16BE", []byte{0xFE, 0xFF}},
	{"UTF-16LE", []byte{0xFF, 0xFE}},
}

// GetBOMInfo returns information about a detected Byte Order Mark
func GetBOMInfo(input []byte) (encoding string, bomSize int, found bool) {
	for _, b := range boms {
		if bytes.HasPrefix(input, b.mark) {
			return b.encoding, len(b.mark), true
		}
	}
	return "", 0, false
}

// RemoveBOM removes a Byte Order Mark of any supported encoding if present
func RemoveBOM(input []byte) (out []byte, changed bool) {
	if _, size, found := GetBOMInfo(input); found {
		return input[size:], true
	}
	return input, false
}

// LooksBinary reports whether content carries NUL bytes in its leading window.
// Documentation sources never do; images and archives almost always do.
func LooksBinary(content []byte) bool {
	if _, _, found := GetBOMInfo(content); found {
		return false
	}
	window := content
	if len(window) > binarySniffLen {
		window = window[:binarySniffLen]
	}
	return bytes.IndexByte(window, 0) >= 0
}

// NormalizeLineEndings converts CRLF and lone CR line endings to LF
func NormalizeLineEndings(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// PrepareText turns raw file bytes into LF-terminated valid UTF-8 text with
// any BOM removed.
func PrepareText(raw []byte) string {
	raw, _ = RemoveBOM(raw)
	return NormalizeLineEndings(strings.ToValidUTF8(string(raw), "�"))
}

// TrimTrailingWhitespace removes spaces and tabs at the end of every line
func TrimTrailingWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// EnsureSingleTrailingNewline trims trailing whitespace and newlines and
// appends exactly one newline. Empty input stays empty.
func EnsureSingleTrailingNewline(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	if s == "" {
		return ""
	}
	return s + "\n"
}

// IsBlank reports whether a line holds only whitespace
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Fence describes an open fenced code block
type Fence struct {
	Char byte
	Size int
}

// OpenFence recognizes a fence opener indented at most three spaces
func OpenFence(line string) (Fence, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return Fence{}, false
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return Fence{}, false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return Fence{}, false
	}
	// backtick fences cannot carry backticks in their info string
	if c == '`' && strings.ContainsRune(trimmed[n:], '`') {
		return Fence{}, false
	}
	return Fence{Char: c, Size: n}, true
}

// ClosedBy reports whether line closes the fence
func (f Fence) ClosedBy(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == f.Char {
		n++
	}
	return n >= f.Size && strings.TrimSpace(trimmed[n:]) == ""
}

// FenceTracker follows fenced code state line by line
type FenceTracker struct {
	open *Fence
}

// Next consumes a line and reports whether it belongs to a fenced block,
// fence lines included.
func (t *FenceTracker) Next(line string) bool {
	if t.open != nil {
		if t.open.ClosedBy(line) {
			t.open = nil
		}
		return true
	}
	if f, ok := OpenFence(line); ok {
		t.open = &f
		return true
	}
	return false
}

// Open reports whether a fence is still open, with its closing marker
func (t *FenceTracker) Open() (string, bool) {
	if t.open == nil {
		return "", false
	}
	return strings.Repeat(string(t.open.Char), t.open.Size), true
}
