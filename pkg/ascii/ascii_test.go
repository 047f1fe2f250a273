package ascii

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBox(t *testing.T) {
	got := Box([]string{"Files", "processed 12  "})
	want := "┌──────────────┐\n" +
		"│ Files        │\n" +
		"│ processed 12 │\n" +
		"└──────────────┘\n"
	assert.Equal(t, want, got)
}

func TestBoxWideRunes(t *testing.T) {
	out := Box([]string{"文档", "ab"})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		assert.Equal(t, StringWidth(lines[0]), StringWidth(line), "line %q misaligned", line)
	}
}

func TestBoxEmpty(t *testing.T) {
	assert.Empty(t, Box(nil))

	var buf bytes.Buffer
	require.NoError(t, DrawBox(&buf, nil))
	assert.Zero(t, buf.Len())
}

func TestDrawBox(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DrawBox(&buf, []string{"ok"}))
	assert.Equal(t, Box([]string{"ok"}), buf.String())
}

func TestKeyValueLines(t *testing.T) {
	lines := KeyValueLines([][2]string{{"Processed", "3"}, {"Run", "abc"}})
	assert.Equal(t, []string{"Processed  3", "Run        abc"}, lines)
}

func TestStringWidth(t *testing.T) {
	assert.Equal(t, 5, StringWidth("hello"))
	assert.Equal(t, 4, StringWidth("文档"))
	assert.Equal(t, 0, StringWidth(""))
}

func TestTruncateForBox(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"guide/getting-started.md", 10, "guide/g..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateForBox(tt.in, tt.width), tt.in)
	}
}
