package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"line endings and trailing space", "a  \r\nb\t\r\n", "a\nb\n"},
		{"blank runs collapse", "a\n\n\n\n\nb", "a\n\n\nb\n"},
		{"leading and trailing blanks", "\n\n  \na\n\n\n", "a\n"},
		{"empty", "", ""},
		{"leading indentation trimmed", "  \t# Title\n\nbody", "# Title\n\nbody\n"},
		{"whitespace only", " \t\n \n", ""},
		{"repeated heading", "## Intro\n\n## Intro\n\ntext", "## Intro\n\ntext\n"},
		{"different level kept", "# Intro\n\n## Intro\n", "# Intro\n\n## Intro\n"},
		{"heading repeated after text kept", "## A\n\nx\n\n## A\n", "## A\n\nx\n\n## A\n"},
		{"separator spacing", "a\n---\nb", "a\n\n---\n\nb\n"},
		{"separator wide spacing", "a\n\n\n\n---\n\n\n\nb", "a\n\n---\n\nb\n"},
		{"trailing separator", "a\n\n---\n\n", "a\n\n---\n"},
		{"fenced content untouched", "```\n# a\n# a\n---\n\n\n\nx\n```", "```\n# a\n# a\n---\n\n\n\nx\n```\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Finalize(tt.in))
		})
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	inputs := []string{
		"# T\r\n\r\n\r\n\r\n## A\n## A\n\n---\n---\n\ntext  \n",
		"a\n---\n\n\n\n```\n---\n```\n---\nb\n\n\n",
		"~~~\nunterminated\n\n\n\n# x\n# x",
		"    ```\n```\n\n\n\n\nx",
		" \n\t---\n# a\n# a\n",
		sampleDocument().Render(Grouped),
	}
	for _, in := range inputs {
		once := Finalize(in)
		assert.Equal(t, once, Finalize(once), "input %q", in)
	}
}
