package extract

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-boop-chasey/vite-docs/pkg/classify"
)

func newExtractor(src fstest.MapFS) *Extractor {
	opts := Options{
		Snippets:          true,
		Markers:           []string{"snippets", "examples"},
		SnippetExtensions: []string{".ts", ".js", ".vue"},
	}
	if src != nil {
		opts.Source = src
	}
	return New(opts)
}

func TestExtractMarkdownFrontmatterTitle(t *testing.T) {
	res := newExtractor(nil).Extract("guide/intro.md", []byte("---\ntitle: Intro\n---\n# Hello\n"), classify.Markdown)
	assert.Equal(t, "Intro", res.Title)
	assert.Equal(t, "# Hello", res.Text)
	assert.Equal(t, "Intro", res.Metadata["title"])
}

func TestExtractMarkdownTitleFallback(t *testing.T) {
	res := newExtractor(nil).Extract("blog/post.md", []byte("Just text.\n"), classify.Markdown)
	assert.Equal(t, "post", res.Title)
	assert.Equal(t, "Just text.", res.Text)
}

func TestExtractMarkdownTOMLFrontmatter(t *testing.T) {
	res := newExtractor(nil).Extract("a.md", []byte("+++\ntitle = \"Config\"\n+++\nBody\n"), classify.Markdown)
	assert.Equal(t, "Config", res.Title)
	assert.Equal(t, "Body", res.Text)
}

func TestExtractMarkdownBrokenFrontmatterStillStripped(t *testing.T) {
	res := newExtractor(nil).Extract("guide/broken.md", []byte("---\ntitle: [unclosed\n---\nBody\n"), classify.Markdown)
	assert.Equal(t, "broken", res.Title)
	assert.Equal(t, "Body", res.Text)
	assert.Empty(t, res.Metadata)
}

func TestExtractMarkdownOnlyFrontmatterIsEmpty(t *testing.T) {
	res := newExtractor(nil).Extract("only.md", []byte("---\ntitle: Only\n---\n\n"), classify.Markdown)
	assert.Equal(t, "Only", res.Title)
	assert.Empty(t, res.Text)
}

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		body  string
		found bool
	}{
		{"leading blank lines", "\n\n---\na: 1\n---\nbody", "body", true},
		{"unclosed", "---\na: 1\nbody", "---\na: 1\nbody", false},
		{"not first line", "intro\n---\na: 1\n---\n", "intro\n---\na: 1\n---\n", false},
		{"mismatched markers", "---\na = 1\n+++\nbody", "---\na = 1\n+++\nbody", false},
		{"none", "plain", "plain", false},
		{"rules around a paragraph", "---\n\nA paragraph between rules.\n\n---\n\nTail.\n", "---\n\nA paragraph between rules.\n\n---\n\nTail.\n", false},
		{"blank line inside valid metadata", "---\ntitle: A\n\ntags: [x]\n---\nBody", "Body", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, body, found := SplitFrontmatter(tt.in)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestSplitFrontmatterClosingMarkerTooFar(t *testing.T) {
	lines := []string{"---", "title: Far"}
	for i := 0; i < maxFrontmatterLines; i++ {
		lines = append(lines, "x: 1")
	}
	lines = append(lines, "---", "Body")
	in := strings.Join(lines, "\n")

	_, body, found := SplitFrontmatter(in)
	require.False(t, found)
	assert.Equal(t, in, body)
}

func TestExtractMarkdownKeepsProseBetweenRules(t *testing.T) {
	raw := []byte("---\n\nA paragraph between rules.\n\n---\n\nTail.\n")
	res := newExtractor(nil).Extract("guide/rules.md", raw, classify.Markdown)
	assert.Equal(t, "rules", res.Title)
	assert.Contains(t, res.Text, "A paragraph between rules.")
	assert.Contains(t, res.Text, "Tail.")
}

func TestFrontmatterStrippingIsIdempotent(t *testing.T) {
	inputs := []string{
		"---\ntitle: A\n---\n# Heading\n\nText\n",
		"+++\ntitle = \"B\"\n+++\n\nParagraph\n\n---\n\nMore\n",
		"No frontmatter at all\n",
	}
	for _, in := range inputs {
		_, once, _ := SplitFrontmatter(in)
		_, twice, found := SplitFrontmatter(once)
		assert.False(t, found, in)
		assert.Equal(t, once, twice)
	}
}

func TestExtractMDXCleaning(t *testing.T) {
	src := strings.Join([]string{
		"import { Tabs } from './components'",
		"import Demo from \"../components/Demo.vue\"",
		"export const meta = {",
		"  author: 'me',",
		"}",
		"",
		"# Title",
		"",
		"{/* hidden note */}",
		"<!-- draft comment -->",
		"Text with <Badge type=\"tip\">new</Badge> and `<div>` code.",
		"",
		"Use <code>npm run docs</code> to build.",
		"",
		"```ts title=\"a.ts\"",
		"import x from 'y'",
		"<b>bold</b>",
		"```",
		"",
	}, "\n")

	res := newExtractor(nil).Extract("guide/page.mdx", []byte(src), classify.Markdown)
	text := res.Text

	assert.True(t, strings.HasPrefix(text, "# Title"), text)
	assert.NotContains(t, text, "Tabs")
	assert.NotContains(t, text, "author")
	assert.NotContains(t, text, "hidden note")
	assert.NotContains(t, text, "draft comment")
	assert.NotContains(t, text, "<Badge")
	assert.Contains(t, text, "Text with new and `<div>` code.")
	assert.Contains(t, text, "Use <code>npm run docs</code> to build.")
	assert.Contains(t, text, "```\nimport x from 'y'\n<b>bold</b>\n```")
	assert.NotContains(t, text, "title=\"a.ts\"")
}

func TestExtractMarkdownKeepsIndentedCode(t *testing.T) {
	res := newExtractor(nil).Extract("a.md", []byte("Para\n\n    <b>kept</b>\n"), classify.Markdown)
	assert.Equal(t, "Para\n\n    <b>kept</b>", res.Text)
}

func TestExtractMarkdownDropsScriptAndStyle(t *testing.T) {
	src := "Before\n\n<script>\nconst a = 1;\n</script>\n\n<style scoped>\n.a { color: red }\n</style>\n\nAfter\n"
	res := newExtractor(nil).Extract("a.md", []byte(src), classify.Markdown)
	assert.True(t, strings.HasPrefix(res.Text, "Before"))
	assert.True(t, strings.HasSuffix(res.Text, "After"))
	assert.NotContains(t, res.Text, "const a")
	assert.NotContains(t, res.Text, "color")
}

func TestExtractMarkdownLeavesProseImportAlone(t *testing.T) {
	res := newExtractor(nil).Extract("a.md", []byte("import the config first.\n"), classify.Markdown)
	assert.Equal(t, "import the config first.", res.Text)
}

func TestStripDirectives(t *testing.T) {
	in := "import {\n  a,\n  b,\n} from 'x'\n\n```js\nimport y from 'z'\n```\n<<< @/snippets/demo.ts#setup{2}\n"
	out, includes := stripDirectives(in)
	assert.Equal(t, "\n```js\nimport y from 'z'\n```\n", out)
	assert.Equal(t, []string{"@/snippets/demo.ts"}, includes)
}

func TestStripDirectivesStopsAtBlankLine(t *testing.T) {
	in := "# T\n\nexport default {\n\nSome prose that must survive.\n\nMore prose.\n"
	out, includes := stripDirectives(in)
	require.Empty(t, includes)
	assert.Equal(t, "# T\n\n\nSome prose that must survive.\n\nMore prose.\n", out)

	res := newExtractor(nil).Extract("page.mdx", []byte(in), classify.Markdown)
	assert.NotContains(t, res.Text, "export default")
	assert.Contains(t, res.Text, "Some prose that must survive.")
	assert.Contains(t, res.Text, "More prose.")
}

func TestStripDirectivesUnbalancedAtEOF(t *testing.T) {
	out, _ := stripDirectives("Intro\n\nexport const meta = {\n  title: 'x',")
	assert.Equal(t, "Intro\n", out)
}

func TestSnippetInlining(t *testing.T) {
	src := fstest.MapFS{
		"guide/snippets/demo.ts": {Data: []byte("const x = 1;\n")},
	}
	raw := []byte("# Demo\n\nSee \"./snippets/demo.ts\" for details.\n")

	res := newExtractor(src).Extract("guide/page.md", raw, classify.Markdown)
	assert.Equal(t, "# Demo\n\nSee \"./snippets/demo.ts\" for details.\n\n```ts\nconst x = 1;\n```", res.Text)
	assert.Equal(t, []string{"guide/snippets/demo.ts"}, res.Snippets)
}

func TestSnippetIncludeDirective(t *testing.T) {
	src := fstest.MapFS{
		"snippets/setup.js": {Data: []byte("export default {}\n")},
	}
	res := newExtractor(src).Extract("guide/page.md", []byte("Setup:\n\n<<< @/snippets/setup.js{1}\n"), classify.Markdown)
	assert.Equal(t, "Setup:\n\n```js\nexport default {}\n```", res.Text)
}

func TestSnippetInliningSkips(t *testing.T) {
	src := fstest.MapFS{
		"guide/examples/a.ts":     {Data: []byte("a()\n")},
		"guide/examples/data.md":  {Data: []byte("# not a snippet\n")},
		"guide/examples/empty.ts": {Data: []byte("  \n")},
		"snippets/outside.ts":     {Data: []byte("nope\n")},
	}
	raw := []byte(strings.Join([]string{
		"'./examples/a.ts' and again \"./examples/a.ts\"",
		"'./examples/data.md'",
		"'./examples/empty.ts'",
		"'./examples/missing.ts'",
		"'../../snippets/outside.ts'",
		"'https://example.com/examples/remote.ts'",
	}, "\n"))

	res := newExtractor(src).Extract("guide/page.md", raw, classify.Markdown)
	assert.Equal(t, 1, strings.Count(res.Text, "```ts"))
	assert.Equal(t, []string{"guide/examples/a.ts"}, res.Snippets)
	assert.NotContains(t, res.Text, "nope")
}

func TestSnippetFenceLongerThanContent(t *testing.T) {
	src := fstest.MapFS{
		"examples/doc.ts": {Data: []byte("const s = ```tpl```\n")},
	}
	res := newExtractor(src).Extract("page.md", []byte("'./examples/doc.ts'"), classify.Markdown)
	assert.Contains(t, res.Text, "````ts\nconst s = ```tpl```\n````")
}

func TestSnippetInliningDisabled(t *testing.T) {
	src := fstest.MapFS{"snippets/demo.ts": {Data: []byte("x\n")}}
	e := New(Options{Snippets: false, Markers: []string{"snippets"}, SnippetExtensions: []string{".ts"}, Source: src})
	res := e.Extract("page.md", []byte("see './snippets/demo.ts'"), classify.Markdown)
	assert.Equal(t, "see './snippets/demo.ts'", res.Text)
	assert.Empty(t, res.Snippets)
}

func TestExtractHTMLRemovesNav(t *testing.T) {
	res := newExtractor(nil).Extract("page.html", []byte("<html><body><nav>X</nav><p>Hello</p></body></html>"), classify.HTML)
	assert.Equal(t, "Hello", res.Text)
	assert.Equal(t, "page", res.Title)
}

func TestExtractHTMLStructure(t *testing.T) {
	src := `<html><head><title> My  Page </title></head><body>` +
		`<header>H</header><h1>Guide</h1><p>Some <b>bold</b> text.</p>` +
		`<iframe src="https://www.youtube.com/embed/abc"></iframe>` +
		`<iframe src="https://ads.example.com/x"></iframe>` +
		"<pre>  line1\n    line2</pre>" +
		`<ul><li>one</li><li>two</li></ul><aside>A</aside><footer>F</footer></body></html>`

	res := newExtractor(nil).Extract("guide/index.html", []byte(src), classify.HTML)
	assert.Equal(t, "My Page", res.Title)
	assert.Equal(t, "Guide\n\nSome bold text.\n\n[Embedded video: https://www.youtube.com/embed/abc]\n\n  line1\n    line2\n\n- one\n- two", res.Text)
}

func TestIsVideo(t *testing.T) {
	assert.True(t, isVideo("https://player.vimeo.com/video/1"))
	assert.True(t, isVideo("//www.loom.com/embed/x"))
	assert.True(t, isVideo("https://fast.wistia.net/embed/iframe/x"))
	assert.True(t, isVideo("https://youtu.be/abc"))
	assert.False(t, isVideo("https://notyoutube.com.evil/x"))
	assert.False(t, isVideo(""))
}

func TestExtractStructured(t *testing.T) {
	e := newExtractor(nil)
	tests := []struct {
		name string
		path string
		ct   classify.ContentType
		in   string
		want string
	}{
		{"yaml", "a.yaml", classify.YAML, "a: 1\nb: two", "{\n  \"a\": 1,\n  \"b\": \"two\"\n}"},
		{"yaml invalid passes through", "a.yml", classify.YAML, "a: [1, 2\nb: :", "a: [1, 2\nb: :"},
		{"yaml self alias passes through", "a.yml", classify.YAML, "a: &x [1, *x]\n", "a: &x [1, *x]"},
		{"json", "a.json", classify.JSON, `{"k":[1,2]}`, "{\n  \"k\": [\n    1,\n    2\n  ]\n}"},
		{"json invalid passes through", "a.json", classify.JSON, `{"k":}`, `{"k":}`},
		{"toml", "a.toml", classify.TOML, "x = 1", "{\n  \"x\": 1\n}"},
		{"xml", "a.xml", classify.XML, "<a><b>1</b></a>", "<a>\n  <b>1</b>\n</a>"},
		{"empty yaml", "a.yaml", classify.YAML, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Extract(tt.path, []byte(tt.in), tt.ct)
			assert.Equal(t, tt.want, res.Text)
			assert.Equal(t, "a", res.Title)
		})
	}
}

func TestExtractPlainNormalizesInput(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("line1\r\nline2\r\n")...)
	res := newExtractor(nil).Extract("notes.txt", raw, classify.Plain)
	assert.Equal(t, "line1\nline2", res.Text)
	assert.Equal(t, "notes", res.Title)
}

func TestBaseTitle(t *testing.T) {
	assert.Equal(t, "intro", BaseTitle("guide/intro.md"))
	assert.Equal(t, "archive.tar", BaseTitle("a/archive.tar.gz"))
	assert.Equal(t, ".env", BaseTitle(".env"))
	assert.Equal(t, "README", BaseTitle("README"))
}
