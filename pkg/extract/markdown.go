package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/alex-boop-chasey/vite-docs/pkg/format/finalizer"
)

var (
	htmlComment = regexp.MustCompile(`(?s)<!--.*?-->`)
	mdxComment  = regexp.MustCompile(`(?s)\{/\*.*?\*/\}`)
	scriptElem  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleElem   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	htmlTag     = regexp.MustCompile(`</?([A-Za-z][A-Za-z0-9._:-]*)(?:\s[^<>]*?)?/?>`)

	esmStart = regexp.MustCompile(`^(?:import\s*\{|import\s*\*\s*as\s|import\s+['"]|import\s+(?:type\s+)?[\w$]+\s*(?:,\s*[{*][^'"]*)?\s+from\s+['"]|export\s+(?:default\b|const\b|let\b|var\b|function\b|class\b|async\s+function\b|\{|\*))`)
	include  = regexp.MustCompile(`^\s{0,3}<<<\s+(\S+)`)
)

func (e *Extractor) markdown(relPath, src string) Result {
	meta, body, _ := SplitFrontmatter(src)

	var refs []string
	if e.opts.Snippets {
		refs = e.quotedRefs(body)
	}
	body, includes := stripDirectives(body)
	if e.opts.Snippets {
		refs = append(includes, refs...)
	}

	cleaned := e.cleanMarkdown([]byte(body))
	blocks, inlined := e.inlineSnippets(relPath, refs)

	return Result{
		Title:    metaTitle(meta),
		Text:     strings.TrimSpace(cleaned) + blocks,
		Metadata: meta,
		Snippets: inlined,
	}
}

// stripDirectives is the line tokenizer pass. Outside fenced code it drops
// MDX import/export statements and collects VitePress "<<< path" include
// lines. A statement never runs past a blank line.
func stripDirectives(body string) (string, []string) {
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))
	var includes []string
	var fences finalizer.FenceTracker

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if fences.Next(line) {
			out = append(out, line)
			continue
		}
		if m := include.FindStringSubmatch(line); m != nil {
			includes = append(includes, includeTarget(m[1]))
			continue
		}
		if esmStart.MatchString(line) {
			// the statement ends where its brackets balance or at the first
			// blank line, whichever comes first
			depth := 0
			for j := i; j < len(lines); j++ {
				if j > i && finalizer.IsBlank(lines[j]) {
					break
				}
				i = j
				if depth += bracketDelta(lines[j]); depth <= 0 {
					break
				}
			}
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n"), includes
}

// includeTarget drops the region and line-highlight suffixes of an include
// such as "@/snippets/demo.ts#setup{2-4}".
func includeTarget(ref string) string {
	if i := strings.IndexAny(ref, "#{"); i >= 0 {
		ref = ref[:i]
	}
	return ref
}

// bracketDelta counts opening minus closing brackets outside string literals
func bracketDelta(line string) int {
	depth := 0
	var quote rune
	escaped := false
	for _, r := range line {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"', '`':
			quote = r
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			depth--
		}
	}
	return depth
}

type byteSpan struct {
	start, stop int
	keep        bool
}

// codeSpans walks the goldmark tree and returns the byte ranges of fenced
// code, indented code and code spans (kept verbatim) plus fence info strings
// (dropped), sorted by offset.
func (e *Extractor) codeSpans(src []byte) []byteSpan {
	doc := e.md.Parser().Parse(text.NewReader(src))

	var spans []byteSpan
	addLines := func(n ast.Node) {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			spans = append(spans, byteSpan{start: seg.Start, stop: seg.Stop, keep: true})
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			if node.Info != nil {
				seg := node.Info.Segment
				spans = append(spans, byteSpan{start: seg.Start, stop: seg.Stop})
			}
			addLines(node)
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			addLines(node)
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					spans = append(spans, byteSpan{start: t.Segment.Start, stop: t.Segment.Stop, keep: true})
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}

// cleanMarkdown strips comments, script/style elements and HTML tags from
// prose while copying code regions through untouched.
func (e *Extractor) cleanMarkdown(src []byte) string {
	var sb strings.Builder
	cursor := 0
	for _, s := range e.codeSpans(src) {
		if s.start < cursor || s.stop > len(src) || s.start > s.stop {
			continue
		}
		sb.WriteString(cleanProse(string(src[cursor:s.start])))
		if s.keep {
			sb.Write(src[s.start:s.stop])
		}
		cursor = s.stop
	}
	sb.WriteString(cleanProse(string(src[cursor:])))
	return sb.String()
}

func cleanProse(s string) string {
	if s == "" {
		return s
	}
	s = htmlComment.ReplaceAllString(s, "")
	s = mdxComment.ReplaceAllString(s, "")
	s = scriptElem.ReplaceAllString(s, "")
	s = styleElem.ReplaceAllString(s, "")
	return htmlTag.ReplaceAllStringFunc(s, func(tag string) string {
		name := strings.ToLower(htmlTag.FindStringSubmatch(tag)[1])
		if name == "code" || name == "pre" {
			return tag
		}
		return ""
	})
}
