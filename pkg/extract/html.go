package extract

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// chrome elements removed before text extraction
var ignoreHTMLTags = map[string]bool{
	"nav":      true,
	"footer":   true,
	"header":   true,
	"menu":     true,
	"aside":    true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

var blockTags = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Blockquote: true, atom.Dd: true,
	atom.Details: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true, atom.Form: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Hr: true, atom.Li: true, atom.Main: true, atom.Ol: true, atom.P: true,
	atom.Pre: true, atom.Section: true, atom.Summary: true, atom.Table: true,
	atom.Tr: true, atom.Ul: true, atom.Caption: true,
}

// paragraph-like blocks are followed by a blank line
var paragraphTags = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Pre: true, atom.Blockquote: true,
	atom.Table: true, atom.Ul: true, atom.Ol: true,
}

var whitespaceRun = regexp.MustCompile(`[ \t\f\v]+`)

var videoHosts = []string{
	"youtube.com", "youtube-nocookie.com", "youtu.be",
	"vimeo.com", "loom.com", "wistia.com", "wistia.net",
}

func extractHTML(text string) Result {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return Result{Text: text}
	}

	title := findTitle(doc)
	cleanHTML(doc)

	root := findElement(doc, atom.Body)
	if root == nil {
		root = doc
	}
	var w htmlText
	w.walk(root)
	return Result{Title: title, Text: w.String()}
}

func findTitle(n *html.Node) string {
	if t := findElement(n, atom.Title); t != nil {
		var sb strings.Builder
		for c := t.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
		return strings.Join(strings.Fields(sb.String()), " ")
	}
	return ""
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// cleanHTML removes chrome elements and swaps video iframes for a placeholder
func cleanHTML(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
			continue
		case c.Type != html.ElementNode:
			continue
		case ignoreHTMLTags[c.Data]:
			n.RemoveChild(c)
			continue
		case c.DataAtom == atom.Iframe:
			if src := attr(c, "src"); isVideo(src) {
				p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
				p.AppendChild(&html.Node{Type: html.TextNode, Data: "[Embedded video: " + src + "]"})
				n.InsertBefore(p, c)
			}
			n.RemoveChild(c)
			continue
		}
		cleanHTML(c)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func isVideo(src string) bool {
	if src == "" {
		return false
	}
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range videoHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// htmlText accumulates extracted lines; inline text is whitespace-collapsed
// while pre content is copied verbatim.
type htmlText struct {
	lines []string
	cur   strings.Builder
}

func (w *htmlText) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.inline(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			w.breakLine()
			return
		case atom.Pre:
			w.blank()
			w.raw(textContent(n))
			w.blank()
			return
		case atom.Td, atom.Th:
			w.inline(" ")
		}
	}

	block := n.Type == html.ElementNode && blockTags[n.DataAtom]
	if block {
		w.breakLine()
		if n.DataAtom == atom.Li {
			w.cur.WriteString("- ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	if block {
		if paragraphTags[n.DataAtom] {
			w.blank()
		} else {
			w.breakLine()
		}
	}
}

func (w *htmlText) inline(s string) {
	s = collapseSpace(s)
	if s == "" {
		return
	}
	cur := w.cur.String()
	if cur == "" || cur == "- " || strings.HasSuffix(cur, " ") {
		s = strings.TrimLeft(s, " ")
	}
	w.cur.WriteString(s)
}

func (w *htmlText) breakLine() {
	line := strings.TrimSpace(w.cur.String())
	w.cur.Reset()
	if line != "" && line != "-" {
		w.lines = append(w.lines, line)
	}
}

func (w *htmlText) blank() {
	w.breakLine()
	if n := len(w.lines); n > 0 && w.lines[n-1] != "" {
		w.lines = append(w.lines, "")
	}
}

func (w *htmlText) raw(s string) {
	w.breakLine()
	s = strings.Trim(s, "\n")
	if strings.TrimSpace(s) == "" {
		return
	}
	w.lines = append(w.lines, strings.Split(s, "\n")...)
}

func (w *htmlText) String() string {
	w.breakLine()
	return strings.TrimSpace(strings.Join(w.lines, "\n"))
}

func collapseSpace(s string) string {
	s = strings.NewReplacer("\n", " ", "\r", " ", "\u00a0", " ").Replace(s)
	return whitespaceRun.ReplaceAllString(s, " ")
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Br {
			sb.WriteString("\n")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}
