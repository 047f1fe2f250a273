// Package aggregate assembles extraction records into the compiled document
// and owns the finalization pass applied to freshly rendered text.
package aggregate

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alex-boop-chasey/vite-docs/pkg/classify"
	"github.com/alex-boop-chasey/vite-docs/pkg/format/finalizer"
	"github.com/alex-boop-chasey/vite-docs/pkg/walker"
)

// Strategy selects how sections are laid out
type Strategy string

const (
	Flat    Strategy = "flat"
	Grouped Strategy = "grouped"
)

// Separator is the line placed between sections and groups
const Separator = "---"

// GeneralGroup collects root-level files
const GeneralGroup = "General"

// Header is the document preamble
type Header struct {
	Title  string
	Source string
}

// Section is one processed file
type Section struct {
	Title string
	Body  string
	Group string
	Path  string
}

// Group is a bucket of sections sharing a group key
type Group struct {
	Key      string
	Title    string
	Sections []Section
}

// Document holds sections in walk order
type Document struct {
	Header   Header
	Sections []Section
}

// Aggregate builds a document from the processed records, keeping walk order
func Aggregate(records []walker.Record, header Header) Document {
	doc := Document{Header: header}
	for _, r := range records {
		if r.Status != classify.StatusProcessed {
			continue
		}
		title := r.Title
		if title == "" {
			title = r.RelPath
		}
		doc.Sections = append(doc.Sections, Section{
			Title: title,
			Body:  closeFences(r.Text),
			Group: r.Group,
			Path:  r.RelPath,
		})
	}
	return doc
}

// Groups buckets sections by group key in first-seen order. Sections keep
// their walk order inside each group.
func (d Document) Groups() []Group {
	var groups []Group
	index := map[string]int{}
	for _, s := range d.Sections {
		i, ok := index[s.Group]
		if !ok {
			i = len(groups)
			index[s.Group] = i
			groups = append(groups, Group{Key: s.Group, Title: GroupTitle(s.Group)})
		}
		groups[i].Sections = append(groups[i].Sections, s)
	}
	return groups
}

// Render assembles the document with the given strategy and finalizes it
func (d Document) Render(s Strategy) string {
	var blocks []string
	switch s {
	case Grouped:
		groups := d.Groups()
		blocks = append(blocks, d.header(plural(len(d.Sections), "section")+" in "+plural(len(groups), "group")), Separator)
		for _, g := range groups {
			blocks = append(blocks, "# "+g.Title)
			for i, sec := range g.Sections {
				if i > 0 {
					blocks = append(blocks, Separator)
				}
				blocks = append(blocks, sec.render())
			}
			blocks = append(blocks, Separator)
		}
	default:
		blocks = append(blocks, d.header(plural(len(d.Sections), "section")), Separator)
		for _, sec := range d.Sections {
			blocks = append(blocks, sec.render(), Separator)
		}
	}
	// no trailing separator after the last section
	if n := len(blocks); blocks[n-1] == Separator {
		blocks = blocks[:n-1]
	}
	return Finalize(strings.Join(blocks, "\n\n"))
}

func (d Document) header(count string) string {
	title := d.Header.Title
	if title == "" {
		title = "Documentation"
	}
	if d.Header.Source != "" {
		return fmt.Sprintf("# %s\n\n> Compiled from `%s`: %s.", title, d.Header.Source, count)
	}
	return fmt.Sprintf("# %s\n\n> %s.", title, count)
}

func (s Section) render() string {
	return "## " + s.Title + "\n\n" + s.Body
}

// GroupTitle turns a group key into a heading: "getting-started" becomes
// "Getting Started" and the empty key becomes GeneralGroup.
func GroupTitle(key string) string {
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(key))
	if len(words) == 0 {
		return GeneralGroup
	}
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

// closeFences appends a closing marker when a body ends inside a fenced
// block so the separators that follow stay outside code.
func closeFences(body string) string {
	var tr finalizer.FenceTracker
	for _, line := range strings.Split(body, "\n") {
		tr.Next(line)
	}
	if marker, open := tr.Open(); open {
		return body + "\n" + marker
	}
	return body
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
