package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/alex-boop-chasey/vite-docs/pkg/logger"
)

// DefaultIndent is the indentation used for every re-serialized document.
const DefaultIndent = "  "

// sizeWarningBytes triggers a warning for unusually large structured files.
const sizeWarningBytes = 16 * 1024 * 1024

func warnIfLarge(kind string, input []byte) {
	if len(input) > sizeWarningBytes {
		logger.Warn(fmt.Sprintf("Processing very large %s document (>%dMB); may consume significant memory", kind, sizeWarningBytes/(1024*1024)))
	}
}

// PrettifyJSON re-indents a JSON document. Invalid JSON is an error so the
// caller can fall back to the raw text.
func PrettifyJSON(input []byte, indent string) ([]byte, error) {
	if !json.Valid(input) {
		return nil, errors.New("invalid JSON")
	}
	warnIfLarge("JSON", input)

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(input), "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// YAMLToJSON decodes every document in a YAML stream and re-serializes it as
// indented JSON, keeping mapping keys in document order. A stream with more
// than one document becomes a JSON array. An empty stream yields empty output.
func YAMLToJSON(input []byte, indent string) ([]byte, error) {
	warnIfLarge("YAML", input)

	dec := yaml.NewDecoder(bytes.NewReader(input))
	conv := newYAMLConverter()
	var docs []interface{}
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		value, err := conv.value(&node)
		if err != nil {
			return nil, err
		}
		docs = append(docs, value)
	}

	switch len(docs) {
	case 0:
		return nil, nil
	case 1:
		return marshalIndent(docs[0], indent)
	default:
		return marshalIndent(docs, indent)
	}
}

// marshalIndent encodes v without HTML escaping; documentation text is full
// of angle brackets that must survive verbatim.
func marshalIndent(v interface{}, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// orderedMap marshals as a JSON object preserving insertion order.
type orderedMap []orderedEntry

type orderedEntry struct {
	key   string
	value interface{}
}

func (m orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalIndent(e.key, "")
		if err != nil {
			return nil, err
		}
		v, err := marshalIndent(e.value, "")
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// maxAliasExpansions bounds how many alias references one YAML stream may
// resolve, so nested anchors cannot expand without limit.
const maxAliasExpansions = 10000

// yamlConverter turns a yaml.Node graph into ordered JSON values. Anchors
// are registered before their children are parsed, so a self-referencing
// alias makes the graph cyclic; active tracks the nodes on the current path.
type yamlConverter struct {
	active  map[*yaml.Node]bool
	aliases int
}

func newYAMLConverter() *yamlConverter {
	return &yamlConverter{active: make(map[*yaml.Node]bool)}
}

func (c *yamlConverter) value(n *yaml.Node) (interface{}, error) {
	if c.active[n] {
		return nil, fmt.Errorf("yaml alias at line %d refers to itself", n.Line)
	}
	c.active[n] = true
	defer delete(c.active, n)

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.value(n.Content[0])
	case yaml.AliasNode:
		c.aliases++
		if c.aliases > maxAliasExpansions {
			return nil, fmt.Errorf("yaml stream expands more than %d aliases", maxAliasExpansions)
		}
		if n.Alias == nil {
			return nil, fmt.Errorf("unresolved yaml alias at line %d", n.Line)
		}
		return c.value(n.Alias)
	case yaml.SequenceNode:
		out := make([]interface{}, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := c.value(child)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(orderedMap, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := c.value(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out = append(out, orderedEntry{key: n.Content[i].Value, value: v})
		}
		return out, nil
	case yaml.ScalarNode:
		var v interface{}
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode yaml scalar at line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported yaml node kind %d", n.Kind)
	}
}

// TOMLToJSON decodes a TOML document and re-serializes it as indented JSON.
func TOMLToJSON(input []byte, indent string) ([]byte, error) {
	warnIfLarge("TOML", input)

	var doc map[string]interface{}
	if err := toml.Unmarshal(input, &doc); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	if len(doc) == 0 {
		return nil, nil
	}
	return marshalIndent(doc, indent)
}

// PrettifyXML re-indents a well-formed XML document using etree.
func PrettifyXML(input []byte, indent string) ([]byte, error) {
	warnIfLarge("XML", input)

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(input); err != nil {
		return nil, fmt.Errorf("XML is not well-formed: %v", err)
	}
	doc.Indent(len(strings.ReplaceAll(indent, "\t", "  ")))

	out, err := doc.WriteToString()
	if err != nil {
		return nil, fmt.Errorf("failed to format XML: %v", err)
	}
	return []byte(strings.TrimSpace(out)), nil
}
