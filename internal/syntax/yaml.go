package syntax

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/weftlang/weft/internal/sourcecode"
)

// yamlNode is the serialized form of a CST node:
//
//	kind: list
//	span: [0, 9]
//	children:
//	  - {kind: dec, text: "1", span: [1, 2]}
type yamlNode struct {
	Kind     string      `yaml:"kind"`
	Field    string      `yaml:"field,omitempty"`
	Text     *string     `yaml:"text,omitempty"`
	Span     []int32     `yaml:"span,omitempty"`
	Children []*yamlNode `yaml:"children,omitempty"`
}

// DecodeYAML decodes a serialized CST. If code is not empty the text of terminal nodes without an explicit
// text is taken from the source code covered by their span.
func DecodeYAML(data []byte, code string) (*Node, error) {
	var root yamlNode
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to decode CST: %w", err)
	}

	var runes []rune
	if code != "" {
		runes = []rune(code)
	}
	return convertYAMLNode(&root, runes, "")
}

// File is a source unit serialized along with its CST:
//
//	name: /lib/util.wf
//	entry: module
//	source: |
//	  library util { ... }
//	tree:
//	  kind: module
//	  ...
type File struct {
	Name   string
	Entry  string
	Source string
	Tree   *Node
}

type yamlFile struct {
	Name   string    `yaml:"name"`
	Entry  string    `yaml:"entry"`
	Source string    `yaml:"source"`
	Tree   *yamlNode `yaml:"tree"`
}

// DecodeYAMLFile decodes a serialized unit, the name and entry are optional.
func DecodeYAMLFile(data []byte) (*File, error) {
	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode unit: %w", err)
	}
	if file.Tree == nil {
		return nil, fmt.Errorf("missing tree")
	}

	var runes []rune
	if file.Source != "" {
		runes = []rune(file.Source)
	}

	tree, err := convertYAMLNode(file.Tree, runes, "")
	if err != nil {
		return nil, err
	}

	return &File{
		Name:   file.Name,
		Entry:  file.Entry,
		Source: file.Source,
		Tree:   tree,
	}, nil
}

func convertYAMLNode(n *yamlNode, runes []rune, path string) (*Node, error) {
	path += "/" + n.Kind

	kind, ok := KindByName(n.Kind)
	if !ok || kind == Invalid {
		return nil, fmt.Errorf("%s: unknown node kind %q", path, n.Kind)
	}

	node := &Node{Kind: kind, Field: n.Field}

	switch len(n.Span) {
	case 0:
	case 2:
		node.Span = sourcecode.Span{Start: n.Span[0], End: n.Span[1]}
		if node.Span.Start < 0 || node.Span.End < node.Span.Start {
			return nil, fmt.Errorf("%s: invalid span %v", path, n.Span)
		}
	default:
		return nil, fmt.Errorf("%s: a span should have exactly two elements", path)
	}

	if n.Text != nil {
		node.Text = *n.Text
	} else if kind.IsTerminal() && runes != nil && node.Span.End <= int32(len(runes)) {
		node.Text = string(runes[node.Span.Start:node.Span.End])
	}

	for _, child := range n.Children {
		converted, err := convertYAMLNode(child, runes, path)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, converted)
	}

	return node, nil
}

// IsTerminal reports whether the text of nodes of the kind is meaningful for lowering.
func (k Kind) IsTerminal() bool {
	switch k {
	case Identifier, DataType, Keyword, NilLiteral, BooleanLiteral, DecLiteral, HexLiteral, DoubleLiteral,
		DecimalLiteral, BinaryLiteral, DateTimeLiteral, StringVerbatim, StringHereDoc, KeyLiteral,
		StringText, StringEscape:
		return true
	}
	return false
}
