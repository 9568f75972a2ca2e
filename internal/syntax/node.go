// Package syntax defines the concrete syntax tree handed over by the grammar. A CST node only carries
// its kind, the role it plays in its parent, its raw text and its span: all semantic work happens
// during lowering.
package syntax

import (
	"github.com/weftlang/weft/internal/sourcecode"
)

// roles a child can play in its parent
const (
	FieldName      = "name"
	FieldType      = "type"
	FieldValue     = "value"
	FieldDoc       = "doc"
	FieldMeta      = "meta"
	FieldHead      = "head"
	FieldPath      = "path"
	FieldSource    = "source"
	FieldExport    = "export"
	FieldImport    = "import"
	FieldReturns   = "returns"
	FieldBody      = "body"
	FieldCallee    = "callee"
	FieldArgs      = "args"
	FieldArg       = "arg"
	FieldCondition = "condition"
	FieldThen      = "then"
	FieldElse      = "else"
	FieldSubject   = "subject"
	FieldPattern   = "pattern"
	FieldGuard     = "guard"
	FieldCatch     = "catch"
	FieldTry       = "try"
	FieldLeft      = "left"
	FieldRight     = "right"
	FieldContainer = "container"
	FieldKeys      = "keys"
	FieldKey       = "key"
	FieldCapture   = "capture"
	FieldDefault   = "default"
	FieldScope     = "scope"
)

type Node struct {
	Kind     Kind            `json:"kind" yaml:"kind"`
	Field    string          `json:"field,omitempty" yaml:"field,omitempty"`
	Text     string          `json:"text,omitempty" yaml:"text,omitempty"`
	Span     sourcecode.Span `json:"span" yaml:"span"`
	Children []*Node         `json:"children,omitempty" yaml:"children,omitempty"`
}

// Child returns the first child playing the given role, or nil.
func (n *Node) Child(field string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Field == field {
			return child
		}
	}
	return nil
}

// ChildrenOf returns the children playing the given role, in source order.
func (n *Node) ChildrenOf(field string) []*Node {
	if n == nil {
		return nil
	}
	var children []*Node
	for _, child := range n.Children {
		if child.Field == field {
			children = append(children, child)
		}
	}
	return children
}

// ChildrenOfKind returns the children of the given kind, in source order.
func (n *Node) ChildrenOfKind(kind Kind) []*Node {
	if n == nil {
		return nil
	}
	var children []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			children = append(children, child)
		}
	}
	return children
}

// Unroled returns the children that do not play a named role, in source order.
func (n *Node) Unroled() []*Node {
	return n.ChildrenOf("")
}

func (n *Node) Has(field string) bool {
	return n.Child(field) != nil
}

func (n *Node) IsError() bool {
	return n != nil && n.Kind == Error
}

// ContainsError reports whether n or one of its descendants is an error node.
func (n *Node) ContainsError() bool {
	if n == nil {
		return false
	}
	if n.Kind == Error {
		return true
	}
	for _, child := range n.Children {
		if child.ContainsError() {
			return true
		}
	}
	return false
}

// New creates a non-terminal node.
func New(kind Kind, span sourcecode.Span, children ...*Node) *Node {
	return &Node{Kind: kind, Span: span, Children: children}
}

// Leaf creates a terminal node.
func Leaf(kind Kind, text string, span sourcecode.Span) *Node {
	return &Node{Kind: kind, Text: text, Span: span}
}

// With sets the role of n in its parent and returns n.
func (n *Node) With(field string) *Node {
	n.Field = field
	return n
}

// WithText sets the text of n and returns n.
func (n *Node) WithText(text string) *Node {
	n.Text = text
	return n
}

func At(start, end int32) sourcecode.Span {
	return sourcecode.Span{Start: start, End: end}
}

// Walk calls fn on n and its descendants (pre-order), it stops descending into a node if fn returns false.
func Walk(n *Node, fn func(n *Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}
