// Package ast contains the typed abstract syntax tree produced by lowering. Nodes are built once by the
// lower package and are not mutated afterwards, the only exceptions are the commit of binding containers
// and the re-stamping of the source reference of folded nodes.
package ast

import (
	"github.com/weftlang/weft/internal/sourcecode"
	"github.com/weftlang/weft/internal/types"
)

// A Node is an immutable AST node, all node types embed NodeBase that implements the Node interface.
type Node interface {
	Base() NodeBase
	BasePtr() *NodeBase
	Src() sourcecode.Ref
}

// NodeBase implements the Node interface.
type NodeBase struct {
	Ref sourcecode.Ref `json:"-"`
}

func (base NodeBase) Base() NodeBase {
	return base
}

func (base *NodeBase) BasePtr() *NodeBase {
	return base
}

func (base NodeBase) Src() sourcecode.Ref {
	return base.Ref
}

// At returns a NodeBase holding a copy of ref.
func At(ref sourcecode.Ref) NodeBase {
	return NodeBase{Ref: ref.Copy()}
}

// Restamp replaces the source reference of node with a copy of ref and returns node.
func Restamp[N Node](node N, ref sourcecode.Ref) N {
	node.BasePtr().Ref = ref.Copy()
	return node
}

// An Expression is a node producing a value, its static value type is known at construction time.
type Expression interface {
	Node
	ValueType() types.Type
	expressionNode()
}

// A Pattern is the left side of a match line.
type Pattern interface {
	Node
	patternNode()
}

// A CapturingPattern is a pattern that can bind the whole matched value to a name.
type CapturingPattern interface {
	Pattern
	WholeCapture() *CapturePattern
}

// Named is implemented by the entries of binding containers.
type Named interface {
	Node
	Name() string
}

// A ForHeadElement is a generator, a local definition or a filter in the head of a for comprehension.
type ForHeadElement interface {
	Node
	forHeadElement()
}

// An Argument is a positional, named or splat argument of a call.
type Argument interface {
	Node
	ArgExpression() Expression
	argumentNode()
}

// An ImportMember is either a whole-module import or a named component import.
type ImportMember interface {
	Node
	importMember()
}
