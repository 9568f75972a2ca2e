package ast

import (
	"fmt"
	"reflect"
	"runtime/debug"
)

type TraversalAction int

const (
	ContinueTraversal TraversalAction = iota
	Prune
	StopTraversal
)

type NodeHandler = func(node Node, parent Node, scopeNode Node, ancestorChain []Node, after bool) (TraversalAction, error)

// This functions performs a pre-order traversal on an AST (depth first).
// postHandle is called on a node after all its descendants have been visited.
func Walk(node Node, handle, postHandle NodeHandler) (err error) {
	defer func() {
		v := recover()

		switch val := v.(type) {
		case error:
			err = fmt.Errorf("%s:%w", debug.Stack(), val)
		case nil:
		case TraversalAction:
		default:
			panic(v)
		}
	}()

	ancestorChain := make([]Node, 0)
	walk(node, nil, &ancestorChain, handle, postHandle)
	return
}

func walk(node, parent Node, ancestorChain *[]Node, fn, afterFn NodeHandler) {

	if node == nil || reflect.ValueOf(node).IsNil() {
		return
	}

	if ancestorChain != nil {
		*ancestorChain = append((*ancestorChain), parent)
		defer func() {
			*ancestorChain = (*ancestorChain)[:len(*ancestorChain)-1]
		}()
	}

	var scopeNode = parent
	for _, a := range *ancestorChain {
		if IsScopeContainerNode(a) {
			scopeNode = a
		}
	}

	if fn != nil {
		action, err := fn(node, parent, scopeNode, *ancestorChain, false)

		if err != nil {
			panic(err)
		}

		switch action {
		case StopTraversal:
			panic(StopTraversal)
		case Prune:
			return
		}
	}

	for _, child := range Children(node) {
		walk(child, node, ancestorChain, fn, afterFn)
	}

	if afterFn != nil {
		action, err := afterFn(node, parent, scopeNode, *ancestorChain, true)

		if err != nil {
			panic(err)
		}

		switch action {
		case StopTraversal:
			panic(StopTraversal)
		}
	}
}

// Children returns the direct children of node in source order, nil children are not included.
func Children(node Node) []Node {
	var children []Node
	add := func(nodes ...Node) {
		for _, n := range nodes {
			if n != nil && !reflect.ValueOf(n).IsNil() {
				children = append(children, n)
			}
		}
	}

	switch n := node.(type) {
	case *Module:
		add(n.Doc, n.Meta)
		for _, imp := range n.Imports {
			add(imp)
		}
		for _, alias := range n.Aliases {
			add(alias)
		}
		for _, export := range n.Exports {
			add(export)
		}
		for _, lib := range n.Components {
			add(lib)
		}
	case *ModuleHead:
		add(n.Doc, n.Meta)
		for _, imp := range n.Imports {
			add(imp)
		}
		for _, alias := range n.Aliases {
			add(alias)
		}
		for _, export := range n.Exports {
			add(export)
		}
	case *Import:
		add(n.Path)
		for _, member := range n.Members {
			add(member)
		}
	case *Export:
		add(n.Source)
	case *Alias:
		add(n.Source)
	case *Library:
		add(n.Doc, n.Meta, n.Vars)
	case *VarDefs:
		add(n.nodes()...)
	case *Parameters:
		add(n.nodes()...)
	case *PartialArguments:
		add(n.nodes()...)
	case *VarDef:
		add(n.Doc, n.Meta, n.Value)
	case *Generator:
		add(n.Value)
	case *Parameter:
		add(n.Default)
	case *Doc:
		add(n.Expression)
	case *Meta:
		add(n.Expression)
	case *Interactive:
		for _, section := range n.Sections {
			add(section)
		}
	case *InteractiveSection:
		add(n.Scope, n.Vars)
	case *Arguments:
		for _, arg := range n.List {
			add(arg)
		}
	case *PositionalArgument:
		add(n.Expression)
	case *NamedArgument:
		add(n.Expression)
	case *SplatArgument:
		add(n.Expression)

	//expressions
	case *List:
		for _, e := range n.Elements {
			add(e)
		}
	case *Dict:
		for _, e := range n.Entries {
			add(e)
		}
	case *DictEntry:
		add(n.Key, n.Value)
	case *Function:
		add(n.Parameters, n.Body, n.Via)
	case *Via:
		add(n.Expression)
	case *Call:
		add(n.Callee, n.Arguments)
	case *PartialApplication:
		add(n.Callee, n.Arguments)
	case *If:
		add(n.Condition, n.Then, n.Else)
	case *For:
		add(n.Head, n.Body)
	case *ForHead:
		for _, e := range n.Elements {
			add(e)
		}
	case *Filter:
		add(n.Expression)
	case *Let:
		add(n.Bindings, n.Body)
	case *Match:
		add(n.Subject)
		for _, line := range n.Lines {
			add(line)
		}
	case *MatchLine:
		add(n.Pattern, n.Guard, n.Expression)
	case *TryCatch:
		add(n.Try, n.CaughtError, n.CaughtTrace, n.Catch)
	case *Throw:
		add(n.Expression)
	case *BinaryOperation:
		add(n.Left, n.Right)
	case *UnaryOperation:
		add(n.Operand)
	case *Cast:
		add(n.Expression)
	case *Is:
		add(n.Expression)
	case *TypeOf:
		add(n.Expression)
	case *Default:
		add(n.Expression, n.Fallback)
	case *Debug:
		add(n.Expression, n.Value)
	case *ContainerAccess:
		add(n.Container, n.Keys)

	//patterns
	case *ExpressionPattern:
		add(n.Expression, n.Capture)
	case *TypePattern:
		add(n.Capture)
	case *ListPattern:
		for _, e := range n.Elements {
			add(e)
		}
		add(n.Capture)
	case *HeadTailListPattern:
		for _, e := range n.Elements {
			add(e)
		}
		add(n.Tail, n.Capture)
	case *InitLastListPattern:
		add(n.Init)
		for _, e := range n.Elements {
			add(e)
		}
		add(n.Capture)
	case *MidListPattern:
		for _, e := range n.Head {
			add(e)
		}
		add(n.Mid)
		for _, e := range n.Last {
			add(e)
		}
		add(n.Capture)
	case *DictPattern:
		for _, e := range n.Entries {
			add(e)
		}
		add(n.Capture)
	case *OpenDictPattern:
		for _, e := range n.Entries {
			add(e)
		}
		add(n.Rest, n.Capture)
	case *DictPatternEntry:
		add(n.Pattern)
	}

	return children
}

// IsScopeContainerNode reports whether node introduces names visible to its descendants.
func IsScopeContainerNode(node Node) bool {
	switch node.(type) {
	case *Module, *Library, *InteractiveSection, *Function, *Let, *For, *MatchLine, *TryCatch:
		return true
	default:
		return false
	}
}
