package ast

import (
	"reflect"
)

// CountNodes returns the number of nodes of the tree rooted at root, root included.
func CountNodes(root Node) int {
	count := 0
	Walk(root, func(Node, Node, Node, []Node, bool) (TraversalAction, error) {
		count++
		return ContinueTraversal, nil
	}, nil)
	return count
}

// FindNodes returns the nodes having the same type as typ in depth-first order, filter can be nil.
func FindNodes[T Node](root Node, typ T, filter func(n T) bool) []T {
	var found []T
	visitNodesOfType(root, typ, func(n T) bool {
		if filter == nil || filter(n) {
			found = append(found, n)
		}
		return true
	})
	return found
}

// FindFirstNode returns the first node having the same type as typ, the zero value is returned if there is none.
func FindFirstNode[T Node](root Node, typ T) T {
	var found T
	visitNodesOfType(root, typ, func(n T) bool {
		found = n
		return false
	})
	return found
}

// visitNodesOfType calls visit for each node of the type of typ until visit returns false.
func visitNodesOfType[T Node](root Node, typ T, visit func(n T) bool) {
	nodeType := reflect.TypeOf(typ)

	Walk(root, func(node, _, _ Node, _ []Node, _ bool) (TraversalAction, error) {
		if reflect.TypeOf(node) != nodeType {
			return ContinueTraversal, nil
		}
		if !visit(node.(T)) {
			return StopTraversal, nil
		}
		return ContinueTraversal, nil
	}, nil)
}

// FindRecoveredPlaceholders returns the nil literals substituted for invalid constructs during recovery.
func FindRecoveredPlaceholders(root Node) []*NilLiteral {
	return FindNodes(root, (*NilLiteral)(nil), func(n *NilLiteral) bool {
		return n.Recovered
	})
}
