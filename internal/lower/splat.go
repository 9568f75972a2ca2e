package lower

import (
	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/sourcecode"
	"github.com/weftlang/weft/internal/syntax"
	"github.com/weftlang/weft/internal/types"
)

// foldBinary folds segments from the left: [a, b, c] becomes op(op(a, b), c). Each synthetic operation is
// located at its left operand.
func foldBinary(op ast.BinaryOperator, segments []ast.Expression) ast.Expression {
	left := segments[0]
	for _, right := range segments[1:] {
		left = &ast.BinaryOperation{
			NodeBase: ast.At(left.Src()),
			Operator: op,
			Left:     left,
			Right:    right,
		}
	}
	return left
}

func (b *builder) lowerList(n *syntax.Node) (ast.Expression, error) {
	return b.foldListItems(b.ref(n), n.Children)
}

// foldListItems lowers the items of a list literal or of a key sequence. Runs of plain items become list
// literals located at their first item, splats are kept as is. The segments are then folded into list
// concatenations.
func (b *builder) foldListItems(ref sourcecode.Ref, items []*syntax.Node) (ast.Expression, error) {
	var (
		segments []ast.Expression
		run      *ast.List
	)

	for _, item := range items {
		if item.Kind == syntax.Splat {
			if run != nil {
				segments = append(segments, run)
				run = nil
			}

			spliced, err := b.lowerSplat(item)
			if err != nil {
				return nil, err
			}
			segments = append(segments, spliced)
			continue
		}

		element, err := b.lowerExpression(item)
		if err != nil {
			return nil, err
		}

		if run == nil {
			run = &ast.List{NodeBase: ast.At(b.ref(item))}
		}
		run.Elements = append(run.Elements, element)
	}

	if run != nil {
		segments = append(segments, run)
	}

	switch len(segments) {
	case 0:
		return &ast.List{NodeBase: ast.At(ref), Elements: []ast.Expression{}}, nil
	case 1:
		return ast.Restamp(segments[0], ref), nil
	}
	return foldBinary(ast.ListConcat, segments), nil
}

// lowerDict lowers a dict literal, its children are alternating keys and values interleaved with splats.
// Keys are cast to strings.
func (b *builder) lowerDict(n *syntax.Node) (ast.Expression, error) {
	var (
		segments []ast.Expression
		run      *ast.Dict
	)

	children := n.Children
	for i := 0; i < len(children); i++ {
		child := children[i]

		if child.Kind == syntax.Splat {
			if run != nil {
				segments = append(segments, run)
				run = nil
			}

			spliced, err := b.lowerSplat(child)
			if err != nil {
				return nil, err
			}
			segments = append(segments, spliced)
			continue
		}

		if i+1 >= len(children) || children[i+1].Kind == syntax.Splat {
			return nil, b.errorf(langerr.ParseError, child, DICT_KEY_WITHOUT_VALUE)
		}

		entry, err := b.lowerDictEntry(child, children[i+1])
		if err != nil {
			return nil, err
		}
		i++

		if run == nil {
			run = &ast.Dict{NodeBase: ast.At(entry.Src())}
		}
		run.Entries = append(run.Entries, entry)
	}

	if run != nil {
		segments = append(segments, run)
	}

	switch len(segments) {
	case 0:
		return &ast.Dict{NodeBase: ast.At(b.ref(n)), Entries: []*ast.DictEntry{}}, nil
	case 1:
		return ast.Restamp(segments[0], b.ref(n)), nil
	}
	return foldBinary(ast.DictMerge, segments), nil
}

func (b *builder) lowerDictEntry(keyNode, valueNode *syntax.Node) (*ast.DictEntry, error) {
	key, err := b.lowerExpression(keyNode)
	if err != nil {
		return nil, err
	}
	key, err = addImplicitCast(types.String, key)
	if err != nil {
		return nil, err
	}

	value, err := b.lowerExpression(valueNode)
	if err != nil {
		return nil, err
	}

	return &ast.DictEntry{
		NodeBase: ast.At(key.Src()),
		Key:      key,
		Value:    value,
	}, nil
}

func (b *builder) lowerSplat(n *syntax.Node) (ast.Expression, error) {
	if len(n.Children) == 0 {
		return nil, b.errorf(langerr.ParseError, n, MISSING_SPLAT_EXPRESSION)
	}
	return b.lowerExpression(n.Children[0])
}

// lowerContainerAccess lowers `container[k1, k2, ...]`, the keys are folded into a single list expression.
func (b *builder) lowerContainerAccess(n *syntax.Node) (ast.Expression, error) {
	containerNode := n.Child(syntax.FieldContainer)
	if containerNode == nil {
		return nil, b.missing(n, syntax.FieldContainer)
	}
	keysNode := n.Child(syntax.FieldKeys)
	if keysNode == nil {
		return nil, b.missing(n, syntax.FieldKeys)
	}

	container, err := b.lowerExpression(containerNode)
	if err != nil {
		return nil, err
	}

	keys, err := b.foldListItems(b.ref(keysNode), keysNode.Children)
	if err != nil {
		return nil, err
	}

	return &ast.ContainerAccess{
		NodeBase:  ast.At(b.ref(n)),
		Container: container,
		Keys:      keys,
	}, nil
}
