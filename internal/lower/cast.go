package lower

import (
	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/syntax"
	"github.com/weftlang/weft/internal/types"
)

// addImplicitCast returns expr unchanged if target is any or the static type of expr, it wraps expr in a cast
// located at expr otherwise. An IncompatibleTypes error is returned if the cast cannot succeed.
func addImplicitCast(target types.Type, expr ast.Expression) (ast.Expression, error) {
	from := expr.ValueType()
	if target == types.Any || from == target {
		return expr, nil
	}

	if !types.CanAttemptCast(from, target) {
		return nil, langerr.New(langerr.IncompatibleTypes, fmtCannotCast(from, target), expr.Src()).
			Put("from", from.String()).
			Put("to", target.String())
	}

	return &ast.Cast{
		NodeBase:   ast.At(expr.Src()),
		Expression: expr,
		Target:     target,
	}, nil
}

// dataType returns the type named by a data type node, any is returned for a nil node.
func (b *builder) dataType(n *syntax.Node) (types.Type, error) {
	if n == nil {
		return types.Any, nil
	}
	if n.IsError() {
		return 0, b.syntaxError(n)
	}
	t, ok := types.ByName(n.Text)
	if !ok {
		return 0, b.errorf(langerr.UnknownType, n, fmtUnknownType(n.Text))
	}
	return t, nil
}

// lowerCast lowers `expr as type`, the cast is always kept even if the operand already has the target type.
func (b *builder) lowerCast(n *syntax.Node) (ast.Expression, error) {
	operand, typeNode, err := b.operandAndType(n)
	if err != nil {
		return nil, err
	}

	target, err := b.dataType(typeNode)
	if err != nil {
		return nil, err
	}

	expr, err := b.lowerExpression(operand)
	if err != nil {
		return nil, err
	}

	if !types.CanAttemptCast(expr.ValueType(), target) {
		return nil, b.errorf(langerr.IncompatibleTypes, n, fmtCannotCast(expr.ValueType(), target))
	}

	return &ast.Cast{
		NodeBase:   ast.At(b.ref(n)),
		Expression: expr,
		Target:     target,
	}, nil
}

func (b *builder) lowerIs(n *syntax.Node) (ast.Expression, error) {
	operand, typeNode, err := b.operandAndType(n)
	if err != nil {
		return nil, err
	}

	t, err := b.dataType(typeNode)
	if err != nil {
		return nil, err
	}

	expr, err := b.lowerExpression(operand)
	if err != nil {
		return nil, err
	}

	return &ast.Is{
		NodeBase:   ast.At(b.ref(n)),
		Expression: expr,
		Type:       t,
	}, nil
}

func (b *builder) operandAndType(n *syntax.Node) (operand, typeNode *syntax.Node, err error) {
	for _, child := range n.Children {
		if child.Kind == syntax.DataType {
			typeNode = child
		} else if operand == nil {
			operand = child
		}
	}
	if operand == nil {
		return nil, nil, b.missing(n, "operand")
	}
	if typeNode == nil {
		return nil, nil, b.missing(n, "type")
	}
	return operand, typeNode, nil
}
