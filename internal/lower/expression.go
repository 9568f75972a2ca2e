package lower

import (
	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/syntax"
	"github.com/weftlang/weft/internal/types"
)

func (b *builder) lowerExpression(n *syntax.Node) (ast.Expression, error) {
	if n == nil {
		return nil, langerr.Unlocated(langerr.ParseError, "missing expression")
	}

	switch n.Kind {
	case syntax.NilLiteral, syntax.BooleanLiteral, syntax.DecLiteral, syntax.HexLiteral, syntax.DoubleLiteral,
		syntax.DecimalLiteral, syntax.BinaryLiteral, syntax.DateTimeLiteral, syntax.StringVerbatim,
		syntax.StringHereDoc, syntax.KeyLiteral:
		return b.lowerLiteral(n)
	case syntax.StringInterpolation:
		return b.lowerInterpolation(n)
	case syntax.LocalReference, syntax.GlobalReference, syntax.LibraryReference, syntax.ModuleReference:
		return b.lowerReference(n)
	case syntax.ListLiteral:
		return b.lowerList(n)
	case syntax.DictLiteral:
		return b.lowerDict(n)
	case syntax.ContainerAccess:
		return b.lowerContainerAccess(n)
	case syntax.FunctionLiteral:
		return b.lowerFunction(n)
	case syntax.Call:
		return b.lowerCall(n)
	case syntax.PartialApplication:
		return b.lowerPartialApplication(n)
	case syntax.Thread:
		return b.lowerThread(n)
	case syntax.If:
		return b.lowerIf(n)
	case syntax.For:
		return b.lowerFor(n)
	case syntax.Let:
		return b.lowerLet(n)
	case syntax.Match:
		return b.lowerMatch(n)
	case syntax.TryCatch:
		return b.lowerTryCatch(n)
	case syntax.Throw:
		operand, err := b.lowerOperand(n)
		if err != nil {
			return nil, err
		}
		return &ast.Throw{NodeBase: ast.At(b.ref(n)), Expression: operand}, nil
	case syntax.BinaryExpression:
		return b.lowerBinaryExpression(n)
	case syntax.UnaryExpression:
		return b.lowerUnaryExpression(n)
	case syntax.Nested:
		//parentheses do not appear in the AST
		return b.lowerOperand(n)
	case syntax.Cast:
		return b.lowerCast(n)
	case syntax.Is:
		return b.lowerIs(n)
	case syntax.TypeOf:
		operand, err := b.lowerOperand(n)
		if err != nil {
			return nil, err
		}
		return &ast.TypeOf{NodeBase: ast.At(b.ref(n)), Expression: operand}, nil
	case syntax.Default:
		return b.lowerDefault(n)
	case syntax.Debug:
		return b.lowerDebug(n)
	case syntax.Error:
		return nil, b.syntaxError(n)
	}

	return nil, b.unexpected(n, "expression")
}

// lowerOperand lowers the single unroled child of n.
func (b *builder) lowerOperand(n *syntax.Node) (ast.Expression, error) {
	operands := n.Unroled()
	if len(operands) == 0 {
		return nil, b.missing(n, "operand")
	}
	return b.lowerExpression(operands[0])
}

// lowerCondition lowers an expression whose value is used as a boolean.
func (b *builder) lowerCondition(n *syntax.Node) (ast.Expression, error) {
	cond, err := b.lowerExpression(n)
	if err != nil {
		return nil, err
	}
	return addImplicitCast(types.Boolean, cond)
}

var referenceAnchors = map[syntax.Kind]ast.Anchor{
	syntax.LocalReference:   ast.LocalAnchor,
	syntax.GlobalReference:  ast.GlobalAnchor,
	syntax.LibraryReference: ast.LibraryAnchor,
	syntax.ModuleReference:  ast.ModuleAnchor,
}

func (b *builder) lowerReference(n *syntax.Node) (*ast.Reference, error) {
	anchor, ok := referenceAnchors[n.Kind]
	if !ok {
		return nil, b.unexpected(n, "reference")
	}

	ids := n.ChildrenOfKind(syntax.Identifier)
	if len(ids) == 0 {
		return nil, b.missing(n, "name")
	}

	elements := make([]string, len(ids))
	for i, id := range ids {
		elements[i] = Identifier(id.Text)
	}

	return &ast.Reference{
		NodeBase: ast.At(b.ref(n)),
		Anchor:   anchor,
		Elements: elements,
	}, nil
}

func (b *builder) lowerBinaryExpression(n *syntax.Node) (ast.Expression, error) {
	op, ok := ast.BinaryOperatorFromSymbol(n.Text)
	if !ok {
		return nil, b.errorf(langerr.ParseError, n, fmtUnknownOperator(n.Text))
	}

	leftNode, rightNode := n.Child(syntax.FieldLeft), n.Child(syntax.FieldRight)
	if leftNode == nil {
		return nil, b.missing(n, syntax.FieldLeft)
	}
	if rightNode == nil {
		return nil, b.missing(n, syntax.FieldRight)
	}

	left, err := b.lowerExpression(leftNode)
	if err != nil {
		return nil, err
	}
	right, err := b.lowerExpression(rightNode)
	if err != nil {
		return nil, err
	}

	if operandType := op.OperandType(); operandType != types.Any {
		if left, err = addImplicitCast(operandType, left); err != nil {
			return nil, err
		}
		if right, err = addImplicitCast(operandType, right); err != nil {
			return nil, err
		}
	} else if op.IsOrdering() {
		if left, right, err = orderingOperands(left, right); err != nil {
			return nil, err
		}
	}

	return &ast.BinaryOperation{
		NodeBase: ast.At(b.ref(n)),
		Operator: op,
		Left:     left,
		Right:    right,
	}, nil
}

// orderingOperands checks that both operands of < <= > >= can be ordered, a side is cast to datetime
// when the other side is a datetime.
func orderingOperands(left, right ast.Expression) (ast.Expression, ast.Expression, error) {
	for _, operand := range []ast.Expression{left, right} {
		if t := operand.ValueType(); !t.IsOrderable() {
			return nil, nil, langerr.New(langerr.IncompatibleTypes, fmtValuesCannotBeOrdered(t), operand.Src())
		}
	}

	var err error
	switch {
	case left.ValueType() == types.DateTime:
		right, err = addImplicitCast(types.DateTime, right)
	case right.ValueType() == types.DateTime:
		left, err = addImplicitCast(types.DateTime, left)
	}
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (b *builder) lowerUnaryExpression(n *syntax.Node) (ast.Expression, error) {
	op, ok := ast.UnaryOperatorFromSymbol(n.Text)
	if !ok {
		return nil, b.errorf(langerr.ParseError, n, fmtUnknownOperator(n.Text))
	}

	operands := n.Unroled()
	if len(operands) == 0 {
		return nil, b.missing(n, "operand")
	}

	//-9223372036854775808 is only representable if the sign is part of the literal
	if op == ast.Negate && operands[0].Kind == syntax.DecLiteral {
		v, err := ParseLong("-" + operands[0].Text)
		if err != nil {
			return nil, err.Locate(b.ref(n))
		}
		return &ast.LongLiteral{NodeBase: ast.At(b.ref(n)), Value: v}, nil
	}

	operand, err := b.lowerExpression(operands[0])
	if err != nil {
		return nil, err
	}

	if operandType := op.OperandType(); operandType != types.Any {
		if operand, err = addImplicitCast(operandType, operand); err != nil {
			return nil, err
		}
	}

	return &ast.UnaryOperation{
		NodeBase: ast.At(b.ref(n)),
		Operator: op,
		Operand:  operand,
	}, nil
}

func (b *builder) lowerIf(n *syntax.Node) (ast.Expression, error) {
	condNode := n.Child(syntax.FieldCondition)
	if condNode == nil {
		return nil, b.missing(n, syntax.FieldCondition)
	}
	thenNode := n.Child(syntax.FieldThen)
	if thenNode == nil {
		return nil, b.missing(n, syntax.FieldThen)
	}

	cond, err := b.lowerCondition(condNode)
	if err != nil {
		return nil, err
	}
	then, err := b.lowerExpression(thenNode)
	if err != nil {
		return nil, err
	}

	var elseExpr ast.Expression
	if elseNode := n.Child(syntax.FieldElse); elseNode != nil {
		if elseExpr, err = b.lowerExpression(elseNode); err != nil {
			return nil, err
		}
	} else {
		elseExpr = &ast.NilLiteral{NodeBase: ast.At(b.ref(n))}
	}

	return &ast.If{
		NodeBase:  ast.At(b.ref(n)),
		Condition: cond,
		Then:      then,
		Else:      elseExpr,
	}, nil
}

func (b *builder) lowerLet(n *syntax.Node) (ast.Expression, error) {
	bodyNode := n.Child(syntax.FieldBody)
	if bodyNode == nil {
		return nil, b.missing(n, syntax.FieldBody)
	}

	bindings := &ast.VarDefs{NodeBase: ast.At(b.ref(n))}
	if err := b.addVarDefs(bindings, n.ChildrenOfKind(syntax.VarDef), nil); err != nil {
		return nil, err
	}
	bindings.Commit()

	body, err := b.lowerExpression(bodyNode)
	if err != nil {
		return nil, err
	}

	return &ast.Let{
		NodeBase: ast.At(b.ref(n)),
		Bindings: bindings,
		Body:     body,
	}, nil
}

// lowerFor lowers a for comprehension, its head contains generators, local definitions and filters in source order.
func (b *builder) lowerFor(n *syntax.Node) (ast.Expression, error) {
	headNodes := n.ChildrenOfKind(syntax.ForHead)
	if len(headNodes) == 0 {
		return nil, b.missing(n, "head")
	}
	bodyNode := n.Child(syntax.FieldBody)
	if bodyNode == nil {
		return nil, b.missing(n, syntax.FieldBody)
	}

	headNode := headNodes[0]
	head := &ast.ForHead{NodeBase: ast.At(b.ref(headNode))}

	for _, child := range headNode.Children {
		switch child.Kind {
		case syntax.Generator:
			generator, err := b.lowerGenerator(child)
			if err != nil {
				return nil, err
			}
			head.Elements = append(head.Elements, generator)
		case syntax.VarDef:
			def, err := b.lowerVarDef(child)
			if err != nil {
				return nil, err
			}
			head.Elements = append(head.Elements, def)
		default:
			cond, err := b.lowerCondition(child)
			if err != nil {
				return nil, err
			}
			head.Elements = append(head.Elements, &ast.Filter{NodeBase: ast.At(b.ref(child)), Expression: cond})
		}
	}

	body, err := b.lowerExpression(bodyNode)
	if err != nil {
		return nil, err
	}

	return &ast.For{
		NodeBase: ast.At(b.ref(n)),
		Head:     head,
		Body:     body,
	}, nil
}

// lowerGenerator lowers `type name <- value`, the value is cast to the declared type. An invalid value
// is replaced by a placeholder in recovery mode.
func (b *builder) lowerGenerator(n *syntax.Node) (*ast.Generator, error) {
	nameNode := n.Child(syntax.FieldName)
	if nameNode == nil {
		return nil, b.errorf(langerr.ParseError, n, MISSING_NAME)
	}

	declaredType, err := b.dataType(n.Child(syntax.FieldType))
	if err != nil {
		return nil, err
	}

	value, err := b.lowerCastValue(n, declaredType)
	if err != nil {
		return nil, err
	}

	return &ast.Generator{
		NodeBase:     ast.At(b.ref(n)),
		VarName:      Identifier(nameNode.Text),
		DeclaredType: declaredType,
		Value:        value,
	}, nil
}

func (b *builder) lowerTryCatch(n *syntax.Node) (ast.Expression, error) {
	tryNode := n.Child(syntax.FieldTry)
	if tryNode == nil {
		return nil, b.missing(n, syntax.FieldTry)
	}
	catchNode := n.Child(syntax.FieldCatch)
	if catchNode == nil {
		return nil, b.missing(n, syntax.FieldCatch)
	}

	try, err := b.lowerExpression(tryNode)
	if err != nil {
		return nil, err
	}

	tryCatch := &ast.TryCatch{NodeBase: ast.At(b.ref(n)), Try: try}

	for _, clause := range n.Children {
		if clause.Kind != syntax.CatchError && clause.Kind != syntax.CatchErrorAndTrace {
			continue
		}
		ids := clause.ChildrenOfKind(syntax.Identifier)
		if len(ids) > 0 {
			tryCatch.CaughtError = b.caughtVar(ids[0])
		}
		if clause.Kind == syntax.CatchErrorAndTrace && len(ids) > 1 {
			tryCatch.CaughtTrace = b.caughtVar(ids[1])
		}
		break
	}

	if tryCatch.Catch, err = b.lowerExpression(catchNode); err != nil {
		return nil, err
	}
	return tryCatch, nil
}

func (b *builder) caughtVar(id *syntax.Node) *ast.VarDec {
	return &ast.VarDec{
		NodeBase:     ast.At(b.ref(id)),
		VarName:      Identifier(id.Text),
		DeclaredType: types.Any,
	}
}

// lowerDefault lowers `expr default fallback`.
func (b *builder) lowerDefault(n *syntax.Node) (ast.Expression, error) {
	operands := n.Unroled()
	if len(operands) < 2 {
		return nil, b.missing(n, "fallback")
	}

	expr, err := b.lowerExpression(operands[0])
	if err != nil {
		return nil, err
	}
	fallback, err := b.lowerExpression(operands[1])
	if err != nil {
		return nil, err
	}

	return &ast.Default{
		NodeBase:   ast.At(b.ref(n)),
		Expression: expr,
		Fallback:   fallback,
	}, nil
}

// lowerDebug lowers `debug expr` and `debug expr, value`, the second form evaluates to value.
func (b *builder) lowerDebug(n *syntax.Node) (ast.Expression, error) {
	operands := n.Unroled()
	if len(operands) == 0 {
		return nil, b.missing(n, "operand")
	}

	expr, err := b.lowerExpression(operands[0])
	if err != nil {
		return nil, err
	}

	debug := &ast.Debug{NodeBase: ast.At(b.ref(n)), Expression: expr}
	if len(operands) > 1 {
		if debug.Value, err = b.lowerExpression(operands[1]); err != nil {
			return nil, err
		}
	}
	return debug, nil
}
