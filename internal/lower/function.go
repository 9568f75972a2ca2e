package lower

import (
	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/syntax"
	"github.com/weftlang/weft/internal/types"
)

// lowerFunction lowers a function literal. The body is cast to the declared return type, a function implemented
// by the host application has a via clause instead of a body.
func (b *builder) lowerFunction(n *syntax.Node) (ast.Expression, error) {
	returnType, err := b.dataType(n.Child(syntax.FieldReturns))
	if err != nil {
		return nil, err
	}

	params, err := b.lowerParameters(n)
	if err != nil {
		return nil, err
	}

	bodyNode := n.Child(syntax.FieldBody)
	viaNodes := n.ChildrenOfKind(syntax.Via)

	switch {
	case bodyNode != nil && len(viaNodes) > 0:
		return nil, b.errorf(langerr.ParseError, viaNodes[0], FUNCTION_BODY_AND_VIA)
	case bodyNode == nil && len(viaNodes) == 0:
		return nil, b.errorf(langerr.ParseError, n, FUNCTION_WITHOUT_BODY)
	}

	fn := &ast.Function{
		NodeBase:           ast.At(b.ref(n)),
		Parameters:         params,
		DeclaredReturnType: returnType,
	}

	if bodyNode != nil {
		body, err := b.lowerExpression(bodyNode)
		if err != nil {
			return nil, err
		}
		if fn.Body, err = addImplicitCast(returnType, body); err != nil {
			return nil, err
		}
		return fn, nil
	}

	viaNode := viaNodes[0]
	viaExpr, err := b.lowerOperand(viaNode)
	if err != nil {
		return nil, err
	}
	fn.Via = &ast.Via{NodeBase: ast.At(b.ref(viaNode)), Expression: viaExpr}
	return fn, nil
}

// lowerParameters lowers the parameter definitions of a function, the index of a parameter is its rank in the
// list. Parameters without type are of type any and parameters without default value default to nil.
func (b *builder) lowerParameters(fn *syntax.Node) (*ast.Parameters, error) {
	params := &ast.Parameters{NodeBase: ast.At(b.ref(fn))}

	for _, paramNode := range fn.ChildrenOfKind(syntax.ParamDef) {
		param, err := b.lowerParameter(paramNode, params.Len())
		if err == nil {
			err = params.Add(param)
		}
		if err != nil {
			if !b.recoverDrop(err) {
				return nil, err
			}
		}
	}

	params.Commit()
	return params, nil
}

func (b *builder) lowerParameter(n *syntax.Node, index int) (*ast.Parameter, error) {
	nameNode := n.Child(syntax.FieldName)
	if nameNode == nil {
		return nil, b.errorf(langerr.ParseError, n, MISSING_NAME)
	}

	declaredType, err := b.dataType(n.Child(syntax.FieldType))
	if err != nil {
		return nil, err
	}

	var defaultValue ast.Expression
	if defaultNode := n.Child(syntax.FieldDefault); defaultNode != nil {
		value, err := b.lowerExpression(defaultNode)
		if err != nil {
			return nil, err
		}
		if defaultValue, err = addImplicitCast(declaredType, value); err != nil {
			return nil, err
		}
	} else {
		defaultValue = &ast.NilLiteral{NodeBase: ast.At(b.ref(nameNode))}
	}

	return &ast.Parameter{
		NodeBase:     ast.At(b.ref(n)),
		ParamName:    Identifier(nameNode.Text),
		Index:        index,
		DeclaredType: declaredType,
		Default:      defaultValue,
	}, nil
}

func (b *builder) lowerCall(n *syntax.Node) (ast.Expression, error) {
	calleeNode := n.Child(syntax.FieldCallee)
	if calleeNode == nil {
		return nil, b.missing(n, syntax.FieldCallee)
	}

	callee, err := b.lowerExpression(calleeNode)
	if err != nil {
		return nil, err
	}

	argsNode := n.Child(syntax.FieldArgs)
	argsRef := b.ref(n)
	if argsNode != nil {
		argsRef = b.ref(argsNode)
	}

	args := &ast.Arguments{NodeBase: ast.At(argsRef), List: []ast.Argument{}}

	if argsNode != nil {
		//the index is incremented for all arguments, f(a, x: 1, b) has its positional arguments at 0 and 2
		for index, argNode := range argsNode.Children {
			arg, err := b.lowerArgument(argNode, index)
			if err != nil {
				return nil, err
			}
			args.List = append(args.List, arg)
		}
	}

	return &ast.Call{
		NodeBase:  ast.At(b.ref(n)),
		Callee:    callee,
		Arguments: args,
	}, nil
}

func (b *builder) lowerArgument(n *syntax.Node, index int) (ast.Argument, error) {
	switch n.Kind {
	case syntax.PositionalArg, syntax.SplatArg:
		expr, err := b.lowerOperand(n)
		if err != nil {
			return nil, err
		}
		if n.Kind == syntax.SplatArg {
			return &ast.SplatArgument{NodeBase: ast.At(b.ref(n)), Index: index, Expression: expr}, nil
		}
		return &ast.PositionalArgument{NodeBase: ast.At(b.ref(n)), Index: index, Expression: expr}, nil
	case syntax.NamedArg:
		return b.lowerNamedArgument(n)
	}
	return nil, b.unexpected(n, "arguments")
}

func (b *builder) lowerNamedArgument(n *syntax.Node) (*ast.NamedArgument, error) {
	var nameNode, exprNode *syntax.Node
	for _, child := range n.Children {
		if child.Kind == syntax.Identifier && nameNode == nil {
			nameNode = child
		} else if exprNode == nil {
			exprNode = child
		}
	}
	if nameNode == nil {
		return nil, b.errorf(langerr.ParseError, n, MISSING_NAME)
	}
	if exprNode == nil {
		return nil, b.missing(n, "expression")
	}

	expr, err := b.lowerExpression(exprNode)
	if err != nil {
		return nil, err
	}

	return &ast.NamedArgument{
		NodeBase:   ast.At(b.ref(n)),
		ArgName:    Identifier(nameNode.Text),
		Expression: expr,
	}, nil
}

// lowerPartialApplication lowers `f(x=1, y=2)`, only named arguments are accepted and a name
// can only be given once.
func (b *builder) lowerPartialApplication(n *syntax.Node) (ast.Expression, error) {
	calleeNode := n.Child(syntax.FieldCallee)
	if calleeNode == nil {
		return nil, b.missing(n, syntax.FieldCallee)
	}

	callee, err := b.lowerExpression(calleeNode)
	if err != nil {
		return nil, err
	}

	argsNodes := n.ChildrenOfKind(syntax.PartialArgs)
	argsRef := b.ref(n)
	if len(argsNodes) > 0 {
		argsRef = b.ref(argsNodes[0])
	}
	args := &ast.PartialArguments{NodeBase: ast.At(argsRef)}

	if len(argsNodes) > 0 {
		for _, argNode := range argsNodes[0].Children {
			if argNode.Kind != syntax.NamedArg {
				if argNode.IsError() {
					return nil, b.syntaxError(argNode)
				}
				return nil, b.errorf(langerr.ParseError, argNode, PARTIAL_APPLICATION_NAMED_ONLY)
			}

			arg, err := b.lowerNamedArgument(argNode)
			if err == nil {
				err = args.Add(arg)
			}
			if err != nil && !b.recoverDrop(err) {
				return nil, err
			}
		}
	}
	args.Commit()

	return &ast.PartialApplication{
		NodeBase:  ast.At(b.ref(n)),
		Callee:    callee,
		Arguments: args,
	}, nil
}

// lowerThread lowers `x ->> f ->> g` into g(f(x)). The synthetic arguments are located at the threaded
// value and each call at its function.
func (b *builder) lowerThread(n *syntax.Node) (ast.Expression, error) {
	argNode := n.Child(syntax.FieldArg)
	if argNode == nil {
		return nil, b.missing(n, syntax.FieldArg)
	}

	left, err := b.lowerExpression(argNode)
	if err != nil {
		return nil, err
	}

	for _, fnNode := range n.Unroled() {
		fn, err := b.lowerExpression(fnNode)
		if err != nil {
			return nil, err
		}

		args := &ast.Arguments{
			NodeBase: ast.At(left.Src()),
			List: []ast.Argument{
				&ast.PositionalArgument{NodeBase: ast.At(left.Src()), Index: 0, Expression: left},
			},
		}

		left = &ast.Call{
			NodeBase:  ast.At(fn.Src()),
			Callee:    fn,
			Arguments: args,
		}
	}

	return left, nil
}

// lowerCastValue lowers the value of a definition and casts it to the declared type. The value is a recovery
// boundary: if it cannot be lowered or cast, a placeholder located at the value is returned in recovery mode.
func (b *builder) lowerCastValue(def *syntax.Node, declaredType types.Type) (ast.Expression, error) {
	valueNode := def.Child(syntax.FieldValue)
	if valueNode == nil {
		return b.recoverExpression(b.errorf(langerr.ParseError, def, MISSING_VAR_VALUE), b.ref(def))
	}

	value, err := b.lowerExpression(valueNode)
	if err == nil {
		value, err = addImplicitCast(declaredType, value)
	}
	if err != nil {
		return b.recoverExpression(err, b.ref(valueNode))
	}
	return value, nil
}
