package lower

import (
	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/syntax"
	"github.com/weftlang/weft/internal/types"
)

// lowerVarDef lowers `type name: value`. An invalid value is replaced by a placeholder in recovery mode,
// the placeholder is not cast to the declared type. An invalid declared type is replaced by any and the value
// by a placeholder located at the definition.
func (b *builder) lowerVarDef(n *syntax.Node) (*ast.VarDef, error) {
	nameNode := n.Child(syntax.FieldName)
	if nameNode == nil {
		return nil, b.errorf(langerr.ParseError, n, MISSING_NAME)
	}

	declaredType, recovered, err := b.declaredType(n)
	if err != nil {
		return nil, err
	}

	var value ast.Expression = placeholder(b.ref(n))
	if !recovered {
		value, err = b.lowerCastValue(n, declaredType)
		if err != nil {
			return nil, err
		}
	}

	def := &ast.VarDef{
		NodeBase:     ast.At(b.ref(n)),
		VarName:      Identifier(nameNode.Text),
		DeclaredType: declaredType,
		Value:        value,
	}

	if def.Doc, def.Meta, err = b.lowerDocAndMeta(n); err != nil {
		return nil, err
	}
	return def, nil
}

// lowerVarDec lowers `provided type name`, the value of a declared variable is supplied by the host
// application so a nil literal located at the declaration stands for it.
func (b *builder) lowerVarDec(n *syntax.Node) (*ast.VarDef, error) {
	nameNode := n.Child(syntax.FieldName)
	if nameNode == nil {
		return nil, b.errorf(langerr.ParseError, n, MISSING_NAME)
	}

	declaredType, recovered, err := b.declaredType(n)
	if err != nil {
		return nil, err
	}

	def := &ast.VarDef{
		NodeBase:     ast.At(b.ref(n)),
		VarName:      Identifier(nameNode.Text),
		DeclaredType: declaredType,
		Value:        &ast.NilLiteral{NodeBase: ast.At(b.ref(n)), Recovered: recovered},
		Provided:     true,
	}

	if def.Doc, def.Meta, err = b.lowerDocAndMeta(n); err != nil {
		return nil, err
	}
	return def, nil
}

// declaredType resolves the type of the definition n. In recovery mode an invalid type is recorded and any is
// returned with recovered set.
func (b *builder) declaredType(n *syntax.Node) (t types.Type, recovered bool, err error) {
	t, err = b.dataType(n.Child(syntax.FieldType))
	if err == nil {
		return t, false, nil
	}
	if !b.sink.Recover(err) {
		return t, false, err
	}
	return types.Any, true, nil
}

// duplicateError returns the error reported when def has the same name as a previous definition.
type duplicateError func(def *ast.VarDef) *langerr.Error

// addVarDefs lowers defs and adds them to container in source order. A definition that cannot be lowered is
// dropped in recovery mode. Without onDuplicate a redefinition is dropped as well, with onDuplicate it replaces
// the previous definition at the previous position.
func (b *builder) addVarDefs(container *ast.VarDefs, defs []*syntax.Node, onDuplicate duplicateError) error {
	for _, defNode := range defs {
		var (
			def *ast.VarDef
			err error
		)

		switch defNode.Kind {
		case syntax.VarDef:
			def, err = b.lowerVarDef(defNode)
		case syntax.VarDec:
			def, err = b.lowerVarDec(defNode)
		default:
			err = b.unexpected(defNode, "definitions")
		}

		if err == nil {
			if addErr := container.Add(def); addErr != nil {
				if onDuplicate == nil {
					err = addErr
				} else {
					if dupErr := onDuplicate(def); !b.recoverDrop(dupErr) {
						return dupErr
					}
					container.Replace(def)
					continue
				}
			}
		}

		if err != nil && !b.recoverDrop(err) {
			return err
		}
	}
	return nil
}

// lowerDocAndMeta lowers the doc and meta clauses of n. They are recovery boundaries: an invalid clause is
// dropped in recovery mode.
func (b *builder) lowerDocAndMeta(n *syntax.Node) (*ast.Doc, *ast.Meta, error) {
	var (
		doc  *ast.Doc
		meta *ast.Meta
	)

	for _, child := range n.Children {
		switch child.Kind {
		case syntax.Doc:
			expr, err := b.lowerOperand(child)
			if err != nil {
				if b.recoverDrop(err) {
					continue
				}
				return nil, nil, err
			}
			doc = &ast.Doc{NodeBase: ast.At(b.ref(child)), Expression: expr}
		case syntax.Meta:
			expr, err := b.lowerOperand(child)
			if err != nil {
				if b.recoverDrop(err) {
					continue
				}
				return nil, nil, err
			}
			meta = &ast.Meta{NodeBase: ast.At(b.ref(child)), Expression: expr}
		}
	}
	return doc, meta, nil
}
