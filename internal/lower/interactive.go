package lower

import (
	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/syntax"
)

// lowerInteractive lowers an interactive session, each section holds the variables defined in the scope
// of a module.
func (b *builder) lowerInteractive(n *syntax.Node) (*ast.Interactive, error) {
	interactive := &ast.Interactive{
		NodeBase: ast.At(b.unitRef()),
		Sections: []*ast.InteractiveSection{},
	}

	for _, child := range n.Children {
		if child.Kind != syntax.InteractiveSection {
			err := b.unexpected(child, "interactive session")
			if !b.recoverDrop(err) {
				return nil, err
			}
			continue
		}

		section, err := b.lowerInteractiveSection(child)
		if err != nil {
			if !b.recoverDrop(err) {
				return nil, err
			}
			continue
		}
		interactive.Sections = append(interactive.Sections, section)
	}

	return interactive, nil
}

// lowerInteractiveSection lowers `in_scope module_ref ...definitions`, the scope should be a reference
// with a single element naming a module of the unit space.
func (b *builder) lowerInteractiveSection(n *syntax.Node) (*ast.InteractiveSection, error) {
	scopeNode := n.Child(syntax.FieldScope)
	if scopeNode == nil {
		return nil, b.missing(n, syntax.FieldScope)
	}

	scope, err := b.lowerReference(scopeNode)
	if err != nil {
		return nil, err
	}
	if len(scope.Elements) != 1 {
		return nil, langerr.New(langerr.InvalidReferenceTarget, MUST_REFERENCE_A_MODULE, scope.Src())
	}

	section := &ast.InteractiveSection{
		NodeBase: ast.At(b.ref(n)),
		Scope:    scope,
		Vars:     &ast.VarDefs{NodeBase: ast.At(b.ref(n))},
	}

	var defs []*syntax.Node
	for _, child := range n.Children {
		if child != scopeNode {
			defs = append(defs, child)
		}
	}

	if err := b.addVarDefs(section.Vars, defs, nil); err != nil {
		return nil, err
	}
	section.Vars.Commit()

	return section, nil
}

// lowerInteractiveInput lowers a line typed in an interactive session: a variable definition or an expression.
func (b *builder) lowerInteractiveInput(n *syntax.Node) (ast.Node, error) {
	input := n
	if n.Kind == syntax.InteractiveInput {
		if len(n.Children) == 0 {
			return &ast.Empty{NodeBase: ast.At(b.ref(n))}, nil
		}
		input = n.Children[0]
	}

	if input.Kind == syntax.VarDef {
		def, err := b.lowerVarDef(input)
		if err != nil {
			return nil, err
		}
		return def, nil
	}

	expr, err := b.lowerExpression(input)
	if err != nil {
		return b.recoverExpression(err, b.ref(input))
	}
	return expr, nil
}
