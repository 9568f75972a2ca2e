package lower

import (
	"strings"

	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/syntax"
	"github.com/weftlang/weft/internal/types"
)

// lowerInterpolation lowers "text #{expr} text". Text fragments and escape sequences become string literals,
// embedded expressions are cast to strings, consecutive literals are then merged and the remaining parts are
// folded into string concatenations.
func (b *builder) lowerInterpolation(n *syntax.Node) (ast.Expression, error) {
	ref := b.ref(n)
	parts := make([]ast.Expression, 0, len(n.Children))

	for _, child := range n.Children {
		switch child.Kind {
		case syntax.StringText:
			parts = append(parts, &ast.StringLiteral{NodeBase: ast.At(b.ref(child)), Value: child.Text})
		case syntax.StringEscape:
			s, err := Unescape(child.Text)
			if err != nil {
				return nil, err.Locate(b.ref(child))
			}
			parts = append(parts, &ast.StringLiteral{NodeBase: ast.At(b.ref(child)), Value: s})
		case syntax.StringExpressionInterpolation:
			if len(child.Children) == 0 {
				return nil, b.errorf(langerr.ParseError, child, MISSING_EMBEDDED_EXPR)
			}
			expr, err := b.lowerExpression(child.Children[0])
			if err != nil {
				return nil, err
			}
			expr, err = addImplicitCast(types.String, expr)
			if err != nil {
				return nil, err
			}
			parts = append(parts, expr)
		default:
			return nil, b.unexpected(child, "string interpolation")
		}
	}

	parts = compactStringNodes(parts)

	switch len(parts) {
	case 0:
		return &ast.StringLiteral{NodeBase: ast.At(ref), Value: ""}, nil
	case 1:
		return ast.Restamp(parts[0], ref), nil
	}

	return ast.Restamp(foldBinary(ast.StringConcat, parts), ref), nil
}

// compactStringNodes merges each run of consecutive string literals into a new literal located at the first
// literal of the run, other nodes are kept as is.
func compactStringNodes(nodes []ast.Expression) []ast.Expression {
	compacted := make([]ast.Expression, 0, len(nodes))

	var (
		first *ast.StringLiteral
		text  strings.Builder
	)

	flush := func() {
		if first == nil {
			return
		}
		compacted = append(compacted, &ast.StringLiteral{
			NodeBase: ast.At(first.Src()),
			Value:    text.String(),
		})
		first = nil
		text.Reset()
	}

	for _, node := range nodes {
		lit, ok := node.(*ast.StringLiteral)
		if !ok {
			flush()
			compacted = append(compacted, node)
			continue
		}
		if first == nil {
			first = lit
		}
		text.WriteString(lit.Value)
	}
	flush()

	return compacted
}
