package lower

import (
	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/syntax"
)

// lowerMatch lowers a match expression. A default line must be the last line and there is at most one.
// In recovery mode a misplaced default line is kept and a second default line is dropped.
func (b *builder) lowerMatch(n *syntax.Node) (ast.Expression, error) {
	subjectNode := n.Child(syntax.FieldSubject)
	if subjectNode == nil {
		return nil, b.errorf(langerr.ParseError, n, MISSING_MATCH_SUBJECT)
	}

	subject, err := b.lowerExpression(subjectNode)
	if err != nil {
		return nil, err
	}

	var lineNodes []*syntax.Node
	for _, child := range n.Children {
		switch child.Kind {
		case syntax.PatternLine, syntax.DefaultLine:
			lineNodes = append(lineNodes, child)
		case syntax.Error:
			if err := b.syntaxError(child); !b.recoverDrop(err) {
				return nil, err
			}
		default:
			if child != subjectNode {
				return nil, b.unexpected(child, "match")
			}
		}
	}

	match := &ast.Match{
		NodeBase: ast.At(b.ref(n)),
		Subject:  subject,
		Lines:    make([]*ast.MatchLine, 0, len(lineNodes)),
	}

	seenDefault := false

	for i, lineNode := range lineNodes {
		if lineNode.Kind == syntax.DefaultLine {
			pattern := &ast.DefaultPattern{NodeBase: ast.At(b.ref(lineNode))}

			if seenDefault {
				err := langerr.New(langerr.MultipleDefaultPatterns, MULTIPLE_DEFAULT_PATTERNS, pattern.Src())
				if !b.recoverDrop(err) {
					return nil, err
				}
				continue
			}
			seenDefault = true

			if i != len(lineNodes)-1 {
				err := langerr.New(langerr.DefaultPatternNotLast, DEFAULT_PATTERN_NOT_LAST, pattern.Src())
				if !b.recoverDrop(err) {
					return nil, err
				}
			}

			body, err := b.lowerMatchLineBody(lineNode)
			if err != nil {
				return nil, err
			}

			match.Lines = append(match.Lines, &ast.MatchLine{
				NodeBase:   ast.At(b.ref(lineNode)),
				Pattern:    pattern,
				Expression: body,
			})
			continue
		}

		line, err := b.lowerPatternLine(lineNode)
		if err != nil {
			return nil, err
		}
		match.Lines = append(match.Lines, line)
	}

	return match, nil
}

func (b *builder) lowerPatternLine(n *syntax.Node) (*ast.MatchLine, error) {
	line := &ast.MatchLine{NodeBase: ast.At(b.ref(n))}

	patternNode := n.Child(syntax.FieldPattern)
	var err error
	if patternNode == nil {
		err = b.errorf(langerr.ParseError, n, MISSING_PATTERN)
	} else {
		line.Pattern, err = b.lowerPattern(patternNode)
	}

	if err != nil {
		if !b.recoverDrop(err) {
			return nil, err
		}
		line.Pattern = &ast.ExpressionPattern{
			NodeBase:   ast.At(b.ref(n)),
			Expression: placeholder(b.ref(n)),
		}
	}

	if guardNode := n.Child(syntax.FieldGuard); guardNode != nil {
		guard, err := b.lowerCondition(guardNode)
		if err != nil {
			if guard, err = b.recoverExpression(err, b.ref(guardNode)); err != nil {
				return nil, err
			}
		}
		line.Guard = guard
	}

	line.Expression, err = b.lowerMatchLineBody(n)
	if err != nil {
		return nil, err
	}
	return line, nil
}

// lowerMatchLineBody lowers the body of a match line, a missing or invalid body is a recovery boundary.
func (b *builder) lowerMatchLineBody(line *syntax.Node) (ast.Expression, error) {
	bodyNode := line.Child(syntax.FieldBody)
	if bodyNode == nil {
		return b.recoverExpression(b.missing(line, syntax.FieldBody), b.ref(line))
	}

	body, err := b.lowerExpression(bodyNode)
	if err != nil {
		return b.recoverExpression(err, b.ref(bodyNode))
	}
	return body, nil
}

func (b *builder) lowerPattern(n *syntax.Node) (ast.Pattern, error) {
	base := ast.At(b.ref(n))

	switch n.Kind {
	case syntax.ExpPattern:
		unroled := n.Unroled()
		if len(unroled) == 0 {
			return nil, b.missing(n, "expression")
		}

		expr, err := b.lowerExpression(unroled[0])
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionPattern{
			NodeBase:   base,
			Expression: expr,
			Capture:    b.lowerOptionalCapture(n),
		}, nil
	case syntax.DataTypePattern:
		typeNodes := n.ChildrenOfKind(syntax.DataType)
		if len(typeNodes) == 0 {
			return nil, b.missing(n, syntax.FieldType)
		}
		t, err := b.dataType(typeNodes[0])
		if err != nil {
			return nil, err
		}
		return &ast.TypePattern{
			NodeBase: base,
			Type:     t,
			Capture:  b.lowerOptionalCapture(n),
		}, nil
	case syntax.CapturePattern:
		captures := n.ChildrenOfKind(syntax.VarCapture)
		if len(captures) == 0 {
			return &ast.CapturePattern{NodeBase: base}, nil
		}
		capture := b.lowerCapture(captures[0])
		capture.Ref = base.Ref.Copy()
		return capture, nil
	case syntax.ListPattern:
		elements, err := b.lowerSubPatterns(n.Unroled())
		if err != nil {
			return nil, err
		}
		return &ast.ListPattern{
			NodeBase: base,
			Elements: elements,
			Capture:  b.lowerOptionalCapture(n),
		}, nil
	case syntax.HeadTailListPattern, syntax.InitLastListPattern, syntax.MidListPattern:
		return b.lowerSplatListPattern(n)
	case syntax.DictPattern, syntax.OpenDictPattern:
		return b.lowerDictPattern(n)
	case syntax.Error:
		return nil, b.syntaxError(n)
	}

	return nil, b.unexpected(n, "pattern")
}

func (b *builder) lowerSubPatterns(nodes []*syntax.Node) ([]ast.Pattern, error) {
	patterns := make([]ast.Pattern, 0, len(nodes))
	for _, node := range nodes {
		p, err := b.lowerPattern(node)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// lowerSplatListPattern lowers the list patterns having exactly one splat capture: [a, b, ...rest],
// [...init, a, b] and [a, ...mid, b].
func (b *builder) lowerSplatListPattern(n *syntax.Node) (ast.Pattern, error) {
	var (
		head, last []*syntax.Node
		splat      *syntax.Node
	)

	for _, child := range n.Unroled() {
		if child.Kind != syntax.SplatCapture {
			if splat == nil {
				head = append(head, child)
			} else {
				last = append(last, child)
			}
			continue
		}
		if splat != nil {
			return nil, b.errorf(langerr.AlreadyDefined, child, SPLAT_CAPTURE_ALREADY_DEFINED)
		}
		splat = child
	}

	if splat == nil {
		return nil, b.errorf(langerr.ParseError, n, MISSING_SPLAT_CAPTURE)
	}

	capture := b.lowerOptionalCapture(n)
	splatCapture := b.lowerCapture(splat)
	base := ast.At(b.ref(n))

	switch n.Kind {
	case syntax.HeadTailListPattern:
		if len(last) > 0 {
			return nil, b.errorf(langerr.ParseError, splat, SPLAT_CAPTURE_SHOULD_BE_LAST)
		}
		elements, err := b.lowerSubPatterns(head)
		if err != nil {
			return nil, err
		}
		return &ast.HeadTailListPattern{NodeBase: base, Elements: elements, Tail: splatCapture, Capture: capture}, nil
	case syntax.InitLastListPattern:
		if len(head) > 0 {
			return nil, b.errorf(langerr.ParseError, splat, SPLAT_CAPTURE_SHOULD_BE_FIRST)
		}
		elements, err := b.lowerSubPatterns(last)
		if err != nil {
			return nil, err
		}
		return &ast.InitLastListPattern{NodeBase: base, Init: splatCapture, Elements: elements, Capture: capture}, nil
	}

	headPatterns, err := b.lowerSubPatterns(head)
	if err != nil {
		return nil, err
	}
	lastPatterns, err := b.lowerSubPatterns(last)
	if err != nil {
		return nil, err
	}
	return &ast.MidListPattern{
		NodeBase: base,
		Head:     headPatterns,
		Mid:      splatCapture,
		Last:     lastPatterns,
		Capture:  capture,
	}, nil
}

// lowerDictPattern lowers closed and open dict patterns. A key can only appear once, an open pattern has
// exactly one splat capture and a closed pattern none.
func (b *builder) lowerDictPattern(n *syntax.Node) (ast.Pattern, error) {
	var (
		entries []*ast.DictPatternEntry
		rest    *ast.CapturePattern
		keys    = map[string]struct{}{}
	)

	for _, child := range n.Unroled() {
		switch child.Kind {
		case syntax.DictPatternEntry:
			keyNode := child.Child(syntax.FieldKey)
			if keyNode == nil {
				return nil, b.missing(child, syntax.FieldKey)
			}
			key, err := b.patternKey(keyNode)
			if err != nil {
				return nil, err
			}
			if _, ok := keys[key]; ok {
				return nil, b.errorf(langerr.AlreadyDefined, keyNode, fmtDictPatternKeyAlreadyDefined(key)).Put("key", key)
			}
			keys[key] = struct{}{}

			patternNode := child.Child(syntax.FieldPattern)
			if patternNode == nil {
				return nil, b.missing(child, syntax.FieldPattern)
			}
			pattern, err := b.lowerPattern(patternNode)
			if err != nil {
				return nil, err
			}

			entries = append(entries, &ast.DictPatternEntry{
				NodeBase: ast.At(b.ref(child)),
				Key:      key,
				Pattern:  pattern,
			})
		case syntax.SplatCapture:
			if n.Kind == syntax.DictPattern {
				return nil, b.errorf(langerr.ParseError, child, CLOSED_DICT_PATTERN_CANNOT_HAVE_REST)
			}
			if rest != nil {
				return nil, b.errorf(langerr.AlreadyDefined, child, SPLAT_CAPTURE_ALREADY_DEFINED)
			}
			rest = b.lowerCapture(child)
		default:
			return nil, b.unexpected(child, "dict pattern")
		}
	}

	base := ast.At(b.ref(n))
	capture := b.lowerOptionalCapture(n)
	if entries == nil {
		entries = []*ast.DictPatternEntry{}
	}

	if n.Kind == syntax.DictPattern {
		return &ast.DictPattern{NodeBase: base, Entries: entries, Capture: capture}, nil
	}

	if rest == nil {
		return nil, b.errorf(langerr.ParseError, n, MISSING_SPLAT_CAPTURE)
	}
	return &ast.OpenDictPattern{NodeBase: base, Entries: entries, Rest: rest, Capture: capture}, nil
}

func (b *builder) patternKey(n *syntax.Node) (string, error) {
	switch n.Kind {
	case syntax.KeyLiteral:
		key, err := KeyName(n.Text)
		if err != nil {
			return "", err.Locate(b.ref(n))
		}
		return key, nil
	case syntax.StringVerbatim:
		key, err := UnquoteVerbatim(n.Text)
		if err != nil {
			return "", err.Locate(b.ref(n))
		}
		return key, nil
	case syntax.Identifier:
		return Identifier(n.Text), nil
	}
	return "", b.errorf(langerr.ParseError, n, DICT_PATTERN_KEY_SHOULD_BE_CONSTANT)
}

// lowerCapture lowers a variable or splat capture, a capture without identifier is anonymous.
func (b *builder) lowerCapture(n *syntax.Node) *ast.CapturePattern {
	capture := &ast.CapturePattern{NodeBase: ast.At(b.ref(n))}
	if ids := n.ChildrenOfKind(syntax.Identifier); len(ids) > 0 {
		capture.CaptureName = Identifier(ids[0].Text)
	}
	return capture
}

func (b *builder) lowerOptionalCapture(n *syntax.Node) *ast.CapturePattern {
	captureNode := n.Child(syntax.FieldCapture)
	if captureNode == nil {
		return nil
	}
	return b.lowerCapture(captureNode)
}
