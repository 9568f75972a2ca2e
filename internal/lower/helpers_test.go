package lower

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/sourcecode"
	"github.com/weftlang/weft/internal/syntax"
)

// fixture builds CST nodes whose spans are found by searching their text in the code of the unit.
type fixture struct {
	t    *testing.T
	unit sourcecode.InMemorySource
}

func newFixture(t *testing.T, code string) *fixture {
	return &fixture{t: t, unit: sourcecode.InMemorySource{NameString: "/test.wf", CodeString: code}}
}

// span returns the span of the nth (0-based) occurrence of text.
func (f *fixture) span(text string, nth int) sourcecode.Span {
	code := f.unit.CodeString
	offset := 0
	for i := 0; ; i++ {
		index := strings.Index(code[offset:], text)
		if index < 0 {
			f.t.Fatalf("occurrence %d of %q not found in %q", nth, text, code)
		}
		if i == nth {
			start := utf8.RuneCountInString(code[:offset+index])
			end := start + utf8.RuneCountInString(text)
			return syntax.At(int32(start), int32(end))
		}
		offset += index + len(text)
	}
}

// subspan returns the span of the first occurrence of sub inside the first occurrence of text.
func (f *fixture) subspan(text, sub string) sourcecode.Span {
	outer := f.span(text, 0)
	index := strings.Index(text, sub)
	if index < 0 {
		f.t.Fatalf("%q not found in %q", sub, text)
	}
	start := outer.Start + int32(utf8.RuneCountInString(text[:index]))
	return syntax.At(start, start+int32(utf8.RuneCountInString(sub)))
}

func (f *fixture) whole() sourcecode.Span {
	return syntax.At(0, int32(utf8.RuneCountInString(f.unit.CodeString)))
}

func (f *fixture) leaf(kind syntax.Kind, text string) *syntax.Node {
	return syntax.Leaf(kind, text, f.span(text, 0))
}

func (f *fixture) leafN(kind syntax.Kind, text string, nth int) *syntax.Node {
	return syntax.Leaf(kind, text, f.span(text, nth))
}

// node creates a non terminal node spanning the first occurrence of text.
func (f *fixture) node(kind syntax.Kind, text string, children ...*syntax.Node) *syntax.Node {
	return syntax.New(kind, f.span(text, 0), children...)
}

func (f *fixture) nodeN(kind syntax.Kind, text string, nth int, children ...*syntax.Node) *syntax.Node {
	return syntax.New(kind, f.span(text, nth), children...)
}

func (f *fixture) local(name string, nth int) *syntax.Node {
	return f.reference(syntax.LocalReference, name, nth)
}

// reference creates a reference node spanning the nth occurrence of text, a dot-separated list of names.
func (f *fixture) reference(kind syntax.Kind, text string, nth int) *syntax.Node {
	span := f.span(text, nth)
	n := syntax.New(kind, span)

	start := span.Start
	for _, name := range strings.Split(text, ".") {
		end := start + int32(utf8.RuneCountInString(name))
		n.Children = append(n.Children, syntax.Leaf(syntax.Identifier, name, syntax.At(start, end)))
		start = end + 1
	}
	return n
}

func (f *fixture) lower(entry Entry, tree *syntax.Node, recovery bool) (*Result, error) {
	return Lower(entry, f.unit, tree, Options{Recovery: recovery})
}

// mustLower lowers tree in fail-fast mode and fails the test if an error occurs.
func (f *fixture) mustLower(entry Entry, tree *syntax.Node) ast.Node {
	result, err := f.lower(entry, tree, false)
	require.NoError(f.t, err)
	require.NotNil(f.t, result.Node)
	return result.Node
}

func (f *fixture) mustLowerExpression(tree *syntax.Node) ast.Expression {
	return f.mustLower(EntryExpression, tree).(ast.Expression)
}
