package lower

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/sourcecode"
	"github.com/weftlang/weft/internal/syntax"
	"github.com/weftlang/weft/internal/testconfig"
	"github.com/weftlang/weft/internal/types"
	"go.uber.org/multierr"
)

func varDef(f *fixture, text, typeName, name string, value *syntax.Node) *syntax.Node {
	def := f.node(syntax.VarDef, text)
	if typeName != "" {
		def.Children = append(def.Children, syntax.Leaf(syntax.DataType, typeName, f.subspan(text, typeName)).With(syntax.FieldType))
	}
	def.Children = append(def.Children, syntax.Leaf(syntax.Identifier, name, f.subspan(text, name)).With(syntax.FieldName))
	if value != nil {
		def.Children = append(def.Children, value.With(syntax.FieldValue))
	}
	return def
}

func TestEntries(t *testing.T) {
	testconfig.AllowParallelization(t)

	for _, entry := range []Entry{EntryUnit, EntryModule, EntryModuleHead, EntryExpression, EntryReference, EntryInteractiveInput} {
		e, ok := EntryByName(entry.String())
		assert.True(t, ok)
		assert.Equal(t, entry, e)
	}

	_, ok := EntryByName("chunk")
	assert.False(t, ok)
}

func TestLowerLibrary(t *testing.T) {
	testconfig.AllowParallelization(t)

	t.Run("invalid value", func(t *testing.T) {
		code := "library util {long va: true as function; long vb: 2; long vc: 3;}"
		f := newFixture(t, code)

		module := syntax.New(syntax.Module, f.whole(),
			syntax.New(syntax.Library, f.whole(),
				f.leaf(syntax.Identifier, "util").With(syntax.FieldName),
				varDef(f, "long va: true as function", "long", "va",
					f.node(syntax.Cast, "true as function", f.leaf(syntax.BooleanLiteral, "true"), f.leaf(syntax.DataType, "function")),
				),
				varDef(f, "long vb: 2", "long", "vb", f.leaf(syntax.DecLiteral, "2")),
				varDef(f, "long vc: 3", "long", "vc", f.leaf(syntax.DecLiteral, "3")),
			),
		)

		//fail-fast
		result, err := f.lower(EntryUnit, module, false)
		assert.Nil(t, result.Node)
		if assert.Error(t, err) {
			e := err.(*langerr.Error)
			assert.Equal(t, langerr.IncompatibleTypes, e.Code)
			assert.Equal(t, f.span("true as function", 0), e.Src.Span)
		}
		assert.Len(t, result.Errors, 1)
		assert.False(t, result.Ok())

		//recovery
		result, err = f.lower(EntryUnit, module, true)
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, langerr.IncompatibleTypes, result.Errors[0].Code)
		assert.Error(t, result.Err())
		assert.False(t, result.Ok())

		m, ok := result.Node.(*ast.Module)
		require.True(t, ok)
		assert.Equal(t, f.whole(), m.Src().Span)
		require.Len(t, m.Components, 1)

		lib := m.Components[0]
		assert.Equal(t, "util", lib.LibraryName)
		assert.True(t, lib.Vars.IsCommitted())
		assert.Equal(t, []string{"va", "vb", "vc"}, lib.Vars.Names())

		va, _ := lib.Vars.Get("va")
		placeholder, ok := va.Value.(*ast.NilLiteral)
		require.True(t, ok)
		assert.True(t, placeholder.Recovered)
		assert.Equal(t, f.span("true as function", 0), placeholder.Src().Span)

		vb, _ := lib.Vars.Get("vb")
		assert.EqualValues(t, 2, vb.Value.(*ast.LongLiteral).Value)
		assert.Equal(t, types.Long, vb.DeclaredType)
	})

	t.Run("variable defined more than once", func(t *testing.T) {
		code := "library util {long va: 1; long va: 2;}"
		f := newFixture(t, code)

		module := syntax.New(syntax.Module, f.whole(),
			syntax.New(syntax.Library, f.whole(),
				f.leaf(syntax.Identifier, "util").With(syntax.FieldName),
				varDef(f, "long va: 1", "long", "va", f.leaf(syntax.DecLiteral, "1")),
				varDef(f, "long va: 2", "long", "va", f.leaf(syntax.DecLiteral, "2")),
			),
		)

		_, err := f.lower(EntryModule, module, false)
		if assert.Error(t, err) {
			e := err.(*langerr.Error)
			assert.Equal(t, langerr.AlreadyDefined, e.Code)
			assert.Equal(t, "va defined more than once in util", e.Message)
			assert.Equal(t, f.span("long va: 2", 0), e.Src.Span)
			name, _ := e.Get("name")
			assert.Equal(t, "va", name)
		}

		result, err := f.lower(EntryModule, module, true)
		require.NoError(t, err)
		assert.Len(t, result.Errors, 1)

		require.Len(t, result.Errors, 1)
		assert.Equal(t, f.span("long va: 2", 0), result.Errors[0].Src.Span)

		//the last definition wins and takes the place of the first one
		lib := result.Node.(*ast.Module).Components[0]
		require.Equal(t, 1, lib.Vars.Len())
		va := lib.Vars.At(0)
		assert.EqualValues(t, 2, va.Value.(*ast.LongLiteral).Value)
		assert.Equal(t, f.span("long va: 2", 0), va.Src().Span)
	})

	t.Run("redefinition keeps the position of the first definition", func(t *testing.T) {
		code := "library util {long va: 1; long vb: 2; long va: 3;}"
		f := newFixture(t, code)

		module := syntax.New(syntax.Module, f.whole(),
			syntax.New(syntax.Library, f.whole(),
				f.leaf(syntax.Identifier, "util").With(syntax.FieldName),
				varDef(f, "long va: 1", "long", "va", f.leaf(syntax.DecLiteral, "1")),
				varDef(f, "long vb: 2", "long", "vb", f.leaf(syntax.DecLiteral, "2")),
				varDef(f, "long va: 3", "long", "va", f.leaf(syntax.DecLiteral, "3")),
			),
		)

		result, err := f.lower(EntryModule, module, true)
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, langerr.AlreadyDefined, result.Errors[0].Code)
		assert.Equal(t, f.span("long va: 3", 0), result.Errors[0].Src.Span)

		lib := result.Node.(*ast.Module).Components[0]
		assert.Equal(t, []string{"va", "vb"}, lib.Vars.Names())
		assert.EqualValues(t, 3, lib.Vars.At(0).Value.(*ast.LongLiteral).Value)
		assert.True(t, lib.Vars.IsCommitted())
	})

	t.Run("unknown declared type", func(t *testing.T) {
		code := "library util {foo va: 1; long vb: 2; long vc: 3;}"
		f := newFixture(t, code)

		module := syntax.New(syntax.Module, f.whole(),
			syntax.New(syntax.Library, f.whole(),
				f.leaf(syntax.Identifier, "util").With(syntax.FieldName),
				varDef(f, "foo va: 1", "foo", "va", f.leaf(syntax.DecLiteral, "1")),
				varDef(f, "long vb: 2", "long", "vb", f.leaf(syntax.DecLiteral, "2")),
				varDef(f, "long vc: 3", "long", "vc", f.leaf(syntax.DecLiteral, "3")),
			),
		)

		//fail-fast
		_, err := f.lower(EntryUnit, module, false)
		if assert.Error(t, err) {
			e := err.(*langerr.Error)
			assert.Equal(t, langerr.UnknownType, e.Code)
			assert.Equal(t, f.span("foo", 0), e.Src.Span)
		}

		//recovery
		result, err := f.lower(EntryUnit, module, true)
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, langerr.UnknownType, result.Errors[0].Code)

		lib := result.Node.(*ast.Module).Components[0]
		require.Equal(t, 3, lib.Vars.Len())
		assert.Equal(t, []string{"va", "vb", "vc"}, lib.Vars.Names())

		va := lib.Vars.At(0)
		assert.Equal(t, types.Any, va.DeclaredType)
		if assert.IsType(t, &ast.NilLiteral{}, va.Value) {
			assert.True(t, va.Value.(*ast.NilLiteral).Recovered)
		}
		assert.Equal(t, f.span("foo va: 1", 0), va.Value.Src().Span)
		assert.EqualValues(t, 2, lib.Vars.At(1).Value.(*ast.LongLiteral).Value)
	})

	t.Run("provided variable", func(t *testing.T) {
		code := "library util {provided long vp;}"
		f := newFixture(t, code)

		dec := f.node(syntax.VarDec, "provided long vp",
			f.leaf(syntax.DataType, "long").With(syntax.FieldType),
			f.leaf(syntax.Identifier, "vp").With(syntax.FieldName),
		)
		module := syntax.New(syntax.Module, f.whole(),
			syntax.New(syntax.Library, f.whole(), f.leaf(syntax.Identifier, "util").With(syntax.FieldName), dec),
		)

		m := f.mustLower(EntryUnit, module).(*ast.Module)
		vp, ok := m.Components[0].Vars.Get("vp")
		require.True(t, ok)
		assert.True(t, vp.Provided)
		assert.IsType(t, &ast.NilLiteral{}, vp.Value)
		assert.Equal(t, f.span("provided long vp", 0), vp.Value.Src().Span)
	})

	t.Run("invalid meta is dropped", func(t *testing.T) {
		code := "library util {doc 'd' meta 9223372036854775808 long va: 1;}"
		f := newFixture(t, code)

		def := varDef(f, "doc 'd' meta 9223372036854775808 long va: 1", "long", "va", f.leaf(syntax.DecLiteral, "1"))
		def.Children = append(def.Children,
			f.node(syntax.Doc, "doc 'd'", f.leaf(syntax.StringVerbatim, "'d'")),
			f.node(syntax.Meta, "meta 9223372036854775808", f.leaf(syntax.DecLiteral, "9223372036854775808")),
		)
		module := syntax.New(syntax.Module, f.whole(),
			syntax.New(syntax.Library, f.whole(), f.leaf(syntax.Identifier, "util").With(syntax.FieldName), def),
		)

		result, err := f.lower(EntryUnit, module, true)
		require.NoError(t, err)
		assert.Len(t, result.Errors, 1)

		va, _ := result.Node.(*ast.Module).Components[0].Vars.Get("va")
		require.NotNil(t, va.Doc)
		assert.Equal(t, "d", va.Doc.Expression.(*ast.StringLiteral).Value)
		assert.Nil(t, va.Meta)
	})

	t.Run("library defined more than once", func(t *testing.T) {
		code := "library util {} library util {}"
		f := newFixture(t, code)

		module := syntax.New(syntax.Module, f.whole(),
			f.nodeN(syntax.Library, "library util {}", 0, f.leafN(syntax.Identifier, "util", 0).With(syntax.FieldName)),
			f.nodeN(syntax.Library, "library util {}", 1, f.leafN(syntax.Identifier, "util", 1).With(syntax.FieldName)),
		)

		_, err := f.lower(EntryUnit, module, false)
		if assert.Error(t, err) {
			e := err.(*langerr.Error)
			assert.Equal(t, langerr.AlreadyDefined, e.Code)
			assert.Equal(t, f.span("library util {}", 1), e.Src.Span)
		}

		result, err := f.lower(EntryUnit, module, true)
		require.NoError(t, err)
		assert.Len(t, result.Errors, 1)
		assert.Len(t, result.Node.(*ast.Module).Components, 1)
	})
}

func TestLowerModuleHead(t *testing.T) {
	testconfig.AllowParallelization(t)

	code := "import core, {add as plus} from 'std'; alias q.w as qw; export lib_a.fn;"
	f := newFixture(t, code)

	head := f.node(syntax.ModuleHead, code[:len(code)-1],
		f.node(syntax.ImportDef, "import core, {add as plus} from 'std'",
			f.node(syntax.ModuleImport, "core", f.leaf(syntax.Identifier, "core")),
			f.node(syntax.ComponentImport, "add as plus",
				f.leaf(syntax.Identifier, "add").With(syntax.FieldExport),
				f.leaf(syntax.Identifier, "plus").With(syntax.FieldName),
			),
			f.leaf(syntax.StringVerbatim, "'std'").With(syntax.FieldPath),
		),
		f.node(syntax.AliasDef, "alias q.w as qw",
			f.reference(syntax.LibraryReference, "q.w", 0).With(syntax.FieldSource),
			f.leaf(syntax.Identifier, "qw").With(syntax.FieldName),
		),
		f.node(syntax.ExportDef, "export lib_a.fn",
			f.reference(syntax.LibraryReference, "lib_a.fn", 0).With(syntax.FieldSource),
		),
	)

	t.Run("module", func(t *testing.T) {
		module := syntax.New(syntax.Module, f.whole(), head.With(syntax.FieldHead))

		m := f.mustLower(EntryModule, module).(*ast.Module)

		require.Len(t, m.Imports, 1)
		imp := m.Imports[0]
		assert.Equal(t, "std", imp.Path.(*ast.StringLiteral).Value)
		require.Len(t, imp.Members, 2)
		assert.Equal(t, "core", imp.Members[0].(*ast.ModuleImport).ImportName)
		assert.Equal(t, "add", imp.Members[1].(*ast.NameImport).ExportName)
		assert.Equal(t, "plus", imp.Members[1].(*ast.NameImport).ImportName)

		require.Len(t, m.Aliases, 1)
		assert.Equal(t, "qw", m.Aliases[0].AliasName)
		assert.Equal(t, []string{"q", "w"}, m.Aliases[0].Source.Elements)

		//the exported name defaults to the last element of the reference
		require.Len(t, m.Exports, 1)
		assert.Equal(t, "fn", m.Exports[0].ExportName)
		assert.Equal(t, ast.LibraryAnchor, m.Exports[0].Source.Anchor)

		assert.Empty(t, m.Components)
	})

	t.Run("head only", func(t *testing.T) {
		h := f.mustLower(EntryModuleHead, head).(*ast.ModuleHead)
		assert.Len(t, h.Imports, 1)
		assert.Len(t, h.Aliases, 1)
		assert.Len(t, h.Exports, 1)
	})

	t.Run("module without head", func(t *testing.T) {
		h := f.mustLower(EntryModuleHead, syntax.New(syntax.Module, f.whole())).(*ast.ModuleHead)
		assert.Empty(t, h.Imports)
		assert.Equal(t, f.whole(), h.Src().Span)
	})
}

func TestLowerInteractive(t *testing.T) {
	testconfig.AllowParallelization(t)

	code := "in_scope m vx: 1 in_scope a.b vy: 2"
	f := newFixture(t, code)

	interactive := syntax.New(syntax.Interactive, f.whole(),
		f.node(syntax.InteractiveSection, "in_scope m vx: 1",
			f.reference(syntax.ModuleReference, "m", 0).With(syntax.FieldScope),
			varDef(f, "vx: 1", "", "vx", f.leaf(syntax.DecLiteral, "1")),
		),
		f.node(syntax.InteractiveSection, "in_scope a.b vy: 2",
			f.reference(syntax.ModuleReference, "a.b", 0).With(syntax.FieldScope),
			varDef(f, "vy: 2", "", "vy", f.leaf(syntax.DecLiteral, "2")),
		),
	)

	_, err := f.lower(EntryUnit, interactive, false)
	if assert.Error(t, err) {
		e := err.(*langerr.Error)
		assert.Equal(t, langerr.InvalidReferenceTarget, e.Code)
		assert.Equal(t, MUST_REFERENCE_A_MODULE, e.Message)
		assert.Equal(t, f.span("a.b", 0), e.Src.Span)
	}

	result, err := f.lower(EntryUnit, interactive, true)
	require.NoError(t, err)
	assert.Len(t, result.Errors, 1)

	i, ok := result.Node.(*ast.Interactive)
	require.True(t, ok)
	require.Len(t, i.Sections, 1)
	assert.Equal(t, []string{"m"}, i.Sections[0].Scope.Elements)
	assert.Equal(t, []string{"vx"}, i.Sections[0].Vars.Names())
	assert.Equal(t, types.Any, i.Sections[0].Vars.At(0).DeclaredType)
}

func TestLowerInteractiveInput(t *testing.T) {
	testconfig.AllowParallelization(t)

	t.Run("definition", func(t *testing.T) {
		f := newFixture(t, "vx: 1")
		input := syntax.New(syntax.InteractiveInput, f.whole(), varDef(f, "vx: 1", "", "vx", f.leaf(syntax.DecLiteral, "1")))

		def, ok := f.mustLower(EntryInteractiveInput, input).(*ast.VarDef)
		require.True(t, ok)
		assert.Equal(t, "vx", def.VarName)
	})

	t.Run("expression", func(t *testing.T) {
		f := newFixture(t, "1")
		input := syntax.New(syntax.InteractiveInput, f.whole(), f.leaf(syntax.DecLiteral, "1"))
		assert.IsType(t, &ast.LongLiteral{}, f.mustLower(EntryInteractiveInput, input))
	})

	t.Run("empty", func(t *testing.T) {
		f := newFixture(t, "")
		input := syntax.New(syntax.InteractiveInput, f.whole())
		assert.IsType(t, &ast.Empty{}, f.mustLower(EntryInteractiveInput, input))
	})
}

func TestLowerEntryEdgeCases(t *testing.T) {
	testconfig.AllowParallelization(t)

	t.Run("nil tree", func(t *testing.T) {
		f := newFixture(t, "")
		assert.IsType(t, &ast.Empty{}, f.mustLower(EntryUnit, nil))
	})

	t.Run("reference", func(t *testing.T) {
		f := newFixture(t, "lib.fn")
		ref, ok := f.mustLower(EntryReference, f.reference(syntax.LibraryReference, "lib.fn", 0)).(*ast.Reference)
		require.True(t, ok)
		assert.Equal(t, ast.LibraryAnchor, ref.Anchor)
		assert.Equal(t, []string{"lib", "fn"}, ref.Elements)
	})

	t.Run("unit that is not a module", func(t *testing.T) {
		f := newFixture(t, "1")
		_, err := f.lower(EntryUnit, f.leaf(syntax.DecLiteral, "1"), false)
		if assert.Error(t, err) {
			assert.Equal(t, UNIT_SHOULD_BE_MODULE_OR_INTERACTIVE, err.(*langerr.Error).Message)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		f := newFixture(t, "library util {")
		module := syntax.New(syntax.Module, f.whole(),
			syntax.Leaf(syntax.Error, "unterminated library", f.whole()),
		)

		_, err := f.lower(EntryUnit, module, false)
		if assert.Error(t, err) {
			e := err.(*langerr.Error)
			assert.Equal(t, langerr.ParseError, e.Code)
			assert.Contains(t, e.Message, "unterminated library")
		}

		result, err := f.lower(EntryUnit, module, true)
		require.NoError(t, err)
		assert.Len(t, result.Errors, 1)
		assert.Empty(t, result.Node.(*ast.Module).Components)
	})

	t.Run("expression replaced by a placeholder", func(t *testing.T) {
		f := newFixture(t, "1 as foo")
		cast := f.node(syntax.Cast, "1 as foo", f.leaf(syntax.DecLiteral, "1"), f.leaf(syntax.DataType, "foo"))

		result, err := f.lower(EntryExpression, cast, true)
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, langerr.UnknownType, result.Errors[0].Code)

		placeholder, ok := result.Node.(*ast.NilLiteral)
		require.True(t, ok)
		assert.True(t, placeholder.Recovered)
		assert.Equal(t, f.whole(), placeholder.Src().Span)
	})
}

func TestUnitCache(t *testing.T) {
	testconfig.AllowParallelization(t)

	f := newFixture(t, "1")
	tree := f.leaf(syntax.DecLiteral, "1")

	cache := NewUnitCache(0)
	assert.Equal(t, DEFAULT_UNIT_CACHE_SIZE, cache.Size())

	first, err := Lower(EntryExpression, f.unit, tree, Options{Cache: cache})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	second, err := Lower(EntryExpression, f.unit, tree, Options{Cache: cache})
	require.NoError(t, err)
	assert.Same(t, first, second)

	t.Run("the entry is part of the key", func(t *testing.T) {
		other, err := Lower(EntryInteractiveInput, f.unit, tree, Options{Cache: cache})
		require.NoError(t, err)
		assert.NotSame(t, first, other)
	})

	t.Run("recovery mode bypasses the cache", func(t *testing.T) {
		recovered, err := Lower(EntryExpression, f.unit, tree, Options{Cache: cache, Recovery: true})
		require.NoError(t, err)
		assert.NotSame(t, first, recovered)
	})

	t.Run("failed results are not stored", func(t *testing.T) {
		g := newFixture(t, "9223372036854775808")
		_, err := Lower(EntryExpression, g.unit, g.leaf(syntax.DecLiteral, "9223372036854775808"), Options{Cache: cache})
		assert.Error(t, err)

		_, ok := cache.Get(g.unit, EntryExpression)
		assert.False(t, ok)
	})

	cache.InvalidateAllEntries()
	assert.Zero(t, cache.Len())

	third, err := Lower(EntryExpression, f.unit, tree, Options{Cache: cache})
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestLowerAll(t *testing.T) {
	testconfig.AllowParallelization(t)

	var jobs []Job
	for i, code := range []string{"1", "9223372036854775808", "3"} {
		unit := sourcecode.InMemorySource{NameString: "/unit" + string(rune('a'+i)) + ".wf", CodeString: code}
		jobs = append(jobs, Job{
			Entry: EntryExpression,
			Unit:  unit,
			Tree:  syntax.Leaf(syntax.DecLiteral, code, syntax.At(0, int32(len(code)))),
		})
	}

	t.Run("fail-fast", func(t *testing.T) {
		results, err := LowerAll(context.Background(), jobs, Options{Parallelism: 2})
		require.Len(t, results, 3)

		assert.EqualValues(t, 1, results[0].Node.(*ast.LongLiteral).Value)
		assert.Nil(t, results[1].Node)
		assert.EqualValues(t, 3, results[2].Node.(*ast.LongLiteral).Value)

		require.Error(t, err)
		errs := multierr.Errors(err)
		require.Len(t, errs, 1)
		assert.True(t, langerr.Is(errs[0], langerr.NumberOutOfBounds))
	})

	t.Run("each unit has its own sink", func(t *testing.T) {
		results, err := LowerAll(context.Background(), jobs, Options{Recovery: true})
		require.NoError(t, err)

		assert.Empty(t, results[0].Errors)
		assert.Len(t, results[1].Errors, 1)
		assert.Empty(t, results[2].Errors)
		assert.NotEqual(t, results[0].RunID, results[2].RunID)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results, err := LowerAll(ctx, jobs, Options{})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, results)
	})
}

func TestLowerLogging(t *testing.T) {
	testconfig.AllowParallelization(t)

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	f := newFixture(t, "1 as foo")
	cast := f.node(syntax.Cast, "1 as foo", f.leaf(syntax.DecLiteral, "1"), f.leaf(syntax.DataType, "foo"))

	_, err := Lower(EntryExpression, f.unit, cast, Options{Recovery: true, Logger: &logger})
	require.NoError(t, err)

	logs := buf.String()
	assert.Contains(t, logs, `"src":"/test.wf"`)
	assert.Contains(t, logs, `"run":"`)
	assert.Contains(t, logs, "recovered from error")
	assert.Contains(t, logs, "unknown type: foo")
}
