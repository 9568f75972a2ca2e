// Package lower turns the concrete syntax tree of a source unit into a typed AST. Lowering parses literals,
// inserts implicit casts, folds splats and interpolations into binary operation trees, compiles match patterns
// and checks the structural invariants of binding containers.
//
// Each lowering call runs in one of two modes: in fail-fast mode the first error aborts the call and no AST is
// returned, in recovery mode errors raised inside a recovery boundary are recorded and the offending construct
// is replaced by a nil placeholder or dropped.
package lower

import (
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/sourcecode"
	"github.com/weftlang/weft/internal/syntax"
)

const (
	SOURCE_LOG_FIELD_NAME = "src"
	RUN_LOG_FIELD_NAME    = "run"
)

// Entry selects the kind of root a lowering call produces.
type Entry uint8

const (
	// EntryUnit lowers a module or an interactive session depending on the root of the tree.
	EntryUnit Entry = iota
	EntryModule
	EntryModuleHead
	EntryExpression
	EntryReference
	EntryInteractiveInput
)

var entryNames = [...]string{
	EntryUnit:             "unit",
	EntryModule:           "module",
	EntryModuleHead:       "module-head",
	EntryExpression:       "expression",
	EntryReference:        "reference",
	EntryInteractiveInput: "interactive-input",
}

func (e Entry) String() string {
	if int(e) >= len(entryNames) {
		return "unknown"
	}
	return entryNames[e]
}

func EntryByName(name string) (Entry, bool) {
	for i, n := range entryNames {
		if n == name {
			return Entry(i), true
		}
	}
	return 0, false
}

type Options struct {
	Recovery bool

	// Logger is the parent of the logger of each call, the zero value discards all events.
	Logger *zerolog.Logger

	// Cache is only used in fail-fast mode.
	Cache *UnitCache

	// Parallelism is the maximum number of units lowered at the same time by LowerAll,
	// a value <= 0 means GOMAXPROCS.
	Parallelism int
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// Result is the outcome of a lowering call. In fail-fast mode Node is nil if an error occurred and Errors
// contains this single error. In recovery mode Node is set and Errors lists the recovered errors in the order
// they were encountered.
type Result struct {
	Node          ast.Node
	Recovery      bool
	Errors        []*langerr.Error
	BuildDuration time.Duration
	RunID         ulid.ULID
}

// Err combines the errors of the result, nil is returned if there are none.
func (r *Result) Err() error {
	return langerr.Combine(r.Errors)
}

func (r *Result) Ok() bool {
	return r.Node != nil && len(r.Errors) == 0
}

// Lower lowers the tree of unit, tree is the output of the grammar for the code of unit.
func Lower(entry Entry, unit sourcecode.Unit, tree *syntax.Node, opts Options) (*Result, error) {
	parentLogger := opts.logger()

	useCache := opts.Cache != nil && !opts.Recovery
	if useCache {
		if cached, ok := opts.Cache.Get(unit, entry); ok {
			parentLogger.Debug().Str(SOURCE_LOG_FIELD_NAME, unit.Name()).Stringer("entry", entry).Msg("unit cache hit")
			return cached, nil
		}
	}

	runID := ulid.Make()
	logger := parentLogger.With().Str(SOURCE_LOG_FIELD_NAME, unit.Name()).Stringer(RUN_LOG_FIELD_NAME, runID).Logger()

	var sink *langerr.Sink
	if opts.Recovery {
		sink = langerr.NewRecoverySink()
		sink.OnRecord(func(e *langerr.Error) {
			logger.Warn().Object("error", e).Msg("recovered from error")
		})
	} else {
		sink = langerr.NewFailFastSink()
	}

	b := &builder{
		src:    sourcecode.NewSource(unit),
		sink:   sink,
		logger: logger,
	}

	logger.Debug().Stringer("entry", entry).Bool("recovery", opts.Recovery).Msg("lowering started")
	start := time.Now()

	node, err := b.lowerEntry(entry, tree)

	result := &Result{
		Recovery:      opts.Recovery,
		BuildDuration: time.Since(start),
		RunID:         runID,
	}

	if err != nil {
		e := asLangError(err)
		e.Locate(b.ref(tree))
		result.Errors = []*langerr.Error{e}

		logger.Debug().Dur("duration", result.BuildDuration).Object("error", e).Msg("lowering failed")
		return result, e
	}

	result.Node = node
	result.Errors = sink.Errors()

	logger.Debug().Dur("duration", result.BuildDuration).Int("errors", len(result.Errors)).Msg("lowering done")

	if useCache {
		opts.Cache.Put(unit, entry, result)
		logger.Debug().Stringer("entry", entry).Msg("unit cache miss, result stored")
	}
	return result, nil
}

func LowerUnit(unit sourcecode.Unit, tree *syntax.Node, opts Options) (*Result, error) {
	return Lower(EntryUnit, unit, tree, opts)
}

func LowerModule(unit sourcecode.Unit, tree *syntax.Node, opts Options) (*Result, error) {
	return Lower(EntryModule, unit, tree, opts)
}

func LowerModuleHead(unit sourcecode.Unit, tree *syntax.Node, opts Options) (*Result, error) {
	return Lower(EntryModuleHead, unit, tree, opts)
}

func LowerExpression(unit sourcecode.Unit, tree *syntax.Node, opts Options) (*Result, error) {
	return Lower(EntryExpression, unit, tree, opts)
}

func LowerReference(unit sourcecode.Unit, tree *syntax.Node, opts Options) (*Result, error) {
	return Lower(EntryReference, unit, tree, opts)
}

func LowerInteractiveInput(unit sourcecode.Unit, tree *syntax.Node, opts Options) (*Result, error) {
	return Lower(EntryInteractiveInput, unit, tree, opts)
}

// builder holds the per-call context of a lowering call, it is never shared between calls.
type builder struct {
	src    *sourcecode.Source
	sink   *langerr.Sink
	logger zerolog.Logger
}

func (b *builder) lowerEntry(entry Entry, tree *syntax.Node) (ast.Node, error) {
	if tree == nil {
		return &ast.Empty{NodeBase: ast.At(b.unitRef())}, nil
	}

	switch entry {
	case EntryUnit:
		switch tree.Kind {
		case syntax.Module:
			return b.lowerModule(tree)
		case syntax.Interactive:
			return b.lowerInteractive(tree)
		case syntax.Error:
			return nil, b.syntaxError(tree)
		}
		return nil, b.errorf(langerr.ParseError, tree, UNIT_SHOULD_BE_MODULE_OR_INTERACTIVE)
	case EntryModule:
		if tree.Kind != syntax.Module {
			return nil, b.unexpected(tree, "module entry")
		}
		return b.lowerModule(tree)
	case EntryModuleHead:
		return b.lowerModuleHeadEntry(tree)
	case EntryExpression:
		expr, err := b.lowerExpression(tree)
		if err != nil {
			return b.recoverExpression(err, b.ref(tree))
		}
		return expr, nil
	case EntryReference:
		return b.lowerReference(tree)
	case EntryInteractiveInput:
		return b.lowerInteractiveInput(tree)
	}
	return nil, fmt.Errorf("unknown entry %d", entry)
}

func (b *builder) ref(n *syntax.Node) sourcecode.Ref {
	if n == nil {
		return sourcecode.Ref{}
	}
	return sourcecode.RefAt(b.src, n.Span)
}

// unitRef returns a reference spanning the whole unit, modules and interactive sessions
// always stretch over the entire unit.
func (b *builder) unitRef() sourcecode.Ref {
	return sourcecode.RefAt(b.src, sourcecode.Span{Start: 0, End: int32(len(b.src.Runes()))})
}

func (b *builder) errorf(code langerr.Code, n *syntax.Node, format string, args ...any) *langerr.Error {
	if len(args) == 0 {
		return langerr.New(code, format, b.ref(n))
	}
	return langerr.Newf(code, b.ref(n), format, args...)
}

func (b *builder) syntaxError(n *syntax.Node) *langerr.Error {
	return langerr.New(langerr.ParseError, fmtSyntaxError(n.Text), b.ref(n))
}

func (b *builder) unexpected(n *syntax.Node, context string) *langerr.Error {
	if n.IsError() {
		return b.syntaxError(n)
	}
	return langerr.New(langerr.ParseError, fmtUnexpectedNode(n.Kind, context), b.ref(n))
}

func (b *builder) missing(parent *syntax.Node, role string) *langerr.Error {
	return langerr.New(langerr.ParseError, fmtMissingChild(parent.Kind, role), b.ref(parent))
}

// recoverExpression records err and returns a nil placeholder located at ref,
// err is returned unchanged in fail-fast mode.
func (b *builder) recoverExpression(err error, ref sourcecode.Ref) (ast.Expression, error) {
	if err == nil {
		panic(errors.New("recoverExpression called with a nil error"))
	}
	if !b.sink.Recover(err) {
		return nil, err
	}
	return placeholder(ref), nil
}

// recoverDrop records err, the caller drops the construct that caused it. False is returned in fail-fast mode.
func (b *builder) recoverDrop(err error) bool {
	return b.sink.Recover(err)
}

func placeholder(ref sourcecode.Ref) *ast.NilLiteral {
	return &ast.NilLiteral{NodeBase: ast.At(ref), Recovered: true}
}

func asLangError(err error) *langerr.Error {
	var e *langerr.Error
	if errors.As(err, &e) {
		return e
	}
	return langerr.Wrap(err, langerr.ParseError)
}
