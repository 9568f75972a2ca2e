package ast

import (
	"errors"

	"github.com/weftlang/weft/internal/langerr"
)

var ErrCommittedBindings = errors.New("bindings are committed and cannot be modified")

// Bindings is an insertion-ordered collection of named entries. A second entry with an already present name
// is rejected when it is added, Commit freezes the collection before it is attached to its owner.
type Bindings[T Named] struct {
	entries   []T
	index     map[string]int
	committed bool
}

// Add appends entry, an AlreadyDefined error located at entry is returned if the name is already present.
// Add panics if the bindings are committed.
func (b *Bindings[T]) Add(entry T) error {
	if b.committed {
		panic(ErrCommittedBindings)
	}

	name := entry.Name()
	if _, ok := b.index[name]; ok {
		return langerr.New(langerr.AlreadyDefined, fmtAlreadyDefined(name), entry.Src())
	}

	if b.index == nil {
		b.index = map[string]int{}
	}
	b.index[name] = len(b.entries)
	b.entries = append(b.entries, entry)
	return nil
}

// Replace substitutes the entry having the same name as entry, the position of the replaced entry is kept.
// Replace returns false if no entry has this name and panics if the bindings are committed.
func (b *Bindings[T]) Replace(entry T) bool {
	if b.committed {
		panic(ErrCommittedBindings)
	}

	i, ok := b.index[entry.Name()]
	if !ok {
		return false
	}
	b.entries[i] = entry
	return true
}

func (b *Bindings[T]) Commit() {
	b.committed = true
}

func (b *Bindings[T]) IsCommitted() bool {
	return b.committed
}

func (b *Bindings[T]) Get(name string) (T, bool) {
	i, ok := b.index[name]
	if !ok {
		var zero T
		return zero, false
	}
	return b.entries[i], true
}

func (b *Bindings[T]) Has(name string) bool {
	_, ok := b.index[name]
	return ok
}

func (b *Bindings[T]) Len() int {
	return len(b.entries)
}

// At returns the i-th entry in insertion order.
func (b *Bindings[T]) At(i int) T {
	return b.entries[i]
}

// All returns the entries in insertion order, the returned slice should not be modified.
func (b *Bindings[T]) All() []T {
	return b.entries
}

func (b *Bindings[T]) Names() []string {
	names := make([]string, len(b.entries))
	for i, e := range b.entries {
		names[i] = e.Name()
	}
	return names
}

func (b *Bindings[T]) nodes() []Node {
	nodes := make([]Node, len(b.entries))
	for i, e := range b.entries {
		nodes[i] = e
	}
	return nodes
}

func fmtAlreadyDefined(name string) string {
	return name + " already defined"
}

type VarDefs struct {
	NodeBase
	Bindings[*VarDef]
}

type Parameters struct {
	NodeBase
	Bindings[*Parameter]
}

// PartialArguments are the named arguments of a partial application.
type PartialArguments struct {
	NodeBase
	Bindings[*NamedArgument]
}

type bindingsContainer interface {
	nodes() []Node
}

var (
	_ = bindingsContainer(&VarDefs{})
	_ = bindingsContainer(&Parameters{})
	_ = bindingsContainer(&PartialArguments{})
)
