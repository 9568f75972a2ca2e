package sourcecode

import (
	"sort"
	"sync"
)

// Unit is a unit of source code handed over by the grammar: a module file, a standalone expression,
// an interactive input line, etc.
type Unit interface {
	// unique name | URL | path
	Name() string
	Code() string
}

type SourceFile struct {
	NameString  string
	Resource    string //path or url
	ResourceDir string //path or url
	CodeString  string
}

func (f SourceFile) Name() string {
	return f.NameString
}

func (f SourceFile) Code() string {
	return f.CodeString
}

type InMemorySource struct {
	NameString string
	CodeString string
}

func (s InMemorySource) Name() string {
	return s.NameString
}

func (s InMemorySource) Code() string {
	return s.CodeString
}

// Source wraps a Unit and lazily computes its runes and the start index of its lines, it is safe for concurrent use.
// All references created while lowering a unit point to the same *Source.
type Source struct {
	Unit       Unit
	runes      []rune
	lineStarts []int32 //rune index of the first rune of each line
	runesLock  sync.Mutex
}

func NewSource(unit Unit) *Source {
	return &Source{Unit: unit}
}

func (s *Source) Name() string {
	if s == nil || s.Unit == nil {
		return ""
	}
	return s.Unit.Name()
}

// result should not be modified.
func (s *Source) Runes() []rune {
	s.runesLock.Lock()
	defer s.runesLock.Unlock()

	s.computeRunes()
	return s.runes
}

// computeRunes should be called with the lock held.
func (s *Source) computeRunes() {
	if s.runes != nil || s.Unit == nil || s.Unit.Code() == "" {
		return
	}
	s.runes = []rune(s.Unit.Code())

	s.lineStarts = []int32{0}
	for i, r := range s.runes {
		if r == '\n' {
			s.lineStarts = append(s.lineStarts, int32(i+1))
		}
	}
}

// GetSpanLineColumn returns the 1-based line and column of the start of span. A start past the end of the unit
// is located after the last rune.
func (s *Source) GetSpanLineColumn(span Span) (int32, int32) {
	s.runesLock.Lock()
	s.computeRunes()
	lineStarts := s.lineStarts
	runeCount := len32(s.runes)
	s.runesLock.Unlock()

	pos := min(max(span.Start, 0), runeCount)
	if len(lineStarts) == 0 {
		return 1, 1
	}

	//index of the last line starting at or before pos
	line := sort.Search(len(lineStarts), func(i int) bool {
		return lineStarts[i] > pos
	}) - 1

	return int32(line) + 1, pos - lineStarts[line] + 1
}

func (s *Source) GetLineCut(cutIndex int32) (beforeSpan string, afterSpan string) {
	runes := s.Runes()
	if cutIndex > len32(runes) {
		cutIndex = len32(runes)
	}

	i := cutIndex

	for i > 0 && runes[i-1] != '\n' {
		i--
	}

	beforeSpan = string(runes[i:cutIndex])

	i = cutIndex

	for i < len32(runes) && runes[i] != '\n' {
		i++
	}

	afterSpan = string(runes[cutIndex:i])

	return
}

func len32[E any](s []E) int32 {
	return int32(len(s))
}
