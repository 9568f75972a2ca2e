package sourcecode

import (
	"fmt"
	"strings"
)

type Span struct {
	Start int32 `json:"start"`
	End   int32 `json:"end"` //exclusive
}

func (s Span) Len() int32 {
	return s.End - s.Start
}

// Ref locates a node in its source unit. Refs are plain values: copying one never shares
// mutable state with the original.
type Ref struct {
	Source *Source
	Span   Span
}

func RefAt(src *Source, span Span) Ref {
	return Ref{Source: src, Span: span}
}

// Copy returns a duplicate of the reference, it is used when a synthetic node is anchored to another node.
func (r Ref) Copy() Ref {
	return Ref{Source: r.Source, Span: r.Span}
}

// Through returns a reference spanning from the start of r to the end of other.
func (r Ref) Through(other Ref) Ref {
	return Ref{Source: r.Source, Span: Span{Start: r.Span.Start, End: other.Span.End}}
}

func (r Ref) IsZero() bool {
	return r.Source == nil && r.Span == (Span{})
}

func (r Ref) Line() int32 {
	if r.Source == nil {
		return 0
	}
	line, _ := r.Source.GetSpanLineColumn(r.Span)
	return line
}

func (r Ref) Column() int32 {
	if r.Source == nil {
		return 0
	}
	_, col := r.Source.GetSpanLineColumn(r.Span)
	return col
}

// ShortLocation returns line:column.
func (r Ref) ShortLocation() string {
	if r.Source == nil {
		return ""
	}
	line, col := r.Source.GetSpanLineColumn(r.Span)
	return fmt.Sprintf("%d:%d", line, col)
}

// Location returns name:line:column.
func (r Ref) Location() string {
	if r.Source == nil {
		return ""
	}
	line, col := r.Source.GetSpanLineColumn(r.Span)
	return fmt.Sprintf("%s:%d:%d", r.Source.Name(), line, col)
}

// SourceCode returns the code covered by the reference, or "" if the span is outside of the unit.
func (r Ref) SourceCode() string {
	if r.Source == nil {
		return ""
	}
	runes := r.Source.Runes()
	if r.Span.Start < 0 || r.Span.End > len32(runes) || r.Span.Start > r.Span.End {
		return ""
	}
	return string(runes[r.Span.Start:r.Span.End])
}

// SourceCodeLine returns the full line containing the start of the reference.
func (r Ref) SourceCodeLine() string {
	if r.Source == nil {
		return ""
	}
	before, after := r.Source.GetLineCut(r.Span.Start)
	return strings.TrimRight(before+after, "\r")
}

func (r Ref) String() string {
	return r.Location()
}

// PositionRange is the serializable form of a Ref.
type PositionRange struct {
	SourceName  string `json:"sourceName"`
	StartLine   int32  `json:"line"`
	StartColumn int32  `json:"column"`
	Span        Span   `json:"span"`
}

func (r Ref) Position() PositionRange {
	line, col := int32(0), int32(0)
	if r.Source != nil {
		line, col = r.Source.GetSpanLineColumn(r.Span)
	}
	return PositionRange{
		SourceName:  r.Source.Name(),
		StartLine:   line,
		StartColumn: col,
		Span:        r.Span,
	}
}

func (pos PositionRange) String() string {
	return fmt.Sprintf("%s:%d:%d:", pos.SourceName, pos.StartLine, pos.StartColumn)
}
