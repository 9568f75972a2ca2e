package ast

import (
	"github.com/weftlang/weft/internal/types"
)

// ExpressionPattern matches values equal to the value of Expression.
type ExpressionPattern struct {
	NodeBase
	Expression Expression      `json:"expression"`
	Capture    *CapturePattern `json:"capture,omitempty"`
}

type TypePattern struct {
	NodeBase
	Type    types.Type      `json:"type"`
	Capture *CapturePattern `json:"capture,omitempty"`
}

// CapturePattern matches any value and binds it to Name, an empty Name is an anonymous capture.
type CapturePattern struct {
	NodeBase
	CaptureName string `json:"name,omitempty"`
}

// DefaultPattern matches any value, it can only appear in the last line of a match.
type DefaultPattern struct {
	NodeBase
}

type ListPattern struct {
	NodeBase
	Elements []Pattern       `json:"elements"`
	Capture  *CapturePattern `json:"capture,omitempty"`
}

// HeadTailListPattern matches the first elements of a list, the remaining elements are captured by Tail.
type HeadTailListPattern struct {
	NodeBase
	Elements []Pattern       `json:"elements"`
	Tail     *CapturePattern `json:"tail"`
	Capture  *CapturePattern `json:"capture,omitempty"`
}

// InitLastListPattern matches the last elements of a list, the preceding elements are captured by Init.
type InitLastListPattern struct {
	NodeBase
	Init     *CapturePattern `json:"init"`
	Elements []Pattern       `json:"elements"`
	Capture  *CapturePattern `json:"capture,omitempty"`
}

// MidListPattern matches the first and last elements of a list, the elements in between are captured by Mid.
type MidListPattern struct {
	NodeBase
	Head    []Pattern       `json:"head"`
	Mid     *CapturePattern `json:"mid"`
	Last    []Pattern       `json:"last"`
	Capture *CapturePattern `json:"capture,omitempty"`
}

// DictPattern matches dicts having exactly the keys of its entries.
type DictPattern struct {
	NodeBase
	Entries []*DictPatternEntry `json:"entries"`
	Capture *CapturePattern     `json:"capture,omitempty"`
}

// OpenDictPattern matches dicts having at least the keys of its entries, the other entries are captured by Rest.
type OpenDictPattern struct {
	NodeBase
	Entries []*DictPatternEntry `json:"entries"`
	Rest    *CapturePattern     `json:"rest"`
	Capture *CapturePattern     `json:"capture,omitempty"`
}

type DictPatternEntry struct {
	NodeBase
	Key     string  `json:"key"`
	Pattern Pattern `json:"pattern"`
}

func (n *CapturePattern) Name() string {
	return n.CaptureName
}

func (n *CapturePattern) IsAnonymous() bool {
	return n.CaptureName == ""
}

// DictPatternKeys returns the keys of a dict or open dict pattern in source order.
func DictPatternKeys(entries []*DictPatternEntry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

func (*ExpressionPattern) patternNode()   {}
func (*TypePattern) patternNode()         {}
func (*CapturePattern) patternNode()      {}
func (*DefaultPattern) patternNode()      {}
func (*ListPattern) patternNode()         {}
func (*HeadTailListPattern) patternNode() {}
func (*InitLastListPattern) patternNode() {}
func (*MidListPattern) patternNode()      {}
func (*DictPattern) patternNode()         {}
func (*OpenDictPattern) patternNode()     {}

func (n *ExpressionPattern) WholeCapture() *CapturePattern   { return n.Capture }
func (n *TypePattern) WholeCapture() *CapturePattern         { return n.Capture }
func (n *ListPattern) WholeCapture() *CapturePattern         { return n.Capture }
func (n *HeadTailListPattern) WholeCapture() *CapturePattern { return n.Capture }
func (n *InitLastListPattern) WholeCapture() *CapturePattern { return n.Capture }
func (n *MidListPattern) WholeCapture() *CapturePattern      { return n.Capture }
func (n *DictPattern) WholeCapture() *CapturePattern         { return n.Capture }
func (n *OpenDictPattern) WholeCapture() *CapturePattern     { return n.Capture }
