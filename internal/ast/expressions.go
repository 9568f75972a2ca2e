package ast

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/weftlang/weft/internal/types"
)

type NilLiteral struct {
	NodeBase
	//Recovered is true if the literal is a placeholder substituted for an invalid construct.
	Recovered bool `json:"recovered,omitempty"`
}

type BooleanLiteral struct {
	NodeBase
	Value bool `json:"value"`
}

type LongLiteral struct {
	NodeBase
	Value int64 `json:"value"`
}

type DoubleLiteral struct {
	NodeBase
	Value float64 `json:"value"`
}

type DecimalLiteral struct {
	NodeBase
	Value decimal.Decimal `json:"value"`
}

type StringLiteral struct {
	NodeBase
	Value string `json:"value"`
}

type BinaryLiteral struct {
	NodeBase
	Value []byte `json:"value"`
}

type DateTimeLiteral struct {
	NodeBase
	Value time.Time `json:"value"`
	//Zone is the name of the time zone, it is "UTC" or "UTC+hh:mm" when no zone is explicitly given.
	Zone string `json:"zone"`
}

type Anchor uint8

const (
	LocalAnchor Anchor = iota
	GlobalAnchor
	LibraryAnchor
	ModuleAnchor
)

func (a Anchor) String() string {
	switch a {
	case LocalAnchor:
		return "local"
	case GlobalAnchor:
		return "global"
	case LibraryAnchor:
		return "library"
	case ModuleAnchor:
		return "module"
	}
	return "unknown"
}

func (a Anchor) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// A Reference is a lookup of a name path against the scope selected by its anchor.
type Reference struct {
	NodeBase
	Anchor   Anchor   `json:"anchor"`
	Elements []string `json:"elements"`
}

func (r *Reference) LastElement() string {
	if len(r.Elements) == 0 {
		return ""
	}
	return r.Elements[len(r.Elements)-1]
}

type List struct {
	NodeBase
	Elements []Expression `json:"elements"`
}

type Dict struct {
	NodeBase
	Entries []*DictEntry `json:"entries"`
}

type DictEntry struct {
	NodeBase
	Key   Expression `json:"key"`
	Value Expression `json:"value"`
}

// A Function literal has exactly one of Body and Via.
type Function struct {
	NodeBase
	Parameters         *Parameters `json:"parameters"`
	DeclaredReturnType types.Type  `json:"returnType"`
	Body               Expression  `json:"body,omitempty"`
	Via                *Via        `json:"via,omitempty"`
}

// Via describes the native implementation of a function.
type Via struct {
	NodeBase
	Expression Expression `json:"expression"`
}

type Call struct {
	NodeBase
	Callee    Expression `json:"callee"`
	Arguments *Arguments `json:"arguments"`
}

type PartialApplication struct {
	NodeBase
	Callee    Expression        `json:"callee"`
	Arguments *PartialArguments `json:"arguments"`
}

type If struct {
	NodeBase
	Condition Expression `json:"condition"`
	Then      Expression `json:"then"`
	Else      Expression `json:"else"`
}

type For struct {
	NodeBase
	Head *ForHead   `json:"head"`
	Body Expression `json:"body"`
}

type ForHead struct {
	NodeBase
	Elements []ForHeadElement `json:"elements"`
}

// A Filter is an expression in the head of a for comprehension, its value decides whether
// the current combination of generated values is kept.
type Filter struct {
	NodeBase
	Expression Expression `json:"expression"`
}

type Let struct {
	NodeBase
	Bindings *VarDefs   `json:"bindings"`
	Body     Expression `json:"body"`
}

type Match struct {
	NodeBase
	Subject Expression   `json:"subject"`
	Lines   []*MatchLine `json:"lines"`
}

type MatchLine struct {
	NodeBase
	Pattern    Pattern    `json:"pattern"`
	Guard      Expression `json:"guard,omitempty"`
	Expression Expression `json:"expression"`
}

type TryCatch struct {
	NodeBase
	Try         Expression `json:"try"`
	Catch       Expression `json:"catch"`
	CaughtError *VarDec    `json:"caughtError,omitempty"`
	CaughtTrace *VarDec    `json:"caughtTrace,omitempty"`
}

type Throw struct {
	NodeBase
	Expression Expression `json:"expression"`
}

type BinaryOperation struct {
	NodeBase
	Operator BinaryOperator `json:"operator"`
	Left     Expression     `json:"left"`
	Right    Expression     `json:"right"`
}

type UnaryOperation struct {
	NodeBase
	Operator UnaryOperator `json:"operator"`
	Operand  Expression    `json:"operand"`
}

type Cast struct {
	NodeBase
	Expression Expression `json:"expression"`
	Target     types.Type `json:"target"`
}

type Is struct {
	NodeBase
	Expression Expression `json:"expression"`
	Type       types.Type `json:"type"`
}

type TypeOf struct {
	NodeBase
	Expression Expression `json:"expression"`
}

// Default evaluates to Fallback when Expression evaluates to nil.
type Default struct {
	NodeBase
	Expression Expression `json:"expression"`
	Fallback   Expression `json:"fallback"`
}

type Debug struct {
	NodeBase
	Expression Expression `json:"expression"`
	Value      Expression `json:"value,omitempty"` //can be nil
}

type ContainerAccess struct {
	NodeBase
	Container Expression `json:"container"`
	Keys      Expression `json:"keys"` //list-typed expression
}

func (*NilLiteral) ValueType() types.Type      { return types.Void }
func (*BooleanLiteral) ValueType() types.Type  { return types.Boolean }
func (*LongLiteral) ValueType() types.Type     { return types.Long }
func (*DoubleLiteral) ValueType() types.Type   { return types.Double }
func (*DecimalLiteral) ValueType() types.Type  { return types.Decimal }
func (*StringLiteral) ValueType() types.Type   { return types.String }
func (*BinaryLiteral) ValueType() types.Type   { return types.Binary }
func (*DateTimeLiteral) ValueType() types.Type { return types.DateTime }
func (*Reference) ValueType() types.Type       { return types.Any }
func (*List) ValueType() types.Type            { return types.List }
func (*Dict) ValueType() types.Type            { return types.Dict }
func (*Function) ValueType() types.Type        { return types.Function }
func (*Call) ValueType() types.Type            { return types.Any }
func (*PartialApplication) ValueType() types.Type {
	return types.Any
}
func (*For) ValueType() types.Type             { return types.List }
func (*Match) ValueType() types.Type           { return types.Any }
func (*TryCatch) ValueType() types.Type        { return types.Any }
func (*Throw) ValueType() types.Type           { return types.Any }
func (*Is) ValueType() types.Type              { return types.Boolean }
func (*TypeOf) ValueType() types.Type          { return types.String }
func (*ContainerAccess) ValueType() types.Type { return types.Any }

func (n *Cast) ValueType() types.Type {
	return n.Target
}

func (n *If) ValueType() types.Type {
	return CommonType(n.Then.ValueType(), n.Else.ValueType())
}

func (n *Let) ValueType() types.Type {
	return n.Body.ValueType()
}

func (n *Default) ValueType() types.Type {
	return CommonType(n.Expression.ValueType(), n.Fallback.ValueType())
}

func (n *Debug) ValueType() types.Type {
	if n.Value == nil {
		return n.Expression.ValueType()
	}
	return n.Value.ValueType()
}

func (n *BinaryOperation) ValueType() types.Type {
	return n.Operator.ResultType(n.Left.ValueType(), n.Right.ValueType())
}

func (n *UnaryOperation) ValueType() types.Type {
	return n.Operator.ResultType(n.Operand.ValueType())
}

// CommonType returns a if a and b are equal, Any otherwise.
func CommonType(a, b types.Type) types.Type {
	if a == b {
		return a
	}
	return types.Any
}

func (*NilLiteral) expressionNode()         {}
func (*BooleanLiteral) expressionNode()     {}
func (*LongLiteral) expressionNode()        {}
func (*DoubleLiteral) expressionNode()      {}
func (*DecimalLiteral) expressionNode()     {}
func (*StringLiteral) expressionNode()      {}
func (*BinaryLiteral) expressionNode()      {}
func (*DateTimeLiteral) expressionNode()    {}
func (*Reference) expressionNode()          {}
func (*List) expressionNode()               {}
func (*Dict) expressionNode()               {}
func (*Function) expressionNode()           {}
func (*Call) expressionNode()               {}
func (*PartialApplication) expressionNode() {}
func (*If) expressionNode()                 {}
func (*For) expressionNode()                {}
func (*Let) expressionNode()                {}
func (*Match) expressionNode()              {}
func (*TryCatch) expressionNode()           {}
func (*Throw) expressionNode()              {}
func (*BinaryOperation) expressionNode()    {}
func (*UnaryOperation) expressionNode()     {}
func (*Cast) expressionNode()               {}
func (*Is) expressionNode()                 {}
func (*TypeOf) expressionNode()             {}
func (*Default) expressionNode()            {}
func (*Debug) expressionNode()              {}
func (*ContainerAccess) expressionNode()    {}

func (*Generator) forHeadElement() {}
func (*VarDef) forHeadElement()    {}
func (*Filter) forHeadElement()    {}
