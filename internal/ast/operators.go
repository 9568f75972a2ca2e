package ast

import (
	"github.com/weftlang/weft/internal/types"
)

type BinaryOperator uint8

const (
	Add BinaryOperator = iota
	Sub
	Mul
	Div
	IntDiv
	Mod
	Pow

	Equal
	NotEqual
	ValueAndTypeEqual
	NotValueAndTypeEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual

	And
	Or

	BitwiseAnd
	BitwiseOr
	BitwiseXor
	ShiftLeft
	PreservingShiftRight
	ZeroShiftRight

	StringConcat
	ListConcat
	DictMerge
)

var binaryOperatorSymbols = [...]string{
	Add:                  "+",
	Sub:                  "-",
	Mul:                  "*",
	Div:                  "/",
	IntDiv:               "//",
	Mod:                  "%",
	Pow:                  "**",
	Equal:                "==",
	NotEqual:             "!=",
	ValueAndTypeEqual:    "===",
	NotValueAndTypeEqual: "!==",
	LessThan:             "<",
	LessThanOrEqual:      "<=",
	GreaterThan:          ">",
	GreaterThanOrEqual:   ">=",
	And:                  "and",
	Or:                   "or",
	BitwiseAnd:           "&",
	BitwiseOr:            "|",
	BitwiseXor:           "^",
	ShiftLeft:            "<<",
	PreservingShiftRight: ">>",
	ZeroShiftRight:       ">>>",
	StringConcat:         "..",
	//the two following operators have no source syntax, they are produced by splat folding.
	ListConcat: "list-concat",
	DictMerge:  "dict-merge",
}

func (op BinaryOperator) String() string {
	if int(op) >= len(binaryOperatorSymbols) {
		return "?"
	}
	return binaryOperatorSymbols[op]
}

func (op BinaryOperator) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// BinaryOperatorFromSymbol returns the operator written with the given symbol, operators produced by
// splat folding have no symbol.
func BinaryOperatorFromSymbol(symbol string) (BinaryOperator, bool) {
	for op, s := range binaryOperatorSymbols {
		if s == symbol && BinaryOperator(op) != ListConcat && BinaryOperator(op) != DictMerge {
			return BinaryOperator(op), true
		}
	}
	return 0, false
}

func (op BinaryOperator) IsArithmetic() bool {
	return op <= Pow
}

func (op BinaryOperator) IsEquality() bool {
	return op >= Equal && op <= NotValueAndTypeEqual
}

func (op BinaryOperator) IsOrdering() bool {
	return op >= LessThan && op <= GreaterThanOrEqual
}

func (op BinaryOperator) IsBoolean() bool {
	return op == And || op == Or
}

func (op BinaryOperator) IsBitwise() bool {
	return op >= BitwiseAnd && op <= ZeroShiftRight
}

// OperandType returns the type both operands are cast to, Any means that operands are not cast.
func (op BinaryOperator) OperandType() types.Type {
	switch {
	case op.IsBitwise():
		return types.Long
	case op.IsBoolean():
		return types.Boolean
	case op == StringConcat:
		return types.String
	}
	return types.Any
}

// ResultType returns the static type of the result of the operation given the static types of the operands.
func (op BinaryOperator) ResultType(left, right types.Type) types.Type {
	switch {
	case op.IsArithmetic():
		result := numericResultType(left, right)
		switch op {
		case Div, Pow:
			if result == types.Long {
				return types.Double
			}
		}
		return result
	case op.IsEquality(), op.IsOrdering(), op.IsBoolean():
		return types.Boolean
	case op.IsBitwise():
		return types.Long
	case op == StringConcat:
		return types.String
	case op == ListConcat:
		return types.List
	case op == DictMerge:
		return types.Dict
	}
	return types.Any
}

func numericResultType(left, right types.Type) types.Type {
	if !left.IsNumeric() || !right.IsNumeric() {
		return types.Any
	}
	switch {
	case left == types.Decimal || right == types.Decimal:
		return types.Decimal
	case left == types.Double || right == types.Double:
		return types.Double
	}
	return types.Long
}

type UnaryOperator uint8

const (
	Negate UnaryOperator = iota
	Not
	BitwiseNot
)

func (op UnaryOperator) String() string {
	switch op {
	case Negate:
		return "-"
	case Not:
		return "not"
	case BitwiseNot:
		return "~"
	}
	return "?"
}

func (op UnaryOperator) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

func UnaryOperatorFromSymbol(symbol string) (UnaryOperator, bool) {
	switch symbol {
	case "-":
		return Negate, true
	case "not", "!":
		return Not, true
	case "~":
		return BitwiseNot, true
	}
	return 0, false
}

func (op UnaryOperator) OperandType() types.Type {
	switch op {
	case Not:
		return types.Boolean
	case BitwiseNot:
		return types.Long
	}
	return types.Any
}

func (op UnaryOperator) ResultType(operand types.Type) types.Type {
	switch op {
	case Negate:
		if operand.IsNumeric() {
			return operand
		}
		return types.Any
	case Not:
		return types.Boolean
	case BitwiseNot:
		return types.Long
	}
	return types.Any
}
