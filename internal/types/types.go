// Package types contains the fixed set of value types known at lowering time and the castability
// relation between them.
package types

import (
	"github.com/bits-and-blooms/bitset"
)

// Type is a small integer tag, types are compared by value.
type Type uint8

const (
	Void Type = iota
	Any
	Boolean
	Binary
	String
	Long
	Double
	Decimal
	DateTime
	List
	Dict
	Function

	typeCount
)

var (
	typeNames = [typeCount]string{
		Void:     "void",
		Any:      "any",
		Boolean:  "boolean",
		Binary:   "binary",
		String:   "string",
		Long:     "long",
		Double:   "double",
		Decimal:  "decimal",
		DateTime: "datetime",
		List:     "list",
		Dict:     "dict",
		Function: "function",
	}

	byName = map[string]Type{}

	//castableFrom[t] is the set of types whose values can be attempted to be cast to t.
	castableFrom [typeCount]*bitset.BitSet
)

func init() {
	for i, name := range typeNames {
		byName[name] = Type(i)
	}

	from := func(types ...Type) *bitset.BitSet {
		set := bitset.New(uint(typeCount))
		//void (nil) and any can always be attempted.
		set.Set(uint(Void)).Set(uint(Any))
		for _, t := range types {
			set.Set(uint(t))
		}
		return set
	}

	castableFrom[Void] = bitset.New(uint(typeCount)).Set(uint(Void))
	castableFrom[Any] = bitset.New(uint(typeCount)).FlipRange(0, uint(typeCount))
	castableFrom[Boolean] = bitset.New(uint(typeCount)).FlipRange(0, uint(typeCount))
	castableFrom[Binary] = from(Binary, Long)
	castableFrom[String] = from(String, Boolean, Long, Double, Decimal, DateTime, Binary)
	castableFrom[Long] = from(Long, Boolean, Double, Decimal, String)
	castableFrom[Double] = from(Double, Boolean, Long, Decimal, String)
	castableFrom[Decimal] = from(Decimal, Double, Boolean, Long, String)
	castableFrom[DateTime] = from(DateTime, String)
	castableFrom[List] = from(List, Dict, String)
	castableFrom[Dict] = from(Dict, List, DateTime)
	castableFrom[Function] = from(Function)
}

func (t Type) String() string {
	if t >= typeCount {
		return "unknown"
	}
	return typeNames[t]
}

func (t Type) IsNumeric() bool {
	return t == Long || t == Double || t == Decimal
}

// IsOrderable reports whether values of the type can be compared with < <= > >=, Any and Void are
// considered orderable since they are only known at run time.
func (t Type) IsOrderable() bool {
	switch t {
	case Any, Void, Long, Double, Decimal, DateTime:
		return true
	}
	return false
}

// CanAttemptCastTo reports whether a value of type t can be cast to target, the cast may still fail at run time.
func (t Type) CanAttemptCastTo(target Type) bool {
	return CanAttemptCast(t, target)
}

func CanAttemptCast(from, to Type) bool {
	if from >= typeCount || to >= typeCount {
		return false
	}
	if from == Void {
		return true
	}
	return castableFrom[to].Test(uint(from))
}

// ByName returns the type with the given name.
func ByName(name string) (Type, bool) {
	t, ok := byName[name]
	return t, ok
}

func MustByName(name string) Type {
	t, ok := byName[name]
	if !ok {
		panic("unknown type " + name)
	}
	return t
}

func All() []Type {
	all := make([]Type, typeCount)
	for i := range all {
		all[i] = Type(i)
	}
	return all
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
