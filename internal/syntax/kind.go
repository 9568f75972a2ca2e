package syntax

import (
	"fmt"
)

// Kind identifies the grammar construct a CST node stands for.
type Kind uint8

const (
	Invalid Kind = iota

	//units
	Module
	ModuleHead
	NameDec
	Interactive
	InteractiveSection
	InteractiveInput

	//module head
	ImportDef
	ModuleImport
	ComponentImport
	AliasDef
	ExportDef

	//components
	Library
	VarDef
	VarDec
	Doc
	Meta
	Identifier
	DataType
	Keyword

	//literals
	NilLiteral
	BooleanLiteral
	DecLiteral
	HexLiteral
	DoubleLiteral
	DecimalLiteral
	BinaryLiteral
	DateTimeLiteral
	StringVerbatim
	StringHereDoc
	KeyLiteral
	StringInterpolation
	StringText
	StringEscape
	StringExpressionInterpolation

	//references
	LocalReference
	GlobalReference
	LibraryReference
	ModuleReference

	//collections
	ListLiteral
	DictLiteral
	Splat
	ContainerAccess
	KeySequence

	//functions & calls
	FunctionLiteral
	ParamDef
	Via
	Call
	Args
	PositionalArg
	NamedArg
	SplatArg
	PartialApplication
	PartialArgs
	Thread

	//control
	If
	For
	ForHead
	Generator
	Let
	Match
	PatternLine
	DefaultLine
	TryCatch
	CatchError
	CatchErrorAndTrace
	Throw

	//operators
	BinaryExpression
	UnaryExpression
	Nested
	Cast
	Is
	TypeOf
	Default
	Debug

	//patterns
	ExpPattern
	DataTypePattern
	CapturePattern
	VarCapture
	SplatCapture
	ListPattern
	HeadTailListPattern
	InitLastListPattern
	MidListPattern
	DictPattern
	OpenDictPattern
	DictPatternEntry

	//Error is a node left in the tree by a recovering grammar, Text holds the message.
	Error

	kindCount
)

var kindNames = [kindCount]string{
	Invalid:                       "invalid",
	Module:                        "module",
	ModuleHead:                    "module-head",
	NameDec:                       "name-dec",
	Interactive:                   "interactive",
	InteractiveSection:            "interactive-section",
	InteractiveInput:              "interactive-input",
	ImportDef:                     "import",
	ModuleImport:                  "module-import",
	ComponentImport:               "component-import",
	AliasDef:                      "alias",
	ExportDef:                     "export",
	Library:                       "library",
	VarDef:                        "var-def",
	VarDec:                        "var-dec",
	Doc:                           "doc",
	Meta:                          "meta",
	Identifier:                    "identifier",
	DataType:                      "data-type",
	Keyword:                       "keyword",
	NilLiteral:                    "nil",
	BooleanLiteral:                "boolean",
	DecLiteral:                    "dec",
	HexLiteral:                    "hex",
	DoubleLiteral:                 "double",
	DecimalLiteral:                "decimal",
	BinaryLiteral:                 "binary",
	DateTimeLiteral:               "datetime",
	StringVerbatim:                "string-verbatim",
	StringHereDoc:                 "string-heredoc",
	KeyLiteral:                    "key",
	StringInterpolation:           "string-interpolation",
	StringText:                    "string-text",
	StringEscape:                  "string-escape",
	StringExpressionInterpolation: "string-expression",
	LocalReference:                "local-ref",
	GlobalReference:               "global-ref",
	LibraryReference:              "library-ref",
	ModuleReference:               "module-ref",
	ListLiteral:                   "list",
	DictLiteral:                   "dict",
	Splat:                         "splat",
	ContainerAccess:               "container-access",
	KeySequence:                   "key-sequence",
	FunctionLiteral:               "function",
	ParamDef:                      "param",
	Via:                           "via",
	Call:                          "call",
	Args:                          "args",
	PositionalArg:                 "positional-arg",
	NamedArg:                      "named-arg",
	SplatArg:                      "splat-arg",
	PartialApplication:            "partial",
	PartialArgs:                   "partial-args",
	Thread:                        "thread",
	If:                            "if",
	For:                           "for",
	ForHead:                       "for-head",
	Generator:                     "generator",
	Let:                           "let",
	Match:                         "match",
	PatternLine:                   "pattern-line",
	DefaultLine:                   "default-line",
	TryCatch:                      "try",
	CatchError:                    "catch-error",
	CatchErrorAndTrace:            "catch-error-trace",
	Throw:                         "throw",
	BinaryExpression:              "binary-expr",
	UnaryExpression:               "unary-expr",
	Nested:                        "nested",
	Cast:                          "cast",
	Is:                            "is",
	TypeOf:                        "typeof",
	Default:                       "default",
	Debug:                         "debug",
	ExpPattern:                    "exp-pattern",
	DataTypePattern:               "type-pattern",
	CapturePattern:                "capture-pattern",
	VarCapture:                    "var-capture",
	SplatCapture:                  "splat-capture",
	ListPattern:                   "list-pattern",
	HeadTailListPattern:           "head-tail-pattern",
	InitLastListPattern:           "init-last-pattern",
	MidListPattern:                "mid-pattern",
	DictPattern:                   "dict-pattern",
	OpenDictPattern:               "open-dict-pattern",
	DictPatternEntry:              "dict-pattern-entry",
	Error:                         "error",
}

var kindsByName = map[string]Kind{}

func init() {
	for i, name := range kindNames {
		kindsByName[name] = Kind(i)
	}
}

func (k Kind) String() string {
	if k >= kindCount {
		return kindNames[Invalid]
	}
	return kindNames[k]
}

func KindByName(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	kind, ok := kindsByName[string(text)]
	if !ok || kind == Invalid {
		return fmt.Errorf("unknown node kind %q", text)
	}
	*k = kind
	return nil
}

// IsPattern reports whether nodes of the kind can appear as the pattern of a match line.
func (k Kind) IsPattern() bool {
	switch k {
	case ExpPattern, DataTypePattern, CapturePattern, ListPattern, HeadTailListPattern,
		InitLastListPattern, MidListPattern, DictPattern, OpenDictPattern:
		return true
	}
	return false
}
