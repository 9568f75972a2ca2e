package ast

import (
	"github.com/weftlang/weft/internal/types"
)

type Module struct {
	NodeBase
	GlobalName string     `json:"globalName,omitempty"`
	Imports    []*Import  `json:"imports,omitempty"`
	Aliases    []*Alias   `json:"aliases,omitempty"`
	Exports    []*Export  `json:"exports,omitempty"`
	Doc        *Doc       `json:"doc,omitempty"`
	Meta       *Meta      `json:"meta,omitempty"`
	Components []*Library `json:"components"`
}

// ModuleHead is the part of a module preceding its components, it is lowered on its own by tooling.
type ModuleHead struct {
	NodeBase
	GlobalName string    `json:"globalName,omitempty"`
	Imports    []*Import `json:"imports,omitempty"`
	Aliases    []*Alias  `json:"aliases,omitempty"`
	Exports    []*Export `json:"exports,omitempty"`
	Doc        *Doc      `json:"doc,omitempty"`
	Meta       *Meta     `json:"meta,omitempty"`
}

type Import struct {
	NodeBase
	Path    Expression     `json:"path"`
	Members []ImportMember `json:"members"`
}

// ModuleImport binds a whole module to a name.
type ModuleImport struct {
	NodeBase
	ImportName string `json:"importName"`
}

// NameImport binds an exported component of a module to a name.
type NameImport struct {
	NodeBase
	ExportName string `json:"exportName"`
	ImportName string `json:"importName"`
}

type Export struct {
	NodeBase
	ExportName string     `json:"name"`
	Source     *Reference `json:"source"`
}

type Alias struct {
	NodeBase
	AliasName string     `json:"name"`
	Source    *Reference `json:"source"`
}

type Library struct {
	NodeBase
	LibraryName string   `json:"name"`
	IsExport    bool     `json:"export"`
	Doc         *Doc     `json:"doc,omitempty"`
	Meta        *Meta    `json:"meta,omitempty"`
	Vars        *VarDefs `json:"vars"`
}

// A VarDef binds the value of an expression to a name, Provided is true for declarations
// whose value is supplied by the embedding application.
type VarDef struct {
	NodeBase
	VarName      string     `json:"name"`
	DeclaredType types.Type `json:"declaredType"`
	Value        Expression `json:"value"`
	Provided     bool       `json:"provided,omitempty"`
	Doc          *Doc       `json:"doc,omitempty"`
	Meta         *Meta      `json:"meta,omitempty"`
}

// A VarDec declares a name without a value, it is used for the names bound by a catch clause.
type VarDec struct {
	NodeBase
	VarName      string     `json:"name"`
	DeclaredType types.Type `json:"declaredType"`
}

type Generator struct {
	NodeBase
	VarName      string     `json:"name"`
	DeclaredType types.Type `json:"declaredType"`
	Value        Expression `json:"value"`
}

type Parameter struct {
	NodeBase
	ParamName    string     `json:"name"`
	Index        int        `json:"index"`
	DeclaredType types.Type `json:"declaredType"`
	Default      Expression `json:"default"`
}

type Arguments struct {
	NodeBase
	List []Argument `json:"list"`
}

type PositionalArgument struct {
	NodeBase
	Index      int        `json:"index"`
	Expression Expression `json:"expression"`
}

type NamedArgument struct {
	NodeBase
	ArgName    string     `json:"name"`
	Expression Expression `json:"expression"`
}

type SplatArgument struct {
	NodeBase
	Index      int        `json:"index"`
	Expression Expression `json:"expression"`
}

type Doc struct {
	NodeBase
	Expression Expression `json:"expression"`
}

type Meta struct {
	NodeBase
	Expression Expression `json:"expression"`
}

type Interactive struct {
	NodeBase
	Sections []*InteractiveSection `json:"sections"`
}

// An InteractiveSection holds the variables defined in an interactive session in the scope of a module.
type InteractiveSection struct {
	NodeBase
	Scope *Reference `json:"scope"`
	Vars  *VarDefs   `json:"vars"`
}

// Empty is the result of lowering an empty input.
type Empty struct {
	NodeBase
}

func (n *Library) Name() string       { return n.LibraryName }
func (n *VarDef) Name() string        { return n.VarName }
func (n *VarDec) Name() string        { return n.VarName }
func (n *Generator) Name() string     { return n.VarName }
func (n *Parameter) Name() string     { return n.ParamName }
func (n *NamedArgument) Name() string { return n.ArgName }
func (n *Export) Name() string        { return n.ExportName }
func (n *Alias) Name() string         { return n.AliasName }

func (n *PositionalArgument) ArgExpression() Expression { return n.Expression }
func (n *NamedArgument) ArgExpression() Expression      { return n.Expression }
func (n *SplatArgument) ArgExpression() Expression      { return n.Expression }

func (*PositionalArgument) argumentNode() {}
func (*NamedArgument) argumentNode()      {}
func (*SplatArgument) argumentNode()      {}

func (*ModuleImport) importMember() {}
func (*NameImport) importMember()   {}
