package lower

import (
	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/syntax"
)

// lowerModule lowers a module: an optional head followed by libraries. Libraries and the members of the head
// are recovery boundaries.
func (b *builder) lowerModule(n *syntax.Node) (*ast.Module, error) {
	module := &ast.Module{
		NodeBase:   ast.At(b.unitRef()),
		Components: []*ast.Library{},
	}

	if headNode := n.Child(syntax.FieldHead); headNode != nil {
		head, err := b.lowerModuleHead(headNode)
		if err != nil {
			return nil, err
		}
		module.GlobalName = head.GlobalName
		module.Imports = head.Imports
		module.Aliases = head.Aliases
		module.Exports = head.Exports
		module.Doc = head.Doc
		module.Meta = head.Meta
	}

	libraryNames := map[string]struct{}{}

	for _, child := range n.Children {
		switch child.Kind {
		case syntax.Library:
		case syntax.ModuleHead:
			continue
		case syntax.Error:
			if err := b.syntaxError(child); !b.recoverDrop(err) {
				return nil, err
			}
			continue
		default:
			if err := b.unexpected(child, "module"); !b.recoverDrop(err) {
				return nil, err
			}
			continue
		}

		lib, err := b.lowerLibrary(child)
		if err == nil {
			if _, ok := libraryNames[lib.LibraryName]; ok {
				err = langerr.New(langerr.AlreadyDefined, fmtAlreadyDefined(lib.LibraryName), lib.Src())
			}
		}
		if err != nil {
			if !b.recoverDrop(err) {
				return nil, err
			}
			continue
		}

		libraryNames[lib.LibraryName] = struct{}{}
		module.Components = append(module.Components, lib)
	}

	return module, nil
}

func (b *builder) lowerModuleHeadEntry(n *syntax.Node) (*ast.ModuleHead, error) {
	switch n.Kind {
	case syntax.ModuleHead:
		return b.lowerModuleHead(n)
	case syntax.Module:
		if headNode := n.Child(syntax.FieldHead); headNode != nil {
			return b.lowerModuleHead(headNode)
		}
		//a module without head has an empty head
		return &ast.ModuleHead{NodeBase: ast.At(b.unitRef())}, nil
	}
	return nil, b.unexpected(n, "module head entry")
}

func (b *builder) lowerModuleHead(n *syntax.Node) (*ast.ModuleHead, error) {
	head := &ast.ModuleHead{NodeBase: ast.At(b.ref(n))}

	for _, child := range n.Children {
		var err error

		switch child.Kind {
		case syntax.NameDec:
			if ids := child.ChildrenOfKind(syntax.Identifier); len(ids) > 0 {
				head.GlobalName = Identifier(ids[0].Text)
			}
			head.Doc, head.Meta, err = b.lowerDocAndMeta(child)
		case syntax.ImportDef:
			var imp *ast.Import
			if imp, err = b.lowerImport(child); err == nil {
				head.Imports = append(head.Imports, imp)
			}
		case syntax.AliasDef:
			var alias *ast.Alias
			if alias, err = b.lowerAlias(child); err == nil {
				head.Aliases = append(head.Aliases, alias)
			}
		case syntax.ExportDef:
			var export *ast.Export
			if export, err = b.lowerExport(child); err == nil {
				head.Exports = append(head.Exports, export)
			}
		case syntax.Doc, syntax.Meta:
			continue
		default:
			err = b.unexpected(child, "module head")
		}

		if err != nil && !b.recoverDrop(err) {
			return nil, err
		}
	}

	return head, nil
}

// lowerImport lowers `import name, {a, b as c} from path`, a member that cannot be lowered is dropped in
// recovery mode.
func (b *builder) lowerImport(n *syntax.Node) (*ast.Import, error) {
	pathNode := n.Child(syntax.FieldPath)
	if pathNode == nil {
		return nil, b.errorf(langerr.ParseError, n, MISSING_IMPORT_PATH)
	}

	path, err := b.lowerExpression(pathNode)
	if err != nil {
		return nil, err
	}

	imp := &ast.Import{
		NodeBase: ast.At(b.ref(n)),
		Path:     path,
		Members:  []ast.ImportMember{},
	}

	for _, child := range n.Children {
		if child == pathNode {
			continue
		}

		member, err := b.lowerImportMember(child)
		if err != nil {
			if !b.recoverDrop(err) {
				return nil, err
			}
			continue
		}
		imp.Members = append(imp.Members, member)
	}

	return imp, nil
}

func (b *builder) lowerImportMember(n *syntax.Node) (ast.ImportMember, error) {
	switch n.Kind {
	case syntax.ModuleImport:
		ids := n.ChildrenOfKind(syntax.Identifier)
		if len(ids) == 0 {
			return nil, b.errorf(langerr.ParseError, n, MISSING_NAME)
		}
		return &ast.ModuleImport{
			NodeBase:   ast.At(b.ref(n)),
			ImportName: Identifier(ids[0].Text),
		}, nil
	case syntax.ComponentImport:
		exportNode := n.Child(syntax.FieldExport)
		if exportNode == nil {
			return nil, b.errorf(langerr.ParseError, n, MISSING_NAME)
		}
		exportName := Identifier(exportNode.Text)
		importName := exportName
		if nameNode := n.Child(syntax.FieldName); nameNode != nil {
			importName = Identifier(nameNode.Text)
		}
		return &ast.NameImport{
			NodeBase:   ast.At(b.ref(n)),
			ExportName: exportName,
			ImportName: importName,
		}, nil
	}
	return nil, b.unexpected(n, "import")
}

func (b *builder) lowerAlias(n *syntax.Node) (*ast.Alias, error) {
	sourceNode := n.Child(syntax.FieldSource)
	if sourceNode == nil {
		return nil, b.missing(n, syntax.FieldSource)
	}
	nameNode := n.Child(syntax.FieldName)
	if nameNode == nil {
		return nil, b.errorf(langerr.ParseError, n, MISSING_NAME)
	}

	source, err := b.lowerReference(sourceNode)
	if err != nil {
		return nil, err
	}

	return &ast.Alias{
		NodeBase:  ast.At(b.ref(n)),
		AliasName: Identifier(nameNode.Text),
		Source:    source,
	}, nil
}

// lowerExport lowers `export ref as name`, the name defaults to the last element of the reference.
func (b *builder) lowerExport(n *syntax.Node) (*ast.Export, error) {
	sourceNode := n.Child(syntax.FieldSource)
	if sourceNode == nil {
		return nil, b.missing(n, syntax.FieldSource)
	}

	source, err := b.lowerReference(sourceNode)
	if err != nil {
		return nil, err
	}

	name := source.LastElement()
	if nameNode := n.Child(syntax.FieldName); nameNode != nil {
		name = Identifier(nameNode.Text)
	}

	return &ast.Export{
		NodeBase:   ast.At(b.ref(n)),
		ExportName: name,
		Source:     source,
	}, nil
}

// lowerLibrary lowers a library. A variable defined more than once is reported at its second definition,
// in recovery mode the first definition is kept.
func (b *builder) lowerLibrary(n *syntax.Node) (*ast.Library, error) {
	nameNode := n.Child(syntax.FieldName)
	if nameNode == nil {
		return nil, b.errorf(langerr.ParseError, n, MISSING_NAME)
	}

	lib := &ast.Library{
		NodeBase:    ast.At(b.ref(n)),
		LibraryName: Identifier(nameNode.Text),
		IsExport:    n.Has(syntax.FieldExport),
		Vars:        &ast.VarDefs{NodeBase: ast.At(b.ref(n))},
	}

	var err error
	if lib.Doc, lib.Meta, err = b.lowerDocAndMeta(n); err != nil {
		return nil, err
	}

	var defs []*syntax.Node
	for _, child := range n.Children {
		switch child.Kind {
		case syntax.VarDef, syntax.VarDec, syntax.Error:
			defs = append(defs, child)
		}
	}

	err = b.addVarDefs(lib.Vars, defs, func(def *ast.VarDef) *langerr.Error {
		return langerr.New(langerr.AlreadyDefined, fmtDefinedMoreThanOnceIn(def.VarName, lib.LibraryName), def.Src()).
			Put("name", def.VarName)
	})
	if err != nil {
		return nil, err
	}
	lib.Vars.Commit()

	return lib, nil
}
