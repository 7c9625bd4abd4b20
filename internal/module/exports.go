package module

import "github.com/vaultjs/vaultjs/internal/ast"

// defaultBindingName is the hidden local name an anonymous `export default`
// value binds to, so it has an ordinary *env.Binding other machinery
// (namespace construction, re-exports of "default") can reference like any
// other module-level binding. The "%" prefix matches internal/interp's own
// convention for scope bindings no guest identifier can ever spell.
const defaultBindingName = "%default%"

// importSpec is one ImportDeclaration specifier extracted before hoisting,
// so the loader can link the referenced module and alias its binding in
// before any statement in this module runs.
type importSpec struct {
	source   string
	kind     string // "named", "default", "namespace"
	imported string // source module's export name ("" for default/namespace)
	local    string
}

// reExportAll is one `export * [as name] from "source"` declaration.
type reExportAll struct {
	source   string
	exported string // "" for a bare `export * from`, set for `export * as ns from`
}

// namedExport is one locally-bound export: either `export <decl>` (Source
// empty, Local/Exported equal to the declared name — filled in after
// desugarExports splices the declaration into the body) or `export
// {local as exported} [from "source"]`.
type namedExport struct {
	source   string // "" for a local export
	local    string
	exported string
}

// desugarModule extracts every import/export directive from a parsed
// module body and rewrites it into a plain statement list the evaluator
// can hoist and run unmodified: ImportDeclarations are dropped (the
// loader turns them into binding aliases instead), `export <decl>` keeps
// only its inner declaration, and an unnamed `export default <expr>`
// becomes a synthetic `const %default% = <expr>;`.
func desugarModule(body []ast.Statement) (rewritten []ast.Statement, imports []importSpec, named []namedExport, stars []reExportAll) {
	for _, s := range body {
		switch n := s.(type) {
		case *ast.ImportDeclaration:
			for _, spec := range n.Specifiers {
				is := importSpec{source: n.Source, local: spec.Local.Name}
				switch spec.Kind {
				case "default":
					is.kind = "default"
				case "namespace":
					is.kind = "namespace"
				default:
					is.kind = "named"
					if spec.Imported != nil {
						is.imported = spec.Imported.Name
					} else {
						is.imported = spec.Local.Name
					}
				}
				imports = append(imports, is)
			}
			if len(n.Specifiers) == 0 {
				// Bare `import "source";` for side effects only: still link
				// the dependency, just bind nothing.
				imports = append(imports, importSpec{source: n.Source, kind: "side-effect"})
			}

		case *ast.ExportNamedDeclaration:
			if n.Declaration != nil {
				rewritten = append(rewritten, n.Declaration)
				for _, name := range declaredNames(n.Declaration) {
					named = append(named, namedExport{local: name, exported: name})
				}
				continue
			}
			for _, spec := range n.Specifiers {
				exported := spec.Local.Name
				if spec.Exported != nil {
					exported = spec.Exported.Name
				}
				named = append(named, namedExport{source: n.Source, local: spec.Local.Name, exported: exported})
			}

		case *ast.ExportDefaultDeclaration:
			switch d := n.Declaration.(type) {
			case *ast.FunctionDeclaration:
				if d.ID != nil {
					rewritten = append(rewritten, d)
					named = append(named, namedExport{local: d.ID.Name, exported: "default"})
				} else {
					rewritten = append(rewritten, syntheticConst(defaultBindingName, &ast.FunctionExpression{
						Base: d.Base, Params: d.Params, Body: d.Body, Generator: d.Generator, Async: d.Async,
					}))
					named = append(named, namedExport{local: defaultBindingName, exported: "default"})
				}
			case *ast.ClassDeclaration:
				if d.ID != nil {
					rewritten = append(rewritten, d)
					named = append(named, namedExport{local: d.ID.Name, exported: "default"})
				} else {
					rewritten = append(rewritten, syntheticConst(defaultBindingName, &ast.ClassExpression{
						Base: d.Base, SuperClass: d.SuperClass, Body: d.Body,
					}))
					named = append(named, namedExport{local: defaultBindingName, exported: "default"})
				}
			case ast.Expression:
				rewritten = append(rewritten, syntheticConst(defaultBindingName, d))
				named = append(named, namedExport{local: defaultBindingName, exported: "default"})
			}

		case *ast.ExportAllDeclaration:
			stars = append(stars, reExportAll{source: n.Source, exported: n.Exported})

		default:
			rewritten = append(rewritten, s)
		}
	}
	return rewritten, imports, named, stars
}

// syntheticConst builds a `const <name> = <expr>;` statement, used to give
// an anonymous `export default` value an ordinary module binding.
func syntheticConst(name string, expr ast.Expression) ast.Statement {
	return &ast.VarDeclaration{
		Kind: "const",
		Declarations: []*ast.VarDeclarator{
			{ID: &ast.Identifier{Name: name}, Init: expr},
		},
	}
}

// declaredNames returns every top-level binding name a declaration
// statement introduces, used to turn `export <decl>` into named-export
// entries once the declaration has been spliced into the module body.
func declaredNames(s ast.Statement) []string {
	var names []string
	switch d := s.(type) {
	case *ast.VarDeclaration:
		for _, decl := range d.Declarations {
			collectPatternNames(decl.ID, &names)
		}
	case *ast.FunctionDeclaration:
		if d.ID != nil {
			names = append(names, d.ID.Name)
		}
	case *ast.ClassDeclaration:
		if d.ID != nil {
			names = append(names, d.ID.Name)
		}
	}
	return names
}

func collectPatternNames(pat ast.Expression, out *[]string) {
	switch p := pat.(type) {
	case *ast.Identifier:
		*out = append(*out, p.Name)
	case *ast.ArrayPattern:
		for _, el := range p.Elements {
			if el != nil {
				collectPatternNames(el, out)
			}
		}
	case *ast.ObjectPattern:
		for _, prop := range p.Properties {
			collectPatternNames(prop.Value, out)
		}
		if p.Rest != nil {
			collectPatternNames(p.Rest.Argument, out)
		}
	case *ast.AssignmentPattern:
		collectPatternNames(p.Left, out)
	case *ast.RestElement:
		collectPatternNames(p.Argument, out)
	}
}
