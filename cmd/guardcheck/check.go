package main

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// Finding is one exported method on a guarded struct whose body contains
// no call into the guard package.
type Finding struct {
	Pos    token.Position
	Type   string
	Method string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s.%s has no guard.Read/Write/WriteEx/Destroy call", f.Pos, f.Type, f.Method)
}

const guardPackage = "github.com/kolkov/accessguard/guard"

// Check loads the packages matching patterns and returns every method on a
// guard.Shadow-carrying struct whose body contains no call into the guard
// package.
//
// This mirrors, at a much smaller scale, the two-pass approach the
// compile-time instrumentation tool this is grounded on uses: first
// collect every type that needs watching (structs with a guard.Shadow
// field), then walk each of their methods looking for the expected guard
// construction, rather than trying to do both in one pass.
func Check(patterns []string) ([]Finding, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo |
			packages.NeedSyntax | packages.NeedImports,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var findings []Finding
	for _, pkg := range pkgs {
		guarded := findGuardedTypes(pkg)
		if len(guarded) == 0 {
			continue
		}
		findings = append(findings, findUnguardedMethods(pkg, guarded)...)
	}
	return findings, nil
}

// findGuardedTypes returns the set of named struct types in pkg that embed
// a field whose type is guard.Shadow.
func findGuardedTypes(pkg *packages.Package) map[types.Type]string {
	guarded := map[types.Type]string{}
	for _, def := range pkg.TypesInfo.Defs {
		tn, ok := def.(*types.TypeName)
		if !ok {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok {
			continue
		}
		st, ok := named.Underlying().(*types.Struct)
		if !ok {
			continue
		}
		for i := 0; i < st.NumFields(); i++ {
			if isGuardShadow(st.Field(i).Type()) {
				guarded[named] = named.Obj().Name()
				break
			}
		}
	}
	return guarded
}

func isGuardShadow(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj != nil && obj.Name() == "Shadow" && obj.Pkg() != nil && obj.Pkg().Path() == guardPackage
}

// findUnguardedMethods walks every function declaration in pkg whose
// receiver's type (or pointer-to-type) is in guarded, and reports it if
// its body never references the guard package.
func findUnguardedMethods(pkg *packages.Package, guarded map[types.Type]string) []Finding {
	var findings []Finding
	for _, file := range pkg.Syntax {
		ast.Inspect(file, func(n ast.Node) bool {
			fn, ok := n.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 || !fn.Name.IsExported() {
				return true
			}
			recvType := pkg.TypesInfo.TypeOf(fn.Recv.List[0].Type)
			if recvType == nil {
				return true
			}
			if ptr, ok := recvType.(*types.Pointer); ok {
				recvType = ptr.Elem()
			}
			typeName, isGuarded := guarded[recvType]
			if !isGuarded {
				return true
			}
			if !callsGuardPackage(fn.Body, pkg) {
				findings = append(findings, Finding{
					Pos:    pkg.Fset.Position(fn.Pos()),
					Type:   typeName,
					Method: fn.Name.Name,
				})
			}
			return true
		})
	}
	return findings
}

func callsGuardPackage(body *ast.BlockStmt, pkg *packages.Package) bool {
	if body == nil {
		return true // nothing to flag in a forward declaration
	}
	found := false
	ast.Inspect(body, func(n ast.Node) bool {
		if found {
			return false
		}
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		if obj, ok := pkg.TypesInfo.Uses[ident].(*types.PkgName); ok && obj.Imported().Path() == guardPackage {
			found = true
			return false
		}
		return true
	})
	return found
}
