// Copyright 2026 The Zphbundle Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main implements a check that files are not created directly with
// os.WriteFile(), os.Create() or os.OpenFile().
//
// Instead, callers should use engine.WriteOutput() so failures surface as an
// engine.IOError.
package main

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
)

var writeFuncs = map[string]struct{}{
	"Create":    {},
	"OpenFile":  {},
	"WriteFile": {},
}

func run(pass *analysis.Pass) (any, error) {
	for _, f := range pass.Files {
		if strings.HasSuffix(pass.Fset.File(f.Pos()).Name(), "_test.go") {
			continue
		}
		for _, decl := range f.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Body == nil || fn.Name.Name == "WriteOutput" {
				continue
			}
			ast.Inspect(fn.Body, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				selector, ok := call.Fun.(*ast.SelectorExpr)
				if !ok {
					return true
				}
				if _, ok := writeFuncs[selector.Sel.Name]; !ok {
					return true
				}
				pkg, ok := selector.X.(*ast.Ident)
				if !ok {
					return true
				}
				if name, ok := pass.TypesInfo.Uses[pkg].(*types.PkgName); ok && name.Imported().Path() == "os" {
					pass.Reportf(call.Pos(), "do not call os.%s() directly, use engine.WriteOutput() instead",
						selector.Sel.Name)
				}
				return true
			})
		}
	}
	return nil, nil
}

func main() {
	multichecker.Main(
		&analysis.Analyzer{
			Name: "directwrite",
			Doc:  "do not call os.WriteFile, os.Create or os.OpenFile directly",
			Run:  run,
		},
	)
}
