// Package analyzers содержит анализаторы, специфичные для проекта.
package analyzers

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

// exitFuncs содержит функции, завершающие процесс в обход отложенных вызовов
var exitFuncs = map[string]bool{
	"os.Exit":     true,
	"log.Fatal":   true,
	"log.Fatalf":  true,
	"log.Fatalln": true,
}

// NoExitAnalyzer запрещает завершать процесс напрямую из функции main пакета main,
// если в ней есть отложенные вызовы. Работу с defer следует вынести в отдельную
// функцию, возвращающую код выхода.
var NoExitAnalyzer = &analysis.Analyzer{
	Name:     "noexit",
	Doc:      "запрещает прямой вызов os.Exit и log.Fatal в функции main пакета main с defer",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runNoExit,
}

func runNoExit(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		fn := n.(*ast.FuncDecl)
		if fn.Recv != nil || fn.Name.Name != "main" || fn.Body == nil || !hasDefer(fn.Body) {
			return
		}
		ast.Inspect(fn.Body, func(n ast.Node) bool {
			// Замыкания внутри main выполняются отдельно
			if _, ok := n.(*ast.FuncLit); ok {
				return false
			}
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			callee, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
			if ok && exitFuncs[callee.FullName()] {
				pass.Reportf(call.Pos(), "прямой вызов %s в функции main запрещен", callee.FullName())
			}
			return true
		})
	})
	return nil, nil
}

// hasDefer сообщает, есть ли defer в теле функции без учёта замыканий
func hasDefer(body *ast.BlockStmt) bool {
	found := false
	ast.Inspect(body, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.DeferStmt:
			found = true
		}
		return !found
	})
	return found
}
