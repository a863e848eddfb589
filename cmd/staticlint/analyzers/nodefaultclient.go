package analyzers

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// apiPackageSuffix задаёт пакет, которому разрешено работать с net/http напрямую
const apiPackageSuffix = "/internal/api"

// NoDefaultClientAnalyzer запрещает http.Get, http.Post, http.Head, http.PostForm
// и http.DefaultClient вне пакета internal/api и тестов. Запросы в обход
// api.Client теряют таймаут, токен и обработку 401.
var NoDefaultClientAnalyzer = &analysis.Analyzer{
	Name:     "nodefaultclient",
	Doc:      "запрещает http.DefaultClient и его функции-обёртки вне internal/api",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runNoDefaultClient,
}

var defaultClientFuncs = map[string]bool{
	"Get":      true,
	"Head":     true,
	"Post":     true,
	"PostForm": true,
}

func runNoDefaultClient(pass *analysis.Pass) (interface{}, error) {
	if strings.HasSuffix(pass.Pkg.Path(), apiPackageSuffix) {
		return nil, nil
	}
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.SelectorExpr)(nil)}, func(n ast.Node) {
		sel := n.(*ast.SelectorExpr)
		if strings.HasSuffix(pass.Fset.Position(sel.Pos()).Filename, "_test.go") {
			return
		}
		obj := pass.TypesInfo.Uses[sel.Sel]
		if obj == nil || obj.Pkg() == nil || obj.Pkg().Path() != "net/http" {
			return
		}

		switch o := obj.(type) {
		case *types.Var:
			if o.Name() == "DefaultClient" {
				pass.Reportf(sel.Pos(), "http.DefaultClient запрещен, используйте api.Client")
			}
		case *types.Func:
			// Методы *http.Client с теми же именами допустимы
			if sig, ok := o.Type().(*types.Signature); ok && sig.Recv() == nil && defaultClientFuncs[o.Name()] {
				pass.Reportf(sel.Pos(), "http.%s запрещен, используйте api.Client", o.Name())
			}
		}
	})
	return nil, nil
}
