package sample

import (
	"fmt"

	"github.com/attrflow/reactor/pkg/attribute"
	"github.com/attrflow/reactor/pkg/reactor"
)

const typeAttr = "type"

func typeOf(n Node) attribute.Attribute {
	return attribute.New(n, typeAttr)
}

// Analyze resolves every identifier reference in program, registers one
// type-inference rule per AST node, runs the reactor to a fixed point
// and returns it. Callers inspect results with r.GetNode(node, "type"),
// r.Errors() and r.ReportErrors.
func Analyze(program *Program, opts ...reactor.Option) (*reactor.Reactor, error) {
	r := reactor.New(opts...)

	scope := make(map[string]*VarDecl, len(program.Decls))
	for _, decl := range program.Decls {
		resolve(decl.Init, scope)
		registerExpr(r, decl.Init)
		r.Rule(typeOf(decl)).Using(typeOf(decl.Init)).By(reactor.CopyFirst)
		scope[decl.Name] = decl
	}
	for _, expr := range program.Exprs {
		resolve(expr, scope)
		registerExpr(r, expr)
	}

	if err := r.Run(); err != nil {
		return r, err
	}
	return r, nil
}

// resolve walks expr filling in every Ident's Ref from scope. A name
// absent from scope is left unresolved (Ref stays nil); registerExpr
// turns that into a root SemanticError rather than failing resolution
// itself, so a single Analyze call surfaces every undeclared reference
// at once instead of stopping at the first.
func resolve(expr Expr, scope map[string]*VarDecl) {
	switch e := expr.(type) {
	case *Ident:
		e.Ref = scope[e.Name]
	case *BinaryExpr:
		resolve(e.Left, scope)
		resolve(e.Right, scope)
	case *IntLit, *StringLit:
		// no sub-expressions, nothing to resolve
	}
}

// registerExpr registers a type-inference rule for expr and, for
// compound expressions, for every sub-expression first.
func registerExpr(r *reactor.Reactor, expr Expr) {
	switch e := expr.(type) {
	case *IntLit:
		r.Rule(typeOf(e)).By(func(rl *reactor.Rule) {
			rl.Set(0, "int")
		})

	case *StringLit:
		r.Rule(typeOf(e)).By(func(rl *reactor.Rule) {
			rl.Set(0, "string")
		})

	case *Ident:
		if e.Ref == nil {
			r.Rule(typeOf(e)).By(func(rl *reactor.Rule) {
				rl.Error(fmt.Sprintf("undeclared identifier %q", e.Name), e)
			})
			return
		}
		r.Rule(typeOf(e)).Using(typeOf(e.Ref)).By(reactor.CopyFirst)

	case *BinaryExpr:
		registerExpr(r, e.Left)
		registerExpr(r, e.Right)
		r.Rule(typeOf(e)).Using(typeOf(e.Left), typeOf(e.Right)).By(func(rl *reactor.Rule) {
			left, right := rl.Get(0), rl.Get(1)
			if left != right {
				rl.Error(fmt.Sprintf("operand type mismatch: %v vs %v", left, right), e)
				return
			}
			rl.Set(0, left)
		})
	}
}
