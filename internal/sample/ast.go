// Package sample is a minimal typed toy language — variable
// declarations and arithmetic/string expressions — used to exercise
// pkg/reactor end-to-end: type inference, declared-before-use checking,
// and binary-operator type mismatches, all expressed as rules over the
// AST rather than as a hand-written recursive type checker.
package sample

// Node is any AST node the reactor can attach attributes to; identity is
// by pointer, never by value.
type Node interface {
	isNode()
}

// Program is a sequence of declarations followed by free-standing
// expressions evaluated in that declaration's scope.
type Program struct {
	Decls []*VarDecl
	Exprs []Expr
}

func (*Program) isNode() {}

// VarDecl binds Name to the type of Init.
type VarDecl struct {
	Name string
	Init Expr
}

func (*VarDecl) isNode() {}

// Expr is any expression node.
type Expr interface {
	Node
	isExpr()
}

// IntLit is an integer literal.
type IntLit struct{ Value int }

func (*IntLit) isNode() {}
func (*IntLit) isExpr() {}

// StringLit is a string literal.
type StringLit struct{ Value string }

func (*StringLit) isNode() {}
func (*StringLit) isExpr() {}

// Ident is a reference to a previously declared variable. Ref is filled
// in during scope resolution (see resolve in walker.go); it is nil if
// Name was never declared, or was only declared later.
type Ident struct {
	Name string
	Ref  *VarDecl
}

func (*Ident) isNode() {}
func (*Ident) isExpr() {}

// BinaryExpr is a two-operand operation; Op is "+" or anything else,
// treated generically (both operands must share a type).
type BinaryExpr struct {
	Op          string
	Left, Right Expr
}

func (*BinaryExpr) isNode() {}
func (*BinaryExpr) isExpr() {}
