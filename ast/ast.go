// Package ast defines the typed syntax tree the parser builds and the
// code generator walks.
//
// Grounded on the AST-bearing revision of the original implementation
// (Ast.h's ExprBinary/ExprUnary/ExprGrouping/ExprIdentifier/
// ExprIntLiteral and StmtExpression/StmtVariableDeclaration), chosen
// over the fused parser/codegen revision because a materialized typed
// tree is required here. The original's tagged-union-plus-base-struct
// idiom becomes a sealed interface with one concrete struct per
// variant; most carry a token.Token for position info.
package ast

import (
	"github.com/skx/cc/token"
	"github.com/skx/cc/types"
)

// Expr is any expression node.
type Expr interface {
	exprNode()
	// Type returns the expression's resolved C type, set by the parser
	// during type resolution.
	Type() types.DataType
}

// Stmt is any statement node.
type Stmt interface {
	stmtNode()
}

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	Op          token.Token
	Left, Right Expr
	DataType    types.DataType
}

func (*BinaryExpr) exprNode()                 {}
func (b *BinaryExpr) Type() types.DataType { return b.DataType }

// UnaryExpr is a prefix operator applied to Operand: `-x`, `!x`, `~x`,
// `++x`, `--x`.
type UnaryExpr struct {
	Op       token.Token
	Operand  Expr
	DataType types.DataType
}

func (*UnaryExpr) exprNode()                {}
func (u *UnaryExpr) Type() types.DataType { return u.DataType }

// PostfixExpr is a postfix `x++`/`x--`.
type PostfixExpr struct {
	Op       token.Token
	Operand  Expr
	DataType types.DataType
}

func (*PostfixExpr) exprNode()                {}
func (p *PostfixExpr) Type() types.DataType { return p.DataType }

// GroupingExpr is a parenthesised expression, kept as its own node. It
// carries no token, so it has no source position of its own.
type GroupingExpr struct {
	Inner Expr
}

func (*GroupingExpr) exprNode()                {}
func (g *GroupingExpr) Type() types.DataType { return g.Inner.Type() }

// NumberLit is an integer or floating constant.
type NumberLit struct {
	Token    token.Token
	DataType types.DataType
}

func (*NumberLit) exprNode()                {}
func (n *NumberLit) Type() types.DataType { return n.DataType }

// CharLit is a character constant; its C type is always int.
type CharLit struct {
	Token token.Token
}

func (*CharLit) exprNode()                {}
func (*CharLit) Type() types.DataType { return types.IntType }

// StringLit is a string literal, emitted into .data as a byte array.
type StringLit struct {
	Token token.Token
}

func (*StringLit) exprNode() {}
func (*StringLit) Type() types.DataType {
	return types.DataType{Kind: types.Char}
}

// Identifier references a declared variable.
type Identifier struct {
	Token    token.Token
	DataType types.DataType
}

func (*Identifier) exprNode()                {}
func (i *Identifier) Type() types.DataType { return i.DataType }

// AssignExpr is `lvalue op= rvalue`; Op is ASSIGN for plain `=` or one
// of the compound-assignment kinds.
type AssignExpr struct {
	Op             token.Token
	Lvalue, Rvalue Expr
	DataType       types.DataType
}

func (*AssignExpr) exprNode()                {}
func (a *AssignExpr) Type() types.DataType { return a.DataType }

// CastExpr is an explicit C-style cast `(type) operand`: Operand is
// converted to TargetType via the same implicit-conversion machinery
// the code generator already applies to assignment and arithmetic.
type CastExpr struct {
	Token      token.Token
	TargetType types.DataType
	Operand    Expr
}

func (*CastExpr) exprNode()                {}
func (c *CastExpr) Type() types.DataType { return c.TargetType }

// SizeofExpr is `sizeof(type)`; the operand is never evaluated, only
// its type matters.
type SizeofExpr struct {
	Token      token.Token
	OperandType types.DataType
}

func (*SizeofExpr) exprNode()                {}
func (*SizeofExpr) Type() types.DataType { return types.UIntType }

// ExprStmt is an expression evaluated for its side effect.
type ExprStmt struct {
	X Expr
}

func (*ExprStmt) stmtNode() {}

// VarDecl declares a local variable, with an optional initializer.
type VarDecl struct {
	Name        token.Token
	DataType    types.DataType
	Initializer Expr // nil if none
}

func (*VarDecl) stmtNode() {}

// ReturnStmt returns from the enclosing function; Value is nil for a
// bare `return;`.
type ReturnStmt struct {
	Token token.Token
	Value Expr
}

func (*ReturnStmt) stmtNode() {}

// BlockStmt is a brace-delimited sequence of statements introducing a
// new lexical scope.
type BlockStmt struct {
	Stmts []Stmt
}

func (*BlockStmt) stmtNode() {}

// IfStmt is `if (Cond) Then [else Else]`.
type IfStmt struct {
	Cond       Expr
	Then, Else Stmt // Else is nil if absent
}

func (*IfStmt) stmtNode() {}

// WhileStmt is `while (Cond) Body`.
type WhileStmt struct {
	Cond Expr
	Body Stmt
}

func (*WhileStmt) stmtNode() {}

// DoWhileStmt is `do Body while (Cond);`.
type DoWhileStmt struct {
	Body Stmt
	Cond Expr
}

func (*DoWhileStmt) stmtNode() {}

// BreakStmt is `break;`.
type BreakStmt struct {
	Token token.Token
}

func (*BreakStmt) stmtNode() {}

// ContinueStmt is `continue;`.
type ContinueStmt struct {
	Token token.Token
}

func (*ContinueStmt) stmtNode() {}

// PutcharStmt is the built-in `putchar(e);` call.
type PutcharStmt struct {
	Token token.Token
	X     Expr
}

func (*PutcharStmt) stmtNode() {}
