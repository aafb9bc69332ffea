package groupfile

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Float", Pattern: `[0-9]+\.[0-9]*([eE][-+]?[0-9]+)?|[0-9]+[eE][-+]?[0-9]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[-+*/()\[\],]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

// Expression grammar, lowest precedence first:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = [ "-" ] primary
//	primary = number | call | access | ident | "(" expr ")"
type exprNode struct {
	Left *termNode  `@@`
	Ops  []*addNode `{ @@ }`
}

type addNode struct {
	Op    string    `@("+" | "-")`
	Right *termNode `@@`
}

type termNode struct {
	Left *unaryNode `@@`
	Ops  []*mulNode `{ @@ }`
}

type mulNode struct {
	Op    string     `@("*" | "/")`
	Right *unaryNode `@@`
}

type unaryNode struct {
	Neg   bool         `[ @"-" ]`
	Value *primaryNode `@@`
}

type primaryNode struct {
	Number *float64    `  @(Float | Int)`
	Call   *callNode   `| @@`
	Access *accessNode `| @@`
	Ident  *string     `| @Ident`
	Parens *exprNode   `| "(" @@ ")"`
}

type callNode struct {
	Name string      `@Ident "("`
	Args []*exprNode `[ @@ { "," @@ } ] ")"`
}

type accessNode struct {
	Tensor  string      `@Ident "["`
	Indices []*exprNode `@@ { "," @@ } "]"`
}

var exprParser = participle.MustBuild[exprNode](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(3),
)

func parseExpr(subject, src string) (*exprNode, error) {
	return exprParser.ParseString(subject, src)
}
