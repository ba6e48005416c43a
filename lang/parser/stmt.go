package parser

import (
	"github.com/mna/embedvm/lang/ast"
	"github.com/mna/embedvm/lang/token"
)

// parseBlock parses statements until the current token is one of stopAt
// or EOF. The stop token itself is left unconsumed for the caller.
func (p *parser) parseBlock(stopAt ...token.Token) *ast.Block {
	b := &ast.Block{Start: p.tok.Pos}
	for !p.at(stopAt...) && p.tok.Kind != token.EOF {
		b.Stmts = append(b.Stmts, p.parseStmtRecovering())
	}
	b.End = p.tok.Pos
	return b
}

// parseStmtRecovering parses one statement, recovering from a parse error
// by skipping to the next likely statement boundary so the rest of the
// block is still reported instead of aborting the whole parse.
func (p *parser) parseStmtRecovering() (s ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			for !p.at(token.IF, token.WHILE, token.RETURN, token.BREAK,
				token.CONTINUE, token.IDENT, token.END, token.ELSE) && p.tok.Kind != token.EOF {
				p.advance()
			}
			s = &ast.ExprStmt{X: &ast.Ident{NamePos: p.tok.Pos, Name: "<error>"}}
		}
	}()
	return p.parseStmt()
}

func (p *parser) parseStmt() ast.Stmt {
	switch p.tok.Kind {
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.IDENT:
		if p.tok.Lit == "for" {
			return p.parseForRangeStmt()
		}
		return p.parseAssignOrExprStmt()
	case token.BREAK:
		pos := p.expect(token.BREAK).Pos
		return &ast.BreakStmt{Pos: pos}
	case token.CONTINUE:
		pos := p.expect(token.CONTINUE).Pos
		return &ast.ContinueStmt{Pos: pos}
	case token.RETURN:
		return p.parseReturnStmt()
	default:
		p.error(p.tok.Pos, "expected statement, found %s", describe(p.tok))
		panic(errPanicMode)
	}
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	kw := p.expect(token.IF).Pos
	cond := p.parseExpr()
	body := p.parseBlock(token.ELSE, token.END)

	n := &ast.IfStmt{Keyword: kw, Cond: cond, Body: body}
	if p.at(token.ELSE) {
		p.advance()
		if p.at(token.IF) {
			n.Else = p.parseIfStmt()
			_, n.End = n.Else.(*ast.IfStmt).Span()
			return n
		}
		n.Else = p.parseBlock(token.END)
	}
	n.End = p.expect(token.END).Pos
	return n
}

func (p *parser) parseWhileStmt() *ast.WhileStmt {
	kw := p.expect(token.WHILE).Pos
	cond := p.parseExpr()
	body := p.parseBlock(token.END)
	end := p.expect(token.END).Pos
	return &ast.WhileStmt{Keyword: kw, Cond: cond, Body: body, End: end}
}

// parseForRangeStmt parses a for-in-range loop. "for" is recognized as a
// plain identifier with a special spelling, while "in" and "range" are
// keywords of the token set (token.IN, token.RANGE).
func (p *parser) parseForRangeStmt() *ast.ForRangeStmt {
	kw := p.expectIdent("for")
	name := p.parseIdent()
	p.expect(token.IN)
	p.expect(token.RANGE)
	p.expect(token.LPAREN)

	args := []ast.Expr{p.parseExpr()}
	for p.at(token.COMMA) {
		p.advance()
		args = append(args, p.parseExpr())
	}
	p.expect(token.RPAREN)

	n := &ast.ForRangeStmt{Keyword: kw, Name: name}
	switch len(args) {
	case 1:
		n.Stop = args[0]
	case 2:
		n.Start, n.Stop = args[0], args[1]
	case 3:
		n.Start, n.Stop, n.Step = args[0], args[1], args[2]
	default:
		p.error(kw, "range() takes 1 to 3 arguments, got %d", len(args))
	}

	n.Body = p.parseBlock(token.END)
	n.End = p.expect(token.END).Pos
	return n
}

// expectIdent consumes the current token if it is an identifier spelled
// exactly as want.
func (p *parser) expectIdent(want string) token.Pos {
	if p.tok.Kind == token.IDENT && p.tok.Lit == want {
		pos := p.tok.Pos
		p.advance()
		return pos
	}
	p.error(p.tok.Pos, "expected %q, found %s", want, describe(p.tok))
	panic(errPanicMode)
}

func (p *parser) parseReturnStmt() *ast.ReturnStmt {
	pos := p.expect(token.RETURN).Pos
	n := &ast.ReturnStmt{Pos: pos}
	if canStartExpr(p.tok.Kind) {
		n.X = p.parseExpr()
	}
	return n
}

func canStartExpr(tok token.Token) bool {
	switch tok {
	case token.IDENT, token.INT, token.LPAREN, token.MINUS, token.TILDE, token.NOT:
		return true
	default:
		return false
	}
}

func (p *parser) parseAssignOrExprStmt() ast.Stmt {
	first := p.parseExpr()

	if !p.at(token.EQ, token.COMMA) {
		call, ok := first.(*ast.CallExpr)
		if !ok {
			p.error(p.tok.Pos, "expected assignment or function call statement")
			panic(errPanicMode)
		}
		return &ast.ExprStmt{X: call}
	}

	left := []ast.Expr{first}
	for p.at(token.COMMA) {
		p.advance()
		left = append(left, p.parseExpr())
	}
	assign := p.expect(token.EQ).Pos

	right := []ast.Expr{p.parseExpr()}
	for p.at(token.COMMA) {
		p.advance()
		right = append(right, p.parseExpr())
	}

	for _, l := range left {
		switch l.(type) {
		case *ast.Ident, *ast.IndexExpr, *ast.SelectorExpr:
		default:
			start, _ := l.Span()
			p.error(start, "invalid assignment target")
		}
	}

	return &ast.AssignStmt{Left: left, Assign: assign, Right: right}
}
