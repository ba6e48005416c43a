package parser

import (
	"github.com/mna/embedvm/lang/ast"
	"github.com/mna/embedvm/lang/token"
)

// binopPriority gives the left/right binding power of every binary token,
// for precedence-climbing. Tokens not present here are not binary
// operators.
var binopPriority = map[token.Token]struct{ left, right int }{
	token.OR: {1, 1},
	token.AND: {2, 2},
	token.LT: {3, 3}, token.LE: {3, 3}, token.GT: {3, 3}, token.GE: {3, 3},
	token.EQL: {3, 3}, token.NEQ: {3, 3},
	token.PIPE:      {4, 4},
	token.CIRCUMFLEX: {5, 5},
	token.AMPERSAND: {6, 6},
	token.LTLT:      {7, 7}, token.GTGT: {7, 7},
	token.PLUS: {8, 8}, token.MINUS: {8, 8},
	token.STAR: {9, 9}, token.SLASH: {9, 9}, token.PERCENT: {9, 9},
}

const unopPriority = 10

func isUnop(tok token.Token) bool {
	return tok == token.MINUS || tok == token.TILDE || tok == token.NOT
}

func isCompareOp(tok token.Token) bool {
	switch tok {
	case token.LT, token.LE, token.GT, token.GE, token.EQL, token.NEQ:
		return true
	default:
		return false
	}
}

func (p *parser) parseExpr() ast.Expr {
	return p.parseSubExpr(0)
}

// parseSubExpr implements precedence climbing: it parses a chain of
// binary operators whose left binding power exceeds priority.
func (p *parser) parseSubExpr(priority int) ast.Expr {
	var left ast.Expr

	if isUnop(p.tok.Kind) {
		op := p.tok
		p.advance()
		if op.Kind == token.MINUS && p.at(token.INT) {
			// a negated integer literal becomes one negative literal
			lit := p.expect(token.INT)
			left = &ast.IntLit{ValuePos: op.Pos, Raw: "-" + lit.Lit, Value: -lit.Int}
		} else {
			x := p.parseSubExpr(unopPriority)
			left = &ast.UnaryExpr{OpPos: op.Pos, Op: op.Kind, X: x}
		}
	} else {
		left = p.parseSuffixedExpr()
	}

	for {
		prio, ok := binopPriority[p.tok.Kind]
		if !ok || prio.left <= priority {
			break
		}
		if isCompareOp(p.tok.Kind) {
			left = p.parseCompareChain(left, prio.right)
			continue
		}
		op := p.tok
		p.advance()
		right := p.parseSubExpr(prio.right)
		left = &ast.BinaryExpr{X: left, OpPos: op.Pos, Op: op.Kind, Y: right}
	}
	return left
}

// parseCompareChain parses a<b<c<... as a single non-associative chain:
// every comparison operator at the same binding power extends the chain
// instead of nesting, so "a<b<c" means "a<b and b<c" rather than
// "(a<b)<c". operandPriority is the binding power operands are parsed
// at, which stops each operand before the next comparison operator.
func (p *parser) parseCompareChain(first ast.Expr, operandPriority int) ast.Expr {
	n := &ast.CompareExpr{Operands: []ast.Expr{first}}
	for isCompareOp(p.tok.Kind) {
		op := p.tok
		p.advance()
		right := p.parseSubExpr(operandPriority)
		n.Ops = append(n.Ops, op.Kind)
		n.OpPos = append(n.OpPos, op.Pos)
		n.Operands = append(n.Operands, right)
	}
	return n
}

// parseSuffixedExpr parses a primary expression followed by any number of
// ".name", "[expr]" or "(args)" suffixes.
func (p *parser) parseSuffixedExpr() ast.Expr {
	x := p.parsePrimaryExpr()
loop:
	for {
		switch p.tok.Kind {
		case token.DOT:
			dot := p.expect(token.DOT).Pos
			sel := p.parseIdent()
			x = &ast.SelectorExpr{X: x, Dot: dot, Sel: sel}
		case token.LBRACK:
			lbrack := p.expect(token.LBRACK).Pos
			idx := p.parseExpr()
			rbrack := p.expect(token.RBRACK).Pos
			x = &ast.IndexExpr{X: x, Lbrack: lbrack, Index: idx, Rbrack: rbrack}
		case token.LPAREN:
			ident, ok := x.(*ast.Ident)
			if !ok {
				break loop
			}
			x = p.parseCallExpr(ident)
		default:
			break loop
		}
	}
	return x
}

func (p *parser) parsePrimaryExpr() ast.Expr {
	switch p.tok.Kind {
	case token.IDENT:
		return p.parseIdent()
	case token.INT:
		tok := p.expect(token.INT)
		return &ast.IntLit{ValuePos: tok.Pos, Raw: tok.Lit, Value: tok.Int}
	case token.LPAREN:
		lparen := p.expect(token.LPAREN).Pos
		x := p.parseExpr()
		rparen := p.expect(token.RPAREN).Pos
		return &ast.ParenExpr{Lparen: lparen, X: x, Rparen: rparen}
	default:
		p.error(p.tok.Pos, "expected expression, found %s", describe(p.tok))
		panic(errPanicMode)
	}
}

func (p *parser) parseCallExpr(fn *ast.Ident) *ast.CallExpr {
	lparen := p.expect(token.LPAREN).Pos
	var args []ast.Expr
	if !p.at(token.RPAREN) {
		args = append(args, p.parseExpr())
		for p.at(token.COMMA) {
			p.advance()
			args = append(args, p.parseExpr())
		}
	}
	rparen := p.expect(token.RPAREN).Pos
	return &ast.CallExpr{Fun: fn, Lparen: lparen, Args: args, Rparen: rparen}
}
