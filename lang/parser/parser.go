// Package parser implements a hand-written recursive-descent parser that
// turns scanned tokens into an *ast.Chunk for lang/compiler to walk.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mna/embedvm/lang/ast"
	"github.com/mna/embedvm/lang/scanner"
	"github.com/mna/embedvm/lang/token"
)

// Error reports one parse failure at a source position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	line, col := e.Pos.LineCol()
	return fmt.Sprintf("%d:%d: %s", line, col, e.Msg)
}

// ErrorList collects every Error recorded while parsing a chunk.
type ErrorList []*Error

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}
	var sb strings.Builder
	for i, e := range el {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Unwrap lets errors.Is/As reach the individual *Error values.
func (el ErrorList) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}

// ParseChunk parses a single source buffer into an *ast.Chunk. The
// returned error, if non-nil, is an ErrorList.
func ParseChunk(name string, src []byte) (*ast.Chunk, error) {
	var p parser
	p.init(name, src)
	ch := p.parseChunk()
	if len(p.errors) > 0 {
		return ch, p.errors
	}
	return ch, nil
}

type parser struct {
	name    string
	scanner *scanner.Scanner
	errors  ErrorList

	tok scanner.Token
}

func (p *parser) init(name string, src []byte) {
	p.name = name
	p.scanner = scanner.New(src, func(pos token.Pos, msg string) {
		p.errors = append(p.errors, &Error{Pos: pos, Msg: msg})
	})
	p.advance()
}

func (p *parser) advance() { p.tok = p.scanner.Scan() }

var errPanicMode = errors.New("panic mode")

func (p *parser) error(pos token.Pos, format string, args ...any) {
	p.errors = append(p.errors, &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// expect consumes the current token if it matches one of want, otherwise
// records an error and unwinds to the nearest recover point via panic.
func (p *parser) expect(want ...token.Token) scanner.Token {
	cur := p.tok
	for _, w := range want {
		if cur.Kind == w {
			p.advance()
			return cur
		}
	}

	names := make([]string, len(want))
	for i, w := range want {
		names[i] = w.GoString()
	}
	p.error(cur.Pos, "expected %s, found %s", strings.Join(names, " or "), describe(cur))
	panic(errPanicMode)
}

func (p *parser) at(kinds ...token.Token) bool {
	for _, k := range kinds {
		if p.tok.Kind == k {
			return true
		}
	}
	return false
}

func describe(tok scanner.Token) string {
	if tok.Kind == token.IDENT || tok.Kind == token.INT {
		return fmt.Sprintf("%q", tok.Lit)
	}
	return tok.Kind.GoString()
}

func (p *parser) parseChunk() *ast.Chunk {
	ch := &ast.Chunk{Name: p.name}
	for p.tok.Kind != token.EOF {
		if p.tok.Kind == token.GLOBAL {
			ch.Globals = append(ch.Globals, p.parseGlobalDecl())
			continue
		}
		if p.tok.Kind == token.EXTERN {
			ch.Externs = append(ch.Externs, p.parseExternDecl())
			continue
		}
		fn := p.parseFuncDeclRecovering()
		if fn != nil {
			ch.Funcs = append(ch.Funcs, fn)
		}
	}
	ch.EOF = p.tok.Pos
	return ch
}

func (p *parser) parseGlobalDecl() *ast.GlobalDecl {
	kw := p.expect(token.GLOBAL).Pos
	name := p.parseIdent()

	n := &ast.GlobalDecl{Keyword: kw, Name: name}
	if p.at(token.LBRACK) {
		p.advance()
		size := p.expect(token.INT)
		p.expect(token.RBRACK)
		n.Size = int(size.Int)
	}
	n.End = p.tok.Pos
	return n
}

// parseExternDecl parses "extern name(which)", binding name to a
// host-registered user function identified by the literal 4-bit id which.
func (p *parser) parseExternDecl() *ast.ExternDecl {
	kw := p.expect(token.EXTERN).Pos
	name := p.parseIdent()
	p.expect(token.LPAREN)
	which := p.expect(token.INT)
	p.expect(token.RPAREN)
	return &ast.ExternDecl{Keyword: kw, Name: name, Which: int(which.Int), End: p.tok.Pos}
}

// parseFuncDeclRecovering parses one top-level function declaration,
// recovering from a parse error by skipping tokens until the next
// "function" keyword or EOF so that a single bad declaration does not
// prevent the rest of the file from being reported.
func (p *parser) parseFuncDeclRecovering() (fn *ast.FuncDecl) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			for p.tok.Kind != token.FUNCTION && p.tok.Kind != token.EOF {
				p.advance()
			}
			fn = nil
		}
	}()
	return p.parseFuncDecl()
}

func (p *parser) parseFuncDecl() *ast.FuncDecl {
	kw := p.expect(token.FUNCTION)
	name := p.parseIdent()
	p.expect(token.LPAREN)

	var params []*ast.Param
	sawDefault := false
	for !p.at(token.RPAREN) {
		pname := p.parseIdent()
		param := &ast.Param{Name: pname}
		if p.at(token.EQ) {
			p.advance()
			lit := p.expect(token.INT)
			param.Default = &ast.IntLit{ValuePos: lit.Pos, Raw: lit.Lit, Value: lit.Int}
			sawDefault = true
		} else if sawDefault {
			p.error(pname.NamePos, "parameter %q without a default follows a parameter with one", pname.Name)
		}
		params = append(params, param)
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)

	body := p.parseBlock(token.END)
	p.expect(token.END)
	return &ast.FuncDecl{Keyword: kw.Pos, Name: name, Params: params, Body: body}
}

func (p *parser) parseIdent() *ast.Ident {
	tok := p.expect(token.IDENT)
	return &ast.Ident{NamePos: tok.Pos, Name: tok.Lit}
}
