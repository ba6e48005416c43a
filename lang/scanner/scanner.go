// Package scanner tokenizes restricted-language source text into the
// token stream lang/parser consumes.
package scanner

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/mna/embedvm/lang/token"
)

// Token pairs a lexical token kind with its source position and literal
// payload. Lit holds the identifier spelling or the literal text of a
// number; Int holds the decoded value when Kind is token.INT.
type Token struct {
	Kind token.Token
	Pos  token.Pos
	Lit  string
	Int  int64
}

// Scanner tokenizes a single source buffer. It has no knowledge of files
// or multi-file sets: the restricted language compiles one function body
// or one program at a time, so a single in-memory buffer is enough.
type Scanner struct {
	src []byte
	err func(pos token.Pos, msg string)

	cur  rune // current character, -1 at end of input
	off  int  // byte offset of cur
	roff int  // byte offset following cur
	line int
	col  int
}

// New creates a Scanner over src. errHandler, if non-nil, is called for
// every lexical error; scanning continues afterward. An illegal character
// is returned as token.ILLEGAL; a malformed integer literal is still
// returned as token.INT.
func New(src []byte, errHandler func(token.Pos, string)) *Scanner {
	s := &Scanner{src: src, err: errHandler, line: 1, col: 0}
	s.advance()
	return s
}

func (s *Scanner) error(pos token.Pos, format string, args ...any) {
	if s.err != nil {
		s.err(pos, fmt.Sprintf(format, args...))
	}
}

func (s *Scanner) pos() token.Pos { return token.MakePos(s.line, s.col) }

func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) advance() {
	if s.cur == '\n' {
		s.line++
		s.col = 0
	}
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		return
	}
	s.off = s.roff
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.pos(), "illegal UTF-8 encoding")
		}
	}
	s.roff += w
	s.cur = r
	s.col++
}

func (s *Scanner) advanceIf(b byte) bool {
	if s.cur == rune(b) {
		s.advance()
		return true
	}
	return false
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		for s.cur == ' ' || s.cur == '\t' || s.cur == '\n' || s.cur == '\r' {
			s.advance()
		}
		if s.cur == '/' && s.peek() == '/' {
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
			continue
		}
		break
	}
}

// Scan returns the next token in the source, ending with a token.EOF that
// is returned on every subsequent call once reached.
func (s *Scanner) Scan() Token {
	s.skipWhitespaceAndComments()
	pos := s.pos()

	switch {
	case isLetter(s.cur):
		lit := s.ident()
		return Token{Kind: token.Lookup(lit), Pos: pos, Lit: lit}
	case isDigit(s.cur):
		lit := s.number()
		v, err := parseInt(lit)
		if err != nil {
			s.error(pos, "invalid integer literal %q: %v", lit, err)
		}
		return Token{Kind: token.INT, Pos: pos, Lit: lit, Int: v}
	}

	cur := s.cur
	s.advance()
	switch cur {
	case -1:
		return Token{Kind: token.EOF, Pos: pos}
	case '+':
		return Token{Kind: token.PLUS, Pos: pos, Lit: "+"}
	case '-':
		return Token{Kind: token.MINUS, Pos: pos, Lit: "-"}
	case '*':
		return Token{Kind: token.STAR, Pos: pos, Lit: "*"}
	case '/':
		return Token{Kind: token.SLASH, Pos: pos, Lit: "/"}
	case '%':
		return Token{Kind: token.PERCENT, Pos: pos, Lit: "%"}
	case '&':
		return Token{Kind: token.AMPERSAND, Pos: pos, Lit: "&"}
	case '|':
		return Token{Kind: token.PIPE, Pos: pos, Lit: "|"}
	case '^':
		return Token{Kind: token.CIRCUMFLEX, Pos: pos, Lit: "^"}
	case '~':
		return Token{Kind: token.TILDE, Pos: pos, Lit: "~"}
	case '.':
		return Token{Kind: token.DOT, Pos: pos, Lit: "."}
	case ',':
		return Token{Kind: token.COMMA, Pos: pos, Lit: ","}
	case ';':
		return Token{Kind: token.SEMI, Pos: pos, Lit: ";"}
	case ':':
		return Token{Kind: token.COLON, Pos: pos, Lit: ":"}
	case '(':
		return Token{Kind: token.LPAREN, Pos: pos, Lit: "("}
	case ')':
		return Token{Kind: token.RPAREN, Pos: pos, Lit: ")"}
	case '[':
		return Token{Kind: token.LBRACK, Pos: pos, Lit: "["}
	case ']':
		return Token{Kind: token.RBRACK, Pos: pos, Lit: "]"}
	case '=':
		if s.advanceIf('=') {
			return Token{Kind: token.EQL, Pos: pos, Lit: "=="}
		}
		return Token{Kind: token.EQ, Pos: pos, Lit: "="}
	case '<':
		if s.advanceIf('<') {
			return Token{Kind: token.LTLT, Pos: pos, Lit: "<<"}
		}
		if s.advanceIf('=') {
			return Token{Kind: token.LE, Pos: pos, Lit: "<="}
		}
		return Token{Kind: token.LT, Pos: pos, Lit: "<"}
	case '>':
		if s.advanceIf('>') {
			return Token{Kind: token.GTGT, Pos: pos, Lit: ">>"}
		}
		if s.advanceIf('=') {
			return Token{Kind: token.GE, Pos: pos, Lit: ">="}
		}
		return Token{Kind: token.GT, Pos: pos, Lit: ">"}
	case '!':
		if s.advanceIf('=') {
			return Token{Kind: token.NEQ, Pos: pos, Lit: "!="}
		}
		s.error(pos, "illegal character '!'")
		return Token{Kind: token.ILLEGAL, Pos: pos, Lit: "!"}
	default:
		s.error(pos, "illegal character %#U", cur)
		return Token{Kind: token.ILLEGAL, Pos: pos, Lit: string(cur)}
	}
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func (s *Scanner) number() string {
	start := s.off
	if s.cur == '0' && (s.peek() == 'x' || s.peek() == 'X') {
		s.advance()
		s.advance()
		for isHexDigit(s.cur) {
			s.advance()
		}
		return string(s.src[start:s.off])
	}
	for isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func parseInt(lit string) (int64, error) {
	if len(lit) > 2 && lit[0] == '0' && (lit[1] == 'x' || lit[1] == 'X') {
		return strconv.ParseInt(lit[2:], 16, 64)
	}
	return strconv.ParseInt(lit, 10, 64)
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_' ||
		r >= utf8.RuneSelf && unicode.IsLetter(r)
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F'
}
