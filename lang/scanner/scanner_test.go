package scanner_test

import (
	"testing"

	"github.com/mna/embedvm/lang/scanner"
	"github.com/mna/embedvm/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []scanner.Token {
	t.Helper()
	var errs []string
	s := scanner.New([]byte(src), func(_ token.Pos, msg string) {
		errs = append(errs, msg)
	})

	var toks []scanner.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	require.Empty(t, errs, "unexpected lexical errors: %v", errs)
	return toks
}

func kinds(toks []scanner.Token) []token.Token {
	out := make([]token.Token, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestScanKeywordsAndIdents(t *testing.T) {
	toks := scanAll(t, "function toggle while range foo")
	require.Equal(t, []token.Token{
		token.FUNCTION, token.IDENT, token.WHILE, token.RANGE, token.IDENT, token.EOF,
	}, kinds(toks))
	require.Equal(t, "toggle", toks[1].Lit)
	require.Equal(t, "foo", toks[4].Lit)
}

func TestScanIntegers(t *testing.T) {
	toks := scanAll(t, "123 0x7b 0")
	require.Equal(t, []token.Token{token.INT, token.INT, token.INT, token.EOF}, kinds(toks))
	require.EqualValues(t, 123, toks[0].Int)
	require.EqualValues(t, 0x7b, toks[1].Int)
	require.EqualValues(t, 0, toks[2].Int)
}

func TestScanOperatorsAndPunctuation(t *testing.T) {
	toks := scanAll(t, "gv.a[i] = gv.a[i] + 1; i = i + 1")
	require.Equal(t, []token.Token{
		token.IDENT, token.DOT, token.IDENT, token.LBRACK, token.IDENT, token.RBRACK,
		token.EQ,
		token.IDENT, token.DOT, token.IDENT, token.LBRACK, token.IDENT, token.RBRACK,
		token.PLUS, token.INT, token.SEMI,
		token.IDENT, token.EQ, token.IDENT, token.PLUS, token.INT,
		token.EOF,
	}, kinds(toks))
}

func TestScanMultiCharOperators(t *testing.T) {
	toks := scanAll(t, "a == b != c <= d >= e << f >> g")
	require.Equal(t, []token.Token{
		token.IDENT, token.EQL, token.IDENT, token.NEQ, token.IDENT, token.LE, token.IDENT,
		token.GE, token.IDENT, token.LTLT, token.IDENT, token.GTGT, token.IDENT, token.EOF,
	}, kinds(toks))
}

func TestScanLineComment(t *testing.T) {
	toks := scanAll(t, "i = 1 // set the loop variable\nj = 2")
	require.Equal(t, []token.Token{
		token.IDENT, token.EQ, token.INT,
		token.IDENT, token.EQ, token.INT,
		token.EOF,
	}, kinds(toks))
}

func TestScanIllegalCharacterReportsError(t *testing.T) {
	var errs []string
	s := scanner.New([]byte("a $ b"), func(_ token.Pos, msg string) {
		errs = append(errs, msg)
	})
	for {
		tok := s.Scan()
		if tok.Kind == token.EOF {
			break
		}
	}
	require.Len(t, errs, 1)
}

func TestScanPositionsTrackLineAndColumn(t *testing.T) {
	toks := scanAll(t, "a\nb")
	line, col := toks[0].Pos.LineCol()
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)

	line, col = toks[1].Pos.LineCol()
	require.Equal(t, 2, line)
	require.Equal(t, 1, col)
}
