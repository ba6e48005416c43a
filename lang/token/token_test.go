package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String(), "token %d missing a string representation", tok)
	}
}

func TestGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "identifier", IDENT.GoString())
	require.Equal(t, "if", IF.GoString())
}

func TestLookup(t *testing.T) {
	require.Equal(t, WHILE, Lookup("while"))
	require.Equal(t, RANGE, Lookup("range"))
	require.Equal(t, END, Lookup("end"))
	require.Equal(t, EXTERN, Lookup("extern"))
	require.Equal(t, IDENT, Lookup("toggling"))
	require.Equal(t, IDENT, Lookup("Range")) // keywords are case-sensitive
}
