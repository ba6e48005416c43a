package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/mna/embedvm/internal/filetest"
	"github.com/mna/embedvm/internal/maincmd"
	"github.com/mna/embedvm/lang/codec"
)

// TestSubcommandsOverFixtures runs every subcommand over each .evm fixture
// in testdata, checking that each phase of the toolchain accepts the same
// source a later phase does, and that compile's binary output decodes
// back to a well-formed instruction stream.
func TestSubcommandsOverFixtures(t *testing.T) {
	files := filetest.SourceFiles(t, "testdata", ".evm")
	require.NotEmpty(t, files)

	for _, fi := range files {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			path := filepath.Join("testdata", fi.Name())
			ctx := context.Background()

			var tokOut, tokErr bytes.Buffer
			c := &maincmd.Cmd{}
			require.NoError(t, c.Tokenize(ctx, mainer.Stdio{Stdout: &tokOut, Stderr: &tokErr}, []string{path}))
			require.NotEmpty(t, tokOut.String())

			var parseOut, parseErr bytes.Buffer
			require.NoError(t, c.Parse(ctx, mainer.Stdio{Stdout: &parseOut, Stderr: &parseErr}, []string{path}))
			require.Contains(t, parseOut.String(), "chunk")

			var resolveOut, resolveErr bytes.Buffer
			require.NoError(t, c.Resolve(ctx, mainer.Stdio{Stdout: &resolveOut, Stderr: &resolveErr}, []string{path}))
			require.Contains(t, resolveOut.String(), "function")

			var compileOut, compileErr bytes.Buffer
			require.NoError(t, c.Compile(ctx, mainer.Stdio{Stdout: &compileOut, Stderr: &compileErr}, []string{path}))
			bin := compileOut.Bytes()
			require.NotEmpty(t, bin)

			off := 0
			for off < len(bin) {
				_, n, err := codec.Decode(bin, off)
				require.NoError(t, err, "decoding compiled output at offset %d", off)
				require.Greater(t, n, 0)
				off += n
			}

			binPath := filepath.Join(t.TempDir(), fi.Name()+".bin")
			require.NoError(t, os.WriteFile(binPath, bin, 0o600))

			var disasmOut, disasmErr bytes.Buffer
			require.NoError(t, c.Disasm(ctx, mainer.Stdio{Stdout: &disasmOut, Stderr: &disasmErr}, []string{binPath}))
			require.Contains(t, disasmOut.String(), "#")
		})
	}
}
