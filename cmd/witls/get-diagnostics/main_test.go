package get_diagnostics

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/witls/gen/mockery"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.TestWriter{T: t}).With().Str("test", t.Name()).Logger().WithContext(context.Background())
}

// layout creates root/a/world.wit, root/a/types.wit and root/b/nested/c.wit.
func layout(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{"a/world.wit", "a/types.wit", "b/nested/c.wit", "b/README.md"} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("package a:b;\n"), 0o644))
	}
	return root
}

func TestPackageDirs(t *testing.T) {
	root := layout(t)

	t.Run("files_collapse_to_their_directory", func(t *testing.T) {
		dirs, err := PackageDirs([]string{filepath.Join(root, "a/world.wit"), filepath.Join(root, "a/types.wit")})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "a")}, dirs)
	})

	t.Run("doublestar_glob", func(t *testing.T) {
		dirs, err := PackageDirs([]string{filepath.Join(root, "**/*.wit")})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "a"), filepath.Join(root, "b/nested")}, dirs)
	})

	t.Run("directory", func(t *testing.T) {
		dirs, err := PackageDirs([]string{filepath.Join(root, "b")})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "b")}, dirs)
	})

	t.Run("nothing_matches", func(t *testing.T) {
		_, err := PackageDirs([]string{filepath.Join(root, "**/*.witx")})
		require.Error(t, err)
	})

	t.Run("invalid_pattern", func(t *testing.T) {
		_, err := PackageDirs([]string{filepath.Join(root, "[")})
		require.Error(t, err)
	})
}

const undefined = "error: name `x` is not defined\n" +
	"  --> world.wit:1:9\n" +
	"   |\n" +
	" 1 | package a:b;\n" +
	"   |         ^\n"

func TestRun(t *testing.T) {
	color.NoColor = true

	root := layout(t)
	dirA := filepath.Join(root, "a")
	dirC := filepath.Join(root, "b/nested")

	t.Run("text", func(t *testing.T) {
		runner := mockery.NewMockRunner_diagnostic(t)
		runner.EXPECT().Run(mock.Anything, dirA).Return([]byte(undefined), nil).Once()
		runner.EXPECT().Run(mock.Anything, dirC).Return(nil, nil).Once()

		var out strings.Builder
		me := &Handler{format: "text", out: &out, runner: runner}

		err := me.Run(testContext(t), []string{filepath.Join(root, "**/*.wit")})
		require.ErrorIs(t, err, ErrProblems)
		assert.Equal(t, filepath.Join(dirA, "world.wit")+":1:9: error: name `x` is not defined\n", out.String())
	})

	t.Run("json", func(t *testing.T) {
		runner := mockery.NewMockRunner_diagnostic(t)
		runner.EXPECT().Run(mock.Anything, dirA).Return([]byte(strings.Replace(undefined, "error", "warning", 1)), nil).Once()

		var out strings.Builder
		me := &Handler{format: "json", out: &out, runner: runner}

		require.NoError(t, me.Run(testContext(t), []string{dirA}))

		var got map[string][]jsonDiagnostic
		require.NoError(t, json.Unmarshal([]byte(out.String()), &got))
		require.Len(t, got, 1)
		for uri, diags := range got {
			assert.True(t, strings.HasSuffix(uri, "/a/world.wit"), uri)
			require.Len(t, diags, 1)
			assert.Equal(t, "warning", diags[0].Severity)
			assert.Equal(t, jsonPosition{Line: 0, Character: 8}, diags[0].Start)
			assert.Equal(t, jsonPosition{Line: 0, Character: 9}, diags[0].End)
		}
	})

	t.Run("non_utf8_is_skipped", func(t *testing.T) {
		runner := mockery.NewMockRunner_diagnostic(t)
		runner.EXPECT().Run(mock.Anything, dirA).Return([]byte{0xff, 0xfe}, nil).Once()

		var out strings.Builder
		me := &Handler{format: "text", out: &out, runner: runner}

		require.NoError(t, me.Run(testContext(t), []string{dirA}))
		assert.Empty(t, out.String())
	})

	t.Run("unknown_format", func(t *testing.T) {
		me := &Handler{format: "yaml"}
		require.Error(t, me.Run(testContext(t), []string{dirA}))
	})
}
