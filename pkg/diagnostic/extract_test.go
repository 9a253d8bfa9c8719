package diagnostic_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/witls/gen/mockery"
	"github.com/walteh/witls/pkg/diagnostic"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.TestWriter{T: t}).With().Str("test", t.Name()).Logger().WithContext(context.Background())
}

const undefinedType = "error: undefined type `type4`\n" +
	"  --> world.wit:11:45\n" +
	"   |\n" +
	"11 |   export foo: func() -> tuple<type1, type2, type3, type4>;\n" +
	"   |                                                     ^----\n"

func TestExtractRunsOnParentDirectory(t *testing.T) {
	ctx := testContext(t)

	runner := mockery.NewMockRunner_diagnostic(t)
	runner.EXPECT().Run(mock.Anything, "/pkg").Return([]byte(undefinedType), nil).Once()

	report, err := diagnostic.NewExtractor(runner).Extract(ctx, "/pkg/world.wit")
	require.NoError(t, err)

	diags := report["file:///pkg/world.wit"]
	require.Len(t, diags, 1)
	assert.Equal(t, rng(10, 44, 49), diags[0].Range)
	assert.Equal(t, "undefined type `type4`", diags[0].Message)
	assert.Equal(t, diagnostic.SeverityError, diags[0].Severity)
	assert.Equal(t, "wasm-tools", diags[0].Source)
}

func TestExtractCleanPackage(t *testing.T) {
	ctx := testContext(t)

	runner := mockery.NewMockRunner_diagnostic(t)
	runner.EXPECT().Run(mock.Anything, "/pkg").Return(nil, nil).Once()

	report, err := diagnostic.NewExtractor(runner).ExtractDir(ctx, "/pkg")
	require.NoError(t, err)
	assert.Empty(t, report)
	assert.NotNil(t, report)
}

func TestExtractNonUTF8(t *testing.T) {
	ctx := testContext(t)

	runner := mockery.NewMockRunner_diagnostic(t)
	runner.EXPECT().Run(mock.Anything, "/pkg").Return([]byte("error: \xff\xfe\n"), nil).Once()

	report, err := diagnostic.NewExtractor(runner).ExtractDir(ctx, "/pkg")
	require.ErrorIs(t, err, diagnostic.ErrNonUTF8Output)
	assert.Empty(t, report)
}

func TestExtractRunnerFailure(t *testing.T) {
	ctx := testContext(t)

	runner := mockery.NewMockRunner_diagnostic(t)
	runner.EXPECT().Run(mock.Anything, "/pkg").Return(nil, diagnostic.ErrSpawn).Once()

	report, err := diagnostic.NewExtractor(runner).ExtractDir(ctx, "/pkg")
	require.ErrorIs(t, err, diagnostic.ErrSpawn)
	assert.Empty(t, report)
}

func TestCommandRunner(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()

	t.Run("captures_stderr_on_failure", func(t *testing.T) {
		runner := diagnostic.NewCommandRunner("sh", "-c", `echo "error: in $1" >&2; exit 3`, "sh")
		out, err := runner.Run(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, "error: in "+dir+"\n", string(out))
	})

	t.Run("clean_exit", func(t *testing.T) {
		runner := diagnostic.NewCommandRunner("sh", "-c", `echo ignored`)
		out, err := runner.Run(ctx, dir)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("missing_command", func(t *testing.T) {
		runner := diagnostic.NewCommandRunner(filepath.Join(dir, "does-not-exist"))
		_, err := runner.Run(ctx, dir)
		require.ErrorIs(t, err, diagnostic.ErrSpawn)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		runner := diagnostic.NewCommandRunner("sh", "-c", "sleep 5")
		_, err := runner.Run(cctx, dir)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("source_name", func(t *testing.T) {
		runner := diagnostic.NewCommandRunner("/usr/local/bin/wasm-tools", "component", "wit")
		assert.Equal(t, "wasm-tools", runner.Name())
	})
}

func TestExtractorUsesCommandName(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()

	script := `printf 'error: nope\n --> a.wit:1:1\n  |\n1 | abc\n  | ^\n' >&2; exit 1`
	runner := diagnostic.NewCommandRunner("sh", "-c", script, "sh")

	report, err := diagnostic.NewExtractor(runner).ExtractDir(ctx, dir)
	require.NoError(t, err)

	diags := report[diagnostic.PathToURI(filepath.Join(dir, "a.wit"))]
	require.Len(t, diags, 1)
	assert.Equal(t, "sh", diags[0].Source)
}
