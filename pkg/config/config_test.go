package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/witls/pkg/config"
	"go.uber.org/multierr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCmd  string
		wantArgs []string
		wantLvl  zerolog.Level
		wantPat  []string
	}{
		{
			name: "hcl",
			file: ".witls.hcl",
			content: `
validator {
  command = "/opt/wasm-tools"
  args    = ["component", "wit", "--all-features"]
}

log {
  level = "debug"
}
`,
			wantCmd:  "/opt/wasm-tools",
			wantArgs: []string{"component", "wit", "--all-features"},
			wantLvl:  zerolog.DebugLevel,
			wantPat:  []string{"**/*.wit"},
		},
		{
			name: "yaml",
			file: ".witls.yaml",
			content: `
watch:
  enabled: true
  patterns: ["*.wit", "deps/**/*.wit"]
log:
  level: warn
`,
			wantCmd:  "wasm-tools",
			wantArgs: []string{"component", "wit"},
			wantLvl:  zerolog.WarnLevel,
			wantPat:  []string{"*.wit", "deps/**/*.wit"},
		},
		{
			name: "toml",
			file: ".witls.toml",
			content: `
[validator]
command = "wit-check"
args = []
`,
			wantCmd:  "wit-check",
			wantArgs: []string{},
			wantLvl:  zerolog.InfoLevel,
			wantPat:  []string{"**/*.wit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)

			cfg, err := config.Load(path)
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())

			assert.Equal(t, tt.wantCmd, cfg.Validator.Command)
			assert.Equal(t, tt.wantArgs, cfg.Validator.Args)
			assert.Equal(t, tt.wantLvl, cfg.Level())
			assert.Equal(t, tt.wantPat, cfg.Watch.Patterns)
		})
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		_, err := config.Load(writeFile(t, dir, "bad.yaml", "validator:\n  commnd: x\n"))
		require.Error(t, err)
	})

	t.Run("toml", func(t *testing.T) {
		_, err := config.Load(writeFile(t, dir, "bad.toml", "[validator]\ncommnd = \"x\"\n"))
		require.Error(t, err)
	})

	t.Run("hcl", func(t *testing.T) {
		_, err := config.Load(writeFile(t, dir, "bad.hcl", "validator {\n  commnd = \"x\"\n}\n"))
		require.Error(t, err)
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.Error(t, err)
}

func TestDiscover(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		cfg, path, err := config.Discover(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("hcl_preferred", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".witls.yaml", "log:\n  level: error\n")
		want := writeFile(t, dir, ".witls.hcl", "log {\n  level = \"trace\"\n}\n")

		cfg, path, err := config.Discover(dir)
		require.NoError(t, err)
		assert.Equal(t, want, path)
		assert.Equal(t, zerolog.TraceLevel, cfg.Level())
	})
}

func TestValidateReportsEverything(t *testing.T) {
	cfg := &config.Config{
		Validator: &config.ValidatorBlock{Command: " "},
		Watch:     &config.WatchBlock{Enabled: true, Patterns: []string{"[", "*.wit"}},
		Log:       &config.LogBlock{Level: "loud"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
}

func TestMatches(t *testing.T) {
	cfg := config.Default()

	assert.True(t, cfg.Matches("world.wit"))
	assert.True(t, cfg.Matches("deps/io/streams.wit"))
	assert.False(t, cfg.Matches("world.wit.swp"))
	assert.False(t, cfg.Matches("README.md"))
}

func TestResolve(t *testing.T) {
	t.Run("defaults_without_file", func(t *testing.T) {
		cfg, err := config.Resolve("", t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("explicit_path_wins", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".witls.yaml", "validator:\n  command: from-dir\n")
		explicit := writeFile(t, t.TempDir(), "custom.toml", "[validator]\ncommand = \"explicit\"\n")

		cfg, err := config.Resolve(explicit, dir)
		require.NoError(t, err)
		assert.Equal(t, "explicit", cfg.Validator.Command)
	})

	t.Run("discovered_in_dir", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".witls.yaml", "validator:\n  command: from-dir\n")

		cfg, err := config.Resolve("", dir)
		require.NoError(t, err)
		assert.Equal(t, "from-dir", cfg.Validator.Command)
	})

	t.Run("invalid_settings", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".witls.yaml", "log:\n  level: loud\n")

		_, err := config.Resolve("", dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".witls.yaml")
	})
}
