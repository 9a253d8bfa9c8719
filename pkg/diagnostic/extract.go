package diagnostic

import (
	"context"
	"path/filepath"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var ErrNonUTF8Output = errors.New("validator output is not valid UTF-8")

const defaultSource = "wasm-tools"

// Extractor validates the package a document belongs to.
type Extractor struct {
	runner Runner
	source string
}

func NewExtractor(runner Runner) *Extractor {
	source := defaultSource
	if named, ok := runner.(interface{ Name() string }); ok && named.Name() != "" && named.Name() != "." {
		source = named.Name()
	}
	return &Extractor{runner: runner, source: source}
}

// Extract validates the directory containing path. The report may include
// files other than path itself.
func (e *Extractor) Extract(ctx context.Context, path string) (Report, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Report{}, errors.Errorf("resolving %s: %w", path, err)
	}
	return e.ExtractDir(ctx, filepath.Dir(abs))
}

// ExtractDir validates one package directory.
func (e *Extractor) ExtractDir(ctx context.Context, dir string) (Report, error) {
	logger := zerolog.Ctx(ctx).With().Str("dir", dir).Logger()

	output, err := e.runner.Run(ctx, dir)
	if err != nil {
		return Report{}, err
	}

	if !utf8.Valid(output) {
		logger.Warn().Int("bytes", len(output)).Msg("discarding validator output")
		return Report{}, ErrNonUTF8Output
	}

	report := Parse(string(output), dir, e.source)

	logger.Debug().Int("files", len(report)).Int("diagnostics", report.Count()).Msg("validator finished")

	return report, nil
}
