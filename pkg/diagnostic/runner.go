package diagnostic

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var ErrSpawn = errors.New("unable to run validator")

// Runner produces the raw error output of validating one package directory.
type Runner interface {
	Run(ctx context.Context, dir string) ([]byte, error)
}

// CommandRunner invokes an external validator with the package directory as
// its last argument.
type CommandRunner struct {
	Command string
	Args    []string
}

var _ Runner = (*CommandRunner)(nil)

func NewCommandRunner(command string, args ...string) *CommandRunner {
	return &CommandRunner{Command: command, Args: args}
}

// Name is the base name of the command, used as the diagnostic source.
func (r *CommandRunner) Name() string {
	return filepath.Base(r.Command)
}

// Run returns whatever the command wrote to stderr. A non-zero exit is the
// normal way for the validator to report problems and is not an error.
func (r *CommandRunner) Run(ctx context.Context, dir string) ([]byte, error) {
	args := make([]string, 0, len(r.Args)+1)
	args = append(args, r.Args...)
	args = append(args, dir)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Dir = dir
	cmd.Stderr = &stderr

	zerolog.Ctx(ctx).Debug().Str("command", r.Command).Strs("args", args).Msg("running validator")

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, errors.Errorf("validator cancelled: %w", ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, errors.Errorf("%w: %s: %v", ErrSpawn, r.Command, err)
		}
		zerolog.Ctx(ctx).Debug().Int("exit_code", exitErr.ExitCode()).Int("stderr_bytes", stderr.Len()).Msg("validator reported problems")
	}

	return stderr.Bytes(), nil
}
