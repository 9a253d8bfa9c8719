package get_diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/witls/pkg/config"
	"github.com/walteh/witls/pkg/debug"
	"github.com/walteh/witls/pkg/diagnostic"
	"github.com/walteh/witls/pkg/lsp/protocol"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

var ErrProblems = errors.New("problems found")

type Handler struct {
	format     string // json, text
	configPath string
	validator  string
	debug      bool

	out    io.Writer
	runner diagnostic.Runner
}

func NewGetDiagnosticsCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "get-diagnostics <path-or-glob>...",
		Short: "validate WIT packages and print their diagnostics",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.Flags().StringVar(&me.format, "format", "text", "output format: text or json")
	cmd.Flags().StringVar(&me.configPath, "config", "", "settings file")
	cmd.Flags().StringVar(&me.validator, "validator", "", "validator command, overriding the settings file")
	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.out = cmd.OutOrStdout()
		level := zerolog.WarnLevel
		if me.debug {
			level = zerolog.DebugLevel
		}
		ctx := debug.NewConsoleLogger(cmd.ErrOrStderr(), level, false).WithContext(cmd.Context())
		return me.Run(ctx, args)
	}

	return cmd
}

// PackageDirs expands args into the sorted set of package directories they
// name. A file stands for its directory, and globs are matched with
// doublestar.
func PackageDirs(args []string) ([]string, error) {
	seen := map[string]bool{}
	add := func(path string) error {
		info, err := os.Stat(path)
		if err != nil {
			return errors.Errorf("reading %s: %w", path, err)
		}
		if !info.IsDir() {
			path = filepath.Dir(path)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return errors.Errorf("resolving %s: %w", path, err)
		}
		seen[abs] = true
		return nil
	}

	for _, arg := range args {
		if _, err := os.Stat(arg); err == nil {
			if err := add(arg); err != nil {
				return nil, err
			}
			continue
		}

		if !doublestar.ValidatePathPattern(arg) {
			return nil, errors.Errorf("invalid pattern %q", arg)
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("expanding %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("no files match %s", arg)
		}
		for _, match := range matches {
			if err := add(match); err != nil {
				return nil, err
			}
		}
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}

func (me *Handler) Run(ctx context.Context, args []string) error {
	logger := zerolog.Ctx(ctx)

	if me.format != "text" && me.format != "json" {
		return errors.Errorf("unknown format %q", me.format)
	}

	dirs, err := PackageDirs(args)
	if err != nil {
		return err
	}

	runner := me.runner
	if runner == nil {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Errorf("getting working directory: %w", err)
		}
		cfg, err := config.Resolve(me.configPath, wd)
		if err != nil {
			return err
		}
		if me.validator != "" {
			cfg.Validator.Command = me.validator
		}
		runner = diagnostic.NewCommandRunner(cfg.Validator.Command, cfg.Validator.Args...)
	}
	extractor := diagnostic.NewExtractor(runner)

	var mu sync.Mutex
	merged := diagnostic.Report{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, dir := range dirs {
		g.Go(func() error {
			report, err := extractor.ExtractDir(gctx, dir)
			if errors.Is(err, diagnostic.ErrNonUTF8Output) {
				logger.Warn().Str("dir", dir).Msg("validator output was not UTF-8, no diagnostics")
				return nil
			}
			if err != nil {
				return errors.Errorf("validating %s: %w", dir, err)
			}

			mu.Lock()
			defer mu.Unlock()
			for uri, diags := range report {
				merged[uri] = append(merged[uri], diags...)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := me.out
	if out == nil {
		out = os.Stdout
	}
	if me.format == "json" {
		err = writeJSON(out, merged)
	} else {
		err = writeText(out, merged)
	}
	if err != nil {
		return err
	}

	for _, diags := range merged {
		for _, d := range diags {
			if d.Severity == diagnostic.SeverityError {
				return ErrProblems
			}
		}
	}
	return nil
}

type jsonPosition struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

type jsonDiagnostic struct {
	Start    jsonPosition `json:"start"`
	End      jsonPosition `json:"end"`
	Severity string       `json:"severity"`
	Message  string       `json:"message"`
	Source   string       `json:"source,omitempty"`
}

func writeJSON(w io.Writer, report diagnostic.Report) error {
	out := make(map[string][]jsonDiagnostic, len(report))
	for uri, diags := range report {
		list := make([]jsonDiagnostic, 0, len(diags))
		for _, d := range diags {
			list = append(list, jsonDiagnostic{
				Start:    jsonPosition{Line: d.Range.Start.Line, Character: d.Range.Start.Character},
				End:      jsonPosition{Line: d.Range.End.Line, Character: d.Range.End.Character},
				Severity: string(d.Severity),
				Message:  d.Message,
				Source:   d.Source,
			})
		}
		out[uri] = list
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Errorf("encoding diagnostics: %w", err)
	}
	return nil
}

var severityColors = map[diagnostic.DiagnosticSeverity]*color.Color{
	diagnostic.SeverityError:       color.New(color.FgRed, color.Bold),
	diagnostic.SeverityWarning:     color.New(color.FgYellow, color.Bold),
	diagnostic.SeverityInformation: color.New(color.FgCyan),
	diagnostic.SeverityHint:        color.New(color.Faint),
}

// writeText prints one "file:line:col: severity: message" line per
// diagnostic, with one-based line and column.
func writeText(w io.Writer, report diagnostic.Report) error {
	for _, uri := range report.URIs() {
		path := protocol.DocumentURI(uri).Path()
		if path == "" {
			path = uri
		}
		for _, d := range report[uri] {
			sev := string(d.Severity)
			if c, ok := severityColors[d.Severity]; ok {
				sev = c.Sprint(sev)
			}
			if _, err := fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", path, d.Range.Start.Line+1, d.Range.Start.Character+1, sev, d.Message); err != nil {
				return errors.Errorf("writing diagnostics: %w", err)
			}
		}
	}
	return nil
}
