package serve_lsp

import (
	"context"
	"os"

	"github.com/creachadair/jrpc2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/witls/pkg/config"
	"github.com/walteh/witls/pkg/debug"
	"github.com/walteh/witls/pkg/lsp"
	"gitlab.com/tozd/go/errors"
)

type Handler struct {
	version     string
	debug       bool
	configPath  string
	validator   string
	logToClient bool
}

func NewServeLSPCommand(version string) *cobra.Command {
	me := &Handler{version: version}

	cmd := &cobra.Command{
		Use:   "serve-lsp",
		Short: "start the language server on stdin/stdout",
	}

	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&me.configPath, "config", "", "settings file (default: .witls.{hcl,yaml,toml} in the working directory)")
	cmd.Flags().StringVar(&me.validator, "validator", "", "validator command, overriding the settings file")
	cmd.Flags().BoolVar(&me.logToClient, "log-to-client", false, "also send logs to the editor as window/logMessage")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context())
	}

	return cmd
}

type RPCLogger struct {
}

func (me *RPCLogger) LogRequest(ctx context.Context, req *jrpc2.Request) {
	zerolog.Ctx(ctx).Debug().Str("rpc_params", req.ParamString()).Str("rpc_id", req.ID()).Str("rpc_method", req.Method()).Msg("client request")
}

func (me *RPCLogger) LogResponse(ctx context.Context, res *jrpc2.Response) {
	zerolog.Ctx(ctx).Debug().Str("rpc_result", res.ResultString()).Str("rpc_id", res.ID()).Msg("server response")
}

func (me *Handler) Run(ctx context.Context) error {
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

	level := cfg.Level()
	if me.debug {
		level = zerolog.DebugLevel
	}

	// stdout carries the protocol, so logs only ever go to stderr
	logger := debug.NewConsoleLogger(os.Stderr, level, false)
	ctx = logger.With().Str("component", "lsp-server").Logger().WithContext(ctx)

	zerolog.Ctx(ctx).Info().Str("version", me.version).Str("validator", cfg.Validator.Command).Msg("starting language server")

	server := lsp.NewServer(ctx, lsp.WithConfig(cfg), lsp.WithVersion(me.version))

	opts := &jrpc2.ServerOptions{
		RPCLog: &RPCLogger{},
	}

	instance := server.BuildServerInstance(ctx, opts)
	if me.logToClient {
		instance.LogToClient(debug.NewConsoleWriter(os.Stderr, false))
	}

	if err := instance.StartAndWait(os.Stdin, os.Stdout); err != nil {
		return errors.Errorf("error running language server: %w", err)
	}

	return nil
}
