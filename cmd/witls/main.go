package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	get_diagnostics "github.com/walteh/witls/cmd/witls/get-diagnostics"
	get_tokens "github.com/walteh/witls/cmd/witls/get-tokens"
	serve_lsp "github.com/walteh/witls/cmd/witls/serve-lsp"
	"gitlab.com/tozd/go/errors"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:           "witls",
		Short:         "A language server for WIT (WebAssembly Interface Types)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)

	rootCmd.AddCommand(serve_lsp.NewServeLSPCommand(rootCmd.Version))
	rootCmd.AddCommand(get_diagnostics.NewGetDiagnosticsCommand())
	rootCmd.AddCommand(get_tokens.NewGetTokensCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
