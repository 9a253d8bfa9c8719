package get_tokens

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/witls/pkg/position"
	"github.com/walteh/witls/pkg/semtok"
	"github.com/walteh/witls/pkg/wit"
	"gitlab.com/tozd/go/errors"
)

type Handler struct {
	semantic   bool
	whitespace bool

	fs  afero.Fs
	out io.Writer
}

func NewGetTokensCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "get-tokens <file>",
		Short: "print the tokens of a WIT file",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().BoolVar(&me.semantic, "semantic", false, "print the decoded semantic token stream instead")
	cmd.Flags().BoolVar(&me.whitespace, "whitespace", false, "include whitespace tokens")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context(), args[0])
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, path string) error {
	fs := me.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	out := me.out
	if out == nil {
		out = os.Stdout
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return errors.Errorf("reading %s: %w", path, err)
	}
	text := string(content)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	if me.semantic {
		records, err := semtok.EncodeText(text)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "POSITION\tLENGTH\tTYPE")
		for _, abs := range semtok.Decode(semtok.Flatten(records)) {
			fmt.Fprintf(w, "%d:%d\t%d\t%s\n", abs.Line, abs.Start, abs.Length, abs.TokenType)
		}
		return w.Flush()
	}

	idx := position.NewIndex(text)
	fmt.Fprintln(w, "RANGE\tKIND\tTEXT")
	for tok, err := range wit.Tokens(text) {
		if err != nil {
			w.Flush()
			return errors.Errorf("tokenizing %s: %w", path, err)
		}
		if tok.Kind == wit.KindWhitespace && !me.whitespace {
			continue
		}
		rng, err := idx.RangeOf(tok.Span.Start, tok.Span.End)
		if err != nil {
			return errors.Errorf("locating token: %w", err)
		}
		fmt.Fprintf(w, "%s\t%s\t%q\n", rng, tok.Kind, tok.Text)
	}
	return w.Flush()
}
