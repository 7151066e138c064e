package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/openclaw/avpc/internal/output"
)

// GetFlags holds the flags for the get command
type GetFlags struct {
	Raw bool
}

// NewGetCommand creates the get command
func NewGetCommand(w *output.Writer) *cobra.Command {
	flags := &GetFlags{}

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Retrieve a credential by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args[0], flags, w)
		},
	}

	cmd.Flags().BoolVar(&flags.Raw, "raw", false, "Print bare secret value to stdout")

	return cmd
}

// runGet retrieves a credential
func runGet(key string, flags *GetFlags, w *output.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	p, err := openProvider(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	cred, xe := p.Get(ctx, key)
	if xe != nil {
		return xe
	}

	if flags.Raw {
		// Bare value for piping; trailing newline only on a TTY.
		fmt.Fprint(w.Out, string(cred.Value))
		if term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(w.Out)
		}
		return nil
	}

	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}
	return w.WriteOK(format, map[string]any{
		"key":   cred.Key,
		"value": string(cred.Value),
		"meta":  cred.Meta,
	})
}
