package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openclaw/avpc/internal/output"
)

// SetFlags holds the flags for the set command
type SetFlags struct {
	Stdin bool
}

// NewSetCommand creates the set command
func NewSetCommand(w *output.Writer) *cobra.Command {
	flags := &SetFlags{}

	cmd := &cobra.Command{
		Use:   "set KEY [VALUE]",
		Short: "Store a credential (creates or overwrites)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(args, flags, w)
		},
	}

	cmd.Flags().BoolVar(&flags.Stdin, "stdin", false, "Read secret value from stdin")

	return cmd
}

// runSet stores a credential
func runSet(args []string, flags *SetFlags, w *output.Writer) error {
	key := args[0]
	value, xe := readSecretValue(args, 1, flags.Stdin)
	if xe != nil {
		return xe
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	p, err := openProvider(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	if xe := p.Set(ctx, key, []byte(value)); xe != nil {
		return xe
	}

	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}
	return w.WriteOK(format, map[string]any{
		"key":    key,
		"stored": true,
	})
}
