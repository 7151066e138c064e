package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openclaw/avpc/internal/output"
)

// RotateFlags holds the flags for the rotate command
type RotateFlags struct {
	Stdin bool
}

// NewRotateCommand creates the rotate command
func NewRotateCommand(w *output.Writer) *cobra.Command {
	flags := &RotateFlags{}

	cmd := &cobra.Command{
		Use:   "rotate KEY [VALUE]",
		Short: "Rotate an existing credential (bumps version)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRotate(args, flags, w)
		},
	}

	cmd.Flags().BoolVar(&flags.Stdin, "stdin", false, "Read new secret value from stdin")

	return cmd
}

// runRotate replaces the value of an existing credential
func runRotate(args []string, flags *RotateFlags, w *output.Writer) error {
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

	if xe := p.Rotate(ctx, key, []byte(value)); xe != nil {
		return xe
	}

	cred, xe := p.Get(ctx, key)
	if xe != nil {
		return xe
	}

	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}
	return w.WriteOK(format, map[string]any{
		"key":     key,
		"rotated": true,
		"version": cred.Meta.Version,
	})
}
