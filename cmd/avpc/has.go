package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openclaw/avpc/internal/output"
)

// NewHasCommand creates the has command
func NewHasCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "has KEY",
		Short: "Check whether a credential exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()

			p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			exists, xe := p.Has(ctx, args[0])
			if xe != nil {
				return xe
			}

			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			return w.WriteOK(format, map[string]any{
				"key":    args[0],
				"exists": exists,
			})
		},
	}
}
