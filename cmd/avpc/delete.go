package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openclaw/avpc/internal/output"
)

// NewDeleteCommand creates the delete command
func NewDeleteCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY",
		Short: "Delete a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()

			p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			deleted, xe := p.Delete(ctx, args[0])
			if xe != nil {
				return xe
			}

			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			return w.WriteOK(format, map[string]any{
				"key":     args[0],
				"deleted": deleted,
			})
		},
	}
}
