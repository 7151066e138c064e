package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openclaw/avpc/internal/output"
)

// NewListCommand creates the list command
func NewListCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List credential keys in the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()

			p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			keys, xe := p.List(ctx)
			if xe != nil {
				return xe
			}

			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			return w.WriteOK(format, map[string]any{
				"workspace": p.Workspace(),
				"keys":      keys,
				"count":     len(keys),
			})
		},
	}
}
