package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/migrate"
	"github.com/openclaw/avpc/internal/output"
)

// MigrateFlags holds the flags for the migrate command
type MigrateFlags struct {
	DeleteSource bool
}

// NewMigrateCommand creates the migrate command
func NewMigrateCommand(w *output.Writer) *cobra.Command {
	flags := &MigrateFlags{}

	cmd := &cobra.Command{
		Use:   "migrate [KEYS_JSON]",
		Short: "Migrate credentials from an OpenClaw keys.json file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(args, flags, w)
		},
	}

	cmd.Flags().BoolVar(&flags.DeleteSource, "delete-source", false, "Overwrite and remove keys.json after migration")

	return cmd
}

// runMigrate imports a keys.json file into the vault
func runMigrate(args []string, flags *MigrateFlags, w *output.Writer) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(errors.CodeCfgInvalid, "cannot determine home directory for default keys.json path", nil, err)
		}
		path = filepath.Join(home, ".openclaw", "keys.json")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	p, err := openProvider(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	res, xe := migrate.FromKeysJSON(ctx, path, p, flags.DeleteSource)
	if xe != nil {
		return xe
	}
	GlobalConfig.logger().Info("migration finished", "path", path, "count", res.Count, "skipped", len(res.Skipped))

	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}
	return w.WriteOK(format, map[string]any{
		"source":    path,
		"workspace": p.Workspace(),
		"migrated":  res.Migrated,
		"skipped":   res.Skipped,
		"count":     res.Count,
	})
}
