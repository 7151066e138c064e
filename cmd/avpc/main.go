package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/openclaw/avpc/internal/app"
	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/output"
)

func main() {
	// .env is a convenience for local development (AVP_WORKSPACE etc.);
	// a missing file is not an error.
	_ = godotenv.Load()
	exit := run()
	os.Exit(exit)
}

// run is the main entry point
func run() int {
	// Initialize application
	a := app.New(version)
	w := output.New(os.Stdout, os.Stderr)

	// Create root command
	root := NewRootCommand()

	// Add subcommands
	root.AddCommand(NewSpecCommand(&a, &w))
	root.AddCommand(NewVersionCommand(&a, &w))
	root.AddCommand(NewGetCommand(&w))
	root.AddCommand(NewSetCommand(&w))
	root.AddCommand(NewDeleteCommand(&w))
	root.AddCommand(NewListCommand(&w))
	root.AddCommand(NewHasCommand(&w))
	root.AddCommand(NewRotateCommand(&w))
	root.AddCommand(NewMigrateCommand(&w))
	root.AddCommand(NewMCPCommand())

	// Execute and handle errors
	if err := root.Execute(); err != nil {
		xe := normalizeErr(err)
		format := resolveFormatForError(GlobalConfig.FormatStr)
		_ = w.WriteError(format, xe)
		return int(errors.ExitCodeFor(xe.Code))
	}

	return int(errors.ExitOK)
}
