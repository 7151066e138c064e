package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/openclaw/avpc/internal/config"
	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/log"
)

// Build-time variables (set by goreleaser)
var (
	version = "dev"
)

// Config holds the resolved configuration
type Config struct {
	ConfigStr      string
	WorkspaceStr   string
	BackendStr     string
	FormatStr      string
	AllowPlaintext bool
	Debug          bool
	Resolved       config.Resolved
	Logger         *slog.Logger
}

// GlobalConfig holds the global configuration state
var GlobalConfig = &Config{}

// logger returns the configured logger (a default one before flag parsing)
func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		c.Logger = log.New(os.Stderr)
	}
	return c.Logger
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "avpc",
		Short:         "Agent Vault Protocol credential client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// CLI > ENV > Config
			workspaceSet := cmd.Flags().Changed("workspace")
			backendSet := cmd.Flags().Changed("backend")
			formatSet := cmd.Flags().Changed("format")
			configSet := cmd.Flags().Changed("config")
			if configSet && GlobalConfig.ConfigStr == "" {
				return errors.New(errors.CodeCfgInvalid, "config path is empty", nil)
			}

			level := slog.LevelInfo
			if GlobalConfig.Debug {
				level = slog.LevelDebug
			}
			GlobalConfig.Logger = log.NewLevel(os.Stderr, level)

			r, xe := config.Resolve(config.Options{
				ConfigPath:      GlobalConfig.ConfigStr,
				CLIWorkspace:    GlobalConfig.WorkspaceStr,
				CLIWorkspaceSet: workspaceSet,
				CLIBackend:      GlobalConfig.BackendStr,
				CLIBackendSet:   backendSet,
				CLIFormat:       GlobalConfig.FormatStr,
				CLIFormatSet:    formatSet,
				EnvWorkspace:    os.Getenv("AVP_WORKSPACE"),
				EnvBackend:      os.Getenv("AVP_BACKEND"),
				EnvFormat:       os.Getenv("AVP_FORMAT"),
				WorkDir:         "",
				HomeDir:         "",
			})
			if xe != nil {
				return xe
			}
			GlobalConfig.Resolved = r
			GlobalConfig.FormatStr = r.Format
			return nil
		},
	}

	root.PersistentFlags().StringVar(&GlobalConfig.ConfigStr, "config", "", "Config file path (TOML); default: ./avp.toml or $HOME/.config/avpc/avp.toml")
	root.PersistentFlags().StringVarP(&GlobalConfig.WorkspaceStr, "workspace", "w", config.DefaultWorkspace, "Credential namespace")
	root.PersistentFlags().StringVarP(&GlobalConfig.BackendStr, "backend", "b", config.DefaultBackendType, "Backend: keychain|file|hardware|remote|memory")
	root.PersistentFlags().StringVarP(&GlobalConfig.FormatStr, "format", "f", "auto", "Output format: json|yaml|table|csv|auto")
	root.PersistentFlags().BoolVar(&GlobalConfig.AllowPlaintext, "allow-plaintext", false, "Allow plaintext secrets in config")
	root.PersistentFlags().BoolVar(&GlobalConfig.Debug, "debug", false, "Enable debug logging")

	return root
}
