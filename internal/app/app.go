package app

import (
	"sort"

	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/output"
	"github.com/openclaw/avpc/internal/spec"
	"github.com/openclaw/avpc/internal/vault"
)

type App struct {
	Version string
}

func New(version string) App {
	return App{Version: version}
}

func (a App) BuildSpec() spec.Spec {
	globalFlags := []spec.FlagSpec{
		{Name: "config", Default: "", Description: "Config file path (TOML); default: ./avp.toml or $HOME/.config/avpc/avp.toml"},
		{Name: "workspace", Shorthand: "w", Env: "AVP_WORKSPACE", Default: "openclaw", Description: "Credential namespace"},
		{Name: "backend", Shorthand: "b", Env: "AVP_BACKEND", Default: "file", Description: "Backend: keychain|file|hardware|remote|memory"},
		{Name: "format", Shorthand: "f", Env: "AVP_FORMAT", Default: "auto", Description: "Output format: json|yaml|table|csv|auto"},
		{Name: "allow-plaintext", Default: "false", Description: "Allow plaintext secrets in config"},
	}
	backends := vault.RegisteredNames()
	sort.Strings(backends)
	return spec.Spec{
		SchemaVersion: output.SchemaVersion,
		Backends:      backends,
		Commands: []spec.CommandSpec{
			{
				Name:        "get",
				Description: "Retrieve a credential by key",
				Flags: append(globalFlags,
					spec.FlagSpec{Name: "raw", Default: "false", Description: "Print bare secret value to stdout"},
				),
			},
			{
				Name:        "set",
				Description: "Store a credential (creates or overwrites)",
				Flags: append(globalFlags,
					spec.FlagSpec{Name: "stdin", Default: "false", Description: "Read secret value from stdin"},
				),
			},
			{
				Name:        "delete",
				Description: "Delete a credential",
				Flags:       globalFlags,
			},
			{
				Name:        "list",
				Description: "List credential keys in the workspace",
				Flags:       globalFlags,
			},
			{
				Name:        "has",
				Description: "Check whether a credential exists",
				Flags:       globalFlags,
			},
			{
				Name:        "rotate",
				Description: "Rotate an existing credential (bumps version)",
				Flags: append(globalFlags,
					spec.FlagSpec{Name: "stdin", Default: "false", Description: "Read new secret value from stdin"},
				),
			},
			{
				Name:        "migrate",
				Description: "Migrate credentials from an OpenClaw keys.json file",
				Flags: append(globalFlags,
					spec.FlagSpec{Name: "delete-source", Default: "false", Description: "Overwrite and remove keys.json after migration"},
				),
			},
			{
				Name:        "spec",
				Description: "Export tool spec for AI/agents",
				Flags:       globalFlags,
			},
			{
				Name:        "version",
				Description: "Print version information",
				Flags:       globalFlags,
			},
			{
				Name:        "mcp",
				Description: "MCP (Model Context Protocol) server commands",
				Flags:       globalFlags,
			},
		},
		ErrorCodes: errors.AllCodes(),
	}
}

type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
}

func (a App) VersionInfo() VersionInfo {
	return VersionInfo{Version: a.Version}
}
