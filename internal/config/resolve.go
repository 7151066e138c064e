package config

import (
	"os"
	"path/filepath"

	"github.com/openclaw/avpc/internal/errors"
)

// Resolve 合并 workspace/backend/format：CLI > ENV > Config > 默认值。
func Resolve(opts Options) (Resolved, *errors.XError) {
	workDir := opts.WorkDir
	if workDir == "" {
		wd, _ := os.Getwd()
		workDir = wd
	}
	if opts.HomeDir == "" {
		if hd, err := os.UserHomeDir(); err == nil {
			opts.HomeDir = hd
		}
	}

	// 1) 读取配置文件（如有）
	var cfg File
	var cfgPath string
	if opts.ConfigPath != "" {
		abs := opts.ConfigPath
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, abs)
		}
		f, xe := readFile(abs)
		if xe != nil {
			return Resolved{}, xe
		}
		cfg = f
		cfgPath = abs
	} else {
		for _, p := range defaultConfigPaths(workDir, opts.HomeDir) {
			f, xe := readFile(p)
			if xe != nil {
				if xe.Code == errors.CodeCfgNotFound {
					continue
				}
				return Resolved{}, xe
			}
			cfg = f
			cfgPath = p
			break
		}
	}

	// 2) workspace：--workspace > AVP_WORKSPACE > config > "openclaw"
	workspace := DefaultWorkspace
	if cfg.Workspace != "" {
		workspace = cfg.Workspace
	}
	if opts.EnvWorkspace != "" {
		workspace = opts.EnvWorkspace
	}
	if opts.CLIWorkspaceSet {
		workspace = opts.CLIWorkspace
	}

	// 3) backend type：--backend > AVP_BACKEND > config > "file"
	backend := cfg.Backend
	if backend.Type == "" {
		backend.Type = DefaultBackendType
	}
	if opts.EnvBackend != "" {
		backend.Type = opts.EnvBackend
	}
	if opts.CLIBackendSet {
		backend.Type = opts.CLIBackend
	}

	// 4) format：--format > AVP_FORMAT > config > auto
	format := "auto"
	if cfg.Format != "" {
		format = cfg.Format
	}
	if opts.EnvFormat != "" {
		format = opts.EnvFormat
	}
	if opts.CLIFormatSet {
		format = opts.CLIFormat
	}

	return Resolved{
		ConfigPath:     cfgPath,
		Workspace:      workspace,
		Format:         format,
		AllowPlaintext: cfg.AllowPlaintext,
		Backend:        backend,
	}, nil
}
