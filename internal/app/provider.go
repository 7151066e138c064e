package app

import (
	"context"
	"time"

	"github.com/openclaw/avpc/internal/config"
	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/secret"
	"github.com/openclaw/avpc/internal/vault"
)

// ProviderOptions 控制 provider 的打开流程。
type ProviderOptions struct {
	Workspace      string
	Backend        config.Backend
	AllowPlaintext bool

	// Keyring 可注入（nil 用平台默认），供 keyring: 引用解析。
	Keyring secret.KeyringAPI

	// PasswordPrompt 在 file backend 密码未配置时调用（TTY 交互）；
	// nil 则直接报错。
	PasswordPrompt func() (string, *errors.XError)
}

// OpenProvider 按配置打开 backend 并构造 Provider。
// 流程：backend 查找 → secret 引用解析（password/token）→ factory.Open → NewProvider。
func OpenProvider(ctx context.Context, opts ProviderOptions) (*vault.Provider, *errors.XError) {
	factory, ok := vault.Get(opts.Backend.Type)
	if !ok {
		return nil, errors.New(errors.CodeBackendUnsupported, "unsupported backend", map[string]any{
			"backend":    opts.Backend.Type,
			"registered": vault.RegisteredNames(),
		})
	}

	secretOpts := secret.Options{AllowPlaintext: opts.AllowPlaintext, Keyring: opts.Keyring}

	password := opts.Backend.Password
	if password != "" {
		pw, xe := secret.Resolve(password, secretOpts)
		if xe != nil {
			return nil, xe
		}
		password = pw
	} else if opts.Backend.Type == "file" {
		if opts.PasswordPrompt == nil {
			return nil, errors.New(errors.CodeCfgInvalid, "vault password is required (set backend.password or run interactively)", nil)
		}
		pw, xe := opts.PasswordPrompt()
		if xe != nil {
			return nil, xe
		}
		password = pw
	}

	token := opts.Backend.Token
	if token != "" {
		tk, xe := secret.Resolve(token, secretOpts)
		if xe != nil {
			return nil, xe
		}
		token = tk
	}

	backend, xe := factory.Open(ctx, vault.Options{
		Workspace: opts.Workspace,
		Path:      opts.Backend.Path,
		Password:  password,
		Device:    opts.Backend.Device,
		URL:       opts.Backend.URL,
		Token:     token,
		Timeout:   time.Duration(opts.Backend.TimeoutSeconds) * time.Second,
	})
	if xe != nil {
		return nil, xe
	}

	p, xe := vault.NewProvider(backend, opts.Workspace)
	if xe != nil {
		_ = backend.Close()
		return nil, xe
	}
	return p, nil
}
