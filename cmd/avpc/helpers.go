package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/openclaw/avpc/internal/app"
	_ "github.com/openclaw/avpc/internal/backend/file"
	_ "github.com/openclaw/avpc/internal/backend/hardware"
	_ "github.com/openclaw/avpc/internal/backend/keychain"
	_ "github.com/openclaw/avpc/internal/backend/memory"
	_ "github.com/openclaw/avpc/internal/backend/remote"
	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/output"
	"github.com/openclaw/avpc/internal/vault"
)

const opTimeout = 30 * time.Second

// parseOutputFormat parses and validates the output format string
func parseOutputFormat(s string) (output.Format, error) {
	f := output.Format(s)
	if !output.IsValid(f) {
		return "", errors.New(errors.CodeCfgInvalid, "invalid output format", map[string]any{"format": s})
	}
	return resolveAuto(f), nil
}

// resolveFormatForError resolves the format for error output
func resolveFormatForError(s string) output.Format {
	f := output.Format(s)
	if !output.IsValid(f) {
		f = output.FormatAuto
	}
	return resolveAuto(f)
}

// resolveAuto resolves "auto" format to appropriate format based on TTY
func resolveAuto(f output.Format) output.Format {
	if f != output.FormatAuto {
		return f
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return output.FormatTable
	}
	return output.FormatJSON
}

// normalizeErr normalizes any error to XError
func normalizeErr(err error) *errors.XError {
	if xe, ok := errors.As(err); ok {
		return xe
	}
	// Preserve original error message
	return errors.Wrap(errors.CodeInternal, err.Error(), nil, err)
}

// openProvider opens the configured backend and wraps it in a provider
func openProvider(ctx context.Context) (*vault.Provider, error) {
	r := GlobalConfig.Resolved
	allowPlaintext := GlobalConfig.AllowPlaintext || r.AllowPlaintext

	p, xe := app.OpenProvider(ctx, app.ProviderOptions{
		Workspace:      r.Workspace,
		Backend:        r.Backend,
		AllowPlaintext: allowPlaintext,
		PasswordPrompt: promptVaultPassword,
	})
	if xe != nil {
		return nil, xe
	}
	return p, nil
}

// promptVaultPassword reads the vault password from the terminal (no echo)
func promptVaultPassword() (string, *errors.XError) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New(errors.CodeCfgInvalid, "vault password is required (set backend.password or run interactively)", nil)
	}
	fmt.Fprint(os.Stderr, "Vault password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(errors.CodeCfgInvalid, "failed to read vault password", nil, err)
	}
	return string(b), nil
}

// readSecretValue reads a secret value: positional arg > --stdin > terminal prompt.
// Values from stdin have the trailing newline stripped.
func readSecretValue(args []string, argIndex int, useStdin bool) (string, *errors.XError) {
	if useStdin {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrap(errors.CodeCfgInvalid, "failed to read secret from stdin", nil, err)
		}
		return strings.TrimRight(string(b), "\r\n"), nil
	}
	if len(args) > argIndex {
		return args[argIndex], nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New(errors.CodeCfgInvalid, "secret value is required (pass VALUE, --stdin, or run interactively)", nil)
	}
	fmt.Fprint(os.Stderr, "Secret value: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(errors.CodeCfgInvalid, "failed to read secret value", nil, err)
	}
	return string(b), nil
}
