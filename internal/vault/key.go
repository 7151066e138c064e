package vault

import (
	"strings"

	"github.com/openclaw/avpc/internal/errors"
)

const maxKeyLen = 255

// ValidateKey 校验凭据 key：非空、≤255 字节、不含控制字符。
// 允许 '/'（分层命名），namespace 分隔由 workspace 规则保证。
func ValidateKey(key string) *errors.XError {
	if key == "" {
		return errors.New(errors.CodeKeyInvalid, "credential key is empty", nil)
	}
	if len(key) > maxKeyLen {
		return errors.New(errors.CodeKeyInvalid, "credential key too long", map[string]any{"max": maxKeyLen, "len": len(key)})
	}
	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return errors.New(errors.CodeKeyInvalid, "credential key contains control characters", map[string]any{"key_len": len(key)})
		}
	}
	return nil
}

// ValidateWorkspace 校验 workspace 名：非空、不含 '/' 与控制字符。
// '/' 是 namespace 分隔符，必须保留。
func ValidateWorkspace(ws string) *errors.XError {
	if ws == "" {
		return errors.New(errors.CodeCfgInvalid, "workspace is empty", nil)
	}
	if strings.ContainsRune(ws, '/') {
		return errors.New(errors.CodeCfgInvalid, "workspace must not contain '/'", map[string]any{"workspace": ws})
	}
	for _, r := range ws {
		if r < 0x20 || r == 0x7f {
			return errors.New(errors.CodeCfgInvalid, "workspace contains control characters", nil)
		}
	}
	return nil
}
