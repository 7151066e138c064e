package secret

import (
	"strings"

	"github.com/openclaw/avpc/internal/errors"
)

const keyringPrefix = "keyring:"

// serviceName 是配置引用（keyring:xxx）使用的 service；
// keychain backend 的凭据存储用自己的 service，二者不混用。
const serviceName = "avpc"

// Options 控制 secret 解析行为。
type Options struct {
	AllowPlaintext bool       // 是否允许明文（默认 false）
	Keyring        KeyringAPI // 可注入的 keyring 实现（nil 则用默认）
}

// parseKeyringRef 解析 keyring:<account>，返回 service 和 account。
func parseKeyringRef(ref string) (string, string, *errors.XError) {
	if ref == "" {
		return "", "", errors.New(errors.CodeCfgInvalid, "empty keyring reference", nil)
	}
	return serviceName, ref, nil
}

// Resolve 解析 secret 值：
//  1. keyring:xxx → 从 keyring 读取
//  2. 否则若为明文且允许明文 → 直接返回
//  3. 否则报错
//
// 注意：TTY 交互输入由 cmd 层处理，不在此实现。
func Resolve(raw string, opts Options) (string, *errors.XError) {
	if strings.HasPrefix(raw, keyringPrefix) {
		ref := strings.TrimPrefix(raw, keyringPrefix)
		service, account, xe := parseKeyringRef(ref)
		if xe != nil {
			return "", xe
		}
		kr := opts.Keyring
		if kr == nil {
			kr = defaultKeyring()
		}
		val, err := kr.Get(service, account)
		if err != nil {
			return "", errors.Wrap(errors.CodeSecretNotFound, "failed to read secret from keyring", map[string]any{"account": account}, err)
		}
		return val, nil
	}
	// 明文
	if opts.AllowPlaintext {
		return raw, nil
	}
	return "", errors.New(errors.CodeCfgInvalid, "plaintext secret not allowed; use keyring: reference or enable allow_plaintext", nil)
}

// IsKeyringRef 判断值是否为 keyring 引用。
func IsKeyringRef(s string) bool {
	return strings.HasPrefix(s, keyringPrefix)
}
