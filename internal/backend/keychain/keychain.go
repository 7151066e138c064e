// Package keychain 实现 OS keyring backend（macOS Keychain / Windows
// Credential Manager / Secret Service）。
//
// OS keyring 不支持枚举，因此每个 workspace 维护一条索引记录
// （account = "index:<workspace>"）。凭据本体以 JSON 信封存储：
// value（base64）+ meta。namespaced key 必含 '/'，索引 account 必不含，
// 两者不会冲突。
package keychain

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sort"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/secret"
	"github.com/openclaw/avpc/internal/vault"
)

func init() {
	vault.Register("keychain", factory{})
}

// serviceName 是 keyring 的 service；凭据与索引共用。
// 注意与 secret 包的配置引用 service（"avpc"）区分。
const serviceName = "avp"

const indexPrefix = "index:"

type factory struct{}

func (factory) Open(_ context.Context, _ vault.Options) (vault.Backend, *errors.XError) {
	return New(secret.Default()), nil
}

type envelope struct {
	Value []byte         `json:"value"`
	Meta  vault.Metadata `json:"meta"`
}

type Backend struct {
	mu sync.Mutex
	kr secret.KeyringAPI
}

// New 构造 keychain backend；kr 可注入（测试用 mock）。
func New(kr secret.KeyringAPI) *Backend {
	return &Backend{kr: kr}
}

func isNotFound(err error) bool {
	return stderrors.Is(err, keyring.ErrNotFound)
}

// workspaceOf 取 namespaced key 的 workspace 部分。
func workspaceOf(key string) string {
	if i := strings.IndexByte(key, '/'); i >= 0 {
		return key[:i]
	}
	return key
}

func (b *Backend) readIndex(ws string) ([]string, *errors.XError) {
	raw, err := b.kr.Get(serviceName, indexPrefix+ws)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.CodeBackendFailed, "failed to read keychain index", map[string]any{"workspace": ws}, err)
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, errors.Wrap(errors.CodeBackendFailed, "keychain index is corrupt", map[string]any{"workspace": ws}, err)
	}
	return keys, nil
}

func (b *Backend) writeIndex(ws string, keys []string) *errors.XError {
	sort.Strings(keys)
	raw, err := json.Marshal(keys)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to encode keychain index", nil, err)
	}
	if err := b.kr.Set(serviceName, indexPrefix+ws, string(raw)); err != nil {
		return errors.Wrap(errors.CodeBackendFailed, "failed to write keychain index", map[string]any{"workspace": ws}, err)
	}
	return nil
}

func (b *Backend) Retrieve(_ context.Context, key string) (vault.Credential, *errors.XError) {
	raw, err := b.kr.Get(serviceName, key)
	if err != nil {
		if isNotFound(err) {
			return vault.Credential{}, errors.New(errors.CodeCredNotFound, "credential not found", map[string]any{"key": key})
		}
		return vault.Credential{}, errors.Wrap(errors.CodeBackendFailed, "failed to read from keychain", map[string]any{"key": key}, err)
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return vault.Credential{}, errors.Wrap(errors.CodeBackendFailed, "keychain entry is corrupt", map[string]any{"key": key}, err)
	}
	return vault.Credential{Key: key, Value: env.Value, Meta: env.Meta}, nil
}

func (b *Backend) Store(_ context.Context, key string, value []byte, meta vault.Metadata) *errors.XError {
	b.mu.Lock()
	defer b.mu.Unlock()

	raw, err := json.Marshal(envelope{Value: value, Meta: meta})
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to encode keychain entry", nil, err)
	}
	if err := b.kr.Set(serviceName, key, string(raw)); err != nil {
		return errors.Wrap(errors.CodeBackendFailed, "failed to write to keychain", map[string]any{"key": key}, err)
	}

	ws := workspaceOf(key)
	keys, xe := b.readIndex(ws)
	if xe != nil {
		return xe
	}
	for _, k := range keys {
		if k == key {
			return nil
		}
	}
	return b.writeIndex(ws, append(keys, key))
}

func (b *Backend) Delete(_ context.Context, key string) (bool, *errors.XError) {
	b.mu.Lock()
	defer b.mu.Unlock()

	existed := true
	if err := b.kr.Delete(serviceName, key); err != nil {
		if !isNotFound(err) {
			return false, errors.Wrap(errors.CodeBackendFailed, "failed to delete from keychain", map[string]any{"key": key}, err)
		}
		existed = false
	}

	ws := workspaceOf(key)
	keys, xe := b.readIndex(ws)
	if xe != nil {
		return existed, xe
	}
	filtered := keys[:0]
	for _, k := range keys {
		if k != key {
			filtered = append(filtered, k)
		}
	}
	if len(filtered) != len(keys) {
		if xe := b.writeIndex(ws, filtered); xe != nil {
			return existed, xe
		}
	}
	return existed, nil
}

func (b *Backend) List(_ context.Context, prefix string) ([]string, *errors.XError) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ws := strings.TrimSuffix(prefix, "/")
	keys, xe := b.readIndex(ws)
	if xe != nil {
		return nil, xe
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (b *Backend) Name() string { return "keychain" }

func (b *Backend) Close() error { return nil }
