// Package file 实现加密单文件 vault backend。
//
// 文件格式：magic "AVP1" | 16B salt | 24B nonce | XChaCha20-Poly1305 密文。
// 密钥由 argon2id 从密码派生；明文为 JSON 的 key→entry 映射。
// 写入走临时文件 + rename，权限 0600。
package file

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/vault"
)

func init() {
	vault.Register("file", factory{})
}

var magic = []byte("AVP1")

const (
	saltLen = 16

	// argon2id 参数；改动会使已有 vault 无法解密，只能随格式版本一起变
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	keyLen       = 32
)

// DefaultVaultPath 返回默认 vault 路径（~/.openclaw/avp_vault.enc）。
func DefaultVaultPath(homeDir string) string {
	return filepath.Join(homeDir, ".openclaw", "avp_vault.enc")
}

type factory struct{}

func (factory) Open(_ context.Context, opts vault.Options) (vault.Backend, *errors.XError) {
	path := opts.Path
	if path == "" {
		hd, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.CodeCfgInvalid, "cannot determine home directory for default vault path", nil, err)
		}
		path = DefaultVaultPath(hd)
	}
	if opts.Password == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "vault password is required", nil)
	}
	return Open(path, []byte(opts.Password))
}

type entry struct {
	Value []byte         `json:"value"`
	Meta  vault.Metadata `json:"meta"`
}

type Backend struct {
	mu       sync.Mutex
	path     string
	password []byte
	entries  map[string]entry
}

// Open 打开（或初始化）vault 文件并解密到内存。
// 文件不存在时视为空 vault，首次 Store 时落盘。
func Open(path string, password []byte) (*Backend, *errors.XError) {
	b := &Backend{
		path:     path,
		password: append([]byte(nil), password...),
		entries:  map[string]entry{},
	}
	if xe := b.load(); xe != nil {
		return nil, xe
	}
	return b, nil
}

func (b *Backend) load() *errors.XError {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.CodeBackendFailed, "failed to read vault file", map[string]any{"path": b.path}, err)
	}

	minLen := len(magic) + saltLen + chacha20poly1305.NonceSizeX
	if len(raw) < minLen || string(raw[:len(magic)]) != string(magic) {
		return errors.New(errors.CodeVaultCorrupt, "vault file is corrupt or not an AVP vault", map[string]any{"path": b.path})
	}

	salt := raw[len(magic) : len(magic)+saltLen]
	nonce := raw[len(magic)+saltLen : minLen]
	ciphertext := raw[minLen:]

	aead, err := chacha20poly1305.NewX(deriveKey(b.password, salt))
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to init cipher", nil, err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, magic)
	if err != nil {
		// AEAD 校验失败无法区分密码错误与篡改；按认证失败处理
		return errors.New(errors.CodeVaultAuthFailed, "vault password is wrong or file was tampered with", map[string]any{"path": b.path})
	}

	var entries map[string]entry
	if err := json.Unmarshal(plaintext, &entries); err != nil {
		return errors.Wrap(errors.CodeVaultCorrupt, "vault payload is not valid", map[string]any{"path": b.path}, err)
	}
	b.entries = entries
	return nil
}

func (b *Backend) save() *errors.XError {
	plaintext, err := json.Marshal(b.entries)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to encode vault payload", nil, err)
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to generate salt", nil, err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to generate nonce", nil, err)
	}

	aead, err := chacha20poly1305.NewX(deriveKey(b.password, salt))
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to init cipher", nil, err)
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, magic)

	buf := make([]byte, 0, len(magic)+saltLen+len(nonce)+len(ciphertext))
	buf = append(buf, magic...)
	buf = append(buf, salt...)
	buf = append(buf, nonce...)
	buf = append(buf, ciphertext...)

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(errors.CodeBackendFailed, "failed to create vault directory", map[string]any{"dir": dir}, err)
	}
	tmp, err := os.CreateTemp(dir, ".avp_vault-*")
	if err != nil {
		return errors.Wrap(errors.CodeBackendFailed, "failed to create temp vault file", map[string]any{"dir": dir}, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.CodeBackendFailed, "failed to write vault file", map[string]any{"path": b.path}, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.CodeBackendFailed, "failed to set vault file mode", map[string]any{"path": b.path}, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.CodeBackendFailed, "failed to close temp vault file", map[string]any{"path": b.path}, err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.CodeBackendFailed, "failed to replace vault file", map[string]any{"path": b.path}, err)
	}
	return nil
}

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, keyLen)
}

func (b *Backend) Retrieve(_ context.Context, key string) (vault.Credential, *errors.XError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[key]
	if !ok {
		return vault.Credential{}, errors.New(errors.CodeCredNotFound, "credential not found", map[string]any{"key": key})
	}
	return vault.Credential{
		Key:   key,
		Value: append([]byte(nil), e.Value...),
		Meta:  e.Meta,
	}, nil
}

func (b *Backend) Store(_ context.Context, key string, value []byte, meta vault.Metadata) *errors.XError {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev, existed := b.entries[key]
	b.entries[key] = entry{Value: append([]byte(nil), value...), Meta: meta}
	if xe := b.save(); xe != nil {
		// 落盘失败回滚内存态，保持文件与内存一致
		if existed {
			b.entries[key] = prev
		} else {
			delete(b.entries, key)
		}
		return xe
	}
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) (bool, *errors.XError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev, existed := b.entries[key]
	if !existed {
		return false, nil
	}
	delete(b.entries, key)
	if xe := b.save(); xe != nil {
		b.entries[key] = prev
		return false, xe
	}
	return true, nil
}

func (b *Backend) List(_ context.Context, prefix string) ([]string, *errors.XError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.entries))
	for k := range b.entries {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (b *Backend) Name() string { return "file" }

// Close 清空内存中的密码副本。
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.password {
		b.password[i] = 0
	}
	b.entries = map[string]entry{}
	return nil
}
