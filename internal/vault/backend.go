package vault

import (
	"context"
	"sync"
	"time"

	"github.com/openclaw/avpc/internal/errors"
)

// Backend 是 secret 存储后端的统一抽象（RETRIEVE/STORE/DELETE/LIST）。
// key 已带 workspace 前缀（由 Provider 负责），backend 不感知 namespace 语义。
type Backend interface {
	Retrieve(ctx context.Context, key string) (Credential, *errors.XError)
	Store(ctx context.Context, key string, value []byte, meta Metadata) *errors.XError
	Delete(ctx context.Context, key string) (bool, *errors.XError)
	List(ctx context.Context, prefix string) ([]string, *errors.XError)
	Name() string
	Close() error
}

// Options 是打开 backend 的参数集合；各 backend 只取自己需要的字段。
type Options struct {
	Workspace string

	// file
	Path     string
	Password string // 已解析的明文密码（keyring: 引用在上层解析）

	// hardware
	Device string

	// remote
	URL     string
	Token   string // 已解析的 bearer token
	Timeout time.Duration
}

// Factory 按 Options 打开一个 backend 实例。
type Factory interface {
	Open(ctx context.Context, opts Options) (Backend, *errors.XError)
}

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if name == "" {
		panic("vault.Register: empty name")
	}
	if f == nil {
		panic("vault.Register: nil factory")
	}
	if _, exists := factories[name]; exists {
		panic("vault.Register: duplicate backend: " + name)
	}
	factories[name] = f
}

func Get(name string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

func RegisteredNames() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	return out
}
