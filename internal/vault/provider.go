package vault

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/openclaw/avpc/internal/errors"
)

// Provider 是统一的凭据入口：固定 workspace + 单一 backend。
// workspace 在构造后不可变；所有 backend key 带 "<workspace>/" 前缀。
type Provider struct {
	backend   Backend
	workspace string
	now       func() time.Time // 可注入，便于测试
}

func NewProvider(backend Backend, workspace string) (*Provider, *errors.XError) {
	if backend == nil {
		return nil, errors.New(errors.CodeInternal, "backend is nil", nil)
	}
	if xe := ValidateWorkspace(workspace); xe != nil {
		return nil, xe
	}
	return &Provider{backend: backend, workspace: workspace, now: time.Now}, nil
}

func (p *Provider) Workspace() string { return p.workspace }

// BackendName 返回当前 backend 名（如 "file"、"keychain"）。
func (p *Provider) BackendName() string { return p.backend.Name() }

func (p *Provider) namespaced(key string) string {
	return p.workspace + "/" + key
}

// Get 按 key 读取凭据（RETRIEVE）。不存在时返回 AVP_CRED_NOT_FOUND。
func (p *Provider) Get(ctx context.Context, key string) (Credential, *errors.XError) {
	if xe := ValidateKey(key); xe != nil {
		return Credential{}, xe
	}
	cred, xe := p.backend.Retrieve(ctx, p.namespaced(key))
	if xe != nil {
		return Credential{}, xe
	}
	cred.Key = key
	return cred, nil
}

// Set 写入凭据（STORE）；key 已存在则覆盖并 version+1。
func (p *Provider) Set(ctx context.Context, key string, value []byte) *errors.XError {
	if xe := ValidateKey(key); xe != nil {
		return xe
	}
	nsKey := p.namespaced(key)
	meta := Metadata{
		CreatedAt: p.now().UTC(),
		UpdatedAt: p.now().UTC(),
		Version:   1,
		Backend:   p.backend.Name(),
	}
	if prev, xe := p.backend.Retrieve(ctx, nsKey); xe == nil {
		meta.CreatedAt = prev.Meta.CreatedAt
		meta.Version = prev.Meta.Version + 1
	} else if xe.Code != errors.CodeCredNotFound {
		return xe
	}
	return p.backend.Store(ctx, nsKey, value, meta)
}

// Delete 删除凭据（DELETE），返回 key 是否存在过。
func (p *Provider) Delete(ctx context.Context, key string) (bool, *errors.XError) {
	if xe := ValidateKey(key); xe != nil {
		return false, xe
	}
	return p.backend.Delete(ctx, p.namespaced(key))
}

// List 列出 workspace 内全部 key（LIST），已排序、不带前缀。
func (p *Provider) List(ctx context.Context) ([]string, *errors.XError) {
	prefix := p.workspace + "/"
	keys, xe := p.backend.List(ctx, prefix)
	if xe != nil {
		return nil, xe
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, prefix))
	}
	sort.Strings(out)
	return out, nil
}

// Has 检查凭据是否存在。
func (p *Provider) Has(ctx context.Context, key string) (bool, *errors.XError) {
	if xe := ValidateKey(key); xe != nil {
		return false, xe
	}
	_, xe := p.backend.Retrieve(ctx, p.namespaced(key))
	if xe == nil {
		return true, nil
	}
	if xe.Code == errors.CodeCredNotFound {
		return false, nil
	}
	return false, xe
}

// Rotate 轮换凭据：要求 key 已存在，写入新值并 version+1。
func (p *Provider) Rotate(ctx context.Context, key string, newValue []byte) *errors.XError {
	if xe := ValidateKey(key); xe != nil {
		return xe
	}
	nsKey := p.namespaced(key)
	prev, xe := p.backend.Retrieve(ctx, nsKey)
	if xe != nil {
		return xe
	}
	meta := Metadata{
		CreatedAt: prev.Meta.CreatedAt,
		UpdatedAt: p.now().UTC(),
		Version:   prev.Meta.Version + 1,
		Backend:   p.backend.Name(),
	}
	return p.backend.Store(ctx, nsKey, newValue, meta)
}

// Close 关闭底层 backend 连接。
func (p *Provider) Close() error {
	return p.backend.Close()
}
