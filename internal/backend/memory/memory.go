// Package memory 提供进程内 backend，供开发与测试使用；进程退出即丢失。
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/vault"
)

func init() {
	vault.Register("memory", factory{})
}

type factory struct{}

func (factory) Open(_ context.Context, _ vault.Options) (vault.Backend, *errors.XError) {
	return New(), nil
}

type Backend struct {
	mu   sync.RWMutex
	data map[string]vault.Credential
}

func New() *Backend {
	return &Backend{data: make(map[string]vault.Credential)}
}

func (b *Backend) Retrieve(_ context.Context, key string) (vault.Credential, *errors.XError) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.data[key]
	if !ok {
		return vault.Credential{}, errors.New(errors.CodeCredNotFound, "credential not found", map[string]any{"key": key})
	}
	c.Value = append([]byte(nil), c.Value...)
	return c, nil
}

func (b *Backend) Store(_ context.Context, key string, value []byte, meta vault.Metadata) *errors.XError {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = vault.Credential{
		Key:   key,
		Value: append([]byte(nil), value...),
		Meta:  meta,
	}
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) (bool, *errors.XError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.data[key]
	delete(b.data, key)
	return ok, nil
}

func (b *Backend) List(_ context.Context, prefix string) ([]string, *errors.XError) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.data))
	for k := range b.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (b *Backend) Name() string { return "memory" }

func (b *Backend) Close() error { return nil }
