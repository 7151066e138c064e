package keychain

import (
	"context"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/vault"
)

// mockKeyring 模拟 OS keyring，用于单元测试
type mockKeyring struct {
	data map[string]map[string]string // service -> account -> value
}

func newMockKeyring() *mockKeyring {
	return &mockKeyring{data: make(map[string]map[string]string)}
}

func (m *mockKeyring) Get(service, account string) (string, error) {
	if svc, ok := m.data[service]; ok {
		if v, ok := svc[account]; ok {
			return v, nil
		}
	}
	return "", keyring.ErrNotFound
}

func (m *mockKeyring) Set(service, account, value string) error {
	if m.data[service] == nil {
		m.data[service] = make(map[string]string)
	}
	m.data[service][account] = value
	return nil
}

func (m *mockKeyring) Delete(service, account string) error {
	if svc, ok := m.data[service]; ok {
		if _, ok := svc[account]; ok {
			delete(svc, account)
			return nil
		}
	}
	return keyring.ErrNotFound
}

func TestBackend_RoundTrip(t *testing.T) {
	b := New(newMockKeyring())
	ctx := context.Background()

	meta := vault.Metadata{Version: 1, Backend: "keychain"}
	if xe := b.Store(ctx, "ws/api_key", []byte("test_value"), meta); xe != nil {
		t.Fatalf("Store failed: %v", xe)
	}

	cred, xe := b.Retrieve(ctx, "ws/api_key")
	if xe != nil {
		t.Fatalf("Retrieve failed: %v", xe)
	}
	if string(cred.Value) != "test_value" {
		t.Errorf("value = %q, want test_value", cred.Value)
	}
	if cred.Meta.Version != 1 {
		t.Errorf("version = %d, want 1", cred.Meta.Version)
	}
}

func TestBackend_RetrieveMissing(t *testing.T) {
	b := New(newMockKeyring())

	_, xe := b.Retrieve(context.Background(), "ws/nope")
	if xe == nil || xe.Code != errors.CodeCredNotFound {
		t.Errorf("xe = %v, want %s", xe, errors.CodeCredNotFound)
	}
}

func TestBackend_ListViaIndex(t *testing.T) {
	b := New(newMockKeyring())
	ctx := context.Background()

	for _, k := range []string{"ws/b", "ws/a", "other/c"} {
		if xe := b.Store(ctx, k, []byte("v"), vault.Metadata{}); xe != nil {
			t.Fatal(xe)
		}
	}

	keys, xe := b.List(ctx, "ws/")
	if xe != nil {
		t.Fatal(xe)
	}
	// 索引按序存储
	want := []string{"ws/a", "ws/b"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestBackend_DeleteUpdatesIndex(t *testing.T) {
	b := New(newMockKeyring())
	ctx := context.Background()

	if xe := b.Store(ctx, "ws/k", []byte("v"), vault.Metadata{}); xe != nil {
		t.Fatal(xe)
	}

	deleted, xe := b.Delete(ctx, "ws/k")
	if xe != nil || !deleted {
		t.Errorf("Delete = (%v, %v), want (true, nil)", deleted, xe)
	}

	keys, xe := b.List(ctx, "ws/")
	if xe != nil {
		t.Fatal(xe)
	}
	if len(keys) != 0 {
		t.Errorf("index not updated after delete: %v", keys)
	}

	deleted, xe = b.Delete(ctx, "ws/k")
	if xe != nil || deleted {
		t.Errorf("second Delete = (%v, %v), want (false, nil)", deleted, xe)
	}
}

func TestBackend_StoreIdempotentIndex(t *testing.T) {
	b := New(newMockKeyring())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if xe := b.Store(ctx, "ws/k", []byte("v"), vault.Metadata{Version: i + 1}); xe != nil {
			t.Fatal(xe)
		}
	}

	keys, xe := b.List(ctx, "ws/")
	if xe != nil {
		t.Fatal(xe)
	}
	if len(keys) != 1 {
		t.Errorf("index has duplicates: %v", keys)
	}
}

func TestBackend_CorruptEntry(t *testing.T) {
	kr := newMockKeyring()
	_ = kr.Set(serviceName, "ws/bad", "not json")
	b := New(kr)

	_, xe := b.Retrieve(context.Background(), "ws/bad")
	if xe == nil || xe.Code != errors.CodeBackendFailed {
		t.Errorf("xe = %v, want %s", xe, errors.CodeBackendFailed)
	}
}

func TestWorkspaceOf(t *testing.T) {
	if ws := workspaceOf("ws/a/b"); ws != "ws" {
		t.Errorf("workspaceOf = %q, want ws", ws)
	}
}

func TestFactory_Registered(t *testing.T) {
	if _, ok := vault.Get("keychain"); !ok {
		t.Fatal("keychain backend not registered")
	}
}
