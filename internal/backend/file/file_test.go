package file

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/vault"
)

func vaultPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "vault.enc")
}

func TestOpen_NewVault(t *testing.T) {
	b, xe := Open(vaultPath(t), []byte("pw"))
	if xe != nil {
		t.Fatalf("Open failed: %v", xe)
	}
	keys, xe := b.List(context.Background(), "")
	if xe != nil {
		t.Fatal(xe)
	}
	if len(keys) != 0 {
		t.Errorf("new vault should be empty, got %v", keys)
	}
}

func TestRoundTrip(t *testing.T) {
	path := vaultPath(t)
	ctx := context.Background()

	b, xe := Open(path, []byte("pw"))
	if xe != nil {
		t.Fatal(xe)
	}
	meta := vault.Metadata{Version: 1, Backend: "file"}
	if xe := b.Store(ctx, "ws/api_key", []byte("test_value"), meta); xe != nil {
		t.Fatalf("Store failed: %v", xe)
	}

	// 重新打开，数据应从磁盘恢复
	b2, xe := Open(path, []byte("pw"))
	if xe != nil {
		t.Fatalf("reopen failed: %v", xe)
	}
	cred, xe := b2.Retrieve(ctx, "ws/api_key")
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

func TestOpen_WrongPassword(t *testing.T) {
	path := vaultPath(t)
	ctx := context.Background()

	b, xe := Open(path, []byte("right"))
	if xe != nil {
		t.Fatal(xe)
	}
	if xe := b.Store(ctx, "ws/k", []byte("v"), vault.Metadata{}); xe != nil {
		t.Fatal(xe)
	}

	_, xe = Open(path, []byte("wrong"))
	if xe == nil {
		t.Fatal("expected error for wrong password")
	}
	if xe.Code != errors.CodeVaultAuthFailed {
		t.Errorf("code = %s, want %s", xe.Code, errors.CodeVaultAuthFailed)
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	path := vaultPath(t)

	tests := []struct {
		name    string
		content []byte
	}{
		{"not a vault", []byte("definitely not a vault file, but long enough to pass length checks......")},
		{"truncated", []byte("AVP1tooshort")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(path, tt.content, 0o600); err != nil {
				t.Fatal(err)
			}
			_, xe := Open(path, []byte("pw"))
			if xe == nil {
				t.Fatal("expected error")
			}
			if xe.Code != errors.CodeVaultCorrupt {
				t.Errorf("code = %s, want %s", xe.Code, errors.CodeVaultCorrupt)
			}
		})
	}
}

func TestOpen_TamperedCiphertext(t *testing.T) {
	path := vaultPath(t)
	ctx := context.Background()

	b, xe := Open(path, []byte("pw"))
	if xe != nil {
		t.Fatal(xe)
	}
	if xe := b.Store(ctx, "ws/k", []byte("v"), vault.Metadata{}); xe != nil {
		t.Fatal(xe)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	raw[len(raw)-1] ^= 0xff
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	_, xe = Open(path, []byte("pw"))
	if xe == nil || xe.Code != errors.CodeVaultAuthFailed {
		t.Errorf("xe = %v, want %s", xe, errors.CodeVaultAuthFailed)
	}
}

func TestDelete(t *testing.T) {
	path := vaultPath(t)
	ctx := context.Background()

	b, xe := Open(path, []byte("pw"))
	if xe != nil {
		t.Fatal(xe)
	}
	if xe := b.Store(ctx, "ws/k", []byte("v"), vault.Metadata{}); xe != nil {
		t.Fatal(xe)
	}

	deleted, xe := b.Delete(ctx, "ws/k")
	if xe != nil || !deleted {
		t.Errorf("Delete = (%v, %v)", deleted, xe)
	}
	deleted, xe = b.Delete(ctx, "ws/k")
	if xe != nil || deleted {
		t.Errorf("second Delete = (%v, %v), want (false, nil)", deleted, xe)
	}

	// 删除后重新打开也不可见
	b2, xe := Open(path, []byte("pw"))
	if xe != nil {
		t.Fatal(xe)
	}
	if _, xe := b2.Retrieve(ctx, "ws/k"); xe == nil || xe.Code != errors.CodeCredNotFound {
		t.Errorf("xe = %v, want %s", xe, errors.CodeCredNotFound)
	}
}

func TestFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix file modes only")
	}
	path := vaultPath(t)

	b, xe := Open(path, []byte("pw"))
	if xe != nil {
		t.Fatal(xe)
	}
	if xe := b.Store(context.Background(), "ws/k", []byte("v"), vault.Metadata{}); xe != nil {
		t.Fatal(xe)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %o, want 0600", info.Mode().Perm())
	}
}

func TestFactory_RequiresPassword(t *testing.T) {
	f, ok := vault.Get("file")
	if !ok {
		t.Fatal("file backend not registered")
	}
	_, xe := f.Open(context.Background(), vault.Options{Path: vaultPath(t)})
	if xe == nil || xe.Code != errors.CodeCfgInvalid {
		t.Errorf("xe = %v, want %s", xe, errors.CodeCfgInvalid)
	}
}

func TestFactory_Open(t *testing.T) {
	f, ok := vault.Get("file")
	if !ok {
		t.Fatal("file backend not registered")
	}
	b, xe := f.Open(context.Background(), vault.Options{Path: vaultPath(t), Password: "pw"})
	if xe != nil {
		t.Fatalf("Open failed: %v", xe)
	}
	if b.Name() != "file" {
		t.Errorf("name = %q", b.Name())
	}
}

func TestStore_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "vault.enc")

	b, xe := Open(path, []byte("pw"))
	if xe != nil {
		t.Fatal(xe)
	}
	if xe := b.Store(context.Background(), "ws/k", []byte("v"), vault.Metadata{}); xe != nil {
		t.Fatalf("Store failed: %v", xe)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("vault file not created: %v", err)
	}
}
