package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openclaw/avpc/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "avp.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
workspace = "prod"

[backend]
type = "file"
path = "/tmp/vault.enc"
password = "keyring:vault_password"
`)

	f, cfgPath, xe := LoadConfig(Options{ConfigPath: path})
	if xe != nil {
		t.Fatalf("LoadConfig failed: %v", xe)
	}
	if cfgPath != path {
		t.Errorf("path = %q, want %q", cfgPath, path)
	}
	if f.Workspace != "prod" {
		t.Errorf("workspace = %q, want prod", f.Workspace)
	}
	if f.Backend.Type != "file" || f.Backend.Path != "/tmp/vault.enc" {
		t.Errorf("backend = %+v", f.Backend)
	}
	if f.Backend.Password != "keyring:vault_password" {
		t.Errorf("password = %q", f.Backend.Password)
	}
}

func TestLoadConfig_ExplicitMissing(t *testing.T) {
	_, _, xe := LoadConfig(Options{ConfigPath: filepath.Join(t.TempDir(), "nope.toml")})
	if xe == nil {
		t.Fatal("expected error for missing explicit config")
	}
	if xe.Code != errors.CodeCfgNotFound {
		t.Errorf("code = %s, want %s", xe.Code, errors.CodeCfgNotFound)
	}
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "workspace = [broken")

	_, _, xe := LoadConfig(Options{ConfigPath: path})
	if xe == nil {
		t.Fatal("expected error for invalid toml")
	}
	if xe.Code != errors.CodeCfgInvalid {
		t.Errorf("code = %s, want %s", xe.Code, errors.CodeCfgInvalid)
	}
}

func TestLoadConfig_SearchOrder(t *testing.T) {
	workDir := t.TempDir()
	homeDir := t.TempDir()

	// 只有 home 下有配置
	homeCfg := filepath.Join(homeDir, ".config", "avpc")
	if err := os.MkdirAll(homeCfg, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(homeCfg, "avp.toml"), []byte(`workspace = "home"`), 0o600); err != nil {
		t.Fatal(err)
	}

	f, path, xe := LoadConfig(Options{WorkDir: workDir, HomeDir: homeDir})
	if xe != nil {
		t.Fatalf("LoadConfig failed: %v", xe)
	}
	if f.Workspace != "home" {
		t.Errorf("workspace = %q, want home", f.Workspace)
	}
	if path != filepath.Join(homeCfg, "avp.toml") {
		t.Errorf("path = %q", path)
	}

	// workDir 下出现配置后优先
	writeConfig(t, workDir, `workspace = "local"`)
	f, _, xe = LoadConfig(Options{WorkDir: workDir, HomeDir: homeDir})
	if xe != nil {
		t.Fatalf("LoadConfig failed: %v", xe)
	}
	if f.Workspace != "local" {
		t.Errorf("workspace = %q, want local", f.Workspace)
	}
}

func TestLoadConfig_NoneFound(t *testing.T) {
	f, path, xe := LoadConfig(Options{WorkDir: t.TempDir(), HomeDir: t.TempDir()})
	if xe != nil {
		t.Fatalf("LoadConfig failed: %v", xe)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if f.Workspace != "" {
		t.Errorf("workspace = %q, want zero value", f.Workspace)
	}
}
