package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestMain_SpecCommand 测试 spec 命令输出
func TestMain_SpecCommand(t *testing.T) {
	binary := buildTestBinary(t)

	cmd := exec.Command(binary, "spec", "--format", "json")
	cmd.Env = isolatedEnv(t)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("spec command failed: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("failed to parse JSON: %v\noutput: %s", err, out)
	}

	if ok, _ := resp["ok"].(bool); !ok {
		t.Errorf("expected ok=true, got %v", resp["ok"])
	}
	if v, _ := resp["schema_version"].(float64); v != 1 {
		t.Errorf("expected schema_version=1, got %v", v)
	}
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data field")
	}
	backends, ok := data["backends"].([]any)
	if !ok || len(backends) == 0 {
		t.Errorf("expected registered backends in spec, got %v", data["backends"])
	}
}

// TestMain_VersionCommand 测试 version 命令
func TestMain_VersionCommand(t *testing.T) {
	binary := buildTestBinary(t)

	cmd := exec.Command(binary, "version", "--format", "json")
	cmd.Env = isolatedEnv(t)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("failed to parse JSON: %v\noutput: %s", err, out)
	}

	if ok, _ := resp["ok"].(bool); !ok {
		t.Errorf("expected ok=true")
	}
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data map")
	}
	if _, ok := data["version"]; !ok {
		t.Error("expected version in data")
	}
}

// TestMain_SetGetRoundTrip 测试 set/get 全流程（file backend + 明文密码）
func TestMain_SetGetRoundTrip(t *testing.T) {
	binary := buildTestBinary(t)
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "avp.toml")
	vaultPath := filepath.Join(tmpDir, "vault.enc")
	configContent := `
workspace = "openclaw"
allow_plaintext = true

[backend]
type = "file"
path = "` + vaultPath + `"
password = "test-password"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	set := exec.Command(binary, "set", "api_key", "s3cret", "--config", configPath, "--format", "json")
	set.Env = isolatedEnv(t)
	if out, err := set.CombinedOutput(); err != nil {
		t.Fatalf("set command failed: %v\n%s", err, out)
	}

	get := exec.Command(binary, "get", "api_key", "--config", configPath, "--format", "json")
	get.Env = isolatedEnv(t)
	out, err := get.Output()
	if err != nil {
		t.Fatalf("get command failed: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("failed to parse JSON: %v\noutput: %s", err, out)
	}
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data map")
	}
	if data["value"] != "s3cret" {
		t.Errorf("expected value=s3cret, got %v", data["value"])
	}

	raw := exec.Command(binary, "get", "api_key", "--raw", "--config", configPath)
	raw.Env = isolatedEnv(t)
	rawOut, err := raw.Output()
	if err != nil {
		t.Fatalf("get --raw failed: %v", err)
	}
	if string(rawOut) != "s3cret" {
		t.Errorf("expected raw value, got %q", rawOut)
	}
}

// TestMain_GetMissingExitCode 测试 get 不存在的 key（退出码 4）
func TestMain_GetMissingExitCode(t *testing.T) {
	binary := buildTestBinary(t)

	cmd := exec.Command(binary, "get", "missing", "--backend", "memory", "--format", "json")
	cmd.Env = isolatedEnv(t)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err == nil {
		t.Fatalf("expected error for missing credential, stdout: %s", out)
	}
	ee, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected exit error, got %v", err)
	}
	if ee.ExitCode() != 4 {
		t.Errorf("expected exit 4, got %d. stderr: %s", ee.ExitCode(), stderr.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("failed to parse JSON: %v\noutput: %s", err, out)
	}
	if ok, _ := resp["ok"].(bool); ok {
		t.Error("expected ok=false")
	}
}

// TestMain_InvalidFormat 测试无效格式
func TestMain_InvalidFormat(t *testing.T) {
	binary := buildTestBinary(t)

	cmd := exec.Command(binary, "spec", "--format", "invalid")
	cmd.Env = isolatedEnv(t)
	out, _ := cmd.Output()

	// 应该有错误输出
	if len(out) == 0 {
		t.Log("no output, checking exit code")
		return
	}

	var resp map[string]any
	if err := json.Unmarshal(out, &resp); err == nil {
		if ok, _ := resp["ok"].(bool); ok {
			t.Error("expected ok=false for invalid format")
		}
	}
}

// TestMain_Help 测试帮助
func TestMain_Help(t *testing.T) {
	binary := buildTestBinary(t)

	cmd := exec.Command(binary, "--help")
	cmd.Env = isolatedEnv(t)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}

	if !strings.Contains(string(out), "avpc") {
		t.Errorf("expected help output to contain 'avpc', got: %s", out)
	}
}

// isolatedEnv 返回隔离的环境变量（不读取用户真实配置和 AVP_* 环境）
func isolatedEnv(t *testing.T) []string {
	t.Helper()
	home := t.TempDir()
	env := []string{"HOME=" + home, "USERPROFILE=" + home, "PATH=" + os.Getenv("PATH")}
	if goCache := os.Getenv("GOCACHE"); goCache != "" {
		env = append(env, "GOCACHE="+goCache)
	}
	return env
}

func buildTestBinary(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "avpc_test_binary")
	if isWindows() {
		tmpFile += ".exe"
	}

	cmd := exec.Command("go", "build", "-o", tmpFile, ".")
	cmd.Dir = "."
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build test binary: %v\n%s", err, out)
	}

	return tmpFile
}

func isWindows() bool {
	return os.PathSeparator == '\\'
}
