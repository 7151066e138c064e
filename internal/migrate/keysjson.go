// Package migrate 将 OpenClaw 默认的 keys.json 明文凭据迁移进 vault。
package migrate

import (
	"context"
	"encoding/json"
	"os"
	"sort"

	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/vault"
)

// Result 是一次迁移的结果。
type Result struct {
	Migrated []string `json:"migrated"`
	Skipped  []string `json:"skipped,omitempty"` // 非字符串值，跳过
	Count    int      `json:"count"`
}

// FromKeysJSON 读取 keys.json（扁平的 key→string 映射），逐条写入 provider。
// 文件不存在时返回空结果（不报错）。deleteSource=true 时先用零字节覆盖再删除源文件。
func FromKeysJSON(ctx context.Context, path string, p *vault.Provider, deleteSource bool) (Result, *errors.XError) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, nil
		}
		return Result{}, errors.Wrap(errors.CodeCfgInvalid, "failed to read keys.json", map[string]any{"path": path}, err)
	}

	var keys map[string]any
	if err := json.Unmarshal(raw, &keys); err != nil {
		return Result{}, errors.Wrap(errors.CodeCfgInvalid, "keys.json is not a valid JSON object", map[string]any{"path": path}, err)
	}

	var res Result
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		s, ok := keys[k].(string)
		if !ok {
			res.Skipped = append(res.Skipped, k)
			continue
		}
		if xe := p.Set(ctx, k, []byte(s)); xe != nil {
			return res, xe
		}
		res.Migrated = append(res.Migrated, k)
		res.Count++
	}

	if deleteSource {
		if xe := shredFile(path, len(raw)); xe != nil {
			return res, xe
		}
	}
	return res, nil
}

// shredFile 先覆盖再删除（尽力而为的 secure delete；SSD/COW 文件系统上不保证）。
func shredFile(path string, size int) *errors.XError {
	if err := os.WriteFile(path, make([]byte, size), 0o600); err != nil {
		return errors.Wrap(errors.CodeBackendFailed, "failed to overwrite keys.json before delete", map[string]any{"path": path}, err)
	}
	if err := os.Remove(path); err != nil {
		return errors.Wrap(errors.CodeBackendFailed, "failed to remove keys.json", map[string]any{"path": path}, err)
	}
	return nil
}
