package vault

import "time"

// Credential 是一条凭据：key + 不透明 secret 值 + 元数据。
// key 在 workspace 内唯一。
type Credential struct {
	Key   string   `json:"key"`
	Value []byte   `json:"-"` // secret 值不参与默认序列化，防止误输出
	Meta  Metadata `json:"meta"`
}

// Metadata 是凭据元数据；Version 从 1 开始，覆盖写与 rotate 时 +1。
type Metadata struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
	Backend   string    `json:"backend,omitempty"` // 来源 backend 名
}
