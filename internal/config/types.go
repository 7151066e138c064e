package config

// File 表示 avp.toml 的配置结构。
// 约束：配置优先级为 CLI > ENV > Config。
type File struct {
	// Workspace 是凭据命名空间；provider 生命周期内不可变。
	Workspace string `toml:"workspace"`
	Format    string `toml:"format"`

	// AllowPlaintext 允许配置里出现明文 secret（默认 false，用 keyring: 引用）。
	AllowPlaintext bool `toml:"allow_plaintext"`

	Backend Backend `toml:"backend"`
	MCP     MCP     `toml:"mcp"`
}

// Backend 是带标签的后端配置；Type 决定哪些字段生效。
type Backend struct {
	Type string `toml:"type"` // keychain | file | hardware | remote | memory

	// file backend
	Path     string `toml:"path"`     // vault 文件路径；默认 ~/.openclaw/avp_vault.enc
	Password string `toml:"password"` // 支持 keyring:xxx 引用

	// hardware backend
	Device string `toml:"device"` // 设备路径，如 /dev/avp0

	// remote backend
	URL            string `toml:"url"`
	Token          string `toml:"token"` // 支持 keyring:xxx 引用
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type MCP struct {
	Transport string  `toml:"transport"`
	HTTP      MCPHTTP `toml:"http"`
}

type MCPHTTP struct {
	Addr                string `toml:"addr"`
	AuthToken           string `toml:"auth_token"` // 支持 keyring:xxx 引用
	AllowPlaintextToken bool   `toml:"allow_plaintext_token"`
}

type Resolved struct {
	ConfigPath     string
	Workspace      string
	Format         string
	AllowPlaintext bool
	Backend        Backend
}

type Options struct {
	// ConfigPath: 若非空，则只读取该文件（不存在报错）。
	ConfigPath string

	// CLI
	CLIWorkspace    string
	CLIWorkspaceSet bool
	CLIBackend      string
	CLIBackendSet   bool
	CLIFormat       string
	CLIFormatSet    bool

	// ENV（由调用方注入，便于测试）
	EnvWorkspace string
	EnvBackend   string
	EnvFormat    string

	// HomeDir 用于默认路径计算（为空则自动探测）。
	HomeDir string

	// WorkDir 用于默认路径（为空则使用进程当前工作目录）。
	WorkDir string
}

// DefaultWorkspace 是未配置时的 workspace 名。
const DefaultWorkspace = "openclaw"

// DefaultBackendType 是未配置时的后端类型。
const DefaultBackendType = "file"
