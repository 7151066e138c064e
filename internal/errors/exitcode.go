package errors

// ExitCode 是进程退出码（稳定契约）。
type ExitCode int

const (
	ExitOK ExitCode = 0

	// 2: 参数/配置错误
	ExitConfig ExitCode = 2

	// 3: backend 不可用 / 认证失败
	ExitBackend ExitCode = 3

	// 4: 凭据不存在
	ExitNotFound ExitCode = 4

	// 5: backend 操作失败
	ExitOpFailed ExitCode = 5

	// 10: 内部错误
	ExitInternal ExitCode = 10
)

func ExitCodeFor(code Code) ExitCode {
	switch code {
	case CodeCfgNotFound, CodeCfgInvalid, CodeSecretNotFound, CodeKeyInvalid:
		return ExitConfig
	case CodeBackendUnsupported, CodeVaultAuthFailed, CodeVaultCorrupt,
		CodeRemoteAuthFailed, CodeHWDeviceFailed:
		return ExitBackend
	case CodeCredNotFound:
		return ExitNotFound
	case CodeRemoteFailed, CodeBackendFailed:
		return ExitOpFailed
	case CodeInternal:
		fallthrough
	default:
		return ExitInternal
	}
}
