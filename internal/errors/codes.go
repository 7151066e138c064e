package errors

// Code 是稳定错误码（字符串），供 AI/agent 与程序判断。
// 只增不改、不复用旧含义。
type Code string

const (
	// Config / args
	CodeCfgNotFound    Code = "AVP_CFG_NOT_FOUND"
	CodeCfgInvalid     Code = "AVP_CFG_INVALID"
	CodeSecretNotFound Code = "AVP_SECRET_NOT_FOUND"
	CodeKeyInvalid     Code = "AVP_KEY_INVALID"

	// Credential ops
	CodeCredNotFound Code = "AVP_CRED_NOT_FOUND"

	// Backends
	CodeBackendUnsupported Code = "AVP_BACKEND_UNSUPPORTED"
	CodeVaultAuthFailed    Code = "AVP_VAULT_AUTH_FAILED"
	CodeVaultCorrupt       Code = "AVP_VAULT_CORRUPT"
	CodeRemoteAuthFailed   Code = "AVP_REMOTE_AUTH_FAILED"
	CodeRemoteFailed       Code = "AVP_REMOTE_REQUEST_FAILED"
	CodeHWDeviceFailed     Code = "AVP_HW_DEVICE_FAILED"
	CodeBackendFailed      Code = "AVP_BACKEND_FAILED"

	// Internal
	CodeInternal Code = "AVP_INTERNAL"
)

func AllCodes() []Code {
	return []Code{
		CodeCfgNotFound,
		CodeCfgInvalid,
		CodeSecretNotFound,
		CodeKeyInvalid,
		CodeCredNotFound,
		CodeBackendUnsupported,
		CodeVaultAuthFailed,
		CodeVaultCorrupt,
		CodeRemoteAuthFailed,
		CodeRemoteFailed,
		CodeHWDeviceFailed,
		CodeBackendFailed,
		CodeInternal,
	}
}
