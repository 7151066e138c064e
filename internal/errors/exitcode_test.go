package errors

import "testing"

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		code Code
		want ExitCode
	}{
		{CodeCfgNotFound, ExitConfig},
		{CodeCfgInvalid, ExitConfig},
		{CodeSecretNotFound, ExitConfig},
		{CodeKeyInvalid, ExitConfig},
		{CodeBackendUnsupported, ExitBackend},
		{CodeVaultAuthFailed, ExitBackend},
		{CodeVaultCorrupt, ExitBackend},
		{CodeRemoteAuthFailed, ExitBackend},
		{CodeHWDeviceFailed, ExitBackend},
		{CodeCredNotFound, ExitNotFound},
		{CodeRemoteFailed, ExitOpFailed},
		{CodeBackendFailed, ExitOpFailed},
		{CodeInternal, ExitInternal},
		{Code("AVP_FUTURE_CODE"), ExitInternal},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := ExitCodeFor(tt.code); got != tt.want {
				t.Errorf("ExitCodeFor(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestAllCodes_CoveredByExitMapping(t *testing.T) {
	// 所有 code 都必须有非 0 退出码
	for _, c := range AllCodes() {
		if ExitCodeFor(c) == ExitOK {
			t.Errorf("code %s maps to ExitOK", c)
		}
	}
}
