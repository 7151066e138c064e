package mcp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openclaw/avpc/internal/backend/memory"
	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/vault"
)

func TestStreamableHTTPAuthRequired(t *testing.T) {
	p, xe := vault.NewProvider(memory.New(), "openclaw")
	if xe != nil {
		t.Fatal(xe)
	}
	server, err := CreateServer("test", p)
	if err != nil {
		t.Fatalf("CreateServer error: %v", err)
	}
	handler, err := NewStreamableHTTPHandler(server, "secret-token")
	if err != nil {
		t.Fatalf("NewStreamableHTTPHandler error: %v", err)
	}

	ts := httptest.NewServer(handler)
	defer ts.Close()

	cases := []struct {
		name             string
		authHeader       string
		wantUnauthorized bool
	}{
		{name: "missing", authHeader: "", wantUnauthorized: true},
		{name: "wrong-scheme", authHeader: "Token secret-token", wantUnauthorized: true},
		{name: "wrong-token", authHeader: "Bearer bad-token", wantUnauthorized: true},
		{name: "ok", authHeader: "Bearer secret-token", wantUnauthorized: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, ts.URL, strings.NewReader("{}"))
			if err != nil {
				t.Fatalf("new request: %v", err)
			}
			req.Header.Set("Accept", "application/json, text/event-stream")
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("http request error: %v", err)
			}
			resp.Body.Close()
			if tc.wantUnauthorized && resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected unauthorized, got %d", resp.StatusCode)
			}
			if !tc.wantUnauthorized && resp.StatusCode == http.StatusUnauthorized {
				t.Fatalf("expected non-unauthorized status, got %d", resp.StatusCode)
			}
		})
	}
}

func TestNewStreamableHTTPHandler_RequiresToken(t *testing.T) {
	p, xe := vault.NewProvider(memory.New(), "openclaw")
	if xe != nil {
		t.Fatal(xe)
	}
	server, err := CreateServer("test", p)
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewStreamableHTTPHandler(server, "")
	if err == nil {
		t.Fatal("expected error for empty token")
	}
	if xe, ok := errors.As(err); !ok || xe.Code != errors.CodeCfgInvalid {
		t.Errorf("err = %v, want %s", err, errors.CodeCfgInvalid)
	}
}

func TestNewStreamableHTTPHandler_NilServer(t *testing.T) {
	_, err := NewStreamableHTTPHandler(nil, "token")
	if err == nil {
		t.Fatal("expected error for nil server")
	}
}
