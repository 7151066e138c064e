// Package remote 实现远端 AVP vault 服务的 HTTP backend。
//
// 会话模型：POST /v1/sessions {workspace} → {session_id}，
// 之后所有请求带 X-AVP-Session 头。认证用 Bearer token（仅建会话时）。
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/vault"
)

func init() {
	vault.Register("remote", factory{})
}

const (
	sessionHeader  = "X-AVP-Session"
	defaultTimeout = 10 * time.Second
)

type factory struct{}

func (factory) Open(ctx context.Context, opts vault.Options) (vault.Backend, *errors.XError) {
	if opts.URL == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "remote backend requires url", nil)
	}
	return Connect(ctx, opts.URL, opts.Token, opts.Workspace, opts.Timeout)
}

type Backend struct {
	base      string
	client    *http.Client
	sessionID string
}

type sessionRequest struct {
	Workspace string `json:"workspace"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type credentialPayload struct {
	Key   string         `json:"key"`
	Value []byte         `json:"value"`
	Meta  vault.Metadata `json:"meta"`
}

type listResponse struct {
	Keys []string `json:"keys"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

// Connect 建立到远端 vault 的会话。
func Connect(ctx context.Context, baseURL, token, workspace string, timeout time.Duration) (*Backend, *errors.XError) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	b := &Backend{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
	}

	body, _ := json.Marshal(sessionRequest{Workspace: workspace})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.base+"/v1/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "failed to build session request", nil, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.CodeRemoteFailed, "failed to reach remote vault", map[string]any{"url": b.base}, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.New(errors.CodeRemoteAuthFailed, "remote vault rejected authentication", map[string]any{"url": b.base, "status": resp.StatusCode})
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, errors.New(errors.CodeRemoteFailed, "failed to open remote vault session", map[string]any{"url": b.base, "status": resp.StatusCode})
	}

	var sr sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil || sr.SessionID == "" {
		return nil, errors.Wrap(errors.CodeRemoteFailed, "invalid session response from remote vault", map[string]any{"url": b.base}, err)
	}
	b.sessionID = sr.SessionID
	return b, nil
}

func (b *Backend) do(ctx context.Context, method, path string, body any) (*http.Response, *errors.XError) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, "failed to encode request body", nil, err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.base+path, reader)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "failed to build request", nil, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(sessionHeader, b.sessionID)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.CodeRemoteFailed, "remote vault request failed", map[string]any{"url": b.base}, err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		_ = resp.Body.Close()
		return nil, errors.New(errors.CodeRemoteAuthFailed, "remote vault session rejected", map[string]any{"url": b.base, "status": resp.StatusCode})
	}
	return resp, nil
}

func credentialPath(key string) string {
	return "/v1/credentials/" + url.PathEscape(key)
}

func (b *Backend) Retrieve(ctx context.Context, key string) (vault.Credential, *errors.XError) {
	resp, xe := b.do(ctx, http.MethodGet, credentialPath(key), nil)
	if xe != nil {
		return vault.Credential{}, xe
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return vault.Credential{}, errors.New(errors.CodeCredNotFound, "credential not found", map[string]any{"key": key})
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return vault.Credential{}, errors.New(errors.CodeRemoteFailed, "remote retrieve failed", map[string]any{"key": key, "status": resp.StatusCode})
	}

	var cp credentialPayload
	if err := json.NewDecoder(resp.Body).Decode(&cp); err != nil {
		return vault.Credential{}, errors.Wrap(errors.CodeRemoteFailed, "invalid retrieve response", map[string]any{"key": key}, err)
	}
	return vault.Credential{Key: key, Value: cp.Value, Meta: cp.Meta}, nil
}

func (b *Backend) Store(ctx context.Context, key string, value []byte, meta vault.Metadata) *errors.XError {
	resp, xe := b.do(ctx, http.MethodPut, credentialPath(key), credentialPayload{Key: key, Value: value, Meta: meta})
	if xe != nil {
		return xe
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New(errors.CodeRemoteFailed, "remote store failed", map[string]any{"key": key, "status": resp.StatusCode})
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) (bool, *errors.XError) {
	resp, xe := b.do(ctx, http.MethodDelete, credentialPath(key), nil)
	if xe != nil {
		return false, xe
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return false, errors.New(errors.CodeRemoteFailed, "remote delete failed", map[string]any{"key": key, "status": resp.StatusCode})
	}

	var dr deleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		// 2xx 无 body 时按已删除处理
		return true, nil
	}
	return dr.Deleted, nil
}

func (b *Backend) List(ctx context.Context, prefix string) ([]string, *errors.XError) {
	path := "/v1/credentials"
	if prefix != "" {
		path += "?prefix=" + url.QueryEscape(prefix)
	}
	resp, xe := b.do(ctx, http.MethodGet, path, nil)
	if xe != nil {
		return nil, xe
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New(errors.CodeRemoteFailed, "remote list failed", map[string]any{"status": resp.StatusCode})
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, errors.Wrap(errors.CodeRemoteFailed, "invalid list response", nil, err)
	}
	out := make([]string, 0, len(lr.Keys))
	for _, k := range lr.Keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (b *Backend) Name() string { return "remote" }

// Close 尽力关闭远端会话；失败不报错。
func (b *Backend) Close() error {
	if b.sessionID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, b.base+"/v1/sessions/"+url.PathEscape(b.sessionID), nil)
	if err != nil {
		return nil
	}
	req.Header.Set(sessionHeader, b.sessionID)
	if resp, err := b.client.Do(req); err == nil {
		_ = resp.Body.Close()
	}
	b.sessionID = ""
	return nil
}
