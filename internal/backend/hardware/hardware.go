// Package hardware 实现安全元件（secure element）backend。
//
// 设备暴露为字符设备或 unix socket（配置 device 路径），走请求/响应
// 二进制帧协议：
//
//	请求：1B op（'R'|'S'|'D'|'L'）| uvarint len(key) | key | uvarint len(payload) | payload
//	响应：1B status（0=OK 1=NOT_FOUND 2=ERR）| uvarint len(payload) | payload
//
// STORE 的 payload 是 JSON 信封（value + meta），设备侧只存不解析；
// LIST 的 key 字段是前缀，响应 payload 是 JSON 的 key 数组。
package hardware

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/vault"
)

func init() {
	vault.Register("hardware", factory{})
}

const (
	opRetrieve = 'R'
	opStore    = 'S'
	opDelete   = 'D'
	opList     = 'L'

	statusOK       = 0
	statusNotFound = 1
	statusErr      = 2
)

// maxFrame 限制单帧 payload，防御失控设备。
const maxFrame = 1 << 20

// Opener 打开设备路径；可注入（测试用 net.Pipe）。
type Opener func(path string) (io.ReadWriteCloser, error)

func defaultOpener(path string) (io.ReadWriteCloser, error) {
	return os.OpenFile(path, os.O_RDWR, 0)
}

type factory struct{}

func (factory) Open(_ context.Context, opts vault.Options) (vault.Backend, *errors.XError) {
	if opts.Device == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "hardware backend requires device path", nil)
	}
	return Open(opts.Device, defaultOpener)
}

type envelope struct {
	Value []byte         `json:"value"`
	Meta  vault.Metadata `json:"meta"`
}

type Backend struct {
	mu     sync.Mutex
	device string
	conn   io.ReadWriteCloser
	r      *bufio.Reader
	w      *bufio.Writer
}

// Open 打开设备并建立会话。
func Open(device string, open Opener) (*Backend, *errors.XError) {
	conn, err := open(device)
	if err != nil {
		return nil, errors.Wrap(errors.CodeHWDeviceFailed, "failed to open hardware device", map[string]any{"device": device}, err)
	}
	return NewConn(device, conn), nil
}

// NewConn 在已建立的连接上构造 backend（测试入口）。
func NewConn(device string, conn io.ReadWriteCloser) *Backend {
	return &Backend{
		device: device,
		conn:   conn,
		r:      bufio.NewReader(conn),
		w:      bufio.NewWriter(conn),
	}
}

func writeBytes(w *bufio.Writer, b []byte) error {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(b)))
	if _, err := w.Write(lenBuf[:n]); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r *bufio.Reader) ([]byte, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n > maxFrame {
		return nil, io.ErrUnexpectedEOF
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// roundTrip 发送一帧并等待响应；设备 I/O 错误 → AVP_HW_DEVICE_FAILED。
func (b *Backend) roundTrip(op byte, key string, payload []byte) (byte, []byte, *errors.XError) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fail := func(err error) (byte, []byte, *errors.XError) {
		return 0, nil, errors.Wrap(errors.CodeHWDeviceFailed, "hardware device i/o failed", map[string]any{"device": b.device}, err)
	}

	if err := b.w.WriteByte(op); err != nil {
		return fail(err)
	}
	if err := writeBytes(b.w, []byte(key)); err != nil {
		return fail(err)
	}
	if err := writeBytes(b.w, payload); err != nil {
		return fail(err)
	}
	if err := b.w.Flush(); err != nil {
		return fail(err)
	}

	status, err := b.r.ReadByte()
	if err != nil {
		return fail(err)
	}
	resp, err := readBytes(b.r)
	if err != nil {
		return fail(err)
	}
	return status, resp, nil
}

func (b *Backend) Retrieve(_ context.Context, key string) (vault.Credential, *errors.XError) {
	status, resp, xe := b.roundTrip(opRetrieve, key, nil)
	if xe != nil {
		return vault.Credential{}, xe
	}
	switch status {
	case statusOK:
		var env envelope
		if err := json.Unmarshal(resp, &env); err != nil {
			return vault.Credential{}, errors.Wrap(errors.CodeHWDeviceFailed, "hardware device returned invalid entry", map[string]any{"device": b.device}, err)
		}
		return vault.Credential{Key: key, Value: env.Value, Meta: env.Meta}, nil
	case statusNotFound:
		return vault.Credential{}, errors.New(errors.CodeCredNotFound, "credential not found", map[string]any{"key": key})
	default:
		return vault.Credential{}, errors.New(errors.CodeHWDeviceFailed, "hardware device reported error", map[string]any{"device": b.device, "detail": string(resp)})
	}
}

func (b *Backend) Store(_ context.Context, key string, value []byte, meta vault.Metadata) *errors.XError {
	payload, err := json.Marshal(envelope{Value: value, Meta: meta})
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to encode entry", nil, err)
	}
	status, resp, xe := b.roundTrip(opStore, key, payload)
	if xe != nil {
		return xe
	}
	if status != statusOK {
		return errors.New(errors.CodeHWDeviceFailed, "hardware device rejected store", map[string]any{"device": b.device, "detail": string(resp)})
	}
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) (bool, *errors.XError) {
	status, resp, xe := b.roundTrip(opDelete, key, nil)
	if xe != nil {
		return false, xe
	}
	switch status {
	case statusOK:
		return true, nil
	case statusNotFound:
		return false, nil
	default:
		return false, errors.New(errors.CodeHWDeviceFailed, "hardware device rejected delete", map[string]any{"device": b.device, "detail": string(resp)})
	}
}

func (b *Backend) List(_ context.Context, prefix string) ([]string, *errors.XError) {
	status, resp, xe := b.roundTrip(opList, prefix, nil)
	if xe != nil {
		return nil, xe
	}
	if status != statusOK {
		return nil, errors.New(errors.CodeHWDeviceFailed, "hardware device rejected list", map[string]any{"device": b.device, "detail": string(resp)})
	}
	var keys []string
	if err := json.Unmarshal(resp, &keys); err != nil {
		return nil, errors.Wrap(errors.CodeHWDeviceFailed, "hardware device returned invalid key list", map[string]any{"device": b.device}, err)
	}
	return keys, nil
}

func (b *Backend) Name() string { return "hardware" }

func (b *Backend) Close() error {
	return b.conn.Close()
}
