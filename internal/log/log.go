package log

import (
	"io"
	"log/slog"
)

// New 返回写入到 w 的 slog.Logger（默认 level=INFO）。
// 注意：stdout=数据，日志应始终写 stderr（由调用方传入）。
// 禁止在日志里输出 secret 值；key 名可以。
func New(w io.Writer) *slog.Logger {
	return NewLevel(w, slog.LevelInfo)
}

// NewLevel 同 New，但指定最低日志级别（--debug 时用 LevelDebug）。
func NewLevel(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
