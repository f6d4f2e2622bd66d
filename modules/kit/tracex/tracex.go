package tracex

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

type traceIDKey struct{}
type roomKey struct{}
type roundKey struct{}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func TraceIDFrom(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(traceIDKey{}).(string)
	return s, ok && s != ""
}

// WithRound 把房间与回合号挂到 ctx 上，日志适配器会自动带出。
func WithRound(ctx context.Context, room string, round int) context.Context {
	ctx = context.WithValue(ctx, roomKey{}, room)
	return context.WithValue(ctx, roundKey{}, round)
}

func RoomFrom(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(roomKey{}).(string)
	return s, ok && s != ""
}

func RoundFrom(ctx context.Context) (int, bool) {
	n, ok := ctx.Value(roundKey{}).(int)
	return n, ok
}

// NewTraceID 生成 16 字节随机 trace_id（hex）。
func NewTraceID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}
