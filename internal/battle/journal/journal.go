package journal

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"CityCard/modules/kit/logx"
)

// Sink 对局播报的出口：公开消息所有人可见，私密消息只给某个玩家。
type Sink interface {
	Public(msg string)
	Private(player, msg string)
}

func Publicf(s Sink, format string, args ...any) {
	if s == nil {
		return
	}
	s.Public(fmt.Sprintf(format, args...))
}

func Privatef(s Sink, player, format string, args ...any) {
	if s == nil {
		return
	}
	s.Private(player, fmt.Sprintf(format, args...))
}

// Recorder 把消息记下来，用于回合战报和测试断言。
type Recorder struct {
	mu      sync.Mutex
	public  []string
	private map[string][]string
}

func NewRecorder() *Recorder {
	return &Recorder{private: make(map[string][]string)}
}

func (r *Recorder) Public(msg string) {
	r.mu.Lock()
	r.public = append(r.public, msg)
	r.mu.Unlock()
}

func (r *Recorder) Private(player, msg string) {
	r.mu.Lock()
	r.private[player] = append(r.private[player], msg)
	r.mu.Unlock()
}

func (r *Recorder) PublicLines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.public...)
}

func (r *Recorder) PrivateLines() map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]string, len(r.private))
	for k, v := range r.private {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// ZapSink 把播报写进结构化日志，房间与回合由 ctx 上的 logger 带出。
type ZapSink struct {
	log logx.Logger
}

func NewZapSink(l logx.Logger) *ZapSink {
	if l == nil {
		l = logx.Nop()
	}
	return &ZapSink{log: l}
}

func (s *ZapSink) Public(msg string) {
	s.log.Info("battle public", zap.String("msg", msg))
}

func (s *ZapSink) Private(player, msg string) {
	s.log.Debug("battle private", zap.String("player", player), zap.String("msg", msg))
}

type tee []Sink

func (t tee) Public(msg string) {
	for _, s := range t {
		s.Public(msg)
	}
}

func (t tee) Private(player, msg string) {
	for _, s := range t {
		s.Private(player, msg)
	}
}

// Tee 同时写多个 Sink，忽略 nil。
func Tee(sinks ...Sink) Sink {
	out := make(tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type nop struct{}

func (nop) Public(string)          {}
func (nop) Private(string, string) {}

func Nop() Sink {
	return nop{}
}
