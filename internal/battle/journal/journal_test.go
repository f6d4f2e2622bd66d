package journal

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"CityCard/modules/kit/logx"
)

func TestTee_同时写入记录器与日志(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := NewRecorder()
	s := Tee(rec, NewZapSink(logx.NewZapLogger(zap.New(core))), nil)

	Publicf(s, "%s 的屏障吸收了 %d 点伤害", "乙", 2000)
	Privatef(s, "甲", "你的 %s 疲劳减半", "南京市")

	if got := rec.PublicLines(); len(got) != 1 || got[0] != "乙 的屏障吸收了 2000 点伤害" {
		t.Fatalf("public=%v", got)
	}
	if got := rec.PrivateLines()["甲"]; len(got) != 1 {
		t.Fatalf("private=%v", got)
	}
	if logs.Len() != 2 {
		t.Fatalf("期望 2 条日志, got=%d", logs.Len())
	}
	if logs.All()[1].ContextMap()["player"] != "甲" {
		t.Fatalf("私密消息应带 player 字段")
	}
}

func TestPublicf_nil安全(t *testing.T) {
	Publicf(nil, "x")
	Privatef(nil, "甲", "x")
	Nop().Public("x")
}
