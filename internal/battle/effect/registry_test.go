package effect

import (
	"errors"
	"testing"

	"CityCard/modules/kit/errx"
)

func TestAdd_屏障合并血量取较长持续(t *testing.T) {
	r := NewRegistry()
	if err := r.Add("甲", PlayerTarget("甲"), Effect{Kind: KindBarrier, RoundsLeft: 2, Payload: &BarrierPayload{Hp: 3000, MaxHp: 3000}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := r.Add("甲", PlayerTarget("甲"), Effect{Kind: KindBarrier, RoundsLeft: 5, Payload: &BarrierPayload{Hp: 1000, MaxHp: 1000}}); err != nil {
		t.Fatalf("add: %v", err)
	}

	all := r.All(KindBarrier, PlayerTarget("甲"))
	if len(all) != 1 {
		t.Fatalf("屏障应合并为 1 条, got=%d", len(all))
	}
	bp := all[0].Payload.(*BarrierPayload)
	if bp.Hp != 4000 || bp.MaxHp != 4000 || all[0].RoundsLeft != 5 {
		t.Fatalf("合并结果错误: hp=%d max=%d rounds=%d", bp.Hp, bp.MaxHp, all[0].RoundsLeft)
	}
}

func TestAdd_永久与限时合并后仍永久(t *testing.T) {
	r := NewRegistry()
	_ = r.Add("甲", CityTarget("甲", "南京市"), Effect{Kind: KindProtection, Magnitude: 1, RoundsLeft: Permanent})
	_ = r.Add("甲", CityTarget("甲", "南京市"), Effect{Kind: KindProtection, Magnitude: 2, RoundsLeft: 3})

	e, ok := r.Query(KindProtection, CityTarget("甲", "南京市"))
	if !ok || e.Magnitude != 3 || e.RoundsLeft != Permanent {
		t.Fatalf("got=%+v", e)
	}
}

func TestAdd_独立叠加不覆盖(t *testing.T) {
	r := NewRegistry()
	target := CityTarget("甲", "苏州市")
	_ = r.Add("甲", target, Effect{Kind: KindPowerMultiplier, Magnitude: 2, RoundsLeft: 1, Source: "a"})
	_ = r.Add("乙", target, Effect{Kind: KindPowerMultiplier, Magnitude: 1.5, RoundsLeft: 1, Source: "b"})

	if got := len(r.All(KindPowerMultiplier, target)); got != 2 {
		t.Fatalf("不同来源的倍率应共存, got=%d", got)
	}
}

func TestAdd_覆盖型后写为准(t *testing.T) {
	r := NewRegistry()
	_ = r.Add("乙", PlayerTarget("乙"), Effect{Kind: KindWave, Payload: &TargetPayload{Player: "甲"}})
	_ = r.Add("乙", PlayerTarget("乙"), Effect{Kind: KindWave, Payload: &TargetPayload{Player: "丙"}})

	e, _ := r.Query(KindWave, PlayerTarget("乙"))
	if e.Payload.(*TargetPayload).Player != "丙" {
		t.Fatalf("覆盖型应保留最后一次写入")
	}
}

func TestAdd_非法输入返回错误(t *testing.T) {
	r := NewRegistry()
	cases := []struct {
		name   string
		target Target
		e      Effect
	}{
		{"未知种类", PlayerTarget("甲"), Effect{Kind: KindUnknown}},
		{"城池级缺城名", PlayerTarget("甲"), Effect{Kind: KindAnchor}},
		{"payload 不匹配", PlayerTarget("甲"), Effect{Kind: KindBarrier, Payload: &FlagPayload{}}},
		{"缺玩家", Target{}, Effect{Kind: KindDesperation}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := r.Add("甲", tc.target, tc.e)
			if !errors.Is(err, errx.ErrInvalidSetup) {
				t.Fatalf("期望 INVALID_SETUP, got=%v", err)
			}
		})
	}
	if r.Len() != 0 {
		t.Fatalf("非法效果不应写入")
	}
}

func TestAdd_不与调用方共享payload(t *testing.T) {
	r := NewRegistry()
	p := &BarrierPayload{Hp: 100, MaxHp: 100}
	_ = r.Add("甲", PlayerTarget("甲"), Effect{Kind: KindBarrier, Payload: p})
	p.Hp = 1

	e, _ := r.Query(KindBarrier, PlayerTarget("甲"))
	if e.Payload.(*BarrierPayload).Hp != 100 {
		t.Fatalf("注册表内 payload 被外部修改")
	}
}

func TestQuery_不存在返回absent(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Query(KindAnchor, CityTarget("无人", "无城")); ok {
		t.Fatalf("期望 absent")
	}
	var nilReg *Registry
	if _, ok := nilReg.Query(KindAnchor, CityTarget("甲", "x")); ok {
		t.Fatalf("nil 注册表期望 absent")
	}
	if r.Consume(KindAnchor, CityTarget("无人", "无城")) {
		t.Fatalf("不存在时 consume 应返回 false")
	}
}

func TestConsumeOne_扣完移除(t *testing.T) {
	r := NewRegistry()
	target := CityTarget("甲", "青岛市")
	_ = r.Add("甲", target, Effect{Kind: KindProtection, Magnitude: 2, RoundsLeft: Permanent})

	if !r.ConsumeOne(KindProtection, target) || !r.Has(KindProtection, target) {
		t.Fatalf("第一次扣层后应仍存在")
	}
	if !r.ConsumeOne(KindProtection, target) || r.Has(KindProtection, target) {
		t.Fatalf("扣完后应移除")
	}
}

func TestRetarget_城池级效果随城易主(t *testing.T) {
	r := NewRegistry()
	_ = r.Add("乙", CityTarget("乙", "广州市"), Effect{Kind: KindAnchor, RoundsLeft: 2})
	_ = r.Add("乙", CityTarget("乙", "广州市"), Effect{Kind: KindPowerAdditive, Magnitude: 100, RoundsLeft: 2})
	_ = r.Add("乙", CityTarget("乙", "深圳市"), Effect{Kind: KindAnchor, RoundsLeft: 2})

	if moved := r.Retarget("乙", "广州市", "甲"); moved != 2 {
		t.Fatalf("moved=%d", moved)
	}
	if r.Has(KindAnchor, CityTarget("乙", "广州市")) || !r.Has(KindAnchor, CityTarget("甲", "广州市")) {
		t.Fatalf("锚定未随城迁移")
	}
	if !r.Has(KindAnchor, CityTarget("乙", "深圳市")) {
		t.Fatalf("其它城池不应受影响")
	}
}

func TestEntries_顺序可复现(t *testing.T) {
	r := NewRegistry()
	_ = r.Add("丙", CityTarget("丙", "b"), Effect{Kind: KindBan})
	_ = r.Add("甲", CityTarget("甲", "z"), Effect{Kind: KindBan})
	_ = r.Add("甲", CityTarget("甲", "a"), Effect{Kind: KindBan})

	got := r.Entries(KindBan)
	if len(got) != 3 || got[0].Target.City != "a" || got[1].Target.City != "z" || got[2].Target.Player != "丙" {
		t.Fatalf("顺序错误: %+v %+v %+v", got[0].Target, got[1].Target, got[2].Target)
	}
}

func TestClone_深拷贝payload(t *testing.T) {
	r := NewRegistry()
	_ = r.Add("甲", PlayerTarget("甲"), Effect{Kind: KindBarrier, Payload: &BarrierPayload{Hp: 10, MaxHp: 10}})
	c := r.Clone()

	e, _ := c.Query(KindBarrier, PlayerTarget("甲"))
	e.Payload.(*BarrierPayload).Hp = 0

	orig, _ := r.Query(KindBarrier, PlayerTarget("甲"))
	if orig.Payload.(*BarrierPayload).Hp != 10 {
		t.Fatalf("克隆修改影响了原注册表")
	}
}

func TestAdd_补全AppliedRound(t *testing.T) {
	r := NewRegistry()
	r.SetRound(4)
	_ = r.Add("甲", PlayerTarget("甲"), Effect{Kind: KindDesperation})
	e, _ := r.Query(KindDesperation, PlayerTarget("甲"))
	if e.AppliedRound != 4 || e.Owner != "甲" {
		t.Fatalf("got=%+v", e)
	}
}
