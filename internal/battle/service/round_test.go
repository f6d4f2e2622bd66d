package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"CityCard/internal/battle/effect"
	"CityCard/internal/battle/entity"
	"CityCard/internal/shared/metrics"
	"CityCard/modules/kit/errx"
)

func duel() (*entity.EngineState, *entity.Player, *entity.Player) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 30000), mkCity("甲锋", "河南省", 10000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 30000), mkCity("乙锋", "湖南省", 3000), mkCity("乙后", "湖北省", 2000))
	return entity.NewEngineState("room-1", a, b), a, b
}

func TestResolveRound_开局校验(t *testing.T) {
	e := newTestEngine()
	if _, err := e.ResolveRound(context.Background(), nil, nil); !errors.Is(err, ErrNilState) {
		t.Fatalf("nil state err=%v", err)
	}
	if _, err := e.ResolveRound(context.Background(), entity.NewEngineState("r"), nil); err == nil {
		t.Fatalf("无玩家应报错")
	}
	s := entity.NewEngineState("r", mkPlayer("甲", ""), mkPlayer("甲", ""))
	_, err := e.ResolveRound(context.Background(), s, nil)
	var xe *errx.Error
	if !errors.As(err, &xe) || xe.Code() != errx.CodeInvalidSetup {
		t.Fatalf("重名应报 INVALID_SETUP, err=%v", err)
	}
	if s.Round != 1 {
		t.Fatalf("校验失败不推进回合")
	}
}

func TestResolveRound_快照结算(t *testing.T) {
	s, a, b := duel()
	bc := mkBattle(map[string][]string{"甲": {"甲锋"}, "乙": {"乙锋"}})

	r := mustResolve(t, newTestEngine(), s, bc)

	ra := resultOf(t, r, "甲")
	if ra.Damage["乙锋"] != 3000 || ra.RemainingDamage != 7000 {
		t.Fatalf("甲: %+v", ra)
	}
	// 乙锋虽被攻破，攻击力取自结算前快照
	rb := resultOf(t, r, "乙")
	if rb.TotalAttackPower != 3000 || a.Cities["甲锋"].CurrentHp != 7000 {
		t.Fatalf("乙: total=%d 甲锋=%d", rb.TotalAttackPower, a.Cities["甲锋"].CurrentHp)
	}
	if b.Cities["乙锋"].IsAlive() {
		t.Fatalf("乙锋应阵亡")
	}
	if s.Round != 2 || r.Round != 1 || r.Room != "room-1" {
		t.Fatalf("round=%d report round=%d room=%s", s.Round, r.Round, r.Room)
	}
	if r.Gold["甲"] != 4 || r.Gold["乙"] != 3 {
		t.Fatalf("gold=%v", r.Gold)
	}
	if r.ID == 0 || len(r.Public) == 0 {
		t.Fatalf("战报应有编号和公开日志")
	}
	for _, res := range r.Results {
		checkConservation(t, res)
		checkDestroyed(t, s, res)
	}
	checkHpBounds(t, s)
}

func TestResolveRound_疲劳跨回合(t *testing.T) {
	s, a, _ := duel()
	e := newTestEngine()

	mustResolve(t, e, s, mkBattle(map[string][]string{"甲": {"甲锋"}, "乙": {}}))
	if a.Streaks["甲锋"] != 1 {
		t.Fatalf("streak=%d", a.Streaks["甲锋"])
	}

	r := mustResolve(t, e, s, mkBattle(map[string][]string{"甲": {"甲锋"}, "乙": {}}))
	if len(r.Fatigue) != 1 || r.Fatigue[0].HpBefore != 10000 || r.Fatigue[0].HpAfter != 5000 {
		t.Fatalf("fatigue=%+v", r.Fatigue)
	}
	if a.Cities["甲锋"].CurrentHp != 5000 || a.Streaks["甲锋"] != 2 {
		t.Fatalf("cur=%d streak=%d", a.Cities["甲锋"].CurrentHp, a.Streaks["甲锋"])
	}

	mustResolve(t, e, s, mkBattle(map[string][]string{"甲": {}, "乙": {}}))
	if a.Streaks["甲锋"] != 0 {
		t.Fatalf("休息一回合应清零: %d", a.Streaks["甲锋"])
	}
}

func TestResolveRound_老兵免疫疲劳(t *testing.T) {
	s, a, _ := duel()
	mustAdd(t, s, "甲", effect.CityTarget("甲", "甲锋"), effect.Effect{Kind: effect.KindVeteran, RoundsLeft: effect.Permanent})
	e := newTestEngine()
	for i := 0; i < 3; i++ {
		mustResolve(t, e, s, mkBattle(map[string][]string{"甲": {"甲锋"}, "乙": {}}))
	}
	if a.Cities["甲锋"].CurrentHp != 10000 || a.Streaks["甲锋"] != 3 {
		t.Fatalf("cur=%d streak=%d", a.Cities["甲锋"].CurrentHp, a.Streaks["甲锋"])
	}
}

func TestResolveRound_出战名单清洗(t *testing.T) {
	s, a, b := duel()
	mustAdd(t, s, "乙", effect.CityTarget("乙", "乙后"), effect.Effect{Kind: effect.KindBan, RoundsLeft: 1})
	bc := mkBattle(map[string][]string{
		"甲": {"甲锋", "甲锋", "幽灵"},
		"乙": {"乙后"},
		"丙": {"丙城"},
	})

	r := mustResolve(t, newTestEngine(), s, bc)

	if got := r.Fielded["甲"]; len(got) != 1 || got[0] != "甲锋" {
		t.Fatalf("fielded 甲=%v", got)
	}
	if r.Fielded.Contains("乙", "乙后") || b.Streaks["乙后"] != 0 {
		t.Fatalf("禁赛城池不算上场")
	}
	if len(r.Warnings) < 2 {
		t.Fatalf("缺失城池与未知玩家应各记一条警告: %v", r.Warnings)
	}
	if a.Streaks["甲锋"] != 1 {
		t.Fatalf("重复出战只算一次: %d", a.Streaks["甲锋"])
	}
	if !s.Visibility.Known("甲", "乙", "甲锋") {
		t.Fatalf("出战城池应对对手可见")
	}
}

func TestResolveRound_过期事件丢弃(t *testing.T) {
	s, _, b := duel()
	bc := mkBattle(map[string][]string{"甲": {"甲锋"}, "乙": {"乙锋"}})
	bc.SetEvent("甲", "乙", &entity.SpecialEvent{Kind: entity.EventRetreat, Round: 0})

	r := mustResolve(t, newTestEngine(), s, bc)
	if len(r.Events) != 0 || len(r.Warnings) == 0 {
		t.Fatalf("过期事件应丢弃并告警: events=%v warnings=%v", r.Events, r.Warnings)
	}
	if b.Cities["乙锋"].IsAlive() {
		t.Fatalf("事件丢弃后应正常交战")
	}
}

func TestResolveRound_本回合事件阻止交战(t *testing.T) {
	s, _, b := duel()
	bc := mkBattle(map[string][]string{"甲": {"甲锋"}, "乙": {"乙锋"}})
	bc.SetEvent("甲", "乙", &entity.SpecialEvent{Kind: entity.EventRetreat, Round: 1, Participants: []string{"甲", "乙"}})

	r := mustResolve(t, newTestEngine(), s, bc)
	if r.Events[entity.PairKey("甲", "乙")] == nil {
		t.Fatalf("本回合事件应保留")
	}
	if b.Cities["乙锋"].CurrentHp != 3000 {
		t.Fatalf("不应交战")
	}
}

func TestResolveRound_主城陷落出局(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 30000), mkCity("甲锋", "河南省", 10000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 1000), mkCity("乙后", "湖北省", 2000))
	s := entity.NewEngineState("r", a, b)
	bc := mkBattle(map[string][]string{"甲": {"甲锋"}, "乙": {"乙都"}})

	r := mustResolve(t, newTestEngine(), s, bc)
	if !b.Eliminated || len(r.Eliminated) != 1 || r.Eliminated[0] != "乙" {
		t.Fatalf("乙应出局: %v", r.Eliminated)
	}
	if r.Gold["乙"] != 0 {
		t.Fatalf("出局玩家没有收入: %d", r.Gold["乙"])
	}
	if len(s.Active()) != 1 {
		t.Fatalf("active=%d", len(s.Active()))
	}
}

func TestResolveRound_登高台继任主城(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 30000), mkCity("甲锋", "河南省", 10000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 1000), mkCity("乙后", "湖北省", 2000), mkCity("乙高", "湖北省", 1500))
	s := entity.NewEngineState("r", a, b)
	mustAdd(t, s, "乙", effect.CityTarget("乙", "乙高"), effect.Effect{Kind: effect.KindElevatedSeat, RoundsLeft: effect.Permanent})
	bc := mkBattle(map[string][]string{"甲": {"甲锋"}, "乙": {"乙都"}})

	r := mustResolve(t, newTestEngine(), s, bc)
	if b.Eliminated || len(r.Eliminated) != 0 {
		t.Fatalf("有登高台不应出局")
	}
	if b.Center != "乙高" {
		t.Fatalf("center=%s", b.Center)
	}
	if s.Registry.Has(effect.KindElevatedSeat, effect.CityTarget("乙", "乙高")) {
		t.Fatalf("继任后登高台消耗")
	}
}

func TestResolveRound_金币上限(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 30000), mkCity("甲锋", "河南省", 10000))
	a.Gold = 23
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 30000), mkCity("乙一", "湖北省", 1000), mkCity("乙二", "湖北省", 1000))
	s := entity.NewEngineState("r", a, b)
	bc := mkBattle(map[string][]string{"甲": {"甲锋"}, "乙": {"乙一", "乙二"}})

	r := mustResolve(t, newTestEngine(), s, bc)
	if len(resultOf(t, r, "甲").DestroyedCityNames) != 2 {
		t.Fatalf("应攻破两座城")
	}
	if a.Gold != DefaultRules().GoldCap {
		t.Fatalf("gold=%d", a.Gold)
	}
}

func TestResolveRound_屏障反弹击破计入防守方(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 30000), mkCity("甲锋", "河南省", 10000), mkCity("甲弱", "河南省", 1000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 30000), mkCity("乙一", "湖南省", 50000))
	s := entity.NewEngineState("r", a, b)
	mustAdd(t, s, "乙", effect.PlayerTarget("乙"), effect.Effect{
		Kind: effect.KindBarrier, RoundsLeft: effect.Permanent,
		Payload: &effect.BarrierPayload{Hp: 4000, MaxHp: 4000},
	})
	// 乙一 攻击力压到 1，乙本方不会正面击破任何城池
	mustAdd(t, s, "甲", effect.CityTarget("乙", "乙一"), effect.Effect{Kind: effect.KindForcedWeakness, RoundsLeft: 1})
	bc := mkBattle(map[string][]string{"甲": {"甲锋", "甲弱"}, "乙": {"乙一"}})

	r := mustResolve(t, newTestEngine(), s, bc)

	ra := resultOf(t, r, "甲")
	if len(ra.ReflectDestroyed) != 1 || ra.ReflectDestroyed[0] != "甲弱" {
		t.Fatalf("甲弱应被反弹击破: %v", ra.ReflectDestroyed)
	}
	if len(resultOf(t, r, "乙").DestroyedCityNames) != 0 {
		t.Fatalf("乙不应正面击破城池")
	}
	// 乙：3 基础 + 1 反弹击破；甲：3 基础
	if r.Gold["乙"] != 4 || r.Gold["甲"] != 3 {
		t.Fatalf("gold=%v", r.Gold)
	}
}

func TestResolveRound_缺主城补齐(t *testing.T) {
	a := mkPlayer("甲", "", mkCity("甲小", "山东省", 1000), mkCity("甲大", "山东省", 9000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 30000))
	s := entity.NewEngineState("r", a, b)

	r := mustResolve(t, newTestEngine(), s, mkBattle(nil))
	if a.Center != "甲大" || len(r.Warnings) == 0 {
		t.Fatalf("center=%s warnings=%v", a.Center, r.Warnings)
	}
}

func TestResolveRound_多人指定对手(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 30000), mkCity("甲锋", "河南省", 1000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 30000), mkCity("乙锋", "湖南省", 1000))
	c := mkPlayer("丙", "丙都", mkCity("丙都", "云南省", 30000), mkCity("丙锋", "贵州省", 1000))
	s := entity.NewEngineState("r", a, b, c)
	bc := mkBattle(map[string][]string{"甲": {"甲锋"}, "乙": {"乙锋"}, "丙": {"丙锋"}})
	bc.Targets = map[string]string{"甲": "丙", "乙": "乙"}

	r := mustResolve(t, newTestEngine(), s, bc)
	if len(r.Results) != 3 {
		t.Fatalf("results=%d", len(r.Results))
	}
	if got := resultOf(t, r, "甲").Defender; got != "丙" {
		t.Fatalf("甲 应打丙: %s", got)
	}
	// 指定自己无效，回退到下一位
	if got := resultOf(t, r, "乙").Defender; got != "丙" {
		t.Fatalf("乙 应回退打丙: %s", got)
	}
	if got := resultOf(t, r, "丙").Defender; got != "甲" {
		t.Fatalf("丙 应打甲: %s", got)
	}
}

func TestResolveRound_同种子结果一致(t *testing.T) {
	run := func() []int {
		a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 30000))
		b := mkPlayer("乙", "深圳市", mkCity("深圳市", "广东省", 20000))
		s := entity.NewEngineState("r", a, b)
		e := newTestEngine(WithRules(DefaultRules()))
		var hps []int
		for i := 0; i < 5; i++ {
			mustAdd(t, s, "甲", effect.PlayerTarget("甲"), effect.Effect{
				Kind: effect.KindWave, RoundsLeft: 1, Payload: &effect.TargetPayload{Player: "乙"},
			})
			mustAdd(t, s, "乙", effect.PlayerTarget("乙"), effect.Effect{Kind: effect.KindMirage, Magnitude: 0.5, RoundsLeft: 1})
			mustResolve(t, e, s, mkBattle(map[string][]string{"甲": {}, "乙": {"深圳市"}}))
			hps = append(hps, b.Cities["深圳市"].CurrentHp)
		}
		return hps
	}
	x, y := run(), run()
	for i := range x {
		if x[i] != y[i] {
			t.Fatalf("同种子结果不同: %v vs %v", x, y)
		}
	}
}

func TestResolveRound_指标(t *testing.T) {
	m := metrics.NewBattleMetrics("test", prometheus.NewRegistry())
	s, _, _ := duel()
	e := newTestEngine(WithMetrics(m))
	mustResolve(t, e, s, mkBattle(map[string][]string{"甲": {"甲锋"}, "乙": {"乙锋"}}))

	if got := testutil.ToFloat64(m.RoundsTotal); got != 1 {
		t.Fatalf("rounds=%v", got)
	}
	if got := testutil.ToFloat64(m.DestroyedCitiesTotal); got != 1 {
		t.Fatalf("destroyed=%v", got)
	}
}
