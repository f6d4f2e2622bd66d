package service

import (
	"testing"

	"CityCard/internal/battle/effect"
	"CityCard/internal/battle/entity"
)

func TestPreBattle_同省无省会撤军(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 20000), mkCity("苏州市", "江苏省", 8000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 20000), mkCity("无锡市", "江苏省", 6000))
	s := entity.NewEngineState("r", a, b)
	bc := mkBattle(map[string][]string{"甲": {"苏州市"}, "乙": {"无锡市"}})

	r := mustResolve(t, newTestEngine(), s, bc)

	ev := r.Events[entity.PairKey("甲", "乙")]
	if ev == nil || ev.Kind != entity.EventRetreat || ev.Province != "江苏省" {
		t.Fatalf("应产生撤军事件: %+v", ev)
	}
	for _, res := range r.Results {
		if res.SpecialEvent == nil || res.DamageSum() != 0 {
			t.Fatalf("撤军后不应交战: %+v", res)
		}
	}
	if a.Cities["苏州市"].CurrentHp != 8000 || b.Cities["无锡市"].CurrentHp != 6000 {
		t.Fatalf("撤军不应掉血")
	}
	// 撤军的城池仍算上场
	if a.Streaks["苏州市"] != 1 || b.Streaks["无锡市"] != 1 {
		t.Fatalf("streaks: %v %v", a.Streaks, b.Streaks)
	}
	if !s.Visibility.Known("乙", "甲", "无锡市") || !s.Visibility.Known("甲", "乙", "苏州市") {
		t.Fatalf("撤军双方应互相可见")
	}
}

func TestPreBattle_省会归降(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 20000), mkCity("广州市", "广东省", 9000))
	b := mkPlayer("乙", "佛山市", mkCity("佛山市", "广东省", 7000), mkCity("乙二", "四川省", 5000), mkCity("乙三", "四川省", 3000))
	s := entity.NewEngineState("r", a, b)
	bc := mkBattle(map[string][]string{"甲": {"广州市"}, "乙": {"佛山市", "乙二"}})

	r := mustResolve(t, newTestEngine(), s, bc)

	ev := r.Events[entity.PairKey("甲", "乙")]
	if ev == nil || ev.Kind != entity.EventSurrender || ev.Participants[0] != "甲" {
		t.Fatalf("应产生归降事件且胜方在前: %+v", ev)
	}
	if _, ok := a.City("佛山市"); !ok {
		t.Fatalf("佛山市应归甲")
	}
	if _, ok := b.City("佛山市"); ok {
		t.Fatalf("乙不应再拥有佛山市")
	}
	if _, ok := b.City("乙二"); !ok {
		t.Fatalf("外省城池不受归降影响")
	}
	if b.Center != "乙二" || b.Eliminated {
		t.Fatalf("乙应以最强存活城池为新主城: center=%s eliminated=%v", b.Center, b.Eliminated)
	}
	if a.Streaks["佛山市"] != 1 {
		t.Fatalf("上场记录应随城池转移: %v", a.Streaks)
	}
	for _, res := range r.Results {
		if res.DamageSum() != 0 {
			t.Fatalf("归降后不应交战")
		}
	}
}

func TestPreBattle_双方都有省会按撤军(t *testing.T) {
	gz := mkCity("广州市", "广东省", 9000)
	yc := mkCity("羊城", "广东省", 9000)
	yc.ProvincialCapital = true
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 20000), gz)
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 20000), yc)
	s := entity.NewEngineState("r", a, b)
	bc := mkBattle(map[string][]string{"甲": {"广州市"}, "乙": {"羊城"}})

	r := mustResolve(t, newTestEngine(), s, bc)
	ev := r.Events[entity.PairKey("甲", "乙")]
	if ev == nil || ev.Kind != entity.EventRetreat {
		t.Fatalf("双方都有省会应撤军: %+v", ev)
	}
	if len(a.Cities) != 2 || len(b.Cities) != 2 {
		t.Fatalf("撤军不转移城池")
	}
}

func disguised(name string, hp int) effect.Effect {
	return effect.Effect{Kind: effect.KindDisguise, RoundsLeft: 2, Payload: &effect.DisguisePayload{FakeName: name, FakeHp: hp}}
}

func TestPreBattle_伪装成省会迫使归降(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 20000), mkCity("佛山市", "广东省", 7000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 20000), mkCity("东莞市", "广东省", 6000))
	s := entity.NewEngineState("r", a, b)
	mustAdd(t, s, "甲", effect.CityTarget("甲", "佛山市"), disguised("广州市", 5000))
	bc := mkBattle(map[string][]string{"甲": {"佛山市"}, "乙": {"东莞市"}})

	r := mustResolve(t, newTestEngine(), s, bc)
	ev := r.Events[entity.PairKey("甲", "乙")]
	if ev == nil || ev.Kind != entity.EventSurrender || ev.Participants[0] != "甲" {
		t.Fatalf("伪装成广州市应按省会归降处理: %+v", ev)
	}
	if _, ok := a.City("东莞市"); !ok {
		t.Fatalf("东莞市应归甲")
	}
}

func TestPreBattle_省会伪装成别城不算省会(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 20000), mkCity("广州市", "广东省", 9000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 20000), mkCity("佛山市", "广东省", 7000))
	s := entity.NewEngineState("r", a, b)
	mustAdd(t, s, "甲", effect.CityTarget("甲", "广州市"), disguised("东莞市", 3000))
	bc := mkBattle(map[string][]string{"甲": {"广州市"}, "乙": {"佛山市"}})

	r := mustResolve(t, newTestEngine(), s, bc)
	if ev := r.Events[entity.PairKey("甲", "乙")]; ev == nil || ev.Kind != entity.EventRetreat {
		t.Fatalf("伪装后的广州市不算省会，应撤军: %+v", ev)
	}
	if _, ok := b.City("佛山市"); !ok {
		t.Fatalf("撤军不转移城池")
	}
}

func TestPreBattle_伪装血量耗尽露出本名(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 20000), mkCity("广州市", "广东省", 9000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 20000), mkCity("佛山市", "广东省", 7000))
	s := entity.NewEngineState("r", a, b)
	mustAdd(t, s, "甲", effect.CityTarget("甲", "广州市"), disguised("东莞市", 0))
	bc := mkBattle(map[string][]string{"甲": {"广州市"}, "乙": {"佛山市"}})

	r := mustResolve(t, newTestEngine(), s, bc)
	if ev := r.Events[entity.PairKey("甲", "乙")]; ev == nil || ev.Kind != entity.EventSurrender {
		t.Fatalf("伪装血量为 0 时按本名广州市算省会: %+v", ev)
	}
}

func TestPreBattle_伪装城池归降时自毁(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 20000), mkCity("广州市", "广东省", 9000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 20000), mkCity("佛山市", "广东省", 7000), mkCity("东莞市", "广东省", 6000))
	b.Gold = 20
	s := entity.NewEngineState("r", a, b)
	mustAdd(t, s, "乙", effect.CityTarget("乙", "佛山市"), effect.Effect{Kind: effect.KindDisguise, RoundsLeft: 2})
	bc := mkBattle(map[string][]string{"甲": {"广州市"}, "乙": {"佛山市", "东莞市"}})

	r := mustResolve(t, newTestEngine(), s, bc)

	fs, ok := b.City("佛山市")
	if !ok || fs.IsAlive() || fs.CurrentHp != 0 {
		t.Fatalf("伪装城池应自毁并留在原主名下: %+v", fs)
	}
	if _, ok := a.City("东莞市"); !ok {
		t.Fatalf("东莞市应归降")
	}
	// 20 - 9 罚金 + 3 基础收入
	if r.Gold["乙"] != 14 || b.Gold != 14 {
		t.Fatalf("gold=%d report=%d", b.Gold, r.Gold["乙"])
	}
	if s.Registry.Has(effect.KindDisguise, effect.CityTarget("乙", "佛山市")) {
		t.Fatalf("自毁后伪装效果应移除")
	}
}

func TestPreBattle_易帜改变省份(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 20000), mkCity("苏州市", "江苏省", 8000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 20000), mkCity("无锡市", "江苏省", 6000))
	s := entity.NewEngineState("r", a, b)
	mustAdd(t, s, "乙", effect.CityTarget("乙", "无锡市"), effect.Effect{
		Kind: effect.KindFlagChange, RoundsLeft: 1, Payload: &effect.FlagPayload{Province: "浙江省"},
	})
	bc := mkBattle(map[string][]string{"甲": {"苏州市"}, "乙": {"无锡市"}})

	r := mustResolve(t, newTestEngine(), s, bc)
	if len(r.Events) != 0 {
		t.Fatalf("易帜后不再同省: %v", r.Events)
	}
	if b.Cities["无锡市"].CurrentHp >= 6000 {
		t.Fatalf("应正常交战")
	}
}

func TestPreBattle_迷惑双方未出战不返还(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 20000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 20000))
	a.Gold = 5
	s := entity.NewEngineState("r", a, b)
	mustAdd(t, s, "甲", effect.PlayerTarget("甲"), effect.Effect{
		Kind: effect.KindConfusion, RoundsLeft: 1, Payload: &effect.TargetPayload{Player: "乙"},
	})
	bc := mkBattle(map[string][]string{"甲": {}, "乙": {}})

	mustResolve(t, newTestEngine(), s, bc)
	// 5 + 3 基础收入，不返还
	if a.Gold != 8 {
		t.Fatalf("gold=%d", a.Gold)
	}
	if s.Registry.Has(effect.KindConfusion, effect.PlayerTarget("甲")) {
		t.Fatalf("迷惑应被消耗")
	}
}

func TestPreBattle_迷惑出战城池都不可交换返还金币(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 20000), mkCity("甲一", "河南省", 3000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 20000), mkCity("乙一", "湖南省", 4000))
	s := entity.NewEngineState("r", a, b)
	mustAdd(t, s, "甲", effect.PlayerTarget("甲"), effect.Effect{
		Kind: effect.KindConfusion, RoundsLeft: 1, Payload: &effect.TargetPayload{Player: "乙"},
	})
	mustAdd(t, s, "甲", effect.CityTarget("甲", "甲一"), effect.Effect{Kind: effect.KindAnchor, RoundsLeft: 1})
	mustAdd(t, s, "乙", effect.CityTarget("乙", "乙一"), effect.Effect{Kind: effect.KindAnchor, RoundsLeft: 1})
	bc := mkBattle(map[string][]string{"甲": {"甲一"}, "乙": {"乙一"}})

	mustResolve(t, newTestEngine(), s, bc)
	// 10 返还 + 3 基础收入
	if a.Gold != 13 {
		t.Fatalf("gold=%d", a.Gold)
	}
	if _, ok := a.City("甲一"); !ok {
		t.Fatalf("坚守城池不应被交换")
	}
	if a.Cities["甲一"].CurrentHp != 3000 || b.Cities["乙一"].CurrentHp != 4000 {
		t.Fatalf("坚守城池不应掉血")
	}
}

func TestPreBattle_迷惑单方无城落空(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 20000), mkCity("甲一", "河南省", 3000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 20000))
	s := entity.NewEngineState("r", a, b)
	mustAdd(t, s, "甲", effect.PlayerTarget("甲"), effect.Effect{
		Kind: effect.KindConfusion, RoundsLeft: 1, Payload: &effect.TargetPayload{Player: "乙"},
	})
	bc := mkBattle(map[string][]string{"甲": {"甲一"}, "乙": {}})

	mustResolve(t, newTestEngine(), s, bc)
	if a.Gold != 3 {
		t.Fatalf("单方无城不返还, gold=%d", a.Gold)
	}
	if _, ok := a.City("甲一"); !ok {
		t.Fatalf("不应交换")
	}
}

func TestPreBattle_迷惑交换城池(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 20000), mkCity("甲一", "河南省", 3000))
	b := mkPlayer("乙", "乙都", mkCity("乙都", "四川省", 20000), mkCity("乙一", "湖南省", 4000))
	s := entity.NewEngineState("r", a, b)
	mustAdd(t, s, "甲", effect.PlayerTarget("甲"), effect.Effect{
		Kind: effect.KindConfusion, RoundsLeft: 1, Payload: &effect.TargetPayload{Player: "乙"},
	})
	mustAdd(t, s, "乙", effect.CityTarget("乙", "乙一"), effect.Effect{Kind: effect.KindVeteran, RoundsLeft: effect.Permanent})
	bc := mkBattle(map[string][]string{"甲": {"甲一"}, "乙": {"乙一"}})

	r := mustResolve(t, newTestEngine(), s, bc)

	if _, ok := a.City("乙一"); !ok {
		t.Fatalf("甲应得到乙一")
	}
	if _, ok := b.City("甲一"); !ok {
		t.Fatalf("乙应得到甲一")
	}
	if !s.Registry.Has(effect.KindVeteran, effect.CityTarget("甲", "乙一")) {
		t.Fatalf("城池效果应跟随城池")
	}
	for _, res := range r.Results {
		if res.DamageSum() != 0 {
			t.Fatalf("迷惑后双方出战取消")
		}
	}
	if a.Streaks["乙一"] != 1 || b.Streaks["甲一"] != 1 {
		t.Fatalf("上场记录应随城池转移: %v %v", a.Streaks, b.Streaks)
	}
}

func TestPreBattle_海啸(t *testing.T) {
	a := mkPlayer("甲", "甲都", mkCity("甲都", "山东省", 20000))
	b := mkPlayer("乙", "深圳市",
		mkCity("深圳市", "广东省", 10000),
		mkCity("珠海市", "广东省", 8000),
		mkCity("汕头市", "广东省", 6000),
		mkCity("湛江市", "广东省", 4000),
		mkCity("内陆", "广东省", 2000),
	)
	s := entity.NewEngineState("r", a, b)
	mustAdd(t, s, "甲", effect.PlayerTarget("甲"), effect.Effect{
		Kind: effect.KindWave, RoundsLeft: 1, Payload: &effect.TargetPayload{Player: "乙"},
	})
	mustAdd(t, s, "乙", effect.PlayerTarget("乙"), effect.Effect{Kind: effect.KindMirage, Magnitude: 1, RoundsLeft: 1})
	mustAdd(t, s, "乙", effect.CityTarget("乙", "珠海市"), effect.Effect{Kind: effect.KindIronShield, Magnitude: 1, RoundsLeft: 1})
	mustAdd(t, s, "乙", effect.CityTarget("乙", "汕头市"), effect.Effect{Kind: effect.KindProtection, Magnitude: 1, RoundsLeft: 1})
	bc := mkBattle(map[string][]string{"甲": {}, "乙": {"深圳市", "珠海市", "汕头市", "湛江市", "内陆"}})

	mustResolve(t, newTestEngine(), s, bc)

	want := map[string]int{"深圳市": 10000, "珠海市": 8000, "汕头市": 6000, "湛江市": 2000, "内陆": 2000}
	for name, hp := range want {
		if got := b.Cities[name].CurrentHp; got != hp {
			t.Fatalf("%s cur=%d want=%d", name, got, hp)
		}
	}
	if s.Registry.Has(effect.KindProtection, effect.CityTarget("乙", "汕头市")) {
		t.Fatalf("保护应被消耗一层")
	}
	if !s.Registry.Has(effect.KindIronShield, effect.CityTarget("乙", "珠海市")) {
		t.Fatalf("铁壁不消耗")
	}
	if s.Registry.Has(effect.KindWave, effect.PlayerTarget("甲")) {
		t.Fatalf("海啸应被消耗")
	}
}
