package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"CityCard/internal/battle/effect"
	"CityCard/modules/kit/errx"
)

const sample = `
room: demo
round: 3
players:
  - name: 甲
    gold: 5
    center: 南京市
    streaks: {苏州市: 1}
    cities:
      - {name: 南京市, province: 江苏省, hp: 20000}
      - {name: 苏州市, province: 江苏省, hp: 8000, current_hp: 6000}
      - {name: 扬州市, province: 江苏省, hp: 4000, current_hp: 0}
  - name: 乙
    center: 成都市
    cities:
      - {name: 成都市, province: 四川省, hp: 18000}
      - {name: 无锡市, province: 江苏省, hp: 7000, coastal: true}
effects:
  - {kind: barrier, player: 乙, hp: 3000, rounds: 2}
  - {kind: capture-leader, player: 甲, target_player: 乙}
rounds:
  - deployment: {甲: [苏州市], 乙: 无锡市}
  - 甲: [苏州市, 南京市]
    乙: []
  - deployment: {甲: [苏州市]}
    targets: {甲: 乙}
`

func TestParse_完整快照(t *testing.T) {
	s, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	st := s.State
	if st.Room != "demo" || st.Round != 3 || st.Registry.Round() != 3 {
		t.Fatalf("room=%s round=%d", st.Room, st.Round)
	}
	a, ok := st.Player("甲")
	if !ok || a.Gold != 5 || a.Center != "南京市" || a.Streaks["苏州市"] != 1 {
		t.Fatalf("甲=%+v", a)
	}
	sz := a.Cities["苏州市"]
	if sz.Hp != 8000 || sz.BaseHp != 8000 || sz.CurrentHp != 6000 || !sz.Alive {
		t.Fatalf("苏州市=%+v", sz)
	}
	if a.Cities["扬州市"].Alive {
		t.Fatalf("current_hp 为 0 应视为阵亡")
	}
	b, _ := st.Player("乙")
	if !b.Cities["无锡市"].Coastal {
		t.Fatalf("coastal 未读入")
	}

	e, ok := st.Registry.Query(effect.KindBarrier, effect.PlayerTarget("乙"))
	if !ok || e.RoundsLeft != 2 || e.Payload.(*effect.BarrierPayload).Hp != 3000 {
		t.Fatalf("barrier=%+v", e)
	}
	cl, ok := st.Registry.Query(effect.KindCaptureLeader, effect.PlayerTarget("甲"))
	if !ok || cl.RoundsLeft != effect.Permanent || cl.Payload.(*effect.TargetPayload).Player != "乙" {
		t.Fatalf("capture leader=%+v", cl)
	}

	if len(s.Rounds) != 3 {
		t.Fatalf("rounds=%d", len(s.Rounds))
	}
	if got := s.Rounds[0].Deployment["乙"]; len(got) != 1 || got[0] != "无锡市" {
		t.Fatalf("单个字符串应转成名单: %v", got)
	}
	if got := s.Rounds[1].Deployment["甲"]; len(got) != 2 {
		t.Fatalf("简写形式: %v", s.Rounds[1].Deployment)
	}
	if s.Rounds[2].Targets["甲"] != "乙" {
		t.Fatalf("targets=%v", s.Rounds[2].Targets)
	}
}

func TestParse_按下标存的出战名单(t *testing.T) {
	raw := `
players:
  - name: 甲
    cities:
      - {name: 甲都, hp: 1}
      - {name: 苏州市, hp: 1}
      - {name: 扬州市, hp: 1}
  - name: 乙
    cities:
      - {name: 乙都, hp: 1}
rounds:
  - 甲: {"0": 苏州市, "1": 甲都}
  - deployment:
      甲: {10: 扬州市, 2: 甲都, 0: 苏州市}
      乙: [乙都]
`
	s, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := s.Rounds[0].Deployment["甲"]; len(got) != 2 || got[0] != "苏州市" || got[1] != "甲都" {
		t.Fatalf("round0=%v", got)
	}
	// 按数值下标排序，10 排在 2 之后
	got := s.Rounds[1].Deployment["甲"]
	if len(got) != 3 || got[0] != "苏州市" || got[1] != "甲都" || got[2] != "扬州市" {
		t.Fatalf("round1=%v", got)
	}
	if b := s.Rounds[1].Deployment["乙"]; len(b) != 1 || b[0] != "乙都" {
		t.Fatalf("列表形式不受影响: %v", b)
	}
}

func TestParse_错误输入(t *testing.T) {
	cases := map[string]string{
		"坏yaml":  "players: [",
		"无玩家":    "room: x",
		"玩家无名":   "players:\n  - cities: []\n",
		"城池重名":   "players:\n  - name: 甲\n    cities:\n      - {name: A, hp: 1}\n      - {name: A, hp: 2}\n",
		"未知效果":   "players:\n  - name: 甲\neffects:\n  - {kind: nope, player: 甲}\n",
		"回合形状不对": "players:\n  - name: 甲\nrounds:\n  - deployment: 3\n",
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); !errors.Is(err, errx.ErrInvalidSetup) {
			t.Fatalf("%s: err=%v", name, err)
		}
	}
}

func TestLoad_读文件(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battle.yml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); !errors.Is(err, errx.ErrInvalidSetup) {
		t.Fatalf("err=%v", err)
	}
}
