package entity

import "sort"

// Deployment 本回合各玩家的出战城池（按出战顺序）。
type Deployment map[string][]string

func (d Deployment) Clone() Deployment {
	if d == nil {
		return nil
	}
	c := make(Deployment, len(d))
	for k, v := range d {
		c[k] = append([]string(nil), v...)
	}
	return c
}

func (d Deployment) Contains(player, city string) bool {
	for _, n := range d[player] {
		if n == city {
			return true
		}
	}
	return false
}

// Add 追加一座城，已存在时忽略。
func (d Deployment) Add(player, city string) {
	if d.Contains(player, city) {
		return
	}
	d[player] = append(d[player], city)
}

func (d Deployment) Remove(player, city string) {
	list := d[player]
	for i, n := range list {
		if n == city {
			d[player] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Move 城池易主后，把出战记录也挪过去。
func (d Deployment) Move(from, to, city string) {
	if !d.Contains(from, city) {
		return
	}
	d.Remove(from, city)
	d.Add(to, city)
}

func (d Deployment) Total() int {
	n := 0
	for _, v := range d {
		n += len(v)
	}
	return n
}

type EventKind string

const (
	EventRetreat   EventKind = "retreat"
	EventSurrender EventKind = "surrender"
)

// SpecialEvent 一对玩家在本回合的特殊事件；存在时该对的正常伤害计算作废。
type SpecialEvent struct {
	Kind     EventKind `json:"kind" bson:"kind"`
	Round    int       `json:"round" bson:"round"`
	Province string    `json:"province" bson:"province"`
	// Participants 归降时胜方在前。
	Participants []string            `json:"participants" bson:"participants"`
	Cities       map[string][]string `json:"cities" bson:"cities"`
}

func (e *SpecialEvent) Clone() *SpecialEvent {
	if e == nil {
		return nil
	}
	c := *e
	c.Participants = append([]string(nil), e.Participants...)
	c.Cities = make(map[string][]string, len(e.Cities))
	for k, v := range e.Cities {
		c.Cities[k] = append([]string(nil), v...)
	}
	return &c
}

// PairKey 无序玩家对的键。
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// BattleContext 一回合的输入：出战阵容、特殊事件槽、多人模式下的攻击目标。
type BattleContext struct {
	Deployment Deployment
	Events     map[string]*SpecialEvent
	// Targets 攻击方 -> 防守方；两人对局不需要填写。
	Targets map[string]string
}

func NewBattleContext() *BattleContext {
	return &BattleContext{
		Deployment: make(Deployment),
		Events:     make(map[string]*SpecialEvent),
		Targets:    make(map[string]string),
	}
}

func (bc *BattleContext) Event(a, b string) *SpecialEvent {
	if bc == nil || bc.Events == nil {
		return nil
	}
	return bc.Events[PairKey(a, b)]
}

func (bc *BattleContext) SetEvent(a, b string, e *SpecialEvent) {
	if bc.Events == nil {
		bc.Events = make(map[string]*SpecialEvent)
	}
	bc.Events[PairKey(a, b)] = e
}

// EventKeys 排序后的事件键。
func (bc *BattleContext) EventKeys() []string {
	keys := make([]string, 0, len(bc.Events))
	for k := range bc.Events {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
