package effect

import (
	"sort"

	"CityCard/modules/kit/errx"
)

// Permanent 持续到被显式清除。
const Permanent = -1

// Target 效果挂载点：City 为空表示玩家级。
type Target struct {
	Player string
	City   string
}

func PlayerTarget(player string) Target {
	return Target{Player: player}
}

func CityTarget(player, city string) Target {
	return Target{Player: player, City: city}
}

// Effect 是注册表里的一条限时修正。
// RoundsLeft：-1 永久；0 仅本回合；N 还剩 N 回合，由生命周期递减。
type Effect struct {
	Kind         Kind
	Owner        string
	Target       Target
	Magnitude    float64
	RoundsLeft   int
	AppliedRound int
	Source       string
	Payload      Payload
}

func (e *Effect) Clone() *Effect {
	if e == nil {
		return nil
	}
	c := *e
	c.Payload = clonePayload(e.Payload)
	return &c
}

// Active 判断持续时间是否“未定或仍大于 0”。
func (e *Effect) Active() bool {
	return e != nil && (e.RoundsLeft == Permanent || e.RoundsLeft > 0)
}

var ErrInvalidEffect = errx.NewBiz(errx.CodeInvalidSetup, "效果数据不合法")

type key struct {
	kind   Kind
	target Target
}

// Registry 按 (kind, target) 存放效果。非并发安全：同一时刻只归一个回合计算所有。
type Registry struct {
	round   int
	entries map[key][]*Effect
}

func NewRegistry() *Registry {
	return &Registry{round: 1, entries: make(map[key][]*Effect)}
}

// SetRound 设置当前回合号，Add 时用于补全 AppliedRound。
func (r *Registry) SetRound(round int) {
	r.round = round
}

func (r *Registry) Round() int {
	return r.round
}

// Add 按种类的叠加规则写入效果。
func (r *Registry) Add(owner string, target Target, e Effect) error {
	if !e.Kind.Valid() {
		return ErrInvalidEffect.WithData("kind", e.Kind.String())
	}
	if target.Player == "" {
		return ErrInvalidEffect.WithData("kind", e.Kind.String()).WithData("reason", "empty player")
	}
	switch e.Kind.Scope() {
	case ScopeCity:
		if target.City == "" {
			return ErrInvalidEffect.WithData("kind", e.Kind.String()).WithData("reason", "city scope without city")
		}
	case ScopePlayer:
		target.City = ""
	}
	if e.Payload == nil {
		e.Payload = payloadFor(e.Kind)
	}
	if !payloadMatches(e.Kind, e.Payload) {
		return ErrInvalidEffect.WithData("kind", e.Kind.String()).WithData("reason", "payload mismatch")
	}
	e.Payload = clonePayload(e.Payload)
	if e.RoundsLeft < Permanent {
		e.RoundsLeft = 0
	}

	e.Owner = owner
	e.Target = target
	if e.AppliedRound == 0 {
		e.AppliedRound = r.round
	}
	r.put(&e)
	return nil
}

func (r *Registry) put(e *Effect) {
	k := key{kind: e.Kind, target: e.Target}
	existing := r.entries[k]
	switch e.Kind.Stacking() {
	case StackIndependent:
		r.entries[k] = append(existing, e)
	case StackMerge:
		if len(existing) == 0 {
			r.entries[k] = []*Effect{e}
			return
		}
		merge(existing[0], e)
	default:
		r.entries[k] = []*Effect{e}
	}
}

func merge(dst, src *Effect) {
	dst.Magnitude += src.Magnitude
	switch {
	case dst.RoundsLeft == Permanent || src.RoundsLeft == Permanent:
		dst.RoundsLeft = Permanent
	case src.RoundsLeft > dst.RoundsLeft:
		dst.RoundsLeft = src.RoundsLeft
	}
	if src.AppliedRound > dst.AppliedRound {
		dst.AppliedRound = src.AppliedRound
	}
	if db, ok := dst.Payload.(*BarrierPayload); ok {
		if sb, ok := src.Payload.(*BarrierPayload); ok {
			db.Hp += sb.Hp
			db.MaxHp += sb.MaxHp
		}
	}
}

// Query 返回该挂载点上的第一条效果。返回的是注册表内的实例，可直接修改其 payload。
func (r *Registry) Query(kind Kind, target Target) (*Effect, bool) {
	if r == nil {
		return nil, false
	}
	list := r.entries[key{kind: kind, target: normalize(kind, target)}]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

func (r *Registry) Has(kind Kind, target Target) bool {
	_, ok := r.Query(kind, target)
	return ok
}

// All 返回该挂载点上的全部效果（独立叠加的种类会有多条）。
func (r *Registry) All(kind Kind, target Target) []*Effect {
	if r == nil {
		return nil
	}
	list := r.entries[key{kind: kind, target: normalize(kind, target)}]
	return append([]*Effect(nil), list...)
}

// Consume 立即移除该挂载点上的效果，返回是否存在过。
func (r *Registry) Consume(kind Kind, target Target) bool {
	if r == nil {
		return false
	}
	k := key{kind: kind, target: normalize(kind, target)}
	if len(r.entries[k]) == 0 {
		return false
	}
	delete(r.entries, k)
	return true
}

// ConsumeOne 扣一层（护盾次数、铁壁层数），扣完即移除。
func (r *Registry) ConsumeOne(kind Kind, target Target) bool {
	e, ok := r.Query(kind, target)
	if !ok {
		return false
	}
	e.Magnitude--
	if e.Magnitude <= 0 {
		r.Remove(e)
	}
	return true
}

// Remove 按实例移除一条效果。
func (r *Registry) Remove(e *Effect) bool {
	if r == nil || e == nil {
		return false
	}
	k := key{kind: e.Kind, target: e.Target}
	list := r.entries[k]
	for i, cur := range list {
		if cur != e {
			continue
		}
		list = append(list[:i:i], list[i+1:]...)
		if len(list) == 0 {
			delete(r.entries, k)
		} else {
			r.entries[k] = list
		}
		return true
	}
	return false
}

// Retarget 城池易主时把城池级效果搬到新主人名下，目标处已有同类效果时按叠加规则合并。
func (r *Registry) Retarget(from, city, to string) int {
	if r == nil || from == to {
		return 0
	}
	src := Target{Player: from, City: city}
	moved := 0
	for _, k := range r.sortedKeys() {
		if k.target != src {
			continue
		}
		list := r.entries[k]
		delete(r.entries, k)
		for _, e := range list {
			e.Target = Target{Player: to, City: city}
			r.put(e)
			moved++
		}
	}
	return moved
}

// Entries 返回某种类的全部效果，按挂载点排序，保证遍历顺序可复现。
func (r *Registry) Entries(kind Kind) []*Effect {
	if r == nil {
		return nil
	}
	var out []*Effect
	for _, k := range r.sortedKeys() {
		if k.kind != kind {
			continue
		}
		out = append(out, r.entries[k]...)
	}
	return out
}

// Each 按种类声明顺序、挂载点顺序遍历；fn 返回 false 时停止。
func (r *Registry) Each(fn func(e *Effect) bool) {
	if r == nil {
		return
	}
	for _, k := range r.sortedKeys() {
		for _, e := range append([]*Effect(nil), r.entries[k]...) {
			if !fn(e) {
				return
			}
		}
	}
}

func (r *Registry) Len() int {
	n := 0
	for _, list := range r.entries {
		n += len(list)
	}
	return n
}

func (r *Registry) Clone() *Registry {
	if r == nil {
		return nil
	}
	c := &Registry{round: r.round, entries: make(map[key][]*Effect, len(r.entries))}
	for k, list := range r.entries {
		cp := make([]*Effect, 0, len(list))
		for _, e := range list {
			cp = append(cp, e.Clone())
		}
		c.entries[k] = cp
	}
	return c
}

func (r *Registry) sortedKeys() []key {
	keys := make([]key, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		if a.target.Player != b.target.Player {
			return a.target.Player < b.target.Player
		}
		return a.target.City < b.target.City
	})
	return keys
}

func normalize(kind Kind, t Target) Target {
	if kind.Scope() == ScopePlayer {
		t.City = ""
	}
	return t
}
