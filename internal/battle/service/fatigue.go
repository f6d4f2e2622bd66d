package service

import (
	"CityCard/internal/battle/effect"
	"CityCard/internal/battle/entity"
	"CityCard/internal/battle/journal"
)

// fatigueExemptions 任一生效即免疫疲劳。
var fatigueExemptions = []effect.Kind{
	effect.KindVeteran,
	effect.KindSettled,
	effect.KindIgnoreFatigue,
}

type FatigueTracker struct{}

func NewFatigueTracker() *FatigueTracker {
	return &FatigueTracker{}
}

// ApplyReduction 连续第二回合及以上出战、且没有豁免的城池当前血量减半。
// 必须在攻击力计算之前调用。
func (f *FatigueTracker) ApplyReduction(players []*entity.Player, reg *effect.Registry, deployment entity.Deployment, out journal.Sink) []entity.FatigueEvent {
	if out == nil {
		out = journal.Nop()
	}
	var events []entity.FatigueEvent
	for _, p := range players {
		if p == nil {
			continue
		}
		if p.Streaks == nil {
			p.Streaks = make(map[string]int)
		}
		for _, name := range deployment[p.Name] {
			c, ok := p.City(name)
			if !ok || !c.IsAlive() {
				continue
			}
			target := effect.CityTarget(p.Name, name)
			if reg.Has(effect.KindRevived, target) {
				p.Streaks[name] = 0
				continue
			}
			streak := p.Streaks[name]
			if streak < 1 || exempt(reg, target) {
				continue
			}
			before, after := c.Halve()
			events = append(events, entity.FatigueEvent{
				Player:   p.Name,
				City:     name,
				HpBefore: before,
				HpAfter:  after,
				Streak:   streak,
			})
			journal.Publicf(out, "%s 的 %s 连续出战 %d 回合，疲劳减半：%d -> %d", p.Name, name, streak+1, before, after)
		}
	}
	return events
}

func exempt(reg *effect.Registry, target effect.Target) bool {
	for _, k := range fatigueExemptions {
		if e, ok := reg.Query(k, target); ok && e.Active() {
			return true
		}
	}
	return false
}

// UpdateStreaks 伤害结算之后调用，每回合恰好一次：本回合出过战的 +1，其余清零。
// fielded 是实际上场过的城池（包括被撤军、归降、迷惑撤下的）。
func (f *FatigueTracker) UpdateStreaks(players []*entity.Player, fielded entity.Deployment) {
	for _, p := range players {
		if p == nil {
			continue
		}
		if p.Streaks == nil {
			p.Streaks = make(map[string]int)
		}
		next := make(map[string]int, len(p.Cities))
		for _, name := range p.CityNames() {
			if fielded.Contains(p.Name, name) {
				next[name] = p.Streaks[name] + 1
			} else {
				next[name] = 0
			}
		}
		p.Streaks = next
	}
}

// ResetPlayer 清掉某玩家全部城池的连续出战计数。
func (f *FatigueTracker) ResetPlayer(p *entity.Player) {
	if p == nil {
		return
	}
	for name := range p.Streaks {
		p.Streaks[name] = 0
	}
}

func (f *FatigueTracker) ResetCity(p *entity.Player, city string) {
	if p == nil {
		return
	}
	if _, ok := p.Streaks[city]; ok {
		p.Streaks[city] = 0
	}
}

func (f *FatigueTracker) ResetAll(players []*entity.Player) {
	for _, p := range players {
		f.ResetPlayer(p)
	}
}
