package service

import (
	"CityCard/internal/battle/effect"
	"CityCard/internal/battle/entity"
	"CityCard/internal/battle/journal"
)

// settleEconomy 回合末结算金币：基础收入 + 每攻破一座敌城的奖励，夹在 [0, GoldCap]。
// 屏障反弹打死的攻击方城池记在防守方名下。
func settleEconomy(sc *roundScope, rules Rules) {
	destroyedBy := make(map[string]int)
	for _, res := range sc.report.Results {
		destroyedBy[res.Attacker] += len(res.DestroyedCityNames)
		destroyedBy[res.Defender] += len(res.ReflectDestroyed)
	}
	for _, p := range sc.state.Players {
		if p == nil {
			continue
		}
		if !p.Eliminated {
			income := rules.BaseIncome + rules.DestroyBonus*destroyedBy[p.Name]
			p.AddGold(income, rules.GoldCap)
			journal.Privatef(sc.out, p.Name, "本回合收入 %d 金币，当前 %d", income, p.Gold)
		}
		sc.report.Gold[p.Name] = p.Gold
	}
}

// settleCenters 主城阵亡：有登高台的存活城池继承主城并失去登高台，否则出局。
func settleCenters(sc *roundScope) {
	reg := sc.state.Registry
	for _, p := range sc.state.Active() {
		if c, ok := p.CenterCity(); ok && c.IsAlive() {
			continue
		}
		if heir, ok := elevatedHeir(reg, p); ok {
			reg.Consume(effect.KindElevatedSeat, effect.CityTarget(p.Name, heir))
			p.Center = heir
			journal.Publicf(sc.out, "%s 的主城陷落，%s 登高继任主城", p.Name, heir)
			continue
		}
		p.Eliminated = true
		sc.report.Eliminated = append(sc.report.Eliminated, p.Name)
		journal.Publicf(sc.out, "%s 的主城陷落，%s 出局", p.Name, p.Name)
	}
}

func elevatedHeir(reg *effect.Registry, p *entity.Player) (string, bool) {
	for _, name := range p.LivingCityNames() {
		if reg.Has(effect.KindElevatedSeat, effect.CityTarget(p.Name, name)) {
			return name, true
		}
	}
	return "", false
}
