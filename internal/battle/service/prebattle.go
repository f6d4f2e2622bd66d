package service

import (
	"math/rand"
	"sort"
	"strings"

	"go.uber.org/zap"

	"CityCard/internal/battle/effect"
	"CityCard/internal/battle/entity"
	"CityCard/internal/battle/journal"
	"CityCard/internal/shared/gameconfig/city"
	"CityCard/internal/shared/utils"
)

// PreBattle 战前规则：迷惑 -> 同省（归降优先，其次撤军）-> 海啸。
type PreBattle struct {
	rules   Rules
	catalog *city.Catalog
	rng     *rand.Rand
}

func NewPreBattle(rules Rules, catalog *city.Catalog, rng *rand.Rand) *PreBattle {
	if catalog == nil {
		catalog = city.Builtin()
	}
	if rng == nil {
		rng = utils.NewRand(rules.Seed)
	}
	return &PreBattle{rules: rules, catalog: catalog, rng: rng}
}

func (pb *PreBattle) run(sc *roundScope) {
	pb.confusion(sc)
	pb.provinces(sc)
	pb.waves(sc)
}

// ---- 迷惑 ----

func (pb *PreBattle) confusion(sc *roundScope) {
	reg := sc.state.Registry
	for _, caster := range sc.state.Active() {
		e, ok := reg.Query(effect.KindConfusion, effect.PlayerTarget(caster.Name))
		if !ok {
			continue
		}
		reg.Remove(e)
		tp, _ := e.Payload.(*effect.TargetPayload)
		if tp == nil || tp.Player == "" {
			sc.warn("confusion", "missing target player", zap.String("caster", caster.Name))
			continue
		}
		victim, ok := sc.state.Player(tp.Player)
		if !ok || victim.Eliminated || victim == caster {
			sc.warn("confusion", "target player not found", zap.String("caster", caster.Name), zap.String("target", tp.Player))
			continue
		}

		mine := pb.swappable(sc, caster)
		theirs := pb.swappable(sc, victim)
		if len(mine) == 0 && len(theirs) == 0 {
			// 双方都没出战不返还；出了战但全是不可交换的城池才返还
			if len(sc.battle.Deployment[caster.Name]) == 0 && len(sc.battle.Deployment[victim.Name]) == 0 {
				journal.Publicf(sc.out, "%s 对 %s 施放迷惑，双方都未出战，金币不返还", caster.Name, victim.Name)
				continue
			}
			caster.AddGold(pb.rules.ConfusionRefund, pb.rules.GoldCap)
			journal.Publicf(sc.out, "%s 对 %s 施放迷惑，双方均无可交换的城池，返还 %d 金币", caster.Name, victim.Name, pb.rules.ConfusionRefund)
			continue
		}
		if len(mine) == 0 || len(theirs) == 0 {
			journal.Publicf(sc.out, "%s 对 %s 施放迷惑，但一方没有可交换的城池，迷惑落空", caster.Name, victim.Name)
			continue
		}

		n := min(len(mine), len(theirs))
		mine, theirs = mine[:n], theirs[:n]
		if !entity.SwapCities(caster, victim, mine, theirs) {
			sc.warn("confusion", "swap rejected by name clash", zap.String("caster", caster.Name), zap.String("target", victim.Name))
			continue
		}
		for i := range mine {
			pb.moveCityState(sc, caster, victim, mine[i])
			pb.moveCityState(sc, victim, caster, theirs[i])
		}
		sc.reveal(victim.Name, caster.Name, mine)
		sc.reveal(caster.Name, victim.Name, theirs)
		sc.reveal(caster.Name, victim.Name, sc.battle.Deployment[caster.Name])
		sc.reveal(victim.Name, caster.Name, sc.battle.Deployment[victim.Name])
		sc.battle.Deployment[caster.Name] = nil
		sc.battle.Deployment[victim.Name] = nil
		journal.Publicf(sc.out, "%s 迷惑了 %s：%s 与 %s 互换，双方本回合出战取消",
			caster.Name, victim.Name, strings.Join(mine, "、"), strings.Join(theirs, "、"))
	}
}

// swappable 可被迷惑交换的出战城池：排除主城以及受保护、铁壁、坚守、谨慎的城池。
func (pb *PreBattle) swappable(sc *roundScope, p *entity.Player) []string {
	reg := sc.state.Registry
	var out []string
	for _, name := range sc.battle.Deployment[p.Name] {
		c, ok := p.City(name)
		if !ok || !c.IsAlive() || p.IsCenter(name) {
			continue
		}
		t := effect.CityTarget(p.Name, name)
		if reg.Has(effect.KindProtection, t) || reg.Has(effect.KindIronShield, t) ||
			reg.Has(effect.KindAnchor, t) || reg.Has(effect.KindCautiousSet, t) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// moveCityState 城池对象已易主，把效果、上场记录跟过去。
func (pb *PreBattle) moveCityState(sc *roundScope, from, to *entity.Player, name string) {
	sc.state.Registry.Retarget(from.Name, name, to.Name)
	sc.fielded.Move(from.Name, to.Name, name)
}

// ---- 同省：归降 / 撤军 ----

func (pb *PreBattle) provinces(sc *roundScope) {
	active := sc.state.Active()
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			if sc.battle.Event(a.Name, b.Name) != nil {
				continue
			}
			pb.provincePair(sc, a, b)
		}
	}
}

func (pb *PreBattle) provincePair(sc *roundScope, a, b *entity.Player) {
	aByProv := pb.byProvince(sc, a)
	bByProv := pb.byProvince(sc, b)

	provinces := make([]string, 0, len(aByProv))
	for prov := range aByProv {
		if _, ok := bByProv[prov]; ok {
			provinces = append(provinces, prov)
		}
	}
	sort.Strings(provinces)

	for _, prov := range provinces {
		aCities, bCities := aByProv[prov], bByProv[prov]
		aCap := pb.holdsTrueCapital(sc, a, aCities)
		bCap := pb.holdsTrueCapital(sc, b, bCities)
		switch {
		case aCap && !bCap:
			pb.surrender(sc, a, b, prov, aCities, bCities)
		case bCap && !aCap:
			pb.surrender(sc, b, a, prov, bCities, aCities)
		default:
			// 双方都没有或都有真省会时按撤军处理
			pb.retreat(sc, a, b, prov)
		}
		return
	}
}

// byProvince 按生效省份分组出战城池（易帜后的省份），直辖市不参与。
func (pb *PreBattle) byProvince(sc *roundScope, p *entity.Player) map[string][]string {
	out := make(map[string][]string)
	for _, name := range sc.battle.Deployment[p.Name] {
		c, ok := p.City(name)
		if !ok {
			sc.warn("province", "deployed city missing", zap.String("player", p.Name), zap.String("city", name))
			continue
		}
		if !c.IsAlive() {
			continue
		}
		prov := pb.effectiveProvince(sc, p, c)
		if prov == "" || pb.catalog.IsMunicipality(prov) {
			continue
		}
		out[prov] = append(out[prov], name)
	}
	return out
}

func (pb *PreBattle) effectiveProvince(sc *roundScope, p *entity.Player, c *entity.City) string {
	if e, ok := sc.state.Registry.Query(effect.KindFlagChange, effect.CityTarget(p.Name, c.Name)); ok {
		if fp, ok := e.Payload.(*effect.FlagPayload); ok && fp.Province != "" {
			return fp.Province
		}
	}
	return c.Province
}

// effectiveName 伪装还有伪装血量时对外显示伪装名，伪装血量打光后露出本名。
func (pb *PreBattle) effectiveName(sc *roundScope, p *entity.Player, c *entity.City) string {
	if e, ok := sc.state.Registry.Query(effect.KindDisguise, effect.CityTarget(p.Name, c.Name)); ok {
		if dp, ok := e.Payload.(*effect.DisguisePayload); ok && dp.FakeName != "" && dp.FakeHp > 0 {
			return dp.FakeName
		}
	}
	return c.Name
}

// isTrueCapital 按生效名判断省会，被废都的不算。伪装成省会的城池算省会，省会伪装成别的城池则不算。
func (pb *PreBattle) isTrueCapital(sc *roundScope, p *entity.Player, c *entity.City) bool {
	if sc.state.Registry.Has(effect.KindReversedCapital, effect.CityTarget(p.Name, c.Name)) {
		return false
	}
	name := pb.effectiveName(sc, p, c)
	if name != c.Name {
		return pb.catalog.IsProvincialCapital(name)
	}
	return c.ProvincialCapital || pb.catalog.IsProvincialCapital(c.Name)
}

func (pb *PreBattle) holdsTrueCapital(sc *roundScope, p *entity.Player, names []string) bool {
	for _, name := range names {
		if c, ok := p.City(name); ok && pb.isTrueCapital(sc, p, c) {
			return true
		}
	}
	return false
}

func (pb *PreBattle) surrender(sc *roundScope, winner, loser *entity.Player, prov string, winCities, loseCities []string) {
	reg := sc.state.Registry
	lostCenter := false
	var moved []string
	for _, name := range loseCities {
		c, ok := loser.City(name)
		if !ok {
			sc.warn("surrender", "city missing", zap.String("player", loser.Name), zap.String("city", name))
			continue
		}
		t := effect.CityTarget(loser.Name, name)
		if reg.Has(effect.KindDisguise, t) {
			reg.Consume(effect.KindDisguise, t)
			c.SetCurrentHp(0)
			c.Alive = false
			loser.AddGold(-pb.rules.DisguisePenalty, pb.rules.GoldCap)
			journal.Publicf(sc.out, "%s 的伪装城池 %s 在归降时自毁，%s 损失 %d 金币", loser.Name, name, loser.Name, pb.rules.DisguisePenalty)
			continue
		}
		wasCenter := loser.IsCenter(name)
		if !entity.TransferCity(loser, winner, name) {
			sc.warn("surrender", "transfer rejected by name clash", zap.String("from", loser.Name), zap.String("to", winner.Name), zap.String("city", name))
			continue
		}
		pb.moveCityState(sc, loser, winner, name)
		moved = append(moved, name)
		if wasCenter {
			lostCenter = true
		}
	}
	if lostCenter {
		if next, ok := loser.StrongestLiving(); ok {
			loser.Center = next
			journal.Publicf(sc.out, "%s 的主城易主，%s 成为新的主城", loser.Name, next)
		}
	}

	ev := &entity.SpecialEvent{
		Kind:         entity.EventSurrender,
		Round:        sc.round(),
		Province:     prov,
		Participants: []string{winner.Name, loser.Name},
		Cities: map[string][]string{
			winner.Name: append([]string(nil), winCities...),
			loser.Name:  append([]string(nil), loseCities...),
		},
	}
	pb.closePairing(sc, winner, loser, ev)
	journal.Publicf(sc.out, "%s 以%s压境，%s 的 %s 城池归降：%s",
		winner.Name, pb.catalog.CapitalTerm(prov), loser.Name, prov, strings.Join(moved, "、"))
}

func (pb *PreBattle) retreat(sc *roundScope, a, b *entity.Player, prov string) {
	ev := &entity.SpecialEvent{
		Kind:         entity.EventRetreat,
		Round:        sc.round(),
		Province:     prov,
		Participants: []string{a.Name, b.Name},
		Cities: map[string][]string{
			a.Name: append([]string(nil), sc.battle.Deployment[a.Name]...),
			b.Name: append([]string(nil), sc.battle.Deployment[b.Name]...),
		},
	}
	pb.closePairing(sc, a, b, ev)
	journal.Publicf(sc.out, "%s 与 %s 同时派出 %s 的城池，双方撤军", a.Name, b.Name, prov)
}

// closePairing 事件生效：双方互相可见、记录事件、清空双方本回合出战。
func (pb *PreBattle) closePairing(sc *roundScope, a, b *entity.Player, ev *entity.SpecialEvent) {
	for owner, cities := range ev.Cities {
		for _, observer := range ev.Participants {
			sc.reveal(owner, observer, cities)
		}
	}
	sc.reveal(a.Name, b.Name, sc.battle.Deployment[a.Name])
	sc.reveal(b.Name, a.Name, sc.battle.Deployment[b.Name])
	sc.battle.SetEvent(a.Name, b.Name, ev)
	sc.report.Events[entity.PairKey(a.Name, b.Name)] = ev
	sc.battle.Deployment[a.Name] = nil
	sc.battle.Deployment[b.Name] = nil
}

// ---- 海啸 ----

func (pb *PreBattle) waves(sc *roundScope) {
	reg := sc.state.Registry
	for _, caster := range sc.state.Active() {
		e, ok := reg.Query(effect.KindWave, effect.PlayerTarget(caster.Name))
		if !ok {
			continue
		}
		reg.Remove(e)
		tp, _ := e.Payload.(*effect.TargetPayload)
		if tp == nil || tp.Player == "" {
			sc.warn("wave", "missing target player", zap.String("caster", caster.Name))
			continue
		}
		victim, ok := sc.state.Player(tp.Player)
		if !ok || victim.Eliminated {
			sc.warn("wave", "target player not found", zap.String("caster", caster.Name), zap.String("target", tp.Player))
			continue
		}
		pb.wave(sc, caster, victim)
	}
}

func (pb *PreBattle) wave(sc *roundScope, caster, victim *entity.Player) {
	reg := sc.state.Registry
	hit := 0
	for _, name := range sc.battle.Deployment[victim.Name] {
		c, ok := victim.City(name)
		if !ok || !c.IsAlive() {
			continue
		}
		if !c.Coastal && !pb.catalog.IsCoastal(name) {
			continue
		}
		t := effect.CityTarget(victim.Name, name)
		if victim.IsCenter(name) {
			if m, ok := reg.Query(effect.KindMirage, effect.PlayerTarget(victim.Name)); ok {
				rate := m.Magnitude
				if rate <= 0 {
					rate = pb.rules.MirageBlockRate
				}
				if utils.Chance(pb.rng, rate) {
					journal.Publicf(sc.out, "%s 的 %s 化作海市蜃楼，躲过了海啸", victim.Name, name)
					continue
				}
			}
		}
		if reg.Has(effect.KindIronShield, t) {
			journal.Publicf(sc.out, "%s 的 %s 有铁壁护体，海啸无效", victim.Name, name)
			continue
		}
		if reg.ConsumeOne(effect.KindProtection, t) {
			journal.Publicf(sc.out, "%s 的 %s 消耗一层保护抵挡了海啸", victim.Name, name)
			continue
		}
		before := c.CurrentHp
		c.SetCurrentHp(before / 2)
		hit++
		journal.Publicf(sc.out, "海啸冲击 %s 的 %s：%d -> %d", victim.Name, name, before, c.CurrentHp)
	}
	sc.reveal(victim.Name, caster.Name, sc.battle.Deployment[victim.Name])
	if hit == 0 {
		journal.Privatef(sc.out, caster.Name, "海啸没有命中 %s 的任何城池", victim.Name)
	}
}
