package service

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"CityCard/internal/battle/effect"
	"CityCard/internal/battle/entity"
	"CityCard/internal/battle/journal"
)

type Resolver struct {
	rules Rules
	power *PowerCalculator
}

func NewResolver(rules Rules, power *PowerCalculator) *Resolver {
	if power == nil {
		power = NewPowerCalculator()
	}
	return &Resolver{rules: rules, power: power}
}

// resolve 计算 attacker 打 defender 的一次结算。攻击力取自冻结快照 snap，伤害写到 sc.state。
func (r *Resolver) resolve(sc *roundScope, snap *entity.EngineState, attacker, defender *entity.Player) *entity.BattleResult {
	res := entity.NewBattleResult(attacker.Name, defender.Name)
	if ev := sc.battle.Event(attacker.Name, defender.Name); ev != nil {
		res.SpecialEvent = ev
		return res
	}
	reg := sc.state.Registry

	gross := r.grossPower(sc, snap, attacker, res)
	targets := r.eligibleTargets(sc, defender)
	if gross <= 0 || len(targets) == 0 {
		return res
	}

	total := float64(gross)
	for _, e := range reg.All(effect.KindCaution, effect.PlayerTarget(attacker.Name)) {
		total *= e.Magnitude
	}
	net := int(math.Floor(total))
	for _, e := range reg.All(effect.KindDamageReduction, effect.PlayerTarget(defender.Name)) {
		net -= int(math.Floor(e.Magnitude))
	}
	if net < 0 {
		net = 0
	}
	res.GrossAttackPower = gross
	res.TotalAttackPower = net
	res.DamageReduced = gross - net
	if net == 0 {
		return res
	}

	remaining := net - r.applyBarrier(sc, attacker, defender, res)

	order := r.targetOrder(sc, attacker, defender, targets, res)
	for _, name := range order {
		if remaining <= 0 {
			break
		}
		c := defender.Cities[name]
		masked := r.spendDisguise(sc, defender, name, remaining)
		remaining -= masked
		before := c.CurrentHp
		dealt := c.TakeDamage(remaining)
		if masked+dealt == 0 {
			continue
		}
		remaining -= dealt
		res.Damage[name] = masked + dealt
		if masked > 0 {
			res.DisguiseAbsorbed[name] = masked
		}
		if dealt == 0 {
			continue
		}
		res.HpDeltas = append(res.HpDeltas, entity.HpDelta{Player: defender.Name, City: name, Before: before, After: c.CurrentHp})
		if !c.IsAlive() {
			res.DestroyedCityNames = append(res.DestroyedCityNames, name)
		}
	}
	res.RemainingDamage = remaining

	r.applyChain(sc, defender, order, res)

	journal.Publicf(sc.out, "%s 对 %s 造成 %d 点伤害（总攻击 %d）", attacker.Name, defender.Name, res.DamageSum(), res.TotalAttackPower)
	if len(res.DestroyedCityNames) > 0 {
		journal.Publicf(sc.out, "%s 的城池被攻破：%v", defender.Name, res.DestroyedCityNames)
	}
	return res
}

func (r *Resolver) grossPower(sc *roundScope, snap *entity.EngineState, attacker *entity.Player, res *entity.BattleResult) int {
	sp, ok := snap.Player(attacker.Name)
	if !ok {
		sc.warn("resolve", "attacker missing in snapshot", zap.String("player", attacker.Name))
		res.Warnings = append(res.Warnings, "attacker missing: "+attacker.Name)
		return 0
	}
	gross := 0
	for _, name := range sc.battle.Deployment[attacker.Name] {
		if _, ok := sp.City(name); !ok {
			sc.warn("resolve", "attacking city missing", zap.String("player", attacker.Name), zap.String("city", name))
			res.Warnings = append(res.Warnings, "attacking city missing: "+name)
			continue
		}
		gross += r.power.Power(snap.Registry, sp, name)
	}
	return gross
}

// eligibleTargets 防守方出战且存活的城池，坚守与保护中的城池整体跳过。
func (r *Resolver) eligibleTargets(sc *roundScope, defender *entity.Player) []string {
	reg := sc.state.Registry
	var out []string
	for _, name := range sc.battle.Deployment[defender.Name] {
		c, ok := defender.City(name)
		if !ok {
			sc.warn("resolve", "defending city missing", zap.String("player", defender.Name), zap.String("city", name))
			continue
		}
		if !c.IsAlive() {
			continue
		}
		t := effect.CityTarget(defender.Name, name)
		if reg.Has(effect.KindAnchor, t) || reg.Has(effect.KindProtection, t) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// applyBarrier 屏障把伤害对半拆成吸收与反弹两份，两份各自对同一剩余血量封顶：
// 吸收最多 ceil(B/2)，反弹最多 floor(B/2)，屏障只扣吸收量。返回两份之和。
func (r *Resolver) applyBarrier(sc *roundScope, attacker, defender *entity.Player, res *entity.BattleResult) int {
	reg := sc.state.Registry
	e, ok := reg.Query(effect.KindBarrier, effect.PlayerTarget(defender.Name))
	if !ok {
		return 0
	}
	bp, ok := e.Payload.(*effect.BarrierPayload)
	if !ok || bp.Hp <= 0 {
		reg.Remove(e)
		return 0
	}
	total := res.TotalAttackPower
	absorbed := min(total/2, (bp.Hp+1)/2)
	reflected := min(total-total/2, bp.Hp/2)

	bp.Hp -= absorbed
	res.BarrierAbsorbed = absorbed
	res.BarrierReflected = reflected
	if bp.Hp <= 0 {
		reg.Remove(e)
		journal.Publicf(sc.out, "%s 的屏障被击碎", defender.Name)
	}
	journal.Publicf(sc.out, "%s 的屏障吸收 %d 点伤害，反弹 %d 点", defender.Name, absorbed, reflected)

	r.reflect(sc, attacker, reflected, res)
	return absorbed + reflected
}

// reflect 反弹伤害按当前血量升序打到攻击方出战的存活城池。
func (r *Resolver) reflect(sc *roundScope, attacker *entity.Player, amount int, res *entity.BattleResult) {
	if amount <= 0 {
		return
	}
	reg := sc.state.Registry
	var victims []string
	for _, name := range sc.battle.Deployment[attacker.Name] {
		c, ok := attacker.City(name)
		if !ok || !c.IsAlive() || reg.Has(effect.KindAnchor, effect.CityTarget(attacker.Name, name)) {
			continue
		}
		victims = append(victims, name)
	}
	sortByHp(attacker, victims, false)
	for _, name := range victims {
		if amount <= 0 {
			return
		}
		c := attacker.Cities[name]
		before := c.CurrentHp
		dealt := c.TakeDamage(amount)
		amount -= dealt
		res.ReflectDamage[name] += dealt
		res.HpDeltas = append(res.HpDeltas, entity.HpDelta{Player: attacker.Name, City: name, Before: before, After: c.CurrentHp})
		if !c.IsAlive() {
			res.ReflectDestroyed = append(res.ReflectDestroyed, name)
		}
	}
}

// spendDisguise 伪装血量先于真实血量承伤，打光即识破并移除伪装。返回伪装吃掉的伤害。
func (r *Resolver) spendDisguise(sc *roundScope, defender *entity.Player, name string, amount int) int {
	reg := sc.state.Registry
	e, ok := reg.Query(effect.KindDisguise, effect.CityTarget(defender.Name, name))
	if !ok || amount <= 0 {
		return 0
	}
	dp, ok := e.Payload.(*effect.DisguisePayload)
	if !ok || dp.FakeHp <= 0 {
		return 0
	}
	masked := min(dp.FakeHp, amount)
	dp.FakeHp -= masked
	if dp.FakeHp <= 0 {
		reg.Remove(e)
		journal.Publicf(sc.out, "%s 的伪装 %s 被打穿，露出本名 %s", defender.Name, dp.FakeName, name)
	}
	return masked
}

// targetOrder 默认血量升序；擒贼擒王改为降序；集火只打指定城池。
func (r *Resolver) targetOrder(sc *roundScope, attacker, defender *entity.Player, targets []string, res *entity.BattleResult) []string {
	reg := sc.state.Registry
	self := effect.PlayerTarget(attacker.Name)

	if e, ok := reg.Query(effect.KindForcedFocus, self); ok {
		if fp, ok := e.Payload.(*effect.FocusPayload); ok && (fp.Player == "" || fp.Player == defender.Name) {
			for _, name := range targets {
				if name == fp.City {
					return []string{name}
				}
			}
			sc.warn("resolve", "focus target unavailable", zap.String("player", defender.Name), zap.String("city", fp.City))
			res.Warnings = append(res.Warnings, "focus target unavailable: "+fp.City)
		}
	}

	order := append([]string(nil), targets...)
	desc := false
	if e, ok := reg.Query(effect.KindCaptureLeader, self); ok {
		if tp, ok := e.Payload.(*effect.TargetPayload); ok && (tp.Player == "" || tp.Player == defender.Name) {
			desc = true
		}
	}
	sortByHp(defender, order, desc)
	return order
}

// applyChain 连锁伤害在主目标全部结算后统一施加，按主目标真实掉血的固定比例计算，不会连锁再连锁。
func (r *Resolver) applyChain(sc *roundScope, defender *entity.Player, order []string, res *entity.BattleResult) {
	reg := sc.state.Registry
	e, ok := reg.Query(effect.KindChainLink, effect.PlayerTarget(defender.Name))
	if !ok {
		return
	}
	cp, ok := e.Payload.(*effect.ChainPayload)
	if !ok || len(cp.Cities) == 0 {
		return
	}
	linked := make(map[string]bool, len(cp.Cities))
	for _, name := range cp.Cities {
		linked[name] = true
	}

	pending := make(map[string]int)
	for _, src := range order {
		dmg := res.Damage[src] - res.DisguiseAbsorbed[src]
		if dmg <= 0 || !linked[src] {
			continue
		}
		share := int(math.Floor(float64(dmg) * r.rules.ChainRate))
		for _, dst := range cp.Cities {
			if dst != src {
				pending[dst] += share
			}
		}
	}

	for _, name := range cp.Cities {
		amount := pending[name]
		if amount <= 0 {
			continue
		}
		c, ok := defender.City(name)
		if !ok {
			sc.warn("chain", "linked city missing", zap.String("player", defender.Name), zap.String("city", name))
			continue
		}
		if !c.IsAlive() || reg.Has(effect.KindAnchor, effect.CityTarget(defender.Name, name)) {
			continue
		}
		before := c.CurrentHp
		dealt := c.TakeDamage(amount)
		if dealt == 0 {
			continue
		}
		res.ChainDamage[name] += dealt
		res.HpDeltas = append(res.HpDeltas, entity.HpDelta{Player: defender.Name, City: name, Before: before, After: c.CurrentHp})
		if !c.IsAlive() {
			res.DestroyedCityNames = append(res.DestroyedCityNames, name)
		}
	}
}

func sortByHp(p *entity.Player, names []string, desc bool) {
	sort.SliceStable(names, func(i, j int) bool {
		hi, hj := p.Cities[names[i]].CurrentHp, p.Cities[names[j]].CurrentHp
		if hi != hj {
			if desc {
				return hi > hj
			}
			return hi < hj
		}
		return names[i] < names[j]
	})
}
