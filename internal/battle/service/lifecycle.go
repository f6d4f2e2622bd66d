package service

import (
	"CityCard/internal/battle/effect"
	"CityCard/internal/battle/entity"
	"CityCard/internal/battle/journal"
	"CityCard/modules/kit/logx"

	"go.uber.org/zap"
)

// tickOrder 生命周期的固定处理顺序：屏障 -> 护盾 -> 禁赛 -> 伪装 -> 其它限时 -> 周期性。
var tickOrder = buildTickOrder()

var periodicKinds = map[effect.Kind]bool{
	effect.KindHpBank:       true,
	effect.KindRegeneration: true,
	effect.KindElevatedSeat: true,
}

func buildTickOrder() []effect.Kind {
	head := []effect.Kind{
		effect.KindBarrier,
		effect.KindProtection,
		effect.KindIronShield,
		effect.KindBan,
		effect.KindDisguise,
	}
	tail := []effect.Kind{
		effect.KindHpBank,
		effect.KindRegeneration,
		effect.KindElevatedSeat,
	}
	seen := make(map[effect.Kind]bool)
	for _, k := range head {
		seen[k] = true
	}
	for _, k := range tail {
		seen[k] = true
	}
	order := append([]effect.Kind(nil), head...)
	for _, k := range effect.AllKinds() {
		if !seen[k] {
			order = append(order, k)
		}
	}
	return append(order, tail...)
}

type Lifecycle struct {
	rules Rules
}

func NewLifecycle(rules Rules) *Lifecycle {
	return &Lifecycle{rules: rules}
}

// Tick 每回合开始推进一次全部效果。本回合才写入的效果不递减。
func (l *Lifecycle) Tick(state *entity.EngineState, out journal.Sink, log logx.Logger) {
	if out == nil {
		out = journal.Nop()
	}
	if log == nil {
		log = logx.Nop()
	}
	reg := state.Registry
	for _, kind := range tickOrder {
		for _, e := range reg.Entries(kind) {
			if e.AppliedRound >= state.Round {
				continue
			}
			if periodicKinds[kind] {
				l.firePeriodic(state, e, out, log)
				if e.Kind == effect.KindHpBank && !reg.Has(effect.KindHpBank, e.Target) {
					continue
				}
			}
			if e.RoundsLeft == effect.Permanent {
				if kind == effect.KindBarrier {
					l.regenBarrier(e)
				}
				continue
			}
			if e.RoundsLeft > 0 {
				e.RoundsLeft--
			}
			if e.RoundsLeft <= 0 {
				reg.Remove(e)
				journal.Publicf(out, "%s 的【%s】效果结束", describe(e.Target), kindLabel(kind))
				continue
			}
			if kind == effect.KindBarrier {
				l.regenBarrier(e)
			}
		}
	}
}

func (l *Lifecycle) regenBarrier(e *effect.Effect) {
	bp, ok := e.Payload.(*effect.BarrierPayload)
	if !ok || l.rules.BarrierRegen <= 0 {
		return
	}
	bp.Hp += l.rules.BarrierRegen
	if bp.Hp > bp.MaxHp {
		bp.Hp = bp.MaxHp
	}
}

func (l *Lifecycle) firePeriodic(state *entity.EngineState, e *effect.Effect, out journal.Sink, log logx.Logger) {
	switch e.Kind {
	case effect.KindHpBank:
		bp, ok := e.Payload.(*effect.BankPayload)
		if !ok {
			return
		}
		if bp.Balance < l.rules.BankFloor {
			state.Registry.Remove(e)
			journal.Publicf(out, "%s 的血库余额不足 %d，血库被摧毁", e.Target.Player, l.rules.BankFloor)
			return
		}
		interest := bp.Balance * bankInterestPercent(bp.Balance) / 100
		bp.Balance += interest
		journal.Privatef(out, e.Target.Player, "血库结息 %d，余额 %d", interest, bp.Balance)
	case effect.KindRegeneration, effect.KindElevatedSeat:
		c, ok := lookupCity(state, e.Target)
		if !ok {
			log.Warn("periodic effect target missing",
				zap.String("kind", e.Kind.String()),
				zap.String("player", e.Target.Player),
				zap.String("city", e.Target.City))
			return
		}
		rate := e.Magnitude
		hpCap := 0
		if e.Kind == effect.KindElevatedSeat {
			rate = l.rules.ElevatedRegenRate
			hpCap = l.rules.HpCap
		}
		if gain := c.Heal(int(float64(c.BaseHp)*rate), hpCap); gain > 0 {
			journal.Privatef(out, e.Target.Player, "%s 回复 %d 点血量", c.Name, gain)
		}
	}
}

func lookupCity(state *entity.EngineState, t effect.Target) (*entity.City, bool) {
	p, ok := state.Player(t.Player)
	if !ok {
		return nil, false
	}
	return p.City(t.City)
}

func describe(t effect.Target) string {
	if t.City == "" {
		return t.Player
	}
	return t.Player + "·" + t.City
}

var kindLabels = map[effect.Kind]string{
	effect.KindBarrier:         "屏障",
	effect.KindProtection:      "保护",
	effect.KindIronShield:      "铁壁",
	effect.KindAnchor:          "坚守",
	effect.KindCautiousSet:     "谨慎",
	effect.KindBan:             "禁赛",
	effect.KindDisguise:        "伪装",
	effect.KindFlagChange:      "易帜",
	effect.KindReversedCapital: "废都",
	effect.KindSubCenter:       "副中心",
	effect.KindElevatedSeat:    "登高台",
	effect.KindDesperation:     "背水一战",
	effect.KindLastStand:       "破釜沉舟",
	effect.KindPowerMultiplier: "攻击倍率",
	effect.KindPowerAdditive:   "攻击加成",
	effect.KindForcedWeakness:  "虚弱",
	effect.KindDamageReduction: "减伤",
	effect.KindCaution:         "草木皆兵",
	effect.KindCaptureLeader:   "擒贼擒王",
	effect.KindForcedFocus:     "集火",
	effect.KindChainLink:       "连横",
	effect.KindConfusion:       "迷惑",
	effect.KindWave:            "海啸",
	effect.KindMirage:          "海市蜃楼",
	effect.KindVeteran:         "老将",
	effect.KindSettled:         "安居",
	effect.KindIgnoreFatigue:   "无视疲劳",
	effect.KindRevived:         "借尸还魂",
	effect.KindHpBank:          "血库",
	effect.KindRegeneration:    "回复",
}

func kindLabel(k effect.Kind) string {
	if s, ok := kindLabels[k]; ok {
		return s
	}
	return k.String()
}
