package effect

import "strings"

// Kind 效果种类。声明顺序即生命周期里“其它限时效果”的处理顺序，不要随意调整。
type Kind int

const (
	KindUnknown Kind = iota
	KindBarrier
	KindProtection
	KindIronShield
	KindAnchor
	KindCautiousSet
	KindBan
	KindDisguise
	KindFlagChange
	KindReversedCapital
	KindSubCenter
	KindElevatedSeat
	KindDesperation
	KindLastStand
	KindPowerMultiplier
	KindPowerAdditive
	KindForcedWeakness
	KindDamageReduction
	KindCaution
	KindCaptureLeader
	KindForcedFocus
	KindChainLink
	KindConfusion
	KindWave
	KindMirage
	KindVeteran
	KindSettled
	KindIgnoreFatigue
	KindRevived
	KindHpBank
	KindRegeneration
	kindEnd
)

type Scope int

const (
	ScopePlayer Scope = iota + 1
	ScopeCity
)

type Stacking int

const (
	// StackReplace 新效果覆盖旧效果。
	StackReplace Stacking = iota + 1
	// StackMerge 合并成一条：数值相加，持续取较长者。
	StackMerge
	// StackIndependent 各来源独立共存，读取时再汇总。
	StackIndependent
)

type kindMeta struct {
	name     string
	scope    Scope
	stacking Stacking
}

var kinds = [kindEnd]kindMeta{
	KindBarrier:         {"barrier", ScopePlayer, StackMerge},
	KindProtection:      {"protection", ScopeCity, StackMerge},
	KindIronShield:      {"iron_shield", ScopeCity, StackMerge},
	KindAnchor:          {"anchor", ScopeCity, StackReplace},
	KindCautiousSet:     {"cautious_set", ScopeCity, StackReplace},
	KindBan:             {"ban", ScopeCity, StackReplace},
	KindDisguise:        {"disguise", ScopeCity, StackReplace},
	KindFlagChange:      {"flag_change", ScopeCity, StackReplace},
	KindReversedCapital: {"reversed_capital", ScopeCity, StackReplace},
	KindSubCenter:       {"sub_center", ScopeCity, StackReplace},
	KindElevatedSeat:    {"elevated_seat", ScopeCity, StackReplace},
	KindDesperation:     {"desperation", ScopePlayer, StackReplace},
	KindLastStand:       {"last_stand", ScopePlayer, StackReplace},
	KindPowerMultiplier: {"power_multiplier", ScopeCity, StackIndependent},
	KindPowerAdditive:   {"power_additive", ScopeCity, StackIndependent},
	KindForcedWeakness:  {"forced_weakness", ScopeCity, StackReplace},
	KindDamageReduction: {"damage_reduction", ScopePlayer, StackIndependent},
	KindCaution:         {"caution", ScopePlayer, StackIndependent},
	KindCaptureLeader:   {"capture_leader", ScopePlayer, StackReplace},
	KindForcedFocus:     {"forced_focus", ScopePlayer, StackReplace},
	KindChainLink:       {"chain_link", ScopePlayer, StackReplace},
	KindConfusion:       {"confusion", ScopePlayer, StackReplace},
	KindWave:            {"wave", ScopePlayer, StackReplace},
	KindMirage:          {"mirage", ScopePlayer, StackReplace},
	KindVeteran:         {"veteran", ScopeCity, StackReplace},
	KindSettled:         {"settled", ScopeCity, StackReplace},
	KindIgnoreFatigue:   {"ignore_fatigue", ScopeCity, StackReplace},
	KindRevived:         {"revived", ScopeCity, StackReplace},
	KindHpBank:          {"hp_bank", ScopePlayer, StackReplace},
	KindRegeneration:    {"regeneration", ScopeCity, StackIndependent},
}

func (k Kind) Valid() bool {
	return k > KindUnknown && k < kindEnd
}

func (k Kind) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return kinds[k].name
}

func (k Kind) Scope() Scope {
	if !k.Valid() {
		return 0
	}
	return kinds[k].scope
}

func (k Kind) Stacking() Stacking {
	if !k.Valid() {
		return StackReplace
	}
	return kinds[k].stacking
}

// ParseKind 按名字解析，大小写与 '-' '_' 不敏感。
func ParseKind(s string) Kind {
	s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for k := KindUnknown + 1; k < kindEnd; k++ {
		if kinds[k].name == s {
			return k
		}
	}
	return KindUnknown
}

// AllKinds 按声明顺序返回全部种类。
func AllKinds() []Kind {
	out := make([]Kind, 0, int(kindEnd)-1)
	for k := KindUnknown + 1; k < kindEnd; k++ {
		out = append(out, k)
	}
	return out
}
