package entity

import "time"

// HpDelta 一次伤害结算中单座城池的血量变化。
type HpDelta struct {
	Player string `json:"player" bson:"player"`
	City   string `json:"city" bson:"city"`
	Before int    `json:"before" bson:"before"`
	After  int    `json:"after" bson:"after"`
}

// BattleResult 单个攻击方对单个防守方的结算结果。
// 守恒：BarrierAbsorbed + BarrierReflected + ΣDamage + RemainingDamage == TotalAttackPower。
// Damage 含打在伪装血量上的部分，DisguiseAbsorbed 单独列出这一部分。
type BattleResult struct {
	Attacker string `json:"attacker" bson:"attacker"`
	Defender string `json:"defender" bson:"defender"`

	GrossAttackPower int `json:"gross_attack_power" bson:"gross_attack_power"`
	DamageReduced    int `json:"damage_reduced" bson:"damage_reduced"`
	TotalAttackPower int `json:"total_attack_power" bson:"total_attack_power"`
	BarrierAbsorbed  int `json:"barrier_absorbed" bson:"barrier_absorbed"`
	BarrierReflected int `json:"barrier_reflected" bson:"barrier_reflected"`
	RemainingDamage  int `json:"remaining_damage" bson:"remaining_damage"`

	Damage             map[string]int `json:"damage" bson:"damage"`
	DisguiseAbsorbed   map[string]int `json:"disguise_absorbed,omitempty" bson:"disguise_absorbed,omitempty"`
	ChainDamage        map[string]int `json:"chain_damage" bson:"chain_damage"`
	ReflectDamage      map[string]int `json:"reflect_damage" bson:"reflect_damage"`
	DestroyedCityNames []string       `json:"destroyed_city_names" bson:"destroyed_city_names"`
	ReflectDestroyed   []string       `json:"reflect_destroyed" bson:"reflect_destroyed"`
	HpDeltas           []HpDelta      `json:"hp_deltas" bson:"hp_deltas"`

	Warnings     []string      `json:"warnings,omitempty" bson:"warnings,omitempty"`
	SpecialEvent *SpecialEvent `json:"special_event,omitempty" bson:"special_event,omitempty"`
}

func NewBattleResult(attacker, defender string) *BattleResult {
	return &BattleResult{
		Attacker:         attacker,
		Defender:         defender,
		Damage:           make(map[string]int),
		ChainDamage:      make(map[string]int),
		ReflectDamage:    make(map[string]int),
		DisguiseAbsorbed: make(map[string]int),
	}
}

// DamageSum 主目标伤害合计（不含连锁）。
func (r *BattleResult) DamageSum() int {
	n := 0
	for _, v := range r.Damage {
		n += v
	}
	return n
}

type FatigueEvent struct {
	Player   string `json:"player" bson:"player"`
	City     string `json:"city" bson:"city"`
	HpBefore int    `json:"hp_before" bson:"hp_before"`
	HpAfter  int    `json:"hp_after" bson:"hp_after"`
	Streak   int    `json:"streak" bson:"streak"`
}

// RoundReport 一回合的完整审计记录。
type RoundReport struct {
	ID         int64                    `json:"id" bson:"id"`
	Room       string                   `json:"room" bson:"room"`
	Round      int                      `json:"round" bson:"round"`
	Results    []*BattleResult          `json:"results" bson:"results"`
	Events     map[string]*SpecialEvent `json:"events" bson:"events"`
	Fatigue    []FatigueEvent           `json:"fatigue" bson:"fatigue"`
	Fielded    Deployment               `json:"fielded" bson:"fielded"`
	Eliminated []string                 `json:"eliminated,omitempty" bson:"eliminated,omitempty"`
	Gold       map[string]int           `json:"gold" bson:"gold"`
	Public     []string                 `json:"public" bson:"public"`
	Private    map[string][]string      `json:"private,omitempty" bson:"private,omitempty"`
	Warnings   []string                 `json:"warnings,omitempty" bson:"warnings,omitempty"`
	CreatedAt  time.Time                `json:"created_at" bson:"created_at"`
}

func NewRoundReport(room string, round int) *RoundReport {
	return &RoundReport{
		Room:    room,
		Round:   round,
		Events:  make(map[string]*SpecialEvent),
		Fielded: make(Deployment),
		Gold:    make(map[string]int),
	}
}

// DestroyedCount 本回合被攻破的城池数（含反弹击毁）。
func (r *RoundReport) DestroyedCount() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.DestroyedCityNames) + len(res.ReflectDestroyed)
	}
	return n
}
