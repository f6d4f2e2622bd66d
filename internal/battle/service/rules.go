package service

import (
	"CityCard/internal/shared/serverconfig"
)

// Rules 回合结算的数值参数。
type Rules struct {
	GoldCap         int
	BaseIncome      int
	DestroyBonus    int
	ConfusionRefund int
	DisguisePenalty int
	BarrierRegen    int
	HpCap           int
	MirageBlockRate float64
	ChainRate       float64
	// ElevatedRegenRate 登高台每回合按基础血量回复的比例。
	ElevatedRegenRate float64
	// BankFloor 血库余额低于该值即被摧毁。
	BankFloor int
	Seed      int64
}

func DefaultRules() Rules {
	return Rules{
		GoldCap:           24,
		BaseIncome:        3,
		DestroyBonus:      1,
		ConfusionRefund:   10,
		DisguisePenalty:   9,
		BarrierRegen:      3000,
		HpCap:             120000,
		MirageBlockRate:   0.75,
		ChainRate:         0.5,
		ElevatedRegenRate: 0.1,
		BankFloor:         2000,
		Seed:              1,
	}
}

// FromConfig 配置里为 0 的项沿用默认值。
func FromConfig(bc serverconfig.BattleConfig) Rules {
	r := DefaultRules()
	if bc.GoldCap > 0 {
		r.GoldCap = bc.GoldCap
	}
	if bc.BaseIncome > 0 {
		r.BaseIncome = bc.BaseIncome
	}
	if bc.DestroyBonus > 0 {
		r.DestroyBonus = bc.DestroyBonus
	}
	if bc.ConfusionRefund > 0 {
		r.ConfusionRefund = bc.ConfusionRefund
	}
	if bc.DisguisePenalty > 0 {
		r.DisguisePenalty = bc.DisguisePenalty
	}
	if bc.BarrierRegen > 0 {
		r.BarrierRegen = bc.BarrierRegen
	}
	if bc.HpCap > 0 {
		r.HpCap = bc.HpCap
	}
	if bc.MirageBlockRate > 0 {
		r.MirageBlockRate = bc.MirageBlockRate
	}
	if bc.ChainRate > 0 {
		r.ChainRate = bc.ChainRate
	}
	if bc.Seed != 0 {
		r.Seed = bc.Seed
	}
	return r
}

// bankInterestPercent 血库利率（百分比）按余额分档。
func bankInterestPercent(balance int) int {
	switch {
	case balance < 10000:
		return 10
	case balance < 20000:
		return 8
	case balance < 30000:
		return 6
	case balance < 40000:
		return 4
	case balance < 50000:
		return 2
	default:
		return 1
	}
}
