package service

import (
	"math"

	"CityCard/internal/battle/effect"
	"CityCard/internal/battle/entity"
)

type PowerCalculator struct{}

func NewPowerCalculator() *PowerCalculator {
	return &PowerCalculator{}
}

// Power 单城攻击力。乘区顺序固定：
// 主城 ×2 -> 副中心 ×1.5 -> 登高台 ×2 -> 背水一战 ×2 -> 破釜沉舟 ×2 -> 通用倍率 -> 通用加成 -> 虚弱置 1。
// 阵亡或无血量的城池为 0，结果向下取整且不为负。
func (pc *PowerCalculator) Power(reg *effect.Registry, p *entity.Player, cityName string) int {
	c, ok := p.City(cityName)
	if !ok || !c.IsAlive() || c.Hp <= 0 {
		return 0
	}
	city := effect.CityTarget(p.Name, cityName)
	owner := effect.PlayerTarget(p.Name)

	power := c.CurrentHp
	if p.IsCenter(cityName) {
		power *= 2
	}
	if reg.Has(effect.KindSubCenter, city) {
		power = power * 3 / 2
	}
	if reg.Has(effect.KindElevatedSeat, city) {
		power *= 2
	}
	if reg.Has(effect.KindDesperation, owner) {
		power *= 2
	}
	if reg.Has(effect.KindLastStand, owner) {
		power *= 2
	}
	for _, e := range reg.All(effect.KindPowerMultiplier, city) {
		power = int(math.Floor(float64(power) * e.Magnitude))
	}
	for _, e := range reg.All(effect.KindPowerAdditive, city) {
		power += int(math.Floor(e.Magnitude))
	}
	if reg.Has(effect.KindForcedWeakness, city) {
		power = 1
	}
	if power < 0 {
		return 0
	}
	return power
}
