package utils

import "math/rand"

// NewRand 返回可复现的随机源；seed 为 0 时固定用 1，保证“不配种子”也可复现。
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}

// Chance 以概率 p 返回 true，p<=0 恒假，p>=1 恒真（不消耗随机数）。
func Chance(r *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.Float64() < p
}
