package dto

import (
	"CityCard/internal/battle/effect"
	"CityCard/internal/battle/entity"
)

type EffectView struct {
	Kind         string  `json:"kind"`
	Owner        string  `json:"owner"`
	Player       string  `json:"player"`
	City         string  `json:"city,omitempty"`
	Magnitude    float64 `json:"magnitude,omitempty"`
	RoundsLeft   int     `json:"rounds_left"`
	AppliedRound int     `json:"applied_round"`
	Source       string  `json:"source,omitempty"`
}

type StateView struct {
	Room    string           `json:"room"`
	Round   int              `json:"round"`
	Players []*entity.Player `json:"players"`
	Effects []EffectView     `json:"effects"`
}

func NewStateView(s *entity.EngineState) StateView {
	v := StateView{
		Room:    s.Room,
		Round:   s.Round,
		Players: s.Players,
		Effects: make([]EffectView, 0, s.Registry.Len()),
	}
	s.Registry.Each(func(e *effect.Effect) bool {
		v.Effects = append(v.Effects, EffectView{
			Kind:         e.Kind.String(),
			Owner:        e.Owner,
			Player:       e.Target.Player,
			City:         e.Target.City,
			Magnitude:    e.Magnitude,
			RoundsLeft:   e.RoundsLeft,
			AppliedRound: e.AppliedRound,
			Source:       e.Source,
		})
		return true
	})
	return v
}
