package entity

import (
	"CityCard/internal/battle/effect"
)

// EngineState 一个房间的全部对局状态，按引用在各组件之间传递。
type EngineState struct {
	Room       string
	Round      int
	Players    []*Player
	Registry   *effect.Registry
	Visibility *Visibility
}

func NewEngineState(room string, players ...*Player) *EngineState {
	reg := effect.NewRegistry()
	return &EngineState{
		Room:       room,
		Round:      1,
		Players:    players,
		Registry:   reg,
		Visibility: NewVisibility(),
	}
}

func (s *EngineState) Player(name string) (*Player, bool) {
	if s == nil {
		return nil, false
	}
	for _, p := range s.Players {
		if p != nil && p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Active 未出局的玩家，保持座次顺序。
func (s *EngineState) Active() []*Player {
	var out []*Player
	for _, p := range s.Players {
		if p != nil && !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

// AddEffect 技能侧写入效果的入口。
func (s *EngineState) AddEffect(owner string, target effect.Target, e effect.Effect) error {
	return s.Registry.Add(owner, target, e)
}

func (s *EngineState) Clone() *EngineState {
	if s == nil {
		return nil
	}
	c := &EngineState{
		Room:       s.Room,
		Round:      s.Round,
		Players:    make([]*Player, 0, len(s.Players)),
		Registry:   s.Registry.Clone(),
		Visibility: s.Visibility.Clone(),
	}
	for _, p := range s.Players {
		c.Players = append(c.Players, p.Clone())
	}
	return c
}
