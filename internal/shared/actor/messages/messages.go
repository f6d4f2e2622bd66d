package messages

import (
	"CityCard/internal/battle/entity"
)

// RoomMessage 所有投递给房间 actor 的请求。
type RoomMessage interface {
	RoomID() string
}

type RoomBaseMessage struct {
	Room string
}

func (m RoomBaseMessage) RoomID() string {
	return m.Room
}

// CreateRoom 建房并写入开局效果；房间已存在时整体替换。Round 为 0 时从第 1 回合开始。
type CreateRoom struct {
	RoomBaseMessage
	Round   int
	Players []*entity.Player
	Effects []map[string]any
}

// ApplyEffect 技能侧下发的一条效果，字段形状见 effect.Spec。
type ApplyEffect struct {
	RoomBaseMessage
	Effect map[string]any
}

type ResolveRound struct {
	RoomBaseMessage
	Battle *entity.BattleContext
}

type QueryState struct {
	RoomBaseMessage
}

// StateReply 回的是状态副本，调用方可以随意读。
type StateReply struct {
	State *entity.EngineState
	Err   error
}

type RoundReply struct {
	Report *entity.RoundReport
	Err    error
}

type Ack struct {
	Err error
}
