package actors

import (
	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"CityCard/internal/shared/actor/messages"
	"CityCard/modules/kit/errx"
)

// ManagerActor 按房间号路由，每个房间一个 RoomActor，按需创建。
type ManagerActor struct {
	deps       Deps
	roomActors map[string]*actor.PID
}

func NewManagerActor(deps Deps) *ManagerActor {
	return &ManagerActor{
		deps:       deps.withDefaults(),
		roomActors: make(map[string]*actor.PID),
	}
}

func (m *ManagerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Terminated:
		for room, pid := range m.roomActors {
			if pid.Equal(msg.Who) {
				delete(m.roomActors, room)
				m.deps.Log.Info("room actor terminated", zap.String("room", room))
			}
		}
	case messages.RoomMessage:
		if msg == nil || msg.RoomID() == "" {
			ctx.Respond(&messages.Ack{Err: errx.ErrInvalidSetup.WithData("reason", "empty room")})
			return
		}
		ctx.Forward(m.getOrSpawn(ctx, msg.RoomID()))
	}
}

func (m *ManagerActor) getOrSpawn(ctx actor.Context, room string) *actor.PID {
	if pid, ok := m.roomActors[room]; ok && pid != nil {
		return pid
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewRoomActor(room, m.deps)
	})
	pid := ctx.Spawn(props)
	ctx.Watch(pid)
	m.roomActors[room] = pid
	return pid
}
