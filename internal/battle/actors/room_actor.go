package actors

import (
	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"CityCard/internal/battle/dc"
	"CityCard/internal/battle/entity"
	"CityCard/internal/battle/service"
	"CityCard/internal/shared/actor/messages"
	"CityCard/modules/kit/errx"
	"CityCard/modules/kit/logx"
)

type State int

const (
	None State = iota
	Online
	Stopping
	Offline
)

// Deps 所有房间共享的依赖。引擎带随机源，不能跨房间共用，所以这里只放构造函数。
type Deps struct {
	NewEngine func(room string) *service.Engine
	Reports   *dc.ReportDC
	Log       logx.Logger
}

func (d Deps) withDefaults() Deps {
	if d.NewEngine == nil {
		d.NewEngine = func(string) *service.Engine { return service.NewEngine() }
	}
	if d.Log == nil {
		d.Log = logx.Nop()
	}
	return d
}

// RoomActor 一个房间的全部状态只在这里被修改，回合天然串行。
type RoomActor struct {
	state      State
	room       string
	deps       Deps
	engine     *service.Engine
	game       *entity.EngineState
	dispatcher *Dispatcher
}

func NewRoomActor(room string, deps Deps) *RoomActor {
	return &RoomActor{
		state:      None,
		room:       room,
		deps:       deps.withDefaults(),
		dispatcher: NewDispatcher(),
	}
}

func (r *RoomActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		r.engine = r.deps.NewEngine(r.room)
		r.state = Online
		return
	case *actor.Stopping:
		r.state = Stopping
		return
	case *actor.Stopped:
		r.state = Offline
		return
	case *actor.Restarting:
		// 状态已不可信，等待重新建房
		r.game = nil
		r.deps.Log.Warn("room actor restarting", zap.String("room", r.room))
		return
	case messages.RoomMessage:
		if r.state != Online {
			ctx.Respond(&messages.Ack{Err: errx.ErrUnavailable.WithData("room", r.room)})
			return
		}
		r.dispatcher.Dispatch(ctx, r, msg)
	default:
		return
	}
}

func (r *RoomActor) Room() string {
	return r.room
}

func (r *RoomActor) Game() *entity.EngineState {
	return r.game
}
