package actors

import (
	"reflect"

	"github.com/asynkron/protoactor-go/actor"

	"CityCard/internal/shared/actor/messages"
	"CityCard/modules/kit/errx"
)

type Dispatcher struct {
	handlers map[reflect.Type]Handler
}

type Handler struct {
	fn      reflect.Value
	reqType reflect.Type
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[reflect.Type]Handler),
	}
	d.registerAll()
	return d
}

func (d *Dispatcher) registerAll() {
	register(d, RH.HandleCreateRoom)
	register(d, RH.HandleApplyEffect)
	register(d, RH.HandleResolveRound)
	register(d, RH.HandleQueryState)
}

func register[Req any](
	d *Dispatcher,
	fn func(ctx actor.Context, r *RoomActor, req Req),
) {
	reqType := reflect.TypeOf((*Req)(nil)).Elem()
	if reqType == nil {
		panic("dispatcher req type cannot be nil")
	}

	d.handlers[reqType] = Handler{
		fn:      reflect.ValueOf(fn),
		reqType: reqType,
	}
}

func (d *Dispatcher) Dispatch(ctx actor.Context, r *RoomActor, req messages.RoomMessage) {
	if req == nil {
		ctx.Respond(&messages.Ack{Err: errx.ErrInvalidSetup.WithData("reason", "nil request")})
		return
	}

	bodyType := reflect.TypeOf(req)
	handler, ok := d.handlers[bodyType]
	if !ok {
		ctx.Respond(&messages.Ack{Err: errx.ErrInvalidSetup.WithData("reason", "no handler for "+bodyType.String())})
		return
	}

	handler.fn.Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(r),
		reflect.ValueOf(req),
	})
}
