package actor

import (
	"context"
	"errors"
	"time"

	protoactor "github.com/asynkron/protoactor-go/actor"

	"CityCard/internal/battle/actors"
	"CityCard/internal/battle/entity"
	"CityCard/internal/shared/actor/messages"
	"CityCard/modules/kit/errx"
)

const defaultAskTimeout = 3 * time.Second

// Runtime 对外的同步调用入口：请求投给 ManagerActor，按房间转发，等待回复。
type Runtime struct {
	system  *protoactor.ActorSystem
	root    *protoactor.RootContext
	manager *protoactor.PID
	timeout time.Duration
}

func NewRuntime(deps actors.Deps, askTimeout time.Duration) *Runtime {
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}

	system := protoactor.NewActorSystem()
	root := system.Root
	managerProps := protoactor.PropsFromProducer(func() protoactor.Actor {
		return actors.NewManagerActor(deps)
	})
	manager := root.Spawn(managerProps)

	return &Runtime{
		system:  system,
		root:    root,
		manager: manager,
		timeout: askTimeout,
	}
}

func (r *Runtime) Shutdown() {
	if r == nil {
		return
	}
	if r.root != nil && r.manager != nil {
		_ = r.root.StopFuture(r.manager).Wait()
	}
	if r.system != nil {
		r.system.Shutdown()
	}
}

func (r *Runtime) CreateRoom(ctx context.Context, room string, round int, players []*entity.Player, effects []map[string]any) (*entity.EngineState, error) {
	res, err := r.request(ctx, &messages.CreateRoom{
		RoomBaseMessage: messages.RoomBaseMessage{Room: room},
		Round:           round,
		Players:         players,
		Effects:         effects,
	})
	if err != nil {
		return nil, err
	}
	return stateReply(res)
}

func (r *Runtime) ApplyEffect(ctx context.Context, room string, effect map[string]any) error {
	res, err := r.request(ctx, &messages.ApplyEffect{
		RoomBaseMessage: messages.RoomBaseMessage{Room: room},
		Effect:          effect,
	})
	if err != nil {
		return err
	}
	ack, ok := res.(*messages.Ack)
	if !ok {
		return errx.ErrInternal.WithData("reason", "unexpected reply type")
	}
	return ack.Err
}

func (r *Runtime) ResolveRound(ctx context.Context, room string, bc *entity.BattleContext) (*entity.RoundReport, error) {
	res, err := r.request(ctx, &messages.ResolveRound{
		RoomBaseMessage: messages.RoomBaseMessage{Room: room},
		Battle:          bc,
	})
	if err != nil {
		return nil, err
	}
	switch reply := res.(type) {
	case *messages.RoundReply:
		return reply.Report, reply.Err
	case *messages.Ack:
		return nil, reply.Err
	}
	return nil, errx.ErrInternal.WithData("reason", "unexpected reply type")
}

// State 房间状态副本。
func (r *Runtime) State(ctx context.Context, room string) (*entity.EngineState, error) {
	res, err := r.request(ctx, &messages.QueryState{
		RoomBaseMessage: messages.RoomBaseMessage{Room: room},
	})
	if err != nil {
		return nil, err
	}
	return stateReply(res)
}

func stateReply(res any) (*entity.EngineState, error) {
	switch reply := res.(type) {
	case *messages.StateReply:
		return reply.State, reply.Err
	case *messages.Ack:
		return nil, reply.Err
	}
	return nil, errx.ErrInternal.WithData("reason", "unexpected reply type")
}

func (r *Runtime) request(ctx context.Context, msg messages.RoomMessage) (any, error) {
	if r == nil || r.root == nil || r.manager == nil {
		return nil, errx.ErrUnavailable.WithData("reason", "actor runtime 未初始化")
	}
	if ctx != nil && ctx.Err() != nil {
		return nil, errx.ErrTimeout.WithCause(ctx.Err())
	}

	future := r.root.RequestFuture(r.manager, msg, r.timeoutFromContext(ctx))
	res, err := future.Result()
	if err != nil {
		if errors.Is(err, protoactor.ErrTimeout) {
			return nil, errx.ErrTimeout.WithCause(err).WithData("room", msg.RoomID())
		}
		return nil, errx.ErrUnavailable.WithCause(err).WithData("room", msg.RoomID())
	}
	return res, nil
}

func (r *Runtime) timeoutFromContext(ctx context.Context) time.Duration {
	if r == nil || r.timeout <= 0 {
		return defaultAskTimeout
	}
	if ctx == nil {
		return r.timeout
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return r.timeout
	}
	remain := time.Until(deadline)
	if remain <= 0 {
		return time.Millisecond
	}
	if remain < r.timeout {
		return remain
	}
	return r.timeout
}
