package actors

import (
	"context"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"CityCard/internal/battle/entity"
	"CityCard/internal/shared/actor/messages"
	"CityCard/modules/kit/errx"
	"CityCard/modules/kit/logx"
	"CityCard/modules/kit/tracex"
)

type RoomHandler struct{}

var RH = &RoomHandler{}

var errRoomNotCreated = errx.NewBiz(errx.CodeNotFound, "房间未创建")

func (h *RoomHandler) HandleCreateRoom(ctx actor.Context, r *RoomActor, req *messages.CreateRoom) {
	if len(req.Players) == 0 {
		ctx.Respond(&messages.StateReply{Err: errx.ErrInvalidSetup.WithData("room", r.room).WithData("reason", "no players")})
		return
	}
	players := make([]*entity.Player, 0, len(req.Players))
	for _, pl := range req.Players {
		if pl != nil {
			players = append(players, pl.Clone())
		}
	}
	game := entity.NewEngineState(r.room, players...)
	if req.Round > 0 {
		game.Round = req.Round
		game.Registry.SetRound(req.Round)
	}
	for i, raw := range req.Effects {
		if err := game.Registry.AddDecoded(raw); err != nil {
			ctx.Respond(&messages.StateReply{Err: errx.ErrInvalidSetup.WithCause(err).WithData("effect_index", i)})
			return
		}
	}
	if r.game != nil {
		r.deps.Log.Warn("room recreated", zap.String("room", r.room), zap.Int("old_round", r.game.Round))
	}
	r.game = game
	r.deps.Log.Info("room created", zap.String("room", r.room), zap.Int("players", len(players)), zap.Int("effects", game.Registry.Len()))
	ctx.Respond(&messages.StateReply{State: game.Clone()})
}

func (h *RoomHandler) HandleApplyEffect(ctx actor.Context, r *RoomActor, req *messages.ApplyEffect) {
	if r.game == nil {
		ctx.Respond(&messages.Ack{Err: errRoomNotCreated.WithData("room", r.room)})
		return
	}
	ctx.Respond(&messages.Ack{Err: r.game.Registry.AddDecoded(req.Effect)})
}

func (h *RoomHandler) HandleResolveRound(ctx actor.Context, r *RoomActor, req *messages.ResolveRound) {
	if r.game == nil {
		ctx.Respond(&messages.RoundReply{Err: errRoomNotCreated.WithData("room", r.room)})
		return
	}
	rctx := tracex.WithTraceID(context.Background(), tracex.NewTraceID())
	report, err := r.engine.ResolveRound(rctx, r.game, req.Battle)
	if err != nil {
		ctx.Respond(&messages.RoundReply{Err: err})
		return
	}
	if r.deps.Reports != nil {
		if err := r.deps.Reports.Enqueue(report); err != nil {
			logx.ReportSysErrorWithLoggerContext(rctx, r.deps.Log, logx.NewSysLog("report_enqueue", err),
				zap.String("room", r.room), zap.Int("round", report.Round))
		}
	}
	ctx.Respond(&messages.RoundReply{Report: report})
}

func (h *RoomHandler) HandleQueryState(ctx actor.Context, r *RoomActor, req *messages.QueryState) {
	if r.game == nil {
		ctx.Respond(&messages.StateReply{Err: errRoomNotCreated.WithData("room", r.room)})
		return
	}
	ctx.Respond(&messages.StateReply{State: r.game.Clone()})
}
