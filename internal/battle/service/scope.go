package service

import (
	"context"

	"go.uber.org/zap"

	"CityCard/internal/battle/entity"
	"CityCard/internal/battle/journal"
	"CityCard/modules/kit/errx"
	"CityCard/modules/kit/logx"
)

var (
	ErrNilState      = errx.NewBiz(errx.CodeInvalidSetup, "对局状态为空")
	ErrNoPlayers     = errx.NewBiz(errx.CodeInvalidSetup, "对局没有玩家")
	ErrDuplicateName = errx.NewBiz(errx.CodeInvalidSetup, "玩家重名")
)

// roundScope 一次回合计算期间各组件共享的上下文。
type roundScope struct {
	ctx     context.Context
	state   *entity.EngineState
	battle  *entity.BattleContext
	fielded entity.Deployment
	report  *entity.RoundReport
	out     journal.Sink
	log     logx.Logger
}

func newScope(ctx context.Context, state *entity.EngineState, bc *entity.BattleContext, out journal.Sink, log logx.Logger) *roundScope {
	if ctx == nil {
		ctx = context.Background()
	}
	if bc == nil {
		bc = entity.NewBattleContext()
	}
	if bc.Deployment == nil {
		bc.Deployment = make(entity.Deployment)
	}
	if out == nil {
		out = journal.Nop()
	}
	if log == nil {
		log = logx.Nop()
	}
	return &roundScope{
		ctx:     ctx,
		state:   state,
		battle:  bc,
		fielded: make(entity.Deployment),
		report:  entity.NewRoundReport(state.Room, state.Round),
		out:     out,
		log:     log.WithContext(ctx),
	}
}

// warn 记录可跳过的数据问题：写 WARN 日志并进入战报，回合继续。
func (sc *roundScope) warn(action, reason string, fields ...zap.Field) {
	logx.ReportWarnWithLoggerContext(sc.ctx, sc.log, action, reason, fields...)
	sc.report.Warnings = append(sc.report.Warnings, action+": "+reason)
}

func (sc *roundScope) round() int {
	return sc.state.Round
}

// reveal 让 a、b 双方互相看到这些城池。
func (sc *roundScope) reveal(owner, observer string, cities []string) {
	for _, c := range cities {
		sc.state.Visibility.Reveal(owner, observer, c)
	}
}
