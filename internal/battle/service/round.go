package service

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"CityCard/internal/battle/effect"
	"CityCard/internal/battle/entity"
	"CityCard/internal/battle/journal"
	"CityCard/internal/shared/gameconfig/city"
	"CityCard/internal/shared/metrics"
	"CityCard/internal/shared/utils"
	"CityCard/modules/kit/logx"
	"CityCard/modules/kit/tracex"
)

// Engine 回合结算入口。内部持有随机源，不是并发安全的：每个房间各用一个，回合串行调用。
type Engine struct {
	rules   Rules
	catalog *city.Catalog
	rng     *rand.Rand
	sink    journal.Sink
	log     logx.Logger
	metrics metrics.Recorder
	now     func() time.Time

	lifecycle *Lifecycle
	fatigue   *FatigueTracker
	prebattle *PreBattle
	power     *PowerCalculator
	resolver  *Resolver
}

type Option func(*Engine)

func WithRules(r Rules) Option {
	return func(e *Engine) { e.rules = r }
}

func WithCatalog(c *city.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithRand 注入随机源；不注入时按 Rules.Seed 生成。
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

func WithSink(s journal.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

func WithLogger(l logx.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithMetrics(m metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rules: DefaultRules(),
		log:   logx.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog = city.Builtin()
	}
	if e.rng == nil {
		e.rng = utils.NewRand(e.rules.Seed)
	}
	if e.sink == nil {
		e.sink = NewDefaultSink(e.log)
	}
	e.power = NewPowerCalculator()
	e.lifecycle = NewLifecycle(e.rules)
	e.fatigue = NewFatigueTracker()
	e.prebattle = NewPreBattle(e.rules, e.catalog, e.rng)
	e.resolver = NewResolver(e.rules, e.power)
	return e
}

func NewDefaultSink(l logx.Logger) journal.Sink {
	return journal.NewZapSink(l)
}

func (e *Engine) Rules() Rules {
	return e.rules
}

func (e *Engine) Power() *PowerCalculator {
	return e.power
}

func (e *Engine) Fatigue() *FatigueTracker {
	return e.fatigue
}

// ResolveRound 结算 state.Round 这一回合，结束后回合号 +1。
// 只有开局数据不合法才返回错误；回合内的数据问题记入战报 Warnings 并跳过。
func (e *Engine) ResolveRound(ctx context.Context, state *entity.EngineState, bc *entity.BattleContext) (*entity.RoundReport, error) {
	if err := validate(state); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	start := e.now()
	ctx = tracex.WithRound(ctx, state.Room, state.Round)
	if _, ok := tracex.TraceIDFrom(ctx); !ok {
		ctx = tracex.WithTraceID(ctx, tracex.NewTraceID())
	}
	state.Registry.SetRound(state.Round)

	rec := journal.NewRecorder()
	sc := newScope(ctx, state, bc, journal.Tee(rec, e.sink), e.log)

	e.ensureCenters(sc)
	e.discardStaleEvents(sc)
	e.lifecycle.Tick(state, sc.out, sc.log)
	e.normalizeDeployment(sc)
	e.prebattle.run(sc)
	sc.report.Fatigue = e.fatigue.ApplyReduction(state.Active(), state.Registry, sc.battle.Deployment, sc.out)

	snap := state.Clone()
	for _, pair := range e.pairings(sc) {
		res := e.resolver.resolve(sc, snap, pair[0], pair[1])
		sc.report.Results = append(sc.report.Results, res)
	}

	settleCenters(sc)
	e.fatigue.UpdateStreaks(state.Players, sc.fielded)
	settleEconomy(sc, e.rules)

	report := sc.report
	report.ID = utils.NextReportID()
	report.Fielded = sc.fielded
	report.Public = rec.PublicLines()
	report.Private = rec.PrivateLines()
	report.CreatedAt = e.now()

	state.Round++
	state.Registry.SetRound(state.Round)

	e.observe(report, e.now().Sub(start))
	sc.log.Info("round resolved",
		zap.Int("results", len(report.Results)),
		zap.Int("destroyed", report.DestroyedCount()),
		zap.Int("warnings", len(report.Warnings)),
	)
	return report, nil
}

func validate(state *entity.EngineState) error {
	if state == nil || state.Registry == nil {
		return ErrNilState
	}
	if len(state.Players) == 0 {
		return ErrNoPlayers
	}
	seen := make(map[string]bool, len(state.Players))
	for _, p := range state.Players {
		if p == nil || p.Name == "" {
			return ErrNoPlayers.WithData("reason", "nil or unnamed player")
		}
		if seen[p.Name] {
			return ErrDuplicateName.WithData("player", p.Name)
		}
		seen[p.Name] = true
	}
	if state.Visibility == nil {
		state.Visibility = entity.NewVisibility()
	}
	return nil
}

// ensureCenters 开局没有指定主城的玩家，用血量最高的存活城池补上。
func (e *Engine) ensureCenters(sc *roundScope) {
	for _, p := range sc.state.Active() {
		if p.Center != "" {
			continue
		}
		if name, ok := p.StrongestLiving(); ok {
			p.Center = name
			sc.warn("setup", "player without center", zap.String("player", p.Name), zap.String("center", name))
		}
	}
}

// discardStaleEvents 回合号对不上的特殊事件在结算前丢弃。
func (e *Engine) discardStaleEvents(sc *roundScope) {
	for _, k := range sc.battle.EventKeys() {
		ev := sc.battle.Events[k]
		if ev != nil && ev.Round == sc.round() {
			sc.report.Events[k] = ev
			continue
		}
		delete(sc.battle.Events, k)
		round := -1
		if ev != nil {
			round = ev.Round
		}
		sc.warn("special_event", "stale event discarded", zap.String("pair", k), zap.Int("event_round", round))
	}
}

// normalizeDeployment 出战名单去重，丢掉不存在、已阵亡、被禁赛的城池；
// 留下的城池记为“已上场”并对所有对手可见。
func (e *Engine) normalizeDeployment(sc *roundScope) {
	raw := sc.battle.Deployment
	clean := make(entity.Deployment, len(raw))
	for key := range raw {
		if _, ok := sc.state.Player(key); !ok {
			sc.warn("deployment", "unknown player", zap.String("player", key))
		}
	}
	reg := sc.state.Registry
	for _, p := range sc.state.Active() {
		seen := make(map[string]bool)
		for _, name := range raw[p.Name] {
			if seen[name] {
				continue
			}
			seen[name] = true
			c, ok := p.City(name)
			if !ok {
				sc.warn("deployment", "city not owned", zap.String("player", p.Name), zap.String("city", name))
				continue
			}
			if !c.IsAlive() {
				continue
			}
			if reg.Has(effect.KindBan, effect.CityTarget(p.Name, name)) {
				journal.Publicf(sc.out, "%s 的 %s 被禁赛，本回合不能出战", p.Name, name)
				continue
			}
			clean[p.Name] = append(clean[p.Name], name)
			sc.fielded.Add(p.Name, name)
		}
	}
	active := sc.state.Active()
	for _, owner := range active {
		for _, observer := range active {
			sc.reveal(owner.Name, observer.Name, clean[owner.Name])
		}
	}
	sc.battle.Deployment = clean
}

// pairings 两人对局双方互打；多人时每名玩家打 Targets 指定的对手，缺省打下一位。
func (e *Engine) pairings(sc *roundScope) [][2]*entity.Player {
	active := sc.state.Active()
	if len(active) < 2 {
		return nil
	}
	if len(active) == 2 {
		return [][2]*entity.Player{{active[0], active[1]}, {active[1], active[0]}}
	}
	var out [][2]*entity.Player
	for i, att := range active {
		def := active[(i+1)%len(active)]
		if name, ok := sc.battle.Targets[att.Name]; ok {
			p, found := sc.state.Player(name)
			if !found || p.Eliminated || p == att {
				sc.warn("pairing", "invalid target", zap.String("attacker", att.Name), zap.String("target", name))
			} else {
				def = p
			}
		}
		out = append(out, [2]*entity.Player{att, def})
	}
	return out
}

func (e *Engine) observe(r *entity.RoundReport, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	for _, ev := range r.Events {
		if ev != nil {
			e.metrics.IncSpecialEvent(string(ev.Kind))
		}
	}
	e.metrics.ObserveRound(elapsed, r.DestroyedCount(), len(r.Fatigue))
}
