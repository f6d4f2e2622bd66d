package service

import (
	"context"
	"testing"

	"CityCard/internal/battle/effect"
	"CityCard/internal/battle/entity"
	"CityCard/internal/battle/journal"
)

func mkCity(name, province string, hp int) *entity.City {
	return entity.NewCity(name, province, hp)
}

func mkPlayer(name, center string, cities ...*entity.City) *entity.Player {
	p := entity.NewPlayer(name, 0)
	for _, c := range cities {
		p.AddCity(c)
	}
	p.Center = center
	return p
}

func mkBattle(dep map[string][]string) *entity.BattleContext {
	bc := entity.NewBattleContext()
	for k, v := range dep {
		bc.Deployment[k] = append([]string(nil), v...)
	}
	return bc
}

func newTestEngine(opts ...Option) *Engine {
	opts = append([]Option{WithSink(journal.Nop())}, opts...)
	return NewEngine(opts...)
}

func mustAdd(t *testing.T, s *entity.EngineState, owner string, target effect.Target, e effect.Effect) {
	t.Helper()
	if err := s.AddEffect(owner, target, e); err != nil {
		t.Fatalf("add effect %s: %v", e.Kind, err)
	}
}

func mustResolve(t *testing.T, e *Engine, s *entity.EngineState, bc *entity.BattleContext) *entity.RoundReport {
	t.Helper()
	r, err := e.ResolveRound(context.Background(), s, bc)
	if err != nil {
		t.Fatalf("resolve round: %v", err)
	}
	return r
}

func resultOf(t *testing.T, r *entity.RoundReport, attacker string) *entity.BattleResult {
	t.Helper()
	for _, res := range r.Results {
		if res.Attacker == attacker {
			return res
		}
	}
	t.Fatalf("no result for attacker %s", attacker)
	return nil
}

func checkConservation(t *testing.T, res *entity.BattleResult) {
	t.Helper()
	got := res.BarrierAbsorbed + res.BarrierReflected + res.DamageSum() + res.RemainingDamage
	if got != res.TotalAttackPower {
		t.Fatalf("伤害不守恒: absorbed=%d reflected=%d damage=%d remaining=%d total=%d",
			res.BarrierAbsorbed, res.BarrierReflected, res.DamageSum(), res.RemainingDamage, res.TotalAttackPower)
	}
}

func checkHpBounds(t *testing.T, s *entity.EngineState) {
	t.Helper()
	for _, p := range s.Players {
		for _, name := range p.CityNames() {
			c := p.Cities[name]
			if c.CurrentHp < 0 || c.CurrentHp > c.Hp {
				t.Fatalf("%s/%s 血量越界: cur=%d hp=%d", p.Name, name, c.CurrentHp, c.Hp)
			}
		}
	}
}

func checkDestroyed(t *testing.T, s *entity.EngineState, res *entity.BattleResult) {
	t.Helper()
	def, _ := s.Player(res.Defender)
	for _, name := range res.DestroyedCityNames {
		c, ok := def.City(name)
		if !ok {
			continue
		}
		if c.CurrentHp != 0 || c.IsAlive() || c.Alive {
			t.Fatalf("%s 在攻破名单但仍存活: %+v", name, c)
		}
	}
}
