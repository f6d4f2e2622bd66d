package serverconfig

import (
	"sync/atomic"

	"CityCard/internal/shared/config"
)

var Conf Config

var battle atomic.Pointer[BattleConfig]

// Load 读取 configs/conf.yml；battle 段支持热更新，读的一方用 Battle()。
func Load(cfgName string) error {
	err := config.Load(cfgName, &Conf,
		config.WithDefault("storage.driver", "memory"),
		config.WithDefault("opsserver.host", "0.0.0.0"),
		config.WithWatch(func(out any) {
			if c, ok := out.(*Config); ok {
				b := c.Battle
				battle.Store(&b)
			}
		}),
	)
	if err != nil {
		return err
	}
	b := Conf.Battle
	battle.Store(&b)
	return nil
}

// Battle 返回最近一次加载的对战参数快照。
func Battle() BattleConfig {
	if b := battle.Load(); b != nil {
		return *b
	}
	return BattleConfig{}
}
