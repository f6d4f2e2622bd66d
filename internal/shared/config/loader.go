package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

type options struct {
	watch    bool
	onChange func(out any)
	defaults map[string]any
}

type Option func(*options)

// WithWatch 开启文件监听，变更后重新 Unmarshal 到同一个 out，再回调 fn。
func WithWatch(fn func(out any)) Option {
	return func(o *options) {
		o.watch = true
		o.onChange = fn
	}
}

// WithDefault 设置某个 key 的默认值（文件里缺省时生效）。
func WithDefault(key string, value any) Option {
	return func(o *options) {
		if o.defaults == nil {
			o.defaults = make(map[string]any)
		}
		o.defaults[key] = value
	}
}

var reloadMu sync.Mutex

func load(configPath string, out any, opts ...Option) error {
	if !fileExist(configPath) {
		return fmt.Errorf("config file not exist, configPath=%v", configPath)
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	for k, val := range o.defaults {
		v.SetDefault(k, val)
	}
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	if err := v.Unmarshal(out, decodeHook()); err != nil {
		return err
	}

	if o.watch {
		v.OnConfigChange(func(e fsnotify.Event) {
			reloadMu.Lock()
			defer reloadMu.Unlock()
			if err := v.Unmarshal(out, decodeHook()); err != nil {
				// 热更新失败时保留旧值
				return
			}
			if o.onChange != nil {
				o.onChange(out)
			}
		})
		v.WatchConfig()
	}
	return nil
}

func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}
