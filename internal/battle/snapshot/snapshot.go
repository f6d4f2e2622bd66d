package snapshot

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"CityCard/internal/battle/entity"
	"CityCard/modules/kit/errx"
)

// File 对局快照文件：开局玩家、开局效果和后续各回合的出战安排。
type File struct {
	Room    string           `yaml:"room"`
	Round   int              `yaml:"round"`
	Players []PlayerSpec     `yaml:"players"`
	Effects []map[string]any `yaml:"effects"`
	Rounds  []map[string]any `yaml:"rounds"`
}

type PlayerSpec struct {
	Name    string         `yaml:"name"`
	Gold    int            `yaml:"gold"`
	Center  string         `yaml:"center"`
	Streaks map[string]int `yaml:"streaks"`
	Cities  []CitySpec     `yaml:"cities"`
}

// CitySpec 省略的血量字段按满血补齐，alive 缺省由 current_hp 推出。
type CitySpec struct {
	Name              string `yaml:"name"`
	Province          string `yaml:"province"`
	Hp                int    `yaml:"hp"`
	BaseHp            *int   `yaml:"base_hp"`
	CurrentHp         *int   `yaml:"current_hp"`
	Alive             *bool  `yaml:"alive"`
	ProvincialCapital bool   `yaml:"provincial_capital"`
	Coastal           bool   `yaml:"coastal"`
}

// RoundSpec 单回合安排。出战名单里单个城池可以直接写字符串。
type RoundSpec struct {
	Deployment map[string][]string `mapstructure:"deployment"`
	Targets    map[string]string   `mapstructure:"targets"`
}

// Snapshot State 是解析好的开局状态；Effects 保留原始效果描述，交给房间 actor 建房时重新解析。
type Snapshot struct {
	State   *entity.EngineState
	Effects []map[string]any
	Rounds  []*entity.BattleContext
}

func Load(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errx.ErrInvalidSetup.WithCause(err).WithData("path", path)
	}
	s, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func Parse(raw []byte) (*Snapshot, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errx.ErrInvalidSetup.WithCause(err)
	}
	return f.Build()
}

func (f *File) Build() (*Snapshot, error) {
	if len(f.Players) == 0 {
		return nil, errx.ErrInvalidSetup.WithData("reason", "no players")
	}
	players := make([]*entity.Player, 0, len(f.Players))
	for _, ps := range f.Players {
		p, err := ps.build()
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}

	state := entity.NewEngineState(f.Room, players...)
	if f.Round > 0 {
		state.Round = f.Round
		state.Registry.SetRound(f.Round)
	}
	for i, raw := range f.Effects {
		if err := state.Registry.AddDecoded(raw); err != nil {
			return nil, errx.ErrInvalidSetup.WithCause(err).WithData("effect_index", i)
		}
	}

	out := &Snapshot{State: state, Effects: f.Effects}
	for i, raw := range f.Rounds {
		bc, err := decodeRound(raw)
		if err != nil {
			return nil, errx.ErrInvalidSetup.WithCause(err).WithData("round_index", i)
		}
		out.Rounds = append(out.Rounds, bc)
	}
	return out, nil
}

func (ps PlayerSpec) build() (*entity.Player, error) {
	if ps.Name == "" {
		return nil, errx.ErrInvalidSetup.WithData("reason", "player without name")
	}
	p := entity.NewPlayer(ps.Name, ps.Gold)
	for _, cs := range ps.Cities {
		if !p.AddCity(cs.build()) {
			return nil, errx.ErrInvalidSetup.WithData("player", ps.Name).WithData("city", cs.Name).WithData("reason", "duplicate or empty city")
		}
	}
	p.Center = ps.Center
	for name, n := range ps.Streaks {
		p.Streaks[name] = n
	}
	return p, nil
}

func (cs CitySpec) build() *entity.City {
	c := entity.NewCity(cs.Name, cs.Province, cs.Hp)
	if cs.BaseHp != nil {
		c.BaseHp = *cs.BaseHp
	}
	if cs.CurrentHp != nil {
		c.SetCurrentHp(*cs.CurrentHp)
	}
	c.Alive = c.CurrentHp > 0
	if cs.Alive != nil {
		c.Alive = *cs.Alive && c.CurrentHp > 0
	}
	c.ProvincialCapital = cs.ProvincialCapital
	c.Coastal = cs.Coastal
	return c
}

// decodeRound 兼容两种写法：带 deployment/targets 的完整形式，或直接把整张表当出战名单。
func decodeRound(raw map[string]any) (*entity.BattleContext, error) {
	_, hasDeployment := raw["deployment"]
	_, hasTargets := raw["targets"]
	if !hasDeployment && !hasTargets {
		raw = map[string]any{"deployment": raw}
	}

	var rs RoundSpec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       indexedListHook,
		WeaklyTypedInput: true,
		Result:           &rs,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}

	bc := entity.NewBattleContext()
	for player, cities := range rs.Deployment {
		bc.Deployment[player] = cities
	}
	for att, def := range rs.Targets {
		bc.Targets[att] = def
	}
	return bc, nil
}

// indexedListHook 出战名单按下标存成对象（{0: 苏州市, 1: 无锡市}）时，按下标顺序摊平成列表。
func indexedListHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Map || to.Kind() != reflect.Slice {
		return data, nil
	}
	v := reflect.ValueOf(data)
	type entry struct {
		key string
		val any
	}
	entries := make([]entry, 0, v.Len())
	for _, k := range v.MapKeys() {
		entries = append(entries, entry{key: fmt.Sprint(k.Interface()), val: v.MapIndex(k).Interface()})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, errA := strconv.Atoi(entries[i].key)
		b, errB := strconv.Atoi(entries[j].key)
		if errA == nil && errB == nil {
			return a < b
		}
		if (errA == nil) != (errB == nil) {
			return errA == nil
		}
		return entries[i].key < entries[j].key
	})
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.val)
	}
	return out, nil
}
