package effect

import (
	"github.com/go-viper/mapstructure/v2"
)

// Spec 是技能侧用通用 map 描述效果时的形状。
type Spec struct {
	Kind       string  `mapstructure:"kind"`
	Owner      string  `mapstructure:"owner"`
	Player     string  `mapstructure:"player"`
	City       string  `mapstructure:"city"`
	Magnitude  float64 `mapstructure:"magnitude"`
	RoundsLeft *int    `mapstructure:"rounds"`
	Source     string  `mapstructure:"source"`

	Rest map[string]any `mapstructure:",remain"`
}

// Decode 把通用 map 解析成 Effect 与挂载点。rounds 缺省视为永久；owner 缺省为挂载玩家。
func Decode(raw map[string]any) (Effect, Target, error) {
	var s Spec
	if err := weakDecode(raw, &s); err != nil {
		return Effect{}, Target{}, ErrInvalidEffect.WithCause(err)
	}
	kind := ParseKind(s.Kind)
	if !kind.Valid() {
		return Effect{}, Target{}, ErrInvalidEffect.WithData("kind", s.Kind)
	}

	e := Effect{
		Kind:       kind,
		Owner:      s.Owner,
		Magnitude:  s.Magnitude,
		RoundsLeft: Permanent,
		Source:     s.Source,
	}
	if s.RoundsLeft != nil {
		e.RoundsLeft = *s.RoundsLeft
	}
	if e.Owner == "" {
		e.Owner = s.Player
	}
	if p := payloadFor(kind); p != nil {
		if err := weakDecode(s.Rest, p); err != nil {
			return Effect{}, Target{}, ErrInvalidEffect.WithData("kind", s.Kind).WithCause(err)
		}
		if bp, ok := p.(*BarrierPayload); ok && bp.MaxHp < bp.Hp {
			bp.MaxHp = bp.Hp
		}
		e.Payload = p
	}
	return e, Target{Player: s.Player, City: s.City}, nil
}

// AddDecoded 解析并写入注册表。
func (r *Registry) AddDecoded(raw map[string]any) error {
	e, target, err := Decode(raw)
	if err != nil {
		return err
	}
	return r.Add(e.Owner, target, e)
}

func weakDecode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
