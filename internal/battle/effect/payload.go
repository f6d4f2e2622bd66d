package effect

// Payload 是各效果种类携带的专有数据，封闭集合。
type Payload interface {
	isPayload()
}

// BarrierPayload 玩家屏障：剩余血量与上限（回复不超过上限）。
type BarrierPayload struct {
	Hp    int `mapstructure:"hp"`
	MaxHp int `mapstructure:"max_hp"`
}

type DisguisePayload struct {
	FakeName string `mapstructure:"fake_name"`
	FakeHp   int    `mapstructure:"fake_hp"`
}

type FlagPayload struct {
	Province string `mapstructure:"province"`
}

// TargetPayload 指向另一名玩家（迷惑、海啸、擒王）。Player 为空表示对任何对手生效。
type TargetPayload struct {
	Player string `mapstructure:"target_player"`
}

type FocusPayload struct {
	Player string `mapstructure:"target_player"`
	City   string `mapstructure:"target_city"`
}

type ChainPayload struct {
	Cities []string `mapstructure:"cities"`
}

type BankPayload struct {
	Balance int `mapstructure:"balance"`
}

func (*BarrierPayload) isPayload()  {}
func (*DisguisePayload) isPayload() {}
func (*FlagPayload) isPayload()     {}
func (*TargetPayload) isPayload()   {}
func (*FocusPayload) isPayload()    {}
func (*ChainPayload) isPayload()    {}
func (*BankPayload) isPayload()     {}

// payloadFor 返回该种类要求的 payload 零值；nil 表示不需要 payload。
func payloadFor(k Kind) Payload {
	switch k {
	case KindBarrier:
		return &BarrierPayload{}
	case KindDisguise:
		return &DisguisePayload{}
	case KindFlagChange:
		return &FlagPayload{}
	case KindCaptureLeader, KindConfusion, KindWave:
		return &TargetPayload{}
	case KindForcedFocus:
		return &FocusPayload{}
	case KindChainLink:
		return &ChainPayload{}
	case KindHpBank:
		return &BankPayload{}
	}
	return nil
}

func payloadMatches(k Kind, p Payload) bool {
	switch p.(type) {
	case nil:
		return payloadFor(k) == nil
	case *BarrierPayload:
		return k == KindBarrier
	case *DisguisePayload:
		return k == KindDisguise
	case *FlagPayload:
		return k == KindFlagChange
	case *TargetPayload:
		return k == KindCaptureLeader || k == KindConfusion || k == KindWave
	case *FocusPayload:
		return k == KindForcedFocus
	case *ChainPayload:
		return k == KindChainLink
	case *BankPayload:
		return k == KindHpBank
	}
	return false
}

func clonePayload(p Payload) Payload {
	switch v := p.(type) {
	case *BarrierPayload:
		c := *v
		return &c
	case *DisguisePayload:
		c := *v
		return &c
	case *FlagPayload:
		c := *v
		return &c
	case *TargetPayload:
		c := *v
		return &c
	case *FocusPayload:
		c := *v
		return &c
	case *ChainPayload:
		return &ChainPayload{Cities: append([]string(nil), v.Cities...)}
	case *BankPayload:
		c := *v
		return &c
	}
	return nil
}
