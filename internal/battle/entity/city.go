package entity

// City 一座城池。Name 在所属玩家内唯一，整局不变，是唯一的城池标识。
type City struct {
	Name              string `yaml:"name" mapstructure:"name" json:"name" bson:"name"`
	Province          string `yaml:"province" mapstructure:"province" json:"province" bson:"province"`
	BaseHp            int    `yaml:"base_hp" mapstructure:"base_hp" json:"base_hp" bson:"base_hp"`
	Hp                int    `yaml:"hp" mapstructure:"hp" json:"hp" bson:"hp"`
	CurrentHp         int    `yaml:"current_hp" mapstructure:"current_hp" json:"current_hp" bson:"current_hp"`
	Alive             bool   `yaml:"alive" mapstructure:"alive" json:"alive" bson:"alive"`
	ProvincialCapital bool   `yaml:"provincial_capital" mapstructure:"provincial_capital" json:"provincial_capital" bson:"provincial_capital"`
	Coastal           bool   `yaml:"coastal" mapstructure:"coastal" json:"coastal" bson:"coastal"`
}

// NewCity 满血新城。
func NewCity(name, province string, hp int) *City {
	if hp < 0 {
		hp = 0
	}
	return &City{
		Name:      name,
		Province:  province,
		BaseHp:    hp,
		Hp:        hp,
		CurrentHp: hp,
		Alive:     hp > 0,
	}
}

func (c *City) IsAlive() bool {
	return c != nil && c.Alive && c.CurrentHp > 0
}

// SetCurrentHp 写当前血量，夹在 [0, Hp]；归零即阵亡。
func (c *City) SetCurrentHp(v int) {
	if v < 0 {
		v = 0
	}
	if v > c.Hp {
		v = c.Hp
	}
	c.CurrentHp = v
	if v == 0 {
		c.Alive = false
	}
}

// TakeDamage 扣血并返回实际扣除量，不会扣成负数。
func (c *City) TakeDamage(n int) int {
	if n <= 0 || !c.IsAlive() {
		return 0
	}
	if n > c.CurrentHp {
		n = c.CurrentHp
	}
	c.SetCurrentHp(c.CurrentHp - n)
	return n
}

// Heal 回血，上限取 Hp 与 hpCap（hpCap<=0 表示不额外限制），返回实际回复量。
func (c *City) Heal(n, hpCap int) int {
	if n <= 0 || !c.IsAlive() {
		return 0
	}
	limit := c.Hp
	if hpCap > 0 && hpCap < limit {
		limit = hpCap
	}
	before := c.CurrentHp
	next := before + n
	if next > limit {
		next = limit
	}
	if next < before {
		return 0
	}
	c.CurrentHp = next
	return next - before
}

// Halve 疲劳：当前血量减半（向下取整），上限同步为新值。
func (c *City) Halve() (before, after int) {
	before = c.CurrentHp
	after = before / 2
	c.Hp = after
	c.SetCurrentHp(after)
	return before, after
}

func (c *City) Clone() *City {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
