package entity

import "sort"

type Player struct {
	Name       string           `yaml:"name" json:"name" bson:"name"`
	Gold       int              `yaml:"gold" json:"gold" bson:"gold"`
	Cities     map[string]*City `yaml:"-" json:"cities" bson:"cities"`
	Center     string           `yaml:"center" json:"center" bson:"center"`
	Streaks    map[string]int   `yaml:"streaks" json:"streaks" bson:"streaks"`
	Eliminated bool             `yaml:"eliminated" json:"eliminated" bson:"eliminated"`
}

func NewPlayer(name string, gold int) *Player {
	return &Player{
		Name:    name,
		Gold:    gold,
		Cities:  make(map[string]*City),
		Streaks: make(map[string]int),
	}
}

// AddCity 加入城池；同名已存在时返回 false。
func (p *Player) AddCity(c *City) bool {
	if c == nil || c.Name == "" {
		return false
	}
	if p.Cities == nil {
		p.Cities = make(map[string]*City)
	}
	if _, ok := p.Cities[c.Name]; ok {
		return false
	}
	p.Cities[c.Name] = c
	return true
}

func (p *Player) City(name string) (*City, bool) {
	if p == nil {
		return nil, false
	}
	c, ok := p.Cities[name]
	return c, ok && c != nil
}

// CityNames 排序后的城池名，所有遍历都走这里，避免结果依赖 map 顺序。
func (p *Player) CityNames() []string {
	names := make([]string, 0, len(p.Cities))
	for name, c := range p.Cities {
		if c != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (p *Player) LivingCityNames() []string {
	var out []string
	for _, name := range p.CityNames() {
		if p.Cities[name].IsAlive() {
			out = append(out, name)
		}
	}
	return out
}

func (p *Player) CenterCity() (*City, bool) {
	if p.Center == "" {
		return nil, false
	}
	return p.City(p.Center)
}

func (p *Player) IsCenter(name string) bool {
	return p.Center != "" && p.Center == name
}

// StrongestLiving 当前血量最高的存活城池，同血量按名字升序。
func (p *Player) StrongestLiving() (string, bool) {
	best := ""
	bestHp := -1
	for _, name := range p.LivingCityNames() {
		if hp := p.Cities[name].CurrentHp; hp > bestHp {
			best, bestHp = name, hp
		}
	}
	return best, best != ""
}

func (p *Player) AddGold(delta, goldCap int) {
	p.Gold += delta
	if p.Gold < 0 {
		p.Gold = 0
	}
	if goldCap > 0 && p.Gold > goldCap {
		p.Gold = goldCap
	}
}

func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	c := &Player{
		Name:       p.Name,
		Gold:       p.Gold,
		Center:     p.Center,
		Eliminated: p.Eliminated,
		Cities:     make(map[string]*City, len(p.Cities)),
		Streaks:    make(map[string]int, len(p.Streaks)),
	}
	for k, v := range p.Cities {
		c.Cities[k] = v.Clone()
	}
	for k, v := range p.Streaks {
		c.Streaks[k] = v
	}
	return c
}

// TransferCity 把城池对象原样从 from 移到 to，连同连续出战计数。
// 目标已有同名城池时不做任何修改并返回 false，城池不会同时出现在两边或两边都没有。
func TransferCity(from, to *Player, name string) bool {
	if from == nil || to == nil || from == to {
		return false
	}
	c, ok := from.City(name)
	if !ok {
		return false
	}
	if _, clash := to.City(name); clash {
		return false
	}
	if to.Cities == nil {
		to.Cities = make(map[string]*City)
	}
	if to.Streaks == nil {
		to.Streaks = make(map[string]int)
	}
	to.Cities[name] = c
	delete(from.Cities, name)

	to.Streaks[name] = from.Streaks[name]
	delete(from.Streaks, name)

	if from.Center == name {
		from.Center = ""
	}
	return true
}

// SwapCities 两边按位置一一交换城池。任意一对会导致重名时整体不做修改。
func SwapCities(a, b *Player, fromA, fromB []string) bool {
	if a == nil || b == nil || a == b || len(fromA) != len(fromB) {
		return false
	}
	leavingA := make(map[string]bool, len(fromA))
	leavingB := make(map[string]bool, len(fromB))
	for i := range fromA {
		if _, ok := a.City(fromA[i]); !ok {
			return false
		}
		if _, ok := b.City(fromB[i]); !ok {
			return false
		}
		if leavingA[fromA[i]] || leavingB[fromB[i]] {
			return false
		}
		leavingA[fromA[i]] = true
		leavingB[fromB[i]] = true
	}
	for _, name := range fromA {
		if _, clash := b.City(name); clash && !leavingB[name] {
			return false
		}
	}
	for _, name := range fromB {
		if _, clash := a.City(name); clash && !leavingA[name] {
			return false
		}
	}

	type moving struct {
		city   *City
		streak int
	}
	outA := make([]moving, len(fromA))
	outB := make([]moving, len(fromB))
	for i := range fromA {
		outA[i] = moving{a.Cities[fromA[i]], a.Streaks[fromA[i]]}
		outB[i] = moving{b.Cities[fromB[i]], b.Streaks[fromB[i]]}
		delete(a.Cities, fromA[i])
		delete(a.Streaks, fromA[i])
		delete(b.Cities, fromB[i])
		delete(b.Streaks, fromB[i])
	}
	if a.Streaks == nil {
		a.Streaks = make(map[string]int)
	}
	if b.Streaks == nil {
		b.Streaks = make(map[string]int)
	}
	for i := range outA {
		b.Cities[fromA[i]] = outA[i].city
		b.Streaks[fromA[i]] = outA[i].streak
		a.Cities[fromB[i]] = outB[i].city
		a.Streaks[fromB[i]] = outB[i].streak
	}
	return true
}
