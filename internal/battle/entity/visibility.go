package entity

// Visibility 迷雾状态：owner 的哪些城池已被 observer 看到。
type Visibility struct {
	known map[string]map[string]map[string]struct{}
}

func NewVisibility() *Visibility {
	return &Visibility{known: make(map[string]map[string]map[string]struct{})}
}

func (v *Visibility) Reveal(owner, observer, city string) {
	if v == nil || owner == observer {
		return
	}
	if v.known == nil {
		v.known = make(map[string]map[string]map[string]struct{})
	}
	byObserver, ok := v.known[owner]
	if !ok {
		byObserver = make(map[string]map[string]struct{})
		v.known[owner] = byObserver
	}
	cities, ok := byObserver[observer]
	if !ok {
		cities = make(map[string]struct{})
		byObserver[observer] = cities
	}
	cities[city] = struct{}{}
}

// Known 自己的城池总是可见。
func (v *Visibility) Known(owner, observer, city string) bool {
	if owner == observer {
		return true
	}
	if v == nil {
		return false
	}
	_, ok := v.known[owner][observer][city]
	return ok
}

func (v *Visibility) Clone() *Visibility {
	if v == nil {
		return nil
	}
	c := NewVisibility()
	for owner, byObserver := range v.known {
		for observer, cities := range byObserver {
			for city := range cities {
				c.Reveal(owner, observer, city)
			}
		}
	}
	return c
}
