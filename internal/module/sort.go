package module

type visit uint8

const (
	unvisited visit = iota
	visiting
	visited
)

// Sort orders modules so that every module comes after the modules it
// imports. Cycles are broken where they're first found. Dependencies
// outside of mods are skipped.
func Sort(mods []*Module) ([]*Module, error) {
	state := make(map[*Module]visit, len(mods))
	for _, mod := range mods {
		state[mod] = unvisited
	}
	order := make([]*Module, 0, len(mods))
	var walk func(mod *Module) error
	walk = func(mod *Module) error {
		if state[mod] != unvisited {
			return nil
		}
		state[mod] = visiting
		deps, err := mod.Dependencies()
		if err != nil {
			return err
		}
		for _, dep := range deps {
			if _, ok := state[dep]; !ok {
				continue
			}
			if err := walk(dep); err != nil {
				return err
			}
		}
		state[mod] = visited
		order = append(order, mod)
		return nil
	}
	for _, mod := range mods {
		if err := walk(mod); err != nil {
			return nil, err
		}
	}
	return order, nil
}
