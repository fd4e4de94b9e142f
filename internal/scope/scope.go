package scope

import (
	"fmt"
	"strings"
)

// New creates an empty scope
func New() *Scope {
	return &Scope{}
}

// Scope tracks the names taken in a generated program so new declarations
// don't collide with existing ones.
type Scope struct {
	symbols  []*Symbol
	reserved map[string]bool
}

// Symbol is a declared name. ID is the caller's key for the symbol, Name is
// the collision-free name it was given.
type Symbol struct {
	ID   string
	Name string
}

// Reserve names that are already in use but aren't owned by a symbol
func (s *Scope) Reserve(names ...string) {
	if s.reserved == nil {
		s.reserved = map[string]bool{}
	}
	for _, name := range names {
		s.reserved[name] = true
	}
}

// Declare a new variable with a unique id
func (s *Scope) Declare(id, name string) (*Symbol, error) {
	if _, ok := s.LookupByID(id); ok {
		return nil, fmt.Errorf("scope: symbol with id %q already declared", id)
	}
	sym := &Symbol{
		ID:   id,
		Name: s.FindFree(name),
	}
	s.symbols = append(s.symbols, sym)
	return sym, nil
}

func (s *Scope) isTaken(name string) bool {
	if s.reserved[name] {
		return true
	}
	for _, sym := range s.symbols {
		if sym.Name == name {
			return true
		}
	}
	return false
}

func (s *Scope) LookupByID(id string) (*Symbol, bool) {
	for _, sym := range s.symbols {
		if sym.ID == id {
			return sym, true
		}
	}
	return nil, false
}

// Symbols declared in this scope, in declaration order
func (s *Scope) Symbols() []*Symbol {
	return s.symbols
}

// FindFree returns a name that is not already taken in the scope.
func (s *Scope) FindFree(name string) string {
	if !s.isTaken(name) {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s%d", name, i)
		if !s.isTaken(candidate) {
			return candidate
		}
	}
}

func (s *Scope) String() string {
	var sb strings.Builder
	for _, sym := range s.symbols {
		fmt.Fprintf(&sb, "%q", sym.Name)
		if sym.ID != "" && sym.ID != sym.Name {
			fmt.Fprintf(&sb, " (%s)", sym.ID)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
