package preproc

import (
	"fmt"
	"strings"
)

// Set is a set of platform symbols.
type Set uint16

// NewSet returns the set holding the given symbols.
func NewSet(symbols ...Symbol) Set {
	var s Set
	for _, sym := range symbols {
		s |= 1 << sym
	}
	return s
}

var (
	// DefaultConstraints is the universe of standard symbols: everything but
	// NonStandard. Negation complements against it.
	DefaultConstraints = NewSet(Server, Client, ThinClient, MobileClient, WebClient, ExternalConnection,
		ManagedThickClient, OrdinaryThickClient, MobileStandaloneServer, MobileAppClient, MobileAppServer)

	// ClientConstraints is what the bare CLIENT symbol expands to.
	ClientConstraints = NewSet(ThinClient, WebClient, MobileClient, ManagedThickClient, OrdinaryThickClient)
)

func (s Set) Has(sym Symbol) bool { return s&(1<<sym) != 0 }
func (s Set) Union(o Set) Set { return s | o }
func (s Set) Intersect(o Set) Set { return s & o }
func (s Set) Difference(o Set) Set { return s &^ o }
func (s Set) IsEmpty() bool { return s == 0 }
func (s Set) With(sym Symbol) Set { return s | 1<<sym }
func (s Set) Equal(o Set) bool { return s == o }

// Symbols lists the members in declaration order.
func (s Set) Symbols() []Symbol {
	var out []Symbol
	for i := Symbol(0); i < symbolCount; i++ {
		if s.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// Names lists the member names in declaration order.
func (s Set) Names() []string {
	syms := s.Symbols()
	names := make([]string, len(syms))
	for i, sym := range syms {
		names[i] = sym.String()
	}
	return names
}

func (s Set) String() string {
	return "{" + strings.Join(s.Names(), ", ") + "}"
}

// ParseSet builds a set from symbol names or source keywords. An empty list
// yields DefaultConstraints.
func ParseSet(names []string) (Set, error) {
	if len(names) == 0 {
		return DefaultConstraints, nil
	}
	var s Set
	for _, n := range names {
		sym, ok := ParseSymbol(n)
		if !ok {
			return 0, fmt.Errorf("unknown platform %q", n)
		}
		if sym == Client {
			s = s.Union(ClientConstraints)
			continue
		}
		s = s.With(sym)
	}
	return s, nil
}
