package address

import (
	"fmt"
	"strings"
)

// Set is a bitmask of address types, bit i set meaning the type with id i is
// included. Bits without a known type are carried along untouched so a set
// decoded from the wire serializes back to the same byte.
type Set uint8

// knownMask has the bit of every supported type set.
const knownMask = Set(1<<P2PKH | 1<<P2WPKH | 1<<P2TR)

// NewSet builds a set from the given types.
func NewSet(types ...Type) (Set, error) {
	var s Set
	for _, t := range types {
		if err := t.Validate(); err != nil {
			return 0, err
		}
		s = s.Add(t)
	}

	return s, nil
}

// Add returns the set with t included.
func (s Set) Add(t Type) Set {
	return s | Set(t.Flag())
}

// Contains returns true if t is a supported type and part of the set.
func (s Set) Contains(t Type) bool {
	if t.Validate() != nil {
		return false
	}

	return s&Set(t.Flag()) != 0
}

// Types returns the supported types of the set in ascending id order.
func (s Set) Types() []Type {
	types := make([]Type, 0, len(AllTypes))
	for _, t := range AllTypes {
		if s.Contains(t) {
			types = append(types, t)
		}
	}

	return types
}

// Intersect returns the types present in both sets.
func (s Set) Intersect(o Set) Set {
	return s & o
}

// Known returns the set without unknown bits.
func (s Set) Known() Set {
	return s & knownMask
}

// IsEmpty returns true if no supported type is part of the set.
func (s Set) IsEmpty() bool {
	return s.Known() == 0
}

// String renders the set as a comma separated list of type names.
func (s Set) String() string {
	types := s.Types()
	names := make([]string, 0, len(types)+1)
	for _, t := range types {
		names = append(names, t.String())
	}

	if unknown := s &^ knownMask; unknown != 0 {
		names = append(names, fmt.Sprintf("unknown(0x%02x)",
			uint8(unknown)))
	}

	return strings.Join(names, ",")
}
