package address

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedAddressType is returned for an address type, type id
	// or address kind outside of the supported single-key types.
	ErrUnsupportedAddressType = errors.New("unsupported address type")

	// ErrWrongNetwork is returned when an address belongs to a different
	// network than the one requested.
	ErrWrongNetwork = errors.New("address is for a different network")

	// ErrInvalidAddress is returned when an address can't be decoded for
	// any known network.
	ErrInvalidAddress = errors.New("invalid address")
)

// Type is a single-key output type a payment can be received on. The value of
// a Type is its wire id.
type Type uint8

const (
	// P2PKH is a legacy pay-to-pubkey-hash output.
	P2PKH Type = 0

	// P2WPKH is a segwit v0 pay-to-witness-pubkey-hash output.
	P2WPKH Type = 1

	// P2TR is a segwit v1 key-path only taproot output.
	P2TR Type = 2
)

// DefaultType is the type used when none is requested.
const DefaultType = P2WPKH

// AllTypes lists every supported type in ascending id order.
var AllTypes = []Type{P2PKH, P2WPKH, P2TR}

// TypeFromID returns the type with the given wire id.
func TypeFromID(id uint8) (Type, error) {
	t := Type(id)
	if err := t.Validate(); err != nil {
		return 0, err
	}

	return t, nil
}

// ParseType parses the lower case name of a type, e.g. "p2wpkh". Matching is
// case insensitive.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p2pkh":
		return P2PKH, nil

	case "p2wpkh":
		return P2WPKH, nil

	case "p2tr":
		return P2TR, nil

	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedAddressType, s)
	}
}

// ParseTypes parses a list of type names, dropping duplicates while keeping
// the order of first occurrence.
func ParseTypes(names []string) ([]Type, error) {
	var (
		seen  Set
		types = make([]Type, 0, len(names))
	)
	for _, name := range names {
		t, err := ParseType(name)
		if err != nil {
			return nil, err
		}

		if seen.Contains(t) {
			continue
		}
		seen = seen.Add(t)
		types = append(types, t)
	}

	return types, nil
}

// Validate returns ErrUnsupportedAddressType if t is not a known type.
func (t Type) Validate() error {
	switch t {
	case P2PKH, P2WPKH, P2TR:
		return nil

	default:
		return fmt.Errorf("%w: id %d", ErrUnsupportedAddressType,
			uint8(t))
	}
}

// ID returns the wire id of the type.
func (t Type) ID() uint8 {
	return uint8(t)
}

// Flag returns the bit of the type in a Set.
func (t Type) Flag() uint8 {
	return 1 << uint8(t)
}

// PkScriptSize returns the size of the output script paying to the type.
func (t Type) PkScriptSize() int {
	switch t {
	// OP_DUP OP_HASH160 OP_DATA_20 <hash> OP_EQUALVERIFY OP_CHECKSIG
	case P2PKH:
		return 1 + 1 + 1 + 20 + 1 + 1

	// OP_0 OP_DATA_20 <hash>
	case P2WPKH:
		return 1 + 1 + 20

	// OP_1 OP_DATA_32 <x-only key>
	case P2TR:
		return 1 + 1 + 32

	default:
		return 0
	}
}

// String returns the lower case name of the type.
func (t Type) String() string {
	switch t {
	case P2PKH:
		return "p2pkh"

	case P2WPKH:
		return "p2wpkh"

	case P2TR:
		return "p2tr"

	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// MarshalText implements encoding.TextMarshaler so types render by name in
// JSON output.
func (t Type) MarshalText() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed

	return nil
}
