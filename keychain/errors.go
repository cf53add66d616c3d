package keychain

import "errors"

var (
	// ErrInvalidSeedLength is returned when a seed is shorter than
	// MinSeedBytes or longer than MaxSeedBytes.
	ErrInvalidSeedLength = errors.New("invalid seed length")

	// ErrInvalidSeedEncoding is returned when a hex encoded seed can't be
	// decoded.
	ErrInvalidSeedEncoding = errors.New("invalid seed encoding")

	// ErrInvalidMnemonic is returned when a mnemonic has an unknown word
	// or a bad checksum.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")

	// ErrUnusableSeed is returned when a seed yields a master key that is
	// zero or not below the curve order.
	ErrUnusableSeed = errors.New("unusable seed")

	// ErrInvalidDerivationIndex is returned when a child index can't be
	// derived from the given key, e.g. a hardened child of a public key.
	ErrInvalidDerivationIndex = errors.New("invalid derivation index")

	// ErrDerivationFailed is returned for the astronomically unlikely case
	// of a child key or shared point that isn't a valid key.
	ErrDerivationFailed = errors.New("key derivation failed")

	// ErrInvalidPublicKey is returned when a serialized public key is not
	// a compressed point on the curve.
	ErrInvalidPublicKey = errors.New("invalid public key")
)
