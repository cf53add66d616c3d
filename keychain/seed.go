package keychain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

const (
	// MinSeedBytes is the shortest seed accepted.
	MinSeedBytes = 1

	// MaxSeedBytes is the longest seed accepted.
	MaxSeedBytes = 64
)

// Seed holds the secret bytes the whole key hierarchy is derived from. A Seed
// owns its buffer and wipes it on Zero.
type Seed struct {
	b []byte
}

// checkSeedLen returns ErrInvalidSeedLength if n is outside of the accepted
// range.
func checkSeedLen(n int) error {
	if n < MinSeedBytes || n > MaxSeedBytes {
		return fmt.Errorf("%w: %d bytes, expected %d to %d",
			ErrInvalidSeedLength, n, MinSeedBytes, MaxSeedBytes)
	}

	return nil
}

// NewSeed copies raw into a new seed. The caller remains responsible for
// wiping raw.
func NewSeed(raw []byte) (*Seed, error) {
	if err := checkSeedLen(len(raw)); err != nil {
		return nil, err
	}

	b := make([]byte, len(raw))
	copy(b, raw)

	return &Seed{b: b}, nil
}

// SeedFromHex decodes a hex encoded seed. Surrounding whitespace is ignored.
func SeedFromHex(s string) (*Seed, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	defer zeroBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeedEncoding, err)
	}

	return NewSeed(raw)
}

// SeedFromMnemonic turns a BIP39 mnemonic and optional passphrase into a 64
// byte seed. The mnemonic checksum is verified.
func SeedFromMnemonic(mnemonic, passphrase string) (*Seed, error) {
	words := strings.Join(strings.Fields(mnemonic), " ")
	raw, err := bip39.NewSeedWithErrorChecking(words, passphrase)
	defer zeroBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}

	return NewSeed(raw)
}

// WithSeed runs f with a seed built from raw and wipes both the seed and raw
// once f returns.
func WithSeed(raw []byte, f func(*Seed) error) error {
	defer zeroBytes(raw)

	seed, err := NewSeed(raw)
	if err != nil {
		return err
	}
	defer seed.Zero()

	return f(seed)
}

// Bytes returns the seed bytes. The slice aliases the seed and is wiped by
// Zero.
func (s *Seed) Bytes() []byte {
	return s.b
}

// Len returns the length of the seed in bytes.
func (s *Seed) Len() int {
	return len(s.b)
}

// Zero wipes the seed. The seed is unusable afterwards.
func (s *Seed) Zero() {
	zeroBytes(s.b)
	s.b = nil
}

// zeroBytes overwrites b with zeroes.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
