package paycode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/lightningnetwork/privpay/address"
	"github.com/lightningnetwork/privpay/keychain"
)

const (
	// HRP is the human readable part of every payment code.
	HRP = "pay"

	// Version0 is the only known payment code version. It carries a single
	// key used both for scanning and spending.
	Version0 byte = 0x00

	// payloadSizeV0 is the size of a version 0 payload:
	//   - version (1) | address type bitmask (1) | compressed key (33)
	payloadSizeV0 = 1 + 1 + btcec.PubKeyBytesLenCompressed
)

var (
	// ErrUnknownPrefix is returned when a string is not a payment code at
	// all: a different human readable part or no separator.
	ErrUnknownPrefix = errors.New("unknown payment code prefix")

	// ErrChecksumMismatch is returned when the bech32m checksum doesn't
	// verify. Invalid characters, mixed case and a bech32 rather than a
	// bech32m checksum are reported the same way.
	ErrChecksumMismatch = errors.New("payment code checksum mismatch")

	// ErrMalformedLength is returned when the payload doesn't have the
	// length its version requires.
	ErrMalformedLength = errors.New("malformed payment code length")

	// ErrUnknownVersion is returned for a version other than Version0.
	ErrUnknownVersion = errors.New("unknown payment code version")

	// ErrNoAddressTypes is returned when a payment code accepts no
	// supported address type.
	ErrNoAddressTypes = errors.New("payment code accepts no address " +
		"types")

	// ErrKeyMismatch is returned when a version 0 payment code is built
	// from distinct scan and spend keys.
	ErrKeyMismatch = errors.New("version 0 requires the scan key to " +
		"equal the spend key")
)

// PaymentCode is the reusable, publishable identity of a receiver: its public
// keys and the address types it accepts payments on.
type PaymentCode struct {
	version  byte
	types    address.Set
	scanKey  *btcec.PublicKey
	spendKey *btcec.PublicKey
}

// New creates a version 0 payment code. Version 0 carries a single key, so
// scanKey and spendKey must be equal.
func New(scanKey, spendKey *btcec.PublicKey,
	types []address.Type) (*PaymentCode, error) {

	if !scanKey.IsEqual(spendKey) {
		return nil, ErrKeyMismatch
	}

	if len(types) == 0 {
		return nil, ErrNoAddressTypes
	}

	set, err := address.NewSet(types...)
	if err != nil {
		return nil, err
	}

	return &PaymentCode{
		version:  Version0,
		types:    set,
		scanKey:  scanKey,
		spendKey: spendKey,
	}, nil
}

// Encode is the one-shot form of New followed by Encode.
func Encode(scanKey, spendKey *btcec.PublicKey,
	types []address.Type) (string, error) {

	code, err := New(scanKey, spendKey, types)
	if err != nil {
		return "", err
	}

	return code.Encode()
}

// Version returns the version of the payment code.
func (p *PaymentCode) Version() byte {
	return p.version
}

// ScanKey returns the key senders perform ECDH against.
func (p *PaymentCode) ScanKey() *btcec.PublicKey {
	return p.scanKey
}

// SpendKey returns the key the stealth outputs are derived from.
func (p *PaymentCode) SpendKey() *btcec.PublicKey {
	return p.spendKey
}

// TypeSet returns the raw address type bitmask, including unknown bits.
func (p *PaymentCode) TypeSet() address.Set {
	return p.types
}

// AddressTypes returns the supported address types the payment code accepts,
// in ascending id order.
func (p *PaymentCode) AddressTypes() []address.Type {
	return p.types.Types()
}

// Accepts returns true if payments of the given type may be sent to the
// payment code.
func (p *PaymentCode) Accepts(t address.Type) bool {
	return p.types.Contains(t)
}

// payload serializes the payment code into its binary form.
func (p *PaymentCode) payload() []byte {
	b := make([]byte, 0, payloadSizeV0)
	b = append(b, p.version, byte(p.types))
	b = append(b, p.scanKey.SerializeCompressed()...)

	return b
}

// Encode returns the bech32m string form of the payment code.
func (p *PaymentCode) Encode() (string, error) {
	conv, err := bech32.ConvertBits(p.payload(), 8, 5, true)
	if err != nil {
		return "", err
	}

	return bech32.EncodeM(HRP, conv)
}

// String returns the encoded payment code.
func (p *PaymentCode) String() string {
	s, err := p.Encode()
	if err != nil {
		return fmt.Sprintf("<invalid payment code: %v>", err)
	}

	return s
}

// Equal returns true if both payment codes serialize identically.
func (p *PaymentCode) Equal(o *PaymentCode) bool {
	return p.version == o.version && p.types == o.types &&
		p.scanKey.IsEqual(o.scanKey) && p.spendKey.IsEqual(o.spendKey)
}

// MarshalText implements encoding.TextMarshaler.
func (p *PaymentCode) MarshalText() ([]byte, error) {
	s, err := p.Encode()
	if err != nil {
		return nil, err
	}

	return []byte(s), nil
}

// Decode parses and fully validates a payment code string. No key is
// returned unless the prefix, checksum, length, version, address types and key
// all check out.
func Decode(s string) (*PaymentCode, error) {
	// The prefix is checked first so that anything which isn't a payment
	// code is reported as such rather than as a checksum failure.
	lower := strings.ToLower(s)
	sep := strings.LastIndexByte(lower, '1')
	if sep < 0 || lower[:sep] != HRP {
		return nil, ErrUnknownPrefix
	}

	_, data, version, err := bech32.DecodeGeneric(s)
	if err != nil {
		return nil, mapBech32Error(err)
	}

	if version != bech32.VersionM {
		return nil, fmt.Errorf("%w: bech32 checksum, expected "+
			"bech32m", ErrChecksumMismatch)
	}

	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLength, err)
	}

	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedLength)
	}

	switch payload[0] {
	case Version0:
		return decodeV0(payload)

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, payload[0])
	}
}

// decodeV0 parses a version 0 payload.
func decodeV0(payload []byte) (*PaymentCode, error) {
	if len(payload) != payloadSizeV0 {
		return nil, fmt.Errorf("%w: version 0 payload is %d bytes, "+
			"expected %d", ErrMalformedLength, len(payload),
			payloadSizeV0)
	}

	types := address.Set(payload[1])
	if types.IsEmpty() {
		return nil, ErrNoAddressTypes
	}

	key, err := keychain.ParsePubKey(payload[2:])
	if err != nil {
		return nil, err
	}

	code := &PaymentCode{
		version:  Version0,
		types:    types,
		scanKey:  key,
		spendKey: key,
	}

	log.Debugf("Decoded payment code: version=%d, types=%v, key=%x",
		code.version, code.types, key.SerializeCompressed())

	return code, nil
}

// mapBech32Error maps the errors of the bech32 decoder onto the payment code
// error kinds.
func mapBech32Error(err error) error {
	switch err.(type) {
	case bech32.ErrInvalidSeparatorIndex:
		return fmt.Errorf("%w: %v", ErrUnknownPrefix, err)

	case bech32.ErrInvalidLength:
		return fmt.Errorf("%w: %v", ErrMalformedLength, err)

	default:
		return fmt.Errorf("%w: %v", ErrChecksumMismatch, err)
	}
}
