package notification

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/lightningnetwork/privpay/address"
	"github.com/lightningnetwork/privpay/keychain"
	"github.com/lightningnetwork/privpay/paycode"
)

const (
	// CodeSize is the size of the notification code: the leading bytes of
	// the hashed shared secret.
	CodeSize = 4

	// PayloadSize is the size of a notification payload:
	//   - magic (2) | code (4) | sender key (33) | address type id (1)
	PayloadSize = 2 + CodeSize + btcec.PubKeyBytesLenCompressed + 1

	// ScriptSize is the size of the output script carrying a payload:
	//   - OP_RETURN OP_DATA_40 <payload>
	ScriptSize = 1 + 1 + PayloadSize
)

// magic starts every notification payload.
var magic = []byte("PP")

var (
	// ErrInvalidPayloadLength is returned when a payload isn't exactly
	// PayloadSize bytes or a script doesn't push exactly one payload.
	ErrInvalidPayloadLength = errors.New("invalid notification payload " +
		"length")

	// ErrUnknownPrefix is returned when a payload doesn't start with the
	// notification magic.
	ErrUnknownPrefix = errors.New("unknown notification prefix")

	// ErrCodeMismatch is returned when a notification is not addressed to
	// the payment code it is checked against.
	ErrCodeMismatch = errors.New("notification code mismatch")

	// ErrAddressTypeNotAccepted is returned when the address type of a
	// notification isn't accepted by the payment code.
	ErrAddressTypeNotAccepted = errors.New("address type not accepted " +
		"by payment code")
)

// Code identifies the payment code a notification is addressed to, without
// revealing it to anyone else.
type Code [CodeSize]byte

// codeFromSecret returns the notification code of a shared secret.
func codeFromSecret(secret *keychain.SharedSecret) Code {
	hash := secret.Hash()

	var code Code
	copy(code[:], hash[:CodeSize])

	return code
}

// Notification is the one-time message a sender publishes on chain so that the
// receiver can find the payments made to it.
type Notification struct {
	// Code is the notification code the receiver recognizes.
	Code Code

	// SenderKey is the sender's per-recipient notification public key.
	SenderKey *btcec.PublicKey

	// AddressType is the type of the outputs the sender pays to.
	AddressType address.Type
}

// Build creates the notification a sender publishes for the given payment
// code. senderKey is the sender's per-recipient notification key. The shared
// secret is returned so the sender can derive the payment addresses, the
// caller must wipe it once done.
func Build(recipient *paycode.PaymentCode, senderKey keychain.SingleKeyECDH,
	addrType address.Type) (*Notification, keychain.SharedSecret, error) {

	var secret keychain.SharedSecret

	if err := addrType.Validate(); err != nil {
		return nil, secret, err
	}

	if !recipient.Accepts(addrType) {
		return nil, secret, fmt.Errorf("%w: %v not in %v",
			ErrAddressTypeNotAccepted, addrType,
			recipient.TypeSet())
	}

	secret, err := senderKey.SharedSecret(recipient.ScanKey())
	if err != nil {
		return nil, secret, err
	}

	n := &Notification{
		Code:        codeFromSecret(&secret),
		SenderKey:   senderKey.PubKey(),
		AddressType: addrType,
	}

	log.Debugf("Built notification with code=%x, type=%v", n.Code[:],
		n.AddressType)

	return n, secret, nil
}

// Payload returns the raw 40 byte payload.
func (n *Notification) Payload() []byte {
	b := make([]byte, 0, PayloadSize)
	b = append(b, magic...)
	b = append(b, n.Code[:]...)
	b = append(b, n.SenderKey.SerializeCompressed()...)
	b = append(b, n.AddressType.ID())

	return b
}

// Script returns the OP_RETURN output script carrying the payload.
func (n *Notification) Script() ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_RETURN).
		AddData(n.Payload()).
		Script()
}

// String returns a short description of the notification.
func (n *Notification) String() string {
	return fmt.Sprintf("notification(code=%x, type=%v)", n.Code[:],
		n.AddressType)
}

// Parse parses either an output script or a bare payload. Input starting with
// OP_RETURN is treated as a script, which must consist of OP_RETURN and a
// single OP_DATA_40 push and nothing else.
func Parse(b []byte) (*Notification, error) {
	if len(b) > 0 && b[0] == txscript.OP_RETURN {
		payload, err := extractPayload(b)
		if err != nil {
			return nil, err
		}

		return ParsePayload(payload)
	}

	return ParsePayload(b)
}

// extractPayload returns the data pushed by a notification script.
func extractPayload(script []byte) ([]byte, error) {
	tokenizer := txscript.MakeScriptTokenizer(0, script)

	if !tokenizer.Next() || tokenizer.Opcode() != txscript.OP_RETURN {
		return nil, fmt.Errorf("%w: missing OP_RETURN",
			ErrInvalidPayloadLength)
	}

	if !tokenizer.Next() {
		return nil, fmt.Errorf("%w: no payload pushed: %v",
			ErrInvalidPayloadLength, tokenizer.Err())
	}

	if tokenizer.Opcode() != txscript.OP_DATA_40 {
		return nil, fmt.Errorf("%w: expected OP_DATA_40 push, got "+
			"opcode 0x%02x", ErrInvalidPayloadLength,
			tokenizer.Opcode())
	}
	payload := tokenizer.Data()

	if tokenizer.Next() || tokenizer.Err() != nil {
		return nil, fmt.Errorf("%w: trailing data after payload",
			ErrInvalidPayloadLength)
	}

	return payload, nil
}

// ParsePayload parses and validates a bare 40 byte payload.
func ParsePayload(payload []byte) (*Notification, error) {
	if len(payload) != PayloadSize {
		return nil, fmt.Errorf("%w: %d bytes, expected %d",
			ErrInvalidPayloadLength, len(payload), PayloadSize)
	}

	if !bytes.Equal(payload[:len(magic)], magic) {
		return nil, fmt.Errorf("%w: %x", ErrUnknownPrefix,
			payload[:len(magic)])
	}

	var (
		offset = len(magic)
		n      Notification
	)
	copy(n.Code[:], payload[offset:offset+CodeSize])
	offset += CodeSize

	keyEnd := offset + btcec.PubKeyBytesLenCompressed
	addrType, err := address.TypeFromID(payload[keyEnd])
	if err != nil {
		return nil, err
	}
	n.AddressType = addrType

	n.SenderKey, err = keychain.ParsePubKey(payload[offset:keyEnd])
	if err != nil {
		return nil, err
	}

	return &n, nil
}

// SharedSecret recomputes the shared secret on the receiving side using the
// receiver's scan key. ErrCodeMismatch is returned if the notification isn't
// addressed to that key.
func (n *Notification) SharedSecret(
	scanKey keychain.SingleKeyECDH) (keychain.SharedSecret, error) {

	secret, err := scanKey.SharedSecret(n.SenderKey)
	if err != nil {
		return secret, err
	}

	code := codeFromSecret(&secret)
	if subtle.ConstantTimeCompare(code[:], n.Code[:]) != 1 {
		secret.Zero()
		return secret, ErrCodeMismatch
	}

	return secret, nil
}
