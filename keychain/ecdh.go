package keychain

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// SharedSecret is the shared ECDH point of two parties, serialized in
// compressed format.
type SharedSecret [btcec.PubKeyBytesLenCompressed]byte

// Hash returns the sha256 of the serialized point.
func (s *SharedSecret) Hash() [sha256.Size]byte {
	return sha256.Sum256(s[:])
}

// Zero wipes the secret.
func (s *SharedSecret) Zero() {
	for i := range s {
		s[i] = 0
	}
}

// SingleKeyECDH performs Diffie-Hellman against one private key without
// exposing it. The sender's notification key and the recipient's scan key are
// both used through it.
type SingleKeyECDH interface {
	// PubKey returns the public half of the hidden key.
	PubKey() *btcec.PublicKey

	// ECDH returns the sha256 of the compressed shared point.
	ECDH(pubKey *btcec.PublicKey) ([32]byte, error)

	// SharedSecret returns the compressed shared point.
	SharedSecret(pubKey *btcec.PublicKey) (SharedSecret, error)
}

// PrivKeyECDH is a SingleKeyECDH backed by an in-memory private key.
type PrivKeyECDH struct {
	PrivKey *btcec.PrivateKey
}

// NewPrivKeyECDH wraps the private key of an extended key so it adheres to the
// SingleKeyECDH interface.
func NewPrivKeyECDH(key *hdkeychain.ExtendedKey) (*PrivKeyECDH, error) {
	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, err
	}

	return &PrivKeyECDH{PrivKey: priv}, nil
}

// PubKey returns the public key of the wrapped private key.
//
// NOTE: This is part of the SingleKeyECDH interface.
func (p *PrivKeyECDH) PubKey() *btcec.PublicKey {
	return p.PrivKey.PubKey()
}

// ECDH returns sha256(compressed(k*P)) for the wrapped key k. The first
// bytes of the result form the notification code.
//
// NOTE: This is part of the SingleKeyECDH interface.
func (p *PrivKeyECDH) ECDH(pub *btcec.PublicKey) ([32]byte, error) {
	secret, err := p.SharedSecret(pub)
	if err != nil {
		return [32]byte{}, err
	}
	defer secret.Zero()

	return secret.Hash(), nil
}

// SharedSecret returns k*P serialized in compressed format.
//
// NOTE: This is part of the SingleKeyECDH interface.
func (p *PrivKeyECDH) SharedSecret(pub *btcec.PublicKey) (SharedSecret,
	error) {

	var (
		pubJacobian btcec.JacobianPoint
		s           btcec.JacobianPoint
		secret      SharedSecret
	)
	pub.AsJacobian(&pubJacobian)

	btcec.ScalarMultNonConst(&p.PrivKey.Key, &pubJacobian, &s)
	s.ToAffine()

	if s.X.IsZero() && s.Y.IsZero() {
		return secret, fmt.Errorf("%w: shared point at infinity",
			ErrDerivationFailed)
	}

	sPubKey := btcec.NewPublicKey(&s.X, &s.Y)
	copy(secret[:], sPubKey.SerializeCompressed())

	return secret, nil
}

// Zero wipes the wrapped private key.
func (p *PrivKeyECDH) Zero() {
	if p.PrivKey != nil {
		p.PrivKey.Zero()
	}
}

var _ SingleKeyECDH = (*PrivKeyECDH)(nil)
