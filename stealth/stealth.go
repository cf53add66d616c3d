package stealth

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/privpay/address"
	"github.com/lightningnetwork/privpay/keychain"
)

var (
	// ErrDerivationFailed is returned when an index yields a tweak that
	// isn't a valid scalar, a point at infinity or a zero private key.
	ErrDerivationFailed = errors.New("stealth derivation failed")

	// ErrIndexOutOfRange is returned for an index range that is too wide
	// or an index that can't be represented.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// tweak computes the scalar that moves the spend key to the output key of the
// given index:
//
//	t_i = sha256(S || uint64_be(i))
func tweak(secret *keychain.SharedSecret, index uint64) (btcec.ModNScalar,
	error) {

	var (
		buf [btcec.PubKeyBytesLenCompressed + 8]byte
		t   btcec.ModNScalar
	)
	copy(buf[:], secret[:])
	binary.BigEndian.PutUint64(
		buf[btcec.PubKeyBytesLenCompressed:], index,
	)

	hash := chainhash.HashB(buf[:])
	overflow := t.SetByteSlice(hash)

	zeroBytes(buf[:])
	zeroBytes(hash)

	if overflow || t.IsZero() {
		t.Zero()
		return t, fmt.Errorf("%w: tweak for index %d is not a valid "+
			"scalar", ErrDerivationFailed, index)
	}

	return t, nil
}

// DeriveSenderKey returns the output public key of the given index:
//
//	P_i = B + t_i*G
func DeriveSenderKey(secret *keychain.SharedSecret, spendKey *btcec.PublicKey,
	index uint64) (*btcec.PublicKey, error) {

	t, err := tweak(secret, index)
	if err != nil {
		return nil, err
	}
	defer t.Zero()

	var tweakPoint, spendPoint, result btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&t, &tweakPoint)
	spendKey.AsJacobian(&spendPoint)
	btcec.AddNonConst(&spendPoint, &tweakPoint, &result)
	result.ToAffine()

	if result.X.IsZero() && result.Y.IsZero() {
		return nil, fmt.Errorf("%w: output key of index %d is the "+
			"point at infinity", ErrDerivationFailed, index)
	}

	return btcec.NewPublicKey(&result.X, &result.Y), nil
}

// DeriveSenderAddress returns the address of the given index and type that a
// sender pays to.
func DeriveSenderAddress(secret *keychain.SharedSecret,
	spendKey *btcec.PublicKey, index uint64, addrType address.Type,
	params *chaincfg.Params) (btcutil.Address, error) {

	pub, err := DeriveSenderKey(secret, spendKey, index)
	if err != nil {
		return nil, err
	}

	return address.Encode(pub, addrType, params)
}

// KeyPair is a stealth output as seen by the receiver: the address together
// with the key that spends it.
type KeyPair struct {
	// Index is the output index the pair was derived for.
	Index uint64

	// Type is the address type of the output.
	Type address.Type

	// Address is the address of the output.
	Address btcutil.Address

	// PubKey is the untweaked output key. For a taproot output the
	// address commits to its BIP86 tweak.
	PubKey *btcec.PublicKey

	// PrivKey is the private key of PubKey.
	PrivKey *btcec.PrivateKey

	params *chaincfg.Params
}

// WIF returns the private key in compressed WIF encoding.
func (k *KeyPair) WIF() (string, error) {
	return address.EncodePrivKey(k.PrivKey, k.params)
}

// Zero wipes the private key.
func (k *KeyPair) Zero() {
	if k.PrivKey != nil {
		k.PrivKey.Zero()
	}
}

// DeriveReceiverKeyPair returns the key pair of the given index on the
// receiving side:
//
//	p_i = b + t_i mod n
//	P_i = p_i*G
func DeriveReceiverKeyPair(secret *keychain.SharedSecret,
	spendKey *btcec.PrivateKey, index uint64, addrType address.Type,
	params *chaincfg.Params) (*KeyPair, error) {

	t, err := tweak(secret, index)
	if err != nil {
		return nil, err
	}
	defer t.Zero()

	var k btcec.ModNScalar
	k.Set(&spendKey.Key).Add(&t)
	if k.IsZero() {
		return nil, fmt.Errorf("%w: private key of index %d is zero",
			ErrDerivationFailed, index)
	}

	priv := &btcec.PrivateKey{Key: k}
	k.Zero()

	pub := priv.PubKey()
	addr, err := address.Encode(pub, addrType, params)
	if err != nil {
		priv.Zero()
		return nil, err
	}

	return &KeyPair{
		Index:   index,
		Type:    addrType,
		Address: addr,
		PubKey:  pub,
		PrivKey: priv,
		params:  params,
	}, nil
}

// zeroBytes overwrites b with zeroes.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
