package keychain

import (
	"crypto/hmac"
	"crypto/sha512"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

var (
	// masterKeySalt is the HMAC key used to turn a seed into the master
	// node of the hierarchy, as defined by BIP32.
	masterKeySalt = []byte("Bitcoin seed")

	// rootParentFP is the parent fingerprint of a master node.
	rootParentFP = []byte{0x00, 0x00, 0x00, 0x00}
)

// NewMasterKey derives the BIP32 master node from the given seed. Unlike
// hdkeychain.NewMaster, any seed of MinSeedBytes to MaxSeedBytes bytes is
// accepted.
func NewMasterKey(seed *Seed,
	params *chaincfg.Params) (*hdkeychain.ExtendedKey, error) {

	if err := checkSeedLen(seed.Len()); err != nil {
		return nil, err
	}

	mac := hmac.New(sha512.New, masterKeySalt)
	_, _ = mac.Write(seed.Bytes())
	lr := mac.Sum(nil)
	defer zeroBytes(lr)

	// The extended key keeps references to the slices it is given, so we
	// copy both halves out of the digest before wiping it.
	secretKey := make([]byte, len(lr)/2)
	chainCode := make([]byte, len(lr)/2)
	copy(secretKey, lr[:len(lr)/2])
	copy(chainCode, lr[len(lr)/2:])

	var k btcec.ModNScalar
	overflow := k.SetByteSlice(secretKey)
	usable := !overflow && !k.IsZero()
	k.Zero()
	if !usable {
		zeroBytes(secretKey)
		return nil, ErrUnusableSeed
	}

	return hdkeychain.NewExtendedKey(
		params.HDPrivateKeyID[:], secretKey, chainCode, rootParentFP,
		0, 0, true,
	), nil
}

// DeriveChild derives the child with the given index from key. The index must
// be below the hardened offset, hardening is requested through the flag.
// Hardened children can only be derived from private keys.
func DeriveChild(key *hdkeychain.ExtendedKey, index uint32,
	hardened bool) (*hdkeychain.ExtendedKey, error) {

	if index > MaxChildIndex {
		return nil, fmt.Errorf("%w: index %d exceeds %d",
			ErrInvalidDerivationIndex, index, MaxChildIndex)
	}

	if hardened {
		index += hdkeychain.HardenedKeyStart
	}

	return deriveRaw(key, index)
}

// deriveRaw derives a child by its raw BIP32 child number and maps the errors
// of hdkeychain onto ours.
func deriveRaw(key *hdkeychain.ExtendedKey,
	childNum uint32) (*hdkeychain.ExtendedKey, error) {

	child, err := key.Derive(childNum)
	switch {
	case err == hdkeychain.ErrDeriveHardFromPublic:
		return nil, fmt.Errorf("%w: hardened child %d of a public "+
			"key", ErrInvalidDerivationIndex,
			childNum-hdkeychain.HardenedKeyStart)

	case err == hdkeychain.ErrInvalidChild:
		return nil, fmt.Errorf("%w: child %d", ErrDerivationFailed,
			childNum)

	case err != nil:
		return nil, err
	}

	return child, nil
}

// DeriveAccountKey derives the private account key at m/351'/account'/0'
// from the seed. All intermediate nodes are wiped before returning.
func DeriveAccountKey(seed *Seed, params *chaincfg.Params,
	account uint32) (*hdkeychain.ExtendedKey, error) {

	path := AccountPath{Account: account}
	indexes, err := path.Indexes()
	if err != nil {
		return nil, err
	}

	key, err := NewMasterKey(seed, params)
	if err != nil {
		return nil, err
	}

	for _, childNum := range indexes {
		child, err := deriveRaw(key, childNum)
		key.Zero()
		if err != nil {
			return nil, err
		}

		key = child
	}

	log.Tracef("Derived account key at %v", path)

	return key, nil
}

// DeriveKey derives the key the locator points to: a normal child of the
// account key. The account key is wiped before returning.
func DeriveKey(seed *Seed, params *chaincfg.Params,
	loc KeyLocator) (*hdkeychain.ExtendedKey, error) {

	account, err := DeriveAccountKey(seed, params, loc.Account)
	if err != nil {
		return nil, err
	}
	defer account.Zero()

	return DeriveChild(account, loc.Index, false)
}

// ParsePubKey parses a 33-byte compressed public key. Uncompressed and hybrid
// encodings are rejected.
func ParsePubKey(b []byte) (*btcec.PublicKey, error) {
	if len(b) != btcec.PubKeyBytesLenCompressed {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidPublicKey, btcec.PubKeyBytesLenCompressed,
			len(b))
	}

	if b[0] != 0x02 && b[0] != 0x03 {
		return nil, fmt.Errorf("%w: bad prefix 0x%02x",
			ErrInvalidPublicKey, b[0])
	}

	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	return pub, nil
}
