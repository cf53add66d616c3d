package keychain

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

const (
	// BIP0043Purpose is the "purpose" value of the payment code key
	// hierarchy. Every key used by the protocol is derived below it.
	BIP0043Purpose = 351

	// AccountBranch is the fixed hardened child below the account level
	// that holds the key backing a payment code.
	AccountBranch = 0

	// MaxAccount is the largest account index that can be expressed as a
	// hardened path element.
	MaxAccount = hdkeychain.HardenedKeyStart - 1

	// MaxChildIndex is the largest non-hardened child index.
	MaxChildIndex = hdkeychain.HardenedKeyStart - 1
)

// AccountPath identifies the key that backs a single account. The key
// derivation in this package follows the following hierarchy based on
// BIP43:
//
//   - m/351'/account'/0'
//
// The resulting account key is the receiver's payment code key. On the sender
// side, one notification key per recipient index is derived as a normal child
// of it:
//
//   - m/351'/account'/0'/recipientIndex
type AccountPath struct {
	// Account is the account index, which must fit into a hardened path
	// element.
	Account uint32
}

// Indexes returns the raw BIP32 child numbers of the path, with the hardened
// offset applied.
func (p AccountPath) Indexes() ([]uint32, error) {
	if p.Account > MaxAccount {
		return nil, fmt.Errorf("%w: account %d exceeds %d",
			ErrInvalidDerivationIndex, p.Account, MaxAccount)
	}

	return []uint32{
		hdkeychain.HardenedKeyStart + BIP0043Purpose,
		hdkeychain.HardenedKeyStart + p.Account,
		hdkeychain.HardenedKeyStart + AccountBranch,
	}, nil
}

// String returns the path in the usual m/a'/b'/c' notation.
func (p AccountPath) String() string {
	parts := []string{
		"m",
		fmt.Sprintf("%d'", BIP0043Purpose),
		fmt.Sprintf("%d'", p.Account),
		fmt.Sprintf("%d'", AccountBranch),
	}

	return strings.Join(parts, "/")
}

// KeyLocator is a two-tuple that can be used to derive any key of the
// protocol: the account key itself, or one of its normal children.
type KeyLocator struct {
	// Account is the account the key belongs to.
	Account uint32

	// Index is the normal child index below the account key.
	Index uint32
}

// Path returns the account path of the locator.
func (k KeyLocator) Path() AccountPath {
	return AccountPath{Account: k.Account}
}

// String returns the full derivation path of the located key.
func (k KeyLocator) String() string {
	return fmt.Sprintf("%v/%d", k.Path(), k.Index)
}
