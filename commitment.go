package privpay

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/privpay/address"
	"github.com/lightningnetwork/privpay/keychain"
)

// Commitment is what a notification establishes between a sender and a
// recipient: the shared secret, the recipient's spend key and the address type
// of the payments. Both sides derive the same addresses from it.
type Commitment struct {
	secret      keychain.SharedSecret
	spendKey    *btcec.PublicKey
	addressType address.Type
	params      *chaincfg.Params
}

// SpendKey returns the recipient's spend key the outputs are derived from.
func (c *Commitment) SpendKey() *btcec.PublicKey {
	return c.spendKey
}

// AddressType returns the address type of every output of the commitment.
func (c *Commitment) AddressType() address.Type {
	return c.addressType
}

// Zero wipes the shared secret. The commitment is unusable afterwards.
func (c *Commitment) Zero() {
	c.secret.Zero()
}
