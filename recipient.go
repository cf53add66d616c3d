package privpay

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/privpay/address"
	"github.com/lightningnetwork/privpay/keychain"
	"github.com/lightningnetwork/privpay/logutil"
	"github.com/lightningnetwork/privpay/notification"
	"github.com/lightningnetwork/privpay/paycode"
	"github.com/lightningnetwork/privpay/stealth"
)

// Recipient publishes a payment code and recovers the payments made to it.
type Recipient struct {
	cfg *Config

	// spendKey is the private account key. A version 0 payment code uses
	// it for both scanning and spending.
	spendKey *btcec.PrivateKey

	code *paycode.PaymentCode
}

// NewRecipient derives the recipient's account key from the seed and builds
// its payment code for the configured address types.
func NewRecipient(seed *keychain.Seed, cfg *Config) (*Recipient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	accountKey, err := keychain.DeriveAccountKey(
		seed, cfg.ActiveNet, cfg.Account,
	)
	if err != nil {
		return nil, err
	}
	defer accountKey.Zero()

	spendKey, err := accountKey.ECPrivKey()
	if err != nil {
		return nil, err
	}

	pub := spendKey.PubKey()
	code, err := paycode.New(pub, pub, cfg.AddressTypes)
	if err != nil {
		spendKey.Zero()
		return nil, err
	}

	log.DebugS(context.TODO(), "Loaded recipient",
		"account", cfg.Account,
		"address_types", code.TypeSet(),
		logutil.LogPubKey("spend_key", pub))

	return &Recipient{
		cfg:      cfg,
		spendKey: spendKey,
		code:     code,
	}, nil
}

// PaymentCode returns the recipient's payment code.
func (r *Recipient) PaymentCode() *paycode.PaymentCode {
	return r.code
}

// DetectNotification parses a notification script or payload and checks
// whether it is addressed to the recipient. Malformed input is an error, a
// well formed notification for someone else, or for an address type the
// recipient doesn't accept, yields None.
func (r *Recipient) DetectNotification(
	scriptOrPayload []byte) (fn.Option[*Commitment], error) {

	none := fn.None[*Commitment]()

	n, err := notification.Parse(scriptOrPayload)
	if err != nil {
		return none, err
	}

	log.Tracef("Parsed notification: %v", logutil.SpewLogClosure(n))

	ecdh := &keychain.PrivKeyECDH{PrivKey: r.spendKey}
	secret, err := n.SharedSecret(ecdh)
	switch {
	case errors.Is(err, notification.ErrCodeMismatch):
		log.Debugf("Ignoring %v: not addressed to us", n)
		return none, nil

	case err != nil:
		return none, err
	}

	if !r.code.Accepts(n.AddressType) {
		secret.Zero()
		log.Infof("Ignoring %v: address type %v not accepted", n,
			n.AddressType)

		return none, nil
	}

	log.DebugS(context.TODO(), "Detected notification",
		"address_type", n.AddressType,
		logutil.LogPubKey("sender_key", n.SenderKey))

	return fn.Some(&Commitment{
		secret:      secret,
		spendKey:    r.spendKey.PubKey(),
		addressType: n.AddressType,
		params:      r.cfg.ActiveNet,
	}), nil
}

// KeyInfo recovers the address and private key of the given index of a
// commitment. The caller must wipe the key pair.
func (r *Recipient) KeyInfo(c *Commitment, index uint64) (*stealth.KeyPair,
	error) {

	return stealth.DeriveReceiverKeyPair(
		&c.secret, r.spendKey, index, c.addressType, c.params,
	)
}

// KeyInfoRange recovers the key pairs of every index of the range. A failing
// index is reported in its slot without affecting the others.
func (r *Recipient) KeyInfoRange(c *Commitment,
	indexes stealth.IndexRange) ([]fn.Result[*stealth.KeyPair], error) {

	return stealth.DeriveRange(indexes, func(index uint64) (
		*stealth.KeyPair, error) {

		return r.KeyInfo(c, index)
	})
}

// MatchAddress searches the range for the index whose address is addr. None
// is returned if no index of the range matches.
func (r *Recipient) MatchAddress(c *Commitment, addr string,
	indexes stealth.IndexRange) (fn.Option[uint64], error) {

	none := fn.None[uint64]()

	addrType, decoded, err := address.Decode(addr, c.params)
	if err != nil {
		return none, err
	}

	if addrType != c.addressType {
		return none, nil
	}
	want := decoded.EncodeAddress()

	results, err := stealth.DeriveRange(indexes, func(index uint64) (
		btcutil.Address, error) {

		return stealth.DeriveSenderAddress(
			&c.secret, c.spendKey, index, c.addressType, c.params,
		)
	})
	if err != nil {
		return none, err
	}

	for i, res := range results {
		derived, err := res.Unpack()
		if err != nil {
			return none, fmt.Errorf("index %d: %w",
				indexes.First+uint64(i), err)
		}

		if derived.EncodeAddress() == want {
			log.DebugS(context.TODO(), "Matched address",
				"index", indexes.First+uint64(i),
				logutil.LogAddress("address", derived))

			return fn.Some(indexes.First + uint64(i)), nil
		}
	}

	return none, nil
}

// Zero wipes the recipient's private key. The recipient is unusable
// afterwards.
func (r *Recipient) Zero() {
	r.spendKey.Zero()
}
