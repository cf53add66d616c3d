package privpay

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/privpay/address"
	"github.com/lightningnetwork/privpay/keychain"
	"github.com/lightningnetwork/privpay/logutil"
	"github.com/lightningnetwork/privpay/notification"
	"github.com/lightningnetwork/privpay/paycode"
	"github.com/lightningnetwork/privpay/stealth"
)

// Sender notifies recipients of payments and derives the addresses to pay
// them on.
type Sender struct {
	cfg        *Config
	accountKey *hdkeychain.ExtendedKey
}

// NewSender derives the sender's account key from the seed.
func NewSender(seed *keychain.Seed, cfg *Config) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	accountKey, err := keychain.DeriveAccountKey(
		seed, cfg.ActiveNet, cfg.Account,
	)
	if err != nil {
		return nil, err
	}

	return &Sender{
		cfg:        cfg,
		accountKey: accountKey,
	}, nil
}

// Notify builds the notification for the recipient. Every recipient index
// uses a distinct notification key, so notifications sent under different
// indexes can't be linked to each other or to the sender. The returned
// commitment is used to derive the payment addresses and must be wiped by the
// caller.
func (s *Sender) Notify(recipient *paycode.PaymentCode, recipientIndex uint32,
	addrType address.Type) (*notification.Notification, *Commitment,
	error) {

	if recipientIndex > keychain.MaxChildIndex {
		return nil, nil, fmt.Errorf("%w: recipient index %d exceeds %d",
			stealth.ErrIndexOutOfRange, recipientIndex,
			keychain.MaxChildIndex)
	}

	notifyKey, err := keychain.DeriveChild(
		s.accountKey, recipientIndex, false,
	)
	if err != nil {
		return nil, nil, err
	}
	defer notifyKey.Zero()

	ecdh, err := keychain.NewPrivKeyECDH(notifyKey)
	if err != nil {
		return nil, nil, err
	}
	defer ecdh.Zero()

	n, secret, err := notification.Build(recipient, ecdh, addrType)
	if err != nil {
		return nil, nil, err
	}

	log.DebugS(context.TODO(), "Notifying recipient",
		"recipient_index", recipientIndex,
		"address_type", addrType,
		logutil.LogPubKey("notify_key", n.SenderKey))
	log.Tracef("Notification payload: %v",
		logutil.HexLogClosure(n.Payload()))

	return n, &Commitment{
		secret:      secret,
		spendKey:    recipient.SpendKey(),
		addressType: addrType,
		params:      s.cfg.ActiveNet,
	}, nil
}

// Address returns the address of the given index to pay the recipient of the
// commitment on.
func (s *Sender) Address(c *Commitment, index uint64) (btcutil.Address,
	error) {

	return stealth.DeriveSenderAddress(
		&c.secret, c.spendKey, index, c.addressType, c.params,
	)
}

// Addresses derives the addresses of every index of the range. A failing
// index is reported in its slot without affecting the others.
func (s *Sender) Addresses(c *Commitment,
	r stealth.IndexRange) ([]fn.Result[btcutil.Address], error) {

	return stealth.DeriveRange(r, func(index uint64) (btcutil.Address,
		error) {

		return s.Address(c, index)
	})
}

// Zero wipes the sender's account key. The sender is unusable afterwards.
func (s *Sender) Zero() {
	s.accountKey.Zero()
}
