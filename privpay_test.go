package privpay

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/privpay/address"
	"github.com/lightningnetwork/privpay/keychain"
	"github.com/lightningnetwork/privpay/notification"
	"github.com/lightningnetwork/privpay/paycode"
	"github.com/lightningnetwork/privpay/stealth"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	testCode = "pay1qqpsxq4730l4yre4lt3588eyt3f2lwggtfalvtgfns04a8smzkn7" +
		"yys6xv2gs8"

	testPayload = "505049cb55bb02e3217349724307eed5514b53b1f53f0802672a99" +
		"13d9bbb76afecc86be23f46401"

	testAddress = "bc1qw7ld5h9tj2ruwxqvetznjfq9g5jyp0gjhrs30w"

	testPubKey = "03e669bd1705691a080840b07d76713d040934a37f2e8dde2fe02f5d" +
		"3286a49219"

	testWIF = "L1fJmsaHyM96XrpHs765ueXfmv1V7TiNgWJHS8ZsTgfVFvLd1TcU"
)

func testConfig(types ...address.Type) *Config {
	cfg := DefaultConfig()
	if len(types) > 0 {
		cfg.AddressTypes = types
	}

	return cfg
}

func newTestRecipient(t testing.TB, seedByte byte,
	types ...address.Type) *Recipient {

	seed, err := keychain.NewSeed([]byte{seedByte})
	require.NoError(t, err)
	defer seed.Zero()

	r, err := NewRecipient(seed, testConfig(types...))
	require.NoError(t, err)

	return r
}

func newTestSender(t testing.TB, seedByte byte) *Sender {
	seed, err := keychain.NewSeed([]byte{seedByte})
	require.NoError(t, err)
	defer seed.Zero()

	s, err := NewSender(seed, testConfig())
	require.NoError(t, err)

	return s
}

// TestKnownScenario runs the full protocol for the known sender and
// recipient pair.
func TestKnownScenario(t *testing.T) {
	t.Parallel()

	recipient := newTestRecipient(
		t, 0xff, address.P2PKH, address.P2WPKH,
	)
	defer recipient.Zero()
	require.Equal(t, testCode, recipient.PaymentCode().String())

	code, err := paycode.Decode(testCode)
	require.NoError(t, err)

	sender := newTestSender(t, 0xfe)
	defer sender.Zero()

	n, sent, err := sender.Notify(code, 0, address.P2WPKH)
	require.NoError(t, err)
	defer sent.Zero()
	require.Equal(t, testPayload, hex.EncodeToString(n.Payload()))

	addr, err := sender.Address(sent, 0)
	require.NoError(t, err)
	require.Equal(t, testAddress, addr.EncodeAddress())

	script, err := n.Script()
	require.NoError(t, err)

	for _, input := range [][]byte{script, n.Payload()} {
		detected, err := recipient.DetectNotification(input)
		require.NoError(t, err)
		require.True(t, detected.IsSome())

		received := detected.UnwrapOr(nil)
		require.Equal(t, address.P2WPKH, received.AddressType())

		pair, err := recipient.KeyInfo(received, 0)
		require.NoError(t, err)
		require.Equal(t, testAddress, pair.Address.EncodeAddress())
		require.Equal(
			t, testPubKey,
			hex.EncodeToString(pair.PubKey.SerializeCompressed()),
		)

		wif, err := pair.WIF()
		require.NoError(t, err)
		require.Equal(t, testWIF, wif)

		pair.Zero()
		received.Zero()
	}
}

// TestDetectNotificationForOthers asserts that notifications for someone
// else, or for a type the recipient doesn't accept, are ignored.
func TestDetectNotificationForOthers(t *testing.T) {
	t.Parallel()

	payload, err := hex.DecodeString(testPayload)
	require.NoError(t, err)

	other := newTestRecipient(t, 0x01)
	detected, err := other.DetectNotification(payload)
	require.NoError(t, err)
	require.True(t, detected.IsNone())

	// Same keys, but no longer accepting p2wpkh.
	taprootOnly := newTestRecipient(t, 0xff, address.P2TR)
	detected, err = taprootOnly.DetectNotification(payload)
	require.NoError(t, err)
	require.True(t, detected.IsNone())

	_, err = other.DetectNotification(payload[:len(payload)-1])
	require.ErrorIs(t, err, notification.ErrInvalidPayloadLength)
}

// TestRecipientIndexes asserts that recipient indexes select distinct
// notification keys and that the index must fit a normal child.
func TestRecipientIndexes(t *testing.T) {
	t.Parallel()

	code, err := paycode.Decode(testCode)
	require.NoError(t, err)

	sender := newTestSender(t, 0xfe)

	n0, c0, err := sender.Notify(code, 0, address.P2PKH)
	require.NoError(t, err)
	n1, c1, err := sender.Notify(code, 1, address.P2PKH)
	require.NoError(t, err)

	require.False(t, n0.SenderKey.IsEqual(n1.SenderKey))
	require.NotEqual(t, n0.Code, n1.Code)

	a0, err := sender.Address(c0, 0)
	require.NoError(t, err)
	a1, err := sender.Address(c1, 0)
	require.NoError(t, err)
	require.NotEqual(t, a0.EncodeAddress(), a1.EncodeAddress())

	_, _, err = sender.Notify(code, keychain.MaxChildIndex+1, address.P2PKH)
	require.ErrorIs(t, err, stealth.ErrIndexOutOfRange)

	_, _, err = sender.Notify(code, 0, address.P2TR)
	require.ErrorIs(t, err, notification.ErrAddressTypeNotAccepted)
}

// TestMatchAddress finds the index of a derived address.
func TestMatchAddress(t *testing.T) {
	t.Parallel()

	recipient := newTestRecipient(t, 0xff, address.P2PKH, address.P2WPKH)
	sender := newTestSender(t, 0xfe)

	n, sent, err := sender.Notify(recipient.PaymentCode(), 0, address.P2WPKH)
	require.NoError(t, err)

	addr, err := sender.Address(sent, 5)
	require.NoError(t, err)

	detected, err := recipient.DetectNotification(n.Payload())
	require.NoError(t, err)
	received := detected.UnwrapOr(nil)
	require.NotNil(t, received)

	r, err := stealth.NewIndexRange(0, fn.Some[uint64](9))
	require.NoError(t, err)

	index, err := recipient.MatchAddress(received, addr.EncodeAddress(), r)
	require.NoError(t, err)
	require.Equal(t, fn.Some[uint64](5), index)

	r, err = stealth.NewIndexRange(6, fn.Some[uint64](20))
	require.NoError(t, err)
	index, err = recipient.MatchAddress(received, addr.EncodeAddress(), r)
	require.NoError(t, err)
	require.True(t, index.IsNone())

	// The same key as p2pkh is not an output of a p2wpkh commitment.
	pair, err := recipient.KeyInfo(received, 5)
	require.NoError(t, err)
	legacy, err := address.Encode(
		pair.PubKey, address.P2PKH, &chaincfg.MainNetParams,
	)
	require.NoError(t, err)

	index, err = recipient.MatchAddress(received, legacy.EncodeAddress(), r)
	require.NoError(t, err)
	require.True(t, index.IsNone())

	_, err = recipient.MatchAddress(received, "tb1qnotanaddress", r)
	require.Error(t, err)
}

// TestProtocolCorrectness asserts that for arbitrary seeds, accounts,
// recipient indexes, types and index ranges the sender pays exactly the
// addresses the recipient recovers.
func TestProtocolCorrectness(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		seedGen := rapid.SliceOfN(
			rapid.Byte(), keychain.MinSeedBytes, keychain.MaxSeedBytes,
		)
		types := rapid.SliceOfNDistinct(
			rapid.SampledFrom(address.AllTypes), 1,
			len(address.AllTypes), rapid.ID[address.Type],
		).Draw(t, "types")

		recipientCfg := &Config{
			ActiveNet: &chaincfg.RegressionNetParams,
			Account: rapid.Uint32Range(
				0, keychain.MaxAccount,
			).Draw(t, "recipient_account"),
			AddressTypes: types,
		}
		senderCfg := &Config{
			ActiveNet: &chaincfg.RegressionNetParams,
			Account: rapid.Uint32Range(
				0, keychain.MaxAccount,
			).Draw(t, "sender_account"),
			AddressTypes: []address.Type{address.DefaultType},
		}

		recipientSeed, err := keychain.NewSeed(
			seedGen.Draw(t, "recipient_seed"),
		)
		require.NoError(t, err)
		senderSeed, err := keychain.NewSeed(
			seedGen.Draw(t, "sender_seed"),
		)
		require.NoError(t, err)

		recipient, err := NewRecipient(recipientSeed, recipientCfg)
		require.NoError(t, err)
		sender, err := NewSender(senderSeed, senderCfg)
		require.NoError(t, err)

		code, err := paycode.Decode(recipient.PaymentCode().String())
		require.NoError(t, err)

		addrType := rapid.SampledFrom(types).Draw(t, "type")
		recipientIndex := rapid.Uint32Range(
			0, keychain.MaxChildIndex,
		).Draw(t, "recipient_index")

		n, sent, err := sender.Notify(code, recipientIndex, addrType)
		require.NoError(t, err)

		script, err := n.Script()
		require.NoError(t, err)

		detected, err := recipient.DetectNotification(script)
		require.NoError(t, err)
		received := detected.UnwrapOr(nil)
		require.NotNil(t, received)

		first := rapid.Uint64().Draw(t, "first")
		width := rapid.Uint64Range(0, 4).Draw(t, "width")
		last := first + width
		if last < first {
			last = first
		}
		r, err := stealth.NewIndexRange(first, fn.Some(last))
		require.NoError(t, err)

		addrResults, err := sender.Addresses(sent, r)
		require.NoError(t, err)
		addrs, err := stealth.Collect(addrResults)
		require.NoError(t, err)

		pairResults, err := recipient.KeyInfoRange(received, r)
		require.NoError(t, err)
		pairs, err := stealth.Collect(pairResults)
		require.NoError(t, err)

		require.Len(t, pairs, len(addrs))
		for i := range addrs {
			require.Equal(
				t, addrs[i].EncodeAddress(),
				pairs[i].Address.EncodeAddress(),
			)
		}
	})
}

// TestNewSenderRecipientErrors covers invalid seeds and configs.
func TestNewSenderRecipientErrors(t *testing.T) {
	t.Parallel()

	seed, err := keychain.NewSeed([]byte{0xff})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Account = keychain.MaxAccount + 1

	_, err = NewSender(seed, cfg)
	require.ErrorIs(t, err, keychain.ErrInvalidDerivationIndex)
	_, err = NewRecipient(seed, cfg)
	require.ErrorIs(t, err, keychain.ErrInvalidDerivationIndex)

	cfg = testConfig(address.Type(8))
	_, err = NewRecipient(seed, cfg)
	require.ErrorIs(t, err, address.ErrUnsupportedAddressType)

	// A wiped seed is rejected before anything is derived from it.
	seed.Zero()
	_, err = NewRecipient(seed, testConfig())
	require.ErrorIs(t, err, keychain.ErrInvalidSeedLength)
}
