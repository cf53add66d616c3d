package notification

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/lightningnetwork/privpay/address"
	"github.com/lightningnetwork/privpay/keychain"
	"github.com/lightningnetwork/privpay/paycode"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	// testCode is the payment code of the all 0xff seed accepting p2pkh
	// and p2wpkh.
	testCode = "pay1qqpsxq4730l4yre4lt3588eyt3f2lwggtfalvtgfns04a8smzkn7" +
		"yys6xv2gs8"

	// testPayload is the p2wpkh notification of the all 0xfe seed,
	// recipient index 0, for testCode.
	testPayload = "505049cb55bb02e3217349724307eed5514b53b1f53f0802672a99" +
		"13d9bbb76afecc86be23f46401"
)

// testKeys returns the receiver's scan key and the sender's notification key
// behind the known vectors.
func testKeys(t testing.TB) (*keychain.PrivKeyECDH, *keychain.PrivKeyECDH) {
	params := &chaincfg.MainNetParams

	receiverSeed, err := keychain.NewSeed([]byte{0xff})
	require.NoError(t, err)
	receiver, err := keychain.DeriveAccountKey(receiverSeed, params, 0)
	require.NoError(t, err)

	senderSeed, err := keychain.NewSeed([]byte{0xfe})
	require.NoError(t, err)
	sender, err := keychain.DeriveKey(
		senderSeed, params, keychain.KeyLocator{},
	)
	require.NoError(t, err)

	scan, err := keychain.NewPrivKeyECDH(receiver)
	require.NoError(t, err)
	notify, err := keychain.NewPrivKeyECDH(sender)
	require.NoError(t, err)

	return scan, notify
}

func decodeHex(t testing.TB, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)

	return b
}

// TestBuildKnownNotification checks a notification against the known payload.
func TestBuildKnownNotification(t *testing.T) {
	t.Parallel()

	recipient, err := paycode.Decode(testCode)
	require.NoError(t, err)

	scan, notify := testKeys(t)

	n, senderSecret, err := Build(recipient, notify, address.P2WPKH)
	require.NoError(t, err)
	require.Equal(t, testPayload, hex.EncodeToString(n.Payload()))
	require.Len(t, n.Payload(), PayloadSize)

	script, err := n.Script()
	require.NoError(t, err)
	require.Len(t, script, ScriptSize)
	require.Equal(t, "6a28"+testPayload, hex.EncodeToString(script))

	// The receiver recovers the same secret from the parsed script.
	parsed, err := Parse(script)
	require.NoError(t, err)
	require.Equal(t, n.Code, parsed.Code)
	require.Equal(t, address.P2WPKH, parsed.AddressType)
	require.True(t, parsed.SenderKey.IsEqual(notify.PubKey()))

	receiverSecret, err := parsed.SharedSecret(scan)
	require.NoError(t, err)
	require.Equal(t, senderSecret, receiverSecret)
}

// TestBuildRejectsType asserts that only accepted address types can be
// notified.
func TestBuildRejectsType(t *testing.T) {
	t.Parallel()

	recipient, err := paycode.Decode(testCode)
	require.NoError(t, err)

	_, notify := testKeys(t)

	_, _, err = Build(recipient, notify, address.P2TR)
	require.ErrorIs(t, err, ErrAddressTypeNotAccepted)

	_, _, err = Build(recipient, notify, address.Type(4))
	require.ErrorIs(t, err, address.ErrUnsupportedAddressType)
}

// TestSharedSecretMismatch asserts that a notification for another payment
// code is not recognized.
func TestSharedSecretMismatch(t *testing.T) {
	t.Parallel()

	n, err := Parse(decodeHex(t, testPayload))
	require.NoError(t, err)

	other, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	secret, err := n.SharedSecret(&keychain.PrivKeyECDH{PrivKey: other})
	require.ErrorIs(t, err, ErrCodeMismatch)
	require.Equal(t, keychain.SharedSecret{}, secret)
}

// TestParseErrors covers every rejection of the parser.
func TestParseErrors(t *testing.T) {
	t.Parallel()

	payload := decodeHex(t, testPayload)

	withByte := func(i int, b byte) []byte {
		c := append([]byte(nil), payload...)
		c[i] = b
		return c
	}

	script := func(ops ...[]byte) []byte {
		var s []byte
		for _, op := range ops {
			s = append(s, op...)
		}
		return s
	}

	testCases := []struct {
		name  string
		input []byte
		err   error
	}{
		{
			name:  "empty",
			input: nil,
			err:   ErrInvalidPayloadLength,
		},
		{
			name:  "payload truncated by one byte",
			input: payload[:PayloadSize-1],
			err:   ErrInvalidPayloadLength,
		},
		{
			name:  "payload extended by one byte",
			input: append(append([]byte(nil), payload...), 0x00),
			err:   ErrInvalidPayloadLength,
		},
		{
			name:  "bad magic",
			input: withByte(1, 'Q'),
			err:   ErrUnknownPrefix,
		},
		{
			name:  "unknown address type id",
			input: withByte(PayloadSize-1, 3),
			err:   address.ErrUnsupportedAddressType,
		},
		{
			name:  "bad key prefix",
			input: withByte(2+CodeSize, 0x04),
			err:   keychain.ErrInvalidPublicKey,
		},
		{
			name:  "only OP_RETURN",
			input: []byte{txscript.OP_RETURN},
			err:   ErrInvalidPayloadLength,
		},
		{
			name: "script with truncated push",
			input: script(
				[]byte{txscript.OP_RETURN, txscript.OP_DATA_40},
				payload[:PayloadSize-1],
			),
			err: ErrInvalidPayloadLength,
		},
		{
			name: "script pushing a truncated payload",
			input: script(
				[]byte{txscript.OP_RETURN, txscript.OP_DATA_39},
				payload[:PayloadSize-1],
			),
			err: ErrInvalidPayloadLength,
		},
		{
			name: "non canonical push",
			input: script(
				[]byte{
					txscript.OP_RETURN,
					txscript.OP_PUSHDATA1,
					PayloadSize,
				},
				payload,
			),
			err: ErrInvalidPayloadLength,
		},
		{
			name: "trailing opcode",
			input: script(
				[]byte{txscript.OP_RETURN, txscript.OP_DATA_40},
				payload, []byte{txscript.OP_TRUE},
			),
			err: ErrInvalidPayloadLength,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := Parse(tc.input)
			require.ErrorIs(t, err, tc.err)
			require.Nil(t, n)
		})
	}
}

// TestBuildParseRoundTrip asserts that every notification built for a
// payment code is recognized by its owner only.
func TestBuildParseRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		scanBytes := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "scan")
		notifyBytes := rapid.SliceOfN(
			rapid.Byte(), 32, 32,
		).Draw(t, "notify")
		addrType := rapid.SampledFrom(address.AllTypes).Draw(t, "type")

		scanPriv, scanPub := btcec.PrivKeyFromBytes(scanBytes)
		notifyPriv, _ := btcec.PrivKeyFromBytes(notifyBytes)
		if scanPriv.Key.IsZero() || notifyPriv.Key.IsZero() {
			t.Skip("zero scalar")
		}

		recipient, err := paycode.New(
			scanPub, scanPub, []address.Type{addrType},
		)
		require.NoError(t, err)

		n, sent, err := Build(
			recipient, &keychain.PrivKeyECDH{PrivKey: notifyPriv},
			addrType,
		)
		require.NoError(t, err)

		script, err := n.Script()
		require.NoError(t, err)

		parsed, err := Parse(script)
		require.NoError(t, err)
		require.Equal(t, n.Payload(), parsed.Payload())

		received, err := parsed.SharedSecret(
			&keychain.PrivKeyECDH{PrivKey: scanPriv},
		)
		require.NoError(t, err)
		require.Equal(t, sent, received)
	})
}
