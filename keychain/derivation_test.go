package keychain

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	// receiverAccountKey is the account 0 key of the all 0xff seed.
	receiverAccountKey = "0302be8bff520f35fae3439f245c52afb9085a7bf62d" +
		"099c1f5e9e1b15a7e2121a"

	// senderNotificationKey is child 0 of the account 0 key of the all
	// 0xfe seed.
	senderNotificationKey = "02e3217349724307eed5514b53b1f53f0802672a99" +
		"13d9bbb76afecc86be23f464"
)

func testSeed(t testing.TB, b byte) *Seed {
	seed, err := NewSeed([]byte{b})
	require.NoError(t, err)

	return seed
}

// TestAccountPath asserts the account path layout and its bounds.
func TestAccountPath(t *testing.T) {
	t.Parallel()

	path := AccountPath{Account: 7}
	require.Equal(t, "m/351'/7'/0'", path.String())

	indexes, err := path.Indexes()
	require.NoError(t, err)
	require.Equal(t, []uint32{
		hdkeychain.HardenedKeyStart + 351,
		hdkeychain.HardenedKeyStart + 7,
		hdkeychain.HardenedKeyStart,
	}, indexes)

	_, err = AccountPath{Account: MaxAccount}.Indexes()
	require.NoError(t, err)

	_, err = AccountPath{Account: MaxAccount + 1}.Indexes()
	require.ErrorIs(t, err, ErrInvalidDerivationIndex)

	loc := KeyLocator{Account: 0, Index: 3}
	require.Equal(t, "m/351'/0'/0'/3", loc.String())
}

// TestDeriveKnownKeys checks the derivation against fixed keys.
func TestDeriveKnownKeys(t *testing.T) {
	t.Parallel()

	params := &chaincfg.MainNetParams

	account, err := DeriveAccountKey(testSeed(t, 0xff), params, 0)
	require.NoError(t, err)
	require.True(t, account.IsPrivate())
	require.EqualValues(t, 3, account.Depth())

	pub, err := account.ECPubKey()
	require.NoError(t, err)
	require.Equal(
		t, receiverAccountKey,
		hex.EncodeToString(pub.SerializeCompressed()),
	)

	notify, err := DeriveKey(
		testSeed(t, 0xfe), params, KeyLocator{Account: 0, Index: 0},
	)
	require.NoError(t, err)

	pub, err = notify.ECPubKey()
	require.NoError(t, err)
	require.Equal(
		t, senderNotificationKey,
		hex.EncodeToString(pub.SerializeCompressed()),
	)
}

// TestDeriveAccountKeyNetworkIndependent asserts that the network only
// changes the serialization version of the key, not the key itself.
func TestDeriveAccountKeyNetworkIndependent(t *testing.T) {
	t.Parallel()

	main, err := DeriveAccountKey(
		testSeed(t, 0xff), &chaincfg.MainNetParams, 0,
	)
	require.NoError(t, err)

	test, err := DeriveAccountKey(
		testSeed(t, 0xff), &chaincfg.TestNet3Params, 0,
	)
	require.NoError(t, err)

	mainPub, err := main.ECPubKey()
	require.NoError(t, err)
	testPub, err := test.ECPubKey()
	require.NoError(t, err)

	require.True(t, mainPub.IsEqual(testPub))
}

// TestDeriveChildErrors covers the rejected child derivations.
func TestDeriveChildErrors(t *testing.T) {
	t.Parallel()

	account, err := DeriveAccountKey(
		testSeed(t, 0xff), &chaincfg.MainNetParams, 0,
	)
	require.NoError(t, err)

	_, err = DeriveChild(account, MaxChildIndex+1, false)
	require.ErrorIs(t, err, ErrInvalidDerivationIndex)

	neutered, err := account.Neuter()
	require.NoError(t, err)

	_, err = DeriveChild(neutered, 0, true)
	require.ErrorIs(t, err, ErrInvalidDerivationIndex)

	_, err = DeriveChild(neutered, 0, false)
	require.NoError(t, err)

	_, err = DeriveAccountKey(
		testSeed(t, 0xff), &chaincfg.MainNetParams, MaxAccount+1,
	)
	require.ErrorIs(t, err, ErrInvalidDerivationIndex)
}

// TestDeriveChildPublicMatchesPrivate asserts that a normal child derived from
// the neutered parent is the public key of the private child.
func TestDeriveChildPublicMatchesPrivate(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfN(
			rapid.Byte(), MinSeedBytes, MaxSeedBytes,
		).Draw(t, "seed")
		index := rapid.Uint32Range(0, MaxChildIndex).Draw(t, "index")

		seed, err := NewSeed(raw)
		require.NoError(t, err)

		account, err := DeriveAccountKey(
			seed, &chaincfg.RegressionNetParams, 0,
		)
		require.NoError(t, err)

		privChild, err := DeriveChild(account, index, false)
		require.NoError(t, err)

		neutered, err := account.Neuter()
		require.NoError(t, err)

		pubChild, err := DeriveChild(neutered, index, false)
		require.NoError(t, err)

		want, err := privChild.ECPubKey()
		require.NoError(t, err)
		got, err := pubChild.ECPubKey()
		require.NoError(t, err)

		require.True(t, want.IsEqual(got))
	})
}

// TestParsePubKey asserts that only compressed keys are accepted.
func TestParsePubKey(t *testing.T) {
	t.Parallel()

	compressed, err := hex.DecodeString(receiverAccountKey)
	require.NoError(t, err)

	pub, err := ParsePubKey(compressed)
	require.NoError(t, err)
	require.Equal(t, compressed, pub.SerializeCompressed())

	_, err = ParsePubKey(pub.SerializeUncompressed())
	require.ErrorIs(t, err, ErrInvalidPublicKey)

	_, err = ParsePubKey(compressed[:32])
	require.ErrorIs(t, err, ErrInvalidPublicKey)

	badPrefix := append([]byte{0x04}, compressed[1:]...)
	_, err = ParsePubKey(badPrefix)
	require.ErrorIs(t, err, ErrInvalidPublicKey)

	// x = 5 has no point on the curve.
	offCurve := make([]byte, 33)
	offCurve[0] = 0x02
	offCurve[32] = 0x05
	_, err = ParsePubKey(offCurve)
	require.ErrorIs(t, err, ErrInvalidPublicKey)
}
