package address

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// knownNets are the networks tried when an address fails to decode for the
// requested one, to tell a foreign address apart from garbage.
var knownNets = []*chaincfg.Params{
	&chaincfg.MainNetParams,
	&chaincfg.TestNet3Params,
	&chaincfg.SigNetParams,
	&chaincfg.RegressionNetParams,
	&chaincfg.SimNetParams,
}

// Encode returns the address of type t that pays to pub on the given network.
func Encode(pub *btcec.PublicKey, t Type,
	params *chaincfg.Params) (btcutil.Address, error) {

	switch t {
	case P2PKH:
		return btcutil.NewAddressPubKeyHash(
			btcutil.Hash160(pub.SerializeCompressed()), params,
		)

	case P2WPKH:
		return btcutil.NewAddressWitnessPubKeyHash(
			btcutil.Hash160(pub.SerializeCompressed()), params,
		)

	// A key-path only output commits to the BIP86 tweak of the key.
	case P2TR:
		outputKey := txscript.ComputeTaprootKeyNoScript(pub)

		return btcutil.NewAddressTaproot(
			schnorr.SerializePubKey(outputKey), params,
		)

	default:
		return nil, fmt.Errorf("%w: id %d", ErrUnsupportedAddressType,
			uint8(t))
	}
}

// EncodeAll encodes pub once per type, in the order given.
func EncodeAll(pub *btcec.PublicKey, types []Type,
	params *chaincfg.Params) ([]btcutil.Address, error) {

	addrs := make([]btcutil.Address, 0, len(types))
	for _, t := range types {
		addr, err := Encode(pub, t, params)
		if err != nil {
			return nil, err
		}

		addrs = append(addrs, addr)
	}

	return addrs, nil
}

// Decode parses an address and returns its type. Addresses of another known
// network fail with ErrWrongNetwork, multi-key and script addresses with
// ErrUnsupportedAddressType.
func Decode(addr string, params *chaincfg.Params) (Type, btcutil.Address,
	error) {

	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		for _, net := range knownNets {
			if net.Net == params.Net {
				continue
			}

			foreign, ferr := btcutil.DecodeAddress(addr, net)
			if ferr == nil && foreign.IsForNet(net) {
				return 0, nil, fmt.Errorf("%w: %v is a %s address",
					ErrWrongNetwork, addr, net.Name)
			}
		}

		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	if !decoded.IsForNet(params) {
		return 0, nil, fmt.Errorf("%w: %v is not a %s address",
			ErrWrongNetwork, addr, params.Name)
	}

	switch decoded.(type) {
	case *btcutil.AddressPubKeyHash:
		return P2PKH, decoded, nil

	case *btcutil.AddressWitnessPubKeyHash:
		return P2WPKH, decoded, nil

	case *btcutil.AddressTaproot:
		return P2TR, decoded, nil

	default:
		return 0, nil, fmt.Errorf("%w: %T", ErrUnsupportedAddressType,
			decoded)
	}
}

// PkScript returns the output script paying to addr.
func PkScript(addr btcutil.Address) ([]byte, error) {
	return txscript.PayToAddrScript(addr)
}

// EncodePrivKey returns the compressed WIF encoding of priv.
func EncodePrivKey(priv *btcec.PrivateKey,
	params *chaincfg.Params) (string, error) {

	wif, err := btcutil.NewWIF(priv, params, true)
	if err != nil {
		return "", err
	}

	return wif.String(), nil
}
