package privpay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/privpay/address"
	"github.com/lightningnetwork/privpay/keychain"
)

const (
	// DefaultNetwork is the network used when none is configured.
	DefaultNetwork = "mainnet"

	// DefaultAccount is the account used when none is configured.
	DefaultAccount = 0
)

// ErrUnknownNetwork is returned for a network name that has no parameters.
var ErrUnknownNetwork = errors.New("unknown network")

// Config holds the parameters shared by senders and recipients.
type Config struct {
	// ActiveNet is the network addresses and keys are encoded for.
	ActiveNet *chaincfg.Params

	// Account is the account the keys are derived from.
	Account uint32

	// AddressTypes are the types a recipient accepts, or the first of
	// which a sender pays to if none is requested explicitly.
	AddressTypes []address.Type
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		ActiveNet:    &chaincfg.MainNetParams,
		Account:      DefaultAccount,
		AddressTypes: []address.Type{address.DefaultType},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.ActiveNet == nil {
		return fmt.Errorf("%w: no network set", ErrUnknownNetwork)
	}

	if c.Account > keychain.MaxAccount {
		return fmt.Errorf("%w: account %d", keychain.ErrInvalidDerivationIndex,
			c.Account)
	}

	if len(c.AddressTypes) == 0 {
		return fmt.Errorf("no address types configured")
	}

	for _, t := range c.AddressTypes {
		if err := t.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// NetParams returns the parameters of the named network. The names follow
// lncli: mainnet, testnet, signet, regtest and simnet.
func NetParams(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(strings.TrimSpace(network)) {
	case "mainnet":
		return &chaincfg.MainNetParams, nil

	case "testnet":
		return &chaincfg.TestNet3Params, nil

	case "signet":
		return &chaincfg.SigNetParams, nil

	case "regtest":
		return &chaincfg.RegressionNetParams, nil

	case "simnet":
		return &chaincfg.SimNetParams, nil

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownNetwork, network)
	}
}
