package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/privpay"
	"github.com/lightningnetwork/privpay/stealth"
	"github.com/urfave/cli"
)

var (
	accountFlag = cli.UintFlag{
		Name:  "account, a",
		Usage: "The account the keys are derived from.",
	}

	firstIndexFlag = cli.Uint64Flag{
		Name:  "first, i",
		Usage: "The first address index to derive.",
	}

	lastIndexFlag = cli.Uint64Flag{
		Name: "last, f",
		Usage: "The last address index to derive. Defaults to the " +
			"first index.",
	}
)

var receiverCommand = cli.Command{
	Name:     "receiver",
	Category: "Receiving",
	Usage:    "Publish a payment code and recover payments made to it.",
	Subcommands: []cli.Command{
		receiverCodeCommand,
		receiverDecodeCommand,
	},
}

var receiverCodeCommand = cli.Command{
	Name:  "code",
	Usage: "Show the payment code of an account.",
	Description: `
	Derive the payment code of the given account from the seed. The payment
	code announces the address types payments are accepted on.`,
	Flags: []cli.Flag{
		accountFlag,
		cli.StringSliceFlag{
			Name: "type, t",
			Usage: "An address type to accept: p2pkh, p2wpkh or " +
				"p2tr. May be repeated.",
		},
	},
	Action: receiverCode,
}

func receiverCode(ctx *cli.Context) error {
	if ctx.NArg() != 0 {
		return cli.ShowCommandHelp(ctx, "code")
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	engineCfg, err := cfg.engineConfig(ctx)
	if err != nil {
		return err
	}

	seed, err := readSeed(ctx, cfg)
	if err != nil {
		return err
	}
	defer seed.Zero()

	recipient, err := privpay.NewRecipient(seed, engineCfg)
	if err != nil {
		return err
	}
	defer recipient.Zero()

	code := recipient.PaymentCode()
	res := &codeResult{
		PaymentCode: code.String(),
		Account:     engineCfg.Account,
	}
	for _, t := range code.AddressTypes() {
		res.AddressTypes = append(res.AddressTypes, t.String())
	}

	return printResult(ctx.App.Writer, cfg.Output, res)
}

var receiverDecodeCommand = cli.Command{
	Name:      "decode",
	Usage:     "Recover the addresses and keys of a notification.",
	ArgsUsage: "notification-hex",
	Description: `
	Check whether a notification, given either as its output script or as
	the bare payload in hex, is addressed to the account's payment code. If
	it is, the addresses of the requested index range are derived together
	with their private keys. Nothing is shown for a notification addressed
	to someone else.`,
	Flags: []cli.Flag{
		accountFlag,
		cli.StringSliceFlag{
			Name: "type, t",
			Usage: "An address type the payment code accepts. " +
				"May be repeated.",
		},
		firstIndexFlag,
		lastIndexFlag,
		cli.BoolFlag{
			Name:  "privkeys, P",
			Usage: "Show the public and private key of every address.",
		},
	},
	Action: receiverDecode,
}

func receiverDecode(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "decode")
	}

	notification, err := hex.DecodeString(
		strings.TrimSpace(ctx.Args().First()),
	)
	if err != nil {
		return fmt.Errorf("unable to decode notification: %w", err)
	}

	indexes, err := parseIndexRange(ctx)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	engineCfg, err := cfg.engineConfig(ctx)
	if err != nil {
		return err
	}

	seed, err := readSeed(ctx, cfg)
	if err != nil {
		return err
	}
	defer seed.Zero()

	recipient, err := privpay.NewRecipient(seed, engineCfg)
	if err != nil {
		return err
	}
	defer recipient.Zero()

	detected, err := recipient.DetectNotification(notification)
	if err != nil {
		return err
	}

	res := &addressesResult{
		Addresses: []*addressEntry{},
		showKeys:  ctx.Bool("privkeys"),
	}

	commitment := detected.UnwrapOr(nil)
	if commitment == nil {
		return printResult(ctx.App.Writer, cfg.Output, res)
	}
	defer commitment.Zero()
	res.AddressType = commitment.AddressType().String()

	results, err := recipient.KeyInfoRange(commitment, indexes)
	if err != nil {
		return err
	}

	entries, failed, err := keyPairEntries(
		results, indexes.First, res.showKeys,
	)
	if err != nil {
		return err
	}
	res.Addresses = append(res.Addresses, entries...)

	if err := printResult(ctx.App.Writer, cfg.Output, res); err != nil {
		return err
	}

	return failed
}

// keyPairEntries renders the recovered key pairs of a range starting at
// first. Failed indexes are joined into failed. Every recovered pair is zeroed
// before returning.
func keyPairEntries(results []fn.Result[*stealth.KeyPair], first uint64,
	showKeys bool) ([]*addressEntry, error, error) {

	defer func() {
		for _, r := range results {
			if pair, err := r.Unpack(); err == nil {
				pair.Zero()
			}
		}
	}()

	var (
		entries = make([]*addressEntry, 0, len(results))
		failed  error
	)
	for i, r := range results {
		index := first + uint64(i)

		pair, err := r.Unpack()
		if err != nil {
			failed = errors.Join(failed, fmt.Errorf("index %d: %w",
				index, err))
			continue
		}

		entry := &addressEntry{
			Index:   index,
			Address: pair.Address.EncodeAddress(),
		}
		if showKeys {
			entry.PubKey = hex.EncodeToString(
				pair.PubKey.SerializeCompressed(),
			)
			entry.WIF, err = pair.WIF()
			if err != nil {
				return nil, nil, fmt.Errorf("index %d: %w",
					index, err)
			}
		}

		entries = append(entries, entry)
	}

	return entries, failed, nil
}

// parseIndexRange returns the address index range requested by the -i and -f
// flags.
func parseIndexRange(ctx *cli.Context) (stealth.IndexRange, error) {
	last := fn.None[uint64]()
	if ctx.IsSet("last") {
		last = fn.Some(ctx.Uint64("last"))
	}

	return stealth.NewIndexRange(ctx.Uint64("first"), last)
}
