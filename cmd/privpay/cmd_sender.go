package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lightningnetwork/privpay"
	"github.com/lightningnetwork/privpay/address"
	"github.com/lightningnetwork/privpay/notification"
	"github.com/lightningnetwork/privpay/paycode"
	"github.com/urfave/cli"
)

var (
	recipientIndexFlag = cli.Uint64Flag{
		Name: "recipient, r",
		Usage: "The recipient index. Every index uses its own " +
			"notification key.",
	}

	addressTypeFlag = cli.StringFlag{
		Name: "type, t",
		Usage: "The address type to pay to: p2pkh, p2wpkh or p2tr. " +
			"Defaults to the first configured type.",
	}
)

var senderCommand = cli.Command{
	Name:     "sender",
	Category: "Sending",
	Usage:    "Notify a payment code and derive the addresses to pay.",
	Subcommands: []cli.Command{
		senderNotifyCommand,
		senderAddressCommand,
	},
}

var senderNotifyCommand = cli.Command{
	Name:      "notify",
	Usage:     "Create the notification for a payment code.",
	ArgsUsage: "payment-code",
	Description: `
	Build the notification output script for the recipient's payment code.
	The script must be published on chain, e.g. as a zero value output of
	the first payment, so the recipient can find the payments.`,
	Flags: []cli.Flag{
		accountFlag,
		recipientIndexFlag,
		addressTypeFlag,
	},
	Action: senderNotify,
}

// senderSession is the state shared by the sender commands.
type senderSession struct {
	cfg            *config
	sender         *privpay.Sender
	notification   *notification.Notification
	commitment     *privpay.Commitment
	recipientIndex uint32
}

// close wipes all secrets of the session.
func (s *senderSession) close() {
	s.commitment.Zero()
	s.sender.Zero()
}

// openSenderSession notifies the payment code given as the first argument.
func openSenderSession(ctx *cli.Context) (*senderSession, error) {
	if !ctx.IsSet("recipient") {
		return nil, errors.New("recipient index (-r) is required")
	}

	recipientIndex := ctx.Uint64("recipient")
	if recipientIndex > math.MaxUint32 {
		return nil, fmt.Errorf("recipient index %d out of range",
			recipientIndex)
	}

	code, err := paycode.Decode(strings.TrimSpace(ctx.Args().First()))
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	engineCfg, err := cfg.engineConfig(ctx)
	if err != nil {
		return nil, err
	}

	addrType := engineCfg.AddressTypes[0]
	if ctx.IsSet("type") {
		addrType, err = address.ParseType(ctx.String("type"))
		if err != nil {
			return nil, err
		}
	}

	seed, err := readSeed(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer seed.Zero()

	sender, err := privpay.NewSender(seed, engineCfg)
	if err != nil {
		return nil, err
	}

	n, commitment, err := sender.Notify(
		code, uint32(recipientIndex), addrType,
	)
	if err != nil {
		sender.Zero()
		return nil, err
	}

	return &senderSession{
		cfg:            cfg,
		sender:         sender,
		notification:   n,
		commitment:     commitment,
		recipientIndex: uint32(recipientIndex),
	}, nil
}

func senderNotify(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "notify")
	}

	session, err := openSenderSession(ctx)
	if err != nil {
		return err
	}
	defer session.close()

	script, err := session.notification.Script()
	if err != nil {
		return err
	}

	return printResult(ctx.App.Writer, session.cfg.Output, &notifyResult{
		Script:         hex.EncodeToString(script),
		Payload:        hex.EncodeToString(session.notification.Payload()),
		RecipientIndex: session.recipientIndex,
		AddressType:    session.notification.AddressType.String(),
	})
}

var senderAddressCommand = cli.Command{
	Name:      "address",
	Usage:     "Derive the addresses to pay a payment code on.",
	ArgsUsage: "payment-code",
	Description: `
	Derive the addresses of the requested index range that pay the
	recipient's payment code. The recipient only finds them after the
	notification of the same recipient index and address type has been
	published.`,
	Flags: []cli.Flag{
		accountFlag,
		recipientIndexFlag,
		addressTypeFlag,
		firstIndexFlag,
		lastIndexFlag,
	},
	Action: senderAddress,
}

func senderAddress(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "address")
	}

	indexes, err := parseIndexRange(ctx)
	if err != nil {
		return err
	}

	session, err := openSenderSession(ctx)
	if err != nil {
		return err
	}
	defer session.close()

	results, err := session.sender.Addresses(session.commitment, indexes)
	if err != nil {
		return err
	}

	res := &addressesResult{
		AddressType: session.commitment.AddressType().String(),
		Addresses:   make([]*addressEntry, 0, len(results)),
	}

	var failed error
	for i, r := range results {
		index := indexes.First + uint64(i)

		addr, err := r.Unpack()
		if err != nil {
			failed = errors.Join(failed, fmt.Errorf("index %d: %w",
				index, err))
			continue
		}

		res.Addresses = append(res.Addresses, &addressEntry{
			Index:   index,
			Address: addr.EncodeAddress(),
		})
	}

	if err := printResult(ctx.App.Writer, session.cfg.Output, res); err != nil {
		return err
	}

	return failed
}
