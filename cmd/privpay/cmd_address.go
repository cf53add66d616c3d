package main

import (
	"encoding/hex"
	"strings"

	"github.com/lightningnetwork/privpay"
	"github.com/lightningnetwork/privpay/address"
	"github.com/urfave/cli"
)

var addressCommand = cli.Command{
	Name:     "address",
	Category: "Addresses",
	Usage:    "Inspect addresses.",
	Subcommands: []cli.Command{
		{
			Name:      "decode",
			Usage:     "Show the type of an address.",
			ArgsUsage: "address",
			Description: `
	Decode an address of the selected network and report its type, which is
	one of the types a payment code can accept.`,
			Action: addressDecode,
		},
	},
}

func addressDecode(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "decode")
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	params, err := privpay.NetParams(cfg.Network)
	if err != nil {
		return err
	}

	addrType, addr, err := address.Decode(
		strings.TrimSpace(ctx.Args().First()), params,
	)
	if err != nil {
		return err
	}

	pkScript, err := address.PkScript(addr)
	if err != nil {
		return err
	}

	return printResult(ctx.App.Writer, cfg.Output, &decodedAddressResult{
		Address:     addr.EncodeAddress(),
		AddressType: addrType.String(),
		Network:     params.Name,
		PkScript:    hex.EncodeToString(pkScript),
	})
}
