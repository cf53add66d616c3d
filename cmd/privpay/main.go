package main

import (
	"fmt"
	"os"

	"github.com/lightningnetwork/privpay/build"
	"github.com/urfave/cli"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[privpay] %v\n", err)
	os.Exit(1)
}

// newApp assembles the command line application. Seeds are read from the
// given source.
func newApp(seeds seedSource) *cli.App {
	app := cli.NewApp()
	app.Name = "privpay"
	app.Version = build.Version() + " commit=" + build.Commit
	app.Usage = "create payment codes, notify recipients and derive " +
		"stealth addresses"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name: "network, n",
			Usage: "The network to encode addresses and keys for: " +
				"mainnet, testnet, signet, regtest or simnet.",
			Value: defaultNetwork,
		},
		cli.StringFlag{
			Name:  "output, o",
			Usage: "The output format: plain, json or table.",
			Value: outputPlain,
		},
		cli.StringFlag{
			Name: "debuglevel",
			Usage: "Logging level for all subsystems {trace, " +
				"debug, info, warn, error, critical}, or " +
				"<global-level>,<subsystem>=<level>,... to " +
				"set the level per subsystem.",
			Value: defaultDebugLevel,
		},
		cli.StringFlag{
			Name:      "configfile",
			Usage:     "The path to the configuration file.",
			Value:     defaultConfigFile,
			TakesFile: true,
		},
		cli.BoolFlag{
			Name: "mnemonic",
			Usage: "Read the seed as a BIP39 mnemonic instead of " +
				"hex.",
		},
	}
	app.Metadata = map[string]interface{}{
		seedSourceKey: seeds,
	}
	app.Commands = []cli.Command{
		receiverCommand,
		senderCommand,
		addressCommand,
	}

	return app
}

func main() {
	app := newApp(newTerminalSeedSource())
	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
