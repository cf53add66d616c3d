package main

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/lightningnetwork/privpay"
	"github.com/lightningnetwork/privpay/address"
	"github.com/lightningnetwork/privpay/build"
	"github.com/urfave/cli"
)

const (
	defaultConfigFilename = "privpay.conf"
	defaultNetwork        = privpay.DefaultNetwork
	defaultDebugLevel     = "warn"
)

var (
	defaultConfigFile = filepath.Join(
		"~", ".privpay", defaultConfigFilename,
	)
)

// config is the file backed configuration of the command. Command line flags
// take precedence over the values of the file.
//
//nolint:lll
type config struct {
	Network      string   `long:"network" description:"The network to encode addresses and keys for." choice:"mainnet" choice:"testnet" choice:"signet" choice:"regtest" choice:"simnet"`
	Output       string   `long:"output" description:"The output format." choice:"plain" choice:"json" choice:"table"`
	DebugLevel   string   `long:"debuglevel" description:"Logging level for all subsystems."`
	Mnemonic     bool     `long:"mnemonic" description:"Read the seed as a BIP39 mnemonic."`
	Account      uint32   `long:"account" description:"The default account."`
	AddressTypes []string `long:"addresstype" description:"The default address types, may be repeated. Defaults to p2wpkh."`

	LogConfig *build.LogConfig `group:"logging" namespace:"logging"`
}

// defaultConfig returns the configuration used without a config file.
func defaultConfig() *config {
	return &config{
		Network:    defaultNetwork,
		Output:     outputPlain,
		DebugLevel: defaultDebugLevel,
		Account:    privpay.DefaultAccount,
		LogConfig:  build.DefaultLogConfig(),
	}
}

// loadConfig builds the configuration from, in increasing precedence, the
// defaults, the config file and the global command line flags. It also sets up
// logging.
func loadConfig(ctx *cli.Context) (*config, error) {
	cfg := defaultConfig()

	configFile := cleanAndExpandPath(ctx.GlobalString("configfile"))
	explicit := ctx.GlobalIsSet("configfile")

	err := flags.IniParse(configFile, cfg)
	switch {
	// A missing default config file is fine, a missing explicitly
	// requested one is not.
	case errors.Is(err, os.ErrNotExist) && !explicit:

	case err != nil:
		return nil, fmt.Errorf("unable to load config file %v: %w",
			configFile, err)
	}

	if ctx.GlobalIsSet("network") {
		cfg.Network = ctx.GlobalString("network")
	}
	if ctx.GlobalIsSet("output") {
		cfg.Output = ctx.GlobalString("output")
	}
	if ctx.GlobalIsSet("debuglevel") {
		cfg.DebugLevel = ctx.GlobalString("debuglevel")
	}
	if ctx.GlobalIsSet("mnemonic") {
		cfg.Mnemonic = ctx.GlobalBool("mnemonic")
	}

	if err := validateOutput(cfg.Output); err != nil {
		return nil, err
	}
	if cfg.LogConfig.Console != nil {
		err := cfg.LogConfig.Console.CallSite.Validate()
		if err != nil {
			return nil, err
		}
	}

	root := build.NewSubLoggerManager(cfg.LogConfig)
	privpay.SetupLoggers(root)
	if err := build.ParseAndSetDebugLevels(cfg.DebugLevel, root); err != nil {
		return nil, err
	}

	return cfg, nil
}

// engineConfig returns the protocol configuration, applying the account and
// address type flags of the command being run.
func (c *config) engineConfig(ctx *cli.Context) (*privpay.Config, error) {
	params, err := privpay.NetParams(c.Network)
	if err != nil {
		return nil, err
	}

	account := c.Account
	if ctx.IsSet("account") {
		account = uint32(ctx.Uint("account"))
		if uint64(ctx.Uint("account")) != uint64(account) {
			return nil, fmt.Errorf("account %d out of range",
				ctx.Uint("account"))
		}
	}

	typeNames := c.AddressTypes
	if ctx.IsSet("type") {
		typeNames = ctx.StringSlice("type")
	}
	if len(typeNames) == 0 {
		typeNames = []string{address.DefaultType.String()}
	}
	types, err := address.ParseTypes(typeNames)
	if err != nil {
		return nil, err
	}

	cfg := &privpay.Config{
		ActiveNet:    params,
		Account:      account,
		AddressTypes: types,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	return filepath.Clean(os.ExpandEnv(path))
}
