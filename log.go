package privpay

import (
	"github.com/btcsuite/btclog/v2"
	"github.com/lightningnetwork/privpay/build"
	"github.com/lightningnetwork/privpay/keychain"
	"github.com/lightningnetwork/privpay/notification"
	"github.com/lightningnetwork/privpay/paycode"
	"github.com/lightningnetwork/privpay/stealth"
)

// Subsystem defines the logging code for this subsystem.
const Subsystem = "PPAY"

// log is the package logger. It is replaced by SetupLoggers.
var log btclog.Logger = build.NewSubLogger(Subsystem, nil)

// SetupLoggers initializes all package-global logger variables.
func SetupLoggers(root *build.SubLoggerManager) {
	// Now that we have the root logger, we can create the sub-loggers of
	// this package and all of its dependencies.
	log = build.NewSubLogger(Subsystem, root.GenSubLogger)

	AddSubLogger(root, keychain.Subsystem, keychain.UseLogger)
	AddSubLogger(root, paycode.Subsystem, paycode.UseLogger)
	AddSubLogger(root, notification.Subsystem, notification.UseLogger)
	AddSubLogger(root, stealth.Subsystem, stealth.UseLogger)
}

// AddSubLogger is a helper method to conveniently create and register the
// logger of one or more sub systems.
func AddSubLogger(root *build.SubLoggerManager, subsystem string,
	useLoggers ...func(btclog.Logger)) {

	// Create and register just a single logger to prevent them from
	// overwriting each other internally.
	logger := build.NewSubLogger(subsystem, root.GenSubLogger)
	SetSubLogger(logger, useLoggers...)
}

// SetSubLogger is a helper method to conveniently register the logger of a sub
// system.
func SetSubLogger(logger btclog.Logger, useLoggers ...func(btclog.Logger)) {
	for _, useLogger := range useLoggers {
		useLogger(logger)
	}
}
