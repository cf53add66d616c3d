// Package logutil renders protocol values for the structured loggers. Only
// public data is ever rendered: keys are shown by their public half and
// addresses in their encoded form.
package logutil

import (
	"encoding/hex"
	"log/slog"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btclog/v2"
	"github.com/davecgh/go-spew/spew"
)

// dumpConfig is the spew configuration of the debug dumps. Stringer methods
// are skipped so that the raw fields are shown.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// LogClosure defers the formatting of a log argument until the logger
// actually prints it.
type LogClosure func() string

// String invokes the underlying function and returns the result.
func (c LogClosure) String() string {
	return c()
}

// SpewLogClosure dumps v with spew when printed.
func SpewLogClosure(v any) LogClosure {
	return func() string {
		return dumpConfig.Sdump(v)
	}
}

// HexLogClosure renders b in hex when printed.
func HexLogClosure(b []byte) LogClosure {
	return func() string {
		return hex.EncodeToString(b)
	}
}

// LogPubKey returns an attribute with the first bytes of the compressed key
// in hex.
func LogPubKey(key string, pubKey *btcec.PublicKey) slog.Attr {
	if pubKey == nil {
		return btclog.Fmt(key, "<nil>")
	}

	return btclog.Hex6(key, pubKey.SerializeCompressed())
}

// LogAddress returns an attribute with the encoded address.
func LogAddress(key string, addr btcutil.Address) slog.Attr {
	if addr == nil {
		return btclog.Fmt(key, "<nil>")
	}

	return slog.String(key, addr.EncodeAddress())
}
