package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/lightningnetwork/privpay/keychain"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

// seedSourceKey is the key of the seed source in the app metadata.
const seedSourceKey = "seedsource"

// seedSource supplies the seed of a command.
type seedSource interface {
	// Seed returns the seed, read as a BIP39 mnemonic if requested, as
	// hex otherwise.
	Seed(mnemonic bool) (*keychain.Seed, error)
}

// terminalSeedSource prompts for the seed without echo when stdin is a
// terminal and reads it from the first line of stdin otherwise.
type terminalSeedSource struct {
	fd     int
	prompt io.Writer
	lines  *bufio.Reader
}

// newTerminalSeedSource reads seeds from the process' stdin.
func newTerminalSeedSource() *terminalSeedSource {
	return &terminalSeedSource{
		// The variable syscall.Stdin is of a different type in the
		// Windows API that's why we need the explicit cast. And of
		// course the linter doesn't like it either.
		fd:     int(syscall.Stdin), // nolint:unconvert
		prompt: os.Stderr,
		lines:  bufio.NewReader(os.Stdin),
	}
}

// Seed returns the seed entered by the user.
func (s *terminalSeedSource) Seed(mnemonic bool) (*keychain.Seed, error) {
	if !mnemonic {
		raw, err := s.read("Seed Hex: ")
		if err != nil {
			return nil, err
		}
		defer zero(raw)

		return keychain.SeedFromHex(string(raw))
	}

	words, err := s.read("Mnemonic: ")
	if err != nil {
		return nil, err
	}
	defer zero(words)

	passphrase, err := s.read("Passphrase (optional): ")
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	defer zero(passphrase)

	return keychain.SeedFromMnemonic(string(words), string(passphrase))
}

// read returns the next secret line, without echo if stdin is a terminal.
func (s *terminalSeedSource) read(prompt string) ([]byte, error) {
	if term.IsTerminal(s.fd) {
		fmt.Fprint(s.prompt, prompt)
		line, err := term.ReadPassword(s.fd)
		fmt.Fprintln(s.prompt)

		return line, err
	}

	line, err := s.lines.ReadBytes('\n')
	if err != nil && (!errors.Is(err, io.EOF) || len(line) == 0) {
		zero(line)
		return nil, err
	}

	return bytes.TrimRight(line, "\r\n"), nil
}

// readSeed reads the seed of the running command from the app's seed source.
func readSeed(ctx *cli.Context, cfg *config) (*keychain.Seed, error) {
	seeds, ok := ctx.App.Metadata[seedSourceKey].(seedSource)
	if !ok {
		return nil, errors.New("no seed source configured")
	}

	return seeds.Seed(cfg.Mnemonic)
}

// zero overwrites b with zeroes.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
