package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	outputPlain = "plain"
	outputJSON  = "json"
	outputTable = "table"
)

// validateOutput returns an error for an unknown output format.
func validateOutput(format string) error {
	switch format {
	case outputPlain, outputJSON, outputTable:
		return nil

	default:
		return fmt.Errorf("unknown output format %q, expected %s, %s "+
			"or %s", format, outputPlain, outputJSON, outputTable)
	}
}

// result is the output of a command. Every result renders itself in each of
// the output formats.
type result interface {
	// plain returns the lines of the plain text output.
	plain() []string

	// header returns the header row of the table output.
	header() table.Row

	// rows returns the rows of the table output.
	rows() []table.Row
}

// printResult writes the result to w in the given format.
func printResult(w io.Writer, format string, res result) error {
	switch format {
	case outputJSON:
		b, err := json.MarshalIndent(res, "", "    ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))

		return err

	case outputTable:
		rows := res.rows()
		if len(rows) == 0 {
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(res.header())
		t.AppendRows(rows)
		t.Render()

		return nil

	default:
		for _, line := range res.plain() {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}

		return nil
	}
}

// codeResult is the output of receiver code.
type codeResult struct {
	PaymentCode  string   `json:"payment_code"`
	Account      uint32   `json:"account"`
	AddressTypes []string `json:"address_types"`
}

func (r *codeResult) plain() []string {
	return []string{r.PaymentCode}
}

func (r *codeResult) header() table.Row {
	return table.Row{"Payment Code", "Account", "Address Types"}
}

func (r *codeResult) rows() []table.Row {
	return []table.Row{{r.PaymentCode, r.Account, r.AddressTypes}}
}

// addressEntry is a single derived address, with its keys on the receiving
// side if requested.
type addressEntry struct {
	Index   uint64 `json:"index"`
	Address string `json:"address"`
	PubKey  string `json:"pubkey,omitempty"`
	WIF     string `json:"wif,omitempty"`
}

// addressesResult is the output of receiver decode and sender address.
type addressesResult struct {
	AddressType string          `json:"address_type,omitempty"`
	Addresses   []*addressEntry `json:"addresses"`
	showKeys    bool
}

func (r *addressesResult) plain() []string {
	lines := make([]string, 0, len(r.Addresses))
	for _, e := range r.Addresses {
		line := strconv.FormatUint(e.Index, 10) + ": " + e.Address
		if r.showKeys {
			line += " " + e.PubKey + " " + e.WIF
		}

		lines = append(lines, line)
	}

	return lines
}

func (r *addressesResult) header() table.Row {
	if r.showKeys {
		return table.Row{"Index", "Address", "Public Key", "WIF"}
	}

	return table.Row{"Index", "Address"}
}

func (r *addressesResult) rows() []table.Row {
	rows := make([]table.Row, 0, len(r.Addresses))
	for _, e := range r.Addresses {
		row := table.Row{e.Index, e.Address}
		if r.showKeys {
			row = append(row, e.PubKey, e.WIF)
		}

		rows = append(rows, row)
	}

	return rows
}

// notifyResult is the output of sender notify.
type notifyResult struct {
	Script         string `json:"script"`
	Payload        string `json:"payload"`
	RecipientIndex uint32 `json:"recipient_index"`
	AddressType    string `json:"address_type"`
}

func (r *notifyResult) plain() []string {
	return []string{r.Script}
}

func (r *notifyResult) header() table.Row {
	return table.Row{"Script", "Recipient Index", "Address Type"}
}

func (r *notifyResult) rows() []table.Row {
	return []table.Row{{r.Script, r.RecipientIndex, r.AddressType}}
}

// decodedAddressResult is the output of address decode.
type decodedAddressResult struct {
	Address     string `json:"address"`
	AddressType string `json:"address_type"`
	Network     string `json:"network"`
	PkScript    string `json:"pk_script"`
}

func (r *decodedAddressResult) plain() []string {
	return []string{r.AddressType}
}

func (r *decodedAddressResult) header() table.Row {
	return table.Row{"Address", "Type", "Network", "Script"}
}

func (r *decodedAddressResult) rows() []table.Row {
	return []table.Row{{
		r.Address, r.AddressType, r.Network, r.PkScript,
	}}
}
