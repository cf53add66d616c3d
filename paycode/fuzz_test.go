package paycode

import (
	"strings"
	"testing"
)

// FuzzDecode asserts that decoding never panics and that everything which
// decodes encodes back to the same string, modulo case.
func FuzzDecode(f *testing.F) {
	f.Add(testCode)
	f.Add(strings.ToUpper(testCode))
	f.Add("pay1")
	f.Add("bc1qw7ld5h9tj2ruwxqvetznjfq9g5jyp0gjhrs30w")

	f.Fuzz(func(t *testing.T, s string) {
		pc, err := Decode(s)
		if err != nil {
			if pc != nil {
				t.Fatalf("payment code returned with error %v", err)
			}

			return
		}

		encoded, err := pc.Encode()
		if err != nil {
			t.Fatalf("unable to encode decoded code: %v", err)
		}

		if encoded != strings.ToLower(s) {
			t.Fatalf("re-encoding mismatch: got %v, want %v",
				encoded, strings.ToLower(s))
		}
	})
}
