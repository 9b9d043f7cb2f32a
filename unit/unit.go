// Package unit converts between a Cashu amount (always an integer in
// a unit's base denomination) and a human display string, for the
// handful of units this wallet understands.
package unit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/elnosh/gonuts-wallet-core/cashu"
)

// Format renders amount (in unit's base denomination) as a display
// string: "sat"/"msat" print the bare integer, "usd"/"eur" print two
// decimal places (amount is cents).
func Format(amount uint64, unit cashu.Unit) string {
	switch unit {
	case cashu.USD, cashu.EUR:
		return fmt.Sprintf("%d.%02d", amount/100, amount%100)
	case cashu.Msat:
		return strconv.FormatUint(amount, 10)
	default:
		return strconv.FormatUint(amount, 10)
	}
}

// Parse is Format's inverse: given a display string and the unit it's
// denominated in, returns the integer base-denomination amount.
func Parse(display string, unit cashu.Unit) (uint64, error) {
	display = strings.TrimSpace(display)

	switch unit {
	case cashu.USD, cashu.EUR:
		whole, frac, _ := strings.Cut(display, ".")
		wholeAmt, err := strconv.ParseUint(whole, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("unit: invalid amount %q: %w", display, err)
		}
		frac = (frac + "00")[:2]
		fracAmt, err := strconv.ParseUint(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("unit: invalid amount %q: %w", display, err)
		}
		return wholeAmt*100 + fracAmt, nil
	default:
		amt, err := strconv.ParseUint(display, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("unit: invalid amount %q: %w", display, err)
		}
		return amt, nil
	}
}

// Symbol returns the conventional suffix/symbol for a unit.
func Symbol(unit cashu.Unit) string {
	switch unit {
	case cashu.Sat:
		return "sat"
	case cashu.Msat:
		return "msat"
	case cashu.USD:
		return "$"
	case cashu.EUR:
		return "€"
	default:
		return string(unit)
	}
}
