package chain

import (
	"fmt"
	"math/big"
	"strings"
)

// TokenDecimals is the decimals of VET, VTHO and the platform token.
const TokenDecimals = 18

// FormatUnits renders raw as a decimal string with trailing zeros trimmed.
func FormatUnits(raw *big.Int, decimals int) string {
	if raw == nil {
		return "0"
	}
	if decimals <= 0 {
		return raw.String()
	}
	neg := raw.Sign() < 0
	s := new(big.Int).Abs(raw).String()
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	whole, frac := s[:len(s)-decimals], strings.TrimRight(s[len(s)-decimals:], "0")
	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// ParseUnits converts a decimal string such as "12.5" into base units.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > decimals {
		return nil, fmt.Errorf("amount %q has more than %d decimals", s, decimals)
	}
	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return n, nil
}
