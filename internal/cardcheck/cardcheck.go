// Package cardcheck holds the pure validation rules applied to payment
// cards: Luhn checksum, network detection and PAN display helpers. No
// state, no I/O.
package cardcheck

import (
	"strings"
)

// Network is the advisory card network derived from the PAN prefix. It
// is display metadata only, never a validity signal.
type Network string

const (
	NetworkVisa       Network = "Visa"
	NetworkMasterCard Network = "MasterCard"
	NetworkAmex       Network = "American Express"
	NetworkDiscover   Network = "Discover"
	NetworkUnknown    Network = "Unknown"
)

// PANLengths are the accepted PAN digit counts.
var PANLengths = map[int]bool{13: true, 15: true, 16: true}

// IsDigits reports whether s is non-empty and contains only ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// LuhnValid reports whether pan passes the Luhn mod-10 checksum.
// Callers reject non-digit input before calling; a non-digit pan is
// reported invalid rather than panicking.
func LuhnValid(pan string) bool {
	if !IsDigits(pan) {
		return false
	}
	sum, dbl := 0, false
	for i := len(pan) - 1; i >= 0; i-- {
		d := int(pan[i] - '0')
		if dbl {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		dbl = !dbl
	}
	return sum%10 == 0
}

// DetectNetwork classifies a PAN by issuer prefix.
func DetectNetwork(pan string) Network {
	switch {
	case strings.HasPrefix(pan, "34"), strings.HasPrefix(pan, "37"):
		return NetworkAmex
	case len(pan) >= 2 && pan[0] == '5' && pan[1] >= '1' && pan[1] <= '5':
		return NetworkMasterCard
	case strings.HasPrefix(pan, "4"):
		return NetworkVisa
	case strings.HasPrefix(pan, "6"):
		return NetworkDiscover
	default:
		return NetworkUnknown
	}
}

// Mask hides all but the last four digits of a PAN. Inputs of four or
// fewer characters are returned as-is.
func Mask(pan string) string {
	if len(pan) <= 4 {
		return pan
	}
	return "**** **** **** " + pan[len(pan)-4:]
}

// FormatPAN groups a PAN into blocks of four for display.
func FormatPAN(pan string) string {
	var groups []string
	for i := 0; i < len(pan); i += 4 {
		end := i + 4
		if end > len(pan) {
			end = len(pan)
		}
		groups = append(groups, pan[i:end])
	}
	return strings.Join(groups, " ")
}
