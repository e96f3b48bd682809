// Package units converts between the human-readable decimal amounts
// used at the CLI boundary and the base-unit integers the contracts
// expect on the wire. Amounts travel as wei (10^-18 ETH); timestamps
// travel as integer seconds since epoch.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Errors.
var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrTooPrecise     = errors.New("amount has more than 18 decimal places")
)

const etherDecimals = 18

// ParseEther converts a decimal ETH string ("0.5") to wei.
func ParseEther(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q", ErrNegativeAmount, s)
	}
	shifted := d.Shift(etherDecimals)
	if shifted.Exponent() < 0 && !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q", ErrTooPrecise, s)
	}
	return shifted.Truncate(0).BigInt(), nil
}

// FormatEther converts a wei amount to a trimmed decimal ETH string.
// FormatEther(ParseEther(s)) round-trips within one wei.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -etherDecimals).String()
}

// ToUnix converts a time to integer seconds since epoch.
func ToUnix(t time.Time) int64 {
	return t.Unix()
}

// FromUnix converts integer seconds since epoch to a local time.
// Sub-second precision is lost, never more.
func FromUnix(sec int64) time.Time {
	return time.Unix(sec, 0)
}

// FromUnixString parses a decimal seconds string as produced by
// contract reads. Invalid input yields the zero time.
func FromUnixString(s string) time.Time {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return time.Time{}
	}
	return time.Unix(n.Int64(), 0)
}

// ParseWei parses a decimal wei string as returned by contract reads.
func ParseWei(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return n, nil
}
