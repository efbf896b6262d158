package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
)

// Cents is an amount of money in minor units.
type Cents int64

// ParseCents reads a decimal amount such as "12", "12.5" or "12.50". An optional
// leading "-" is the only sign accepted.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	invalid := fmt.Errorf("%w: invalid amount %q", apperrors.ErrInvalidRequest, s)
	neg := strings.HasPrefix(s, "-")
	whole, frac, _ := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if whole == "" && frac == "" || len(frac) > 2 || !digits(whole) || !digits(frac) {
		return 0, invalid
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w > maxWhole {
		return 0, invalid
	}
	f, _ := strconv.ParseInt(frac, 10, 64)
	c := Cents(w*100 + f)
	if neg {
		c = -c
	}
	return c, nil
}

// maxWhole is the largest whole part that still fits in Cents.
const maxWhole = (math.MaxInt64 - 99) / 100

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParsePositive is ParseCents restricted to amounts above zero.
func ParsePositive(s string) (Cents, error) {
	c, err := ParseCents(s)
	if err != nil {
		return 0, err
	}
	if c <= 0 {
		return 0, fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrInvalidRequest)
	}
	return c, nil
}

func (c Cents) String() string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}
