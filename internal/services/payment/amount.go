package payment

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mcoot/rightsquest/internal/model"
)

// TokenDecimals is the fixed-point scale of the token (10^6 base units per display unit)
const TokenDecimals = 6

// maxUint256 is the largest amount a transfer payload can carry
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// maxIntegerDigits bounds the integer part of a display amount: 10^72 display
// units already exceed maxUint256 once scaled to base units
const maxIntegerDigits = 72

// ParseAmount converts a human decimal string into base units, truncating
// digits beyond the token's precision toward zero. The amount must be
// strictly positive and representable in 256 bits.
func ParseAmount(s string) (*big.Int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: amount is empty", model.ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a decimal number", model.ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", model.ErrInvalidAmount)
	}

	// bound the magnitude before any rescaling
	intDigits := int64(d.NumDigits()) + int64(d.Exponent())
	if intDigits > maxIntegerDigits {
		return nil, fmt.Errorf("%w: amount exceeds 256 bits", model.ErrInvalidAmount)
	}
	if intDigits <= -TokenDecimals {
		return nil, fmt.Errorf("%w: %q is smaller than one base unit", model.ErrInvalidAmount, s)
	}

	units := d.Shift(TokenDecimals).Truncate(0).BigInt()
	if units.Sign() == 0 {
		return nil, fmt.Errorf("%w: %q is smaller than one base unit", model.ErrInvalidAmount, s)
	}
	if units.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("%w: amount exceeds 256 bits", model.ErrInvalidAmount)
	}
	return units, nil
}

// FormatAmount renders base units as a display string with at least two
// decimal places and no precision loss, e.g. 990000 -> "0.99"
func FormatAmount(units *big.Int) string {
	if units == nil {
		return "0.00"
	}
	d := decimal.NewFromBigInt(units, -TokenDecimals)
	if d.Equal(d.Truncate(2)) {
		return d.StringFixed(2)
	}
	return d.String()
}
