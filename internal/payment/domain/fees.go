package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// USDC has 6 decimals on every supported chain.
const USDCDecimals = 6

var (
	DefaultProcessingFeePct = decimal.RequireFromString("0.5")
	DefaultFixedFee         = decimal.RequireFromString("0.30")

	maxProcessingFeePct = decimal.NewFromInt(10)
	maxFixedFee         = decimal.NewFromInt(100)
	hundred             = decimal.NewFromInt(100)
)

// FeeStructure is a merchant's fee configuration. Nil fields take the defaults.
type FeeStructure struct {
	ProcessingFeePct *decimal.Decimal
	FixedFee         *decimal.Decimal
}

type FeeBreakdown struct {
	Amount           decimal.Decimal `json:"amount"`
	ProcessingFeePct decimal.Decimal `json:"processingFeePct"`
	FixedFee         decimal.Decimal `json:"fixedFee"`
	FeeAmount        decimal.Decimal `json:"feeAmount"`
	NetAmount        decimal.Decimal `json:"netAmount"`
}

// ValidateAmount checks amount is positive and representable in USDC base units.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	if !amount.Equal(amount.Truncate(USDCDecimals)) {
		return fmt.Errorf("%w: at most %d decimal places are supported", ErrInvalidAmount, USDCDecimals)
	}
	return nil
}

func (fs *FeeStructure) resolve() (pct, fixed decimal.Decimal, err error) {
	pct, fixed = DefaultProcessingFeePct, DefaultFixedFee
	if fs != nil && fs.ProcessingFeePct != nil {
		pct = *fs.ProcessingFeePct
	}
	if fs != nil && fs.FixedFee != nil {
		fixed = *fs.FixedFee
	}

	if pct.IsNegative() || pct.GreaterThan(maxProcessingFeePct) {
		return pct, fixed, fmt.Errorf("%w: processing fee must be between 0 and %s percent", ErrInvalidFeeStructure, maxProcessingFeePct)
	}
	if fixed.IsNegative() || fixed.GreaterThan(maxFixedFee) {
		return pct, fixed, fmt.Errorf("%w: fixed fee must be between 0 and %s", ErrInvalidFeeStructure, maxFixedFee)
	}
	return pct, fixed, nil
}

// CalculateFees returns fee = round6(amount*pct/100 + fixed) and net = amount - fee.
func CalculateFees(amount decimal.Decimal, fs *FeeStructure) (FeeBreakdown, error) {
	if err := ValidateAmount(amount); err != nil {
		return FeeBreakdown{}, err
	}

	pct, fixed, err := fs.resolve()
	if err != nil {
		return FeeBreakdown{}, err
	}

	fee := amount.Mul(pct).Div(hundred).Add(fixed).Round(USDCDecimals)
	if fee.GreaterThanOrEqual(amount) {
		return FeeBreakdown{}, fmt.Errorf("%w: fee %s is not below amount %s", ErrFeeExceedsAmount, fee.StringFixed(USDCDecimals), amount)
	}

	return FeeBreakdown{
		Amount:           amount,
		ProcessingFeePct: pct,
		FixedFee:         fixed,
		FeeAmount:        fee,
		NetAmount:        amount.Sub(fee),
	}, nil
}
