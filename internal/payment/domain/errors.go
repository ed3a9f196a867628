package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Validation
	ErrInvalidAmount          = fmt.Errorf("invalid amount")
	ErrInvalidCurrency        = fmt.Errorf("unsupported currency")
	ErrUnsupportedChain       = fmt.Errorf("unsupported chain")
	ErrInvalidAddress         = fmt.Errorf("invalid address")
	ErrInvalidTransactionHash = fmt.Errorf("invalid transaction hash")
	ErrInvalidSignature       = fmt.Errorf("invalid signature")
	ErrInvalidFeeStructure    = fmt.Errorf("invalid fee structure")
	ErrFeeExceedsAmount       = fmt.Errorf("fee exceeds payment amount")
	ErrUnknownStatus          = fmt.Errorf("unknown payment status")

	// Limits
	ErrLimitExceeded = fmt.Errorf("limit exceeded")

	// Lookup
	ErrPaymentNotFound  = fmt.Errorf("payment not found")
	ErrMerchantNotFound = fmt.Errorf("merchant not found")
	ErrMerchantInactive = fmt.Errorf("merchant is not active")
	ErrJobNotFound      = fmt.Errorf("attestation job not found")

	// Lifecycle
	ErrPaymentNotPending      = fmt.Errorf("payment is not pending")
	ErrPaymentExpired         = fmt.Errorf("payment has expired")
	ErrPaymentBusy            = fmt.Errorf("payment is already being processed")
	ErrStaleTransition        = fmt.Errorf("stale transition")
	ErrInvalidTransition      = fmt.Errorf("invalid status transition")
	ErrTransactionAlreadyUsed = fmt.Errorf("transaction already used for another payment")
	ErrTransactionNotFound    = fmt.Errorf("transaction not found or not yet confirmed")
	ErrTransactionReverted    = fmt.Errorf("transaction reverted")
	ErrVerificationFailed     = fmt.Errorf("transaction verification failed")
)

type PaymentError struct {
	ErrorObj  error
	PaymentID string
	Other     []error
}

func (p *PaymentError) Error() string {
	return p.ErrorObj.Error()
}

func (p *PaymentError) ErrorOut() string {
	return fmt.Sprintf("%v: %v", p.ErrorObj.Error(), p.PaymentID)
}

func (p *PaymentError) Unwrap() []error {
	return append([]error{p.ErrorObj}, p.Other...)
}

func NewPaymentError(err error, paymentID string, e ...error) *PaymentError {
	return &PaymentError{
		ErrorObj:  err,
		PaymentID: paymentID,
		Other:     e,
	}
}

type LimitKind string

const (
	LimitSingle LimitKind = "single"
	LimitDaily  LimitKind = "daily"
)

type LimitError struct {
	Kind      LimitKind
	Limit     decimal.Decimal
	Attempted decimal.Decimal
}

func (l *LimitError) Error() string {
	if l.Kind == LimitDaily {
		return fmt.Sprintf("daily limit of %s USDC exceeded", l.Limit.StringFixed(2))
	}
	return fmt.Sprintf("amount exceeds single transaction limit of %s USDC", l.Limit.StringFixed(2))
}

func (l *LimitError) Unwrap() error { return ErrLimitExceeded }
