package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestCalculateFees_Defaults(t *testing.T) {
	fees, err := CalculateFees(dec("100"), nil)
	if err != nil {
		t.Fatalf("CalculateFees returned error: %v", err)
	}
	if !fees.FeeAmount.Equal(dec("0.8")) {
		t.Errorf("Expected fee 0.8, got %s", fees.FeeAmount)
	}
	if !fees.NetAmount.Equal(dec("99.2")) {
		t.Errorf("Expected net 99.2, got %s", fees.NetAmount)
	}
}

func TestCalculateFees_PartialOverride(t *testing.T) {
	fees, err := CalculateFees(dec("200"), &FeeStructure{ProcessingFeePct: decPtr("1")})
	if err != nil {
		t.Fatalf("CalculateFees returned error: %v", err)
	}
	// 2 + default fixed 0.30
	if !fees.FeeAmount.Equal(dec("2.3")) {
		t.Errorf("Expected fee 2.3, got %s", fees.FeeAmount)
	}
}

func TestCalculateFees_SumIsExact(t *testing.T) {
	amounts := []string{"0.5", "1", "1.000001", "33.333333", "100.5", "999999.999999", "12345.678901"}
	structures := []*FeeStructure{
		nil,
		{ProcessingFeePct: decPtr("0"), FixedFee: decPtr("0")},
		{ProcessingFeePct: decPtr("2.75"), FixedFee: decPtr("0.1")},
		{ProcessingFeePct: decPtr("10"), FixedFee: decPtr("0")},
		{ProcessingFeePct: decPtr("0.33"), FixedFee: decPtr("0.000001")},
	}

	for _, a := range amounts {
		for _, fs := range structures {
			fees, err := CalculateFees(dec(a), fs)
			if errors.Is(err, ErrFeeExceedsAmount) {
				continue
			}
			if err != nil {
				t.Fatalf("CalculateFees(%s) returned error: %v", a, err)
			}
			if !fees.FeeAmount.Add(fees.NetAmount).Equal(dec(a)) {
				t.Errorf("fee %s + net %s != amount %s", fees.FeeAmount, fees.NetAmount, a)
			}
			if fees.FeeAmount.Exponent() < -USDCDecimals {
				t.Errorf("fee %s has more than %d decimals", fees.FeeAmount, USDCDecimals)
			}
		}
	}
}

func TestCalculateFees_Rounding(t *testing.T) {
	// 33.333333 * 0.33% = 0.1099999989 -> 0.110000
	fees, err := CalculateFees(dec("33.333333"), &FeeStructure{ProcessingFeePct: decPtr("0.33"), FixedFee: decPtr("0")})
	if err != nil {
		t.Fatalf("CalculateFees returned error: %v", err)
	}
	if !fees.FeeAmount.Equal(dec("0.11")) {
		t.Errorf("Expected fee 0.11, got %s", fees.FeeAmount)
	}
}

func TestCalculateFees_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		fs     *FeeStructure
		want   error
	}{
		{"zero amount", "0", nil, ErrInvalidAmount},
		{"negative amount", "-5", nil, ErrInvalidAmount},
		{"too many decimals", "1.0000001", nil, ErrInvalidAmount},
		{"pct too high", "100", &FeeStructure{ProcessingFeePct: decPtr("10.01")}, ErrInvalidFeeStructure},
		{"negative fixed", "100", &FeeStructure{FixedFee: decPtr("-1")}, ErrInvalidFeeStructure},
		{"fixed too high", "1000", &FeeStructure{FixedFee: decPtr("100.5")}, ErrInvalidFeeStructure},
		{"fee above amount", "0.2", nil, ErrFeeExceedsAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateFees(dec(tt.amount), tt.fs)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateAmount_TrailingZeros(t *testing.T) {
	if err := ValidateAmount(dec("1.5000000")); err != nil {
		t.Errorf("Expected trailing zeros to be accepted, got %v", err)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to   PaymentStatus
		crossChain bool
		want       bool
	}{
		{StatusPending, StatusCompleted, false, true},
		{StatusPending, StatusCompleted, true, false},
		{StatusPending, StatusProcessing, true, true},
		{StatusPending, StatusProcessing, false, false},
		{StatusPending, StatusExpired, false, true},
		{StatusPending, StatusExpired, true, true},
		{StatusPending, StatusFailed, false, true},
		{StatusPending, StatusFailed, true, true},
		{StatusProcessing, StatusCompleted, true, true},
		{StatusProcessing, StatusFailed, true, true},
		{StatusProcessing, StatusExpired, true, false},
		{StatusProcessing, StatusPending, true, false},
		{StatusPending, StatusPending, false, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to, tt.crossChain); got != tt.want {
			t.Errorf("CanTransition(%s, %s, cross=%v) = %v, want %v", tt.from, tt.to, tt.crossChain, got, tt.want)
		}
	}
}

func TestCanTransition_TerminalIsFinal(t *testing.T) {
	for _, from := range AllStatuses {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range AllStatuses {
			if CanTransition(from, to, true) || CanTransition(from, to, false) {
				t.Errorf("terminal status %s must not transition to %s", from, to)
			}
		}
	}
}

func TestValidateTransition_Error(t *testing.T) {
	err := ValidateTransition(StatusCompleted, StatusFailed, true)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransition_ValidateFields(t *testing.T) {
	tests := []struct {
		name       string
		t          Transition
		crossChain bool
		wantErr    bool
	}{
		{"same chain plain", Transition{SourceTxHash: "0xabc"}, false, false},
		{"same chain message hash", Transition{MessageHash: "0xabc"}, false, true},
		{"same chain attestation", Transition{AttestationHash: "0xdeadbeef"}, false, true},
		{"same chain mint tx", Transition{DestinationTxHash: "0xmint"}, false, true},
		{"cross chain attestation", Transition{MessageHash: "0xabc", AttestationHash: "0xdeadbeef"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.t.ValidateFields(tt.crossChain)
			if tt.wantErr && !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Expected ErrInvalidTransition, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestParseChain(t *testing.T) {
	if c, err := ParseChain("Polygon"); err != nil || c != ChainPolygon {
		t.Errorf("Expected polygon, got %v (%v)", c, err)
	}
	if _, err := ParseChain("solana"); !errors.Is(err, ErrUnsupportedChain) {
		t.Errorf("Expected ErrUnsupportedChain, got %v", err)
	}
}

func TestWebhookEventFor(t *testing.T) {
	same := &Payment{SourceChain: ChainBase, DestinationChain: ChainBase, Status: StatusProcessing}
	if _, ok := WebhookEventFor(same); ok {
		t.Error("same-chain payments never emit processing events")
	}

	cross := &Payment{SourceChain: ChainBase, DestinationChain: ChainPolygon, Status: StatusProcessing}
	if ev, ok := WebhookEventFor(cross); !ok || ev != EventPaymentProcessing {
		t.Errorf("Expected processing event, got %q", ev)
	}

	expired := &Payment{Status: StatusExpired}
	if _, ok := WebhookEventFor(expired); ok {
		t.Error("expired payments do not emit webhooks")
	}
}

func TestLimitError_Is(t *testing.T) {
	var err error = &LimitError{Kind: LimitDaily, Limit: dec("1000"), Attempted: dec("1200")}
	if !errors.Is(err, ErrLimitExceeded) {
		t.Error("LimitError must match ErrLimitExceeded")
	}
}

func TestPaymentError_Is(t *testing.T) {
	err := NewPaymentError(ErrStaleTransition, "pay_1")
	if !errors.Is(err, ErrStaleTransition) {
		t.Error("PaymentError must unwrap to its cause")
	}
	if err.ErrorOut() != "stale transition: pay_1" {
		t.Errorf("Unexpected ErrorOut: %s", err.ErrorOut())
	}
}
