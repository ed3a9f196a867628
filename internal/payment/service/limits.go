package service

import (
	"time"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/shopspring/decimal"
)

// LimitEnforcer checks merchant transaction limits. A nil limit is unlimited.
type LimitEnforcer struct{}

func (LimitEnforcer) CheckSingle(limits domain.Limits, amount decimal.Decimal) error {
	if limits.SingleTransactionLimit == nil {
		return nil
	}
	if amount.GreaterThan(*limits.SingleTransactionLimit) {
		return &domain.LimitError{
			Kind:      domain.LimitSingle,
			Limit:     *limits.SingleTransactionLimit,
			Attempted: amount,
		}
	}
	return nil
}

func (LimitEnforcer) CheckDaily(limits domain.Limits, amount, dailyVolume decimal.Decimal) error {
	if limits.DailyLimit == nil {
		return nil
	}
	attempted := dailyVolume.Add(amount)
	if attempted.GreaterThan(*limits.DailyLimit) {
		return &domain.LimitError{
			Kind:      domain.LimitDaily,
			Limit:     *limits.DailyLimit,
			Attempted: attempted,
		}
	}
	return nil
}

// DayStart is local midnight of now in loc.
func DayStart(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
