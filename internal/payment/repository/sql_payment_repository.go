package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	db "github.com/Swyp/Swyp-Backend/db/sqlc"
	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/internal/payment/mapper"
	"github.com/shopspring/decimal"
)

type SQLPaymentRepository struct {
	store *db.Store
}

func NewSQLPaymentRepository(store *db.Store) *SQLPaymentRepository {
	return &SQLPaymentRepository{store: store}
}

func (r *SQLPaymentRepository) CreatePayment(ctx context.Context, p *domain.Payment, since time.Time, check DailyVolumeCheck) (*domain.Payment, error) {
	params, err := mapper.ToCreatePaymentParams(p)
	if err != nil {
		return nil, fmt.Errorf("encode payment: %w", err)
	}

	var created db.Payment
	err = r.store.ExecTx(ctx, func(q *db.Queries) error {
		// Row lock on the merchant serializes concurrent creates
		if _, err := q.LockMerchant(ctx, p.MerchantID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrMerchantNotFound
			}
			return err
		}

		raw, err := q.GetMerchantDailyVolume(ctx, db.GetMerchantDailyVolumeParams{
			MerchantID: p.MerchantID,
			CreatedAt:  since,
		})
		if err != nil {
			return err
		}
		volume, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("decode daily volume %q: %w", raw, err)
		}

		if check != nil {
			if err := check(volume); err != nil {
				return err
			}
		}

		created, err = q.CreatePayment(ctx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	return mapper.ToPayment(&created)
}

func (r *SQLPaymentRepository) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	row, err := r.store.GetPayment(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewPaymentError(domain.ErrPaymentNotFound, id)
	} else if err != nil {
		return nil, err
	}
	return mapper.ToPayment(&row)
}

func (r *SQLPaymentRepository) ListMerchantPayments(ctx context.Context, filter ListFilter) ([]*domain.Payment, error) {
	params := db.ListMerchantPaymentsParams{
		MerchantID: filter.MerchantID,
		Limit:      int32(filter.Limit),
		Offset:     int32(filter.Offset),
	}
	if filter.Status != nil {
		params.Status = mapper.ToNullString(filter.Status.String())
	}
	if filter.Chain != nil {
		params.Chain = mapper.ToNullString(filter.Chain.String())
	}

	rows, err := r.store.ListMerchantPayments(ctx, params)
	if err != nil {
		return nil, err
	}
	return mapper.ToPayments(rows)
}

func (r *SQLPaymentRepository) TransitionStatus(ctx context.Context, t domain.Transition) (*domain.Payment, error) {
	var updated db.Payment
	err := r.store.ExecTx(ctx, func(q *db.Queries) error {
		var err error
		updated, err = q.TransitionPaymentStatus(ctx, mapper.ToTransitionParams(t))
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := q.GetPayment(ctx, t.PaymentID); errors.Is(getErr, sql.ErrNoRows) {
				return domain.NewPaymentError(domain.ErrPaymentNotFound, t.PaymentID)
			}
			return domain.NewPaymentError(domain.ErrStaleTransition, t.PaymentID)
		}
		if err != nil {
			if db.IsErrorCode(err, db.DuplicateEntry) {
				return domain.NewPaymentError(domain.ErrTransactionAlreadyUsed, t.PaymentID, err)
			}
			return err
		}

		return recordStatusEvent(ctx, q, t)
	})
	if err != nil {
		return nil, err
	}

	return mapper.ToPayment(&updated)
}

func (r *SQLPaymentRepository) SetMessageHash(ctx context.Context, paymentID, messageHash string) (*domain.Payment, error) {
	row, err := r.store.SetPaymentMessageHash(ctx, db.SetPaymentMessageHashParams{
		ID:          paymentID,
		MessageHash: mapper.ToNullString(messageHash),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewPaymentError(domain.ErrStaleTransition, paymentID)
	} else if err != nil {
		return nil, err
	}
	return mapper.ToPayment(&row)
}

func (r *SQLPaymentRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]string, error) {
	return r.store.ListExpiredPendingPayments(ctx, db.ListExpiredPendingPaymentsParams{
		ExpiresAt: now,
		Limit:     int32(limit),
	})
}

func (r *SQLPaymentRepository) ListProcessingWithoutMessage(ctx context.Context) ([]string, error) {
	return r.store.ListProcessingPaymentsWithoutMessage(ctx)
}

func (r *SQLPaymentRepository) ListProcessingWithoutJob(ctx context.Context) ([]*domain.Payment, error) {
	rows, err := r.store.ListProcessingPaymentsWithoutJob(ctx)
	if err != nil {
		return nil, err
	}
	return mapper.ToPayments(rows)
}

func (r *SQLPaymentRepository) ListStatusEvents(ctx context.Context, paymentID string) ([]domain.StatusEvent, error) {
	rows, err := r.store.ListPaymentStatusEvents(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	events := make([]domain.StatusEvent, 0, len(rows))
	for i := range rows {
		events = append(events, mapper.ToStatusEvent(&rows[i]))
	}
	return events, nil
}
