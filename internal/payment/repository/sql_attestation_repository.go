package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	db "github.com/Swyp/Swyp-Backend/db/sqlc"
	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/internal/payment/mapper"
)

type SQLAttestationJobRepository struct {
	queries *db.Queries
}

func NewSQLAttestationJobRepository(queries *db.Queries) *SQLAttestationJobRepository {
	return &SQLAttestationJobRepository{queries: queries}
}

// CreateJob is idempotent per message hash: an existing job is returned as is.
func (r *SQLAttestationJobRepository) CreateJob(ctx context.Context, job *domain.AttestationJob) (*domain.AttestationJob, error) {
	row, err := r.queries.CreateAttestationJob(ctx, db.CreateAttestationJobParams{
		MessageHash: job.MessageHash,
		PaymentID:   job.PaymentID,
		Message:     job.Message,
		MaxAttempts: int32(job.MaxAttempts),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return r.GetJob(ctx, job.MessageHash)
	} else if err != nil {
		return nil, err
	}
	return mapper.ToAttestationJob(&row), nil
}

func (r *SQLAttestationJobRepository) GetJob(ctx context.Context, messageHash string) (*domain.AttestationJob, error) {
	row, err := r.queries.GetAttestationJob(ctx, messageHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	} else if err != nil {
		return nil, err
	}
	return mapper.ToAttestationJob(&row), nil
}

func (r *SQLAttestationJobRepository) RecordAttempt(ctx context.Context, messageHash, lastError string, nextPollAt time.Time) (*domain.AttestationJob, error) {
	row, err := r.queries.RecordAttestationAttempt(ctx, db.RecordAttestationAttemptParams{
		MessageHash: messageHash,
		LastError:   mapper.ToNullString(lastError),
		NextPollAt:  nextPollAt,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	} else if err != nil {
		return nil, err
	}
	return mapper.ToAttestationJob(&row), nil
}

func (r *SQLAttestationJobRepository) FinishJob(ctx context.Context, messageHash string, status domain.AttestationJobStatus) (bool, error) {
	n, err := r.queries.FinishAttestationJob(ctx, db.FinishAttestationJobParams{
		MessageHash: messageHash,
		Status:      string(status),
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLAttestationJobRepository) ListPollingJobs(ctx context.Context) ([]*domain.AttestationJob, error) {
	rows, err := r.queries.ListPollingAttestationJobs(ctx)
	if err != nil {
		return nil, err
	}
	jobs := make([]*domain.AttestationJob, 0, len(rows))
	for i := range rows {
		jobs = append(jobs, mapper.ToAttestationJob(&rows[i]))
	}
	return jobs, nil
}
