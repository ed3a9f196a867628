package repository

import (
	"context"
	"time"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/shopspring/decimal"
)

// DailyVolumeCheck is evaluated inside the creating transaction with the
// merchant's current daily volume.
type DailyVolumeCheck func(dailyVolume decimal.Decimal) error

type ListFilter struct {
	MerchantID int64
	Status     *domain.PaymentStatus
	Chain      *domain.Chain
	Limit      int
	Offset     int
}

type PaymentRepository interface {
	// CreatePayment serializes creates per merchant so check sees every
	// payment committed before it.
	CreatePayment(ctx context.Context, p *domain.Payment, since time.Time, check DailyVolumeCheck) (*domain.Payment, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	ListMerchantPayments(ctx context.Context, filter ListFilter) ([]*domain.Payment, error)
	// TransitionStatus is a compare-and-swap on status; a lost race returns
	// domain.ErrStaleTransition.
	TransitionStatus(ctx context.Context, t domain.Transition) (*domain.Payment, error)
	SetMessageHash(ctx context.Context, paymentID, messageHash string) (*domain.Payment, error)
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]string, error)
	// ListProcessingWithoutMessage skips payments that already have a job.
	ListProcessingWithoutMessage(ctx context.Context) ([]string, error)
	// ListProcessingWithoutJob returns processing payments whose burn message
	// has no attestation job.
	ListProcessingWithoutJob(ctx context.Context) ([]*domain.Payment, error)
	ListStatusEvents(ctx context.Context, paymentID string) ([]domain.StatusEvent, error)
}

type MerchantRepository interface {
	GetMerchant(ctx context.Context, id int64) (*domain.Merchant, error)
}

type AttestationJobRepository interface {
	CreateJob(ctx context.Context, job *domain.AttestationJob) (*domain.AttestationJob, error)
	GetJob(ctx context.Context, messageHash string) (*domain.AttestationJob, error)
	RecordAttempt(ctx context.Context, messageHash, lastError string, nextPollAt time.Time) (*domain.AttestationJob, error)
	FinishJob(ctx context.Context, messageHash string, status domain.AttestationJobStatus) (bool, error)
	ListPollingJobs(ctx context.Context) ([]*domain.AttestationJob, error)
}

type WebhookDeliveryRepository interface {
	RecordDelivery(ctx context.Context, d *domain.WebhookDelivery) error
}
