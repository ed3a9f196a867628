package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const Currency = "USDC"

type Payment struct {
	ID                string
	MerchantID        int64
	Amount            decimal.Decimal
	Currency          string
	SourceChain       Chain
	DestinationChain  Chain
	Recipient         string
	Description       string
	Metadata          map[string]string
	FeeAmount         decimal.Decimal
	NetAmount         decimal.Decimal
	Status            PaymentStatus
	SenderAddress     string
	SourceTxHash      string
	MessageHash       string
	AttestationHash   string
	DestinationTxHash string
	FailureReason     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ExpiresAt         time.Time
	CompletedAt       *time.Time
}

func (p *Payment) IsCrossChain() bool {
	return p.SourceChain != p.DestinationChain
}

func (p *Payment) IsExpired(now time.Time) bool {
	return p.Status == StatusPending && !now.Before(p.ExpiresAt)
}

type MerchantStatus string

const (
	MerchantActive    MerchantStatus = "active"
	MerchantInactive  MerchantStatus = "inactive"
	MerchantSuspended MerchantStatus = "suspended"
)

type Limits struct {
	SingleTransactionLimit *decimal.Decimal
	DailyLimit             *decimal.Decimal
}

type Merchant struct {
	ID            int64
	BusinessName  string
	WalletAddress string
	Status        MerchantStatus
	Fees          FeeStructure
	Limits        Limits
	WebhookURL    string
	WebhookSecret string
}

func (m *Merchant) IsActive() bool {
	return m.Status == MerchantActive
}

// StatusEvent is one row of a payment's audit trail.
type StatusEvent struct {
	ID         int64
	PaymentID  string
	FromStatus PaymentStatus
	ToStatus   PaymentStatus
	Reason     string
	Actor      string
	IPAddress  string
	CreatedAt  time.Time
}

const (
	ActorSystem = "system"
	ActorAdmin  = "admin"
)

type AttestationJobStatus string

const (
	JobPolling   AttestationJobStatus = "polling"
	JobAttested  AttestationJobStatus = "attested"
	JobTimedOut  AttestationJobStatus = "timed_out"
	JobCancelled AttestationJobStatus = "cancelled"
)

// AttestationJob is the durable state of one attestation poll loop.
type AttestationJob struct {
	MessageHash string
	PaymentID   string
	Message     []byte
	Attempts    int
	MaxAttempts int
	Status      AttestationJobStatus
	LastError   string
	NextPollAt  time.Time
}

func (j *AttestationJob) Remaining() int {
	if j.Attempts >= j.MaxAttempts {
		return 0
	}
	return j.MaxAttempts - j.Attempts
}

type WebhookDelivery struct {
	PaymentID  string
	MerchantID int64
	Event      string
	URL        string
	Payload    []byte
	HTTPStatus int
	Delivered  bool
	Error      string
}
