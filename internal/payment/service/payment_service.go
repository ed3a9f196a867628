package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/internal/payment/repository"
	"github.com/Swyp/Swyp-Backend/internal/transfer"
	"github.com/Swyp/Swyp-Backend/services/events"
	"github.com/Swyp/Swyp-Backend/services/monitoring/logging"
	"github.com/Swyp/Swyp-Backend/services/monitoring/metrics"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPaymentTTL      = 24 * time.Hour
	DefaultLockTTL         = 30 * time.Second
	DefaultListLimit       = 20
	MaxListLimit           = 100
	DefaultPersistAttempts = 5
	DefaultRetryInterval   = 2 * time.Second

	expirySweepBatch = 100
	lockKeyPrefix    = "payment_lock:"
	transferFailed   = "cross-chain transfer failed: "
	revertedReason   = "funding transaction reverted"
	expiredReason    = "payment expired"
)

type TxVerifier interface {
	Verify(ctx context.Context, chain domain.Chain, txHash string) (*Verification, error)
}

type Transferer interface {
	Burn(ctx context.Context, p *domain.Payment) (*transfer.BurnResult, error)
	Mint(ctx context.Context, p *domain.Payment, message []byte, attestation string) (*transfer.MintResult, error)
}

type Watcher interface {
	Watch(ctx context.Context, paymentID, messageHash string, message []byte) error
	Stop(ctx context.Context, messageHash string) error
	Resume(ctx context.Context) (int, error)
}

type Notifier interface {
	DispatchAsync(merchant *domain.Merchant, p *domain.Payment, event string)
}

type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

type Config struct {
	AppURL     string
	PaymentTTL time.Duration
	Location   *time.Location
	AutoMint   bool
	LockTTL    time.Duration
	// PersistAttempts bounds the writes that record a submitted burn.
	PersistAttempts int
	RetryInterval   time.Duration
}

type PaymentDependencies struct {
	Payments  repository.PaymentRepository
	Merchants repository.MerchantRepository
	Verifier  TxVerifier
	Transfers Transferer
	Monitor   Watcher
	Notifier  Notifier
	Publisher events.Publisher
	// Locker is optional. Without it only the status compare-and-swap guards Process.
	Locker Locker
	Logger *logging.Logger
	Config Config
}

type PaymentService struct {
	payments  repository.PaymentRepository
	merchants repository.MerchantRepository
	verifier  TxVerifier
	transfers Transferer
	monitor   Watcher
	locker    Locker
	machine   *StateMachine
	limits    LimitEnforcer
	config    Config
	logger    *logging.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewPaymentService(d *PaymentDependencies) *PaymentService {
	config := d.Config
	if config.PaymentTTL <= 0 {
		config.PaymentTTL = DefaultPaymentTTL
	}
	if config.LockTTL <= 0 {
		config.LockTTL = DefaultLockTTL
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.PersistAttempts <= 0 {
		config.PersistAttempts = DefaultPersistAttempts
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = DefaultRetryInterval
	}
	publisher := d.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &PaymentService{
		payments:  d.Payments,
		merchants: d.Merchants,
		verifier:  d.Verifier,
		transfers: d.Transfers,
		monitor:   d.Monitor,
		locker:    d.Locker,
		machine: &StateMachine{
			payments:  d.Payments,
			merchants: d.Merchants,
			publisher: publisher,
			notifier:  d.Notifier,
			watcher:   d.Monitor,
			logger:    d.Logger,
		},
		config: config,
		logger: d.Logger,
		now:    time.Now,
	}
}

type CreatePaymentRequest struct {
	MerchantID       int64
	Amount           decimal.Decimal
	Currency         string
	SourceChain      string
	DestinationChain string
	Recipient        string
	Description      string
	Metadata         map[string]string
}

func NewPaymentID() string {
	return "pay_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *PaymentService) PaymentURL(id string) string {
	return strings.TrimRight(s.config.AppURL, "/") + "/checkout/" + id
}

// Create validates and persists a pending payment. Nothing is stored when any
// check fails.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*domain.Payment, error) {
	merchant, err := s.merchants.GetMerchant(ctx, req.MerchantID)
	if err != nil {
		return nil, err
	}
	if !merchant.IsActive() {
		return nil, domain.ErrMerchantInactive
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = domain.Currency
	}
	if currency != domain.Currency {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, req.Currency)
	}

	source, err := domain.ParseChain(req.SourceChain)
	if err != nil {
		return nil, err
	}
	destination, err := domain.ParseChain(req.DestinationChain)
	if err != nil {
		return nil, err
	}
	if !common.IsHexAddress(req.Recipient) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, req.Recipient)
	}

	fees, err := domain.CalculateFees(req.Amount, &merchant.Fees)
	if err != nil {
		return nil, err
	}
	if err := s.limits.CheckSingle(merchant.Limits, req.Amount); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &domain.Payment{
		ID:               NewPaymentID(),
		MerchantID:       merchant.ID,
		Amount:           req.Amount,
		Currency:         currency,
		SourceChain:      source,
		DestinationChain: destination,
		Recipient:        common.HexToAddress(req.Recipient).Hex(),
		Description:      req.Description,
		Metadata:         req.Metadata,
		FeeAmount:        fees.FeeAmount,
		NetAmount:        fees.NetAmount,
		Status:           domain.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
		ExpiresAt:        now.Add(s.config.PaymentTTL),
	}

	created, err := s.payments.CreatePayment(ctx, p, DayStart(now, s.config.Location), func(volume decimal.Decimal) error {
		return s.limits.CheckDaily(merchant.Limits, req.Amount, volume)
	})
	if err != nil {
		return nil, err
	}

	route := "same_chain"
	if created.IsCrossChain() {
		route = "cross_chain"
	}
	metrics.RecordPaymentCreated(route)

	s.logger.WithFields(logrus.Fields{
		"payment_id":  created.ID,
		"merchant_id": created.MerchantID,
		"amount":      created.Amount.String(),
		"route":       route,
	}).Info("payment created")

	return created, nil
}

type ProcessPaymentRequest struct {
	PaymentID       string
	SenderAddress   string
	TransactionHash string
	Signature       string
	IPAddress       string
}

// Process verifies the payer's funding transaction. Same-chain payments
// complete here; cross-chain payments move to processing and settle in the
// background.
func (s *PaymentService) Process(ctx context.Context, req ProcessPaymentRequest) (*domain.Payment, error) {
	p, err := s.payments.GetPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.StatusPending {
		return nil, domain.NewPaymentError(domain.ErrPaymentNotPending, p.ID)
	}
	if p.IsExpired(s.now()) {
		s.expire(ctx, p)
		return nil, domain.NewPaymentError(domain.ErrPaymentExpired, p.ID)
	}

	if err := ValidateTxHash(req.TransactionHash); err != nil {
		return nil, err
	}
	if err := VerifySenderSignature(req.SenderAddress, req.TransactionHash, req.Signature); err != nil {
		return nil, err
	}

	if s.locker != nil {
		release, acquired, err := s.locker.TryLock(ctx, lockKeyPrefix+p.ID, s.config.LockTTL)
		switch {
		case err != nil:
			s.logger.WithError(err).Warn("processing lock unavailable, relying on status check")
		case !acquired:
			return nil, domain.NewPaymentError(domain.ErrPaymentBusy, p.ID)
		default:
			defer release()
		}
	}

	v, err := s.verifier.Verify(ctx, p.SourceChain, req.TransactionHash)
	if err != nil {
		return nil, err
	}

	t := domain.Transition{
		From:          domain.StatusPending,
		SenderAddress: common.HexToAddress(req.SenderAddress).Hex(),
		SourceTxHash:  strings.ToLower(req.TransactionHash),
		Actor:         domain.ActorSystem,
		IPAddress:     req.IPAddress,
	}

	switch v.Status {
	case VerificationNotFound:
		return nil, domain.NewPaymentError(domain.ErrTransactionNotFound, p.ID)

	case VerificationReverted:
		t.To = domain.StatusFailed
		t.FailureReason = revertedReason
		if _, err := s.transition(ctx, p, t); err != nil {
			return nil, err
		}
		return nil, domain.NewPaymentError(domain.ErrTransactionReverted, p.ID)
	}

	if !p.IsCrossChain() {
		t.To = domain.StatusCompleted
		return s.transition(ctx, p, t)
	}

	t.To = domain.StatusProcessing
	updated, err := s.transition(ctx, p, t)
	if err != nil {
		return nil, err
	}
	s.startSettlement(updated)
	return updated, nil
}

// transition reports a lost pending race as the payment no longer being pending.
func (s *PaymentService) transition(ctx context.Context, p *domain.Payment, t domain.Transition) (*domain.Payment, error) {
	updated, err := s.machine.Transition(ctx, p, t)
	if errors.Is(err, domain.ErrStaleTransition) && t.From == domain.StatusPending {
		return nil, domain.NewPaymentError(domain.ErrPaymentNotPending, p.ID, err)
	}
	return updated, err
}

func (s *PaymentService) expire(ctx context.Context, p *domain.Payment) bool {
	_, err := s.machine.Transition(ctx, p, domain.Transition{
		From:   domain.StatusPending,
		To:     domain.StatusExpired,
		Reason: expiredReason,
		Actor:  domain.ActorSystem,
	})
	if err != nil && !errors.Is(err, domain.ErrStaleTransition) {
		s.logger.WithError(err).WithField("payment_id", p.ID).Error("failed to expire payment")
	}
	return err == nil
}

func (s *PaymentService) startSettlement(p *domain.Payment) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.settleCrossChain(context.Background(), p)
	}()
}

// settleCrossChain burns the funds of a processing payment and hands the
// message to the attestation monitor. It never burns twice for one payment.
func (s *PaymentService) settleCrossChain(ctx context.Context, p *domain.Payment) {
	log := s.logger.WithField("payment_id", p.ID)
	if p.MessageHash != "" {
		log.Warn("payment already has a burn message, skipping burn")
		return
	}

	result, err := s.transfers.Burn(ctx, p)
	if err != nil {
		log.WithError(err).Error("burn failed")
		_, terr := s.machine.Transition(ctx, p, domain.Transition{
			From:          domain.StatusProcessing,
			To:            domain.StatusFailed,
			FailureReason: transferFailed + err.Error(),
			Actor:         domain.ActorSystem,
		})
		if terr != nil && !errors.Is(terr, domain.ErrStaleTransition) {
			log.WithError(terr).Error("failed to mark payment failed")
		}
		return
	}

	log = log.WithFields(logrus.Fields{
		"burn_tx":      result.BurnTxHash,
		"message_hash": result.MessageHash,
	})

	// the job carries the message, so it is written first
	if err := s.retry(ctx, func() error {
		return s.monitor.Watch(ctx, p.ID, result.MessageHash, result.Message)
	}); err != nil {
		log.WithError(err).Error("burn submitted but attestation job not persisted, needs operator review")
	}

	if err := s.retry(ctx, func() error {
		_, err := s.payments.SetMessageHash(ctx, p.ID, result.MessageHash)
		if errors.Is(err, domain.ErrStaleTransition) {
			// already recorded or settled
			return nil
		}
		return err
	}); err != nil {
		log.WithError(err).Error("failed to persist message hash")
		return
	}
	log.Info("burn submitted, awaiting attestation")
}

// retry runs fn up to PersistAttempts times, RetryInterval apart.
func (s *PaymentService) retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < s.config.PersistAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.config.RetryInterval):
			}
		}
		if err = fn(); err == nil {
			return nil
		}
		s.logger.WithError(err).WithField("attempt", attempt+1).Warn("write failed")
	}
	return err
}

// CompleteAttestation finishes a processing payment once its burn is attested.
func (s *PaymentService) CompleteAttestation(ctx context.Context, paymentID, messageHash string, message []byte, attestation string) error {
	p, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if p.Status != domain.StatusProcessing {
		return nil
	}

	t := domain.Transition{
		From:            domain.StatusProcessing,
		To:              domain.StatusCompleted,
		MessageHash:     messageHash,
		AttestationHash: attestation,
		Actor:           domain.ActorSystem,
	}

	if s.config.AutoMint && len(message) > 0 {
		minted, err := s.transfers.Mint(ctx, p, message, attestation)
		if err != nil {
			s.logger.WithError(err).WithField("payment_id", p.ID).Warn("mint failed, burn stays redeemable")
		} else {
			t.DestinationTxHash = minted.DestinationTxHash
		}
	}

	_, err = s.machine.Transition(ctx, p, t)
	if errors.Is(err, domain.ErrStaleTransition) {
		return nil
	}
	return err
}

func (s *PaymentService) FailAttestation(ctx context.Context, paymentID, messageHash, reason string) error {
	p, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if p.Status != domain.StatusProcessing {
		return nil
	}

	_, err = s.machine.Transition(ctx, p, domain.Transition{
		From:          domain.StatusProcessing,
		To:            domain.StatusFailed,
		MessageHash:   messageHash,
		FailureReason: reason,
		Actor:         domain.ActorSystem,
	})
	if errors.Is(err, domain.ErrStaleTransition) {
		return nil
	}
	return err
}

func (s *PaymentService) Get(ctx context.Context, id string) (*domain.Payment, error) {
	return s.payments.GetPayment(ctx, id)
}

func (s *PaymentService) List(ctx context.Context, filter repository.ListFilter) ([]*domain.Payment, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.payments.ListMerchantPayments(ctx, filter)
}

// ListEvents returns the audit trail of a payment owned by merchantID.
func (s *PaymentService) ListEvents(ctx context.Context, merchantID int64, paymentID string) ([]domain.StatusEvent, error) {
	p, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.MerchantID != merchantID {
		return nil, domain.ErrPaymentNotFound
	}
	return s.payments.ListStatusEvents(ctx, paymentID)
}

type OverrideStatusRequest struct {
	PaymentID       string
	Status          string
	TransactionHash string
	MessageHash     string
	AttestationHash string
	FailureReason   string
	Reason          string
	IPAddress       string
}

// OverrideStatus applies an operator transition. The lifecycle table still
// applies; moving a payment to processing either resumes monitoring of a
// known burn or starts the burn.
func (s *PaymentService) OverrideStatus(ctx context.Context, req OverrideStatusRequest) (*domain.Payment, error) {
	to, err := domain.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	p, err := s.payments.GetPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}

	startsBurn := to == domain.StatusProcessing && req.MessageHash == ""
	if startsBurn && p.SourceTxHash == "" {
		if err := ValidateTxHash(req.TransactionHash); err != nil {
			return nil, err
		}
	}

	t := domain.Transition{
		From:            p.Status,
		To:              to,
		SourceTxHash:    strings.ToLower(req.TransactionHash),
		MessageHash:     req.MessageHash,
		AttestationHash: req.AttestationHash,
		FailureReason:   req.FailureReason,
		Reason:          req.Reason,
		Actor:           domain.ActorAdmin,
		IPAddress:       req.IPAddress,
	}
	if to == domain.StatusFailed && t.FailureReason == "" {
		t.FailureReason = req.Reason
	}

	updated, err := s.machine.Transition(ctx, p, t)
	if err != nil {
		return nil, err
	}

	if to == domain.StatusProcessing {
		if startsBurn {
			s.startSettlement(updated)
		} else if err := s.monitor.Watch(ctx, updated.ID, updated.MessageHash, nil); err != nil {
			s.logger.WithError(err).WithField("payment_id", updated.ID).Error("failed to start attestation monitor")
		}
	}
	return updated, nil
}

// ExpireStalePayments moves every pending payment past its TTL to expired.
func (s *PaymentService) ExpireStalePayments(ctx context.Context) (int, error) {
	total := 0
	for {
		ids, err := s.payments.ListExpiredPending(ctx, s.now(), expirySweepBatch)
		if err != nil {
			return total, err
		}

		expired := 0
		for _, id := range ids {
			p, err := s.payments.GetPayment(ctx, id)
			if err != nil {
				s.logger.WithError(err).WithField("payment_id", id).Warn("failed to load expired payment")
				continue
			}
			if s.expire(ctx, p) {
				expired++
			}
		}
		total += expired

		if len(ids) < expirySweepBatch || expired == 0 {
			break
		}
	}

	if total > 0 {
		s.logger.Info(fmt.Sprintf("expired %d stale payments", total))
	}
	return total, nil
}

// Resume restarts attestation polling after a restart. Burns recorded without
// a job get one, and payments left processing with no trace of their burn are
// reported.
func (s *PaymentService) Resume(ctx context.Context) error {
	started, err := s.monitor.Resume(ctx)
	if err != nil {
		return fmt.Errorf("failed to resume attestation jobs: %w", err)
	}
	s.logger.Info(fmt.Sprintf("resumed %d attestation jobs", started))

	orphaned, err := s.payments.ListProcessingWithoutJob(ctx)
	if err != nil {
		return err
	}
	for _, p := range orphaned {
		log := s.logger.WithFields(logrus.Fields{"payment_id": p.ID, "message_hash": p.MessageHash})
		if err := s.monitor.Watch(ctx, p.ID, p.MessageHash, nil); err != nil {
			log.WithError(err).Error("failed to watch recorded burn")
			continue
		}
		log.Info("watching recorded burn without attestation job")
	}

	stuck, err := s.payments.ListProcessingWithoutMessage(ctx)
	if err != nil {
		return err
	}
	for _, id := range stuck {
		s.logger.WithField("payment_id", id).Warn("processing payment has no burn message and needs operator review")
	}
	return nil
}

// Wait blocks until background settlements have returned.
func (s *PaymentService) Wait() {
	s.wg.Wait()
}
