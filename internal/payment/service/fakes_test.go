package service

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/internal/payment/repository"
	"github.com/Swyp/Swyp-Backend/internal/transfer"
	"github.com/Swyp/Swyp-Backend/providers/attestation"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

// memPayments mirrors the conditional writes of SQLPaymentRepository.
type memPayments struct {
	mu       sync.Mutex
	createMu sync.Mutex
	payments map[string]*domain.Payment
	events   map[string][]domain.StatusEvent
	txOwners map[string]string
	jobs     *memJobs

	// SetMessageHash fails this many times
	failSetHash int32
	// GetPayment fails this many times for processing payments
	failProcessingGets int32
}

func newMemPayments() *memPayments {
	return &memPayments{
		payments: make(map[string]*domain.Payment),
		events:   make(map[string][]domain.StatusEvent),
		txOwners: make(map[string]string),
	}
}

func (r *memPayments) CreatePayment(ctx context.Context, p *domain.Payment, since time.Time, check repository.DailyVolumeCheck) (*domain.Payment, error) {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	r.mu.Lock()
	volume := decimal.Zero
	for _, existing := range r.payments {
		if existing.MerchantID != p.MerchantID || existing.CreatedAt.Before(since) {
			continue
		}
		switch existing.Status {
		case domain.StatusPending, domain.StatusProcessing, domain.StatusCompleted:
			volume = volume.Add(existing.Amount)
		}
	}
	r.mu.Unlock()

	// widen the window between the volume read and the insert
	time.Sleep(time.Millisecond)

	if check != nil {
		if err := check(volume); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *p
	r.payments[p.ID] = &stored
	out := stored
	return &out, nil
}

func (r *memPayments) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	if p.Status == domain.StatusProcessing && atomic.AddInt32(&r.failProcessingGets, -1) >= 0 {
		return nil, errors.New("connection reset")
	}
	out := *p
	return &out, nil
}

func (r *memPayments) ListMerchantPayments(ctx context.Context, filter repository.ListFilter) ([]*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Payment
	for _, p := range r.payments {
		if p.MerchantID != filter.MerchantID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.Chain != nil && p.SourceChain != *filter.Chain && p.DestinationChain != *filter.Chain {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memPayments) TransitionStatus(ctx context.Context, t domain.Transition) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[t.PaymentID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	if p.Status != t.From {
		return nil, domain.ErrStaleTransition
	}
	if t.SourceTxHash != "" && p.SourceTxHash == "" {
		if owner, used := r.txOwners[t.SourceTxHash]; used && owner != p.ID {
			return nil, domain.ErrTransactionAlreadyUsed
		}
		r.txOwners[t.SourceTxHash] = p.ID
		p.SourceTxHash = t.SourceTxHash
	}

	setOnce := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	setOnce(&p.SenderAddress, t.SenderAddress)
	setOnce(&p.MessageHash, t.MessageHash)
	setOnce(&p.AttestationHash, t.AttestationHash)
	setOnce(&p.DestinationTxHash, t.DestinationTxHash)
	if t.To == domain.StatusFailed {
		p.FailureReason = t.FailureReason
	}
	if t.To == domain.StatusCompleted {
		now := time.Now()
		p.CompletedAt = &now
	}
	p.Status = t.To
	p.UpdatedAt = time.Now()

	actor := t.Actor
	if actor == "" {
		actor = domain.ActorSystem
	}
	r.events[p.ID] = append(r.events[p.ID], domain.StatusEvent{
		PaymentID:  p.ID,
		FromStatus: t.From,
		ToStatus:   t.To,
		Reason:     t.Reason,
		Actor:      actor,
		IPAddress:  t.IPAddress,
	})

	out := *p
	return &out, nil
}

func (r *memPayments) SetMessageHash(ctx context.Context, paymentID, messageHash string) (*domain.Payment, error) {
	if atomic.AddInt32(&r.failSetHash, -1) >= 0 {
		return nil, errors.New("connection reset")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[paymentID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	if p.Status != domain.StatusProcessing || p.MessageHash != "" {
		return nil, domain.ErrStaleTransition
	}
	p.MessageHash = messageHash
	out := *p
	return &out, nil
}

func (r *memPayments) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, p := range r.payments {
		if p.IsExpired(now) && len(ids) < limit {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memPayments) ListProcessingWithoutMessage(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, p := range r.payments {
		if p.Status == domain.StatusProcessing && p.MessageHash == "" && !r.jobs.hasPayment(id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memPayments) ListProcessingWithoutJob(ctx context.Context) ([]*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Payment
	for _, p := range r.payments {
		if p.Status != domain.StatusProcessing || p.MessageHash == "" {
			continue
		}
		if r.jobs != nil {
			if _, err := r.jobs.GetJob(ctx, p.MessageHash); err == nil {
				continue
			}
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memPayments) ListStatusEvents(ctx context.Context, paymentID string) ([]domain.StatusEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.StatusEvent(nil), r.events[paymentID]...), nil
}

// peek reads a payment without failure injection.
func (r *memPayments) peek(id string) (domain.Payment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return domain.Payment{}, false
	}
	return *p, true
}

func (r *memPayments) set(p *domain.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *p
	r.payments[p.ID] = &stored
}

type memMerchants struct {
	merchants map[int64]*domain.Merchant
}

func (m *memMerchants) GetMerchant(ctx context.Context, id int64) (*domain.Merchant, error) {
	merchant, ok := m.merchants[id]
	if !ok {
		return nil, domain.ErrMerchantNotFound
	}
	out := *merchant
	return &out, nil
}

type fakeVerifier struct {
	mu       sync.Mutex
	statuses map[string]VerificationStatus
	calls    int32
}

func (v *fakeVerifier) Verify(ctx context.Context, c domain.Chain, txHash string) (*Verification, error) {
	atomic.AddInt32(&v.calls, 1)
	v.mu.Lock()
	defer v.mu.Unlock()
	return &Verification{Status: v.statuses[txHash], TxHash: txHash}, nil
}

func (v *fakeVerifier) confirm(txHash string, status VerificationStatus) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.statuses[txHash] = status
}

type fakeTransfers struct {
	burns   int32
	mints   int32
	burnErr error
}

func (f *fakeTransfers) Burn(ctx context.Context, p *domain.Payment) (*transfer.BurnResult, error) {
	atomic.AddInt32(&f.burns, 1)
	if f.burnErr != nil {
		return nil, f.burnErr
	}
	message := []byte("message-" + p.ID)
	return &transfer.BurnResult{
		SourceChain:      p.SourceChain,
		DestinationChain: p.DestinationChain,
		BurnTxHash:       "0xburn",
		Message:          message,
		MessageHash:      crypto.Keccak256Hash(message).Hex(),
	}, nil
}

func (f *fakeTransfers) Mint(ctx context.Context, p *domain.Payment, message []byte, att string) (*transfer.MintResult, error) {
	atomic.AddInt32(&f.mints, 1)
	return &transfer.MintResult{DestinationTxHash: "0xmint"}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) DispatchAsync(merchant *domain.Merchant, p *domain.Payment, event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

type memJobs struct {
	mu   sync.Mutex
	jobs map[string]*domain.AttestationJob

	// CreateJob fails this many times
	failCreate int32
}

func (r *memJobs) CreateJob(ctx context.Context, job *domain.AttestationJob) (*domain.AttestationJob, error) {
	if atomic.AddInt32(&r.failCreate, -1) >= 0 {
		return nil, errors.New("connection reset")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.jobs[job.MessageHash]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *job
	r.jobs[job.MessageHash] = &cp
	out := cp
	return &out, nil
}

func (r *memJobs) hasPayment(paymentID string) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.jobs {
		if job.PaymentID == paymentID {
			return true
		}
	}
	return false
}

func (r *memJobs) GetJob(ctx context.Context, messageHash string) (*domain.AttestationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[messageHash]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (r *memJobs) RecordAttempt(ctx context.Context, messageHash, lastError string, nextPollAt time.Time) (*domain.AttestationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[messageHash]
	if !ok || job.Status != domain.JobPolling {
		return nil, domain.ErrJobNotFound
	}
	job.Attempts++
	job.LastError = lastError
	job.NextPollAt = nextPollAt
	cp := *job
	return &cp, nil
}

func (r *memJobs) FinishJob(ctx context.Context, messageHash string, status domain.AttestationJobStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[messageHash]
	if !ok || job.Status != domain.JobPolling {
		return false, nil
	}
	job.Status = status
	return true, nil
}

func (r *memJobs) ListPollingJobs(ctx context.Context) ([]*domain.AttestationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AttestationJob
	for _, job := range r.jobs {
		if job.Status == domain.JobPolling {
			cp := *job
			out = append(out, &cp)
		}
	}
	return out, nil
}

// attestationAfter is pending for the first readyAt-1 polls. Zero never attests.
type attestationAfter struct {
	calls   int32
	readyAt int32
}

func (c *attestationAfter) GetAttestation(ctx context.Context, messageHash string) (*attestation.Attestation, error) {
	n := atomic.AddInt32(&c.calls, 1)
	if c.readyAt > 0 && n >= c.readyAt {
		return &attestation.Attestation{MessageHash: messageHash, Attestation: "0xa77e57", Status: "complete"}, nil
	}
	return nil, attestation.ErrAttestationPending
}

type fakeLocker struct {
	held bool
}

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if l.held {
		return nil, false, nil
	}
	return func() {}, true, nil
}

func signTx(t *testing.T, key *ecdsa.PrivateKey, txHash string) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(txHash)), key)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
