package attestation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/internal/payment/repository"
	"github.com/Swyp/Swyp-Backend/providers/attestation"
	"github.com/Swyp/Swyp-Backend/services/monitoring/logging"
	"github.com/Swyp/Swyp-Backend/services/monitoring/metrics"
	"github.com/sirupsen/logrus"
)

const TimeoutReason = "attestation timeout"

// Client fetches the signed attestation for a burn message.
type Client interface {
	GetAttestation(ctx context.Context, messageHash string) (*attestation.Attestation, error)
}

// Completer receives the outcome of a poll loop.
type Completer interface {
	CompleteAttestation(ctx context.Context, paymentID, messageHash string, message []byte, attestation string) error
	FailAttestation(ctx context.Context, paymentID, messageHash, reason string) error
}

type Config struct {
	PollInterval time.Duration
	MaxAttempts  int
}

// Monitor runs one poll loop per message hash. Attempt counts are persisted
// so a restarted process continues where the last one stopped.
type Monitor struct {
	jobs      repository.AttestationJobRepository
	client    Client
	completer Completer
	config    Config
	logger    *logging.Logger

	mu       sync.Mutex
	active   map[string]context.CancelFunc
	settling map[string]struct{}
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewMonitor(jobs repository.AttestationJobRepository, client Client, config Config, logger *logging.Logger) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		jobs:     jobs,
		client:   client,
		config:   config,
		logger:   logger,
		active:   make(map[string]context.CancelFunc),
		settling: make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetCompleter must be called before Watch or Resume.
func (m *Monitor) SetCompleter(c Completer) {
	m.completer = c
}

// Watch persists a job for messageHash and starts polling it. Watching a hash
// that is already watched or finished is a no-op.
func (m *Monitor) Watch(ctx context.Context, paymentID, messageHash string, message []byte) error {
	job, err := m.jobs.CreateJob(ctx, &domain.AttestationJob{
		MessageHash: messageHash,
		PaymentID:   paymentID,
		Message:     message,
		MaxAttempts: m.config.MaxAttempts,
		Status:      domain.JobPolling,
		NextPollAt:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to persist attestation job: %w", err)
	}
	if job.Status != domain.JobPolling {
		return nil
	}

	m.start(job)
	return nil
}

// Resume restarts every job still polling. It returns how many were started.
func (m *Monitor) Resume(ctx context.Context) (int, error) {
	jobs, err := m.jobs.ListPollingJobs(ctx)
	if err != nil {
		return 0, err
	}
	started := 0
	for _, job := range jobs {
		if m.start(job) {
			started++
		}
	}
	return started, nil
}

// Stop cancels the poll loop of messageHash and marks its job cancelled.
// A job that already finished keeps its status, and a loop that is settling
// its payment finishes the job itself.
func (m *Monitor) Stop(ctx context.Context, messageHash string) error {
	m.mu.Lock()
	if _, ok := m.settling[messageHash]; ok {
		m.mu.Unlock()
		return nil
	}
	if cancel, ok := m.active[messageHash]; ok {
		cancel()
		delete(m.active, messageHash)
	}
	m.mu.Unlock()

	_, err := m.jobs.FinishJob(ctx, messageHash, domain.JobCancelled)
	return err
}

func (m *Monitor) IsWatching(messageHash string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[messageHash]
	return ok
}

// Shutdown stops every loop without finishing their jobs.
func (m *Monitor) Shutdown() {
	m.cancel()
	m.wg.Wait()
}

func (m *Monitor) start(job *domain.AttestationJob) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx.Err() != nil {
		return false
	}
	if _, ok := m.active[job.MessageHash]; ok {
		return false
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.active[job.MessageHash] = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.release(ctx, job.MessageHash)
		m.poll(ctx, job)
	}()
	return true
}

// release drops the loop's entry unless Stop already replaced or removed it.
func (m *Monitor) release(ctx context.Context, messageHash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cancel, ok := m.active[messageHash]; ok && ctx.Err() == nil {
		cancel()
		delete(m.active, messageHash)
	}
}

func (m *Monitor) poll(ctx context.Context, job *domain.AttestationJob) {
	log := m.logger.WithFields(logrus.Fields{
		"payment_id":   job.PaymentID,
		"message_hash": job.MessageHash,
	})

	attempts := job.Attempts
	if attempts >= job.MaxAttempts && m.timeout(job, log) {
		return
	}

	delay := time.Until(job.NextPollAt)
	if delay < 0 {
		delay = 0
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	// once set, the loop only retries handing it to the completer
	var received *attestation.Attestation
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		timer.Reset(m.config.PollInterval)

		switch {
		case received != nil:
			if m.attested(job, received, log) {
				return
			}
			continue
		case attempts >= job.MaxAttempts:
			if m.timeout(job, log) {
				return
			}
			continue
		}

		att, err := m.client.GetAttestation(ctx, job.MessageHash)
		if ctx.Err() != nil {
			return
		}

		if err == nil {
			metrics.RecordAttestationPoll("attested")
			log.Info("attestation received")
			received = att
			if m.attested(job, received, log) {
				return
			}
			continue
		}

		outcome := "pending"
		if !errors.Is(err, attestation.ErrAttestationPending) {
			outcome = "error"
			log.WithError(err).Warn("attestation poll failed")
		}
		metrics.RecordAttestationPoll(outcome)

		updated, rerr := m.jobs.RecordAttempt(ctx, job.MessageHash, err.Error(), time.Now().Add(m.config.PollInterval))
		switch {
		case errors.Is(rerr, domain.ErrJobNotFound):
			// finished elsewhere
			return
		case rerr != nil:
			log.WithError(rerr).Error("failed to record attestation attempt")
			attempts++
		default:
			attempts = updated.Attempts
		}

		if attempts >= job.MaxAttempts && m.timeout(job, log) {
			return
		}
	}
}

// attested reports whether the payment took the attestation. The job stays
// polling until it has, so a restart polls and completes it again.
func (m *Monitor) attested(job *domain.AttestationJob, att *attestation.Attestation, log *logrus.Entry) bool {
	return m.settle(job, domain.JobAttested, log, func(ctx context.Context) error {
		return m.completer.CompleteAttestation(ctx, job.PaymentID, job.MessageHash, job.Message, att.Attestation)
	})
}

func (m *Monitor) timeout(job *domain.AttestationJob, log *logrus.Entry) bool {
	log.WithField("attempts", job.MaxAttempts).Warn("attestation timed out")
	return m.settle(job, domain.JobTimedOut, log, func(ctx context.Context) error {
		return m.completer.FailAttestation(ctx, job.PaymentID, job.MessageHash, TimeoutReason)
	})
}

// settle runs fn and finishes the job with status once fn succeeds. While it
// runs, Stop leaves the job to this loop. fn runs on the monitor context since
// the transition it makes stops the loop.
func (m *Monitor) settle(job *domain.AttestationJob, status domain.AttestationJobStatus, log *logrus.Entry, fn func(context.Context) error) bool {
	m.mu.Lock()
	m.settling[job.MessageHash] = struct{}{}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.settling, job.MessageHash)
		m.mu.Unlock()
	}()

	if err := fn(m.ctx); err != nil {
		log.WithError(err).WithField("outcome", string(status)).Error("failed to settle payment, retrying")
		return false
	}

	if _, err := m.jobs.FinishJob(m.ctx, job.MessageHash, status); err != nil {
		// the payment is settled; a resumed poll finds nothing left to do
		log.WithError(err).Error("failed to finish attestation job")
	}
	return true
}
