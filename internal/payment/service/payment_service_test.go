package service

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Swyp/Swyp-Backend/internal/attestation"
	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/internal/payment/repository"
	"github.com/Swyp/Swyp-Backend/internal/transfer"
	"github.com/Swyp/Swyp-Backend/services/monitoring/logging"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

const (
	merchantID = int64(1)
	recipient  = "0x2222222222222222222222222222222222222222"
)

type harness struct {
	svc       *PaymentService
	payments  *memPayments
	merchants *memMerchants
	verifier  *fakeVerifier
	transfers *fakeTransfers
	notifier  *recordingNotifier
	client    *attestationAfter
	jobs      *memJobs
	key       *ecdsa.PrivateKey
	sender    string
	txSeq     int32
}

func newHarness(t *testing.T, readyAt int32) *harness {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	limit := decimal.NewFromInt(1000)
	h := &harness{
		payments: newMemPayments(),
		merchants: &memMerchants{merchants: map[int64]*domain.Merchant{
			merchantID: {ID: merchantID, Status: domain.MerchantActive, WebhookURL: "https://merchant.test/hook", Limits: domain.Limits{DailyLimit: &limit}},
			2:          {ID: 2, Status: domain.MerchantInactive},
		}},
		verifier:  &fakeVerifier{statuses: make(map[string]VerificationStatus)},
		transfers: &fakeTransfers{},
		notifier:  &recordingNotifier{},
		client:    &attestationAfter{readyAt: readyAt},
		jobs:      &memJobs{jobs: make(map[string]*domain.AttestationJob)},
		key:       key,
		sender:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}

	h.payments.jobs = h.jobs

	logger := logging.NewDiscardLogger()
	monitor := attestation.NewMonitor(h.jobs, h.client, attestation.Config{PollInterval: time.Millisecond, MaxAttempts: 60}, logger)

	h.svc = NewPaymentService(&PaymentDependencies{
		Payments:  h.payments,
		Merchants: h.merchants,
		Verifier:  h.verifier,
		Transfers: h.transfers,
		Monitor:   monitor,
		Notifier:  h.notifier,
		Logger:    logger,
		Config:    Config{AppURL: "https://pay.swyp.test", RetryInterval: time.Millisecond},
	})
	monitor.SetCompleter(h.svc)

	t.Cleanup(func() {
		h.svc.Wait()
		monitor.Shutdown()
	})
	return h
}

func (h *harness) create(t *testing.T, source, destination domain.Chain, amount string) *domain.Payment {
	t.Helper()
	p, err := h.svc.Create(context.Background(), CreatePaymentRequest{
		MerchantID:       merchantID,
		Amount:           decimal.RequireFromString(amount),
		Currency:         "usdc",
		SourceChain:      string(source),
		DestinationChain: string(destination),
		Recipient:        recipient,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return p
}

func (h *harness) newTx(status VerificationStatus) string {
	n := atomic.AddInt32(&h.txSeq, 1)
	tx := fmt.Sprintf("0x%064x", n)
	h.verifier.confirm(tx, status)
	return tx
}

func (h *harness) processRequest(t *testing.T, paymentID, tx string) ProcessPaymentRequest {
	return ProcessPaymentRequest{
		PaymentID:       paymentID,
		SenderAddress:   h.sender,
		TransactionHash: tx,
		Signature:       signTx(t, h.key, tx),
	}
}

func (h *harness) status(t *testing.T, id string) domain.PaymentStatus {
	p, ok := h.payments.peek(id)
	if !ok {
		t.Fatalf("payment %s not stored", id)
	}
	return p.Status
}

func TestCreate(t *testing.T) {
	h := newHarness(t, 0)

	p := h.create(t, domain.ChainEthereum, domain.ChainBase, "100")

	if !strings.HasPrefix(p.ID, "pay_") || len(p.ID) != len("pay_")+32 {
		t.Errorf("Unexpected payment id %q", p.ID)
	}
	if p.Status != domain.StatusPending || p.Currency != domain.Currency {
		t.Errorf("Unexpected payment %+v", p)
	}
	if !p.FeeAmount.Equal(decimal.RequireFromString("0.8")) || !p.NetAmount.Equal(decimal.RequireFromString("99.2")) {
		t.Errorf("Unexpected fees %s / %s", p.FeeAmount, p.NetAmount)
	}
	if got := p.ExpiresAt.Sub(p.CreatedAt); got != 24*time.Hour {
		t.Errorf("Expected 24h TTL, got %s", got)
	}
	if got := h.svc.PaymentURL(p.ID); got != "https://pay.swyp.test/checkout/"+p.ID {
		t.Errorf("Unexpected payment url %s", got)
	}
}

func TestCreate_Rejects(t *testing.T) {
	h := newHarness(t, 0)

	tests := []struct {
		name string
		req  CreatePaymentRequest
		want error
	}{
		{"unknown merchant", CreatePaymentRequest{MerchantID: 99, Amount: decimal.NewFromInt(1), SourceChain: "base", DestinationChain: "base", Recipient: recipient}, domain.ErrMerchantNotFound},
		{"inactive merchant", CreatePaymentRequest{MerchantID: 2, Amount: decimal.NewFromInt(1), SourceChain: "base", DestinationChain: "base", Recipient: recipient}, domain.ErrMerchantInactive},
		{"currency", CreatePaymentRequest{MerchantID: merchantID, Amount: decimal.NewFromInt(1), Currency: "USDT", SourceChain: "base", DestinationChain: "base", Recipient: recipient}, domain.ErrInvalidCurrency},
		{"chain", CreatePaymentRequest{MerchantID: merchantID, Amount: decimal.NewFromInt(1), SourceChain: "solana", DestinationChain: "base", Recipient: recipient}, domain.ErrUnsupportedChain},
		{"recipient", CreatePaymentRequest{MerchantID: merchantID, Amount: decimal.NewFromInt(1), SourceChain: "base", DestinationChain: "base", Recipient: "0x12"}, domain.ErrInvalidAddress},
		{"zero amount", CreatePaymentRequest{MerchantID: merchantID, Amount: decimal.Zero, SourceChain: "base", DestinationChain: "base", Recipient: recipient}, domain.ErrInvalidAmount},
		{"fee exceeds amount", CreatePaymentRequest{MerchantID: merchantID, Amount: decimal.RequireFromString("0.2"), SourceChain: "base", DestinationChain: "base", Recipient: recipient}, domain.ErrFeeExceedsAmount},
		{"daily limit", CreatePaymentRequest{MerchantID: merchantID, Amount: decimal.NewFromInt(1001), SourceChain: "base", DestinationChain: "base", Recipient: recipient}, domain.ErrLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Create(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if len(h.payments.payments) != 0 {
		t.Errorf("Expected nothing persisted, got %d payments", len(h.payments.payments))
	}
}

func TestCreate_ConcurrentDailyLimit(t *testing.T) {
	h := newHarness(t, 0)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.svc.Create(context.Background(), CreatePaymentRequest{
				MerchantID:       merchantID,
				Amount:           decimal.NewFromInt(600),
				SourceChain:      "polygon",
				DestinationChain: "polygon",
				Recipient:        recipient,
			})
		}(i)
	}
	wg.Wait()

	succeeded, limited := 0, 0
	for _, err := range errs {
		var le *domain.LimitError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &le) && le.Kind == domain.LimitDaily:
			limited++
		default:
			t.Errorf("Unexpected error %v", err)
		}
	}
	if succeeded != 1 || limited != 1 {
		t.Errorf("Expected one success and one daily limit error, got %d and %d", succeeded, limited)
	}
}

func TestProcess_SameChainCompletes(t *testing.T) {
	h := newHarness(t, 0)
	p := h.create(t, domain.ChainBase, domain.ChainBase, "50")
	tx := h.newTx(VerificationConfirmed)

	updated, err := h.svc.Process(context.Background(), h.processRequest(t, p.ID, tx))
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if updated.Status != domain.StatusCompleted {
		t.Errorf("Expected completed, got %s", updated.Status)
	}
	if updated.SourceTxHash != tx || updated.CompletedAt == nil {
		t.Errorf("Unexpected payment %+v", updated)
	}
	if updated.MessageHash != "" || updated.AttestationHash != "" {
		t.Error("Expected same-chain payment to have no burn or attestation")
	}
	if got := atomic.LoadInt32(&h.transfers.burns); got != 0 {
		t.Errorf("Expected no burn, got %d", got)
	}
	if sent := h.notifier.sent(); len(sent) != 1 || sent[0] != domain.EventPaymentCompleted {
		t.Errorf("Unexpected webhooks %v", sent)
	}
}

func TestProcess_CrossChainCompletesOnThirdPoll(t *testing.T) {
	h := newHarness(t, 3)
	p := h.create(t, domain.ChainEthereum, domain.ChainBase, "100")
	tx := h.newTx(VerificationConfirmed)

	updated, err := h.svc.Process(context.Background(), h.processRequest(t, p.ID, tx))
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if updated.Status != domain.StatusProcessing {
		t.Fatalf("Expected processing, got %s", updated.Status)
	}

	waitFor(t, func() bool { return h.status(t, p.ID) == domain.StatusCompleted })

	final, _ := h.svc.Get(context.Background(), p.ID)
	if final.MessageHash == "" || final.AttestationHash != "0xa77e57" {
		t.Errorf("Unexpected settlement fields %+v", final)
	}
	if got := atomic.LoadInt32(&h.client.calls); got != 3 {
		t.Errorf("Expected 3 attestation polls, got %d", got)
	}
	if got := atomic.LoadInt32(&h.transfers.burns); got != 1 {
		t.Errorf("Expected exactly one burn, got %d", got)
	}

	sent := h.notifier.sent()
	if len(sent) != 2 || sent[0] != domain.EventPaymentProcessing || sent[1] != domain.EventPaymentCompleted {
		t.Errorf("Unexpected webhooks %v", sent)
	}

	events, _ := h.svc.ListEvents(context.Background(), merchantID, p.ID)
	if len(events) != 2 || events[0].ToStatus != domain.StatusProcessing || events[1].ToStatus != domain.StatusCompleted {
		t.Errorf("Unexpected audit trail %+v", events)
	}
}

func TestProcess_CrossChainAttestationTimeout(t *testing.T) {
	h := newHarness(t, 0)
	p := h.create(t, domain.ChainPolygon, domain.ChainEthereum, "10")
	tx := h.newTx(VerificationConfirmed)

	if _, err := h.svc.Process(context.Background(), h.processRequest(t, p.ID, tx)); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	waitFor(t, func() bool { return h.status(t, p.ID) == domain.StatusFailed })

	final, _ := h.svc.Get(context.Background(), p.ID)
	if final.FailureReason != attestation.TimeoutReason {
		t.Errorf("Expected failure reason %q, got %q", attestation.TimeoutReason, final.FailureReason)
	}
	if got := atomic.LoadInt32(&h.client.calls); got != 60 {
		t.Errorf("Expected 60 attestation polls, got %d", got)
	}
}

func TestProcess_CompletionRetriedAfterLoadFailure(t *testing.T) {
	h := newHarness(t, 1)
	atomic.StoreInt32(&h.payments.failProcessingGets, 1)
	p := h.create(t, domain.ChainEthereum, domain.ChainBase, "100")
	tx := h.newTx(VerificationConfirmed)

	if _, err := h.svc.Process(context.Background(), h.processRequest(t, p.ID, tx)); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	waitFor(t, func() bool { return h.status(t, p.ID) == domain.StatusCompleted })

	final, _ := h.payments.peek(p.ID)
	if final.AttestationHash != "0xa77e57" {
		t.Errorf("Expected attestation hash, got %q", final.AttestationHash)
	}
	waitFor(t, func() bool {
		job, err := h.jobs.GetJob(context.Background(), final.MessageHash)
		return err == nil && job.Status == domain.JobAttested
	})
}

func TestProcess_BurnRecordingRetriesWrites(t *testing.T) {
	h := newHarness(t, 1)
	atomic.StoreInt32(&h.jobs.failCreate, 1)
	atomic.StoreInt32(&h.payments.failSetHash, 100)
	p := h.create(t, domain.ChainEthereum, domain.ChainBase, "100")
	tx := h.newTx(VerificationConfirmed)

	if _, err := h.svc.Process(context.Background(), h.processRequest(t, p.ID, tx)); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	waitFor(t, func() bool { return h.status(t, p.ID) == domain.StatusCompleted })
	h.svc.Wait()

	final, _ := h.svc.Get(context.Background(), p.ID)
	if final.MessageHash == "" || final.AttestationHash != "0xa77e57" {
		t.Errorf("Expected completion to record the burn, got %+v", final)
	}
	if got := atomic.LoadInt32(&h.transfers.burns); got != 1 {
		t.Errorf("Expected exactly one burn, got %d", got)
	}
}

func TestResume_WatchesBurnWithoutJob(t *testing.T) {
	h := newHarness(t, 1)
	atomic.StoreInt32(&h.jobs.failCreate, 100)
	p := h.create(t, domain.ChainEthereum, domain.ChainBase, "100")
	tx := h.newTx(VerificationConfirmed)

	if _, err := h.svc.Process(context.Background(), h.processRequest(t, p.ID, tx)); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	h.svc.Wait()

	stored, _ := h.svc.Get(context.Background(), p.ID)
	if stored.Status != domain.StatusProcessing || stored.MessageHash == "" {
		t.Fatalf("Expected processing payment with its burn recorded, got %+v", stored)
	}
	if len(h.jobs.jobs) != 0 {
		t.Fatalf("Expected no attestation job, got %d", len(h.jobs.jobs))
	}

	atomic.StoreInt32(&h.jobs.failCreate, 0)
	if err := h.svc.Resume(context.Background()); err != nil {
		t.Fatalf("Resume returned error: %v", err)
	}

	waitFor(t, func() bool { return h.status(t, p.ID) == domain.StatusCompleted })
	if got := atomic.LoadInt32(&h.transfers.burns); got != 1 {
		t.Errorf("Expected exactly one burn, got %d", got)
	}
}

func TestProcess_BurnFailureFailsPayment(t *testing.T) {
	h := newHarness(t, 0)
	h.transfers.burnErr = transfer.ErrInsufficientBalance
	p := h.create(t, domain.ChainEthereum, domain.ChainPolygon, "10")
	tx := h.newTx(VerificationConfirmed)

	if _, err := h.svc.Process(context.Background(), h.processRequest(t, p.ID, tx)); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	h.svc.Wait()

	final, _ := h.svc.Get(context.Background(), p.ID)
	if final.Status != domain.StatusFailed {
		t.Fatalf("Expected failed, got %s", final.Status)
	}
	if !strings.HasPrefix(final.FailureReason, "cross-chain transfer failed: ") {
		t.Errorf("Unexpected failure reason %q", final.FailureReason)
	}
}

func TestProcess_Reverted(t *testing.T) {
	h := newHarness(t, 0)
	p := h.create(t, domain.ChainBase, domain.ChainBase, "10")
	tx := h.newTx(VerificationReverted)

	_, err := h.svc.Process(context.Background(), h.processRequest(t, p.ID, tx))
	if !errors.Is(err, domain.ErrTransactionReverted) {
		t.Fatalf("Expected ErrTransactionReverted, got %v", err)
	}
	if got := h.status(t, p.ID); got != domain.StatusFailed {
		t.Errorf("Expected failed, got %s", got)
	}
}

func TestProcess_NotFoundStaysPending(t *testing.T) {
	h := newHarness(t, 0)
	p := h.create(t, domain.ChainBase, domain.ChainBase, "10")
	tx := h.newTx(VerificationNotFound)

	_, err := h.svc.Process(context.Background(), h.processRequest(t, p.ID, tx))
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("Expected ErrTransactionNotFound, got %v", err)
	}
	if got := h.status(t, p.ID); got != domain.StatusPending {
		t.Errorf("Expected pending, got %s", got)
	}
}

func TestProcess_Twice(t *testing.T) {
	h := newHarness(t, 0)
	p := h.create(t, domain.ChainBase, domain.ChainBase, "10")
	tx := h.newTx(VerificationConfirmed)

	if _, err := h.svc.Process(context.Background(), h.processRequest(t, p.ID, tx)); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	_, err := h.svc.Process(context.Background(), h.processRequest(t, p.ID, tx))
	if !errors.Is(err, domain.ErrPaymentNotPending) {
		t.Errorf("Expected ErrPaymentNotPending, got %v", err)
	}
}

func TestProcess_ConcurrentSubmissionsBurnOnce(t *testing.T) {
	h := newHarness(t, 1)
	p := h.create(t, domain.ChainEthereum, domain.ChainBase, "10")
	tx := h.newTx(VerificationConfirmed)

	var wg sync.WaitGroup
	var wins, notPending int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.Process(context.Background(), h.processRequest(t, p.ID, tx))
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, domain.ErrPaymentNotPending):
				atomic.AddInt32(&notPending, 1)
			default:
				t.Errorf("Unexpected error %v", err)
			}
		}()
	}
	wg.Wait()
	h.svc.Wait()

	if wins != 1 || notPending != 4 {
		t.Errorf("Expected 1 winner and 4 rejections, got %d and %d", wins, notPending)
	}
	if got := atomic.LoadInt32(&h.transfers.burns); got != 1 {
		t.Errorf("Expected exactly one burn, got %d", got)
	}
}

func TestProcess_TransactionReuse(t *testing.T) {
	h := newHarness(t, 0)
	first := h.create(t, domain.ChainBase, domain.ChainBase, "10")
	second := h.create(t, domain.ChainBase, domain.ChainBase, "10")
	tx := h.newTx(VerificationConfirmed)

	if _, err := h.svc.Process(context.Background(), h.processRequest(t, first.ID, tx)); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	_, err := h.svc.Process(context.Background(), h.processRequest(t, second.ID, tx))
	if !errors.Is(err, domain.ErrTransactionAlreadyUsed) {
		t.Errorf("Expected ErrTransactionAlreadyUsed, got %v", err)
	}
	if got := h.status(t, second.ID); got != domain.StatusPending {
		t.Errorf("Expected second payment to stay pending, got %s", got)
	}
}

func TestProcess_BadSignature(t *testing.T) {
	h := newHarness(t, 0)
	p := h.create(t, domain.ChainBase, domain.ChainBase, "10")
	tx := h.newTx(VerificationConfirmed)

	req := h.processRequest(t, p.ID, tx)
	req.Signature = signTx(t, h.key, h.newTx(VerificationConfirmed))

	if _, err := h.svc.Process(context.Background(), req); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Errorf("Expected ErrInvalidSignature, got %v", err)
	}
	if got := atomic.LoadInt32(&h.verifier.calls); got != 0 {
		t.Errorf("Expected no chain lookups, got %d", got)
	}
}

func TestProcess_Busy(t *testing.T) {
	h := newHarness(t, 0)
	h.svc.locker = &fakeLocker{held: true}
	p := h.create(t, domain.ChainBase, domain.ChainBase, "10")
	tx := h.newTx(VerificationConfirmed)

	if _, err := h.svc.Process(context.Background(), h.processRequest(t, p.ID, tx)); !errors.Is(err, domain.ErrPaymentBusy) {
		t.Errorf("Expected ErrPaymentBusy, got %v", err)
	}
}

func TestProcess_ExpiredPayment(t *testing.T) {
	h := newHarness(t, 0)
	p := h.create(t, domain.ChainBase, domain.ChainBase, "10")
	h.svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	tx := h.newTx(VerificationConfirmed)

	_, err := h.svc.Process(context.Background(), h.processRequest(t, p.ID, tx))
	if !errors.Is(err, domain.ErrPaymentExpired) {
		t.Fatalf("Expected ErrPaymentExpired, got %v", err)
	}
	if got := h.status(t, p.ID); got != domain.StatusExpired {
		t.Errorf("Expected expired, got %s", got)
	}
	if sent := h.notifier.sent(); len(sent) != 0 {
		t.Errorf("Expected no webhook for expiry, got %v", sent)
	}
}

func TestExpireStalePayments(t *testing.T) {
	h := newHarness(t, 0)
	stale := h.create(t, domain.ChainBase, domain.ChainBase, "10")
	fresh := h.create(t, domain.ChainBase, domain.ChainBase, "10")

	old := time.Now().Add(-time.Minute)
	p, _ := h.payments.GetPayment(context.Background(), stale.ID)
	p.ExpiresAt = old
	h.payments.set(p)

	n, err := h.svc.ExpireStalePayments(context.Background())
	if err != nil {
		t.Fatalf("ExpireStalePayments returned error: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 expired payment, got %d", n)
	}
	if got := h.status(t, stale.ID); got != domain.StatusExpired {
		t.Errorf("Expected stale payment expired, got %s", got)
	}
	if got := h.status(t, fresh.ID); got != domain.StatusPending {
		t.Errorf("Expected fresh payment pending, got %s", got)
	}

	_, err = h.svc.Process(context.Background(), h.processRequest(t, stale.ID, h.newTx(VerificationConfirmed)))
	if !errors.Is(err, domain.ErrPaymentNotPending) {
		t.Errorf("Expected ErrPaymentNotPending, got %v", err)
	}
}

func TestOverrideStatus(t *testing.T) {
	h := newHarness(t, 1)
	p := h.create(t, domain.ChainEthereum, domain.ChainPolygon, "10")

	_, err := h.svc.OverrideStatus(context.Background(), OverrideStatusRequest{PaymentID: p.ID, Status: "completed"})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("Expected cross-chain pending to completed to be rejected, got %v", err)
	}

	_, err = h.svc.OverrideStatus(context.Background(), OverrideStatusRequest{PaymentID: p.ID, Status: "processing"})
	if !errors.Is(err, domain.ErrInvalidTransactionHash) {
		t.Errorf("Expected a transaction hash to be required, got %v", err)
	}

	updated, err := h.svc.OverrideStatus(context.Background(), OverrideStatusRequest{
		PaymentID:   p.ID,
		Status:      "processing",
		MessageHash: "0xknownburn",
		Reason:      "manual recovery",
	})
	if err != nil {
		t.Fatalf("OverrideStatus returned error: %v", err)
	}
	if updated.MessageHash != "0xknownburn" {
		t.Errorf("Expected message hash to be recorded, got %q", updated.MessageHash)
	}

	waitFor(t, func() bool { return h.status(t, p.ID) == domain.StatusCompleted })
	if got := atomic.LoadInt32(&h.transfers.burns); got != 0 {
		t.Errorf("Expected no burn for a known message, got %d", got)
	}

	events, _ := h.svc.ListEvents(context.Background(), merchantID, p.ID)
	if len(events) == 0 || events[0].Actor != domain.ActorAdmin {
		t.Errorf("Expected admin actor on override, got %+v", events)
	}

	if _, err := h.svc.OverrideStatus(context.Background(), OverrideStatusRequest{PaymentID: p.ID, Status: "bogus"}); !errors.Is(err, domain.ErrUnknownStatus) {
		t.Errorf("Expected ErrUnknownStatus, got %v", err)
	}
}

func TestOverrideStatus_SameChainRejectsSettlementFields(t *testing.T) {
	h := newHarness(t, 0)
	p := h.create(t, domain.ChainEthereum, domain.ChainEthereum, "10")

	_, err := h.svc.OverrideStatus(context.Background(), OverrideStatusRequest{
		PaymentID:       p.ID,
		Status:          "completed",
		MessageHash:     "0xabc",
		AttestationHash: "0xdeadbeef",
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}

	stored, _ := h.svc.Get(context.Background(), p.ID)
	if stored.Status != domain.StatusPending || stored.MessageHash != "" || stored.AttestationHash != "" {
		t.Errorf("Expected payment untouched, got %+v", stored)
	}

	updated, err := h.svc.OverrideStatus(context.Background(), OverrideStatusRequest{PaymentID: p.ID, Status: "completed"})
	if err != nil {
		t.Fatalf("OverrideStatus returned error: %v", err)
	}
	if updated.Status != domain.StatusCompleted || updated.AttestationHash != "" {
		t.Errorf("Unexpected payment %+v", updated)
	}
}

func TestListEvents_OtherMerchant(t *testing.T) {
	h := newHarness(t, 0)
	p := h.create(t, domain.ChainBase, domain.ChainBase, "10")

	if _, err := h.svc.ListEvents(context.Background(), 42, p.ID); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Errorf("Expected ErrPaymentNotFound, got %v", err)
	}
}

func TestList_ClampsLimit(t *testing.T) {
	h := newHarness(t, 0)
	for i := 0; i < 3; i++ {
		h.create(t, domain.ChainBase, domain.ChainBase, "1")
	}
	h.create(t, domain.ChainEthereum, domain.ChainPolygon, "1")

	all, err := h.svc.List(context.Background(), repository.ListFilter{MerchantID: merchantID, Limit: 500})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Expected 4 payments, got %d", len(all))
	}

	polygon := domain.ChainPolygon
	filtered, _ := h.svc.List(context.Background(), repository.ListFilter{MerchantID: merchantID, Chain: &polygon})
	if len(filtered) != 1 {
		t.Errorf("Expected 1 polygon payment, got %d", len(filtered))
	}
}

func TestResume(t *testing.T) {
	h := newHarness(t, 1)
	p := h.create(t, domain.ChainEthereum, domain.ChainBase, "10")

	stored, _ := h.payments.GetPayment(context.Background(), p.ID)
	stored.Status = domain.StatusProcessing
	stored.MessageHash = "0xresumed"
	h.payments.set(stored)
	h.jobs.jobs["0xresumed"] = &domain.AttestationJob{
		MessageHash: "0xresumed",
		PaymentID:   p.ID,
		Attempts:    10,
		MaxAttempts: 60,
		Status:      domain.JobPolling,
	}

	if err := h.svc.Resume(context.Background()); err != nil {
		t.Fatalf("Resume returned error: %v", err)
	}
	waitFor(t, func() bool { return h.status(t, p.ID) == domain.StatusCompleted })
}
