package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/internal/payment/repository"
	"github.com/Swyp/Swyp-Backend/models"
	"github.com/Swyp/Swyp-Backend/providers"
	"github.com/Swyp/Swyp-Backend/services/monitoring/logging"
	"github.com/Swyp/Swyp-Backend/services/monitoring/metrics"
	"github.com/sirupsen/logrus"
)

const (
	SignatureHeader = "X-Signature"
	UserAgent       = "Swyp-Webhook/1.0"
)

type Payload struct {
	Event             string     `json:"event"`
	Timestamp         time.Time  `json:"timestamp"`
	MerchantID        models.ID  `json:"merchantId"`
	PaymentID         string     `json:"paymentId"`
	Status            string     `json:"status"`
	Amount            string     `json:"amount"`
	Currency          string     `json:"currency"`
	SourceChain       string     `json:"sourceChain"`
	DestinationChain  string     `json:"destinationChain"`
	TransactionHash   string     `json:"transactionHash,omitempty"`
	SourceTxHash      string     `json:"sourceTxHash,omitempty"`
	DestinationTxHash string     `json:"destinationTxHash,omitempty"`
	MessageHash       string     `json:"messageHash,omitempty"`
	AttestationHash   string     `json:"attestationHash,omitempty"`
	FailureReason     string     `json:"failureReason,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

func NewPayload(event string, p *domain.Payment, now time.Time) Payload {
	return Payload{
		Event:             event,
		Timestamp:         now.UTC(),
		MerchantID:        models.ID(p.MerchantID),
		PaymentID:         p.ID,
		Status:            p.Status.String(),
		Amount:            p.Amount.StringFixed(domain.USDCDecimals),
		Currency:          p.Currency,
		SourceChain:       p.SourceChain.String(),
		DestinationChain:  p.DestinationChain.String(),
		TransactionHash:   p.SourceTxHash,
		SourceTxHash:      p.SourceTxHash,
		DestinationTxHash: p.DestinationTxHash,
		MessageHash:       p.MessageHash,
		AttestationHash:   p.AttestationHash,
		FailureReason:     p.FailureReason,
		CompletedAt:       p.CompletedAt,
	}
}

// Sign returns the X-Signature value of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature header in constant time.
func Verify(secret string, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}

// Dispatcher delivers one attempt per event. Deliveries that fail are kept
// in the delivery log for inspection and are not retried.
type Dispatcher struct {
	providers.BaseProvider
	deliveries repository.WebhookDeliveryRepository
	logger     *logging.Logger
	now        func() time.Time
	wg         sync.WaitGroup
}

func NewDispatcher(deliveries repository.WebhookDeliveryRepository, timeout time.Duration, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		BaseProvider: providers.BaseProvider{
			Name:   providers.Webhook,
			Client: &http.Client{Timeout: timeout},
			Logger: logger,
		},
		deliveries: deliveries,
		logger:     logger,
		now:        time.Now,
	}
}

// Dispatch posts event for p to the merchant's webhook url. A merchant without
// a url is skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, merchant *domain.Merchant, p *domain.Payment, event string) error {
	if merchant == nil || merchant.WebhookURL == "" {
		return nil
	}

	body, err := json.Marshal(NewPayload(event, p, d.now()))
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	delivery := &domain.WebhookDelivery{
		PaymentID:  p.ID,
		MerchantID: merchant.ID,
		Event:      event,
		URL:        merchant.WebhookURL,
		Payload:    body,
	}

	sendErr := d.post(ctx, merchant, body, delivery)
	outcome := "delivered"
	if sendErr != nil {
		outcome = "failed"
		delivery.Error = sendErr.Error()
	}
	delivery.Delivered = sendErr == nil
	metrics.RecordWebhookDelivery(outcome)

	log := d.logger.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"event":      event,
		"status":     delivery.HTTPStatus,
	})
	if sendErr != nil {
		log.WithError(sendErr).Warn("webhook delivery failed")
	} else {
		log.Info("webhook delivered")
	}

	if err := d.deliveries.RecordDelivery(ctx, delivery); err != nil {
		log.WithError(err).Error("failed to record webhook delivery")
	}
	return sendErr
}

func (d *Dispatcher) post(ctx context.Context, merchant *domain.Merchant, body []byte, delivery *domain.WebhookDelivery) error {
	headers := map[string]string{"User-Agent": UserAgent}
	if merchant.WebhookSecret != "" {
		headers[SignatureHeader] = Sign(merchant.WebhookSecret, body)
	}

	resp, err := d.MakeRequest(ctx, http.MethodPost, merchant.WebhookURL, body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	delivery.HTTPStatus = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// DispatchAsync delivers in the background, detached from the caller's context.
func (d *Dispatcher) DispatchAsync(merchant *domain.Merchant, p *domain.Payment, event string) {
	if merchant == nil || merchant.WebhookURL == "" {
		return
	}
	snapshot := *p
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.Dispatch(context.Background(), merchant, &snapshot, event)
	}()
}

// Wait blocks until background deliveries have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
