package domain

import "fmt"

// Transition is a requested compare-and-swap on a payment's status. Hash and
// address fields are set-once: an already populated column is never overwritten.
type Transition struct {
	PaymentID         string
	From              PaymentStatus
	To                PaymentStatus
	SenderAddress     string
	SourceTxHash      string
	MessageHash       string
	AttestationHash   string
	DestinationTxHash string
	FailureReason     string
	Reason            string
	Actor             string
	IPAddress         string
}

// ValidateFields rejects burn and mint fields on a same-chain payment.
func (t Transition) ValidateFields(crossChain bool) error {
	if crossChain {
		return nil
	}
	if t.MessageHash != "" || t.AttestationHash != "" || t.DestinationTxHash != "" {
		return fmt.Errorf("%w: same-chain payment cannot carry cross-chain settlement fields", ErrInvalidTransition)
	}
	return nil
}

// Webhook event names.
const (
	EventPaymentProcessing = "payment.processing"
	EventPaymentCompleted  = "payment.completed"
	EventPaymentFailed     = "payment.failed"
)

// WebhookEventFor returns the merchant-facing event for a status, if any.
func WebhookEventFor(p *Payment) (string, bool) {
	switch p.Status {
	case StatusCompleted:
		return EventPaymentCompleted, true
	case StatusFailed:
		return EventPaymentFailed, true
	case StatusProcessing:
		return EventPaymentProcessing, p.IsCrossChain()
	}
	return "", false
}
