package service

import (
	"context"
	"errors"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/internal/payment/repository"
	"github.com/Swyp/Swyp-Backend/services/events"
	"github.com/Swyp/Swyp-Backend/services/monitoring/logging"
	"github.com/Swyp/Swyp-Backend/services/monitoring/metrics"
	"github.com/Swyp/Swyp-Backend/services/monitoring/telemetry"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// StateMachine is the only writer of payment status.
type StateMachine struct {
	payments  repository.PaymentRepository
	merchants repository.MerchantRepository
	publisher events.Publisher
	notifier  Notifier
	watcher   Watcher
	logger    *logging.Logger
}

// Transition moves current from its status to t.To. Side effects run only
// for the caller whose compare-and-swap won.
func (sm *StateMachine) Transition(ctx context.Context, current *domain.Payment, t domain.Transition) (*domain.Payment, error) {
	ctx, span := telemetry.Tracer("payment").Start(ctx, "payment.Transition")
	defer span.End()

	t.PaymentID = current.ID
	if t.From == "" {
		t.From = current.Status
	}
	span.SetAttributes(
		attribute.String("payment_id", t.PaymentID),
		attribute.String("from", t.From.String()),
		attribute.String("to", t.To.String()),
	)

	if err := domain.ValidateTransition(t.From, t.To, current.IsCrossChain()); err != nil {
		return nil, err
	}
	if err := t.ValidateFields(current.IsCrossChain()); err != nil {
		return nil, err
	}

	updated, err := sm.payments.TransitionStatus(ctx, t)
	if err != nil {
		if !errors.Is(err, domain.ErrStaleTransition) {
			span.RecordError(err)
		}
		return nil, err
	}

	log := sm.logger.WithFields(logrus.Fields{
		"payment_id": updated.ID,
		"from":       t.From,
		"to":         t.To,
		"actor":      t.Actor,
	})
	log.Info("payment status changed")

	metrics.RecordTransition(t.From.String(), t.To.String())

	if err := sm.publisher.PublishStatusChanged(ctx, updated, t.From); err != nil {
		log.WithError(err).Warn("failed to publish status change")
	}

	if updated.Status.IsTerminal() && updated.MessageHash != "" && sm.watcher != nil {
		if err := sm.watcher.Stop(ctx, updated.MessageHash); err != nil {
			log.WithError(err).Warn("failed to stop attestation monitor")
		}
	}

	if event, ok := domain.WebhookEventFor(updated); ok && sm.notifier != nil {
		merchant, err := sm.merchants.GetMerchant(ctx, updated.MerchantID)
		if err != nil {
			log.WithError(err).Error("failed to load merchant for webhook")
		} else {
			sm.notifier.DispatchAsync(merchant, updated, event)
		}
	}

	return updated, nil
}
