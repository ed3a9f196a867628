package repository

import (
	"context"
	"database/sql"

	db "github.com/Swyp/Swyp-Backend/db/sqlc"
	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/internal/payment/mapper"
	"github.com/google/uuid"
)

type SQLWebhookDeliveryRepository struct {
	queries *db.Queries
}

func NewSQLWebhookDeliveryRepository(queries *db.Queries) *SQLWebhookDeliveryRepository {
	return &SQLWebhookDeliveryRepository{queries: queries}
}

func (r *SQLWebhookDeliveryRepository) RecordDelivery(ctx context.Context, d *domain.WebhookDelivery) error {
	status := "failed"
	if d.Delivered {
		status = "delivered"
	}

	_, err := r.queries.CreateWebhookDelivery(ctx, db.CreateWebhookDeliveryParams{
		ID:         uuid.New(),
		PaymentID:  d.PaymentID,
		MerchantID: d.MerchantID,
		Event:      d.Event,
		Url:        d.URL,
		Payload:    d.Payload,
		HttpStatus: sql.NullInt32{Int32: int32(d.HTTPStatus), Valid: d.HTTPStatus != 0},
		Status:     status,
		Error:      mapper.ToNullString(d.Error),
	})
	return err
}
