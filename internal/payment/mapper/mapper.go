package mapper

import (
	"database/sql"
	"encoding/json"

	db "github.com/Swyp/Swyp-Backend/db/sqlc"
	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/shopspring/decimal"
	"github.com/sqlc-dev/pqtype"
)

func ToPayment(rhs *db.Payment) (*domain.Payment, error) {
	amount, err := decimal.NewFromString(rhs.Amount)
	if err != nil {
		return nil, err
	}
	fee, err := decimal.NewFromString(rhs.FeeAmount)
	if err != nil {
		return nil, err
	}
	net, err := decimal.NewFromString(rhs.NetAmount)
	if err != nil {
		return nil, err
	}

	p := &domain.Payment{
		ID:                rhs.ID,
		MerchantID:        rhs.MerchantID,
		Amount:            amount,
		Currency:          rhs.Currency,
		SourceChain:       domain.Chain(rhs.SourceChain),
		DestinationChain:  domain.Chain(rhs.DestinationChain),
		Recipient:         rhs.Recipient,
		Description:       rhs.Description.String,
		FeeAmount:         fee,
		NetAmount:         net,
		Status:            domain.PaymentStatus(rhs.Status),
		SenderAddress:     rhs.SenderAddress.String,
		SourceTxHash:      rhs.SourceTxHash.String,
		MessageHash:       rhs.MessageHash.String,
		AttestationHash:   rhs.AttestationHash.String,
		DestinationTxHash: rhs.DestinationTxHash.String,
		FailureReason:     rhs.FailureReason.String,
		CreatedAt:         rhs.CreatedAt,
		UpdatedAt:         rhs.UpdatedAt,
		ExpiresAt:         rhs.ExpiresAt,
	}

	if rhs.CompletedAt.Valid {
		completed := rhs.CompletedAt.Time
		p.CompletedAt = &completed
	}

	if rhs.Metadata.Valid && len(rhs.Metadata.RawMessage) > 0 {
		if err := json.Unmarshal(rhs.Metadata.RawMessage, &p.Metadata); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func ToPayments(rows []db.Payment) ([]*domain.Payment, error) {
	payments := make([]*domain.Payment, 0, len(rows))
	for i := range rows {
		p, err := ToPayment(&rows[i])
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func ToCreatePaymentParams(p *domain.Payment) (db.CreatePaymentParams, error) {
	metadata, err := ToNullRawMessage(p.Metadata)
	if err != nil {
		return db.CreatePaymentParams{}, err
	}

	return db.CreatePaymentParams{
		ID:               p.ID,
		MerchantID:       p.MerchantID,
		Amount:           p.Amount.StringFixed(domain.USDCDecimals),
		Currency:         p.Currency,
		SourceChain:      p.SourceChain.String(),
		DestinationChain: p.DestinationChain.String(),
		Recipient:        p.Recipient,
		Description:      ToNullString(p.Description),
		Metadata:         metadata,
		FeeAmount:        p.FeeAmount.StringFixed(domain.USDCDecimals),
		NetAmount:        p.NetAmount.StringFixed(domain.USDCDecimals),
		CreatedAt:        p.CreatedAt,
		ExpiresAt:        p.ExpiresAt,
	}, nil
}

func ToTransitionParams(t domain.Transition) db.TransitionPaymentStatusParams {
	return db.TransitionPaymentStatusParams{
		ToStatus:          t.To.String(),
		SenderAddress:     ToNullString(t.SenderAddress),
		SourceTxHash:      ToNullString(t.SourceTxHash),
		MessageHash:       ToNullString(t.MessageHash),
		AttestationHash:   ToNullString(t.AttestationHash),
		DestinationTxHash: ToNullString(t.DestinationTxHash),
		FailureReason:     ToNullString(t.FailureReason),
		ID:                t.PaymentID,
		FromStatus:        t.From.String(),
	}
}

func ToMerchant(rhs *db.Merchant) (*domain.Merchant, error) {
	m := &domain.Merchant{
		ID:            rhs.ID,
		BusinessName:  rhs.BusinessName,
		WalletAddress: rhs.WalletAddress,
		Status:        domain.MerchantStatus(rhs.Status),
		WebhookURL:    rhs.WebhookUrl.String,
		WebhookSecret: rhs.WebhookSecret.String,
	}

	var err error
	if m.Fees.ProcessingFeePct, err = toDecimalPtr(rhs.ProcessingFeePct); err != nil {
		return nil, err
	}
	if m.Fees.FixedFee, err = toDecimalPtr(rhs.FixedFee); err != nil {
		return nil, err
	}
	if m.Limits.SingleTransactionLimit, err = toDecimalPtr(rhs.SingleTransactionLimit); err != nil {
		return nil, err
	}
	if m.Limits.DailyLimit, err = toDecimalPtr(rhs.DailyLimit); err != nil {
		return nil, err
	}

	return m, nil
}

func ToStatusEvent(rhs *db.PaymentStatusEvent) domain.StatusEvent {
	ev := domain.StatusEvent{
		ID:         rhs.ID,
		PaymentID:  rhs.PaymentID,
		FromStatus: domain.PaymentStatus(rhs.FromStatus),
		ToStatus:   domain.PaymentStatus(rhs.ToStatus),
		Reason:     rhs.Reason.String,
		Actor:      rhs.Actor,
		CreatedAt:  rhs.CreatedAt,
	}
	if rhs.IpAddress.Valid {
		ev.IPAddress = rhs.IpAddress.IPNet.IP.String()
	}
	return ev
}

func ToAttestationJob(rhs *db.AttestationJob) *domain.AttestationJob {
	return &domain.AttestationJob{
		MessageHash: rhs.MessageHash,
		PaymentID:   rhs.PaymentID,
		Message:     rhs.Message,
		Attempts:    int(rhs.Attempts),
		MaxAttempts: int(rhs.MaxAttempts),
		Status:      domain.AttestationJobStatus(rhs.Status),
		LastError:   rhs.LastError.String,
		NextPollAt:  rhs.NextPollAt,
	}
}

func ToNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func ToNullRawMessage(metadata map[string]string) (pqtype.NullRawMessage, error) {
	if len(metadata) == 0 {
		return pqtype.NullRawMessage{}, nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return pqtype.NullRawMessage{}, err
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}

func toDecimalPtr(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
