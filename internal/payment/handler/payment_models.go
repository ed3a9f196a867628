package payment

import (
	"time"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/models"
)

type CreatePaymentRequest struct {
	Amount           string            `json:"amount" binding:"required,usdc_amount"`
	Currency         string            `json:"currency"`
	SourceChain      string            `json:"sourceChain" binding:"required,chain"`
	DestinationChain string            `json:"destinationChain" binding:"required,chain"`
	Recipient        string            `json:"recipient" binding:"required,eth_addr"`
	Description      string            `json:"description" binding:"max=500"`
	Metadata         map[string]string `json:"metadata"`
}

type ProcessPaymentRequest struct {
	SenderAddress   string `json:"senderAddress" binding:"required,eth_addr"`
	TransactionHash string `json:"transactionHash" binding:"required"`
	Signature       string `json:"signature" binding:"required"`
}

type ListPaymentsQuery struct {
	Status string `form:"status" binding:"omitempty,payment_status"`
	Chain  string `form:"chain" binding:"omitempty,chain"`
	Limit  int    `form:"limit" binding:"omitempty,min=1"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

type OverrideStatusRequest struct {
	Status          string `json:"status" binding:"required"`
	TransactionHash string `json:"transactionHash"`
	MessageHash     string `json:"messageHash"`
	AttestationHash string `json:"attestationHash"`
	FailureReason   string `json:"failureReason"`
	Reason          string `json:"reason"`
}

type CreatePaymentResponse struct {
	PaymentID  string    `json:"paymentId"`
	FeeAmount  string    `json:"feeAmount"`
	NetAmount  string    `json:"netAmount"`
	PaymentURL string    `json:"paymentUrl"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Status     string    `json:"status"`
}

type ProcessPaymentResponse struct {
	PaymentID       string `json:"paymentId"`
	Status          string `json:"status"`
	TransactionHash string `json:"transactionHash"`
}

type PaymentResponse struct {
	PaymentID         string            `json:"paymentId"`
	MerchantID        models.ID         `json:"merchantId"`
	Amount            string            `json:"amount"`
	Currency          string            `json:"currency"`
	SourceChain       string            `json:"sourceChain"`
	DestinationChain  string            `json:"destinationChain"`
	Recipient         string            `json:"recipient"`
	Description       string            `json:"description,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	FeeAmount         string            `json:"feeAmount"`
	NetAmount         string            `json:"netAmount"`
	Status            string            `json:"status"`
	SenderAddress     string            `json:"senderAddress,omitempty"`
	TransactionHash   string            `json:"transactionHash,omitempty"`
	MessageHash       string            `json:"messageHash,omitempty"`
	AttestationHash   string            `json:"attestationHash,omitempty"`
	DestinationTxHash string            `json:"destinationTxHash,omitempty"`
	FailureReason     string            `json:"failureReason,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	ExpiresAt         time.Time         `json:"expiresAt"`
	CompletedAt       *time.Time        `json:"completedAt,omitempty"`
}

type StatusEventResponse struct {
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	Reason     string    `json:"reason,omitempty"`
	Actor      string    `json:"actor"`
	CreatedAt  time.Time `json:"createdAt"`
}

func ToCreatePaymentResponse(p *domain.Payment, paymentURL string) CreatePaymentResponse {
	return CreatePaymentResponse{
		PaymentID:  p.ID,
		FeeAmount:  p.FeeAmount.StringFixed(domain.USDCDecimals),
		NetAmount:  p.NetAmount.StringFixed(domain.USDCDecimals),
		PaymentURL: paymentURL,
		ExpiresAt:  p.ExpiresAt,
		Status:     p.Status.String(),
	}
}

func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:         p.ID,
		MerchantID:        models.ID(p.MerchantID),
		Amount:            p.Amount.StringFixed(domain.USDCDecimals),
		Currency:          p.Currency,
		SourceChain:       p.SourceChain.String(),
		DestinationChain:  p.DestinationChain.String(),
		Recipient:         p.Recipient,
		Description:       p.Description,
		Metadata:          p.Metadata,
		FeeAmount:         p.FeeAmount.StringFixed(domain.USDCDecimals),
		NetAmount:         p.NetAmount.StringFixed(domain.USDCDecimals),
		Status:            p.Status.String(),
		SenderAddress:     p.SenderAddress,
		TransactionHash:   p.SourceTxHash,
		MessageHash:       p.MessageHash,
		AttestationHash:   p.AttestationHash,
		DestinationTxHash: p.DestinationTxHash,
		FailureReason:     p.FailureReason,
		CreatedAt:         p.CreatedAt,
		ExpiresAt:         p.ExpiresAt,
		CompletedAt:       p.CompletedAt,
	}
}

func ToPaymentCollectionResponse(payments []*domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, ToPaymentResponse(p))
	}
	return out
}

func ToStatusEventCollectionResponse(events []domain.StatusEvent) []StatusEventResponse {
	out := make([]StatusEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, StatusEventResponse{
			FromStatus: e.FromStatus.String(),
			ToStatus:   e.ToStatus.String(),
			Reason:     e.Reason,
			Actor:      e.Actor,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
