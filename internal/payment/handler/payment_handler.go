package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/Swyp/Swyp-Backend/api/apistrings"
	apierrors "github.com/Swyp/Swyp-Backend/api/errors"
	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/internal/payment/repository"
	"github.com/Swyp/Swyp-Backend/internal/payment/service"
	"github.com/Swyp/Swyp-Backend/middleware"
	"github.com/Swyp/Swyp-Backend/models"
	"github.com/Swyp/Swyp-Backend/services/monitoring/logging"
	"github.com/Swyp/Swyp-Backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PaymentService is the part of service.PaymentService the HTTP layer uses.
type PaymentService interface {
	Create(ctx context.Context, req service.CreatePaymentRequest) (*domain.Payment, error)
	Process(ctx context.Context, req service.ProcessPaymentRequest) (*domain.Payment, error)
	Get(ctx context.Context, id string) (*domain.Payment, error)
	List(ctx context.Context, filter repository.ListFilter) ([]*domain.Payment, error)
	ListEvents(ctx context.Context, merchantID int64, paymentID string) ([]domain.StatusEvent, error)
	OverrideStatus(ctx context.Context, req service.OverrideStatusRequest) (*domain.Payment, error)
	PaymentURL(id string) string
}

type PaymentDependencies struct {
	Router       *gin.Engine
	Logger       *logging.Logger
	Service      PaymentService
	Tokens       *utils.JWTToken
	AdminKeyHash string
}

type PaymentHandler struct {
	router       *gin.Engine
	logger       *logging.Logger
	service      PaymentService
	tokens       *utils.JWTToken
	adminKeyHash string
}

func NewPaymentHandler(d *PaymentDependencies) *PaymentHandler {
	RegisterValidators()

	return &PaymentHandler{
		router:       d.Router,
		logger:       d.Logger,
		service:      d.Service,
		tokens:       d.Tokens,
		adminKeyHash: d.AdminKeyHash,
	}
}

func (h *PaymentHandler) RegisterRoutes() {
	authenticated := middleware.AuthenticatedMiddleware(h.tokens)

	serverGroupV1 := h.router.Group("/payments")
	serverGroupV1.POST("", authenticated, h.createPayment)
	serverGroupV1.GET("", authenticated, h.listPayments)
	serverGroupV1.GET("/:id", h.getPayment)
	serverGroupV1.POST("/:id/process", h.processPayment)
	serverGroupV1.GET("/:id/events", authenticated, h.listPaymentEvents)
	serverGroupV1.PUT("/:id/status", middleware.AdminKeyMiddleware(h.adminKeyHash), h.overrideStatus)
}

func (h *PaymentHandler) createPayment(ctx *gin.Context) {
	merchant, err := utils.GetActiveMerchant(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, models.NewError(apistrings.Unauthorized))
		return
	}

	var request CreatePaymentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewError(apistrings.InvalidPaymentInput, err.Error()))
		return
	}

	// usdc_amount already guarantees this parses
	amount, _ := decimal.NewFromString(request.Amount)

	p, err := h.service.Create(ctx, service.CreatePaymentRequest{
		MerchantID:       merchant.MerchantID,
		Amount:           amount,
		Currency:         request.Currency,
		SourceChain:      request.SourceChain,
		DestinationChain: request.DestinationChain,
		Recipient:        request.Recipient,
		Description:      request.Description,
		Metadata:         request.Metadata,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, models.NewSuccess(apistrings.PaymentCreated, ToCreatePaymentResponse(p, h.service.PaymentURL(p.ID))))
}

func (h *PaymentHandler) processPayment(ctx *gin.Context) {
	var request ProcessPaymentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewError(apistrings.InvalidProcessInput, err.Error()))
		return
	}

	p, err := h.service.Process(ctx, service.ProcessPaymentRequest{
		PaymentID:       ctx.Param("id"),
		SenderAddress:   request.SenderAddress,
		TransactionHash: request.TransactionHash,
		Signature:       request.Signature,
		IPAddress:       ctx.ClientIP(),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, models.NewSuccess(apistrings.PaymentProcessed, ProcessPaymentResponse{
		PaymentID:       p.ID,
		Status:          p.Status.String(),
		TransactionHash: p.SourceTxHash,
	}))
}

func (h *PaymentHandler) getPayment(ctx *gin.Context) {
	p, err := h.service.Get(ctx, ctx.Param("id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, models.NewSuccess(apistrings.PaymentFetched, ToPaymentResponse(p)))
}

func (h *PaymentHandler) listPayments(ctx *gin.Context) {
	merchant, err := utils.GetActiveMerchant(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, models.NewError(apistrings.Unauthorized))
		return
	}

	var query ListPaymentsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewError(apistrings.InvalidListQuery, err.Error()))
		return
	}

	filter := repository.ListFilter{
		MerchantID: merchant.MerchantID,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}
	if query.Status != "" {
		status, _ := domain.ParseStatus(query.Status)
		filter.Status = &status
	}
	if query.Chain != "" {
		chain, _ := domain.ParseChain(query.Chain)
		filter.Chain = &chain
	}

	payments, err := h.service.List(ctx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, models.NewSuccess(apistrings.PaymentsFetched, ToPaymentCollectionResponse(payments)))
}

func (h *PaymentHandler) listPaymentEvents(ctx *gin.Context) {
	merchant, err := utils.GetActiveMerchant(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, models.NewError(apistrings.Unauthorized))
		return
	}

	events, err := h.service.ListEvents(ctx, merchant.MerchantID, ctx.Param("id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, models.NewSuccess(apistrings.EventsFetched, ToStatusEventCollectionResponse(events)))
}

func (h *PaymentHandler) overrideStatus(ctx *gin.Context) {
	var request OverrideStatusRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewError(apistrings.InvalidStatusInput, err.Error()))
		return
	}

	p, err := h.service.OverrideStatus(ctx, service.OverrideStatusRequest{
		PaymentID:       ctx.Param("id"),
		Status:          request.Status,
		TransactionHash: request.TransactionHash,
		MessageHash:     request.MessageHash,
		AttestationHash: request.AttestationHash,
		FailureReason:   request.FailureReason,
		Reason:          request.Reason,
		IPAddress:       ctx.ClientIP(),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"status":     p.Status,
		"ip":         ctx.ClientIP(),
	}).Warn("payment status overridden by operator")

	ctx.JSON(http.StatusOK, models.NewSuccess(apistrings.StatusUpdated, ToPaymentResponse(p)))
}

type errorMapping struct {
	err     error
	status  int
	code    int
	message string
}

// errorMappings is checked in order. ErrPaymentNotPending must precede
// ErrStaleTransition since a lost pending race carries both.
var errorMappings = []errorMapping{
	{domain.ErrPaymentNotFound, http.StatusNotFound, 0, apistrings.PaymentNotFound},
	{domain.ErrMerchantNotFound, http.StatusNotFound, 0, apistrings.MerchantNotFound},
	{domain.ErrMerchantInactive, http.StatusForbidden, apierrors.MerchantInactive, apistrings.MerchantInactive},
	{domain.ErrPaymentNotPending, http.StatusBadRequest, apierrors.PaymentNotPending, apistrings.PaymentNotPending},
	{domain.ErrPaymentExpired, http.StatusBadRequest, apierrors.PaymentExpired, apistrings.PaymentExpired},
	{domain.ErrPaymentBusy, http.StatusBadRequest, apierrors.PaymentBusy, apistrings.PaymentBusy},
	{domain.ErrStaleTransition, http.StatusConflict, apierrors.StaleTransition, apistrings.StaleTransition},
	{domain.ErrInvalidTransition, http.StatusBadRequest, apierrors.InvalidTransition, apistrings.InvalidTransition},
	{domain.ErrUnknownStatus, http.StatusBadRequest, apierrors.InvalidTransition, apistrings.UnknownStatus},
	{domain.ErrTransactionNotFound, http.StatusBadRequest, apierrors.TransactionNotFound, apistrings.TransactionNotFound},
	{domain.ErrTransactionReverted, http.StatusBadRequest, apierrors.TransactionReverted, apistrings.TransactionReverted},
	{domain.ErrTransactionAlreadyUsed, http.StatusBadRequest, apierrors.TransactionAlreadyUsed, apistrings.TransactionUsed},
	{domain.ErrInvalidSignature, http.StatusBadRequest, apierrors.InvalidSignature, apistrings.InvalidSignature},
	{domain.ErrInvalidTransactionHash, http.StatusBadRequest, apierrors.PaymentValidationFailed, apistrings.InvalidTransactionHash},
	{domain.ErrVerificationFailed, http.StatusBadGateway, apierrors.VerificationUnavailable, apistrings.VerificationFailed},
	{domain.ErrInvalidAmount, http.StatusBadRequest, apierrors.PaymentValidationFailed, apistrings.InvalidAmount},
	{domain.ErrInvalidCurrency, http.StatusBadRequest, apierrors.PaymentValidationFailed, apistrings.CurrencyNotSupported},
	{domain.ErrUnsupportedChain, http.StatusBadRequest, apierrors.PaymentValidationFailed, apistrings.ChainNotSupported},
	{domain.ErrInvalidAddress, http.StatusBadRequest, apierrors.PaymentValidationFailed, apistrings.InvalidAddress},
	{domain.ErrFeeExceedsAmount, http.StatusBadRequest, apierrors.PaymentValidationFailed, apistrings.FeeExceedsAmount},
}

func (h *PaymentHandler) respondError(ctx *gin.Context, err error) {
	var limitErr *domain.LimitError
	if errors.As(err, &limitErr) {
		ctx.JSON(http.StatusBadRequest, models.NewCodedError(apierrors.PaymentLimitExceeded, limitErr.Error()))
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			resp := models.NewError(m.message, err.Error())
			resp.Code = m.code
			ctx.JSON(m.status, resp)
			return
		}
	}

	h.logger.WithError(err).WithField("path", ctx.FullPath()).Error("unhandled payment error")
	ctx.JSON(http.StatusInternalServerError, models.NewError(apistrings.ServerError))
}
