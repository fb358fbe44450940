package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/text/currency"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/pkg/httputil"
	"github.com/utafrali/EcommerceGo/pkg/logger"
	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/payment/internal/domain"
	"github.com/utafrali/EcommerceGo/services/payment/internal/service"
)

// PaymentHandler handles HTTP requests for connector payment endpoints.
type PaymentHandler struct {
	service *service.PaymentService
	logger  *slog.Logger
}

// NewPaymentHandler creates a new payment HTTP handler.
func NewPaymentHandler(svc *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// PaymentMethodRequest is a tagged payment method: Type names the variant and
// exactly that variant's object must be present.
type PaymentMethodRequest struct {
	Type         string               `json:"type" validate:"required,oneof=card wallet bank_transfer pay_later"`
	Card         *domain.Card         `json:"card,omitempty" validate:"required_if=Type card"`
	Wallet       *domain.Wallet       `json:"wallet,omitempty" validate:"required_if=Type wallet"`
	BankTransfer *domain.BankTransfer `json:"bank_transfer,omitempty" validate:"required_if=Type bank_transfer"`
	PayLater     *domain.PayLater     `json:"pay_later,omitempty" validate:"required_if=Type pay_later"`
}

// AuthorizePaymentRequest is the JSON request body for authorizing a payment.
type AuthorizePaymentRequest struct {
	PaymentID     string               `json:"payment_id" validate:"omitempty,uuid"`
	AttemptID     string               `json:"attempt_id" validate:"omitempty,uuid"`
	Amount        int64                `json:"amount" validate:"required,gt=0"`
	Currency      string               `json:"currency" validate:"required,iso4217"`
	Description   *string              `json:"description,omitempty" validate:"omitempty,max=255"`
	PaymentMethod PaymentMethodRequest `json:"payment_method"`
	Billing       *domain.Address      `json:"billing,omitempty"`
	Shipping      *domain.Address      `json:"shipping,omitempty"`
}

// RefundRequest is the JSON request body for refunding a payment.
type RefundRequest struct {
	PaymentID              string  `json:"payment_id" validate:"required"`
	RefundID               string  `json:"refund_id" validate:"omitempty,uuid"`
	ConnectorTransactionID string  `json:"connector_transaction_id" validate:"required"`
	Amount                 int64   `json:"amount" validate:"required,gt=0"`
	RefundAmount           int64   `json:"refund_amount" validate:"required,gt=0,ltefield=Amount"`
	Currency               string  `json:"currency" validate:"required,iso4217"`
	Reason                 *string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

// --- Response DTOs ---

// PaymentAttemptResponse is the JSON representation of an authorize outcome.
type PaymentAttemptResponse struct {
	PaymentID              string                `json:"payment_id"`
	AttemptID              string                `json:"attempt_id"`
	MerchantID             string                `json:"merchant_id,omitempty"`
	Connector              string                `json:"connector"`
	Status                 domain.AttemptStatus  `json:"status"`
	Amount                 int64                 `json:"amount"`
	AmountCaptured         *int64                `json:"amount_captured,omitempty"`
	Currency               string                `json:"currency"`
	ConnectorTransactionID string                `json:"connector_transaction_id,omitempty"`
	Redirect               bool                  `json:"redirect"`
	RedirectionData        *domain.RedirectForm  `json:"redirection_data,omitempty"`
	Error                  *domain.ErrorResponse `json:"error,omitempty"`
}

// RefundResponse is the JSON representation of a refund outcome.
type RefundResponse struct {
	RefundID          string              `json:"refund_id"`
	PaymentID         string              `json:"payment_id"`
	Connector         string              `json:"connector"`
	ConnectorRefundID string              `json:"connector_refund_id,omitempty"`
	RefundStatus      domain.RefundStatus `json:"refund_status,omitempty"`
	RefundAmount      int64               `json:"refund_amount"`
	Currency          string              `json:"currency"`
}

// --- Handlers ---

// AuthorizePayment handles POST /api/v1/connectors/{connector}/payments/authorize
// @Summary Authorize a payment through a connector
// @Description Sends the payment to the named connector and returns the attempt outcome.
// @Tags payments
// @Accept json
// @Produce json
// @Param connector path string true "Connector name"
// @Param request body AuthorizePaymentRequest true "Payment data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/connectors/{connector}/payments/authorize [post]
func (h *PaymentHandler) AuthorizePayment(w http.ResponseWriter, r *http.Request) {
	var req AuthorizePaymentRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	rd, err := req.routerData(logger.MerchantIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	out, err := h.service.AuthorizePayment(r.Context(), chi.URLParam(r, "connector"), rd)
	if err != nil {
		if out != nil {
			writeAttemptError(w, r, out, err)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toAttemptResponse(out)})
}

// Refund handles POST /api/v1/connectors/{connector}/refunds
// @Summary Refund a payment through a connector
// @Tags refunds
// @Accept json
// @Produce json
// @Param connector path string true "Connector name"
// @Param request body RefundRequest true "Refund data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 501 {object} map[string]interface{}
// @Router /api/v1/connectors/{connector}/refunds [post]
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req RefundRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	rd, err := req.routerData(logger.MerchantIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	out, err := h.service.RefundPayment(r.Context(), chi.URLParam(r, "connector"), rd)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toRefundResponse(out)})
}

// GetRefund handles GET /api/v1/connectors/{connector}/refunds/{refundId}
// @Summary Sync a refund's state from a connector
// @Tags refunds
// @Produce json
// @Param connector path string true "Connector name"
// @Param refundId path string true "Refund ID"
// @Param payment_id query string false "Payment ID"
// @Param connector_refund_id query string false "Connector refund ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 501 {object} map[string]interface{}
// @Router /api/v1/connectors/{connector}/refunds/{refundId} [get]
func (h *PaymentHandler) GetRefund(w http.ResponseWriter, r *http.Request) {
	refundID := chi.URLParam(r, "refundId")
	if strings.TrimSpace(refundID) == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("refund id is required"), h.logger)
		return
	}

	q := r.URL.Query()
	rd := &domain.RefundsRouterData{
		MerchantID: logger.MerchantIDFromContext(r.Context()),
		PaymentID:  q.Get("payment_id"),
		Request: domain.RefundsData{
			RefundID:               refundID,
			ConnectorTransactionID: q.Get("connector_transaction_id"),
		},
	}
	if id := q.Get("connector_refund_id"); id != "" {
		rd.Request.ConnectorRefundID = &id
	}

	out, err := h.service.SyncRefund(r.Context(), chi.URLParam(r, "connector"), rd)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toRefundResponse(out)})
}

// ListConnectors handles GET /api/v1/connectors
// @Summary List configured connectors
// @Tags connectors
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/connectors [get]
func (h *PaymentHandler) ListConnectors(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.service.Connectors()})
}

// --- Mapping ---

func (req *AuthorizePaymentRequest) routerData(merchantID string) (*domain.PaymentsAuthorizeRouterData, error) {
	unit, err := currency.ParseISO(req.Currency)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported currency %q", req.Currency))
	}

	pm, err := req.PaymentMethod.toDomain()
	if err != nil {
		return nil, err
	}

	return &domain.PaymentsAuthorizeRouterData{
		MerchantID:  merchantID,
		PaymentID:   idOrNew(req.PaymentID),
		AttemptID:   idOrNew(req.AttemptID),
		Status:      domain.AttemptStatusStarted,
		Description: req.Description,
		Address: domain.PaymentAddress{
			Billing:  req.Billing,
			Shipping: req.Shipping,
		},
		Request: domain.PaymentsAuthorizeData{
			Amount:            req.Amount,
			Currency:          unit,
			PaymentMethodData: pm,
		},
	}, nil
}

func (p PaymentMethodRequest) toDomain() (domain.PaymentMethodData, error) {
	switch p.Type {
	case domain.PaymentMethodCard:
		if p.Card != nil {
			return *p.Card, nil
		}
	case domain.PaymentMethodWallet:
		if p.Wallet != nil {
			return *p.Wallet, nil
		}
	case domain.PaymentMethodBankTransfer:
		if p.BankTransfer != nil {
			return *p.BankTransfer, nil
		}
	case domain.PaymentMethodPayLater:
		if p.PayLater != nil {
			return *p.PayLater, nil
		}
	}
	return nil, apperrors.InvalidInput(fmt.Sprintf("payment_method.%s is required for type %q", p.Type, p.Type))
}

func (req *RefundRequest) routerData(merchantID string) (*domain.RefundsRouterData, error) {
	unit, err := currency.ParseISO(req.Currency)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported currency %q", req.Currency))
	}

	return &domain.RefundsRouterData{
		MerchantID: merchantID,
		PaymentID:  req.PaymentID,
		Status:     domain.AttemptStatusCharged,
		Request: domain.RefundsData{
			RefundID:               idOrNew(req.RefundID),
			ConnectorTransactionID: req.ConnectorTransactionID,
			Amount:                 req.Amount,
			RefundAmount:           req.RefundAmount,
			Currency:               unit,
			Reason:                 req.Reason,
		},
	}, nil
}

func idOrNew(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

func toAttemptResponse(rd *domain.PaymentsAuthorizeRouterData) PaymentAttemptResponse {
	resp := PaymentAttemptResponse{
		PaymentID:      rd.PaymentID,
		AttemptID:      rd.AttemptID,
		MerchantID:     rd.MerchantID,
		Connector:      rd.Connector,
		Status:         rd.Status,
		Amount:         rd.Request.Amount,
		AmountCaptured: rd.AmountCaptured,
		Currency:       rd.Request.Currency.String(),
		Error:          rd.Error,
	}
	if rd.Response != nil {
		resp.ConnectorTransactionID = rd.Response.ResourceID.ConnectorTransactionID
		resp.Redirect = rd.Response.Redirect
		resp.RedirectionData = rd.Response.RedirectionData
	}
	return resp
}

func toRefundResponse(rd *domain.RefundsRouterData) RefundResponse {
	resp := RefundResponse{
		RefundID:     rd.Request.RefundID,
		PaymentID:    rd.PaymentID,
		Connector:    rd.Connector,
		RefundAmount: rd.Request.RefundAmount,
		Currency:     rd.Request.Currency.String(),
	}
	if rd.Response != nil {
		resp.ConnectorRefundID = rd.Response.ConnectorRefundID
		resp.RefundStatus = rd.Response.RefundStatus
	}
	return resp
}

// writeAttemptError writes a failed attempt together with the error, so the
// caller still sees the provider's decline details.
func writeAttemptError(w http.ResponseWriter, r *http.Request, out *domain.PaymentsAuthorizeRouterData, err error) {
	code, message := "PAYMENT_FAILED", "payment failed"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		code, message = appErr.Code, appErr.Message
	}

	httputil.WriteJSON(w, apperrors.HTTPStatus(err), httputil.Response{
		Data: toAttemptResponse(out),
		Error: &httputil.ErrorResponse{
			Code:      code,
			Message:   message,
			RequestID: logger.CorrelationIDFromContext(r.Context()),
		},
	})
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, httputil.Response{
			Error: &httputil.ErrorResponse{
				Code:    "PAYLOAD_TOO_LARGE",
				Message: "request body must not exceed " + strconv.FormatInt(maxErr.Limit, 10) + " bytes",
			},
		})
		return
	}
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
	})
}
