package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"

	"github.com/utafrali/EcommerceGo/pkg/health"
	"github.com/utafrali/EcommerceGo/pkg/middleware"
	"github.com/utafrali/EcommerceGo/services/payment/internal/connector"
	"github.com/utafrali/EcommerceGo/services/payment/internal/domain"
	"github.com/utafrali/EcommerceGo/services/payment/internal/service"
)

// --- Mock Connector ---

type mockConnector struct {
	mock.Mock
}

func (m *mockConnector) Name() string { return "acme" }

func (m *mockConnector) Authorize(ctx context.Context, rd *domain.PaymentsAuthorizeRouterData) (domain.PaymentsAuthorizeRouterData, error) {
	args := m.Called(ctx, rd)
	if fn, ok := args.Get(0).(func(*domain.PaymentsAuthorizeRouterData) domain.PaymentsAuthorizeRouterData); ok {
		return fn(rd), args.Error(1)
	}
	return args.Get(0).(domain.PaymentsAuthorizeRouterData), args.Error(1)
}

func (m *mockConnector) Refund(ctx context.Context, rd *domain.RefundsRouterData) (domain.RefundsRouterData, error) {
	args := m.Called(ctx, rd)
	return args.Get(0).(domain.RefundsRouterData), args.Error(1)
}

func (m *mockConnector) RefundSync(ctx context.Context, rd *domain.RefundsRouterData) (domain.RefundsRouterData, error) {
	args := m.Called(ctx, rd)
	return args.Get(0).(domain.RefundsRouterData), args.Error(1)
}

// --- Helpers ---

type testResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code      string            `json:"code"`
		Message   string            `json:"message"`
		Fields    map[string]string `json:"fields"`
		RequestID string            `json:"request_id"`
	} `json:"error"`
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupRouter(conn *mockConnector) http.Handler {
	logger := newTestLogger()
	svc := service.NewPaymentService(connector.NewRegistry(conn), nil, logger)
	return NewRouter(svc, health.NewHandler(), logger, []string{"127.0.0.0/8"})
}

func doRequest(t *testing.T, router http.Handler, method, path string, body []byte, headers map[string]string) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	var resp testResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func validAuthorizeBody() map[string]any {
	return map[string]any{
		"amount":      1000,
		"currency":    "USD",
		"description": "ACME STORE",
		"payment_method": map[string]any{
			"type": "card",
			"card": map[string]any{
				"card_number":      "4111111111111111",
				"card_exp_month":   "12",
				"card_exp_year":    "2030",
				"card_holder_name": "Jane Doe",
				"card_cvc":         "123",
			},
		},
		"billing": map[string]any{
			"address": map[string]any{"first_name": "Jane", "last_name": "Doe", "zip": "10001"},
		},
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func chargedFrom(rd *domain.PaymentsAuthorizeRouterData) domain.PaymentsAuthorizeRouterData {
	out := *rd
	amount := rd.Request.Amount
	out.Status = domain.AttemptStatusCharged
	out.AmountCaptured = &amount
	out.Response = &domain.PaymentsResponseData{ResourceID: domain.ConnectorTransactionID("tx_1")}
	return out
}

const authorizePath = "/api/v1/connectors/acme/payments/authorize"

// ============================================================================
// POST /api/v1/connectors/{connector}/payments/authorize
// ============================================================================

func TestAuthorizePayment_Success(t *testing.T) {
	conn := new(mockConnector)
	router := setupRouter(conn)

	var captured *domain.PaymentsAuthorizeRouterData
	conn.On("Authorize", mock.Anything, mock.Anything).
		Return(func(rd *domain.PaymentsAuthorizeRouterData) domain.PaymentsAuthorizeRouterData {
			captured = rd
			return chargedFrom(rd)
		}, nil)

	rec, resp := doRequest(t, router, http.MethodPost, authorizePath, mustJSON(t, validAuthorizeBody()),
		map[string]string{middleware.MerchantIDHeader: "merchant_1"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, resp.Error)

	var data PaymentAttemptResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, domain.AttemptStatusCharged, data.Status)
	assert.Equal(t, "acme", data.Connector)
	assert.Equal(t, "merchant_1", data.MerchantID)
	assert.Equal(t, "USD", data.Currency)
	assert.Equal(t, "tx_1", data.ConnectorTransactionID)
	assert.NotEmpty(t, data.PaymentID)
	assert.NotEmpty(t, data.AttemptID)
	assert.NotContains(t, rec.Body.String(), "4111111111111111")

	require.NotNil(t, captured)
	assert.Equal(t, currency.USD, captured.Request.Currency)
	card, ok := captured.Request.PaymentMethodData.(domain.Card)
	require.True(t, ok)
	assert.Equal(t, "4111111111111111", card.Number)
	require.NotNil(t, captured.Address.Billing)
	assert.Equal(t, "Jane", *captured.Address.Billing.Address.FirstName)
	assert.Equal(t, "ACME STORE", *captured.Description)
}

func TestAuthorizePayment_WalletReachesConnector(t *testing.T) {
	conn := new(mockConnector)
	router := setupRouter(conn)

	conn.On("Authorize", mock.Anything, mock.MatchedBy(func(rd *domain.PaymentsAuthorizeRouterData) bool {
		w, ok := rd.Request.PaymentMethodData.(domain.Wallet)
		return ok && w.Issuer == "paypal"
	})).Return(domain.PaymentsAuthorizeRouterData{},
		connector.PaymentMethodNotSupported("acme", "authorize", "Wallet { issuer: paypal }"))

	body := validAuthorizeBody()
	body["payment_method"] = map[string]any{"type": "wallet", "wallet": map[string]any{"issuer": "paypal"}}

	rec, resp := doRequest(t, router, http.MethodPost, authorizePath, mustJSON(t, body), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PAYMENT_METHOD_NOT_SUPPORTED", resp.Error.Code)
	conn.AssertExpectations(t)
}

func TestAuthorizePayment_Declined(t *testing.T) {
	conn := new(mockConnector)
	router := setupRouter(conn)

	conn.On("Authorize", mock.Anything, mock.Anything).
		Return(func(rd *domain.PaymentsAuthorizeRouterData) domain.PaymentsAuthorizeRouterData {
			out := *rd
			out.Status = domain.AttemptStatusFailure
			out.Error = &domain.ErrorResponse{Code: "14002", Message: "CARD_DECLINED", StatusCode: 400}
			return out
		}, nil)

	rec, resp := doRequest(t, router, http.MethodPost, authorizePath, mustJSON(t, validAuthorizeBody()),
		map[string]string{middleware.CorrelationIDHeader: "corr-42"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PAYMENT_FAILED", resp.Error.Code)
	assert.Equal(t, "CARD_DECLINED", resp.Error.Message)
	assert.Equal(t, "corr-42", resp.Error.RequestID)

	var data PaymentAttemptResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, domain.AttemptStatusFailure, data.Status)
	require.NotNil(t, data.Error)
	assert.Equal(t, "14002", data.Error.Code)
}

func TestAuthorizePayment_UnknownConnector(t *testing.T) {
	router := setupRouter(new(mockConnector))

	rec, resp := doRequest(t, router, http.MethodPost, "/api/v1/connectors/nope/payments/authorize",
		mustJSON(t, validAuthorizeBody()), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestAuthorizePayment_InvalidJSON(t *testing.T) {
	router := setupRouter(new(mockConnector))

	rec, resp := doRequest(t, router, http.MethodPost, authorizePath, []byte(`{invalid json`), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestAuthorizePayment_UnknownField(t *testing.T) {
	router := setupRouter(new(mockConnector))
	body := validAuthorizeBody()
	body["surprise"] = true

	rec, resp := doRequest(t, router, http.MethodPost, authorizePath, mustJSON(t, body), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestAuthorizePayment_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(body map[string]any)
		wantField string
	}{
		{
			name:      "zero amount",
			mutate:    func(b map[string]any) { b["amount"] = 0 },
			wantField: "amount",
		},
		{
			name:      "unknown currency",
			mutate:    func(b map[string]any) { b["currency"] = "ABC" },
			wantField: "currency",
		},
		{
			name: "card missing for card type",
			mutate: func(b map[string]any) {
				b["payment_method"] = map[string]any{"type": "card"}
			},
			wantField: "card",
		},
		{
			name: "unknown payment method type",
			mutate: func(b map[string]any) {
				b["payment_method"] = map[string]any{"type": "crypto"}
			},
			wantField: "type",
		},
		{
			name: "bad expiry month",
			mutate: func(b map[string]any) {
				pm := b["payment_method"].(map[string]any)
				pm["card"].(map[string]any)["card_exp_month"] = "13"
			},
			wantField: "card_exp_month",
		},
		{
			name:      "payment id not a uuid",
			mutate:    func(b map[string]any) { b["payment_id"] = "pay-1" },
			wantField: "payment_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := new(mockConnector)
			router := setupRouter(conn)
			body := validAuthorizeBody()
			tt.mutate(body)

			rec, resp := doRequest(t, router, http.MethodPost, authorizePath, mustJSON(t, body), nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
			assert.Contains(t, resp.Error.Fields, tt.wantField)
			conn.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthorizePayment_UnsupportedMediaType(t *testing.T) {
	router := setupRouter(new(mockConnector))

	req := httptest.NewRequest(http.MethodPost, authorizePath, strings.NewReader("amount=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNSUPPORTED_MEDIA_TYPE")
}

func TestAuthorizePayment_JSONWithCharset(t *testing.T) {
	conn := new(mockConnector)
	router := setupRouter(conn)
	conn.On("Authorize", mock.Anything, mock.Anything).
		Return(func(rd *domain.PaymentsAuthorizeRouterData) domain.PaymentsAuthorizeRouterData {
			return chargedFrom(rd)
		}, nil)

	rec, _ := doRequest(t, router, http.MethodPost, authorizePath, mustJSON(t, validAuthorizeBody()),
		map[string]string{"Content-Type": "application/json; charset=utf-8"})

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ============================================================================
// Refunds
// ============================================================================

func validRefundBody() map[string]any {
	return map[string]any{
		"payment_id":               "pay_1",
		"connector_transaction_id": "tx_1",
		"amount":                   1000,
		"refund_amount":            400,
		"currency":                 "EUR",
		"reason":                   "customer request",
	}
}

func TestRefund_NotImplemented(t *testing.T) {
	conn := new(mockConnector)
	router := setupRouter(conn)

	conn.On("Refund", mock.Anything, mock.MatchedBy(func(rd *domain.RefundsRouterData) bool {
		return rd.Request.ConnectorTransactionID == "tx_1" &&
			rd.Request.RefundAmount == 400 &&
			rd.Request.Currency == currency.EUR &&
			rd.Request.RefundID != ""
	})).Return(domain.RefundsRouterData{}, connector.NotImplemented("acme", "refund"))

	rec, resp := doRequest(t, router, http.MethodPost, "/api/v1/connectors/acme/refunds", mustJSON(t, validRefundBody()), nil)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_IMPLEMENTED", resp.Error.Code)
	assert.Equal(t, "refunds are not supported by this provider at this time", resp.Error.Message)
	conn.AssertExpectations(t)
}

func TestRefund_RefundAmountExceedsAmount(t *testing.T) {
	conn := new(mockConnector)
	router := setupRouter(conn)
	body := validRefundBody()
	body["refund_amount"] = 5000

	rec, resp := doRequest(t, router, http.MethodPost, "/api/v1/connectors/acme/refunds", mustJSON(t, body), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Fields, "refund_amount")
	conn.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
}

func TestGetRefund_NotImplemented(t *testing.T) {
	conn := new(mockConnector)
	router := setupRouter(conn)

	conn.On("RefundSync", mock.Anything, mock.MatchedBy(func(rd *domain.RefundsRouterData) bool {
		return rd.Request.RefundID == "ref_1" &&
			rd.PaymentID == "pay_1" &&
			rd.Request.ConnectorRefundID != nil && *rd.Request.ConnectorRefundID == "cref_1"
	})).Return(domain.RefundsRouterData{}, connector.NotImplemented("acme", "refund_sync"))

	rec, resp := doRequest(t, router, http.MethodGet,
		"/api/v1/connectors/acme/refunds/ref_1?payment_id=pay_1&connector_refund_id=cref_1", nil, nil)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_IMPLEMENTED", resp.Error.Code)
	conn.AssertExpectations(t)
}

// ============================================================================
// Connectors, health and metrics
// ============================================================================

func TestListConnectors(t *testing.T) {
	router := setupRouter(new(mockConnector))

	rec, resp := doRequest(t, router, http.MethodGet, "/api/v1/connectors/", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(resp.Data, &names))
	assert.Equal(t, []string{"acme"}, names)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestHealthAndMetrics(t *testing.T) {
	router := setupRouter(new(mockConnector))

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestCorrelationIDEchoed(t *testing.T) {
	router := setupRouter(new(mockConnector))

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(middleware.CorrelationIDHeader, "corr-7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "corr-7", rec.Header().Get(middleware.CorrelationIDHeader))
}

func TestPprofRestrictedToAllowlist(t *testing.T) {
	router := setupRouter(new(mockConnector))

	tests := []struct {
		remoteAddr string
		want       int
	}{
		{"127.0.0.1:1234", http.StatusOK},
		{"203.0.113.9:1234", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
		req.RemoteAddr = tt.remoteAddr
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, tt.remoteAddr)
	}
}
