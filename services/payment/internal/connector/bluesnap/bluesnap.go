package bluesnap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/EcommerceGo/pkg/httpclient"
	"github.com/utafrali/EcommerceGo/pkg/tracing"
	"github.com/utafrali/EcommerceGo/services/payment/internal/connector"
	"github.com/utafrali/EcommerceGo/services/payment/internal/domain"
)

// Name is the registry name of the Bluesnap connector.
const Name = "bluesnap"

const (
	transactionsPath = "/services/2/transactions"
	maxResponseBytes = 1 << 20
)

var errNilRouterData = errors.New("router data is nil")

// Config holds Bluesnap endpoint configuration.
type Config struct {
	BaseURL string
}

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Connector talks to the Bluesnap payments API.
type Connector struct {
	baseURL string
	auth    AuthType
	client  HTTPDoer
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates a Bluesnap connector. The auth configuration is checked once
// here; an unsupported variant fails construction.
func New(cfg Config, auth domain.ConnectorAuthType, client HTTPDoer, logger *slog.Logger) (*Connector, error) {
	authType, err := NewAuthType(auth)
	if err != nil {
		return nil, err
	}

	return &Connector{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		auth:    authType,
		client:  client,
		logger:  logger,
		tracer:  tracing.Tracer("github.com/utafrali/EcommerceGo/services/payment/connector/bluesnap"),
	}, nil
}

// Name returns the connector name.
func (c *Connector) Name() string {
	return Name
}

// Authorize sends an AUTH_CAPTURE card transaction to Bluesnap.
func (c *Connector) Authorize(ctx context.Context, rd *domain.PaymentsAuthorizeRouterData) (domain.PaymentsAuthorizeRouterData, error) {
	if rd == nil {
		return domain.PaymentsAuthorizeRouterData{}, connector.RequestEncoding(Name, "authorize", errNilRouterData)
	}

	ctx, span := tracing.StartClientSpan(ctx, c.tracer, "bluesnap.authorize",
		attribute.String("payment.id", rd.PaymentID),
		attribute.String("payment.attempt_id", rd.AttemptID),
		attribute.Int64("payment.amount", rd.Request.Amount),
	)
	defer span.End()

	out, err := c.authorize(ctx, rd)
	if err != nil {
		tracing.RecordError(span, err)
		return domain.PaymentsAuthorizeRouterData{}, err
	}

	span.SetAttributes(attribute.String("payment.status", string(out.Status)))
	return out, nil
}

func (c *Connector) authorize(ctx context.Context, rd *domain.PaymentsAuthorizeRouterData) (domain.PaymentsAuthorizeRouterData, error) {
	req, err := NewPaymentsRequest(rd)
	if err != nil {
		return domain.PaymentsAuthorizeRouterData{}, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return domain.PaymentsAuthorizeRouterData{}, connector.RequestEncoding(Name, "authorize", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+transactionsPath, bytes.NewReader(body))
	if err != nil {
		return domain.PaymentsAuthorizeRouterData{}, fmt.Errorf("create bluesnap request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", c.auth.APIKey)

	resp, err := c.client.Do(ctx, httpReq)
	if err != nil {
		// The circuit breaker turns a 5xx reply into a ServerError; Bluesnap
		// still answered, so its error body is mapped like any other rejection.
		var serverErr *httpclient.ServerError
		if errors.As(err, &serverErr) {
			return c.rejected(ctx, rd, serverErr.StatusCode, serverErr.Body), nil
		}
		return domain.PaymentsAuthorizeRouterData{}, fmt.Errorf("call bluesnap: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.PaymentsAuthorizeRouterData{}, connector.ResponseDeserialization(Name, "authorize", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.rejected(ctx, rd, resp.StatusCode, respBody), nil
	}

	parsed, err := ParsePaymentsResponse(respBody)
	if err != nil {
		return domain.PaymentsAuthorizeRouterData{}, err
	}

	out, err := parsed.RouterData(*rd)
	if err != nil {
		return domain.PaymentsAuthorizeRouterData{}, err
	}

	c.logger.InfoContext(ctx, "bluesnap transaction completed",
		slog.String("payment_id", rd.PaymentID),
		slog.String("connector_transaction_id", parsed.ID),
		slog.String("bluesnap_status", parsed.Status.String()),
		slog.String("status", string(out.Status)),
	)

	return out, nil
}

func (c *Connector) rejected(ctx context.Context, rd *domain.PaymentsAuthorizeRouterData, statusCode int, body []byte) domain.PaymentsAuthorizeRouterData {
	out := *rd
	out.Status = domain.AttemptStatusFailure
	out.Response = nil
	out.Error = ParseErrorResponse(statusCode, body)

	c.logger.WarnContext(ctx, "bluesnap rejected transaction",
		slog.String("payment_id", rd.PaymentID),
		slog.Int("status_code", statusCode),
		slog.String("error_code", out.Error.Code),
	)
	return out
}

// Refund executes a refund. Refunds are not supported yet.
func (c *Connector) Refund(ctx context.Context, rd *domain.RefundsRouterData) (domain.RefundsRouterData, error) {
	_, span := tracing.StartClientSpan(ctx, c.tracer, "bluesnap.refund")
	defer span.End()

	if _, err := NewRefundRequest(rd); err != nil {
		tracing.RecordError(span, err)
		return domain.RefundsRouterData{}, err
	}

	var resp RefundResponse
	return resp.ExecuteRouterData(*rd)
}

// RefundSync fetches a refund's state. Refunds are not supported yet.
func (c *Connector) RefundSync(ctx context.Context, rd *domain.RefundsRouterData) (domain.RefundsRouterData, error) {
	_, span := tracing.StartClientSpan(ctx, c.tracer, "bluesnap.refund_sync")
	defer span.End()

	var in domain.RefundsRouterData
	if rd != nil {
		in = *rd
	}

	var resp RefundResponse
	out, err := resp.SyncRouterData(in)
	if err != nil {
		tracing.RecordError(span, err)
	}
	return out, err
}
