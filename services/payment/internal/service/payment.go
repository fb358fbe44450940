package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/services/payment/internal/connector"
	"github.com/utafrali/EcommerceGo/services/payment/internal/domain"
	"github.com/utafrali/EcommerceGo/services/payment/internal/event"
)

// msgRefundsNotSupported is returned for every refund operation a connector
// does not offer.
const msgRefundsNotSupported = "refunds are not supported by this provider at this time"

// CircuitOpenFallback is the fallback for the connector circuit breaker. When
// the circuit is open it returns a structured error with a retry hint instead
// of letting the raw ErrCircuitOpen propagate.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable("payment provider is temporarily unavailable, please retry after 30 seconds")
}

// PaymentService routes payment operations to the configured connectors.
type PaymentService struct {
	connectors *connector.Registry
	producer   *event.Producer
	logger     *slog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	connectors *connector.Registry,
	producer *event.Producer,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		connectors: connectors,
		producer:   producer,
		logger:     logger,
	}
}

// Connectors returns the names of the configured connectors.
func (s *PaymentService) Connectors() []string {
	return s.connectors.Names()
}

// AuthorizePayment submits a payment to the named connector and returns the
// updated envelope. An attempt the connector rejected is returned together
// with a PAYMENT_FAILED error.
func (s *PaymentService) AuthorizePayment(ctx context.Context, connectorName string, rd *domain.PaymentsAuthorizeRouterData) (*domain.PaymentsAuthorizeRouterData, error) {
	if rd == nil {
		return nil, apperrors.InvalidInput("payment data is required")
	}
	conn, err := s.connector(connectorName)
	if err != nil {
		return nil, err
	}
	in := *rd
	in.Connector = conn.Name()

	start := time.Now()
	out, err := conn.Authorize(ctx, &in)
	ConnectorDuration.WithLabelValues(conn.Name(), "authorize").Observe(time.Since(start).Seconds())
	if err != nil {
		ConnectorAttempts.WithLabelValues(conn.Name(), statusError).Inc()
		s.logger.ErrorContext(ctx, "connector authorize failed",
			slog.String("connector", conn.Name()),
			slog.String("payment_id", rd.PaymentID),
			slog.String("attempt_id", rd.AttemptID),
			slog.String("error", err.Error()),
		)
		return nil, toAppError(err)
	}
	ConnectorAttempts.WithLabelValues(conn.Name(), string(out.Status)).Inc()

	s.logger.InfoContext(ctx, "payment attempt updated",
		slog.String("connector", conn.Name()),
		slog.String("payment_id", out.PaymentID),
		slog.String("attempt_id", out.AttemptID),
		slog.String("status", string(out.Status)),
	)

	if err := s.producer.PublishAttemptUpdated(ctx, &out); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish attempt.updated event",
			slog.String("payment_id", out.PaymentID),
			slog.String("error", err.Error()),
		)
	}

	if out.Status == domain.AttemptStatusFailure {
		return &out, apperrors.PaymentFailed(failureMessage(out.Error))
	}
	return &out, nil
}

// RefundPayment submits a refund to the named connector.
func (s *PaymentService) RefundPayment(ctx context.Context, connectorName string, rd *domain.RefundsRouterData) (*domain.RefundsRouterData, error) {
	return s.refund(ctx, connectorName, "refund", rd, connector.Connector.Refund)
}

// SyncRefund fetches the current state of a refund from the named connector.
func (s *PaymentService) SyncRefund(ctx context.Context, connectorName string, rd *domain.RefundsRouterData) (*domain.RefundsRouterData, error) {
	return s.refund(ctx, connectorName, "refund_sync", rd, connector.Connector.RefundSync)
}

type refundFunc func(connector.Connector, context.Context, *domain.RefundsRouterData) (domain.RefundsRouterData, error)

func (s *PaymentService) refund(ctx context.Context, connectorName, op string, rd *domain.RefundsRouterData, call refundFunc) (*domain.RefundsRouterData, error) {
	if rd == nil {
		return nil, apperrors.InvalidInput("refund data is required")
	}
	conn, err := s.connector(connectorName)
	if err != nil {
		return nil, err
	}
	in := *rd
	in.Connector = conn.Name()

	start := time.Now()
	out, err := call(conn, ctx, &in)
	ConnectorDuration.WithLabelValues(conn.Name(), op).Observe(time.Since(start).Seconds())
	if err != nil {
		ConnectorAttempts.WithLabelValues(conn.Name(), statusError).Inc()
		s.logger.WarnContext(ctx, "connector refund operation failed",
			slog.String("connector", conn.Name()),
			slog.String("operation", op),
			slog.String("refund_id", rd.Request.RefundID),
			slog.String("error", err.Error()),
		)
		return nil, toAppError(err)
	}
	status := string(out.Status)
	if out.Response != nil {
		status = string(out.Response.RefundStatus)
	}
	ConnectorAttempts.WithLabelValues(conn.Name(), status).Inc()

	s.logger.InfoContext(ctx, "refund updated",
		slog.String("connector", conn.Name()),
		slog.String("operation", op),
		slog.String("refund_id", out.Request.RefundID),
		slog.String("status", status),
	)
	return &out, nil
}

func (s *PaymentService) connector(name string) (connector.Connector, error) {
	conn, ok := s.connectors.Get(name)
	if !ok {
		return nil, apperrors.NotFound("connector", name)
	}
	return conn, nil
}

// toAppError converts a connector failure into the error returned to callers.
func toAppError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var connErr *connector.Error
	switch {
	case errors.Is(err, connector.ErrPaymentMethodNotSupported):
		msg := "payment method not supported"
		if errors.As(err, &connErr) && connErr.Message != "" {
			msg = fmt.Sprintf("payment method not supported: %s", connErr.Message)
		}
		return apperrors.PaymentMethodNotSupported(msg)
	case errors.Is(err, connector.ErrFailedToObtainAuthType):
		return apperrors.ConnectorMisconfigured(err)
	case errors.Is(err, connector.ErrNotImplemented):
		if errors.As(err, &connErr) && !strings.HasPrefix(connErr.Op, "refund") {
			return apperrors.NotImplemented(fmt.Sprintf("%s is not supported by this provider", connErr.Op))
		}
		return apperrors.NotImplemented(msgRefundsNotSupported)
	case errors.Is(err, connector.ErrResponseDeserialization):
		return apperrors.BadGateway("payment provider returned an unreadable response", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.ServiceUnavailable("payment provider did not respond in time")
	default:
		return apperrors.Internal(err)
	}
}

func failureMessage(e *domain.ErrorResponse) string {
	if e == nil {
		return "payment was declined by the provider"
	}
	if e.Reason != nil && *e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Message, *e.Reason)
	}
	return e.Message
}
