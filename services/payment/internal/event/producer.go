package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/EcommerceGo/pkg/logger"
	pkgkafka "github.com/utafrali/EcommerceGo/pkg/kafka"
	"github.com/utafrali/EcommerceGo/services/payment/internal/domain"
)

// TopicAttemptUpdated carries the outcome of every connector call.
var TopicAttemptUpdated = pkgkafka.Topic("payment", "attempt.updated")

// Aggregate type constant.
const AggregateTypePayment = "payment"

// Source identifier for events originating from the payment service.
const SourcePaymentService = "payment-service"

// EventTypeAttemptAuthorized is carried on TopicAttemptUpdated after an authorize call.
const EventTypeAttemptAuthorized = "payment.attempt.authorized"

// AttemptUpdatedData is the payload for an attempt.updated event. It never
// carries payment method details.
type AttemptUpdatedData struct {
	PaymentID              string  `json:"payment_id"`
	AttemptID              string  `json:"attempt_id"`
	MerchantID             string  `json:"merchant_id,omitempty"`
	Connector              string  `json:"connector"`
	Status                 string  `json:"status"`
	Amount                 int64   `json:"amount"`
	AmountCaptured         *int64  `json:"amount_captured,omitempty"`
	Currency               string  `json:"currency"`
	PaymentMethodType      string  `json:"payment_method_type,omitempty"`
	ConnectorTransactionID string  `json:"connector_transaction_id,omitempty"`
	ErrorCode              string  `json:"error_code,omitempty"`
	ErrorMessage           string  `json:"error_message,omitempty"`
	ErrorReason            *string `json:"error_reason,omitempty"`
}

// NewAttemptUpdatedData builds the event payload from an authorize envelope.
func NewAttemptUpdatedData(rd *domain.PaymentsAuthorizeRouterData) AttemptUpdatedData {
	data := AttemptUpdatedData{
		PaymentID:      rd.PaymentID,
		AttemptID:      rd.AttemptID,
		MerchantID:     rd.MerchantID,
		Connector:      rd.Connector,
		Status:         string(rd.Status),
		Amount:         rd.Request.Amount,
		AmountCaptured: rd.AmountCaptured,
		Currency:       rd.Request.Currency.String(),
	}
	if rd.Request.PaymentMethodData != nil {
		data.PaymentMethodType = rd.Request.PaymentMethodData.PaymentMethodType()
	}
	if rd.Response != nil {
		data.ConnectorTransactionID = rd.Response.ResourceID.ConnectorTransactionID
	}
	if rd.Error != nil {
		data.ErrorCode = rd.Error.Code
		data.ErrorMessage = rd.Error.Message
		data.ErrorReason = rd.Error.Reason
	}
	return data
}

// Publisher is the part of the Kafka producer used to emit events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes payment domain events to Kafka. A nil Producer, or one
// without a publisher, drops events silently.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the payment service.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishAttemptUpdated publishes the outcome of an authorize call.
func (p *Producer) PublishAttemptUpdated(ctx context.Context, rd *domain.PaymentsAuthorizeRouterData) error {
	if p == nil || p.kafka == nil {
		return nil
	}

	data := NewAttemptUpdatedData(rd)

	evt, err := pkgkafka.NewEvent(EventTypeAttemptAuthorized, rd.PaymentID, AggregateTypePayment, SourcePaymentService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", EventTypeAttemptAuthorized, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}
	evt.WithMetadata("connector", rd.Connector)

	if err := p.kafka.Publish(ctx, TopicAttemptUpdated, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", EventTypeAttemptAuthorized, err)
	}

	p.logger.DebugContext(ctx, "published attempt.updated event",
		slog.String("payment_id", rd.PaymentID),
		slog.String("attempt_id", rd.AttemptID),
		slog.String("status", data.Status),
	)

	return nil
}
