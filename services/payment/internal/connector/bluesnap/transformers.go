package bluesnap

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/payment/internal/connector"
	"github.com/utafrali/EcommerceGo/services/payment/internal/domain"
)

// CardTransactionTypeAuthCapture authorizes and captures in one step. It is the
// only transaction type this connector sends.
const CardTransactionTypeAuthCapture = "AUTH_CAPTURE"

// CardHolderInfo is the card holder block of a Bluesnap transaction.
type CardHolderInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Zip       string `json:"zip"`
}

// CreditCard is the raw card block of a Bluesnap transaction.
type CreditCard struct {
	ExpirationYear  string `json:"expiration_year"`
	SecurityCode    string `json:"security_code"`
	ExpirationMonth string `json:"expiration_month"`
	CardNumber      string `json:"card_number"`
}

// PaymentsRequest is the body of a Bluesnap card transaction.
type PaymentsRequest struct {
	SoftDescriptor      string         `json:"soft_descriptor"`
	Amount              int64          `json:"amount"`
	Currency            string         `json:"currency"`
	CardHolderInfo      CardHolderInfo `json:"card_holder_info"`
	CreditCard          CreditCard     `json:"credit_card"`
	CardTransactionType string         `json:"card_transaction_type"`
}

// NewPaymentsRequest builds a Bluesnap transaction from an authorize envelope.
// Only card payments are supported; nothing is built for any other method.
func NewPaymentsRequest(rd *domain.PaymentsAuthorizeRouterData) (*PaymentsRequest, error) {
	if rd == nil {
		return nil, connector.RequestEncoding(Name, "authorize", errNilRouterData)
	}
	card, err := creditCard(rd.Request.PaymentMethodData)
	if err != nil {
		return nil, err
	}

	return &PaymentsRequest{
		SoftDescriptor:      valueOrEmpty(rd.Description),
		Amount:              rd.Request.Amount,
		Currency:            rd.Request.Currency.String(),
		CardHolderInfo:      cardHolderInfo(rd.Address.Billing),
		CreditCard:          card,
		CardTransactionType: CardTransactionTypeAuthCapture,
	}, nil
}

func creditCard(pm domain.PaymentMethodData) (CreditCard, error) {
	switch m := pm.(type) {
	case domain.Card:
		return cardBlock(m), nil
	case *domain.Card:
		if m != nil {
			return cardBlock(*m), nil
		}
	}
	return CreditCard{}, connector.PaymentMethodNotSupported(Name, "authorize", domain.DescribePaymentMethod(pm))
}

func cardBlock(c domain.Card) CreditCard {
	return CreditCard{
		ExpirationYear:  c.ExpYear,
		SecurityCode:    c.CVC,
		ExpirationMonth: c.ExpMonth,
		CardNumber:      c.Number,
	}
}

// cardHolderInfo resolves each field on its own, so a billing address with a
// first name but no zip still yields the first name.
func cardHolderInfo(billing *domain.Address) CardHolderInfo {
	return CardHolderInfo{
		FirstName: billingField(billing, func(d *domain.AddressDetails) *string { return d.FirstName }),
		LastName:  billingField(billing, func(d *domain.AddressDetails) *string { return d.LastName }),
		Zip:       billingField(billing, func(d *domain.AddressDetails) *string { return d.Zip }),
	}
}

func billingField(billing *domain.Address, field func(*domain.AddressDetails) *string) string {
	if billing == nil || billing.Address == nil {
		return ""
	}
	return valueOrEmpty(field(billing.Address))
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PaymentsResponse is the part of a Bluesnap transaction reply the router needs.
type PaymentsResponse struct {
	Status PaymentStatus `json:"status"`
	Amount int64         `json:"amount"`
	ID     string        `json:"id" validate:"required"`
}

// ParsePaymentsResponse decodes a Bluesnap transaction reply. A body that is not
// JSON, or that carries no transaction id, is rejected.
func ParsePaymentsResponse(body []byte) (*PaymentsResponse, error) {
	var resp PaymentsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, connector.ResponseDeserialization(Name, "authorize", err)
	}
	if err := validator.Validate(resp); err != nil {
		return nil, connector.ResponseDeserialization(Name, "authorize", err)
	}
	return &resp, nil
}

// RouterData returns a copy of data updated with the transaction outcome.
// Any earlier Error is cleared. Fields the reply says nothing about are carried
// over unchanged.
func (r *PaymentsResponse) RouterData(data domain.PaymentsAuthorizeRouterData) (domain.PaymentsAuthorizeRouterData, error) {
	amount := r.Amount

	data.Status = r.Status.AttemptStatus()
	data.AmountCaptured = &amount
	data.Response = &domain.PaymentsResponseData{
		ResourceID:        domain.ConnectorTransactionID(r.ID),
		RedirectionData:   nil,
		Redirect:          false,
		MandateReference:  nil,
		ConnectorMetadata: nil,
	}
	data.Error = nil
	return data, nil
}

// ErrorMessage is one entry of a Bluesnap error reply.
type ErrorMessage struct {
	ErrorName   string `json:"errorName"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ErrorResponse is the body Bluesnap returns with a non-2xx status.
type ErrorResponse struct {
	Message []ErrorMessage `json:"message"`
}

// ParseErrorResponse converts a Bluesnap error reply into a router error. An
// unreadable body still yields an error carrying the HTTP status.
func ParseErrorResponse(statusCode int, body []byte) *domain.ErrorResponse {
	out := &domain.ErrorResponse{
		Code:       fmt.Sprintf("HTTP_%d", statusCode),
		Message:    "bluesnap returned an error",
		StatusCode: statusCode,
	}

	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Message) == 0 {
		return out
	}

	first := resp.Message[0]
	if first.Code != "" {
		out.Code = first.Code
	}
	if first.ErrorName != "" {
		out.Message = first.ErrorName
	}

	descriptions := make([]string, 0, len(resp.Message))
	for _, m := range resp.Message {
		if m.Description != "" {
			descriptions = append(descriptions, m.Description)
		}
	}
	if len(descriptions) > 0 {
		reason := strings.Join(descriptions, "; ")
		out.Reason = &reason
	}
	return out
}
