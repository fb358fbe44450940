package domain

import (
	"encoding/json"

	"golang.org/x/text/currency"
)

// AddressDetails is the postal part of an address. Every field is optional.
type AddressDetails struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Line1     *string `json:"line1,omitempty"`
	Line2     *string `json:"line2,omitempty"`
	City      *string `json:"city,omitempty"`
	State     *string `json:"state,omitempty"`
	Zip       *string `json:"zip,omitempty"`
	Country   *string `json:"country,omitempty"`
}

// PhoneDetails is a contact phone number.
type PhoneDetails struct {
	Number      *string `json:"number,omitempty"`
	CountryCode *string `json:"country_code,omitempty"`
}

// Address groups an optional postal address and phone.
type Address struct {
	Address *AddressDetails `json:"address,omitempty"`
	Phone   *PhoneDetails   `json:"phone,omitempty"`
}

// PaymentAddress holds the addresses attached to a payment.
type PaymentAddress struct {
	Shipping *Address `json:"shipping,omitempty"`
	Billing  *Address `json:"billing,omitempty"`
}

// PaymentsAuthorizeData is the request half of an authorize call.
type PaymentsAuthorizeData struct {
	Amount            int64
	Currency          currency.Unit
	PaymentMethodData PaymentMethodData
}

// ResponseID identifies a payment at the connector.
type ResponseID struct {
	ConnectorTransactionID string `json:"connector_transaction_id,omitempty"`
	EncodedData            string `json:"encoded_data,omitempty"`
}

// ConnectorTransactionID builds a ResponseID from a connector transaction id.
func ConnectorTransactionID(id string) ResponseID {
	return ResponseID{ConnectorTransactionID: id}
}

// RedirectForm describes a customer redirect required to finish a payment.
type RedirectForm struct {
	Endpoint   string            `json:"endpoint"`
	Method     string            `json:"method"`
	FormFields map[string]string `json:"form_fields,omitempty"`
}

// PaymentsResponseData is the successful transaction result of a payment call.
type PaymentsResponseData struct {
	ResourceID        ResponseID      `json:"resource_id"`
	RedirectionData   *RedirectForm   `json:"redirection_data,omitempty"`
	Redirect          bool            `json:"redirect"`
	MandateReference  *string         `json:"mandate_reference,omitempty"`
	ConnectorMetadata json.RawMessage `json:"connector_metadata,omitempty"`
}

// ErrorResponse is a connector-reported failure.
type ErrorResponse struct {
	Code       string  `json:"code"`
	Message    string  `json:"message"`
	Reason     *string `json:"reason,omitempty"`
	StatusCode int     `json:"status_code"`
}

// RefundsData is the request half of a refund call.
type RefundsData struct {
	RefundID               string
	ConnectorTransactionID string
	ConnectorRefundID      *string
	Amount                 int64
	RefundAmount           int64
	Currency               currency.Unit
	Reason                 *string
}

// RefundsResponseData is the result of a refund call.
type RefundsResponseData struct {
	ConnectorRefundID string       `json:"connector_refund_id"`
	RefundStatus      RefundStatus `json:"refund_status"`
}

// RouterData is the envelope the router hands to a connector for one call and
// receives back, updated, when the call completes.
type RouterData[Req, Resp any] struct {
	MerchantID     string
	Connector      string
	PaymentID      string
	AttemptID      string
	Status         AttemptStatus
	Description    *string
	Address        PaymentAddress
	AmountCaptured *int64
	Request        Req
	Response       *Resp
	Error          *ErrorResponse
}

// PaymentsAuthorizeRouterData is the envelope of an authorize call.
type PaymentsAuthorizeRouterData = RouterData[PaymentsAuthorizeData, PaymentsResponseData]

// RefundsRouterData is the envelope of a refund or refund sync call.
type RefundsRouterData = RouterData[RefundsData, RefundsResponseData]
