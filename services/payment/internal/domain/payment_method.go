package domain

import (
	"fmt"
	"log/slog"
	"strings"
)

// Payment method type constants.
const (
	PaymentMethodCard         = "card"
	PaymentMethodWallet       = "wallet"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodPayLater     = "pay_later"
)

// PaymentMethodData is the closed set of payment instruments a router can hand
// to a connector. String must never include sensitive values.
type PaymentMethodData interface {
	fmt.Stringer
	PaymentMethodType() string
	isPaymentMethodData()
}

// Card holds raw card details. All fields are required.
type Card struct {
	Number     string `json:"card_number" validate:"required,numeric,min=12,max=19"`
	ExpMonth   string `json:"card_exp_month" validate:"required,exp_month"`
	ExpYear    string `json:"card_exp_year" validate:"required,numeric"`
	HolderName string `json:"card_holder_name"`
	CVC        string `json:"card_cvc" validate:"required,numeric,min=3,max=4"`
}

func (Card) isPaymentMethodData() {}

// PaymentMethodType returns "card".
func (Card) PaymentMethodType() string { return PaymentMethodCard }

func (c Card) String() string {
	return fmt.Sprintf("Card { number: %s, exp_month: %s, exp_year: %s, cvc: *** }",
		MaskCardNumber(c.Number), c.ExpMonth, c.ExpYear)
}

// LogValue keeps the PAN and CVC out of structured logs.
func (c Card) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("number", MaskCardNumber(c.Number)),
		slog.String("exp_month", c.ExpMonth),
		slog.String("exp_year", c.ExpYear),
	)
}

// Wallet is a digital wallet payment such as Apple Pay or PayPal.
type Wallet struct {
	Issuer string `json:"issuer" validate:"required"`
	Token  string `json:"token"`
}

func (Wallet) isPaymentMethodData() {}

// PaymentMethodType returns "wallet".
func (Wallet) PaymentMethodType() string { return PaymentMethodWallet }

func (w Wallet) String() string {
	return fmt.Sprintf("Wallet { issuer: %s }", w.Issuer)
}

// BankTransfer is a push payment from the customer's bank account.
type BankTransfer struct {
	BankName string `json:"bank_name" validate:"required"`
	Country  string `json:"country"`
}

func (BankTransfer) isPaymentMethodData() {}

// PaymentMethodType returns "bank_transfer".
func (BankTransfer) PaymentMethodType() string { return PaymentMethodBankTransfer }

func (b BankTransfer) String() string {
	return fmt.Sprintf("BankTransfer { bank_name: %s, country: %s }", b.BankName, b.Country)
}

// PayLater is a buy-now-pay-later instrument.
type PayLater struct {
	Provider string `json:"provider" validate:"required"`
}

func (PayLater) isPaymentMethodData() {}

// PaymentMethodType returns "pay_later".
func (PayLater) PaymentMethodType() string { return PaymentMethodPayLater }

func (p PayLater) String() string {
	return fmt.Sprintf("PayLater { provider: %s }", p.Provider)
}

// DescribePaymentMethod returns pm's masked description, or "none" when pm is
// nil or a nil pointer to one of the variants.
func DescribePaymentMethod(pm PaymentMethodData) string {
	switch m := pm.(type) {
	case nil:
		return "none"
	case *Card:
		if m == nil {
			return "none"
		}
	case *Wallet:
		if m == nil {
			return "none"
		}
	case *BankTransfer:
		if m == nil {
			return "none"
		}
	case *PayLater:
		if m == nil {
			return "none"
		}
	}
	return pm.String()
}

// MaskCardNumber keeps the last four digits of a card number.
func MaskCardNumber(number string) string {
	if len(number) <= 4 {
		return strings.Repeat("*", len(number))
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
