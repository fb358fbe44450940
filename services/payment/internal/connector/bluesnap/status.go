package bluesnap

import (
	"encoding/json"
	"strings"

	"github.com/utafrali/EcommerceGo/services/payment/internal/domain"
)

// PaymentStatus is the transaction status reported by Bluesnap. The zero value
// is PaymentStatusProcessing, so a missing or unknown status means "in progress".
type PaymentStatus int

const (
	PaymentStatusProcessing PaymentStatus = iota
	PaymentStatusSucceeded
	PaymentStatusFailed
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentStatusSucceeded:
		return "succeeded"
	case PaymentStatusFailed:
		return "failed"
	default:
		return "processing"
	}
}

// AttemptStatus maps the Bluesnap status onto the canonical attempt status.
func (s PaymentStatus) AttemptStatus() domain.AttemptStatus {
	switch s {
	case PaymentStatusSucceeded:
		return domain.AttemptStatusCharged
	case PaymentStatusFailed:
		return domain.AttemptStatusFailure
	default:
		return domain.AttemptStatusAuthorizing
	}
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	*s = parsePaymentStatus(statusText(data))
	return nil
}

func parsePaymentStatus(v string) PaymentStatus {
	switch v {
	case "succeeded":
		return PaymentStatusSucceeded
	case "failed":
		return PaymentStatusFailed
	default:
		return PaymentStatusProcessing
	}
}

// RefundStatus is the refund status reported by Bluesnap. The zero value is
// RefundStatusProcessing.
type RefundStatus int

const (
	RefundStatusProcessing RefundStatus = iota
	RefundStatusSucceeded
	RefundStatusFailed
)

func (s RefundStatus) String() string {
	switch s {
	case RefundStatusSucceeded:
		return "succeeded"
	case RefundStatusFailed:
		return "failed"
	default:
		return "processing"
	}
}

// RefundStatus maps the Bluesnap refund status onto the canonical refund status.
func (s RefundStatus) RefundStatus() domain.RefundStatus {
	switch s {
	case RefundStatusSucceeded:
		return domain.RefundStatusSuccess
	case RefundStatusFailed:
		return domain.RefundStatusFailure
	default:
		return domain.RefundStatusPending
	}
}

func (s RefundStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *RefundStatus) UnmarshalJSON(data []byte) error {
	switch statusText(data) {
	case "succeeded":
		*s = RefundStatusSucceeded
	case "failed":
		*s = RefundStatusFailed
	default:
		*s = RefundStatusProcessing
	}
	return nil
}

// statusText lowercases a JSON string value. Anything that is not a JSON
// string (null, numbers, objects) yields "".
func statusText(data []byte) string {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(v))
}
