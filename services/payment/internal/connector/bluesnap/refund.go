package bluesnap

import (
	"github.com/utafrali/EcommerceGo/services/payment/internal/connector"
	"github.com/utafrali/EcommerceGo/services/payment/internal/domain"
)

// RefundRequest is the body of a Bluesnap refund. It is serialised as {} until
// refunds are supported.
type RefundRequest struct{}

// RefundResponse is a Bluesnap refund reply. It decodes from {} until refunds
// are supported.
type RefundResponse struct{}

// NewRefundRequest builds a Bluesnap refund. Refunds are not supported yet.
func NewRefundRequest(_ *domain.RefundsRouterData) (*RefundRequest, error) {
	return nil, connector.NotImplemented(Name, "refund")
}

// ExecuteRouterData applies a refund reply to the envelope. Refunds are not
// supported yet.
func (r *RefundResponse) ExecuteRouterData(_ domain.RefundsRouterData) (domain.RefundsRouterData, error) {
	return domain.RefundsRouterData{}, connector.NotImplemented(Name, "refund")
}

// SyncRouterData applies a refund sync reply to the envelope. Refunds are not
// supported yet.
func (r *RefundResponse) SyncRouterData(_ domain.RefundsRouterData) (domain.RefundsRouterData, error) {
	return domain.RefundsRouterData{}, connector.NotImplemented(Name, "refund_sync")
}
