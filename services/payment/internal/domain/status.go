package domain

// AttemptStatus is the platform-wide status of a single payment attempt.
// Connectors translate their own vocabulary into it; they never invent new values.
type AttemptStatus string

// Attempt status constants.
const (
	AttemptStatusStarted               AttemptStatus = "started"
	AttemptStatusAuthenticationFailed  AttemptStatus = "authentication_failed"
	AttemptStatusAuthenticationPending AttemptStatus = "authentication_pending"
	AttemptStatusAuthorized            AttemptStatus = "authorized"
	AttemptStatusAuthorizationFailed   AttemptStatus = "authorization_failed"
	AttemptStatusAuthorizing           AttemptStatus = "authorizing"
	AttemptStatusCharged               AttemptStatus = "charged"
	AttemptStatusCaptureInitiated      AttemptStatus = "capture_initiated"
	AttemptStatusVoided                AttemptStatus = "voided"
	AttemptStatusPending               AttemptStatus = "pending"
	AttemptStatusFailure               AttemptStatus = "failure"
)

// ValidAttemptStatuses returns all valid attempt statuses.
func ValidAttemptStatuses() []AttemptStatus {
	return []AttemptStatus{
		AttemptStatusStarted,
		AttemptStatusAuthenticationFailed,
		AttemptStatusAuthenticationPending,
		AttemptStatusAuthorized,
		AttemptStatusAuthorizationFailed,
		AttemptStatusAuthorizing,
		AttemptStatusCharged,
		AttemptStatusCaptureInitiated,
		AttemptStatusVoided,
		AttemptStatusPending,
		AttemptStatusFailure,
	}
}

// IsValid checks whether the status is one of the known attempt statuses.
func (s AttemptStatus) IsValid() bool {
	for _, v := range ValidAttemptStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further connector call can change the attempt.
func (s AttemptStatus) IsTerminal() bool {
	switch s {
	case AttemptStatusCharged, AttemptStatusFailure, AttemptStatusVoided,
		AttemptStatusAuthorizationFailed, AttemptStatusAuthenticationFailed:
		return true
	default:
		return false
	}
}

// RefundStatus is the platform-wide status of a refund.
type RefundStatus string

// Refund status constants.
const (
	RefundStatusPending            RefundStatus = "pending"
	RefundStatusSuccess            RefundStatus = "success"
	RefundStatusFailure            RefundStatus = "failure"
	RefundStatusManualReview       RefundStatus = "manual_review"
	RefundStatusTransactionFailure RefundStatus = "transaction_failure"
)

// ValidRefundStatuses returns all valid refund statuses.
func ValidRefundStatuses() []RefundStatus {
	return []RefundStatus{
		RefundStatusPending,
		RefundStatusSuccess,
		RefundStatusFailure,
		RefundStatusManualReview,
		RefundStatusTransactionFailure,
	}
}

// IsValid checks whether the status is one of the known refund statuses.
func (s RefundStatus) IsValid() bool {
	for _, v := range ValidRefundStatuses() {
		if v == s {
			return true
		}
	}
	return false
}
