package httpclient

import "fmt"

// maxErrorMessageBody caps how much of the body Error includes.
const maxErrorMessageBody = 512

// ServerError is returned by CircuitBreakerClient for a 5xx reply. It keeps the
// status and body so callers can still translate the provider's error payload.
type ServerError struct {
	StatusCode int
	Body       []byte
}

func (e *ServerError) Error() string {
	if len(e.Body) > maxErrorMessageBody {
		return fmt.Sprintf("server error %d: %s... (%d bytes truncated)",
			e.StatusCode, e.Body[:maxErrorMessageBody], len(e.Body)-maxErrorMessageBody)
	}
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Body)
}
