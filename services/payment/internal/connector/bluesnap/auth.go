package bluesnap

import (
	"fmt"

	"github.com/utafrali/EcommerceGo/services/payment/internal/connector"
	"github.com/utafrali/EcommerceGo/services/payment/internal/domain"
)

// AuthType holds the credentials Bluesnap needs.
type AuthType struct {
	APIKey string
}

// NewAuthType extracts Bluesnap credentials from a connector auth configuration.
// Only the body-key variant is accepted; its secondary key is not used.
func NewAuthType(auth domain.ConnectorAuthType) (AuthType, error) {
	switch a := auth.(type) {
	case domain.BodyKey:
		return AuthType{APIKey: a.APIKey}, nil
	case *domain.BodyKey:
		if a == nil {
			return AuthType{}, connector.FailedToObtainAuthType(Name, "nil body_key")
		}
		return AuthType{APIKey: a.APIKey}, nil
	case nil:
		return AuthType{}, connector.FailedToObtainAuthType(Name, "none")
	default:
		return AuthType{}, connector.FailedToObtainAuthType(Name, fmt.Sprintf("%T", a))
	}
}
