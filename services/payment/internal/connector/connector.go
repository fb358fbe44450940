package connector

import (
	"context"
	"sort"
	"sync"

	"github.com/utafrali/EcommerceGo/services/payment/internal/domain"
)

// Connector defines the interface for payment processor integrations.
// Implementations translate the router envelope to the processor's wire
// format and back; they never keep per-payment state.
type Connector interface {
	// Name returns the connector name (e.g., "bluesnap").
	Name() string

	// Authorize submits a payment for authorization and returns the updated envelope.
	Authorize(ctx context.Context, rd *domain.PaymentsAuthorizeRouterData) (domain.PaymentsAuthorizeRouterData, error)

	// Refund executes a refund and returns the updated envelope.
	Refund(ctx context.Context, rd *domain.RefundsRouterData) (domain.RefundsRouterData, error)

	// RefundSync fetches the current state of a refund and returns the updated envelope.
	RefundSync(ctx context.Context, rd *domain.RefundsRouterData) (domain.RefundsRouterData, error)
}

// Registry holds the configured connectors by name.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
}

// NewRegistry creates a registry holding the given connectors.
func NewRegistry(connectors ...Connector) *Registry {
	r := &Registry{connectors: make(map[string]Connector, len(connectors))}
	for _, c := range connectors {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a connector under its name.
func (r *Registry) Register(c Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[c.Name()] = c
}

// Get returns the connector registered under name.
func (r *Registry) Get(name string) (Connector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[name]
	return c, ok
}

// Names returns the registered connector names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.connectors))
	for name := range r.connectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
