package domain

// ConnectorAuthType is the closed set of credential shapes a merchant can
// configure for a connector. Each connector accepts a subset of the variants.
type ConnectorAuthType interface {
	AuthType() string
	isConnectorAuthType()
}

// HeaderKey carries a single key sent as a request header.
type HeaderKey struct {
	APIKey string
}

// BodyKey carries a primary key plus a secondary key.
type BodyKey struct {
	APIKey string
	Key1   string
}

// SignatureKey carries a key pair and a secret used for request signing.
type SignatureKey struct {
	APIKey    string
	Key1      string
	APISecret string
}

// NoKey marks a connector that needs no credentials.
type NoKey struct{}

func (HeaderKey) isConnectorAuthType()    {}
func (BodyKey) isConnectorAuthType()      {}
func (SignatureKey) isConnectorAuthType() {}
func (NoKey) isConnectorAuthType()        {}

// AuthType returns the variant name.
func (HeaderKey) AuthType() string { return "header_key" }

// AuthType returns the variant name.
func (BodyKey) AuthType() string { return "body_key" }

// AuthType returns the variant name.
func (SignatureKey) AuthType() string { return "signature_key" }

// AuthType returns the variant name.
func (NoKey) AuthType() string { return "no_key" }
