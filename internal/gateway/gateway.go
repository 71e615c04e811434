// Package gateway wraps the external payment providers behind one contract.
// Each provider owns its own payload shape, amount-unit conversion and success
// predicate; callers always work in minor currency units.
package gateway

import (
	"context"
	"fmt"
	"net/url"

	"crowdfund/internal/domain"
)

// InitializeRequest carries everything a provider needs to open a charge.
// AmountInt is the charged total in minor units: the stored donation amount
// plus the platform's fixed fee.
type InitializeRequest struct {
	AmountInt  int64
	DonationID string
	CommentID  string
	Email      string
	Phone      string
	FullName   string
}

// InitializeResult is the normalized outcome of a successful charge setup.
type InitializeResult struct {
	AuthorizationURL string
}

// Callback is the provider-specific redirect payload reduced to what the
// reconciler needs before verification.
type Callback struct {
	Reference string
	Cancelled bool
}

// TransactionRecord is the authoritative provider state fetched by Verify.
// Succeeded reflects the provider's own success predicate; DonationID and
// CommentID are the opaque metadata echoed back by the provider.
type TransactionRecord struct {
	Reference  string
	Channel    string
	AmountInt  int64
	DonationID string
	CommentID  string
	Succeeded  bool
	Cancelled  bool
	Message    string
}

// Client is the uniform capability each provider integration satisfies.
type Client interface {
	Name() domain.GatewayName
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*TransactionRecord, error)
	ParseCallback(query url.Values) (*Callback, error)
}

// Registry resolves a donor's gateway selection to a configured client.
type Registry struct {
	clients map[domain.GatewayName]Client
	order   []domain.GatewayName
}

func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[domain.GatewayName]Client, len(clients))}
	for _, c := range clients {
		if _, dup := r.clients[c.Name()]; dup {
			continue
		}
		r.clients[c.Name()] = c
		r.order = append(r.order, c.Name())
	}
	return r
}

func (r *Registry) Get(name domain.GatewayName) (Client, error) {
	c, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("unsupported payment gateway %q", name)
	}
	return c, nil
}

// Names returns the registered gateways in registration order, for UI listing.
func (r *Registry) Names() []domain.GatewayName {
	out := make([]domain.GatewayName, len(r.order))
	copy(out, r.order)
	return out
}
