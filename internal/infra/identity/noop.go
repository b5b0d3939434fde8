package identity

import (
	"context"
	"sync"

	"expense-ltd/internal/domain"
	"expense-ltd/internal/domain/ports/adapter"
)

var _ adapter.IdentityProvider = (*NoopProvider)(nil)

// NoopProvider is a simple in-memory identity provider for dev mode and tests.
// Tokens are taken verbatim as user ids; metadata updates are recorded.
type NoopProvider struct {
	mu       sync.Mutex
	Metadata map[string]adapter.EntitlementFields
}

func NewNoopProvider() *NoopProvider {
	return &NoopProvider{
		Metadata: make(map[string]adapter.EntitlementFields),
	}
}

func (p *NoopProvider) VerifyToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrUserNotAuthenticated
	}
	return token, nil
}

func (p *NoopProvider) UpdateUserMetadata(ctx context.Context, userID string, fields adapter.EntitlementFields) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Metadata[userID] = fields
	return nil
}
