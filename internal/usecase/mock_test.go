//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"expense-ltd/internal/domain"
	"expense-ltd/internal/domain/model"
	"expense-ltd/internal/domain/ports/adapter"
	"expense-ltd/internal/domain/ports/repository"
)

// ---- Mock CodeRepository ----

type MockCodeRepo struct {
	mu    sync.RWMutex
	store map[string]*model.LTDCode // keyed by canonical code

	SaveFunc       func(ctx context.Context, tx repository.Tx, code *model.LTDCode) error
	FindByCodeFunc func(ctx context.Context, tx repository.Tx, code string) (*model.LTDCode, error)
}

var _ repository.CodeRepository = (*MockCodeRepo)(nil)

func NewMockCodeRepo() *MockCodeRepo {
	return &MockCodeRepo{store: make(map[string]*model.LTDCode)}
}

func (m *MockCodeRepo) Create(ctx context.Context, tx repository.Tx, code *model.LTDCode) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[code.Code]; ok {
		return false, nil
	}
	cp := *code
	m.store[code.Code] = &cp
	return true, nil
}

func (m *MockCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.LTDCode) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *code
	m.store[code.Code] = &cp
	return nil
}

func (m *MockCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.LTDCode, error) {
	if m.FindByCodeFunc != nil {
		return m.FindByCodeFunc(ctx, tx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCodeRepo) CountByStatus(ctx context.Context) (map[model.CodeStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.CodeStatus]int)
	for _, c := range m.store {
		out[c.Status]++
	}
	return out, nil
}

// ---- Mock RedemptionRepository ----

// MockRedemptionRepo keeps the ledger under one mutex so concurrent Claim
// calls in tests behave like the unique index does in Postgres.
type MockRedemptionRepo struct {
	mu    sync.Mutex
	store map[string]*model.Redemption // keyed by code

	ClaimFunc func(ctx context.Context, tx repository.Tx, r *model.Redemption) error
}

var _ repository.RedemptionRepository = (*MockRedemptionRepo)(nil)

func NewMockRedemptionRepo() *MockRedemptionRepo {
	return &MockRedemptionRepo{store: make(map[string]*model.Redemption)}
}

func (m *MockRedemptionRepo) Claim(ctx context.Context, tx repository.Tx, r *model.Redemption) error {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, tx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[r.Code]; ok {
		return domain.ErrCodeAlreadyRedeemed
	}
	cp := *r
	m.store[r.Code] = &cp
	return nil
}

func (m *MockRedemptionRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Redemption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.store[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockRedemptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Redemption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Redemption
	for _, r := range m.store {
		if r.UserID == userID && r.Status == model.RedemptionStatusActive {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu    sync.Mutex
	store map[string]*model.Subscription // keyed by subscription id

	SaveFunc   func(ctx context.Context, tx repository.Tx, sub *model.Subscription) error
	DeleteFunc func(ctx context.Context, tx repository.Tx, id string) error
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{store: make(map[string]*model.Subscription)}
}

func (m *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, sub)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.store[sub.ID] = &cp
	return nil
}

func (m *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSubscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.store {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubscriptionRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MockSubscriptionRepo) LockUser(ctx context.Context, tx repository.Tx, userID string) error {
	return nil
}

func (m *MockSubscriptionRepo) CountActiveByPlan(ctx context.Context) (map[model.PlanType]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[model.PlanType]int)
	for _, s := range m.store {
		if s.Status == model.SubscriptionStatusActive {
			out[s.PlanType]++
		}
	}
	return out, nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

// WithTx provides a way to control transaction behavior during tests.
// By default, it runs the function immediately without a real transaction.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- Mock IdentityProvider ----

type MockIdentity struct {
	mu      sync.Mutex
	Updates map[string]adapter.EntitlementFields

	VerifyTokenFunc        func(ctx context.Context, token string) (string, error)
	UpdateUserMetadataFunc func(ctx context.Context, userID string, fields adapter.EntitlementFields) error
}

var _ adapter.IdentityProvider = (*MockIdentity)(nil)

func NewMockIdentity() *MockIdentity {
	return &MockIdentity{Updates: make(map[string]adapter.EntitlementFields)}
}

func (m *MockIdentity) VerifyToken(ctx context.Context, token string) (string, error) {
	if m.VerifyTokenFunc != nil {
		return m.VerifyTokenFunc(ctx, token)
	}
	if token == "" {
		return "", domain.ErrUserNotAuthenticated
	}
	return token, nil
}

func (m *MockIdentity) UpdateUserMetadata(ctx context.Context, userID string, fields adapter.EntitlementFields) error {
	if m.UpdateUserMetadataFunc != nil {
		return m.UpdateUserMetadataFunc(ctx, userID, fields)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates[userID] = fields
	return nil
}

// ---- Mock IdempotencyCache ----

type MockIdemCache struct {
	mu    sync.Mutex
	store map[string]*model.RedemptionResult
}

func NewMockIdemCache() *MockIdemCache {
	return &MockIdemCache{store: make(map[string]*model.RedemptionResult)}
}

func (m *MockIdemCache) Get(ctx context.Context, code, userID string) (*model.RedemptionResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.store[code+"|"+userID]
	return res, ok, nil
}

func (m *MockIdemCache) Put(ctx context.Context, code, userID string, res *model.RedemptionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *res
	m.store[code+"|"+userID] = &cp
	return nil
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
