package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
// The in-memory default honors version-conditioned balance updates so the
// services' conflict retry loops can be exercised without a database.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Account, error)
	GetByHandleFunc   func(ctx context.Context, handle string) (*domain.Account, error)
	UpdateBalanceFunc func(ctx context.Context, tx usecase.Transaction, id string, balance, expectedVersion int64, updatedAt time.Time) error
	SetFrozenFunc     func(ctx context.Context, id string, frozen bool, updatedAt time.Time) error
	ListFunc          func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed stores an account directly, bypassing any CreateFunc override.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	m.accounts[account.ID] = &cp
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByHandle(ctx context.Context, handle string) (*domain.Account, error) {
	if m.GetByHandleFunc != nil {
		return m.GetByHandleFunc(ctx, handle)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Handle == handle {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance, expectedVersion int64, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, expectedVersion, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if acc.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	acc.Balance = balance
	acc.Version++
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) SetFrozen(ctx context.Context, id string, frozen bool, updatedAt time.Time) error {
	if m.SetFrozenFunc != nil {
		return m.SetFrozenFunc(ctx, id, frozen, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Frozen = frozen
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Account
	for _, acc := range m.accounts {
		cp := *acc
		out = append(out, &cp)
	}
	return paginate(out, limit, offset), nil
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries []*domain.LedgerEntry

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error
	GetByCorrelationFunc func(ctx context.Context, accountID, correlationID string) (*domain.LedgerEntry, error)
	ListByAccountFunc    func(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error)
	SumByAccountFunc     func(ctx context.Context, accountID string) (int64, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *MockEntryRepository) GetByCorrelation(ctx context.Context, accountID, correlationID string) (*domain.LedgerEntry, error) {
	if m.GetByCorrelationFunc != nil {
		return m.GetByCorrelationFunc(ctx, accountID, correlationID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.AccountID == accountID && e.CorrelationID == correlationID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.AccountID == accountID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return paginate(out, limit, offset), nil
}

func (m *MockEntryRepository) SumByAccount(ctx context.Context, accountID string) (int64, error) {
	if m.SumByAccountFunc != nil {
		return m.SumByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, e := range m.entries {
		if e.AccountID == accountID {
			sum += e.Delta
		}
	}
	return sum, nil
}

// All returns a snapshot of every recorded entry.
func (m *MockEntryRepository) All() []*domain.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.LedgerEntry, 0, len(m.entries))
	for _, e := range m.entries {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

// MockPointRepository is a mock implementation of PointRepository.
type MockPointRepository struct {
	mu       sync.RWMutex
	balances map[string]*domain.PointBalance

	GetFunc     func(ctx context.Context, accountID string) (*domain.PointBalance, error)
	AwardFunc   func(ctx context.Context, tx usecase.Transaction, accountID string, points int64, at time.Time) error
	ConvertFunc func(ctx context.Context, tx usecase.Transaction, accountID string, points int64, at time.Time) error
	ListFunc    func(ctx context.Context, limit, offset int) ([]*domain.PointBalance, error)
}

func NewMockPointRepository() *MockPointRepository {
	return &MockPointRepository{
		balances: make(map[string]*domain.PointBalance),
	}
}

// Seed stores a point balance directly.
func (m *MockPointRepository) Seed(balance *domain.PointBalance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *balance
	m.balances[balance.AccountID] = &cp
}

func (m *MockPointRepository) Get(ctx context.Context, accountID string) (*domain.PointBalance, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if pb, ok := m.balances[accountID]; ok {
		cp := *pb
		return &cp, nil
	}
	return &domain.PointBalance{AccountID: accountID}, nil
}

func (m *MockPointRepository) Award(ctx context.Context, tx usecase.Transaction, accountID string, points int64, at time.Time) error {
	if m.AwardFunc != nil {
		return m.AwardFunc(ctx, tx, accountID, points, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	pb, ok := m.balances[accountID]
	if !ok {
		pb = &domain.PointBalance{AccountID: accountID}
		m.balances[accountID] = pb
	}
	pb.LifetimePoints += points
	pb.AvailablePoints += points
	pb.UpdatedAt = at
	return nil
}

func (m *MockPointRepository) Convert(ctx context.Context, tx usecase.Transaction, accountID string, points int64, at time.Time) error {
	if m.ConvertFunc != nil {
		return m.ConvertFunc(ctx, tx, accountID, points, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	pb, ok := m.balances[accountID]
	if !ok {
		pb = &domain.PointBalance{AccountID: accountID}
		m.balances[accountID] = pb
	}
	if pb.AvailablePoints-points < 0 {
		return domain.ErrInsufficientPoints
	}
	pb.AvailablePoints -= points
	pb.ConvertedPoints += points
	pb.UpdatedAt = at
	return nil
}

func (m *MockPointRepository) List(ctx context.Context, limit, offset int) ([]*domain.PointBalance, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.PointBalance
	for _, pb := range m.balances {
		cp := *pb
		out = append(out, &cp)
	}
	return paginate(out, limit, offset), nil
}

// MockListingRepository is a mock implementation of ListingRepository.
type MockListingRepository struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing

	CreateFunc          func(ctx context.Context, listing *domain.Listing) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.Listing, error)
	UpdateInventoryFunc func(ctx context.Context, tx usecase.Transaction, id string, credits int64, status domain.ListingStatus, expectedVersion int64, updatedAt time.Time) error
	UpdateStatusFunc    func(ctx context.Context, tx usecase.Transaction, id string, status domain.ListingStatus, expectedVersion int64, updatedAt time.Time) error
	ListByStatusFunc    func(ctx context.Context, status domain.ListingStatus, limit, offset int) ([]*domain.Listing, error)
}

func NewMockListingRepository() *MockListingRepository {
	return &MockListingRepository{
		listings: make(map[string]*domain.Listing),
	}
}

// Seed stores a listing directly.
func (m *MockListingRepository) Seed(listing *domain.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *listing
	m.listings[listing.ID] = &cp
}

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, listing)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *listing
	m.listings[listing.ID] = &cp
	return nil
}

func (m *MockListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.listings[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, domain.ErrListingNotFound
}

func (m *MockListingRepository) UpdateInventory(ctx context.Context, tx usecase.Transaction, id string, credits int64, status domain.ListingStatus, expectedVersion int64, updatedAt time.Time) error {
	if m.UpdateInventoryFunc != nil {
		return m.UpdateInventoryFunc(ctx, tx, id, credits, status, expectedVersion, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return domain.ErrListingNotFound
	}
	if l.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	l.CreditAmount = credits
	l.Status = status
	l.Version++
	l.UpdatedAt = updatedAt
	return nil
}

func (m *MockListingRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.ListingStatus, expectedVersion int64, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, expectedVersion, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return domain.ErrListingNotFound
	}
	if l.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	l.Status = status
	l.Version++
	l.UpdatedAt = updatedAt
	return nil
}

func (m *MockListingRepository) ListByStatus(ctx context.Context, status domain.ListingStatus, limit, offset int) ([]*domain.Listing, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Listing
	for _, l := range m.listings {
		if l.Status == status {
			cp := *l
			out = append(out, &cp)
		}
	}
	return paginate(out, limit, offset), nil
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, order *domain.Order) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Order, error)
	GetByIdempotencyKeyFunc func(ctx context.Context, buyerAccountID, key string) (*domain.Order, error)
	UpdateStatusFunc        func(ctx context.Context, tx usecase.Transaction, id string, from, to domain.OrderStatus, settledAt *time.Time) error
	ListStaleFunc           func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Order, error)
	ListByBuyerFunc         func(ctx context.Context, buyerAccountID string, limit, offset int) ([]*domain.Order, error)
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

// Seed stores an order directly.
func (m *MockOrderRepository) Seed(order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	m.orders[order.ID] = &cp
}

func (m *MockOrderRepository) Create(ctx context.Context, tx usecase.Transaction, order *domain.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if o, ok := m.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (m *MockOrderRepository) GetByIdempotencyKey(ctx context.Context, buyerAccountID, key string) (*domain.Order, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, buyerAccountID, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.BuyerAccountID == buyerAccountID && o.IdempotencyKey == key {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, from, to domain.OrderStatus, settledAt *time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, from, to, settledAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != from {
		return domain.ErrInvalidTransition
	}
	o.Status = to
	o.SettledAt = settledAt
	return nil
}

func (m *MockOrderRepository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Order, error) {
	if m.ListStaleFunc != nil {
		return m.ListStaleFunc(ctx, cutoff, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.Status == domain.OrderStatusAwaitingConfirmation && o.CreatedAt.Before(cutoff) {
			cp := *o
			out = append(out, &cp)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockOrderRepository) ListByBuyer(ctx context.Context, buyerAccountID string, limit, offset int) ([]*domain.Order, error) {
	if m.ListByBuyerFunc != nil {
		return m.ListByBuyerFunc(ctx, buyerAccountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.BuyerAccountID == buyerAccountID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return paginate(out, limit, offset), nil
}

// MockConversionRepository is a mock implementation of ConversionRepository.
type MockConversionRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.ConversionRequest

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, req *domain.ConversionRequest) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.ConversionRequest, error)
	GetByIdempotencyKeyFunc func(ctx context.Context, accountID, key string) (*domain.ConversionRequest, error)
	HasMintingFunc          func(ctx context.Context, tx usecase.Transaction, accountID string) (bool, error)
	UpdateStatusFunc        func(ctx context.Context, tx usecase.Transaction, id string, status domain.ConversionStatus, txHash *string, updatedAt time.Time) error
	ListByAccountFunc       func(ctx context.Context, accountID string, limit, offset int) ([]*domain.ConversionRequest, error)
}

func NewMockConversionRepository() *MockConversionRepository {
	return &MockConversionRepository{
		requests: make(map[string]*domain.ConversionRequest),
	}
}

// Seed stores a conversion request directly.
func (m *MockConversionRepository) Seed(req *domain.ConversionRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *req
	m.requests[req.ID] = &cp
}

func (m *MockConversionRepository) Create(ctx context.Context, tx usecase.Transaction, req *domain.ConversionRequest) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *MockConversionRepository) GetByID(ctx context.Context, id string) (*domain.ConversionRequest, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrConversionNotFound
}

func (m *MockConversionRepository) GetByIdempotencyKey(ctx context.Context, accountID, key string) (*domain.ConversionRequest, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, accountID, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.requests {
		if r.AccountID == accountID && r.IdempotencyKey == key {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrConversionNotFound
}

func (m *MockConversionRepository) HasMinting(ctx context.Context, tx usecase.Transaction, accountID string) (bool, error) {
	if m.HasMintingFunc != nil {
		return m.HasMintingFunc(ctx, tx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.requests {
		if r.AccountID != accountID {
			continue
		}
		if r.Status == domain.ConversionStatusRequested || r.Status == domain.ConversionStatusMinting {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockConversionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.ConversionStatus, txHash *string, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, txHash, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return domain.ErrConversionNotFound
	}
	r.Status = status
	if txHash != nil {
		r.ChainTxHash = txHash
	}
	r.UpdatedAt = updatedAt
	return nil
}

func (m *MockConversionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ConversionRequest, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ConversionRequest
	for _, r := range m.requests {
		if r.AccountID == accountID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return paginate(out, limit, offset), nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc  func(ctx context.Context, id string, publishedAt time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *event
	m.events = append(m.events, &cp)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if e.PublishedAt == nil {
			cp := *e
			out = append(out, &cp)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			at := publishedAt
			e.PublishedAt = &at
			return nil
		}
	}
	return domain.ErrEventNotFound
}

// Events returns a snapshot of every recorded event.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, 0, len(m.events))
	for _, e := range m.events {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.RolledBack = true
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator is a mock implementation of IDGenerator. It produces
// deterministic sequential ids.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return fmt.Sprintf("id-%04d", m.next)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu     sync.Mutex
	stored map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		stored: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.stored[key]; ok {
		return true, existing, nil
	}
	m.stored[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored[key] = response
	return nil
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu     sync.Mutex
	stored map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		stored: make(map[string]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.stored[key]; ok {
		return v, nil
	}
	return "", domain.ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stored, key)
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
