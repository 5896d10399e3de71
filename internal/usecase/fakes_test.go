package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"camerastore/internal/domain/model"
	"camerastore/internal/infra/events"
	"camerastore/internal/infra/payment"
	repo "camerastore/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// in-memory store（トランザクションは失敗時に巻き戻す）
// =====================

type memStore struct {
	mu       sync.Mutex
	orders   map[int64]model.Order
	counters map[string]int64
	audits   []model.AuditLog
	nextID   int64

	// merchant uidの事前チェックをすり抜けさせる（同時実行の再現）
	skipMerchantLookup bool
}

func newMemStore() *memStore {
	return &memStore{
		orders:   map[int64]model.Order{},
		counters: map[string]int64{},
	}
}

func (s *memStore) snapshot() (map[int64]model.Order, map[string]int64, int, int64) {
	orders := make(map[int64]model.Order, len(s.orders))
	for k, v := range s.orders {
		orders[k] = v
	}
	counters := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		counters[k] = v
	}
	return orders, counters, len(s.audits), s.nextID
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	orders, counters, audits, nextID := s.snapshot()
	if err := fn(s); err != nil {
		s.orders, s.counters, s.audits, s.nextID = orders, counters, s.audits[:audits], nextID
		return err
	}
	return nil
}

func (s *memStore) Orders() repo.OrderRepository                { return s }
func (s *memStore) OrderCounters() repo.OrderCounterRepository { return counterRepo{s} }
func (s *memStore) AuditLogs() repo.AuditLogRepository         { return auditRepo{s} }

func (s *memStore) Create(ctx context.Context, o *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ex := range s.orders {
		if ex.OrderNumber == o.OrderNumber {
			return repo.ErrDuplicateKey
		}
		if o.Payment.MerchantOrderID != nil && ex.Payment.MerchantOrderID != nil &&
			*ex.Payment.MerchantOrderID == *o.Payment.MerchantOrderID {
			return repo.ErrDuplicateKey
		}
	}

	s.nextID++
	o.ID = s.nextID
	now := time.Now()
	o.CreatedAt = now.Add(time.Duration(o.ID) * time.Millisecond)
	o.UpdatedAt = o.CreatedAt
	items := make([]model.OrderItem, len(o.Items))
	for i, it := range o.Items {
		it.ID = int64(i + 1)
		it.OrderID = o.ID
		items[i] = it
	}
	o.Items = items
	s.orders[o.ID] = *o
	return nil
}

func (s *memStore) FindByID(ctx context.Context, id int64) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (s *memStore) FindByMerchantOrderID(ctx context.Context, merchantID string) (model.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.skipMerchantLookup {
		return model.Order{}, false, nil
	}
	for _, o := range s.orders {
		if o.Payment.MerchantOrderID != nil && *o.Payment.MerchantOrderID == merchantID {
			return o, true, nil
		}
	}
	return model.Order{}, false, nil
}

func (s *memStore) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Order{}
	for _, o := range s.orders {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) Update(ctx context.Context, id int64, c repo.OrderChanges) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return repo.ErrNotFound
	}
	if c.Status != nil {
		o.Status = *c.Status
	}
	if c.PaymentStatus != nil {
		o.Payment.Status = *c.PaymentStatus
	}
	if c.PaymentMethod != nil {
		m := *c.PaymentMethod
		o.Payment.Method = &m
	}
	if c.PaidAt != nil {
		t := *c.PaidAt
		o.Payment.PaidAt = &t
	}
	if c.OrderMemo != nil {
		o.OrderMemo = *c.OrderMemo
	}
	if c.AdminMemo != nil {
		o.AdminMemo = *c.AdminMemo
	}
	s.orders[id] = o
	return nil
}

func (s *memStore) UpdateStatusGuard(ctx context.Context, id int64, from, to model.OrderStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	s.orders[id] = o
	return true, nil
}

func (s *memStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

type counterRepo struct{ s *memStore }

func (r counterRepo) Next(ctx context.Context, day string) (int64, error) {
	r.s.counters[day]++
	return r.s.counters[day], nil
}

type auditRepo struct{ s *memStore }

func (r auditRepo) Create(ctx context.Context, l model.AuditLog) error {
	r.s.audits = append(r.s.audits, l)
	return nil
}

func (r auditRepo) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	return r.s.audits, nil
}

// =====================
// cart / product
// =====================

type memCart struct {
	items    map[int64][]model.CartItem
	clearErr error
}

func newMemCart() *memCart {
	return &memCart{items: map[int64][]model.CartItem{}}
}

func (c *memCart) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	return append([]model.CartItem{}, c.items[userID]...), nil
}

func (c *memCart) AddQuantity(ctx context.Context, userID, productID, qty int64) error {
	for i, it := range c.items[userID] {
		if it.ProductID == productID {
			c.items[userID][i].Quantity += qty
			return nil
		}
	}
	c.items[userID] = append(c.items[userID], model.CartItem{UserID: userID, ProductID: productID, Quantity: qty})
	return nil
}

func (c *memCart) SetQuantity(ctx context.Context, userID, productID, qty int64) error {
	for i, it := range c.items[userID] {
		if it.ProductID == productID {
			c.items[userID][i].Quantity = qty
			return nil
		}
	}
	return repo.ErrNotFound
}

func (c *memCart) Delete(ctx context.Context, userID, productID int64) error {
	items := c.items[userID]
	for i, it := range items {
		if it.ProductID == productID {
			c.items[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (c *memCart) DeleteAllByUserID(ctx context.Context, userID int64) error {
	if c.clearErr != nil {
		return c.clearErr
	}
	delete(c.items, userID)
	return nil
}

type memProducts struct {
	byID   map[int64]model.Product
	nextID int64
}

func newMemProducts(ps ...model.Product) *memProducts {
	m := &memProducts{byID: map[int64]model.Product{}}
	for _, p := range ps {
		m.byID[p.ID] = p
		if p.ID > m.nextID {
			m.nextID = p.ID
		}
	}
	return m
}

func (m *memProducts) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	out := []model.Product{}
	for _, p := range m.byID {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (m *memProducts) Create(ctx context.Context, p model.Product) (model.Product, error) {
	for _, ex := range m.byID {
		if ex.ProductNumber == p.ProductNumber {
			return model.Product{}, repo.ErrDuplicateKey
		}
	}
	m.nextID++
	p.ID = m.nextID
	m.byID[p.ID] = p
	return p, nil
}

// =====================
// gateway / publisher mocks
// =====================

type verifierMock struct{ mock.Mock }

func (m *verifierMock) VerifyPayment(ctx context.Context, txID string, expected int64) (payment.Transaction, error) {
	args := m.Called(ctx, txID, expected)
	tx, _ := args.Get(0).(payment.Transaction)
	return tx, args.Error(1)
}

type publisherMock struct{ mock.Mock }

func (m *publisherMock) Publish(ctx context.Context, ev events.OrderEvent) error {
	args := m.Called(ev.Type)
	return args.Error(0)
}
