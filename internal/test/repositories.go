package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
	"github.com/polkiloo/digistore/internal/domain/repository"
)

// MemoryStore is an in-memory repository.Store. Transactions are serialised
// and their writes are discarded when fn returns an error.
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data *memoryData

	// Fail injects an error for an operation such as "audit.Append".
	Fail map[string]error
	// Now stamps created rows.
	Now func() time.Time
}

type memoryData struct {
	products map[int64]model.Product
	keys     []model.KeyUnit
	orders   map[int64]model.Order
	tokens   []model.DownloadToken
	audit    []model.AuditEntry
	admins   map[string]model.Admin
	nextID   int64
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: &memoryData{
			products: make(map[int64]model.Product),
			orders:   make(map[int64]model.Order),
			admins:   make(map[string]model.Admin),
		},
		Now: time.Now,
	}
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		products: make(map[int64]model.Product, len(d.products)),
		keys:     append([]model.KeyUnit(nil), d.keys...),
		orders:   make(map[int64]model.Order, len(d.orders)),
		tokens:   append([]model.DownloadToken(nil), d.tokens...),
		audit:    append([]model.AuditEntry(nil), d.audit...),
		admins:   make(map[string]model.Admin, len(d.admins)),
		nextID:   d.nextID,
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.admins {
		c.admins[k] = v
	}
	return c
}

func (s *MemoryStore) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

func (s *MemoryStore) fail(op string) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail[op]
}

// WithinTransaction runs fn with exclusive access and rolls back on error.
func (s *MemoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Factory) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) Products() repository.ProductRepository { return memoryProducts{s} }

func (s *MemoryStore) Keys() repository.KeyRepository { return memoryKeys{s} }

func (s *MemoryStore) Orders() repository.OrderRepository { return memoryOrders{s} }

func (s *MemoryStore) Tokens() repository.TokenRepository { return memoryTokens{s} }

func (s *MemoryStore) Audit() repository.AuditRepository { return memoryAudit{s} }

func (s *MemoryStore) Admins() repository.AdminRepository { return memoryAdmins{s} }

// AddProduct stores p and returns its id. Key products get their stock
// synchronised when keys are added.
func (s *MemoryStore) AddProduct(p model.Product) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.Now()
	}
	s.data.products[p.ID] = p
	return p.ID
}

// AddKeys appends unused keys in FIFO order and refreshes the product stock.
func (s *MemoryStore) AddKeys(productID int64, values ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range values {
		s.data.keys = append(s.data.keys, model.KeyUnit{ID: s.id(), ProductID: productID, Value: v, CreatedAt: s.Now()})
	}
	s.syncKeyStock(productID)
}

// AddOrder stores a pending order and returns its id.
func (s *MemoryStore) AddOrder(o model.Order) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.id()
	}
	if o.Status == "" {
		o.Status = model.OrderStatusPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.Now()
	}
	s.data.orders[o.ID] = o
	return o.ID
}

// AddToken stores a token as is.
func (s *MemoryStore) AddToken(t model.DownloadToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = s.id()
	}
	s.data.tokens = append(s.data.tokens, t)
}

// Product returns the stored product.
func (s *MemoryStore) Product(id int64) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.products[id]
}

// Order returns the stored order.
func (s *MemoryStore) Order(id int64) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.orders[id]
}

// KeysOf returns every key of a product in FIFO order.
func (s *MemoryStore) KeysOf(productID int64) []model.KeyUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.KeyUnit
	for _, k := range s.data.keys {
		if k.ProductID == productID {
			out = append(out, k)
		}
	}
	return out
}

// UnusedKeys counts the unused keys of a product.
func (s *MemoryStore) UnusedKeys(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unusedKeys(productID)
}

// TokensOf returns the tokens issued for an order.
func (s *MemoryStore) TokensOf(orderID int64) []model.DownloadToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.DownloadToken
	for _, t := range s.data.tokens {
		if t.OrderID == orderID {
			out = append(out, t)
		}
	}
	return out
}

// AuditOf returns the audit entries of an order.
func (s *MemoryStore) AuditOf(orderID int64) []model.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AuditEntry
	for _, e := range s.data.audit {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out
}

func (s *MemoryStore) unusedKeys(productID int64) int {
	n := 0
	for _, k := range s.data.keys {
		if k.ProductID == productID && !k.IsUsed {
			n++
		}
	}
	return n
}

func (s *MemoryStore) syncKeyStock(productID int64) (int, error) {
	p, ok := s.data.products[productID]
	if !ok {
		return 0, domainErrors.ErrNotFound
	}
	p.StockCount = s.unusedKeys(productID)
	s.data.products[productID] = p
	return p.StockCount, nil
}

func (s *MemoryStore) details(o model.Order) *model.OrderDetails {
	return &model.OrderDetails{Order: o, Product: s.data.products[o.ProductID]}
}

type memoryProducts struct{ s *MemoryStore }

func (r memoryProducts) Get(ctx context.Context, id int64) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.Get"); err != nil {
		return nil, err
	}
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &p, nil
}

func (r memoryProducts) Lock(ctx context.Context, id int64) (*model.Product, error) {
	return r.Get(ctx, id)
}

func (r memoryProducts) DecrementStock(ctx context.Context, id int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.products[id]
	if !ok {
		return 0, domainErrors.ErrNotFound
	}
	if p.StockCount > 0 {
		p.StockCount--
	}
	r.s.data.products[id] = p
	return p.StockCount, nil
}

func (r memoryProducts) SyncKeyStock(ctx context.Context, id int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.syncKeyStock(id)
}

type memoryKeys struct{ s *MemoryStore }

func (r memoryKeys) ClaimOldest(ctx context.Context, productID, orderID int64) (*model.KeyUnit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("keys.ClaimOldest"); err != nil {
		return nil, err
	}
	for i := range r.s.data.keys {
		k := &r.s.data.keys[i]
		if k.ProductID != productID || k.IsUsed {
			continue
		}
		now := r.s.Now()
		id := orderID
		k.IsUsed = true
		k.UsedByOrderID = &id
		k.UsedAt = &now
		claimed := *k
		return &claimed, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (r memoryKeys) GetByOrder(ctx context.Context, orderID int64) (*model.KeyUnit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, k := range r.s.data.keys {
		if k.UsedByOrderID != nil && *k.UsedByOrderID == orderID {
			return &k, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memoryKeys) Insert(ctx context.Context, productID int64, values []string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing := make(map[string]struct{})
	for _, k := range r.s.data.keys {
		if k.ProductID == productID {
			existing[k.Value] = struct{}{}
		}
	}
	added := 0
	for _, v := range values {
		if _, dup := existing[v]; dup {
			continue
		}
		existing[v] = struct{}{}
		r.s.data.keys = append(r.s.data.keys, model.KeyUnit{ID: r.s.id(), ProductID: productID, Value: v, CreatedAt: r.s.Now()})
		added++
	}
	return added, nil
}

func (r memoryKeys) DeleteUnused(ctx context.Context, id int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, k := range r.s.data.keys {
		if k.ID != id {
			continue
		}
		if k.IsUsed {
			return 0, domainErrors.ErrKeyInUse
		}
		r.s.data.keys = append(r.s.data.keys[:i:i], r.s.data.keys[i+1:]...)
		return k.ProductID, nil
	}
	return 0, domainErrors.ErrNotFound
}

type memoryOrders struct{ s *MemoryStore }

func (r memoryOrders) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("orders.Create"); err != nil {
		return nil, err
	}
	o := *order
	o.ID = r.s.id()
	o.Status = model.OrderStatusPending
	o.CreatedAt = r.s.Now()
	r.s.data.orders[o.ID] = o
	return &o, nil
}

func (r memoryOrders) Get(ctx context.Context, id int64) (*model.OrderDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return r.s.details(o), nil
}

func (r memoryOrders) GetForUpdate(ctx context.Context, id int64) (*model.OrderDetails, error) {
	return r.Get(ctx, id)
}

func (r memoryOrders) MarkConfirmed(ctx context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok || o.Status != model.OrderStatusPending {
		return domainErrors.ErrNotPending
	}
	o.Status = model.OrderStatusConfirmed
	o.ConfirmedAt = &at
	r.s.data.orders[id] = o
	return nil
}

func (r memoryOrders) MarkRejected(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok || o.Status != model.OrderStatusPending {
		return domainErrors.ErrNotPending
	}
	o.Status = model.OrderStatusRejected
	r.s.data.orders[id] = o
	return nil
}

func (r memoryOrders) SetReceiptPath(ctx context.Context, id int64, path string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.ReceiptPath = path
	r.s.data.orders[id] = o
	return nil
}

func (r memoryOrders) List(ctx context.Context, status model.OrderStatus, limit int) ([]model.OrderDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.OrderDetails
	for _, o := range r.s.data.orders {
		if status == "" || o.Status == status {
			out = append(out, *r.s.details(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memoryTokens struct{ s *MemoryStore }

func (r memoryTokens) Create(ctx context.Context, token *model.DownloadToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tokens.Create"); err != nil {
		return err
	}
	for _, t := range r.s.data.tokens {
		if t.Token == token.Token {
			return domainErrors.ErrAlreadyExists
		}
	}
	token.ID = r.s.id()
	r.s.data.tokens = append(r.s.data.tokens, *token)
	return nil
}

func (r memoryTokens) GetForUpdate(ctx context.Context, token string) (*model.DownloadToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.data.tokens {
		if t.Token == token {
			t.ProductName = r.s.data.products[t.ProductID].Name
			return &t, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memoryTokens) RecordDownload(ctx context.Context, id int64, at time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.data.tokens {
		t := &r.s.data.tokens[i]
		if t.ID == id {
			t.DownloadCount++
			used := at
			t.UsedAt = &used
			return t.DownloadCount, nil
		}
	}
	return 0, domainErrors.ErrNotFound
}

func (r memoryTokens) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tokens.DeleteExpired"); err != nil {
		return 0, err
	}
	kept := r.s.data.tokens[:0:0]
	var removed int64
	for _, t := range r.s.data.tokens {
		if t.ExpiredAt(cutoff) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	r.s.data.tokens = kept
	return removed, nil
}

func (r memoryTokens) List(ctx context.Context, limit int) ([]model.TokenListing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.TokenListing
	for i := len(r.s.data.tokens) - 1; i >= 0; i-- {
		t := r.s.data.tokens[i]
		t.ProductName = r.s.data.products[t.ProductID].Name
		out = append(out, model.TokenListing{DownloadToken: t, BuyerName: r.s.data.orders[t.OrderID].BuyerName})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type memoryAudit struct{ s *MemoryStore }

func (r memoryAudit) Append(ctx context.Context, entry model.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("audit.Append"); err != nil {
		return err
	}
	entry.ID = r.s.id()
	entry.CreatedAt = r.s.Now()
	r.s.data.audit = append(r.s.data.audit, entry)
	return nil
}

func (r memoryAudit) ListByOrder(ctx context.Context, orderID int64) ([]model.AuditEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.AuditEntry
	for _, e := range r.s.data.audit {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memoryAdmins struct{ s *MemoryStore }

func (r memoryAdmins) Create(ctx context.Context, username, passwordHash string) (*model.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("admins.Create"); err != nil {
		return nil, err
	}
	if _, exists := r.s.data.admins[username]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	a := model.Admin{ID: r.s.id(), Username: username, PasswordHash: passwordHash, CreatedAt: r.s.Now()}
	r.s.data.admins[username] = a
	return &a, nil
}

func (r memoryAdmins) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("admins.GetByUsername"); err != nil {
		return nil, err
	}
	a, ok := r.s.data.admins[username]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &a, nil
}

var _ repository.Store = (*MemoryStore)(nil)
