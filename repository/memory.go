package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pos-service/models"
)

// MemoryStore implements every repository interface against process memory.
// It backs demo mode (no MONGO_URI configured) and the test suite. One
// mutex guards the whole store, so a decrement validates every line and
// applies them under a single critical section.
type MemoryStore struct {
	mu        sync.RWMutex
	products  map[string]models.Product
	customers map[string]models.Customer
	sales     []models.Sale
	saleIDs   map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:  make(map[string]models.Product),
		customers: make(map[string]models.Customer),
		saleIDs:   make(map[string]struct{}),
	}
}

// --- ProductRepository ---

func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) Find(_ context.Context, filter ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Product
	for _, p := range s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !matchesSearch(p, filter.Search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func matchesSearch(p models.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) || p.Barcode == term
}

func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

func (s *MemoryStore) CountLowStock(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.products {
		if p.StockQuantity <= p.ReorderLevel {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Create(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryStore) DecrementStock(_ context.Context, items []models.SaleItemInput) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate every line before touching anything.
	for _, it := range items {
		p, ok := s.products[it.ProductID]
		if !ok {
			return nil, &StockShortageError{ProductID: it.ProductID, Requested: it.Quantity, Available: 0}
		}
		if p.StockQuantity < it.Quantity {
			return nil, &StockShortageError{
				ProductID: it.ProductID,
				Requested: it.Quantity,
				Available: p.StockQuantity,
			}
		}
	}

	newQuantities := make(map[string]int, len(items))
	for _, it := range items {
		p := s.products[it.ProductID]
		p.StockQuantity -= it.Quantity
		p.UpdatedAt = time.Now().UTC()
		s.products[it.ProductID] = p
		newQuantities[it.ProductID] = p.StockQuantity
	}
	return newQuantities, nil
}

func (s *MemoryStore) RestoreStock(_ context.Context, items []models.SaleItemInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		p, ok := s.products[it.ProductID]
		if !ok {
			continue
		}
		p.StockQuantity += it.Quantity
		p.UpdatedAt = time.Now().UTC()
		s.products[it.ProductID] = p
	}
	return nil
}

func (s *MemoryStore) Replenish(_ context.Context, id string, qty int) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.StockQuantity += qty
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p
	return &p, nil
}

// --- SaleRepository ---

func (s *MemoryStore) CreateSale(_ context.Context, sale *models.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, *sale)
	s.saleIDs[sale.ID] = struct{}{}
	return nil
}

func (s *MemoryStore) FindSince(_ context.Context, since time.Time) ([]models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Sale
	for _, sale := range s.sales {
		if !sale.CreatedAt.Before(since) {
			out = append(out, sale)
		}
	}
	return out, nil
}

// Sales adapts the store to SaleRepository; the method set differs from
// ProductRepository only in Create.
func (s *MemoryStore) Sales() SaleRepository {
	return &memorySales{store: s}
}

type memorySales struct {
	store *MemoryStore
}

func (m *memorySales) Create(ctx context.Context, sale *models.Sale) error {
	return m.store.CreateSale(ctx, sale)
}

func (m *memorySales) FindSince(ctx context.Context, since time.Time) ([]models.Sale, error) {
	return m.store.FindSince(ctx, since)
}

// --- CustomerRepository ---

func (s *MemoryStore) Customers() CustomerRepository {
	return &memoryCustomers{store: s}
}

type memoryCustomers struct {
	store *MemoryStore
}

func (m *memoryCustomers) FindByID(_ context.Context, id string) (*models.Customer, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	c, ok := m.store.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *memoryCustomers) FindAll(_ context.Context) ([]models.Customer, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	out := make([]models.Customer, 0, len(m.store.customers))
	for _, c := range m.store.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryCustomers) Count(_ context.Context) (int64, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	return int64(len(m.store.customers)), nil
}

func (m *memoryCustomers) Create(_ context.Context, c *models.Customer) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	c.CreatedAt = time.Now().UTC()
	m.store.customers[c.ID] = *c
	return nil
}
