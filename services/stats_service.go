package services

import (
	"context"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"

	"pos-service/models"
	"pos-service/repository"
)

const (
	statsWindowDays = 7
	topProductLimit = 5
	dedupeWindow    = 4096
)

type MoneyStat struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type CountStat struct {
	Count int64 `json:"count"`
}

type DashboardStats struct {
	TodaySales     MoneyStat `json:"todaySales"`
	TotalProducts  CountStat `json:"totalProducts"`
	TotalCustomers CountStat `json:"totalCustomers"`
	LowStock       CountStat `json:"lowStock"`
}

type DayBucket struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type TopProduct struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// StatsService derives dashboard rollups purely from the committed sale
// stream. ApplySale is idempotent: replaying a sale already inside the
// dedupe window changes nothing.
type StatsService struct {
	mu        sync.RWMutex
	records   []models.Sale
	seen      *lru.Cache[string, struct{}]
	products  repository.ProductRepository
	customers repository.CustomerRepository
	sales     repository.SaleRepository
	now       func() time.Time
}

func NewStatsService(
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	sales repository.SaleRepository,
) *StatsService {
	seen, _ := lru.New[string, struct{}](dedupeWindow)
	return &StatsService{
		seen:      seen,
		products:  products,
		customers: customers,
		sales:     sales,
		now:       time.Now,
	}
}

func (s *StatsService) ApplySale(sale models.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen.Get(sale.ID); dup {
		return
	}
	s.seen.Add(sale.ID, struct{}{})
	s.records = append(s.records, sale)
	s.trimLocked()
}

// Rebuild replays the trailing sale window from storage, replacing the
// in-memory state. Used at startup and for on-demand pulls after a client
// reconnects.
func (s *StatsService) Rebuild(ctx context.Context) error {
	since := s.now().UTC().AddDate(0, 0, -statsWindowDays+1).Truncate(24 * time.Hour)
	sales, err := s.sales.FindSince(ctx, since)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
	s.seen.Purge()
	for _, sale := range sales {
		if _, dup := s.seen.Get(sale.ID); dup {
			continue
		}
		s.seen.Add(sale.ID, struct{}{})
		s.records = append(s.records, sale)
	}
	return nil
}

func (s *StatsService) Stats(ctx context.Context) (*DashboardStats, error) {
	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.products.CountLowStock(ctx)
	if err != nil {
		return nil, err
	}
	customerCount, err := s.customers.Count(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	today := s.now().UTC().Truncate(24 * time.Hour)
	todayTotal := decimal.Zero
	todayCount := 0
	for _, sale := range s.records {
		if sale.CreatedAt.UTC().Truncate(24 * time.Hour).Equal(today) {
			todayTotal = todayTotal.Add(sale.Total)
			todayCount++
		}
	}

	return &DashboardStats{
		TodaySales:     MoneyStat{Total: todayTotal, Count: todayCount},
		TotalProducts:  CountStat{Count: productCount},
		TotalCustomers: CountStat{Count: customerCount},
		LowStock:       CountStat{Count: lowStock},
	}, nil
}

// SalesChart returns one bucket per day over the trailing window, oldest
// first, including zero days.
func (s *StatsService) SalesChart() []DayBucket {
	s.mu.RLock()
	defer s.mu.RUnlock()

	today := s.now().UTC().Truncate(24 * time.Hour)
	buckets := make([]DayBucket, statsWindowDays)
	index := make(map[string]int, statsWindowDays)
	for i := 0; i < statsWindowDays; i++ {
		day := today.AddDate(0, 0, i-statsWindowDays+1)
		key := day.Format("2006-01-02")
		buckets[i] = DayBucket{Date: key, Total: decimal.Zero}
		index[key] = i
	}

	for _, sale := range s.records {
		key := sale.CreatedAt.UTC().Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			continue
		}
		buckets[i].Total = buckets[i].Total.Add(sale.Total)
		buckets[i].Count++
	}
	return buckets
}

// TopProducts ranks products by units sold over the trailing window.
func (s *StatsService) TopProducts() []TopProduct {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byProduct := make(map[string]*TopProduct)
	for _, sale := range s.records {
		for _, item := range sale.Items {
			tp, ok := byProduct[item.ProductID]
			if !ok {
				tp = &TopProduct{ProductID: item.ProductID, Name: item.Name, Revenue: decimal.Zero}
				byProduct[item.ProductID] = tp
			}
			tp.Units += item.Quantity
			tp.Revenue = tp.Revenue.Add(item.LineTotal)
		}
	}

	ranked := make([]TopProduct, 0, len(byProduct))
	for _, tp := range byProduct {
		ranked = append(ranked, *tp)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Units != ranked[j].Units {
			return ranked[i].Units > ranked[j].Units
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > topProductLimit {
		ranked = ranked[:topProductLimit]
	}
	return ranked
}

func (s *StatsService) trimLocked() {
	cutoff := s.now().UTC().AddDate(0, 0, -statsWindowDays+1).Truncate(24 * time.Hour)
	kept := s.records[:0]
	for _, sale := range s.records {
		if !sale.CreatedAt.UTC().Before(cutoff) {
			kept = append(kept, sale)
		}
	}
	s.records = kept
}
