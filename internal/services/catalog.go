package services

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"rebuyrnot/internal/models"
	"rebuyrnot/internal/notify"
	"rebuyrnot/internal/utils"

	"gorm.io/gorm"
)

const descriptionCacheTTL = time.Hour

// catalogSnapshot is never modified after it is published.
type catalogSnapshot struct {
	products []models.Product
	byID     map[string]int
	total    int64
}

// CatalogStore keeps an in-memory copy of the products table and reloads it
// whenever the products table changes.
type CatalogStore struct {
	db *gorm.DB

	mu   sync.RWMutex
	snap *catalogSnapshot

	descriptions *utils.TTLCache[template.HTML]
	cancel       func()
}

// NewCatalogStore subscribes to product changes. Call Refresh once to load.
func NewCatalogStore(db *gorm.DB, notifier notify.Notifier) *CatalogStore {
	descriptions, err := utils.NewTTLCache[template.HTML](512)
	if err != nil {
		panic(err)
	}

	s := &CatalogStore{
		db:           db,
		snap:         &catalogSnapshot{byID: map[string]int{}},
		descriptions: descriptions,
		cancel:       func() {},
	}
	if notifier != nil {
		s.cancel = notifier.OnChange(notify.TableProducts, func(c notify.Change) {
			if err := s.Refresh(context.Background()); err != nil {
				slog.Error("catalog refresh failed", "source", c.Source, "error", err)
			}
		})
	}
	return s
}

// Refresh re-reads the whole products table.
func (s *CatalogStore) Refresh(ctx context.Context) error {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&products).Error; err != nil {
		return backendErr("load products", err)
	}

	snap := &catalogSnapshot{
		products: products,
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range products {
		snap.byID[p.ID] = i
		snap.total += p.TotalVotes()
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	slog.Debug("catalog refreshed", "products", len(products), "total_votes", snap.total)
	return nil
}

func (s *CatalogStore) current() *catalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// List returns all products in creation order.
func (s *CatalogStore) List() []models.Product {
	snap := s.current()
	out := make([]models.Product, len(snap.products))
	copy(out, snap.products)
	return out
}

// ListByCategory filters by category key. Empty key means all.
func (s *CatalogStore) ListByCategory(category string) []models.Product {
	if category == "" {
		return s.List()
	}
	var out []models.Product
	for _, p := range s.current().products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// GetByID looks a product up in the snapshot.
func (s *CatalogStore) GetByID(id string) (models.Product, error) {
	snap := s.current()
	i, ok := snap.byID[id]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return snap.products[i], nil
}

// TotalVotes sums rebuy and not votes over every product.
func (s *CatalogStore) TotalVotes() int64 {
	return s.current().total
}

// Count is the number of products in the snapshot.
func (s *CatalogStore) Count() int {
	return len(s.current().products)
}

// DescriptionHTML renders the product description, cached per revision.
func (s *CatalogStore) DescriptionHTML(p models.Product) template.HTML {
	key := fmt.Sprintf("%s@%d", p.ID, p.UpdatedAt.UnixNano())
	if html, ok := s.descriptions.Get(key); ok {
		return html
	}
	html := utils.RenderMarkdown(p.Description)
	s.descriptions.Set(key, html, descriptionCacheTTL)
	return html
}

// Close stops listening for changes.
func (s *CatalogStore) Close() {
	s.cancel()
}
