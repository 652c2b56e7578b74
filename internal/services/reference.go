package services

import (
	"context"
	"log/slog"
	"sync"

	"rebuyrnot/internal/models"
	"rebuyrnot/internal/notify"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Supported content languages. English is the fallback.
const (
	LangEN = "en"
	LangFR = "fr"
	LangAR = "ar"
)

type referenceSnapshot struct {
	brands     []models.Brand
	categories []models.Category
	content    map[string]models.SiteContent
}

// ReferenceStore caches active brands, active categories and site content.
type ReferenceStore struct {
	db *gorm.DB

	mu   sync.RWMutex
	snap referenceSnapshot

	cancels []func()
}

func NewReferenceStore(db *gorm.DB, notifier notify.Notifier) *ReferenceStore {
	s := &ReferenceStore{
		db:   db,
		snap: referenceSnapshot{content: map[string]models.SiteContent{}},
	}
	if notifier == nil {
		return s
	}
	for _, table := range []string{notify.TableBrands, notify.TableCategories, notify.TableSiteContent} {
		table := table
		s.cancels = append(s.cancels, notifier.OnChange(table, func(c notify.Change) {
			if err := s.refreshTable(context.Background(), table); err != nil {
				slog.Error("reference refresh failed", "table", table, "source", c.Source, "error", err)
			}
		}))
	}
	return s
}

// Refresh reloads all three tables concurrently.
func (s *ReferenceStore) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, table := range []string{notify.TableBrands, notify.TableCategories, notify.TableSiteContent} {
		table := table
		g.Go(func() error { return s.refreshTable(ctx, table) })
	}
	return g.Wait()
}

func (s *ReferenceStore) refreshTable(ctx context.Context, table string) error {
	db := s.db.WithContext(ctx)

	switch table {
	case notify.TableBrands:
		var brands []models.Brand
		if err := db.Where("is_active = ?", true).Order("display_order ASC, name ASC").Find(&brands).Error; err != nil {
			return backendErr("load brands", err)
		}
		s.mu.Lock()
		s.snap.brands = brands
		s.mu.Unlock()

	case notify.TableCategories:
		var categories []models.Category
		if err := db.Where("is_active = ?", true).Order("display_order ASC, key ASC").Find(&categories).Error; err != nil {
			return backendErr("load categories", err)
		}
		s.mu.Lock()
		s.snap.categories = categories
		s.mu.Unlock()

	case notify.TableSiteContent:
		var rows []models.SiteContent
		if err := db.Find(&rows).Error; err != nil {
			return backendErr("load site content", err)
		}
		content := make(map[string]models.SiteContent, len(rows))
		for _, r := range rows {
			content[r.ContentKey] = r
		}
		s.mu.Lock()
		s.snap.content = content
		s.mu.Unlock()
	}
	return nil
}

// Brands returns active brands by display order.
func (s *ReferenceStore) Brands() []models.Brand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Brand(nil), s.snap.brands...)
}

// Categories returns active categories by display order.
func (s *ReferenceStore) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Category(nil), s.snap.categories...)
}

// GetContent returns the text for key in lang. Unknown languages fall back to
// English, empty translations too, and unknown keys return the key itself.
func (s *ReferenceStore) GetContent(key, lang string) string {
	s.mu.RLock()
	row, ok := s.snap.content[key]
	s.mu.RUnlock()
	if !ok {
		return key
	}
	return translate(row, lang)
}

// Bundle returns every key translated into lang.
func (s *ReferenceStore) Bundle(lang string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.snap.content))
	for k, row := range s.snap.content {
		out[k] = translate(row, lang)
	}
	return out
}

// Close stops listening for changes.
func (s *ReferenceStore) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

func translate(row models.SiteContent, lang string) string {
	var text string
	switch lang {
	case LangFR:
		text = row.ContentFR
	case LangAR:
		text = row.ContentAR
	}
	if text == "" {
		return row.ContentEN
	}
	return text
}
