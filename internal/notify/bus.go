// Package notify delivers coarse "a row in this table changed" events.
//
// Subscribers only learn which table changed, never which row, and are
// expected to refetch whatever they cache from that table.
package notify

import (
	"log/slog"
	"sync"
)

// Watched tables.
const (
	TableProducts    = "products"
	TableVotes       = "user_votes"
	TableComments    = "comments"
	TableBrands      = "brands"
	TableCategories  = "categories"
	TableSiteContent = "site_content"
	TableSubmissions = "product_submissions"
	TableProfiles    = "profiles"
)

// WatchedTables get a change trigger on PostgreSQL.
var WatchedTables = []string{
	TableProducts,
	TableVotes,
	TableComments,
	TableBrands,
	TableCategories,
	TableSiteContent,
	TableSubmissions,
	TableProfiles,
}

// Change describes a change to a table.
type Change struct {
	Table  string
	Source string // "local" or "postgres"
}

// Notifier is what stores depend on.
type Notifier interface {
	OnChange(table string, fn func(Change)) (cancel func())
	Publish(c Change)
}

type subscriber struct {
	id int
	fn func(Change)
}

// Bus is an in-process Notifier. Publish runs subscribers synchronously
// in the caller's goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscriber
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscriber)}
}

func (b *Bus) OnChange(table string, fn func(Change)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[table] = append(b.subs[table], subscriber{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := b.subs[table]
			for i, s := range list {
				if s.id == id {
					b.subs[table] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
		})
	}
}

func (b *Bus) Publish(c Change) {
	if c.Source == "" {
		c.Source = "local"
	}

	b.mu.RLock()
	list := make([]subscriber, len(b.subs[c.Table]))
	copy(list, b.subs[c.Table])
	b.mu.RUnlock()

	for _, s := range list {
		b.deliver(s, c)
	}
}

func (b *Bus) deliver(s subscriber, c Change) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("change subscriber panicked", "table", c.Table, "panic", r)
		}
	}()
	s.fn(c)
}

// PublishTable is shorthand for a local change.
func PublishTable(n Notifier, table string) {
	if n == nil {
		return
	}
	n.Publish(Change{Table: table, Source: "local"})
}
