package services

import (
	"testing"

	"rebuyrnot/internal/db"
	"rebuyrnot/internal/models"
	"rebuyrnot/internal/notify"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	bus     *notify.Bus
	catalog *CatalogStore
	votes   *VoteService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := db.OpenTest(t)
	bus := notify.NewBus()
	catalog := NewCatalogStore(gdb, bus)
	t.Cleanup(catalog.Close)

	return &testEnv{
		db:      gdb,
		bus:     bus,
		catalog: catalog,
		votes:   NewVoteService(gdb, NoopLimiter{}, bus),
	}
}

func (e *testEnv) addProduct(t *testing.T, id string, rebuy, not int64) models.Product {
	t.Helper()
	p := models.Product{ID: id, Name: "Product " + id, Brand: "Brand", Category: "tech", RebuyVotes: rebuy, NotVotes: not}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

func (e *testEnv) reload(t *testing.T, id string) models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, e.db.First(&p, "id = ?", id).Error)
	return p
}

func (e *testEnv) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
