package services

import (
	"context"
	"sync"
	"testing"

	"rebuyrnot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strp(s string) *string { return &s }
func int64p(i int64) *int64 { return &i }
func boolp(b bool) *bool    { return &b }

func TestAdminService_ProductLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := NewAdminService(env.db, env.bus)
	ctx := context.Background()
	require.NoError(t, env.catalog.Refresh(ctx))

	_, err := admin.CreateProduct(ctx, ProductInput{Name: strp("Only name")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	created, err := admin.CreateProduct(ctx, ProductInput{
		Name:         strp("Air Max"),
		Brand:        strp("Nike"),
		Category:     strp("fashion"),
		RebuyReasons: &[]string{"comfy"},
	})
	require.NoError(t, err)
	assert.Len(t, created.ID, 12)
	assert.Zero(t, created.RebuyVotes)
	assert.Zero(t, created.NotVotes)

	// the store picked the new product up
	got, err := env.catalog.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"comfy"}, []string(got.RebuyReasons))

	updated, err := admin.UpdateProduct(ctx, created.ID, ProductInput{RebuyVotes: int64p(40), NotVotes: int64p(0), Image: strp("/x.png")})
	require.NoError(t, err)
	assert.Equal(t, "Air Max", updated.Name)
	assert.Equal(t, int64(40), env.reload(t, created.ID).RebuyVotes)
	assert.Equal(t, int64(40), env.catalog.TotalVotes())

	_, err = admin.UpdateProduct(ctx, created.ID, ProductInput{NotVotes: int64p(-1)})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = admin.UpdateProduct(ctx, "missing", ProductInput{})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = env.votes.SubmitVote(ctx, created.ID, models.VoteRebuy, Voter{ID: "v"}, "nice")
	require.NoError(t, err)

	require.NoError(t, admin.DeleteProduct(ctx, created.ID))
	assert.Equal(t, int64(0), env.count(t, &models.Vote{}, "product_id = ?", created.ID))
	assert.Equal(t, int64(0), env.count(t, &models.Comment{}, "product_id = ?", created.ID))
	_, err = env.catalog.GetByID(created.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, admin.DeleteProduct(ctx, created.ID), ErrProductNotFound)
}

func TestAdminService_UpdateProductKeepsConcurrentVotes(t *testing.T) {
	env := newTestEnv(t)
	admin := NewAdminService(env.db, env.bus)
	ctx := context.Background()
	env.addProduct(t, "p", 10, 5)

	// a vote lands right before the admin's UPDATE hits the row
	var once sync.Once
	require.NoError(t, env.db.Callback().Update().Before("gorm:update").Register("test:interleaved_vote", func(tx *gorm.DB) {
		if tx.Statement.Schema == nil || tx.Statement.Schema.Table != "products" {
			return
		}
		once.Do(func() {
			err := tx.Session(&gorm.Session{NewDB: true}).
				Exec("UPDATE products SET rebuy_votes = rebuy_votes + 1 WHERE id = ?", "p").Error
			require.NoError(t, err)
		})
	}))

	updated, err := admin.UpdateProduct(ctx, "p", ProductInput{Name: strp("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	p := env.reload(t, "p")
	assert.Equal(t, int64(11), p.RebuyVotes)
	assert.Equal(t, int64(5), p.NotVotes)

	// an explicit override still wins, zero included
	_, err = admin.UpdateProduct(ctx, "p", ProductInput{NotVotes: int64p(0)})
	require.NoError(t, err)
	p = env.reload(t, "p")
	assert.Equal(t, int64(11), p.RebuyVotes)
	assert.Equal(t, int64(0), p.NotVotes)
	assert.Equal(t, "Renamed", p.Name)
}

func TestAdminService_DeleteVoteAllowsRevote(t *testing.T) {
	env := newTestEnv(t)
	admin := NewAdminService(env.db, env.bus)
	ctx := context.Background()
	env.addProduct(t, "p", 0, 0)
	voter := Voter{ID: "again"}

	vote, err := env.votes.SubmitVote(ctx, "p", models.VoteRebuy, voter, "")
	require.NoError(t, err)
	_, err = env.votes.SubmitVote(ctx, "p", models.VoteRebuy, voter, "")
	require.ErrorIs(t, err, ErrAlreadyVoted)

	require.NoError(t, admin.DeleteVote(ctx, vote.ID))
	assert.ErrorIs(t, admin.DeleteVote(ctx, vote.ID), ErrNotFound)

	_, err = env.votes.SubmitVote(ctx, "p", models.VoteNot, voter, "")
	require.NoError(t, err)

	votes, err := admin.ListVotes(ctx, "p")
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, models.VoteNot, votes[0].VoteType)
}

func TestAdminService_Comments(t *testing.T) {
	env := newTestEnv(t)
	admin := NewAdminService(env.db, env.bus)
	ctx := context.Background()
	env.addProduct(t, "p", 0, 0)

	_, err := env.votes.SubmitVote(ctx, "p", models.VoteRebuy, Voter{ID: "a"}, "love it")
	require.NoError(t, err)

	comments, err := admin.ListComments(ctx, 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "love it", comments[0].Text)
	assert.Equal(t, "Product p", comments[0].ProductName)
	assert.Equal(t, "Brand", comments[0].ProductBrand)

	require.NoError(t, admin.DeleteComment(ctx, comments[0].ID))
	assert.ErrorIs(t, admin.DeleteComment(ctx, comments[0].ID), ErrNotFound)
}

func TestAdminService_BrandsAndCategories(t *testing.T) {
	env := newTestEnv(t)
	admin := NewAdminService(env.db, env.bus)
	ctx := context.Background()

	brand, err := admin.CreateBrand(ctx, BrandInput{Name: strp("Sony"), LogoURL: strp("/sony.svg"), IsActive: boolp(false)})
	require.NoError(t, err)
	assert.False(t, brand.IsActive)

	var stored models.Brand
	require.NoError(t, env.db.First(&stored, brand.ID).Error)
	assert.False(t, stored.IsActive)

	_, err = admin.CreateBrand(ctx, BrandInput{Name: strp("Sony")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	brand, err = admin.UpdateBrand(ctx, brand.ID, BrandInput{IsActive: boolp(true), DisplayOrder: func() *int { i := 3; return &i }()})
	require.NoError(t, err)
	assert.True(t, brand.IsActive)
	assert.Equal(t, 3, brand.DisplayOrder)

	brands, err := admin.ListBrands(ctx)
	require.NoError(t, err)
	assert.Len(t, brands, 1)
	require.NoError(t, admin.DeleteBrand(ctx, brand.ID))
	assert.ErrorIs(t, admin.DeleteBrand(ctx, brand.ID), ErrNotFound)

	_, err = admin.CreateCategory(ctx, CategoryInput{Key: strp("Garden")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	cat, err := admin.CreateCategory(ctx, CategoryInput{Key: strp("Garden"), NameEN: strp("Garden"), NameFR: strp("Jardin")})
	require.NoError(t, err)
	assert.Equal(t, "garden", cat.Key)

	cat, err = admin.UpdateCategory(ctx, cat.ID, CategoryInput{NameAR: strp("حديقة")})
	require.NoError(t, err)
	assert.Equal(t, "Jardin", cat.NameFR)
	assert.Equal(t, "حديقة", cat.NameAR)

	_, err = admin.UpdateCategory(ctx, 999, CategoryInput{})
	assert.ErrorIs(t, err, ErrNotFound)

	categories, err := admin.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
	require.NoError(t, admin.DeleteCategory(ctx, cat.ID))
}

func TestAdminService_Content(t *testing.T) {
	env := newTestEnv(t)
	admin := NewAdminService(env.db, env.bus)
	store := NewReferenceStore(env.db, env.bus)
	t.Cleanup(store.Close)
	ctx := context.Background()

	row, err := admin.CreateContent(ctx, ContentInput{ContentKey: strp("footer.note"), ContentEN: strp("Hello")})
	require.NoError(t, err)
	assert.Equal(t, "text", row.ContentType)
	assert.Equal(t, "general", row.Category)
	assert.Equal(t, "Hello", store.GetContent("footer.note", LangFR))

	_, err = admin.UpdateContent(ctx, row.ID, ContentInput{ContentFR: strp("Bonjour")})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", store.GetContent("footer.note", LangFR))

	_, err = admin.CreateContent(ctx, ContentInput{ContentKey: strp("footer.note"), ContentEN: strp("dup")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	rows, err := admin.ListContent(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, admin.DeleteContent(ctx, row.ID))
	assert.Equal(t, "footer.note", store.GetContent("footer.note", LangEN))
}

func TestAdminService_ListUsers(t *testing.T) {
	env := newTestEnv(t)
	admin := NewAdminService(env.db, env.bus)
	accounts := NewAccountService(env.db, env.bus, []string{"root@example.com"})
	ctx := context.Background()
	env.addProduct(t, "p1", 0, 0)
	env.addProduct(t, "p2", 0, 0)

	root, err := accounts.Register(ctx, "root@example.com", "hunter22", "Root")
	require.NoError(t, err)
	reader, err := accounts.Register(ctx, "reader@example.com", "hunter22", "Reader")
	require.NoError(t, err)

	for _, id := range []string{"p1", "p2"} {
		_, err := env.votes.SubmitVote(ctx, id, models.VoteRebuy, Voter{ID: reader.ID, UserID: reader.ID}, "")
		require.NoError(t, err)
	}

	users, err := admin.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	byID := map[string]AdminUser{}
	for _, u := range users {
		byID[u.ID] = u
	}
	assert.Equal(t, int64(2), byID[reader.ID].VoteCount)
	assert.False(t, byID[reader.ID].IsAdmin)
	assert.Equal(t, int64(0), byID[root.ID].VoteCount)
	assert.True(t, byID[root.ID].IsAdmin)
}
