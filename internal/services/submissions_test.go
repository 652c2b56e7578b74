package services

import (
	"context"
	"testing"

	"rebuyrnot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	subs := NewSubmissionService(env.db, env.bus)
	ctx := context.Background()
	require.NoError(t, env.catalog.Refresh(ctx))

	_, err := subs.Submit(ctx, "", SubmissionInput{ProductName: "  ", BrandName: "X"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	first, err := subs.Submit(ctx, "", SubmissionInput{ProductName: "Walkman", BrandName: "Sony"})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionPending, first.Status)
	assert.Nil(t, first.UserID)

	second, err := subs.Submit(ctx, "user-1", SubmissionInput{ProductName: "Kindle", BrandName: "Amazon", Category: "tech", ImageURL: "/kindle.png"})
	require.NoError(t, err)
	require.NotNil(t, second.UserID)

	all, err := subs.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := subs.List(ctx, "", "sOnY")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Walkman", found[0].ProductName)

	product, err := subs.Approve(ctx, first.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, "tech", product.Category)
	assert.Equal(t, "/placeholder.svg", product.Image)
	assert.Zero(t, product.TotalVotes())

	inCatalog, err := env.catalog.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sony", inCatalog.Brand)

	_, err = subs.Approve(ctx, first.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, subs.Reject(ctx, second.ID, "duplicate"))
	rejected, err := subs.List(ctx, models.SubmissionRejected, "")
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	require.NotNil(t, rejected[0].AdminNotes)
	assert.Equal(t, "duplicate", *rejected[0].AdminNotes)

	approved, err := subs.List(ctx, models.SubmissionApproved, "")
	require.NoError(t, err)
	require.Len(t, approved, 1)

	require.NoError(t, subs.Delete(ctx, second.ID))
	assert.ErrorIs(t, subs.Delete(ctx, second.ID), ErrNotFound)
	assert.ErrorIs(t, subs.Reject(ctx, 999, ""), ErrNotFound)
	_, err = subs.Approve(ctx, 999, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
