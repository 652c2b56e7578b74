package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"rebuyrnot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitVote_Scenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p", 10, 5)

	a := Voter{ID: "1700000000000-aaaaaaaaaaaaa"}
	b := Voter{ID: "1700000000000-bbbbbbbbbbbbb"}
	c := Voter{ID: "1700000000000-ccccccccccccc"}
	d := Voter{ID: "1700000000000-ddddddddddddd"}

	// A votes rebuy without a comment
	vote, err := env.votes.SubmitVote(ctx, "p", models.VoteRebuy, a, "")
	require.NoError(t, err)
	assert.Equal(t, a.ID, vote.VoterID)

	p := env.reload(t, "p")
	assert.Equal(t, int64(11), p.RebuyVotes)
	assert.Equal(t, int64(5), p.NotVotes)
	assert.Equal(t, int64(1), env.count(t, &models.Vote{}, "product_id = ? AND voter_id = ?", "p", a.ID))
	assert.Equal(t, int64(0), env.count(t, &models.Comment{}, "product_id = ?", "p"))

	// A again
	_, err = env.votes.SubmitVote(ctx, "p", models.VoteNot, a, "changed my mind")
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	p = env.reload(t, "p")
	assert.Equal(t, int64(11), p.RebuyVotes)
	assert.Equal(t, int64(5), p.NotVotes)
	assert.Equal(t, int64(0), env.count(t, &models.Comment{}, "product_id = ?", "p"))

	// B with an oversized comment
	_, err = env.votes.SubmitVote(ctx, "p", models.VoteRebuy, b, strings.Repeat("x", 1200))
	assert.ErrorIs(t, err, ErrInvalidComment)
	assert.Equal(t, int64(0), env.count(t, &models.Vote{}, "voter_id = ?", b.ID))
	assert.Equal(t, int64(11), env.reload(t, "p").RebuyVotes)

	// C and D at the same time
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, v := range []Voter{c, d} {
		wg.Add(1)
		go func(i int, v Voter) {
			defer wg.Done()
			_, errs[i] = env.votes.SubmitVote(ctx, "p", models.VoteRebuy, v, "")
		}(i, v)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	assert.GreaterOrEqual(t, env.reload(t, "p").RebuyVotes, int64(12))
	assert.Equal(t, int64(1), env.count(t, &models.Vote{}, "voter_id = ?", c.ID))
	assert.Equal(t, int64(1), env.count(t, &models.Vote{}, "voter_id = ?", d.ID))
}

func TestSubmitVote_CommentLengthBoundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p", 0, 0)

	_, err := env.votes.SubmitVote(ctx, "p", models.VoteNot, Voter{ID: "long"}, strings.Repeat("é", 1001))
	assert.ErrorIs(t, err, ErrInvalidComment)
	assert.Equal(t, int64(0), env.count(t, &models.Vote{}, "product_id = ?", "p"))
	assert.Equal(t, int64(0), env.count(t, &models.Comment{}, "product_id = ?", "p"))

	_, err = env.votes.SubmitVote(ctx, "p", models.VoteNot, Voter{ID: "exact"}, strings.Repeat("é", 1000))
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.reload(t, "p").NotVotes)

	comments, err := env.votes.Comments(ctx, "p", 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, models.VoteNot, comments[0].VoteType)
}

func TestSubmitVote_CommentStoredVerbatim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p", 0, 0)

	inputs := []string{
		`AT&T modem, 5 < 10 "stars"`,
		"<3 this",
		"<b>bold</b> claim",
	}
	for i, in := range inputs {
		_, err := env.votes.SubmitVote(ctx, "p", models.VoteRebuy, Voter{ID: fmt.Sprintf("v%d", i)}, "  "+in+"\n")
		require.NoError(t, err)

		var c models.Comment
		require.NoError(t, env.db.Order("created_at DESC").First(&c, "product_id = ?", "p").Error)
		assert.Equal(t, in, c.Text)
		env.db.Delete(&c)
	}

	// the stored text is what was measured
	_, err := env.votes.SubmitVote(ctx, "p", models.VoteNot, Voter{ID: "amps"}, strings.Repeat("&", models.MaxCommentLength))
	require.NoError(t, err)
	var c models.Comment
	require.NoError(t, env.db.First(&c, "product_id = ? AND vote_type = ?", "p", models.VoteNot).Error)
	assert.Equal(t, models.MaxCommentLength, len(c.Text))

	// whitespace only means no comment
	_, err = env.votes.SubmitVote(ctx, "p", models.VoteRebuy, Voter{ID: "blank"}, "   \n ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.count(t, &models.Comment{}, "product_id = ?", "p"))
}

func TestSubmitVote_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p", 0, 0)

	_, err := env.votes.SubmitVote(ctx, "p", models.VoteType("maybe"), Voter{ID: "v"}, "")
	assert.ErrorIs(t, err, ErrInvalidVoteType)

	_, err = env.votes.SubmitVote(ctx, "missing", models.VoteRebuy, Voter{ID: "v"}, "")
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.Equal(t, int64(0), env.count(t, &models.Vote{}, "voter_id = ?", "v"))
}

func TestSubmitVote_SignedInVoterRecordsUserID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p", 0, 0)

	voter, _ := ResolveVoter("user-1", "ignored-fingerprint")
	vote, err := env.votes.SubmitVote(ctx, "p", models.VoteRebuy, voter, "")
	require.NoError(t, err)
	require.NotNil(t, vote.UserID)
	assert.Equal(t, "user-1", *vote.UserID)
	assert.Equal(t, "user-1", vote.VoterID)
}

func TestSubmitVote_SameVoterConcurrently(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p", 0, 0)
	voter := Voter{ID: "twice"}

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.votes.SubmitVote(ctx, "p", models.VoteRebuy, voter, "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyVoted)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), env.reload(t, "p").RebuyVotes)
}

func TestSubmitVote_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, id := range []string{"p1", "p2", "p3"} {
		env.addProduct(t, id, 0, 0)
	}
	votes := NewVoteService(env.db, NewTableLimiter(env.db, 2, time.Minute), env.bus)
	voter := Voter{ID: "busy"}

	_, err := votes.SubmitVote(ctx, "p1", models.VoteRebuy, voter, "")
	require.NoError(t, err)
	_, err = votes.SubmitVote(ctx, "p2", models.VoteRebuy, voter, "")
	require.NoError(t, err)
	_, err = votes.SubmitVote(ctx, "p3", models.VoteRebuy, voter, "")
	assert.ErrorIs(t, err, ErrRateLimited)

	assert.Equal(t, int64(0), env.reload(t, "p3").RebuyVotes)
	assert.Equal(t, int64(0), env.count(t, &models.Vote{}, "product_id = ?", "p3"))
}

func TestSubmitVote_RefreshesCatalog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p", 3, 1)
	require.NoError(t, env.catalog.Refresh(ctx))
	require.Equal(t, int64(4), env.catalog.TotalVotes())

	_, err := env.votes.SubmitVote(ctx, "p", models.VoteNot, Voter{ID: "v"}, "")
	require.NoError(t, err)

	p, err := env.catalog.GetByID("p")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.NotVotes)
	assert.Equal(t, int64(5), env.catalog.TotalVotes())
}

func TestCheckVote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p", 0, 0)
	voter := Voter{ID: "checker"}

	_, found, err := env.votes.CheckVote(ctx, "p", voter)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = env.votes.SubmitVote(ctx, "p", models.VoteNot, voter, "")
	require.NoError(t, err)

	voteType, found, err := env.votes.CheckVote(ctx, "p", voter)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.VoteNot, voteType)
}

func TestNormalizeComment(t *testing.T) {
	text, err := NormalizeComment("  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	text, err = NormalizeComment(" " + strings.Repeat("a", 1000) + " ")
	require.NoError(t, err)
	assert.Len(t, text, 1000)

	_, err = NormalizeComment(strings.Repeat("a", 1001))
	assert.ErrorIs(t, err, ErrInvalidComment)
}
