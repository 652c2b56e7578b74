package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"rebuyrnot/internal/models"
	"rebuyrnot/internal/notify"
	"rebuyrnot/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteService records rebuy/not votes with their optional comments.
type VoteService struct {
	db       *gorm.DB
	limiter  RateLimiter
	notifier notify.Notifier
}

func NewVoteService(db *gorm.DB, limiter RateLimiter, notifier notify.Notifier) *VoteService {
	if limiter == nil {
		limiter = NoopLimiter{}
	}
	return &VoteService{db: db, limiter: limiter, notifier: notifier}
}

// NormalizeComment trims the comment and checks its length.
// An empty result means no comment.
func NormalizeComment(comment string) (string, error) {
	text := strings.TrimSpace(comment)
	if utf8.RuneCountInString(text) > models.MaxCommentLength {
		return "", ErrInvalidComment
	}
	return text, nil
}

// SubmitVote records one vote per (product, voter), bumps the product counter
// and stores the comment if there is one. Vote, counter and comment commit
// together or not at all.
func (s *VoteService) SubmitVote(ctx context.Context, productID string, voteType models.VoteType, voter Voter, comment string) (*models.Vote, error) {
	if !voteType.Valid() {
		return nil, ErrInvalidVoteType
	}

	db := s.db.WithContext(ctx)

	var product models.Product
	if err := db.Select("id").First(&product, "id = ?", productID).Error; err != nil {
		return nil, notFoundOr("load product", err, ErrProductNotFound)
	}

	if _, found, err := s.CheckVote(ctx, productID, voter); err != nil {
		return nil, err
	} else if found {
		return nil, ErrAlreadyVoted
	}

	text, err := NormalizeComment(comment)
	if err != nil {
		return nil, err
	}

	allowed, err := s.limiter.Allow(ctx, voter.ID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	vote := models.Vote{
		ID:        utils.NewID(),
		ProductID: productID,
		VoterID:   voter.ID,
		VoteType:  voteType,
	}
	if !voter.Anonymous() {
		uid := voter.UserID
		vote.UserID = &uid
	}

	wroteComment := false
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&vote).Error; err != nil {
			if isDuplicate(err) {
				return ErrAlreadyVoted
			}
			return backendErr("insert vote", err)
		}

		column := counterColumn(voteType)
		res := tx.Model(&models.Product{}).Where("id = ?", productID).
			Update(column, gorm.Expr(column+" + ?", 1))
		if res.Error != nil {
			return backendErr("increment counter", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}

		if text == "" {
			return nil
		}
		// stored as typed; clients escape on display
		c := models.Comment{
			ID:        utils.NewID(),
			ProductID: productID,
			VoteType:  voteType,
			Text:      text,
		}
		if err := tx.Omit(clause.Associations).Create(&c).Error; err != nil {
			return backendErr("insert comment", err)
		}
		wroteComment = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("vote recorded", "product", productID, "type", voteType, "anonymous", voter.Anonymous(), "comment", wroteComment)

	notify.PublishTable(s.notifier, notify.TableVotes)
	notify.PublishTable(s.notifier, notify.TableProducts)
	if wroteComment {
		notify.PublishTable(s.notifier, notify.TableComments)
	}
	return &vote, nil
}

// CheckVote returns the vote the voter already cast on the product, if any.
func (s *VoteService) CheckVote(ctx context.Context, productID string, voter Voter) (models.VoteType, bool, error) {
	var vote models.Vote
	err := s.db.WithContext(ctx).
		Select("vote_type").
		Where("product_id = ? AND voter_id = ?", productID, voter.ID).
		Take(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, backendErr("check vote", err)
	}
	return vote.VoteType, true, nil
}

// Comments lists a product's comments newest first.
func (s *VoteService) Comments(ctx context.Context, productID string, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	q := s.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&comments).Error; err != nil {
		return nil, backendErr("list comments", err)
	}
	return comments, nil
}

func counterColumn(t models.VoteType) string {
	if t == models.VoteRebuy {
		return "rebuy_votes"
	}
	return "not_votes"
}
