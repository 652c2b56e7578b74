package services

import (
	"context"
	"strings"

	"rebuyrnot/internal/models"
	"rebuyrnot/internal/notify"
	"rebuyrnot/internal/utils"

	"gorm.io/gorm"
)

const (
	defaultSubmissionCategory = "tech"
	defaultProductImage       = "/placeholder.svg"
)

// SubmissionInput is what a visitor proposes.
type SubmissionInput struct {
	ProductName string `json:"product_name"`
	BrandName   string `json:"brand_name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// SubmissionService handles product proposals and their review.
type SubmissionService struct {
	db       *gorm.DB
	notifier notify.Notifier
}

func NewSubmissionService(db *gorm.DB, notifier notify.Notifier) *SubmissionService {
	return &SubmissionService{db: db, notifier: notifier}
}

// Submit stores a pending proposal. userID may be empty.
func (s *SubmissionService) Submit(ctx context.Context, userID string, in SubmissionInput) (*models.ProductSubmission, error) {
	name := utils.PlainText(in.ProductName)
	brand := utils.PlainText(in.BrandName)
	if name == "" || brand == "" {
		return nil, invalid("product_name and brand_name are required")
	}

	sub := models.ProductSubmission{
		ProductName: name,
		BrandName:   brand,
		Category:    optional(in.Category),
		Description: optional(utils.PlainText(in.Description)),
		ImageURL:    optional(in.ImageURL),
		Status:      models.SubmissionPending,
	}
	if userID != "" {
		sub.UserID = &userID
	}

	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, backendErr("create submission", err)
	}
	notify.PublishTable(s.notifier, notify.TableSubmissions)
	return &sub, nil
}

// List filters by status (empty for all) and a case-insensitive search over
// product and brand names.
func (s *SubmissionService) List(ctx context.Context, status models.SubmissionStatus, search string) ([]models.ProductSubmission, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(product_name) LIKE ? OR LOWER(brand_name) LIKE ?", like, like)
	}

	var subs []models.ProductSubmission
	if err := q.Find(&subs).Error; err != nil {
		return nil, backendErr("list submissions", err)
	}
	return subs, nil
}

// Approve creates the product with zero votes and marks the submission approved.
func (s *SubmissionService) Approve(ctx context.Context, id uint, notes string) (*models.Product, error) {
	var product models.Product

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.ProductSubmission
		if err := tx.First(&sub, id).Error; err != nil {
			return notFoundOr("load submission", err, ErrNotFound)
		}
		if sub.Status == models.SubmissionApproved {
			return invalid("submission already approved")
		}

		product = models.Product{
			ID:       utils.NewProductID(),
			Name:     sub.ProductName,
			Brand:    sub.BrandName,
			Category: valueOr(sub.Category, defaultSubmissionCategory),
			Image:    valueOr(sub.ImageURL, defaultProductImage),
		}
		if sub.Description != nil {
			product.Description = *sub.Description
		}
		if err := tx.Create(&product).Error; err != nil {
			return backendErr("create product", err)
		}

		return tx.Model(&sub).Updates(map[string]any{
			"status":      models.SubmissionApproved,
			"admin_notes": optional(notes),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	notify.PublishTable(s.notifier, notify.TableSubmissions)
	notify.PublishTable(s.notifier, notify.TableProducts)
	return &product, nil
}

// Reject marks the submission rejected with the reviewer's notes.
func (s *SubmissionService) Reject(ctx context.Context, id uint, notes string) error {
	res := s.db.WithContext(ctx).Model(&models.ProductSubmission{}).Where("id = ?", id).Updates(map[string]any{
		"status":      models.SubmissionRejected,
		"admin_notes": optional(notes),
	})
	if res.Error != nil {
		return backendErr("reject submission", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	notify.PublishTable(s.notifier, notify.TableSubmissions)
	return nil
}

func (s *SubmissionService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.ProductSubmission{}, id)
	if res.Error != nil {
		return backendErr("delete submission", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	notify.PublishTable(s.notifier, notify.TableSubmissions)
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func valueOr(p *string, fallback string) string {
	if p == nil || *p == "" {
		return fallback
	}
	return *p
}
