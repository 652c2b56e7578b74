package models

import (
	"time"
)

type Brand struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;unique" json:"name"`
	LogoURL      string    `gorm:"not null" json:"logo_url"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Category 分类, names are translated per language
type Category struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Key          string    `gorm:"size:50;not null;unique" json:"key"`
	NameEN       string    `gorm:"column:name_en;not null" json:"name_en"`
	NameFR       string    `gorm:"column:name_fr;not null" json:"name_fr"`
	NameAR       string    `gorm:"column:name_ar;not null" json:"name_ar"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// SiteContent is one translated piece of site text.
type SiteContent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ContentKey  string    `gorm:"size:100;not null;unique" json:"content_key"`
	ContentEN   string    `gorm:"column:content_en;type:text;not null" json:"content_en"`
	ContentFR   string    `gorm:"column:content_fr;type:text;not null" json:"content_fr"`
	ContentAR   string    `gorm:"column:content_ar;type:text;not null" json:"content_ar"`
	ContentType string    `gorm:"size:20;default:'text'" json:"content_type"`
	Category    string    `gorm:"size:50;default:'general'" json:"category"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SiteContent) TableName() string {
	return "site_content"
}

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// ProductSubmission 用户推荐的商品, waits for admin review
type ProductSubmission struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	UserID      *string          `gorm:"size:36;index" json:"user_id"`
	ProductName string           `gorm:"not null" json:"product_name"`
	BrandName   string           `gorm:"not null" json:"brand_name"`
	Category    *string          `json:"category"`
	Description *string          `gorm:"type:text" json:"description"`
	ImageURL    *string          `json:"image_url"`
	Status      SubmissionStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	AdminNotes  *string          `gorm:"type:text" json:"admin_notes"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
