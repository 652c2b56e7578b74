package models

import (
	"time"
)

// MaxCommentLength is counted in characters after trimming.
const MaxCommentLength = 1000

type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ProductID string    `gorm:"size:32;not null;index" json:"product_id"`
	Product   Product   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	VoteType  VoteType  `gorm:"size:10;not null" json:"vote_type"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
