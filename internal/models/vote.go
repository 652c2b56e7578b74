package models

import (
	"time"
)

type VoteType string

const (
	VoteRebuy VoteType = "rebuy"
	VoteNot   VoteType = "not"
)

// Valid reports whether v is one of the two vote kinds.
func (v VoteType) Valid() bool {
	return v == VoteRebuy || v == VoteNot
}

// Vote 投票记录, one per (product, voter), never updated
type Vote struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ProductID string    `gorm:"size:32;not null;uniqueIndex:idx_vote_product_voter" json:"product_id"`
	Product   Product   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	VoterID   string    `gorm:"size:136;not null;uniqueIndex:idx_vote_product_voter" json:"voter_id"` // "fp:"+fingerprint or user id
	UserID    *string   `gorm:"size:36;index" json:"user_id"`                                         // set for signed-in voters only
	VoteType  VoteType  `gorm:"size:10;not null" json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
}

func (Vote) TableName() string {
	return "user_votes"
}

// VoteRateLimit is one recorded vote attempt.
type VoteRateLimit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VoterID   string    `gorm:"size:136;not null;index:idx_rate_voter_time" json:"voter_id"`
	CreatedAt time.Time `gorm:"index:idx_rate_voter_time" json:"created_at"`
}
