package models

import (
	"time"

	"gorm.io/datatypes"
)

// MaxReasons caps each curated reasons list.
const MaxReasons = 5

// Product 商品, vote counters are denormalized from user_votes
type Product struct {
	ID           string                     `gorm:"primaryKey;size:32" json:"id"`
	Name         string                     `gorm:"not null" json:"name"`
	Brand        string                     `gorm:"not null;index" json:"brand"`
	Category     string                     `gorm:"size:50;not null;index" json:"category"`
	Image        string                     `json:"image"`
	Description  string                     `gorm:"type:text" json:"description"`
	RebuyVotes   int64                      `gorm:"not null;default:0" json:"rebuy_votes"`
	NotVotes     int64                      `gorm:"not null;default:0" json:"not_votes"`
	RebuyReasons datatypes.JSONSlice[string] `json:"rebuy_reasons"`
	NotReasons   datatypes.JSONSlice[string] `json:"not_reasons"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

// TotalVotes returns rebuy + not.
func (p *Product) TotalVotes() int64 {
	return p.RebuyVotes + p.NotVotes
}
