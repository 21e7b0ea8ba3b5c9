package models

import "time"

type SeedState string

const (
	SeedStatePending  SeedState = "pending"
	SeedStateConsumed SeedState = "consumed"
)

// Seed is one provably-fair commitment. The secret is generated once and only
// revealed after the round that consumed it has resolved. The commitment is an
// independently drawn random hash, bound to the secret by this record only.
type Seed struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Secret     string    `gorm:"type:varchar(64);not null" json:"-"`
	Commitment string    `gorm:"type:varchar(64);not null" json:"commitment"`
	State      SeedState `gorm:"type:varchar(16);not null;index" json:"state"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
