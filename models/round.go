package models

import (
	"time"

	"gorm.io/datatypes"
)

type RoundState string

const (
	RoundStateOpen      RoundState = "open"
	RoundStateResolving RoundState = "resolving"
	RoundStateResolved  RoundState = "resolved"
)

// Round is one betting epoch. Outcome is the crash point in hundredths
// (100 = 1.00x) and is meaningful only once State is resolving or resolved.
// FairnessJSON holds the reveal payload written at resolution.
type Round struct {
	ID           string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	State        RoundState     `gorm:"type:varchar(16);not null;index" json:"state"`
	SeedID       string         `gorm:"type:varchar(36);not null" json:"seed_id"`
	Outcome      int64          `json:"outcome"`
	FairnessJSON datatypes.JSON `json:"fairness"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
