package models

import "time"

// Bet is one wager: Amount in currency sub-units, Multiplier scaled x100
// (150 = 1.50x). Payout and Settled are written by the settlement step only;
// the admission core never mutates a persisted bet.
type Bet struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
	RoundID    string    `gorm:"type:varchar(36);not null;index" json:"round_id"`
	Amount     int64     `gorm:"not null" json:"amount"`
	Multiplier int64     `gorm:"not null" json:"multiplier"`
	Payout     int64     `json:"payout"`
	Settled    bool      `gorm:"not null;default:false" json:"settled"`
	CreatedAt  time.Time `json:"created_at"`
}

// PotentialWinnings is the amount credited if the round crashes at or above
// the bet's multiplier.
func (b *Bet) PotentialWinnings() int64 {
	return b.Amount * b.Multiplier / 100
}

// Won reports whether the bet wins against a resolved crash point.
func (b *Bet) Won(outcome int64) bool {
	return outcome >= b.Multiplier
}
