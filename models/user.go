package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TelegramID   int64     `gorm:"uniqueIndex" json:"telegram_id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Avatar       string    `json:"avatar"`
	Rank         string    `json:"rank"`
	Level        int       `json:"level"`
	Rakeback     int       `json:"rakeback"`
	TotalBets    int64     `json:"total_bets"`
	TotalWagered int64     `json:"total_wagered"`
	Balance      int64     `json:"balance"` // currency sub-units
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
