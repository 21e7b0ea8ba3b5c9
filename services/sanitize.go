package services

import (
	"encoding/json"
	"time"

	"github.com/bellapacxx/crash-backend/models"
)

// PublicRound is the client-visible projection of a round. Outcome and the
// fairness payload are present only once the round has begun resolving.
type PublicRound struct {
	ID        string            `json:"id"`
	State     models.RoundState `json:"state"`
	CreatedAt time.Time         `json:"created_at"`
	Outcome   *int64            `json:"outcome,omitempty"`
	Fairness  *RoundFairness    `json:"fairness,omitempty"`
}

// PublicUser is the fixed public field set of a bettor. Balance and phone
// never appear here.
type PublicUser struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Avatar       string    `json:"avatar"`
	Rank         string    `json:"rank"`
	Level        int       `json:"level"`
	Tier         string    `json:"tier"`
	TotalBets    int64     `json:"total_bets"`
	TotalWagered int64     `json:"total_wagered"`
	CreatedAt    time.Time `json:"created_at"`
}

type PublicBet struct {
	ID                uint       `json:"id"`
	RoundID           string     `json:"round_id"`
	Amount            int64      `json:"amount"`
	Multiplier        int64      `json:"multiplier"`
	PotentialWinnings int64      `json:"potential_winnings"`
	CreatedAt         time.Time  `json:"created_at"`
	User              PublicUser `json:"user"`
}

// tierNames maps a rakeback tier to the display name shown on public bets.
var tierNames = []string{"Bronze", "Silver", "Gold", "Platinum", "Diamond", "Obsidian"}

func tierName(tier int) string {
	if tier < 0 {
		tier = 0
	}
	if tier >= len(tierNames) {
		tier = len(tierNames) - 1
	}
	return tierNames[tier]
}

// SanitizeRound copies a round for broadcast. Before the round begins
// resolving, the outcome and every trace of its seed are stripped.
func SanitizeRound(round *models.Round) *PublicRound {
	pub := &PublicRound{
		ID:        round.ID,
		State:     round.State,
		CreatedAt: round.CreatedAt,
	}
	if round.State != models.RoundStateResolving && round.State != models.RoundStateResolved {
		return pub
	}

	outcome := round.Outcome
	pub.Outcome = &outcome
	if len(round.FairnessJSON) > 0 {
		var fairness RoundFairness
		if err := json.Unmarshal(round.FairnessJSON, &fairness); err == nil {
			pub.Fairness = &fairness
		}
	}
	return pub
}

// SanitizeBet projects a bet and its preloaded user to public fields only.
func SanitizeBet(bet *models.Bet) PublicBet {
	return PublicBet{
		ID:                bet.ID,
		RoundID:           bet.RoundID,
		Amount:            bet.Amount,
		Multiplier:        bet.Multiplier,
		PotentialWinnings: bet.PotentialWinnings(),
		CreatedAt:         bet.CreatedAt,
		User: PublicUser{
			ID:           bet.User.ID,
			Name:         bet.User.Name,
			Avatar:       bet.User.Avatar,
			Rank:         bet.User.Rank,
			Level:        bet.User.Level,
			Tier:         tierName(bet.User.Rakeback),
			TotalBets:    bet.User.TotalBets,
			TotalWagered: bet.User.TotalWagered,
			CreatedAt:    bet.User.CreatedAt,
		},
	}
}

func SanitizeBets(bets []models.Bet) []PublicBet {
	out := make([]PublicBet, len(bets))
	for i := range bets {
		out[i] = SanitizeBet(&bets[i])
	}
	return out
}
