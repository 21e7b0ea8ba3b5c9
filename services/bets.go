package services

import (
	"fmt"
	"math"
	"sync"

	"github.com/bellapacxx/crash-backend/config"
	"github.com/bellapacxx/crash-backend/models"
	"github.com/bellapacxx/crash-backend/utils/logger"
)

// BetRequest is one incoming wager. Multiplier arrives as a raw JSON number
// scaled x100 (150.0 = 1.50x) and is floored before validation.
type BetRequest struct {
	Amount     int64   `json:"amount"`
	Multiplier float64 `json:"multiplier"`
}

// MaxMultiplier caps the target at 1,000,000.00x. Larger targets can never
// pay out inside any sane profit ceiling and would overflow the winnings
// arithmetic.
const MaxMultiplier = 100000000

// UserRoundStats aggregates one user's exposure within a round.
type UserRoundStats struct {
	TotalBet               int64
	TotalPotentialWinnings int64
}

// BetService validates and persists wagers against the active round. The
// admission sequence reads the round's existing bets and decides against the
// per-round ceilings, so it is serialized: two near-limit bets must not both
// pass individually while jointly breaching a ceiling. The lock is shared
// with the RoundManager so the open-state check and the bet write are also
// atomic against resolution; one round is open at a time, which makes the
// lock round-scoped.
type BetService struct {
	store  Store
	limits config.Limits
	mu     *sync.Mutex
}

func NewBetService(store Store, limits config.Limits, lock *sync.Mutex) *BetService {
	return &BetService{store: store, limits: limits, mu: lock}
}

// ValidateFormat checks the shape and bounds of a wager before any lookups.
func (s *BetService) ValidateFormat(amount, multiplier int64) error {
	if amount <= 0 {
		return &ValidationError{Reason: "bet amount must be positive"}
	}
	if amount < s.limits.MinBetAmount {
		return &ValidationError{Reason: fmt.Sprintf("minimum bet is %d", s.limits.MinBetAmount)}
	}
	if multiplier <= 100 {
		return &ValidationError{Reason: "multiplier must be above 1.00x"}
	}
	if multiplier > MaxMultiplier {
		return &ValidationError{Reason: "multiplier must be at most 1000000.00x"}
	}
	return nil
}

// UserRoundStats sums the user's stake and potential winnings over the bets
// already admitted to the round.
func (s *BetService) UserRoundStats(userID uint, bets []models.Bet) UserRoundStats {
	var stats UserRoundStats
	for i := range bets {
		if bets[i].UserID != userID {
			continue
		}
		stats.TotalBet += bets[i].Amount
		stats.TotalPotentialWinnings += bets[i].PotentialWinnings()
	}
	return stats
}

// ValidateUser checks the wager against the user's balance and the per-round
// exposure ceilings. Stakes are not debited until settlement, so the balance
// check compares the raw balance against the round's total stake including
// this bet.
func (s *BetService) ValidateUser(bet *models.Bet, user *models.User, stats UserRoundStats) error {
	// The winnings product must not wrap: a wrapped (negative) total would
	// slide under every ceiling below.
	if bet.Multiplier > 0 && bet.Amount > math.MaxInt64/bet.Multiplier {
		return &ExposureLimitExceededError{Limit: "profit", Ceiling: s.limits.MaxProfitPerRound, Attempted: math.MaxInt64}
	}
	if user.Balance < stats.TotalBet+bet.Amount {
		return ErrInsufficientBalance
	}
	if total := stats.TotalBet + bet.Amount; total > s.limits.MaxBetPerRound {
		return &ExposureLimitExceededError{Limit: "bet", Ceiling: s.limits.MaxBetPerRound, Attempted: total}
	}
	if total := stats.TotalPotentialWinnings + bet.PotentialWinnings(); total > s.limits.MaxProfitPerRound {
		return &ExposureLimitExceededError{Limit: "profit", Ceiling: s.limits.MaxProfitPerRound, Attempted: total}
	}
	return nil
}

// ValidateRoundState admits bets only while the round is open.
func (s *BetService) ValidateRoundState(round *models.Round) error {
	if round.State != models.RoundStateOpen {
		return &InvalidStateError{Op: "place bet", State: round.State}
	}
	return nil
}

// AdmitBet runs the full admission sequence and persists the bet. Nothing is
// written if any check fails.
func (s *BetService) AdmitBet(userID uint, req BetRequest) (*models.Bet, error) {
	multiplier := int64(math.Floor(req.Multiplier))
	if err := s.ValidateFormat(req.Amount, multiplier); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	round, err := s.store.OpenRound()
	if err == ErrNotFound {
		return nil, &InvalidStateError{Op: "place bet", State: "none"}
	} else if err != nil {
		return nil, err
	}
	if err := s.ValidateRoundState(round); err != nil {
		return nil, err
	}

	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.RoundBets(round.ID)
	if err != nil {
		return nil, err
	}
	stats := s.UserRoundStats(userID, existing)

	bet := &models.Bet{
		UserID:     userID,
		RoundID:    round.ID,
		Amount:     req.Amount,
		Multiplier: multiplier,
	}
	if err := s.ValidateUser(bet, user, stats); err != nil {
		return nil, err
	}

	if err := s.store.CreateBet(bet); err != nil {
		return nil, err
	}
	logger.Infof("[Bets] user %d bet %d at %d on round %s", userID, bet.Amount, bet.Multiplier, round.ID)
	return bet, nil
}
