package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/bellapacxx/crash-backend/models"
	"github.com/bellapacxx/crash-backend/utils/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RoundFairness is the reveal payload attached to a resolved round.
type RoundFairness struct {
	SeedID     string `json:"seed_id"`
	Secret     string `json:"secret"`
	Commitment string `json:"commitment"`
	Hash       string `json:"hash"`
}

// RoundManager owns round state transitions and binds each round to its seed.
// It is the sole writer of round records. The lock is shared with the
// BetService: admission's open-check plus bet write and Resolve's transition
// must never interleave, or a bet could land on a round already resolved and
// miss settlement.
type RoundManager struct {
	store   Store
	seeds   *SeedLedger
	modulus int64
	mu      *sync.Mutex
}

func NewRoundManager(store Store, seeds *SeedLedger, modulus int64, lock *sync.Mutex) *RoundManager {
	return &RoundManager{store: store, seeds: seeds, modulus: modulus, mu: lock}
}

// CreateRound opens a new round against the current pending seed, consuming
// the seed in the same transaction so a crash cannot leave a consumed seed
// with no round. At most one round is open at a time.
func (m *RoundManager) CreateRound() (*models.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if open, err := m.store.OpenRound(); err == nil {
		return nil, &RoundCreationError{Err: &InvalidStateError{Op: "create round", State: open.State}}
	} else if err != ErrNotFound {
		return nil, &RoundCreationError{Err: err}
	}

	m.seeds.mu.Lock()
	defer m.seeds.mu.Unlock()

	var round *models.Round
	err := m.store.Transaction(func(tx Store) error {
		seed, err := m.seeds.pending(tx)
		if err != nil {
			return err
		}
		round = &models.Round{
			ID:     uuid.NewString(),
			State:  models.RoundStateOpen,
			SeedID: seed.ID,
		}
		if err := tx.CreateRound(round); err != nil {
			return err
		}
		return m.seeds.Consume(tx, seed)
	})
	if err != nil {
		return nil, &RoundCreationError{Err: err}
	}
	logger.Infof("[Rounds] round %s open on seed %s", round.ID, round.SeedID)
	return round, nil
}

// Resolve derives the round's outcome from its seed secret and round id, and
// moves it open -> resolving -> resolved. Strictly forward; a round is never
// reopened.
func (m *RoundManager) Resolve(round *models.Round) (*models.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if round.State != models.RoundStateOpen && round.State != models.RoundStateResolving {
		return nil, &InvalidStateError{Op: "resolve round", State: round.State}
	}

	seed, err := m.store.SeedByID(round.SeedID)
	if err != nil {
		return nil, err
	}

	if round.State == models.RoundStateOpen {
		round.State = models.RoundStateResolving
		if err := m.store.SaveRound(round); err != nil {
			return nil, err
		}
	}

	combined := sha256.Sum256([]byte(seed.Secret + "-" + round.ID))
	combinedHex := hex.EncodeToString(combined[:])
	outcome, err := ComputeOutcome(combinedHex, m.modulus)
	if err != nil {
		return nil, err
	}

	reveal, err := json.Marshal(RoundFairness{
		SeedID:     seed.ID,
		Secret:     seed.Secret,
		Commitment: seed.Commitment,
		Hash:       combinedHex,
	})
	if err != nil {
		return nil, err
	}

	round.Outcome = outcome
	round.FairnessJSON = datatypes.JSON(reveal)
	round.State = models.RoundStateResolved
	if err := m.store.SaveRound(round); err != nil {
		return nil, err
	}

	logger.Infof("[Rounds] round %s resolved at %d", round.ID, outcome)
	return round, nil
}
