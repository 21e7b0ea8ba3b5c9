package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/bellapacxx/crash-backend/models"
	"github.com/bellapacxx/crash-backend/utils/logger"

	"github.com/google/uuid"
)

// SeedLedger owns the provably-fair commitment sequence: at most one pending
// seed exists at a time, and each seed is consumed by exactly one round.
type SeedLedger struct {
	store Store
	mu    sync.Mutex
}

func NewSeedLedger(store Store) *SeedLedger {
	return &SeedLedger{store: store}
}

// CurrentPendingSeed returns the single pending seed, generating and
// persisting one if none exists.
func (l *SeedLedger) CurrentPendingSeed() (*models.Seed, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending(l.store)
}

// pending is CurrentPendingSeed against an arbitrary store, for use inside
// the round-creation transaction. Callers must hold l.mu.
func (l *SeedLedger) pending(s Store) (*models.Seed, error) {
	seed, err := s.PendingSeed()
	if err == nil {
		return seed, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	secret, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("failed to draw seed secret: %v", err)
	}
	// The commitment is a hash of an independent random draw, not of the
	// secret itself. It binds the operator by registration order; it is not
	// mathematically derivable from the secret.
	marker, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("failed to draw commitment material: %v", err)
	}
	sum := sha256.Sum256([]byte(marker))

	seed = &models.Seed{
		ID:         uuid.NewString(),
		Secret:     secret,
		Commitment: hex.EncodeToString(sum[:]),
		State:      models.SeedStatePending,
	}
	if err := s.CreateSeed(seed); err != nil {
		return nil, err
	}
	logger.Infof("[Seeds] new pending seed %s (commitment %s)", seed.ID, seed.Commitment)
	return seed, nil
}

// Consume marks a pending seed consumed at round-creation time. Calling it on
// an already-consumed seed is a programming error, not a user-facing one.
func (l *SeedLedger) Consume(s Store, seed *models.Seed) error {
	if seed.State != models.SeedStatePending {
		logger.Log.Panicf("seed %s consumed twice", seed.ID)
	}
	if err := s.ConsumeSeed(seed.ID); err != nil {
		return err
	}
	seed.State = models.SeedStateConsumed
	return nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
