package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/bellapacxx/crash-backend/models"
)

func TestSeedLedgerSinglePending(t *testing.T) {
	store := newMemStore()
	ledger := NewSeedLedger(store)

	seed, err := ledger.CurrentPendingSeed()
	if err != nil {
		t.Fatal(err)
	}
	if seed.State != models.SeedStatePending {
		t.Errorf("state = %s, want pending", seed.State)
	}
	if len(seed.Secret) != 64 {
		t.Errorf("secret length = %d, want 64 hex chars", len(seed.Secret))
	}
	if len(seed.Commitment) != 64 {
		t.Errorf("commitment length = %d, want 64 hex chars", len(seed.Commitment))
	}

	// The commitment is an independent draw, never a hash of the secret.
	sum := sha256.Sum256([]byte(seed.Secret))
	if seed.Commitment == hex.EncodeToString(sum[:]) {
		t.Error("commitment must not be derived from the secret")
	}

	again, err := ledger.CurrentPendingSeed()
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != seed.ID {
		t.Errorf("second call created a new seed: %s vs %s", again.ID, seed.ID)
	}
	if store.pendingSeedCount() != 1 {
		t.Errorf("pending seeds = %d, want 1", store.pendingSeedCount())
	}
}

func TestSeedLedgerConcurrent(t *testing.T) {
	store := newMemStore()
	ledger := NewSeedLedger(store)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.CurrentPendingSeed(); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if store.pendingSeedCount() != 1 {
		t.Errorf("pending seeds = %d, want 1", store.pendingSeedCount())
	}
}

func TestConsumeTwicePanics(t *testing.T) {
	store := newMemStore()
	ledger := NewSeedLedger(store)

	seed, err := ledger.CurrentPendingSeed()
	if err != nil {
		t.Fatal(err)
	}
	if err := ledger.Consume(store, seed); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("consuming a consumed seed must panic")
		}
	}()
	ledger.Consume(store, seed)
}

func newTestManager(store Store) *RoundManager {
	ledger := NewSeedLedger(store)
	return NewRoundManager(store, ledger, 20, &sync.Mutex{})
}

func TestCreateRoundConsumesSeed(t *testing.T) {
	store := newMemStore()
	mgr := newTestManager(store)

	round, err := mgr.CreateRound()
	if err != nil {
		t.Fatal(err)
	}
	if round.State != models.RoundStateOpen {
		t.Errorf("state = %s, want open", round.State)
	}

	seed, err := store.SeedByID(round.SeedID)
	if err != nil {
		t.Fatal(err)
	}
	if seed.State != models.SeedStateConsumed {
		t.Errorf("seed state = %s, want consumed at round creation", seed.State)
	}
	if store.pendingSeedCount() != 0 {
		t.Errorf("pending seeds = %d, want 0 right after creation", store.pendingSeedCount())
	}
}

func TestCreateRoundExclusive(t *testing.T) {
	store := newMemStore()
	mgr := newTestManager(store)

	var wg sync.WaitGroup
	created := make(chan *models.Round, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			round, err := mgr.CreateRound()
			if err == nil {
				created <- round
				return
			}
			var rcErr *RoundCreationError
			if !errors.As(err, &rcErr) {
				t.Errorf("unexpected error type: %v", err)
			}
		}()
	}
	wg.Wait()
	close(created)

	if len(created) != 1 {
		t.Fatalf("open rounds created = %d, want exactly 1", len(created))
	}
	if store.pendingSeedCount() > 1 {
		t.Errorf("pending seeds = %d, want at most 1", store.pendingSeedCount())
	}
}

func TestCreateRoundSeedPerRound(t *testing.T) {
	store := newMemStore()
	mgr := newTestManager(store)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		round, err := mgr.CreateRound()
		if err != nil {
			t.Fatal(err)
		}
		if seen[round.SeedID] {
			t.Fatalf("seed %s consumed by two rounds", round.SeedID)
		}
		seen[round.SeedID] = true
		if _, err := mgr.Resolve(round); err != nil {
			t.Fatal(err)
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	store := newMemStore()
	mgr := newTestManager(store)

	round, err := mgr.CreateRound()
	if err != nil {
		t.Fatal(err)
	}
	seed, err := store.SeedByID(round.SeedID)
	if err != nil {
		t.Fatal(err)
	}

	resolved, err := mgr.Resolve(round)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.State != models.RoundStateResolved {
		t.Errorf("state = %s, want resolved", resolved.State)
	}

	// The outcome must be reproducible from the seed secret and round id.
	sum := sha256.Sum256([]byte(seed.Secret + "-" + round.ID))
	want, err := ComputeOutcome(hex.EncodeToString(sum[:]), 20)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Outcome != want {
		t.Errorf("outcome = %d, want %d", resolved.Outcome, want)
	}

	var fairness RoundFairness
	if err := json.Unmarshal(resolved.FairnessJSON, &fairness); err != nil {
		t.Fatalf("fairness payload: %v", err)
	}
	if fairness.Secret != seed.Secret {
		t.Error("reveal payload missing the seed secret")
	}
	if fairness.Commitment != seed.Commitment {
		t.Error("reveal payload missing the commitment")
	}
	if fairness.Hash != hex.EncodeToString(sum[:]) {
		t.Error("reveal payload hash mismatch")
	}
}

func TestCreateRoundRollsBackOnConsumeFailure(t *testing.T) {
	store := newMemStore()
	ledger := NewSeedLedger(store)
	seed, err := ledger.CurrentPendingSeed()
	if err != nil {
		t.Fatal(err)
	}
	mgr := NewRoundManager(store, ledger, 20, &sync.Mutex{})

	store.failConsumeSeed = errors.New("connection reset")
	_, err = mgr.CreateRound()
	var rcErr *RoundCreationError
	if !errors.As(err, &rcErr) {
		t.Fatalf("error = %v, want *RoundCreationError", err)
	}

	// The failed transaction must leave the seed pending and no round behind.
	got, err := store.SeedByID(seed.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.State != models.SeedStatePending {
		t.Errorf("seed state = %s, want pending after rollback", got.State)
	}
	if _, err := store.OpenRound(); err != ErrNotFound {
		t.Errorf("open round after failed creation: %v", err)
	}

	store.failConsumeSeed = nil
	round, err := mgr.CreateRound()
	if err != nil {
		t.Fatal(err)
	}
	if round.SeedID != seed.ID {
		t.Errorf("round seed = %s, want the surviving seed %s", round.SeedID, seed.ID)
	}
}

func TestCreateRoundRollsBackGeneratedSeed(t *testing.T) {
	store := newMemStore()
	mgr := newTestManager(store)

	store.failCreateRound = errors.New("disk full")
	_, err := mgr.CreateRound()
	var rcErr *RoundCreationError
	if !errors.As(err, &rcErr) {
		t.Fatalf("error = %v, want *RoundCreationError", err)
	}

	// The seed generated inside the failed transaction must not survive it.
	if store.pendingSeedCount() != 0 {
		t.Errorf("pending seeds = %d, want 0 after rollback", store.pendingSeedCount())
	}

	store.failCreateRound = nil
	if _, err := mgr.CreateRound(); err != nil {
		t.Fatalf("creation after recovery: %v", err)
	}
}

func TestResolveRejectsResolved(t *testing.T) {
	store := newMemStore()
	mgr := newTestManager(store)

	round, err := mgr.CreateRound()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Resolve(round); err != nil {
		t.Fatal(err)
	}

	var stateErr *InvalidStateError
	if _, err := mgr.Resolve(round); !errors.As(err, &stateErr) {
		t.Errorf("second resolve error = %v, want *InvalidStateError", err)
	}
}
