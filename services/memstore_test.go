package services

import (
	"sync"

	"github.com/bellapacxx/crash-backend/models"
)

// memStore is a goroutine-safe in-memory Store for tests. Transaction takes a
// snapshot and restores it when fn fails, matching the commit-or-nothing
// behavior of the gorm store; the fail* fields inject write failures.
type memStore struct {
	mu        sync.Mutex
	seeds     map[string]*models.Seed
	rounds    map[string]*models.Round
	bets      []models.Bet
	users     map[uint]*models.User
	txs       []models.Transaction
	nextBetID uint

	failConsumeSeed error
	failCreateRound error
}

func newMemStore() *memStore {
	return &memStore{
		seeds:  make(map[string]*models.Seed),
		rounds: make(map[string]*models.Round),
		users:  make(map[uint]*models.User),
	}
}

func (m *memStore) PendingSeed() (*models.Seed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.seeds {
		if s.State == models.SeedStatePending {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) SeedByID(id string) (*models.Seed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seeds[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) CreateSeed(seed *models.Seed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *seed
	m.seeds[seed.ID] = &cp
	return nil
}

func (m *memStore) ConsumeSeed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failConsumeSeed != nil {
		return m.failConsumeSeed
	}
	s, ok := m.seeds[id]
	if !ok {
		return ErrNotFound
	}
	s.State = models.SeedStateConsumed
	return nil
}

func (m *memStore) OpenRound() (*models.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rounds {
		if r.State == models.RoundStateOpen {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) CreateRound(round *models.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateRound != nil {
		return m.failCreateRound
	}
	cp := *round
	m.rounds[round.ID] = &cp
	return nil
}

func (m *memStore) SaveRound(round *models.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *round
	m.rounds[round.ID] = &cp
	return nil
}

func (m *memStore) RecentRounds(limit int) ([]models.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Round, 0, limit)
	for _, r := range m.rounds {
		out = append(out, *r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) UnfinishedRounds() ([]models.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Round
	for _, r := range m.rounds {
		if r.State == models.RoundStateOpen || r.State == models.RoundStateResolving {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) RoundByID(id string) (*models.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) CreateBet(bet *models.Bet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextBetID++
	bet.ID = m.nextBetID
	if u, ok := m.users[bet.UserID]; ok {
		bet.User = *u
	}
	m.bets = append(m.bets, *bet)
	return nil
}

func (m *memStore) SaveBet(bet *models.Bet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bets {
		if m.bets[i].ID == bet.ID {
			m.bets[i] = *bet
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) RoundBets(roundID string) ([]models.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Bet
	for i := range m.bets {
		if m.bets[i].RoundID == roundID {
			out = append(out, m.bets[i])
		}
	}
	return out, nil
}

func (m *memStore) UserByID(id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) SaveUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) CreateTransaction(tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = append(m.txs, *tx)
	return nil
}

func (m *memStore) Transaction(fn func(Store) error) error {
	m.mu.Lock()
	seeds := copySeeds(m.seeds)
	rounds := copyRounds(m.rounds)
	bets := append([]models.Bet(nil), m.bets...)
	users := copyUsers(m.users)
	txs := append([]models.Transaction(nil), m.txs...)
	nextBetID := m.nextBetID
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.seeds, m.rounds, m.bets, m.users, m.txs, m.nextBetID =
			seeds, rounds, bets, users, txs, nextBetID
		m.mu.Unlock()
		return err
	}
	return nil
}

func copySeeds(in map[string]*models.Seed) map[string]*models.Seed {
	out := make(map[string]*models.Seed, len(in))
	for k, v := range in {
		cp := *v
		out[k] = &cp
	}
	return out
}

func copyRounds(in map[string]*models.Round) map[string]*models.Round {
	out := make(map[string]*models.Round, len(in))
	for k, v := range in {
		cp := *v
		out[k] = &cp
	}
	return out
}

func copyUsers(in map[uint]*models.User) map[uint]*models.User {
	out := make(map[uint]*models.User, len(in))
	for k, v := range in {
		cp := *v
		out[k] = &cp
	}
	return out
}

func (m *memStore) pendingSeedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.seeds {
		if s.State == models.SeedStatePending {
			n++
		}
	}
	return n
}
