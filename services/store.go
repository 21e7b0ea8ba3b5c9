package services

import (
	"errors"

	"github.com/bellapacxx/crash-backend/models"

	"gorm.io/gorm"
)

// Store is the persistence surface the round engine core consumes. Implemented
// by gormStore against Postgres; tests substitute an in-memory fake.
type Store interface {
	PendingSeed() (*models.Seed, error)
	SeedByID(id string) (*models.Seed, error)
	CreateSeed(seed *models.Seed) error
	ConsumeSeed(id string) error

	OpenRound() (*models.Round, error)
	CreateRound(round *models.Round) error
	SaveRound(round *models.Round) error
	RecentRounds(limit int) ([]models.Round, error)
	RoundByID(id string) (*models.Round, error)
	UnfinishedRounds() ([]models.Round, error)

	CreateBet(bet *models.Bet) error
	SaveBet(bet *models.Bet) error
	RoundBets(roundID string) ([]models.Bet, error)

	UserByID(id uint) (*models.User, error)
	SaveUser(user *models.User) error
	CreateTransaction(tx *models.Transaction) error

	// Transaction runs fn against a store whose writes commit atomically.
	Transaction(fn func(Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a gorm connection in the engine's Store interface.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) PendingSeed() (*models.Seed, error) {
	var seed models.Seed
	if err := s.db.Where("state = ?", models.SeedStatePending).First(&seed).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &seed, nil
}

func (s *gormStore) SeedByID(id string) (*models.Seed, error) {
	var seed models.Seed
	if err := s.db.First(&seed, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &seed, nil
}

func (s *gormStore) CreateSeed(seed *models.Seed) error {
	return s.db.Create(seed).Error
}

func (s *gormStore) ConsumeSeed(id string) error {
	return s.db.Model(&models.Seed{}).Where("id = ?", id).
		Update("state", models.SeedStateConsumed).Error
}

func (s *gormStore) OpenRound() (*models.Round, error) {
	var round models.Round
	if err := s.db.Where("state = ?", models.RoundStateOpen).First(&round).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &round, nil
}

func (s *gormStore) CreateRound(round *models.Round) error {
	return s.db.Create(round).Error
}

func (s *gormStore) SaveRound(round *models.Round) error {
	return s.db.Save(round).Error
}

func (s *gormStore) RecentRounds(limit int) ([]models.Round, error) {
	var rounds []models.Round
	err := s.db.Order("created_at DESC").Limit(limit).Find(&rounds).Error
	return rounds, err
}

func (s *gormStore) UnfinishedRounds() ([]models.Round, error) {
	var rounds []models.Round
	err := s.db.Where("state IN ?", []models.RoundState{models.RoundStateOpen, models.RoundStateResolving}).
		Order("created_at ASC").Find(&rounds).Error
	return rounds, err
}

func (s *gormStore) RoundByID(id string) (*models.Round, error) {
	var round models.Round
	if err := s.db.First(&round, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &round, nil
}

func (s *gormStore) CreateBet(bet *models.Bet) error {
	return s.db.Create(bet).Error
}

func (s *gormStore) SaveBet(bet *models.Bet) error {
	return s.db.Save(bet).Error
}

func (s *gormStore) RoundBets(roundID string) ([]models.Bet, error) {
	var bets []models.Bet
	err := s.db.Preload("User").Where("round_id = ?", roundID).
		Order("created_at ASC").Find(&bets).Error
	return bets, err
}

func (s *gormStore) UserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (s *gormStore) SaveUser(user *models.User) error {
	return s.db.Save(user).Error
}

func (s *gormStore) CreateTransaction(tx *models.Transaction) error {
	return s.db.Create(tx).Error
}

func (s *gormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
