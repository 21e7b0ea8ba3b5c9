package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/bellapacxx/crash-backend/config"
	"github.com/bellapacxx/crash-backend/models"
	"github.com/bellapacxx/crash-backend/utils/logger"
)

const (
	BetCountdownSec  = 15 // betting window per round
	ResolveRevealSec = 5  // pause on the revealed outcome before the next round
)

// Engine drives the shared round: open a round, run the betting countdown,
// resolve, reveal, settle, repeat. It owns the websocket client set and is
// the only caller of the round manager.
type Engine struct {
	store  Store
	seeds  *SeedLedger
	rounds *RoundManager
	bets   *BetService

	clients   map[uint]*Client
	mu        sync.RWMutex
	status    string // waiting | betting | resolving | resolved
	countdown int
}

var Game *Engine

// InitGameEngine wires the round engine against the shared DB connection and
// starts the auto-round loop.
func InitGameEngine() {
	store := NewStore(config.DB)
	seeds := NewSeedLedger(store)
	modulus := EdgeModulus(config.GameLimits.HouseEdge)

	// One lock covers admission and resolution; see BetService.
	roundLock := &sync.Mutex{}

	Game = &Engine{
		store:   store,
		seeds:   seeds,
		rounds:  NewRoundManager(store, seeds, modulus, roundLock),
		bets:    NewBetService(store, config.GameLimits, roundLock),
		clients: make(map[uint]*Client),
		status:  "waiting",
	}
	go Game.runRounds()
	log.Printf("[Init] Game engine started (house edge %.2f, modulus %d)", config.GameLimits.HouseEdge, modulus)
}

// Rounds exposes the lifecycle manager to the REST layer.
func (e *Engine) Rounds() *RoundManager { return e.rounds }

// Seeds exposes the seed ledger to the REST layer.
func (e *Engine) Seeds() *SeedLedger { return e.seeds }

// Store exposes the persistence surface to the REST layer.
func (e *Engine) Store() Store { return e.store }

// PlaceBet admits a wager against the active round.
func (e *Engine) PlaceBet(userID uint, req BetRequest) (*models.Bet, error) {
	bet, err := e.bets.AdmitBet(userID, req)
	if err != nil {
		return nil, err
	}
	e.broadcastState()
	return bet, nil
}

// -------------------- Client management --------------------

func (e *Engine) addClient(c *Client) {
	e.mu.Lock()
	if old, ok := e.clients[c.userID]; ok {
		old.Close()
	}
	e.clients[c.userID] = c
	e.mu.Unlock()

	go c.writePump()
	go c.readPump()

	log.Printf("[Engine] user %d joined (total=%d)", c.userID, e.clientCount())
	go e.broadcastState()
}

func (e *Engine) removeClient(userID uint) {
	e.mu.Lock()
	client, ok := e.clients[userID]
	if ok {
		delete(e.clients, userID)
		client.Close()
	}
	e.mu.Unlock()
}

func (e *Engine) clientCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.clients)
}

func (e *Engine) notifyUser(userID uint, message string) {
	e.mu.RLock()
	client, ok := e.clients[userID]
	e.mu.RUnlock()

	if !ok {
		return
	}

	payload := map[string]string{
		"type":    "notification",
		"message": message,
	}
	b, _ := json.Marshal(payload)

	select {
	case client.send <- b:
	default:
		log.Printf("[Engine] dropping notification to user %d", userID)
	}
}

// -------------------- Auto rounds --------------------

func (e *Engine) runRounds() {
	for {
		e.recoverStale()

		round, err := e.rounds.CreateRound()
		if err != nil {
			logger.Errorf("[Engine] create round: %v", err)
			time.Sleep(2 * time.Second)
			continue
		}

		// Betting countdown
		for i := BetCountdownSec; i > 0; i-- {
			e.mu.Lock()
			e.status = "betting"
			e.countdown = i
			e.mu.Unlock()
			e.broadcastState()
			time.Sleep(1 * time.Second)
		}

		e.mu.Lock()
		e.status = "resolving"
		e.countdown = 0
		e.mu.Unlock()
		e.broadcastState()

		resolved, err := e.resolveWithRetry(round)
		if err != nil {
			// recoverStale finishes the round on the next iteration.
			logger.Errorf("[Engine] resolve round %s: %v", round.ID, err)
			continue
		}

		e.settleRound(resolved)

		e.mu.Lock()
		e.status = "resolved"
		e.mu.Unlock()
		e.broadcastState()

		time.Sleep(ResolveRevealSec * time.Second)

		// Publish the next commitment before its round opens.
		if _, err := e.seeds.CurrentPendingSeed(); err != nil {
			logger.Errorf("[Engine] pending seed: %v", err)
		}
		e.mu.Lock()
		e.status = "waiting"
		e.mu.Unlock()
		e.broadcastState()
	}
}

// resolveWithRetry absorbs transient store failures during resolution. A
// round that still cannot resolve is left in place for recoverStale.
func (e *Engine) resolveWithRetry(round *models.Round) (*models.Round, error) {
	var resolved *models.Round
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		if attempt > 1 {
			time.Sleep(time.Second)
		}
		resolved, err = e.rounds.Resolve(round)
		if err == nil {
			return resolved, nil
		}
		logger.Errorf("[Engine] resolve round %s attempt %d: %v", round.ID, attempt, err)
	}
	return nil, err
}

// recoverStale finishes rounds a previous iteration (or process) left open or
// resolving, so their bets still settle. Runs before each new round opens,
// when no round should be in flight.
func (e *Engine) recoverStale() {
	stale, err := e.store.UnfinishedRounds()
	if err != nil {
		logger.Errorf("[Engine] list unfinished rounds: %v", err)
		return
	}
	for i := range stale {
		resolved, err := e.rounds.Resolve(&stale[i])
		if err != nil {
			logger.Errorf("[Engine] recover round %s: %v", stale[i].ID, err)
			continue
		}
		logger.Infof("[Engine] recovered round %s at %d", resolved.ID, resolved.Outcome)
		e.settleRound(resolved)
	}
}

// settleRound debits losers and credits winners once the outcome is known.
// Bets themselves stay immutable apart from the settlement bookkeeping.
func (e *Engine) settleRound(round *models.Round) {
	bets, err := e.store.RoundBets(round.ID)
	if err != nil {
		logger.Errorf("[Engine] fetch bets for round %s: %v", round.ID, err)
		return
	}

	for i := range bets {
		bet := bets[i]
		if bet.Settled {
			continue
		}
		err := e.store.Transaction(func(tx Store) error {
			user, err := tx.UserByID(bet.UserID)
			if err != nil {
				return err
			}

			var delta int64
			var txType models.TransactionType
			if bet.Won(round.Outcome) {
				delta = bet.PotentialWinnings() - bet.Amount
				txType = models.PayoutTransaction
				bet.Payout = bet.PotentialWinnings()
			} else {
				delta = -bet.Amount
				txType = models.WagerTransaction
			}

			user.Balance += delta
			user.TotalBets++
			user.TotalWagered += bet.Amount
			if err := tx.SaveUser(user); err != nil {
				return err
			}

			bet.Settled = true
			if err := tx.SaveBet(&bet); err != nil {
				return err
			}
			return tx.CreateTransaction(&models.Transaction{
				UserID:       user.ID,
				Type:         txType,
				Amount:       delta,
				BalanceAfter: user.Balance,
			})
		})
		if err != nil {
			logger.Errorf("[Engine] settle bet %d: %v", bet.ID, err)
			continue
		}
		if bet.Payout > 0 {
			e.notifyUser(bet.UserID, "🎉 Your bet won!")
		}
	}
}

// -------------------- Broadcast --------------------

type gameState struct {
	Type           string       `json:"type"`
	Status         string       `json:"status"`
	Countdown      int          `json:"countdown"`
	Round          *PublicRound `json:"round"`
	Bets           []PublicBet  `json:"bets"`
	NextCommitment string       `json:"next_commitment,omitempty"`
}

// snapshot builds the sanitized view of the current round for broadcast.
func (e *Engine) snapshot() gameState {
	e.mu.RLock()
	state := gameState{
		Type:      "state",
		Status:    e.status,
		Countdown: e.countdown,
	}
	e.mu.RUnlock()

	round := e.currentRound()
	if round != nil {
		state.Round = SanitizeRound(round)
		if bets, err := e.store.RoundBets(round.ID); err == nil {
			state.Bets = SanitizeBets(bets)
		}
	}

	if seed, err := e.store.PendingSeed(); err == nil {
		state.NextCommitment = seed.Commitment
	}
	return state
}

// currentRound is the open round if any, else the latest round (so the
// reveal broadcast carries the resolved record).
func (e *Engine) currentRound() *models.Round {
	if round, err := e.store.OpenRound(); err == nil {
		return round
	}
	rounds, err := e.store.RecentRounds(1)
	if err != nil || len(rounds) == 0 {
		return nil
	}
	return &rounds[0]
}

func (e *Engine) broadcastState() {
	b, err := json.Marshal(e.snapshot())
	if err != nil {
		logger.Errorf("[Engine] marshal state: %v", err)
		return
	}

	e.mu.RLock()
	clients := make([]*Client, 0, len(e.clients))
	for _, c := range e.clients {
		clients = append(clients, c)
	}
	e.mu.RUnlock()

	for _, c := range clients {
		func(c *Client) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Engine] recovered broadcast to user %d: %v", c.userID, r)
				}
			}()
			select {
			case c.send <- b:
			default:
				log.Printf("[Engine] dropping msg to user %d", c.userID)
			}
		}(c)
	}
}
