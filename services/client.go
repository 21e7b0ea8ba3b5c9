package services

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	userID uint
	conn   *websocket.Conn
	engine *Engine
	send   chan []byte
	once   sync.Once
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// --------------------
// Client read/write pumps
// --------------------
func (c *Client) readPump() {
	defer func() {
		c.engine.removeClient(c.userID)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[Client %d] disconnected normally", c.userID)
			} else {
				log.Printf("[Client %d] read error: %v", c.userID, err)
			}
			return
		}

		func(msg []byte) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Client %d] recovered from panic: %v", c.userID, r)
				}
			}()

			var data struct {
				Action string  `json:"action"`
				Amount int64   `json:"amount"`
				Target float64 `json:"multiplier"`
			}
			if err := json.Unmarshal(msg, &data); err != nil {
				log.Printf("[Client %d] invalid message: %v", c.userID, err)
				return
			}

			switch data.Action {
			case "place_bet":
				req := BetRequest{Amount: data.Amount, Multiplier: data.Target}
				if _, err := c.engine.PlaceBet(c.userID, req); err != nil {
					c.engine.notifyUser(c.userID, betRejectionMessage(err))
					log.Printf("[Client %d] bet rejected: %v", c.userID, err)
				}
			default:
				log.Printf("[Client %d] unknown action: %v", c.userID, data.Action)
			}
		}(message)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("[Client %d] write error: %v", c.userID, err)
			return
		}
	}
}

// betRejectionMessage maps admission failures to user-visible text. State
// races get a generic retry message; persistence failures stay opaque.
func betRejectionMessage(err error) string {
	switch e := err.(type) {
	case *ValidationError:
		return e.Reason
	case *ExposureLimitExceededError:
		return e.Error()
	case *InvalidStateError:
		return "Betting is closed for this round. Try again next round."
	default:
		if err == ErrInsufficientBalance {
			return "Insufficient balance for this bet."
		}
		return "Bet could not be placed."
	}
}
