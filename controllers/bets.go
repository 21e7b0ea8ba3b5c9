package controllers

import (
	"net/http"

	"github.com/bellapacxx/crash-backend/services"
	"github.com/gin-gonic/gin"
)

// PlaceBet admits a wager against the open round.
func PlaceBet(c *gin.Context) {
	var req struct {
		UserID     uint    `json:"user_id" binding:"required"`
		Amount     int64   `json:"amount" binding:"required"`
		Multiplier float64 `json:"multiplier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bet, err := services.Game.PlaceBet(req.UserID, services.BetRequest{
		Amount:     req.Amount,
		Multiplier: req.Multiplier,
	})
	if err != nil {
		status, msg := betErrorResponse(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, services.SanitizeBet(bet))
}

// betErrorResponse maps admission failures to HTTP statuses. Validation and
// business-rule rejections surface verbatim; state races get a retry hint;
// everything else stays opaque.
func betErrorResponse(err error) (int, string) {
	switch e := err.(type) {
	case *services.ValidationError:
		return http.StatusBadRequest, e.Reason
	case *services.ExposureLimitExceededError:
		return http.StatusBadRequest, e.Error()
	case *services.InvalidStateError:
		return http.StatusConflict, "Betting is closed for this round. Try again."
	default:
		if err == services.ErrInsufficientBalance {
			return http.StatusBadRequest, "Insufficient balance"
		}
		if err == services.ErrNotFound {
			return http.StatusNotFound, "User not found"
		}
		return http.StatusInternalServerError, "Failed to place bet"
	}
}
