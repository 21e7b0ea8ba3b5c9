package controllers

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/bellapacxx/crash-backend/config"
	"github.com/bellapacxx/crash-backend/services"
	"github.com/gin-gonic/gin"
)

// ListRounds returns recent rounds, sanitized for the round's state.
func ListRounds(c *gin.Context) {
	rounds, err := services.Game.Store().RecentRounds(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rounds"})
		return
	}

	out := make([]*services.PublicRound, len(rounds))
	for i := range rounds {
		out[i] = services.SanitizeRound(&rounds[i])
	}
	c.JSON(http.StatusOK, out)
}

// GetCurrentRound returns the active round with its bets.
func GetCurrentRound(c *gin.Context) {
	round, err := services.Game.Store().OpenRound()
	if err != nil {
		if err == services.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "No round open"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch round"})
		return
	}

	bets, err := services.Game.Store().RoundBets(round.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"round": services.SanitizeRound(round),
		"bets":  services.SanitizeBets(bets),
	})
}

// GetFairness returns the pending seed's commitment, published before the
// round that will consume it opens.
func GetFairness(c *gin.Context) {
	seed, err := services.Game.Seeds().CurrentPendingSeed()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch commitment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"seed_id":    seed.ID,
		"commitment": seed.Commitment,
	})
}

// VerifyRound recomputes a round's outcome from a revealed secret so anyone
// can audit a resolved round.
func VerifyRound(c *gin.Context) {
	var req struct {
		Secret  string `json:"secret" binding:"required"`
		RoundID string `json:"round_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	combined := sha256.Sum256([]byte(req.Secret + "-" + req.RoundID))
	combinedHex := hex.EncodeToString(combined[:])

	modulus := services.EdgeModulus(config.GameLimits.HouseEdge)
	outcome, err := services.ComputeOutcome(combinedHex, modulus)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"round_id": req.RoundID,
		"hash":     combinedHex,
		"outcome":  outcome,
	})
}
