package routes

import (
	"github.com/bellapacxx/crash-backend/controllers"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// ----------------------
	// User routes
	// ----------------------
	api.POST("/users", controllers.RegisterUser)        // Register user
	api.GET("/users/:telegram_id", controllers.GetUser) // Get user by Telegram ID

	// ----------------------
	// Round routes
	// ----------------------
	api.GET("/rounds", controllers.ListRounds)              // Round history (sanitized)
	api.GET("/rounds/current", controllers.GetCurrentRound) // Active round + bets

	// ----------------------
	// Bet routes
	// ----------------------
	api.POST("/bets", controllers.PlaceBet) // Place a wager

	// ----------------------
	// Fairness routes
	// ----------------------
	api.GET("/fairness", controllers.GetFairness)         // Next round's commitment
	api.POST("/fairness/verify", controllers.VerifyRound) // Audit a resolved round

	// ----------------------
	// Transaction routes
	// ----------------------
	api.POST("/deposit", controllers.Deposit)              // Deposit funds
	api.POST("/deposit/verify", controllers.VerifyDeposit) // Verify SMS deposit
	api.POST("/withdraw", controllers.Withdraw)            // Withdraw funds
}
