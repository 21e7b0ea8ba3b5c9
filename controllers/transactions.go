package controllers

import (
	"net/http"

	"github.com/bellapacxx/crash-backend/config"
	"github.com/bellapacxx/crash-backend/models"

	"github.com/gin-gonic/gin"
)

// Deposit handles adding funds to user wallet
func Deposit(c *gin.Context) {
	var tx models.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx.Type = models.DepositTransaction
	if err := config.DB.Create(&tx).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deposit"})
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// Withdraw handles user withdrawal
func Withdraw(c *gin.Context) {
	var req struct {
		TelegramID int64 `json:"telegramId"`
		Amount     int64 `json:"amount"` // sub-units
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
		return
	}

	var user models.User
	if err := config.DB.Where("telegram_id = ?", req.TelegramID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.Balance < req.Amount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
		return
	}

	// Start DB transaction for safety
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	user.Balance -= req.Amount
	if err := tx.Save(&user).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update balance"})
		return
	}

	withdrawTx := models.Transaction{
		UserID:       user.ID,
		Amount:       -req.Amount,
		Type:         models.WithdrawTransaction,
		BalanceAfter: user.Balance,
	}
	if err := tx.Create(&withdrawTx).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction"})
		return
	}

	tx.Commit()
	c.JSON(http.StatusCreated, withdrawTx)
}
