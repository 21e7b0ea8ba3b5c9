package controllers

import (
	"net/http"

	"github.com/bellapacxx/crash-backend/config"
	"github.com/bellapacxx/crash-backend/models"
	"github.com/bellapacxx/crash-backend/services"
	"github.com/gin-gonic/gin"
)

type VerifyDepositRequest struct {
	UserID         int64  `json:"userId" binding:"required"`         // Telegram ID
	SMS            string `json:"sms" binding:"required"`            // Copied SMS text
	ExpectedAmount int64  `json:"expectedAmount" binding:"required"` // Amount expected, sub-units
	Reference      string `json:"reference" binding:"required"`      // Reference code
}

func VerifyDeposit(c *gin.Context) {
	var req VerifyDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Call the service to verify SMS
	verified, err := services.VerifyDeposit(req.SMS, req.Reference)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// If verified, update user balance
	if verified {
		var user models.User
		if err := config.DB.Where("telegram_id = ?", req.UserID).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		user.Balance += req.ExpectedAmount
		if err := config.DB.Save(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update balance"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": verified,
	})
}
