package services

import (
	"log"
	"net/http"
	"strconv"

	"github.com/bellapacxx/crash-backend/config"
	"github.com/bellapacxx/crash-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] upgrade error: %v", err)
		return
	}

	userTelegramIDStr := c.Query("telegram_id")
	if userTelegramIDStr == "" {
		log.Println("[WS] missing telegram_id")
		conn.Close()
		return
	}
	userTelegramID, _ := strconv.ParseInt(userTelegramIDStr, 10, 64)

	var user models.User
	if err := config.DB.Where("telegram_id = ?", userTelegramID).First(&user).Error; err != nil {
		log.Printf("[WS] user not found: %v", err)
		conn.Close()
		return
	}

	client := &Client{
		userID: user.ID,
		conn:   conn,
		engine: Game,
		send:   make(chan []byte, 32),
	}
	log.Printf("[WS] New client: userID=%d, telegramID=%d", user.ID, userTelegramID)

	Game.addClient(client)
}
