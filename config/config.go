package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Limits holds the wagering parameters. Amounts are in currency sub-units.
type Limits struct {
	MinBetAmount      int64
	MaxBetPerRound    int64
	MaxProfitPerRound int64
	HouseEdge         float64
}

var GameLimits Limits

// LoadLimits reads the wagering limits from the environment, with defaults.
func LoadLimits() Limits {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	GameLimits = Limits{
		MinBetAmount:      envInt64("MIN_BET_AMOUNT", 100),
		MaxBetPerRound:    envInt64("MAX_BET_PER_ROUND", 100000),
		MaxProfitPerRound: envInt64("MAX_PROFIT_PER_ROUND", 1000000),
		HouseEdge:         envFloat("HOUSE_EDGE", 0.05),
	}

	if GameLimits.HouseEdge <= 0 || GameLimits.HouseEdge >= 1 {
		log.Fatalf("[FATAL] HOUSE_EDGE must be in (0,1), got %v", GameLimits.HouseEdge)
	}
	if GameLimits.MinBetAmount <= 0 {
		log.Fatal("[FATAL] MIN_BET_AMOUNT must be positive")
	}

	return GameLimits
}

func envInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Fatalf("[FATAL] invalid %s: %v", key, err)
	}
	return v
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Fatalf("[FATAL] invalid %s: %v", key, err)
	}
	return v
}
