// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"doctrade-ledger/pkg/db"
)

// StakingPlan describes a staking plan offered by the platform.
type StakingPlan struct {
	Name      string          `json:"name"`
	MinAmount decimal.Decimal `json:"min_amount"`
	APY       decimal.Decimal `json:"apy"`
	LockDays  int             `json:"lock_days"`
}

// InvestmentPackage describes a fixed-term investment package.
type InvestmentPackage struct {
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	ExpectedReturn decimal.Decimal `json:"expected_return"`
	DurationDays   int             `json:"duration_days"`
}

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config
	RedisAddr  string

	// Read-only lookup tables; the ledger core never mutates these.
	StakingPlans       map[string]StakingPlan
	InvestmentPackages map[string]InvestmentPackage
}

// LoadConfig loads configuration from environment variables, with an
// optional .env file for local development.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load() // missing .env is fine; env vars win

	serverPort := getEnv("SERVER_PORT", "8080")

	dbPortStr := getEnv("DB_PORT", "5432")
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	return &AppConfig{
		ServerPort: serverPort,
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "doctradedb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		StakingPlans:       defaultStakingPlans(),
		InvestmentPackages: defaultInvestmentPackages(),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStakingPlans() map[string]StakingPlan {
	return map[string]StakingPlan{
		"basic": {
			Name:      "basic",
			MinAmount: decimal.NewFromInt(100),
			APY:       decimal.NewFromInt(5),
			LockDays:  30,
		},
		"premium": {
			Name:      "premium",
			MinAmount: decimal.NewFromInt(1000),
			APY:       decimal.NewFromInt(10),
			LockDays:  90,
		},
		"vip": {
			Name:      "vip",
			MinAmount: decimal.NewFromInt(10000),
			APY:       decimal.NewFromInt(15),
			LockDays:  180,
		},
	}
}

func defaultInvestmentPackages() map[string]InvestmentPackage {
	return map[string]InvestmentPackage{
		"starter": {
			Name:           "starter",
			Price:          decimal.NewFromInt(500),
			ExpectedReturn: decimal.NewFromInt(8),
			DurationDays:   60,
		},
		"growth": {
			Name:           "growth",
			Price:          decimal.NewFromInt(2000),
			ExpectedReturn: decimal.NewFromInt(12),
			DurationDays:   90,
		},
		"premium": {
			Name:           "premium",
			Price:          decimal.NewFromInt(10000),
			ExpectedReturn: decimal.NewFromInt(18),
			DurationDays:   180,
		},
	}
}
