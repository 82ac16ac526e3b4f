package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingVariable = errors.New("missing required variable")
	ErrInvalidValue    = errors.New("invalid variable value")
)

type Configuration struct {
	EntranceFee         *big.Int
	RoundDuration       time.Duration
	RateChangeDelay     time.Duration
	BuyRateBps          uint64
	SellRateBps         uint64
	AdminAddress        string
	FeeRecipientAddress string
	DatabasePath        string
	LogFile             string
	ErrorFile           string
	LogLevel            string
	LogConsole          bool
}

// Load reads the .env file (the process environment wins when the file is
// absent) and assembles the daemon configuration.
func Load() (*Configuration, error) {
	_ = godotenv.Load()

	configuration := &Configuration{
		DatabasePath: getEnv("LEDGER_DATABASE_PATH", "ledger.db"),
		LogFile:      os.Getenv("LEDGER_LOG_FILE"),
		ErrorFile:    os.Getenv("LEDGER_ERROR_FILE"),
		LogLevel:     getEnv("LEDGER_LOG_LEVEL", "debug"),
		LogConsole:   getEnv("LEDGER_LOG_CONSOLE", "true") == "true",
	}

	configuration.AdminAddress = os.Getenv("LEDGER_ADMIN_ADDRESS")
	if configuration.AdminAddress == "" {
		return nil, fmt.Errorf("%w: LEDGER_ADMIN_ADDRESS", ErrMissingVariable)
	}

	configuration.FeeRecipientAddress = os.Getenv("LEDGER_FEE_RECIPIENT_ADDRESS")
	if configuration.FeeRecipientAddress == "" {
		return nil, fmt.Errorf("%w: LEDGER_FEE_RECIPIENT_ADDRESS", ErrMissingVariable)
	}

	entranceFee, ok := new(big.Int).SetString(getEnv("LEDGER_ENTRANCE_FEE", "1000000000"), 10)
	if !ok || entranceFee.Sign() <= 0 {
		return nil, fmt.Errorf("%w: LEDGER_ENTRANCE_FEE", ErrInvalidValue)
	}
	configuration.EntranceFee = entranceFee

	roundDuration, err := time.ParseDuration(getEnv("LEDGER_ROUND_DURATION", "24h"))
	if err != nil || roundDuration <= 0 {
		return nil, fmt.Errorf("%w: LEDGER_ROUND_DURATION", ErrInvalidValue)
	}
	configuration.RoundDuration = roundDuration

	rateChangeDelay, err := time.ParseDuration(getEnv("LEDGER_RATE_CHANGE_DELAY", "48h"))
	if err != nil || rateChangeDelay < 0 {
		return nil, fmt.Errorf("%w: LEDGER_RATE_CHANGE_DELAY", ErrInvalidValue)
	}
	configuration.RateChangeDelay = rateChangeDelay

	configuration.BuyRateBps, err = parseRate("LEDGER_BUY_RATE_BPS", "100")
	if err != nil {
		return nil, err
	}

	configuration.SellRateBps, err = parseRate("LEDGER_SELL_RATE_BPS", "100")
	if err != nil {
		return nil, err
	}

	return configuration, nil
}

func parseRate(key string, fallback string) (uint64, error) {
	rate, err := strconv.ParseUint(getEnv(key, fallback), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidValue, key)
	}
	return rate, nil
}

func getEnv(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
