package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// HTTP server configuration
	ListenAddr    string
	SessionSecret string

	// Database configuration
	DatabaseURL string

	// Quote provider configuration
	QuoteAPIURL string
	QuoteAPIKey string

	// Trading configuration
	StartingCash decimal.Decimal // Cash credited to every new account

	// Optional Kafka brokers for trade event publishing
	KafkaBrokers []string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment directly
	_ = godotenv.Load()

	config := &Config{
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		QuoteAPIURL:   os.Getenv("QUOTE_API_URL"),
		QuoteAPIKey:   os.Getenv("QUOTE_API_KEY"),

		// Trading settings with defaults
		StartingCash: decimal.RequireFromString("10000.00"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if cash := os.Getenv("STARTING_CASH"); cash != "" {
		if parsedCash, err := decimal.NewFromString(cash); err == nil {
			config.StartingCash = parsedCash
		}
	}

	// Parse Kafka brokers; publishing is disabled when unset
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			broker = strings.TrimSpace(broker)
			if broker != "" {
				config.KafkaBrokers = append(config.KafkaBrokers, broker)
			}
		}
	}

	// Set defaults if not specified
	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.SessionSecret == "" {
			return nil, fmt.Errorf("SESSION_SECRET is required")
		}
	}

	return config, nil
}
