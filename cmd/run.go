package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"stocksim/config"
	"stocksim/database"
	"stocksim/events"
	"stocksim/events/kafka"
	"stocksim/quotes"
	"stocksim/repository"
	"stocksim/service"
	"stocksim/web"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting stocksim server...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Println("Database connection established successfully")

	// Initialize event bus
	log.Println("Initializing event bus...")
	eventBus := events.NewBus()
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers)
		publisher.Attach(eventBus)
		defer publisher.Close()
		log.Println("Kafka trade publisher attached")
	}
	log.Println("Event bus initialized successfully")

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	quoteClient := quotes.NewClient(cfg.QuoteAPIURL, cfg.QuoteAPIKey)
	authService := service.NewAuthService(uowFactory)
	portfolioService := service.NewPortfolioService(uowFactory, quoteClient)
	tradingService := service.NewTradingService(uowFactory, quoteClient)
	log.Println("Services initialized successfully")

	// Initialize HTTP server
	server, err := web.NewServer(cfg.ListenAddr, cfg.SessionSecret, authService, portfolioService, tradingService, quoteClient)
	if err != nil {
		return fmt.Errorf("failed to initialize web server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down web server: %w", err)
		}
		return nil
	}
}
