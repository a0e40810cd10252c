package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/election-ledger/internal/adapters/handler/http"
	"github.com/vncsmyrnk/election-ledger/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/election-ledger/internal/core/ports"
	"github.com/vncsmyrnk/election-ledger/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dbHost := os.Getenv("POSTGRES_HOST")
	dbPort := os.Getenv("POSTGRES_PORT")
	dbUser := os.Getenv("POSTGRES_USER")
	dbPass := os.Getenv("POSTGRES_PASSWORD")
	dbName := os.Getenv("POSTGRES_DB")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPass, dbHost, dbPort, dbName)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	adminRepo := postgres.NewAdminRepository(db)
	electionRepo := postgres.NewElectionRepository(db)
	ballotRepo := postgres.NewBallotRepository(db)

	// The initial administrator is set exactly once; later changes only
	// happen through admin transfer.
	if identity := os.Getenv("ADMIN_IDENTITY"); identity != "" {
		if err := adminRepo.Seed(context.Background(), identity); err != nil {
			log.Fatal(err)
		}
	}
	if _, err := adminRepo.Current(context.Background()); err != nil {
		log.Fatalf("administrator not configured, set ADMIN_IDENTITY: %v", err)
	}

	clock := ports.SystemClock{}
	access := services.NewAccessControl(adminRepo, logger)
	ledger := services.NewLedgerService(electionRepo, ballotRepo, access, clock, logger)
	projector := services.NewResultsProjector(ballotRepo)

	electionHandler := http.NewElectionHandler(ledger, clock)
	voteHandler := http.NewVoteHandler(ledger)
	resultsHandler := http.NewResultsHandler(ledger, projector, clock)
	adminHandler := http.NewAdminHandler(ledger, access)
	identity := http.IdentityMiddleware([]byte(os.Getenv("JWT_SECRET")))

	handler := http.NewHandler(electionHandler, voteHandler, resultsHandler, adminHandler, identity)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8080"
	}
	server := &stdhttp.Server{Addr: addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}
