package database

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"

	"lembarkolab/pkg/logger"
)

// Connect opens the Supabase Postgres pool and pings it with exponential
// backoff until it answers or the retry budget runs out.
func Connect() *sql.DB {
	dbUser := strings.TrimSpace(os.Getenv("user"))
	dbPass := strings.TrimSpace(os.Getenv("password"))
	dbHost := strings.TrimSpace(os.Getenv("host"))
	dbPort := strings.TrimSpace(os.Getenv("port"))
	dbName := strings.TrimSpace(os.Getenv("dbname"))

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=require", dbUser, dbPass, dbHost, dbPort, dbName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		logger.Sugar.Fatalf("Failed to open database connection: %v", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 2 * time.Second
	policy.MaxElapsedTime = 30 * time.Second

	err = backoff.Retry(func() error {
		if pingErr := db.Ping(); pingErr != nil {
			logger.Sugar.Infof("Database connection failed, retrying... (%v)", pingErr)
			return pingErr
		}
		return nil
	}, policy)
	if err != nil {
		logger.Sugar.Fatal("Could not connect to database after retries. Check your internet or Supabase status.")
	}

	logger.Sugar.Info("Successfully connected to the database")
	return db
}
