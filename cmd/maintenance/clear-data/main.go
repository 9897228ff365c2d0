package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hostelhub/hostel-backend/internal/config"
	"github.com/hostelhub/hostel-backend/internal/database"
	"github.com/joho/godotenv"
)

func main() {
	var dbURLFlag string
	var confirm bool
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&confirm, "yes", false, "confirm that every table should be truncated")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}
	if !confirm {
		log.Fatal("refusing to clear data without -yes")
	}

	// Build minimal database config without loading full app config
	dbCfg := config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("Connected to database. Truncating tables...")

	truncateSQL := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(database.Tables, ", "))
	if _, err := db.ExecContext(ctx, truncateSQL); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	fmt.Println("All data cleared.")

	fmt.Println("Post-clear row counts:")
	for _, t := range database.Tables {
		var count int
		if err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", t)).Scan(&count); err != nil {
			fmt.Printf("  %s: error: %v\n", t, err)
			continue
		}
		fmt.Printf("  %s: %d\n", t, count)
	}
}
