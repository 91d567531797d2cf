package main

import (
	"context"
	"log"
	"os"
	"time"

	"liftcast/adapters/logfile"
	"liftcast/adapters/postgres"
	"liftcast/domain/typicality"
	"liftcast/internal/container"
	"liftcast/internal/migration"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <database_url> <log_file> [layout.yaml]")
	}

	databaseURL := os.Args[1]
	logFile := os.Args[2]

	layout := logfile.DefaultLayout()
	if len(os.Args) > 3 {
		var err error
		if layout, err = logfile.LoadLayout(os.Args[3]); err != nil {
			log.Fatalf("Failed to load layout: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Printf("Importing %s into database", logFile)

	// Connect and apply the schema
	db, err := container.InitDatabase(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	log.Printf("Schema at version %s", migration.NewRunner().Version())

	observations, err := logfile.NewSource(logFile, layout, nil).Load(ctx)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", logFile, err)
	}

	// Validate before touching the stored set; a log that cannot be
	// aggregated must not replace a good one.
	table, err := typicality.Aggregate(observations)
	if err != nil {
		log.Fatalf("Refusing to import %s: %v", logFile, err)
	}

	repo := postgres.NewObservationRepository(db)
	imported, err := repo.ReplaceAll(ctx, observations)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Import completed: %d observations, %d slots, %d gaps, fingerprint %s",
		imported, table.Len(), len(table.Gaps()), table.Fingerprint().Short())
}
