// Bulk-imports historical match results into the win-rate store.
//
// Input is a CSV with a header row and columns:
//
//	format,archetype,opponent_archetype,played_first,won
//
// Each row is folded into the store exactly as a live match result
// would be, so imported history and recorded history are
// indistinguishable.
//
// Usage:
//
//	go run scripts/import_results.go results.csv
//
// DATABASE_URL selects the postgres backend; without it results fold
// into the file store under STATS_DIR (default data/stats).
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/duelforge/duelforge/internal/stats"
)

type resultRow struct {
	Format      string
	Archetype   string
	Opponent    string
	PlayedFirst bool
	Won         bool
}

func main() {
	ctx := context.Background()

	csvPath := "data/results.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	absPath, err := filepath.Abs(csvPath)
	if err != nil {
		log.Fatalf("Failed to get absolute path: %v", err)
	}

	fmt.Println("=== Match Result Import ===")
	fmt.Printf("CSV file: %s\n", absPath)

	file, err := os.Open(absPath)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) < 2 {
		log.Fatal("CSV file is empty or has no data rows")
	}
	fmt.Printf("Found %d results in CSV\n", len(records)-1)

	rows := make([]resultRow, 0, len(records)-1)
	for i, record := range records[1:] { // skip header
		if len(record) < 5 {
			log.Printf("Warning: skipping row %d - insufficient columns", i+2)
			continue
		}
		rows = append(rows, resultRow{
			Format:      record[0],
			Archetype:   record[1],
			Opponent:    record[2],
			PlayedFirst: parseBool(record[3]),
			Won:         parseBool(record[4]),
		})
	}
	fmt.Printf("Parsed %d valid results\n", len(rows))

	store, storeName, err := openStore(ctx)
	if err != nil {
		log.Fatalf("Failed to open stats store: %v", err)
	}
	fmt.Printf("✓ Using %s store\n", storeName)

	imported := 0
	failed := 0
	for _, row := range rows {
		err := store.UpdateWinRates(ctx, row.Archetype, row.PlayedFirst, row.Won, row.Opponent, row.Format)
		if err != nil {
			log.Printf("Warning: failed to import %s vs %s: %v", row.Archetype, row.Opponent, err)
			failed++
			continue
		}
		imported++
	}

	fmt.Printf("✓ Imported %d results (%d failed)\n", imported, failed)
}

func openStore(ctx context.Context) (stats.Store, string, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		store, err := stats.OpenPostgres(ctx, dsn, nil)
		if err != nil {
			return nil, "", err
		}
		return store, "postgres", nil
	}

	dir := os.Getenv("STATS_DIR")
	if dir == "" {
		dir = "data/stats"
	}
	return stats.NewFileStore(dir, nil), "file", nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return s == "yes" || s == "y" || s == "1"
	}
	return b
}
