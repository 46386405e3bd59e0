// Command dbviewer inspects a bolt-backed media record database offline.
// It prints the stored records (or just summary statistics) without going
// through the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/medialib/backend/internal/media"
	"github.com/medialib/backend/internal/models"
)

func main() {
	var (
		dbPath    = flag.String("db", "", "path to the bolt database file (required)")
		showStats = flag.Bool("stats", false, "print summary statistics only")
		asJSON    = flag.Bool("json", false, "print output as JSON")
	)
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -db <database-path> [options]\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	if _, err := os.Stat(*dbPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: database file %q does not exist\n", *dbPath)
		os.Exit(1)
	}

	store, err := media.OpenBoltStoreReadOnly(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	records, err := store.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading records: %v\n", err)
		os.Exit(1)
	}

	if *showStats {
		printStats(records, *asJSON)
		return
	}
	printRecords(records, *asJSON)
}

func printRecords(records []models.Record, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding records: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("%d record(s)\n\n", len(records))
	for _, rec := range records {
		title, _ := rec["title"].(string)
		fmt.Printf("%s  type=%-8s  title=%q  fields=%d\n", rec.ID(), rec.Type(), title, len(rec))
	}
}

func printStats(records []models.Record, asJSON bool) {
	byType := make(map[string]int)
	for _, rec := range records {
		byType[rec.Type()]++
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"total": len(records), "by_type": byType}); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding stats: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("total: %d\n", len(records))
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		name := t
		if name == "" {
			name = "(untyped)"
		}
		fmt.Printf("  %-12s %d\n", name, byType[t])
	}
}
