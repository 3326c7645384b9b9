package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/recruitflow/filterengine/internal/config"
	"github.com/recruitflow/filterengine/internal/domain"
	"github.com/recruitflow/filterengine/internal/filter"
)

func main() {
	var (
		entityName  = flag.String("entity", "", "target entity type (e.g. applicants)")
		recordsPath = flag.String("records", "", "path to a JSON array of flat records")
		filterPath  = flag.String("filter", "", "path to a JSON filter specification")
		configPath  = flag.String("config", ".", "directory containing filter.yaml")
		nowArg      = flag.String("now", "", "evaluation instant, RFC3339 (defaults to wall clock)")
	)
	flag.Parse()

	if *entityName == "" || *recordsPath == "" || *filterPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	entity, err := domain.ParseEntityType(*entityName)
	if err != nil {
		log.Fatalf("Invalid entity: %v", err)
	}

	now := time.Now()
	if *nowArg != "" {
		now, err = time.Parse(time.RFC3339, *nowArg)
		if err != nil {
			log.Fatalf("Invalid -now value: %v", err)
		}
	}

	records, err := readRecords(*recordsPath)
	if err != nil {
		log.Fatalf("Failed to read records: %v", err)
	}
	rawFilter, err := readFilter(*filterPath)
	if err != nil {
		log.Fatalf("Failed to read filter: %v", err)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	engine := filter.NewEngineWith(settings.Registry(), settings.DefaultFields)

	queryID := uuid.New()
	start := time.Now()
	filtered, err := engine.Apply(entity, records, rawFilter, now)
	if err != nil {
		log.Fatalf("[%s] Filter rejected: %v", queryID, err)
	}
	log.Printf("[%s] %s: %d of %d records matched in %s", queryID, entity, len(filtered), len(records), time.Since(start))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(filtered); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}

func readRecords(path string) ([]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func readFilter(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
