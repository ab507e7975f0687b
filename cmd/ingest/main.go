// Command ingest runs the ingestion pipeline for one extract, or the
// aggregation step alone, outside of any request-serving process.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/crestviewcap/positions/config"
	"github.com/crestviewcap/positions/internal/database"
	"github.com/crestviewcap/positions/internal/repository"
	"github.com/crestviewcap/positions/internal/services"
	"github.com/crestviewcap/positions/internal/util"
	log "github.com/sirupsen/logrus"
)

func main() {
	var (
		file          = flag.String("file", "", "path to the extract to ingest (.xlsx or .csv)")
		aggregateOnly = flag.Bool("aggregate-only", false, "skip ingestion, only recompute summaries")
		dateStr       = flag.String("date", "", "report date for -aggregate-only (YYYY-MM-DD, default latest)")
	)
	flag.Parse()

	if !*aggregateOnly && *file == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -file extract.xlsx | ingest -aggregate-only [-date YYYY-MM-DD]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	positionRepo := repository.NewPositionRepository(db.Pool)
	summaryRepo := repository.NewSummaryRepository(db.Pool)
	loader := services.NewLoader(positionRepo, cfg.BatchSize)
	aggregator := services.NewAggregator(positionRepo, summaryRepo)
	pipeline := services.NewPipeline(loader, aggregator, cfg.StatusDir)

	if *aggregateOnly {
		var date time.Time
		if *dateStr != "" {
			date, err = util.ParseDay(*dateStr)
			if err != nil {
				log.Fatalf("bad -date: %v", err)
			}
		}
		res, err := pipeline.Aggregate(ctx, date)
		if err != nil {
			log.Fatalf("aggregation failed: %v", err)
		}
		printJSON(res)
		return
	}

	res := pipeline.RunFile(ctx, "", *file)
	printJSON(res)
	if !res.Success {
		os.Exit(1)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("failed to render result: %v", err)
	}
	fmt.Println(string(out))
}
