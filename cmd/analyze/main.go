package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/fleetrisk/telematics-backend-go/internal/anomaly"
	"github.com/fleetrisk/telematics-backend-go/internal/config"
	"github.com/fleetrisk/telematics-backend-go/internal/export"
	"github.com/fleetrisk/telematics-backend-go/internal/ingest"
)

// Batch entrypoint for analysts: read a trip CSV, run the anomaly
// pipeline, write the two-sheet report workbook. No database involved.
func main() {
	input := flag.String("input", "", "path to the trip CSV")
	output := flag.String("output", "trip_anomaly_report.xlsx", "path of the report workbook")
	flag.Parse()

	if *input == "" {
		log.Fatal("Usage: analyze -input trips.csv [-output report.xlsx]")
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	trips, err := ingest.LoadFile(*input)
	if err != nil {
		log.Fatal("Failed to load trips: ", err)
	}

	res := anomaly.Run(trips, cfg.Thresholds)

	if err := export.WriteFile(*output, res.FlaggedTrips, res.UserProfiles); err != nil {
		log.Fatal("Failed to write report: ", err)
	}

	log.Printf("Done: %d trips analyzed, %d flagged, %d high-risk users, report at %s",
		res.TotalTrips, len(res.FlaggedTrips), len(res.UserProfiles), *output)
}
