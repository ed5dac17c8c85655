// Command planner runs one orchestrator pass against a JSON fixture
// bundle and prints a report, mirroring the teacher's cmd/api/main.go
// narrative-banner style (numbered steps, one line per stage) but
// through internal/logging's structured logger rather than
// fmt.Println, and through internal/progress rather than a fixed
// sequence of solver calls.
package main

import (
	"flag"
	"os"

	"timetable-planner/internal/config"
	"timetable-planner/internal/ledger"
	"timetable-planner/internal/logging"
	"timetable-planner/internal/orchestrator"
	"timetable-planner/internal/source"
)

func main() {
	fixturePath := flag.String("fixture", "testdata/fixture.json", "path to the JSON entity-source fixture")
	faculty := flag.String("faculty", "", "faculty code to plan for")
	academicYear := flag.String("year", "2026", "academic year scope for the booking ledger")
	term := flag.Int("term", 1, "term to plan (1 or 2)")
	regenerate := flag.Bool("regenerate", false, "discard this faculty's prior bookings before planning")
	configPath := flag.String("config", "", "optional config file (TIMETABLE_ env vars always apply)")
	pdfOut := flag.String("pdf", "", "optional path to write a one-page PDF summary report")
	verbose := flag.Bool("verbose", false, "enable debug-level logging")
	seed := flag.Int64("seed", 1, "PRNG seed for the GGA (reproducibility)")
	flag.Parse()

	logger := logging.New(*verbose, os.Stderr)

	if *faculty == "" {
		logger.Fatal().Msg("planner: -faculty is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("planner: invalid configuration")
	}

	entities, err := source.NewJSONEntitySource(*fixturePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("planner: loading fixture")
	}
	for _, issue := range entities.Issues {
		logger.Warn().Str("record", issue.Record).Int("index", issue.Index).Str("reason", issue.Reason).Msg("fixture data integrity issue")
	}

	persistence := source.NewMemoryPersistence()
	led := ledger.NewMemoryLedger(*term, *academicYear)

	orch := orchestrator.New(entities, persistence, led, cfg)
	orch.Logger = logger
	orch.Seed = *seed
	orch.Sink = newConsoleSink(logger)

	result := orch.Run(*term, *faculty, *academicYear, *regenerate)

	if !result.Success {
		logger.Fatal().Err(result.Err).Msg("planner: run failed")
	}

	logger.Info().
		Int("sessions", result.SessionsCount).
		Int64("elapsed_ms", result.ElapsedMS).
		Float64("final_fitness", result.FinalFitness).
		Int("warnings", len(result.Warnings)).
		Msg("planner: run committed")

	if *pdfOut != "" {
		if err := writeSummaryPDF(*pdfOut, *faculty, *term, result); err != nil {
			logger.Error().Err(err).Msg("planner: writing PDF summary")
		}
	}
}
