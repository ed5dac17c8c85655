package main

import "github.com/rs/zerolog"

// consoleSink renders the orchestrator's 10/40/60/85/100 stage
// transitions through zerolog, replacing the teacher's emoji
// fmt.Println banners ("[PASO 1] Cargando datos...") with structured
// log lines carrying the same narrative one-line-per-stage texture.
type consoleSink struct {
	logger zerolog.Logger
}

func newConsoleSink(logger zerolog.Logger) *consoleSink {
	return &consoleSink{logger: logger}
}

// Report never cancels; the CLI runs one pass to completion.
func (s *consoleSink) Report(term, percent int, stage, detail string) bool {
	s.logger.Info().Int("term", term).Int("percent", percent).Str("stage", stage).Msg(detail)
	return false
}
