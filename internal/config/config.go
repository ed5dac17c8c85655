// Package config loads the planner's tunables through viper, grounded
// on 99ridho-siakad-poc/config/config.go's env-plus-defaults loading
// style. It is the single place spec.md §6's GGA tunables, fitness
// weights, time grid, budgets, and policy toggles are assembled and
// validated before a run starts.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"timetable-planner/internal/canonical"
	"timetable-planner/internal/gga"
	"timetable-planner/internal/timeslot"
)

// ErrConfiguration is the sentinel cause for every configuration
// validation failure, per spec.md §7.
var ErrConfiguration = errors.New("config: invalid configuration")

// Config is the fully-resolved, validated configuration one planner
// run is built from.
type Config struct {
	GGAPopulationSize int
	GGAMaxGenerations int
	GGAMutationRate   float64
	GGACrossoverRate  float64
	GGATargetFitness  float64
	GGAElitism        int
	GGATournamentSize int
	GGAStallLimit     int

	FitnessWeights gga.Weights

	Days    []timeslot.Day
	Periods []timeslot.Period

	CSPBudget time.Duration
	GGABudget time.Duration

	StrictPartialCommit bool
	QualificationMode   canonical.Mode
}

// Defaults mirrors the figures SPEC_FULL.md §5 names.
func Defaults() Config {
	return Config{
		GGAPopulationSize:   200,
		GGAMaxGenerations:   200,
		GGAMutationRate:     0.15,
		GGACrossoverRate:    0.80,
		GGATargetFitness:    0.90,
		GGAElitism:          10,
		GGATournamentSize:   3,
		GGAStallLimit:        40,
		FitnessWeights:      gga.DefaultWeights,
		Days:                timeslot.Days,
		Periods:             timeslot.DefaultPeriods,
		CSPBudget:           300 * time.Second,
		GGABudget:           120 * time.Second,
		StrictPartialCommit: false,
		QualificationMode:   canonical.Fuzzy,
	}
}

// Load reads configuration from the given file (if path is non-empty)
// plus TIMETABLE_-prefixed environment variables layered over
// Defaults(), then validates the result.
func Load(path string) (Config, error) {
	cfg := Defaults()

	v := viper.New()
	v.SetEnvPrefix("TIMETABLE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(ErrConfiguration, "reading config file %s: %v", path, err)
		}
	}

	applyOverride(v, "gga.population_size", &cfg.GGAPopulationSize)
	applyOverride(v, "gga.max_generations", &cfg.GGAMaxGenerations)
	applyOverride(v, "gga.mutation_rate", &cfg.GGAMutationRate)
	applyOverride(v, "gga.crossover_rate", &cfg.GGACrossoverRate)
	applyOverride(v, "gga.target_fitness", &cfg.GGATargetFitness)
	applyOverride(v, "strict_partial_commit", &cfg.StrictPartialCommit)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyOverride copies v's value for key into dst's pointee if the key
// was actually set, leaving the default untouched otherwise. It
// supports the handful of scalar types this config exposes for
// override.
func applyOverride(v *viper.Viper, key string, dst interface{}) {
	if !v.IsSet(key) {
		return
	}
	switch p := dst.(type) {
	case *int:
		*p = v.GetInt(key)
	case *float64:
		*p = v.GetFloat64(key)
	case *bool:
		*p = v.GetBool(key)
	case *string:
		*p = v.GetString(key)
	}
}

// Validate checks the invariants spec.md §6/§9 require before a run
// can start: the fitness weights must sum to 1 within tolerance, and
// every grid axis and tunable must be usable.
func Validate(cfg Config) error {
	const tolerance = 1e-9
	sum := cfg.FitnessWeights.IdleTime + cfg.FitnessWeights.WorkloadBalance +
		cfg.FitnessWeights.RoomUtilization + cfg.FitnessWeights.WeekdayDistribution
	if diff := sum - 1.0; diff > tolerance || diff < -tolerance {
		return errors.Wrapf(ErrConfiguration, "fitness weights sum to %f, want 1.0", sum)
	}
	if len(cfg.Days) == 0 {
		return errors.Wrap(ErrConfiguration, "day list is empty")
	}
	if len(cfg.Periods) == 0 {
		return errors.Wrap(ErrConfiguration, "period list is empty")
	}
	if cfg.GGAPopulationSize <= 0 {
		return errors.Wrap(ErrConfiguration, "gga population size must be positive")
	}
	if cfg.GGAElitism > cfg.GGAPopulationSize {
		return errors.Wrap(ErrConfiguration, "gga elitism cannot exceed population size")
	}
	if cfg.CSPBudget <= 0 || cfg.GGABudget <= 0 {
		return errors.Wrap(ErrConfiguration, "csp and gga budgets must be positive")
	}
	return nil
}

// GGAConfig adapts this package's tunables into the gga.Config shape
// the engine expects.
func (c Config) GGAConfig() gga.Config {
	return gga.Config{
		PopulationSize: c.GGAPopulationSize,
		Elitism:        c.GGAElitism,
		TournamentSize: c.GGATournamentSize,
		CrossoverProb:  c.GGACrossoverRate,
		MutationProb:   c.GGAMutationRate,
		MaxGenerations: c.GGAMaxGenerations,
		StallLimit:     c.GGAStallLimit,
		TargetFitness:  c.GGATargetFitness,
	}
}

// Grid builds the timeslot.Grid this configuration describes.
func (c Config) Grid() (*timeslot.Grid, error) {
	return timeslot.NewGrid(c.Days, c.Periods)
}
