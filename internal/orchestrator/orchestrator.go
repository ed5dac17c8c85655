// Package orchestrator wires one planning run end to end: load entities,
// align and split terms per cohort, build and search the CSP, hand the
// baseline to the GGA, and commit the result to the ledger. It is the
// single place spec.md §4.6's algorithm lives; every collaborator it
// depends on is an interface, mirroring the teacher's cmd/api/main.go
// wiring style but generalized from one fixed pipeline into the
// source/ledger/csp/gga seam this module exposes.
package orchestrator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"timetable-planner/internal/canonical"
	"timetable-planner/internal/config"
	"timetable-planner/internal/csp"
	"timetable-planner/internal/entity"
	"timetable-planner/internal/gga"
	"timetable-planner/internal/ledger"
	"timetable-planner/internal/logging"
	"timetable-planner/internal/progress"
	"timetable-planner/internal/randutil"
	"timetable-planner/internal/source"
)

// Sentinel causes, per spec.md §7 and SPEC_FULL.md §6.
var (
	ErrConfiguration          = errors.New("orchestrator: invalid configuration")
	ErrDataIntegrity          = errors.New("orchestrator: data integrity violation")
	ErrFeasibility            = errors.New("orchestrator: no feasible schedule")
	ErrSearchExhaustion       = errors.New("orchestrator: csp search exhausted its budget")
	ErrConcurrentModification = errors.New("orchestrator: concurrent modification detected at commit")
	ErrInvariantViolation     = errors.New("orchestrator: internal invariant violation")
)

// Result is the orchestrator's return value, per spec.md §6.
type Result struct {
	Success       bool
	SessionsCount int
	ElapsedMS     int64
	FinalFitness  float64
	Warnings      []string
	Err           error
}

// Orchestrator bundles every collaborator one run needs. Callers build
// one per faculty/term run (or reuse across runs against the same
// ledger, matching spec.md §5's "across runs" coordination model).
type Orchestrator struct {
	Entities    source.EntitySource
	Persistence source.Persistence
	Ledger      ledger.Ledger
	Config      config.Config
	Logger      zerolog.Logger
	Sink        progress.Sink
	Seed        int64
}

// New builds an Orchestrator with the given collaborators. A nil Sink
// is replaced with progress.Noop; a zero Logger is replaced with a
// sensible default so callers that don't care about logging don't
// panic on a zero zerolog.Logger.
func New(entities source.EntitySource, persistence source.Persistence, led ledger.Ledger, cfg config.Config) *Orchestrator {
	return &Orchestrator{
		Entities:    entities,
		Persistence: persistence,
		Ledger:      led,
		Config:      cfg,
		Logger:      logging.New(false, nil),
		Sink:        progress.Noop,
	}
}

// Run executes one planning pass for (term, faculty, academicYear),
// per spec.md §4.6's seven-step algorithm.
func (o *Orchestrator) Run(termNumber int, faculty, academicYear string, regenerate bool) Result {
	start := time.Now()
	generationID := uuid.NewString()
	runLogger := logging.ForRun(o.Logger, faculty, generationID)

	sink := o.Sink
	if sink == nil {
		sink = progress.Noop
	}

	if err := config.Validate(o.Config); err != nil {
		return failure(start, errors.Wrap(ErrConfiguration, err.Error()))
	}

	// Step 1: scope the ledger, discard the faculty's prior entries if
	// this is a regeneration.
	if regenerate {
		removed := o.Ledger.DiscardFaculty(faculty)
		runLogger.Info().Int("removed", len(removed)).Msg("discarded prior faculty bookings")
	}

	// Step 2: load shared entity collections.
	cohorts, err := o.Entities.LoadCohorts(faculty)
	if err != nil {
		return failure(start, errors.Wrapf(ErrDataIntegrity, "loading cohorts: %v", err))
	}
	courses, err := o.Entities.LoadCourses()
	if err != nil {
		return failure(start, errors.Wrapf(ErrDataIntegrity, "loading courses: %v", err))
	}
	if err := validateCourseConfiguration(courses); err != nil {
		return failure(start, err)
	}
	lecturers, err := o.Entities.LoadLecturers()
	if err != nil {
		return failure(start, errors.Wrapf(ErrDataIntegrity, "loading lecturers: %v", err))
	}
	rooms, err := o.Entities.LoadRooms()
	if err != nil {
		return failure(start, errors.Wrapf(ErrDataIntegrity, "loading rooms: %v", err))
	}
	canonicalGroups, err := o.Entities.LoadCanonicalGroups()
	if err != nil {
		return failure(start, errors.Wrapf(ErrDataIntegrity, "loading canonical groups: %v", err))
	}

	var warnings []string
	courseByID := indexCourses(courses)
	lecturers, roomWarnings := sanitizeLecturersAndRooms(lecturers, rooms)
	warnings = append(warnings, roomWarnings...)
	rooms = dropInvalidRooms(rooms)

	resolver := canonical.NewResolver(canonicalGroups)

	// Step 3: canonical alignment + per-cohort term split.
	sessions, planWarnings, err := o.planSessions(cohorts, courseByID, termNumber)
	if err != nil {
		return failure(start, err)
	}
	warnings = append(warnings, planWarnings...)

	if len(sessions) == 0 {
		return Result{Success: true, SessionsCount: 0, ElapsedMS: elapsedMS(start), Warnings: warnings}
	}

	if cancel := sink.Report(termNumber, 10, "csp", "building variables and domains"); cancel {
		return failure(start, errors.New("orchestrator: cancelled before search"))
	}

	grid, err := o.Config.Grid()
	if err != nil {
		return failure(start, errors.Wrap(ErrConfiguration, err.Error()))
	}

	variables, searchState := csp.BuildVariables(csp.Problem{
		Sessions:  sessions,
		Lecturers: lecturers,
		Rooms:     rooms,
		Grid:      grid,
		Resolver:  resolver,
		Mode:      o.Config.QualificationMode,
		Ledger:    o.Ledger,
		Faculty:   faculty,
	})

	for _, v := range variables {
		if v.EmptyDomain() {
			return failure(start, errors.Wrapf(ErrFeasibility, "variable %s has an empty domain", v.ID))
		}
	}

	if cancel := sink.Report(termNumber, 40, "csp", "searching for a feasible baseline"); cancel {
		return failure(start, errors.New("orchestrator: cancelled during search"))
	}

	budget := csp.Budget{Deadline: start.Add(o.Config.CSPBudget)}
	searchResult := csp.Search(variables, searchState, budget)

	if len(searchResult.Assigned) == 0 {
		return failure(start, errors.Wrap(ErrFeasibility, "csp search produced no assignments"))
	}
	if !searchResult.Complete {
		msg := errors.Wrapf(ErrSearchExhaustion, "%d of %d variables left unassigned", len(searchResult.Unassigned), len(variables))
		if o.Config.StrictPartialCommit {
			return failure(start, msg)
		}
		warnings = append(warnings, msg.Error())
	}

	if cancel := sink.Report(termNumber, 60, "csp", "baseline found, preparing genetic optimization"); cancel {
		return failure(start, errors.New("orchestrator: cancelled after search"))
	}

	assignedVariables := searchResult.Assigned
	groupOf := courseGroupIndex(courseByID)
	pairs := csp.BuildPairs(assignedVariables, groupOf)
	groups := csp.CanonicalGroups(assignedVariables)
	roomCapacity := roomCapacityIndex(rooms)

	// Step 5: hand the CSP baseline to the GGA.
	rng := randutil.New(o.Seed)
	ggaCfg := o.Config.GGAConfig()

	onGeneration := func(r gga.Report) {
		sink.Report(termNumber, 85, "gga", progressDetail(r))
	}
	ggaResult := gga.Run(assignedVariables, pairs, groups, roomCapacity, o.Config.FitnessWeights, ggaCfg, rng, onGeneration)

	if cancel := sink.Report(termNumber, 85, "gga", "optimization complete"); cancel {
		return failure(start, errors.New("orchestrator: cancelled after optimization"))
	}

	best := ggaResult.Best
	if best == nil || len(best.Genes) == 0 {
		return failure(start, errors.Wrap(ErrInvariantViolation, "gga returned an empty chromosome"))
	}

	// Step 6: commit every gene as an Assignment, atomically.
	assignments := make([]entity.Assignment, 0, len(best.Genes))
	for _, g := range best.Genes {
		assignments = append(assignments, entity.Assignment{
			VariableID:    g.VariableID,
			CourseID:      g.CourseID,
			ProgramID:     g.ProgramID,
			LecturerID:    g.Lecturer,
			RoomNumber:    g.Room,
			Slot:          g.Slot,
			Term:          termNumber,
			SessionNumber: g.SessionNumber,
		})
	}

	if err := o.Ledger.CommitMany(assignments, faculty, generationID); err != nil {
		return failure(start, errors.Wrap(ErrConcurrentModification, err.Error()))
	}
	if o.Persistence != nil {
		if err := o.Persistence.SaveAssignments(generationID, assignments); err != nil {
			return failure(start, errors.Wrap(ErrInvariantViolation, err.Error()))
		}
	}

	sink.Report(termNumber, 100, "done", summary(len(assignments), elapsedMS(start), best.Fitness))

	runLogger.Info().
		Int("sessions", len(assignments)).
		Float64("fitness", best.Fitness).
		Int("generations", ggaResult.Generations).
		Msg("planning run committed")

	return Result{
		Success:       true,
		SessionsCount: len(assignments),
		ElapsedMS:     elapsedMS(start),
		FinalFitness:  best.Fitness,
		Warnings:      warnings,
	}
}

func failure(start time.Time, err error) Result {
	return Result{Success: false, ElapsedMS: elapsedMS(start), Err: err}
}

func elapsedMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

func summary(sessions int, elapsedMS int64, fitness float64) string {
	return fmt.Sprintf("sessions=%d elapsed_ms=%d fitness=%.4f", sessions, elapsedMS, fitness)
}

func progressDetail(r gga.Report) string {
	return fmt.Sprintf("generation %d best_fitness=%.4f", r.Generation, r.BestFitness)
}

// validateCourseConfiguration enforces that every course carries a
// recognized preferred_room_type, per spec.md:40/:240: a missing or
// unrecognized value is a Configuration error, fatal, caught before
// the CSP starts rather than silently admitting any room type.
func validateCourseConfiguration(courses []entity.Course) error {
	var offenders []string
	for _, c := range courses {
		if c.PreferredRoomType != entity.RoomTheory && c.PreferredRoomType != entity.RoomLab {
			offenders = append(offenders, c.ID)
		}
	}
	if len(offenders) == 0 {
		return nil
	}
	sort.Strings(offenders)
	return errors.Wrapf(ErrConfiguration, "courses missing a valid preferred_room_type: %s", strings.Join(offenders, ", "))
}

func indexCourses(courses []entity.Course) map[string]entity.Course {
	out := make(map[string]entity.Course, len(courses))
	for _, c := range courses {
		out[c.ID] = c
	}
	return out
}

// courseGroupIndex derives course id -> course_group from the loaded
// course table, the input csp.BuildPairs needs.
func courseGroupIndex(courseByID map[string]entity.Course) map[string]string {
	out := make(map[string]string, len(courseByID))
	for id, c := range courseByID {
		out[id] = c.CourseGroup
	}
	return out
}

func roomCapacityIndex(rooms []entity.Room) map[string]int {
	out := make(map[string]int, len(rooms))
	for _, r := range rooms {
		out[r.RoomNumber] = r.Capacity
	}
	return out
}

// sanitizeLecturersAndRooms drops lecturers with no specializations
// from the pool, per spec.md §7's data-integrity propagation policy:
// the bad record is excluded rather than aborting the run.
func sanitizeLecturersAndRooms(lecturers []entity.Lecturer, rooms []entity.Room) ([]entity.Lecturer, []string) {
	var warnings []string
	out := make([]entity.Lecturer, 0, len(lecturers))
	for _, l := range lecturers {
		if len(l.Specializations) == 0 {
			warnings = append(warnings, "lecturer "+l.ID+" has no specializations, excluded from pool")
			continue
		}
		if l.MaxWeeklyHours() <= 0 {
			warnings = append(warnings, "lecturer "+l.ID+" has max_weekly_hours<=0, excluded from pool")
			continue
		}
		out = append(out, l)
	}
	for _, r := range rooms {
		if r.Capacity <= 0 {
			warnings = append(warnings, "room "+r.RoomNumber+" has non-positive capacity, excluded from pool")
		}
	}
	return out, warnings
}

func dropInvalidRooms(rooms []entity.Room) []entity.Room {
	out := make([]entity.Room, 0, len(rooms))
	for _, r := range rooms {
		if r.Capacity <= 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}

