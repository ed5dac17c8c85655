// Package source defines the read-only entity-source contract the
// orchestrator queries at the start of each run, and the small
// read/write persistence collaborator the CLI uses to keep a result
// around between commands. Grounded on loader/loader.go's typed-query
// style (LoadUniversity, LoadCourses, ...), translated from the
// teacher's CSV/JSON dual-format loader into a single JSON fixture
// loader backed by validator/v10, per spec.md §6's four typed queries.
package source

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"timetable-planner/internal/entity"
	"timetable-planner/internal/timeslot"
)

// ErrDataIntegrity is the sentinel cause for any fixture record that
// fails structural or business validation, per spec.md §7.
var ErrDataIntegrity = errors.New("source: data integrity violation")

// DataIntegrityIssue describes one invalid record, collected rather
// than aborting the whole load (spec.md §7).
type DataIntegrityIssue struct {
	Record string
	Index  int
	Reason string
}

// EntitySource is the orchestrator's read-only view over the planner's
// input data, per spec.md §6.
type EntitySource interface {
	LoadCohorts(faculty string) ([]entity.Program, error)
	LoadCourses() ([]entity.Course, error)
	LoadLecturers() ([]entity.Lecturer, error)
	LoadRooms() ([]entity.Room, error)
	LoadCanonicalGroups() ([]entity.CanonicalCourseGroup, error)
}

// Persistence is the small read/write collaborator the CLI uses to
// stash a run's committed assignments for later retrieval.
type Persistence interface {
	SaveAssignments(runID string, assignments []entity.Assignment) error
	LoadAssignments(runID string) ([]entity.Assignment, error)
}

// fixtures is the on-disk shape of one JSON input bundle: a single
// file holding every entity collection a run needs, matching the
// teacher's data/input/*.json single-bundle convention.
type fixtures struct {
	Programs       []programRecord    `json:"programs" validate:"dive"`
	Courses        []courseRecord     `json:"courses" validate:"dive"`
	Lecturers      []lecturerRecord   `json:"lecturers" validate:"dive"`
	Rooms          []roomRecord       `json:"rooms" validate:"dive"`
	CanonicalGroups []canonicalRecord `json:"canonical_groups" validate:"dive"`
}

type programRecord struct {
	ID         string   `json:"id" validate:"required"`
	Batch      string   `json:"batch"`
	Code       string   `json:"code" validate:"required"`
	Semester   string   `json:"semester" validate:"required"`
	Term       int      `json:"term"`
	CohortSize int      `json:"cohort_size" validate:"required,min=1"`
	CourseIDs  []string `json:"course_ids"`
	Faculty    string   `json:"faculty" validate:"required"`
}

type courseRecord struct {
	ID                string `json:"id" validate:"required"`
	Code              string `json:"code" validate:"required"`
	Name              string `json:"name"`
	WeeklyHours       int    `json:"weekly_hours" validate:"required,min=1"`
	Credits           int    `json:"credits"`
	PreferredRoomType string `json:"preferred_room_type" validate:"required,oneof=theory lab"`
	PreferredTerm     int    `json:"preferred_term" validate:"omitempty,oneof=1 2"`
	CourseGroup       string `json:"course_group"`
	CanonicalID       string `json:"canonical_id"`
}

type availabilityRangeRecord struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

type lecturerRecord struct {
	ID                 string                               `json:"id" validate:"required"`
	Name               string                               `json:"name" validate:"required"`
	Role               string                               `json:"role" validate:"omitempty,oneof=dean full-time part-time"`
	Specializations     []string                            `json:"specializations"`
	Availability        map[string][]availabilityRangeRecord `json:"availability"`
	SessionsPerDayCap   int                                  `json:"sessions_per_day_cap"`
	MaxWeeklyHours      *int                                 `json:"max_weekly_hours"`
}

type roomRecord struct {
	ID         string `json:"id" validate:"required"`
	RoomNumber string `json:"room_number" validate:"required"`
	Capacity   int    `json:"capacity" validate:"required,min=1"`
	Type       string `json:"type" validate:"omitempty,oneof=theory lab"`
	Available  bool   `json:"available"`
}

type canonicalRecord struct {
	CanonicalID string   `json:"canonical_id" validate:"required"`
	Name        string   `json:"name"`
	CourseCodes []string `json:"course_codes" validate:"required,min=1"`
}

// JSONEntitySource loads every collection from one JSON fixture file,
// validating structural constraints with validator/v10 and collecting
// any failures as DataIntegrityIssue rather than aborting the load.
type JSONEntitySource struct {
	path     string
	validate *validator.Validate
	data     fixtures
	Issues   []DataIntegrityIssue
}

// NewJSONEntitySource reads and parses path immediately, so load
// failures surface at construction rather than on first query.
func NewJSONEntitySource(path string) (*JSONEntitySource, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "source: reading fixture %s", path)
	}

	var data fixtures
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrapf(ErrDataIntegrity, "parsing fixture %s: %v", path, err)
	}

	s := &JSONEntitySource{path: path, validate: validator.New(), data: data}
	s.collectIssues()
	return s, nil
}

func (s *JSONEntitySource) collectIssues() {
	for i, p := range s.data.Programs {
		if err := s.validate.Struct(p); err != nil {
			s.Issues = append(s.Issues, DataIntegrityIssue{Record: "program", Index: i, Reason: err.Error()})
		}
	}
	for i, c := range s.data.Courses {
		if err := s.validate.Struct(c); err != nil {
			s.Issues = append(s.Issues, DataIntegrityIssue{Record: "course", Index: i, Reason: err.Error()})
		}
	}
	for i, l := range s.data.Lecturers {
		if err := s.validate.Struct(l); err != nil {
			s.Issues = append(s.Issues, DataIntegrityIssue{Record: "lecturer", Index: i, Reason: err.Error()})
		}
	}
	for i, r := range s.data.Rooms {
		if err := s.validate.Struct(r); err != nil {
			s.Issues = append(s.Issues, DataIntegrityIssue{Record: "room", Index: i, Reason: err.Error()})
		}
	}
	for i, g := range s.data.CanonicalGroups {
		if err := s.validate.Struct(g); err != nil {
			s.Issues = append(s.Issues, DataIntegrityIssue{Record: "canonical_group", Index: i, Reason: err.Error()})
		}
	}
}

// LoadCohorts returns every program belonging to faculty.
func (s *JSONEntitySource) LoadCohorts(faculty string) ([]entity.Program, error) {
	var out []entity.Program
	for _, p := range s.data.Programs {
		if p.Faculty != faculty {
			continue
		}
		out = append(out, entity.Program{
			ID: p.ID, Batch: p.Batch, Code: p.Code, Semester: p.Semester,
			Term: p.Term, CohortSize: p.CohortSize, CourseIDs: p.CourseIDs, Faculty: p.Faculty,
		})
	}
	return out, nil
}

// LoadCourses returns every course in the fixture.
func (s *JSONEntitySource) LoadCourses() ([]entity.Course, error) {
	out := make([]entity.Course, 0, len(s.data.Courses))
	for _, c := range s.data.Courses {
		out = append(out, entity.Course{
			ID: c.ID, Code: c.Code, Name: c.Name, WeeklyHours: c.WeeklyHours, Credits: c.Credits,
			PreferredRoomType: entity.RoomType(c.PreferredRoomType), PreferredTerm: c.PreferredTerm,
			CourseGroup: c.CourseGroup, CanonicalID: c.CanonicalID,
		})
	}
	return out, nil
}

// LoadLecturers returns every lecturer in the fixture.
func (s *JSONEntitySource) LoadLecturers() ([]entity.Lecturer, error) {
	out := make([]entity.Lecturer, 0, len(s.data.Lecturers))
	for _, l := range s.data.Lecturers {
		out = append(out, entity.Lecturer{
			ID: l.ID, Name: l.Name, Role: entity.Role(l.Role), Specializations: l.Specializations,
			Availability: convertAvailability(l.Availability), SessionsPerDayCap: l.SessionsPerDayCap,
			MaxWeeklyHoursSpec: l.MaxWeeklyHours,
		})
	}
	return out, nil
}

// LoadRooms returns every room in the fixture.
func (s *JSONEntitySource) LoadRooms() ([]entity.Room, error) {
	out := make([]entity.Room, 0, len(s.data.Rooms))
	for _, r := range s.data.Rooms {
		out = append(out, entity.Room{ID: r.ID, RoomNumber: r.RoomNumber, Capacity: r.Capacity, Type: entity.RoomType(r.Type), Available: r.Available})
	}
	return out, nil
}

// LoadCanonicalGroups returns every canonical group in the fixture.
func (s *JSONEntitySource) LoadCanonicalGroups() ([]entity.CanonicalCourseGroup, error) {
	out := make([]entity.CanonicalCourseGroup, 0, len(s.data.CanonicalGroups))
	for _, g := range s.data.CanonicalGroups {
		out = append(out, entity.CanonicalCourseGroup{CanonicalID: g.CanonicalID, Name: g.Name, CourseCodes: g.CourseCodes})
	}
	return out, nil
}

var dayByName = map[string]timeslot.Day{
	"MON": timeslot.Monday, "TUE": timeslot.Tuesday, "WED": timeslot.Wednesday,
	"THU": timeslot.Thursday, "FRI": timeslot.Friday,
}

// convertAvailability maps the fixture's "MON".."FRI" day keys onto
// timeslot.Day; unrecognized keys are dropped silently, and
// collectIssues does not report them either.
func convertAvailability(in map[string][]availabilityRangeRecord) map[timeslot.Day][]entity.AvailabilityRange {
	if len(in) == 0 {
		return nil
	}
	out := make(map[timeslot.Day][]entity.AvailabilityRange, len(in))
	for name, ranges := range in {
		day, ok := dayByName[name]
		if !ok {
			continue
		}
		converted := make([]entity.AvailabilityRange, len(ranges))
		for i, r := range ranges {
			converted[i] = entity.AvailabilityRange{Start: r.Start, End: r.End}
		}
		out[day] = converted
	}
	return out
}
