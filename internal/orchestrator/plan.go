package orchestrator

import (
	"fmt"

	"github.com/pkg/errors"

	"timetable-planner/internal/csp"
	"timetable-planner/internal/entity"
	"timetable-planner/internal/term"
)

// planSessions implements spec.md §4.6 step 3: run the canonical term
// alignment pre-pass across every cohort, split each cohort's courses
// into term 1 / term 2 against that alignment, discard cohorts with
// zero courses in termNumber, and lower the survivors into the
// RequiredSession list the CSP engine consumes.
func (o *Orchestrator) planSessions(cohorts []entity.Program, courseByID map[string]entity.Course, termNumber int) ([]csp.RequiredSession, []string, error) {
	var warnings []string

	cohortCourses := make(map[string][]entity.Course, len(cohorts))
	alignmentInput := make([]term.ProgramCourses, 0, len(cohorts))

	for _, p := range cohorts {
		courses, missing := resolveCourses(p.CourseIDs, courseByID)
		for _, m := range missing {
			warnings = append(warnings, fmt.Sprintf("program %s: unknown course id %s, dropped", p.Code, m))
		}
		cohortCourses[p.ID] = courses
		alignmentInput = append(alignmentInput, term.ProgramCourses{
			Code:     p.Code,
			Semester: p.Semester,
			Courses:  toAlignmentCourses(courses),
		})
	}

	alignment, _ := term.BuildAlignment(alignmentInput)
	planner := term.NewPlanner(alignment)

	var sessions []csp.RequiredSession
	for _, p := range cohorts {
		courses := cohortCourses[p.ID]
		if len(courses) == 0 {
			continue
		}

		plan, err := planner.Split(p, courses)
		if err != nil {
			// preferred_term is mandatory (spec.md:93/:108/:240): a cohort
			// whose alignment can't resolve it aborts the whole run rather
			// than dropping just this program.
			return nil, nil, errors.Wrap(ErrConfiguration, fmt.Sprintf("program %s: %v", p.Code, err))
		}

		termCourses := plan.Term1
		if termNumber == 2 {
			termCourses = plan.Term2
		}
		if len(termCourses) == 0 {
			continue
		}

		for _, c := range termCourses {
			total := c.SessionsRequired()
			for n := 1; n <= total; n++ {
				sessions = append(sessions, csp.RequiredSession{
					Program:       p,
					Course:        c,
					SessionNumber: n,
					SessionsTotal: total,
				})
			}
		}
	}

	return sessions, warnings, nil
}

func resolveCourses(ids []string, courseByID map[string]entity.Course) (found []entity.Course, missing []string) {
	for _, id := range ids {
		c, ok := courseByID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		found = append(found, c)
	}
	return found, missing
}

func toAlignmentCourses(courses []entity.Course) []term.AlignmentCourse {
	out := make([]term.AlignmentCourse, len(courses))
	for i, c := range courses {
		out[i] = term.AlignmentCourse{
			Code:          c.Code,
			CanonicalID:   c.CanonicalID,
			PreferredTerm: c.PreferredTerm,
			CourseGroup:   c.CourseGroup,
		}
	}
	return out
}
