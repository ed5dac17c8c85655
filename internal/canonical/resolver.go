// Package canonical resolves concrete course codes to cross-program
// canonical identifiers and answers lecturer-qualification questions
// against them. It is grounded on
// original_source/ISBAT-TIMETABLE-BACKEND/app/services/canonical_courses.py,
// translated from its database-first/fallback-second design into a
// single build-once registry (spec.md §4.1).
package canonical

import (
	"strings"

	"timetable-planner/internal/entity"
)

// Mode selects how permissive qualification matching is. Fuzzy is the
// historical behavior (spec.md §9 Open Questions); Strict disables the
// substring/token-overlap fallback and is meant for validation reports
// and, per the Open Question's resolution, new deployments that opt in.
type Mode int

const (
	Fuzzy Mode = iota
	Strict
)

// fallbackGroups mirrors canonical_courses.py's FALLBACK_CANONICAL_COURSE_MAPPING,
// used when no CanonicalCourseGroup set is supplied (cold start).
var fallbackGroups = []entity.CanonicalCourseGroup{
	{CanonicalID: "COMP_OFFICE_APP", Name: "Fundamentals of Computer and Office Applications", CourseCodes: []string{"BIT1101", "BIT1106", "BCS1101"}},
	{CanonicalID: "COMP_ORG_ARCH", Name: "Computer Organization and Architecture", CourseCodes: []string{"BIT1102", "BCS1102"}},
	{CanonicalID: "PROG_C", Name: "Programming in C", CourseCodes: []string{"BIT1103", "BCS1103", "BIT1107", "BCS1104"}},
	{CanonicalID: "DATABASE_MGMT_SYSTEM", Name: "Database Management System", CourseCodes: []string{"BIT1212", "BCS1212", "BIT1214"}},
	{CanonicalID: "COMP_HARDWARE_OS", Name: "Computer Hardware and Operating Systems", CourseCodes: []string{"BIT1211", "BCS1211"}},
}

// Resolver holds the three lookup tables spec.md §4.1 describes: code
// to canonical, canonical to codes, and a case/separator-insensitive
// variant table for matching lecturer specialization strings against
// canonical display names.
type Resolver struct {
	codeToCanonical map[string]string
	canonicalToCode map[string][]string
	nameToCanonical map[string]string // normalized name/variant -> canonical id
	groups          map[string]entity.CanonicalCourseGroup
}

// NewResolver builds a Resolver from the persisted canonical group set.
// When groups is empty, it falls back to the embedded table, matching
// canonical_courses.py's cold-start behavior.
func NewResolver(groups []entity.CanonicalCourseGroup) *Resolver {
	if len(groups) == 0 {
		groups = fallbackGroups
	}
	r := &Resolver{
		codeToCanonical: make(map[string]string),
		canonicalToCode: make(map[string][]string),
		nameToCanonical: make(map[string]string),
		groups:          make(map[string]entity.CanonicalCourseGroup, len(groups)),
	}
	for _, g := range groups {
		r.groups[g.CanonicalID] = g
		r.canonicalToCode[g.CanonicalID] = append([]string{}, g.CourseCodes...)
		for _, code := range g.CourseCodes {
			r.codeToCanonical[code] = g.CanonicalID
		}
		if g.Name != "" {
			r.nameToCanonical[normalize(g.Name)] = g.CanonicalID
		}
		r.nameToCanonical[normalize(g.CanonicalID)] = g.CanonicalID
	}
	return r
}

// normalize lower-cases and collapses separators (space/underscore/hyphen)
// to a single hyphen, the scheme canonical_courses.py uses before
// comparing canonical ids against lecturer-entered variants.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	replacer := strings.NewReplacer("_", "-", " ", "-")
	s = replacer.Replace(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// CanonicalOf returns the canonical id for a course code, or "" if the
// code is not registered in any group.
func (r *Resolver) CanonicalOf(code string) string {
	return r.codeToCanonical[code]
}

// Equivalents returns every course code equivalent to the given code,
// including the code itself. If the code is unknown, it returns just
// the input, per spec.md §4.1.
func (r *Resolver) Equivalents(code string) []string {
	canonicalID := r.CanonicalOf(code)
	if canonicalID == "" {
		return []string{code}
	}
	codes := r.canonicalToCode[canonicalID]
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}

// Qualified reports whether any of the lecturer's specializations match
// courseCode, under the given mode. An empty specialization list never
// qualifies.
func (r *Resolver) Qualified(courseCode string, specializations []string, mode Mode) bool {
	if len(specializations) == 0 {
		return false
	}

	canonicalID := courseCode
	if _, isCanonical := r.groups[courseCode]; !isCanonical {
		canonicalID = r.CanonicalOf(courseCode)
	}

	if canonicalID == "" {
		return containsString(specializations, courseCode)
	}

	canonicalNormalized := normalize(canonicalID)
	group := r.groups[canonicalID]

	for _, spec := range specializations {
		specTrimmed := strings.TrimSpace(spec)
		specNormalized := normalize(specTrimmed)

		if specNormalized == canonicalNormalized {
			return true
		}
		if group.Name != "" && normalize(group.Name) == specNormalized {
			return true
		}
		if mapped, ok := r.nameToCanonical[specNormalized]; ok && mapped == canonicalID {
			return true
		}
	}

	if containsString(specializations, courseCode) {
		return true
	}

	equivalents := r.canonicalToCode[canonicalID]
	for _, equiv := range equivalents {
		if containsString(specializations, equiv) {
			return true
		}
	}

	if mode == Strict {
		return false
	}

	// Fuzzy fallback: substring / token-overlap, tolerating
	// human-entered variants (spec.md §4.1, "intentionally permissive").
	canonWords := tokenSet(canonicalNormalized)
	for _, spec := range specializations {
		specNormalized := normalize(spec)
		if specNormalized == "" {
			continue
		}
		if strings.Contains(canonicalNormalized, specNormalized) || strings.Contains(specNormalized, canonicalNormalized) {
			specWords := tokenSet(specNormalized)
			common := intersectionSize(canonWords, specWords)
			if common >= 2 || len(canonWords) == 1 {
				return true
			}
		}
	}

	return false
}

func tokenSet(normalized string) map[string]bool {
	words := strings.Split(normalized, "-")
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if w != "" {
			set[w] = true
		}
	}
	return set
}

func intersectionSize(a, b map[string]bool) int {
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// Groups returns every registered canonical group, keyed by canonical id.
func (r *Resolver) Groups() map[string]entity.CanonicalCourseGroup {
	return r.groups
}
