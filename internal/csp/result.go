package csp

// Pair is one variable_pairs entry: two variable ids — a theory
// session and its paired practical session from the same course
// group — that must keep the same day with adjacent periods, per
// spec.md §4.3/§4.5.
type Pair struct {
	TheoryVariableID    string
	PracticalVariableID string
}

// BuildPairs derives variable_pairs by matching same-program,
// same-session-number variables whose courses share a CourseGroup. It
// runs over the already-built variable list, so it needs no extra
// input beyond what BuildVariables produced.
func BuildPairs(variables []*Variable, groupOf map[string]string) []Pair {
	// groupOf maps course id -> course_group; courses with no group are
	// absent and never pair.
	byGroup := map[string][]*Variable{}
	for _, v := range variables {
		group, ok := groupOf[v.CourseID]
		if !ok || group == "" {
			continue
		}
		key := v.ProgramID + "|" + group
		byGroup[key] = append(byGroup[key], v)
	}

	var pairs []Pair
	for _, members := range byGroup {
		bySession := map[int][]*Variable{}
		for _, v := range members {
			bySession[v.SessionNumber] = append(bySession[v.SessionNumber], v)
		}
		for _, sessionMembers := range bySession {
			if len(sessionMembers) < 2 {
				continue
			}
			// A course group is theory+practical, so exactly two members
			// are expected per session number; pair the first two found.
			pairs = append(pairs, Pair{TheoryVariableID: sessionMembers[0].ID, PracticalVariableID: sessionMembers[1].ID})
		}
	}
	return pairs
}

// CanonicalGroups indexes variables by canonical id and session
// number, the canonical_groups[canonical_id][session_number] relation
// spec.md §4.3 exposes for the GGA's capacity-gated merge mutation.
func CanonicalGroups(variables []*Variable) map[string]map[int][]string {
	out := map[string]map[int][]string{}
	for _, v := range variables {
		if v.CanonicalID == "" {
			continue
		}
		if out[v.CanonicalID] == nil {
			out[v.CanonicalID] = map[int][]string{}
		}
		out[v.CanonicalID][v.SessionNumber] = append(out[v.CanonicalID][v.SessionNumber], v.ID)
	}
	return out
}
