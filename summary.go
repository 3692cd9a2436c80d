package statuspage

import "sort"

// Summary is the page status together with its components and unresolved
// incidents, as returned by /summary.json.
type Summary struct {
	Components []Component `json:"components"`
	Incidents  []Incident  `json:"incidents"`
	Status     Status      `json:"status"`
}

// newSummary seeds the lists so an empty list decodes to an empty slice and
// encodes back as [].
func newSummary() Summary {
	return Summary{Components: []Component{}, Incidents: []Incident{}}
}

// Group is a group component with its members in display order.
type Group struct {
	Component
	Members []Component
}

// ComponentByID looks up a component of the summary.
func (s Summary) ComponentByID(id string) (Component, bool) {
	for _, c := range s.Components {
		if c.ID == id {
			return c, true
		}
	}
	return Component{}, false
}

// Groups returns the group components of the summary, each with the
// components that reference it by group id, ordered by position.
func (s Summary) Groups() []Group {
	var groups []Group
	for _, c := range s.Components {
		if !c.IsGroup() {
			continue
		}

		g := Group{Component: c}
		for _, member := range s.Components {
			if member.InGroup() && *member.GroupID == c.ID {
				g.Members = append(g.Members, member)
			}
		}
		sort.SliceStable(g.Members, func(i, j int) bool {
			return g.Members[i].Position < g.Members[j].Position
		})

		groups = append(groups, g)
	}

	return groups
}

// UnresolvedIncidents filters out resolved and postmortem incidents.
func (s Summary) UnresolvedIncidents() []Incident {
	var open []Incident
	for _, i := range s.Incidents {
		if !i.IsResolved() {
			open = append(open, i)
		}
	}
	return open
}

// WorstImpact is the highest impact among unresolved incidents, ImpactNone
// when there are none.
func (s Summary) WorstImpact() IncidentImpact {
	worst := ImpactNone
	for _, i := range s.UnresolvedIncidents() {
		if i.Impact > worst {
			worst = i.Impact
		}
	}
	return worst
}
