package statuspage

import (
	"fmt"
	"time"
)

// IncidentStatus is the lifecycle state of an incident.
type IncidentStatus string

const (
	IncidentInvestigating IncidentStatus = "investigating"
	IncidentIdentified    IncidentStatus = "identified"
	IncidentMonitoring    IncidentStatus = "monitoring"
	IncidentResolved      IncidentStatus = "resolved"
	IncidentPostmortem    IncidentStatus = "postmortem"
)

var incidentStatuses = []IncidentStatus{
	IncidentInvestigating,
	IncidentIdentified,
	IncidentMonitoring,
	IncidentResolved,
	IncidentPostmortem,
}

func (s IncidentStatus) String() string {
	return string(s)
}

// UnmarshalText accepts exactly one of the lowercase wire tokens.
func (s *IncidentStatus) UnmarshalText(text []byte) error {
	for _, status := range incidentStatuses {
		if string(text) == string(status) {
			*s = status
			return nil
		}
	}
	return &EnumError{Type: "incident status", Value: string(text)}
}

// IncidentImpact is the severity of an incident. The constants are declared
// in severity order: ImpactNone < ImpactMaintenance < ImpactMinor <
// ImpactMajor < ImpactCritical.
type IncidentImpact int

const (
	ImpactNone IncidentImpact = iota
	ImpactMaintenance
	ImpactMinor
	ImpactMajor
	ImpactCritical
)

var impactTokens = [...]string{"none", "maintenance", "minor", "major", "critical"}

func (i IncidentImpact) String() string {
	if i < 0 || int(i) >= len(impactTokens) {
		return fmt.Sprintf("IncidentImpact(%d)", int(i))
	}
	return impactTokens[i]
}

// MarshalText encodes the impact as its wire token.
func (i IncidentImpact) MarshalText() ([]byte, error) {
	if i < 0 || int(i) >= len(impactTokens) {
		return nil, fmt.Errorf("statuspage: invalid incident impact %d", int(i))
	}
	return []byte(impactTokens[i]), nil
}

// UnmarshalText accepts exactly one of the lowercase wire tokens.
func (i *IncidentImpact) UnmarshalText(text []byte) error {
	for n, token := range impactTokens {
		if string(text) == token {
			*i = IncidentImpact(n)
			return nil
		}
	}
	return &EnumError{Type: "incident impact", Value: string(text)}
}

// AffectedComponent records the status change of one component within an
// incident update.
type AffectedComponent struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	OldStatus ComponentStatus `json:"old_status"`
	NewStatus ComponentStatus `json:"new_status"`
}

// IncidentUpdate is one message posted on an incident. AffectedComponents is
// empty both when the API omits the field and when it sends null.
type IncidentUpdate struct {
	ID                   string              `json:"id"`
	Status               IncidentStatus      `json:"status"`
	Body                 string              `json:"body"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
	DisplayAt            time.Time           `json:"display_at"`
	DeliverNotifications *bool               `json:"deliver_notifications"`
	AffectedComponents   []AffectedComponent `json:"affected_components"`
}

// Incident is an incident or scheduled maintenance with its update history.
type Incident struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Status          IncidentStatus   `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       *time.Time       `json:"updated_at"`
	MonitoringAt    *time.Time       `json:"monitoring_at"`
	ResolvedAt      *time.Time       `json:"resolved_at"`
	Impact          IncidentImpact   `json:"impact"`
	Shortlink       string           `json:"shortlink"`
	StartedAt       *time.Time       `json:"started_at"`
	PageID          *string          `json:"page_id"`
	IncidentUpdates []IncidentUpdate `json:"incident_updates,omitempty"`
	Components      []Component      `json:"components,omitempty"`
}

// IsResolved reports whether the incident is over.
func (i Incident) IsResolved() bool {
	return i.Status == IncidentResolved || i.Status == IncidentPostmortem
}

// LatestUpdate returns the most recently displayed update.
func (i Incident) LatestUpdate() (IncidentUpdate, bool) {
	if len(i.IncidentUpdates) == 0 {
		return IncidentUpdate{}, false
	}

	latest := i.IncidentUpdates[0]
	for _, u := range i.IncidentUpdates[1:] {
		if u.DisplayAt.After(latest.DisplayAt) {
			latest = u
		}
	}
	return latest, true
}
