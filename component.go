package statuspage

import "time"

// ComponentStatus is the state of a single component. Its wire tokens are
// snake_case, unlike the other enumerations of the API.
type ComponentStatus string

const (
	ComponentOperational         ComponentStatus = "operational"
	ComponentUnderMaintenance    ComponentStatus = "under_maintenance"
	ComponentDegradedPerformance ComponentStatus = "degraded_performance"
	ComponentPartialOutage       ComponentStatus = "partial_outage"
	ComponentMajorOutage         ComponentStatus = "major_outage"
)

var componentStatuses = []ComponentStatus{
	ComponentOperational,
	ComponentUnderMaintenance,
	ComponentDegradedPerformance,
	ComponentPartialOutage,
	ComponentMajorOutage,
}

func (s ComponentStatus) String() string {
	return string(s)
}

// UnmarshalText accepts exactly one of the snake_case wire tokens.
func (s *ComponentStatus) UnmarshalText(text []byte) error {
	for _, status := range componentStatuses {
		if string(text) == string(status) {
			*s = status
			return nil
		}
	}
	return &EnumError{Type: "component status", Value: string(text)}
}

// Component is a part of the service shown on a status page. A component with
// Group set is itself a group and Components lists the ids of its members.
type Component struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Status             ComponentStatus `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Position           int32           `json:"position"`
	Description        *string         `json:"description"`
	Showcase           bool            `json:"showcase"`
	StartDate          *Date           `json:"start_date"`
	GroupID            *string         `json:"group_id"`
	PageID             string          `json:"page_id"`
	Group              *bool           `json:"group"`
	OnlyShowIfDegraded *bool           `json:"only_show_if_degraded"`
	Components         []string        `json:"components,omitempty"`
}

// IsGroup reports whether the component groups other components.
func (c Component) IsGroup() bool {
	return c.Group != nil && *c.Group
}

// InGroup reports whether the component is a member of a group.
func (c Component) InGroup() bool {
	return c.GroupID != nil && *c.GroupID != ""
}
