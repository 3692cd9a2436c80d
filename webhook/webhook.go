// Package webhook parses the notifications Statuspage delivers to webhook
// subscribers.
//
// A notification carries no type tag. Parse classifies the payload by shape,
// trying a component update first, then an incident, and falls back to
// UnknownPayload for anything else so new notification kinds never break
// delivery.
package webhook

import (
	"time"

	"github.com/castawaylabs/statuspage"
	"github.com/castawaylabs/statuspage/schema"
)

// StatusWebhook is one webhook notification.
type StatusWebhook struct {
	Meta    Meta    `json:"meta"`
	Page    Page    `json:"page"`
	Payload Payload `json:"payload"`
}

// Meta holds the links sent with every notification.
type Meta struct {
	Unsubscribe   string `json:"unsubscribe"`
	Documentation string `json:"documentation"`
}

// Page is the state of the whole page when the notification was sent.
type Page struct {
	ID                string                     `json:"id"`
	StatusIndicator   statuspage.StatusIndicator `json:"status_indicator"`
	StatusDescription string                     `json:"status_description"`
}

// ComponentUpdate is a component status transition.
type ComponentUpdate struct {
	CreatedAt   time.Time                  `json:"created_at"`
	NewStatus   statuspage.ComponentStatus `json:"new_status"`
	OldStatus   statuspage.ComponentStatus `json:"old_status"`
	ID          string                     `json:"id"`
	ComponentID string                     `json:"component_id"`
}

// Component is the short component record sent with a component update.
type Component struct {
	CreatedAt time.Time                  `json:"created_at"`
	ID        string                     `json:"id"`
	Name      string                     `json:"name"`
	Status    statuspage.ComponentStatus `json:"status"`
}

// Payload is one of *ComponentPayload, *IncidentPayload or UnknownPayload.
type Payload interface {
	// Kind names the payload variant for logs.
	Kind() string

	isPayload()
}

// ComponentPayload carries a component status change.
type ComponentPayload struct {
	ComponentUpdate ComponentUpdate `json:"component_update"`
	Component       Component       `json:"component"`
}

// IncidentPayload carries a created or updated incident.
type IncidentPayload struct {
	Incident statuspage.Incident `json:"incident"`
}

// UnknownPayload is a notification that is neither a component update nor an
// incident. Its content is not kept.
type UnknownPayload struct{}

func (*ComponentPayload) Kind() string { return "component" }
func (*IncidentPayload) Kind() string  { return "incident" }
func (UnknownPayload) Kind() string    { return "unknown" }

func (*ComponentPayload) isPayload() {}
func (*IncidentPayload) isPayload()  {}
func (UnknownPayload) isPayload()    {}

// Parse decodes a notification body. The meta and page envelope must be
// valid; the payload never causes an error.
func Parse(data []byte) (*StatusWebhook, error) {
	var envelope struct {
		Meta Meta `json:"meta"`
		Page Page `json:"page"`
	}
	if err := statuspage.Unmarshal(schema.Webhook, data, &envelope); err != nil {
		return nil, err
	}

	return &StatusWebhook{
		Meta:    envelope.Meta,
		Page:    envelope.Page,
		Payload: parsePayload(data),
	}, nil
}

// parsePayload commits to the first variant whose fields all decode.
func parsePayload(data []byte) Payload {
	var component ComponentPayload
	if err := statuspage.Unmarshal(schema.WebhookComponentPayload, data, &component); err == nil {
		return &component
	}

	var incident IncidentPayload
	if err := statuspage.Unmarshal(schema.WebhookIncidentPayload, data, &incident); err == nil {
		return &incident
	}

	return UnknownPayload{}
}
