// Package notify forwards webhook notifications to chat.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/castawaylabs/statuspage"
	"github.com/castawaylabs/statuspage/render"
	"github.com/castawaylabs/statuspage/webhook"
)

const (
	colorGreen  = "#36a64f"
	colorBlue   = "#3498db"
	colorYellow = "#f1c40f"
	colorOrange = "#e67e22"
	colorRed    = "#e74c3c"

	footer = "Statuspage"
)

// Slack posts to an 'Incoming Webhook' url set up in Slack Apps. The channel
// is chosen when the url is created.
type Slack struct {
	WebhookURL string
	Client     *http.Client
}

type Message struct {
	Attachments []Attachment `json:"attachments"`
}

type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type Attachment struct {
	Fallback  string  `json:"fallback"`
	Color     string  `json:"color"`
	Pretext   string  `json:"pretext,omitempty"`
	Title     string  `json:"title"`
	TitleLink string  `json:"title_link,omitempty"`
	Text      string  `json:"text,omitempty"`
	Fields    []Field `json:"fields,omitempty"`
	Footer    string  `json:"footer"`
	Ts        int64   `json:"ts"`
}

// Notify sends hook to Slack. Unknown payloads are skipped.
func (s *Slack) Notify(ctx context.Context, hook *webhook.StatusWebhook) error {
	msg, ok := NewMessage(hook)
	if !ok {
		return nil
	}
	return s.Send(ctx, msg)
}

// Send posts msg and expects Slack's literal "ok" reply.
func (s *Slack) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, 512))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK || string(reply) != "ok" {
		return fmt.Errorf("slack: non-ok response (%d): %s", resp.StatusCode, reply)
	}

	return nil
}

// NewMessage renders the attachment for hook. It reports false for payloads
// that carry nothing to show.
func NewMessage(hook *webhook.StatusWebhook) (Message, bool) {
	var a Attachment

	switch p := hook.Payload.(type) {
	case *webhook.ComponentPayload:
		update := p.ComponentUpdate
		a = Attachment{
			Fallback: fmt.Sprintf("%s is now %s", p.Component.Name, render.Humanize(update.NewStatus)),
			Color:    componentColor(update.NewStatus),
			Title:    p.Component.Name,
			Text:     fmt.Sprintf("%s → %s", render.Humanize(update.OldStatus), render.Humanize(update.NewStatus)),
			Ts:       update.CreatedAt.Unix(),
		}
	case *webhook.IncidentPayload:
		inc := p.Incident
		a = Attachment{
			Fallback:  fmt.Sprintf("%s: %s", inc.Name, inc.Status),
			Color:     incidentColor(inc),
			Title:     inc.Name,
			TitleLink: inc.Shortlink,
			Fields: []Field{
				{Title: "Status", Value: string(inc.Status), Short: true},
				{Title: "Impact", Value: inc.Impact.String(), Short: true},
			},
			Ts: incidentTime(inc).Unix(),
		}
		if latest, ok := inc.LatestUpdate(); ok {
			a.Text = latest.Body
		}
	default:
		return Message{}, false
	}

	a.Pretext = hook.Page.StatusDescription
	a.Footer = footer

	return Message{Attachments: []Attachment{a}}, true
}

// NewStatusMessage renders the attachment for a page status transition seen
// by polling.
func NewStatusMessage(page string, prev, cur statuspage.Status) Message {
	return Message{Attachments: []Attachment{{
		Fallback: fmt.Sprintf("%s: %s", page, cur.Description),
		Color:    indicatorColor(cur.Indicator),
		Title:    cur.Description,
		Text:     fmt.Sprintf("%s → %s", render.Humanize(prev.Indicator), render.Humanize(cur.Indicator)),
		Pretext:  page,
		Footer:   footer,
		Ts:       time.Now().Unix(),
	}}}
}

func indicatorColor(i statuspage.StatusIndicator) string {
	switch i {
	case statuspage.IndicatorMaintenance:
		return colorBlue
	case statuspage.IndicatorMinor:
		return colorYellow
	case statuspage.IndicatorMajor:
		return colorOrange
	case statuspage.IndicatorCritical:
		return colorRed
	}
	return colorGreen
}

func componentColor(s statuspage.ComponentStatus) string {
	switch s {
	case statuspage.ComponentUnderMaintenance:
		return colorBlue
	case statuspage.ComponentDegradedPerformance:
		return colorYellow
	case statuspage.ComponentPartialOutage:
		return colorOrange
	case statuspage.ComponentMajorOutage:
		return colorRed
	}
	return colorGreen
}

func incidentColor(inc statuspage.Incident) string {
	if inc.IsResolved() {
		return colorGreen
	}

	switch inc.Impact {
	case statuspage.ImpactMaintenance:
		return colorBlue
	case statuspage.ImpactMinor:
		return colorYellow
	case statuspage.ImpactMajor:
		return colorOrange
	case statuspage.ImpactCritical:
		return colorRed
	}
	return colorGreen
}

func incidentTime(inc statuspage.Incident) time.Time {
	if inc.UpdatedAt != nil {
		return *inc.UpdatedAt
	}
	return inc.CreatedAt
}
