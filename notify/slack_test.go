package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/castawaylabs/statuspage"
	"github.com/castawaylabs/statuspage/webhook"
)

func loadHook(t *testing.T, name string) *webhook.StatusWebhook {
	t.Helper()
	data, err := os.ReadFile("../webhook/testdata/" + name)
	if err != nil {
		t.Fatal(err)
	}
	hook, err := webhook.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	return hook
}

func TestComponentMessage(t *testing.T) {
	msg, ok := NewMessage(loadHook(t, "component1.json"))
	if !ok {
		t.Fatal("expected a message")
	}

	a := msg.Attachments[0]
	if a.Title != "Emails" || a.Color != colorYellow {
		t.Errorf("unexpected attachment %+v", a)
	}
	if a.Text != "Operational → Degraded Performance" {
		t.Errorf("unexpected text %q", a.Text)
	}
	if a.Pretext != "Partial System Outage" || a.Footer != footer {
		t.Errorf("unexpected envelope fields %+v", a)
	}
}

func TestIncidentMessage(t *testing.T) {
	msg, ok := NewMessage(loadHook(t, "incident2.json"))
	if !ok {
		t.Fatal("expected a message")
	}

	a := msg.Attachments[0]
	if a.Color != colorGreen {
		t.Errorf("resolved incident should be green, got %s", a.Color)
	}
	if a.TitleLink != "http://j.mp/18zyDQx" || a.Text != "This incident has been resolved." {
		t.Errorf("unexpected attachment %+v", a)
	}
	if len(a.Fields) != 2 || a.Fields[1].Value != "minor" {
		t.Errorf("unexpected fields %+v", a.Fields)
	}
}

func TestUnknownPayloadIsSkipped(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	s := &Slack{WebhookURL: server.URL}
	if err := s.Notify(context.Background(), loadHook(t, "invalid.json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("unknown payload should not be posted")
	}
}

func TestSendPostsAttachments(t *testing.T) {
	var got Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("invalid body: %v", err)
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	s := &Slack{WebhookURL: server.URL}
	if err := s.Notify(context.Background(), loadHook(t, "component2.json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Color != colorGreen {
		t.Errorf("unexpected message %+v", got)
	}
}

func TestSendNonOkReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no_service"))
	}))
	defer server.Close()

	s := &Slack{WebhookURL: server.URL}
	if err := s.Notify(context.Background(), loadHook(t, "component1.json")); err == nil {
		t.Error("expected an error for a non-ok reply")
	}
}

func TestStatusMessage(t *testing.T) {
	prev := statuspage.Status{Indicator: statuspage.IndicatorNone, Description: "All Systems Operational"}
	cur := statuspage.Status{Indicator: statuspage.IndicatorMajor, Description: "Partial System Outage"}

	msg := NewStatusMessage("GitHub", prev, cur)
	a := msg.Attachments[0]
	if a.Text != "None → Major" || a.Color != colorOrange || a.Pretext != "GitHub" {
		t.Errorf("unexpected attachment %+v", a)
	}
}
