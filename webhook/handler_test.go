package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestHandlerDeliversParsedWebhook(t *testing.T) {
	body, err := os.ReadFile("testdata/incident1.json")
	if err != nil {
		t.Fatal(err)
	}

	var got *StatusWebhook
	h := &Handler{
		Handle: func(ctx context.Context, hook *StatusWebhook) error {
			got = hook
			return nil
		},
		Logger: quietLogger(),
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(string(body))))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if got == nil || got.Payload.Kind() != "incident" {
		t.Errorf("handler did not receive the incident: %+v", got)
	}
}

func TestHandlerStatusCodes(t *testing.T) {
	valid := `{"meta": {"unsubscribe": "u", "documentation": "d"},
		"page": {"id": "p", "status_indicator": "none", "status_description": "ok"}}`

	tests := []struct {
		name   string
		method string
		body   string
		limit  int64
		handle HandleFunc
		want   int
	}{
		{name: "get", method: http.MethodGet, want: http.StatusMethodNotAllowed},
		{name: "garbage", method: http.MethodPost, body: "hello", want: http.StatusBadRequest},
		{name: "too large", method: http.MethodPost, body: valid, limit: 8, want: http.StatusRequestEntityTooLarge},
		{name: "unknown payload", method: http.MethodPost, body: valid, want: http.StatusNoContent},
		{
			name:   "handler failure",
			method: http.MethodPost,
			body:   valid,
			handle: func(context.Context, *StatusWebhook) error { return errors.New("slack down") },
			want:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{Handle: tt.handle, MaxBodyBytes: tt.limit, Logger: quietLogger()}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/hook", strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Errorf("got status %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
