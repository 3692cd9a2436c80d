package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// DefaultMaxBodyBytes bounds notification bodies when Handler.MaxBodyBytes is
// unset.
const DefaultMaxBodyBytes = 1 << 20

// HandleFunc receives every notification that parsed.
type HandleFunc func(ctx context.Context, hook *StatusWebhook) error

// Handler is an http.Handler for webhook deliveries. It answers 204 once
// Handle returns nil, 400 for bodies that are not notifications, 405 for
// anything but POST, 413 for oversized bodies and 500 when Handle fails.
type Handler struct {
	Handle       HandleFunc
	MaxBodyBytes int64
	Logger       *logrus.Entry
}

func (h *Handler) logger() *logrus.Entry {
	if h.Logger != nil {
		return h.Logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := h.logger().WithField("remote", r.RemoteAddr)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			l.Warnf("webhook body over %d bytes", limit)
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}
		l.Warnf("reading webhook body: %v", err)
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}

	hook, err := Parse(body)
	if err != nil {
		l.Warnf("rejecting webhook: %v", err)
		http.Error(w, "invalid notification", http.StatusBadRequest)
		return
	}

	l = l.WithFields(logrus.Fields{
		"page":    hook.Page.ID,
		"payload": hook.Payload.Kind(),
	})
	l.Info("webhook received")

	if h.Handle != nil {
		if err := h.Handle(r.Context(), hook); err != nil {
			l.Errorf("handling webhook: %v", err)
			http.Error(w, "handler failed", http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
