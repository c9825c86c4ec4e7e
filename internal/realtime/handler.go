package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
)

var ErrStreamingUnsupported = errors.New("realtime: response writer cannot flush")

// Authorizer reports whether the caller may watch storyID.
type Authorizer func(ctx context.Context, storyID string) error

type Handler struct {
	sub       Subscriber
	authorize Authorizer
	keepAlive time.Duration
}

func NewHandler(sub Subscriber, authorize Authorizer, keepAlive time.Duration) *Handler {
	return &Handler{sub: sub, authorize: authorize, keepAlive: keepAlive}
}

// Stream writes events for the story in the path as server-sent events
// until the client goes away.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	storyID := r.PathValue("id")
	if err := h.authorize(r.Context(), storyID); err != nil {
		web.RespondNotFound(w, err, message.NotFound, nil)
		return
	}

	rc := http.NewResponseController(w)
	// streams outlive the server write timeout
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		slog.Warn("clear write deadline", "error", err)
	}

	events, cancel := h.sub.Subscribe(storyID)
	defer cancel()

	w.Header().Set(web.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		slog.Error("open event stream", "reason", fmt.Errorf("%w: %w", ErrStreamingUnsupported, err))
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, evt); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data)
	return err
}
