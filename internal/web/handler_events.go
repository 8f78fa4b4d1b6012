package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vbonduro/infratrack/internal/service"
)

// handleEvents streams the synchronized state as server-sent events. The
// current state is sent first, then one "state" event per change. Slow
// clients only ever see the latest state: intermediate ones are dropped.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server-wide write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Debug("cannot clear write deadline", "error", err)
	}

	updates := make(chan service.State, 1)
	cancel := s.service.Watch(func(st service.State) {
		select {
		case updates <- st:
		default:
			// Replace the pending state with the newer one.
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- st:
			default:
			}
		}
	})
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := s.writeStateEvent(w, rc, s.service.State()); err != nil {
		return
	}

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.closing:
			return
		case st := <-updates:
			if err := s.writeStateEvent(w, rc, st); err != nil {
				s.logger.Debug("event stream closed", "error", err)
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeStateEvent(w http.ResponseWriter, rc *http.ResponseController, st service.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		s.logger.Error("encode state event failed", "error", err)
		return err
	}
	if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
		return err
	}
	return rc.Flush()
}
