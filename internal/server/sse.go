package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/v0xg/streamchapters/internal/events"
)

// streamEvents relays bus events to one client as Server-Sent Events
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("Response writer does not support flushing")
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	clientID := uuid.NewString()
	sub := s.deps.Bus.Subscribe(events.DefaultBuffer)
	defer sub.Close()

	s.logger.Info("SSE client connected", "client_id", clientID, "total_clients", s.deps.Bus.Subscribers())
	defer func() {
		s.logger.Info("SSE client disconnected", "client_id", clientID, "dropped", sub.Dropped())
	}()

	if err := writeComment(w, flusher, "connected "+clientID); err != nil {
		return
	}

	ticker := time.NewTicker(s.deps.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-sub.C:
			if !ok {
				return
			}
			if err := writeEvent(w, flusher, e); err != nil {
				s.logger.Debug("SSE write failed", "client_id", clientID, "error", err)
				return
			}
		case <-ticker.C:
			if err := writeComment(w, flusher, "keepalive "+time.Now().Format(time.RFC3339)); err != nil {
				s.logger.Debug("Keep-alive failed, removing client", "client_id", clientID)
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, f http.Flusher, e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	f.Flush()
	return nil
}

// Comments keep the connection open without reaching event listeners
func writeComment(w http.ResponseWriter, f http.Flusher, text string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", text); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	f.Flush()
	return nil
}
