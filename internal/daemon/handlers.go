package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/theirongolddev/fburn/internal/model"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debugf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

// withDashboard answers 503 until the first snapshot has been loaded.
func (s *Service) withDashboard(w http.ResponseWriter, fn func(model.Dashboard)) {
	dash, ok := s.dashboard()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no snapshot loaded yet")
		return
	}
	fn(dash)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	s.withDashboard(w, func(d model.Dashboard) {
		writeJSON(w, http.StatusOK, d)
	})
}

func (s *Service) handleBudgets(w http.ResponseWriter, _ *http.Request) {
	s.withDashboard(w, func(d model.Dashboard) {
		writeJSON(w, http.StatusOK, nonNil(d.Budgets))
	})
}

func (s *Service) handleBudget(w http.ResponseWriter, r *http.Request) {
	id := model.BudgetID(mux.Vars(r)["id"])
	s.withDashboard(w, func(d model.Dashboard) {
		for _, bc := range d.Budgets {
			if bc.Budget.ID == id {
				writeJSON(w, http.StatusOK, bc)
				return
			}
		}
		writeError(w, http.StatusNotFound, fmt.Sprintf("budget %q not found", id))
	})
}

func (s *Service) handleGoals(w http.ResponseWriter, _ *http.Request) {
	s.withDashboard(w, func(d model.Dashboard) {
		writeJSON(w, http.StatusOK, nonNil(d.Goals))
	})
}

func (s *Service) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	s.withDashboard(w, func(d model.Dashboard) {
		writeJSON(w, http.StatusOK, nonNil(d.Alerts))
	})
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current summary immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: s.cfg.Now(),
		Summary:   s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// nonNil keeps empty collections encoded as [] rather than null.
func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
