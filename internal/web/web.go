// Package web streams long-running catalog work to browsers with Server-Sent Events.
//
// POST /sync/stream runs one catalog sync pass and writes every [tasks.ProgressUpdate] as an SSE event
// named after its phase. The final event is "done" with the result summary, or "error" with the failure.
// Only one pass runs at a time; a second request while one is active gets 409.
package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wavelet/internal/shared"
	"github.com/desertthunder/wavelet/internal/tasks"
)

// SyncStream serves catalog sync progress. Implements server.Handler.
type SyncStream struct {
	engine   tasks.SyncEngine
	statuses []string
	logger   *log.Logger

	mu      sync.Mutex
	running bool
}

// NewSyncStream streams passes of engine over statuses; ?status= query values override them per request.
func NewSyncStream(engine tasks.SyncEngine, statuses []string, logger *log.Logger) *SyncStream {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SyncStream{engine: engine, statuses: statuses, logger: logger.With("component", "sync-stream")}
}

func (s *SyncStream) Routes() []string { return []string{"/sync/stream"} }

type summary struct {
	Statuses []string `json:"statuses"`
	Fetched  int      `json:"fetched"`
	Unique   int      `json:"unique"`
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Failed   int      `json:"failed"`
}

type event struct {
	Step    int    `json:"step"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

func (s *SyncStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	if !s.acquire() {
		http.Error(w, "sync already running", http.StatusConflict)
		return
	}
	defer s.release()

	statuses := s.statuses
	if q := r.URL.Query()["status"]; len(q) > 0 {
		statuses = q
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			if u.Phase == tasks.Complete {
				continue
			}
			writeEvent(w, u.Phase.String(), event{Step: u.Step, Total: u.Total, Message: u.Message})
			flusher.Flush()
		}
	}()

	result, err := s.engine.Sync(r.Context(), progress, statuses...)
	close(progress)
	<-done

	if err != nil {
		s.logger.Warn("sync failed", "error", err)
		writeEvent(w, "error", map[string]string{"error": err.Error()})
		flusher.Flush()
		return
	}

	writeEvent(w, "done", summary{
		Statuses: result.Statuses,
		Fetched:  result.Fetched,
		Unique:   len(result.Tracks),
		Inserted: result.Inserted,
		Updated:  result.Updated,
		Failed:   len(result.Failed),
	})
	flusher.Flush()
}

func (s *SyncStream) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *SyncStream) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// writeEvent writes one SSE frame. Data is JSON so it never spans lines.
func writeEvent(w http.ResponseWriter, name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(`{}`)
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", strings.ReplaceAll(name, "\n", ""), data)
}
