package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/apibridge/apibridge/internal/common"
)

// Sink receives response payloads destined for one client session.
type Sink interface {
	// Deliver sends one response object to the session. It may fail if the
	// client has disconnected.
	Deliver(payload []byte) error
	// Close releases the session's transport resources.
	Close()
}

// SessionRegistry tracks live streaming sessions by id. Registration and
// deregistration are explicit calls made by the transport.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]Sink
	logger   *common.Logger
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(logger *common.Logger) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]Sink),
		logger:   logger,
	}
}

// Register attaches a sink under the given session id, replacing any
// previous sink with that id.
func (sr *SessionRegistry) Register(id string, sink Sink) {
	sr.mu.Lock()
	sr.sessions[id] = sink
	sr.mu.Unlock()
	sr.logger.Debug().Str("session", id).Msg("session registered")
}

// Unregister removes a session. Unknown ids are a no-op.
func (sr *SessionRegistry) Unregister(id string) {
	sr.mu.Lock()
	delete(sr.sessions, id)
	sr.mu.Unlock()
	sr.logger.Debug().Str("session", id).Msg("session unregistered")
}

// Get returns the sink for a session id.
func (sr *SessionRegistry) Get(id string) (Sink, bool) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	sink, ok := sr.sessions[id]
	return sink, ok
}

// Len returns the number of live sessions.
func (sr *SessionRegistry) Len() int {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return len(sr.sessions)
}

// CloseAll closes every live session and empties the registry. Called
// during shutdown so the HTTP server can drain.
func (sr *SessionRegistry) CloseAll() {
	sr.mu.Lock()
	sessions := sr.sessions
	sr.sessions = make(map[string]Sink)
	sr.mu.Unlock()

	for id, sink := range sessions {
		sink.Close()
		sr.logger.Debug().Str("session", id).Msg("session closed")
	}
}

// sseSession streams server-sent events to one connected client.
type sseSession struct {
	id     string
	events chan []byte
	done   chan struct{}
	once   sync.Once
}

func newSSESession(id string) *sseSession {
	return &sseSession{
		id:     id,
		events: make(chan []byte, 16),
		done:   make(chan struct{}),
	}
}

// Deliver queues a payload for the event stream. It fails when the session
// has been closed or its buffer is full (slow consumer).
func (s *sseSession) Deliver(payload []byte) error {
	select {
	case <-s.done:
		return fmt.Errorf("session %s closed", s.id)
	default:
	}
	select {
	case s.events <- payload:
		return nil
	case <-s.done:
		return fmt.Errorf("session %s closed", s.id)
	default:
		return fmt.Errorf("session %s buffer full", s.id)
	}
}

// Close terminates the event stream. Safe to call more than once.
func (s *sseSession) Close() {
	s.once.Do(func() { close(s.done) })
}

// handleSessionOpen serves GET /rpc/session: it registers a new SSE session,
// announces its id in the first event, and streams responses until the
// client disconnects or the server shuts down.
func (s *Server) handleSessionOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	id := uuid.New().String()
	session := newSSESession(id)
	s.sessions.Register(id, session)
	defer func() {
		s.sessions.Unregister(id)
		session.Close()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	announce, _ := json.Marshal(map[string]string{"session": id})
	fmt.Fprintf(w, "event: session\ndata: %s\n\n", announce)
	flusher.Flush()

	for {
		select {
		case payload := <-session.events:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", payload)
			flusher.Flush()
		case <-session.done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// handleSessionMessage serves POST /rpc/message?session=<id>: the request
// body is a JSON-RPC envelope whose response is delivered over the session's
// event stream. The HTTP response acknowledges acceptance only.
func (s *Server) handleSessionMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("session")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session query parameter required"})
		return
	}
	sink, ok := s.sessions.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown session: " + id})
		return
	}

	resp := s.dispatchRPC(r.Context(), r.Body)

	payload, err := json.Marshal(resp)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to encode response"})
		return
	}
	if err := sink.Deliver(payload); err != nil {
		s.logger.Warn().Str("session", id).Str("error", err.Error()).Msg("session delivery failed")
		writeJSON(w, http.StatusGone, map[string]string{"error": "session no longer accepting messages"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "session": id})
}

var _ Sink = (*sseSession)(nil)
