// Package apitest provides an in-memory node daemon stub for exercising the
// bridge and RPC surface against real HTTP round trips.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type submittedJob struct {
	Manifest map[string]any
	Input    []byte
}

// Server is a stub node daemon. Behavior knobs are read under the server
// mutex, so tests may flip them between requests.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	sessions map[string]bool
	jobs     map[string]submittedJob
	chats    map[string][]map[string]any

	handshakeDelay time.Duration
	rejectSessions bool
	rejectJobs     bool
	requests       int
}

// NewServer starts a stub node daemon backed by httptest.
func NewServer() *Server {
	s := &Server{
		sessions: make(map[string]bool),
		jobs:     make(map[string]submittedJob),
		chats:    make(map[string][]map[string]any),
	}

	r := chi.NewRouter()
	r.Use(s.countRequests)

	r.Post("/api/v1/session", s.openSession)
	r.Post("/api/v1/session/{id}/heartbeat", s.heartbeat)
	r.Delete("/api/v1/session/{id}", s.closeSession)

	r.Get("/api/v1/nodes", s.listNodes)
	r.Get("/api/v1/nodes/{id}", s.getNode)
	r.Get("/api/v1/nodes/{id}/stats", s.getNodeStats)
	r.Post("/api/v1/nodes/{id}/threat-score", s.updateThreatScore)

	r.Get("/api/v1/peers", s.listPeers)
	r.Post("/api/v1/peers/connect", s.connectPeer)

	r.Post("/api/v1/compute/jobs", s.submitJob)
	r.Get("/api/v1/compute/jobs/{id}/status", s.jobStatus)
	r.Get("/api/v1/compute/jobs/{id}/result", s.jobResult)
	r.Post("/api/v1/compute/jobs/{id}/cancel", s.cancelJob)

	r.Post("/api/v1/chat/sessions", s.createChatSession)
	r.Post("/api/v1/chat/sessions/{id}/messages", s.sendChatMessage)

	s.Server = httptest.NewServer(r)
	return s
}

// HostPort returns the stub's listen host and port for bridge connects.
func (s *Server) HostPort() (string, int) {
	u, err := url.Parse(s.URL)
	if err != nil {
		panic(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		panic(err)
	}
	return u.Hostname(), port
}

// SetHandshakeDelay makes session creation hang for d before responding.
func (s *Server) SetHandshakeDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handshakeDelay = d
}

// SetRejectSessions makes the handshake fail with 503.
func (s *Server) SetRejectSessions(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectSessions = reject
}

// SetRejectJobs makes compute-job submission return an explicit rejection.
func (s *Server) SetRejectJobs(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectJobs = reject
}

// RequestCount returns how many requests the stub has served.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// SubmittedJobIDs returns the IDs of jobs the stub accepted.
func (s *Server) SubmittedJobIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id := range s.jobs {
		ids = append(ids, id)
	}
	return ids
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delay := s.handshakeDelay
	reject := s.rejectSessions
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if reject {
		writeError(w, http.StatusServiceUnavailable, "sessions disabled")
		return
	}

	id := uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = true
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"sessionId": id})
}

func (s *Server) heartbeat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": []map[string]any{
			{"id": "node-1", "address": "10.0.0.1:8470", "version": "1.4.0", "online": true, "threatScore": 0.1},
			{"id": "node-2", "address": "10.0.0.2:8470", "version": "1.4.0", "online": false, "threatScore": 0.7},
		},
	})
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != "node-1" {
		writeError(w, http.StatusNotFound, "unknown node")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id": "node-1", "address": "10.0.0.1:8470", "version": "1.4.0", "online": true, "threatScore": 0.1,
	})
}

func (s *Server) getNodeStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"nodeId": chi.URLParam(r, "id"), "cpuPercent": 42.5, "memoryBytes": 1 << 30, "peerCount": 3,
	})
}

func (s *Server) updateThreatScore(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listPeers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"peers": []map[string]any{
			{"id": "peer-1", "address": "10.0.0.9:8470", "direction": "outbound", "latencyMs": 12.5, "connected": true},
		},
	})
}

func (s *Server) connectPeer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"connected": true,
		"peer":      map[string]any{"id": "peer-9", "address": "10.0.0.10:8470", "direction": "outbound", "connected": true},
	})
}

func (s *Server) submitJob(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	reject := s.rejectJobs
	s.mu.Unlock()

	var req struct {
		Manifest map[string]any `json:"manifest"`
		Input    []byte         `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	jobID, _ := req.Manifest["jobId"].(string)
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "manifest missing jobId")
		return
	}

	if reject {
		writeJSON(w, http.StatusOK, map[string]any{"accepted": false, "error": "cluster at capacity"})
		return
	}

	s.mu.Lock()
	s.jobs[jobID] = submittedJob{Manifest: req.Manifest, Input: req.Input}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"accepted": true})
}

func (s *Server) jobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobId": id, "status": "COMPLETED", "progress": 1.0,
		"chunksCompleted": 4, "chunksTotal": 4, "worker": "stub-worker-1",
	})
}

func (s *Server) jobResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	job, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}
	// The stub "executes" every job as identity.
	writeJSON(w, http.StatusOK, map[string]any{"result": job.Input, "worker": "stub-worker-1"})
}

func (s *Server) cancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.jobs[id]
	if ok {
		delete(s.jobs, id)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": true})
}

func (s *Server) createChatSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()
	s.mu.Lock()
	s.chats[id] = nil
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"sessionId": id})
}

func (s *Server) sendChatMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.chats[id]
	if ok {
		s.chats[id] = append(s.chats[id], map[string]any{"sentAt": time.Now().UTC()})
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown chat session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
