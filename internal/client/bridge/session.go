package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// Session is the live service handle held by the dispatch loop. It carries
// the HTTP client and the session identifier negotiated during the
// handshake. RPC wrappers receive it through scheduled tasks and must not
// retain it past the task's lifetime.
type Session struct {
	id       string
	clientID string
	baseURL  string
	http     *http.Client
}

func newSession(host string, port int) *Session {
	return &Session{
		clientID: uuid.New().String(),
		baseURL:  fmt.Sprintf("http://%s:%d", host, port),
		http:     &http.Client{},
	}
}

// ID returns the negotiated session identifier, empty before the handshake.
func (s *Session) ID() string { return s.id }

type openSessionRequest struct {
	ClientID string `json:"clientId"`
}

type openSessionResponse struct {
	SessionID string `json:"sessionId"`
}

func (s *Session) handshake(ctx context.Context) error {
	var resp openSessionResponse
	err := s.PostJSON(ctx, "/api/v1/session", openSessionRequest{ClientID: s.clientID}, &resp)
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	if resp.SessionID == "" {
		return fmt.Errorf("handshake: node returned empty session id")
	}
	s.id = resp.SessionID
	return nil
}

func (s *Session) heartbeat(ctx context.Context) error {
	return s.PostJSON(ctx, "/api/v1/session/"+s.id+"/heartbeat", nil, nil)
}

func (s *Session) close(ctx context.Context) error {
	if s.id == "" {
		return nil
	}
	return s.Delete(ctx, "/api/v1/session/"+s.id)
}

// GetJSON issues a GET request and decodes the JSON response into out.
func (s *Session) GetJSON(ctx context.Context, path string, out any) error {
	return s.do(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues a POST request with the JSON-encoded body and decodes the
// response into out. Both body and out may be nil.
func (s *Session) PostJSON(ctx context.Context, path string, body, out any) error {
	return s.do(ctx, http.MethodPost, path, body, out)
}

// Delete issues a DELETE request.
func (s *Session) Delete(ctx context.Context, path string) error {
	return s.do(ctx, http.MethodDelete, path, nil, nil)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Session) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.id != "" {
		req.Header.Set("X-Session-Id", s.id)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, errResp.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
