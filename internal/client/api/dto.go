package api

import (
	"time"

	"github.com/mkovacev/gridjob/pkg/jobs"
)

// Wire DTOs for the node daemon's JSON API. These types never leave this
// package; wrappers map them into plain core records.

type nodeDTO struct {
	ID          string    `json:"id"`
	Address     string    `json:"address"`
	Version     string    `json:"version"`
	Online      bool      `json:"online"`
	ThreatScore float64   `json:"threatScore"`
	LastSeen    time.Time `json:"lastSeen"`
}

type listNodesResponse struct {
	Nodes []nodeDTO `json:"nodes"`
}

type nodeStatsDTO struct {
	NodeID        string  `json:"nodeId"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryBytes   uint64  `json:"memoryBytes"`
	PeerCount     int     `json:"peerCount"`
	ActiveJobs    int     `json:"activeJobs"`
	UptimeSeconds int64   `json:"uptimeSeconds"`
	BytesSent     uint64  `json:"bytesSent"`
	BytesReceived uint64  `json:"bytesReceived"`
}

type threatScoreRequest struct {
	Score float64 `json:"score"`
}

type peerDTO struct {
	ID        string  `json:"id"`
	Address   string  `json:"address"`
	Direction string  `json:"direction"`
	LatencyMs float64 `json:"latencyMs"`
	Connected bool    `json:"connected"`
}

type listPeersResponse struct {
	Peers []peerDTO `json:"peers"`
}

type connectPeerRequest struct {
	Address string `json:"address"`
}

type connectPeerResponse struct {
	Connected bool     `json:"connected"`
	Peer      *peerDTO `json:"peer"`
}

type pingPeerResponse struct {
	Reachable bool    `json:"reachable"`
	LatencyMs float64 `json:"latencyMs"`
}

type dhtRecordDTO struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	Publisher string    `json:"publisher"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type announceCapabilityRequest struct {
	Name    string            `json:"name"`
	Payload map[string]string `json:"payload,omitempty"`
}

type streamDTO struct {
	ID        string    `json:"id"`
	PeerID    string    `json:"peerId"`
	Kind      string    `json:"kind"`
	Quality   string    `json:"quality"`
	Active    bool      `json:"active"`
	StartedAt time.Time `json:"startedAt"`
}

type startStreamRequest struct {
	PeerID string `json:"peerId"`
	Kind   string `json:"kind"`
}

type startStreamResponse struct {
	Started  bool   `json:"started"`
	StreamID string `json:"streamId"`
}

type listStreamsResponse struct {
	Streams []streamDTO `json:"streams"`
}

type streamQualityRequest struct {
	Quality string `json:"quality"`
}

type submitJobRequest struct {
	Manifest jobs.Manifest `json:"manifest"`
	Input    []byte        `json:"input"`
}

type submitJobResponse struct {
	Accepted bool   `json:"accepted"`
	Error    string `json:"error"`
}

type jobStatusDTO struct {
	JobID           string  `json:"jobId"`
	Status          string  `json:"status"`
	Progress        float64 `json:"progress"`
	ChunksCompleted int     `json:"chunksCompleted"`
	ChunksTotal     int     `json:"chunksTotal"`
	Worker          string  `json:"worker"`
	Message         string  `json:"message"`
}

type jobResultResponse struct {
	Result []byte `json:"result"`
	Worker string `json:"worker"`
	Error  string `json:"error"`
}

type cancelJobResponse struct {
	Cancelled bool `json:"cancelled"`
}

type jobSummaryDTO struct {
	JobID       string    `json:"jobId"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type listJobsResponse struct {
	Jobs []jobSummaryDTO `json:"jobs"`
}

type workerDTO struct {
	ID         string  `json:"id"`
	Address    string  `json:"address"`
	CPUCores   int     `json:"cpuCores"`
	MemBytes   uint64  `json:"memBytes"`
	ActiveJobs int     `json:"activeJobs"`
	Reputation float64 `json:"reputation"`
}

type listWorkersResponse struct {
	Workers []workerDTO `json:"workers"`
}

type createChatSessionRequest struct {
	PeerID string `json:"peerId"`
}

type createChatSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type chatMessageRequest struct {
	Text string `json:"text"`
}

type chatMessageDTO struct {
	SessionID string    `json:"sessionId"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	SentAt    time.Time `json:"sentAt"`
}

type chatHistoryResponse struct {
	Messages []chatMessageDTO `json:"messages"`
}

type chatSessionDTO struct {
	ID        string    `json:"id"`
	PeerID    string    `json:"peerId"`
	CreatedAt time.Time `json:"createdAt"`
	Messages  int       `json:"messages"`
}

type listChatSessionsResponse struct {
	Sessions []chatSessionDTO `json:"sessions"`
}

type startTrainingRequest struct {
	ModelName string            `json:"modelName"`
	Config    map[string]string `json:"config,omitempty"`
}

type startTrainingResponse struct {
	Started bool   `json:"started"`
	RunID   string `json:"runId"`
}

type trainingStatusDTO struct {
	RunID     string  `json:"runId"`
	ModelName string  `json:"modelName"`
	Round     int     `json:"round"`
	Loss      float64 `json:"loss"`
	Running   bool    `json:"running"`
	Peers     int     `json:"peers"`
}

type submitGradientRequest struct {
	Payload []byte `json:"payload"`
}

type modelInfoDTO struct {
	Name       string    `json:"name"`
	Version    string    `json:"version"`
	SizeBytes  uint64    `json:"sizeBytes"`
	Parameters uint64    `json:"parameters"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
