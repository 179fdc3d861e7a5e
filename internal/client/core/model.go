package core

import (
	"time"

	"github.com/mkovacev/gridjob/pkg/jobs"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusAssigned  JobStatus = "ASSIGNED"
	JobStatusComputing JobStatus = "COMPUTING"
	JobStatusVerifying JobStatus = "VERIFYING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusTimeout   JobStatus = "TIMEOUT"
	JobStatusCancelled JobStatus = "CANCELLED"
)

// Terminal reports whether a job can no longer change state.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusTimeout, JobStatusCancelled:
		return true
	}
	return false
}

// WorkerLocal is the worker label reported when a job ran through the local
// fallback path instead of a remote worker. It is the only signal exposed to
// callers that indicates which path was taken.
const WorkerLocal = "local"

// JobRecord is the client-local state of one submitted job. Records are
// mutated only by the job client, from whichever thread called it; concurrent
// calls for the same job from multiple goroutines are out of contract.
type JobRecord struct {
	Manifest   jobs.Manifest
	Input      []byte
	Definition *jobs.Definition

	Status    JobStatus
	StartedAt time.Time
	Result    []byte
	Error     string
	Worker    string
}

// JobStatusInfo is the live or synthesized view of a job's progress.
type JobStatusInfo struct {
	JobID           string
	Status          JobStatus
	Progress        float64
	ChunksCompleted int
	ChunksTotal     int
	Worker          string
	Message         string
}

// NodeInfo describes one node known to the daemon.
type NodeInfo struct {
	ID          string
	Address     string
	Version     string
	Online      bool
	ThreatScore float64
	LastSeen    time.Time
}

// NodeStats is a point-in-time resource snapshot for a node.
type NodeStats struct {
	NodeID        string
	CPUPercent    float64
	MemoryBytes   uint64
	PeerCount     int
	ActiveJobs    int
	UptimeSeconds int64
	BytesSent     uint64
	BytesReceived uint64
}

// PeerInfo describes a directly connected peer.
type PeerInfo struct {
	ID        string
	Address   string
	Direction string
	LatencyMs float64
	Connected bool
}

// DHTRecord is one key lookup result from the distributed hash table.
type DHTRecord struct {
	Key       string
	Value     []byte
	Publisher string
	ExpiresAt time.Time
}

// StreamInfo describes an active media stream session.
type StreamInfo struct {
	ID        string
	PeerID    string
	Kind      string
	Quality   string
	Active    bool
	StartedAt time.Time
}

// ComputeJobSummary is a compact remote job listing entry.
type ComputeJobSummary struct {
	JobID       string
	Name        string
	Status      JobStatus
	SubmittedAt time.Time
}

// WorkerInfo describes a remote compute worker.
type WorkerInfo struct {
	ID         string
	Address    string
	CPUCores   int
	MemBytes   uint64
	ActiveJobs int
	Reputation float64
}

// ChatSessionInfo describes one chat session held by the daemon.
type ChatSessionInfo struct {
	ID        string
	PeerID    string
	CreatedAt time.Time
	Messages  int
}

// ChatMessage is a single message in a chat session.
type ChatMessage struct {
	SessionID string
	Sender    string
	Text      string
	SentAt    time.Time
}

// TrainingStatusInfo reports the state of a distributed training run.
type TrainingStatusInfo struct {
	RunID     string
	ModelName string
	Round     int
	Loss      float64
	Running   bool
	Peers     int
}

// ModelInfo describes a model hosted by the node.
type ModelInfo struct {
	Name       string
	Version    string
	SizeBytes  uint64
	Parameters uint64
	UpdatedAt  time.Time
}
