package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkovacev/gridjob/internal/client/core"
)

func TestMapNode(t *testing.T) {
	seen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dto := nodeDTO{
		ID:          "node-1",
		Address:     "10.0.0.1:8470",
		Version:     "1.4.0",
		Online:      true,
		ThreatScore: 0.25,
		LastSeen:    seen,
	}

	node := mapNode(dto)
	assert.Equal(t, core.NodeInfo{
		ID:          "node-1",
		Address:     "10.0.0.1:8470",
		Version:     "1.4.0",
		Online:      true,
		ThreatScore: 0.25,
		LastSeen:    seen,
	}, node)
}

func TestMapNodes_EmptyProducesEmptySlice(t *testing.T) {
	nodes := mapNodes(nil)
	assert.NotNil(t, nodes)
	assert.Empty(t, nodes)
}

func TestMapJobStatus(t *testing.T) {
	dto := jobStatusDTO{
		JobID:           "abc",
		Status:          "COMPUTING",
		Progress:        0.75,
		ChunksCompleted: 3,
		ChunksTotal:     4,
		Worker:          "worker-7",
		Message:         "crunching",
	}

	status := mapJobStatus(dto)
	assert.Equal(t, core.JobStatusComputing, status.Status)
	assert.Equal(t, 0.75, status.Progress)
	assert.Equal(t, 3, status.ChunksCompleted)
	assert.Equal(t, "worker-7", status.Worker)
}

func TestMapPeer(t *testing.T) {
	dto := peerDTO{ID: "p1", Address: "10.0.0.9:8470", Direction: "inbound", LatencyMs: 3.5, Connected: true}
	peer := mapPeer(dto)
	assert.Equal(t, "p1", peer.ID)
	assert.Equal(t, "inbound", peer.Direction)
	assert.Equal(t, 3.5, peer.LatencyMs)
	assert.True(t, peer.Connected)
}

func TestMapTrainingStatus(t *testing.T) {
	dto := trainingStatusDTO{RunID: "r1", ModelName: "m", Round: 12, Loss: 0.034, Running: true, Peers: 5}
	status := mapTrainingStatus(dto)
	assert.Equal(t, "r1", status.RunID)
	assert.Equal(t, 12, status.Round)
	assert.True(t, status.Running)
}
