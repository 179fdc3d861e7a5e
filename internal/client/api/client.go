// Package api is the typed RPC surface over the connection bridge. Every
// wrapper shares one contract: build a request from typed arguments, invoke
// the bridge call primitive with the operation's latency-class timeout, map
// the response into a plain core record, and on any error log it and return
// the method's documented sentinel value. Transport errors never escape this
// layer; that is what distinguishes it from the bridge, which propagates.
package api

import (
	"context"
	"time"

	"github.com/mkovacev/gridjob/internal/client/bridge"
	"github.com/mkovacev/gridjob/internal/client/core"
	"github.com/mkovacev/gridjob/internal/client/metrics"
	"github.com/mkovacev/gridjob/internal/shared/config"
	"github.com/mkovacev/gridjob/internal/shared/logging"
	"github.com/mkovacev/gridjob/pkg/jobs"
)

type Client struct {
	bridge  *bridge.Bridge
	calls   config.CallsConfig
	logger  logging.Logger
	metrics *metrics.ClientMetrics
}

var _ core.ComputeAPI = (*Client)(nil)

func NewClient(b *bridge.Bridge, calls config.CallsConfig, logger logging.Logger, m *metrics.ClientMetrics) *Client {
	return &Client{
		bridge:  b,
		calls:   calls,
		logger:  logger,
		metrics: m,
	}
}

func (c *Client) fail(method string, err error) {
	c.logger.Error("RPC call failed", "method", method, "error", err)
	c.metrics.RecordRPCFailure(method)
}

// --- Node and peer queries ---

// ListNodes returns all nodes known to the daemon, or an empty list on failure.
func (c *Client) ListNodes() []core.NodeInfo {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (listNodesResponse, error) {
		var out listNodesResponse
		return out, sess.GetJSON(ctx, "/api/v1/nodes", &out)
	})
	if err != nil {
		c.fail("ListNodes", err)
		return []core.NodeInfo{}
	}
	return mapNodes(resp.Nodes)
}

// GetNode returns one node, or nil on failure.
func (c *Client) GetNode(nodeID string) *core.NodeInfo {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (nodeDTO, error) {
		var out nodeDTO
		return out, sess.GetJSON(ctx, "/api/v1/nodes/"+nodeID, &out)
	})
	if err != nil {
		c.fail("GetNode", err)
		return nil
	}
	node := mapNode(resp)
	return &node
}

// GetNodeStats returns a node resource snapshot, or nil on failure.
func (c *Client) GetNodeStats(nodeID string) *core.NodeStats {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (nodeStatsDTO, error) {
		var out nodeStatsDTO
		return out, sess.GetJSON(ctx, "/api/v1/nodes/"+nodeID+"/stats", &out)
	})
	if err != nil {
		c.fail("GetNodeStats", err)
		return nil
	}
	stats := mapNodeStats(resp)
	return &stats
}

// UpdateThreatScore sets a node's threat score. Returns false on failure.
func (c *Client) UpdateThreatScore(nodeID string, score float64) bool {
	_, err := bridge.Call(c.bridge, c.calls.Mutation, func(ctx context.Context, sess *bridge.Session) (struct{}, error) {
		return struct{}{}, sess.PostJSON(ctx, "/api/v1/nodes/"+nodeID+"/threat-score", threatScoreRequest{Score: score}, nil)
	})
	if err != nil {
		c.fail("UpdateThreatScore", err)
		return false
	}
	return true
}

// ListPeers returns directly connected peers, or an empty list on failure.
func (c *Client) ListPeers() []core.PeerInfo {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (listPeersResponse, error) {
		var out listPeersResponse
		return out, sess.GetJSON(ctx, "/api/v1/peers", &out)
	})
	if err != nil {
		c.fail("ListPeers", err)
		return []core.PeerInfo{}
	}
	return mapPeers(resp.Peers)
}

// ConnectPeer dials a peer by address. Returns (false, nil) on failure.
func (c *Client) ConnectPeer(address string) (bool, *core.PeerInfo) {
	resp, err := bridge.Call(c.bridge, c.calls.Mutation, func(ctx context.Context, sess *bridge.Session) (connectPeerResponse, error) {
		var out connectPeerResponse
		return out, sess.PostJSON(ctx, "/api/v1/peers/connect", connectPeerRequest{Address: address}, &out)
	})
	if err != nil {
		c.fail("ConnectPeer", err)
		return false, nil
	}
	if resp.Peer == nil {
		return resp.Connected, nil
	}
	peer := mapPeer(*resp.Peer)
	return resp.Connected, &peer
}

// DisconnectPeer drops a peer connection. Returns false on failure.
func (c *Client) DisconnectPeer(peerID string) bool {
	_, err := bridge.Call(c.bridge, c.calls.Mutation, func(ctx context.Context, sess *bridge.Session) (struct{}, error) {
		return struct{}{}, sess.PostJSON(ctx, "/api/v1/peers/"+peerID+"/disconnect", nil, nil)
	})
	if err != nil {
		c.fail("DisconnectPeer", err)
		return false
	}
	return true
}

// PingPeer measures reachability and latency. Returns (false, 0) on failure.
func (c *Client) PingPeer(peerID string) (bool, float64) {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (pingPeerResponse, error) {
		var out pingPeerResponse
		return out, sess.PostJSON(ctx, "/api/v1/peers/"+peerID+"/ping", nil, &out)
	})
	if err != nil {
		c.fail("PingPeer", err)
		return false, 0
	}
	return resp.Reachable, resp.LatencyMs
}

// QueryDHT looks a key up in the distributed hash table, nil on failure.
func (c *Client) QueryDHT(key string) *core.DHTRecord {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (dhtRecordDTO, error) {
		var out dhtRecordDTO
		return out, sess.GetJSON(ctx, "/api/v1/dht/"+key, &out)
	})
	if err != nil {
		c.fail("QueryDHT", err)
		return nil
	}
	record := mapDHTRecord(resp)
	return &record
}

// AnnounceCapability advertises a capability to the network. False on failure.
func (c *Client) AnnounceCapability(name string, payload map[string]string) bool {
	_, err := bridge.Call(c.bridge, c.calls.Mutation, func(ctx context.Context, sess *bridge.Session) (struct{}, error) {
		return struct{}{}, sess.PostJSON(ctx, "/api/v1/capabilities", announceCapabilityRequest{Name: name, Payload: payload}, nil)
	})
	if err != nil {
		c.fail("AnnounceCapability", err)
		return false
	}
	return true
}

// --- Streaming control ---

// StartStream opens a stream to a peer. Returns (false, "") on failure.
func (c *Client) StartStream(peerID, kind string) (bool, string) {
	resp, err := bridge.Call(c.bridge, c.calls.Mutation, func(ctx context.Context, sess *bridge.Session) (startStreamResponse, error) {
		var out startStreamResponse
		return out, sess.PostJSON(ctx, "/api/v1/streams", startStreamRequest{PeerID: peerID, Kind: kind}, &out)
	})
	if err != nil {
		c.fail("StartStream", err)
		return false, ""
	}
	return resp.Started, resp.StreamID
}

// StopStream stops a stream. Returns false on failure.
func (c *Client) StopStream(streamID string) bool {
	_, err := bridge.Call(c.bridge, c.calls.Mutation, func(ctx context.Context, sess *bridge.Session) (struct{}, error) {
		return struct{}{}, sess.PostJSON(ctx, "/api/v1/streams/"+streamID+"/stop", nil, nil)
	})
	if err != nil {
		c.fail("StopStream", err)
		return false
	}
	return true
}

// GetStreamStatus returns one stream's state, or nil on failure.
func (c *Client) GetStreamStatus(streamID string) *core.StreamInfo {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (streamDTO, error) {
		var out streamDTO
		return out, sess.GetJSON(ctx, "/api/v1/streams/"+streamID, &out)
	})
	if err != nil {
		c.fail("GetStreamStatus", err)
		return nil
	}
	stream := mapStream(resp)
	return &stream
}

// ListStreams returns active streams, or an empty list on failure.
func (c *Client) ListStreams() []core.StreamInfo {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (listStreamsResponse, error) {
		var out listStreamsResponse
		return out, sess.GetJSON(ctx, "/api/v1/streams", &out)
	})
	if err != nil {
		c.fail("ListStreams", err)
		return []core.StreamInfo{}
	}
	return mapStreams(resp.Streams)
}

// SetStreamQuality adjusts a stream's quality. Returns false on failure.
func (c *Client) SetStreamQuality(streamID, quality string) bool {
	_, err := bridge.Call(c.bridge, c.calls.Mutation, func(ctx context.Context, sess *bridge.Session) (struct{}, error) {
		return struct{}{}, sess.PostJSON(ctx, "/api/v1/streams/"+streamID+"/quality", streamQualityRequest{Quality: quality}, nil)
	})
	if err != nil {
		c.fail("SetStreamQuality", err)
		return false
	}
	return true
}

// --- Compute jobs ---

// SubmitComputeJob uploads a manifest and its input payload. Returns
// (false, error-string) on transport failure or explicit rejection.
func (c *Client) SubmitComputeJob(manifest jobs.Manifest, input []byte) (bool, string) {
	resp, err := bridge.Call(c.bridge, c.calls.Submit, func(ctx context.Context, sess *bridge.Session) (submitJobResponse, error) {
		var out submitJobResponse
		return out, sess.PostJSON(ctx, "/api/v1/compute/jobs", submitJobRequest{Manifest: manifest, Input: input}, &out)
	})
	if err != nil {
		c.fail("SubmitComputeJob", err)
		return false, err.Error()
	}
	if !resp.Accepted {
		return false, resp.Error
	}
	return true, ""
}

// GetComputeJobStatus returns the orchestrator's live view of a job, or nil
// on failure.
func (c *Client) GetComputeJobStatus(jobID string) *core.JobStatusInfo {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (jobStatusDTO, error) {
		var out jobStatusDTO
		return out, sess.GetJSON(ctx, "/api/v1/compute/jobs/"+jobID+"/status", &out)
	})
	if err != nil {
		c.fail("GetComputeJobStatus", err)
		return nil
	}
	status := mapJobStatus(resp)
	return &status
}

// GetComputeJobResult fetches a job result, blocking server-side up to the
// caller-specified timeout. Returns (nil, error-string, "") on failure and
// (result, "", worker) on success.
func (c *Client) GetComputeJobResult(jobID string, timeout time.Duration) ([]byte, string, string) {
	resp, err := bridge.Call(c.bridge, timeout, func(ctx context.Context, sess *bridge.Session) (jobResultResponse, error) {
		var out jobResultResponse
		return out, sess.GetJSON(ctx, "/api/v1/compute/jobs/"+jobID+"/result", &out)
	})
	if err != nil {
		c.fail("GetComputeJobResult", err)
		return nil, err.Error(), ""
	}
	if resp.Error != "" {
		return nil, resp.Error, ""
	}
	return resp.Result, "", resp.Worker
}

// CancelComputeJob cancels a remote job. Returns false on failure.
func (c *Client) CancelComputeJob(jobID string) bool {
	resp, err := bridge.Call(c.bridge, c.calls.Mutation, func(ctx context.Context, sess *bridge.Session) (cancelJobResponse, error) {
		var out cancelJobResponse
		return out, sess.PostJSON(ctx, "/api/v1/compute/jobs/"+jobID+"/cancel", nil, &out)
	})
	if err != nil {
		c.fail("CancelComputeJob", err)
		return false
	}
	return resp.Cancelled
}

// ListComputeJobs returns remote job summaries, or an empty list on failure.
func (c *Client) ListComputeJobs() []core.ComputeJobSummary {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (listJobsResponse, error) {
		var out listJobsResponse
		return out, sess.GetJSON(ctx, "/api/v1/compute/jobs", &out)
	})
	if err != nil {
		c.fail("ListComputeJobs", err)
		return []core.ComputeJobSummary{}
	}
	return mapJobSummaries(resp.Jobs)
}

// GetWorkerInfo returns one compute worker, or nil on failure.
func (c *Client) GetWorkerInfo(workerID string) *core.WorkerInfo {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (workerDTO, error) {
		var out workerDTO
		return out, sess.GetJSON(ctx, "/api/v1/compute/workers/"+workerID, &out)
	})
	if err != nil {
		c.fail("GetWorkerInfo", err)
		return nil
	}
	worker := mapWorker(resp)
	return &worker
}

// ListWorkers returns known compute workers, or an empty list on failure.
func (c *Client) ListWorkers() []core.WorkerInfo {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (listWorkersResponse, error) {
		var out listWorkersResponse
		return out, sess.GetJSON(ctx, "/api/v1/compute/workers", &out)
	})
	if err != nil {
		c.fail("ListWorkers", err)
		return []core.WorkerInfo{}
	}
	return mapWorkers(resp.Workers)
}

// --- Chat sessions ---

// CreateChatSession opens a chat session with a peer. Returns "" on failure.
func (c *Client) CreateChatSession(peerID string) string {
	resp, err := bridge.Call(c.bridge, c.calls.Mutation, func(ctx context.Context, sess *bridge.Session) (createChatSessionResponse, error) {
		var out createChatSessionResponse
		return out, sess.PostJSON(ctx, "/api/v1/chat/sessions", createChatSessionRequest{PeerID: peerID}, &out)
	})
	if err != nil {
		c.fail("CreateChatSession", err)
		return ""
	}
	return resp.SessionID
}

// SendChatMessage posts a message into a session. Returns false on failure.
func (c *Client) SendChatMessage(sessionID, text string) bool {
	_, err := bridge.Call(c.bridge, c.calls.Mutation, func(ctx context.Context, sess *bridge.Session) (struct{}, error) {
		return struct{}{}, sess.PostJSON(ctx, "/api/v1/chat/sessions/"+sessionID+"/messages", chatMessageRequest{Text: text}, nil)
	})
	if err != nil {
		c.fail("SendChatMessage", err)
		return false
	}
	return true
}

// GetChatHistory returns session messages, or an empty list on failure.
func (c *Client) GetChatHistory(sessionID string) []core.ChatMessage {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (chatHistoryResponse, error) {
		var out chatHistoryResponse
		return out, sess.GetJSON(ctx, "/api/v1/chat/sessions/"+sessionID+"/messages", &out)
	})
	if err != nil {
		c.fail("GetChatHistory", err)
		return []core.ChatMessage{}
	}
	return mapChatMessages(resp.Messages)
}

// CloseChatSession closes a session. Returns false on failure.
func (c *Client) CloseChatSession(sessionID string) bool {
	_, err := bridge.Call(c.bridge, c.calls.Mutation, func(ctx context.Context, sess *bridge.Session) (struct{}, error) {
		return struct{}{}, sess.Delete(ctx, "/api/v1/chat/sessions/"+sessionID)
	})
	if err != nil {
		c.fail("CloseChatSession", err)
		return false
	}
	return true
}

// ListChatSessions returns open sessions, or an empty list on failure.
func (c *Client) ListChatSessions() []core.ChatSessionInfo {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (listChatSessionsResponse, error) {
		var out listChatSessionsResponse
		return out, sess.GetJSON(ctx, "/api/v1/chat/sessions", &out)
	})
	if err != nil {
		c.fail("ListChatSessions", err)
		return []core.ChatSessionInfo{}
	}
	return mapChatSessions(resp.Sessions)
}

// --- Training control ---

// StartTraining launches a distributed training run. (false, "") on failure.
func (c *Client) StartTraining(modelName string, trainCfg map[string]string) (bool, string) {
	resp, err := bridge.Call(c.bridge, c.calls.Submit, func(ctx context.Context, sess *bridge.Session) (startTrainingResponse, error) {
		var out startTrainingResponse
		return out, sess.PostJSON(ctx, "/api/v1/training/runs", startTrainingRequest{ModelName: modelName, Config: trainCfg}, &out)
	})
	if err != nil {
		c.fail("StartTraining", err)
		return false, ""
	}
	return resp.Started, resp.RunID
}

// StopTraining stops a run. Returns false on failure.
func (c *Client) StopTraining(runID string) bool {
	_, err := bridge.Call(c.bridge, c.calls.Mutation, func(ctx context.Context, sess *bridge.Session) (struct{}, error) {
		return struct{}{}, sess.PostJSON(ctx, "/api/v1/training/runs/"+runID+"/stop", nil, nil)
	})
	if err != nil {
		c.fail("StopTraining", err)
		return false
	}
	return true
}

// GetTrainingStatus returns a run's state, or nil on failure.
func (c *Client) GetTrainingStatus(runID string) *core.TrainingStatusInfo {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (trainingStatusDTO, error) {
		var out trainingStatusDTO
		return out, sess.GetJSON(ctx, "/api/v1/training/runs/"+runID, &out)
	})
	if err != nil {
		c.fail("GetTrainingStatus", err)
		return nil
	}
	status := mapTrainingStatus(resp)
	return &status
}

// SubmitGradient uploads a gradient payload for a run. False on failure.
func (c *Client) SubmitGradient(runID string, payload []byte) bool {
	_, err := bridge.Call(c.bridge, c.calls.Submit, func(ctx context.Context, sess *bridge.Session) (struct{}, error) {
		return struct{}{}, sess.PostJSON(ctx, "/api/v1/training/runs/"+runID+"/gradient", submitGradientRequest{Payload: payload}, nil)
	})
	if err != nil {
		c.fail("SubmitGradient", err)
		return false
	}
	return true
}

// GetModelInfo returns a hosted model description, or nil on failure.
func (c *Client) GetModelInfo(name string) *core.ModelInfo {
	resp, err := bridge.Call(c.bridge, c.calls.Metadata, func(ctx context.Context, sess *bridge.Session) (modelInfoDTO, error) {
		var out modelInfoDTO
		return out, sess.GetJSON(ctx, "/api/v1/models/"+name, &out)
	})
	if err != nil {
		c.fail("GetModelInfo", err)
		return nil
	}
	info := mapModelInfo(resp)
	return &info
}
