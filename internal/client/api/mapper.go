package api

import (
	"github.com/mkovacev/gridjob/internal/client/core"
)

func mapNode(dto nodeDTO) core.NodeInfo {
	return core.NodeInfo{
		ID:          dto.ID,
		Address:     dto.Address,
		Version:     dto.Version,
		Online:      dto.Online,
		ThreatScore: dto.ThreatScore,
		LastSeen:    dto.LastSeen,
	}
}

func mapNodes(dtos []nodeDTO) []core.NodeInfo {
	nodes := make([]core.NodeInfo, 0, len(dtos))
	for _, dto := range dtos {
		nodes = append(nodes, mapNode(dto))
	}
	return nodes
}

func mapNodeStats(dto nodeStatsDTO) core.NodeStats {
	return core.NodeStats{
		NodeID:        dto.NodeID,
		CPUPercent:    dto.CPUPercent,
		MemoryBytes:   dto.MemoryBytes,
		PeerCount:     dto.PeerCount,
		ActiveJobs:    dto.ActiveJobs,
		UptimeSeconds: dto.UptimeSeconds,
		BytesSent:     dto.BytesSent,
		BytesReceived: dto.BytesReceived,
	}
}

func mapPeer(dto peerDTO) core.PeerInfo {
	return core.PeerInfo{
		ID:        dto.ID,
		Address:   dto.Address,
		Direction: dto.Direction,
		LatencyMs: dto.LatencyMs,
		Connected: dto.Connected,
	}
}

func mapPeers(dtos []peerDTO) []core.PeerInfo {
	peers := make([]core.PeerInfo, 0, len(dtos))
	for _, dto := range dtos {
		peers = append(peers, mapPeer(dto))
	}
	return peers
}

func mapDHTRecord(dto dhtRecordDTO) core.DHTRecord {
	return core.DHTRecord{
		Key:       dto.Key,
		Value:     dto.Value,
		Publisher: dto.Publisher,
		ExpiresAt: dto.ExpiresAt,
	}
}

func mapStream(dto streamDTO) core.StreamInfo {
	return core.StreamInfo{
		ID:        dto.ID,
		PeerID:    dto.PeerID,
		Kind:      dto.Kind,
		Quality:   dto.Quality,
		Active:    dto.Active,
		StartedAt: dto.StartedAt,
	}
}

func mapStreams(dtos []streamDTO) []core.StreamInfo {
	streams := make([]core.StreamInfo, 0, len(dtos))
	for _, dto := range dtos {
		streams = append(streams, mapStream(dto))
	}
	return streams
}

func mapJobStatus(dto jobStatusDTO) core.JobStatusInfo {
	return core.JobStatusInfo{
		JobID:           dto.JobID,
		Status:          core.JobStatus(dto.Status),
		Progress:        dto.Progress,
		ChunksCompleted: dto.ChunksCompleted,
		ChunksTotal:     dto.ChunksTotal,
		Worker:          dto.Worker,
		Message:         dto.Message,
	}
}

func mapJobSummaries(dtos []jobSummaryDTO) []core.ComputeJobSummary {
	summaries := make([]core.ComputeJobSummary, 0, len(dtos))
	for _, dto := range dtos {
		summaries = append(summaries, core.ComputeJobSummary{
			JobID:       dto.JobID,
			Name:        dto.Name,
			Status:      core.JobStatus(dto.Status),
			SubmittedAt: dto.SubmittedAt,
		})
	}
	return summaries
}

func mapWorker(dto workerDTO) core.WorkerInfo {
	return core.WorkerInfo{
		ID:         dto.ID,
		Address:    dto.Address,
		CPUCores:   dto.CPUCores,
		MemBytes:   dto.MemBytes,
		ActiveJobs: dto.ActiveJobs,
		Reputation: dto.Reputation,
	}
}

func mapWorkers(dtos []workerDTO) []core.WorkerInfo {
	workers := make([]core.WorkerInfo, 0, len(dtos))
	for _, dto := range dtos {
		workers = append(workers, mapWorker(dto))
	}
	return workers
}

func mapChatMessages(dtos []chatMessageDTO) []core.ChatMessage {
	messages := make([]core.ChatMessage, 0, len(dtos))
	for _, dto := range dtos {
		messages = append(messages, core.ChatMessage{
			SessionID: dto.SessionID,
			Sender:    dto.Sender,
			Text:      dto.Text,
			SentAt:    dto.SentAt,
		})
	}
	return messages
}

func mapChatSessions(dtos []chatSessionDTO) []core.ChatSessionInfo {
	sessions := make([]core.ChatSessionInfo, 0, len(dtos))
	for _, dto := range dtos {
		sessions = append(sessions, core.ChatSessionInfo{
			ID:        dto.ID,
			PeerID:    dto.PeerID,
			CreatedAt: dto.CreatedAt,
			Messages:  dto.Messages,
		})
	}
	return sessions
}

func mapTrainingStatus(dto trainingStatusDTO) core.TrainingStatusInfo {
	return core.TrainingStatusInfo{
		RunID:     dto.RunID,
		ModelName: dto.ModelName,
		Round:     dto.Round,
		Loss:      dto.Loss,
		Running:   dto.Running,
		Peers:     dto.Peers,
	}
}

func mapModelInfo(dto modelInfoDTO) core.ModelInfo {
	return core.ModelInfo{
		Name:       dto.Name,
		Version:    dto.Version,
		SizeBytes:  dto.SizeBytes,
		Parameters: dto.Parameters,
		UpdatedAt:  dto.UpdatedAt,
	}
}
