// Package service implements the transport-independent job lifecycle API.
// The job client presents one submit/status/result/cancel surface whether a
// job executes on the remote orchestrator or degrades to in-process local
// execution.
package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mkovacev/gridjob/internal/client/core"
	"github.com/mkovacev/gridjob/internal/client/metrics"
	"github.com/mkovacev/gridjob/internal/shared/logging"
	"github.com/mkovacev/gridjob/pkg/chunk"
	"github.com/mkovacev/gridjob/pkg/jobs"
)

var (
	// ErrUnknownJob is returned for job IDs this client never submitted.
	ErrUnknownJob = errors.New("unknown job")

	// ErrResultTimeout is returned when a result wait elapses before the
	// job reaches a terminal state.
	ErrResultTimeout = errors.New("timed out waiting for job result")
)

type jobClient struct {
	api          core.ComputeAPI
	pollInterval time.Duration
	logger       logging.Logger
	metrics      *metrics.ClientMetrics

	mu      sync.RWMutex
	records map[string]*core.JobRecord
}

// NewJobClient builds a job client on top of the RPC surface. Records for
// the same job ID are expected to be driven from a single controlling
// goroutine; concurrent lifecycle calls for one job require external
// coordination.
func NewJobClient(api core.ComputeAPI, pollInterval time.Duration, logger logging.Logger, m *metrics.ClientMetrics) core.JobService {
	return &jobClient{
		api:          api,
		pollInterval: pollInterval,
		logger:       logger,
		metrics:      m,
		records:      make(map[string]*core.JobRecord),
	}
}

// Submit computes the manifest and job ID locally first, so the ID is stable
// and known to the caller even if remote submission fails. On any remote
// failure the job runs synchronously in-process; the fallback is never
// silently skipped.
func (c *jobClient) Submit(def *jobs.Definition, input []byte, opts jobs.ManifestOptions) (string, error) {
	if def == nil {
		return "", fmt.Errorf("job definition is required")
	}
	if err := def.Validate(); err != nil {
		return "", err
	}

	manifest := jobs.NewManifest(def, input, opts)
	record := &core.JobRecord{
		Manifest:   manifest,
		Input:      input,
		Definition: def,
		Status:     core.JobStatusPending,
		StartedAt:  time.Now().UTC(),
	}

	c.mu.Lock()
	c.records[manifest.JobID] = record
	c.mu.Unlock()

	c.metrics.RecordSubmission()
	c.logger.Info("Submitting compute job", "job_id", manifest.JobID, "name", manifest.Name, "input_size", manifest.InputSize)

	accepted, errMsg := c.api.SubmitComputeJob(manifest, input)
	if accepted {
		c.setStatus(record, core.JobStatusAssigned)
		c.logger.Info("Job accepted by orchestrator", "job_id", manifest.JobID)
		return manifest.JobID, nil
	}

	c.logger.Warn("Remote submission failed, degrading to local execution",
		"job_id", manifest.JobID, "reason", errMsg)
	c.metrics.RecordLocalFallback()
	c.runLocal(record)

	return manifest.JobID, nil
}

// runLocal executes split, execute and merge synchronously, in chunk order.
// Results are bit-identical to remote execution of the same definition.
func (c *jobClient) runLocal(record *core.JobRecord) {
	c.mu.Lock()
	record.Status = core.JobStatusComputing
	record.Worker = core.WorkerLocal
	c.mu.Unlock()

	chunks, err := record.Definition.Split(record.Input)
	if err != nil {
		c.failLocal(record, fmt.Errorf("split: %w", err))
		return
	}

	results := make([][]byte, 0, len(chunks))
	for _, ch := range chunks {
		out, err := record.Definition.Execute(ch)
		if err != nil {
			c.failLocal(record, fmt.Errorf("execute chunk %d: %w", ch.Index, err))
			return
		}
		results = append(results, out)
	}

	if record.Manifest.VerificationMode {
		c.setStatus(record, core.JobStatusVerifying)
		ok, err := chunk.VerifyIntegrity(chunks, chunk.HashBytes(record.Input))
		if err != nil {
			c.failLocal(record, fmt.Errorf("verify: %w", err))
			return
		}
		if !ok {
			c.failLocal(record, fmt.Errorf("verify: chunk integrity check failed"))
			return
		}
	}

	merged, err := record.Definition.Merge(results)
	if err != nil {
		c.failLocal(record, fmt.Errorf("merge: %w", err))
		return
	}

	c.mu.Lock()
	record.Result = merged
	record.Status = core.JobStatusCompleted
	c.mu.Unlock()

	c.logger.Info("Job completed locally", "job_id", record.Manifest.JobID, "result_size", len(merged))
}

func (c *jobClient) failLocal(record *core.JobRecord, err error) {
	c.mu.Lock()
	record.Status = core.JobStatusFailed
	record.Error = err.Error()
	c.mu.Unlock()
	c.logger.Error("Local job execution failed", "job_id", record.Manifest.JobID, "error", err)
}

func (c *jobClient) setStatus(record *core.JobRecord, status core.JobStatus) {
	c.mu.Lock()
	record.Status = status
	c.mu.Unlock()
}

// Status queries the orchestrator first and falls back to a synthesized view
// of the local record. The degraded view is best-available, not
// authoritative: progress is 1.0 only for completed jobs and 0.5 otherwise.
func (c *jobClient) Status(jobID string) (*core.JobStatusInfo, error) {
	if remote := c.api.GetComputeJobStatus(jobID); remote != nil {
		return remote, nil
	}

	c.mu.RLock()
	record, exists := c.records[jobID]
	if !exists {
		c.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
	}
	status := record.Status
	worker := record.Worker
	message := record.Error
	c.mu.RUnlock()

	info := &core.JobStatusInfo{
		JobID:       jobID,
		Status:      status,
		Progress:    0.5,
		ChunksTotal: 1,
		Worker:      worker,
		Message:     message,
	}
	if status == core.JobStatusCompleted {
		info.Progress = 1.0
		info.ChunksCompleted = 1
	}
	return info, nil
}

// Result tries the remote result fetch first, then polls the local record
// until it reaches a terminal state or the timeout elapses. The returned
// worker label is exactly "local" when the fallback path executed.
func (c *jobClient) Result(jobID string, timeout time.Duration) ([]byte, string, error) {
	result, errMsg, worker := c.api.GetComputeJobResult(jobID, timeout)
	if errMsg == "" {
		return result, worker, nil
	}

	deadline := time.Now().Add(timeout)
	for {
		c.mu.RLock()
		record, exists := c.records[jobID]
		var status core.JobStatus
		var localResult []byte
		var localWorker, localErr string
		if exists {
			status = record.Status
			localResult = record.Result
			localWorker = record.Worker
			localErr = record.Error
		}
		c.mu.RUnlock()

		if !exists {
			return nil, "", fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
		}

		switch status {
		case core.JobStatusCompleted:
			return localResult, localWorker, nil
		case core.JobStatusFailed, core.JobStatusCancelled, core.JobStatusTimeout:
			return nil, "", fmt.Errorf("job %s %s: %s", jobID, strings.ToLower(string(status)), localErr)
		}

		if time.Now().After(deadline) {
			return nil, "", fmt.Errorf("%w: job %s after %s", ErrResultTimeout, jobID, timeout)
		}
		time.Sleep(c.pollInterval)
	}
}

// Cancel tries the remote cancel first. On remote failure the local record
// is set to CANCELLED unconditionally and true is returned. An in-flight
// synchronous local execution cannot be interrupted; cancellation takes
// effect on the record only.
func (c *jobClient) Cancel(jobID string) bool {
	if c.api.CancelComputeJob(jobID) {
		c.logger.Info("Job cancelled remotely", "job_id", jobID)
		return true
	}

	c.mu.Lock()
	if record, exists := c.records[jobID]; exists {
		record.Status = core.JobStatusCancelled
	}
	c.mu.Unlock()

	c.logger.Info("Job cancelled locally", "job_id", jobID)
	return true
}

// Cleanup drops the local record for a job.
func (c *jobClient) Cleanup(jobID string) {
	c.mu.Lock()
	delete(c.records, jobID)
	c.mu.Unlock()
}
