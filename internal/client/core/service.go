package core

import (
	"time"

	"github.com/mkovacev/gridjob/pkg/jobs"
)

// ComputeAPI is the subset of the node RPC surface the job client depends
// on. Implementations never return errors; each call reports failure through
// its documented sentinel value instead.
type ComputeAPI interface {
	SubmitComputeJob(manifest jobs.Manifest, input []byte) (bool, string)
	GetComputeJobStatus(jobID string) *JobStatusInfo
	GetComputeJobResult(jobID string, timeout time.Duration) ([]byte, string, string)
	CancelComputeJob(jobID string) bool
}

// JobService is the transport-independent job lifecycle API.
type JobService interface {
	Submit(def *jobs.Definition, input []byte, opts jobs.ManifestOptions) (string, error)
	Status(jobID string) (*JobStatusInfo, error)
	Result(jobID string, timeout time.Duration) ([]byte, string, error)
	Cancel(jobID string) bool
	Cleanup(jobID string)
}
