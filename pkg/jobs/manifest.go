package jobs

import (
	"crypto/sha256"
	"encoding/hex"
)

// SplitStrategy names the chunking strategy recorded in a manifest.
type SplitStrategy string

const (
	SplitStrategyFixed    SplitStrategy = "fixed"
	SplitStrategyLine     SplitStrategy = "line"
	SplitStrategyRecord   SplitStrategy = "record"
	SplitStrategyAdaptive SplitStrategy = "adaptive"
)

// jobIDPrefixSize is how many leading input bytes participate in the job
// identifier digest.
const jobIDPrefixSize = 1024

// Manifest is the wire-shaped view of a job definition bound to concrete
// input bytes and submission options. The listed fields round-trip exactly
// through JSON and YAML when persisted or logged.
type Manifest struct {
	JobID            string        `json:"jobId" yaml:"jobId"`
	Name             string        `json:"name" yaml:"name"`
	SplitStrategy    SplitStrategy `json:"splitStrategy" yaml:"splitStrategy"`
	MinChunkSize     int           `json:"minChunkSize" yaml:"minChunkSize"`
	MaxChunkSize     int           `json:"maxChunkSize" yaml:"maxChunkSize"`
	VerificationMode bool          `json:"verificationMode" yaml:"verificationMode"`
	TimeoutSecs      int           `json:"timeoutSecs" yaml:"timeoutSecs"`
	RetryCount       int           `json:"retryCount" yaml:"retryCount"`
	Priority         int           `json:"priority" yaml:"priority"`
	Redundancy       int           `json:"redundancy" yaml:"redundancy"`

	InputSize int               `json:"inputSize" yaml:"inputSize"`
	Metadata  map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ManifestOptions parameterize a submission.
type ManifestOptions struct {
	SplitStrategy    SplitStrategy
	MinChunkSize     int
	MaxChunkSize     int
	VerificationMode bool
	TimeoutSecs      int
	RetryCount       int
	Priority         int
	Redundancy       int
}

// DefaultManifestOptions returns the submission defaults used when the
// caller does not override them.
func DefaultManifestOptions() ManifestOptions {
	return ManifestOptions{
		SplitStrategy:    SplitStrategyAdaptive,
		MinChunkSize:     4096,
		MaxChunkSize:     1 << 20,
		VerificationMode: false,
		TimeoutSecs:      300,
		RetryCount:       2,
		Priority:         5,
		Redundancy:       1,
	}
}

// JobID derives the deterministic job identifier: the first 16 hex characters
// of SHA-256(name ‖ first 1024 bytes of input). Identical (name, input-prefix)
// pairs intentionally collide so resubmission is idempotent.
func JobID(name string, input []byte) string {
	prefix := input
	if len(prefix) > jobIDPrefixSize {
		prefix = prefix[:jobIDPrefixSize]
	}

	h := sha256.New()
	h.Write([]byte(name))
	h.Write(prefix)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// NewManifest binds a validated definition and input payload to submission
// options, deriving the job identifier.
func NewManifest(def *Definition, input []byte, opts ManifestOptions) Manifest {
	return Manifest{
		JobID:            JobID(def.Name(), input),
		Name:             def.Name(),
		SplitStrategy:    opts.SplitStrategy,
		MinChunkSize:     opts.MinChunkSize,
		MaxChunkSize:     opts.MaxChunkSize,
		VerificationMode: opts.VerificationMode,
		TimeoutSecs:      opts.TimeoutSecs,
		RetryCount:       opts.RetryCount,
		Priority:         opts.Priority,
		Redundancy:       opts.Redundancy,
		InputSize:        len(input),
		Metadata:         def.Metadata(),
	}
}
