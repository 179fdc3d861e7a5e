package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovacev/gridjob/internal/client/api"
	"github.com/mkovacev/gridjob/internal/client/apitest"
	"github.com/mkovacev/gridjob/internal/client/bridge"
	"github.com/mkovacev/gridjob/internal/shared/config"
	"github.com/mkovacev/gridjob/internal/shared/logging"
	"github.com/mkovacev/gridjob/pkg/jobs"
)

func newStack(t *testing.T) (*apitest.Server, *bridge.Bridge, *api.Client) {
	t.Helper()
	stub := apitest.NewServer()
	t.Cleanup(stub.Close)

	b := bridge.New(config.BridgeConfig{
		ConnectTimeout:    time.Second,
		LoopStartTimeout:  100 * time.Millisecond,
		HeartbeatInterval: time.Second,
		JoinTimeout:       time.Second,
	}, logging.NopLogger{})

	calls := config.CallsConfig{
		Metadata: time.Second,
		Mutation: time.Second,
		Submit:   2 * time.Second,
	}
	return stub, b, api.NewClient(b, calls, logging.NopLogger{}, nil)
}

func TestIntegration_RemoteExecution(t *testing.T) {
	stub, b, client := newStack(t)

	host, port := stub.HostPort()
	require.True(t, b.Connect(host, port))
	defer b.Disconnect()

	jobClient := NewJobClient(client, 10*time.Millisecond, logging.NopLogger{}, nil)

	input := []byte("remote execution payload")
	jobID, err := jobClient.Submit(jobs.NewDefinition("identity-remote"), input, jobs.DefaultManifestOptions())
	require.NoError(t, err)

	assert.Contains(t, stub.SubmittedJobIDs(), jobID)

	result, worker, err := jobClient.Result(jobID, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, input, result)
	assert.Equal(t, "stub-worker-1", worker, "remote path must report the orchestrator worker")
}

func TestIntegration_DisconnectedFallsBackToLocal(t *testing.T) {
	stub, b, client := newStack(t)

	jobClient := NewJobClient(client, 10*time.Millisecond, logging.NopLogger{}, nil)

	input := []byte("local execution payload")
	jobID, err := jobClient.Submit(jobs.NewDefinition("identity-local"), input, jobs.DefaultManifestOptions())
	require.NoError(t, err)
	require.False(t, b.IsConnected())

	result, worker, err := jobClient.Result(jobID, time.Second)
	require.NoError(t, err)
	assert.Equal(t, input, result)
	assert.Equal(t, "local", worker)

	assert.Empty(t, stub.SubmittedJobIDs(), "nothing must reach the orchestrator while disconnected")
}

func TestIntegration_OrchestratorRejectionFallsBack(t *testing.T) {
	stub, b, client := newStack(t)
	stub.SetRejectJobs(true)

	host, port := stub.HostPort()
	require.True(t, b.Connect(host, port))
	defer b.Disconnect()

	jobClient := NewJobClient(client, 10*time.Millisecond, logging.NopLogger{}, nil)

	input := []byte("rejected payload")
	jobID, err := jobClient.Submit(jobs.NewDefinition("identity-rejected"), input, jobs.DefaultManifestOptions())
	require.NoError(t, err)

	result, worker, err := jobClient.Result(jobID, time.Second)
	require.NoError(t, err)
	assert.Equal(t, input, result)
	assert.Equal(t, "local", worker, "explicit rejection must degrade to local execution")
}
