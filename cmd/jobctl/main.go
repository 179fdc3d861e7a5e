package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mkovacev/gridjob/internal/client/api"
	"github.com/mkovacev/gridjob/internal/client/bridge"
	"github.com/mkovacev/gridjob/internal/client/metrics"
	"github.com/mkovacev/gridjob/internal/client/service"
	"github.com/mkovacev/gridjob/internal/shared/config"
	"github.com/mkovacev/gridjob/internal/shared/logging"
	"github.com/mkovacev/gridjob/pkg/jobs"

	_ "github.com/mkovacev/gridjob/examples/identity"
	_ "github.com/mkovacev/gridjob/examples/upper"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to client config file")
		jobName    = flag.String("job", "", "registered job to run (e.g., identity, upper)")
		input      = flag.String("input", "", "input files glob pattern")
		output     = flag.String("output", "", "output file path")
		timeout    = flag.Duration("timeout", 5*time.Minute, "how long to wait for the job result")
		verify     = flag.Bool("verify", false, "enable chunk integrity verification")
	)
	flag.Parse()

	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	if *jobName == "" {
		logger.Fatal("Job must be specified with -job", "available", jobs.List())
	}
	if *input == "" {
		logger.Fatal("Input pattern must be specified with -input")
	}
	if *output == "" {
		logger.Fatal("Output file must be specified with -output")
	}

	def, err := jobs.Get(*jobName)
	if err != nil {
		logger.Fatal("Unknown job", "job", *jobName, "available", jobs.List())
	}

	payload, err := readInput(*input)
	if err != nil {
		logger.Fatal("Failed to read input", "pattern", *input, "error", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	b := bridge.New(cfg.Bridge, logger)
	if !b.Connect(cfg.Node.Host, cfg.Node.Port) {
		logger.Warn("Node unreachable, jobs will run through the local fallback",
			"host", cfg.Node.Host, "port", cfg.Node.Port)
	}
	defer b.Disconnect()

	client := api.NewClient(b, cfg.Calls, logger, m)
	jobClient := service.NewJobClient(client, cfg.Jobs.PollInterval, logger, m)

	opts := jobs.ManifestOptions{
		SplitStrategy:    jobs.SplitStrategy(cfg.Chunking.Strategy),
		MinChunkSize:     cfg.Chunking.MinChunkSize,
		MaxChunkSize:     cfg.Chunking.MaxChunkSize,
		VerificationMode: *verify,
		TimeoutSecs:      cfg.Jobs.TimeoutSecs,
		RetryCount:       cfg.Jobs.RetryCount,
		Priority:         cfg.Jobs.Priority,
		Redundancy:       cfg.Jobs.Redundancy,
	}

	jobID, err := jobClient.Submit(def, payload, opts)
	if err != nil {
		logger.Fatal("Submission failed", "error", err)
	}
	logger.Info("Job submitted", "job_id", jobID, "input_size", len(payload))

	result, worker, err := jobClient.Result(jobID, *timeout)
	if err != nil {
		logger.Fatal("Job failed", "job_id", jobID, "error", err)
	}
	logger.Info("Job completed", "job_id", jobID, "worker", worker, "result_size", len(result))

	if err := os.WriteFile(*output, result, 0o644); err != nil {
		logger.Fatal("Failed to write output", "path", *output, "error", err)
	}
}

// readInput concatenates all regular files matching the glob pattern, in
// glob order.
func readInput(pattern string) ([]byte, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, err
	}

	var payload []byte
	for _, name := range matches {
		info, err := os.Lstat(name)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		payload = append(payload, data...)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("no input files matched %s", pattern)
	}
	return payload, nil
}
