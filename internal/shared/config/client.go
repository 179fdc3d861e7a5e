package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig contains all configuration for the node client.
type ClientConfig struct {
	Node     NodeConfig     `mapstructure:"node"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	Calls    CallsConfig    `mapstructure:"calls"`
	Chunking ChunkingConfig `mapstructure:"chunking"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// NodeConfig identifies the remote node daemon.
type NodeConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// BridgeConfig contains connection bridge configuration.
type BridgeConfig struct {
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	LoopStartTimeout  time.Duration `mapstructure:"loop_start_timeout"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	JoinTimeout       time.Duration `mapstructure:"join_timeout"`
}

// CallsConfig contains per-latency-class RPC call timeouts.
type CallsConfig struct {
	Metadata time.Duration `mapstructure:"metadata"`
	Mutation time.Duration `mapstructure:"mutation"`
	Submit   time.Duration `mapstructure:"submit"`
}

// ChunkingConfig contains default splitting parameters for compute jobs.
type ChunkingConfig struct {
	Strategy     string `mapstructure:"strategy"`
	MinChunkSize int    `mapstructure:"min_chunk_size"`
	MaxChunkSize int    `mapstructure:"max_chunk_size"`
}

// JobsConfig contains compute-job submission defaults.
type JobsConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	TimeoutSecs  int           `mapstructure:"timeout_secs"`
	RetryCount   int           `mapstructure:"retry_count"`
	Priority     int           `mapstructure:"priority"`
	Redundancy   int           `mapstructure:"redundancy"`
}

// LoadClient loads the client configuration from the given path.
// If configPath is empty, it looks for client.yaml in the config/ directory.
// Environment variables with GRIDJOB_CLIENT_ prefix override config file values.
func LoadClient(configPath string) (*ClientConfig, error) {
	v := viper.New()

	v.SetDefault("node.host", "localhost")
	v.SetDefault("node.port", 8470)
	v.SetDefault("bridge.connect_timeout", 5*time.Second)
	v.SetDefault("bridge.loop_start_timeout", 100*time.Millisecond)
	v.SetDefault("bridge.heartbeat_interval", 15*time.Second)
	v.SetDefault("bridge.join_timeout", 3*time.Second)
	v.SetDefault("calls.metadata", 2*time.Second)
	v.SetDefault("calls.mutation", 5*time.Second)
	v.SetDefault("calls.submit", 30*time.Second)
	v.SetDefault("chunking.strategy", "adaptive")
	v.SetDefault("chunking.min_chunk_size", 4096)
	v.SetDefault("chunking.max_chunk_size", 1048576)
	v.SetDefault("jobs.poll_interval", 100*time.Millisecond)
	v.SetDefault("jobs.timeout_secs", 300)
	v.SetDefault("jobs.retry_count", 2)
	v.SetDefault("jobs.priority", 5)
	v.SetDefault("jobs.redundancy", 1)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("client")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("GRIDJOB_CLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
