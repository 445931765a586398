package core

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"zktransfer/pkg/crypto"
	"zktransfer/pkg/state"
)

// Environment variables read by LoadFromEnv
const (
	EnvTreeDepth      = "ROLLUP_TREE_DEPTH"
	EnvBatchSize      = "ROLLUP_BATCH_SIZE"
	EnvAllocationMode = "ROLLUP_ALLOCATION_MODE"
	EnvProvingKey     = "ROLLUP_PROVING_KEY"
	EnvVerifyingKey   = "ROLLUP_VERIFYING_KEY"
	EnvLogLevel       = "ROLLUP_LOG_LEVEL"
)

type Config struct {
	// Rollup configuration
	BatchSize int

	// ZK-SNARK configuration
	ProvingKeyFile   string
	VerifyingKeyFile string
	MerkleTreeDepth  int
	AllocationMode   string

	LogLevel string
}

func DefaultConfig() *Config {
	return &Config{
		BatchSize:        1,
		ProvingKeyFile:   "transfer.pk",
		VerifyingKeyFile: "transfer.vk",
		MerkleTreeDepth:  state.DefaultTreeDepth,
		AllocationMode:   crypto.Witness.String(),
		LogLevel:         zerolog.InfoLevel.String(),
	}
}

// LoadFromEnv overrides the config with the ROLLUP_* environment variables that are set and
// validates the result.
func (c *Config) LoadFromEnv() error {
	if err := c.LoadEnv(); err != nil {
		return err
	}
	return c.Validate()
}

// LoadEnv overrides the config with the ROLLUP_* environment variables that are set. Values
// are only parsed; callers applying further overrides validate afterwards.
func (c *Config) LoadEnv() error {
	if v := os.Getenv(EnvTreeDepth); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", EnvTreeDepth, err)
		}
		c.MerkleTreeDepth = depth
	}
	if v := os.Getenv(EnvBatchSize); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", EnvBatchSize, err)
		}
		c.BatchSize = size
	}
	if v := os.Getenv(EnvAllocationMode); v != "" {
		c.AllocationMode = v
	}
	if v := os.Getenv(EnvProvingKey); v != "" {
		c.ProvingKeyFile = v
	}
	if v := os.Getenv(EnvVerifyingKey); v != "" {
		c.VerifyingKeyFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks that every field can be turned into its runtime form.
func (c *Config) Validate() error {
	if _, err := c.Parameters(); err != nil {
		return err
	}
	mode, err := c.Mode()
	if err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	// batch circuits always allocate their transactions as witnesses
	if c.BatchSize > 1 && mode != crypto.Witness {
		return fmt.Errorf("%s mode is not available for batches of %d transfers", mode, c.BatchSize)
	}
	return nil
}

// Parameters returns the ledger parameters for the configured tree depth.
func (c *Config) Parameters() (state.Parameters, error) {
	params := state.NewParameters(c.MerkleTreeDepth)
	if err := params.Validate(); err != nil {
		return state.Parameters{}, err
	}
	return params, nil
}

// Mode returns the configured allocation mode of the transaction.
func (c *Config) Mode() (crypto.AllocationMode, error) {
	return crypto.ParseAllocationMode(c.AllocationMode)
}

// Level returns the configured log level.
func (c *Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
