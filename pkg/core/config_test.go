package core

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zktransfer/pkg/crypto"
	"zktransfer/pkg/state"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())

	params, err := config.Parameters()
	require.NoError(t, err)
	assert.Equal(t, state.DefaultParameters(), params)

	mode, err := config.Mode()
	require.NoError(t, err)
	assert.Equal(t, crypto.Witness, mode)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvTreeDepth, "8")
	t.Setenv(EnvBatchSize, "4")
	t.Setenv(EnvAllocationMode, "public")
	t.Setenv(EnvProvingKey, "/tmp/batch.pk")
	t.Setenv(EnvLogLevel, "debug")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, 8, config.MerkleTreeDepth)
	assert.Equal(t, 4, config.BatchSize)
	assert.Equal(t, "/tmp/batch.pk", config.ProvingKeyFile)
	assert.Equal(t, "transfer.vk", config.VerifyingKeyFile)

	mode, err := config.Mode()
	require.NoError(t, err)
	assert.Equal(t, crypto.PublicInput, mode)
	level, err := config.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)
}

func TestLoadFromEnvInvalid(t *testing.T) {
	tests := map[string][2]string{
		"depth not a number": {EnvTreeDepth, "deep"},
		"depth too large":    {EnvTreeDepth, "33"},
		"batch size":         {EnvBatchSize, "0"},
		"mode":               {EnvAllocationMode, "secret"},
		"log level":          {EnvLogLevel, "loud"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env[0], env[1])
			assert.Error(t, DefaultConfig().LoadFromEnv())
		})
	}
}

func TestTreeDepthError(t *testing.T) {
	config := DefaultConfig()
	config.MerkleTreeDepth = 0
	_, err := config.Parameters()
	assert.ErrorIs(t, err, state.ErrInvalidParameters)
}

func TestLoadEnvDefersValidation(t *testing.T) {
	t.Setenv(EnvTreeDepth, "99")

	config := DefaultConfig()
	require.NoError(t, config.LoadEnv())
	assert.Equal(t, 99, config.MerkleTreeDepth)
	assert.Error(t, config.Validate())

	// a later override fixes the value before validation
	config.MerkleTreeDepth = 8
	assert.NoError(t, config.Validate())
}

func TestBatchRequiresWitnessMode(t *testing.T) {
	config := DefaultConfig()
	config.BatchSize = 2
	require.NoError(t, config.Validate())

	for _, mode := range []crypto.AllocationMode{crypto.Constant, crypto.PublicInput} {
		config.AllocationMode = mode.String()
		assert.Error(t, config.Validate(), mode.String())
	}

	// single transfers accept every mode
	config.BatchSize = 1
	assert.NoError(t, config.Validate())
}
