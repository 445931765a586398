package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"zktransfer/pkg/core"
)

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv(core.EnvTreeDepth, "99")

	rootCmd.SetArgs([]string{"keygen"})
	require.Error(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"keygen", "--depth", "8"})
	require.NoError(t, rootCmd.Execute())
	require.Equal(t, 8, config.MerkleTreeDepth)
}

func TestBatchRejectsConstantMode(t *testing.T) {
	rootCmd.SetArgs([]string{"keygen", "--batch", "2", "--mode", "constant"})
	require.Error(t, rootCmd.Execute())
}
