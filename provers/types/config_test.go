package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	// A bare invocation carries only the program name.
	config := NewConfig("provers/cmd")
	require.Equal(t, ".", config.RootDir)
	require.Equal(t, "output", config.OutputDir)
	require.Equal(t, uint64(8), config.CommitteeSize)
}

func TestNewConfigFlags(t *testing.T) {
	config := NewConfig("provers/cmd",
		"--root", "/tmp/work",
		"--input", "in.json",
		"--committee-size", "16",
	)
	require.Equal(t, "/tmp/work", config.RootDir)
	require.Equal(t, "in.json", config.InputPath)
	require.Equal(t, uint64(16), config.CommitteeSize)

	// Unrecognized trailing arguments are ignored, not fatal.
	config = NewConfig("provers/cmd", "--output", "proofs", "extra")
	require.Equal(t, "proofs", config.OutputDir)
}

func TestNewConfigMissingFlagValue(t *testing.T) {
	require.Panics(t, func() {
		NewConfig("provers/cmd", "--root")
	})
}
