package types

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the prover configuration
type Config struct {
	// RootDir is where compiled circuits and keys live (under .build/)
	RootDir string

	// InputPath is the verification input JSON file
	InputPath string
	// InputURL is used instead of InputPath when fetching over HTTP
	InputURL string

	// OutputDir receives the proof bundle
	OutputDir string

	// CommitteeSize is the expected validator count
	CommitteeSize uint64
}

func NewConfig(args ...string) *Config {
	// Parse configuration from environment variables or command line args
	config := Config{
		RootDir:       getEnv("ROOT", "."),
		InputPath:     getEnv("INPUT", "input/test_8_validators.json"),
		InputURL:      getEnv("INPUT_URL", ""),
		OutputDir:     getEnv("OUTPUT", "output"),
		CommitteeSize: 8,
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--root", "--input", "--input-url", "--output", "--committee-size":
			if len(args) <= i+1 {
				panic(fmt.Errorf("missing argument for %s", args[i]))
			}
		default:
			continue
		}

		switch args[i] {
		case "--root":
			config.RootDir = args[i+1]
		case "--input":
			config.InputPath = args[i+1]
		case "--input-url":
			config.InputURL = args[i+1]
		case "--output":
			config.OutputDir = args[i+1]
		case "--committee-size":
			config.CommitteeSize, _ = strconv.ParseUint(args[i+1], 10, 64)
		}
		i++
	}

	return &config
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
