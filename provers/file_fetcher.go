package prover

import (
	"github.com/kysee/zk-bls-stages/types"
)

// FileFetcher implements Fetcher by reading a local JSON input file
type FileFetcher struct {
	FilePath string
}

// NewFileFetcher creates a new FileFetcher with the given file path
func NewFileFetcher(filePath string) *FileFetcher {
	return &FileFetcher{
		FilePath: filePath,
	}
}

// Input reads and parses the verification input from the file
func (f *FileFetcher) Input() (*types.VerifyInput, error) {
	return types.LoadVerifyInput(f.FilePath)
}
