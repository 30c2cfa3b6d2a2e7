package types

import (
	"github.com/kysee/zk-bls-stages/types"
)

// Fetcher retrieves a verification input (message, committee, aggregated
// signature) from wherever it lives.
type Fetcher interface {
	Input() (*types.VerifyInput, error)
}
