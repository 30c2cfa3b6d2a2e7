package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/kysee/zk-bls-stages/stages"
)

// CircuitFor returns a blank circuit of the given stage, used both for
// compilation and for shaping witnesses.
func CircuitFor(id stages.StageID) (frontend.Circuit, error) {
	switch id {
	case stages.StageA:
		return &StageACircuit{}, nil
	case stages.StageB:
		return &StageBCircuit{}, nil
	case stages.StageC:
		return &StageCCircuit{}, nil
	default:
		return nil, fmt.Errorf("unknown stage %d", int(id))
	}
}

// ArtifactName is the base file name of a stage's compiled circuit and keys
// under .build/.
func ArtifactName(id stages.StageID) (string, error) {
	switch id {
	case stages.StageA:
		return "StageACircuit", nil
	case stages.StageB:
		return "StageBCircuit", nil
	case stages.StageC:
		return "StageCCircuit", nil
	default:
		return "", fmt.Errorf("unknown stage %d", int(id))
	}
}
