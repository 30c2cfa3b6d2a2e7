package stages

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/kysee/zk-bls-stages/bls"
)

// StageCOutput carries the final exponentiation verdict. The record
// republishes only the Miller limbs the stage consumed; the verdict itself
// is the statement proven, not a record value.
type StageCOutput struct {
	Final    bls12381.GT
	Accepted bool
	Record   Record
}

// RunStageC reconstructs the unreduced pairing value from a stage B record,
// applies both halves of the final exponentiation and tests for the
// multiplicative identity.
func RunStageC(prev Record) (*StageCOutput, error) {
	if err := prev.CheckShape(StageB); err != nil {
		return nil, err
	}

	millerLimbs, err := prev.Slice(BOffMiller, bls.GTLimbs)
	if err != nil {
		return nil, err
	}
	miller, err := bls.GTFromLimbs(millerLimbs)
	if err != nil {
		return nil, err
	}

	easy := bls.FinalExpEasyPart(&miller)
	final := bls.FinalExpHardPart(&easy)

	return &StageCOutput{
		Final:    final,
		Accepted: bls.IsGTOne(&final),
		Record:   millerLimbs.Clone(),
	}, nil
}
