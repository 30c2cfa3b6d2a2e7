package stages

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/kysee/zk-bls-stages/bls"
)

// StageBOutput carries the unreduced Miller loop value and the record that
// republishes the stage A inputs alongside it.
type StageBOutput struct {
	Hm     bls.G2Point
	AggKey bls.G1Point
	Miller bls12381.GT
	Record Record
}

// RunStageB reconstructs the message point and aggregate key from a stage A
// record and runs the combined two-pair Miller loop against the aggregated
// signature. It trusts nothing about the record: limb ranges, curve and
// subgroup membership are all re-checked on decode.
func RunStageB(prev Record, sig bls.G2Point) (*StageBOutput, error) {
	if err := prev.CheckShape(StageA); err != nil {
		return nil, err
	}

	hmLimbs, err := prev.Slice(AOffHm, bls.G2Limbs)
	if err != nil {
		return nil, err
	}
	hm, err := bls.G2FromLimbs(hmLimbs)
	if err != nil {
		return nil, fmt.Errorf("decode message point: %w", err)
	}

	aggLimbs, err := prev.Slice(AOffAggKey, bls.G1Limbs)
	if err != nil {
		return nil, err
	}
	aggKey, err := bls.G1FromLimbs(aggLimbs)
	if err != nil {
		return nil, fmt.Errorf("decode aggregate key: %w", err)
	}

	if sig.IsInfinity() {
		return nil, fmt.Errorf("signature is the identity")
	}
	if !sig.InSubgroup() {
		return nil, fmt.Errorf("signature is not in the prime-order subgroup")
	}

	miller, err := bls.MillerLoopPairs(aggKey, hm, sig)
	if err != nil {
		return nil, fmt.Errorf("miller loop: %w", err)
	}

	rec := make(Record, 0, StageBRecordLen)
	rec = append(rec, prev[AOffHm:AOffHm+bls.G2Limbs].Clone()...)
	rec = append(rec, prev[AOffAggKey:AOffAggKey+bls.G1Limbs].Clone()...)
	rec = append(rec, bls.GTToLimbs(&miller)...)

	return &StageBOutput{
		Hm:     hm,
		AggKey: aggKey,
		Miller: miller,
		Record: rec,
	}, nil
}
