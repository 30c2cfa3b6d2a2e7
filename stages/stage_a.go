package stages

import (
	"fmt"
	"math/big"

	"github.com/kysee/zk-bls-stages/bls"
	"github.com/kysee/zk-bls-stages/types"
)

// StageAOutput carries the native values mirrored by the stage A public
// record: the hashed message point, the aggregate key, the participant
// count and the committee commitment.
type StageAOutput struct {
	Hm         bls.G2Point
	AggKey     bls.G1Point
	Count      int
	Commitment *big.Int
	Record     Record
}

// RunStageA hashes the message to the extension-field group and aggregates
// the participating public keys. Both results are published as limbs so the
// next stage can be proven against them without re-running this one.
func RunStageA(msg [32]byte, committee *types.Committee) (*StageAOutput, error) {
	hm, err := bls.HashToPoint(msg)
	if err != nil {
		return nil, fmt.Errorf("hash to curve: %w", err)
	}

	aggKey, count, err := committee.Aggregate()
	if err != nil {
		return nil, fmt.Errorf("aggregate committee: %w", err)
	}
	if aggKey.IsInfinity() {
		// Participating keys cancelled out. The aggregate has no affine
		// encoding and could never verify, so fail here.
		return nil, fmt.Errorf("aggregate public key is the identity")
	}

	hmLimbs, err := hm.ToLimbs()
	if err != nil {
		return nil, fmt.Errorf("encode message point: %w", err)
	}
	aggLimbs, err := aggKey.ToLimbs()
	if err != nil {
		return nil, fmt.Errorf("encode aggregate key: %w", err)
	}

	rec := make(Record, 0, StageARecordLen)
	rec = append(rec, hmLimbs...)
	rec = append(rec, aggLimbs...)
	rec = append(rec, big.NewInt(int64(count)))
	rec = append(rec, committee.CommitmentValue())

	return &StageAOutput{
		Hm:         hm,
		AggKey:     aggKey,
		Count:      count,
		Commitment: rec[AOffCommitment],
		Record:     rec,
	}, nil
}
