package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/fields_bls12381"
	"github.com/consensys/gnark/std/algebra/emulated/sw_bls12381"
	"github.com/consensys/gnark/std/algebra/emulated/sw_emulated"
	"github.com/consensys/gnark/std/math/emulated"

	"github.com/kysee/zk-bls-stages/stages"
)

// StageBCircuit proves the middle stage: the Miller loop. It reconstructs
// the message point and the aggregate key from the public record published
// by the previous stage, checks the private aggregated signature, and binds
// the unreduced two-pair Miller loop output to the record.
//
// The pairing equation e(aggKey, Hm) · e(G1, -sig) == 1 is split here at the
// Miller/final-exponentiation boundary: this circuit computes the product of
// the two Miller loops with the signature negated; the next stage applies
// the final exponentiation.
type StageBCircuit struct {
	// Aggregated signature (private input)
	Signature sw_bls12381.G2Affine

	// Public record: message point (28) ‖ aggregate key (14) ‖ Miller output (84)
	Record [stages.StageBRecordLen]frontend.Variable `gnark:",public"`
}

func (c *StageBCircuit) Define(api frontend.API) error {
	fp, err := emulated.NewField[sw_bls12381.BaseField](api)
	if err != nil {
		return fmt.Errorf("new emulated field: %w", err)
	}
	pairing, err := sw_bls12381.NewPairing(api)
	if err != nil {
		return fmt.Errorf("failed to create pairing: %w", err)
	}
	curve, err := sw_emulated.New[sw_bls12381.BaseField, sw_bls12381.ScalarField](api, sw_emulated.GetBLS12381Params())
	if err != nil {
		return fmt.Errorf("failed to create curve: %w", err)
	}
	ext2 := fields_bls12381.NewExt2(api)

	// Reconstruct the message point from the record
	var hm sw_bls12381.G2Affine
	hmX, err := recordLimbsToE2(api, fp, c.Record[stages.BOffHm:stages.BOffHm+2*FpLimbs])
	if err != nil {
		return fmt.Errorf("decode message point x: %w", err)
	}
	hmY, err := recordLimbsToE2(api, fp, c.Record[stages.BOffHm+2*FpLimbs:stages.BOffAggKey])
	if err != nil {
		return fmt.Errorf("decode message point y: %w", err)
	}
	hm.P.X = *hmX
	hm.P.Y = *hmY

	// Reconstruct the aggregate key from the record
	aggX, err := recordLimbsToFp(api, fp, c.Record[stages.BOffAggKey:stages.BOffAggKey+FpLimbs])
	if err != nil {
		return fmt.Errorf("decode aggregate key x: %w", err)
	}
	aggY, err := recordLimbsToFp(api, fp, c.Record[stages.BOffAggKey+FpLimbs:stages.BOffMiller])
	if err != nil {
		return fmt.Errorf("decode aggregate key y: %w", err)
	}
	aggKey := sw_bls12381.G1Affine{X: *aggX, Y: *aggY}

	// Record values are adversarial until proven otherwise
	pairing.AssertIsOnG1(&aggKey)
	pairing.AssertIsOnG2(&hm)
	pairing.AssertIsOnG2(&c.Signature)

	// Negate the signature so both pairings fold into one identity check
	var negSig sw_bls12381.G2Affine
	negSig.P.X = c.Signature.P.X
	negSig.P.Y = *ext2.Neg(&c.Signature.P.Y)

	g1Gen := curve.Generator()

	miller, err := pairing.MillerLoop(
		[]*sw_bls12381.G1Affine{&aggKey, g1Gen},
		[]*sw_bls12381.G2Affine{&hm, &negSig},
	)
	if err != nil {
		return fmt.Errorf("miller loop failed: %w", err)
	}

	// Bind the 12 tower coordinates of the Miller output to the record
	tower := pairing.ToTower(miller)
	for i := 0; i < 12; i++ {
		off := stages.BOffMiller + i*FpLimbs
		if err := bindFpToLimbs(api, fp, tower[i], c.Record[off:off+FpLimbs]); err != nil {
			return fmt.Errorf("bind miller coordinate %d: %w", i, err)
		}
	}

	return nil
}
