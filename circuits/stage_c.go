package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_bls12381"
	"github.com/consensys/gnark/std/math/emulated"

	"github.com/kysee/zk-bls-stages/stages"
)

// StageCCircuit proves the last stage: the reconstructed Miller loop output
// raised to the final exponent is the multiplicative identity, i.e. the
// pairing equation holds. The record republishes only the consumed input;
// a valid proof is the verdict.
type StageCCircuit struct {
	// Public record: Miller output (84 limbs, tower order)
	Record [stages.StageCRecordLen]frontend.Variable `gnark:",public"`
}

func (c *StageCCircuit) Define(api frontend.API) error {
	fp, err := emulated.NewField[sw_bls12381.BaseField](api)
	if err != nil {
		return fmt.Errorf("new emulated field: %w", err)
	}
	pairing, err := sw_bls12381.NewPairing(api)
	if err != nil {
		return fmt.Errorf("failed to create pairing: %w", err)
	}

	var tower [12]*emulated.Element[sw_bls12381.BaseField]
	for i := 0; i < 12; i++ {
		off := stages.COffMiller + i*FpLimbs
		el, err := recordLimbsToFp(api, fp, c.Record[off:off+FpLimbs])
		if err != nil {
			return fmt.Errorf("decode miller coordinate %d: %w", i, err)
		}
		tower[i] = el
	}

	miller := pairing.FromTower(tower)
	final := pairing.FinalExponentiation(miller)
	pairing.AssertIsEqual(final, pairing.Ext12.One())

	return nil
}
