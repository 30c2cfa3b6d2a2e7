package prover

import (
	"fmt"

	"github.com/consensys/gnark/std/algebra/emulated/sw_bls12381"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/kysee/zk-bls-stages/bls"
	circuit "github.com/kysee/zk-bls-stages/circuits"
	"github.com/kysee/zk-bls-stages/stages"
	"github.com/kysee/zk-bls-stages/types"
)

// StageAAssignment builds the full witness for the first stage circuit from
// the native inputs and the published record.
func StageAAssignment(msg [32]byte, committee *types.Committee, rec stages.Record) (*circuit.StageACircuit, error) {
	if err := rec.CheckShape(stages.StageA); err != nil {
		return nil, err
	}
	if len(committee.PubKeys) != circuit.CommitteeSize {
		return nil, fmt.Errorf("committee size %d does not match circuit size %d",
			len(committee.PubKeys), circuit.CommitteeSize)
	}

	w := &circuit.StageACircuit{}
	for i := 0; i < circuit.CommitteeSize; i++ {
		if committee.PubKeys[i].IsInfinity() {
			return nil, fmt.Errorf("pubkey %d is the identity", i)
		}
		w.PubKeys[i] = sw_bls12381.NewG1Affine(committee.PubKeys[i].Inner)
		if committee.Bits[i] {
			w.Bits[i] = 1
		} else {
			w.Bits[i] = 0
		}
	}
	for i := 0; i < 32; i++ {
		w.Message[i] = uints.NewU8(msg[i])
	}
	for i, v := range rec {
		w.Record[i] = v
	}
	return w, nil
}

// StageBAssignment builds the witness for the Miller loop circuit: the
// private aggregated signature plus the published record.
func StageBAssignment(sig bls.G2Point, rec stages.Record) (*circuit.StageBCircuit, error) {
	if err := rec.CheckShape(stages.StageB); err != nil {
		return nil, err
	}
	if sig.IsInfinity() {
		return nil, fmt.Errorf("signature is the identity")
	}

	w := &circuit.StageBCircuit{
		Signature: sw_bls12381.NewG2Affine(sig.Inner),
	}
	for i, v := range rec {
		w.Record[i] = v
	}
	return w, nil
}

// StageCAssignment builds the witness for the final exponentiation circuit.
// The record is its only input.
func StageCAssignment(rec stages.Record) (*circuit.StageCCircuit, error) {
	if err := rec.CheckShape(stages.StageC); err != nil {
		return nil, err
	}
	w := &circuit.StageCCircuit{}
	for i, v := range rec {
		w.Record[i] = v
	}
	return w, nil
}
