package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/fields_bls12381"
	"github.com/consensys/gnark/std/algebra/emulated/sw_bls12381"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/uints"
)

// Public records carry BLS12-381 base-field elements as 7 limbs of 55 bits,
// little-endian limb order. The helpers here move between that encoding and
// emulated field elements inside the circuit.
const (
	LimbBits = 55
	FpLimbs  = 7
)

// recordLimbsToFp composes record limbs into an emulated base-field element.
// Each limb is range-checked to 55 bits; the bits above the 381-bit modulus
// width are forced to zero so the composed value is well-defined.
func recordLimbsToFp(
	api frontend.API,
	fp *emulated.Field[sw_bls12381.BaseField],
	limbs []frontend.Variable,
) (*emulated.Element[sw_bls12381.BaseField], error) {
	if len(limbs) != FpLimbs {
		return nil, fmt.Errorf("expected %d limbs, got %d", FpLimbs, len(limbs))
	}
	nbBits := emulated.BLS12381Fp{}.Modulus().BitLen()

	allBits := make([]frontend.Variable, 0, FpLimbs*LimbBits)
	for _, limb := range limbs {
		allBits = append(allBits, api.ToBinary(limb, LimbBits)...)
	}
	for i := nbBits; i < len(allBits); i++ {
		api.AssertIsEqual(allBits[i], 0)
	}
	return fp.FromBits(allBits[:nbBits]...), nil
}

// recordLimbsToE2 composes 14 record limbs into an emulated Fp2 element,
// A0 limbs first.
func recordLimbsToE2(
	api frontend.API,
	fp *emulated.Field[sw_bls12381.BaseField],
	limbs []frontend.Variable,
) (*fields_bls12381.E2, error) {
	if len(limbs) != 2*FpLimbs {
		return nil, fmt.Errorf("expected %d limbs, got %d", 2*FpLimbs, len(limbs))
	}
	a0, err := recordLimbsToFp(api, fp, limbs[:FpLimbs])
	if err != nil {
		return nil, err
	}
	a1, err := recordLimbsToFp(api, fp, limbs[FpLimbs:])
	if err != nil {
		return nil, err
	}
	return &fields_bls12381.E2{A0: *a0, A1: *a1}, nil
}

// bindFpToLimbs constrains the record limbs to equal the canonical limb
// decomposition of el. Using the canonical bits rules out a second limb
// encoding of the same residue.
func bindFpToLimbs(
	api frontend.API,
	fp *emulated.Field[sw_bls12381.BaseField],
	el *emulated.Element[sw_bls12381.BaseField],
	limbs []frontend.Variable,
) error {
	if len(limbs) != FpLimbs {
		return fmt.Errorf("expected %d limbs, got %d", FpLimbs, len(limbs))
	}
	elBits := fp.ToBitsCanonical(el)
	for i := 0; i < FpLimbs; i++ {
		var limb frontend.Variable = 0
		for j := 0; j < LimbBits; j++ {
			idx := i*LimbBits + j
			if idx >= len(elBits) {
				break
			}
			power := int64(1) << j
			limb = api.Add(limb, api.Mul(elBits[idx], power))
		}
		api.AssertIsEqual(limb, limbs[i])
	}
	return nil
}

// bindE2ToLimbs binds both coordinates of an Fp2 element, A0 limbs first.
func bindE2ToLimbs(
	api frontend.API,
	fp *emulated.Field[sw_bls12381.BaseField],
	el *fields_bls12381.E2,
	limbs []frontend.Variable,
) error {
	if len(limbs) != 2*FpLimbs {
		return fmt.Errorf("expected %d limbs, got %d", 2*FpLimbs, len(limbs))
	}
	if err := bindFpToLimbs(api, fp, &el.A0, limbs[:FpLimbs]); err != nil {
		return err
	}
	return bindFpToLimbs(api, fp, &el.A1, limbs[FpLimbs:])
}

// fpToBytesBE serializes an emulated base-field element as 48 big-endian
// bytes, the encoding hashed into the committee commitment.
func fpToBytesBE(
	api frontend.API,
	fp *emulated.Field[sw_bls12381.BaseField],
	el *emulated.Element[sw_bls12381.BaseField],
) [48]uints.U8 {
	elBits := fp.ToBitsCanonical(el)

	var out [48]uints.U8
	for byteIdx := 0; byteIdx < 48; byteIdx++ {
		var byteValue frontend.Variable = 0
		for bitIdx := 0; bitIdx < 8; bitIdx++ {
			idx := (47-byteIdx)*8 + bitIdx
			if idx >= len(elBits) {
				continue
			}
			power := 1 << bitIdx
			byteValue = api.Add(byteValue, api.Mul(elBits[idx], power))
		}
		out[byteIdx] = uints.U8{Val: byteValue}
	}
	return out
}
