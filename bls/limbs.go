package bls

import (
	"errors"
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
)

// Public records carry base-field elements as fixed-width limb vectors so the
// layout is bit-exact across stages and proving systems. A field element is
// K little-endian limbs of N bits each; 7×55 = 385 bits covers the 381-bit
// modulus with headroom.
const (
	LimbBits = 55
	FpLimbs  = 7

	G1Limbs = 2 * FpLimbs  // affine x, y
	G2Limbs = 4 * FpLimbs  // x.A0, x.A1, y.A0, y.A1
	GTLimbs = 12 * FpLimbs // tower order C0.B0.A0 .. C1.B2.A1
)

var (
	ErrLimbCount    = errors.New("wrong number of limbs")
	ErrLimbRange    = errors.New("limb out of range")
	ErrNotCanonical = errors.New("limb vector exceeds the field modulus")

	limbBound = new(big.Int).Lsh(big.NewInt(1), LimbBits)
)

// FpToLimbs encodes a base-field element as FpLimbs little-endian 55-bit
// limbs. Limbs are freshly allocated.
func FpToLimbs(e *fp.Element) []*big.Int {
	v := e.BigInt(new(big.Int))
	mask := new(big.Int).Sub(limbBound, big.NewInt(1))
	limbs := make([]*big.Int, FpLimbs)
	for i := 0; i < FpLimbs; i++ {
		limbs[i] = new(big.Int).And(v, mask)
		v.Rsh(v, LimbBits)
	}
	return limbs
}

// FpFromLimbs decodes a limb vector, enforcing limb width and canonical
// (below-modulus) value. Records from untrusted sources go through here.
func FpFromLimbs(limbs []*big.Int) (fp.Element, error) {
	var e fp.Element
	if len(limbs) != FpLimbs {
		return e, fmt.Errorf("%w: got %d, want %d", ErrLimbCount, len(limbs), FpLimbs)
	}
	v := new(big.Int)
	for i := FpLimbs - 1; i >= 0; i-- {
		if limbs[i] == nil || limbs[i].Sign() < 0 || limbs[i].Cmp(limbBound) >= 0 {
			return e, fmt.Errorf("%w: limb %d", ErrLimbRange, i)
		}
		v.Lsh(v, LimbBits)
		v.Add(v, limbs[i])
	}
	if v.Cmp(fp.Modulus()) >= 0 {
		return e, ErrNotCanonical
	}
	e.SetBigInt(v)
	return e, nil
}

// E2ToLimbs encodes A0 then A1.
func E2ToLimbs(e *bls12381.E2) []*big.Int {
	return append(FpToLimbs(&e.A0), FpToLimbs(&e.A1)...)
}

func E2FromLimbs(limbs []*big.Int) (bls12381.E2, error) {
	var e bls12381.E2
	if len(limbs) != 2*FpLimbs {
		return e, fmt.Errorf("%w: got %d, want %d", ErrLimbCount, len(limbs), 2*FpLimbs)
	}
	a0, err := FpFromLimbs(limbs[:FpLimbs])
	if err != nil {
		return e, fmt.Errorf("a0: %w", err)
	}
	a1, err := FpFromLimbs(limbs[FpLimbs:])
	if err != nil {
		return e, fmt.Errorf("a1: %w", err)
	}
	e.A0, e.A1 = a0, a1
	return e, nil
}

// ToLimbs encodes an affine point as x ‖ y. The identity has no affine
// coordinates and is rejected; records never carry it.
func (p G1Point) ToLimbs() ([]*big.Int, error) {
	if p.Infinity {
		return nil, errors.New("cannot encode the identity as limbs")
	}
	return append(FpToLimbs(&p.Inner.X), FpToLimbs(&p.Inner.Y)...), nil
}

// G1FromLimbs decodes x ‖ y and checks curve and subgroup membership.
func G1FromLimbs(limbs []*big.Int) (G1Point, error) {
	if len(limbs) != G1Limbs {
		return G1Point{}, fmt.Errorf("%w: got %d, want %d", ErrLimbCount, len(limbs), G1Limbs)
	}
	x, err := FpFromLimbs(limbs[:FpLimbs])
	if err != nil {
		return G1Point{}, fmt.Errorf("x: %w", err)
	}
	y, err := FpFromLimbs(limbs[FpLimbs:])
	if err != nil {
		return G1Point{}, fmt.Errorf("y: %w", err)
	}
	var a bls12381.G1Affine
	a.X, a.Y = x, y
	p := G1Point{Inner: a}
	if !p.InSubgroup() {
		return G1Point{}, errors.New("point is not in the prime-order subgroup")
	}
	return p, nil
}

func (p G2Point) ToLimbs() ([]*big.Int, error) {
	if p.Infinity {
		return nil, errors.New("cannot encode the identity as limbs")
	}
	limbs := E2ToLimbs(&p.Inner.X)
	return append(limbs, E2ToLimbs(&p.Inner.Y)...), nil
}

func G2FromLimbs(limbs []*big.Int) (G2Point, error) {
	if len(limbs) != G2Limbs {
		return G2Point{}, fmt.Errorf("%w: got %d, want %d", ErrLimbCount, len(limbs), G2Limbs)
	}
	x, err := E2FromLimbs(limbs[:2*FpLimbs])
	if err != nil {
		return G2Point{}, fmt.Errorf("x: %w", err)
	}
	y, err := E2FromLimbs(limbs[2*FpLimbs:])
	if err != nil {
		return G2Point{}, fmt.Errorf("y: %w", err)
	}
	var a bls12381.G2Affine
	a.X, a.Y = x, y
	p := G2Point{Inner: a}
	if !p.InSubgroup() {
		return G2Point{}, errors.New("point is not in the prime-order subgroup")
	}
	return p, nil
}

// gtCoords flattens a degree-12 element in tower order.
func gtCoords(z *bls12381.GT) []*fp.Element {
	return []*fp.Element{
		&z.C0.B0.A0, &z.C0.B0.A1,
		&z.C0.B1.A0, &z.C0.B1.A1,
		&z.C0.B2.A0, &z.C0.B2.A1,
		&z.C1.B0.A0, &z.C1.B0.A1,
		&z.C1.B1.A0, &z.C1.B1.A1,
		&z.C1.B2.A0, &z.C1.B2.A1,
	}
}

// GTToLimbs encodes a degree-12 element in tower order, 84 limbs.
func GTToLimbs(z *bls12381.GT) []*big.Int {
	limbs := make([]*big.Int, 0, GTLimbs)
	for _, c := range gtCoords(z) {
		limbs = append(limbs, FpToLimbs(c)...)
	}
	return limbs
}

func GTFromLimbs(limbs []*big.Int) (bls12381.GT, error) {
	var z bls12381.GT
	if len(limbs) != GTLimbs {
		return z, fmt.Errorf("%w: got %d, want %d", ErrLimbCount, len(limbs), GTLimbs)
	}
	for i, c := range gtCoords(&z) {
		e, err := FpFromLimbs(limbs[i*FpLimbs : (i+1)*FpLimbs])
		if err != nil {
			return z, fmt.Errorf("coordinate %d: %w", i, err)
		}
		*c = e
	}
	return z, nil
}
