package bls

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// G1Point is an affine point of the compact curve group with an explicit
// point-at-infinity tag. The zero coordinate pair is a valid encoding only
// when Infinity is set; the group law dispatches on the tag instead of
// inferring infinity from coordinate values.
type G1Point struct {
	Inner    bls12381.G1Affine
	Infinity bool
}

// G2Point is an affine point of the extension-field (twist) curve group with
// an explicit point-at-infinity tag.
type G2Point struct {
	Inner    bls12381.G2Affine
	Infinity bool
}

func G1Infinity() G1Point {
	return G1Point{Infinity: true}
}

func G2Infinity() G2Point {
	return G2Point{Infinity: true}
}

// NewG1Point wraps an affine point, tagging the all-zero encoding used by
// gnark-crypto for the neutral element.
func NewG1Point(a bls12381.G1Affine) G1Point {
	if a.IsInfinity() {
		return G1Infinity()
	}
	return G1Point{Inner: a}
}

func NewG2Point(a bls12381.G2Affine) G2Point {
	if a.IsInfinity() {
		return G2Infinity()
	}
	return G2Point{Inner: a}
}

// G1Generator returns the fixed generator of the compact group.
func G1Generator() G1Point {
	_, _, g1, _ := bls12381.Generators()
	return G1Point{Inner: g1}
}

func G2Generator() G2Point {
	_, _, _, g2 := bls12381.Generators()
	return G2Point{Inner: g2}
}

func (p G1Point) IsInfinity() bool { return p.Infinity }

func (p G1Point) Add(q G1Point) G1Point {
	switch {
	case p.Infinity:
		return q
	case q.Infinity:
		return p
	}
	var sum bls12381.G1Affine
	sum.Add(&p.Inner, &q.Inner)
	return NewG1Point(sum)
}

func (p G1Point) Double() G1Point {
	if p.Infinity {
		return p
	}
	var d bls12381.G1Affine
	d.Add(&p.Inner, &p.Inner)
	return NewG1Point(d)
}

func (p G1Point) Neg() G1Point {
	if p.Infinity {
		return p
	}
	var n bls12381.G1Affine
	n.Neg(&p.Inner)
	return G1Point{Inner: n}
}

func (p G1Point) ScalarMul(s *big.Int) G1Point {
	if p.Infinity || s.Sign() == 0 {
		return G1Infinity()
	}
	var r bls12381.G1Affine
	r.ScalarMultiplication(&p.Inner, s)
	return NewG1Point(r)
}

func (p G1Point) Equal(q G1Point) bool {
	if p.Infinity || q.Infinity {
		return p.Infinity == q.Infinity
	}
	return p.Inner.Equal(&q.Inner)
}

func (p G1Point) IsOnCurve() bool {
	if p.Infinity {
		return true
	}
	return p.Inner.IsOnCurve()
}

// InSubgroup reports whether the point is on the curve and annihilated by the
// group order. The identity is a member by convention.
func (p G1Point) InSubgroup() bool {
	if p.Infinity {
		return true
	}
	return p.Inner.IsOnCurve() && p.Inner.IsInSubGroup()
}

func (p G2Point) IsInfinity() bool { return p.Infinity }

func (p G2Point) Add(q G2Point) G2Point {
	switch {
	case p.Infinity:
		return q
	case q.Infinity:
		return p
	}
	var sum bls12381.G2Affine
	sum.Add(&p.Inner, &q.Inner)
	return NewG2Point(sum)
}

func (p G2Point) Double() G2Point {
	if p.Infinity {
		return p
	}
	var d bls12381.G2Affine
	d.Add(&p.Inner, &p.Inner)
	return NewG2Point(d)
}

func (p G2Point) Neg() G2Point {
	if p.Infinity {
		return p
	}
	var n bls12381.G2Affine
	n.Neg(&p.Inner)
	return G2Point{Inner: n}
}

func (p G2Point) Sub(q G2Point) G2Point {
	return p.Add(q.Neg())
}

func (p G2Point) ScalarMul(s *big.Int) G2Point {
	if p.Infinity || s.Sign() == 0 {
		return G2Infinity()
	}
	var r bls12381.G2Affine
	r.ScalarMultiplication(&p.Inner, s)
	return NewG2Point(r)
}

func (p G2Point) Equal(q G2Point) bool {
	if p.Infinity || q.Infinity {
		return p.Infinity == q.Infinity
	}
	return p.Inner.Equal(&q.Inner)
}

func (p G2Point) IsOnCurve() bool {
	if p.Infinity {
		return true
	}
	return p.Inner.IsOnCurve()
}

func (p G2Point) InSubgroup() bool {
	if p.Infinity {
		return true
	}
	return p.Inner.IsOnCurve() && p.Inner.IsInSubGroup()
}
