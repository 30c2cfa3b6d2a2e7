package bls

import (
	"errors"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/hash_to_curve"
)

// DomainSeparationTag is the ETH2 DST for hashing signing roots to the
// extension-field group (RFC 9380, XMD:SHA-256 SSWU RO POP suite).
const DomainSeparationTag = "BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_"

// seedAbs is |x₀| where x₀ = -0xd201000000010000 is the BLS12-381 seed.
var seedAbs = new(big.Int).SetUint64(0xd201000000010000)

// Untwist-Frobenius-twist endomorphism constants.
var (
	psiU1 = fpFromDecimal("4002409555221667392624310435006688643935503118305586438271171395842971157480381377015405980053539358417135540939437")
	psi2W = fpFromDecimal("4002409555221667392624310435006688643935503118305586438271171395842971157480381377015405980053539358417135540939436")
	psiV  = bls12381.E2{
		A0: fpFromDecimal("2973677408986561043442465346520108879172042883009249989176415018091420807192182638567116318576472649347015917690530"),
		A1: fpFromDecimal("1028732146235106349975324479215795277384839936929757896155643118032610843298655225875571310552543014690878354869257"),
	}
)

// Simplified-SWU parameters of the 3-isogenous curve.
var (
	sswuCoeffA, sswuCoeffB = hash_to_curve.G2SSWUIsogenyCurveCoefficients()
	sswuZ                  = hash_to_curve.G2SSWUIsogenyZ()
	isogenyMap             = hash_to_curve.G2IsogenyMap()
)

func fpFromDecimal(s string) fp.Element {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid field constant: " + s)
	}
	var e fp.Element
	e.SetBigInt(n)
	return e
}

// IsogenousPoint is an affine point on the 3-isogenous curve that the SWU map
// targets. It only exists between the map and the isogeny evaluation.
type IsogenousPoint struct {
	X, Y bls12381.E2
}

// HashToFieldElements derives the two extension-field elements fed to the two
// independent SWU maps (RFC 9380 hash_to_field with m=2, count=2: one
// expand_message_xmd call reduced into four base-field elements).
func HashToFieldElements(msg, dst []byte) ([2]bls12381.E2, error) {
	var u [2]bls12381.E2
	elems, err := fp.Hash(msg, dst, 4)
	if err != nil {
		return u, err
	}
	u[0] = bls12381.E2{A0: elems[0], A1: elems[1]}
	u[1] = bls12381.E2{A0: elems[2], A1: elems[3]}
	return u, nil
}

// sgn0 implements the RFC 9380 sign function for m=2:
// sgn0(x) = sign(x_0) OR (x_0 == 0 AND sign(x_1)).
func sgn0(z *bls12381.E2) uint {
	if z.A0.IsZero() {
		return z.A1.BigInt(new(big.Int)).Bit(0)
	}
	return z.A0.BigInt(new(big.Int)).Bit(0)
}

// MapToIsogenousCurve is the simplified SWU map onto the isogenous curve
// (RFC 9380 §6.6.2). The map is total: every field element yields a finite
// point.
func MapToIsogenousCurve(u *bls12381.E2) IsogenousPoint {
	var tv1, tv2, tv3, tv4, tv5, tv6, x, y, y1 bls12381.E2

	// tv1 = Z * u²
	tv1.Square(u)
	tv1.Mul(&sswuZ, &tv1)
	// tv2 = tv1² + tv1
	tv2.Square(&tv1)
	tv2.Add(&tv2, &tv1)
	// tv3 = B * (tv2 + 1)
	tv3.SetOne()
	tv3.Add(&tv2, &tv3)
	tv3.Mul(&sswuCoeffB, &tv3)
	// tv4 = A * CMOV(Z, -tv2, tv2 != 0)
	if tv2.IsZero() {
		tv4.Set(&sswuZ)
	} else {
		tv4.Neg(&tv2)
	}
	tv4.Mul(&sswuCoeffA, &tv4)
	// tv2 = (tv3² + A·tv4²) * tv3
	tv2.Square(&tv3)
	tv6.Square(&tv4)
	tv5.Mul(&sswuCoeffA, &tv6)
	tv2.Add(&tv2, &tv5)
	tv2.Mul(&tv2, &tv3)
	// tv6 = tv4³ ; tv2 += B·tv6
	tv6.Mul(&tv6, &tv4)
	tv5.Mul(&sswuCoeffB, &tv6)
	tv2.Add(&tv2, &tv5)
	// x = tv1 * tv3
	x.Mul(&tv1, &tv3)
	// (is_gx1_square, y1) = sqrt_ratio(tv2, tv6)
	isQNr := hash_to_curve.G2SqrtRatio(&y1, &tv2, &tv6)
	// y = tv1 * u * y1
	y.Mul(&tv1, u)
	y.Mul(&y, &y1)
	if isQNr == 0 {
		x.Set(&tv3)
		y.Set(&y1)
	}
	if sgn0(u) != sgn0(&y) {
		y.Neg(&y)
	}
	// x = x / tv4
	var inv bls12381.E2
	inv.Inverse(&tv4)
	x.Mul(&x, &inv)

	return IsogenousPoint{X: x, Y: y}
}

func evalIsogenyPolynomial(monic bool, coefficients []bls12381.E2, x *bls12381.E2) bls12381.E2 {
	var res bls12381.E2
	res.Set(&coefficients[len(coefficients)-1])
	if monic {
		res.Add(&res, x)
	}
	for i := len(coefficients) - 2; i >= 0; i-- {
		res.Mul(&res, x)
		res.Add(&res, &coefficients[i])
	}
	return res
}

// ApplyIsogeny evaluates the fixed 3-isogeny moving a point from the
// isogenous curve onto the twist.
func ApplyIsogeny(p IsogenousPoint) G2Point {
	xNum := evalIsogenyPolynomial(false, isogenyMap[0], &p.X)
	xDen := evalIsogenyPolynomial(true, isogenyMap[1], &p.X)
	yNum := evalIsogenyPolynomial(false, isogenyMap[2], &p.X)
	yDen := evalIsogenyPolynomial(true, isogenyMap[3], &p.X)

	var x, y, inv bls12381.E2
	inv.Inverse(&xDen)
	x.Mul(&xNum, &inv)
	inv.Inverse(&yDen)
	y.Mul(&yNum, &inv)
	y.Mul(&y, &p.Y)

	var out bls12381.G2Affine
	out.X = x
	out.Y = y
	return G2Point{Inner: out}
}

// psi is the untwist-Frobenius-twist endomorphism ψ. On the prime-order
// subgroup it acts as multiplication by the seed.
func psi(p G2Point) G2Point {
	if p.Infinity {
		return p
	}
	var x, y bls12381.E2
	x.MulByElement(&p.Inner.X, &psiU1)
	x.A0, x.A1 = x.A1, x.A0
	y.Conjugate(&p.Inner.Y)
	y.Mul(&y, &psiV)

	var out bls12381.G2Affine
	out.X = x
	out.Y = y
	return G2Point{Inner: out}
}

// psi2 is ψ∘ψ, which reduces to an x-coordinate scaling and a y negation.
func psi2(p G2Point) G2Point {
	if p.Infinity {
		return p
	}
	var x, y bls12381.E2
	x.MulByElement(&p.Inner.X, &psi2W)
	y.Neg(&p.Inner.Y)

	var out bls12381.G2Affine
	out.X = x
	out.Y = y
	return G2Point{Inner: out}
}

func mulBySeed(p G2Point) G2Point {
	return p.ScalarMul(seedAbs).Neg()
}

// CofactorState carries the intermediate points between the two halves of
// cofactor clearing so a memory-bounded pipeline can split the work. Each
// half performs exactly one seed scalar multiplication.
type CofactorState struct {
	P, T1, T2, T3 G2Point
}

// ClearCofactorFirstHalf runs the first half of the endomorphism-based
// cofactor clearing (RFC 9380 fast clearing for the BLS12-381 twist).
func ClearCofactorFirstHalf(p G2Point) CofactorState {
	t1 := mulBySeed(p)
	t2 := psi(p)
	t3 := psi2(p.Double())
	t3 = t3.Sub(t2)
	return CofactorState{P: p, T1: t1, T2: t2, T3: t3}
}

// ClearCofactorSecondHalf finishes cofactor clearing from a first-half state.
func ClearCofactorSecondHalf(s CofactorState) G2Point {
	t2 := mulBySeed(s.T1.Add(s.T2))
	t3 := s.T3.Add(t2)
	t3 = t3.Sub(s.T1)
	return t3.Sub(s.P)
}

func clearCofactor(p G2Point) G2Point {
	return ClearCofactorSecondHalf(ClearCofactorFirstHalf(p))
}

// HashToPoint deterministically maps a 32-byte message into the prime-order
// subgroup of the extension-field group using the ETH2 DST. The result is
// never the identity; the theoretical case where the two SWU images cancel
// is surfaced as an error instead of an invalid point.
func HashToPoint(msg [32]byte) (G2Point, error) {
	u, err := HashToFieldElements(msg[:], []byte(DomainSeparationTag))
	if err != nil {
		return G2Point{}, err
	}
	q0 := ApplyIsogeny(MapToIsogenousCurve(&u[0]))
	q1 := ApplyIsogeny(MapToIsogenousCurve(&u[1]))
	r := q0.Add(q1)
	out := clearCofactor(r)
	if out.IsInfinity() {
		return G2Point{}, errors.New("hash-to-curve produced the identity")
	}
	return out, nil
}
