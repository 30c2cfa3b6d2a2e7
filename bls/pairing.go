package bls

import (
	"errors"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// ErrIdentityPairingInput rejects pairing inputs at the identity. The Miller
// loop line functions are undefined there, and an identity aggregate key or
// signature never verifies anyway.
var ErrIdentityPairingInput = errors.New("pairing input is the identity")

// MillerLoopPairs runs the combined two-pair Miller loop for the aggregate
// equation e(aggKey, Hm) · e(G1, -sig) == 1. The signature is negated (one
// y-coordinate negation) so the two pairings fold into a single identity
// check after final exponentiation.
func MillerLoopPairs(aggKey G1Point, hm, sig G2Point) (bls12381.GT, error) {
	var zero bls12381.GT
	if aggKey.IsInfinity() || hm.IsInfinity() || sig.IsInfinity() {
		return zero, ErrIdentityPairingInput
	}
	negSig := sig.Neg()
	g1 := G1Generator()
	return bls12381.MillerLoop(
		[]bls12381.G1Affine{aggKey.Inner, g1.Inner},
		[]bls12381.G2Affine{hm.Inner, negSig.Inner},
	)
}

// FinalExpEasyPart raises a Miller loop output to (p⁶−1)(p²+1). Costs one
// inversion; everything else is conjugation and Frobenius.
func FinalExpEasyPart(f *bls12381.GT) bls12381.GT {
	var t, result bls12381.GT
	t.Conjugate(f)       // f^(p⁶)
	result.Inverse(f)    // f^(-1)
	t.Mul(&t, &result)   // f^(p⁶-1)
	result.FrobeniusSquare(&t)
	result.Mul(&result, &t) // f^((p⁶-1)(p²+1))
	return result
}

// FinalExpHardPart raises an easy-part output (a cyclotomic-subgroup element)
// to 3(p⁴−p²+1)/r, following Hayashida-Hayasaka-Teruya. The extra cofactor 3
// does not affect the identity test. Inversions are free in the cyclotomic
// subgroup (conjugation).
func FinalExpHardPart(m *bls12381.GT) bls12381.GT {
	var t0, t1, t2 bls12381.GT
	result := *m

	t0.CyclotomicSquare(&result)
	t1.ExptHalf(&t0)
	t2.InverseUnitary(&result)
	t1.Mul(&t1, &t2)

	t2.Expt(&t1)
	t1.InverseUnitary(&t1)
	t1.Mul(&t1, &t2)

	t2.Expt(&t1)
	t1.Frobenius(&t1)
	t1.Mul(&t1, &t2)

	result.Mul(&result, &t0)

	t0.Expt(&t1)
	t2.Expt(&t0)
	t0.FrobeniusSquare(&t1)
	t1.InverseUnitary(&t1)
	t1.Mul(&t1, &t2)
	t1.Mul(&t1, &t0)

	result.Mul(&result, &t1)
	return result
}

// FinalExp composes both halves of the final exponentiation.
func FinalExp(f *bls12381.GT) bls12381.GT {
	easy := FinalExpEasyPart(f)
	return FinalExpHardPart(&easy)
}

// IsGTOne reports whether z is the multiplicative identity of the degree-12
// extension, i.e. the pairing equation holds.
func IsGTOne(z *bls12381.GT) bool {
	return z.IsOne()
}
