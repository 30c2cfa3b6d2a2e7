package bls

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/stretchr/testify/require"
)

func TestFpLimbsRoundTrip(t *testing.T) {
	var values []fp.Element
	var e fp.Element

	values = append(values, e)                // zero
	values = append(values, *e.SetUint64(1))  // one
	values = append(values, *e.SetUint64(0x7fffffffffffff)) // one full limb
	pMinusOne := new(big.Int).Sub(fp.Modulus(), big.NewInt(1))
	values = append(values, *e.SetBigInt(pMinusOne))

	for _, v := range values {
		limbs := FpToLimbs(&v)
		require.Len(t, limbs, FpLimbs)
		for i, l := range limbs {
			require.True(t, l.Sign() >= 0 && l.BitLen() <= LimbBits, "limb %d out of range", i)
		}
		back, err := FpFromLimbs(limbs)
		require.NoError(t, err)
		require.True(t, back.Equal(&v))
	}
}

func TestFpFromLimbsRejectsMalformed(t *testing.T) {
	var one fp.Element
	one.SetOne()
	good := FpToLimbs(&one)

	_, err := FpFromLimbs(good[:FpLimbs-1])
	require.ErrorIs(t, err, ErrLimbCount)

	wide := append([]*big.Int{}, good...)
	wide[3] = new(big.Int).Lsh(big.NewInt(1), LimbBits)
	_, err = FpFromLimbs(wide)
	require.ErrorIs(t, err, ErrLimbRange)

	neg := append([]*big.Int{}, good...)
	neg[0] = big.NewInt(-1)
	_, err = FpFromLimbs(neg)
	require.ErrorIs(t, err, ErrLimbRange)

	nilLimb := append([]*big.Int{}, good...)
	nilLimb[5] = nil
	_, err = FpFromLimbs(nilLimb)
	require.ErrorIs(t, err, ErrLimbRange)

	// The modulus itself splits into in-range limbs but is not a canonical
	// field element.
	modLimbs := make([]*big.Int, FpLimbs)
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), LimbBits), big.NewInt(1))
	v := new(big.Int).Set(fp.Modulus())
	for i := 0; i < FpLimbs; i++ {
		modLimbs[i] = new(big.Int).And(v, mask)
		v.Rsh(v, LimbBits)
	}
	_, err = FpFromLimbs(modLimbs)
	require.ErrorIs(t, err, ErrNotCanonical)
}

func TestG1LimbsRoundTrip(t *testing.T) {
	p := G1Generator().ScalarMul(big.NewInt(0x5eed))
	limbs, err := p.ToLimbs()
	require.NoError(t, err)
	require.Len(t, limbs, G1Limbs)

	back, err := G1FromLimbs(limbs)
	require.NoError(t, err)
	require.True(t, back.Equal(p))

	_, err = G1Infinity().ToLimbs()
	require.Error(t, err)

	_, err = G1FromLimbs(limbs[:G1Limbs-1])
	require.ErrorIs(t, err, ErrLimbCount)

	// Bump y so the coordinates no longer satisfy the curve equation.
	tampered := append([]*big.Int{}, limbs...)
	tampered[FpLimbs] = new(big.Int).Add(tampered[FpLimbs], big.NewInt(1))
	_, err = G1FromLimbs(tampered)
	require.Error(t, err)
}

func TestG2LimbsRoundTrip(t *testing.T) {
	p := G2Generator().ScalarMul(big.NewInt(0xfeed))
	limbs, err := p.ToLimbs()
	require.NoError(t, err)
	require.Len(t, limbs, G2Limbs)

	back, err := G2FromLimbs(limbs)
	require.NoError(t, err)
	require.True(t, back.Equal(p))

	_, err = G2Infinity().ToLimbs()
	require.Error(t, err)

	tampered := append([]*big.Int{}, limbs...)
	tampered[0] = new(big.Int).Add(tampered[0], big.NewInt(1))
	_, err = G2FromLimbs(tampered)
	require.Error(t, err)
}

func TestGTLimbsRoundTrip(t *testing.T) {
	msg := [32]byte{1, 2, 3}
	hm, err := HashToPoint(msg)
	require.NoError(t, err)
	pk := G1Generator().ScalarMul(big.NewInt(41))
	sig := hm.ScalarMul(big.NewInt(41))

	z, err := MillerLoopPairs(pk, hm, sig)
	require.NoError(t, err)

	limbs := GTToLimbs(&z)
	require.Len(t, limbs, GTLimbs)

	back, err := GTFromLimbs(limbs)
	require.NoError(t, err)
	require.True(t, back.Equal(&z))

	// Tower order: the first coordinate group is C0.B0.A0.
	first, err := FpFromLimbs(limbs[:FpLimbs])
	require.NoError(t, err)
	require.True(t, first.Equal(&z.C0.B0.A0))

	_, err = GTFromLimbs(limbs[:GTLimbs-1])
	require.ErrorIs(t, err, ErrLimbCount)
}
