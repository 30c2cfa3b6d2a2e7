package bls

import (
	"crypto/sha256"
	"math/big"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/stretchr/testify/require"
)

// signTest produces a keypair and a signature over msg: pk = sk·G1,
// sig = sk·HashToPoint(msg).
func signTest(t *testing.T, sk *big.Int, msg [32]byte) (G1Point, G2Point) {
	t.Helper()
	hm, err := HashToPoint(msg)
	require.NoError(t, err)
	return G1Generator().ScalarMul(sk), hm.ScalarMul(sk)
}

func TestPairingEquationHolds(t *testing.T) {
	sk := big.NewInt(0x2f09d3a55ef)
	msg := sha256.Sum256([]byte("signing root"))
	pk, sig := signTest(t, sk, msg)

	hm, err := HashToPoint(msg)
	require.NoError(t, err)

	miller, err := MillerLoopPairs(pk, hm, sig)
	require.NoError(t, err)

	final := FinalExp(&miller)
	require.True(t, IsGTOne(&final), "valid signature must satisfy the pairing equation")
}

func TestPairingMatchesReferenceCheck(t *testing.T) {
	sk := big.NewInt(0x11b3c7)
	msg := sha256.Sum256([]byte("differential"))
	pk, sig := signTest(t, sk, msg)

	cases := []struct {
		name string
		hmOf [32]byte
	}{
		{"same message", msg},
		{"other message", sha256.Sum256([]byte("not the signed root"))},
	}
	for _, tc := range cases {
		hm, err := HashToPoint(tc.hmOf)
		require.NoError(t, err)

		miller, err := MillerLoopPairs(pk, hm, sig)
		require.NoError(t, err)
		final := FinalExp(&miller)

		g1Neg := G1Generator().Neg()
		want, err := bls12381.PairingCheck(
			[]bls12381.G1Affine{pk.Inner, g1Neg.Inner},
			[]bls12381.G2Affine{hm.Inner, sig.Inner},
		)
		require.NoError(t, err)
		require.Equal(t, want, IsGTOne(&final), "%s: verdict diverges from reference pairing check", tc.name)
	}
}

func TestPairingRejectsWrongKey(t *testing.T) {
	msg := sha256.Sum256([]byte("root"))
	_, sig := signTest(t, big.NewInt(7919), msg)
	otherPk, _ := signTest(t, big.NewInt(104729), msg)

	hm, err := HashToPoint(msg)
	require.NoError(t, err)

	miller, err := MillerLoopPairs(otherPk, hm, sig)
	require.NoError(t, err)
	final := FinalExp(&miller)
	require.False(t, IsGTOne(&final))
}

func TestPairingRejectsIdentityInputs(t *testing.T) {
	msg := sha256.Sum256([]byte("identity"))
	pk, sig := signTest(t, big.NewInt(65537), msg)
	hm, err := HashToPoint(msg)
	require.NoError(t, err)

	_, err = MillerLoopPairs(G1Infinity(), hm, sig)
	require.ErrorIs(t, err, ErrIdentityPairingInput)
	_, err = MillerLoopPairs(pk, G2Infinity(), sig)
	require.ErrorIs(t, err, ErrIdentityPairingInput)
	_, err = MillerLoopPairs(pk, hm, G2Infinity())
	require.ErrorIs(t, err, ErrIdentityPairingInput)
}

func TestFinalExpHalvesComposeToIdentityTest(t *testing.T) {
	sk := big.NewInt(0xdeadbf)
	msg := sha256.Sum256([]byte("split final exp"))
	pk, sig := signTest(t, sk, msg)
	hm, err := HashToPoint(msg)
	require.NoError(t, err)

	miller, err := MillerLoopPairs(pk, hm, sig)
	require.NoError(t, err)
	require.False(t, IsGTOne(&miller), "Miller output alone must not already be reduced")

	easy := FinalExpEasyPart(&miller)
	final := FinalExpHardPart(&easy)
	require.True(t, IsGTOne(&final))
}
