package bls

import (
	"crypto/sha256"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/stretchr/testify/require"
)

func TestHashToPointMatchesReference(t *testing.T) {
	messages := [][32]byte{
		sha256.Sum256([]byte("sync committee test vector 0")),
		sha256.Sum256([]byte("sync committee test vector 1")),
		sha256.Sum256([]byte{}),
		{}, // all-zero root
	}

	for _, msg := range messages {
		want, err := bls12381.HashToG2(msg[:], []byte(DomainSeparationTag))
		require.NoError(t, err)

		got, err := HashToPoint(msg)
		require.NoError(t, err)
		require.False(t, got.IsInfinity())
		require.True(t, got.InSubgroup())
		require.True(t, got.Inner.Equal(&want), "hash-to-curve output diverges from reference")
	}
}

func TestHashToPointDeterministic(t *testing.T) {
	msg := sha256.Sum256([]byte("determinism"))

	p1, err := HashToPoint(msg)
	require.NoError(t, err)
	p2, err := HashToPoint(msg)
	require.NoError(t, err)
	require.True(t, p1.Equal(p2))

	other := sha256.Sum256([]byte("a different message"))
	p3, err := HashToPoint(other)
	require.NoError(t, err)
	require.False(t, p1.Equal(p3))
}

func TestSgn0(t *testing.T) {
	var z bls12381.E2
	require.Equal(t, uint(0), sgn0(&z))

	z.A0.SetUint64(2)
	require.Equal(t, uint(0), sgn0(&z))
	z.A0.SetUint64(3)
	require.Equal(t, uint(1), sgn0(&z))

	// A0 == 0 falls through to A1's parity.
	z.A0.SetZero()
	z.A1.SetUint64(5)
	require.Equal(t, uint(1), sgn0(&z))
	z.A1.SetUint64(4)
	require.Equal(t, uint(0), sgn0(&z))
}

func TestIsogenyLandsOnCurve(t *testing.T) {
	msg := sha256.Sum256([]byte("isogeny"))
	u, err := HashToFieldElements(msg[:], []byte(DomainSeparationTag))
	require.NoError(t, err)

	for i := range u {
		q := ApplyIsogeny(MapToIsogenousCurve(&u[i]))
		require.False(t, q.IsInfinity())
		require.True(t, q.IsOnCurve(), "isogeny output %d is off the curve", i)
	}
}

func TestClearCofactorHalvesCompose(t *testing.T) {
	msg := sha256.Sum256([]byte("cofactor"))
	u, err := HashToFieldElements(msg[:], []byte(DomainSeparationTag))
	require.NoError(t, err)

	q := ApplyIsogeny(MapToIsogenousCurve(&u[0]))
	require.False(t, q.InSubgroup(), "pre-clearing point should not be in the subgroup")

	var want bls12381.G2Affine
	want.ClearCofactor(&q.Inner)

	split := ClearCofactorSecondHalf(ClearCofactorFirstHalf(q))
	require.True(t, split.InSubgroup())
	require.True(t, split.Inner.Equal(&want), "split cofactor clearing diverges from reference")
}

func TestClearCofactorIsAdditive(t *testing.T) {
	msg := sha256.Sum256([]byte("additivity"))
	u, err := HashToFieldElements(msg[:], []byte(DomainSeparationTag))
	require.NoError(t, err)

	q0 := ApplyIsogeny(MapToIsogenousCurve(&u[0]))
	q1 := ApplyIsogeny(MapToIsogenousCurve(&u[1]))

	// The cofactor map is an endomorphism polynomial, so clearing the sum
	// equals summing the cleared halves. HashToPoint relies on this.
	sum := clearCofactor(q0.Add(q1))
	parts := clearCofactor(q0).Add(clearCofactor(q1))
	require.True(t, sum.Equal(parts))
}
