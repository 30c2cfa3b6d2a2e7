package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/zk-bls-stages/bls"
)

// makeCommittee derives n deterministic keypairs and marks the given indexes
// as participating.
func makeCommittee(n int, participants ...int) (*Committee, []*big.Int) {
	sks := make([]*big.Int, n)
	c := &Committee{
		PubKeys: make([]bls.G1Point, n),
		Bits:    make([]bool, n),
	}
	for i := 0; i < n; i++ {
		sks[i] = big.NewInt(int64(1000003 * (i + 1)))
		c.PubKeys[i] = bls.G1Generator().ScalarMul(sks[i])
	}
	for _, i := range participants {
		c.Bits[i] = true
	}
	return c, sks
}

func TestAggregate(t *testing.T) {
	c, _ := makeCommittee(8, 0, 2, 3, 6, 7)

	agg, count, err := c.Aggregate()
	require.NoError(t, err)
	require.Equal(t, 5, count)
	require.False(t, agg.IsInfinity())

	want := bls.G1Infinity()
	for _, i := range []int{0, 2, 3, 6, 7} {
		want = want.Add(c.PubKeys[i])
	}
	require.True(t, agg.Equal(want))
}

func TestAggregateSingleParticipant(t *testing.T) {
	c, _ := makeCommittee(4, 2)

	agg, count, err := c.Aggregate()
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.True(t, agg.Equal(c.PubKeys[2]))
}

func TestAggregateOrderIndependent(t *testing.T) {
	c, _ := makeCommittee(8, 1, 4, 5)
	agg1, _, err := c.Aggregate()
	require.NoError(t, err)

	// Reverse the committee along with its bitmask; the aggregate is a sum
	// and must not move.
	rev := &Committee{
		PubKeys: make([]bls.G1Point, len(c.PubKeys)),
		Bits:    make([]bool, len(c.Bits)),
	}
	for i := range c.PubKeys {
		j := len(c.PubKeys) - 1 - i
		rev.PubKeys[i] = c.PubKeys[j]
		rev.Bits[i] = c.Bits[j]
	}
	agg2, _, err := rev.Aggregate()
	require.NoError(t, err)
	require.True(t, agg1.Equal(agg2))
}

func TestAggregateRejectsMalformed(t *testing.T) {
	empty := &Committee{}
	_, _, err := empty.Aggregate()
	require.Error(t, err)

	noBits, _ := makeCommittee(4)
	_, _, err = noBits.Aggregate()
	require.Error(t, err, "all-zero bitmask must be rejected")

	mismatch, _ := makeCommittee(4, 0)
	mismatch.Bits = mismatch.Bits[:3]
	_, _, err = mismatch.Aggregate()
	require.Error(t, err)

	withIdentity, _ := makeCommittee(4, 0)
	withIdentity.PubKeys[1] = bls.G1Infinity()
	_, _, err = withIdentity.Aggregate()
	require.Error(t, err)
}

func TestCommitment(t *testing.T) {
	c, _ := makeCommittee(8, 0, 1)

	c1 := c.Commitment()
	c2 := c.Commitment()
	require.Equal(t, c1, c2)

	// The commitment covers the ordered key list, not the bitmask.
	flipped, _ := makeCommittee(8, 3, 4)
	require.Equal(t, c1, flipped.Commitment())

	swapped, _ := makeCommittee(8, 0, 1)
	swapped.PubKeys[0], swapped.PubKeys[1] = swapped.PubKeys[1], swapped.PubKeys[0]
	require.NotEqual(t, c1, swapped.Commitment())

	// X-only hashing: negating a key does not move the commitment.
	negated, _ := makeCommittee(8, 0, 1)
	negated.PubKeys[2] = negated.PubKeys[2].Neg()
	require.Equal(t, c1, negated.Commitment())
}

func TestCommitmentValue(t *testing.T) {
	c, _ := makeCommittee(8, 0)
	digest := c.Commitment()
	v := c.CommitmentValue()

	require.True(t, v.BitLen() <= 8*CommitmentBytes)
	require.Equal(t, 0, v.Cmp(new(big.Int).SetBytes(digest[:CommitmentBytes])))
}

func TestParseBits(t *testing.T) {
	// 0b00000101, 0b00000010: bits 0, 2 and 9 set.
	bits := ParseBits([]byte{0x05, 0x02}, 12)
	require.Len(t, bits, 12)
	for i, b := range bits {
		want := i == 0 || i == 2 || i == 9
		require.Equal(t, want, b, "bit %d", i)
	}

	// Short byte slices read as zero padding.
	bits = ParseBits([]byte{0xff}, 12)
	for i := 8; i < 12; i++ {
		require.False(t, bits[i])
	}
}
