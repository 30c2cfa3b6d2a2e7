package stages

import (
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/zk-bls-stages/bls"
	"github.com/kysee/zk-bls-stages/types"
)

// genRun builds a deterministic 8-validator run: keys, participation mask
// and an aggregate signature over the message by every participant.
func genRun(t *testing.T, seed string, participants ...int) ([32]byte, *types.Committee, bls.G2Point) {
	t.Helper()
	msg := sha256.Sum256([]byte(seed))

	c := &types.Committee{
		PubKeys: make([]bls.G1Point, 8),
		Bits:    make([]bool, 8),
	}
	sks := make([]*big.Int, 8)
	for i := range c.PubKeys {
		sks[i] = big.NewInt(int64(7900001 * (i + 1)))
		c.PubKeys[i] = bls.G1Generator().ScalarMul(sks[i])
	}

	aggSk := new(big.Int)
	for _, i := range participants {
		c.Bits[i] = true
		aggSk.Add(aggSk, sks[i])
	}

	hm, err := bls.HashToPoint(msg)
	require.NoError(t, err)
	return msg, c, hm.ScalarMul(aggSk)
}

func TestPipelineAcceptsValidRun(t *testing.T) {
	msg, c, sig := genRun(t, "valid run", 0, 2, 3, 6, 7)

	p := NewPipeline(msg, c, sig)
	require.NoError(t, p.Run())
	require.Equal(t, Accepted, p.Status())
	require.NoError(t, p.Err())

	recA, recB, recC := p.Records()
	require.NoError(t, recA.CheckShape(StageA))
	require.NoError(t, recB.CheckShape(StageB))
	require.NoError(t, recC.CheckShape(StageC))

	require.Equal(t, int64(5), recA[AOffCount].Int64())
	require.Equal(t, 0, recA[AOffCommitment].Cmp(c.CommitmentValue()))
}

func TestPipelineRejectsAlteredBitmask(t *testing.T) {
	msg, c, sig := genRun(t, "altered mask", 0, 1, 2)

	// Drop one signer after the fact; the signature no longer matches the
	// aggregate key, so stage C must reject.
	c.Bits[2] = false

	p := NewPipeline(msg, c, sig)
	err := p.Run()
	require.Error(t, err)
	require.Equal(t, Rejected, p.Status())
	require.ErrorContains(t, p.Err(), "pairing equation")
}

func TestPipelineRejectsWrongMessage(t *testing.T) {
	_, c, sig := genRun(t, "signed message", 1, 4)
	otherMsg := sha256.Sum256([]byte("presented message"))

	p := NewPipeline(otherMsg, c, sig)
	require.Error(t, p.Run())
	require.Equal(t, Rejected, p.Status())
}

func TestPipelineStageOrdering(t *testing.T) {
	msg, c, sig := genRun(t, "ordering", 0)

	p := NewPipeline(msg, c, sig)
	require.Error(t, p.StepB(), "stage B must not run before stage A")
	require.Error(t, p.StepC())
	require.Equal(t, Pending, p.Status())

	require.NoError(t, p.StepA())
	require.Error(t, p.StepA(), "stages are single-shot")
	require.NoError(t, p.StepB())
	require.NoError(t, p.StepC())
	require.Equal(t, Accepted, p.Status())

	// A settled run never transitions again.
	require.Error(t, p.StepA())
	require.Error(t, p.StepB())
	require.Error(t, p.StepC())
	require.Equal(t, Accepted, p.Status())
}

func TestPipelineRunsAreIndependent(t *testing.T) {
	msg, c, sig := genRun(t, "independent", 0, 1)

	bad := NewPipeline(msg, c, bls.G2Generator())
	require.Error(t, bad.Run())
	require.Equal(t, Rejected, bad.Status())

	good := NewPipeline(msg, c, sig)
	require.NoError(t, good.Run())
	require.Equal(t, Accepted, good.Status())
}

func TestStageBRejectsTamperedRecord(t *testing.T) {
	msg, c, sig := genRun(t, "tampered record", 0, 5)

	outA, err := RunStageA(msg, c)
	require.NoError(t, err)

	tampered := outA.Record.Clone()
	tampered[AOffHm] = new(big.Int).Add(tampered[AOffHm], big.NewInt(1))
	_, err = RunStageB(tampered, sig)
	require.Error(t, err, "a message point off the curve must not decode")

	oversized := outA.Record.Clone()
	oversized[AOffAggKey] = new(big.Int).Lsh(big.NewInt(1), 60)
	_, err = RunStageB(oversized, sig)
	require.Error(t, err)
}

func TestStageBRejectsBadSignature(t *testing.T) {
	msg, c, _ := genRun(t, "bad signature", 0)
	outA, err := RunStageA(msg, c)
	require.NoError(t, err)

	_, err = RunStageB(outA.Record, bls.G2Infinity())
	require.Error(t, err)
}

func TestStageCShapeMismatch(t *testing.T) {
	msg, c, sig := genRun(t, "shape", 0, 1)
	outA, err := RunStageA(msg, c)
	require.NoError(t, err)
	outB, err := RunStageB(outA.Record, sig)
	require.NoError(t, err)

	_, err = RunStageC(outB.Record[:StageBRecordLen-1])
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = RunStageB(outA.Record[:StageARecordLen-2], sig)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestStageAIdentityAggregate(t *testing.T) {
	msg := sha256.Sum256([]byte("cancellation"))
	sk := big.NewInt(424243)
	pk := bls.G1Generator().ScalarMul(sk)

	// Two participating keys that sum to the identity.
	c := &types.Committee{
		PubKeys: []bls.G1Point{pk, pk.Neg()},
		Bits:    []bool{true, true},
	}
	_, err := RunStageA(msg, c)
	require.Error(t, err)
}

func TestFineSplitMatchesPipeline(t *testing.T) {
	cases := []struct {
		name         string
		mutate       func(*[32]byte, *types.Committee, *bls.G2Point)
		participants []int
	}{
		{"accepting run", nil, []int{0, 2, 3, 6, 7}},
		{"single signer", nil, []int{4}},
		{"flipped bit", func(_ *[32]byte, c *types.Committee, _ *bls.G2Point) {
			c.Bits[0] = false
			c.Bits[1] = true
		}, []int{0, 2}},
		{"wrong message", func(msg *[32]byte, _ *types.Committee, _ *bls.G2Point) {
			msg[0] ^= 0x01
		}, []int{0, 1, 2}},
	}

	for _, tc := range cases {
		msg, c, sig := genRun(t, "fine split "+tc.name, tc.participants...)
		if tc.mutate != nil {
			tc.mutate(&msg, c, &sig)
		}

		p := NewPipeline(msg, c, sig)
		want := p.Run() == nil

		got, err := RunFine(msg, c, sig)
		require.NoError(t, err)
		require.Equal(t, want, got, "%s: fine split verdict diverges from pipeline", tc.name)
	}
}

func TestFineSplitIntermediates(t *testing.T) {
	msg, c, sig := genRun(t, "fine intermediates", 0, 3)

	state := &FineState{Msg: msg, Committee: c, Sig: sig}
	for _, step := range FineSteps() {
		require.NoError(t, step.Run(state), step.Name)
	}
	require.True(t, state.Accepted())

	outA, err := RunStageA(msg, c)
	require.NoError(t, err)
	require.True(t, state.hm.Equal(outA.Hm))
	require.True(t, state.aggKey.Equal(outA.AggKey))
	require.Equal(t, outA.Count, state.count)

	outB, err := RunStageB(outA.Record, sig)
	require.NoError(t, err)
	require.True(t, state.miller.Equal(&outB.Miller))

	outC, err := RunStageC(outB.Record)
	require.NoError(t, err)
	require.True(t, state.final.Equal(&outC.Final))
	require.True(t, outC.Accepted)
}
