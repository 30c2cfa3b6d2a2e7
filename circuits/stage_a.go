package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_bls12381"
	"github.com/consensys/gnark/std/algebra/emulated/sw_emulated"
	"github.com/consensys/gnark/std/hash/sha2"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/kysee/zk-bls-stages/stages"
)

// CommitteeSize is the fixed validator count baked into the circuits. The
// constraint structure is constant regardless of participation.
const CommitteeSize = 8

// CommitmentBytes of the SHA256 committee digest become the public
// commitment value, keeping it below the proving field modulus.
const CommitmentBytes = 31

// StageACircuit proves the first stage of the decomposed verification:
// the message point is the RFC 9380 hash of the private message, and the
// aggregate key is the sum of the committee members selected by the bitmask.
// The public record publishes the message point, the aggregate key, the
// participant count and the committee commitment.
type StageACircuit struct {
	// Committee and message (private inputs)
	PubKeys [CommitteeSize]sw_bls12381.G1Affine
	Bits    [CommitteeSize]frontend.Variable
	Message [32]uints.U8

	// Public record: message point (28 limbs) ‖ aggregate key (14 limbs) ‖
	// participant count ‖ committee commitment
	Record [stages.StageARecordLen]frontend.Variable `gnark:",public"`
}

func (c *StageACircuit) Define(api frontend.API) error {
	fp, err := emulated.NewField[sw_bls12381.BaseField](api)
	if err != nil {
		return fmt.Errorf("new emulated field: %w", err)
	}

	for i := 0; i < CommitteeSize; i++ {
		api.AssertIsBoolean(c.Bits[i])
	}

	aggKey, count, err := c.aggregatePubKeys(api)
	if err != nil {
		return fmt.Errorf("public key aggregation failed: %w", err)
	}

	commitment, err := c.committeeCommitment(api, fp)
	if err != nil {
		return fmt.Errorf("committee commitment failed: %w", err)
	}

	hm, err := hashToG2(api, c.Message)
	if err != nil {
		return fmt.Errorf("hash-to-curve failed: %w", err)
	}

	// Bind the outputs to the public record
	if err := bindE2ToLimbs(api, fp, &hm.P.X, c.Record[stages.AOffHm:stages.AOffHm+2*FpLimbs]); err != nil {
		return fmt.Errorf("bind message point x: %w", err)
	}
	if err := bindE2ToLimbs(api, fp, &hm.P.Y, c.Record[stages.AOffHm+2*FpLimbs:stages.AOffAggKey]); err != nil {
		return fmt.Errorf("bind message point y: %w", err)
	}
	if err := bindFpToLimbs(api, fp, &aggKey.X, c.Record[stages.AOffAggKey:stages.AOffAggKey+FpLimbs]); err != nil {
		return fmt.Errorf("bind aggregate key x: %w", err)
	}
	if err := bindFpToLimbs(api, fp, &aggKey.Y, c.Record[stages.AOffAggKey+FpLimbs:stages.AOffCount]); err != nil {
		return fmt.Errorf("bind aggregate key y: %w", err)
	}
	api.AssertIsEqual(count, c.Record[stages.AOffCount])
	api.AssertIsEqual(commitment, c.Record[stages.AOffCommitment])

	return nil
}

// aggregatePubKeys conditionally accumulates the committee keys selected by
// the bitmask. The accumulator is seeded by the first selected key so the
// identity never enters the incomplete addition formulas; at least one bit
// must be set.
func (c *StageACircuit) aggregatePubKeys(api frontend.API) (*sw_bls12381.G1Affine, frontend.Variable, error) {
	curve, err := sw_emulated.New[sw_bls12381.BaseField, sw_bls12381.ScalarField](api, sw_emulated.GetBLS12381Params())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create curve: %w", err)
	}

	accumulator := &c.PubKeys[0]
	hasInitialized := c.Bits[0]
	count := c.Bits[0]

	for i := 1; i < CommitteeSize; i++ {
		bit := c.Bits[i]

		// First selected key replaces the accumulator; later ones are added
		isFirstSelected := api.And(api.IsZero(hasInitialized), bit)
		shouldAdd := api.And(hasInitialized, bit)

		sum := curve.Add(accumulator, &c.PubKeys[i])
		tempResult := curve.Select(shouldAdd, sum, accumulator)
		accumulator = curve.Select(isFirstSelected, &c.PubKeys[i], tempResult)

		hasInitialized = api.Or(hasInitialized, bit)
		count = api.Add(count, bit)
	}

	api.AssertIsEqual(hasInitialized, 1)

	return accumulator, count, nil
}

// committeeCommitment hashes the 48-byte big-endian X coordinate of every
// committee key, participating or not, and packs the first 31 digest bytes
// into a single public value. X-only hashing binds each key up to its
// y-sign, matching the native commitment.
func (c *StageACircuit) committeeCommitment(
	api frontend.API,
	fp *emulated.Field[sw_bls12381.BaseField],
) (frontend.Variable, error) {
	hasher, err := sha2.New(api)
	if err != nil {
		return nil, fmt.Errorf("failed to create SHA2 hasher: %w", err)
	}

	for i := 0; i < CommitteeSize; i++ {
		xBytes := fpToBytesBE(api, fp, &c.PubKeys[i].X)
		hasher.Write(xBytes[:])
	}
	digest := hasher.Sum()

	var value frontend.Variable = 0
	for i := 0; i < CommitmentBytes; i++ {
		value = api.Add(api.Mul(value, 256), digest[i].Val)
	}
	return value, nil
}
