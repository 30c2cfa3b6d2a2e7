package stages

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"

	"github.com/kysee/zk-bls-stages/bls"
)

// Failure taxonomy of the chaining protocol. The composition verifier wraps
// these so callers can classify rejections with errors.Is.
var (
	ErrShapeMismatch = errors.New("record shape mismatch")
	ErrOutOfRange    = errors.New("record access out of range")
	ErrChainMismatch = errors.New("chain link mismatch")
)

// StageID identifies a stage of the decomposed verification.
type StageID int

const (
	StageA StageID = iota // hash-to-curve + aggregation
	StageB                // Miller loop
	StageC                // final exponentiation
)

func (s StageID) String() string {
	switch s {
	case StageA:
		return "stage-a"
	case StageB:
		return "stage-b"
	case StageC:
		return "stage-c"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Record layouts. All offsets are in record slots; one slot holds one limb
// or one scalar value.
const (
	// Stage A: message point (28) ‖ aggregate key (14) ‖ count (1) ‖ commitment (1)
	StageARecordLen = bls.G2Limbs + bls.G1Limbs + 2
	AOffHm          = 0
	AOffAggKey      = AOffHm + bls.G2Limbs
	AOffCount       = AOffAggKey + bls.G1Limbs
	AOffCommitment  = AOffCount + 1

	// Stage B: message point (28) ‖ aggregate key (14) ‖ Miller output (84)
	StageBRecordLen = bls.G2Limbs + bls.G1Limbs + bls.GTLimbs
	BOffHm          = 0
	BOffAggKey      = BOffHm + bls.G2Limbs
	BOffMiller      = BOffAggKey + bls.G1Limbs

	// Stage C republishes only its input: Miller output (84)
	StageCRecordLen = bls.GTLimbs
	COffMiller      = 0
)

// RecordLen returns the fixed public record length of a stage.
func RecordLen(id StageID) (int, error) {
	switch id {
	case StageA:
		return StageARecordLen, nil
	case StageB:
		return StageBRecordLen, nil
	case StageC:
		return StageCRecordLen, nil
	default:
		return 0, fmt.Errorf("%w: unknown stage %d", ErrShapeMismatch, int(id))
	}
}

// Record is a stage's public output: a flat vector of non-negative values,
// each fitting a 32-byte big-endian serialization. Limb slots carry 55-bit
// limbs; the count and commitment slots carry small scalars.
type Record []*big.Int

// CheckShape validates the record length against a stage's fixed layout and
// that every slot is present and serializable.
func (r Record) CheckShape(id StageID) error {
	want, err := RecordLen(id)
	if err != nil {
		return err
	}
	if len(r) != want {
		return fmt.Errorf("%w: %s record has %d values, want %d", ErrShapeMismatch, id, len(r), want)
	}
	for i, v := range r {
		if v == nil || v.Sign() < 0 || v.BitLen() > 256 {
			return fmt.Errorf("%w: %s record value %d", ErrOutOfRange, id, i)
		}
	}
	return nil
}

// Slice returns r[off:off+n], failing closed on any bounds violation instead
// of panicking on attacker-shaped records.
func (r Record) Slice(off, n int) (Record, error) {
	if off < 0 || n < 0 || off+n > len(r) {
		return nil, fmt.Errorf("%w: [%d:%d] of %d", ErrOutOfRange, off, off+n, len(r))
	}
	return r[off : off+n], nil
}

// HashSlice hashes a record segment with SHA256, each value serialized as
// 32 bytes big-endian so the digest is layout-independent of limb widths.
func (r Record) HashSlice(off, n int) ([32]byte, error) {
	var digest [32]byte
	seg, err := r.Slice(off, n)
	if err != nil {
		return digest, err
	}
	hasher := sha256.New()
	var buf [32]byte
	for i, v := range seg {
		if v == nil || v.Sign() < 0 || v.BitLen() > 256 {
			return digest, fmt.Errorf("%w: value %d", ErrOutOfRange, off+i)
		}
		v.FillBytes(buf[:])
		hasher.Write(buf[:])
	}
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// Clone deep-copies a record so stages never alias each other's outputs.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for i, v := range r {
		if v != nil {
			out[i] = new(big.Int).Set(v)
		}
	}
	return out
}
