package types

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/kysee/zk-bls-stages/bls"
)

// CommitmentBytes is how much of the SHA256 digest becomes the public
// commitment value. 31 bytes keep it below the BN254 scalar field.
const CommitmentBytes = 31

// Committee is an ordered validator set with a participation bitmask.
// Ordering matters for the commitment; aggregation itself is order-free.
type Committee struct {
	PubKeys []bls.G1Point
	Bits    []bool
}

// Validate checks the committee shape and that every pubkey is a finite
// member of the prime-order subgroup.
func (c *Committee) Validate() error {
	if len(c.PubKeys) == 0 {
		return fmt.Errorf("empty committee")
	}
	if len(c.Bits) != len(c.PubKeys) {
		return fmt.Errorf("bitmask length %d does not match committee size %d", len(c.Bits), len(c.PubKeys))
	}
	for i, pk := range c.PubKeys {
		if pk.IsInfinity() {
			return fmt.Errorf("pubkey %d is the identity", i)
		}
		if !pk.InSubgroup() {
			return fmt.Errorf("pubkey %d is not in the prime-order subgroup", i)
		}
	}
	return nil
}

// ParseBits unpacks a little-endian-within-byte bitmask into n booleans,
// the sync-committee bit convention.
func ParseBits(bitsBytes []byte, n int) []bool {
	bits := make([]bool, n)
	for i := 0; i < n; i++ {
		byteIndex := i / 8
		bitIndex := i % 8
		if byteIndex < len(bitsBytes) {
			bits[i] = (bitsBytes[byteIndex] & (1 << bitIndex)) != 0
		}
	}
	return bits
}

// Aggregate folds the participating public keys left to right and returns
// the aggregate together with the participant count. An all-zero bitmask is
// rejected up front; a single participant is allowed and yields that member's
// key unchanged.
func (c *Committee) Aggregate() (bls.G1Point, int, error) {
	if err := c.Validate(); err != nil {
		return bls.G1Infinity(), 0, err
	}

	agg := bls.G1Infinity()
	count := 0
	for i, participate := range c.Bits {
		if !participate {
			continue
		}
		agg = agg.Add(c.PubKeys[i])
		count++
	}
	if count == 0 {
		return bls.G1Infinity(), 0, fmt.Errorf("no public keys to aggregate")
	}
	return agg, count, nil
}

// Commitment computes the SHA256 commitment to the ordered committee: the
// 48-byte big-endian X coordinate of every pubkey, participating or not.
// X-only hashing binds each key up to its y-sign: a committee listing -pk in
// place of pk commits identically.
func (c *Committee) Commitment() [32]byte {
	hasher := sha256.New()
	for i := range c.PubKeys {
		xBytes := c.PubKeys[i].Inner.X.Bytes()
		hasher.Write(xBytes[:])
	}
	var commitment [32]byte
	copy(commitment[:], hasher.Sum(nil))
	return commitment
}

// CommitmentValue truncates the commitment digest to its first 31 bytes,
// read big-endian, so it fits a single proving-field record slot.
func (c *Committee) CommitmentValue() *big.Int {
	commitment := c.Commitment()
	return new(big.Int).SetBytes(commitment[:CommitmentBytes])
}
