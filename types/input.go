package types

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/kysee/zk-bls-stages/bls"
)

// VerifyInput is the JSON input format of the proving tooling:
// decimal byte strings for the signing root, and field elements as
// little-endian decimal limb strings (7 limbs of 55 bits).
//
//	{
//	  "signing_root": ["18", ...],                 32 byte strings
//	  "pubkeys":      [[x_limbs, y_limbs], ...],   per validator
//	  "pubkeybits":   ["1", "0", ...],
//	  "signature":    [[x0_limbs, x1_limbs], [y0_limbs, y1_limbs]]
//	}
type VerifyInput struct {
	SigningRoot []string      `json:"signing_root"`
	PubKeys     [][2][]string `json:"pubkeys"`
	PubKeyBits  []string      `json:"pubkeybits"`
	Signature   [2][2][]string `json:"signature"`
}

func LoadVerifyInput(path string) (*VerifyInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	var in VerifyInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse input file: %w", err)
	}
	return &in, nil
}

func parseLimbStrings(limbs []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(limbs))
	for i, s := range limbs {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("invalid decimal limb %q", s)
		}
		out[i] = v
	}
	return out, nil
}

// Message returns the 32-byte signing root.
func (in *VerifyInput) Message() ([32]byte, error) {
	var msg [32]byte
	if len(in.SigningRoot) != 32 {
		return msg, fmt.Errorf("signing_root must be 32 bytes, got %d", len(in.SigningRoot))
	}
	for i, s := range in.SigningRoot {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok || !v.IsUint64() || v.Uint64() > 255 {
			return msg, fmt.Errorf("invalid signing_root byte %d: %q", i, s)
		}
		msg[i] = byte(v.Uint64())
	}
	return msg, nil
}

// Committee decodes the pubkeys and participation bits.
func (in *VerifyInput) Committee() (*Committee, error) {
	if len(in.PubKeyBits) != len(in.PubKeys) {
		return nil, fmt.Errorf("pubkeybits length %d does not match pubkeys length %d",
			len(in.PubKeyBits), len(in.PubKeys))
	}
	c := &Committee{
		PubKeys: make([]bls.G1Point, len(in.PubKeys)),
		Bits:    make([]bool, len(in.PubKeyBits)),
	}
	for i, pk := range in.PubKeys {
		xLimbs, err := parseLimbStrings(pk[0])
		if err != nil {
			return nil, fmt.Errorf("pubkey %d x: %w", i, err)
		}
		yLimbs, err := parseLimbStrings(pk[1])
		if err != nil {
			return nil, fmt.Errorf("pubkey %d y: %w", i, err)
		}
		p, err := bls.G1FromLimbs(append(xLimbs, yLimbs...))
		if err != nil {
			return nil, fmt.Errorf("pubkey %d: %w", i, err)
		}
		c.PubKeys[i] = p
	}
	for i, b := range in.PubKeyBits {
		switch b {
		case "1":
			c.Bits[i] = true
		case "0":
			c.Bits[i] = false
		default:
			return nil, fmt.Errorf("invalid pubkeybit %d: %q", i, b)
		}
	}
	return c, nil
}

// SignaturePoint decodes the aggregated signature.
func (in *VerifyInput) SignaturePoint() (bls.G2Point, error) {
	var limbs []*big.Int
	for coord := 0; coord < 2; coord++ {
		for part := 0; part < 2; part++ {
			l, err := parseLimbStrings(in.Signature[coord][part])
			if err != nil {
				return bls.G2Point{}, fmt.Errorf("signature coordinate (%d,%d): %w", coord, part, err)
			}
			limbs = append(limbs, l...)
		}
	}
	sig, err := bls.G2FromLimbs(limbs)
	if err != nil {
		return bls.G2Point{}, fmt.Errorf("signature: %w", err)
	}
	return sig, nil
}
