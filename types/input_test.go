package types

import (
	"crypto/sha256"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/zk-bls-stages/bls"
)

func limbStrings(limbs []*big.Int) []string {
	out := make([]string, len(limbs))
	for i, l := range limbs {
		out[i] = l.String()
	}
	return out
}

// encodeInput serializes a run the way the proving tooling does: byte
// strings for the root, decimal limb strings for every coordinate.
func encodeInput(t *testing.T, msg [32]byte, c *Committee, sig bls.G2Point) *VerifyInput {
	t.Helper()
	in := &VerifyInput{}
	for _, b := range msg {
		in.SigningRoot = append(in.SigningRoot, strconv.Itoa(int(b)))
	}
	for i, pk := range c.PubKeys {
		limbs, err := pk.ToLimbs()
		require.NoError(t, err)
		in.PubKeys = append(in.PubKeys, [2][]string{
			limbStrings(limbs[:bls.FpLimbs]),
			limbStrings(limbs[bls.FpLimbs:]),
		})
		if c.Bits[i] {
			in.PubKeyBits = append(in.PubKeyBits, "1")
		} else {
			in.PubKeyBits = append(in.PubKeyBits, "0")
		}
	}
	sigLimbs, err := sig.ToLimbs()
	require.NoError(t, err)
	for coord := 0; coord < 2; coord++ {
		for part := 0; part < 2; part++ {
			off := (coord*2 + part) * bls.FpLimbs
			in.Signature[coord][part] = limbStrings(sigLimbs[off : off+bls.FpLimbs])
		}
	}
	return in
}

func TestVerifyInputRoundTrip(t *testing.T) {
	msg := sha256.Sum256([]byte("input round trip"))
	c, _ := makeCommittee(8, 0, 3, 5)
	hm, err := bls.HashToPoint(msg)
	require.NoError(t, err)
	sig := hm.ScalarMul(big.NewInt(0xabcdef))

	in := encodeInput(t, msg, c, sig)

	blob, err := json.Marshal(in)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, blob, 0644))

	loaded, err := LoadVerifyInput(path)
	require.NoError(t, err)

	gotMsg, err := loaded.Message()
	require.NoError(t, err)
	require.Equal(t, msg, gotMsg)

	gotCommittee, err := loaded.Committee()
	require.NoError(t, err)
	require.Equal(t, c.Bits, gotCommittee.Bits)
	for i := range c.PubKeys {
		require.True(t, c.PubKeys[i].Equal(gotCommittee.PubKeys[i]), "pubkey %d", i)
	}

	gotSig, err := loaded.SignaturePoint()
	require.NoError(t, err)
	require.True(t, sig.Equal(gotSig))
}

func TestVerifyInputRejectsMalformed(t *testing.T) {
	msg := sha256.Sum256([]byte("malformed input"))
	c, _ := makeCommittee(4, 0)
	hm, err := bls.HashToPoint(msg)
	require.NoError(t, err)
	sig := hm.ScalarMul(big.NewInt(3))

	short := encodeInput(t, msg, c, sig)
	short.SigningRoot = short.SigningRoot[:31]
	_, err = short.Message()
	require.Error(t, err)

	badByte := encodeInput(t, msg, c, sig)
	badByte.SigningRoot[0] = "256"
	_, err = badByte.Message()
	require.Error(t, err)

	badBit := encodeInput(t, msg, c, sig)
	badBit.PubKeyBits[0] = "yes"
	_, err = badBit.Committee()
	require.Error(t, err)

	badKey := encodeInput(t, msg, c, sig)
	badKey.PubKeys[0][1][0] = "1"
	_, err = badKey.Committee()
	require.Error(t, err, "off-curve pubkey must be rejected")

	badSig := encodeInput(t, msg, c, sig)
	badSig.Signature[0][0][0] = "not a number"
	_, err = badSig.SignaturePoint()
	require.Error(t, err)
}

func TestLoadVerifyInputMissingFile(t *testing.T) {
	_, err := LoadVerifyInput(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
