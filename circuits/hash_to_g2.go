package circuit

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/fields_bls12381"
	"github.com/consensys/gnark/std/algebra/emulated/sw_bls12381"
	"github.com/consensys/gnark/std/hash/sha2"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/uints"
)

// DST is the ETH2 domain separation tag for hashing messages to the
// extension-field group (RFC 9380, XMD:SHA-256 SSWU RO POP suite).
const DST = "BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_"

// hashToG2 performs RFC 9380 hash_to_G2 in-circuit: hash_to_field over Fp2,
// two SWU maps and one group addition.
func hashToG2(api frontend.API, msg [32]uints.U8) (*sw_bls12381.G2Affine, error) {
	g2, err := sw_bls12381.NewG2(api)
	if err != nil {
		return nil, fmt.Errorf("new G2: %w", err)
	}

	u, err := hashToFieldFp2(api, msg)
	if err != nil {
		return nil, fmt.Errorf("hash to field: %w", err)
	}

	// map_to_curve for each u[i]; MapToG2 includes the isogeny and
	// cofactor clearing
	q0, err := g2.MapToG2(&u[0])
	if err != nil {
		return nil, fmt.Errorf("MapToG2(u[0]): %w", err)
	}
	q1, err := g2.MapToG2(&u[1])
	if err != nil {
		return nil, fmt.Errorf("MapToG2(u[1]): %w", err)
	}

	// AddUnified: the two mapped points may coincide
	return g2.AddUnified(q0, q1), nil
}

// hashToFieldFp2 implements RFC 9380 hash_to_field for Fp2 with count=2:
// one expand_message_xmd call producing 256 uniform bytes, reduced into
// four base-field elements forming two Fp2 values.
func hashToFieldFp2(api frontend.API, msg [32]uints.U8) ([2]fields_bls12381.E2, error) {
	const (
		m     = 2  // extension degree
		L     = 64 // bytes per field element before reduction
		count = 2
	)

	dstBytes := []byte(DST)
	dst := make([]uints.U8, len(dstBytes))
	for i, b := range dstBytes {
		dst[i] = uints.NewU8(b)
	}

	fp, err := emulated.NewField[sw_bls12381.BaseField](api)
	if err != nil {
		return [2]fields_bls12381.E2{}, fmt.Errorf("new emulated field: %w", err)
	}
	byteAPI, err := uints.NewBytes(api)
	if err != nil {
		return [2]fields_bls12381.E2{}, fmt.Errorf("new bytes api: %w", err)
	}

	lenInBytes := count * m * L
	uniform, err := expandMessageXMD(api, msg[:], dst, lenInBytes)
	if err != nil {
		return [2]fields_bls12381.E2{}, fmt.Errorf("expand_message_xmd: %w", err)
	}

	var out [2]fields_bls12381.E2
	for i := 0; i < count; i++ {
		for j := 0; j < m; j++ {
			offset := L * (j + i*m)
			tv := uniform[offset : offset+L]

			el, err := bytesToFpMod(api, fp, byteAPI, tv)
			if err != nil {
				return [2]fields_bls12381.E2{}, fmt.Errorf("os2ip(%d,%d): %w", i, j, err)
			}
			if j == 0 {
				out[i].A0 = *el
			} else {
				out[i].A1 = *el
			}
		}
	}
	return out, nil
}

// expandMessageXMD implements expand_message_xmd(msg, DST, len_in_bytes)
// from RFC 9380 with H = SHA-256 (B = 32, r_in_bytes = 64). All bytes are
// in-circuit uints.U8.
func expandMessageXMD(api frontend.API, msg, dst []uints.U8, lenInBytes int) ([]uints.U8, error) {
	const (
		B        = 32
		rInBytes = 64
		maxLen   = 255 * B
	)

	if lenInBytes <= 0 || lenInBytes > maxLen {
		return nil, fmt.Errorf("len_in_bytes out of range")
	}
	ell := (lenInBytes + B - 1) / B

	// DST' = DST || I2OSP(len(DST), 1)
	dstPrime := make([]uints.U8, 0, len(dst)+1)
	dstPrime = append(dstPrime, dst...)
	dstPrime = append(dstPrime, uints.NewU8(uint8(len(dst))))

	// Z_pad = I2OSP(0, r_in_bytes)
	zPad := make([]uints.U8, rInBytes)
	for i := range zPad {
		zPad[i] = uints.NewU8(0)
	}

	// l_i_b_str = I2OSP(len_in_bytes, 2)
	lIB := []uints.U8{
		uints.NewU8(uint8(lenInBytes >> 8)),
		uints.NewU8(uint8(lenInBytes & 0xff)),
	}

	byteAPI, err := uints.NewBytes(api)
	if err != nil {
		return nil, fmt.Errorf("new bytes api: %w", err)
	}

	// b0 = H(Z_pad || msg || l_i_b_str || 0x00 || DST')
	h0, err := sha2.New(api)
	if err != nil {
		return nil, fmt.Errorf("sha2.New(b0): %w", err)
	}
	h0.Write(zPad)
	h0.Write(msg)
	h0.Write(lIB)
	h0.Write([]uints.U8{uints.NewU8(0x00)})
	h0.Write(dstPrime)
	b0 := h0.Sum()

	// b1 = H(b0 || 0x01 || DST')
	h1, err := sha2.New(api)
	if err != nil {
		return nil, fmt.Errorf("sha2.New(b1): %w", err)
	}
	h1.Write(b0)
	h1.Write([]uints.U8{uints.NewU8(0x01)})
	h1.Write(dstPrime)
	b1 := h1.Sum()

	uniform := make([]uints.U8, 0, ell*B)
	uniform = append(uniform, b1...)

	prev := b1
	for i := 2; i <= ell; i++ {
		// b_i = H(strxor(b0, b_{i-1}) || I2OSP(i, 1) || DST')
		t := make([]uints.U8, len(b0))
		for j := range b0 {
			t[j] = byteAPI.Xor(b0[j], prev[j])
		}
		hi, err := sha2.New(api)
		if err != nil {
			return nil, fmt.Errorf("sha2.New(b_%d): %w", i, err)
		}
		hi.Write(t)
		hi.Write([]uints.U8{uints.NewU8(uint8(i))})
		hi.Write(dstPrime)
		bi := hi.Sum()

		uniform = append(uniform, bi...)
		prev = bi
	}

	return uniform[:lenInBytes], nil
}

// bytesToFpMod reduces a big-endian byte string to a base-field element,
// res = OS2IP(b) mod p, via Horner evaluation so the accumulator width
// stays bounded.
func bytesToFpMod(
	api frontend.API,
	fp *emulated.Field[sw_bls12381.BaseField],
	byteAPI *uints.Bytes,
	b []uints.U8,
) (*emulated.Element[sw_bls12381.BaseField], error) {
	radix := big.NewInt(256)
	res := fp.Zero()
	nbLimbs := len(fp.Modulus().Limbs)
	limbBuf := make([]frontend.Variable, nbLimbs)

	for _, by := range b {
		res = fp.MulConst(res, radix)
		for i := range limbBuf {
			limbBuf[i] = 0
		}
		limbBuf[0] = byteAPI.Value(by)
		digit := fp.NewElement(limbBuf)
		res = fp.Add(res, digit)
	}

	res = fp.Reduce(res)
	return res, nil
}
