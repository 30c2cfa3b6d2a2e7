package types

import (
	bn254_fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ProofData is the calldata-friendly view of a groth16 proof, split into the
// A/B/C points and the commitment section the Solidity verifier expects.
type ProofData struct {
	Proof         []HexBytes `json:"proof"`
	Commitments   []HexBytes `json:"commitments"`
	CommitmentPok []HexBytes `json:"commitmentPok"`
}

// CreateProofData slices a MarshalSolidity proof blob: 8 field elements for
// A, B, C, then a 4-byte commitment count, then 2 commitment points and the
// proof of knowledge.
func CreateProofData(proofSolidity []byte) *ProofData {
	proof := make([]HexBytes, 8)
	for i := 0; i < len(proof); i++ {
		proof[i] = proofSolidity[i*bn254_fr.Bytes : (i+1)*bn254_fr.Bytes]
	}

	startIdx0 := 8*bn254_fr.Bytes + 4
	commitments := make([]HexBytes, 4)
	for i := 0; i < len(commitments); i++ {
		startIdx := startIdx0 + (i * bn254_fr.Bytes)
		commitments[i] = proofSolidity[startIdx : startIdx+bn254_fr.Bytes]
	}

	return &ProofData{
		Proof:         proof,
		Commitments:   commitments[0:2],
		CommitmentPok: commitments[2:4],
	}
}
