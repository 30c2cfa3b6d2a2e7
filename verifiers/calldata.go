package verifiers

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/kysee/zk-bls-stages/stages"
	"github.com/kysee/zk-bls-stages/types"
)

// Calldata builders for the on-chain composition verifier. The contract
// takes dynamic uint256 arrays so one entry point serves all record
// layouts; the exported per-stage verifier contracts consume the same proof
// words.
const (
	stageCallSig       = "verifyStage(uint8,uint256[],uint256[],uint256[],uint256[])"
	compositionCallSig = "verifyAll(uint256[][],uint256[][],uint256[][],uint256[][])"
)

var uint256Array, uint256Matrix, uint8Type = mustABITypes()

func mustABITypes() (abi.Type, abi.Type, abi.Type) {
	arr, err := abi.NewType("uint256[]", "", nil)
	if err != nil {
		panic(err)
	}
	mat, err := abi.NewType("uint256[][]", "", nil)
	if err != nil {
		panic(err)
	}
	u8, err := abi.NewType("uint8", "", nil)
	if err != nil {
		panic(err)
	}
	return arr, mat, u8
}

// proofWords splits a groth16 proof into its Solidity word groups: the 8
// A/B/C words, the 2 commitment words and the 2 proof-of-knowledge words.
func proofWords(proof groth16.Proof) (proofW, commitW, pokW []*big.Int, err error) {
	sp, ok := proof.(interface{ MarshalSolidity() []byte })
	if !ok {
		return nil, nil, nil, fmt.Errorf("proof does not implement MarshalSolidity()")
	}
	pd := types.CreateProofData(sp.MarshalSolidity())
	return hexWords(pd.Proof), hexWords(pd.Commitments), hexWords(pd.CommitmentPok), nil
}

func hexWords(words []types.HexBytes) []*big.Int {
	out := make([]*big.Int, len(words))
	for i, w := range words {
		out[i] = new(big.Int).SetBytes(w)
	}
	return out
}

func recordWords(record stages.Record) []*big.Int {
	out := make([]*big.Int, len(record))
	for i, v := range record {
		out[i] = new(big.Int).Set(v)
	}
	return out
}

// StageCalldata packs one stage's proof and public record into a
// verifyStage call.
func StageCalldata(id stages.StageID, proof groth16.Proof, record stages.Record) ([]byte, error) {
	if err := record.CheckShape(id); err != nil {
		return nil, err
	}
	proofW, commitW, pokW, err := proofWords(proof)
	if err != nil {
		return nil, err
	}

	args := abi.Arguments{
		{Name: "stage", Type: uint8Type},
		{Name: "proof", Type: uint256Array},
		{Name: "commitments", Type: uint256Array},
		{Name: "commitmentPok", Type: uint256Array},
		{Name: "input", Type: uint256Array},
	}
	packed, err := args.Pack(uint8(id), proofW, commitW, pokW, recordWords(record))
	if err != nil {
		return nil, fmt.Errorf("abi packing failed: %w", err)
	}

	selector := crypto.Keccak256([]byte(stageCallSig))[:4]
	return append(selector, packed...), nil
}

// CompositionCalldata packs the full bundle into one verifyAll call: four
// parallel matrices (proofs, commitments, proofs of knowledge, records)
// indexed by stage.
func CompositionCalldata(b *Bundle) ([]byte, error) {
	var proofs, commits, poks, records [][]*big.Int
	for _, id := range []stages.StageID{stages.StageA, stages.StageB, stages.StageC} {
		if err := b.Records[id].CheckShape(id); err != nil {
			return nil, err
		}
		proofW, commitW, pokW, err := proofWords(b.Proofs[id])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		proofs = append(proofs, proofW)
		commits = append(commits, commitW)
		poks = append(poks, pokW)
		records = append(records, recordWords(b.Records[id]))
	}

	args := abi.Arguments{
		{Name: "proofs", Type: uint256Matrix},
		{Name: "commitments", Type: uint256Matrix},
		{Name: "commitmentPoks", Type: uint256Matrix},
		{Name: "inputs", Type: uint256Matrix},
	}
	packed, err := args.Pack(proofs, commits, poks, records)
	if err != nil {
		return nil, fmt.Errorf("abi packing failed: %w", err)
	}

	selector := crypto.Keccak256([]byte(compositionCallSig))[:4]
	return append(selector, packed...), nil
}
