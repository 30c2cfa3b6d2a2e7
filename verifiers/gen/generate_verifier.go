package main

import (
	"bytes"
	"crypto/sha256"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/solidity"

	circuit "github.com/kysee/zk-bls-stages/circuits"
	"github.com/kysee/zk-bls-stages/stages"
)

func main() {
	if err := os.MkdirAll("contracts", 0755); err != nil {
		panic(err)
	}

	for _, id := range []stages.StageID{stages.StageA, stages.StageB, stages.StageC} {
		name, err := circuit.ArtifactName(id)
		if err != nil {
			panic(err)
		}

		// Read the verifying key from file (to ensure consistency with proving key)
		vkFile, err := os.Open(filepath.Join("../.build", name+".vk"))
		if err != nil {
			panic(err)
		}

		vk := groth16.NewVerifyingKey(ecc.BN254)
		_, err = vk.ReadFrom(vkFile)
		_ = vkFile.Close()
		if err != nil {
			panic(err)
		}

		var buf bytes.Buffer
		err = vk.ExportSolidity(&buf, solidity.WithHashToFieldFunction(sha256.New()))
		if err != nil {
			panic(err)
		}

		outPath := filepath.Join("contracts", name+"Verifier.sol")
		err = os.WriteFile(outPath, buf.Bytes(), 0644)
		if err != nil {
			panic(err)
		}
		println("✅ Solidity verifier generated:", outPath)
	}
}
