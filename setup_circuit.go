package main

import (
	"bytes"
	"crypto/sha256"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/solidity"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/logger"

	circuit "github.com/kysee/zk-bls-stages/circuits"
	"github.com/kysee/zk-bls-stages/stages"
)

const rootDir = "."

func main() {
	for _, id := range []stages.StageID{stages.StageA, stages.StageB, stages.StageC} {
		_, _, vk, err := SetupStage(id)
		if err != nil {
			println("error", err.Error())
			return
		}
		if err := CreateSolidity(id, vk); err != nil {
			println("error", err.Error())
			return
		}
	}
}

// SetupStage compiles one stage circuit and generates its groth16 keys,
// saving everything under .build/.
func SetupStage(id stages.StageID) (constraint.ConstraintSystem, groth16.ProvingKey, groth16.VerifyingKey, error) {
	logger.Disable()

	name, err := circuit.ArtifactName(id)
	if err != nil {
		return nil, nil, nil, err
	}
	_ = os.MkdirAll(filepath.Join(rootDir, ".build"), 0755)
	ccsPath := filepath.Join(rootDir, ".build", name+".ccs")
	pkPath := filepath.Join(rootDir, ".build", name+".pk")
	vkPath := filepath.Join(rootDir, ".build", name+".vk")

	blank, err := circuit.CircuitFor(id)
	if err != nil {
		return nil, nil, nil, err
	}

	//
	// Step 1: Compile circuit and save to file
	println("🕧 Compile", name, "...")
	// Compile with BN254 scalar field (for emulated BLS12-381)
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, blank)
	if err != nil {
		return nil, nil, nil, err
	}

	println("Constraint system saving to", ccsPath, "...")
	fccs, _ := os.Create(ccsPath)
	defer fccs.Close()
	_, err = ccs.WriteTo(fccs)
	if err != nil {
		return nil, nil, nil, err
	}
	println("constraints:", ccs.GetNbConstraints(), "public inputs:", ccs.GetNbPublicVariables())
	println("✅ Compile complete")

	//
	// Step 2: Setup (generate proving and verifying keys)
	println("🕧 Generating proving and verifying keys...")
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, nil, err
	}

	println("Proving key saving to", pkPath, "...")
	fpk, _ := os.Create(pkPath)
	defer fpk.Close()
	_, err = pk.WriteTo(fpk)
	if err != nil {
		return nil, nil, nil, err
	}

	println("Verifying key saving to", vkPath, "...")
	fvk, _ := os.Create(vkPath)
	defer fvk.Close()
	_, err = vk.WriteTo(fvk)
	if err != nil {
		return nil, nil, nil, err
	}
	println("✅ Setup complete")

	return ccs, pk, vk, nil
}

// CreateSolidity exports the on-chain verifier contract for one stage.
func CreateSolidity(id stages.StageID, vk groth16.VerifyingKey) error {
	name, err := circuit.ArtifactName(id)
	if err != nil {
		return err
	}
	_ = os.MkdirAll("verifiers/contracts", 0755)
	path := filepath.Join("verifiers/contracts", name+"Verifier.sol")

	var buf bytes.Buffer
	err = vk.ExportSolidity(&buf, solidity.WithHashToFieldFunction(sha256.New()))
	if err != nil {
		return err
	}

	err = os.WriteFile(path, buf.Bytes(), 0644)
	if err != nil {
		return err
	}

	println("✅ Solidity verifier generated to", path)
	return nil
}
