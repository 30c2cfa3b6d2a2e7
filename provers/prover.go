package prover

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/rs/zerolog"

	"github.com/kysee/zk-bls-stages/bls"
	circuit "github.com/kysee/zk-bls-stages/circuits"
	cfgtypes "github.com/kysee/zk-bls-stages/provers/types"
	"github.com/kysee/zk-bls-stages/stages"
	"github.com/kysee/zk-bls-stages/types"
	"github.com/kysee/zk-bls-stages/verifiers"
)

// ProverMain is the CLI entry point: load the input, run the native
// pipeline, prove each stage and write the bundle.
func ProverMain(config *cfgtypes.Config) {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var fetcher cfgtypes.Fetcher
	if config.InputURL != "" {
		fetcher = NewAPIFetcher(config.InputURL)
	} else {
		fetcher = NewFileFetcher(config.InputPath)
	}

	p, err := NewPipelineProver(config, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load stage provers")
	}

	in, err := fetcher.Input()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to fetch input")
	}

	bundle, err := p.ProveInput(in)
	if err != nil {
		log.Fatal().Err(err).Msg("proving failed")
	}

	if err := SaveBundle(config.OutputDir, bundle); err != nil {
		log.Fatal().Err(err).Msg("failed to save bundle")
	}
	log.Info().Str("dir", config.OutputDir).Msg("proof bundle saved")
}

// StageProver holds one stage's compiled circuit and proving key.
type StageProver struct {
	id  stages.StageID
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
}

// LoadStageProver reads a stage's compiled circuit and proving key from
// rootDir/.build/.
func LoadStageProver(rootDir string, id stages.StageID) (*StageProver, error) {
	name, err := circuit.ArtifactName(id)
	if err != nil {
		return nil, err
	}
	ccsPath := filepath.Join(rootDir, ".build", name+".ccs")
	pkPath := filepath.Join(rootDir, ".build", name+".pk")

	fCcs, err := os.Open(ccsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CCS file: %w", err)
	}
	ccs := groth16.NewCS(ecc.BN254)
	_, err = ccs.ReadFrom(fCcs)
	_ = fCcs.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read CCS: %w", err)
	}

	fpk, err := os.Open(pkPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PK file: %w", err)
	}
	pk := groth16.NewProvingKey(ecc.BN254)
	_, err = pk.ReadFrom(fpk)
	_ = fpk.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read PK: %w", err)
	}

	return &StageProver{id: id, ccs: ccs, pk: pk}, nil
}

// Prove generates a groth16 proof for the given full assignment.
func (sp *StageProver) Prove(assignment frontend.Circuit) (groth16.Proof, error) {
	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("failed to create witness: %w", err)
	}
	proof, err := groth16.Prove(sp.ccs, sp.pk, fullWitness,
		backend.WithProverHashToFieldFunction(sha256.New()))
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}
	return proof, nil
}

// PipelineProver runs the native stage pipeline and proves each stage
// against its published record.
type PipelineProver struct {
	config  *cfgtypes.Config
	log     zerolog.Logger
	provers [3]*StageProver
}

func NewPipelineProver(config *cfgtypes.Config, log zerolog.Logger) (*PipelineProver, error) {
	p := &PipelineProver{config: config, log: log}
	for _, id := range []stages.StageID{stages.StageA, stages.StageB, stages.StageC} {
		sp, err := LoadStageProver(config.RootDir, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		p.provers[id] = sp
		p.log.Info().Str("stage", id.String()).Int("constraints", sp.ccs.GetNbConstraints()).Msg("stage circuit loaded")
	}
	return p, nil
}

// ProveInput decodes a verification input and proves the full run.
func (p *PipelineProver) ProveInput(in *types.VerifyInput) (*verifiers.Bundle, error) {
	msg, err := in.Message()
	if err != nil {
		return nil, err
	}
	committee, err := in.Committee()
	if err != nil {
		return nil, err
	}
	sig, err := in.SignaturePoint()
	if err != nil {
		return nil, err
	}
	return p.Prove(msg, committee, sig)
}

// Prove runs the native pipeline to produce the three records, then proves
// each stage. The native run must accept; there is no point proving a
// rejected run.
func (p *PipelineProver) Prove(msg [32]byte, committee *types.Committee, sig bls.G2Point) (*verifiers.Bundle, error) {
	pipeline := stages.NewPipeline(msg, committee, sig)
	if err := pipeline.Run(); err != nil {
		return nil, fmt.Errorf("native pipeline rejected the run: %w", err)
	}
	recA, recB, recC := pipeline.Records()

	bundle := &verifiers.Bundle{
		Records: [3]stages.Record{recA, recB, recC},
	}

	wA, err := StageAAssignment(msg, committee, recA)
	if err != nil {
		return nil, err
	}
	p.log.Info().Str("stage", stages.StageA.String()).Msg("proving")
	if bundle.Proofs[stages.StageA], err = p.provers[stages.StageA].Prove(wA); err != nil {
		return nil, fmt.Errorf("%s: %w", stages.StageA, err)
	}

	wB, err := StageBAssignment(sig, recB)
	if err != nil {
		return nil, err
	}
	p.log.Info().Str("stage", stages.StageB.String()).Msg("proving")
	if bundle.Proofs[stages.StageB], err = p.provers[stages.StageB].Prove(wB); err != nil {
		return nil, fmt.Errorf("%s: %w", stages.StageB, err)
	}

	wC, err := StageCAssignment(recC)
	if err != nil {
		return nil, err
	}
	p.log.Info().Str("stage", stages.StageC.String()).Msg("proving")
	if bundle.Proofs[stages.StageC], err = p.provers[stages.StageC].Prove(wC); err != nil {
		return nil, fmt.Errorf("%s: %w", stages.StageC, err)
	}

	return bundle, nil
}

// SaveBundle writes each stage proof (binary and calldata JSON) and the
// records under dir.
func SaveBundle(dir string, bundle *verifiers.Bundle) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	records := make(map[string][]string, 3)
	for _, id := range []stages.StageID{stages.StageA, stages.StageB, stages.StageC} {
		name, err := circuit.ArtifactName(id)
		if err != nil {
			return err
		}

		f, err := os.Create(filepath.Join(dir, name+".proof"))
		if err != nil {
			return err
		}
		_, err = bundle.Proofs[id].WriteTo(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("failed to write proof %s: %w", name, err)
		}

		if sp, ok := bundle.Proofs[id].(interface{ MarshalSolidity() []byte }); ok {
			proofData := types.CreateProofData(sp.MarshalSolidity())
			jsonBlob, err := json.MarshalIndent(proofData, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal proof data: %w", err)
			}
			if err := os.WriteFile(filepath.Join(dir, name+".calldata.json"), jsonBlob, 0644); err != nil {
				return err
			}
		}

		values := make([]string, len(bundle.Records[id]))
		for i, v := range bundle.Records[id] {
			values[i] = v.String()
		}
		records[id.String()] = values
	}

	jsonBlob, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "records.json"), jsonBlob, 0644)
}
