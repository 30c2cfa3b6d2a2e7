package verifiers

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	circuit "github.com/kysee/zk-bls-stages/circuits"
	"github.com/kysee/zk-bls-stages/stages"
)

// ErrProofVerification marks a stage proof that failed to verify against its
// public record.
var ErrProofVerification = errors.New("stage proof verification failed")

// Bundle is the composition input: one proof and one public record per
// stage, indexed by stage ID.
type Bundle struct {
	Proofs  [3]groth16.Proof
	Records [3]stages.Record
}

// ProofVerifier checks a single stage proof against its public record. The
// proving system is an opaque primitive behind this interface.
type ProofVerifier interface {
	Verify(id stages.StageID, proof groth16.Proof, record stages.Record) error
}

// Composer is the composition verifier: it accepts a run iff every stage
// proof verifies and every chain link holds. There is no partial acceptance.
type Composer struct {
	verifier ProofVerifier
	links    []stages.ChainLink
}

func NewComposer(v ProofVerifier) *Composer {
	return &Composer{
		verifier: v,
		links:    stages.Links(),
	}
}

// VerifyAll checks the bundle in three passes, aborting on the first
// failure: record shapes, then stage proofs, then chain links. Shape checks
// run first so no hash or pairing work happens on malformed records.
func (c *Composer) VerifyAll(b *Bundle) error {
	for _, id := range []stages.StageID{stages.StageA, stages.StageB, stages.StageC} {
		if err := b.Records[id].CheckShape(id); err != nil {
			return err
		}
	}

	for _, id := range []stages.StageID{stages.StageA, stages.StageB, stages.StageC} {
		if b.Proofs[id] == nil {
			return fmt.Errorf("%w: %s: missing proof", ErrProofVerification, id)
		}
		if err := c.verifier.Verify(id, b.Proofs[id], b.Records[id]); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrProofVerification, id, err)
		}
	}

	for _, link := range c.links {
		if err := link.Check(b.Records[link.From], b.Records[link.To]); err != nil {
			return err
		}
	}

	return nil
}

// Groth16Verifier verifies stage proofs against fixed verifying keys.
type Groth16Verifier struct {
	vks [3]groth16.VerifyingKey
}

func NewGroth16Verifier(vkA, vkB, vkC groth16.VerifyingKey) *Groth16Verifier {
	return &Groth16Verifier{vks: [3]groth16.VerifyingKey{vkA, vkB, vkC}}
}

// LoadGroth16Verifier reads the three verifying keys from rootDir/.build/.
func LoadGroth16Verifier(rootDir string) (*Groth16Verifier, error) {
	var v Groth16Verifier
	for _, id := range []stages.StageID{stages.StageA, stages.StageB, stages.StageC} {
		name, err := circuit.ArtifactName(id)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(rootDir, ".build", name+".vk")
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open VK file: %w", err)
		}
		vk := groth16.NewVerifyingKey(ecc.BN254)
		_, err = vk.ReadFrom(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read VK %s: %w", name, err)
		}
		v.vks[id] = vk
	}
	return &v, nil
}

func (v *Groth16Verifier) Verify(id stages.StageID, proof groth16.Proof, record stages.Record) error {
	assignment, err := PublicAssignment(id, record)
	if err != nil {
		return err
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("failed to create public witness: %w", err)
	}
	return groth16.Verify(proof, v.vks[id], w,
		backend.WithVerifierHashToFieldFunction(sha256.New()))
}

// PublicAssignment shapes a record into the public part of the stage
// circuit's witness.
func PublicAssignment(id stages.StageID, record stages.Record) (frontend.Circuit, error) {
	if err := record.CheckShape(id); err != nil {
		return nil, err
	}
	switch id {
	case stages.StageA:
		c := &circuit.StageACircuit{}
		for i, v := range record {
			c.Record[i] = v
		}
		return c, nil
	case stages.StageB:
		c := &circuit.StageBCircuit{}
		for i, v := range record {
			c.Record[i] = v
		}
		return c, nil
	case stages.StageC:
		c := &circuit.StageCCircuit{}
		for i, v := range record {
			c.Record[i] = v
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown stage %d", int(id))
	}
}
