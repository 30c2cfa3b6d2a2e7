package stages

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/kysee/zk-bls-stages/bls"
	"github.com/kysee/zk-bls-stages/types"
)

// FineState threads the intermediates of the eight-step fine split. Each
// step is small enough to prove (or execute) under a tight memory bound;
// the mathematical content is identical to the three-stage split.
type FineState struct {
	Msg       [32]byte
	Committee *types.Committee
	Sig       bls.G2Point

	fieldElems [2]bls12381.E2
	mapped     [2]bls.IsogenousPoint
	summed     bls.G2Point
	cofactor   bls.CofactorState
	hm         bls.G2Point
	aggKey     bls.G1Point
	count      int
	miller     bls12381.GT
	easy       bls12381.GT
	final      bls12381.GT
	done       bool
}

// FineStep is one unit of the fine split.
type FineStep struct {
	Name string
	Run  func(*FineState) error
}

// FineSteps returns the eight-step decomposition in execution order:
// hash-to-field plus SWU, isogeny plus point addition, the two cofactor
// halves, aggregation, the Miller loop, and the two final-exponentiation
// halves.
func FineSteps() []FineStep {
	return []FineStep{
		{"hash-to-field-and-map", fineHashAndMap},
		{"isogeny-and-sum", fineIsogenyAndSum},
		{"cofactor-first-half", fineCofactorFirst},
		{"cofactor-second-half", fineCofactorSecond},
		{"aggregate", fineAggregate},
		{"miller-loop", fineMillerLoop},
		{"final-exp-easy", fineFinalExpEasy},
		{"final-exp-hard", fineFinalExpHard},
	}
}

func fineHashAndMap(s *FineState) error {
	u, err := bls.HashToFieldElements(s.Msg[:], []byte(bls.DomainSeparationTag))
	if err != nil {
		return err
	}
	s.fieldElems = u
	s.mapped[0] = bls.MapToIsogenousCurve(&u[0])
	s.mapped[1] = bls.MapToIsogenousCurve(&u[1])
	return nil
}

func fineIsogenyAndSum(s *FineState) error {
	q0 := bls.ApplyIsogeny(s.mapped[0])
	q1 := bls.ApplyIsogeny(s.mapped[1])
	s.summed = q0.Add(q1)
	return nil
}

func fineCofactorFirst(s *FineState) error {
	s.cofactor = bls.ClearCofactorFirstHalf(s.summed)
	return nil
}

func fineCofactorSecond(s *FineState) error {
	s.hm = bls.ClearCofactorSecondHalf(s.cofactor)
	if s.hm.IsInfinity() {
		return fmt.Errorf("hash-to-curve produced the identity")
	}
	return nil
}

func fineAggregate(s *FineState) error {
	aggKey, count, err := s.Committee.Aggregate()
	if err != nil {
		return err
	}
	if aggKey.IsInfinity() {
		return fmt.Errorf("aggregate public key is the identity")
	}
	s.aggKey = aggKey
	s.count = count
	return nil
}

func fineMillerLoop(s *FineState) error {
	miller, err := bls.MillerLoopPairs(s.aggKey, s.hm, s.Sig)
	if err != nil {
		return err
	}
	s.miller = miller
	return nil
}

func fineFinalExpEasy(s *FineState) error {
	s.easy = bls.FinalExpEasyPart(&s.miller)
	return nil
}

func fineFinalExpHard(s *FineState) error {
	s.final = bls.FinalExpHardPart(&s.easy)
	s.done = true
	return nil
}

// Accepted reports the verdict after all steps have run.
func (s *FineState) Accepted() bool {
	return s.done && bls.IsGTOne(&s.final)
}

// RunFine executes the full eight-step split sequentially.
func RunFine(msg [32]byte, committee *types.Committee, sig bls.G2Point) (bool, error) {
	state := &FineState{Msg: msg, Committee: committee, Sig: sig}
	for _, step := range FineSteps() {
		if err := step.Run(state); err != nil {
			return false, fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	return state.Accepted(), nil
}
