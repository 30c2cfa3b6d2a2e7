package stages

import (
	"fmt"

	"github.com/kysee/zk-bls-stages/bls"
	"github.com/kysee/zk-bls-stages/types"
)

// Status is the lifecycle of one verification run.
type Status int

const (
	Pending Status = iota
	StageADone
	StageBDone
	Accepted
	Rejected
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case StageADone:
		return "stage-a-done"
	case StageBDone:
		return "stage-b-done"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Pipeline drives one message/committee/signature triple through the three
// stages in strict order. A run is single-use: once Accepted or Rejected it
// never transitions again, and independent runs share no state.
type Pipeline struct {
	msg       [32]byte
	committee *types.Committee
	sig       bls.G2Point

	status Status
	outA   *StageAOutput
	outB   *StageBOutput
	outC   *StageCOutput
	err    error
}

func NewPipeline(msg [32]byte, committee *types.Committee, sig bls.G2Point) *Pipeline {
	return &Pipeline{
		msg:       msg,
		committee: committee,
		sig:       sig,
		status:    Pending,
	}
}

func (p *Pipeline) Status() Status { return p.status }

// Err returns the failure that drove the run to Rejected, if any.
func (p *Pipeline) Err() error { return p.err }

// Records returns the published records of the completed stages; entries for
// stages that have not run are nil.
func (p *Pipeline) Records() (a, b, c Record) {
	if p.outA != nil {
		a = p.outA.Record
	}
	if p.outB != nil {
		b = p.outB.Record
	}
	if p.outC != nil {
		c = p.outC.Record
	}
	return a, b, c
}

func (p *Pipeline) reject(err error) error {
	p.status = Rejected
	p.err = err
	return err
}

// StepA runs the first stage. Valid only from Pending.
func (p *Pipeline) StepA() error {
	if p.status != Pending {
		return fmt.Errorf("stage A not runnable from status %s", p.status)
	}
	out, err := RunStageA(p.msg, p.committee)
	if err != nil {
		return p.reject(fmt.Errorf("stage A: %w", err))
	}
	p.outA = out
	p.status = StageADone
	return nil
}

// StepB runs the second stage against stage A's record. Valid only from
// StageADone.
func (p *Pipeline) StepB() error {
	if p.status != StageADone {
		return fmt.Errorf("stage B not runnable from status %s", p.status)
	}
	out, err := RunStageB(p.outA.Record, p.sig)
	if err != nil {
		return p.reject(fmt.Errorf("stage B: %w", err))
	}
	p.outB = out
	p.status = StageBDone
	return nil
}

// StepC runs the final stage and settles the run: Accepted iff the pairing
// equation holds. Valid only from StageBDone.
func (p *Pipeline) StepC() error {
	if p.status != StageBDone {
		return fmt.Errorf("stage C not runnable from status %s", p.status)
	}
	out, err := RunStageC(p.outB.Record)
	if err != nil {
		return p.reject(fmt.Errorf("stage C: %w", err))
	}
	p.outC = out
	if !out.Accepted {
		return p.reject(fmt.Errorf("pairing equation does not hold"))
	}
	p.status = Accepted
	return nil
}

// Run executes all three stages in order, stopping at the first failure.
// There is no partial acceptance: the result is Accepted or Rejected.
func (p *Pipeline) Run() error {
	if err := p.StepA(); err != nil {
		return err
	}
	if err := p.StepB(); err != nil {
		return err
	}
	return p.StepC()
}
