package stages

import (
	"crypto/subtle"
	"fmt"

	"github.com/kysee/zk-bls-stages/bls"
)

// ChainLink declares that a segment of one stage's record must equal a
// segment of the next stage's record. Links are fixed at design time; they
// are the only coupling between stages.
type ChainLink struct {
	Name    string
	From    StageID
	To      StageID
	FromOff int
	ToOff   int
	Len     int
}

// Links is the full chain of the three-stage split:
// the message point and aggregate key flow from stage A into stage B, and
// the Miller output flows from stage B into stage C.
func Links() []ChainLink {
	return []ChainLink{
		{Name: "message-point", From: StageA, To: StageB, FromOff: AOffHm, ToOff: BOffHm, Len: bls.G2Limbs},
		{Name: "aggregate-key", From: StageA, To: StageB, FromOff: AOffAggKey, ToOff: BOffAggKey, Len: bls.G1Limbs},
		{Name: "pairing-intermediate", From: StageB, To: StageC, FromOff: BOffMiller, ToOff: COffMiller, Len: bls.GTLimbs},
	}
}

// Check compares the linked segments by their SHA256 digests, the same
// equality the composition verifier uses on-chain-shaped inputs.
func (l ChainLink) Check(from, to Record) error {
	hFrom, err := from.HashSlice(l.FromOff, l.Len)
	if err != nil {
		return fmt.Errorf("link %q, %s side: %w", l.Name, l.From, err)
	}
	hTo, err := to.HashSlice(l.ToOff, l.Len)
	if err != nil {
		return fmt.Errorf("link %q, %s side: %w", l.Name, l.To, err)
	}
	if subtle.ConstantTimeCompare(hFrom[:], hTo[:]) != 1 {
		return fmt.Errorf("%w: link %q (%s[%d:%d] vs %s[%d:%d])",
			ErrChainMismatch, l.Name,
			l.From, l.FromOff, l.FromOff+l.Len,
			l.To, l.ToOff, l.ToOff+l.Len)
	}
	return nil
}

// CheckDirect compares the linked segments value by value. Used as the
// differential oracle for the hash-based equality.
func (l ChainLink) CheckDirect(from, to Record) error {
	sFrom, err := from.Slice(l.FromOff, l.Len)
	if err != nil {
		return fmt.Errorf("link %q, %s side: %w", l.Name, l.From, err)
	}
	sTo, err := to.Slice(l.ToOff, l.Len)
	if err != nil {
		return fmt.Errorf("link %q, %s side: %w", l.Name, l.To, err)
	}
	for i := range sFrom {
		if sFrom[i] == nil || sTo[i] == nil || sFrom[i].Cmp(sTo[i]) != 0 {
			return fmt.Errorf("%w: link %q at value %d", ErrChainMismatch, l.Name, i)
		}
	}
	return nil
}
