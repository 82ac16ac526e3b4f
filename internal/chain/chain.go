package chain

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/tonkeeper/tongo/ton"
)

// Treasury is the external value-transfer capability. A non-nil error means
// no value moved; callers must treat it as a hard failure of the enclosing
// operation.
type Treasury interface {
	Transfer(to ton.AccountID, amount *big.Int) error
}

// Clock supplies the monotonic wall-clock reading used for deadline
// comparisons. It is never a randomness source.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a hand-driven Clock for tests and simulations.
type ManualClock struct {
	now time.Time
}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() time.Time {
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// EntropySource models the chain-supplied entropy value mixed into winner
// selection.
type EntropySource interface {
	Seed() []byte
}

// RandomEntropy draws a fresh seed from the operating system.
type RandomEntropy struct{}

func (RandomEntropy) Seed() []byte {
	seed := make([]byte, 32)
	_, _ = rand.Read(seed)
	return seed
}

// FixedEntropy always returns the same seed, which makes settlement
// reproducible in tests.
type FixedEntropy []byte

func (e FixedEntropy) Seed() []byte {
	return []byte(e)
}
