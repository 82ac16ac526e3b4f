package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/tonkeeper/tongo/ton"
)

// WinnerPicker selects the winning index within [0, activeCount) at
// settlement time. It is an injectable strategy: the default HashPicker is
// deterministic and predictable by anyone who can observe its inputs, which
// is acceptable only while no caller has an economic incentive to steer the
// outcome. Production deployments should install a picker backed by a
// verifiable randomness source.
type WinnerPicker interface {
	Pick(caller ton.AccountID, now time.Time, entropy []byte, activeCount int) int
}

// HashPicker reduces SHA-256(caller, time, entropy) modulo the active
// entrant count.
type HashPicker struct{}

func (HashPicker) Pick(caller ton.AccountID, now time.Time, entropy []byte, activeCount int) int {
	if activeCount <= 0 {
		return 0
	}

	digest := sha256.New()

	var workchain [4]byte
	binary.BigEndian.PutUint32(workchain[:], uint32(caller.Workchain))
	digest.Write(workchain[:])
	digest.Write(caller.Address[:])

	var unix [8]byte
	binary.BigEndian.PutUint64(unix[:], uint64(now.Unix()))
	digest.Write(unix[:])

	digest.Write(entropy)

	sum := digest.Sum(nil)
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(activeCount))
}
