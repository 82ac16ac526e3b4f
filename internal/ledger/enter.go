package ledger

import (
	"math/big"

	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"ledger/internal/events"
	"ledger/internal/logger"
)

// Enter appends participants to the registry in the given order. The paid
// value must equal the entrance fee times the participant count, every
// identifier must be non-zero, and none may already hold an active slot in
// the current round. Validation runs before any mutation, so a failed call
// leaves no trace.
func (l *Ledger) Enter(participants []ton.AccountID, paid *big.Int) error {
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()

	if len(participants) == 0 {
		return ErrEmptyEntry
	}

	expected := new(big.Int).Mul(l.entranceFee, big.NewInt(int64(len(participants))))
	if paid == nil || paid.Cmp(expected) != 0 {
		return ErrIncorrectPayment
	}

	seen := make(map[ton.AccountID]struct{}, len(participants))
	for _, participant := range participants {
		if participant == noAccount {
			return ErrInvalidAddress
		}
		if l.isActive(participant) {
			return wrapDuplicateEntrant(participant.ToRaw())
		}
		if _, duplicate := seen[participant]; duplicate {
			return wrapDuplicateEntrant(participant.ToRaw())
		}
		seen[participant] = struct{}{}
	}

	l.registry = append(l.registry, participants...)
	for _, participant := range participants {
		l.member[participant] = l.round
	}
	l.active += len(participants)

	entered := make([]ton.AccountID, len(participants))
	copy(entered, participants)
	l.bus.Emit(events.TopicEntered, events.Entered{Participants: entered})

	logger.Info("entrants registered",
		zap.Uint64("round", l.round),
		zap.Int("count", len(participants)),
		zap.Int("registry_length", len(l.registry)),
	)
	return nil
}
