package ledger

import (
	"math/big"

	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"ledger/internal/events"
	"ledger/internal/logger"
)

// Refund returns the entrance fee for the caller's slot at entrantIndex.
//
// The slot is cleared and the membership released before the treasury is
// invoked. A recipient re-entering the ledger from inside the transfer
// therefore observes the slot as already refunded (and is stopped by the
// busy guard anyway). A failed transfer restores the slot exactly.
func (l *Ledger) Refund(caller ton.AccountID, entrantIndex int) error {
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()

	if entrantIndex < 0 || entrantIndex >= len(l.registry) {
		return ErrInvalidIndex
	}

	slot := l.registry[entrantIndex]
	if slot == noAccount {
		return ErrAlreadyRefunded
	}
	if slot != caller {
		return ErrUnauthorized
	}

	// effects strictly before the external transfer
	l.registry[entrantIndex] = noAccount
	delete(l.member, caller)
	l.active--

	if err := l.treasury.Transfer(caller, new(big.Int).Set(l.entranceFee)); err != nil {
		l.registry[entrantIndex] = slot
		l.member[caller] = l.round
		l.active++
		return wrapTransferFailed(err)
	}

	l.bus.Emit(events.TopicRefunded, events.Refunded{Entrant: caller})

	logger.Info("entrant refunded",
		zap.Uint64("round", l.round),
		zap.Int("entrant_index", entrantIndex),
		zap.String("entrant", caller.ToRaw()),
	)
	return nil
}
