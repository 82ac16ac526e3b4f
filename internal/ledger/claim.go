package ledger

import (
	"math/big"

	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"ledger/internal/events"
	"ledger/internal/logger"
)

// Claim transfers the caller's credited prize balance. The credit is zeroed
// before the treasury call and restored when the transfer fails, so one
// claim pays out at most once regardless of recipient behavior.
func (l *Ledger) Claim(caller ton.AccountID) error {
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()

	credit := l.owed[caller]
	if credit == nil || credit.Sign() == 0 {
		return ErrNothingToClaim
	}

	delete(l.owed, caller)

	if err := l.treasury.Transfer(caller, new(big.Int).Set(credit)); err != nil {
		l.owed[caller] = credit
		return wrapTransferFailed(err)
	}

	l.bus.Emit(events.TopicPrizeClaimed, events.PrizeClaimed{
		Winner: caller,
		Amount: new(big.Int).Set(credit),
	})

	logger.Info("prize claimed",
		zap.String("winner", caller.ToRaw()),
		zap.String("amount", credit.String()),
	)
	return nil
}

// WithdrawFees pays the whole fee accumulator to the fee recipient, who is
// also the only caller allowed to trigger it. Success depends on the
// accumulator alone, never on an exact treasury balance comparison: forcing
// stray value into the treasury must not block withdrawal.
func (l *Ledger) WithdrawFees(caller ton.AccountID) error {
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()

	if caller != l.feeRecipient {
		return ErrUnauthorized
	}
	if l.fees.Sign() == 0 {
		return ErrNothingToWithdraw
	}

	amount := l.fees
	l.fees = new(big.Int)

	if err := l.treasury.Transfer(l.feeRecipient, new(big.Int).Set(amount)); err != nil {
		l.fees = amount
		return wrapTransferFailed(err)
	}

	l.bus.Emit(events.TopicFeesWithdrawn, events.FeesWithdrawn{
		Recipient: l.feeRecipient,
		Amount:    new(big.Int).Set(amount),
	})

	logger.Info("fees withdrawn",
		zap.String("recipient", l.feeRecipient.ToRaw()),
		zap.String("amount", amount.String()),
	)
	return nil
}
