package ledger

import (
	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"ledger/internal/events"
	"ledger/internal/logger"
)

// ChangeFeeRecipient replaces the fee recipient. Admin only; the new
// recipient must not be the zero account.
func (l *Ledger) ChangeFeeRecipient(caller ton.AccountID, newRecipient ton.AccountID) error {
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()

	if caller != l.admin {
		return ErrUnauthorized
	}
	if newRecipient == noAccount {
		return ErrInvalidAddress
	}

	previous := l.feeRecipient
	l.feeRecipient = newRecipient

	logger.Info("fee recipient changed",
		zap.String("previous", previous.ToRaw()),
		zap.String("recipient", newRecipient.ToRaw()),
	)
	return nil
}

// ProposeFeeRates stages a fee rate change. The change takes effect only
// after ConfirmFeeRates succeeds, which cannot happen before the configured
// delay has elapsed. A new proposal replaces any pending one.
func (l *Ledger) ProposeFeeRates(caller ton.AccountID, buyRateBps uint64, sellRateBps uint64) error {
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()

	if caller != l.admin {
		return ErrUnauthorized
	}
	if buyRateBps > MaxFeeRateBps || sellRateBps > MaxFeeRateBps {
		return ErrFeeRateOutOfRange
	}

	l.pending = &rateProposal{
		buyRateBps:  buyRateBps,
		sellRateBps: sellRateBps,
		notBefore:   l.clock.Now().Add(l.rateChangeDelay),
	}

	logger.Info("fee rates proposed",
		zap.Uint64("buy_rate_bps", buyRateBps),
		zap.Uint64("sell_rate_bps", sellRateBps),
		zap.Time("not_before", l.pending.notBefore),
	)
	return nil
}

// ConfirmFeeRates applies the pending proposal once its delay has elapsed.
func (l *Ledger) ConfirmFeeRates(caller ton.AccountID) error {
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()

	if caller != l.admin {
		return ErrUnauthorized
	}
	if l.pending == nil {
		return ErrNoPendingProposal
	}
	if l.clock.Now().Before(l.pending.notBefore) {
		return ErrProposalNotReady
	}

	l.buyRateBps = l.pending.buyRateBps
	l.sellRateBps = l.pending.sellRateBps
	l.pending = nil

	l.bus.Emit(events.TopicFeeRateChanged, events.FeeRateChanged{
		BuyRate:  l.buyRateBps,
		SellRate: l.sellRateBps,
	})

	logger.Info("fee rates changed",
		zap.Uint64("buy_rate_bps", l.buyRateBps),
		zap.Uint64("sell_rate_bps", l.sellRateBps),
	)
	return nil
}
