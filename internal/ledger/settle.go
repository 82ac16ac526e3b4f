package ledger

import (
	"math/big"

	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"ledger/internal/events"
	"ledger/internal/logger"
)

// Settle closes the current round once the deadline has passed and at least
// one active entrant remains. The winner's net prize is credited to an
// internal pull balance and paid out by Claim, so settlement never performs
// an external transfer and cannot be blocked by an uncooperative recipient.
//
// Fee split, using floor division at each step:
//
//	buyFee   = total × buyRateBps / 10000
//	sellFee  = (total − buyFee) × sellRateBps / 10000
//	netPrize = total − buyFee − sellFee
//
// The division remainders stay inside netPrize, so
// netPrize + buyFee + sellFee == total holds exactly.
func (l *Ledger) Settle(caller ton.AccountID) error {
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()

	now := l.clock.Now()
	if now.Before(l.deadline) {
		return ErrRoundNotOver
	}
	if l.active == 0 {
		return ErrNoEntrants
	}

	index := l.picker.Pick(caller, now, l.entropy.Seed(), l.active)
	if index < 0 || index >= l.active {
		index = 0
	}
	winner := l.nthActive(index)

	total := new(big.Int).Mul(l.entranceFee, big.NewInt(int64(l.active)))

	denominator := big.NewInt(FeeRateDenominator)
	buyFee := new(big.Int).Mul(total, new(big.Int).SetUint64(l.buyRateBps))
	buyFee.Quo(buyFee, denominator)

	afterBuy := new(big.Int).Sub(total, buyFee)
	sellFee := new(big.Int).Mul(afterBuy, new(big.Int).SetUint64(l.sellRateBps))
	sellFee.Quo(sellFee, denominator)

	netPrize := new(big.Int).Sub(afterBuy, sellFee)

	l.state = StateSettled

	l.fees.Add(l.fees, buyFee)
	l.fees.Add(l.fees, sellFee)

	credit := l.owed[winner]
	if credit == nil {
		credit = new(big.Int)
		l.owed[winner] = credit
	}
	credit.Add(credit, netPrize)

	settledRound := l.round
	l.registry = nil
	l.active = 0
	l.round++
	l.deadline = now.Add(l.roundDuration)
	l.state = StateOpen

	l.bus.Emit(events.TopicRoundSettled, events.RoundSettled{
		Winner:   winner,
		NetPrize: new(big.Int).Set(netPrize),
	})

	logger.Info("round settled",
		zap.Uint64("round", settledRound),
		zap.String("winner", winner.ToRaw()),
		zap.String("net_prize", netPrize.String()),
		zap.String("total_collected", total.String()),
		zap.String("fee_balance", l.fees.String()),
	)
	return nil
}
