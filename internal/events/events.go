package events

import (
	"math/big"

	"github.com/tonkeeper/tongo/ton"
)

// Topics for the observable ledger events.
const (
	TopicEntered        = "raffle.entered"
	TopicRefunded       = "raffle.refunded"
	TopicRoundSettled   = "raffle.round_settled"
	TopicPrizeClaimed   = "raffle.prize_claimed"
	TopicFeesWithdrawn  = "raffle.fees_withdrawn"
	TopicFeeRateChanged = "raffle.fee_rate_changed"
)

// Field order of every payload below is part of the external contract and
// must match the declarations here exactly; events_test.go pins it.

type Entered struct {
	Participants []ton.AccountID
}

type Refunded struct {
	Entrant ton.AccountID
}

type RoundSettled struct {
	Winner   ton.AccountID
	NetPrize *big.Int
}

type PrizeClaimed struct {
	Winner ton.AccountID
	Amount *big.Int
}

type FeesWithdrawn struct {
	Recipient ton.AccountID
	Amount    *big.Int
}

type FeeRateChanged struct {
	BuyRate  uint64
	SellRate uint64
}
