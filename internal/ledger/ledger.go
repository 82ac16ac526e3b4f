package ledger

import (
	"math/big"
	"sync/atomic"
	"time"

	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"ledger/internal/chain"
	"ledger/internal/events"
	"ledger/internal/logger"
)

const (
	// FeeRateDenominator is the fixed-point denominator for both fee rates.
	FeeRateDenominator = 10_000
	// MaxFeeRateBps caps each fee rate at 10% of the value it applies to.
	MaxFeeRateBps = 1_000
)

// RoundState of the current raffle round. Settlement passes through
// StateSettled and reopens within the same call, so observers outside a
// settlement always see StateOpen.
type RoundState uint8

const (
	StateOpen RoundState = iota
	StateSettled
)

// noAccount is the sentinel occupying refunded registry slots. The zero
// account is rejected at entry, so no active entrant ever collides with it.
var noAccount ton.AccountID

// Params fixes the ledger parameters at construction time.
type Params struct {
	EntranceFee     *big.Int
	RoundDuration   time.Duration
	RateChangeDelay time.Duration
	Admin           ton.AccountID
	FeeRecipient    ton.AccountID
	BuyRateBps      uint64
	SellRateBps     uint64
}

type rateProposal struct {
	buyRateBps  uint64
	sellRateBps uint64
	notBefore   time.Time
}

// Ledger is the raffle state machine: an ordered entrant registry, a fee
// accumulator, per-winner prize credits, and the round lifecycle
// OPEN -> settle -> OPEN.
//
// Execution is single-threaded per call. The busy flag is the per-call
// mutual-exclusion guard: any attempt to re-enter a mutating operation
// while another is in flight (in particular from inside a treasury receive
// hook) fails with ErrReentrantCall. Independently of the guard, every
// operation commits its state changes before issuing the external transfer
// and restores them exactly when the transfer fails.
type Ledger struct {
	busy atomic.Bool

	treasury chain.Treasury
	clock    chain.Clock
	entropy  chain.EntropySource
	picker   WinnerPicker
	bus      *events.Bus

	entranceFee     *big.Int
	roundDuration   time.Duration
	rateChangeDelay time.Duration

	admin        ton.AccountID
	feeRecipient ton.AccountID
	buyRateBps   uint64
	sellRateBps  uint64
	pending      *rateProposal

	round    uint64
	state    RoundState
	deadline time.Time

	registry []ton.AccountID
	active   int
	// member tags each account with the round of its last active entry.
	// A tag equal to the current round means "active now"; settlement bumps
	// the round counter instead of clearing the map.
	member map[ton.AccountID]uint64

	fees *big.Int
	owed map[ton.AccountID]*big.Int
}

func New(params Params, treasury chain.Treasury, clock chain.Clock, entropy chain.EntropySource, picker WinnerPicker, bus *events.Bus) (*Ledger, error) {
	if treasury == nil || clock == nil {
		return nil, ErrInvalidParams
	}
	if params.EntranceFee == nil || params.EntranceFee.Sign() <= 0 {
		return nil, ErrInvalidParams
	}
	if params.RoundDuration <= 0 {
		return nil, ErrInvalidParams
	}
	if params.Admin == noAccount || params.FeeRecipient == noAccount {
		return nil, ErrInvalidAddress
	}
	if params.BuyRateBps > MaxFeeRateBps || params.SellRateBps > MaxFeeRateBps {
		return nil, ErrFeeRateOutOfRange
	}

	if entropy == nil {
		entropy = chain.RandomEntropy{}
	}
	if picker == nil {
		picker = HashPicker{}
	}
	if bus == nil {
		bus = events.NewBus()
	}

	ledger := &Ledger{
		treasury:        treasury,
		clock:           clock,
		entropy:         entropy,
		picker:          picker,
		bus:             bus,
		entranceFee:     new(big.Int).Set(params.EntranceFee),
		roundDuration:   params.RoundDuration,
		rateChangeDelay: params.RateChangeDelay,
		admin:           params.Admin,
		feeRecipient:    params.FeeRecipient,
		buyRateBps:      params.BuyRateBps,
		sellRateBps:     params.SellRateBps,
		round:           1,
		state:           StateOpen,
		deadline:        clock.Now().Add(params.RoundDuration),
		member:          make(map[ton.AccountID]uint64),
		fees:            new(big.Int),
		owed:            make(map[ton.AccountID]*big.Int),
	}

	logger.Info("ledger initialized",
		zap.Uint64("round", ledger.round),
		zap.String("entrance_fee", ledger.entranceFee.String()),
		zap.Uint64("buy_rate_bps", ledger.buyRateBps),
		zap.Uint64("sell_rate_bps", ledger.sellRateBps),
	)
	return ledger, nil
}

func (l *Ledger) acquire() error {
	if !l.busy.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

func (l *Ledger) release() {
	l.busy.Store(false)
}

func (l *Ledger) isActive(account ton.AccountID) bool {
	return l.member[account] == l.round
}

// nthActive maps an index within the active entrants onto the registry,
// skipping refunded slots.
func (l *Ledger) nthActive(n int) ton.AccountID {
	seen := 0
	for _, slot := range l.registry {
		if slot == noAccount {
			continue
		}
		if seen == n {
			return slot
		}
		seen++
	}
	return noAccount
}

// Bus exposes the event bus the ledger publishes to.
func (l *Ledger) Bus() *events.Bus {
	return l.bus
}

// Round returns the current round number, starting at 1.
func (l *Ledger) Round() uint64 {
	return l.round
}

func (l *Ledger) State() RoundState {
	return l.state
}

func (l *Ledger) Deadline() time.Time {
	return l.deadline
}

// RegistryLen counts every slot, refunded ones included.
func (l *Ledger) RegistryLen() int {
	return len(l.registry)
}

// ActiveCount counts only non-refunded slots.
func (l *Ledger) ActiveCount() int {
	return l.active
}

// Entrants returns a copy of the registry. Refunded slots hold the zero
// account sentinel.
func (l *Ledger) Entrants() []ton.AccountID {
	entrants := make([]ton.AccountID, len(l.registry))
	copy(entrants, l.registry)
	return entrants
}

func (l *Ledger) EntranceFee() *big.Int {
	return new(big.Int).Set(l.entranceFee)
}

// FeeBalance returns the accumulated, not yet withdrawn fees.
func (l *Ledger) FeeBalance() *big.Int {
	return new(big.Int).Set(l.fees)
}

// Owed returns the prize credit claimable by the account.
func (l *Ledger) Owed(account ton.AccountID) *big.Int {
	if credit := l.owed[account]; credit != nil {
		return new(big.Int).Set(credit)
	}
	return new(big.Int)
}

func (l *Ledger) FeeRecipient() ton.AccountID {
	return l.feeRecipient
}

func (l *Ledger) FeeRates() (buyRateBps uint64, sellRateBps uint64) {
	return l.buyRateBps, l.sellRateBps
}
