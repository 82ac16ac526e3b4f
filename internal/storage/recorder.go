package storage

import (
	"encoding/json"

	"go.uber.org/zap"

	"ledger/internal/chain"
	"ledger/internal/events"
	"ledger/internal/logger"
)

// RoundSource reports the ledger's current round counter, which starts at 1
// and is already pointing at the reopened round when a settlement event
// fires.
type RoundSource interface {
	Round() uint64
}

// Recorder journals observable ledger events into storage. It is a passive
// subscriber: persistence failures are logged and never propagate back into
// the ledger call that emitted the event.
type Recorder struct {
	storage Storage
	rounds  RoundSource
	clock   chain.Clock
}

func NewRecorder(storage Storage, rounds RoundSource, clock chain.Clock) *Recorder {
	return &Recorder{
		storage: storage,
		rounds:  rounds,
		clock:   clock,
	}
}

// Attach subscribes the recorder to every ledger topic on the bus.
func (r *Recorder) Attach(bus *events.Bus) {
	bus.Subscribe(events.TopicEntered, r.onEntered)
	bus.Subscribe(events.TopicRefunded, r.onRefunded)
	bus.Subscribe(events.TopicRoundSettled, r.onRoundSettled)
	bus.Subscribe(events.TopicPrizeClaimed, r.onPrizeClaimed)
	bus.Subscribe(events.TopicFeesWithdrawn, r.onFeesWithdrawn)
	bus.Subscribe(events.TopicFeeRateChanged, r.onFeeRateChanged)
}

type enteredPayload struct {
	Participants []string `json:"participants"`
}

type refundedPayload struct {
	Entrant string `json:"entrant"`
}

type roundSettledPayload struct {
	Winner   string `json:"winner"`
	NetPrize string `json:"net_prize"`
}

type prizeClaimedPayload struct {
	Winner string `json:"winner"`
	Amount string `json:"amount"`
}

type feesWithdrawnPayload struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type feeRateChangedPayload struct {
	BuyRate  uint64 `json:"buy_rate"`
	SellRate uint64 `json:"sell_rate"`
}

func (r *Recorder) onEntered(payload any) {
	entered, ok := payload.(events.Entered)
	if !ok {
		return
	}

	round := r.rounds.Round()
	base, err := r.storage.CountEntries(round)
	if err != nil {
		logger.Error("cannot count journaled entries", zap.Error(err))
		return
	}

	entries := make([]*EntryRecord, len(entered.Participants))
	addresses := make([]string, len(entered.Participants))
	for i, participant := range entered.Participants {
		entries[i] = &EntryRecord{Round: round, Slot: base + i, Address: participant.ToRaw()}
		addresses[i] = participant.ToRaw()
	}

	if err := r.storage.SaveEntries(entries); err != nil {
		logger.Error("cannot persist registry entries", zap.Error(err))
	}

	r.journal(events.TopicEntered, enteredPayload{Participants: addresses})
}

func (r *Recorder) onRefunded(payload any) {
	refunded, ok := payload.(events.Refunded)
	if !ok {
		return
	}

	if err := r.storage.MarkEntryRefunded(r.rounds.Round(), refunded.Entrant.ToRaw()); err != nil {
		logger.Error("cannot mark registry entry refunded", zap.Error(err))
	}

	r.journal(events.TopicRefunded, refundedPayload{Entrant: refunded.Entrant.ToRaw()})
}

func (r *Recorder) onRoundSettled(payload any) {
	settled, ok := payload.(events.RoundSettled)
	if !ok {
		return
	}

	// settlement bumps the round counter before the event fires
	settledRound := r.rounds.Round()
	if settledRound > 0 {
		settledRound--
	}

	record := &RoundRecord{
		Round:     settledRound,
		Winner:    settled.Winner.ToRaw(),
		NetPrize:  settled.NetPrize.String(),
		SettledAt: r.clock.Now().Unix(),
	}

	if err := r.storage.SaveRound(record); err != nil {
		logger.Error("cannot persist settled round", zap.Error(err))
	}

	r.journal(events.TopicRoundSettled, roundSettledPayload{
		Winner:   settled.Winner.ToRaw(),
		NetPrize: settled.NetPrize.String(),
	})
}

func (r *Recorder) onPrizeClaimed(payload any) {
	claimed, ok := payload.(events.PrizeClaimed)
	if !ok {
		return
	}

	r.journal(events.TopicPrizeClaimed, prizeClaimedPayload{
		Winner: claimed.Winner.ToRaw(),
		Amount: claimed.Amount.String(),
	})
}

func (r *Recorder) onFeesWithdrawn(payload any) {
	withdrawn, ok := payload.(events.FeesWithdrawn)
	if !ok {
		return
	}

	r.journal(events.TopicFeesWithdrawn, feesWithdrawnPayload{
		Recipient: withdrawn.Recipient.ToRaw(),
		Amount:    withdrawn.Amount.String(),
	})
}

func (r *Recorder) onFeeRateChanged(payload any) {
	changed, ok := payload.(events.FeeRateChanged)
	if !ok {
		return
	}

	r.journal(events.TopicFeeRateChanged, feeRateChangedPayload{
		BuyRate:  changed.BuyRate,
		SellRate: changed.SellRate,
	})
}

func (r *Recorder) journal(topic string, payload any) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		logger.Error("cannot encode event payload", zap.String("topic", topic), zap.Error(err))
		return
	}

	record := &EventRecord{
		Topic:    topic,
		Payload:  string(encoded),
		UnixTime: r.clock.Now().Unix(),
	}

	if err := r.storage.SaveEvent(record); err != nil {
		logger.Error("cannot persist event", zap.String("topic", topic), zap.Error(err))
	}
}
