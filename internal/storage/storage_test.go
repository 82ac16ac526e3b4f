package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStorage(t *testing.T) *SqliteStorage {
	t.Helper()
	storage, err := NewSqliteStorage(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	return storage
}

func TestSaveAndGetRound(t *testing.T) {
	storage := newTestStorage(t)

	record := &RoundRecord{
		Round:     1,
		Winner:    "0:0000000000000000000000000000000000000000000000000000000000000003",
		NetPrize:  "3705000",
		SettledAt: 1_700_003_600,
	}
	require.NoError(t, storage.SaveRound(record))

	loaded, err := storage.GetRound(1)
	require.NoError(t, err)
	assert.Equal(t, record, loaded)

	_, err = storage.GetRound(2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSaveRoundUpsert(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveRound(&RoundRecord{Round: 1, Winner: "a", NetPrize: "1", SettledAt: 1}))
	require.NoError(t, storage.SaveRound(&RoundRecord{Round: 1, Winner: "b", NetPrize: "2", SettledAt: 2}))

	rounds, err := storage.GetRounds()
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, "b", rounds[0].Winner)
	assert.Equal(t, "2", rounds[0].NetPrize)
}

func TestEntriesRoundTrip(t *testing.T) {
	storage := newTestStorage(t)

	entries := []*EntryRecord{
		{Round: 1, Slot: 0, Address: "0:01"},
		{Round: 1, Slot: 1, Address: "0:02"},
	}
	require.NoError(t, storage.SaveEntries(entries))
	require.NoError(t, storage.SaveEntries(nil))

	// replaying a journaled slot is ignored, not duplicated
	require.NoError(t, storage.SaveEntries([]*EntryRecord{{Round: 1, Slot: 0, Address: "0:01"}}))

	count, err := storage.CountEntries(1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	loaded, err := storage.GetEntries(1)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "0:01", loaded[0].Address)
	assert.False(t, loaded[0].Refunded)

	require.NoError(t, storage.MarkEntryRefunded(1, "0:01"))

	loaded, err = storage.GetEntries(1)
	require.NoError(t, err)
	assert.True(t, loaded[0].Refunded)
	assert.False(t, loaded[1].Refunded)
}

// The same address may hold several slots in one round after refunding and
// re-entering; a refund lands on the newest active slot only.
func TestMarkEntryRefundedNewestActiveSlot(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveEntries([]*EntryRecord{
		{Round: 1, Slot: 0, Address: "0:01"},
		{Round: 1, Slot: 1, Address: "0:02"},
		{Round: 1, Slot: 2, Address: "0:01"},
	}))

	require.NoError(t, storage.MarkEntryRefunded(1, "0:01"))

	loaded, err := storage.GetEntries(1)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.False(t, loaded[0].Refunded)
	assert.False(t, loaded[1].Refunded)
	assert.True(t, loaded[2].Refunded)

	require.NoError(t, storage.MarkEntryRefunded(1, "0:01"))

	loaded, err = storage.GetEntries(1)
	require.NoError(t, err)
	assert.True(t, loaded[0].Refunded)
	assert.False(t, loaded[1].Refunded)
}

func TestEventJournal(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveEvent(&EventRecord{Topic: "raffle.entered", Payload: `{"participants":["0:01"]}`, UnixTime: 10}))
	require.NoError(t, storage.SaveEvent(&EventRecord{Topic: "raffle.refunded", Payload: `{"entrant":"0:01"}`, UnixTime: 11}))
	require.NoError(t, storage.SaveEvent(&EventRecord{Topic: "raffle.entered", Payload: `{"participants":["0:02"]}`, UnixTime: 12}))

	entered, err := storage.GetEvents("raffle.entered")
	require.NoError(t, err)
	require.Len(t, entered, 2)
	assert.Equal(t, `{"participants":["0:01"]}`, entered[0].Payload)
	assert.Equal(t, `{"participants":["0:02"]}`, entered[1].Payload)

	refunded, err := storage.GetEvents("raffle.refunded")
	require.NoError(t, err)
	require.Len(t, refunded, 1)
}
