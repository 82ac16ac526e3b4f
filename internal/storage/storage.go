package storage

type Storage interface {
	// round history
	SaveRound(round *RoundRecord) error
	GetRound(round uint64) (*RoundRecord, error)
	GetRounds() ([]*RoundRecord, error)

	// registry entries
	SaveEntries(entries []*EntryRecord) error
	MarkEntryRefunded(round uint64, address string) error
	GetEntries(round uint64) ([]*EntryRecord, error)
	CountEntries(round uint64) (int, error)

	// event journal
	SaveEvent(event *EventRecord) error
	GetEvents(topic string) ([]*EventRecord, error)
}
