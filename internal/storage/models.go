package storage

// RoundRecord summarizes one settled raffle round. Amounts are stored as
// decimal strings so no width is ever truncated.
type RoundRecord struct {
	Round     uint64 `gorm:"primaryKey"`
	Winner    string `gorm:"not null"`
	NetPrize  string `gorm:"not null"`
	SettledAt int64  `gorm:"not null"`
}

// EntryRecord is one registry slot observed in a round, keyed by its slot
// index. A participant who refunds and re-enters within the same round
// occupies a fresh slot and gets a fresh record.
type EntryRecord struct {
	ID       int64  `gorm:"primaryKey"`
	Round    uint64 `gorm:"uniqueIndex:idx_round_slot"`
	Slot     int    `gorm:"uniqueIndex:idx_round_slot"`
	Address  string `gorm:"index:idx_entry_address"`
	Refunded bool   `gorm:"default:false"`
}

// EventRecord journals a single observable event as emitted.
type EventRecord struct {
	ID       int64  `gorm:"primaryKey"`
	Topic    string `gorm:"index:idx_event_topic"`
	Payload  string `gorm:"not null"`
	UnixTime int64  `gorm:"not null"`
}
