package storage

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger/internal/logger"
)

type SqliteStorage struct {
	db *gorm.DB
}

func NewSqliteStorage(path string) (*SqliteStorage, error) {

	logger.Debug("initializing database...")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&RoundRecord{},
		&EntryRecord{},
		&EventRecord{},
	)

	if err != nil {
		return nil, err
	}

	return &SqliteStorage{
		db: db,
	}, nil
}

func (s *SqliteStorage) SaveRound(round *RoundRecord) error {
	logger.Debug("persisting settled round...")

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "round"}},
		DoUpdates: clause.AssignmentColumns([]string{"winner", "net_prize", "settled_at"}),
	}).Create(round).Error

	if err != nil {
		return err
	}

	logger.Debug("persisting settled round... done")
	return nil
}

func (s *SqliteStorage) GetRound(round uint64) (*RoundRecord, error) {

	var record RoundRecord
	err := s.db.Where("round = ?", round).First(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (s *SqliteStorage) GetRounds() ([]*RoundRecord, error) {

	var records []*RoundRecord
	err := s.db.Order("round asc").Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *SqliteStorage) SaveEntries(entries []*EntryRecord) error {
	logger.Debug("persisting registry entries...")

	if len(entries) == 0 {
		logger.Debug("no registry entries to persist")
		return nil
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "round"}, {Name: "slot"}},
		DoNothing: true,
	}).CreateInBatches(entries, 100).Error

	if err != nil {
		return err
	}

	logger.Debug("persisting registry entries... done")
	return nil
}

func (s *SqliteStorage) MarkEntryRefunded(round uint64, address string) error {
	logger.Debug("marking registry entry refunded...")

	// the newest active slot for the address; earlier refunded slots of a
	// re-entered participant stay untouched
	err := s.db.Exec(`
		update entry_records
		set refunded = true
		where id = (
			select id
			from entry_records
			where round = ? and address = ? and refunded = false
			order by slot desc
			limit 1
		)
	`, round, address).Error

	if err != nil {
		return err
	}

	logger.Debug("marking registry entry refunded... done")
	return nil
}

func (s *SqliteStorage) GetEntries(round uint64) ([]*EntryRecord, error) {

	var entries []*EntryRecord
	err := s.db.Where("round = ?", round).Order("slot asc").Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *SqliteStorage) CountEntries(round uint64) (int, error) {

	var count int64
	err := s.db.Model(&EntryRecord{}).Where("round = ?", round).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

func (s *SqliteStorage) SaveEvent(event *EventRecord) error {

	err := s.db.Create(event).Error
	if err != nil {
		return err
	}

	return nil
}

func (s *SqliteStorage) GetEvents(topic string) ([]*EventRecord, error) {

	var records []*EventRecord
	err := s.db.Where("topic = ?", topic).Order("id asc").Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}
