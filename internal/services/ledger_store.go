package services

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/ledger"
	"fintrack/internal/models"
)

// gormLedgerStore persists each user's ledger as one JSON document in
// the ledger_records table.
type gormLedgerStore struct {
	db *gorm.DB
}

// NewLedgerStore creates a LedgerStore backed by the given database.
func NewLedgerStore(db *gorm.DB) LedgerStore {
	return &gormLedgerStore{db: db}
}

// Load reads the user's ledger document. A user with no stored record
// gets a fresh empty ledger, not an error.
func (s *gormLedgerStore) Load(userID string) (*ledger.Ledger, error) {
	var record models.LedgerRecord
	if err := s.db.Where("user_id = ?", userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledger.New(), nil
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var l ledger.Ledger
	if err := json.Unmarshal(record.Data, &l); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if l.Accounts == nil {
		l.Accounts = []ledger.Account{}
	}
	if l.Transactions == nil {
		l.Transactions = []ledger.Transaction{}
	}
	return &l, nil
}

// Save rewrites the user's ledger document, inserting the row on first
// save. The unique index on user_id makes the write an upsert.
func (s *gormLedgerStore) Save(userID string, l *ledger.Ledger) error {
	data, err := json.Marshal(l)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	record := models.LedgerRecord{
		UserID: userID,
		Data:   data,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return nil
}
