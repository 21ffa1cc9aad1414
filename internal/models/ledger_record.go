package models

// LedgerRecord stores one user's entire ledger as a single JSON
// document. Every mutation reads the document, rewrites it in memory,
// and saves it back as one unit; there is exactly one row per user.
type LedgerRecord struct {
	Base
	UserID string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Data   []byte `gorm:"type:jsonb;not null" json:"data"`
}
