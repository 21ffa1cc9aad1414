// Package uuid generates the opaque identifiers used for users,
// accounts, transactions, and ledger records.
package uuid

import googleuuid "github.com/google/uuid"

// New returns a fresh UUIDv7 string. Version 7 is time-ordered, which
// keeps database primary keys roughly insertion-ordered. Falls back to
// a random UUIDv4 if the system entropy source fails.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid reports whether s parses as a UUID of any version.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
