package models

// AuditLog records a mutating action for traceability. Changes holds a
// JSON object with the relevant request fields.
type AuditLog struct {
	Base
	UserID       string `gorm:"type:uuid;index;not null" json:"user_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `gorm:"type:text" json:"changes,omitempty"`
}
