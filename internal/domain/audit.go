package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records an admin or system mutation for later review.
type AuditLog struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	Action       string     `json:"action" db:"action"`
	EntityType   string     `json:"entity_type" db:"entity_type"`
	EntityID     *uuid.UUID `json:"entity_id,omitempty" db:"entity_id"`
	OldValues    Metadata   `json:"old_values,omitempty" db:"old_values"`
	NewValues    Metadata   `json:"new_values,omitempty" db:"new_values"`
	IPAddress    string     `json:"ip_address" db:"ip_address"`
	UserAgent    string     `json:"user_agent" db:"user_agent"`
	RequestID    string     `json:"request_id" db:"request_id"`
	StatusCode   int        `json:"status_code" db:"status_code"`
	ErrorMessage string     `json:"error_message" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
