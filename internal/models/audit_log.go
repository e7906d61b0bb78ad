package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Audit actions recorded by the authentication subsystem
const (
	AuditActionLogin        = "LOGIN"
	AuditActionLoginFailed  = "LOGIN_FAILED"
	AuditActionLogout       = "LOGOUT"
	AuditActionTokenRefresh = "TOKEN_REFRESH"
	AuditAction2FASuccess   = "LOGIN_2FA_SUCCESS"
	AuditAction2FAFailed    = "LOGIN_2FA_FAILED"

	AuditActionPasswordChange = "PASSWORD_CHANGE"
)

// AuditResourceSystem tags entries produced by the auth protocol itself.
const AuditResourceSystem = "SYSTEM"

// AuditLog is one append-only record of an authentication-relevant event.
// AdminID is nil for failures where no account was identified (unknown email).
type AuditLog struct {
	ID        string
	AdminID   *string
	Action    string
	Resource  string
	Details   AuditDetails
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// AuditDetails holds the structured detail payload of an audit entry.
type AuditDetails map[string]interface{}

// Scan implements sql.Scanner for JSONB columns.
func (d *AuditDetails) Scan(value interface{}) error {
	if value == nil {
		*d = make(AuditDetails)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return ErrBadRequest
	}

	var m map[string]interface{}
	if err := json.Unmarshal(bytes, &m); err != nil {
		return err
	}
	*d = AuditDetails(m)
	return nil
}

// Value implements driver.Valuer for JSONB columns.
func (d AuditDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}
