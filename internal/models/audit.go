package models

import (
	"time"

	"github.com/google/uuid"
)

// Outcome of the audited action.
const (
	AuditStatusSuccess = "SUCCESS"
	AuditStatusFailed  = "FAILED"
	AuditStatusError   = "ERROR"
	AuditStatusWarning = "WARNING"
	AuditStatusPartial = "PARTIAL"
)

// Severity levels.
const (
	SeverityDebug    = "DEBUG"
	SeverityInfo     = "INFO"
	SeverityWarning  = "WARNING"
	SeverityError    = "ERROR"
	SeverityCritical = "CRITICAL"
)

// Categories group entries by domain, not urgency.
const (
	CategorySecurity    = "SECURITY"
	CategoryBusiness    = "BUSINESS"
	CategorySystem      = "SYSTEM"
	CategoryPerformance = "PERFORMANCE"
	CategoryCompliance  = "COMPLIANCE"
	CategoryOther       = "OTHER"
)

// Target types an entry can reference.
const (
	TargetUser         = "USER"
	TargetOrganization = "ORGANIZATION"
	TargetMember       = "MEMBER"
	TargetInvitation   = "INVITATION"
	TargetToken        = "TOKEN"
	TargetSystem       = "SYSTEM"
	TargetOther        = "OTHER"
)

// FieldChange records one field of a before/after diff.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// AuditLogEntry is the append-only audit record. Actor fields are
// point-in-time snapshots, not joins: they survive later changes to the
// user row.
type AuditLogEntry struct {
	LogID uuid.UUID `json:"log_id"`

	UserID    *uuid.UUID `json:"user_id,omitempty"` // nil = system action
	UserEmail string     `json:"user_email,omitempty"`
	UserName  string     `json:"user_name,omitempty"`

	Action            string `json:"action"`
	ActionDescription string `json:"action_description,omitempty"`
	TargetType        string `json:"target_type,omitempty"`
	TargetID          string `json:"target_id,omitempty"`
	TargetTable       string `json:"target_table,omitempty"`

	BeforeData map[string]any         `json:"before_data,omitempty"`
	AfterData  map[string]any         `json:"after_data,omitempty"`
	Changes    map[string]FieldChange `json:"changes,omitempty"`

	IPAddress      string         `json:"ip_address,omitempty"`
	UserAgent      string         `json:"user_agent,omitempty"`
	RequestURL     string         `json:"request_url,omitempty"`
	RequestMethod  string         `json:"request_method,omitempty"`
	RequestBody    map[string]any `json:"request_body,omitempty"`
	ResponseStatus int            `json:"response_status,omitempty"`

	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`

	DurationMS int64 `json:"duration_ms,omitempty"`

	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	SessionID      string     `json:"session_id,omitempty"`
	CorrelationID  string     `json:"correlation_id,omitempty"`

	Severity string         `json:"severity"`
	Category string         `json:"category"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Tags     []string       `json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// AuditStats is the aggregate view over a date range.
type AuditStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	BySeverity map[string]int64 `json:"by_severity"`
	ByCategory map[string]int64 `json:"by_category"`
	TopActions map[string]int64 `json:"top_actions"`
}
