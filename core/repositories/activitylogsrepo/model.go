package activitylogsrepo

import (
	"encoding/json"
	"time"
)

type ActivityOutcome string

const (
	OutcomeSuccess ActivityOutcome = "SUCCESS"
	OutcomeFailure ActivityOutcome = "FAILURE"
	OutcomeBlocked ActivityOutcome = "BLOCKED"
	OutcomeWarning ActivityOutcome = "WARNING"
)

func (o ActivityOutcome) Valid() bool {
	switch o {
	case OutcomeSuccess, OutcomeFailure, OutcomeBlocked, OutcomeWarning:
		return true
	}
	return false
}

// ActivityLog is one audited action of a profile. Entries are never edited.
type ActivityLog struct {
	ActivityLogID string          `db:"activity_log_id" json:"activityLogId"`
	UserProfileID string          `db:"user_profile_id" json:"userProfileId"`
	Action        string          `db:"action" json:"action"`
	Resource      *string         `db:"resource" json:"resource,omitempty"`
	ResourceID    *string         `db:"resource_id" json:"resourceId,omitempty"`
	IPAddress     *string         `db:"ip_address" json:"ipAddress,omitempty"`
	UserAgent     *string         `db:"user_agent" json:"userAgent,omitempty"`
	Outcome       ActivityOutcome `db:"outcome" json:"outcome"`
	RiskScore     *int            `db:"risk_score" json:"riskScore,omitempty"`
	Details       json.RawMessage `db:"details" json:"details,omitempty"`
	OccurredAt    time.Time       `db:"occurred_at" json:"occurredAt"`
	RetentionDate *time.Time      `db:"retention_date" json:"retentionDate,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}

type NewActivityLog struct {
	UserProfileID string          `json:"userProfileId" validate:"required,uuid"`
	Action        string          `json:"action" validate:"required,max=128"`
	Resource      *string         `json:"resource" validate:"omitempty,max=256"`
	ResourceID    *string         `json:"resourceId" validate:"omitempty,max=256"`
	IPAddress     *string         `json:"ipAddress" validate:"omitempty,ip"`
	UserAgent     *string         `json:"userAgent" validate:"omitempty,max=1024"`
	Outcome       ActivityOutcome `json:"outcome" validate:"required,enum"`
	RiskScore     *int            `json:"riskScore" validate:"omitempty,min=0,max=100"`
	Details       json.RawMessage `json:"details" validate:"omitempty,json"`
	OccurredAt    *time.Time      `json:"occurredAt"`
	RetentionDate *time.Time      `json:"retentionDate"`
}
