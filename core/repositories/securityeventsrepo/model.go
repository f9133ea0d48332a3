package securityeventsrepo

import (
	"encoding/json"
	"time"
)

type EventSeverity string

const (
	SeverityLow      EventSeverity = "LOW"
	SeverityMedium   EventSeverity = "MEDIUM"
	SeverityHigh     EventSeverity = "HIGH"
	SeverityCritical EventSeverity = "CRITICAL"
)

func (s EventSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type EventStatus string

const (
	StatusOpen          EventStatus = "OPEN"
	StatusInProgress    EventStatus = "IN_PROGRESS"
	StatusResolved      EventStatus = "RESOLVED"
	StatusClosed        EventStatus = "CLOSED"
	StatusFalsePositive EventStatus = "FALSE_POSITIVE"
)

func (s EventStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed, StatusFalsePositive:
		return true
	}
	return false
}

// SecurityEvent is a security finding raised against a profile.
type SecurityEvent struct {
	SecurityEventID string          `db:"security_event_id" json:"securityEventId"`
	UserProfileID   string          `db:"user_profile_id" json:"userProfileId"`
	EventType       string          `db:"event_type" json:"eventType"`
	Title           string          `db:"title" json:"title"`
	Description     *string         `db:"description" json:"description,omitempty"`
	Source          *string         `db:"source" json:"source,omitempty"`
	Severity        EventSeverity   `db:"severity" json:"severity"`
	Status          EventStatus     `db:"status" json:"status"`
	DetectedAt      time.Time       `db:"detected_at" json:"detectedAt"`
	AssignedTo      *string         `db:"assigned_to" json:"assignedTo,omitempty"`
	ResolvedAt      *time.Time      `db:"resolved_at" json:"resolvedAt,omitempty"`
	Resolution      *string         `db:"resolution" json:"resolution,omitempty"`
	Metadata        json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

type CreateSecurityEvent struct {
	UserProfileID string          `json:"userProfileId" validate:"required,uuid"`
	EventType     string          `json:"eventType" validate:"required,max=128"`
	Title         string          `json:"title" validate:"required,max=512"`
	Description   *string         `json:"description" validate:"omitempty,max=8192"`
	Source        *string         `json:"source" validate:"omitempty,max=128"`
	Severity      EventSeverity   `json:"severity" validate:"required,enum"`
	DetectedAt    *time.Time      `json:"detectedAt"`
	AssignedTo    *string         `json:"assignedTo" validate:"omitempty,max=128"`
	Metadata      json.RawMessage `json:"metadata" validate:"omitempty,json"`
}

// UpdateSecurityEvent edits the descriptive fields. Status moves through
// Transition and ownership through Assign.
type UpdateSecurityEvent struct {
	Title       *string         `json:"title" validate:"omitempty,max=512"`
	Description *string         `json:"description" validate:"omitempty,max=8192"`
	Severity    *EventSeverity  `json:"severity" validate:"omitempty,enum"`
	Metadata    json.RawMessage `json:"metadata" validate:"omitempty,json"`
}

func (u UpdateSecurityEvent) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Severity == nil && u.Metadata == nil
}

// StatusChange moves an event through its workflow.
type StatusChange struct {
	Status     EventStatus `json:"status" validate:"required,enum"`
	Resolution *string     `json:"resolution" validate:"omitempty,max=8192"`
}
