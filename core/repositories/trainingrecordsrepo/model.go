package trainingrecordsrepo

import "time"

type TrainingStatus string

const (
	StatusNotStarted TrainingStatus = "NOT_STARTED"
	StatusInProgress TrainingStatus = "IN_PROGRESS"
	StatusCompleted  TrainingStatus = "COMPLETED"
	StatusFailed     TrainingStatus = "FAILED"
	StatusExpired    TrainingStatus = "EXPIRED"
	StatusWaived     TrainingStatus = "WAIVED"
)

func (s TrainingStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusFailed, StatusExpired, StatusWaived:
		return true
	}
	return false
}

// Satisfied reports whether the status discharges a required course.
func (s TrainingStatus) Satisfied() bool {
	return s == StatusCompleted || s == StatusWaived
}

// TrainingRecord is a profile's progress on one course.
type TrainingRecord struct {
	TrainingRecordID string         `db:"training_record_id" json:"trainingRecordId"`
	UserProfileID    string         `db:"user_profile_id" json:"userProfileId"`
	CourseID         string         `db:"course_id" json:"courseId"`
	CourseName       string         `db:"course_name" json:"courseName"`
	Status           TrainingStatus `db:"status" json:"status"`
	Score            *int           `db:"score" json:"score,omitempty"`
	StartedAt        *time.Time     `db:"started_at" json:"startedAt,omitempty"`
	CompletedAt      *time.Time     `db:"completed_at" json:"completedAt,omitempty"`
	DueDate          *time.Time     `db:"due_date" json:"dueDate,omitempty"`
	ExpiresAt        *time.Time     `db:"expires_at" json:"expiresAt,omitempty"`
	IsRequired       bool           `db:"is_required" json:"isRequired"`
	CertificateURL   *string        `db:"certificate_url" json:"certificateUrl,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}

type CreateTrainingRecord struct {
	UserProfileID  string          `json:"userProfileId" validate:"required,uuid"`
	CourseID       string          `json:"courseId" validate:"required,max=128"`
	CourseName     string          `json:"courseName" validate:"required,max=256"`
	Status         *TrainingStatus `json:"status" validate:"omitempty,enum"`
	Score          *int            `json:"score" validate:"omitempty,min=0,max=100"`
	StartedAt      *time.Time      `json:"startedAt"`
	CompletedAt    *time.Time      `json:"completedAt"`
	DueDate        *time.Time      `json:"dueDate"`
	ExpiresAt      *time.Time      `json:"expiresAt"`
	IsRequired     *bool           `json:"isRequired"`
	CertificateURL *string         `json:"certificateUrl" validate:"omitempty,url,max=2048"`
}

type UpdateTrainingRecord struct {
	CourseName     *string         `json:"courseName" validate:"omitempty,max=256"`
	Status         *TrainingStatus `json:"status" validate:"omitempty,enum"`
	Score          *int            `json:"score" validate:"omitempty,min=0,max=100"`
	StartedAt      *time.Time      `json:"startedAt"`
	CompletedAt    *time.Time      `json:"completedAt"`
	DueDate        *time.Time      `json:"dueDate"`
	ExpiresAt      *time.Time      `json:"expiresAt"`
	IsRequired     *bool           `json:"isRequired"`
	CertificateURL *string         `json:"certificateUrl" validate:"omitempty,url,max=2048"`
}

func (u UpdateTrainingRecord) Empty() bool {
	return u == (UpdateTrainingRecord{})
}

// ComplianceScope selects whose required training is summarised. Exactly
// one field must be set.
type ComplianceScope struct {
	UserProfileID *string
	TenantID      *string
}

// ComplianceSummary counts required training records by status.
type ComplianceSummary struct {
	Total          int64   `db:"total" json:"total"`
	NotStarted     int64   `db:"not_started" json:"notStarted"`
	InProgress     int64   `db:"in_progress" json:"inProgress"`
	Completed      int64   `db:"completed" json:"completed"`
	Failed         int64   `db:"failed" json:"failed"`
	Expired        int64   `db:"expired" json:"expired"`
	Waived         int64   `db:"waived" json:"waived"`
	Overdue        int64   `db:"overdue" json:"overdue"`
	CompletionRate float64 `db:"-" json:"completionRate"`
}

// Rate fills CompletionRate: the share of required records completed or
// waived. An empty summary counts as fully compliant.
func (c *ComplianceSummary) Rate() {
	if c.Total == 0 {
		c.CompletionRate = 1
		return
	}
	c.CompletionRate = float64(c.Completed+c.Waived) / float64(c.Total)
}
