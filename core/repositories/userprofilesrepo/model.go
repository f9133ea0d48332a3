package userprofilesrepo

import (
	"time"
)

// UserStatus is the lifecycle state of a profile.
type UserStatus string

const (
	StatusActive    UserStatus = "ACTIVE"
	StatusInactive  UserStatus = "INACTIVE"
	StatusSuspended UserStatus = "SUSPENDED"
	StatusPending   UserStatus = "PENDING"
	StatusDeparted  UserStatus = "DEPARTED"
)

func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusPending, StatusDeparted:
		return true
	}
	return false
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// UserProfile is the central identity record.
type UserProfile struct {
	UserProfileID  string     `db:"user_profile_id" json:"userProfileId"`
	HelixUID       string     `db:"helix_uid" json:"helixUid"`
	Email          string     `db:"email" json:"email"`
	EmailCanonical string     `db:"email_canonical" json:"emailCanonical"`
	EmployeeID     *string    `db:"employee_id" json:"employeeId,omitempty"`
	FirstName      *string    `db:"first_name" json:"firstName,omitempty"`
	LastName       *string    `db:"last_name" json:"lastName,omitempty"`
	DisplayName    *string    `db:"display_name" json:"displayName,omitempty"`
	Department     *string    `db:"department" json:"department,omitempty"`
	JobTitle       *string    `db:"job_title" json:"jobTitle,omitempty"`
	ManagerID      *string    `db:"manager_id" json:"managerId,omitempty"`
	StartDate      *time.Time `db:"start_date" json:"startDate,omitempty"`
	EndDate        *time.Time `db:"end_date" json:"endDate,omitempty"`
	Status         UserStatus `db:"status" json:"status"`
	SecurityScore  int        `db:"security_score" json:"securityScore"`
	RiskLevel      RiskLevel  `db:"risk_level" json:"riskLevel"`
	MFAEnabled     bool       `db:"mfa_enabled" json:"mfaEnabled"`
	LastLoginAt    *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	TenantID       *string    `db:"tenant_id" json:"tenantId,omitempty"`
	Roles          []string   `db:"roles" json:"roles"`
	Permissions    []string   `db:"permissions" json:"permissions"`
	CreatedBy      *string    `db:"created_by" json:"createdBy,omitempty"`
	LastUpdatedBy  *string    `db:"last_updated_by" json:"lastUpdatedBy,omitempty"`
	DataVersion    int        `db:"data_version" json:"dataVersion"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// CreateUserProfile contains the fields accepted when creating a profile.
// EmailCanonical is derived from Email by the repository.
type CreateUserProfile struct {
	HelixUID       string      `json:"helixUid" validate:"required,max=128"`
	Email          string      `json:"email" validate:"required,email,max=254"`
	EmailCanonical string      `json:"-"`
	EmployeeID     *string     `json:"employeeId" validate:"omitempty,max=64"`
	FirstName      *string     `json:"firstName" validate:"omitempty,max=128"`
	LastName       *string     `json:"lastName" validate:"omitempty,max=128"`
	DisplayName    *string     `json:"displayName" validate:"omitempty,max=256"`
	Department     *string     `json:"department" validate:"omitempty,max=128"`
	JobTitle       *string     `json:"jobTitle" validate:"omitempty,max=128"`
	ManagerID      *string     `json:"managerId" validate:"omitempty,uuid"`
	StartDate      *time.Time  `json:"startDate"`
	EndDate        *time.Time  `json:"endDate"`
	Status         *UserStatus `json:"status" validate:"omitempty,enum"`
	SecurityScore  *int        `json:"securityScore" validate:"omitempty,min=0,max=100"`
	RiskLevel      *RiskLevel  `json:"riskLevel" validate:"omitempty,enum"`
	MFAEnabled     *bool       `json:"mfaEnabled"`
	TenantID       *string     `json:"tenantId" validate:"omitempty,max=64"`
	Roles          []string    `json:"roles" validate:"omitempty,dive,required,max=64"`
	Permissions    []string    `json:"permissions" validate:"omitempty,dive,required,max=128"`
	CreatedBy      *string     `json:"createdBy" validate:"omitempty,max=128"`
}

// UpdateUserProfile holds a partial update; nil fields are left unchanged.
// The manager is changed through SetManager only.
type UpdateUserProfile struct {
	HelixUID       *string     `json:"helixUid" validate:"omitempty,max=128"`
	Email          *string     `json:"email" validate:"omitempty,email,max=254"`
	EmailCanonical *string     `json:"-"`
	EmployeeID     *string     `json:"employeeId" validate:"omitempty,max=64"`
	FirstName      *string     `json:"firstName" validate:"omitempty,max=128"`
	LastName       *string     `json:"lastName" validate:"omitempty,max=128"`
	DisplayName    *string     `json:"displayName" validate:"omitempty,max=256"`
	Department     *string     `json:"department" validate:"omitempty,max=128"`
	JobTitle       *string     `json:"jobTitle" validate:"omitempty,max=128"`
	StartDate      *time.Time  `json:"startDate"`
	EndDate        *time.Time  `json:"endDate"`
	Status         *UserStatus `json:"status" validate:"omitempty,enum"`
	SecurityScore  *int        `json:"securityScore" validate:"omitempty,min=0,max=100"`
	RiskLevel      *RiskLevel  `json:"riskLevel" validate:"omitempty,enum"`
	MFAEnabled     *bool       `json:"mfaEnabled"`
	TenantID       *string     `json:"tenantId" validate:"omitempty,max=64"`
	Roles          *[]string   `json:"roles" validate:"omitempty,dive,required,max=64"`
	Permissions    *[]string   `json:"permissions" validate:"omitempty,dive,required,max=128"`
	LastUpdatedBy  *string     `json:"lastUpdatedBy" validate:"omitempty,max=128"`
}

// Empty reports whether the update would change nothing.
func (u UpdateUserProfile) Empty() bool {
	return u == (UpdateUserProfile{})
}

// ManagerChange moves a profile under a new manager, or clears the manager
// when ManagerID is nil.
type ManagerChange struct {
	ManagerID       *string `json:"managerId" validate:"omitempty,uuid"`
	ExpectedVersion int     `json:"dataVersion" validate:"required,min=1"`
	UpdatedBy       *string `json:"updatedBy" validate:"omitempty,max=128"`
}
