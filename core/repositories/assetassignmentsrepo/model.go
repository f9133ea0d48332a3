package assetassignmentsrepo

import (
	"encoding/json"
	"time"
)

type AssetType string

const (
	AssetDevice          AssetType = "DEVICE"
	AssetSoftwareLicense AssetType = "SOFTWARE_LICENSE"
	AssetCertificate     AssetType = "CERTIFICATE"
	AssetAccessCard      AssetType = "ACCESS_CARD"
	AssetMobileDevice    AssetType = "MOBILE_DEVICE"
	AssetLaptop          AssetType = "LAPTOP"
	AssetDesktop         AssetType = "DESKTOP"
	AssetServer          AssetType = "SERVER"
	AssetOther           AssetType = "OTHER"
)

func (t AssetType) Valid() bool {
	switch t {
	case AssetDevice, AssetSoftwareLicense, AssetCertificate, AssetAccessCard,
		AssetMobileDevice, AssetLaptop, AssetDesktop, AssetServer, AssetOther:
		return true
	}
	return false
}

type AssetStatus string

const (
	StatusAssigned      AssetStatus = "ASSIGNED"
	StatusUnassigned    AssetStatus = "UNASSIGNED"
	StatusPendingReturn AssetStatus = "PENDING_RETURN"
	StatusReturned      AssetStatus = "RETURNED"
	StatusLost          AssetStatus = "LOST"
	StatusStolen        AssetStatus = "STOLEN"
	StatusDamaged       AssetStatus = "DAMAGED"
)

func (s AssetStatus) Valid() bool {
	switch s {
	case StatusAssigned, StatusUnassigned, StatusPendingReturn, StatusReturned,
		StatusLost, StatusStolen, StatusDamaged:
		return true
	}
	return false
}

// Released reports whether the status ends an assignment.
func (s AssetStatus) Released() bool {
	switch s {
	case StatusUnassigned, StatusReturned, StatusLost, StatusStolen, StatusDamaged:
		return true
	}
	return false
}

type ComplianceStatus string

const (
	ComplianceCompliant     ComplianceStatus = "COMPLIANT"
	ComplianceNonCompliant  ComplianceStatus = "NON_COMPLIANT"
	CompliancePendingReview ComplianceStatus = "PENDING_REVIEW"
	ComplianceExempt        ComplianceStatus = "EXEMPT"
	ComplianceUnknown       ComplianceStatus = "UNKNOWN"
)

func (c ComplianceStatus) Valid() bool {
	switch c {
	case ComplianceCompliant, ComplianceNonCompliant, CompliancePendingReview, ComplianceExempt, ComplianceUnknown:
		return true
	}
	return false
}

// AssetAssignment records an asset held by a profile.
type AssetAssignment struct {
	AssetAssignmentID string           `db:"asset_assignment_id" json:"assetAssignmentId"`
	UserProfileID     string           `db:"user_profile_id" json:"userProfileId"`
	AssetID           string           `db:"asset_id" json:"assetId"`
	AssetName         string           `db:"asset_name" json:"assetName"`
	AssetType         AssetType        `db:"asset_type" json:"assetType"`
	SerialNumber      *string          `db:"serial_number" json:"serialNumber,omitempty"`
	Status            AssetStatus      `db:"status" json:"status"`
	ComplianceStatus  ComplianceStatus `db:"compliance_status" json:"complianceStatus"`
	AssignedAt        time.Time        `db:"assigned_at" json:"assignedAt"`
	AssignedBy        *string          `db:"assigned_by" json:"assignedBy,omitempty"`
	UnassignedAt      *time.Time       `db:"unassigned_at" json:"unassignedAt,omitempty"`
	UnassignedBy      *string          `db:"unassigned_by" json:"unassignedBy,omitempty"`
	Notes             *string          `db:"notes" json:"notes,omitempty"`
	Metadata          json.RawMessage  `db:"metadata" json:"metadata,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updatedAt"`
}

type CreateAssetAssignment struct {
	UserProfileID    string            `json:"userProfileId" validate:"required,uuid"`
	AssetID          string            `json:"assetId" validate:"required,max=128"`
	AssetName        string            `json:"assetName" validate:"required,max=256"`
	AssetType        AssetType         `json:"assetType" validate:"required,enum"`
	SerialNumber     *string           `json:"serialNumber" validate:"omitempty,max=128"`
	ComplianceStatus *ComplianceStatus `json:"complianceStatus" validate:"omitempty,enum"`
	AssignedAt       *time.Time        `json:"assignedAt"`
	AssignedBy       *string           `json:"assignedBy" validate:"omitempty,max=128"`
	Notes            *string           `json:"notes" validate:"omitempty,max=4096"`
	Metadata         json.RawMessage   `json:"metadata" validate:"omitempty,json"`
}

type UpdateAssetAssignment struct {
	AssetName        *string           `json:"assetName" validate:"omitempty,max=256"`
	SerialNumber     *string           `json:"serialNumber" validate:"omitempty,max=128"`
	Status           *AssetStatus      `json:"status" validate:"omitempty,enum"`
	ComplianceStatus *ComplianceStatus `json:"complianceStatus" validate:"omitempty,enum"`
	Notes            *string           `json:"notes" validate:"omitempty,max=4096"`
	Metadata         json.RawMessage   `json:"metadata" validate:"omitempty,json"`
}

func (u UpdateAssetAssignment) Empty() bool {
	return u.AssetName == nil && u.SerialNumber == nil && u.Status == nil &&
		u.ComplianceStatus == nil && u.Notes == nil && u.Metadata == nil
}

// Unassignment ends an assignment with one of the released statuses.
type Unassignment struct {
	Status       AssetStatus `json:"status" validate:"required,enum"`
	UnassignedBy *string     `json:"unassignedBy" validate:"omitempty,max=128"`
	UnassignedAt *time.Time  `json:"unassignedAt"`
	Notes        *string     `json:"notes" validate:"omitempty,max=4096"`
}
