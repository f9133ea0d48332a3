package userprofilesrepo

import (
	"fmt"

	"github.com/jrazmi/helix/core/repositories"
)

// MaxHierarchyDepth bounds walks up and down the management tree.
const MaxHierarchyDepth = 64

// CheckManagerChain decides whether userID may report to managerID.
// managerChain lists managerID followed by its ancestors, nearest first.
func CheckManagerChain(userID string, managerID string, managerChain []string) error {
	if userID == managerID {
		return fmt.Errorf("%w: %s cannot manage itself", repositories.ErrManagerCycle, userID)
	}
	for _, id := range managerChain {
		if id == userID {
			return fmt.Errorf("%w: %s already reports to %s", repositories.ErrManagerCycle, managerID, userID)
		}
	}
	if len(managerChain) >= MaxHierarchyDepth {
		return fmt.Errorf("%w: management chain deeper than %d", repositories.ErrManagerCycle, MaxHierarchyDepth)
	}
	return nil
}

// SameTenant reports whether two profiles share a tenant. Profiles without a
// tenant only match each other.
func SameTenant(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// CheckTenantMove decides whether a profile may move to tenant. Manager
// edges never cross tenants, so the move is refused while the profile's
// manager or any of its direct reports stays behind.
func CheckTenantMove(tenant *string, manager *UserProfile, reports []UserProfile) error {
	if manager != nil && !SameTenant(manager.TenantID, tenant) {
		return fmt.Errorf("%w: manager %s is in another tenant", repositories.ErrTenantMismatch, manager.UserProfileID)
	}
	for _, report := range reports {
		if !SameTenant(report.TenantID, tenant) {
			return fmt.Errorf("%w: direct report %s is in another tenant", repositories.ErrTenantMismatch, report.UserProfileID)
		}
	}
	return nil
}
