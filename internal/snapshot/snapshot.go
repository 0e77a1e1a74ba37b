package snapshot

import (
	"context"

	"nateiva/internal/models"
)

// Snapshot is the serialized view of the entity collections. The JSON shape
// is the interchange format consumed by frontends and import tools, so the
// key names are part of the contract.
type Snapshot struct {
	Users              []*models.User              `json:"users"`
	CurrentUser        *models.User                `json:"currentUser,omitempty"`
	Organizations      []*models.Organization      `json:"organizations"`
	Memberships        []*models.Membership        `json:"memberships"`
	MembershipRequests []*models.MembershipRequest `json:"membershipRequests"`
}

// Store persists snapshots. Implementations must replace the previous
// snapshot wholesale; Load on an empty store returns an empty snapshot,
// not an error.
type Store interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}
