package clubservice

import (
	"context"

	clubdb "github.com/Black-And-White-Club/campscore/app/modules/club/infrastructure/repositories"
	"github.com/google/uuid"
)

// Service defines the interface for club operations.
type Service interface {
	// CreateClub registers a club with an all-zero score tree. Admin only.
	CreateClub(ctx context.Context, name, region string, membersCount int, adminID uuid.UUID) (*clubdb.Club, error)

	// GetClub retrieves a club by UUID.
	GetClub(ctx context.Context, clubUUID uuid.UUID) (*clubdb.Club, error)

	// ListClubs returns clubs ranked by total score.
	ListClubs(ctx context.Context, activeOnly bool) ([]*clubdb.Club, error)

	// DeleteClub removes a club. Its logs and locks stay until a full reset. Admin only.
	DeleteClub(ctx context.Context, clubUUID uuid.UUID, adminID uuid.UUID) error
}
