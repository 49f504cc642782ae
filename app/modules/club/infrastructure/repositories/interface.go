package clubdb

import (
	"context"

	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for club persistence.
type Repository interface {
	// GetByUUID retrieves a club by its UUID.
	GetByUUID(ctx context.Context, db bun.IDB, clubUUID uuid.UUID) (*Club, error)

	// GetByUUIDForUpdate retrieves a club and row-locks it for the rest of the transaction.
	GetByUUIDForUpdate(ctx context.Context, db bun.IDB, clubUUID uuid.UUID) (*Club, error)

	// GetByName retrieves a club by its unique name.
	GetByName(ctx context.Context, db bun.IDB, name string) (*Club, error)

	// List returns clubs ordered by total score, highest first.
	List(ctx context.Context, db bun.IDB, activeOnly bool) ([]*Club, error)

	// ListPage returns clubs in stable UUID order.
	ListPage(ctx context.Context, db bun.IDB, offset, limit int) ([]*Club, error)

	// Create inserts a new club.
	Create(ctx context.Context, db bun.IDB, club *Club) error

	// UpdateScores replaces the score tree and derived totals of a club.
	UpdateScores(ctx context.Context, db bun.IDB, clubUUID uuid.UUID, scores scoringdomain.Tree, result scoringdomain.Result) error

	// Delete removes a club.
	Delete(ctx context.Context, db bun.IDB, clubUUID uuid.UUID) error
}
