package clubdb

import (
	"time"

	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Club is a participating club and its denormalized score state.
type Club struct {
	bun.BaseModel `bun:"table:clubs,alias:c"`

	UUID           uuid.UUID                    `bun:"uuid,pk,type:uuid"`
	Name           string                       `bun:"name,notnull,unique"`
	Region         string                       `bun:"region"`
	MembersCount   int                          `bun:"members_count,notnull"`
	IsActive       bool                         `bun:"is_active,notnull"`
	Scores         scoringdomain.Tree           `bun:"scores,type:jsonb,notnull"`
	TotalScore     float64                      `bun:"total_score,notnull"`
	Classification scoringdomain.Classification `bun:"classification,notnull"`
	CreatedAt      time.Time                    `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time                    `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
