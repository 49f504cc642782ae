package criteriadb

import (
	"time"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// overrideRowID is the primary key of the only override row.
const overrideRowID = 1

// CatalogOverride is the administrator supplied catalog. At most one row exists.
type CatalogOverride struct {
	bun.BaseModel `bun:"table:criteria_overrides,alias:co"`

	ID        int                    `bun:"id,pk"`
	Version   int                    `bun:"version,notnull"`
	Catalog   criteriadomain.Catalog `bun:"catalog,type:jsonb,notnull"`
	UpdatedBy uuid.UUID              `bun:"updated_by,type:uuid,notnull"`
	UpdatedAt time.Time              `bun:"updated_at,notnull"`
}
