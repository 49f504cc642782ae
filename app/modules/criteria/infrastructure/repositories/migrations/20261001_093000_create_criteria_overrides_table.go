package criteriamigrations

import (
	"context"
	"fmt"

	criteriadb "github.com/Black-And-White-Club/campscore/app/modules/criteria/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating criteria_overrides table...")
			if _, err := db.NewCreateTable().Model((*criteriadb.CatalogOverride)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create criteria_overrides table: %w", err)
			}
			fmt.Println("criteria_overrides table created successfully!")
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping criteria_overrides table...")
			if _, err := db.NewDropTable().Model((*criteriadb.CatalogOverride)(nil)).IfExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop criteria_overrides table: %w", err)
			}
			return nil
		},
	)
}
