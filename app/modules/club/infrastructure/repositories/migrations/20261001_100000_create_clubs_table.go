package clubmigrations

import (
	"context"
	"fmt"

	clubdb "github.com/Black-And-White-Club/campscore/app/modules/club/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating clubs table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().Model((*clubdb.Club)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create clubs table: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_clubs_total_score ON clubs (total_score DESC, name);
				CREATE INDEX IF NOT EXISTS idx_clubs_region ON clubs (region);
			`); err != nil {
				return fmt.Errorf("failed to create clubs indexes: %w", err)
			}
			fmt.Println("clubs table created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping clubs table...")
		if _, err := db.NewDropTable().Model((*clubdb.Club)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop clubs table: %w", err)
		}
		return nil
	})
}
