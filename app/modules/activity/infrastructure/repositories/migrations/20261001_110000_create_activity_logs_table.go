package activitymigrations

import (
	"context"
	"fmt"

	activitydb "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating activity_logs table...")
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().Model((*activitydb.ActivityLog)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create activity_logs table: %w", err)
			}
			if _, err := tx.NewRaw("CREATE INDEX IF NOT EXISTS idx_activity_logs_club_created ON activity_logs (club_uuid, created_at DESC)").Exec(ctx); err != nil {
				return fmt.Errorf("failed to create activity_logs club index: %w", err)
			}
			if _, err := tx.NewRaw("CREATE INDEX IF NOT EXISTS idx_activity_logs_created ON activity_logs (created_at DESC)").Exec(ctx); err != nil {
				return fmt.Errorf("failed to create activity_logs created index: %w", err)
			}
			fmt.Println("activity_logs table created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping activity_logs table...")
		if _, err := db.NewDropTable().Model((*activitydb.ActivityLog)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop activity_logs table: %w", err)
		}
		return nil
	})
}
