package evaluationmigrations

import (
	"context"
	"fmt"

	evaluationdb "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating evaluated_criteria table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().Model((*evaluationdb.EvaluatedCriterion)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create evaluated_criteria table: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_evaluated_criteria_locked ON evaluated_criteria (club_uuid) WHERE is_locked;
			`); err != nil {
				return fmt.Errorf("failed to create evaluated_criteria indexes: %w", err)
			}
			fmt.Println("evaluated_criteria table created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping evaluated_criteria table...")
		if _, err := db.NewDropTable().Model((*evaluationdb.EvaluatedCriterion)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop evaluated_criteria table: %w", err)
		}
		return nil
	})
}
