package evaluationservice

import (
	"context"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	evaluationdomain "github.com/Black-And-White-Club/campscore/app/modules/evaluation/domain"
	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	"github.com/google/uuid"
)

// Service defines every mutation of the score and lock ledgers.
type Service interface {
	// ApplyScorePatch merges patch into the club's tree and returns the new total.
	ApplyScorePatch(ctx context.Context, clubID uuid.UUID, patch scoringdomain.Tree, actorID uuid.UUID) (scoringdomain.Result, error)

	LockCriterion(ctx context.Context, clubID uuid.UUID, path criteriadomain.Path, score float64, evaluatorID uuid.UUID) (evaluationdomain.LockInfo, error)
	UnlockCriterion(ctx context.Context, clubID uuid.UUID, path criteriadomain.Path, adminID uuid.UUID) error
	// ClearAllLocks removes the records of one club, or of every club when clubID is nil.
	ClearAllLocks(ctx context.Context, clubID *uuid.UUID, adminID uuid.UUID) (int, error)
	IsCriterionLocked(ctx context.Context, clubID uuid.UUID, path criteriadomain.Path) (bool, error)
	// GetEvaluatedCriteria keys the club's records by "category.key[.subKey]".
	GetEvaluatedCriteria(ctx context.Context, clubID uuid.UUID) (map[string]evaluationdomain.LockInfo, error)

	BatchEvaluate(ctx context.Context, req evaluationdomain.BatchRequest) (*evaluationdomain.BatchResult, error)

	FixScores(ctx context.Context, adminID uuid.UUID) (int, error)
	MigrateLegacyEvaluations(ctx context.Context) (*evaluationdomain.MigrationReport, error)
	ResetAllToZero(ctx context.Context, adminID uuid.UUID) (*evaluationdomain.ResetReport, error)
	ResetAllToMax(ctx context.Context, adminID uuid.UUID) (*evaluationdomain.ResetReport, error)
	VerifyTotals(ctx context.Context) ([]evaluationdomain.Drift, error)
}
