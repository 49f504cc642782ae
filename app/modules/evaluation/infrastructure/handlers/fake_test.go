package evaluationhandlers

import (
	"context"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	evaluationservice "github.com/Black-And-White-Club/campscore/app/modules/evaluation/application"
	evaluationdomain "github.com/Black-And-White-Club/campscore/app/modules/evaluation/domain"
	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	"github.com/google/uuid"
)

// FakeEvaluationService answers with the configured funcs and records calls.
type FakeEvaluationService struct {
	trace []string

	ApplyScorePatchFunc func(ctx context.Context, clubID uuid.UUID, patch scoringdomain.Tree, actorID uuid.UUID) (scoringdomain.Result, error)
	LockCriterionFunc   func(ctx context.Context, clubID uuid.UUID, path criteriadomain.Path, score float64, evaluatorID uuid.UUID) (evaluationdomain.LockInfo, error)
	UnlockCriterionFunc func(ctx context.Context, clubID uuid.UUID, path criteriadomain.Path, adminID uuid.UUID) error
	BatchEvaluateFunc   func(ctx context.Context, req evaluationdomain.BatchRequest) (*evaluationdomain.BatchResult, error)
	FixScoresFunc       func(ctx context.Context, adminID uuid.UUID) (int, error)
}

func NewFakeEvaluationService() *FakeEvaluationService {
	return &FakeEvaluationService{trace: []string{}}
}

func (f *FakeEvaluationService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeEvaluationService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeEvaluationService) ApplyScorePatch(ctx context.Context, clubID uuid.UUID, patch scoringdomain.Tree, actorID uuid.UUID) (scoringdomain.Result, error) {
	f.record("ApplyScorePatch")
	if f.ApplyScorePatchFunc != nil {
		return f.ApplyScorePatchFunc(ctx, clubID, patch, actorID)
	}
	return scoringdomain.Result{}, nil
}

func (f *FakeEvaluationService) LockCriterion(ctx context.Context, clubID uuid.UUID, path criteriadomain.Path, score float64, evaluatorID uuid.UUID) (evaluationdomain.LockInfo, error) {
	f.record("LockCriterion")
	if f.LockCriterionFunc != nil {
		return f.LockCriterionFunc(ctx, clubID, path, score, evaluatorID)
	}
	return evaluationdomain.LockInfo{}, nil
}

func (f *FakeEvaluationService) UnlockCriterion(ctx context.Context, clubID uuid.UUID, path criteriadomain.Path, adminID uuid.UUID) error {
	f.record("UnlockCriterion")
	if f.UnlockCriterionFunc != nil {
		return f.UnlockCriterionFunc(ctx, clubID, path, adminID)
	}
	return nil
}

func (f *FakeEvaluationService) ClearAllLocks(context.Context, *uuid.UUID, uuid.UUID) (int, error) {
	f.record("ClearAllLocks")
	return 0, nil
}

func (f *FakeEvaluationService) IsCriterionLocked(context.Context, uuid.UUID, criteriadomain.Path) (bool, error) {
	f.record("IsCriterionLocked")
	return false, nil
}

func (f *FakeEvaluationService) GetEvaluatedCriteria(context.Context, uuid.UUID) (map[string]evaluationdomain.LockInfo, error) {
	f.record("GetEvaluatedCriteria")
	return map[string]evaluationdomain.LockInfo{}, nil
}

func (f *FakeEvaluationService) BatchEvaluate(ctx context.Context, req evaluationdomain.BatchRequest) (*evaluationdomain.BatchResult, error) {
	f.record("BatchEvaluate")
	if f.BatchEvaluateFunc != nil {
		return f.BatchEvaluateFunc(ctx, req)
	}
	return &evaluationdomain.BatchResult{}, nil
}

func (f *FakeEvaluationService) FixScores(ctx context.Context, adminID uuid.UUID) (int, error) {
	f.record("FixScores")
	if f.FixScoresFunc != nil {
		return f.FixScoresFunc(ctx, adminID)
	}
	return 0, nil
}

func (f *FakeEvaluationService) MigrateLegacyEvaluations(context.Context) (*evaluationdomain.MigrationReport, error) {
	f.record("MigrateLegacyEvaluations")
	return &evaluationdomain.MigrationReport{}, nil
}

func (f *FakeEvaluationService) ResetAllToZero(context.Context, uuid.UUID) (*evaluationdomain.ResetReport, error) {
	f.record("ResetAllToZero")
	return &evaluationdomain.ResetReport{}, nil
}

func (f *FakeEvaluationService) ResetAllToMax(context.Context, uuid.UUID) (*evaluationdomain.ResetReport, error) {
	f.record("ResetAllToMax")
	return &evaluationdomain.ResetReport{}, nil
}

func (f *FakeEvaluationService) VerifyTotals(context.Context) ([]evaluationdomain.Drift, error) {
	f.record("VerifyTotals")
	return nil, nil
}

var _ evaluationservice.Service = (*FakeEvaluationService)(nil)
