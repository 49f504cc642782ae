package evaluationservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/campscore/app/apperrors"
	activitydomain "github.com/Black-And-White-Club/campscore/app/modules/activity/domain"
	activitydb "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories"
	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	evaluationdomain "github.com/Black-And-White-Club/campscore/app/modules/evaluation/domain"
	evaluationdb "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/repositories"
	"github.com/Black-And-White-Club/campscore/app/operation"
	"github.com/Black-And-White-Club/campscore/internal/drain"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LockCriterion records score as the evaluated value of path. Calling it
// again refreshes the score, evaluator and timestamp.
func (s *EvaluationService) LockCriterion(ctx context.Context, clubID uuid.UUID, path criteriadomain.Path, score float64, evaluatorID uuid.UUID) (evaluationdomain.LockInfo, error) {
	return operation.Run(s.op, ctx, "LockCriterion", clubID.String()+":"+path.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[evaluationdomain.LockInfo, error], error) {
		actor, err := s.actors.Resolve(ctx, db, evaluatorID)
		if err != nil {
			return operation.FromError[evaluationdomain.LockInfo](err)
		}
		club, err := s.loadClub(ctx, db, clubID, false)
		if err != nil {
			return operation.FromError[evaluationdomain.LockInfo](err)
		}
		catalog, err := s.criteria.Load(ctx, db)
		if err != nil {
			return results.OperationResult[evaluationdomain.LockInfo, error]{}, err
		}
		c, err := lookupLockable(catalog, path)
		if err != nil {
			return results.FailureResult[evaluationdomain.LockInfo, error](err), nil
		}
		if err := validateValue(c, score); err != nil {
			return results.FailureResult[evaluationdomain.LockInfo, error](err), nil
		}

		rec := &evaluationdb.EvaluatedCriterion{
			ClubUUID:        club.UUID,
			Category:        path.Category,
			CriteriaKey:     path.Key,
			SubKey:          path.SubKey,
			Score:           score,
			EvaluatedBy:     actor.UUID,
			EvaluatedByName: actor.Name,
			EvaluatedAt:     time.Now().UTC(),
			IsLocked:        true,
		}
		if prev, err := s.locks.Get(ctx, db, club.UUID, path); err == nil {
			rec.Notes = prev.Notes
		} else if !errors.Is(err, evaluationdb.ErrNotFound) {
			return results.OperationResult[evaluationdomain.LockInfo, error]{}, err
		}
		if err := s.locks.Upsert(ctx, db, rec); err != nil {
			return results.OperationResult[evaluationdomain.LockInfo, error]{}, err
		}

		entry := activitydb.NewEntry(actor, activitydomain.ActionCriterionLocked,
			fmt.Sprintf("%s locked at %v", path, score)).ForClub(club.UUID, club.Name)
		if err := s.activity.Append(ctx, db, entry); err != nil {
			return results.OperationResult[evaluationdomain.LockInfo, error]{}, err
		}
		return results.SuccessResult[evaluationdomain.LockInfo, error](rec.Info()), nil
	})
}

// UnlockCriterion clears the lock flag and keeps the record for audit.
func (s *EvaluationService) UnlockCriterion(ctx context.Context, clubID uuid.UUID, path criteriadomain.Path, adminID uuid.UUID) error {
	_, err := operation.Run(s.op, ctx, "UnlockCriterion", clubID.String()+":"+path.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		actor, err := s.actors.RequireAdmin(ctx, db, adminID, "UnlockCriterion")
		if err != nil {
			return operation.FromError[bool](err)
		}
		club, err := s.loadClub(ctx, db, clubID, false)
		if err != nil {
			return operation.FromError[bool](err)
		}
		catalog, err := s.criteria.Load(ctx, db)
		if err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		if catalog.IsDemerit(path.Category) {
			return results.FailureResult[bool, error](fmt.Errorf("%w: %s", apperrors.ErrDemeritNotLockable, path)), nil
		}

		if err := s.locks.SetLocked(ctx, db, club.UUID, path, false); err != nil {
			if errors.Is(err, evaluationdb.ErrNotFound) {
				return results.FailureResult[bool, error](apperrors.NotFound("lock", path.String())), nil
			}
			return results.OperationResult[bool, error]{}, err
		}

		entry := activitydb.NewEntry(actor, activitydomain.ActionCriterionUnlocked,
			fmt.Sprintf("%s unlocked", path)).ForClub(club.UUID, club.Name)
		if err := s.activity.Append(ctx, db, entry); err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		return results.SuccessResult[bool, error](true), nil
	})
	return err
}

// ClearAllLocks deletes lock records in pages, each page in its own
// transaction.
func (s *EvaluationService) ClearAllLocks(ctx context.Context, clubID *uuid.UUID, adminID uuid.UUID) (int, error) {
	scope := "all"
	if clubID != nil {
		scope = clubID.String()
	}
	return operation.RunWithoutTx(s.op, ctx, "ClearAllLocks", scope, func(ctx context.Context, _ bun.IDB) (results.OperationResult[int, error], error) {
		var clubName string
		guard, err := operation.InTx(s.op, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*activitydb.ActivityLog, error], error) {
			actor, err := s.actors.RequireAdmin(ctx, db, adminID, "ClearAllLocks")
			if err != nil {
				return operation.FromError[*activitydb.ActivityLog](err)
			}
			entry := activitydb.NewEntry(actor, activitydomain.ActionLocksCleared, "")
			if clubID != nil {
				club, err := s.loadClub(ctx, db, *clubID, false)
				if err != nil {
					return operation.FromError[*activitydb.ActivityLog](err)
				}
				clubName = club.Name
				entry.ForClub(club.UUID, club.Name)
			}
			return results.SuccessResult[*activitydb.ActivityLog, error](entry), nil
		})
		if err != nil {
			return results.OperationResult[int, error]{}, err
		}
		if guard.IsFailure() {
			return results.FailureResult[int, error](*guard.Failure), nil
		}

		removed, err := s.drainLocks(ctx, clubID)
		if err != nil {
			return results.OperationResult[int, error]{}, err
		}

		entry := *guard.Success
		if clubID != nil {
			entry.Details = fmt.Sprintf("%d lock records cleared for club %q", removed, clubName)
		} else {
			entry.Details = fmt.Sprintf("%d lock records cleared for all clubs", removed)
		}
		if err := s.appendLog(ctx, entry); err != nil {
			return results.OperationResult[int, error]{}, err
		}
		return results.SuccessResult[int, error](removed), nil
	})
}

// IsCriterionLocked reports whether path is locked for the club. Demerits are
// never locked.
func (s *EvaluationService) IsCriterionLocked(ctx context.Context, clubID uuid.UUID, path criteriadomain.Path) (bool, error) {
	return operation.RunWithoutTx(s.op, ctx, "IsCriterionLocked", clubID.String()+":"+path.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		catalog, err := s.criteria.Load(ctx, db)
		if err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		if catalog.IsDemerit(path.Category) {
			return results.SuccessResult[bool, error](false), nil
		}
		rec, err := s.locks.Get(ctx, db, clubID, path)
		if err != nil {
			if errors.Is(err, evaluationdb.ErrNotFound) {
				return results.SuccessResult[bool, error](false), nil
			}
			return results.OperationResult[bool, error]{}, err
		}
		return results.SuccessResult[bool, error](rec.IsLocked), nil
	})
}

func (s *EvaluationService) GetEvaluatedCriteria(ctx context.Context, clubID uuid.UUID) (map[string]evaluationdomain.LockInfo, error) {
	return operation.RunWithoutTx(s.op, ctx, "GetEvaluatedCriteria", clubID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[map[string]evaluationdomain.LockInfo, error], error) {
		recs, err := s.locks.ListByClub(ctx, db, clubID)
		if err != nil {
			return results.OperationResult[map[string]evaluationdomain.LockInfo, error]{}, err
		}
		out := make(map[string]evaluationdomain.LockInfo, len(recs))
		for _, r := range recs {
			out[r.Path().String()] = r.Info()
		}
		return results.SuccessResult[map[string]evaluationdomain.LockInfo, error](out), nil
	})
}

// drainLocks deletes lock records page by page.
func (s *EvaluationService) drainLocks(ctx context.Context, clubID *uuid.UUID) (int, error) {
	return drain.Pages(ctx, s.cfg.ResetPageSize, func(ctx context.Context, limit int) (int, error) {
		res, err := operation.InTx(s.op, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
			n, err := s.locks.DeletePage(ctx, db, clubID, limit)
			if err != nil {
				return results.OperationResult[int, error]{}, err
			}
			return results.SuccessResult[int, error](n), nil
		})
		if err != nil {
			return 0, err
		}
		return *res.Success, nil
	})
}

// appendLog writes one entry in its own transaction.
func (s *EvaluationService) appendLog(ctx context.Context, entry *activitydb.ActivityLog) error {
	_, err := operation.InTx(s.op, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		if err := s.activity.Append(ctx, db, entry); err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		return results.SuccessResult[bool, error](true), nil
	})
	return err
}
