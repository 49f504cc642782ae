package evaluationservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/campscore/app/apperrors"
	activitydomain "github.com/Black-And-White-Club/campscore/app/modules/activity/domain"
	activitydb "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories"
	evaluationdomain "github.com/Black-And-White-Club/campscore/app/modules/evaluation/domain"
	evaluationdb "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/repositories"
	userdomain "github.com/Black-And-White-Club/campscore/app/modules/user/domain"
	"github.com/Black-And-White-Club/campscore/app/operation"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyBatch is returned when a batch names no clubs.
var ErrEmptyBatch = fmt.Errorf("%w: batch contains no clubs", apperrors.ErrInvalidRequest)

// BatchEvaluate applies one outcome to every club in the request. Each club
// runs in its own transaction; a failing club is reported in its result and
// does not stop the others.
func (s *EvaluationService) BatchEvaluate(ctx context.Context, req evaluationdomain.BatchRequest) (*evaluationdomain.BatchResult, error) {
	return operation.RunWithoutTx(s.op, ctx, "BatchEvaluate", req.Path.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*evaluationdomain.BatchResult, error], error) {
		if len(req.ClubIDs) == 0 {
			return results.FailureResult[*evaluationdomain.BatchResult, error](ErrEmptyBatch), nil
		}
		actor, err := s.actors.Resolve(ctx, db, req.EvaluatorID)
		if err != nil {
			return operation.FromError[*evaluationdomain.BatchResult](err)
		}

		out := &evaluationdomain.BatchResult{
			Processed: len(req.ClubIDs),
			Results:   make([]evaluationdomain.ClubResult, len(req.ClubIDs)),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.BatchConcurrency)
		for i, clubID := range req.ClubIDs {
			g.Go(func() error {
				out.Results[i] = s.evaluateClub(gctx, clubID, req, actor)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return results.OperationResult[*evaluationdomain.BatchResult, error]{}, err
		}

		for _, r := range out.Results {
			if r.Success {
				out.Succeeded++
			} else {
				out.Failed++
			}
		}
		s.metrics.RecordBatchResult(ctx, out.Succeeded, out.Failed)
		s.logger.InfoContext(ctx, "Batch evaluation finished",
			attr.ExtractCorrelationID(ctx),
			attr.String("path", req.Path.String()),
			attr.String("outcome", string(req.Outcome)),
			attr.Int("succeeded", out.Succeeded),
			attr.Int("failed", out.Failed),
		)
		return results.SuccessResult[*evaluationdomain.BatchResult, error](out), nil
	})
}

// evaluateClub runs one club of a batch. Every error, domain or not, becomes
// a failed ClubResult.
func (s *EvaluationService) evaluateClub(ctx context.Context, clubID uuid.UUID, req evaluationdomain.BatchRequest, actor *userdomain.Actor) evaluationdomain.ClubResult {
	res, err := operation.InTx(s.op, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[evaluationdomain.ClubResult, error], error) {
		club, err := s.loadClub(ctx, db, clubID, true)
		if err != nil {
			return operation.FromError[evaluationdomain.ClubResult](err)
		}
		catalog, err := s.criteria.Load(ctx, db)
		if err != nil {
			return results.OperationResult[evaluationdomain.ClubResult, error]{}, err
		}
		c, err := lookupLockable(catalog, req.Path)
		if err != nil {
			return results.FailureResult[evaluationdomain.ClubResult, error](err), nil
		}
		maxScore, partial := c.Max, c.Partial
		if req.Max > 0 {
			maxScore = req.Max
		}
		if req.Partial > 0 {
			partial = req.Partial
		}

		prev, err := s.locks.Get(ctx, db, club.UUID, req.Path)
		switch {
		case err == nil && prev.IsLocked:
			return results.FailureResult[evaluationdomain.ClubResult, error](
				fmt.Errorf("%w: %s on %s", apperrors.ErrAlreadyEvaluated, req.Path, club.Name)), nil
		case err != nil && !errors.Is(err, evaluationdb.ErrNotFound):
			return results.OperationResult[evaluationdomain.ClubResult, error]{}, err
		}

		value, err := req.Outcome.Value(req.Path, maxScore, partial)
		if err != nil {
			return results.FailureResult[evaluationdomain.ClubResult, error](err), nil
		}
		if err := validateValue(c, value); err != nil {
			return results.FailureResult[evaluationdomain.ClubResult, error](err), nil
		}

		scores := club.Scores.Clone()
		old, _ := scores.Get(req.Path)
		scores.Set(req.Path, value)
		result := s.engine.Compute(scores, catalog)

		rec := &evaluationdb.EvaluatedCriterion{
			ClubUUID:        club.UUID,
			Category:        req.Path.Category,
			CriteriaKey:     req.Path.Key,
			SubKey:          req.Path.SubKey,
			Score:           value,
			EvaluatedBy:     actor.UUID,
			EvaluatedByName: actor.Name,
			EvaluatedAt:     time.Now().UTC(),
			IsLocked:        true,
			Notes:           req.Notes,
		}
		if err := s.locks.Upsert(ctx, db, rec); err != nil {
			return results.OperationResult[evaluationdomain.ClubResult, error]{}, err
		}
		if err := s.clubs.UpdateScores(ctx, db, club.UUID, scores, result); err != nil {
			return results.OperationResult[evaluationdomain.ClubResult, error]{}, err
		}

		details := fmt.Sprintf("batch %s evaluation of %s: %v", req.Outcome, req.Path, value)
		if req.Notes != "" {
			details += " (" + req.Notes + ")"
		}
		entry := activitydb.NewEntry(actor, activitydomain.ActionBatchEvaluation, details).
			ForClub(club.UUID, club.Name).
			WithChange(activitydomain.NewScoreChange(req.Path, old, value))
		if err := s.activity.Append(ctx, db, entry); err != nil {
			return results.OperationResult[evaluationdomain.ClubResult, error]{}, err
		}
		if value != old {
			s.metrics.RecordScoreChange(ctx, req.Path.Category, value-old)
		}

		return results.SuccessResult[evaluationdomain.ClubResult, error](evaluationdomain.ClubResult{
			ClubID:   club.UUID,
			ClubName: club.Name,
			Success:  true,
			Score:    value,
		}), nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Batch evaluation failed for club",
			attr.ExtractCorrelationID(ctx),
			attr.String("club_uuid", clubID.String()),
			attr.Error(err),
		)
		return evaluationdomain.ClubResult{ClubID: clubID, Reason: err.Error(), Code: apperrors.Code(err)}
	}
	if res.IsFailure() {
		failure := *res.Failure
		return evaluationdomain.ClubResult{ClubID: clubID, Reason: failure.Error(), Code: apperrors.Code(failure)}
	}
	return *res.Success
}
