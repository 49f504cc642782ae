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
	evaluationdb "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/repositories"
	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	userdomain "github.com/Black-And-White-Club/campscore/app/modules/user/domain"
	"github.com/Black-And-White-Club/campscore/app/operation"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ApplyScorePatch validates patch, merges it into the club's tree, updates
// the lock ledger and audit log, and stores the recomputed total. Nothing is
// written unless every leaf passes validation and lock checks.
func (s *EvaluationService) ApplyScorePatch(ctx context.Context, clubID uuid.UUID, patch scoringdomain.Tree, actorID uuid.UUID) (scoringdomain.Result, error) {
	return operation.Run(s.op, ctx, "ApplyScorePatch", clubID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[scoringdomain.Result, error], error) {
		actor, err := s.actors.Resolve(ctx, db, actorID)
		if err != nil {
			return operation.FromError[scoringdomain.Result](err)
		}
		club, err := s.loadClub(ctx, db, clubID, true)
		if err != nil {
			return operation.FromError[scoringdomain.Result](err)
		}
		catalog, err := s.criteria.Load(ctx, db)
		if err != nil {
			return results.OperationResult[scoringdomain.Result, error]{}, err
		}

		criteria, err := validatePatch(catalog, patch)
		if err != nil {
			return results.FailureResult[scoringdomain.Result, error](err), nil
		}
		existing, err := s.checkLocks(ctx, db, club.UUID, criteria, actor)
		if err != nil {
			return operation.FromError[scoringdomain.Result](err)
		}

		merged, changes := club.Scores.Merge(patch)
		result := s.engine.Compute(merged, catalog)
		now := time.Now().UTC()

		logs := make([]*activitydb.ActivityLog, 0, len(changes))
		for _, ch := range changes {
			if !catalog.IsDemerit(ch.Path.Category) {
				rec := &evaluationdb.EvaluatedCriterion{
					ClubUUID:        club.UUID,
					Category:        ch.Path.Category,
					CriteriaKey:     ch.Path.Key,
					SubKey:          ch.Path.SubKey,
					Score:           ch.New,
					EvaluatedBy:     actor.UUID,
					EvaluatedByName: actor.Name,
					EvaluatedAt:     now,
					IsLocked:        true,
				}
				if prev, ok := existing[ch.Path]; ok {
					rec.Notes = prev.Notes
				}
				if err := s.locks.Upsert(ctx, db, rec); err != nil {
					return results.OperationResult[scoringdomain.Result, error]{}, err
				}
			}
			logs = append(logs, activitydb.NewEntry(actor, activitydomain.ActionScoreUpdate,
				fmt.Sprintf("%s changed from %v to %v", ch.Path, ch.Old, ch.New)).
				ForClub(club.UUID, club.Name).
				WithChange(activitydomain.NewScoreChange(ch.Path, ch.Old, ch.New)))
		}

		if err := s.clubs.UpdateScores(ctx, db, club.UUID, merged, result); err != nil {
			return results.OperationResult[scoringdomain.Result, error]{}, err
		}
		if len(logs) > 0 {
			if err := s.activity.Append(ctx, db, logs...); err != nil {
				return results.OperationResult[scoringdomain.Result, error]{}, err
			}
		}
		for _, ch := range changes {
			s.metrics.RecordScoreChange(ctx, ch.Path.Category, ch.Difference())
		}

		s.logger.InfoContext(ctx, "Score patch applied",
			attr.ExtractCorrelationID(ctx),
			attr.String("club_uuid", club.UUID.String()),
			attr.Int("changed_leaves", len(changes)),
			attr.Float64("total_score", result.TotalScore),
			attr.String("classification", string(result.Classification)),
		)
		return results.SuccessResult[scoringdomain.Result, error](result), nil
	})
}

// checkLocks rejects any additive leaf of the patch that is locked, unless
// the actor is an administrator. It returns the records it found by path.
func (s *EvaluationService) checkLocks(
	ctx context.Context,
	db bun.IDB,
	clubID uuid.UUID,
	criteria []criteriadomain.Criterion,
	actor *userdomain.Actor,
) (map[criteriadomain.Path]*evaluationdb.EvaluatedCriterion, error) {
	found := map[criteriadomain.Path]*evaluationdb.EvaluatedCriterion{}
	for _, c := range criteria {
		if c.IsDemerit() {
			continue
		}
		rec, err := s.locks.Get(ctx, db, clubID, c.Path)
		if err != nil {
			if errors.Is(err, evaluationdb.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if rec.IsLocked && !userdomain.IsAdmin(actor) {
			return nil, &apperrors.CriterionLockedError{Path: c.Path, EvaluatedBy: rec.EvaluatedBy, EvaluatedAt: rec.EvaluatedAt}
		}
		found[c.Path] = rec
	}
	return found, nil
}
