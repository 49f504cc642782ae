package evaluationservice

import (
	"context"
	"errors"
	"fmt"

	activitydomain "github.com/Black-And-White-Club/campscore/app/modules/activity/domain"
	activitydb "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories"
	clubdb "github.com/Black-And-White-Club/campscore/app/modules/club/infrastructure/repositories"
	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	evaluationdomain "github.com/Black-And-White-Club/campscore/app/modules/evaluation/domain"
	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	userdomain "github.com/Black-And-White-Club/campscore/app/modules/user/domain"
	"github.com/Black-And-White-Club/campscore/app/operation"
	"github.com/Black-And-White-Club/campscore/internal/drain"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FixScores recomputes every club with a non-empty tree and rewrites only
// the clubs whose stored total or classification disagrees with the engine.
func (s *EvaluationService) FixScores(ctx context.Context, adminID uuid.UUID) (int, error) {
	return operation.Run(s.op, ctx, "FixScores", adminID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
		actor, err := s.actors.RequireAdmin(ctx, db, adminID, "FixScores")
		if err != nil {
			return operation.FromError[int](err)
		}
		catalog, err := s.criteria.Load(ctx, db)
		if err != nil {
			return results.OperationResult[int, error]{}, err
		}

		fixed := 0
		_, err = drain.Each(ctx, s.cfg.ResetPageSize, s.clubPages(db), func(ctx context.Context, club *clubdb.Club) error {
			if club.Scores.IsEmpty() {
				return nil
			}
			computed := s.engine.Compute(club.Scores, catalog)
			if computed == storedResult(club) {
				return nil
			}
			if err := s.clubs.UpdateScores(ctx, db, club.UUID, club.Scores, computed); err != nil {
				return err
			}
			fixed++
			s.logger.InfoContext(ctx, "Corrected drifted club total",
				attr.ExtractCorrelationID(ctx),
				attr.String("club_uuid", club.UUID.String()),
				attr.Float64("stored_total", club.TotalScore),
				attr.Float64("computed_total", computed.TotalScore),
			)
			return nil
		})
		if err != nil {
			return results.OperationResult[int, error]{}, err
		}

		entry := activitydb.NewEntry(actor, activitydomain.ActionScoresFixed,
			fmt.Sprintf("recomputed totals, %d clubs corrected", fixed))
		if err := s.activity.Append(ctx, db, entry); err != nil {
			return results.OperationResult[int, error]{}, err
		}
		s.metrics.RecordClubsCorrected(ctx, "fix", fixed)
		return results.SuccessResult[int, error](fixed), nil
	})
}

// MigrateLegacyEvaluations rewrites tree leaves that disagree with a locked
// record, so the lock ledger wins. Running it twice changes nothing the
// second time.
func (s *EvaluationService) MigrateLegacyEvaluations(ctx context.Context) (*evaluationdomain.MigrationReport, error) {
	return operation.RunWithoutTx(s.op, ctx, "MigrateLegacyEvaluations", "all", func(ctx context.Context, db bun.IDB) (results.OperationResult[*evaluationdomain.MigrationReport, error], error) {
		ids, err := s.locks.ListLockedClubs(ctx, db)
		if err != nil {
			return results.OperationResult[*evaluationdomain.MigrationReport, error]{}, err
		}
		system := userdomain.System(s.cfg.SystemActorID)

		report := &evaluationdomain.MigrationReport{ClubsScanned: len(ids)}
		for _, id := range ids {
			res, err := operation.InTx(s.op, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
				n, err := s.repairClub(ctx, db, id, system)
				if err != nil {
					return results.OperationResult[int, error]{}, err
				}
				return results.SuccessResult[int, error](n), nil
			})
			if err != nil {
				return results.OperationResult[*evaluationdomain.MigrationReport, error]{}, fmt.Errorf("club %s: %w", id, err)
			}
			if n := *res.Success; n > 0 {
				report.ClubsRepaired++
				report.LeavesRepaired += n
			}
		}

		s.metrics.RecordClubsCorrected(ctx, "legacy", report.ClubsRepaired)
		return results.SuccessResult[*evaluationdomain.MigrationReport, error](report), nil
	})
}

// repairClub copies locked scores into the club's tree and returns how many
// leaves it rewrote. Records outside the catalog are skipped.
func (s *EvaluationService) repairClub(ctx context.Context, db bun.IDB, clubID uuid.UUID, actor *userdomain.Actor) (int, error) {
	club, err := s.clubs.GetByUUIDForUpdate(ctx, db, clubID)
	if err != nil {
		if errors.Is(err, clubdb.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	catalog, err := s.criteria.Load(ctx, db)
	if err != nil {
		return 0, err
	}
	recs, err := s.locks.ListByClub(ctx, db, clubID)
	if err != nil {
		return 0, err
	}

	scores := club.Scores.Clone()
	var logs []*activitydb.ActivityLog
	for _, rec := range recs {
		if !rec.IsLocked {
			continue
		}
		p := rec.Path()
		if c, ok := catalog.Lookup(p); !ok || c.IsDemerit() {
			s.logger.WarnContext(ctx, "Skipping lock record outside the catalog",
				attr.String("club_uuid", clubID.String()),
				attr.String("path", p.String()),
			)
			continue
		}
		cur, ok := scores.Get(p)
		if ok && cur == rec.Score {
			continue
		}
		scores.Set(p, rec.Score)
		logs = append(logs, activitydb.NewEntry(actor, activitydomain.ActionLegacyMigrated,
			fmt.Sprintf("%s restored from lock record", p)).
			ForClub(club.UUID, club.Name).
			WithChange(activitydomain.NewScoreChange(p, cur, rec.Score)))
	}
	if len(logs) == 0 {
		return 0, nil
	}

	if err := s.clubs.UpdateScores(ctx, db, club.UUID, scores, s.engine.Compute(scores, catalog)); err != nil {
		return 0, err
	}
	if err := s.activity.Append(ctx, db, logs...); err != nil {
		return 0, err
	}
	return len(logs), nil
}

// ResetAllToZero deletes every log and lock record, then sets every club to
// the all-zero tree.
func (s *EvaluationService) ResetAllToZero(ctx context.Context, adminID uuid.UUID) (*evaluationdomain.ResetReport, error) {
	return s.resetAll(ctx, "ResetAllToZero", adminID, scoringdomain.ZeroTree, "zero")
}

// ResetAllToMax deletes every log and lock record, then sets every club to
// full marks with no demerits.
func (s *EvaluationService) ResetAllToMax(ctx context.Context, adminID uuid.UUID) (*evaluationdomain.ResetReport, error) {
	return s.resetAll(ctx, "ResetAllToMax", adminID, scoringdomain.MaxTree, "maximum")
}

func (s *EvaluationService) resetAll(
	ctx context.Context,
	operationName string,
	adminID uuid.UUID,
	build func(*criteriadomain.Catalog) scoringdomain.Tree,
	label string,
) (*evaluationdomain.ResetReport, error) {
	return operation.RunWithoutTx(s.op, ctx, operationName, adminID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*evaluationdomain.ResetReport, error], error) {
		guard, err := operation.InTx(s.op, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*criteriadomain.Catalog, error], error) {
			if _, err := s.actors.RequireAdmin(ctx, db, adminID, operationName); err != nil {
				return operation.FromError[*criteriadomain.Catalog](err)
			}
			catalog, err := s.criteria.Load(ctx, db)
			if err != nil {
				return results.OperationResult[*criteriadomain.Catalog, error]{}, err
			}
			return results.SuccessResult[*criteriadomain.Catalog, error](catalog), nil
		})
		if err != nil {
			return results.OperationResult[*evaluationdomain.ResetReport, error]{}, err
		}
		if guard.IsFailure() {
			return results.FailureResult[*evaluationdomain.ResetReport, error](*guard.Failure), nil
		}
		catalog := *guard.Success

		report := &evaluationdomain.ResetReport{}
		report.LogsDeleted, err = drain.Pages(ctx, s.cfg.ResetPageSize, func(ctx context.Context, limit int) (int, error) {
			res, err := operation.InTx(s.op, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
				n, err := s.activity.DeletePage(ctx, db, limit)
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
		if err != nil {
			return results.OperationResult[*evaluationdomain.ResetReport, error]{}, fmt.Errorf("failed to clear activity logs: %w", err)
		}
		report.LocksDeleted, err = s.drainLocks(ctx, nil)
		if err != nil {
			return results.OperationResult[*evaluationdomain.ResetReport, error]{}, fmt.Errorf("failed to clear lock records: %w", err)
		}

		scores := build(catalog)
		result := s.engine.Compute(scores, catalog)
		report.ClubsReset, err = drain.Each(ctx, s.cfg.ResetPageSize, s.clubPages(db), func(ctx context.Context, club *clubdb.Club) error {
			_, err := operation.InTx(s.op, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
				if err := s.clubs.UpdateScores(ctx, db, club.UUID, scores.Clone(), result); err != nil {
					return results.OperationResult[bool, error]{}, err
				}
				return results.SuccessResult[bool, error](true), nil
			})
			return err
		})
		if err != nil {
			return results.OperationResult[*evaluationdomain.ResetReport, error]{}, fmt.Errorf("failed to reset clubs: %w", err)
		}

		entry := activitydb.NewEntry(userdomain.System(s.cfg.SystemActorID), activitydomain.ActionSystemReset,
			fmt.Sprintf("all scores reset to %s: %d clubs reset, %d logs and %d lock records deleted",
				label, report.ClubsReset, report.LogsDeleted, report.LocksDeleted))
		if err := s.appendLog(ctx, entry); err != nil {
			return results.OperationResult[*evaluationdomain.ResetReport, error]{}, err
		}
		return results.SuccessResult[*evaluationdomain.ResetReport, error](report), nil
	})
}

// VerifyTotals lists every club whose stored total or classification
// disagrees with the engine. It writes nothing.
func (s *EvaluationService) VerifyTotals(ctx context.Context) ([]evaluationdomain.Drift, error) {
	return operation.RunWithoutTx(s.op, ctx, "VerifyTotals", "all", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]evaluationdomain.Drift, error], error) {
		catalog, err := s.criteria.Load(ctx, db)
		if err != nil {
			return results.OperationResult[[]evaluationdomain.Drift, error]{}, err
		}
		var drifts []evaluationdomain.Drift
		_, err = drain.Each(ctx, s.cfg.ResetPageSize, s.clubPages(db), func(_ context.Context, club *clubdb.Club) error {
			computed := s.engine.Compute(club.Scores, catalog)
			if stored := storedResult(club); computed != stored {
				drifts = append(drifts, evaluationdomain.Drift{
					ClubID:   club.UUID,
					ClubName: club.Name,
					Stored:   stored,
					Computed: computed,
				})
			}
			return nil
		})
		if err != nil {
			return results.OperationResult[[]evaluationdomain.Drift, error]{}, err
		}
		return results.SuccessResult[[]evaluationdomain.Drift, error](drifts), nil
	})
}

func (s *EvaluationService) clubPages(db bun.IDB) func(ctx context.Context, offset, limit int) ([]*clubdb.Club, error) {
	return func(ctx context.Context, offset, limit int) ([]*clubdb.Club, error) {
		return s.clubs.ListPage(ctx, db, offset, limit)
	}
}

func storedResult(c *clubdb.Club) scoringdomain.Result {
	return scoringdomain.Result{TotalScore: c.TotalScore, Classification: c.Classification}
}
