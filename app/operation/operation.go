// Package operation runs service operations inside a transaction with
// tracing, metrics, logging and panic recovery.
package operation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/campscore/app/apperrors"
	"github.com/Black-And-White-Club/campscore/app/observability"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// errRollback aborts a transaction whose operation returned a domain failure.
var errRollback = errors.New("operation failed, rolling back")

// Runner holds what every operation of one service shares.
type Runner struct {
	Service   string
	Logger    *slog.Logger
	Metrics   observability.Metrics
	Tracer    trace.Tracer
	DB        *bun.DB
	TxOptions *sql.TxOptions
}

// NewRunner fills nil dependencies with defaults.
func NewRunner(service string, logger *slog.Logger, metrics observability.Metrics, tracer trace.Tracer, db *bun.DB) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &Runner{
		Service:   service,
		Logger:    logger,
		Metrics:   metrics,
		Tracer:    tracer,
		DB:        db,
		TxOptions: &sql.TxOptions{},
	}
}

// TxFunc is the body of an operation. Domain failures go in the result,
// infrastructure errors in the error.
type TxFunc[S any] func(ctx context.Context, db bun.IDB) (results.OperationResult[S, error], error)

// Run executes fn in a transaction and unwraps the result. A failure result
// rolls the transaction back and is returned as the error.
func Run[S any](r *Runner, ctx context.Context, operationName, identifier string, fn TxFunc[S]) (S, error) {
	var zero S
	result, err := withTelemetry(r, ctx, operationName, identifier, func(ctx context.Context) (results.OperationResult[S, error], error) {
		return runInTx(r, ctx, fn)
	})
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, nil
	}
	return *result.Success, nil
}

// RunWithoutTx is Run for operations that manage their own transactions.
func RunWithoutTx[S any](r *Runner, ctx context.Context, operationName, identifier string, fn TxFunc[S]) (S, error) {
	var zero S
	result, err := withTelemetry(r, ctx, operationName, identifier, func(ctx context.Context) (results.OperationResult[S, error], error) {
		var db bun.IDB
		if r.DB != nil {
			db = r.DB
		}
		return fn(ctx, db)
	})
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, nil
	}
	return *result.Success, nil
}

// InTx runs fn in its own transaction, for operations that commit in several
// independent units.
func InTx[S any](r *Runner, ctx context.Context, fn TxFunc[S]) (results.OperationResult[S, error], error) {
	return runInTx(r, ctx, fn)
}

// FromError keeps taxonomy errors as failure results and passes everything
// else through as an infrastructure error.
func FromError[S any](err error) (results.OperationResult[S, error], error) {
	if apperrors.IsDomain(err) {
		return results.FailureResult[S, error](err), nil
	}
	return results.OperationResult[S, error]{}, err
}

func withTelemetry[S any](
	r *Runner,
	ctx context.Context,
	operationName string,
	identifier string,
	op func(ctx context.Context) (results.OperationResult[S, error], error),
) (result results.OperationResult[S, error], err error) {
	var span trace.Span
	if r.Tracer != nil {
		ctx, span = r.Tracer.Start(ctx, r.Service+"."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	r.Metrics.RecordOperationAttempt(ctx, operationName, r.Service)

	startTime := time.Now()
	defer func() {
		r.Metrics.RecordOperationDuration(ctx, operationName, r.Service, time.Since(startTime))
	}()

	r.Logger.InfoContext(ctx, "Operation triggered",
		attr.ExtractCorrelationID(ctx),
		attr.String("service", r.Service),
		attr.String("operation", operationName),
	)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, rec)
			r.Logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			r.Metrics.RecordOperationFailure(ctx, operationName, r.Service)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			result = results.OperationResult[S, error]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		r.Logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		r.Metrics.RecordOperationFailure(ctx, operationName, r.Service)
		span.RecordError(wrappedErr)
		span.SetStatus(codes.Error, wrappedErr.Error())
		return result, wrappedErr
	}

	if result.IsFailure() {
		r.Logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(*result.Failure),
		)
	} else {
		r.Logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	r.Metrics.RecordOperationSuccess(ctx, operationName, r.Service)
	return result, nil
}

func runInTx[S any](
	r *Runner,
	ctx context.Context,
	fn TxFunc[S],
) (results.OperationResult[S, error], error) {
	if r.DB == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, error]
	var err error
	for attempt := 1; ; attempt++ {
		err = r.DB.RunInTx(ctx, r.TxOptions, func(ctx context.Context, tx bun.Tx) error {
			var txErr error
			result, txErr = fn(ctx, tx)
			if txErr != nil {
				return txErr
			}
			if result.IsFailure() {
				return errRollback
			}
			return nil
		})
		if attempt >= maxTxAttempts || !IsSerializationFailure(err) || ctx.Err() != nil {
			break
		}
		r.Logger.DebugContext(ctx, "Retrying serialization failure",
			attr.ExtractCorrelationID(ctx),
			attr.String("service", r.Service),
			attr.Int("attempt", attempt),
		)
		time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
	}
	if errors.Is(err, errRollback) {
		return result, nil
	}
	return result, err
}

// maxTxAttempts bounds how often a transaction aborted by Postgres for a
// serialization conflict is replayed.
const maxTxAttempts = 5

// IsSerializationFailure reports whether err carries SQLSTATE 40001 or 40P01
// from either the bun or the pgx driver.
func IsSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	var code string
	var bunErr interface{ Field(byte) string }
	var pgxErr interface{ SQLState() string }
	switch {
	case errors.As(err, &bunErr):
		code = bunErr.Field('C')
	case errors.As(err, &pgxErr):
		code = pgxErr.SQLState()
	}
	return code == "40001" || code == "40P01"
}
