package evaluationhandlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/campscore/app/apperrors"
	evaluationservice "github.com/Black-And-White-Club/campscore/app/modules/evaluation/application"
	evaluationdomain "github.com/Black-And-White-Club/campscore/app/modules/evaluation/domain"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TopicMetadataKey carries the topic a reply must be published on.
const TopicMetadataKey = "topic"

// EvaluationHandlers implements Handlers on top of the evaluation service.
type EvaluationHandlers struct {
	service evaluationservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewEvaluationHandlers creates a new EvaluationHandlers instance.
func NewEvaluationHandlers(
	service evaluationservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &EvaluationHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleScorePatchRequest applies a partial score tree to one club.
func (h *EvaluationHandlers) HandleScorePatchRequest(msg *message.Message) ([]*message.Message, error) {
	ctx, span := h.tracer.Start(msg.Context(), "EvaluationHandlers.HandleScorePatchRequest")
	defer span.End()

	var payload evaluationdomain.ScorePatchRequestedPayloadV1
	if err := h.decode(ctx, msg, &payload); err != nil {
		return h.rejected(msg, evaluationdomain.ScorePatchFailedV1, err)
	}

	result, err := h.service.ApplyScorePatch(ctx, payload.ClubID, payload.Scores, payload.ActorID)
	if err != nil {
		return h.failed(ctx, msg, evaluationdomain.ScorePatchFailedV1, &payload.ClubID, err)
	}
	return h.reply(msg, evaluationdomain.ScorePatchCompletedV1, evaluationdomain.ScorePatchCompletedPayloadV1{
		ClubID: payload.ClubID,
		Result: result,
	})
}

// HandleBatchRequest applies one outcome to many clubs. Per-club failures
// travel inside the completed reply.
func (h *EvaluationHandlers) HandleBatchRequest(msg *message.Message) ([]*message.Message, error) {
	ctx, span := h.tracer.Start(msg.Context(), "EvaluationHandlers.HandleBatchRequest")
	defer span.End()

	var payload evaluationdomain.BatchRequestedPayloadV1
	if err := h.decode(ctx, msg, &payload); err != nil {
		return h.rejected(msg, evaluationdomain.BatchFailedV1, err)
	}

	result, err := h.service.BatchEvaluate(ctx, payload.BatchRequest)
	if err != nil {
		return h.failed(ctx, msg, evaluationdomain.BatchFailedV1, nil, err)
	}

	h.logger.InfoContext(ctx, "Batch evaluation finished",
		attr.CorrelationIDFromMsg(msg),
		attr.String("path", payload.Path.String()),
		attr.Int("succeeded", result.Succeeded),
		attr.Int("failed", result.Failed),
	)
	return h.reply(msg, evaluationdomain.BatchCompletedV1, evaluationdomain.BatchCompletedPayloadV1{BatchResult: *result})
}

// HandleCriterionLockRequest records an evaluation without touching the tree.
func (h *EvaluationHandlers) HandleCriterionLockRequest(msg *message.Message) ([]*message.Message, error) {
	ctx, span := h.tracer.Start(msg.Context(), "EvaluationHandlers.HandleCriterionLockRequest")
	defer span.End()

	var payload evaluationdomain.CriterionLockRequestedPayloadV1
	if err := h.decode(ctx, msg, &payload); err != nil {
		return h.rejected(msg, evaluationdomain.CriterionLockFailedV1, err)
	}

	info, err := h.service.LockCriterion(ctx, payload.ClubID, payload.Path, payload.Score, payload.EvaluatorID)
	if err != nil {
		return h.failed(ctx, msg, evaluationdomain.CriterionLockFailedV1, &payload.ClubID, err)
	}
	return h.reply(msg, evaluationdomain.CriterionLockCompletedV1, evaluationdomain.CriterionLockCompletedPayloadV1{
		ClubID: payload.ClubID,
		Lock:   info,
	})
}

// HandleCriterionUnlockRequest reopens a locked criterion for re-evaluation.
func (h *EvaluationHandlers) HandleCriterionUnlockRequest(msg *message.Message) ([]*message.Message, error) {
	ctx, span := h.tracer.Start(msg.Context(), "EvaluationHandlers.HandleCriterionUnlockRequest")
	defer span.End()

	var payload evaluationdomain.CriterionUnlockRequestedPayloadV1
	if err := h.decode(ctx, msg, &payload); err != nil {
		return h.rejected(msg, evaluationdomain.CriterionUnlockFailedV1, err)
	}

	if err := h.service.UnlockCriterion(ctx, payload.ClubID, payload.Path, payload.AdminID); err != nil {
		return h.failed(ctx, msg, evaluationdomain.CriterionUnlockFailedV1, &payload.ClubID, err)
	}
	return h.reply(msg, evaluationdomain.CriterionUnlockCompletedV1, evaluationdomain.CriterionUnlockCompletedPayloadV1{
		ClubID: payload.ClubID,
		Path:   payload.Path,
	})
}

// HandleScoresFixRequest recomputes every stored total.
func (h *EvaluationHandlers) HandleScoresFixRequest(msg *message.Message) ([]*message.Message, error) {
	ctx, span := h.tracer.Start(msg.Context(), "EvaluationHandlers.HandleScoresFixRequest")
	defer span.End()

	var payload evaluationdomain.ScoresFixRequestedPayloadV1
	if err := h.decode(ctx, msg, &payload); err != nil {
		return h.rejected(msg, evaluationdomain.ScoresFixFailedV1, err)
	}

	n, err := h.service.FixScores(ctx, payload.AdminID)
	if err != nil {
		return h.failed(ctx, msg, evaluationdomain.ScoresFixFailedV1, nil, err)
	}
	return h.reply(msg, evaluationdomain.ScoresFixCompletedV1, evaluationdomain.ScoresFixCompletedPayloadV1{ClubsCorrected: n})
}

func (h *EvaluationHandlers) decode(ctx context.Context, msg *message.Message, v any) error {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		h.logger.WarnContext(ctx, "Dropping undecodable request",
			attr.CorrelationIDFromMsg(msg),
			attr.String("message_id", msg.UUID),
			attr.Error(err),
		)
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}

// rejected answers a request that could not be decoded. Retrying it cannot help.
func (h *EvaluationHandlers) rejected(msg *message.Message, topic string, err error) ([]*message.Message, error) {
	return h.reply(msg, topic, evaluationdomain.FailedPayloadV1{
		Code:    evaluationdomain.CodeInvalidRequest,
		Message: err.Error(),
	})
}

// failed turns a domain error into a failed reply. Infrastructure errors are
// returned so the router retries the message.
func (h *EvaluationHandlers) failed(ctx context.Context, msg *message.Message, topic string, clubID *uuid.UUID, err error) ([]*message.Message, error) {
	if !apperrors.IsDomain(err) {
		h.logger.ErrorContext(ctx, "Evaluation request failed",
			attr.CorrelationIDFromMsg(msg),
			attr.String("reply_topic", topic),
			attr.Error(err),
		)
		return nil, err
	}

	h.logger.InfoContext(ctx, "Evaluation request rejected",
		attr.CorrelationIDFromMsg(msg),
		attr.String("reply_topic", topic),
		attr.String("code", apperrors.Code(err)),
		attr.String("reason", err.Error()),
	)
	return h.reply(msg, topic, evaluationdomain.FailedPayloadV1{
		ClubID:  clubID,
		Code:    apperrors.Code(err),
		Message: err.Error(),
	})
}

// reply builds the outgoing message, keeping the request's correlation id.
func (h *EvaluationHandlers) reply(req *message.Message, topic string, payload any) ([]*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", topic, err)
	}
	out := message.NewMessage(watermill.NewUUID(), body)
	middleware.SetCorrelationID(middleware.MessageCorrelationID(req), out)
	out.Metadata.Set(TopicMetadataKey, topic)
	return []*message.Message{out}, nil
}
