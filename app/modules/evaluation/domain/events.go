package evaluationdomain

import (
	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	"github.com/google/uuid"
)

// Request and reply topics of the evaluation transport.
const (
	ScorePatchRequestedV1 = "evaluation.score.patch.requested.v1"
	ScorePatchCompletedV1 = "evaluation.score.patch.completed.v1"
	ScorePatchFailedV1    = "evaluation.score.patch.failed.v1"

	BatchRequestedV1 = "evaluation.batch.requested.v1"
	BatchCompletedV1 = "evaluation.batch.completed.v1"
	BatchFailedV1    = "evaluation.batch.failed.v1"

	CriterionLockRequestedV1 = "evaluation.criterion.lock.requested.v1"
	CriterionLockCompletedV1 = "evaluation.criterion.lock.completed.v1"
	CriterionLockFailedV1    = "evaluation.criterion.lock.failed.v1"

	CriterionUnlockRequestedV1 = "evaluation.criterion.unlock.requested.v1"
	CriterionUnlockCompletedV1 = "evaluation.criterion.unlock.completed.v1"
	CriterionUnlockFailedV1    = "evaluation.criterion.unlock.failed.v1"

	ScoresFixRequestedV1 = "evaluation.scores.fix.requested.v1"
	ScoresFixCompletedV1 = "evaluation.scores.fix.completed.v1"
	ScoresFixFailedV1    = "evaluation.scores.fix.failed.v1"
)

// CodeInvalidRequest marks a request payload that could not be decoded or
// names nothing to act on.
const CodeInvalidRequest = "invalid_request"

type ScorePatchRequestedPayloadV1 struct {
	ClubID  uuid.UUID          `json:"clubId"`
	ActorID uuid.UUID          `json:"actorId"`
	Scores  scoringdomain.Tree `json:"scores"`
}

type ScorePatchCompletedPayloadV1 struct {
	ClubID uuid.UUID            `json:"clubId"`
	Result scoringdomain.Result `json:"result"`
}

type BatchRequestedPayloadV1 struct {
	BatchRequest
}

type BatchCompletedPayloadV1 struct {
	BatchResult
}

type CriterionLockRequestedPayloadV1 struct {
	ClubID      uuid.UUID           `json:"clubId"`
	Path        criteriadomain.Path `json:"path"`
	Score       float64             `json:"score"`
	EvaluatorID uuid.UUID           `json:"evaluatorId"`
}

type CriterionLockCompletedPayloadV1 struct {
	ClubID uuid.UUID `json:"clubId"`
	Lock   LockInfo  `json:"lock"`
}

type CriterionUnlockRequestedPayloadV1 struct {
	ClubID  uuid.UUID           `json:"clubId"`
	Path    criteriadomain.Path `json:"path"`
	AdminID uuid.UUID           `json:"adminId"`
}

type CriterionUnlockCompletedPayloadV1 struct {
	ClubID uuid.UUID           `json:"clubId"`
	Path   criteriadomain.Path `json:"path"`
}

type ScoresFixRequestedPayloadV1 struct {
	AdminID uuid.UUID `json:"adminId"`
}

type ScoresFixCompletedPayloadV1 struct {
	ClubsCorrected int `json:"clubsCorrected"`
}

// FailedPayloadV1 is the reply to any request the service rejected.
type FailedPayloadV1 struct {
	ClubID  *uuid.UUID `json:"clubId,omitempty"`
	Code    string     `json:"code"`
	Message string     `json:"message"`
}
