package evaluationhandlers

import "github.com/ThreeDotsLabs/watermill/message"

// Handlers answers evaluation requests. Every handler replies on the
// completed or failed topic of its request.
type Handlers interface {
	HandleScorePatchRequest(msg *message.Message) ([]*message.Message, error)
	HandleBatchRequest(msg *message.Message) ([]*message.Message, error)
	HandleCriterionLockRequest(msg *message.Message) ([]*message.Message, error)
	HandleCriterionUnlockRequest(msg *message.Message) ([]*message.Message, error)
	HandleScoresFixRequest(msg *message.Message) ([]*message.Message, error)
}
