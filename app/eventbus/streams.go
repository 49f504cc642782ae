package eventbus

import (
	"context"
	"fmt"
)

// EvaluationStream captures every evaluation request and reply.
const EvaluationStream = "evaluation"

// Streams lists the JetStream streams the service publishes into.
func Streams() map[string][]string {
	return map[string][]string{
		EvaluationStream: {"evaluation.>"},
	}
}

// InitializeStreams creates the necessary streams in JetStream during application startup.
func (eb *EventBus) InitializeStreams(ctx context.Context) error {
	for name, subjects := range Streams() {
		if err := eb.EnsureStream(ctx, name, subjects...); err != nil {
			return fmt.Errorf("stream %s: %w", name, err)
		}
	}
	return nil
}
