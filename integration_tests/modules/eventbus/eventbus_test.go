//go:build integration

package eventbusintegrationtests

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/Black-And-White-Club/campscore/app/eventbus"
	evaluationdomain "github.com/Black-And-White-Club/campscore/app/modules/evaluation/domain"
	"github.com/Black-And-White-Club/campscore/integration_tests/containers"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var natsURL string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, url, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		log.Printf("Failed to set up NATS: %v", err)
		os.Exit(1)
	}
	natsURL = url

	code := m.Run()
	if err := container.Terminate(ctx); err != nil {
		log.Printf("Error terminating NATS container: %v", err)
	}
	os.Exit(code)
}

func newBus(t *testing.T, ctx context.Context) *eventbus.EventBus {
	t.Helper()
	bus, err := eventbus.NewEventBus(ctx, natsURL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestInitializeStreamsIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, newBus(t, ctx).InitializeStreams(ctx))
	require.NoError(t, newBus(t, ctx).InitializeStreams(ctx))
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bus := newBus(t, ctx)
	require.NoError(t, bus.InitializeStreams(ctx))

	messages, err := bus.Subscribe(ctx, evaluationdomain.ScoresFixCompletedV1)
	require.NoError(t, err)

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"clubsCorrected":3}`))
	middleware.SetCorrelationID("corr-nats", msg)
	require.NoError(t, bus.Publish(evaluationdomain.ScoresFixCompletedV1, msg))

	select {
	case got := <-messages:
		got.Ack()
		assert.Equal(t, msg.UUID, got.UUID)
		assert.JSONEq(t, `{"clubsCorrected":3}`, string(got.Payload))
		assert.Equal(t, "corr-nats", middleware.MessageCorrelationID(got))
	case <-ctx.Done():
		t.Fatal("message was not delivered")
	}
}
