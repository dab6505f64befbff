package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
)

func TestService_PublishReachesSubscribers(t *testing.T) {
	service := NewService(arbor.NewLogger())

	var mu sync.Mutex
	var received []interfaces.Event
	require.NoError(t, service.Subscribe(interfaces.EventDraftUpdated, func(ctx context.Context, event interfaces.Event) error {
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
		return nil
	}))

	require.NoError(t, service.Publish(context.Background(), interfaces.Event{
		Type:    interfaces.EventDraftUpdated,
		Payload: "draft_1",
	}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 2*time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "draft_1", received[0].Payload)
}

func TestService_PublishWithoutSubscribersIsSilent(t *testing.T) {
	service := NewService(arbor.NewLogger())
	assert.NoError(t, service.Publish(context.Background(), interfaces.Event{Type: interfaces.EventRecordSaved}))
}

func TestService_SubscribeRejectsNilHandler(t *testing.T) {
	service := NewService(arbor.NewLogger())
	assert.Error(t, service.Subscribe(interfaces.EventDraftUpdated, nil))
}

func TestService_PublishSyncCollectsFailures(t *testing.T) {
	service := NewService(arbor.NewLogger())

	require.NoError(t, service.Subscribe(interfaces.EventAnalysisFailed, func(ctx context.Context, event interfaces.Event) error {
		return errors.New("handler broke")
	}))
	require.NoError(t, service.Subscribe(interfaces.EventAnalysisFailed, func(ctx context.Context, event interfaces.Event) error {
		return nil
	}))

	err := service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventAnalysisFailed})
	assert.Error(t, err)
}

func TestService_CloseDropsSubscriptions(t *testing.T) {
	service := NewService(arbor.NewLogger())

	called := false
	require.NoError(t, service.Subscribe(interfaces.EventDraftUpdated, func(ctx context.Context, event interfaces.Event) error {
		called = true
		return nil
	}))
	require.NoError(t, service.Close())

	require.NoError(t, service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventDraftUpdated}))
	assert.False(t, called)

	assert.Error(t, service.Subscribe(interfaces.EventDraftUpdated, func(ctx context.Context, event interfaces.Event) error {
		return nil
	}))
}
