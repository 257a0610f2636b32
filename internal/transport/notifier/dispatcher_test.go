package notifier

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fsdevblog/laverie-loyal/internal/service"
	"github.com/fsdevblog/laverie-loyal/internal/transport/notifier/mocks"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockClient(ctrl)

	dispatcher := New("", logrus.New()).SetWorkers(1)
	dispatcher.client = mockClient

	redemptionID := uuid.New()
	delivered := make(chan EventPayload, 1)

	mockClient.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, payload EventPayload) error {
			delivered <- payload
			return nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()

	dispatcher.Enqueue(service.NotificationEvent{
		Kind:         service.EventRewardRedeemed,
		UserID:       7,
		Amount:       300,
		RedemptionID: redemptionID,
		RewardName:   "Кружка",
	})

	select {
	case payload := <-delivered:
		require.Equal(t, service.EventRewardRedeemed, payload.Kind)
		require.Equal(t, int64(7), payload.UserID)
		require.Equal(t, redemptionID.String(), payload.RedemptionID)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}

	cancel()
	wg.Wait()
}

func TestDispatcherEnqueueNeverBlocks(t *testing.T) {
	// воркеры не запущены: буфер переполняется, лишние события отбрасываются.
	dispatcher := New("", logrus.New())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			dispatcher.Enqueue(service.NotificationEvent{Kind: service.EventPointsEarned, UserID: 1})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on full buffer")
	}
}
