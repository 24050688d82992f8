package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darisni/backend/internal/models"
)

func TestReminderProcessSuccess(t *testing.T) {
	s := scheduledSession()
	store := newMemStore(s)
	notifier := &fakeNotifier{}
	p := NewReminderProcessor(store, notifier, nil)

	require.NoError(t, p.Process(context.Background(), s.ID))

	assert.NotNil(t, store.get(s.ID).ReminderSentAt)
	sent := notifier.byType(models.NotificationTypeSessionReminder)
	require.Len(t, sent, 2)
	recipients := map[uuid.UUID]bool{}
	for _, n := range sent {
		recipients[n.Recipient] = true
		assert.Equal(t, s.BookingRef, n.Data["booking_ref"])
	}
	assert.True(t, recipients[s.Student.ID])
	assert.True(t, recipients[s.Teacher.ID])
}

func TestReminderProcessGuardAlreadySet(t *testing.T) {
	s := scheduledSession()
	sentAt := time.Now().Add(-time.Minute)
	s.ReminderSentAt = &sentAt
	store := newMemStore(s)
	notifier := &fakeNotifier{}
	p := NewReminderProcessor(store, notifier, nil)

	require.NoError(t, p.Process(context.Background(), s.ID))

	// Guard is never cleared and no duplicate notifications go out.
	assert.Equal(t, sentAt, *store.get(s.ID).ReminderSentAt)
	assert.Empty(t, notifier.sent)
}

func TestReminderProcessVanishedSession(t *testing.T) {
	p := NewReminderProcessor(newMemStore(), &fakeNotifier{}, nil)
	require.NoError(t, p.Process(context.Background(), uuid.New()))
}

func TestReminderProcessCancelledSession(t *testing.T) {
	s := scheduledSession()
	s.Status = models.SessionStatusCancelled
	store := newMemStore(s)
	notifier := &fakeNotifier{}
	p := NewReminderProcessor(store, notifier, nil)

	require.NoError(t, p.Process(context.Background(), s.ID))
	assert.Nil(t, store.get(s.ID).ReminderSentAt)
	assert.Empty(t, notifier.sent)
}

func TestReminderProcessConcurrentJobsSingleReminder(t *testing.T) {
	s := scheduledSession()
	store := newMemStore(s)
	notifier := &fakeNotifier{}
	p := NewReminderProcessor(store, notifier, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Process(context.Background(), s.ID)
		}()
	}
	wg.Wait()

	// The guard CAS lets exactly one job through: two notifications total.
	assert.Len(t, notifier.byType(models.NotificationTypeSessionReminder), 2)
}
