package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/darisni/backend/config"
)

type fakeScanner struct {
	reminderIDs []uuid.UUID
	meetingIDs  []uuid.UUID
	reminderErr error
	gotRef      time.Time
	gotLead     time.Duration
	gotHalf     time.Duration
}

func (s *fakeScanner) FindDueForReminder(_ context.Context, ref time.Time, lead, half time.Duration) ([]uuid.UUID, error) {
	s.gotRef, s.gotLead, s.gotHalf = ref, lead, half
	return s.reminderIDs, s.reminderErr
}

func (s *fakeScanner) FindDueForMeeting(_ context.Context, _ time.Time, _, _ time.Duration) ([]uuid.UUID, error) {
	return s.meetingIDs, nil
}

type fakeEnqueuer struct {
	reminders []uuid.UUID
	meetings  []uuid.UUID
	failFor   map[uuid.UUID]error
}

func (e *fakeEnqueuer) EnqueueSessionReminder(_ context.Context, id uuid.UUID) error {
	if err, ok := e.failFor[id]; ok {
		return err
	}
	e.reminders = append(e.reminders, id)
	return nil
}

func (e *fakeEnqueuer) EnqueueMeetingCreate(_ context.Context, id uuid.UUID) error {
	if err, ok := e.failFor[id]; ok {
		return err
	}
	e.meetings = append(e.meetings, id)
	return nil
}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		ScanInterval:    5 * time.Minute,
		ReminderLead:    2 * time.Hour,
		MeetingLead:     time.Hour,
		WindowHalfWidth: 5 * time.Minute,
	}
}

func TestTickEnqueuesOneJobPerSession(t *testing.T) {
	r1, r2, m1 := uuid.New(), uuid.New(), uuid.New()
	scanner := &fakeScanner{reminderIDs: []uuid.UUID{r1, r2}, meetingIDs: []uuid.UUID{m1}}
	enqueuer := &fakeEnqueuer{}
	s := New(scanner, enqueuer, testConfig(), nil)
	ref := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return ref }

	s.Tick(context.Background())

	assert.Equal(t, []uuid.UUID{r1, r2}, enqueuer.reminders)
	assert.Equal(t, []uuid.UUID{m1}, enqueuer.meetings)
	// Scanner receives the tick's reference time and configured window.
	assert.Equal(t, ref, scanner.gotRef)
	assert.Equal(t, 2*time.Hour, scanner.gotLead)
	assert.Equal(t, 5*time.Minute, scanner.gotHalf)
}

func TestTickContinuesPastEnqueueFailure(t *testing.T) {
	ok1, bad, ok2 := uuid.New(), uuid.New(), uuid.New()
	scanner := &fakeScanner{reminderIDs: []uuid.UUID{ok1, bad, ok2}}
	enqueuer := &fakeEnqueuer{failFor: map[uuid.UUID]error{bad: errors.New("redis down")}}
	s := New(scanner, enqueuer, testConfig(), nil)

	s.Tick(context.Background())

	assert.Equal(t, []uuid.UUID{ok1, ok2}, enqueuer.reminders)
}

func TestTickReminderScanFailureDoesNotBlockMeetingScan(t *testing.T) {
	m1 := uuid.New()
	scanner := &fakeScanner{reminderErr: errors.New("db down"), meetingIDs: []uuid.UUID{m1}}
	enqueuer := &fakeEnqueuer{}
	s := New(scanner, enqueuer, testConfig(), nil)

	s.Tick(context.Background())

	assert.Empty(t, enqueuer.reminders)
	assert.Equal(t, []uuid.UUID{m1}, enqueuer.meetings)
}

func TestSchedulerConfigValidate(t *testing.T) {
	assert.NoError(t, testConfig().Validate())

	narrow := testConfig()
	narrow.WindowHalfWidth = time.Minute
	assert.Error(t, narrow.Validate())
}
