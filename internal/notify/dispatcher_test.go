package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darisni/backend/internal/models"
)

type fakeStore struct {
	mu      sync.Mutex
	created []models.Notification
	failFor map[uuid.UUID]error
}

func (s *fakeStore) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[n.UserID]; ok {
		return err
	}
	n.ID = uuid.New()
	s.created = append(s.created, *n)
	return nil
}

type fakeSMS struct {
	sent []string
	err  error
}

func (s *fakeSMS) SendSMS(_ context.Context, to, _ string) error {
	s.sent = append(s.sent, to)
	return s.err
}

func user(locale, phone string) models.User {
	return models.User{ID: uuid.New(), Locale: locale, Phone: phone}
}

func TestSendFansOutPerRecipient(t *testing.T) {
	store := &fakeStore{}
	d := NewDispatcher(store, nil, nil)

	recipients := []models.User{user("ar", ""), user("en", "")}
	results := d.Send(context.Background(), recipients, models.NotificationTypeSessionReminder,
		"title", "body", map[string]string{"session_id": "s1"})

	require.Len(t, results, 2)
	for _, res := range results {
		assert.NoError(t, res.Err)
	}
	require.Len(t, store.created, 2)
	assert.Equal(t, models.NotificationTypeSessionReminder, store.created[0].Type)
	assert.Equal(t, "s1", store.created[0].Data["session_id"])
}

func TestSendContinuesPastFailingRecipient(t *testing.T) {
	bad := user("en", "")
	good1 := user("ar", "")
	good2 := user("en", "")
	store := &fakeStore{failFor: map[uuid.UUID]error{bad.ID: errors.New("insert failed")}}
	d := NewDispatcher(store, nil, nil)

	results := d.Send(context.Background(), []models.User{good1, bad, good2},
		models.NotificationTypeZoomLinkReady, "t", "b", nil)

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	// The two healthy recipients still got their records.
	assert.Len(t, store.created, 2)
}

func TestSendSMSSideChannel(t *testing.T) {
	store := &fakeStore{}
	sms := &fakeSMS{}
	d := NewDispatcher(store, sms, nil)

	recipients := []models.User{
		user("ar", "0501234567"),
		user("en", "not-a-phone"),
		user("en", ""),
	}
	results := d.Send(context.Background(), recipients, models.NotificationTypeSessionReminder, "t", "b", nil)

	for _, res := range results {
		assert.NoError(t, res.Err)
	}
	// Only the valid phone gets an SMS, in gateway form.
	require.Len(t, sms.sent, 1)
	assert.Equal(t, "966501234567", sms.sent[0])
	// All three records persist regardless.
	assert.Len(t, store.created, 3)
}

func TestSendSMSFailureDoesNotFailDispatch(t *testing.T) {
	store := &fakeStore{}
	sms := &fakeSMS{err: errors.New("gateway down")}
	d := NewDispatcher(store, sms, nil)

	results := d.Send(context.Background(), []models.User{user("ar", "0501234567")},
		models.NotificationTypeSessionReminder, "t", "b", nil)

	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Len(t, store.created, 1)
}
