package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/darisni/backend/internal/meetings"
	"github.com/darisni/backend/internal/models"
	"github.com/darisni/backend/internal/notify"
	"github.com/darisni/backend/internal/sessions"
)

// memStore mimics the repository's conditional-update semantics in memory.
type memStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*sessions.Detail
}

func newMemStore(details ...*sessions.Detail) *memStore {
	m := &memStore{sessions: make(map[uuid.UUID]*sessions.Detail)}
	for _, d := range details {
		m.sessions[d.ID] = d
	}
	return m
}

func (m *memStore) get(id uuid.UUID) *sessions.Detail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

func (m *memStore) Detail(_ context.Context, id uuid.UUID) (*sessions.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.sessions[id]
	if !ok {
		return nil, sessions.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *memStore) SetMeetingResult(_ context.Context, id uuid.UUID, meetingID, joinURL, hostURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.sessions[id]
	if !ok || d.MeetingID != nil || d.Status != models.SessionStatusScheduled {
		return false, nil
	}
	d.MeetingID, d.JoinURL, d.HostURL = &meetingID, &joinURL, &hostURL
	return true, nil
}

func (m *memStore) MarkReminderSent(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.sessions[id]
	if !ok || d.ReminderSentAt != nil {
		return false, nil
	}
	now := time.Now()
	d.ReminderSentAt = &now
	return true, nil
}

func (m *memStore) MarkMeetingAttempted(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.sessions[id]; ok {
		now := time.Now()
		d.MeetingAttemptedAt = &now
	}
	return nil
}

func (m *memStore) MarkMeetingFailed(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.sessions[id]; ok && d.MeetingID == nil {
		d.MeetingFailed = true
	}
	return nil
}

// fakeProvider counts calls and can fail or stall.
type fakeProvider struct {
	mu    sync.Mutex
	calls int
	err   error
	delay time.Duration
	last  meetings.Request
}

func (p *fakeProvider) CreateMeeting(_ context.Context, _ string, req meetings.Request) (*meetings.Result, error) {
	p.mu.Lock()
	p.calls++
	p.last = req
	p.mu.Unlock()
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return nil, p.err
	}
	return &meetings.Result{
		MeetingID: "m-123",
		JoinURL:   "https://zoom.example/j/m-123",
		StartURL:  "https://zoom.example/s/m-123",
	}, nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// fakeNotifier records every sent notification.
type sentNotification struct {
	Recipient uuid.UUID
	Type      string
	Body      string
	Data      map[string]string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *fakeNotifier) Send(_ context.Context, recipients []models.User, typ, _, body string, data map[string]string) []notify.Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	results := make([]notify.Result, 0, len(recipients))
	for _, u := range recipients {
		n.sent = append(n.sent, sentNotification{Recipient: u.ID, Type: typ, Body: body, Data: data})
		results = append(results, notify.Result{RecipientID: u.ID})
	}
	return results
}

func (n *fakeNotifier) byType(typ string) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNotification
	for _, s := range n.sent {
		if s.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

// memLocker is an in-memory advisory lock.
type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[string]bool)}
}

func (l *memLocker) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *memLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

func scheduledSession() *sessions.Detail {
	loc, _ := time.LoadLocation("Asia/Riyadh")
	student := models.User{ID: uuid.New(), Email: "sara@example.com", FullName: "Sara", Locale: "ar", Phone: "0501234567", Role: models.RoleStudent}
	teacher := models.User{ID: uuid.New(), Email: "ahmed@example.com", FullName: "Ahmed", Locale: "en", Role: models.RoleTeacher}
	return &sessions.Detail{
		Session: models.Session{
			ID:          uuid.New(),
			BookingID:   uuid.New(),
			StudentID:   student.ID,
			TeacherID:   teacher.ID,
			Subject:     "Math",
			StartsAt:    time.Date(2025, 6, 1, 10, 0, 0, 0, loc),
			DurationMin: 60,
			Status:      models.SessionStatusScheduled,
		},
		Student:    student,
		Teacher:    teacher,
		BookingRef: "BK-4F2A91C3",
	}
}
