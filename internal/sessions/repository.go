package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/darisni/backend/internal/models"
)

// ErrNotFound is returned when a session does not exist. The pipeline treats
// it as a silent skip: a session may be deleted between scan and execution.
var ErrNotFound = errors.New("session not found")

// Detail is a session with its participants and booking reference loaded,
// everything a pipeline job needs in one query.
type Detail struct {
	models.Session
	Student    models.User
	Teacher    models.User
	BookingRef string
}

// Repository handles session persistence. All guard-flag mutation goes
// through conditional updates so concurrent jobs for the same session cannot
// double-commit.
type Repository struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// NewRepository creates a session repository. loc is the platform timezone
// that session_date + start_time columns are interpreted in.
func NewRepository(pool *pgxpool.Pool, loc *time.Location) *Repository {
	return &Repository{pool: pool, loc: loc}
}

const sessionColumns = `s.id, s.booking_id, s.student_id, s.teacher_id, s.subject,
	((s.session_date + s.start_time) AT TIME ZONE $1), s.duration_min, s.status,
	s.meeting_id, s.join_url, s.host_url,
	s.two_hour_reminder_sent_at, s.zoom_creation_attempted_at, s.zoom_generation_failed,
	s.created_at, s.updated_at`

func scanSession(row pgx.Row, loc *time.Location) (*models.Session, error) {
	var s models.Session
	err := row.Scan(&s.ID, &s.BookingID, &s.StudentID, &s.TeacherID, &s.Subject,
		&s.StartsAt, &s.DurationMin, &s.Status,
		&s.MeetingID, &s.JoinURL, &s.HostURL,
		&s.ReminderSentAt, &s.MeetingAttemptedAt, &s.MeetingFailed,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.StartsAt = s.StartsAt.In(loc)
	return &s, nil
}

// Create inserts a session for a confirmed booking.
func (r *Repository) Create(ctx context.Context, b *models.Booking) (*models.Session, error) {
	const q = `INSERT INTO sessions (booking_id, student_id, teacher_id, subject, session_date, start_time, duration_min)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, q,
		b.ID, b.StudentID, b.TeacherID, b.Subject, b.SessionDate, b.StartTime, b.DurationMin).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID returns a session by ID, or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions s WHERE s.id = $2`
	s, err := scanSession(r.pool.QueryRow(ctx, q, r.loc.String(), id), r.loc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// Detail returns a session with participants and booking reference, or
// ErrNotFound.
func (r *Repository) Detail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	q := `SELECT ` + sessionColumns + `,
		st.id, st.email, st.full_name, COALESCE(st.phone, ''), st.role, st.locale,
		t.id, t.email, t.full_name, COALESCE(t.phone, ''), t.role, t.locale,
		b.reference
		FROM sessions s
		JOIN users st ON st.id = s.student_id
		JOIN users t ON t.id = s.teacher_id
		JOIN bookings b ON b.id = s.booking_id
		WHERE s.id = $2`
	var d Detail
	err := r.pool.QueryRow(ctx, q, r.loc.String(), id).Scan(
		&d.ID, &d.BookingID, &d.StudentID, &d.TeacherID, &d.Subject,
		&d.StartsAt, &d.DurationMin, &d.Status,
		&d.MeetingID, &d.JoinURL, &d.HostURL,
		&d.ReminderSentAt, &d.MeetingAttemptedAt, &d.MeetingFailed,
		&d.CreatedAt, &d.UpdatedAt,
		&d.Student.ID, &d.Student.Email, &d.Student.FullName, &d.Student.Phone, &d.Student.Role, &d.Student.Locale,
		&d.Teacher.ID, &d.Teacher.Email, &d.Teacher.FullName, &d.Teacher.Phone, &d.Teacher.Role, &d.Teacher.Locale,
		&d.BookingRef)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d.StartsAt = d.StartsAt.In(r.loc)
	return &d, nil
}

// FindDueForReminder returns IDs of scheduled sessions starting inside the
// reminder window that have not been reminded yet. A session can show up
// across consecutive scans until the guard commits; the job, not the
// scanner, dedupes.
func (r *Repository) FindDueForReminder(ctx context.Context, ref time.Time, lead, halfWidth time.Duration) ([]uuid.UUID, error) {
	from, to := Window(ref, lead, halfWidth)
	const q = `SELECT id FROM sessions
		WHERE status = 'scheduled'
		  AND two_hour_reminder_sent_at IS NULL
		  AND ((session_date + start_time) AT TIME ZONE $1) BETWEEN $2 AND $3
		ORDER BY session_date, start_time`
	return r.queryIDs(ctx, q, r.loc.String(), from, to)
}

// FindDueForMeeting returns IDs of scheduled sessions starting inside the
// meeting window that have no remote meeting yet.
func (r *Repository) FindDueForMeeting(ctx context.Context, ref time.Time, lead, halfWidth time.Duration) ([]uuid.UUID, error) {
	from, to := Window(ref, lead, halfWidth)
	const q = `SELECT id FROM sessions
		WHERE status = 'scheduled'
		  AND meeting_id IS NULL
		  AND ((session_date + start_time) AT TIME ZONE $1) BETWEEN $2 AND $3
		ORDER BY session_date, start_time`
	return r.queryIDs(ctx, q, r.loc.String(), from, to)
}

func (r *Repository) queryIDs(ctx context.Context, q string, args ...interface{}) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetMeetingResult commits the provisioning result if no concurrent job got
// there first and the session was not cancelled meanwhile. Returns false
// when the conditional update matched no row: the caller treats that as a
// harmless no-op, not an error.
func (r *Repository) SetMeetingResult(ctx context.Context, id uuid.UUID, meetingID, joinURL, hostURL string) (bool, error) {
	const q = `UPDATE sessions
		SET meeting_id = $2, join_url = $3, host_url = $4, updated_at = NOW()
		WHERE id = $1 AND meeting_id IS NULL AND status = 'scheduled'`
	ct, err := r.pool.Exec(ctx, q, id, meetingID, joinURL, hostURL)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// MarkReminderSent sets the reminder guard timestamp if still unset.
// Returns false when a concurrent job already claimed it.
func (r *Repository) MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `UPDATE sessions
		SET two_hour_reminder_sent_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND two_hour_reminder_sent_at IS NULL`
	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// MarkMeetingAttempted records that a provisioning attempt started.
func (r *Repository) MarkMeetingAttempted(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE sessions SET zoom_creation_attempted_at = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// MarkMeetingFailed sets the one-way terminal failure flag after retry
// exhaustion. Sessions that got a meeting from a concurrent job are left
// untouched.
func (r *Repository) MarkMeetingFailed(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE sessions
		SET zoom_generation_failed = TRUE, updated_at = NOW()
		WHERE id = $1 AND meeting_id IS NULL`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// ListByUser returns sessions where the user is the student or the teacher.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions s
		WHERE s.student_id = $2 OR s.teacher_id = $2
		ORDER BY s.session_date DESC, s.start_time DESC`
	rows, err := r.pool.Query(ctx, q, r.loc.String(), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Session
	for rows.Next() {
		s, err := scanSession(rows, r.loc)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// CancelByBooking cancels all still-scheduled sessions of a booking.
func (r *Repository) CancelByBooking(ctx context.Context, bookingID uuid.UUID) error {
	const q = `UPDATE sessions SET status = 'cancelled', updated_at = NOW()
		WHERE booking_id = $1 AND status = 'scheduled'`
	_, err := r.pool.Exec(ctx, q, bookingID)
	return err
}
