// Package bookings handles lesson booking requests. Confirming a booking is
// what puts a session in front of the scheduling pipeline.
package bookings

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/darisni/backend/internal/models"
)

// ErrNotFound is returned when a booking does not exist.
var ErrNotFound = errors.New("booking not found")

// Repository handles booking persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a booking repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const bookingColumns = `id, reference, student_id, teacher_id, subject,
	session_date, start_time::text, duration_min, status, price_halalas, currency,
	created_at, updated_at`

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.Reference, &b.StudentID, &b.TeacherID, &b.Subject,
		&b.SessionDate, &b.StartTime, &b.DurationMin, &b.Status, &b.PriceHalalas, &b.Currency,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// newReference generates a short human-facing booking code, e.g. BK-4F2A91C3.
func newReference() string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return "BK-" + strings.ToUpper(hex.EncodeToString(buf))
}

// Create inserts a pending booking.
func (r *Repository) Create(ctx context.Context, studentID, teacherID uuid.UUID, subject string, sessionDate time.Time, startTime string, durationMin, priceHalalas int) (*models.Booking, error) {
	const q = `INSERT INTO bookings (reference, student_id, teacher_id, subject, session_date, start_time, duration_min, price_halalas)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + bookingColumns
	return scanBooking(r.pool.QueryRow(ctx, q,
		newReference(), studentID, teacherID, subject, sessionDate, startTime, durationMin, priceHalalas))
}

// GetByID returns a booking by ID, or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// Confirm moves a pending booking to confirmed. Returns false when the
// booking was not pending, so a double confirm cannot create two sessions.
func (r *Repository) Confirm(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `UPDATE bookings SET status = 'confirmed', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`
	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// Cancel moves a booking to cancelled unless it already is. Returns false
// when the booking was already cancelled.
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `UPDATE bookings SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status <> 'cancelled'`
	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// ListByUser returns bookings where the user is the student or the teacher.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
		WHERE student_id = $1 OR teacher_id = $1
		ORDER BY session_date DESC, start_time DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *b)
	}
	return list, rows.Err()
}
