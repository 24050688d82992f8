// Package notify persists in-app notifications and fans them out to
// side-channels.
package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/darisni/backend/internal/models"
	"github.com/darisni/backend/pkg/phone"
)

// Store persists notification records.
type Store interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// SMSSender delivers a message to a normalized MSISDN.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Result is the per-recipient outcome of a fan-out.
type Result struct {
	RecipientID uuid.UUID
	Err         error
}

// Dispatcher fans a notification out to recipients. One failing recipient
// never aborts the rest; the batch outcome is returned so callers and tests
// can inspect partial failures, and aggregate failures are logged, not
// raised.
type Dispatcher struct {
	store  Store
	sms    SMSSender // nil disables the SMS side-channel
	logger *zap.Logger
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(store Store, sms SMSSender, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{store: store, sms: sms, logger: logger}
}

// Send persists one notification per recipient and best-effort pushes the
// body over SMS to recipients with a valid phone number. SMS delivery
// failures never fail the dispatch; the record is the source of truth.
func (d *Dispatcher) Send(ctx context.Context, recipients []models.User, typ, title, body string, data map[string]string) []Result {
	results := make([]Result, 0, len(recipients))
	failed := 0
	for _, u := range recipients {
		n := &models.Notification{
			UserID: u.ID,
			Type:   typ,
			Title:  title,
			Body:   body,
			Data:   data,
		}
		if err := d.store.CreateNotification(ctx, n); err != nil {
			failed++
			d.logger.Error("notification persist failed",
				zap.String("recipient_id", u.ID.String()),
				zap.String("type", typ),
				zap.Error(err))
			results = append(results, Result{RecipientID: u.ID, Err: err})
			continue
		}
		d.pushSMS(ctx, u, body)
		results = append(results, Result{RecipientID: u.ID})
	}
	if failed > 0 {
		d.logger.Error("notification fan-out incomplete",
			zap.String("type", typ),
			zap.Int("failed", failed),
			zap.Int("total", len(recipients)))
	}
	return results
}

func (d *Dispatcher) pushSMS(ctx context.Context, u models.User, body string) {
	if d.sms == nil || u.Phone == "" {
		return
	}
	msisdn, ok := phone.NormalizeForSMS(u.Phone)
	if !ok {
		d.logger.Warn("skipping SMS, invalid phone",
			zap.String("recipient_id", u.ID.String()))
		return
	}
	if err := d.sms.SendSMS(ctx, msisdn, body); err != nil {
		d.logger.Warn("sms delivery failed",
			zap.String("recipient_id", u.ID.String()),
			zap.Error(err))
	}
}
