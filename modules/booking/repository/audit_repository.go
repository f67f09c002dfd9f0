package repository

import (
	"context"
	"time"

	"roomdisplay/core/database"
	"roomdisplay/core/logger"

	"github.com/google/uuid"
)

// BookingAudit is one booking or extension attempt and its outcome. The
// trail is operational history only; room state always comes from the
// calendar provider.
type BookingAudit struct {
	ID        string    `db:"id"`
	Action    string    `db:"action"`
	RoomEmail string    `db:"room_email"`
	Subject   string    `db:"subject"`
	StartTime time.Time `db:"start_time"`
	EndTime   time.Time `db:"end_time"`
	Outcome   string    `db:"outcome"`
	Detail    string    `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}

type AuditRepositoryInterface interface {
	Record(ctx context.Context, action, roomEmail, subject string, start, end time.Time, outcome, detail string)
	EnsureSchema(ctx context.Context) error
}

type AuditRepository struct {
	db database.IDatabase
}

func NewAuditRepository(db database.IDatabase) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	return r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS booking_audit (
			id         UUID PRIMARY KEY,
			action     TEXT NOT NULL,
			room_email TEXT NOT NULL,
			subject    TEXT NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time   TIMESTAMPTZ NOT NULL,
			outcome    TEXT NOT NULL,
			detail     TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
}

// Record never fails the booking path; an unreachable audit store is logged
// and ignored.
func (r *AuditRepository) Record(ctx context.Context, action, roomEmail, subject string, start, end time.Time, outcome, detail string) {
	entry := BookingAudit{
		ID:        uuid.NewString(),
		Action:    action,
		RoomEmail: roomEmail,
		Subject:   subject,
		StartTime: start,
		EndTime:   end,
		Outcome:   outcome,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO booking_audit (id, action, room_email, subject, start_time, end_time, outcome, detail, created_at)
		VALUES (:id, :action, :room_email, :subject, :start_time, :end_time, :outcome, :detail, :created_at)
	`, entry)
	if err != nil {
		logger.Warn("AuditRepository:Record:InsertFailed", "error", err, "room", roomEmail, "action", action)
	}
}
