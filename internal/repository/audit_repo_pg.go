package repository

import (
	"context"

	"github.com/Domenick1991/studiobooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository is append-only. There is deliberately no update or delete
// on this interface.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	ListByBooking(ctx context.Context, bookingID string) ([]domain.AuditEntry, error)
}

type PGAuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) AuditRepository {
	return &PGAuditRepository{db: db}
}

func (r *PGAuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	return r.db.QueryRow(ctx, `INSERT INTO booking_audit (booking_id, action, actor, from_status, to_status, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		entry.BookingID, entry.Action, entry.Actor, entry.FromStatus, entry.ToStatus, entry.Detail).
		Scan(&entry.ID, &entry.CreatedAt)
}

func (r *PGAuditRepository) ListByBooking(ctx context.Context, bookingID string) ([]domain.AuditEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, action, actor, from_status, to_status, detail, created_at
		FROM booking_audit WHERE booking_id=$1 ORDER BY created_at DESC, id DESC`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Action, &e.Actor, &e.FromStatus, &e.ToStatus, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ AuditRepository = (*PGAuditRepository)(nil)
