package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/studiobooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const activeSlotConstraint = "bookings_active_slot_key"

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	SlotTaken(ctx context.Context, date, timeSlot string) (bool, error)
	// UpdateStatus persists a status change with a compare-and-swap on the
	// version column. The timestamp argument is written into the lifecycle
	// column matching the new status, only if that column is still unset.
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, version int64, at time.Time) (*domain.Booking, error)
	SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Booking, error)
	SetSpecialRequest(ctx context.Context, id string, text string) (*domain.Booking, error)
	ListInProgressBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
	HardDelete(ctx context.Context, id string) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, name, email, phone, to_char(date, 'YYYY-MM-DD'), time_slot, duration_hours, party_size, setup_type,
	service_id, service_name, service_price, addon_ids, base_price, addons_total, total_price,
	status, payment_status, special_request, version, confirmed_at, cancelled_at, completed_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(
		&b.ID, &b.Name, &b.Email, &b.Phone, &b.Date, &b.TimeSlot, &b.DurationHours, &b.PartySize, &b.SetupType,
		&b.ServiceID, &b.ServiceName, &b.ServicePrice, &b.AddonIDs, &b.BasePrice, &b.AddonsTotal, &b.TotalPrice,
		&b.Status, &b.PaymentStatus, &b.SpecialRequest, &b.Version, &b.ConfirmedAt, &b.CancelledAt, &b.CompletedAt, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusPending
	booking.PaymentStatus = domain.PaymentStatusUnpaid
	booking.Version = 1

	err := r.db.QueryRow(ctx, `INSERT INTO bookings
		(id, name, email, phone, date, time_slot, duration_hours, party_size, setup_type,
		 service_id, service_name, service_price, addon_ids, base_price, addons_total, total_price,
		 status, payment_status, special_request, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING created_at, updated_at`,
		booking.ID, booking.Name, booking.Email, booking.Phone, booking.Date, booking.TimeSlot,
		booking.DurationHours, booking.PartySize, booking.SetupType,
		booking.ServiceID, booking.ServiceName, booking.ServicePrice, booking.AddonIDs,
		booking.BasePrice, booking.AddonsTotal, booking.TotalPrice,
		booking.Status, booking.PaymentStatus, booking.SpecialRequest, booking.Version).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == activeSlotConstraint {
			return domain.ErrSlotConflict
		}
		return err
	}
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

// SlotTaken is the optimistic pre-check; the partial unique index is the
// authority when two requests race past it.
func (r *PGBookingRepository) SlotTaken(ctx context.Context, date, timeSlot string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE date=$1 AND time_slot=$2 AND status = ANY($3)
	)`, date, timeSlot, statusStrings(domain.ActiveStatuses)).Scan(&taken)
	if err != nil {
		return false, err
	}
	return taken, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, version int64, at time.Time) (*domain.Booking, error) {
	var tsColumn string
	switch to {
	case domain.BookingStatusConfirmed:
		tsColumn = "confirmed_at"
	case domain.BookingStatusCancelled:
		tsColumn = "cancelled_at"
	case domain.BookingStatusCompleted:
		tsColumn = "completed_at"
	}

	query := `UPDATE bookings SET status=$2, version=version+1, updated_at=now()`
	args := []any{id, to, from, version}
	if tsColumn != "" {
		query += `, ` + tsColumn + `=COALESCE(` + tsColumn + `, $5)`
		args = append(args, at)
	}
	query += ` WHERE id=$1 AND status=$3 AND version=$4 RETURNING ` + bookingColumns

	b, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// zero rows: distinguish a vanished booking from a lost CAS race
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, domain.ErrVersionConflict
}

func (r *PGBookingRepository) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET payment_status=$2, version=version+1, updated_at=now()
		WHERE id=$1 RETURNING `+bookingColumns, id, status)
	return scanBooking(row)
}

func (r *PGBookingRepository) SetSpecialRequest(ctx context.Context, id string, text string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET special_request=$2, version=version+1, updated_at=now()
		WHERE id=$1 RETURNING `+bookingColumns, id, text)
	return scanBooking(row)
}

func (r *PGBookingRepository) ListInProgressBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE status=$1 AND date + (time_slot || ':00')::interval + make_interval(hours => duration_hours) <= $2`,
		domain.BookingStatusInProgress, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// HardDelete removes the booking and its audit trail outright. This is the
// administrative escape hatch, not a lifecycle transition; it writes no audit
// entry of its own.
func (r *PGBookingRepository) HardDelete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM booking_audit WHERE booking_id=$1`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

var _ BookingRepository = (*PGBookingRepository)(nil)
