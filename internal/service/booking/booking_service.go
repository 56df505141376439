package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/Domenick1991/studiobooking/internal/domain"
	"github.com/Domenick1991/studiobooking/internal/kafka"
	"github.com/Domenick1991/studiobooking/internal/repository"
	"github.com/Domenick1991/studiobooking/internal/validate"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, req validate.BookingRequest) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ChangeStatus(ctx context.Context, id string, target domain.BookingStatus, actor string) (*domain.Booking, error)
	Apply(ctx context.Context, id string, cmd UpdateCommand, actor string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id string, actor string) (*domain.Booking, error)
	HardDeleteBooking(ctx context.Context, id string) error
	AuditLog(ctx context.Context, id string) ([]domain.AuditEntry, error)
	CompleteElapsed(ctx context.Context) ([]domain.Booking, error)
}

// UpdateCommand is the closed set of legal partial updates. Arbitrary field
// merges are not accepted; each mutation the core allows has its own tag.
type UpdateCommand interface{ isUpdateCommand() }

type SetStatus struct{ Status domain.BookingStatus }

type SetPaymentStatus struct{ Status domain.PaymentStatus }

type SetSpecialRequest struct{ Text string }

func (SetStatus) isUpdateCommand()         {}
func (SetPaymentStatus) isUpdateCommand()  {}
func (SetSpecialRequest) isUpdateCommand() {}

type Cache interface {
	AcquireSlotLock(ctx context.Context, date, timeSlot string, ttl time.Duration) (bool, error)
	ReleaseSlotLock(ctx context.Context, date, timeSlot string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	audit              repository.AuditRepository
	catalog            repository.CatalogRepository
	cache              Cache
	producer           Producer
	notificationsTopic string
	operatorAddr       string
	slotLockTTL        time.Duration
}

type BookingServiceOption func(*BookingService)

func WithOperatorAddress(addr string) BookingServiceOption {
	return func(s *BookingService) {
		s.operatorAddr = addr
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	audit repository.AuditRepository,
	catalog repository.CatalogRepository,
	cache Cache,
	producer Producer,
	notificationsTopic string,
	slotLockTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:           bookings,
		audit:              audit,
		catalog:            catalog,
		cache:              cache,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		slotLockTTL:        slotLockTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, req validate.BookingRequest) (*domain.Booking, error) {
	req, verr := validate.Booking(req)
	if verr != nil {
		return nil, verr
	}

	service, addons, err := s.price(ctx, req.ServiceID, req.AddonIDs)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		ok, err := s.cache.AcquireSlotLock(ctx, req.Date, req.TimeSlot, s.slotLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrSlotConflict
		}
		defer func() {
			_ = s.cache.ReleaseSlotLock(ctx, req.Date, req.TimeSlot)
		}()
	}

	// friendly pre-check; the unique index decides races the check misses
	taken, err := s.bookings.SlotTaken(ctx, req.Date, req.TimeSlot)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrSlotConflict
	}

	var addonsTotal int64
	for _, a := range addons {
		addonsTotal += a.Price
	}

	booking := &domain.Booking{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Date:           req.Date,
		TimeSlot:       req.TimeSlot,
		DurationHours:  req.DurationHours,
		PartySize:      req.PartySize,
		SetupType:      req.SetupType,
		ServiceID:      service.ID,
		ServiceName:    service.Name,
		ServicePrice:   service.Price,
		AddonIDs:       req.AddonIDs,
		BasePrice:      service.Price,
		AddonsTotal:    addonsTotal,
		TotalPrice:     service.Price + addonsTotal,
		SpecialRequest: req.SpecialRequest,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, &domain.AuditEntry{
		BookingID: booking.ID,
		Action:    domain.AuditActionCreated,
		Actor:     domain.ActorSystem,
		ToStatus:  string(booking.Status),
	})

	s.enqueue(ctx, kafka.TemplateBookingConfirmation, booking.Email, booking)
	if s.operatorAddr != "" {
		s.enqueue(ctx, kafka.TemplateAdminAlert, s.operatorAddr, booking)
	}

	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// ChangeStatus drives the lifecycle. Re-requesting the current status is a
// silent no-op; anything the transition table forbids is rejected before any
// write. The persisted change and its audit entry settle before notification
// is even queued, and a queue failure never unwinds the change.
func (s *BookingService) ChangeStatus(ctx context.Context, id string, target domain.BookingStatus, actor string) (*domain.Booking, error) {
	if !domain.ValidStatus(target) {
		return nil, domain.ErrInvalidTransition
	}

	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == target {
		return current, nil
	}
	if !domain.CanTransition(current.Status, target) {
		return nil, domain.ErrInvalidTransition
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, current.Status, target, current.Version, time.Now())
	if err != nil {
		return nil, err
	}

	s.appendAudit(ctx, &domain.AuditEntry{
		BookingID:  updated.ID,
		Action:     domain.AuditActionStatusChanged,
		Actor:      actor,
		FromStatus: string(current.Status),
		ToStatus:   string(updated.Status),
	})

	s.enqueue(ctx, kafka.TemplateStatusUpdate, updated.Email, updated)

	return updated, nil
}

func (s *BookingService) Apply(ctx context.Context, id string, cmd UpdateCommand, actor string) (*domain.Booking, error) {
	switch c := cmd.(type) {
	case SetStatus:
		return s.ChangeStatus(ctx, id, c.Status, actor)
	case SetPaymentStatus:
		if !domain.ValidPaymentStatus(c.Status) {
			return nil, &domain.ValidationError{Fields: []domain.FieldError{
				{Path: "payment_status", Message: "is invalid"},
			}}
		}
		updated, err := s.bookings.SetPaymentStatus(ctx, id, c.Status)
		if err != nil {
			return nil, err
		}
		s.appendAudit(ctx, &domain.AuditEntry{
			BookingID: updated.ID,
			Action:    domain.AuditActionFieldChanged,
			Actor:     actor,
			Detail:    fmt.Sprintf("payment_status=%s", c.Status),
		})
		return updated, nil
	case SetSpecialRequest:
		if len(c.Text) > 1000 {
			return nil, &domain.ValidationError{Fields: []domain.FieldError{
				{Path: "special_request", Message: "exceeds the allowed maximum"},
			}}
		}
		updated, err := s.bookings.SetSpecialRequest(ctx, id, c.Text)
		if err != nil {
			return nil, err
		}
		s.appendAudit(ctx, &domain.AuditEntry{
			BookingID: updated.ID,
			Action:    domain.AuditActionFieldChanged,
			Actor:     actor,
			Detail:    "special_request updated",
		})
		return updated, nil
	default:
		return nil, fmt.Errorf("unknown update command %T", cmd)
	}
}

// CancelBooking is the soft delete: a CANCELLED transition with the record
// and its audit trail retained.
func (s *BookingService) CancelBooking(ctx context.Context, id string, actor string) (*domain.Booking, error) {
	return s.ChangeStatus(ctx, id, domain.BookingStatusCancelled, actor)
}

// HardDeleteBooking bypasses the state machine entirely. It is irreversible
// and leaves no audit entry; the log line is the only trace.
func (s *BookingService) HardDeleteBooking(ctx context.Context, id string) error {
	if err := s.bookings.HardDelete(ctx, id); err != nil {
		return err
	}
	log.Printf("booking %s hard-deleted", id)
	return nil
}

func (s *BookingService) AuditLog(ctx context.Context, id string) ([]domain.AuditEntry, error) {
	if _, err := s.bookings.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.audit.ListByBooking(ctx, id)
}

// CompleteElapsed moves IN_PROGRESS bookings whose slot has ended to
// COMPLETED. Each one goes through the normal transition path so it is
// audited like any other change.
func (s *BookingService) CompleteElapsed(ctx context.Context) ([]domain.Booking, error) {
	elapsed, err := s.bookings.ListInProgressBefore(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	var completed []domain.Booking
	for _, b := range elapsed {
		updated, err := s.ChangeStatus(ctx, b.ID, domain.BookingStatusCompleted, domain.ActorSystem)
		if err != nil {
			log.Printf("complete booking %s: %v", b.ID, err)
			continue
		}
		completed = append(completed, *updated)
	}
	return completed, nil
}

func (s *BookingService) price(ctx context.Context, serviceID string, addonIDs []string) (*domain.ServicePackage, []domain.Addon, error) {
	service, err := s.catalog.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, &domain.ValidationError{Fields: []domain.FieldError{
				{Path: "service_id", Message: "unknown service"},
			}}
		}
		return nil, nil, err
	}

	addons, err := s.catalog.GetAddons(ctx, addonIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(addons) != len(addonIDs) {
		return nil, nil, &domain.ValidationError{Fields: []domain.FieldError{
			{Path: "addon_ids", Message: "contains an unknown add-on"},
		}}
	}
	return service, addons, nil
}

// appendAudit must complete before the caller reports success, but a failed
// write cannot corrupt the already-persisted change; it is logged instead.
func (s *BookingService) appendAudit(ctx context.Context, entry *domain.AuditEntry) {
	if err := s.audit.Append(ctx, entry); err != nil {
		log.Printf("audit append for booking %s failed: %v", entry.BookingID, err)
	}
}

func (s *BookingService) enqueue(ctx context.Context, tpl kafka.TemplateType, recipient string, b *domain.Booking) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}

	job := kafka.NotificationJob{
		Template:  tpl,
		Recipient: recipient,
		BookingID: b.ID,
		QueuedAt:  time.Now(),
		Data: map[string]string{
			"name":            b.Name,
			"email":           b.Email,
			"phone":           b.Phone,
			"date":            b.Date,
			"time_slot":       b.TimeSlot,
			"duration_hours":  strconv.Itoa(b.DurationHours),
			"party_size":      strconv.Itoa(b.PartySize),
			"service_name":    b.ServiceName,
			"total_price":     strconv.FormatInt(b.TotalPrice, 10),
			"status":          string(b.Status),
			"special_request": b.SpecialRequest,
		},
	}

	if err := s.producer.Publish(ctx, s.notificationsTopic, b.ID, job); err != nil {
		log.Printf("WARNING: failed to queue %s notification for booking %s: %v", tpl, b.ID, err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
