package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/studiobooking/internal/domain"
	"github.com/Domenick1991/studiobooking/internal/service/booking"
	"github.com/Domenick1991/studiobooking/internal/validate"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, req validate.BookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ChangeStatus(ctx context.Context, id string, target domain.BookingStatus, actor string) (*domain.Booking, error) {
	args := m.Called(ctx, id, target, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Apply(ctx context.Context, id string, cmd booking.UpdateCommand, actor string) (*domain.Booking, error) {
	args := m.Called(ctx, id, cmd, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, id string, actor string) (*domain.Booking, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) HardDeleteBooking(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingUseCase) AuditLog(ctx context.Context, id string) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

func (m *MockBookingUseCase) CompleteElapsed(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func newTestRouter(service booking.BookingUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewBookingHandler(service).Register(router.Group("/bookings"))
	return router
}

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:            "b1",
		Name:          "Jamie Doe",
		Email:         "jamie@example.com",
		Phone:         "+15551234567",
		Date:          "2025-06-01",
		TimeSlot:      "14:00",
		DurationHours: 2,
		PartySize:     3,
		SetupType:     "live-room",
		ServiceID:     "v1",
		ServiceName:   "Video",
		BasePrice:     750,
		AddonsTotal:   200,
		TotalPrice:    950,
		Status:        domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
	}
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	mockService.On("CreateBooking", mock.Anything, mock.AnythingOfType("validate.BookingRequest")).Return(sampleBooking(), nil).Once()

	body, _ := json.Marshal(map[string]any{
		"name": "Jamie Doe", "email": "jamie@example.com", "phone": "+15551234567",
		"date": "2025-06-01", "time_slot": "14:00", "duration_hours": 2,
		"party_size": 3, "setup_type": "live-room", "service_id": "v1",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/bookings/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "b1", resp.ID)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, int64(950), resp.TotalPrice)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_slotConflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	mockService.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, domain.ErrSlotConflict).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/bookings/", bytes.NewReader([]byte(`{"date":"2025-06-01","time_slot":"14:00"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_create_validationFailed(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	verr := &domain.ValidationError{Fields: []domain.FieldError{
		{Path: "email", Message: "must be a valid email address"},
	}}
	mockService.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, verr).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/bookings/", bytes.NewReader([]byte(`{"email":"nope"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email")
}

func TestBookingHandler_get_notFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	mockService.On("GetBooking", mock.Anything, "missing").Return(nil, domain.ErrNotFound).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/bookings/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_update_status(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	confirmed := sampleBooking()
	confirmed.Status = domain.BookingStatusConfirmed
	mockService.On("Apply", mock.Anything, "b1", booking.SetStatus{Status: domain.BookingStatusConfirmed}, domain.ActorOperator).Return(confirmed, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PATCH", "/bookings/b1", bytes.NewReader([]byte(`{"status":"CONFIRMED"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CONFIRMED")
	mockService.AssertExpectations(t)
}

func TestBookingHandler_update_invalidTransition(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	mockService.On("Apply", mock.Anything, "b1", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidTransition).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PATCH", "/bookings/b1", bytes.NewReader([]byte(`{"status":"CONFIRMED"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBookingHandler_update_versionConflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	mockService.On("Apply", mock.Anything, "b1", mock.Anything, mock.Anything).Return(nil, domain.ErrVersionConflict).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PATCH", "/bookings/b1", bytes.NewReader([]byte(`{"status":"CONFIRMED"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_update_noFields(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PATCH", "/bookings/b1", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingHandler_remove_cancels(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	cancelled := sampleBooking()
	cancelled.Status = domain.BookingStatusCancelled
	mockService.On("CancelBooking", mock.Anything, "b1", domain.ActorOperator).Return(cancelled, nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/bookings/b1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CANCELLED")
	mockService.AssertNotCalled(t, "HardDeleteBooking", mock.Anything, mock.Anything)
}

func TestBookingHandler_remove_hardRequiresConfirm(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/bookings/b1?hard=true", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "HardDeleteBooking", mock.Anything, mock.Anything)
}

func TestBookingHandler_remove_hard(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	mockService.On("HardDeleteBooking", mock.Anything, "b1").Return(nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/bookings/b1?hard=true&confirm=true", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_auditLog(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	entries := []domain.AuditEntry{
		{ID: 2, BookingID: "b1", Action: domain.AuditActionStatusChanged, Actor: domain.ActorOperator, FromStatus: "PENDING", ToStatus: "CONFIRMED"},
		{ID: 1, BookingID: "b1", Action: domain.AuditActionCreated, Actor: domain.ActorSystem, ToStatus: "PENDING"},
	}
	mockService.On("AuditLog", mock.Anything, "b1").Return(entries, nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/bookings/b1/audit", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []auditEntryResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
	assert.Equal(t, int64(2), resp[0].ID)
}
