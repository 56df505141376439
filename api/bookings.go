package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/studiobooking/internal/domain"
	"github.com/Domenick1991/studiobooking/internal/service/booking"
	"github.com/Domenick1991/studiobooking/internal/validate"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type updateBookingRequest struct {
	Status         *string `json:"status"`
	PaymentStatus  *string `json:"payment_status"`
	SpecialRequest *string `json:"special_request"`
}

type bookingResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Date           string   `json:"date"`
	TimeSlot       string   `json:"time_slot"`
	DurationHours  int      `json:"duration_hours"`
	PartySize      int      `json:"party_size"`
	SetupType      string   `json:"setup_type"`
	ServiceID      string   `json:"service_id"`
	ServiceName    string   `json:"service_name"`
	AddonIDs       []string `json:"addon_ids"`
	BasePrice      int64    `json:"base_price"`
	AddonsTotal    int64    `json:"addons_total"`
	TotalPrice     int64    `json:"total_price"`
	Status         string   `json:"status"`
	PaymentStatus  string   `json:"payment_status"`
	SpecialRequest string   `json:"special_request,omitempty"`
	ConfirmedAt    string   `json:"confirmed_at,omitempty"`
	CancelledAt    string   `json:"cancelled_at,omitempty"`
	CompletedAt    string   `json:"completed_at,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

type auditEntryResponse struct {
	ID         int64  `json:"id"`
	Action     string `json:"action"`
	Actor      string `json:"actor"`
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status,omitempty"`
	Detail     string `json:"detail,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.PATCH("/:id", h.update)
	router.DELETE("/:id", h.remove)
	router.GET("/:id/audit", h.auditLog)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req validate.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) update(c *gin.Context) {
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	ctx := c.Request.Context()

	var (
		updated *domain.Booking
		err     error
	)
	applied := false

	if req.Status != nil {
		updated, err = h.service.Apply(ctx, id, booking.SetStatus{Status: domain.BookingStatus(*req.Status)}, domain.ActorOperator)
		if err != nil {
			renderError(c, err)
			return
		}
		applied = true
	}
	if req.PaymentStatus != nil {
		updated, err = h.service.Apply(ctx, id, booking.SetPaymentStatus{Status: domain.PaymentStatus(*req.PaymentStatus)}, domain.ActorOperator)
		if err != nil {
			renderError(c, err)
			return
		}
		applied = true
	}
	if req.SpecialRequest != nil {
		updated, err = h.service.Apply(ctx, id, booking.SetSpecialRequest{Text: *req.SpecialRequest}, domain.ActorOperator)
		if err != nil {
			renderError(c, err)
			return
		}
		applied = true
	}

	if !applied {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no updatable fields in request"})
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) remove(c *gin.Context) {
	id := c.Param("id")

	if c.Query("hard") == "true" {
		if c.Query("confirm") != "true" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hard delete requires confirm=true"})
			return
		}
		if err := h.service.HardDeleteBooking(c.Request.Context(), id); err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), id, domain.ActorOperator)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) auditLog(c *gin.Context) {
	entries, err := h.service.AuditLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID:         e.ID,
			Action:     e.Action,
			Actor:      e.Actor,
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			Detail:     e.Detail,
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

func renderError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, domain.ErrSlotConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:             b.ID,
		Name:           b.Name,
		Email:          b.Email,
		Phone:          b.Phone,
		Date:           b.Date,
		TimeSlot:       b.TimeSlot,
		DurationHours:  b.DurationHours,
		PartySize:      b.PartySize,
		SetupType:      b.SetupType,
		ServiceID:      b.ServiceID,
		ServiceName:    b.ServiceName,
		AddonIDs:       b.AddonIDs,
		BasePrice:      b.BasePrice,
		AddonsTotal:    b.AddonsTotal,
		TotalPrice:     b.TotalPrice,
		Status:         string(b.Status),
		PaymentStatus:  string(b.PaymentStatus),
		SpecialRequest: b.SpecialRequest,
		CreatedAt:      b.CreatedAt.Format(time.RFC3339),
	}
	if b.ConfirmedAt != nil {
		resp.ConfirmedAt = b.ConfirmedAt.Format(time.RFC3339)
	}
	if b.CancelledAt != nil {
		resp.CancelledAt = b.CancelledAt.Format(time.RFC3339)
	}
	if b.CompletedAt != nil {
		resp.CompletedAt = b.CompletedAt.Format(time.RFC3339)
	}
	return resp
}
