package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Domenick1991/studiobooking/internal/kafka"
	"github.com/gin-gonic/gin"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// NotificationHandler enqueues the connectivity test message. Delivery is
// fire-and-forget; the endpoint answers before any send happens.
type NotificationHandler struct {
	producer Producer
	topic    string
}

type testNotificationRequest struct {
	Recipient string `json:"recipient" binding:"required,email"`
}

func NewNotificationHandler(producer Producer, topic string) *NotificationHandler {
	return &NotificationHandler{producer: producer, topic: topic}
}

func (h *NotificationHandler) Register(router *gin.RouterGroup) {
	router.POST("/test", h.test)
}

func (h *NotificationHandler) test(c *gin.Context) {
	var req testNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job := kafka.NotificationJob{
		Template:  kafka.TemplateTest,
		Recipient: req.Recipient,
		QueuedAt:  time.Now(),
		Data:      map[string]string{},
	}
	if err := h.producer.Publish(c.Request.Context(), h.topic, "test", job); err != nil {
		log.Printf("WARNING: failed to queue test notification: %v", err)
	}

	c.JSON(http.StatusAccepted, gin.H{"queued": true})
}
