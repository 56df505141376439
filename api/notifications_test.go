package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newNotificationRouter(producer Producer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewNotificationHandler(producer, "notifications").Register(router.Group("/notifications"))
	return router
}

func TestNotificationHandler_test(t *testing.T) {
	mockProducer := &MockProducer{}
	router := newNotificationRouter(mockProducer)

	mockProducer.On("Publish", mock.Anything, "notifications", "test", mock.Anything).Return(nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/notifications/test", bytes.NewReader([]byte(`{"recipient":"ops@example.com"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	mockProducer.AssertExpectations(t)
}

func TestNotificationHandler_test_queueFailureStillAccepted(t *testing.T) {
	mockProducer := &MockProducer{}
	router := newNotificationRouter(mockProducer)

	mockProducer.On("Publish", mock.Anything, "notifications", "test", mock.Anything).Return(errors.New("broker down")).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/notifications/test", bytes.NewReader([]byte(`{"recipient":"ops@example.com"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestNotificationHandler_test_badRecipient(t *testing.T) {
	mockProducer := &MockProducer{}
	router := newNotificationRouter(mockProducer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/notifications/test", bytes.NewReader([]byte(`{"recipient":"nope"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockProducer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
