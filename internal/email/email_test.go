package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSender_Send(t *testing.T) {
	var buf bytes.Buffer
	s := NewSender(logger.New(logger.Config{Output: &buf}))

	err := s.Send(context.Background(), kafka.BookingEvent{
		Type:          kafka.EventBookingCancelled,
		BookingNumber: "BK1",
		TotalCents:    500000,
		Emails:        []string{"a@example.com", "b@example.com"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "a@example.com,b@example.com")
	assert.Contains(t, buf.String(), "отменено")
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Бронирование BK1 подтверждено", Subject(kafka.BookingEvent{Type: kafka.EventBookingCreated, BookingNumber: "BK1"}))
	assert.Equal(t, "Бронирование BK1", Subject(kafka.BookingEvent{Type: "other", BookingNumber: "BK1"}))
}
