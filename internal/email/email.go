package email

import (
	"context"
	"strings"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
)

// Sender pretends to deliver booking e-mails by logging them.
type Sender struct {
	log *logger.Logger
}

func NewSender(log *logger.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if len(event.Emails) == 0 {
		s.log.Debug("no recipients for event", "type", event.Type, "booking", event.BookingNumber)
		return nil
	}
	s.log.InfoContext(ctx, "send email",
		"to", strings.Join(event.Emails, ","),
		"subject", Subject(event),
		"total", domain.FormatRubles(event.TotalCents),
		"tickets", len(event.Tickets),
	)
	return nil
}

func Subject(event kafka.BookingEvent) string {
	switch event.Type {
	case kafka.EventBookingCreated:
		return "Бронирование " + event.BookingNumber + " подтверждено"
	case kafka.EventBookingCancelled:
		return "Бронирование " + event.BookingNumber + " отменено"
	default:
		return "Бронирование " + event.BookingNumber
	}
}
