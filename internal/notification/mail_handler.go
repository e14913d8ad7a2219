package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"

	"go.uber.org/zap"

	"residentbook-backend-go/internal/models"
	"residentbook-backend-go/pkg/messagequeue"
)

// Sender is the subset of mailer.Mailer the handler needs.
type Sender interface {
	Send(recipient, subject, body string) error
}

// ErrUnknownEvent is returned for event types the handler does not mail.
var ErrUnknownEvent = errors.New("unknown booking event type")

// NewMailHandler returns a queue handler that mails the booking's contact
// address for every booking event.
func NewMailHandler(sender Sender, logger *zap.Logger) messagequeue.Handler {
	return func(_ context.Context, body []byte) error {
		var event models.BookingEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("decode booking event: %w", err)
		}
		subject, content, err := render(event)
		if err != nil {
			return err
		}
		if err := sender.Send(event.Email, subject, content); err != nil {
			return fmt.Errorf("mail booking %s: %w", event.BookingID, err)
		}
		logger.Info("Booking mail sent", zap.String("type", event.Type), zap.String("bookingId", event.BookingID))
		return nil
	}
}

func render(e models.BookingEvent) (subject, body string, err error) {
	name := html.EscapeString(e.CustomerName)
	what := fmt.Sprintf("%s on %s, %s", html.EscapeString(e.ServiceName), e.Date, html.EscapeString(e.Slot))
	switch e.Type {
	case models.EventBookingCreated:
		return "Booking confirmed: " + e.ServiceName,
			fmt.Sprintf("<html><body><p>Hi %s,</p><p>Your booking for %s is confirmed.</p><p>Reference: %s</p></body></html>", name, what, e.BookingID),
			nil
	case models.EventBookingCancelled:
		return "Booking cancelled: " + e.ServiceName,
			fmt.Sprintf("<html><body><p>Hi %s,</p><p>Your booking for %s has been cancelled.</p><p>Reference: %s</p></body></html>", name, what, e.BookingID),
			nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
}
