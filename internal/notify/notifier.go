// Package notify turns domain events into human-readable messages and
// delivers them through the configured channels.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"nateiva/internal/events"

	"github.com/rs/zerolog"
)

// Notifier delivers a rendered message to one channel.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// LogNotifier writes notifications to the application log. Always on; acts
// as the fallback channel when Telegram is disabled.
type LogNotifier struct {
	logger *zerolog.Logger
}

func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, text string) error {
	n.logger.Info().Str("channel", "log").Msg(text)
	return nil
}

// Subscribe wires the notifier to all booking and membership events on the
// bus. Render failures are logged, never propagated to the publisher.
func Subscribe(bus *events.EventBus, notifier Notifier, logger *zerolog.Logger) {
	bookingEvents := map[string]string{
		events.EventBookingCreated:     "booking placed",
		events.EventBookingConfirmed:   "booking confirmed",
		events.EventBookingCancelled:   "booking cancelled",
		events.EventBookingCompleted:   "lesson completed",
		events.EventBookingRescheduled: "booking rescheduled",
	}

	for eventType, verb := range bookingEvents {
		verb := verb
		bus.Subscribe(eventType, func(e *events.Event) error {
			var p events.BookingEventPayload
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				logger.Error().Err(err).Str("event_type", e.Type).Msg("bad event payload")
				return err
			}
			text := fmt.Sprintf("%s: %s with tutor %s on %s (%s)",
				verb, p.BookingID, p.TutorID,
				p.StartTime.Format("2006-01-02 15:04"), p.Status)
			return notifier.Notify(context.Background(), text)
		})
	}

	bus.Subscribe(events.EventMembershipAccepted, func(e *events.Event) error {
		var p events.MembershipEventPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			logger.Error().Err(err).Str("event_type", e.Type).Msg("bad event payload")
			return err
		}
		text := fmt.Sprintf("membership accepted: %s joined %s as %s",
			p.UserID, p.OrganizationID, p.Role)
		return notifier.Notify(context.Background(), text)
	})
}
