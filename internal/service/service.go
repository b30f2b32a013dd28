package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/grievance-service/internal/events"
)

// publishEvent stamps and publishes the event. Delivery failures never
// surface to the request path; the dispatcher already swallows handler
// errors.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	_ = dispatcher.Publish(ctx, event)
}
