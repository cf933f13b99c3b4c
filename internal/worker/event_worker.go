package worker

import (
	"github.com/spec-kit/service-crm/internal/events"
	"github.com/spec-kit/service-crm/internal/service"
)

// EventSubscribers are the in-process consumers of domain events.
type EventSubscribers struct {
	Activity      *service.ActivityService
	Notifications *service.NotificationService
	Bridge        *events.NatsBridge
}

// StartEventWorkers registers every subscriber on the dispatcher.
// The activity log is registered first so it is written before notifications go out.
func StartEventWorkers(dispatcher events.Dispatcher, subs EventSubscribers) {
	if dispatcher == nil {
		return
	}
	if subs.Activity != nil {
		subs.Activity.RegisterHandlers(dispatcher)
	}
	if subs.Notifications != nil {
		subs.Notifications.RegisterHandlers()
	}
	subs.Bridge.Attach(dispatcher)
}
