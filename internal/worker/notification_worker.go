package worker

import (
	"github.com/condoops/incident-service/internal/service"
)

// StartNotificationWorker subscribes the notification consumer to the
// lifecycle event stream.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
