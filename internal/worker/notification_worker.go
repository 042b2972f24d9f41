package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/client-query-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to query and
// user events. Handlers run synchronously inside Publish.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		logger.Warn("notification service not configured; events will not be logged")
		return
	}
	notificationService.RegisterHandlers()
	logger.Debug("notification handlers registered")
}
