package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/client-query-service/internal/config"
	"github.com/spec-kit/client-query-service/internal/events"
)

func TestNotificationServiceLogsEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{WebhookURL: "http://hooks.local/queries"})
	svc.RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventQuerySubmitted, "Q0001", events.Actor{Username: "Alice"}, nil)))
	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventQueryClosed, "Q0001", events.Actor{Username: "SUPP0001"}, nil)))

	assert.Equal(t, 1, logs.FilterMessage("QuerySubmitted").Len())
	assert.Equal(t, 1, logs.FilterMessage("QueryClosed").Len())
	assert.Equal(t, 2, logs.FilterMessage("sendWebhookNotificationStub").Len())
	assert.Zero(t, logs.FilterMessage("sendEmailNotificationStub").Len(), "email stub needs a sender address")
}
