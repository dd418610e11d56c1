package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogProvider writes notifications to the application log. Used until a real
// delivery collaborator is configured.
type LogProvider struct {
	log *zap.Logger
}

func NewLogProvider(log *zap.Logger) *LogProvider {
	return &LogProvider{log: log.Named("providers.notification")}
}

func (p *LogProvider) Send(ctx context.Context, n Notification) error {
	p.log.Info("notification",
		zap.String("client_id", n.ClientID),
		zap.String("title", n.Title),
		zap.String("message", n.Message),
		zap.Any("data", n.Data),
	)
	return nil
}
