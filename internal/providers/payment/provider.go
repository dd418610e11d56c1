package payment

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type CaptureRequest struct {
	ReservationID snowflake.ID `json:"reservation_id"`
	Amount        float64      `json:"amount"`
}

// Collaborator captures payment for a priced reservation. The engine fires
// the request and does not track settlement beyond the stored payment status.
type Collaborator interface {
	Capture(ctx context.Context, req CaptureRequest) error
}

type NoOpCollaborator struct{}

func (c *NoOpCollaborator) Capture(ctx context.Context, req CaptureRequest) error {
	return nil
}

type LogCollaborator struct {
	log *zap.Logger
}

func NewLogCollaborator(log *zap.Logger) *LogCollaborator {
	return &LogCollaborator{log: log.Named("providers.payment")}
}

func (c *LogCollaborator) Capture(ctx context.Context, req CaptureRequest) error {
	c.log.Info("payment capture requested",
		zap.String("reservation_id", req.ReservationID.String()),
		zap.Float64("amount", req.Amount),
	)
	return nil
}

var Module = fx.Module("providers.payment",
	fx.Provide(func(log *zap.Logger) Collaborator {
		return NewLogCollaborator(log)
	}),
)
