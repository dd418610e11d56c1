package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	usagelogdomain "github.com/warebox/warebox/internal/usagelog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  usagelogdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  usagelogdomain.Repository
}

func New(p ServiceParam) usagelogdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("usagelog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Log(ctx context.Context, rec usagelogdomain.Record) {
	entry := &usagelogdomain.Entry{
		ID:            s.genID.Generate(),
		BoxID:         rec.BoxID,
		ReservationID: rec.ReservationID,
		ClientID:      rec.ClientID,
		ActionType:    rec.ActionType,
		ActionTime:    time.Now().UTC(),
		Details:       rec.Details,
	}
	if err := s.repo.Insert(ctx, s.db, entry); err != nil {
		// Audit writes are secondary to the reservation invariant.
		s.log.Warn("usage history append failed",
			zap.String("box_id", rec.BoxID.String()),
			zap.String("action", string(rec.ActionType)),
			zap.Error(err),
		)
	}
}

func (s *Service) History(ctx context.Context, boxID string, requesterID string) ([]usagelogdomain.Entry, error) {
	id, err := parseID(boxID)
	if err != nil {
		return nil, usagelogdomain.ErrInvalidID
	}

	var count int64
	err = s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM reservations WHERE box_id = ? AND client_id = ?`,
		id,
		requesterID,
	).Scan(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, usagelogdomain.ErrForbidden
	}

	return s.repo.ListByBox(ctx, s.db, id)
}

func parseID(raw string) (snowflake.ID, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(parsed), nil
}
