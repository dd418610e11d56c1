package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/warebox/warebox/internal/clock"
	subscriptiondomain "github.com/warebox/warebox/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clk   clock.Clock
	repo  subscriptiondomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  subscriptiondomain.Repository
}

func New(p ServiceParam) subscriptiondomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("subscription.service"),
		genID: p.GenID,
		clk:   p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req subscriptiondomain.CreateRequest) (*subscriptiondomain.Subscription, error) {
	if strings.TrimSpace(req.ClientID) == "" {
		return nil, subscriptiondomain.ErrInvalidClient
	}
	if req.BoxType != nil && !req.BoxType.Valid() {
		return nil, subscriptiondomain.ErrInvalidType
	}
	if (req.StartDate == nil) != (req.EndDate == nil) {
		return nil, subscriptiondomain.ErrPartialWindow
	}
	if req.StartDate != nil && req.EndDate != nil && !req.EndDate.After(*req.StartDate) {
		return nil, subscriptiondomain.ErrInvalidWindow
	}

	now := s.clk.Now()
	sub := &subscriptiondomain.Subscription{
		ID:        s.genID.Generate(),
		ClientID:  req.ClientID,
		BoxType:   req.BoxType,
		MinSize:   req.MinSize,
		MaxPrice:  req.MaxPrice,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.BoxID != nil {
		id, err := parseID(*req.BoxID)
		if err != nil {
			return nil, subscriptiondomain.ErrInvalidID
		}
		sub.BoxID = &id
	}
	if req.WarehouseID != nil {
		id, err := parseID(*req.WarehouseID)
		if err != nil {
			return nil, subscriptiondomain.ErrInvalidID
		}
		sub.WarehouseID = &id
	}
	if len(req.Preferences) > 0 {
		sub.Preferences = datatypes.JSONMap(req.Preferences)
	}
	if !sub.HasCriteria() {
		return nil, subscriptiondomain.ErrNoCriteria
	}

	if err := s.repo.Insert(ctx, s.db, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) List(ctx context.Context, clientID string) ([]subscriptiondomain.Subscription, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, subscriptiondomain.ErrInvalidClient
	}
	return s.repo.ListByClient(ctx, s.db, clientID)
}

func (s *Service) Deactivate(ctx context.Context, id string, requesterID string) (*subscriptiondomain.Subscription, error) {
	subID, err := parseID(id)
	if err != nil {
		return nil, subscriptiondomain.ErrInvalidID
	}
	sub, err := s.repo.FindByID(ctx, s.db, subID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, subscriptiondomain.ErrNotFound
	}
	if sub.ClientID != requesterID {
		return nil, subscriptiondomain.ErrForbidden
	}
	if !sub.Active {
		return sub, nil
	}

	now := s.clk.Now()
	if err := s.repo.SetActive(ctx, s.db, subID, false, now); err != nil {
		return nil, err
	}
	sub.Active = false
	sub.UpdatedAt = now
	return sub, nil
}

func parseID(raw string) (snowflake.ID, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(parsed), nil
}
