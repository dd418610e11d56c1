package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/warebox/warebox/internal/authorization"
	warehousedomain "github.com/warebox/warebox/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     warehousedomain.Repository
	authzSvc authorization.Service
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     warehousedomain.Repository
	AuthzSvc authorization.Service
}

func New(p ServiceParam) warehousedomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("warehouse.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		authzSvc: p.AuthzSvc,
	}
}

func (s *Service) List(ctx context.Context) ([]warehousedomain.Warehouse, error) {
	return s.repo.ListActive(ctx, s.db)
}

func (s *Service) Get(ctx context.Context, id string) (*warehousedomain.Warehouse, error) {
	warehouseID, err := parseID(id)
	if err != nil {
		return nil, warehousedomain.ErrInvalidID
	}
	w, err := s.repo.FindByID(ctx, s.db, warehouseID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, warehousedomain.ErrNotFound
	}
	return w, nil
}

func (s *Service) Upsert(ctx context.Context, adminID string, req warehousedomain.UpsertRequest) (*warehousedomain.Warehouse, error) {
	if err := s.authzSvc.Authorize(ctx, adminID, authorization.ObjectWarehouse, authorization.ActionWarehouseManage); err != nil {
		if errors.Is(err, authorization.ErrForbidden) {
			return nil, warehousedomain.ErrForbidden
		}
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, warehousedomain.ErrInvalidName
	}

	now := time.Now().UTC()
	if req.ID == "" {
		w := &warehousedomain.Warehouse{
			ID:          s.genID.Generate(),
			Name:        req.Name,
			Location:    req.Location,
			Address:     req.Address,
			Description: req.Description,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if req.Active != nil {
			w.Active = *req.Active
		}
		if err := s.repo.Insert(ctx, s.db, w); err != nil {
			return nil, err
		}
		return w, nil
	}

	warehouseID, err := parseID(req.ID)
	if err != nil {
		return nil, warehousedomain.ErrInvalidID
	}
	existing, err := s.repo.FindByID(ctx, s.db, warehouseID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, warehousedomain.ErrNotFound
	}

	existing.Name = req.Name
	existing.Location = req.Location
	existing.Address = req.Address
	existing.Description = req.Description
	if req.Active != nil {
		existing.Active = *req.Active
	}
	existing.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func parseID(raw string) (snowflake.ID, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(parsed), nil
}
