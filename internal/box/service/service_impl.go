package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/warebox/warebox/internal/authorization"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	warehousedomain "github.com/warebox/warebox/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	repo          boxdomain.Repository
	warehouseRepo warehousedomain.Repository
	authzSvc      authorization.Service
}

type ServiceParam struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Repo          boxdomain.Repository
	WarehouseRepo warehousedomain.Repository
	AuthzSvc      authorization.Service
}

func New(p ServiceParam) boxdomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("box.service"),
		genID:         p.GenID,
		repo:          p.Repo,
		warehouseRepo: p.WarehouseRepo,
		authzSvc:      p.AuthzSvc,
	}
}

func (s *Service) Search(ctx context.Context, req boxdomain.SearchRequest) ([]boxdomain.Box, error) {
	if req.StartDate != nil && req.EndDate != nil && !req.EndDate.After(*req.StartDate) {
		return nil, boxdomain.ErrInvalidWindow
	}
	if req.BoxType != nil && !req.BoxType.Valid() {
		return nil, boxdomain.ErrInvalidType
	}

	f := boxdomain.SearchFilter{
		BoxType:  req.BoxType,
		MinSize:  req.MinSize,
		MaxSize:  req.MaxSize,
		MaxPrice: req.MaxPrice,
		Features: req.Features,
		Start:    req.StartDate,
		End:      req.EndDate,
	}
	if req.WarehouseID != "" {
		warehouseID, err := parseID(req.WarehouseID)
		if err != nil {
			return nil, warehousedomain.ErrInvalidID
		}
		f.WarehouseID = &warehouseID
	}
	return s.repo.Search(ctx, s.db, f)
}

func (s *Service) Get(ctx context.Context, id string) (*boxdomain.Box, error) {
	boxID, err := parseID(id)
	if err != nil {
		return nil, boxdomain.ErrInvalidID
	}
	b, err := s.repo.FindByID(ctx, s.db, boxID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, boxdomain.ErrNotFound
	}
	return b, nil
}

func (s *Service) ListWarehouseBoxes(ctx context.Context, warehouseID string) ([]boxdomain.Box, error) {
	id, err := parseID(warehouseID)
	if err != nil {
		return nil, warehousedomain.ErrInvalidID
	}
	return s.repo.ListByWarehouse(ctx, s.db, id)
}

func (s *Service) Upsert(ctx context.Context, adminID string, req boxdomain.UpsertRequest) (*boxdomain.Box, error) {
	if err := s.authzSvc.Authorize(ctx, adminID, authorization.ObjectStorage, authorization.ActionStorageManage); err != nil {
		if errors.Is(err, authorization.ErrForbidden) {
			return nil, boxdomain.ErrForbidden
		}
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, boxdomain.ErrInvalidName
	}
	if !req.BoxType.Valid() {
		return nil, boxdomain.ErrInvalidType
	}
	if req.Size <= 0 {
		return nil, boxdomain.ErrInvalidSize
	}
	if req.PricePerDay <= 0 {
		return nil, boxdomain.ErrInvalidPrice
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, boxdomain.ErrInvalidStatus
	}

	warehouseID, err := parseID(req.WarehouseID)
	if err != nil {
		return nil, warehousedomain.ErrInvalidID
	}
	w, err := s.warehouseRepo.FindByID(ctx, s.db, warehouseID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, boxdomain.ErrWarehouseNotFound
	}

	now := time.Now().UTC()
	if req.ID == "" {
		b := &boxdomain.Box{
			ID:                  s.genID.Generate(),
			WarehouseID:         warehouseID,
			Name:                req.Name,
			BoxType:             req.BoxType,
			Size:                req.Size,
			PricePerDay:         req.PricePerDay,
			Status:              boxdomain.StatusAvailable,
			Features:            datatypes.NewJSONSlice(req.Features),
			Description:         req.Description,
			LocationDescription: req.LocationDescription,
			FloorLevel:          req.FloorLevel,
			MaxWeight:           req.MaxWeight,
			Dimensions:          req.Dimensions,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if req.Status != nil {
			b.Status = *req.Status
		}
		if err := s.repo.Insert(ctx, s.db, b); err != nil {
			return nil, err
		}
		return b, nil
	}

	boxID, err := parseID(req.ID)
	if err != nil {
		return nil, boxdomain.ErrInvalidID
	}
	existing, err := s.repo.FindByID(ctx, s.db, boxID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, boxdomain.ErrNotFound
	}

	existing.WarehouseID = warehouseID
	existing.Name = req.Name
	existing.BoxType = req.BoxType
	existing.Size = req.Size
	existing.PricePerDay = req.PricePerDay
	existing.Features = datatypes.NewJSONSlice(req.Features)
	existing.Description = req.Description
	existing.LocationDescription = req.LocationDescription
	existing.FloorLevel = req.FloorLevel
	existing.MaxWeight = req.MaxWeight
	existing.Dimensions = req.Dimensions
	if req.Status != nil {
		existing.Status = *req.Status
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
