package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/warebox/warebox/internal/availability"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	"github.com/warebox/warebox/internal/clock"
	"github.com/warebox/warebox/internal/observability"
	pricingdomain "github.com/warebox/warebox/internal/pricing/domain"
	"github.com/warebox/warebox/internal/providers/payment"
	reservationdomain "github.com/warebox/warebox/internal/reservation/domain"
	usagelogdomain "github.com/warebox/warebox/internal/usagelog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clk     clock.Clock
	repo    reservationdomain.Repository
	boxRepo boxdomain.Repository
	checker availability.Checker
	pricing pricingdomain.Service
	payment payment.Collaborator
	usage   usagelogdomain.Service
	metrics *observability.Metrics
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    reservationdomain.Repository
	BoxRepo boxdomain.Repository
	Checker availability.Checker
	Pricing pricingdomain.Service
	Payment payment.Collaborator
	Usage   usagelogdomain.Service
	Metrics *observability.Metrics
}

func New(p ServiceParam) reservationdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("reservation.service"),
		genID:   p.GenID,
		clk:     p.Clock,
		repo:    p.Repo,
		boxRepo: p.BoxRepo,
		checker: p.Checker,
		pricing: p.Pricing,
		payment: p.Payment,
		usage:   p.Usage,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req reservationdomain.CreateRequest) (*reservationdomain.Reservation, error) {
	if strings.TrimSpace(req.ClientID) == "" {
		return nil, reservationdomain.ErrInvalidClient
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, reservationdomain.ErrInvalidWindow
	}
	boxID, err := parseID(req.BoxID)
	if err != nil {
		return nil, reservationdomain.ErrBoxNotFound
	}

	accessCode, err := generateAccessCode()
	if err != nil {
		return nil, err
	}

	var created *reservationdomain.Reservation
	err = s.db.Transaction(func(tx *gorm.DB) error {
		b, err := s.boxRepo.FindByIDForUpdate(ctx, tx, boxID)
		if err != nil {
			return err
		}
		if b == nil {
			return reservationdomain.ErrBoxNotFound
		}
		switch b.Status {
		case boxdomain.StatusMaintenance, boxdomain.StatusDamaged, boxdomain.StatusInactive:
			return reservationdomain.ErrBoxUnavailable
		}

		free, err := s.checker.IsBoxAvailable(ctx, tx, boxID, req.StartDate, req.EndDate)
		if err != nil {
			return err
		}
		if !free {
			return reservationdomain.ErrBoxUnavailable
		}

		priorCompleted, err := s.repo.CountByClientStatus(ctx, tx, req.ClientID, reservationdomain.StatusCompleted)
		if err != nil {
			return err
		}
		quote, err := s.pricing.Quote(ctx, pricingdomain.QuoteRequest{
			PricePerDay:    b.PricePerDay,
			StartDate:      req.StartDate,
			EndDate:        req.EndDate,
			PriorCompleted: priorCompleted,
		})
		if err != nil {
			return err
		}

		now := s.clk.Now()
		created = &reservationdomain.Reservation{
			ID:            s.genID.Generate(),
			BoxID:         boxID,
			ClientID:      req.ClientID,
			StartDate:     req.StartDate,
			EndDate:       req.EndDate,
			Status:        reservationdomain.StatusPending,
			TotalPrice:    quote.FinalPrice,
			Notes:         req.Notes,
			AccessCode:    accessCode,
			PaymentStatus: reservationdomain.PaymentPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.Insert(ctx, tx, created); err != nil {
			return err
		}
		return s.boxRepo.SetOccupied(ctx, tx, boxID, true, boxdomain.StatusReserved)
	})
	if err != nil {
		if errors.Is(err, reservationdomain.ErrBoxUnavailable) {
			s.metrics.ReservationConflicts.Inc()
		}
		return nil, err
	}

	s.metrics.ReservationsCreated.Inc()
	if err := s.payment.Capture(ctx, payment.CaptureRequest{
		ReservationID: created.ID,
		Amount:        created.TotalPrice,
	}); err != nil {
		s.log.Warn("payment capture request failed",
			zap.String("reservation_id", created.ID.String()),
			zap.Error(err),
		)
	}
	s.usage.Log(ctx, usagelogdomain.Record{
		BoxID:         created.BoxID,
		ReservationID: &created.ID,
		ClientID:      created.ClientID,
		ActionType:    usagelogdomain.ReservationCreated,
		Details:       fmt.Sprintf("reserved %s to %s", created.StartDate.Format("2006-01-02"), created.EndDate.Format("2006-01-02")),
	})
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string, requesterID string) (*reservationdomain.Reservation, error) {
	res, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.ClientID != requesterID {
		return nil, reservationdomain.ErrForbidden
	}
	return res, nil
}

func (s *Service) Update(ctx context.Context, id string, requesterID string, req reservationdomain.UpdateRequest) (*reservationdomain.Reservation, error) {
	resID, err := parseID(id)
	if err != nil {
		return nil, reservationdomain.ErrInvalidID
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, reservationdomain.ErrInvalidStatus
	}

	var updated *reservationdomain.Reservation
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res, err := s.repo.FindByIDForUpdate(ctx, tx, resID)
		if err != nil {
			return err
		}
		if res == nil {
			return reservationdomain.ErrNotFound
		}
		if res.ClientID != requesterID {
			return reservationdomain.ErrForbidden
		}
		if res.Status.Terminal() {
			return reservationdomain.ErrTerminalState
		}

		if req.EndDate != nil && req.EndDate.After(res.EndDate) {
			b, _, err := s.applyExtension(ctx, tx, res, *req.EndDate)
			if err != nil {
				return err
			}
			// A window change reprices the whole stay at the current rate.
			res.TotalPrice = b.PricePerDay * float64(pricingdomain.CeilDays(res.StartDate, res.EndDate))
		} else if req.EndDate != nil && !req.EndDate.Equal(res.EndDate) {
			return reservationdomain.ErrNotExtension
		}

		if req.Status != nil {
			if !validTransition(res.Status, *req.Status) {
				return reservationdomain.ErrInvalidStatus
			}
			res.Status = *req.Status
			if res.Status == reservationdomain.StatusCancelled || res.Status.Terminal() {
				if err := s.releaseBoxIfFree(ctx, tx, res); err != nil {
					return err
				}
			}
		}
		if req.Notes != nil {
			res.Notes = *req.Notes
		}

		res.UpdatedAt = s.clk.Now()
		if err := s.repo.Update(ctx, tx, res); err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.usage.Log(ctx, usagelogdomain.Record{
		BoxID:         updated.BoxID,
		ReservationID: &updated.ID,
		ClientID:      updated.ClientID,
		ActionType:    usagelogdomain.ReservationUpdated,
		Details:       "reservation updated",
	})
	return updated, nil
}

func (s *Service) Extend(ctx context.Context, id string, requesterID string, req reservationdomain.ExtendRequest) (*reservationdomain.ExtendResult, error) {
	resID, err := parseID(id)
	if err != nil {
		return nil, reservationdomain.ErrInvalidID
	}

	var result *reservationdomain.ExtendResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res, err := s.repo.FindByIDForUpdate(ctx, tx, resID)
		if err != nil {
			return err
		}
		if res == nil {
			return reservationdomain.ErrNotFound
		}
		if res.ClientID != requesterID {
			return reservationdomain.ErrForbidden
		}
		if res.Status.Terminal() {
			return reservationdomain.ErrTerminalState
		}
		if !req.NewEndDate.After(res.EndDate) {
			return reservationdomain.ErrNotExtension
		}

		b, additionalDays, err := s.applyExtension(ctx, tx, res, req.NewEndDate)
		if err != nil {
			return err
		}
		additionalPrice := b.PricePerDay * float64(additionalDays)
		res.TotalPrice += additionalPrice
		res.Status = reservationdomain.StatusExtended
		res.UpdatedAt = s.clk.Now()
		if err := s.repo.Update(ctx, tx, res); err != nil {
			return err
		}
		result = &reservationdomain.ExtendResult{
			Reservation:     res,
			AdditionalDays:  additionalDays,
			AdditionalPrice: additionalPrice,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := result.Reservation
	s.usage.Log(ctx, usagelogdomain.Record{
		BoxID:         res.BoxID,
		ReservationID: &res.ID,
		ClientID:      res.ClientID,
		ActionType:    usagelogdomain.ExtendedRental,
		Details:       fmt.Sprintf("extended %d days", result.AdditionalDays),
	})
	return result, nil
}

// applyExtension checks only the delta window (old end to new end), moves
// the end date and snapshots the pre-extension end date the first time only.
// Pricing is the caller's job; the box is returned for it. Caller persists.
func (s *Service) applyExtension(ctx context.Context, tx *gorm.DB, res *reservationdomain.Reservation, newEnd time.Time) (*boxdomain.Box, int, error) {
	free, err := s.checker.IsBoxAvailableExcluding(ctx, tx, res.BoxID, res.ID, res.EndDate, newEnd)
	if err != nil {
		return nil, 0, err
	}
	if !free {
		return nil, 0, reservationdomain.ErrBoxUnavailable
	}

	b, err := s.boxRepo.FindByID(ctx, tx, res.BoxID)
	if err != nil {
		return nil, 0, err
	}
	if b == nil {
		return nil, 0, reservationdomain.ErrBoxNotFound
	}

	additionalDays := pricingdomain.CeilDays(res.EndDate, newEnd)
	if res.OriginalEndDate == nil {
		snapshot := res.EndDate
		res.OriginalEndDate = &snapshot
	}
	res.EndDate = newEnd
	res.ExtendedCount++
	return b, additionalDays, nil
}

func (s *Service) Cancel(ctx context.Context, id string, requesterID string) (*reservationdomain.Reservation, error) {
	resID, err := parseID(id)
	if err != nil {
		return nil, reservationdomain.ErrInvalidID
	}

	var cancelled *reservationdomain.Reservation
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res, err := s.repo.FindByIDForUpdate(ctx, tx, resID)
		if err != nil {
			return err
		}
		if res == nil {
			return reservationdomain.ErrNotFound
		}
		if res.ClientID != requesterID {
			return reservationdomain.ErrForbidden
		}
		if res.Status.Terminal() {
			return reservationdomain.ErrTerminalState
		}

		res.Status = reservationdomain.StatusCancelled
		res.UpdatedAt = s.clk.Now()
		if err := s.repo.Update(ctx, tx, res); err != nil {
			return err
		}
		if err := s.releaseBoxIfFree(ctx, tx, res); err != nil {
			return err
		}
		cancelled = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.usage.Log(ctx, usagelogdomain.Record{
		BoxID:         cancelled.BoxID,
		ReservationID: &cancelled.ID,
		ClientID:      cancelled.ClientID,
		ActionType:    usagelogdomain.ReservationCancelled,
		Details:       "reservation cancelled",
	})
	return cancelled, nil
}

// releaseBoxIfFree recomputes the box occupancy flag from the reservations
// still holding it. Runs inside the caller's transaction.
func (s *Service) releaseBoxIfFree(ctx context.Context, tx *gorm.DB, res *reservationdomain.Reservation) error {
	live, err := s.repo.CountLiveByBox(ctx, tx, res.BoxID, res.ID)
	if err != nil {
		return err
	}
	if live > 0 {
		return nil
	}
	return s.boxRepo.SetOccupied(ctx, tx, res.BoxID, false, boxdomain.StatusAvailable)
}

func (s *Service) AccessBox(ctx context.Context, id string, requesterID string, accessCode string) (*reservationdomain.AccessResult, error) {
	res, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.ClientID != requesterID {
		return nil, reservationdomain.ErrForbidden
	}
	if !res.Status.Live() {
		return nil, reservationdomain.ErrTerminalState
	}
	if res.AccessCode != accessCode {
		return nil, reservationdomain.ErrWrongCode
	}

	now := s.clk.Now()
	res.LastAccessedAt = &now
	res.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, res); err != nil {
		return nil, err
	}

	s.usage.Log(ctx, usagelogdomain.Record{
		BoxID:         res.BoxID,
		ReservationID: &res.ID,
		ClientID:      res.ClientID,
		ActionType:    usagelogdomain.BoxAccessed,
		Details:       "box opened with access code",
	})
	return &reservationdomain.AccessResult{Reservation: res, AccessedAt: now}, nil
}

func (s *Service) ListByClient(ctx context.Context, clientID string, status *reservationdomain.Status) ([]reservationdomain.Reservation, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, reservationdomain.ErrInvalidClient
	}
	if status != nil && !status.Valid() {
		return nil, reservationdomain.ErrInvalidStatus
	}
	return s.repo.ListByClient(ctx, s.db, clientID, status)
}

func (s *Service) ExpireOverdue(ctx context.Context, now time.Time, limit int) (int, error) {
	overdue, err := s.repo.ListOverdue(ctx, s.db, now, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range overdue {
		res := overdue[i]
		err := s.db.Transaction(func(tx *gorm.DB) error {
			current, err := s.repo.FindByIDForUpdate(ctx, tx, res.ID)
			if err != nil {
				return err
			}
			if current == nil || !current.Status.Live() {
				return nil
			}
			current.Status = reservationdomain.StatusExpired
			current.UpdatedAt = s.clk.Now()
			if err := s.repo.Update(ctx, tx, current); err != nil {
				return err
			}
			expired++
			return s.releaseBoxIfFree(ctx, tx, current)
		})
		if err != nil {
			s.log.Warn("failed to expire reservation",
				zap.String("reservation_id", res.ID.String()),
				zap.Error(err),
			)
		}
	}
	if expired > 0 {
		s.metrics.ReservationsExpired.Add(float64(expired))
	}
	return expired, nil
}

func (s *Service) find(ctx context.Context, id string) (*reservationdomain.Reservation, error) {
	resID, err := parseID(id)
	if err != nil {
		return nil, reservationdomain.ErrInvalidID
	}
	res, err := s.repo.FindByID(ctx, s.db, resID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, reservationdomain.ErrNotFound
	}
	return res, nil
}

// validTransition bounds the reachable states: live states may complete,
// cancel, expire or extend each other; terminal states stay put.
func validTransition(from, to reservationdomain.Status) bool {
	if from.Terminal() {
		return false
	}
	switch to {
	case reservationdomain.StatusPending:
		return from == reservationdomain.StatusPending
	case reservationdomain.StatusActive:
		return from == reservationdomain.StatusPending || from == reservationdomain.StatusExtended || from == reservationdomain.StatusActive
	case reservationdomain.StatusExtended:
		return from.Live()
	case reservationdomain.StatusCompleted, reservationdomain.StatusCancelled, reservationdomain.StatusExpired:
		return from.Live()
	}
	return false
}

func generateAccessCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func parseID(raw string) (snowflake.ID, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(parsed), nil
}
