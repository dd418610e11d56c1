package alternatives

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxResults       = 8
	sameWarehouseMin = 3

	sizeWeight         = 30.0
	priceWeight        = 20.0
	warehousePenalty   = 25.0
	typePenalty        = 15.0
	candidateBatchSize = 24
)

// Alternative is a substitute box with a similarity score against the
// requested box. Higher scores are closer matches.
type Alternative struct {
	Box           boxdomain.Box `json:"box"`
	Score         int           `json:"score"`
	SameWarehouse bool          `json:"same_warehouse"`
	SameType      bool          `json:"same_type"`
}

type Finder interface {
	FindAlternatives(ctx context.Context, boxID string, start, end time.Time) ([]Alternative, error)
}

var (
	ErrBoxNotFound   = errors.New("alternatives_box_not_found")
	ErrInvalidID     = errors.New("invalid_alternatives_box_id")
	ErrInvalidWindow = errors.New("invalid_alternatives_window")
)

type finder struct {
	db      *gorm.DB
	log     *zap.Logger
	boxRepo boxdomain.Repository
}

func NewFinder(gdb *gorm.DB, log *zap.Logger, boxRepo boxdomain.Repository) Finder {
	return &finder{
		db:      gdb,
		log:     log.Named("alternatives.finder"),
		boxRepo: boxRepo,
	}
}

func (f *finder) FindAlternatives(ctx context.Context, boxID string, start, end time.Time) ([]Alternative, error) {
	if !end.After(start) {
		return nil, ErrInvalidWindow
	}
	id, err := parseID(boxID)
	if err != nil {
		return nil, ErrInvalidID
	}
	original, err := f.boxRepo.FindByID(ctx, f.db, id)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, ErrBoxNotFound
	}

	// Pass 1: the same warehouse, loosely similar size, up to 30% pricier.
	sameWarehouse, err := f.boxRepo.FindCandidates(ctx, f.db, boxdomain.CandidateFilter{
		ExcludeBoxID: original.ID,
		WarehouseID:  &original.WarehouseID,
		MinSize:      original.Size * 0.8,
		MaxSize:      original.Size * 1.2,
		MaxPrice:     original.PricePerDay * 1.3,
		Start:        start,
		End:          end,
		Limit:        candidateBatchSize,
	})
	if err != nil {
		return nil, err
	}

	candidates := sameWarehouse

	// Pass 2 widens to other warehouses only when the home warehouse cannot
	// offer enough substitutes: same type, wider size band, up to 50% pricier.
	if len(sameWarehouse) < sameWarehouseMin {
		elsewhere, err := f.boxRepo.FindCandidates(ctx, f.db, boxdomain.CandidateFilter{
			ExcludeBoxID:       original.ID,
			ExcludeWarehouseID: &original.WarehouseID,
			BoxType:            &original.BoxType,
			MinSize:            original.Size * 0.7,
			MaxSize:            original.Size * 1.5,
			MaxPrice:           original.PricePerDay * 1.5,
			Start:              start,
			End:                end,
			Limit:              candidateBatchSize,
		})
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, elsewhere...)
	}

	alternatives := make([]Alternative, 0, len(candidates))
	for i := range candidates {
		c := candidates[i]
		alternatives = append(alternatives, Alternative{
			Box:           c,
			Score:         score(original, &c),
			SameWarehouse: c.WarehouseID == original.WarehouseID,
			SameType:      c.BoxType == original.BoxType,
		})
	}

	sort.Slice(alternatives, func(i, j int) bool {
		a, b := alternatives[i], alternatives[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Box.PricePerDay != b.Box.PricePerDay {
			return a.Box.PricePerDay < b.Box.PricePerDay
		}
		return a.Box.ID < b.Box.ID
	})

	if len(alternatives) > maxResults {
		alternatives = alternatives[:maxResults]
	}
	return alternatives, nil
}

// score grades a candidate out of 100, docking proportionally for size and
// price drift and flat penalties for a different warehouse or box type.
func score(original, candidate *boxdomain.Box) int {
	s := 100.0
	if original.Size > 0 {
		s -= math.Abs(candidate.Size-original.Size) / original.Size * sizeWeight
	}
	if original.PricePerDay > 0 {
		s -= math.Abs(candidate.PricePerDay-original.PricePerDay) / original.PricePerDay * priceWeight
	}
	if candidate.WarehouseID != original.WarehouseID {
		s -= warehousePenalty
	}
	if candidate.BoxType != original.BoxType {
		s -= typePenalty
	}
	if s < 0 {
		s = 0
	}
	return int(math.Round(s))
}

func parseID(raw string) (snowflake.ID, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(parsed), nil
}

var Module = fx.Module("alternatives",
	fx.Provide(NewFinder),
)
