package recommendation

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	"github.com/warebox/warebox/internal/clock"
	pricingdomain "github.com/warebox/warebox/internal/pricing/domain"
	reservationdomain "github.com/warebox/warebox/internal/reservation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	historyDepth       = 10
	maxRecommendations = 20
	topPreferences     = 3
	defaultDuration    = 7
	candidatePoolSize  = 100
)

// Profile is the preference set derived from a client's rental history. It is
// returned alongside the recommendations so callers can see why a box ranked.
type Profile struct {
	PreferredTypes      []boxdomain.BoxType `json:"preferred_types"`
	MinSize             float64             `json:"min_size"`
	MaxSize             float64             `json:"max_size"`
	MinPrice            float64             `json:"min_price"`
	MaxPrice            float64             `json:"max_price"`
	PreferredWarehouses []snowflake.ID      `json:"preferred_warehouses"`
	AvgDurationDays     int                 `json:"avg_duration_days"`
	HasHistory          bool                `json:"has_history"`
}

type Result struct {
	Recommendations []boxdomain.Box `json:"recommendations"`
	Profile         Profile         `json:"profile"`
}

type Engine interface {
	Recommend(ctx context.Context, clientID string) (*Result, error)
}

var ErrInvalidClient = errors.New("invalid_recommendation_client")

type engine struct {
	db      *gorm.DB
	log     *zap.Logger
	clk     clock.Clock
	boxRepo boxdomain.Repository
	resRepo reservationdomain.Repository
}

func NewEngine(gdb *gorm.DB, log *zap.Logger, clk clock.Clock, boxRepo boxdomain.Repository, resRepo reservationdomain.Repository) Engine {
	return &engine{
		db:      gdb,
		log:     log.Named("recommendation.engine"),
		clk:     clk,
		boxRepo: boxRepo,
		resRepo: resRepo,
	}
}

func (e *engine) Recommend(ctx context.Context, clientID string) (*Result, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, ErrInvalidClient
	}

	profile, err := e.buildProfile(ctx, clientID)
	if err != nil {
		return nil, err
	}

	// Rank boxes free for the profile's typical stay starting now.
	start := e.clk.Now()
	end := start.AddDate(0, 0, profile.AvgDurationDays)

	filter := boxdomain.SearchFilter{
		Start: &start,
		End:   &end,
		Limit: candidatePoolSize,
	}
	if profile.HasHistory {
		filter.MinSize = &profile.MinSize
		filter.MaxSize = &profile.MaxSize
		filter.MaxPrice = &profile.MaxPrice
	}
	candidates, err := e.boxRepo.Search(ctx, e.db, filter)
	if err != nil {
		return nil, err
	}

	// Preferences are soft: when the banded query finds nothing, fall back
	// to everything currently free rather than returning an empty set.
	if len(candidates) == 0 && profile.HasHistory {
		candidates, err = e.boxRepo.Search(ctx, e.db, boxdomain.SearchFilter{
			Start: &start,
			End:   &end,
			Limit: candidatePoolSize,
		})
		if err != nil {
			return nil, err
		}
	}

	ranked := preferTypes(candidates, profile.PreferredTypes)
	if len(ranked) > maxRecommendations {
		ranked = ranked[:maxRecommendations]
	}
	return &Result{Recommendations: ranked, Profile: *profile}, nil
}

func (e *engine) buildProfile(ctx context.Context, clientID string) (*Profile, error) {
	history, err := e.resRepo.ListRecentByClient(ctx, e.db, clientID, historyDepth)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return &Profile{AvgDurationDays: defaultDuration}, nil
	}

	boxIDs := make([]snowflake.ID, 0, len(history))
	seen := make(map[snowflake.ID]struct{}, len(history))
	for _, r := range history {
		if _, ok := seen[r.BoxID]; ok {
			continue
		}
		seen[r.BoxID] = struct{}{}
		boxIDs = append(boxIDs, r.BoxID)
	}
	boxes, err := e.boxRepo.FindByIDs(ctx, e.db, boxIDs)
	if err != nil {
		return nil, err
	}
	if len(boxes) == 0 {
		return &Profile{AvgDurationDays: defaultDuration}, nil
	}

	boxByID := make(map[snowflake.ID]*boxdomain.Box, len(boxes))
	for i := range boxes {
		boxByID[boxes[i].ID] = &boxes[i]
	}

	typeCounts := make(map[boxdomain.BoxType]int)
	warehouseCounts := make(map[snowflake.ID]int)
	var (
		minSize, maxSize   float64
		minPrice, maxPrice float64
		totalDays          int
		counted            int
	)
	for _, r := range history {
		b, ok := boxByID[r.BoxID]
		if !ok {
			continue
		}
		typeCounts[b.BoxType]++
		warehouseCounts[b.WarehouseID]++
		if counted == 0 || b.Size < minSize {
			minSize = b.Size
		}
		if b.Size > maxSize {
			maxSize = b.Size
		}
		if counted == 0 || b.PricePerDay < minPrice {
			minPrice = b.PricePerDay
		}
		if b.PricePerDay > maxPrice {
			maxPrice = b.PricePerDay
		}
		totalDays += pricingdomain.CeilDays(r.StartDate, r.EndDate)
		counted++
	}

	avgDuration := defaultDuration
	if counted > 0 && totalDays > 0 {
		avgDuration = int(math.Round(float64(totalDays) / float64(counted)))
	}

	return &Profile{
		PreferredTypes:      topTypes(typeCounts),
		MinSize:             minSize * 0.8,
		MaxSize:             maxSize * 1.2,
		MinPrice:            minPrice,
		MaxPrice:            maxPrice * 1.1,
		PreferredWarehouses: topWarehouses(warehouseCounts),
		AvgDurationDays:     avgDuration,
		HasHistory:          true,
	}, nil
}

// preferTypes keeps boxes of a preferred type ahead of the rest while
// preserving the price-then-size order within each group.
func preferTypes(boxes []boxdomain.Box, preferred []boxdomain.BoxType) []boxdomain.Box {
	if len(preferred) == 0 {
		return boxes
	}
	preferredSet := make(map[boxdomain.BoxType]struct{}, len(preferred))
	for _, t := range preferred {
		preferredSet[t] = struct{}{}
	}
	matched := make([]boxdomain.Box, 0, len(boxes))
	rest := make([]boxdomain.Box, 0, len(boxes))
	for _, b := range boxes {
		if _, ok := preferredSet[b.BoxType]; ok {
			matched = append(matched, b)
		} else {
			rest = append(rest, b)
		}
	}
	return append(matched, rest...)
}

func topTypes(counts map[boxdomain.BoxType]int) []boxdomain.BoxType {
	types := make([]boxdomain.BoxType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if counts[types[i]] != counts[types[j]] {
			return counts[types[i]] > counts[types[j]]
		}
		return types[i] < types[j]
	})
	if len(types) > topPreferences {
		types = types[:topPreferences]
	}
	return types
}

func topWarehouses(counts map[snowflake.ID]int) []snowflake.ID {
	ids := make([]snowflake.ID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > topPreferences {
		ids = ids[:topPreferences]
	}
	return ids
}

var Module = fx.Module("recommendation",
	fx.Provide(NewEngine),
)
