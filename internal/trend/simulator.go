// Package trend generates synthetic 12-month price series for charting.
package trend

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"resalelens/server/config"
	"resalelens/server/internal/models"
)

const (
	Months = 12

	trendStart = 0.95
	trendEnd   = 1.05
	noiseRatio = 0.03
	bandRatio  = 0.03
	floorRatio = 0.5
	clampLow   = 0.8
	clampHigh  = 1.2
)

// Seasonal demand multipliers, January first
var seasonal = map[models.Category][Months]float64{
	models.CategoryClothing: {1.00, 0.95, 1.05, 1.05, 1.00, 0.95, 0.92, 0.95, 1.02, 1.06, 1.08, 1.05},
	models.CategoryShoes:    {0.98, 0.96, 1.04, 1.06, 1.02, 0.98, 0.95, 0.97, 1.03, 1.04, 1.02, 1.00},
}

// RangeLookup returns the price range of a category
type RangeLookup func(models.Category) models.CategoryPriceRange

type Simulator struct {
	ranges RangeLookup
	now    func() time.Time
}

// NewSimulator uses the static category table and the wall clock
func NewSimulator() *Simulator {
	return &Simulator{ranges: config.GetPriceRange, now: time.Now}
}

// WithClock returns a copy whose current month comes from now
func (s *Simulator) WithClock(now func() time.Time) *Simulator {
	c := *s
	c.now = now
	return &c
}

// usable reports whether an estimate can seed the series; zero counts as missing
func usable(estimated *int64) bool {
	return estimated != nil && *estimated > 0
}

// Base returns the starting price: the clamped estimate, or a uniform draw in the category range
func (s *Simulator) Base(category models.Category, estimated *int64, rng *rand.Rand) float64 {
	r := s.ranges(category)
	lo, hi := float64(r.Min), float64(r.Max)

	if usable(estimated) {
		return math.Max(lo*clampLow, math.Min(hi*clampHigh, float64(*estimated)))
	}
	if r.Max <= r.Min {
		return lo
	}
	return float64(r.Min + rng.Int63n(r.Max-r.Min))
}

// Simulate builds the 12-point series. It is deterministic only for a fixed rng seed.
func (s *Simulator) Simulate(category models.Category, estimated *int64, rng *rand.Rand) models.TrendSeries {
	r := s.ranges(category)
	floor := float64(r.Min) * floorRatio
	base := s.Base(category, estimated, rng)
	current := int(s.now().Month())
	curve, hasSeason := seasonal[category]

	points := make([]models.TrendPoint, Months)
	for i := 0; i < Months; i++ {
		progress := float64(i) / float64(Months-1)
		price := base * (trendStart + (trendEnd-trendStart)*progress)
		price += rng.NormFloat64() * base * noiseRatio
		if hasSeason {
			price *= curve[i]
		}
		price = math.Round(math.Max(price, floor))

		month := i + 1
		points[i] = models.TrendPoint{
			Month:   month,
			Label:   fmt.Sprintf("%d월", month),
			Price:   price,
			Low:     math.Round(price * (1 - bandRatio)),
			High:    math.Round(price * (1 + bandRatio)),
			Current: month == current,
		}
	}

	return models.TrendSeries{
		Category:  category,
		Base:      base,
		Estimated: usable(estimated),
		Points:    points,
	}
}
