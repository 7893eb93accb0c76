package market

import (
	"time"

	"kodbank/internal/domain"
	"kodbank/internal/rng"
)

// Daily series parameters. Up jumps are deliberately more likely and larger
// than down jumps.
const (
	TrendDrift          = 0.0005
	TrendVolatility     = 0.012
	UpJumpProbability   = 0.01
	UpJumpMin           = 0.05
	UpJumpMax           = 0.10
	DownJumpProbability = 0.005
	DownJumpMin         = 0.04
	DownJumpMax         = 0.08

	HourlyPoints   = 24
	hourlyBias     = 0.48
	hourlyStepSize = 0.005
)

// TrendGenerator builds display-only series. It keeps no state between
// calls; the output never feeds settlement.
type TrendGenerator struct {
	rnd rng.Source
	now func() time.Time
}

func NewTrendGenerator(src rng.Source, now func() time.Time) *TrendGenerator {
	if src == nil {
		src = rng.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &TrendGenerator{rnd: src, now: now}
}

// Daily returns points entries, one per day, the last one dated today (UTC).
func (g *TrendGenerator) Daily(base float64, points int) []domain.PricePoint {
	if points <= 0 {
		return []domain.PricePoint{}
	}
	today := g.now().UTC().Truncate(24 * time.Hour)
	current := base
	out := make([]domain.PricePoint, points)
	for i := 0; i < points; i++ {
		change := current * (TrendDrift + (g.rnd.Float64()-0.5)*TrendVolatility)

		var jump float64
		switch ev := g.rnd.Float64(); {
		case ev >= 1-UpJumpProbability:
			jump = current * rng.Uniform(g.rnd, UpJumpMin, UpJumpMax)
		case ev < DownJumpProbability:
			jump = -current * rng.Uniform(g.rnd, DownJumpMin, DownJumpMax)
		}

		current += change + jump
		out[i] = domain.PricePoint{
			Date:  today.AddDate(0, 0, i-(points-1)).Format(domain.DateLayout),
			Value: domain.Round2(current),
		}
	}
	return out
}

// Hourly returns 24 points ending at the current hour with a slight upward bias.
func (g *TrendGenerator) Hourly(base float64) []domain.HourlyPoint {
	labels := HourLabels(g.now())
	current := base
	out := make([]domain.HourlyPoint, HourlyPoints)
	for i := range out {
		current += (g.rnd.Float64() - hourlyBias) * (current * hourlyStepSize)
		out[i] = domain.HourlyPoint{Time: labels[i], Value: domain.Round2(current)}
	}
	return out
}

// HourLabels returns "HH:00" labels for the 24 hours ending at now's hour (UTC).
func HourLabels(now time.Time) []string {
	hour := now.UTC().Truncate(time.Hour)
	labels := make([]string, HourlyPoints)
	for i := range labels {
		labels[i] = hour.Add(time.Duration(i-(HourlyPoints-1)) * time.Hour).Format("15:00")
	}
	return labels
}
