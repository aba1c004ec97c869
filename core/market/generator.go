// Package market produces synthetic capacity opportunities for the serve
// loop and for load tests.
package market

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/vpp/core/logger"
	"github.com/kilianp07/vpp/core/model"
)

// Generator emits opportunities at random intervals.
type Generator struct {
	cfg  Config
	log  logger.Logger
	rand *rand.Rand
	seq  int
}

var (
	opportunitiesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vpp_market_opportunities_total",
		Help: "Synthetic opportunities emitted",
	}, []string{"service"})
	requiredKWSum = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vpp_market_required_kw_sum",
		Help: "Sum of requested capacity",
	})
	lastEmit = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vpp_market_last_emit_timestamp_seconds",
		Help: "Last emission time",
	})
	intervalHist = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vpp_market_interval_seconds",
		Help:    "Interval between opportunities",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(opportunitiesTotal, requiredKWSum, lastEmit, intervalHist)
}

// New creates a Generator. The same seed always yields the same sequence.
func New(cfg Config, log logger.Logger) (*Generator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("market config: %w", err)
	}
	return &Generator{
		cfg:  cfg,
		log:  logger.OrNop(log),
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Start emits opportunities to fn until ctx is cancelled. fn runs on the
// generator goroutine.
func (g *Generator) Start(ctx context.Context, fn func(context.Context, model.Opportunity)) {
	for {
		interval := g.randomInterval()
		intervalHist.Observe(interval.Seconds())
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		opp := g.Generate(time.Now())
		g.log.Infof("opportunity %s: %s %.2f kW at %.2f for %.2fh", opp.ID, opp.Service, opp.RequiredKW, opp.ReferencePrice, opp.DurationHours)
		opportunitiesTotal.WithLabelValues(string(opp.Service)).Inc()
		requiredKWSum.Add(opp.RequiredKW)
		lastEmit.Set(float64(time.Now().Unix()))
		fn(ctx, opp)
	}
}

// Generate produces the next opportunity as seen at now.
func (g *Generator) Generate(now time.Time) model.Opportunity {
	g.seq++
	service := model.ServiceEnergy
	if len(g.cfg.Services) > 0 {
		service, _ = model.ParseServiceKind(g.cfg.Services[g.rand.Intn(len(g.cfg.Services))])
	}
	return model.Opportunity{
		ID:             fmt.Sprintf("opp-%d-%04d", g.cfg.Seed, g.seq),
		Service:        service,
		DeliveryTime:   now.Add(time.Duration(g.cfg.LeadMinutes) * time.Minute),
		DurationHours:  g.cfg.DurationsHours[g.rand.Intn(len(g.cfg.DurationsHours))],
		RequiredKW:     math.Round(g.randomFloat(g.cfg.MinRequiredKW, g.cfg.MaxRequiredKW)),
		ReferencePrice: math.Round(g.randomFloat(g.cfg.MinPrice, g.cfg.MaxPrice)*100) / 100,
		Deadline:       now.Add(time.Duration(g.cfg.DeadlineMinutes) * time.Minute),
	}
}

func (g *Generator) randomFloat(min, max float64) float64 {
	if max <= min {
		return min
	}
	f := min + g.rand.Float64()*(max-min)
	j := 1 + (g.rand.Float64()*2-1)*g.cfg.JitterPct
	return math.Min(math.Max(f*j, min), max)
}

func (g *Generator) randomInterval() time.Duration {
	min, max := g.cfg.MinIntervalSeconds, g.cfg.MaxIntervalSeconds
	if max <= min {
		return time.Duration(min) * time.Second
	}
	sec := float64(min) + g.rand.Float64()*float64(max-min)
	return time.Duration(sec * float64(time.Second))
}
