package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/vpp/core/events"
	"github.com/kilianp07/vpp/core/market"
	coremetrics "github.com/kilianp07/vpp/core/metrics"
	"github.com/kilianp07/vpp/core/model"
	"github.com/kilianp07/vpp/core/supplier"
	"github.com/kilianp07/vpp/infra/logger"
	"github.com/kilianp07/vpp/infra/metrics"
	"github.com/kilianp07/vpp/internal/eventbus"
)

// Server negotiates every opportunity of the market feed against a fixed set
// of suppliers and records the outcome in the metrics sinks.
type Server struct {
	svc       *Service
	feed      *market.Generator
	suppliers []supplier.Supplier
	bus       *eventbus.TypedBus[events.Event]
	sink      coremetrics.MetricsSink
	promAddr  string
	gatherer  prometheus.Gatherer
	log       logger.Logger
	history   *History
	results   chan<- Comparison
}

// ServerConfig groups the collaborators of a Server.
type ServerConfig struct {
	Service   *Service
	Feed      *market.Generator
	Suppliers []supplier.Supplier
	Bus       *eventbus.TypedBus[events.Event]
	Sink      coremetrics.MetricsSink
	// PromAddr, when set, serves the gatherer on /metrics.
	PromAddr string
	Gatherer prometheus.Gatherer
	// History, when set, keeps the recent comparisons for the HTTP API.
	History *History
	// Results, when set, receives every comparison. Sends block.
	Results chan<- Comparison
}

// NewServer validates the collaborators and returns a Server.
func NewServer(c ServerConfig) (*Server, error) {
	if c.Service == nil || c.Feed == nil || c.Bus == nil {
		return nil, errors.New("server requires a service, a feed and a bus")
	}
	if c.Sink == nil {
		c.Sink = coremetrics.NopSink{}
	}
	if c.Gatherer == nil {
		c.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		svc:       c.Service,
		feed:      c.Feed,
		suppliers: c.Suppliers,
		bus:       c.Bus,
		sink:      c.Sink,
		promAddr:  c.PromAddr,
		gatherer:  c.Gatherer,
		log:       logger.New("server"),
		history:   c.History,
		results:   c.Results,
	}, nil
}

// Run blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	done := metrics.StartEventCollector(ctx, s.bus, s.sink)
	promErr := make(chan error, 1)
	if s.promAddr != "" {
		go func() { promErr <- metrics.StartPromServer(ctx, s.promAddr, s.gatherer) }()
	}
	s.log.Infof("serving %d suppliers", len(s.suppliers))
	s.feed.Start(ctx, s.handle)
	<-done
	if s.promAddr != "" {
		if err := <-promErr; err != nil {
			return fmt.Errorf("prometheus server: %w", err)
		}
	}
	return nil
}

func (s *Server) handle(ctx context.Context, opp model.Opportunity) {
	c, err := s.svc.Compare(ctx, opp, s.suppliers)
	if err != nil {
		s.log.Errorf("opportunity %s: %v", opp.ID, err)
		return
	}
	if s.history != nil {
		s.history.Add(c)
	}
	if s.results != nil {
		select {
		case s.results <- c:
		case <-ctx.Done():
		}
	}
}
