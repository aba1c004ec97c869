package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/vpp/api"
	"github.com/kilianp07/vpp/app"
	"github.com/kilianp07/vpp/core/events"
	"github.com/kilianp07/vpp/core/market"
	coremetrics "github.com/kilianp07/vpp/core/metrics"
	"github.com/kilianp07/vpp/core/metrics/kpi"
	infrakpi "github.com/kilianp07/vpp/infra/kpi"
	"github.com/kilianp07/vpp/infra/logger"
	"github.com/kilianp07/vpp/infra/metrics" // also registers the metrics sinks
	"github.com/kilianp07/vpp/internal/eventbus"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Negotiate the synthetic market feed and expose metrics",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.New("serve")

	suppliers, closeFn, err := fleetSuppliers(time.Now())
	if err != nil {
		return err
	}
	defer closeFn()

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics sinks: %w", err)
	}
	var history *app.History
	if cfg.API.Addr != "" {
		store, closeStore, err := kpiStore(cfg.API.KPIPath)
		if err != nil {
			return err
		}
		defer closeStore()
		kpiSink, err := metrics.NewKPISink(store, nil)
		if err != nil {
			return fmt.Errorf("kpi sink: %w", err)
		}
		sink = coremetrics.NewMultiSink(sink, kpiSink)
		history = app.NewHistory(cfg.API.HistorySize)
		go func() {
			if err := api.Serve(ctx, cfg.API.Addr, api.NewMux(history, store, api.Auth{Token: cfg.API.Token, JWTSecret: cfg.API.JWTSecret})); err != nil {
				log.Errorf("api server: %v", err)
			}
		}()
	}
	bus := eventbus.NewTyped[events.Event]()
	defer bus.Close()

	svc, err := app.New(cfg, app.WithPublisher(bus))
	if err != nil {
		return err
	}
	feed, err := market.New(cfg.Market, logger.New("market"))
	if err != nil {
		return err
	}
	srv, err := app.NewServer(app.ServerConfig{
		Service:   svc,
		Feed:      feed,
		Suppliers: suppliers,
		Bus:       bus,
		Sink:      sink,
		PromAddr:  cfg.Metrics.PrometheusAddr,
		History:   history,
	})
	if err != nil {
		return err
	}
	log.Infof("negotiating market feed with %d suppliers", len(suppliers))
	if err := srv.Run(ctx); err != nil {
		return err
	}
	if n := bus.Dropped(); n > 0 {
		log.Warnf("%d events dropped by slow subscribers", n)
	}
	return nil
}

func kpiStore(path string) (kpi.Store, func(), error) {
	if path == "" {
		return kpi.NewMemoryStore(), func() {}, nil
	}
	db, err := infrakpi.NewSQLiteStore(path)
	if err != nil {
		return nil, nil, fmt.Errorf("kpi store: %w", err)
	}
	return db, func() { _ = db.Close() }, nil
}
