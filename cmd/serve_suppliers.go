package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/vpp/app"
	"github.com/kilianp07/vpp/config"
	"github.com/kilianp07/vpp/core/supplier"
	"github.com/kilianp07/vpp/infra/logger"
	"github.com/kilianp07/vpp/infra/mqtt"
)

var serveSuppliersFleet string

var serveSuppliersCmd = &cobra.Command{
	Use:   "serve-suppliers",
	Short: "Answer negotiation requests for local prosumers over MQTT",
	RunE:  runServeSuppliers,
}

func init() {
	serveSuppliersCmd.Flags().StringVar(&serveSuppliersFleet, "fleet", "", "yaml profile file; defaults to the configured fleet")
	rootCmd.AddCommand(serveSuppliersCmd)
}

func runServeSuppliers(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fleetCfg := cfg.Fleet
	if serveSuppliersFleet != "" {
		fleetCfg = config.FleetConfig{Source: config.FleetFile, Path: serveSuppliersFleet}
	}
	if fleetCfg.Source == config.FleetMQTT {
		return fmt.Errorf("serve-suppliers needs a local fleet, got source %q", fleetCfg.Source)
	}
	profiles, err := app.Profiles(fleetCfg, time.Now())
	if err != nil {
		return err
	}

	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect()

	if err := mqtt.NewResponder(client, supplier.Prosumers(profiles)).Start(ctx); err != nil {
		return err
	}
	logger.New("serve-suppliers").Infof("answering for %d prosumers", len(profiles))
	<-ctx.Done()
	return nil
}
