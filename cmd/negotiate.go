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
	"github.com/kilianp07/vpp/core/model"
	"github.com/kilianp07/vpp/core/supplier"
	"github.com/kilianp07/vpp/infra/mqtt"
	"github.com/kilianp07/vpp/pkg/export"
	"github.com/kilianp07/vpp/qa/scenarios"
)

var negotiateFlags struct {
	scenario        string
	id              string
	service         string
	requiredKW      float64
	price           float64
	durationHours   float64
	deadlineMinutes int
	output          string
	compare         bool
}

var negotiateCmd = &cobra.Command{
	Use:   "negotiate",
	Short: "Negotiate one opportunity against the configured fleet",
	RunE:  runNegotiate,
}

func init() {
	f := negotiateCmd.Flags()
	f.StringVar(&negotiateFlags.scenario, "scenario", "", "scenario file providing the opportunity and the fleet")
	f.StringVar(&negotiateFlags.id, "id", "cli-opportunity", "opportunity id")
	f.StringVar(&negotiateFlags.service, "service", "ENERGY", "service kind")
	f.Float64Var(&negotiateFlags.requiredKW, "required-kw", 2000, "required capacity in kW")
	f.Float64Var(&negotiateFlags.price, "price", 75, "reference price in currency/MWh")
	f.Float64Var(&negotiateFlags.durationHours, "duration", 1, "delivery duration in hours")
	f.IntVar(&negotiateFlags.deadlineMinutes, "deadline", 15, "response deadline in minutes")
	f.StringVarP(&negotiateFlags.output, "output", "o", "table", "output format: table, json or csv")
	f.BoolVar(&negotiateFlags.compare, "compare", false, "also run the centralized baseline")
	rootCmd.AddCommand(negotiateCmd)
}

func runNegotiate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	now := time.Now()
	opp, suppliers, closeFn, err := negotiationInput(now)
	if err != nil {
		return err
	}
	defer closeFn()

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if negotiateFlags.compare {
		c, err := svc.Compare(ctx, opp, suppliers)
		if err != nil {
			return err
		}
		switch negotiateFlags.output {
		case "json":
			return export.WriteJSON(out, c)
		case "csv":
			return export.WriteCSV(out, c.Negotiated)
		}
		export.WriteComparisonTable(out, c)
		return nil
	}

	res, err := svc.Negotiate(ctx, opp, suppliers)
	if err != nil {
		return err
	}
	switch negotiateFlags.output {
	case "json":
		return export.WriteJSON(out, res)
	case "csv":
		return export.WriteCSV(out, res)
	}
	export.WriteCoalitionTable(out, res)
	return nil
}

// negotiationInput returns the opportunity and the suppliers selected by the
// flags and the configuration.
func negotiationInput(now time.Time) (model.Opportunity, []supplier.Supplier, func(), error) {
	noop := func() {}
	if negotiateFlags.scenario != "" {
		sc, err := scenarios.Load(negotiateFlags.scenario)
		if err != nil {
			return model.Opportunity{}, nil, noop, err
		}
		opp, err := sc.Opportunity.ToModel(now)
		if err != nil {
			return model.Opportunity{}, nil, noop, err
		}
		return opp, sc.Suppliers(now), noop, nil
	}

	service, err := model.ParseServiceKind(negotiateFlags.service)
	if err != nil {
		return model.Opportunity{}, nil, noop, err
	}
	opp := model.Opportunity{
		ID:             negotiateFlags.id,
		Service:        service,
		DeliveryTime:   now.Add(time.Hour),
		DurationHours:  negotiateFlags.durationHours,
		RequiredKW:     negotiateFlags.requiredKW,
		ReferencePrice: negotiateFlags.price,
		Deadline:       now.Add(time.Duration(negotiateFlags.deadlineMinutes) * time.Minute),
	}
	if err := opp.Validate(); err != nil {
		return model.Opportunity{}, nil, noop, err
	}
	suppliers, closeFn, err := fleetSuppliers(now)
	return opp, suppliers, closeFn, err
}

// fleetSuppliers builds the configured fleet, connecting to the broker for
// remote suppliers.
func fleetSuppliers(now time.Time) ([]supplier.Supplier, func(), error) {
	if cfg.Fleet.Source != config.FleetMQTT {
		s, err := app.BuildSuppliers(cfg.Fleet, nil, now)
		return s, func() {}, err
	}
	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		return nil, func() {}, fmt.Errorf("mqtt client: %w", err)
	}
	s, err := app.BuildSuppliers(cfg.Fleet, client, now)
	return s, client.Disconnect, err
}
