package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/vpp/core/supplier"
)

var fleetFlags struct {
	size  int
	seed  int64
	stats bool
}

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Generate a synthetic prosumer fleet as yaml",
	RunE:  runFleet,
}

func init() {
	fleetCmd.Flags().IntVarP(&fleetFlags.size, "size", "n", 20, "number of prosumers")
	fleetCmd.Flags().Int64Var(&fleetFlags.seed, "seed", 42, "generator seed")
	fleetCmd.Flags().BoolVar(&fleetFlags.stats, "stats", false, "print fleet statistics instead of profiles")
	rootCmd.AddCommand(fleetCmd)
}

func runFleet(cmd *cobra.Command, _ []string) error {
	fleet := supplier.GenerateFleet(fleetFlags.seed, fleetFlags.size, time.Now())
	var v any = fleet
	if fleetFlags.stats {
		v = supplier.Stats(fleet)
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode fleet: %w", err)
	}
	return enc.Close()
}
