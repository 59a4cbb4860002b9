package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rxhall/papertrade/market"
	"github.com/rxhall/papertrade/sim"
	"github.com/rxhall/papertrade/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the persisted portfolio and trade history",
	Long: `Restore the starting capital and clear all persisted trades and
pending orders in the given store.

Example:
  papertrade reset --store papertrade.db`,
	RunE: runReset,
}

var (
	resetStorePath string
	resetBalance   float64
)

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().StringVarP(&resetStorePath, "store", "s", "./papertrade.db", "path to the sqlite store")
	resetCmd.Flags().Float64Var(&resetBalance, "balance", 100000, "starting balance to restore")
}

func runReset(cmd *cobra.Command, args []string) error {
	st, err := store.NewSQLite(resetStorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	now := time.Now()
	engine := sim.NewEngine(st, market.NewRandomWalk(0.02, now.UnixNano()), nil, resetBalance, market.Seed(now))
	engine.ResetPortfolio()
	engine.ClearTrades()

	fmt.Printf("✓ Portfolio reset: $%.2f available, trade history cleared (%s)\n", resetBalance, resetStorePath)
	return nil
}
