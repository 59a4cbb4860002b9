package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "papertrade",
	Short: "A browser-free paper trading simulator",
	Long: `Papertrade is a paper trading simulator written in Go.

It provides:
  - A portfolio/order engine with market and limit orders over a
    simulated price feed
  - A watchlist with price alerts
  - A JSON/HTTP command surface with a websocket price stream
  - Durable state in SQLite plus CSV/SQLite trade journaling`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
