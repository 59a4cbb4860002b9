package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rxhall/papertrade/api"
	"github.com/rxhall/papertrade/auth"
	"github.com/rxhall/papertrade/config"
	"github.com/rxhall/papertrade/journal"
	"github.com/rxhall/papertrade/market"
	"github.com/rxhall/papertrade/sim"
	"github.com/rxhall/papertrade/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulator service",
	Long: `Start the price ticker and the HTTP surface.

Example:
  papertrade serve --config papertrade.yaml`,
	RunE: runServe,
}

var serveConfigPath string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "f", "", "path to config file (YAML or JSON); defaults apply when omitted")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if serveConfigPath != "" {
		loaded, err := config.LoadFromFile(serveConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	now := time.Now()
	feed := market.NewRandomWalk(cfg.Market.Volatility, now.UnixNano())
	engine := sim.NewEngine(st, feed, j, cfg.Account.StartingBalance, market.Seed(now))

	hub := api.NewHub()
	go hub.Run()
	engine.SetListener(hub)

	server := api.NewServer(engine, auth.NewService(st), hub)

	interval, err := cfg.Market.ParseTickInterval()
	if err != nil {
		return fmt.Errorf("tick interval: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				engine.Tick(t)
				hub.BroadcastTicks(engine.Stocks(), t)
			}
		}
	}()

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: server.Router()}
	go func() {
		log.Printf("papertrade listening on %s (tick every %s)", cfg.Server.Addr, interval)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "csv":
		return journal.NewCSV(cfg.TradesFile, cfg.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	default:
		return journal.Nop{}, nil
	}
}
