package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boardkit/ticket-board/internal/client"
	"github.com/boardkit/ticket-board/internal/config"
	"github.com/boardkit/ticket-board/internal/store"
)

var (
	flagAPIURL   string
	flagPassword string
)

var rootCmd = &cobra.Command{
	Use:   "ticketctl",
	Short: "Command-line board for the ticket API",
	Long: `ticketctl drives a ticket-board API from the terminal: list and
filter tickets, render the Kanban board, create tickets, and move them
between columns.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api", "", "Base URL of the ticket API (defaults to TICKET_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "Admin password for mutation endpoints")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

// newStore builds a refreshed store against the configured API.
func newStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	baseURL := cfg.Client.BaseURL
	if flagAPIURL != "" {
		baseURL = flagAPIURL
	}

	api := client.New(baseURL, cfg.Client.Timeout())
	if flagPassword != "" {
		if err := api.Authenticate(cmd.Context(), flagPassword); err != nil {
			return nil, fmt.Errorf("authentication failed: %w", err)
		}
	}

	s := store.New(api, zap.NewNop())
	if !s.Refresh(cmd.Context()) {
		return nil, fmt.Errorf("could not load tickets: %s", s.LastError())
	}
	return s, nil
}

func parseDeadline(value string) (time.Time, error) {
	if value == "" {
		return time.Now().Add(7 * 24 * time.Hour), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid deadline %q (want RFC3339 or YYYY-MM-DD)", value)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
