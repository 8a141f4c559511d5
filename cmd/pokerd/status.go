package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dreamware/pokerd/internal/api"
	"github.com/dreamware/pokerd/internal/coordinator"
)

func newStatusCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show capacity and counters of a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			base := strings.TrimRight(addr, "/")
			ctx := cmd.Context()

			var health api.HealthResponse
			if err := api.GetJSON(ctx, base+"/health", &health); err != nil {
				return fmt.Errorf("health: %w", err)
			}
			var capacity api.CapacityResponse
			if err := api.GetJSON(ctx, base+"/capacity", &capacity); err != nil {
				return fmt.Errorf("capacity: %w", err)
			}
			var stats coordinator.StatsSnapshot
			if err := api.GetJSON(ctx, base+"/stats", &stats); err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			return writeStatus(cmd.OutOrStdout(), base, health, capacity, stats)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "base URL of the pokerd server")
	return cmd
}

func writeStatus(w io.Writer, base string, health api.HealthResponse, capacity api.CapacityResponse, stats coordinator.StatsSnapshot) error {
	full := ""
	if capacity.AtCapacity {
		full = " (full)"
	}
	rows := []struct {
		label string
		value string
	}{
		{"server", fmt.Sprintf("%s, %s, up since %s", base, health.Status, humanize.Time(health.StartedAt))},
		{"sessions", fmt.Sprintf("%d of %d active%s", capacity.Active, capacity.Max, full)},
		{"created", humanize.Comma(int64(stats.SessionsCreated))},
		{"expired", humanize.Comma(int64(stats.SessionsExpired))},
		{"destroyed", humanize.Comma(int64(stats.SessionsDestroyed))},
		{"rejected", humanize.Comma(int64(stats.AdmissionsRejected))},
		{"joins", humanize.Comma(int64(stats.ParticipantsJoined))},
		{"votes", humanize.Comma(int64(stats.VotesCast))},
		{"reveals", humanize.Comma(int64(stats.RoundsRevealed))},
		{"failovers", humanize.Comma(int64(stats.Failovers))},
		{"dropped events", humanize.Comma(int64(stats.EventsDropped))},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-15s %s\n", row.label+":", row.value); err != nil {
			return err
		}
	}
	return nil
}
