package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/schedq/pkg/model"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show scheduler statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/stats/")
			if err != nil {
				return fmt.Errorf("get stats: %w", err)
			}

			var st model.SchedulerStats
			if err := json.Unmarshal(resp.Data, &st); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			state := "busy"
			if st.Idle {
				state = "idle"
			}
			uptime := time.Duration(st.SchedulerUptime * float64(time.Second)).Round(time.Second)

			fmt.Printf("Scheduler: %s (up %s)\n", state, uptime)
			fmt.Printf("  Tasks:      %d total, %d pending, %d running, %d completed\n",
				st.TotalTasks, st.PendingTasks, st.RunningTasks, st.CompletedTasks)
			fmt.Printf("  Avg waiting:    %.2fs\n", st.AvgWaitingTime)
			fmt.Printf("  Avg turnaround: %.2fs\n", st.AvgTurnaroundTime)
			fmt.Printf("  Avg response:   %.2fs\n", st.AvgResponseTime)
			return nil
		},
	}
}
