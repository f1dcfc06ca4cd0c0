package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/schedq/pkg/model"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <task_id>",
		Short: "Show a task's scheduling state and metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/tasks/" + args[0] + "/")
			if err != nil {
				return fmt.Errorf("get task: %w", err)
			}

			var t model.TaskView
			if err := json.Unmarshal(resp.Data, &t); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("Task: %s\n", t.TaskID)
			fmt.Printf("  Name:        %s\n", t.Name)
			if t.Description != "" {
				fmt.Printf("  Description: %s\n", t.Description)
			}
			fmt.Printf("  Priority:    %d\n", t.Priority)
			fmt.Printf("  Status:      %s (%d%%)\n", t.Status, t.Progress)
			fmt.Printf("  Burst:       %.2fs (%.2fs remaining)\n", t.BurstTime, t.RemainingTime)
			fmt.Printf("  Arrived:     %.2fs after engine start\n", t.ArrivalTime)
			if t.ResponseTime >= 0 {
				fmt.Printf("  Response:    %.2fs\n", t.ResponseTime)
			}
			if t.Status == model.StatusCompleted {
				fmt.Printf("  Completed:   %.2fs after engine start\n", t.CompletionTime)
				fmt.Printf("  Turnaround:  %.2fs\n", t.TurnaroundTime)
				fmt.Printf("  Waiting:     %.2fs\n", t.WaitingTime)
			}
			return nil
		},
	}
}
