package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/schedq/pkg/model"
)

func newAddCmd() *cobra.Command {
	var (
		description string
		priority    int
		burst       float64
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"name":        args[0],
				"description": description,
				"priority":    priority,
				"burst_time":  burst,
			}

			resp, err := client.Post("/api/v1/tasks/", body)
			if err != nil {
				return fmt.Errorf("create task: %w", err)
			}

			var task model.TaskView
			if err := json.Unmarshal(resp.Data, &task); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("Created task %s\n", task.TaskID)
			fmt.Printf("  Name:     %s\n", task.Name)
			fmt.Printf("  Priority: %d\n", task.Priority)
			fmt.Printf("  Burst:    %.2fs\n", task.BurstTime)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().IntVar(&priority, "priority", 5, "Priority from 1 (lowest) to 10 (highest)")
	cmd.Flags().Float64Var(&burst, "burst", 1.0, "Required execution time in seconds")
	return cmd
}
