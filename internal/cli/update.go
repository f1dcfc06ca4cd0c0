package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/schedq/pkg/model"
)

func newUpdateCmd() *cobra.Command {
	var (
		name        string
		description string
		priority    int
		burst       float64
	)

	cmd := &cobra.Command{
		Use:   "update <task_id>",
		Short: "Update a task (only flags you pass are sent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{}
			if cmd.Flags().Changed("name") {
				body["name"] = name
			}
			if cmd.Flags().Changed("description") {
				body["description"] = description
			}
			if cmd.Flags().Changed("priority") {
				body["priority"] = priority
			}
			if cmd.Flags().Changed("burst") {
				body["burst_time"] = burst
			}
			if len(body) == 0 {
				return fmt.Errorf("nothing to update: pass at least one of --name, --description, --priority, --burst")
			}

			resp, err := client.Patch("/api/v1/tasks/"+args[0]+"/", body)
			if err != nil {
				return fmt.Errorf("update task: %w", err)
			}

			var t model.TaskView
			if err := json.Unmarshal(resp.Data, &t); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("Updated task %s (priority=%d, status=%s)\n", t.TaskID, t.Priority, t.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New task name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().IntVar(&priority, "priority", 0, "New priority (1-10)")
	cmd.Flags().Float64Var(&burst, "burst", 0, "New burst time in seconds (pending tasks only)")
	return cmd
}
