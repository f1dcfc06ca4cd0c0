package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task_id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.Delete("/api/v1/tasks/" + args[0] + "/"); err != nil {
				return fmt.Errorf("delete task: %w", err)
			}
			fmt.Printf("Deleted task %s\n", args[0])
			return nil
		},
	}
}
