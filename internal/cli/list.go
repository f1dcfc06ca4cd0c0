package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/schedq/pkg/model"
)

func newListCmd() *cobra.Command {
	var (
		status   string
		priority int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if status != "" {
				q.Set("status", status)
			}
			if cmd.Flags().Changed("priority") {
				q.Set("priority", fmt.Sprint(priority))
			}
			path := "/api/v1/tasks/"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			resp, err := client.Get(path)
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}

			var tasks []model.TaskView
			if err := json.Unmarshal(resp.Data, &tasks); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if len(tasks) == 0 {
				fmt.Println("No tasks found.")
				return nil
			}

			fmt.Printf("%-36s  %-20s  %-9s  %-10s  %-9s  %s\n", "ID", "NAME", "PRIORITY", "STATUS", "PROGRESS", "CREATED")
			for _, t := range tasks {
				created := time.Unix(0, int64(t.CreatedAt*float64(time.Second)))
				fmt.Printf("%-36s  %-20s  %-9d  %-10s  %8d%%  %s\n",
					t.TaskID, truncate(t.Name, 20), t.Priority, t.Status, t.Progress,
					humanize.Time(created))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, running, completed)")
	cmd.Flags().IntVar(&priority, "priority", 0, "Filter by priority")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
