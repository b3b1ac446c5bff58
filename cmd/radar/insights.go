package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskradar/internal/ghosting"
	"taskradar/internal/taskfile"
)

func insightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show aggregate ghosting insights for the task file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")

			file, err := taskfile.Load(path)
			if err != nil {
				return err
			}

			ins := ghosting.Summarize(file.Tasks)

			fmt.Println("TaskRadar Insights")
			fmt.Println("==================")
			fmt.Printf("Total tasks:     %d\n", ins.TotalTasks)
			fmt.Printf("Ghosted:         %d (%d%%)\n", ins.GhostedCount, ins.GhostedPercentage)
			fmt.Printf("Completed:       %d\n", ins.CompletedCount)
			fmt.Printf("Pending:         %d\n", ins.PendingCount)

			if len(ins.ProjectsTop) > 0 {
				fmt.Println("\nProjects with most ghosted tasks:")
				for _, p := range ins.ProjectsTop {
					fmt.Printf("  %-30s %d\n", p.Project, p.Count)
				}
			}
			if len(ins.OwnersTop) > 0 {
				fmt.Println("\nOwners with most ghosted tasks:")
				for _, o := range ins.OwnersTop {
					fmt.Printf("  %-30s %d\n", o.Owner, o.Count)
				}
			}
			return nil
		},
	}
}
