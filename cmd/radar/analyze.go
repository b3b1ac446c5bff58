package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"taskradar/internal/ghosting"
	"taskradar/internal/taskfile"
)

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Run the ghosting classifier over the task file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")

			file, err := taskfile.Load(path)
			if err != nil {
				return err
			}
			if len(file.Tasks) == 0 {
				fmt.Println("No tasks in", path)
				return nil
			}

			file.Tasks = ghosting.ClassifyAll(file.Tasks, time.Now())
			if err := file.Save(); err != nil {
				return err
			}

			ghosted := 0
			for i := range file.Tasks {
				t := &file.Tasks[i]
				if t.AIAnalysis == nil || !t.AIAnalysis.IsGhosted {
					continue
				}
				ghosted++
				fmt.Printf("GHOSTED  %-28s  %s (%.0f%%)\n", truncate(t.Description, 28), t.Owner, t.AIAnalysis.Confidence*100)
				fmt.Printf("         %s\n", t.AIAnalysis.Reasoning)
				fmt.Printf("         -> %s\n", t.AIAnalysis.SuggestedAction)
			}

			fmt.Printf("\nAnalyzed %d tasks, %d look ghosted.\n", len(file.Tasks), ghosted)
			return nil
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
