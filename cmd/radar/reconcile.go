package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taskradar/internal/ai"
	"taskradar/internal/ghosting"
	"taskradar/internal/logger"
	"taskradar/internal/meeting"
	"taskradar/internal/taskfile"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile meeting notes against the task file",
		Long: `Reads a meeting notes file, extracts action items, decides for each
whether it is a new task or a status update, and merges the result into
the task file. Uses OpenAI when OPENAI_API_KEY is set, the deterministic
heuristic otherwise (and on any API failure).`,
		RunE: runReconcile,
	}

	cmd.Flags().StringP("notes", "n", "", "path to the meeting notes file (required)")
	cmd.Flags().Bool("dry-run", false, "print the analysis without touching the task file")
	cmd.MarkFlagRequired("notes")

	return cmd
}

func runReconcile(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	notesPath, _ := cmd.Flags().GetString("notes")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	notes, err := os.ReadFile(notesPath)
	if err != nil {
		return fmt.Errorf("read notes: %w", err)
	}

	file, err := taskfile.Load(path)
	if err != nil {
		return err
	}

	log := logger.Init("taskradar-cli")
	ctx := context.Background()

	client := ai.New(os.Getenv("OPENAI_API_KEY"), modelOrDefault())
	analysis, err := client.AnalyzeMeeting(ctx, string(notes), file.Tasks)
	if err != nil {
		analysis = meeting.Extract(string(notes), file.Tasks)
	}

	fmt.Println(analysis.Summary)
	for _, item := range analysis.ActionItems {
		kind := "new"
		if item.IsStatusUpdate {
			kind = "update:" + item.RelatedTaskID
		}
		fmt.Printf("  [%s] %s (owner: %s)\n", kind, item.Description, item.Owner)
	}

	if dryRun {
		return nil
	}

	merger := &meeting.Merger{Store: file, Log: log}
	result := merger.Apply(ctx, analysis, file.Tasks)

	// после мержа переоцениваем коллекцию целиком
	file.Tasks = ghosting.ClassifyAll(file.Tasks, time.Now())
	if err := file.Save(); err != nil {
		return err
	}

	fmt.Printf("\nUpdated %d tasks, created %d new.\n", len(result.UpdatedTaskIDs), len(result.NewTaskDescriptions))
	return nil
}

func modelOrDefault() string {
	if m := os.Getenv("OPENAI_MODEL"); m != "" {
		return m
	}
	return "gpt-4o-mini"
}
