package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskradar/internal/ingest"
	"taskradar/internal/taskfile"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV task export into the task file (replaces it)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			src, _ := cmd.Flags().GetString("csv")

			var rows []ingest.RawTask
			var err error
			if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
				rows, err = ingest.Fetch(context.Background(), nil, src)
			} else {
				var f *os.File
				f, err = os.Open(src)
				if err == nil {
					defer f.Close()
					rows, err = ingest.Parse(f)
				}
			}
			if err != nil {
				return fmt.Errorf("import csv: %w", err)
			}

			file, err := taskfile.Load(path)
			if err != nil {
				return err
			}
			file.Tasks = ingest.Transform(rows, time.Now())
			if err := file.Save(); err != nil {
				return err
			}

			fmt.Printf("Imported %d tasks into %s\n", len(file.Tasks), path)
			return nil
		},
	}

	cmd.Flags().String("csv", "", "CSV file path or URL (required)")
	cmd.MarkFlagRequired("csv")

	return cmd
}
