package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/export"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/store"
)

var (
	exportAssignment string
	exportOut        string
	exportLimit      int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored grades to an XLSX gradebook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.ListGrades(ctx, store.GradeFilter{
			Assignment: exportAssignment,
			Limit:      exportLimit,
		})
		if err != nil {
			return err
		}

		if err := export.WriteGradebook(exportOut, records); err != nil {
			return err
		}
		fmt.Printf("%d records written to %s\n", len(records), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportAssignment, "assignment", "", "filter by assignment name")
	exportCmd.Flags().StringVar(&exportOut, "out", "grades.xlsx", "output path")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 1000, "max records")
	rootCmd.AddCommand(exportCmd)
}
