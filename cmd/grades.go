package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/export"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/store"
)

var (
	gradesAssignment string
	gradesStudent    string
	gradesErrored    bool
	gradesLimit      int
	gradesJSON       bool
)

var gradesCmd = &cobra.Command{
	Use:   "grades",
	Short: "List stored grade records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.ListGrades(ctx, store.GradeFilter{
			Assignment: gradesAssignment,
			StudentID:  gradesStudent,
			Errored:    gradesErrored,
			Limit:      gradesLimit,
		})
		if err != nil {
			return err
		}

		if gradesJSON {
			return printRecordJSON(records)
		}
		for _, rec := range records {
			fmt.Println(export.SummaryLine(rec))
		}
		fmt.Printf("\n%d records\n", len(records))
		return nil
	},
}

func init() {
	gradesCmd.Flags().StringVar(&gradesAssignment, "assignment", "", "filter by assignment name")
	gradesCmd.Flags().StringVar(&gradesStudent, "student", "", "filter by student id")
	gradesCmd.Flags().BoolVar(&gradesErrored, "errored", false, "only failed gradings")
	gradesCmd.Flags().IntVar(&gradesLimit, "limit", 100, "max records")
	gradesCmd.Flags().BoolVar(&gradesJSON, "json", false, "print full records as JSON")
	rootCmd.AddCommand(gradesCmd)
}
