package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/export"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

var (
	batchConcurrency int
	batchOut         string
)

var batchCmd = &cobra.Command{
	Use:   "batch <submissions-dir>",
	Short: "Grade every notebook in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		session, err := initSession()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrentSubmissions
		}

		records, sum, err := session.Batch(ctx, args[0], concurrency, st)
		if err != nil {
			return err
		}

		run := &model.RunRecord{
			AssignmentName: records[0].AssignmentName,
			Dir:            args[0],
			Total:          sum.Total,
			Succeeded:      sum.Succeeded,
			Failed:         sum.Failed,
			MeanScore:      sum.MeanScore,
			Elapsed:        sum.Elapsed,
		}
		if err := st.SaveRun(ctx, run); err != nil {
			return eris.Wrap(err, "save run")
		}

		for _, rec := range records {
			fmt.Println(export.SummaryLine(*rec))
		}
		fmt.Printf("\n%d graded, %d failed, mean %.1f%%, elapsed %s\n",
			sum.Succeeded, sum.Failed, sum.MeanScore, sum.Elapsed.Round(time.Second))

		if batchOut != "" {
			flat := make([]model.GradeRecord, 0, len(records))
			for _, rec := range records {
				flat = append(flat, *rec)
			}
			if err := export.WriteGradebook(batchOut, flat); err != nil {
				return err
			}
			fmt.Println("gradebook written to", batchOut)
		}
		return nil
	},
}

func init() {
	addGradingFlags(batchCmd.Flags())
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "parallel submissions (default from config)")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "write an XLSX gradebook to this path")
	rootCmd.AddCommand(batchCmd)
}
