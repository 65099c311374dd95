package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/grader"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/reconcile"
)

var validateFix bool

var validateCmd = &cobra.Command{
	Use:   "validate <grade-id>",
	Short: "Re-check a stored grade record's arithmetic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := st.GetGrade(ctx, args[0])
		if err != nil {
			return err
		}

		v := reconcile.ValidateGradingResult(rec, cfg.Grading.Weights)
		if v.Valid {
			fmt.Println("valid")
			return nil
		}

		for _, issue := range v.Issues {
			fmt.Println("issue:", issue)
		}
		if !validateFix {
			return nil
		}

		// Repair and save as a new record; the original stays untouched.
		reconcile.FixCalculationErrors(rec, cfg.Grading.Weights)
		if reconcile.ValidateGradingResult(rec, cfg.Grading.Weights).Valid {
			rec.ValidationState = grader.StateAutoFixed
		} else {
			rec.ValidationState = grader.StateInvalid
		}
		rec.ID = ""
		if err := st.SaveGrade(ctx, rec); err != nil {
			return err
		}
		fmt.Printf("repaired record saved as %s (%s)\n", rec.ID, rec.ValidationState)
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateFix, "fix", false, "repair arithmetic and save as a new record")
	rootCmd.AddCommand(validateCmd)
}
