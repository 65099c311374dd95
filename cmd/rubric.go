package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

var rubricCmd = &cobra.Command{
	Use:   "rubric <rubric-file>",
	Short: "Lint a rubric file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rubric, err := model.LoadRubric(args[0])
		if err != nil {
			return err
		}

		problems := rubric.Validate()
		for _, p := range problems {
			fmt.Println("problem:", p)
		}
		if len(problems) > 0 {
			return fmt.Errorf("%d problems found", len(problems))
		}

		fmt.Printf("%s: %d sections, %.1f points, %d required variables, ok\n",
			rubric.AssignmentInfo.Name,
			len(rubric.AutograderChecks.Sections),
			rubric.SectionPointsSum(),
			len(rubric.AutograderChecks.RequiredVariables),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rubricCmd)
}
