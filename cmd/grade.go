package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var gradeSave bool

var gradeCmd = &cobra.Command{
	Use:   "grade <notebook.ipynb>",
	Short: "Grade a single submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		session, err := initSession()
		if err != nil {
			return err
		}

		rec := session.Grade(ctx, args[0])

		if gradeSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
			if err := st.SaveGrade(ctx, rec); err != nil {
				return err
			}
		}

		return printRecordJSON(rec)
	},
}

func init() {
	addGradingFlags(gradeCmd.Flags())
	gradeCmd.Flags().BoolVar(&gradeSave, "save", false, "persist the record to the store")
	rootCmd.AddCommand(gradeCmd)
}
