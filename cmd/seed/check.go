package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the curriculum with the step index and the bucket contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTooling(cmd, true)
		if err != nil {
			return err
		}
		defer t.Close()

		cur, err := t.Curriculum()
		if err != nil {
			return err
		}
		report, err := t.Seeder.Check(cmd.Context(), cur, t.Folder)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		total := len(cur.Positions())
		if report.OK() {
			fmt.Fprintf(out, "all %d positions indexed and present\n", total)
			return nil
		}
		for _, object := range report.MissingObjects {
			fmt.Fprintln(out, "missing object:", object)
		}
		for _, key := range report.MissingIndex {
			fmt.Fprintln(out, "missing index:", key)
		}
		for _, key := range report.StaleIndex {
			fmt.Fprintln(out, "stale index:", key)
		}
		return fmt.Errorf("%d of %d objects missing, %d index rows missing, %d stale",
			len(report.MissingObjects), total, len(report.MissingIndex), len(report.StaleIndex))
	},
}
