package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/tutorbot-backend/internal/seed"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Upsert the question bank and step index, optionally uploading content files",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		contentDir, _ := cmd.Flags().GetString("content-dir")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		replace, _ := cmd.Flags().GetBool("replace-topics")
		prune, _ := cmd.Flags().GetBool("prune")

		f, err := seed.LoadFile(file)
		if err != nil {
			return err
		}
		t, err := openTooling(cmd, contentDir != "" || prune)
		if err != nil {
			return err
		}
		defer t.Close()

		cur, err := t.Curriculum()
		if err != nil {
			return err
		}
		res, err := t.Seeder.Run(cmd.Context(), f, cur, seed.Options{
			DryRun:        dryRun,
			ReplaceTopics: replace,
			ContentDir:    contentDir,
			Folder:        t.Folder,
			Prune:         prune,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "tutorial %s: %d entries, %d steps", t.Tutorial.Name, res.Entries, res.Steps)
		if contentDir != "" {
			fmt.Fprintf(out, ", %d uploaded", res.Uploaded)
		}
		if dryRun {
			fmt.Fprint(out, " (dry run)")
		}
		fmt.Fprintln(out)
		if len(res.Missing) > 0 {
			fmt.Fprintf(out, "missing content files: %s\n", strings.Join(res.Missing, ", "))
		}
		for _, object := range res.Pruned {
			fmt.Fprintln(out, "pruned:", object)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().String("file", "configs/seed.yaml", "Seed file with the question bank")
	runCmd.Flags().String("content-dir", "", "Directory of Paso{N}_Subpaso{M}.txt files to upload")
	runCmd.Flags().Bool("dry-run", false, "Validate and count without writing")
	runCmd.Flags().Bool("replace-topics", false, "Delete existing entries of the seeded topics first")
	runCmd.Flags().Bool("prune", false, "Delete objects in the content folder that no curriculum position names")
}
