package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/rendermark/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recent grading attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		attempts, err := st.AttemptRepo().Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(attempts) == 0 {
			fmt.Println("No attempts recorded yet.")
			return nil
		}
		for _, a := range attempts {
			verdict := "differs"
			if a.StructuralEqual {
				verdict = "equal"
			}
			fmt.Printf("%s  %-24s  score %3d  %s (%d diffs, visual %.0f%%)\n",
				a.CreatedAt.Format("2006-01-02 15:04"),
				a.QuestionID,
				a.Score,
				verdict,
				a.DiffCount,
				a.VisualRatio*100,
			)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("limit", 20, "Maximum number of attempts to show")
}
