package cmd

import (
	"github.com/abhisek/rendermark/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rendermark",
	Short: "Grade UI component submissions by rendering and comparing",
	Long: "Rendermark executes submitted UI component code in a sandbox, renders it\n" +
		"alongside the reference solution, and grades the structural and visual\n" +
		"similarity of the two rendered trees.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides RENDERMARK_DB env var)")

	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then RENDERMARK_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
