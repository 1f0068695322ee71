package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/abhisek/rendermark/internal/grader"
	"github.com/abhisek/rendermark/internal/question"
)

var previewCmd = &cobra.Command{
	Use:   "preview <fixture.json>",
	Short: "Render a question's solution and print the HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := question.Load(args[0])
		if err != nil {
			return err
		}
		side, _ := cmd.Flags().GetString("side")
		userPath, _ := cmd.Flags().GetString("user")

		g := grader.New(grader.Options{})
		g.LoadQuestion(unit)
		if err := applyUserFiles(g, unit, userPath); err != nil {
			return err
		}
		if _, err := g.Run(cmd.Context()); err != nil {
			return fmt.Errorf("run grading pipeline: %w", err)
		}

		root := g.ReferenceRoot()
		if side == "user" {
			root = g.PreviewRoot()
		}
		if err := html.Render(os.Stdout, root); err != nil {
			return fmt.Errorf("serialize preview: %w", err)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	previewCmd.Flags().String("side", "solution", "Which side to print: solution or user")
	previewCmd.Flags().String("user", "", "Path to the user's submission (used with --side=user)")
}
