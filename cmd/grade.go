package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/rendermark/internal/fileset"
	"github.com/abhisek/rendermark/internal/grader"
	"github.com/abhisek/rendermark/internal/question"
	"github.com/abhisek/rendermark/internal/report"
	"github.com/abhisek/rendermark/internal/store"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <fixture.json>",
	Short: "Grade a submission against a question's reference solution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := question.Load(args[0])
		if err != nil {
			return err
		}

		userPath, _ := cmd.Flags().GetString("user")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		g := grader.New(grader.Options{MountTimeout: timeout})
		g.LoadQuestion(unit)
		if err := applyUserFiles(g, unit, userPath); err != nil {
			return err
		}

		outcome, err := g.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("run grading pipeline: %w", err)
		}
		fmt.Println(report.Render(unit, outcome, g.ConsoleEntries()))

		if save, _ := cmd.Flags().GetBool("save"); save {
			if err := saveAttempt(cmd, unit, outcome); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to record attempt: %v\n", err)
			}
		}
		return nil
	},
}

func init() {
	gradeCmd.Flags().String("user", "", "Path to the user's submission (file or directory); defaults to the starter code")
	gradeCmd.Flags().Duration("timeout", grader.DefaultMountTimeout, "Bounded wait for each side's render to settle")
	gradeCmd.Flags().Bool("save", false, "Record the attempt in the local database")
}

// applyUserFiles loads a submission from disk into the grader's live
// user FileSet. With no path the starter code is graded as-is.
func applyUserFiles(g *grader.Grader, unit *question.Unit, path string) error {
	if path == "" {
		return nil
	}
	fs, err := loadUserFileSet(unit, path)
	if err != nil {
		return err
	}
	for _, name := range fs.Names() {
		src, _ := fs.Get(name)
		g.SetFile(name, src)
	}
	return nil
}

// loadUserFileSet reads a single source file or a directory of source
// files as the user's FileSet.
func loadUserFileSet(unit *question.Unit, path string) (*fileset.FileSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat submission: %w", err)
	}
	if !info.IsDir() {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read submission: %w", err)
		}
		return fileset.New(unit.Starter.Entry(), string(raw)), nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read submission dir: %w", err)
	}
	files := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !isSourceFile(e.Name()) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(path, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		files[e.Name()] = string(raw)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files in %s", path)
	}

	entry := unit.Starter.Entry()
	if _, ok := files[entry]; !ok {
		names := make([]string, 0, len(files))
		for name := range files {
			names = append(names, name)
		}
		sort.Strings(names)
		entry = names[0]
	}
	return fileset.FromFiles(entry, files)
}

func isSourceFile(name string) bool {
	return strings.HasSuffix(name, ".js") || strings.HasSuffix(name, ".jsx")
}

// saveAttempt records the score and diff summary; grading never
// depends on the store.
func saveAttempt(cmd *cobra.Command, unit *question.Unit, outcome *grader.Outcome) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	return st.AttemptRepo().Append(ctx, store.AttemptData{
		QuestionID:      unit.ID,
		Score:           outcome.Score,
		StructuralEqual: outcome.Result.Equal,
		DiffCount:       len(outcome.Result.Diffs),
		VisualRatio:     outcome.VisualRatio,
	})
}
