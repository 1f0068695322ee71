package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/abhisek/rendermark/internal/grader"
	"github.com/abhisek/rendermark/internal/question"
	"github.com/abhisek/rendermark/internal/report"
)

// watchDebounce coalesces editor write bursts into a single re-grade.
const watchDebounce = 250 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <fixture.json>",
	Short: "Re-grade a submission on every change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := question.Load(args[0])
		if err != nil {
			return err
		}
		userPath, _ := cmd.Flags().GetString("user")
		if userPath == "" {
			return fmt.Errorf("watch requires --user")
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create file watcher: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(userPath); err != nil {
			return fmt.Errorf("watch %s: %w", userPath, err)
		}

		g := grader.New(grader.Options{})
		g.LoadQuestion(unit)

		regrade := func() {
			if err := applyUserFiles(g, unit, userPath); err != nil {
				fmt.Fprintf(os.Stderr, "warning: reload submission: %v\n", err)
				return
			}
			outcome, err := g.Run(cmd.Context())
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: grading run: %v\n", err)
				return
			}
			fmt.Println(report.Render(unit, outcome, g.ConsoleEntries()))
		}

		regrade()

		var timer *time.Timer
		pending := make(chan struct{}, 1)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					if timer != nil {
						timer.Stop()
					}
					timer = time.AfterFunc(watchDebounce, func() {
						select {
						case pending <- struct{}{}:
						default:
						}
					})
				}
			case <-pending:
				regrade()
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(os.Stderr, "warning: watcher error: %v\n", err)
			case <-cmd.Context().Done():
				return nil
			}
		}
	},
}

func init() {
	watchCmd.Flags().String("user", "", "Path to the user's submission (file or directory)")
}
