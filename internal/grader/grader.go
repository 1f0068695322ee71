// Package grader orchestrates the full pipeline: normalize, transpile,
// evaluate, render both sides, compare, and aggregate the score. One
// Grader owns the pair of mount containers and the observable state of
// the current question.
package grader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/html"

	"github.com/abhisek/rendermark/internal/compare"
	"github.com/abhisek/rendermark/internal/fileset"
	"github.com/abhisek/rendermark/internal/normalize"
	"github.com/abhisek/rendermark/internal/question"
	"github.com/abhisek/rendermark/internal/render"
	"github.com/abhisek/rendermark/internal/sandbox"
	"github.com/abhisek/rendermark/internal/score"
	"github.com/abhisek/rendermark/internal/transpile"
	"github.com/abhisek/rendermark/internal/visual"
)

// Phase is the observable state of the current run cycle.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseCompiling    Phase = "compiling"
	PhaseMounted      Phase = "mounted"
	PhaseCompared     Phase = "compared"
	PhaseCompileError Phase = "compile-error"
	PhasePartial      Phase = "partial-compared"
)

// ErrSuperseded reports that a run was overtaken by a newer run or a
// question change; its results were discarded.
var ErrSuperseded = errors.New("run superseded")

// ErrNoQuestion reports that no grading unit is loaded.
var ErrNoQuestion = errors.New("no question loaded")

// DefaultMountTimeout bounds the wait for each side's render to settle.
const DefaultMountTimeout = 5 * time.Second

// Options configures a Grader.
type Options struct {
	MountTimeout time.Duration
	EvalBudget   time.Duration
	Diagnostics  io.Writer
}

// Outcome is the result of one completed run cycle.
type Outcome struct {
	Score       int
	Result      compare.Result
	VisualRatio float64
	UserSkipped bool
	CompileErr  string
	RefError    string
	UserError   string
}

// Grader runs the grading pipeline for one question at a time.
type Grader struct {
	mu   sync.Mutex
	opts Options

	unit      *question.Unit
	userFiles *fileset.FileSet

	refContainer  *render.Container
	userContainer *render.Container
	console       *sandbox.ConsoleLog
	evaluator     *sandbox.Evaluator

	token atomic.Uint64
	phase atomic.Value // Phase

	lastScore   int
	lastOutcome *Outcome
}

// New creates a Grader with empty containers.
func New(opts Options) *Grader {
	if opts.MountTimeout <= 0 {
		opts.MountTimeout = DefaultMountTimeout
	}
	if opts.EvalBudget <= 0 {
		opts.EvalBudget = sandbox.DefaultBudget
	}
	if opts.Diagnostics == nil {
		opts.Diagnostics = os.Stderr
	}
	console := sandbox.NewConsoleLog(opts.Diagnostics)
	g := &Grader{
		opts:          opts,
		refContainer:  render.NewContainer("solution-root"),
		userContainer: render.NewContainer("preview-root"),
		console:       console,
		evaluator: &sandbox.Evaluator{
			Budget:      opts.EvalBudget,
			Console:     console,
			Diagnostics: opts.Diagnostics,
		},
	}
	g.setPhase(PhaseIdle)
	return g
}

// LoadQuestion replaces the current grading unit. Every previously
// mounted root on both sides is unmounted before the new FileSets are
// installed, and any in-flight run becomes stale.
func (g *Grader) LoadQuestion(u *question.Unit) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token.Add(1)
	g.refContainer.Unmount()
	g.userContainer.Unmount()
	g.unit = u
	g.userFiles = u.Starter.Clone()
	g.console.Clear()
	g.lastScore = 0
	g.lastOutcome = nil
	g.setPhase(PhaseIdle)
}

// SetFile mutates the user's live copy; called per keystroke by the
// editing surface. The reference FileSet is never touched.
func (g *Grader) SetFile(name, source string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.userFiles != nil {
		g.userFiles.Set(name, source)
	}
}

// CurrentCode returns the live user FileSet.
func (g *Grader) CurrentCode() *fileset.FileSet {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.userFiles
}

// Score returns the last computed score.
func (g *Grader) Score() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastScore
}

// LastOutcome returns the last completed run's outcome, or nil.
func (g *Grader) LastOutcome() *Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastOutcome
}

// Phase returns the observable run-cycle phase. It is lock-free so
// intermediate phases stay visible while a run holds the grader lock.
func (g *Grader) Phase() Phase {
	if p, ok := g.phase.Load().(Phase); ok {
		return p
	}
	return PhaseIdle
}

func (g *Grader) setPhase(p Phase) {
	g.phase.Store(p)
}

// PreviewRoot returns the user-side rendered root for external
// inspection, e.g. by a submission workflow.
func (g *Grader) PreviewRoot() *html.Node {
	return g.userContainer.Node()
}

// ReferenceRoot returns the reference-side rendered root.
func (g *Grader) ReferenceRoot() *html.Node {
	return g.refContainer.Node()
}

// ConsoleEntries returns the accumulated console output log.
func (g *Grader) ConsoleEntries() []sandbox.LogEntry {
	return g.console.Entries()
}

// Run executes the full pipeline once and updates observable state.
// The reference side renders first; after its completion signal the
// user side renders; after the second signal both trees are compared.
func (g *Grader) Run(ctx context.Context) (*Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unit == nil {
		return nil, ErrNoQuestion
	}

	token := g.token.Add(1)
	g.console.Clear()
	g.setPhase(PhaseCompiling)

	outcome, err := g.runCycle(ctx, token)
	if err != nil {
		g.setPhase(PhaseIdle)
		return nil, err
	}
	if g.token.Load() != token {
		// Superseded mid-run; never apply stale results.
		g.setPhase(PhaseIdle)
		return nil, ErrSuperseded
	}
	g.lastScore = outcome.Score
	g.lastOutcome = outcome
	return outcome, nil
}

func (g *Grader) runCycle(ctx context.Context, token uint64) (*Outcome, error) {
	outcome := &Outcome{VisualRatio: 0}

	// Reference side renders always, even with an empty user FileSet.
	refArtifact, refCompileErr := g.compile(ctx, g.unit.Solution)
	if refCompileErr != nil {
		refArtifact = errorArtifact("Compile error", refCompileErr)
		outcome.CompileErr = refCompileErr.Error()
	}
	if err := g.mountAndWait(ctx, g.refContainer, refArtifact); err != nil {
		return nil, fmt.Errorf("reference mount: %w", err)
	}
	if err := g.refContainer.Root().RuntimeErr(); err != nil {
		outcome.RefError = err.Error()
	}

	// A whitespace-only submission skips execution entirely: mount the
	// neutral placeholder and yield score 0 without invoking the
	// comparator.
	if g.userFiles.IsEmpty() {
		if err := g.mountAndWait(ctx, g.userContainer, staticArtifact(render.EmptyFactory())); err != nil {
			return nil, fmt.Errorf("placeholder mount: %w", err)
		}
		outcome.UserSkipped = true
		outcome.Score = 0
		g.setPhase(PhaseMounted)
		return outcome, nil
	}

	userArtifact, userCompileErr := g.compile(ctx, g.userFiles)
	if userCompileErr != nil {
		// Compile failure halts this side: the error artifact renders
		// in place and no comparison is attempted.
		outcome.CompileErr = userCompileErr.Error()
		outcome.Score = 0
		g.setPhase(PhaseCompileError)
		if err := g.mountAndWait(ctx, g.userContainer, errorArtifact("Compile error", userCompileErr)); err != nil {
			return nil, fmt.Errorf("error artifact mount: %w", err)
		}
		return outcome, nil
	}

	if err := g.mountAndWait(ctx, g.userContainer, userArtifact); err != nil {
		return nil, fmt.Errorf("user mount: %w", err)
	}
	g.setPhase(PhaseMounted)
	if err := g.userContainer.Root().RuntimeErr(); err != nil {
		outcome.UserError = err.Error()
	}

	if g.token.Load() != token {
		return nil, ErrSuperseded
	}

	// Both sides have settled; compare whatever rendered. A side that
	// failed at runtime contributes its error artifact.
	expected := firstElement(g.refContainer.Node())
	actual := firstElement(g.userContainer.Node())
	outcome.Result = compare.Compare(expected, actual)
	outcome.VisualRatio = g.visualRatio(expected, actual)
	outcome.Score = score.Aggregate(outcome.Result, outcome.VisualRatio)

	if outcome.RefError != "" || outcome.UserError != "" {
		g.setPhase(PhasePartial)
	} else {
		g.setPhase(PhaseCompared)
	}
	return outcome, nil
}

// Reset restores the user FileSet to the starter content, clears the
// console log, and re-renders the reference side.
func (g *Grader) Reset(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unit == nil {
		return ErrNoQuestion
	}
	g.token.Add(1)
	g.userFiles = g.unit.Starter.Clone()
	g.console.Clear()
	g.lastScore = 0
	g.lastOutcome = nil

	g.userContainer.Unmount()
	if err := g.mountAndWait(ctx, g.userContainer, staticArtifact(render.EmptyFactory())); err != nil {
		return fmt.Errorf("placeholder mount: %w", err)
	}

	refArtifact, compileErr := g.compile(ctx, g.unit.Solution)
	if compileErr != nil {
		refArtifact = errorArtifact("Compile error", compileErr)
	}
	if err := g.mountAndWait(ctx, g.refContainer, refArtifact); err != nil {
		return fmt.Errorf("reference mount: %w", err)
	}
	g.setPhase(PhaseIdle)
	return nil
}

// compile bundles, transpiles and evaluates one FileSet. A transpile
// failure is the only compile-class error; evaluation failures come
// back as fallback artifacts and flow on to rendering.
func (g *Grader) compile(ctx context.Context, fs *fileset.FileSet) (*sandbox.Artifact, error) {
	bundle := normalize.Bundle(fs, g.unit.MultiFile)
	code, err := transpile.Transpile(ctx, bundle)
	if err != nil {
		g.console.Append(sandbox.LevelError, err.Error())
		return nil, err
	}
	return g.evaluator.Evaluate(code), nil
}

// mountAndWait arms the artifact's execution budget, mounts it, and
// blocks until its render settles or the bounded wait expires. On
// expiry the runtime is left interrupted, so a render goroutine still
// executing script exits instead of spinning past the budget.
func (g *Grader) mountAndWait(ctx context.Context, c *render.Container, a *sandbox.Artifact) error {
	mountCtx, cancel := context.WithTimeout(ctx, g.opts.MountTimeout)
	defer cancel()
	disarm := a.ArmBudget(g.opts.EvalBudget)
	root := c.Mount(a.Factory)
	err := root.Wait(mountCtx)
	disarm(err == nil)
	return err
}

// visualRatio guards style inspection: any panic degrades to the
// neutral constant rather than failing the whole score.
func (g *Grader) visualRatio(expected, actual *html.Node) (ratio float64) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(g.opts.Diagnostics, "warning: visual comparison failed: %v\n", r)
			ratio = visual.NeutralRatio
		}
	}()
	return visual.Similarity(expected, actual)
}

// firstElement returns the first element child of a container, the
// rendered root handed to the comparator.
func firstElement(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func errorArtifact(label string, err error) *sandbox.Artifact {
	return &sandbox.Artifact{
		OK:      false,
		Message: err.Error(),
		Factory: render.ErrorFactory(label, err.Error()),
	}
}

func staticArtifact(f *render.Factory) *sandbox.Artifact {
	return &sandbox.Artifact{OK: true, Factory: f}
}
