// Package sandbox constructs and invokes a function from transpiled
// bundle text with an explicit, enumerated set of injected
// capabilities. Nothing else — no network, storage or timers — is
// reachable from inside; a fresh goja runtime has no host bindings at
// all, and the sandboxed code only ever sees the constructed function's
// parameters.
package sandbox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dop251/goja"

	"github.com/abhisek/rendermark/internal/render"
)

// DefaultBudget bounds a single evaluation or render cycle inside the
// script engine.
const DefaultBudget = 2 * time.Second

// entryFallback scans a small fixed set of conventional entry-point
// names when the bundle produced no explicit return. The list is a
// best-effort fallback and is deliberately not extended.
const entryFallback = `
;if (typeof App === "function") { return App; }
if (typeof Component === "function") { return Component; }
if (typeof Main === "function") { return Main; }
`

// Artifact is the outcome of evaluating a bundle: a renderable factory,
// or a captured failure whose factory renders the error artifact. The
// evaluator never lets an exception cross its boundary.
type Artifact struct {
	OK      bool
	Message string
	Factory *render.Factory

	vm *goja.Runtime
}

// ArmBudget time-bombs the artifact's runtime for d, bounding the
// rendering work the component may do. The returned disarm function
// stops the timer; pass settled=false when the render never settled,
// which interrupts the runtime instead of clearing it so a goroutine
// still executing script exits. A no-op for fallback artifacts.
func (a *Artifact) ArmBudget(d time.Duration) func(settled bool) {
	if a.vm == nil {
		return func(bool) {}
	}
	vm := a.vm
	timer := time.AfterFunc(d, func() {
		vm.Interrupt("execution budget exceeded")
	})
	return func(settled bool) {
		timer.Stop()
		if settled {
			vm.ClearInterrupt()
			return
		}
		vm.Interrupt("render did not settle")
	}
}

// Evaluator builds execution artifacts from transpiled bundle text.
type Evaluator struct {
	Budget      time.Duration
	Console     *ConsoleLog
	Diagnostics io.Writer
}

// New creates an evaluator with the default budget, logging sandbox
// console output to stderr.
func New() *Evaluator {
	e := &Evaluator{
		Budget:      DefaultBudget,
		Diagnostics: os.Stderr,
	}
	e.Console = NewConsoleLog(e.Diagnostics)
	return e
}

// Evaluate wraps bundle in a function body, invokes it with the
// capability allow-list, and returns the resulting artifact. The
// factory is the bundle's explicit return (from the default-export
// rewrite) or a conventional entry point; when neither exists the
// artifact renders a "component not found" notice instead of failing.
func (e *Evaluator) Evaluate(bundle string) *Artifact {
	vm := goja.New()
	hooks := render.NewHookState(vm)

	budget := e.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	timer := time.AfterFunc(budget, func() {
		vm.Interrupt("execution budget exceeded")
	})
	defer func() {
		timer.Stop()
		vm.ClearInterrupt()
	}()

	program := "(function(React, useState, useEffect, useMemo, useCallback, useRef, console) {\n" +
		"\"use strict\";\n" + bundle + "\n" + entryFallback + "\n})"

	value, err := vm.RunString(program)
	if err != nil {
		return e.failure(err)
	}
	fn, ok := goja.AssertFunction(value)
	if !ok {
		return e.failure(errors.New("bundle did not produce a callable"))
	}

	hookBindings := hooks.Bindings()
	react := vm.NewObject()
	createElement := vm.ToValue(render.ElementConstructor(vm))
	_ = react.Set("createElement", createElement)
	_ = react.Set("Fragment", render.FragmentValue(vm))
	for name, binding := range hookBindings {
		_ = react.Set(name, binding)
	}

	console := e.Console.consoleObject(vm)

	result, err := fn(goja.Undefined(),
		react,
		hookBindings["useState"],
		hookBindings["useEffect"],
		hookBindings["useMemo"],
		hookBindings["useCallback"],
		hookBindings["useRef"],
		console,
	)
	if err != nil {
		return e.failure(err)
	}

	component, ok := goja.AssertFunction(result)
	if !ok {
		return &Artifact{
			OK:      true,
			Factory: render.MissingComponentFactory(),
		}
	}
	return &Artifact{
		OK:      true,
		Factory: render.ComponentFactory(vm, component, hooks),
		vm:      vm,
	}
}

// failure converts any evaluation error into a fallback artifact whose
// factory renders the fixed-format error panel.
func (e *Evaluator) failure(err error) *Artifact {
	msg := errorMessage(err)
	e.Console.Append(LevelError, msg)
	return &Artifact{
		OK:      false,
		Message: msg,
		Factory: render.ErrorFactory("Error", msg),
	}
}

// errorMessage extracts the thrown value's message rather than the
// engine's full stack dump.
func errorMessage(err error) string {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		if v := ex.Value(); v != nil {
			return v.String()
		}
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Sprint(interrupted.Value())
	}
	return err.Error()
}
