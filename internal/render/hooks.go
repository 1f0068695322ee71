package render

import (
	"fmt"

	"github.com/dop251/goja"
)

// HookState backs the state/effect/memo/callback/ref primitives
// injected into the sandbox. Slots are keyed by the component
// instance's position in the tree and by hook call order, so state
// survives re-render passes of a stable tree.
type HookState struct {
	vm      *goja.Runtime
	slots   map[string][]*hookSlot
	current *hookFrame
	pending []*hookSlot
	dirty   bool
}

type hookFrame struct {
	path  string
	index int
}

type hookSlot struct {
	initialized bool
	value       goja.Value
	deps        []goja.Value
	hasDeps     bool
	effect      goja.Callable
	cleanup     goja.Callable
	scheduled   bool
}

// NewHookState creates the hook runtime for one sandbox runtime.
func NewHookState(vm *goja.Runtime) *HookState {
	return &HookState{
		vm:    vm,
		slots: make(map[string][]*hookSlot),
	}
}

// Bindings returns the named hook functions to inject as sandbox
// parameters.
func (h *HookState) Bindings() map[string]goja.Value {
	return map[string]goja.Value{
		"useState":    h.vm.ToValue(h.useState),
		"useEffect":   h.vm.ToValue(h.useEffect),
		"useMemo":     h.vm.ToValue(h.useMemo),
		"useCallback": h.vm.ToValue(h.useCallback),
		"useRef":      h.vm.ToValue(h.useRef),
	}
}

// begin enters a component instance; hooks called until end() attach to
// this instance's slot list.
func (h *HookState) begin(path string) *hookFrame {
	prev := h.current
	h.current = &hookFrame{path: path}
	return prev
}

func (h *HookState) end(prev *hookFrame) {
	h.current = prev
}

func (h *HookState) slot() *hookSlot {
	if h.current == nil {
		// Hook called outside a component render; give it a detached
		// slot so the sandbox still cannot crash the host.
		return &hookSlot{}
	}
	list := h.slots[h.current.path]
	if h.current.index >= len(list) {
		list = append(list, &hookSlot{})
		h.slots[h.current.path] = list
	}
	s := list[h.current.index]
	h.current.index++
	return s
}

func (h *HookState) useState(call goja.FunctionCall) goja.Value {
	s := h.slot()
	if !s.initialized {
		s.initialized = true
		s.value = call.Argument(0)
		if fn, ok := goja.AssertFunction(s.value); ok {
			// Lazy initializer form.
			if v, err := fn(goja.Undefined()); err == nil {
				s.value = v
			}
		}
		if s.value == nil {
			s.value = goja.Undefined()
		}
	}
	setter := h.vm.ToValue(func(set goja.FunctionCall) goja.Value {
		next := set.Argument(0)
		if fn, ok := goja.AssertFunction(next); ok {
			if v, err := fn(goja.Undefined(), s.value); err == nil {
				next = v
			}
		}
		if next == nil {
			next = goja.Undefined()
		}
		if !next.StrictEquals(s.value) {
			s.value = next
			h.dirty = true
		}
		return goja.Undefined()
	})
	return h.vm.NewArray(s.value, setter)
}

func (h *HookState) useEffect(call goja.FunctionCall) goja.Value {
	s := h.slot()
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		return goja.Undefined()
	}
	deps, hasDeps := exportDeps(call, 1)
	run := !s.initialized || !hasDeps || !sameDeps(s.deps, deps)
	s.initialized = true
	s.deps, s.hasDeps = deps, hasDeps
	if run && !s.scheduled {
		s.effect = fn
		s.scheduled = true
		h.pending = append(h.pending, s)
	}
	return goja.Undefined()
}

func (h *HookState) useMemo(call goja.FunctionCall) goja.Value {
	s := h.slot()
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		return goja.Undefined()
	}
	deps, hasDeps := exportDeps(call, 1)
	if !s.initialized || !hasDeps || !sameDeps(s.deps, deps) {
		if v, err := fn(goja.Undefined()); err == nil {
			s.value = v
		}
		s.initialized = true
		s.deps, s.hasDeps = deps, hasDeps
	}
	if s.value == nil {
		return goja.Undefined()
	}
	return s.value
}

func (h *HookState) useCallback(call goja.FunctionCall) goja.Value {
	s := h.slot()
	deps, hasDeps := exportDeps(call, 1)
	if !s.initialized || !hasDeps || !sameDeps(s.deps, deps) {
		s.value = call.Argument(0)
		s.initialized = true
		s.deps, s.hasDeps = deps, hasDeps
	}
	if s.value == nil {
		return goja.Undefined()
	}
	return s.value
}

func (h *HookState) useRef(call goja.FunctionCall) goja.Value {
	s := h.slot()
	if !s.initialized {
		ref := h.vm.NewObject()
		_ = ref.Set("current", call.Argument(0))
		s.value = ref
		s.initialized = true
	}
	return s.value
}

// runEffects executes effects scheduled during the last render pass,
// invoking prior cleanups first. Returns the first invocation error.
func (h *HookState) runEffects() error {
	pending := h.pending
	h.pending = nil
	for _, s := range pending {
		s.scheduled = false
		if s.cleanup != nil {
			if _, err := s.cleanup(goja.Undefined()); err != nil {
				return fmt.Errorf("effect cleanup: %w", err)
			}
			s.cleanup = nil
		}
		if s.effect == nil {
			continue
		}
		res, err := s.effect(goja.Undefined())
		if err != nil {
			return fmt.Errorf("effect: %w", err)
		}
		if fn, ok := goja.AssertFunction(res); ok {
			s.cleanup = fn
		}
	}
	return nil
}

// consumeDirty reports and clears the re-render flag set by setState.
func (h *HookState) consumeDirty() bool {
	d := h.dirty
	h.dirty = false
	return d
}

// teardown runs outstanding cleanups and discards all slots; called on
// unmount. Cleanup failures are swallowed — teardown must not fail.
func (h *HookState) teardown() {
	for _, list := range h.slots {
		for _, s := range list {
			if s.cleanup != nil {
				_, _ = s.cleanup(goja.Undefined())
				s.cleanup = nil
			}
		}
	}
	h.slots = make(map[string][]*hookSlot)
	h.pending = nil
	h.dirty = false
	h.current = nil
}

func exportDeps(call goja.FunctionCall, idx int) ([]goja.Value, bool) {
	if idx >= len(call.Arguments) {
		return nil, false
	}
	arg := call.Arguments[idx]
	if goja.IsUndefined(arg) || goja.IsNull(arg) {
		return nil, false
	}
	obj, ok := arg.(*goja.Object)
	if !ok {
		return nil, false
	}
	length := int(obj.Get("length").ToInteger())
	deps := make([]goja.Value, 0, length)
	for i := 0; i < length; i++ {
		deps = append(deps, obj.Get(fmt.Sprint(i)))
	}
	return deps, true
}

func sameDeps(a, b []goja.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == nil || b[i] == nil {
			if a[i] != b[i] {
				return false
			}
			continue
		}
		if !a[i].StrictEquals(b[i]) {
			return false
		}
	}
	return true
}
