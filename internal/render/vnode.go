// Package render turns evaluated component factories into element trees
// mounted inside in-memory DOM containers. It owns the virtual node
// model produced by the injected element-construction primitive, the
// hook runtime backing the injected state primitives, and the
// mount/unmount lifecycle of each container.
package render

import (
	"fmt"
	"sort"

	"github.com/dop251/goja"
)

// Kind discriminates virtual node variants.
type Kind int

const (
	KindElement Kind = iota
	KindText
	KindFragment
	KindComponent
)

// VNode is one node of the element-construction IR: an intrinsic tag, a
// text run, a groupless fragment, or a component reference awaiting
// invocation.
type VNode struct {
	Kind      Kind
	Tag       string
	Text      string
	Component goja.Callable
	Props     *goja.Object
	Children  []*VNode
}

// fragmentMarker is the value bound to React.Fragment inside the
// sandbox; createElement recognizes it as the groupless-children
// convention.
type fragmentMarker struct{}

// FragmentValue returns the sandbox binding for React.Fragment.
func FragmentValue(vm *goja.Runtime) goja.Value {
	return vm.ToValue(&fragmentMarker{})
}

// ElementConstructor returns the createElement primitive for vm:
// createElement(type, props, ...children). Type is an intrinsic tag
// string, a component function, or the fragment marker.
func ElementConstructor(vm *goja.Runtime) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		node := &VNode{}

		var typ goja.Value
		if len(call.Arguments) > 0 {
			typ = call.Arguments[0]
		}
		switch exported := exportValue(typ).(type) {
		case string:
			node.Kind = KindElement
			node.Tag = exported
		case *fragmentMarker:
			node.Kind = KindFragment
		default:
			if fn, ok := goja.AssertFunction(typ); ok {
				node.Kind = KindComponent
				node.Component = fn
			} else {
				// Unknown type renders as an empty fragment rather
				// than failing the whole tree.
				node.Kind = KindFragment
			}
		}

		if len(call.Arguments) > 1 {
			if obj, ok := call.Arguments[1].(*goja.Object); ok {
				node.Props = obj
			}
		}
		for _, arg := range call.Arguments[2:] {
			node.Children = append(node.Children, childNodes(arg)...)
		}
		return vm.ToValue(node)
	}
}

// childNodes converts one createElement child argument into zero or
// more virtual nodes. Arrays flatten; null, undefined and booleans
// render nothing; primitives become text.
func childNodes(v goja.Value) []*VNode {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	switch exported := exportValue(v).(type) {
	case *VNode:
		return []*VNode{exported}
	case bool:
		return nil
	case []any:
		var out []*VNode
		for _, item := range exported {
			out = append(out, anyToNodes(item)...)
		}
		return out
	default:
		if s := v.String(); s != "" {
			return []*VNode{{Kind: KindText, Text: s}}
		}
		return nil
	}
}

func anyToNodes(item any) []*VNode {
	switch x := item.(type) {
	case nil, bool:
		return nil
	case *VNode:
		return []*VNode{x}
	case goja.Value:
		return childNodes(x)
	case []any:
		var out []*VNode
		for _, inner := range x {
			out = append(out, anyToNodes(inner)...)
		}
		return out
	case string:
		if x == "" {
			return nil
		}
		return []*VNode{{Kind: KindText, Text: x}}
	default:
		return []*VNode{{Kind: KindText, Text: stringify(x)}}
	}
}

func stringify(v any) string { return fmt.Sprint(v) }

func exportValue(v goja.Value) any {
	if v == nil {
		return nil
	}
	return v.Export()
}

// propKeys returns the sorted property names of a props object, for
// deterministic attribute emission.
func propKeys(props *goja.Object) []string {
	if props == nil {
		return nil
	}
	keys := props.Keys()
	sort.Strings(keys)
	return keys
}
