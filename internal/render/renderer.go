package render

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxRenderPasses bounds the setState/effect re-render loop so a
// pathological component cannot spin the renderer forever.
const maxRenderPasses = 32

// Factory is an invocable producer of an element tree: either a
// sandboxed component function with its hook runtime, or a pre-built
// static tree used for error artifacts and placeholders.
type Factory struct {
	VM        *goja.Runtime
	Component goja.Callable
	Hooks     *HookState
	Static    *VNode
}

// ComponentFactory wraps a sandboxed component function.
func ComponentFactory(vm *goja.Runtime, fn goja.Callable, hooks *HookState) *Factory {
	return &Factory{VM: vm, Component: fn, Hooks: hooks}
}

// StaticFactory wraps a pre-built tree.
func StaticFactory(root *VNode) *Factory {
	return &Factory{Static: root}
}

// ErrorPanel is the fixed-format error artifact shown for compile and
// runtime failures: a labeled panel carrying the raw message.
func ErrorPanel(label, message string) *VNode {
	return &VNode{
		Kind: KindElement,
		Tag:  "div",
		Children: []*VNode{
			{Kind: KindElement, Tag: "strong", Children: []*VNode{{Kind: KindText, Text: label}}},
			{Kind: KindElement, Tag: "pre", Children: []*VNode{{Kind: KindText, Text: message}}},
		},
	}
}

// ErrorFactory renders a labeled error panel with the raw message.
func ErrorFactory(label, message string) *Factory {
	return StaticFactory(ErrorPanel(label, message))
}

// MissingComponentFactory renders the notice shown when evaluation
// produced no recognizable component.
func MissingComponentFactory() *Factory {
	return StaticFactory(&VNode{
		Kind:     KindElement,
		Tag:      "div",
		Children: []*VNode{{Kind: KindText, Text: "Component not found"}},
	})
}

// EmptyFactory renders the neutral placeholder used when the user has
// submitted no code.
func EmptyFactory() *Factory {
	return StaticFactory(&VNode{
		Kind:     KindElement,
		Tag:      "div",
		Children: []*VNode{{Kind: KindText, Text: "No code to preview"}},
	})
}

// renderer performs the render passes for one mount.
type renderer struct {
	factory *Factory
}

// renderTree produces the resolved element tree for one pass.
func (r *renderer) renderTree() ([]*VNode, error) {
	if r.factory.Static != nil {
		return []*VNode{r.factory.Static}, nil
	}
	root := &VNode{Kind: KindComponent, Component: r.factory.Component}
	return r.expand(root, "0")
}

// expand resolves component and fragment nodes into concrete element
// and text nodes. Component invocation errors propagate to the mount,
// which substitutes the error artifact.
func (r *renderer) expand(n *VNode, path string) ([]*VNode, error) {
	switch n.Kind {
	case KindText:
		return []*VNode{n}, nil

	case KindElement:
		out := &VNode{Kind: KindElement, Tag: n.Tag, Props: n.Props}
		children, err := r.expandAll(n.Children, path)
		if err != nil {
			return nil, err
		}
		out.Children = children
		return []*VNode{out}, nil

	case KindFragment:
		return r.expandAll(n.Children, path)

	case KindComponent:
		result, err := r.invoke(n, path)
		if err != nil {
			return nil, err
		}
		return r.expandAll(result, path+"/")

	default:
		return nil, nil
	}
}

func (r *renderer) expandAll(children []*VNode, path string) ([]*VNode, error) {
	var out []*VNode
	for i, child := range children {
		expanded, err := r.expand(child, fmt.Sprintf("%s.%d", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

// invoke calls a component function with its props, attaching hook
// calls to the instance identified by path.
func (r *renderer) invoke(n *VNode, path string) ([]*VNode, error) {
	vm := r.factory.VM
	props := n.Props
	if props == nil {
		props = vm.NewObject()
	}
	if len(n.Children) > 0 {
		kids := make([]any, len(n.Children))
		for i, c := range n.Children {
			kids[i] = c
		}
		_ = props.Set("children", vm.ToValue(kids))
	}

	var prev *hookFrame
	if r.factory.Hooks != nil {
		prev = r.factory.Hooks.begin(path)
		defer r.factory.Hooks.end(prev)
	}
	result, err := n.Component(goja.Undefined(), props)
	if err != nil {
		return nil, err
	}
	return childNodes(result), nil
}

// commit converts a resolved tree into DOM nodes.
func (r *renderer) commit(nodes []*VNode) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if h := r.buildHTML(n); h != nil {
			out = append(out, h)
		}
	}
	return out
}

func (r *renderer) buildHTML(n *VNode) *html.Node {
	switch n.Kind {
	case KindText:
		return &html.Node{Type: html.TextNode, Data: n.Text}
	case KindElement:
		tag := strings.ToLower(n.Tag)
		node := &html.Node{
			Type:     html.ElementNode,
			Data:     tag,
			DataAtom: atom.Lookup([]byte(tag)),
		}
		node.Attr = r.attributes(n.Props)
		for _, child := range n.Children {
			if h := r.buildHTML(child); h != nil {
				node.AppendChild(h)
			}
		}
		return node
	default:
		return nil
	}
}

// attributes maps a props object onto HTML attributes. Event handlers
// and framework-internal keys carry no attribute; className and htmlFor
// map to their HTML names; style objects serialize to CSS text.
func (r *renderer) attributes(props *goja.Object) []html.Attribute {
	if props == nil {
		return nil
	}
	var attrs []html.Attribute
	for _, key := range propKeys(props) {
		val := props.Get(key)
		if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
			continue
		}
		name := key
		switch key {
		case "className":
			name = "class"
		case "htmlFor":
			name = "for"
		case "key", "ref", "children", "dangerouslySetInnerHTML":
			continue
		case "style":
			attrs = append(attrs, html.Attribute{Key: "style", Val: styleText(val)})
			continue
		}
		if strings.HasPrefix(key, "on") && len(key) > 2 && key[2] >= 'A' && key[2] <= 'Z' {
			continue
		}
		switch exported := val.Export().(type) {
		case bool:
			if exported {
				attrs = append(attrs, html.Attribute{Key: strings.ToLower(name), Val: ""})
			}
		default:
			attrs = append(attrs, html.Attribute{Key: strings.ToLower(name), Val: val.String()})
		}
	}
	return attrs
}

// styleText serializes a style prop: strings pass through, objects
// become "prop: value" declarations with camelCase keys kebab-cased.
func styleText(val goja.Value) string {
	if _, ok := val.Export().(string); ok {
		return val.String()
	}
	obj, ok := val.(*goja.Object)
	if !ok {
		return val.String()
	}
	var decls []string
	for _, key := range propKeys(obj) {
		v := obj.Get(key)
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			continue
		}
		decls = append(decls, kebabCase(key)+": "+v.String())
	}
	return strings.Join(decls, "; ")
}

func kebabCase(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
