package render

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dop251/goja"
	"golang.org/x/net/html"
)

// componentFrom compiles a component function in a fresh runtime with
// the element constructor and hook bindings in scope.
func componentFrom(t *testing.T, body string) *Factory {
	t.Helper()
	vm := goja.New()
	hooks := NewHookState(vm)
	if err := vm.Set("h", vm.ToValue(ElementConstructor(vm))); err != nil {
		t.Fatal(err)
	}
	if err := vm.Set("Fragment", FragmentValue(vm)); err != nil {
		t.Fatal(err)
	}
	for name, binding := range hooks.Bindings() {
		if err := vm.Set(name, binding); err != nil {
			t.Fatal(err)
		}
	}
	v, err := vm.RunString(body)
	if err != nil {
		t.Fatalf("compile component: %v", err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		t.Fatal("body did not produce a function")
	}
	return ComponentFactory(vm, fn, hooks)
}

func mount(t *testing.T, c *Container, f *Factory) *MountedRoot {
	t.Helper()
	root := c.Mount(f)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := root.Wait(ctx); err != nil {
		t.Fatalf("mount did not settle: %v", err)
	}
	return root
}

func renderedHTML(t *testing.T, c *Container) string {
	t.Helper()
	var b strings.Builder
	for n := c.Node().FirstChild; n != nil; n = n.NextSibling {
		if err := html.Render(&b, n); err != nil {
			t.Fatal(err)
		}
	}
	return b.String()
}

func TestMountStaticFactory(t *testing.T) {
	c := NewContainer("preview-root")
	mount(t, c, EmptyFactory())
	if got := renderedHTML(t, c); got != "<div>No code to preview</div>" {
		t.Errorf("rendered = %q", got)
	}
}

func TestErrorFactoryShape(t *testing.T) {
	c := NewContainer("preview-root")
	mount(t, c, ErrorFactory("Compile error", "unexpected token"))
	got := renderedHTML(t, c)
	if !strings.Contains(got, "<strong>Compile error</strong>") {
		t.Errorf("label missing: %q", got)
	}
	if !strings.Contains(got, "<pre>unexpected token</pre>") {
		t.Errorf("message missing: %q", got)
	}
}

func TestMountComponent(t *testing.T) {
	f := componentFrom(t, `(function () {
		return h("section", {className: "hero", id: "top"},
			h("h1", null, "Title"),
			"plain text");
	})`)
	c := NewContainer("preview-root")
	mount(t, c, f)
	got := renderedHTML(t, c)
	want := `<section class="hero" id="top"><h1>Title</h1>plain text</section>`
	if got != want {
		t.Errorf("rendered = %q, want %q", got, want)
	}
}

func TestMountFragmentAndArrays(t *testing.T) {
	f := componentFrom(t, `(function () {
		return h(Fragment, null,
			h("p", null, "a"),
			[h("p", null, "b"), h("p", null, "c")],
			null, false, "");
	})`)
	c := NewContainer("preview-root")
	mount(t, c, f)
	if got := renderedHTML(t, c); got != "<p>a</p><p>b</p><p>c</p>" {
		t.Errorf("rendered = %q", got)
	}
}

func TestAttributeMapping(t *testing.T) {
	f := componentFrom(t, `(function () {
		return h("label", {
			htmlFor: "name",
			className: "field",
			onClick: function () {},
			key: "k",
			disabled: true,
			hidden: false,
			style: {backgroundColor: "red", fontSize: "14px"},
		}, "Name");
	})`)
	c := NewContainer("preview-root")
	mount(t, c, f)
	got := renderedHTML(t, c)

	for _, want := range []string{
		`for="name"`,
		`class="field"`,
		`disabled=""`,
		`style="background-color: red; font-size: 14px"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered %q missing %q", got, want)
		}
	}
	for _, reject := range []string{"onclick", "key=", "hidden"} {
		if strings.Contains(got, reject) {
			t.Errorf("rendered %q must not contain %q", got, reject)
		}
	}
}

func TestNestedComponents(t *testing.T) {
	f := componentFrom(t, `(function () {
		function Item(props) { return h("li", null, props.label); }
		return h("ul", null,
			h(Item, {label: "one"}),
			h(Item, {label: "two"}));
	})`)
	c := NewContainer("preview-root")
	mount(t, c, f)
	if got := renderedHTML(t, c); got != "<ul><li>one</li><li>two</li></ul>" {
		t.Errorf("rendered = %q", got)
	}
}

func TestStateUpdateRerenders(t *testing.T) {
	f := componentFrom(t, `(function () {
		const [n, setN] = useState(0);
		useEffect(function () { if (n === 0) { setN(5); } }, []);
		return h("div", null, String(n));
	})`)
	c := NewContainer("preview-root")
	mount(t, c, f)
	if got := renderedHTML(t, c); got != "<div>5</div>" {
		t.Errorf("rendered = %q, want state after effect-driven update", got)
	}
}

func TestEffectCleanupRunsOnUnmount(t *testing.T) {
	f := componentFrom(t, `(function () {
		useEffect(function () {
			globalThis.cleaned = false;
			return function () { globalThis.cleaned = true; };
		}, []);
		return h("div", null, "x");
	})`)
	c := NewContainer("preview-root")
	mount(t, c, f)
	c.Unmount()

	cleaned := f.VM.GlobalObject().Get("cleaned")
	if cleaned == nil || !cleaned.ToBoolean() {
		t.Error("effect cleanup did not run on unmount")
	}
	if got := renderedHTML(t, c); got != "" {
		t.Errorf("container not cleared on unmount: %q", got)
	}
}

func TestRemountReplacesPreviousRoot(t *testing.T) {
	c := NewContainer("preview-root")
	first := mount(t, c, EmptyFactory())
	mount(t, c, StaticFactory(&VNode{Kind: KindElement, Tag: "span", Children: []*VNode{{Kind: KindText, Text: "fresh"}}}))

	if got := renderedHTML(t, c); got != "<span>fresh</span>" {
		t.Errorf("rendered = %q, want only the new root's output", got)
	}
	if c.Root() == first {
		t.Error("previous root still current after remount")
	}
}

func TestComponentThrowRendersErrorArtifact(t *testing.T) {
	f := componentFrom(t, `(function () { throw new Error("render boom"); })`)
	c := NewContainer("preview-root")
	root := mount(t, c, f)

	if err := root.RuntimeErr(); err == nil || !strings.Contains(err.Error(), "render boom") {
		t.Errorf("RuntimeErr = %v", err)
	}
	got := renderedHTML(t, c)
	if !strings.Contains(got, "Runtime error") || !strings.Contains(got, "render boom") {
		t.Errorf("error artifact not rendered: %q", got)
	}
}

func TestRenderPassBudget(t *testing.T) {
	// A component that dirties state on every pass must settle at the
	// pass cap instead of spinning forever.
	f := componentFrom(t, `(function () {
		const [n, setN] = useState(0);
		useEffect(function () { setN(n + 1); });
		return h("div", null, String(n));
	})`)
	c := NewContainer("preview-root")
	mount(t, c, f)
	got := renderedHTML(t, c)
	if !strings.HasPrefix(got, "<div>") {
		t.Errorf("rendered = %q", got)
	}
}

func TestHookStateKeyedByPosition(t *testing.T) {
	f := componentFrom(t, `(function () {
		function Counter(props) {
			const [n] = useState(props.start);
			return h("span", null, String(n));
		}
		return h("div", null,
			h(Counter, {start: 1}),
			h(Counter, {start: 2}));
	})`)
	c := NewContainer("preview-root")
	mount(t, c, f)
	if got := renderedHTML(t, c); got != "<div><span>1</span><span>2</span></div>" {
		t.Errorf("rendered = %q, want independent state per instance", got)
	}
}
