package render

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Container is one of the two mount targets. It holds at most one live
// MountedRoot; mounting a new root unmounts the previous one first, so
// a container never carries stale output alongside fresh output.
type Container struct {
	mu      sync.Mutex
	node    *html.Node
	current *MountedRoot
}

// NewContainer creates a detached container element with the given id.
func NewContainer(id string) *Container {
	return &Container{
		node: &html.Node{
			Type:     html.ElementNode,
			Data:     "div",
			DataAtom: atom.Div,
			Attr:     []html.Attribute{{Key: "id", Val: id}},
		},
	}
}

// Node returns the container element. Its children are the rendered
// output of the current root.
func (c *Container) Node() *html.Node {
	return c.node
}

// Root returns the live MountedRoot, or nil when nothing is mounted.
func (c *Container) Root() *MountedRoot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Mount replaces the container's current root with a new one rendering
// factory's output. Rendering completes asynchronously; callers await
// MountedRoot.Wait before inspecting the DOM.
func (c *Container) Mount(factory *Factory) *MountedRoot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.release()
	}
	root := &MountedRoot{
		container: c,
		factory:   factory,
		done:      make(chan struct{}),
	}
	c.current = root
	go root.render()
	return root
}

// Unmount releases the current root and clears the container.
func (c *Container) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.release()
		c.current = nil
	}
}

// replaceChildren swaps the container's children, unless the owning
// root has been released in the meantime.
func (c *Container) replaceChildren(owner *MountedRoot, children []*html.Node) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if owner.released.Load() {
		return false
	}
	removeChildren(c.node)
	for _, child := range children {
		c.node.AppendChild(child)
	}
	return true
}

func removeChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// MountedRoot is the ownership handle binding one rendered artifact to
// a container. Exactly one live root exists per container.
type MountedRoot struct {
	container *Container
	factory   *Factory
	done      chan struct{}
	released  atomic.Bool

	runtimeErr error
}

// Wait blocks until rendering has settled or ctx expires. A ctx expiry
// is a mount failure; the run aborts that side only.
func (m *MountedRoot) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mount did not settle: %w", ctx.Err())
	}
}

// RuntimeErr returns the runtime exception captured during rendering,
// if any. The container then shows the error artifact instead.
func (m *MountedRoot) RuntimeErr() error {
	select {
	case <-m.done:
		return m.runtimeErr
	default:
		return nil
	}
}

// release marks the root dead and tears down its hook state. Called
// with the container lock held.
func (m *MountedRoot) release() {
	if m.released.Swap(true) {
		return
	}
	if m.factory != nil && m.factory.Hooks != nil {
		m.factory.Hooks.teardown()
	}
	removeChildren(m.container.node)
}

// render runs the pass loop: expand, commit, run effects, and repeat
// while state changes, up to the pass budget. A component exception is
// captured and replaced with the error artifact; it never escapes.
func (m *MountedRoot) render() {
	defer close(m.done)
	r := &renderer{factory: m.factory}

	for pass := 0; pass < maxRenderPasses; pass++ {
		tree, err := r.renderTree()
		if err != nil {
			m.runtimeErr = err
			fallback := &renderer{factory: ErrorFactory("Runtime error", err.Error())}
			nodes, _ := fallback.renderTree()
			m.container.replaceChildren(m, fallback.commit(nodes))
			return
		}
		if !m.container.replaceChildren(m, r.commit(tree)) {
			return // superseded
		}
		if m.factory.Hooks == nil {
			return
		}
		if err := m.factory.Hooks.runEffects(); err != nil {
			m.runtimeErr = err
			fallback := &renderer{factory: ErrorFactory("Runtime error", err.Error())}
			nodes, _ := fallback.renderTree()
			m.container.replaceChildren(m, fallback.commit(nodes))
			return
		}
		if !m.factory.Hooks.consumeDirty() {
			return
		}
	}
}
